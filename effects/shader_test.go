package effects

import (
	"context"
	"encoding/binary"
	"math"
	"strings"
	"testing"

	"github.com/gogpu/naga"

	"github.com/gogpu/demoscene/catalog"
	"github.com/gogpu/demoscene/surface"
)

// compileShader compiles WGSL and skips on known naga limitations, the
// same way the compilation can be skipped at runtime on a host without
// the feature.
func compileShader(t *testing.T, name, wgsl string) []byte {
	t.Helper()
	spirv, err := naga.Compile(wgsl)
	if err != nil {
		errStr := err.Error()
		if strings.Contains(errStr, "not yet implemented") || strings.Contains(errStr, "not supported") {
			t.Skipf("naga feature not yet implemented: %v", err)
		}
		t.Fatalf("compile %s: %v", name, err)
	}
	return spirv
}

// TestShaderSourcesCompile tests that both pipeline demos' WGSL compiles
// to valid SPIR-V.
func TestShaderSourcesCompile(t *testing.T) {
	tests := []struct {
		name string
		wgsl string
	}{
		{"shaderwave", shaderwaveWGSL},
		{"raymarch", raymarchWGSL},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spirv := compileShader(t, tt.name, tt.wgsl)
			if len(spirv) < 4 {
				t.Fatalf("SPIR-V too short: %d bytes", len(spirv))
			}
			magic := binary.LittleEndian.Uint32(spirv[:4])
			if magic != 0x07230203 {
				t.Errorf("invalid SPIR-V magic: 0x%08X, want 0x07230203", magic)
			}
		})
	}
}

// TestPipelineEffectsRejectRasterSurface tests that the GPU demos refuse
// a raster context at init.
func TestPipelineEffectsRejectRasterSurface(t *testing.T) {
	b := surface.NewBroker(8, 8)
	raster, err := b.Acquire(surface.KindRaster)
	if err != nil {
		t.Fatalf("Acquire(raster) error = %v", err)
	}
	t.Cleanup(b.Close)

	for _, ctor := range []catalog.Constructor{NewShaderwave, NewRaymarch} {
		d := ctor()
		if err := d.Init(context.Background(), raster, 8, 8); err == nil {
			t.Errorf("%s.Init on raster surface error = nil, want kind mismatch", d.Meta().ID)
		}
	}
}

// TestPipelineMeta tests the GPU demos declare the pipeline kind.
func TestPipelineMeta(t *testing.T) {
	for _, d := range []struct {
		name string
		kind surface.Kind
	}{
		{"shaderwave", NewShaderwave().Meta().Kind},
		{"raymarch", NewRaymarch().Meta().Kind},
	} {
		if d.kind != surface.KindPipeline {
			t.Errorf("%s kind = %v, want %v", d.name, d.kind, surface.KindPipeline)
		}
	}
}

// TestPackTimeParams tests the 16-byte uniform layout: width, height,
// time as float32 seconds, 4 bytes of padding.
func TestPackTimeParams(t *testing.T) {
	buf := packTimeParams(640, 480, 1.5)
	if len(buf) != 16 {
		t.Fatalf("len = %d, want 16", len(buf))
	}
	if w := binary.LittleEndian.Uint32(buf[0:]); w != 640 {
		t.Errorf("width = %d, want 640", w)
	}
	if h := binary.LittleEndian.Uint32(buf[4:]); h != 480 {
		t.Errorf("height = %d, want 480", h)
	}
	ts := math.Float32frombits(binary.LittleEndian.Uint32(buf[8:]))
	if ts != 1.5 {
		t.Errorf("time_s = %v, want 1.5", ts)
	}
	if binary.LittleEndian.Uint32(buf[12:]) != 0 {
		t.Errorf("padding = %v, want zero", buf[12:])
	}
}
