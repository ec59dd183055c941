// Command gallery renders demos from the built-in catalog headlessly,
// dumping one PNG per frame. It is also the reference wiring for the
// runner's public operations.
//
//	gallery -list
//	gallery -demo plasma -frames 120 -out frames/
//	gallery -demo raymarch -width 1280 -height 720
package main

import (
	"context"
	"flag"
	"fmt"
	"image/png"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gogpu/demoscene"
	"github.com/gogpu/demoscene/catalog"
	"github.com/gogpu/demoscene/effects"
	"github.com/gogpu/demoscene/runner"
	"github.com/gogpu/demoscene/surface"
)

func main() {
	var (
		list    = flag.Bool("list", false, "list demos and exit")
		demoID  = flag.String("demo", "plasma", "demo identifier")
		width   = flag.Int("width", 800, "surface width")
		height  = flag.Int("height", 600, "surface height")
		frames  = flag.Int("frames", 60, "number of frames to render")
		fps     = flag.Float64("fps", 60, "simulated frame rate")
		out     = flag.String("out", "frames", "output directory")
		verbose = flag.Bool("v", false, "verbose logging")
	)
	flag.Parse()

	if *verbose {
		demoscene.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	cat, err := catalog.New(effects.All())
	if err != nil {
		log.Fatalf("catalog: %v", err)
	}

	if *list {
		listDemos(cat)
		return
	}

	demo, ok := cat.Lookup(*demoID)
	if !ok {
		log.Fatalf("unknown demo %q (try -list)", *demoID)
	}

	broker := surface.NewBroker(*width, *height,
		surface.WithDeviceOpener(surface.OpenDefaultDevice))
	defer broker.Close()

	sched := runner.NewStepScheduler()
	run := runner.New(broker, sched)

	if err := run.Activate(context.Background(), demo); err != nil {
		log.Fatalf("activate %s: %v", *demoID, err)
	}
	defer run.Stop()

	if err := os.MkdirAll(*out, 0o755); err != nil {
		log.Fatalf("create output dir: %v", err)
	}

	stepMs := 1000 / *fps
	for i := 0; i < *frames; i++ {
		sched.Advance(stepMs)
		if err := saveFrame(broker, *out, i); err != nil {
			log.Fatalf("frame %d: %v", i, err)
		}
	}

	log.Printf("rendered %d frames of %s to %s (%dx%d)", *frames, *demoID, *out, *width, *height)
}

func listDemos(cat *catalog.Catalog) {
	for _, era := range cat.Eras() {
		fmt.Printf("%s:\n", era)
		for _, d := range cat.ByEra(era) {
			m := d.Meta()
			fmt.Printf("  %-12s %-16s (%d, %s) %s\n", m.ID, m.Name, m.Year, m.Kind, m.Description)
		}
	}
}

func saveFrame(broker *surface.Broker, dir string, n int) error {
	ctx := broker.Context()
	if ctx == nil {
		return fmt.Errorf("no surface")
	}
	path := filepath.Join(dir, fmt.Sprintf("frame_%04d.png", n))
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, ctx.Image())
}
