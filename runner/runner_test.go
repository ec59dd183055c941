// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package runner

import (
	"context"
	"errors"
	"image"
	"sync"
	"testing"

	"github.com/gogpu/gg"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/demoscene"
	"github.com/gogpu/demoscene/surface"
)

// fakeDevice satisfies surface.Device without touching a GPU. Pipeline
// contexts only dereference the HAL handles when a compute program runs,
// which these tests never do.
type fakeDevice struct{}

func (fakeDevice) Device() hal.Device { return nil }
func (fakeDevice) Queue() hal.Queue   { return nil }
func (fakeDevice) Close()             {}

func fakeOpener() (surface.Device, error) {
	return fakeDevice{}, nil
}

type renderCall struct {
	logical float64
	delta   float64
}

// fakeDemo records every lifecycle call.
type fakeDemo struct {
	mu sync.Mutex

	id   string
	kind surface.Kind

	initErr      error
	initStarted  chan struct{} // closed when Init is entered, if non-nil
	initRelease  chan struct{} // Init blocks until closed, if non-nil
	ignoreCancel bool          // Init blocks on initRelease alone, deaf to ctx

	surf         surface.Context
	initCalls    int
	destroyCalls int
	renders      []renderCall
	resizes      [][2]int
	initWidth    int
	initHeight   int
}

func newFakeDemo(id string, kind surface.Kind) *fakeDemo {
	return &fakeDemo{id: id, kind: kind}
}

func (f *fakeDemo) Meta() demoscene.Meta {
	return demoscene.Meta{ID: f.id, Name: f.id, Kind: f.kind}
}

func (f *fakeDemo) Init(ctx context.Context, surf surface.Context, width, height int) error {
	f.mu.Lock()
	f.initCalls++
	f.surf = surf
	f.initWidth = width
	f.initHeight = height
	started := f.initStarted
	release := f.initRelease
	f.mu.Unlock()

	if started != nil {
		close(started)
	}
	if release != nil {
		if f.ignoreCancel {
			<-release
		} else {
			select {
			case <-release:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return f.initErr
}

func (f *fakeDemo) Render(logicalMs, deltaMs float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.renders = append(f.renders, renderCall{logical: logicalMs, delta: deltaMs})
}

func (f *fakeDemo) Resize(width, height int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resizes = append(f.resizes, [2]int{width, height})
}

func (f *fakeDemo) Destroy() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.destroyCalls++
}

func (f *fakeDemo) renderCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.renders)
}

func (f *fakeDemo) lastRender() renderCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.renders[len(f.renders)-1]
}

func newTestRunner(width, height int) (*Runner, *StepScheduler, *surface.Broker) {
	broker := surface.NewBroker(width, height, surface.WithDeviceOpener(fakeOpener))
	sched := NewStepScheduler()
	return New(broker, sched), sched, broker
}

// TestActivateEntersRunning tests the happy path: activate, tick, render.
func TestActivateEntersRunning(t *testing.T) {
	run, sched, _ := newTestRunner(10, 10)
	demo := newFakeDemo("a", surface.KindRaster)

	if err := run.Activate(context.Background(), demo); err != nil {
		t.Fatalf("Activate() error = %v", err)
	}
	if got := run.State(); got != StateRunning {
		t.Fatalf("State() = %v, want %v", got, StateRunning)
	}
	if demo.initCalls != 1 {
		t.Errorf("initCalls = %d, want 1", demo.initCalls)
	}
	if demo.initWidth != 10 || demo.initHeight != 10 {
		t.Errorf("init size = %dx%d, want 10x10", demo.initWidth, demo.initHeight)
	}

	sched.Step(16)
	if demo.renderCount() != 1 {
		t.Fatalf("renderCount = %d, want 1", demo.renderCount())
	}
	rc := demo.lastRender()
	if rc.logical != 16 || rc.delta != 16 {
		t.Errorf("render = (logical %v, delta %v), want (16, 16)", rc.logical, rc.delta)
	}
}

// TestActivateNil tests that a nil demo is rejected.
func TestActivateNil(t *testing.T) {
	run, _, _ := newTestRunner(10, 10)
	if err := run.Activate(context.Background(), nil); !errors.Is(err, ErrNilDemo) {
		t.Errorf("Activate(nil) error = %v, want ErrNilDemo", err)
	}
}

// TestPauseResumeAccounting tests the exact pause arithmetic: pause at
// t=1000, resume at t=1500, tick at t=1516 must see delta=16 and
// logical=1016.
func TestPauseResumeAccounting(t *testing.T) {
	run, sched, _ := newTestRunner(10, 10)
	demo := newFakeDemo("a", surface.KindRaster)
	if err := run.Activate(context.Background(), demo); err != nil {
		t.Fatalf("Activate() error = %v", err)
	}

	sched.Step(16)

	sched.SetNow(1000)
	run.Pause()
	if !run.IsPaused() {
		t.Fatal("IsPaused() = false after Pause()")
	}

	// Ticks while paused render nothing and do not advance the clock.
	sched.Step(1100)
	sched.Step(1400)
	if got := demo.renderCount(); got != 1 {
		t.Fatalf("renderCount while paused = %d, want 1", got)
	}

	sched.SetNow(1500)
	run.Resume()
	if run.IsPaused() {
		t.Fatal("IsPaused() = true after Resume()")
	}

	sched.Step(1516)
	rc := demo.lastRender()
	if rc.delta != 16 {
		t.Errorf("delta after resume = %v, want 16", rc.delta)
	}
	if rc.logical != 1016 {
		t.Errorf("logical after resume = %v, want 1016", rc.logical)
	}
}

// TestPauseIdempotent tests that a second Pause neither changes state nor
// double-counts the paused interval.
func TestPauseIdempotent(t *testing.T) {
	run, sched, _ := newTestRunner(10, 10)
	demo := newFakeDemo("a", surface.KindRaster)
	if err := run.Activate(context.Background(), demo); err != nil {
		t.Fatalf("Activate() error = %v", err)
	}

	sched.SetNow(1000)
	run.Pause()
	sched.SetNow(1200)
	run.Pause() // no-op; must not move the pause point
	if !run.IsPaused() {
		t.Fatal("IsPaused() = false after double Pause()")
	}

	sched.SetNow(1500)
	run.Resume()
	run.Resume() // no-op

	sched.Step(1516)
	rc := demo.lastRender()
	if rc.logical != 1016 {
		t.Errorf("logical = %v, want 1016 (exactly one 500ms interval accumulated)", rc.logical)
	}
}

// TestTogglePause tests pause/resume via the toggle.
func TestTogglePause(t *testing.T) {
	run, sched, _ := newTestRunner(10, 10)
	demo := newFakeDemo("a", surface.KindRaster)
	if err := run.Activate(context.Background(), demo); err != nil {
		t.Fatalf("Activate() error = %v", err)
	}

	sched.SetNow(100)
	run.TogglePause()
	if !run.IsPaused() {
		t.Fatal("IsPaused() = false after first toggle")
	}
	sched.SetNow(300)
	run.TogglePause()
	if run.IsPaused() {
		t.Fatal("IsPaused() = true after second toggle")
	}

	sched.Step(316)
	if rc := demo.lastRender(); rc.logical != 116 {
		t.Errorf("logical = %v, want 116", rc.logical)
	}

	// Toggle on Idle is a no-op.
	run.Stop()
	run.TogglePause()
	if got := run.State(); got != StateIdle {
		t.Errorf("State() after toggle on Idle = %v, want %v", got, StateIdle)
	}
}

// TestStopIdempotent tests that a double Stop destroys once and stays Idle.
func TestStopIdempotent(t *testing.T) {
	run, sched, _ := newTestRunner(10, 10)
	demo := newFakeDemo("a", surface.KindRaster)
	if err := run.Activate(context.Background(), demo); err != nil {
		t.Fatalf("Activate() error = %v", err)
	}

	run.Stop()
	run.Stop()
	if demo.destroyCalls != 1 {
		t.Errorf("destroyCalls = %d, want 1", demo.destroyCalls)
	}
	if got := run.State(); got != StateIdle {
		t.Errorf("State() = %v, want %v", got, StateIdle)
	}

	// Cancelled scheduler: a late tick renders nothing.
	sched.Step(100)
	if got := demo.renderCount(); got != 0 {
		t.Errorf("renderCount after Stop = %d, want 0", got)
	}
}

// TestStopClearsSurface tests that stopping blanks the frame so no stale
// image stays visible.
func TestStopClearsSurface(t *testing.T) {
	run, sched, broker := newTestRunner(8, 8)
	demo := newFakeDemo("a", surface.KindRaster)
	if err := run.Activate(context.Background(), demo); err != nil {
		t.Fatalf("Activate() error = %v", err)
	}

	raster := broker.Context().(*surface.Raster)
	raster.Canvas().SetPixel(3, 3, gg.RGB(1, 0, 0))
	sched.Step(16)

	run.Stop()
	img := broker.Context().Image().(*image.RGBA)
	if _, _, _, a := img.At(3, 3).RGBA(); a != 0 {
		t.Errorf("pixel alpha after Stop = %d, want 0 (blank frame)", a)
	}
}

// TestActivateSupersede tests that a second activation abandons a blocked
// first one: B inits exactly once, A never renders, A is not destroyed
// because its init never resolved.
func TestActivateSupersede(t *testing.T) {
	run, sched, _ := newTestRunner(10, 10)

	demoA := newFakeDemo("a", surface.KindRaster)
	demoA.initStarted = make(chan struct{})
	demoA.initRelease = make(chan struct{})
	demoB := newFakeDemo("b", surface.KindRaster)

	errA := make(chan error, 1)
	go func() {
		errA <- run.Activate(context.Background(), demoA)
	}()
	<-demoA.initStarted

	if err := run.Activate(context.Background(), demoB); err != nil {
		t.Fatalf("Activate(B) error = %v", err)
	}
	if err := <-errA; !errors.Is(err, ErrActivationSuperseded) {
		t.Fatalf("Activate(A) error = %v, want ErrActivationSuperseded", err)
	}

	sched.Step(16)
	if demoB.initCalls != 1 {
		t.Errorf("B.initCalls = %d, want 1", demoB.initCalls)
	}
	if demoA.renderCount() != 0 {
		t.Errorf("A.renderCount = %d, want 0", demoA.renderCount())
	}
	if demoA.destroyCalls != 0 {
		t.Errorf("A.destroyCalls = %d, want 0 (init never resolved)", demoA.destroyCalls)
	}
	if demoB.renderCount() != 1 {
		t.Errorf("B.renderCount = %d, want 1", demoB.renderCount())
	}
}

// TestActivateSupersedeAfterInitResolved tests that an abandoned demo
// whose init had already completed does receive Destroy.
func TestActivateSupersedeAfterInitResolved(t *testing.T) {
	run, _, _ := newTestRunner(10, 10)

	demoA := newFakeDemo("a", surface.KindRaster)
	demoA.initStarted = make(chan struct{})
	demoA.initRelease = make(chan struct{})
	// A models an init with no cancellation points: Activate(B) cancels
	// A's init context, but A's init keeps going and resolves cleanly.
	demoA.ignoreCancel = true
	demoB := newFakeDemo("b", surface.KindRaster)

	errA := make(chan error, 1)
	go func() {
		errA <- run.Activate(context.Background(), demoA)
	}()
	<-demoA.initStarted

	if err := run.Activate(context.Background(), demoB); err != nil {
		t.Fatalf("Activate(B) error = %v", err)
	}

	// A's init now resolves successfully, after B already took over.
	close(demoA.initRelease)
	if err := <-errA; !errors.Is(err, ErrActivationSuperseded) {
		t.Fatalf("Activate(A) error = %v, want ErrActivationSuperseded", err)
	}
	if demoA.destroyCalls != 1 {
		t.Errorf("A.destroyCalls = %d, want 1 (init resolved before supersede)", demoA.destroyCalls)
	}
	if got := run.Active(); got != demoscene.Demo(demoB) {
		t.Errorf("Active() = %v, want demo B", got)
	}
}

// TestActivateInitError tests that a failing init leaves the runner Idle.
func TestActivateInitError(t *testing.T) {
	run, sched, _ := newTestRunner(10, 10)
	demo := newFakeDemo("a", surface.KindRaster)
	demo.initErr = errors.New("shader compile failed")

	err := run.Activate(context.Background(), demo)
	if err == nil || !errors.Is(err, demo.initErr) {
		t.Fatalf("Activate() error = %v, want wrapped init error", err)
	}
	if got := run.State(); got != StateIdle {
		t.Errorf("State() = %v, want %v", got, StateIdle)
	}
	if demo.destroyCalls != 0 {
		t.Errorf("destroyCalls = %d, want 0", demo.destroyCalls)
	}
	sched.Step(16)
	if demo.renderCount() != 0 {
		t.Errorf("renderCount = %d, want 0", demo.renderCount())
	}
}

// TestUnsupportedBackend tests that a pipeline demo on a broker without a
// device opener fails cleanly and the runner stays Idle.
func TestUnsupportedBackend(t *testing.T) {
	broker := surface.NewBroker(10, 10) // no opener
	run := New(broker, NewStepScheduler())
	demo := newFakeDemo("gpu", surface.KindPipeline)

	err := run.Activate(context.Background(), demo)
	var ube *surface.UnsupportedBackendError
	if !errors.As(err, &ube) {
		t.Fatalf("Activate() error = %v, want UnsupportedBackendError", err)
	}
	if ube.Kind != surface.KindPipeline {
		t.Errorf("error Kind = %v, want %v", ube.Kind, surface.KindPipeline)
	}
	if demo.initCalls != 0 {
		t.Errorf("initCalls = %d, want 0", demo.initCalls)
	}
	if got := run.State(); got != StateIdle {
		t.Errorf("State() = %v, want %v", got, StateIdle)
	}
}

// TestBackendSwitchScenario tests the full switch sequence: raster demo,
// resize, then a pipeline demo. The old demo sees exactly one resize and
// one destroy, the surface is rebuilt once, and the new demo inits at the
// resized dimensions.
func TestBackendSwitchScenario(t *testing.T) {
	broker := surface.NewBroker(10, 10, surface.WithDeviceOpener(fakeOpener))
	rebuilds := 0
	broker.OnRebuild(func(surface.Context) { rebuilds++ })
	run := New(broker, NewStepScheduler())

	demoA := newFakeDemo("a", surface.KindRaster)
	demoB := newFakeDemo("b", surface.KindPipeline)

	if err := run.Activate(context.Background(), demoA); err != nil {
		t.Fatalf("Activate(A) error = %v", err)
	}
	if err := run.Resize(20, 20); err != nil {
		t.Fatalf("Resize() error = %v", err)
	}
	if len(demoA.resizes) != 1 || demoA.resizes[0] != [2]int{20, 20} {
		t.Errorf("A.resizes = %v, want [[20 20]]", demoA.resizes)
	}

	if err := run.Activate(context.Background(), demoB); err != nil {
		t.Fatalf("Activate(B) error = %v", err)
	}
	if demoA.destroyCalls != 1 {
		t.Errorf("A.destroyCalls = %d, want 1", demoA.destroyCalls)
	}
	if rebuilds != 1 {
		t.Errorf("surface rebuilds = %d, want 1", rebuilds)
	}
	if demoB.initWidth != 20 || demoB.initHeight != 20 {
		t.Errorf("B init size = %dx%d, want 20x20", demoB.initWidth, demoB.initHeight)
	}
	if got := demoB.surf.Kind(); got != surface.KindPipeline {
		t.Errorf("B surface kind = %v, want %v", got, surface.KindPipeline)
	}
}

// TestSameKindReactivationReusesSurface tests that switching between two
// raster demos never rebuilds the native target.
func TestSameKindReactivationReusesSurface(t *testing.T) {
	broker := surface.NewBroker(10, 10)
	rebuilds := 0
	broker.OnRebuild(func(surface.Context) { rebuilds++ })
	run := New(broker, NewStepScheduler())

	demoA := newFakeDemo("a", surface.KindRaster)
	demoB := newFakeDemo("b", surface.KindRaster)
	if err := run.Activate(context.Background(), demoA); err != nil {
		t.Fatalf("Activate(A) error = %v", err)
	}
	first := broker.Context()
	if err := run.Activate(context.Background(), demoB); err != nil {
		t.Fatalf("Activate(B) error = %v", err)
	}
	if rebuilds != 0 {
		t.Errorf("surface rebuilds = %d, want 0", rebuilds)
	}
	if broker.Context() != first {
		t.Error("raster context changed on same-kind reactivation")
	}
	if demoB.surf != first {
		t.Error("B was handed a different context than the broker's")
	}
}

// TestRestart tests that Restart runs a fresh activation of the current
// demo and is a no-op when Idle.
func TestRestart(t *testing.T) {
	run, sched, _ := newTestRunner(10, 10)
	demo := newFakeDemo("a", surface.KindRaster)
	if err := run.Activate(context.Background(), demo); err != nil {
		t.Fatalf("Activate() error = %v", err)
	}
	sched.Step(100)

	if err := run.Restart(context.Background()); err != nil {
		t.Fatalf("Restart() error = %v", err)
	}
	if demo.initCalls != 2 {
		t.Errorf("initCalls = %d, want 2", demo.initCalls)
	}
	if demo.destroyCalls != 1 {
		t.Errorf("destroyCalls = %d, want 1", demo.destroyCalls)
	}

	// The logical clock restarts from the activation point.
	sched.Step(116)
	if rc := demo.lastRender(); rc.delta != 16 {
		t.Errorf("delta after restart = %v, want 16", rc.delta)
	}

	run.Stop()
	if err := run.Restart(context.Background()); err != nil {
		t.Errorf("Restart() on Idle error = %v, want nil", err)
	}
	if demo.initCalls != 2 {
		t.Errorf("initCalls after Idle restart = %d, want 2", demo.initCalls)
	}
}

// hookDemo adds the three optional input hooks to fakeDemo.
type hookDemo struct {
	fakeDemo
	moves   [][2]float64
	presses []int
	keys    []string
}

func (h *hookDemo) OnPointerMove(x, y float64)        { h.moves = append(h.moves, [2]float64{x, y}) }
func (h *hookDemo) OnPointerDown(_, _ float64, b int) { h.presses = append(h.presses, b) }
func (h *hookDemo) OnKeyDown(key string)              { h.keys = append(h.keys, key) }

// TestInputForwarding tests that events reach demos that implement the
// hooks and are dropped otherwise.
func TestInputForwarding(t *testing.T) {
	run, _, _ := newTestRunner(10, 10)

	plain := newFakeDemo("plain", surface.KindRaster)
	if err := run.Activate(context.Background(), plain); err != nil {
		t.Fatalf("Activate() error = %v", err)
	}
	// No hooks: must not panic.
	run.PointerMove(1, 2)
	run.PointerDown(1, 2, 0)
	run.KeyDown("x")

	hooked := &hookDemo{fakeDemo: fakeDemo{id: "hooked", kind: surface.KindRaster}}
	if err := run.Activate(context.Background(), hooked); err != nil {
		t.Fatalf("Activate() error = %v", err)
	}
	run.PointerMove(3, 4)
	run.PointerDown(5, 6, 1)
	run.KeyDown("p")

	if len(hooked.moves) != 1 || hooked.moves[0] != [2]float64{3, 4} {
		t.Errorf("moves = %v, want [[3 4]]", hooked.moves)
	}
	if len(hooked.presses) != 1 || hooked.presses[0] != 1 {
		t.Errorf("presses = %v, want [1]", hooked.presses)
	}
	if len(hooked.keys) != 1 || hooked.keys[0] != "p" {
		t.Errorf("keys = %v, want [p]", hooked.keys)
	}

	// Events on an Idle runner are dropped.
	run.Stop()
	run.PointerMove(9, 9)
	if len(hooked.moves) != 1 {
		t.Errorf("moves after Stop = %v, want unchanged", hooked.moves)
	}
}

// TestDeltaNeverNegative tests that a timestamp glitch clamps delta to 0.
func TestDeltaNeverNegative(t *testing.T) {
	run, sched, _ := newTestRunner(10, 10)
	demo := newFakeDemo("a", surface.KindRaster)

	sched.SetNow(500)
	if err := run.Activate(context.Background(), demo); err != nil {
		t.Fatalf("Activate() error = %v", err)
	}
	// Step never rewinds the clock, so drive the installed callback with
	// a stale timestamp directly, as a jittery host would.
	sched.Step(500)
	run.tick(490)
	if rc := demo.lastRender(); rc.delta != 0 {
		t.Errorf("delta = %v, want 0 for a backwards timestamp", rc.delta)
	}
}
