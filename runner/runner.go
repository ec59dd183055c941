// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package runner hosts one demo at a time on a brokered surface and gives
// it a uniform timing, pause and resize contract regardless of which
// back-end the demo draws with.
//
// The runner is a three-state machine (Idle, Running, Paused). Demos see
// a logical clock: wall-clock milliseconds with every paused interval
// subtracted, so an effect resumes exactly where it left off.
package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/demoscene"
	"github.com/gogpu/demoscene/surface"
)

// Errors returned by Runner operations.
var (
	// ErrActivationSuperseded is returned from Activate when a newer
	// activation arrived before this one finished initializing. The
	// abandoned demo never entered Running.
	ErrActivationSuperseded = errors.New("runner: activation superseded")

	// ErrNilDemo is returned when Activate is called with a nil demo.
	ErrNilDemo = errors.New("runner: nil demo")
)

// State is the runner lifecycle state.
type State uint8

const (
	// StateIdle means no demo is active.
	StateIdle State = iota

	// StateRunning means a demo is active and rendering each tick.
	StateRunning

	// StatePaused means a demo is active but rendering is suppressed and
	// the logical clock is frozen. The scheduler keeps ticking.
	StatePaused
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// Runner owns the scheduling loop and the active demo's lifecycle.
//
// All operations are safe for concurrent use; the surface and the active
// demo are only ever touched with the runner's lock held, so ticks are
// strictly sequential and a Stop issued during a tick waits for the
// in-flight render to finish.
type Runner struct {
	mu     sync.Mutex
	broker *surface.Broker
	sched  Scheduler

	state  State
	active demoscene.Demo

	// seq guards activation serialization: each Activate bumps it, and an
	// activation whose init outlives its sequence number is abandoned.
	seq        uint64
	cancelInit context.CancelFunc

	// Clock bookkeeping, all in scheduler milliseconds.
	lastWallMs    float64
	pausedAtMs    float64
	pausedTotalMs float64
}

// New creates a runner over the given broker and scheduler.
func New(broker *surface.Broker, sched Scheduler) *Runner {
	return &Runner{broker: broker, sched: sched}
}

// Activate makes demo the active unit.
//
// Any current demo is fully deactivated first: the pending tick is
// cancelled, Destroy is called, and the outgoing context is cleared. A
// context of the demo's declared kind is then acquired (surfacing
// surface.UnsupportedBackendError and leaving the runner Idle) and Init
// is called with the current surface size.
//
// Init may block. Activations are serialized: if another Activate arrives
// before this one's Init returns, this activation is abandoned, its init
// context is cancelled, and Activate returns ErrActivationSuperseded. An
// abandoned demo receives Destroy only if its Init had already completed.
//
// On success the paused-duration accumulator is reset, the current
// timestamp becomes the loop's reference point, and the runner enters
// Running with the first tick scheduled.
func (r *Runner) Activate(ctx context.Context, demo demoscene.Demo) error {
	if demo == nil {
		return ErrNilDemo
	}
	meta := demo.Meta()

	r.mu.Lock()
	r.deactivateLocked()
	r.seq++
	seq := r.seq

	surf, err := r.broker.Acquire(meta.Kind)
	if err != nil {
		r.mu.Unlock()
		return err
	}
	width, height := r.broker.Size()
	initCtx, cancel := context.WithCancel(ctx)
	r.cancelInit = cancel
	r.mu.Unlock()

	// Init runs unlocked so a newer Activate can supersede it.
	initErr := demo.Init(initCtx, surf, width, height)

	r.mu.Lock()
	defer r.mu.Unlock()
	if seq != r.seq {
		if initErr == nil {
			demo.Destroy()
		}
		return ErrActivationSuperseded
	}
	r.cancelInit = nil
	cancel()
	if initErr != nil {
		return fmt.Errorf("runner: init %q: %w", meta.ID, initErr)
	}

	r.active = demo
	r.pausedTotalMs = 0
	r.lastWallMs = r.sched.Now()
	r.state = StateRunning
	r.sched.Schedule(r.tick)
	demoscene.Logger().Info("demo activated",
		"id", meta.ID, "kind", meta.Kind.String(), "width", width, "height", height)
	return nil
}

// tick renders one frame. The scheduler has already armed the next
// callback, so a Stop issued from render handling still cancels it.
func (r *Runner) tick(nowMs float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateRunning {
		return
	}
	delta := nowMs - r.lastWallMs
	if delta < 0 {
		delta = 0
	}
	r.lastWallMs = nowMs
	r.active.Render(nowMs-r.pausedTotalMs, delta)
}

// Pause freezes the logical clock and suppresses rendering. Only
// effective from Running; calling while already paused is a no-op.
func (r *Runner) Pause() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateRunning {
		return
	}
	r.pausedAtMs = r.sched.Now()
	r.state = StatePaused
	demoscene.Logger().Debug("paused", "at_ms", r.pausedAtMs)
}

// Resume unfreezes the logical clock. The paused interval is added to the
// accumulator and the delta reference moves to the resume point, so the
// next frame's delta does not include time spent paused. Only effective
// from Paused.
func (r *Runner) Resume() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resumeLocked()
}

func (r *Runner) resumeLocked() {
	if r.state != StatePaused {
		return
	}
	now := r.sched.Now()
	r.pausedTotalMs += now - r.pausedAtMs
	r.lastWallMs = now
	r.state = StateRunning
	demoscene.Logger().Debug("resumed", "paused_total_ms", r.pausedTotalMs)
}

// TogglePause pauses when running and resumes when paused.
func (r *Runner) TogglePause() {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch r.state {
	case StateRunning:
		r.pausedAtMs = r.sched.Now()
		r.state = StatePaused
	case StatePaused:
		r.resumeLocked()
	case StateIdle:
	}
}

// Stop deactivates the current demo: the pending tick is cancelled, the
// demo is destroyed, and the context is cleared to a blank frame so no
// stale image is left visible. No-op on Idle.
func (r *Runner) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == StateIdle {
		return
	}
	r.deactivateLocked()
}

func (r *Runner) deactivateLocked() {
	r.sched.Cancel()
	if r.cancelInit != nil {
		r.cancelInit()
		r.cancelInit = nil
	}
	if r.active != nil {
		id := r.active.Meta().ID
		r.active.Destroy()
		r.active = nil
		if c := r.broker.Context(); c != nil {
			c.Clear()
		}
		demoscene.Logger().Info("demo deactivated", "id", id)
	}
	r.state = StateIdle
}

// Restart re-activates the current demo from scratch: Destroy, then a
// fresh Init. No-op on Idle.
func (r *Runner) Restart(ctx context.Context) error {
	r.mu.Lock()
	demo := r.active
	r.mu.Unlock()
	if demo == nil {
		return nil
	}
	return r.Activate(ctx, demo)
}

// Resize updates the surface's pixel dimensions and forwards the new size
// to the active demo. Runner state is unchanged. Safe to call at high
// frequency; each call fully supersedes the previous one.
func (r *Runner) Resize(width, height int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.broker.Resize(width, height); err != nil {
		return err
	}
	if r.active != nil {
		r.active.Resize(width, height)
	}
	return nil
}

// IsPaused reports whether the runner is in the Paused state.
func (r *Runner) IsPaused() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state == StatePaused
}

// State returns the current lifecycle state.
func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Active returns the active demo, or nil when Idle.
func (r *Runner) Active() demoscene.Demo {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// PointerMove forwards pointer motion to the active demo if it implements
// demoscene.PointerMover. Events are delivered immediately, not queued to
// tick boundaries.
func (r *Runner) PointerMove(x, y float64) {
	if m, ok := r.Active().(demoscene.PointerMover); ok {
		m.OnPointerMove(x, y)
	}
}

// PointerDown forwards a pointer press to the active demo if it
// implements demoscene.PointerPresser.
func (r *Runner) PointerDown(x, y float64, button int) {
	if p, ok := r.Active().(demoscene.PointerPresser); ok {
		p.OnPointerDown(x, y, button)
	}
}

// KeyDown forwards a key press to the active demo if it implements
// demoscene.KeyPresser.
func (r *Runner) KeyDown(key string) {
	if k, ok := r.Active().(demoscene.KeyPresser); ok {
		k.OnKeyDown(key)
	}
}
