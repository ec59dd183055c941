// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package runner

import (
	"sync"
	"time"
)

// Scheduler is a cancellable repeating frame task, the runner's stand-in
// for a host display-refresh signal.
//
// Schedule arranges for the frame callback to run once per refresh with
// the host timestamp in milliseconds; the next callback is always armed
// before the current one executes, so a Cancel issued from inside a
// callback still deterministically stops the following one. Callbacks for
// one scheduler are strictly sequential and never overlap. Cancel is
// cooperative: a callback already executing finishes.
//
// Timestamps come from the scheduler, not from a fixed interval; the
// runner never assumes how far apart callbacks are.
type Scheduler interface {
	// Schedule starts delivering frame callbacks. Any previously
	// scheduled callback is replaced.
	Schedule(frame func(nowMs float64))

	// Cancel stops the pending callback from firing. Idempotent.
	Cancel()

	// Now returns the scheduler's current timestamp in milliseconds.
	Now() float64
}

// defaultInterval approximates a 60 Hz display.
const defaultInterval = 16700 * time.Microsecond

// TickerScheduler drives frames from a wall-clock ticker. Timestamps are
// milliseconds since the scheduler was created.
type TickerScheduler struct {
	mu       sync.Mutex
	interval time.Duration
	epoch    time.Time
	stop     chan struct{}
}

var _ Scheduler = (*TickerScheduler)(nil)

// NewTickerScheduler creates a real-time scheduler. An interval of 0
// selects the default ~60 Hz rate.
func NewTickerScheduler(interval time.Duration) *TickerScheduler {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &TickerScheduler{
		interval: interval,
		epoch:    time.Now(),
	}
}

// Now returns milliseconds since the scheduler was created.
func (s *TickerScheduler) Now() float64 {
	return float64(time.Since(s.epoch)) / float64(time.Millisecond)
}

// Schedule starts a goroutine delivering one callback per tick.
func (s *TickerScheduler) Schedule(frame func(nowMs float64)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked()
	stop := make(chan struct{})
	s.stop = stop

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				// Re-check so a Cancel racing the tick wins.
				select {
				case <-stop:
					return
				default:
				}
				frame(s.Now())
			}
		}
	}()
}

// Cancel stops frame delivery. The callback goroutine exits before its
// next tick; a frame already executing finishes.
func (s *TickerScheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked()
}

func (s *TickerScheduler) cancelLocked() {
	if s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
}

// StepScheduler delivers frames only when explicitly advanced, with
// synthetic timestamps. It drives headless rendering (cmd/gallery) and
// tests that need exact clock control.
type StepScheduler struct {
	mu    sync.Mutex
	now   float64
	frame func(nowMs float64)
}

var _ Scheduler = (*StepScheduler)(nil)

// NewStepScheduler creates a scheduler whose clock starts at zero.
func NewStepScheduler() *StepScheduler {
	return &StepScheduler{}
}

// Now returns the synthetic clock in milliseconds.
func (s *StepScheduler) Now() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// Schedule installs the frame callback. Nothing fires until Advance or
// Step is called.
func (s *StepScheduler) Schedule(frame func(nowMs float64)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frame = frame
}

// Cancel uninstalls the frame callback.
func (s *StepScheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frame = nil
}

// Advance moves the clock forward by deltaMs and fires one frame if one
// is scheduled.
func (s *StepScheduler) Advance(deltaMs float64) {
	s.mu.Lock()
	s.now += deltaMs
	now := s.now
	frame := s.frame
	s.mu.Unlock()
	if frame != nil {
		frame(now)
	}
}

// Step sets the clock to nowMs and fires one frame if one is scheduled.
// The clock never moves backwards.
func (s *StepScheduler) Step(nowMs float64) {
	s.mu.Lock()
	if nowMs > s.now {
		s.now = nowMs
	}
	now := s.now
	frame := s.frame
	s.mu.Unlock()
	if frame != nil {
		frame(now)
	}
}

// SetNow moves the clock without firing a frame. Used to model time
// passing while paused or between activations.
func (s *StepScheduler) SetNow(nowMs float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if nowMs > s.now {
		s.now = nowMs
	}
}
