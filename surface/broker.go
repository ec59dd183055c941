// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

// Option configures a Broker.
type Option func(*Broker)

// WithDeviceOpener sets the opener used to create the GPU device the
// first time a pipeline context is requested. Without an opener,
// Acquire(KindPipeline) fails with UnsupportedBackendError.
func WithDeviceOpener(open DeviceOpener) Option {
	return func(b *Broker) { b.opener = open }
}

// Broker owns the native drawing target and produces at most one live
// [Context] at a time.
//
// It is a three-state machine: no context, raster context, pipeline
// context. Acquire is idempotent while the requested kind matches the
// current one, and rebuilds the target (destroying the old handle,
// keeping the current size) when the kind changes.
//
// Broker is not safe for concurrent use; the runner serializes access.
type Broker struct {
	width  int
	height int
	kind   Kind
	ctx    Context
	opener DeviceOpener
	dev    Device
	closed bool

	// stale records that a handle was destroyed without a replacement yet,
	// which happens when the target for the new kind cannot be built. The
	// next successful Acquire still counts as a rebuild so observers see
	// every handle replacement.
	stale bool

	observers []func(Context)
}

// NewBroker creates a broker for a native target of the given size.
// No context exists until the first Acquire.
func NewBroker(width, height int, opts ...Option) *Broker {
	b := &Broker{width: width, height: height}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// OnRebuild registers fn to be called with the new context whenever a
// kind change destroys and recreates the native target. Hosts use this to
// rebind input listeners so input dispatch is never silently lost.
func (b *Broker) OnRebuild(fn func(Context)) {
	b.observers = append(b.observers, fn)
}

// Size returns the current target dimensions in pixels.
func (b *Broker) Size() (width, height int) {
	return b.width, b.height
}

// Context returns the live context, or nil if none has been acquired.
func (b *Broker) Context() Context {
	return b.ctx
}

// Acquire returns a context of the requested kind.
//
// First call creates the native target. While the kind matches the
// current one the existing handle is returned unchanged. On a kind change
// the old target is destroyed, a new one is built at the current size,
// and rebuild observers fire with the new handle; the old handle is
// invalid from that point.
//
// For KindPipeline a GPU device is opened on first use and reused across
// later rebuilds. If the host cannot produce the requested kind, Acquire
// returns an UnsupportedBackendError and the previous context, if any, is
// already gone; the next Acquire that does produce a context counts as a
// rebuild and notifies observers, since the handle they knew is dead.
func (b *Broker) Acquire(kind Kind) (Context, error) {
	if b.closed {
		return nil, ErrBrokerClosed
	}
	if b.ctx != nil && b.kind == kind {
		return b.ctx, nil
	}

	rebuilt := b.ctx != nil || b.stale
	if b.ctx != nil {
		slogger().Debug("rebuilding native target", "from", b.kind, "to", kind)
		b.ctx.close()
		b.ctx = nil
		b.stale = true
	}

	switch kind {
	case KindRaster:
		b.ctx = newRaster(b.width, b.height)
	case KindPipeline:
		if b.dev == nil {
			if b.opener == nil {
				return nil, &UnsupportedBackendError{Kind: kind}
			}
			dev, err := b.opener()
			if err != nil {
				return nil, &UnsupportedBackendError{Kind: kind, Err: err}
			}
			b.dev = dev
		}
		b.ctx = newPipeline(b.dev, b.width, b.height)
	default:
		return nil, &UnsupportedBackendError{Kind: kind}
	}
	b.kind = kind
	b.stale = false

	if rebuilt {
		for _, fn := range b.observers {
			fn(b.ctx)
		}
	}
	return b.ctx, nil
}

// Resize updates the native target's pixel dimensions. Safe to call at
// high frequency; each call fully supersedes the previous one.
func (b *Broker) Resize(width, height int) error {
	b.width = width
	b.height = height
	if b.ctx == nil {
		return nil
	}
	return b.ctx.resize(width, height)
}

// Close destroys the live context and releases the GPU device, if any.
// The broker cannot be used afterwards.
func (b *Broker) Close() {
	if b.closed {
		return
	}
	b.closed = true
	if b.ctx != nil {
		b.ctx.close()
		b.ctx = nil
	}
	if b.dev != nil {
		b.dev.Close()
		b.dev = nil
	}
}
