// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package surface brokers the shared drawing surface between the two
// rendering back-ends a demo may require: an immediate-mode raster canvas
// (backed by gg) and a persistent GPU compute pipeline (backed by
// gogpu/wgpu).
//
// The two back-ends cannot share one native target, so a [Broker] owns at
// most one live [Context] at a time. Acquire is idempotent while the
// requested [Kind] matches the current one; a kind change destroys the
// native target and rebuilds it at the current size, invalidating any
// previously returned handle. Hosts that bind input listeners to the
// native target register a rebuild observer to rebind them.
//
// A Context is exclusively owned by its broker. Demos receive it as a
// borrowed reference for the duration of one activation.
package surface
