// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"errors"
	"fmt"
)

// ErrContextClosed is returned when operating on a context whose native
// target has been destroyed (broker closed or rebuilt for a kind change).
var ErrContextClosed = errors.New("surface: context closed")

// ErrBrokerClosed is returned when acquiring from a closed broker.
var ErrBrokerClosed = errors.New("surface: broker closed")

// UnsupportedBackendError indicates the requested back-end kind cannot be
// created on this host. For KindPipeline this typically means no GPU
// adapter is available or no device opener was configured.
//
// The condition is fatal for the activation that requested the kind; the
// caller decides whether to retry with a different demo.
type UnsupportedBackendError struct {
	// Kind is the back-end that could not be created.
	Kind Kind

	// Err is the underlying cause, if any.
	Err error
}

func (e *UnsupportedBackendError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("surface: %s backend unsupported: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("surface: %s backend unsupported", e.Kind)
}

func (e *UnsupportedBackendError) Unwrap() error {
	return e.Err
}
