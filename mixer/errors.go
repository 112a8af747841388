// SPDX-License-Identifier: EPL-2.0

package mixer

import "errors"

var (
	// ErrInvalidOperation is returned for requests that make no sense for
	// the receiver, such as feeding a stream with no free segment or
	// loading from an instance that is not ready.
	ErrInvalidOperation = errors.New("mixer: invalid operation")

	// ErrRegistryFull is logged when a voice cannot start because every
	// registry slot is taken.
	ErrRegistryFull = errors.New("mixer: active voice registry full")

	// ErrInvalidFormat is returned by New for a non-positive rate or
	// channel count.
	ErrInvalidFormat = errors.New("mixer: invalid output format")
)
