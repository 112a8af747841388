// SPDX-License-Identifier: EPL-2.0

package pcm

import "errors"

var (
	// ErrAllocation is returned when a buffer cannot be allocated: zero
	// frames or a size above the configured limit.
	ErrAllocation = errors.New("pcm: allocation failed")

	// ErrInvalidFormat is returned for unsupported rate, depth or channel values.
	ErrInvalidFormat = errors.New("pcm: invalid format")

	// ErrOutOfRange is returned by Write on a linear buffer when the
	// destination range does not fit.
	ErrOutOfRange = errors.New("pcm: offset out of range")

	// ErrReleased is returned when writing to a buffer whose storage was freed.
	ErrReleased = errors.New("pcm: buffer released")
)
