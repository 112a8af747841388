// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

var (
	ErrInvalidDstSize = errors.New("dst size must be multiple of channels")

	// ErrFormatUnsupported is returned when no decoder is registered for a
	// format key or the decoder rejected the input.
	ErrFormatUnsupported = errors.New("format unsupported")

	// ErrNotSeekable is returned when a source can neither seek natively nor
	// be reopened.
	ErrNotSeekable = errors.New("source is not seekable")

	ErrInvalidChannels = errors.New("channel count must be positive")
)
