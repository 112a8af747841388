// SPDX-License-Identifier: EPL-2.0

package wave

import "errors"

var (
	// ErrNotReady is returned by operations on a wave that failed to load
	// or was unloaded.
	ErrNotReady = errors.New("wave: not ready")

	// ErrEmpty is returned when a decoder produced no frames.
	ErrEmpty = errors.New("wave: no samples decoded")
)
