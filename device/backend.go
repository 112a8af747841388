// SPDX-License-Identifier: EPL-2.0

package device

import "github.com/ik5/audmix/mixer"

// Renderer produces interleaved float32 output. Device implements it.
type Renderer interface {
	Render(out []float32)
}

// Backend pulls audio from a Renderer on its own goroutine at the cadence
// of the output hardware.
type Backend interface {
	// Start begins calling r in format f. It must not block.
	Start(f mixer.Format, r Renderer) error
	// Close stops the callbacks. No Render call is in flight once it
	// returns.
	Close() error
}
