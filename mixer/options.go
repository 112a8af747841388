// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"github.com/ik5/audmix/internal/logger"
	"github.com/ik5/audmix/internal/monitoring"
	"github.com/ik5/audmix/pcm"
)

const (
	DefaultBlockFrames   = 512
	DefaultMaxVoices     = 64
	DefaultSegmentFrames = 4096
)

// Option configures a Mixer.
type Option func(*Mixer)

// WithBlockFrames sets how many frames are rendered per block. Master volume
// and voice parameters are sampled once per block.
func WithBlockFrames(n int) Option {
	return func(m *Mixer) {
		if n > 0 {
			m.blockFrames = n
		}
	}
}

// WithMaxVoices sets the capacity of the active voice registry.
func WithMaxVoices(n int) Option {
	return func(m *Mixer) {
		if n > 0 {
			m.maxVoices = n
		}
	}
}

// WithSegmentFrames sets the default segment size of stream and track
// windows.
func WithSegmentFrames(n int) Option {
	return func(m *Mixer) {
		if n > 0 {
			m.segmentFrames = n
		}
	}
}

// WithAccountant charges window storage to a.
func WithAccountant(a *pcm.Accountant) Option {
	return func(m *Mixer) {
		m.acct = a
	}
}

func WithLogger(l *logger.Logger) Option {
	return func(m *Mixer) {
		m.log = l
	}
}

func WithMetrics(mt *monitoring.Metrics) Option {
	return func(m *Mixer) {
		m.metrics = mt
	}
}
