// SPDX-License-Identifier: EPL-2.0

package dsp

import (
	"math"
	"sync/atomic"
)

// Gain scales every sample by a level that may be changed while attached.
type Gain struct {
	level atomic.Uint32
}

func NewGain(level float32) *Gain {
	g := &Gain{}
	g.SetLevel(level)
	return g
}

func (g *Gain) SetLevel(level float32) {
	if level < 0 || math.IsNaN(float64(level)) {
		level = 0
	}
	g.level.Store(math.Float32bits(level))
}

func (g *Gain) Level() float32 { return math.Float32frombits(g.level.Load()) }

func (g *Gain) Process(samples []float32, frames int) {
	level := g.Level()
	for i := range samples {
		samples[i] *= level
	}
}

// LowPass is a one-pole low-pass filter:
// y[n] = alpha * x[n] + (1-alpha) * y[n-1]
type LowPass struct {
	alpha    float32
	channels int
	state    []float32
}

// NewLowPass builds a filter for interleaved blocks of the given channel
// count. alpha is clamped to (0, 1]; 1 passes the signal unchanged.
func NewLowPass(alpha float32, channels int) *LowPass {
	if alpha <= 0 {
		alpha = 0.01
	}
	if alpha > 1 {
		alpha = 1
	}
	channels = max(channels, 1)
	return &LowPass{
		alpha:    alpha,
		channels: channels,
		state:    make([]float32, channels),
	}
}

func (l *LowPass) Process(samples []float32, frames int) {
	frames = min(frames, len(samples)/l.channels)
	for f := range frames {
		base := f * l.channels
		for c := range l.channels {
			y := l.alpha*samples[base+c] + (1-l.alpha)*l.state[c]
			l.state[c] = y
			samples[base+c] = y
		}
	}
}

// PeakMeter observes the largest absolute sample seen since the last Reset
// without changing the signal.
type PeakMeter struct {
	peak atomic.Uint32
}

func (m *PeakMeter) Process(samples []float32, frames int) {
	peak := m.Peak()
	for _, s := range samples {
		if s < 0 {
			s = -s
		}
		if s > peak {
			peak = s
		}
	}
	m.peak.Store(math.Float32bits(peak))
}

func (m *PeakMeter) Peak() float32 { return math.Float32frombits(m.peak.Load()) }

func (m *PeakMeter) Reset() { m.peak.Store(0) }
