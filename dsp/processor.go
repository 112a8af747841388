// SPDX-License-Identifier: EPL-2.0

package dsp

// Processor transforms a block of interleaved samples in place. samples
// holds frames frames; the channel count is fixed when the stage is built.
//
// Process runs on the audio callback goroutine. It must not block, allocate
// or perform I/O.
type Processor interface {
	Process(samples []float32, frames int)
}

// Func adapts a plain function to a Processor. Use NewFunc so every stage has
// its own identity for Detach.
type Func struct {
	fn func(samples []float32, frames int)
}

func NewFunc(fn func(samples []float32, frames int)) *Func {
	return &Func{fn: fn}
}

func (f *Func) Process(samples []float32, frames int) {
	if f.fn != nil {
		f.fn(samples, frames)
	}
}
