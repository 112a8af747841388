// SPDX-License-Identifier: EPL-2.0

// Package dsp provides pluggable processing stages for interleaved float32
// sample blocks and the ordered chain that runs them.
//
// A stage implements Processor. Its state belongs to the stage, never to the
// chain, so the same stage value can be attached to a voice chain or to the
// global post-mix chain:
//
//	lp := dsp.NewLowPass(0.3, 2)
//	chain.Attach(lp)
//	chain.Process(samples, frames)
//	chain.Detach(lp)
//
// Chains are safe for concurrent use: Attach and Detach replace the stage
// list atomically, and Process never blocks or allocates, so it can run in
// an audio callback while another goroutine edits the chain.
package dsp
