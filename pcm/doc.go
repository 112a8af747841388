// SPDX-License-Identifier: EPL-2.0

// Package pcm provides reference counted PCM sample storage.
//
// A Buffer holds raw interleaved samples in one of three layouts, selected by
// Format.BitDepth:
//   - 8: unsigned 8-bit, 128 is silence
//   - 16: signed 16-bit little endian
//   - 32: IEEE 754 float32 little endian
//
// The format of a Buffer never changes after Allocate. Readers always receive
// float32 samples in [-1.0, 1.0] regardless of the storage layout:
//
//	buf, err := pcm.Allocate(44100, pcm.Format{SampleRate: 44100, BitDepth: 16, Channels: 2})
//	if err != nil {
//	    // pcm.ErrAllocation or pcm.ErrInvalidFormat
//	}
//	defer buf.Release()
//
//	out := make([]float32, 512*2)
//	n := buf.Read(0, 512, out)
//
// # Ownership
//
// A new Buffer has one reference. Every additional owner calls Retain and
// later Release; the storage is dropped when the last reference goes away.
// An Accountant can be attached to observe live allocations.
//
// # Ring buffers
//
// Buffers allocated WithRing wrap offsets modulo their frame count on both
// Read and Write, which is what streaming windows are built on.
package pcm
