// SPDX-License-Identifier: EPL-2.0

// Package wave holds fully decoded audio in memory.
//
// A Wave is loaded from a file, from an in-memory encoded image or from raw
// samples, and can be copied, cropped, converted to another format and
// exported as WAV. The storage is a reference counted pcm.Buffer, so many
// sounds may share one wave's data while the wave itself is edited or
// unloaded.
//
//	reg := formats.NewRegistry()
//	w, err := wave.Load(reg, "shot.ogg")
//	if err != nil {
//	    // w is not ready; every method is still safe to call
//	}
//	defer w.Unload()
//
//	_ = w.Convert(pcm.Format{SampleRate: 44100, BitDepth: 16, Channels: 2})
//	_ = w.Export("shot.wav")
package wave
