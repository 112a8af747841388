// SPDX-License-Identifier: EPL-2.0

// Package mixer sums playing voices into an interleaved float32 output.
//
// Three kinds of voice share one Voice core (state, volume, pitch, pan,
// processor chain and cursor):
//
//   - Sound plays a fully resident pcm.Buffer. Alias creates more sounds
//     over the same buffer, each with its own voice.
//   - Stream plays PCM the caller pushes with Update or supplies from a
//     Callback.
//   - Track decodes a long source incrementally into a two segment window
//     that the caller refills with Update.
//
// Mixer.Mix is the body of the audio callback. It is called from the
// backend goroutine while the application plays, stops and refills voices
// from its own goroutine:
//
//	m, _ := mixer.New(mixer.Format{SampleRate: 48000, Channels: 2})
//	snd, _ := mixer.NewSound(m, w)
//	snd.SetPan(0.25)
//	snd.Play()
//
//	out := make([]float32, 2*512)
//	m.Mix(out) // on the audio goroutine
package mixer
