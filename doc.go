// SPDX-License-Identifier: EPL-2.0

// Package audmix is a real-time audio mixing engine.
//
// Audio comes from three kinds of voices, all mixed into one output:
//   - a Sound plays a fully decoded buffer; aliases of a sound share the
//     buffer and play independently
//   - a Stream plays data the application pushes, segment by segment
//   - a Track decodes a file or memory blob incrementally while it plays
//
// Every voice has its own volume, pitch, pan and processor chain. The mixed
// block passes a global chain and the master volume before it reaches the
// backend.
//
// # Packages
//
//   - audio: Source, Decoder and the codec Registry, plus resampling and
//     channel conversion
//   - formats: WAV, MP3, Ogg Vorbis, FLAC and AIFF decoders
//   - pcm: reference counted sample buffers
//   - wave: whole-file audio with copy, crop, convert and export
//   - dsp: processors and chains
//   - mixer: voices and the mixing loop
//   - device: a mixer bound to an output backend
//   - backend/oto, backend/headless: system output and a timer driven sink
//   - config: YAML and environment configuration
//
// # Quick Start
//
//	d, err := device.Open(config.Default().Audio, oto.New())
//	if err != nil {
//		return err
//	}
//	defer d.Close()
//
//	music, err := d.LoadTrack("music.ogg")
//	if err != nil {
//		return err
//	}
//	music.SetLooping(true)
//	music.Play()
//
// ConvertFile offers the offline path: decode, resample, remix channels and
// write a WAV file.
package audmix
