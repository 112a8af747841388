// SPDX-License-Identifier: EPL-2.0

// Package vorbis provides Ogg Vorbis audio file decoding.
//
// This package uses github.com/jfreymuth/oggvorbis to decode Ogg Vorbis files.
//
// # Decoding Vorbis Files
//
//	file, _ := os.Open("audio.ogg")
//	source, err := vorbis.Decoder{}.Decode(file)
//	if err != nil {
//	    // Handle error
//	}
//
//	buf := make([]float32, 4096)
//	n, err := source.ReadSamples(buf)
//
// Samples are decoded straight into dst, no intermediate buffer is used.
//
// # Output Format
//
//   - Sample format: float32 in range [-1.0, 1.0]
//   - Channels and sample rate: as declared by the stream
//
// # Seeking
//
// When the input is an io.ReadSeeker oggvorbis scans the stream length up
// front; the source then implements audio.Lengther and audio.FrameSeeker.
// For other readers Length is 0 and SeekFrame returns audio.ErrNotSeekable.
package vorbis
