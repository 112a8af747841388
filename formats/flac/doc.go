// SPDX-License-Identifier: EPL-2.0

// Package flac provides FLAC decoding through github.com/mewkiz/flac.
//
//	file, _ := os.Open("audio.flac")
//	source, err := flac.Decoder{}.Decode(file)
//
// Samples of any bit depth FLAC allows are scaled to float32 in [-1, 1].
// The source reports the STREAMINFO sample count as its length. Given an
// io.ReadSeeker it is opened with flac.NewSeek and implements
// audio.FrameSeeker, landing on the exact frame even when it falls in the
// middle of a FLAC block.
package flac
