// SPDX-License-Identifier: EPL-2.0

// Package mp3 provides MP3 audio file decoding.
//
// This package uses github.com/hajimehoshi/go-mp3 to decode MP3 files.
//
// # Decoding MP3 Files
//
//	file, _ := os.Open("audio.mp3")
//	source, err := mp3.Decoder{}.Decode(file)
//	if err != nil {
//	    // Handle error
//	}
//
//	buf := make([]float32, 4096)
//	n, err := source.ReadSamples(buf)
//
// # Output Format
//
//   - Sample format: float32 in range [-1.0, 1.0], from 16-bit PCM
//   - Channels: always 2, mono files are duplicated by go-mp3
//   - Sample rate: whatever the first frame declares
//
// ReadSamples always returns whole frames, bytes of a frame split across
// reads of the underlying decoder are carried over to the next call.
//
// # Seeking
//
// go-mp3 only scans frame offsets when the input is an io.Seeker. In that
// case the source reports its length through audio.Lengther and seeks
// through audio.FrameSeeker. For plain readers Length is 0 and SeekFrame
// returns audio.ErrNotSeekable.
//
// # Limitations
//
//   - MP3 writing is not supported (decoding only)
//   - Output is always stereo (use audio.NewMonoMixer to convert)
package mp3
