// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"errors"
	"fmt"
	"io"

	"github.com/ik5/audmix/audio"
)

// opener produces a fresh decoder positioned at frame 0, plus whatever must
// be closed with it. Tracks built from a bare source have none.
type opener func() (audio.Source, io.Closer, error)

// decodeContext is the decoder state owned by a track. pos counts frames
// decoded into the window, independent of what the voice has played.
type decodeContext struct {
	tag    string
	src    audio.Source
	closer io.Closer
	open   opener

	rate     int
	channels int
	length   int64
	pos      int64
	scratch  []float32
}

func newDecodeContext(tag string, src audio.Source, closer io.Closer, open opener, scratchFrames int) (*decodeContext, error) {
	if src.SampleRate() <= 0 || src.Channels() <= 0 {
		closeAll(src, closer)
		return nil, fmt.Errorf("%w: %s: %d Hz, %d channels", audio.ErrFormatUnsupported, tag, src.SampleRate(), src.Channels())
	}

	d := &decodeContext{
		tag:      tag,
		src:      src,
		closer:   closer,
		open:     open,
		rate:     src.SampleRate(),
		channels: src.Channels(),
		scratch:  make([]float32, scratchFrames*src.Channels()),
	}
	if l, ok := src.(audio.Lengther); ok {
		d.length = l.Length()
	}
	return d, nil
}

// read decodes whole frames into dst until it is full or the source ends,
// in which case io.EOF comes back with the final count.
func (d *decodeContext) read(dst []float32) (int, error) {
	dst = dst[:len(dst)-len(dst)%d.channels]
	total := 0
	for total < len(dst) {
		n, err := d.src.ReadSamples(dst[total:])
		total += n
		if err != nil {
			d.pos += int64(total / d.channels)
			return total / d.channels, err
		}
		if n == 0 {
			d.pos += int64(total / d.channels)
			return total / d.channels, io.EOF
		}
	}
	d.pos += int64(total / d.channels)
	return total / d.channels, nil
}

// seek positions the decoder at frame, natively when the source can seek
// and by reopening and skipping otherwise.
func (d *decodeContext) seek(frame int64) error {
	if d.length > 0 {
		frame = min(frame, d.length)
	}
	frame = max(frame, 0)

	if fs, ok := d.src.(audio.FrameSeeker); ok {
		if err := fs.SeekFrame(frame); err == nil {
			d.pos = frame
			return nil
		}
	}
	if d.open == nil {
		return fmt.Errorf("%w: %s", audio.ErrNotSeekable, d.tag)
	}

	src, closer, err := d.open()
	if err != nil {
		return fmt.Errorf("mixer: reopen %s: %w", d.tag, err)
	}
	closeAll(d.src, d.closer)
	d.src, d.closer, d.pos = src, closer, 0

	for d.pos < frame {
		want := min(frame-d.pos, int64(len(d.scratch)/d.channels))
		n, err := d.read(d.scratch[:want*int64(d.channels)])
		if errors.Is(err, io.EOF) || n == 0 {
			break
		}
		if err != nil {
			return fmt.Errorf("mixer: skip in %s: %w", d.tag, err)
		}
	}
	return nil
}

func (d *decodeContext) close() error {
	return closeAll(d.src, d.closer)
}

func closeAll(src audio.Source, closer io.Closer) error {
	err := src.Close()
	if closer != nil {
		err = errors.Join(err, closer.Close())
	}
	return err
}
