// SPDX-License-Identifier: EPL-2.0

package pcm

import (
	"fmt"
	"sync/atomic"
	"time"
)

// DefaultLimit caps the size of a single buffer allocation in bytes.
const DefaultLimit int64 = 1 << 30

type options struct {
	ring  bool
	acct  *Accountant
	limit int64
}

// Option configures Allocate.
type Option func(*options)

// WithRing makes offsets wrap modulo the frame count.
func WithRing() Option {
	return func(o *options) { o.ring = true }
}

// WithAccountant records the allocation, and the eventual free, in a.
func WithAccountant(a *Accountant) Option {
	return func(o *options) { o.acct = a }
}

// WithLimit sets the largest allocation accepted, in bytes.
func WithLimit(n int64) Option {
	return func(o *options) {
		if n > 0 {
			o.limit = n
		}
	}
}

// Buffer is reference counted PCM storage with an immutable Format.
//
// Reads and writes of distinct frame ranges may run concurrently; callers
// coordinate access to overlapping ranges.
type Buffer struct {
	format Format
	frames int
	ring   bool
	data   []byte

	refs  atomic.Int32
	acct  *Accountant
	limit int64
}

// Allocate creates a buffer of frames frames in format f with one reference.
func Allocate(frames int, f Format, opts ...Option) (*Buffer, error) {
	o := options{limit: DefaultLimit}
	for _, opt := range opts {
		opt(&o)
	}

	if err := f.Validate(); err != nil {
		return nil, err
	}
	if frames <= 0 {
		return nil, fmt.Errorf("%w: frame count %d", ErrAllocation, frames)
	}

	size := int64(frames) * int64(f.FrameSize())
	if size > o.limit {
		return nil, fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrAllocation, size, o.limit)
	}

	b := &Buffer{
		format: f,
		frames: frames,
		ring:   o.ring,
		data:   make([]byte, size),
		acct:   o.acct,
		limit:  o.limit,
	}
	if f.BitDepth == 8 {
		for i := range b.data {
			b.data[i] = 128
		}
	}
	b.refs.Store(1)
	o.acct.alloc(len(b.data))

	return b, nil
}

func (b *Buffer) Format() Format { return b.format }
func (b *Buffer) Frames() int    { return b.frames }
func (b *Buffer) IsRing() bool   { return b.ring }

// Duration is the playback length of the whole buffer at its sample rate.
func (b *Buffer) Duration() time.Duration {
	return time.Duration(float64(b.frames) / float64(b.format.SampleRate) * float64(time.Second))
}

// Refs returns the current reference count.
func (b *Buffer) Refs() int { return int(b.refs.Load()) }

// Released reports whether the storage has been freed.
func (b *Buffer) Released() bool { return b.refs.Load() <= 0 }

// Retain adds a reference and returns b for chaining.
func (b *Buffer) Retain() *Buffer {
	b.refs.Add(1)
	return b
}

// Release drops a reference, freeing the storage when none remain.
// Releasing a freed buffer panics in debug builds and is ignored otherwise.
func (b *Buffer) Release() {
	n := b.refs.Add(-1)
	switch {
	case n == 0:
		b.acct.free(len(b.data))
		b.data = nil
	case n < 0:
		b.refs.Store(0)
		if debug {
			panic("pcm: release of a released buffer")
		}
	}
}

// Bytes exposes the raw storage. Callers must not modify it.
func (b *Buffer) Bytes() []byte { return b.data }

// span maps a frame range to byte ranges, splitting it when a ring wraps.
func (b *Buffer) span(offset, count int) (first, second [2]int, err error) {
	fs := b.format.FrameSize()
	if count < 0 || offset < 0 && !b.ring {
		return first, second, fmt.Errorf("%w: offset %d count %d", ErrOutOfRange, offset, count)
	}

	if !b.ring {
		if offset+count > b.frames {
			return first, second, fmt.Errorf("%w: frames [%d, %d) of %d", ErrOutOfRange, offset, offset+count, b.frames)
		}
		first = [2]int{offset * fs, (offset + count) * fs}
		return first, second, nil
	}

	if count > b.frames {
		return first, second, fmt.Errorf("%w: %d frames into a ring of %d", ErrOutOfRange, count, b.frames)
	}
	offset %= b.frames
	if offset < 0 {
		offset += b.frames
	}
	head := min(count, b.frames-offset)
	first = [2]int{offset * fs, (offset + head) * fs}
	second = [2]int{0, (count - head) * fs}
	return first, second, nil
}

// Write copies count frames of raw data, in the buffer's own format, to offset.
func (b *Buffer) Write(offset int, data []byte, count int) (int, error) {
	if b.Released() {
		return 0, ErrReleased
	}
	count = min(count, len(data)/b.format.FrameSize())

	first, second, err := b.span(offset, count)
	if err != nil {
		return 0, err
	}
	n := copy(b.data[first[0]:first[1]], data)
	copy(b.data[second[0]:second[1]], data[n:])

	return count, nil
}

// WriteSamples encodes interleaved float32 samples into the buffer at offset.
func (b *Buffer) WriteSamples(offset int, src []float32) (int, error) {
	if b.Released() {
		return 0, ErrReleased
	}
	count := len(src) / b.format.Channels

	first, second, err := b.span(offset, count)
	if err != nil {
		return 0, err
	}
	n := encode(b.data[first[0]:first[1]], src, b.format.BitDepth)
	encode(b.data[second[0]:second[1]], src[n:], b.format.BitDepth)

	return count, nil
}

// Read decodes up to count frames starting at offset into dst as interleaved
// float32 and returns the number of frames read. It never allocates.
func (b *Buffer) Read(offset, count int, dst []float32) int {
	if b.Released() {
		return 0
	}
	count = min(count, len(dst)/b.format.Channels)
	if b.ring {
		count = min(count, b.frames)
	} else {
		if offset < 0 || offset >= b.frames {
			return 0
		}
		count = min(count, b.frames-offset)
	}

	first, second, err := b.span(offset, count)
	if err != nil {
		return 0
	}
	n := decode(dst, b.data[first[0]:first[1]], b.format.BitDepth)
	decode(dst[n:], b.data[second[0]:second[1]], b.format.BitDepth)

	return count
}

// Samples decodes the whole buffer into a new float32 slice.
func (b *Buffer) Samples() []float32 {
	out := make([]float32, b.frames*b.format.Channels)
	b.Read(0, b.frames, out)
	return out
}

// Clone copies frames [from, to) into a new linear buffer that shares the
// accountant and limit of b.
func (b *Buffer) Clone(from, to int) (*Buffer, error) {
	if b.Released() {
		return nil, ErrReleased
	}
	if from < 0 || to > b.frames || from >= to {
		return nil, fmt.Errorf("%w: clone [%d, %d) of %d", ErrOutOfRange, from, to, b.frames)
	}

	nb, err := Allocate(to-from, b.format, WithAccountant(b.acct), WithLimit(b.limit))
	if err != nil {
		return nil, err
	}
	fs := b.format.FrameSize()
	copy(nb.data, b.data[from*fs:to*fs])

	return nb, nil
}
