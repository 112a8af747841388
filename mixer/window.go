// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"sync/atomic"

	"github.com/ik5/audmix/pcm"
)

// window is a ring buffer of two segments shared by one producer (the
// application calling Update) and one consumer (the mixer). A segment is
// handed over by storing its frame count in fill; the consumer hands it
// back by storing zero.
type window struct {
	buf      *pcm.Buffer
	seg      int
	channels int

	fill  [2]atomic.Int64
	start [2]atomic.Int64 // source frame at the head of each segment
	eof   atomic.Bool

	// producer
	write int

	// consumer
	read   int
	off    int
	played atomic.Int64
}

func newWindow(f pcm.Format, segFrames int, acct *pcm.Accountant) (*window, error) {
	buf, err := pcm.Allocate(2*segFrames, f, pcm.WithRing(), pcm.WithAccountant(acct))
	if err != nil {
		return nil, err
	}
	return &window{buf: buf, seg: segFrames, channels: f.Channels}, nil
}

// processed reports whether the producer may fill a segment.
func (w *window) processed() bool {
	return !w.eof.Load() && w.fill[w.write].Load() == 0
}

// push writes up to one segment of samples into the free segment.
func (w *window) push(samples []float32, start int64) (int, error) {
	frames := min(len(samples)/w.channels, w.seg)
	if frames == 0 {
		return 0, nil
	}
	n, err := w.buf.WriteSamples(w.write*w.seg, samples[:frames*w.channels])
	if err != nil {
		return 0, err
	}
	w.commit(n, start)
	return n, nil
}

// pushRaw is push for data already in the window's own sample format.
func (w *window) pushRaw(data []byte, start int64) (int, error) {
	frames := min(len(data)/w.buf.Format().FrameSize(), w.seg)
	if frames == 0 {
		return 0, nil
	}
	n, err := w.buf.Write(w.write*w.seg, data, frames)
	if err != nil {
		return 0, err
	}
	w.commit(n, start)
	return n, nil
}

func (w *window) commit(frames int, start int64) {
	w.start[w.write].Store(start)
	w.fill[w.write].Store(int64(frames))
	w.write ^= 1
}

// next reads one frame. eof is loaded before fill so a final segment
// committed just before eof is never missed.
func (w *window) next(dst []float32) fetch {
	eof := w.eof.Load()
	n := w.fill[w.read].Load()
	if n == 0 {
		if eof {
			return fetchEnd
		}
		return fetchStarved
	}

	w.buf.Read(w.read*w.seg+w.off, 1, dst)
	w.played.Store(w.start[w.read].Load() + int64(w.off))

	w.off++
	if int64(w.off) >= n {
		w.off = 0
		w.fill[w.read].Store(0)
		w.read ^= 1
	}
	return fetchOK
}

// reset empties both segments. The caller holds the voice lock so the
// consumer is not running.
func (w *window) reset(at int64) {
	w.fill[0].Store(0)
	w.fill[1].Store(0)
	w.eof.Store(false)
	w.write, w.read, w.off = 0, 0, 0
	w.played.Store(at)
}

func (w *window) release() {
	w.buf.Release()
}
