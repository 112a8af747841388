// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"

	"github.com/ik5/audmix/utils"
)

// Resampler streams from src to target sample rate using cubic interpolation.
// Works on interleaved samples; preserves channel count.
// Includes basic anti-aliasing filtering when downsampling.
//
// The first output frame is exactly the first source frame: the history is
// primed by repeating it, so no leading audio is dropped.
type Resampler struct {
	src      Source
	dstRate  int
	ratio    float64 // source frames per output frame
	channels int

	// frames[0] = t-1, frames[1] = t0, frames[2] = t+1, frames[3] = t+2
	frames [4][]float32
	valid  [4]bool
	primed bool

	// fractional position between frames[1] and frames[2]
	pos float64

	// srcBuf holds frames read ahead from src; srcOff and srcLen are sample offsets.
	srcBuf []float32
	srcOff int
	srcLen int
	eof    bool
	err    error

	filterState []float32
	useFilter   bool
	filterAlpha float32
	settled     bool // filterState holds a real frame
}

func NewResampler(src Source, dstRate int) *Resampler {
	channels := max(src.Channels(), 1)
	ratio := float64(src.SampleRate()) / float64(dstRate)

	r := &Resampler{
		src:         src,
		dstRate:     dstRate,
		ratio:       ratio,
		channels:    channels,
		srcBuf:      make([]float32, (4096/channels)*channels),
		useFilter:   ratio > 1.0,
		filterAlpha: 0.5, // one-pole cutoff near the destination Nyquist
		filterState: make([]float32, channels),
	}

	for i := range r.frames {
		r.frames[i] = make([]float32, channels)
	}

	return r
}

func (r *Resampler) SampleRate() int { return r.dstRate }
func (r *Resampler) Channels() int   { return r.channels }
func (r *Resampler) BufSize() int    { return r.src.BufSize() }

// Ratio reports how many source frames are consumed per output frame.
func (r *Resampler) Ratio() float64 { return r.ratio }

func (r *Resampler) Close() error {
	err := r.src.Close()
	if err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// Reset drops interpolation history and read-ahead so reading restarts
// cleanly after the underlying source was repositioned.
func (r *Resampler) Reset() {
	r.valid = [4]bool{}
	r.primed = false
	r.pos = 0
	r.srcOff, r.srcLen = 0, 0
	r.eof = false
	r.err = nil
	r.settled = false
}

// nextFrame copies the next source frame into dst.
func (r *Resampler) nextFrame(dst []float32) bool {
	for r.srcOff >= r.srcLen {
		if r.eof || r.err != nil {
			return false
		}
		n, err := r.src.ReadSamples(r.srcBuf)
		n -= n % r.channels
		r.srcOff, r.srcLen = 0, n
		switch {
		case err == io.EOF:
			r.eof = true
		case err != nil:
			r.err = fmt.Errorf("%w", err)
		case n == 0:
			r.eof = true
		}
	}

	copy(dst, r.srcBuf[r.srcOff:r.srcOff+r.channels])
	r.srcOff += r.channels

	if r.useFilter {
		if !r.settled {
			// start the filter settled on the first frame
			copy(r.filterState, dst)
			r.settled = true
		}
		for c := range r.channels {
			// y[n] = alpha * x[n] + (1-alpha) * y[n-1]
			dst[c] = r.filterAlpha*dst[c] + (1-r.filterAlpha)*r.filterState[c]
			r.filterState[c] = dst[c]
		}
	}

	return true
}

// shift advances the history by one source frame.
func (r *Resampler) shift() {
	first := r.frames[0]
	copy(r.frames[:], r.frames[1:])
	r.frames[3] = first
	copy(r.valid[:], r.valid[1:])
	r.valid[3] = r.nextFrame(r.frames[3])
}

func (r *Resampler) prime() {
	r.primed = true
	if !r.nextFrame(r.frames[1]) {
		return
	}
	copy(r.frames[0], r.frames[1])
	r.valid[0], r.valid[1] = true, true
	r.valid[2] = r.nextFrame(r.frames[2])
	r.valid[3] = r.nextFrame(r.frames[3])
}

// ReadSamples produces dst samples at the destination rate.
// dst length should be a multiple of r.channels.
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}
	if !r.primed {
		r.prime()
	}

	written := 0
	framesNeeded := len(dst) / r.channels

	for written < framesNeeded {
		for r.pos >= 1.0 {
			r.pos -= 1.0
			r.shift()
		}

		if !r.valid[1] {
			break
		}

		alpha := float32(r.pos)
		out := dst[written*r.channels : (written+1)*r.channels]
		for c := range r.channels {
			y1 := r.frames[1][c]
			y0, y2, y3 := y1, y1, y1
			if r.valid[0] {
				y0 = r.frames[0][c]
			}
			if r.valid[2] {
				y2 = r.frames[2][c]
				y3 = y2
			}
			if r.valid[3] {
				y3 = r.frames[3][c]
			}
			out[c] = utils.CubicInterpolate(y0, y1, y2, y3, alpha)
		}

		written++
		r.pos += r.ratio
	}

	if written < framesNeeded {
		if r.err != nil {
			return written * r.channels, r.err
		}
		return written * r.channels, io.EOF
	}
	return written * r.channels, nil
}
