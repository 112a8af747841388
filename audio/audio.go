// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

type Source interface {
	// SampleRate of the PCM stream in Hz.
	SampleRate() int
	// Channels count (e.g., 1=mono, 2=stereo).
	Channels() int
	// ReadSamples fills dst with interleaved float32 samples in [-1,1].
	// Returns number of float32 values written (not frames). When n == 0 with err == io.EOF, the stream is finished.
	ReadSamples(dst []float32) (n int, err error)

	BufSize() int

	// Close releases any resources.
	Close() error
}

// FrameSeeker is implemented by sources that can reposition natively.
// frame counts frames from the start of the stream.
type FrameSeeker interface {
	SeekFrame(frame int64) error
}

// Lengther is implemented by sources that know their total frame count.
type Lengther interface {
	Length() int64
}

// BitDepther is implemented by sources that know the bit depth of the
// encoded data, so loaders can keep it instead of widening to float.
type BitDepther interface {
	BitDepth() int
}

// Decoder constructs a Source from an input reader.
type Decoder interface {
	Decode(r io.Reader) (Source, error)
}

// Registry for decoders by format key (e.g., "wav", "mp3", "ogg").
// Keys are case-insensitive and may be given as file extensions (".wav").
type Registry struct {
	codecs map[string]Decoder

	mtx *sync.Mutex
}

func NewRegistry() *Registry {
	return &Registry{
		codecs: make(map[string]Decoder),
		mtx:    &sync.Mutex{},
	}
}

// FormatTag normalises a format key or file name to a registry key:
// "Song.OGG", ".ogg" and "ogg" all yield "ogg".
func FormatTag(name string) string {
	if ext := filepath.Ext(name); ext != "" {
		name = ext
	}
	return strings.ToLower(strings.TrimPrefix(name, "."))
}

func (r *Registry) Register(format string, d Decoder) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.codecs[FormatTag(format)] = d
}

func (r *Registry) Get(format string) (Decoder, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	d, ok := r.codecs[FormatTag(format)]
	return d, ok
}

// Formats lists the registered keys in sorted order.
func (r *Registry) Formats() []string {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	keys := make([]string, 0, len(r.codecs))
	for k := range r.codecs {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Decode looks up the decoder for format and runs it on rd.
func (r *Registry) Decode(format string, rd io.Reader) (Source, error) {
	d, ok := r.Get(format)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrFormatUnsupported, FormatTag(format))
	}

	src, err := d.Decode(rd)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFormatUnsupported, FormatTag(format), err)
	}
	return src, nil
}
