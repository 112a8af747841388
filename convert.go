// SPDX-License-Identifier: EPL-2.0

package audmix

import (
	"fmt"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/formats"
	"github.com/ik5/audmix/pcm"
	"github.com/ik5/audmix/wave"
)

// ConvertFile decodes in, converts it to f and writes it to out as WAV.
// A nil reg uses every codec in formats. Zero fields of f keep the value
// of the input.
func ConvertFile(reg *audio.Registry, in, out string, f pcm.Format, opts ...pcm.Option) (pcm.Format, error) {
	if reg == nil {
		reg = formats.NewRegistry()
	}

	w, err := wave.Load(reg, in, opts...)
	if err != nil {
		return pcm.Format{}, fmt.Errorf("audmix: convert: %w", err)
	}
	defer w.Unload()

	target := w.Format()
	if f.SampleRate != 0 {
		target.SampleRate = f.SampleRate
	}
	if f.Channels != 0 {
		target.Channels = f.Channels
	}
	if f.BitDepth != 0 {
		target.BitDepth = f.BitDepth
	}

	if err := w.Convert(target); err != nil {
		return pcm.Format{}, fmt.Errorf("audmix: convert: %w", err)
	}
	if err := w.Export(out); err != nil {
		return pcm.Format{}, fmt.Errorf("audmix: convert: %w", err)
	}
	return target, nil
}
