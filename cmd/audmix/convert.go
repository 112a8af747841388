// SPDX-License-Identifier: EPL-2.0

package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/ik5/audmix"
	"github.com/ik5/audmix/formats"
	"github.com/ik5/audmix/internal/logger"
	"github.com/ik5/audmix/pcm"
)

func runConvert(args []string, stdout io.Writer) error {
	var (
		c      common
		target pcm.Format
	)
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	c.withFlags(fs)
	fs.IntVarP(&target.SampleRate, "rate", "r", 0, "output sample rate, 0 keeps the input rate")
	fs.IntVar(&target.Channels, "channels", 0, "output channels, 0 keeps the input channels")
	fs.IntVarP(&target.BitDepth, "bits", "b", 0, "output bit depth (8, 16 or 32), 0 keeps the input depth")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return errors.New("usage: audmix convert [flags] input output.wav")
	}

	cfg, log, err := c.load()
	if err != nil {
		return err
	}

	start := time.Now()
	in, out := fs.Arg(0), fs.Arg(1)
	got, err := audmix.ConvertFile(formats.NewRegistry(), in, out, target, pcm.WithLimit(cfg.Audio.BufferLimit))
	if err != nil {
		log.Error().Err(err).Str("input", in).Msg("convert failed")
		return err
	}

	log.Info().Str("input", in).Str("output", out).Str("format", got.String()).
		Dur("took", logger.Since(start)).Msg("converted")
	_, err = fmt.Fprintf(stdout, "%s -> %s (%s)\n", in, out, got)
	return err
}
