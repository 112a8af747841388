// SPDX-License-Identifier: EPL-2.0

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/ik5/audmix/device"
	"github.com/ik5/audmix/internal/logger"
	"github.com/ik5/audmix/internal/monitoring"
)

// voice is what play needs from sounds and tracks.
type voice interface {
	Play()
	IsPlaying() bool
	SetLooping(bool)
	SetVolume(float32)
	SetPitch(float32)
	SetPan(float32)
	Unload()
}

type playFlags struct {
	common
	stream   bool
	loop     bool
	volume   float32
	pitch    float32
	pan      float32
	master   float32
	duration time.Duration
	metrics  string
}

func runPlay(args []string) error {
	var p playFlags
	fs := flag.NewFlagSet("play", flag.ContinueOnError)
	p.withFlags(fs)
	fs.BoolVarP(&p.stream, "stream", "s", false, "decode while playing instead of loading whole files")
	fs.BoolVarP(&p.loop, "loop", "l", false, "loop every file")
	fs.Float32Var(&p.volume, "volume", 1, "voice volume [0, 1]")
	fs.Float32Var(&p.pitch, "pitch", 1, "playback speed factor")
	fs.Float32Var(&p.pan, "pan", 0.5, "0 is left, 1 is right")
	fs.Float32Var(&p.master, "master", -1, "master volume, overrides the configuration")
	fs.DurationVarP(&p.duration, "duration", "d", 0, "stop after this long, 0 plays to the end")
	fs.StringVar(&p.metrics, "metrics", "", "serve prometheus metrics on this address")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errors.New("usage: audmix play [flags] file...")
	}
	if p.loop && p.duration == 0 {
		return errors.New("play: --loop needs --duration")
	}

	cfg, log, err := p.load()
	if err != nil {
		return err
	}
	if p.metrics != "" {
		cfg.Monitoring.MetricsAddr = p.metrics
	}

	var metrics *monitoring.Metrics
	if cfg.Monitoring.MetricsAddr != "" {
		metrics = monitoring.New()
		srv := &http.Server{Addr: cfg.Monitoring.MetricsAddr, Handler: metrics.Handler(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Str("addr", srv.Addr).Msg("metrics server")
			}
		}()
		defer srv.Close()
		log.Info().Str("addr", srv.Addr).Msg("serving metrics")
	}

	d, err := device.Open(cfg.Audio, newBackend(), device.WithLogger(log), device.WithMetrics(metrics))
	if err != nil {
		return err
	}
	defer d.Close()
	if p.master >= 0 {
		d.SetMasterVolume(p.master)
	}

	var voices []voice
	defer func() {
		for _, v := range voices {
			v.Unload()
		}
	}()
	for _, path := range fs.Args() {
		v, err := p.open(d, path)
		if err != nil {
			return err
		}
		v.SetLooping(p.loop)
		v.SetVolume(p.volume)
		v.SetPitch(p.pitch)
		v.SetPan(p.pan)
		voices = append(voices, v)
	}
	for _, v := range voices {
		v.Play()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if p.duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.duration)
		defer cancel()
	}

	wait(ctx, voices, log)
	return nil
}

func (p *playFlags) open(d *device.Device, path string) (voice, error) {
	if p.stream {
		t, err := d.LoadTrack(path)
		if err != nil {
			return nil, err
		}
		return t, nil
	}
	s, err := d.LoadSoundFromFile(path)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// wait returns when every voice has finished or ctx is done.
func wait(ctx context.Context, voices []voice, log *logger.Logger) {
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("playback stopped")
			return
		case <-ticker.C:
		}

		playing := false
		for _, v := range voices {
			playing = playing || v.IsPlaying()
		}
		if !playing {
			log.Info().Int("voices", len(voices)).Msg("playback finished")
			return
		}
	}
}
