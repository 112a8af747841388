// SPDX-License-Identifier: EPL-2.0

// Package monitoring exposes mixer counters as prometheus metrics.
package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "audmix"

// Metrics owns its own registry so several mixers (and tests) never collide
// on the default one. A nil *Metrics ignores every update.
type Metrics struct {
	registry *prometheus.Registry

	BlocksMixed    prometheus.Counter
	Underruns      prometheus.Counter
	VoicesFinished prometheus.Counter
	ActiveVoices   prometheus.Gauge
	MixDuration    prometheus.Histogram
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		BlocksMixed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blocks_mixed_total",
			Help:      "Number of output blocks rendered by the mixer.",
		}),
		Underruns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "underruns_total",
			Help:      "Blocks in which a streaming voice ran out of decoded data.",
		}),
		VoicesFinished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "voices_finished_total",
			Help:      "Voices stopped by the mixer after reaching the end of their data.",
		}),
		ActiveVoices: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_voices",
			Help:      "Voices mixed in the last block.",
		}),
		MixDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "mix_duration_seconds",
			Help:      "Time spent rendering one block.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
		}),
	}

	m.registry.MustRegister(m.BlocksMixed, m.Underruns, m.VoicesFinished, m.ActiveVoices, m.MixDuration)
	return m
}

// Registry is the registry holding the mixer metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the metrics in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Block records one rendered block.
func (m *Metrics) Block(start time.Time, active int) {
	if m == nil {
		return
	}
	m.BlocksMixed.Inc()
	m.ActiveVoices.Set(float64(active))
	m.MixDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) Underrun() {
	if m == nil {
		return
	}
	m.Underruns.Inc()
}

func (m *Metrics) Finished() {
	if m == nil {
		return
	}
	m.VoicesFinished.Inc()
}
