package engine

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ticksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "millwork_world_ticks_total",
			Help: "Total number of world ticks",
		},
	)
	tickDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "millwork_world_tick_duration_seconds",
			Help:    "Duration of one world tick in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
		},
	)
	processorsGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "millwork_world_processors",
			Help: "Number of processors in the world",
		},
	)
	completionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "millwork_world_completions_total",
			Help: "Total number of completed processing cycles",
		},
		[]string{"kind"},
	)
	commandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "millwork_world_commands_total",
			Help: "Total number of applied commands",
		},
		[]string{"op"},
	)
)

type tickTimer struct{ start time.Time }

func newTickTimer() tickTimer { return tickTimer{start: time.Now()} }

func (t tickTimer) observe() {
	tickDuration.Observe(time.Since(t.start).Seconds())
}
