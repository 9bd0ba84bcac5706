package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tictactoe"

const (
	ResultApplied = "applied"
	ResultIgnored = "ignored"
	ResultInvalid = "invalid"
	ResultOK      = "ok"
)

// Metrics counts game activity. Each instance has its own registry.
type Metrics struct {
	registry *prometheus.Registry

	gamesCreated prometheus.Counter
	gamesEnded   prometheus.Counter
	moves        *prometheus.CounterVec
	jumps        *prometheus.CounterVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	that := &Metrics{
		registry: registry,
		gamesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_created_total",
			Help:      "Number of game sessions started.",
		}),
		gamesEnded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_ended_total",
			Help:      "Number of game sessions closed by a client.",
		}),
		moves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "moves_total",
			Help:      "Move requests by outcome.",
		}, []string{"result"}),
		jumps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jumps_total",
			Help:      "History jump requests by outcome.",
		}, []string{"result"}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		that.gamesCreated,
		that.gamesEnded,
		that.moves,
		that.jumps,
	)

	return that
}

func (that *Metrics) GameCreated() {
	that.gamesCreated.Inc()
}

func (that *Metrics) GameEnded() {
	that.gamesEnded.Inc()
}

// Move records one move request; result is ResultApplied, ResultIgnored or ResultInvalid.
func (that *Metrics) Move(result string) {
	that.moves.WithLabelValues(result).Inc()
}

// Jump records one jump request; result is ResultOK or ResultInvalid.
func (that *Metrics) Jump(result string) {
	that.jumps.WithLabelValues(result).Inc()
}

func (that *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(that.registry, promhttp.HandlerOpts{Registry: that.registry})
}
