package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics agrupa los contadores operativos del servicio.
// Registry propio (no el global) para poder crear varios en tests.
type Metrics struct {
	registry *prometheus.Registry

	DosesGenerated       prometheus.Counter
	UpcomingDosesDropped prometheus.Counter
	GenerationFallbacks  prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		DosesGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "doses_generated_total",
			Help: "Dose occurrences persisted by the generation engine.",
		}),
		UpcomingDosesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "upcoming_doses_dropped_total",
			Help: "Upcoming doses omitted because their medication could not be resolved.",
		}),
		GenerationFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dose_generation_fallbacks_total",
			Help: "Dose generation requests diverted to the queue fallback.",
		}),
	}

	reg.MustRegister(m.DosesGenerated, m.UpcomingDosesDropped, m.GenerationFallbacks)
	return m
}

// Handler expone el registry en formato prometheus (ruta /metrics).
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
