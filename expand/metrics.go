// SPDX-License-Identifier: MIT

package expand

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metrics are created per Expander on the injected Registerer. A nil
// Registerer yields working but unregistered collectors.
type metrics struct {
	// candidates counts resolved candidates.
	// Labels: resolution (distinct, repositioned, cross_linked, merged)
	candidates *prometheus.CounterVec

	// skipped counts children that were never created.
	// Labels: reason (parse, unknown_move, missing_parent)
	skipped *prometheus.CounterVec

	// comparisons counts oracle calls made while checking candidates.
	comparisons prometheus.Counter

	// levels counts processed levels across all runs.
	levels prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) *metrics {
	f := promauto.With(reg)

	return &metrics{
		candidates: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "algraph",
			Subsystem: "expand",
			Name:      "candidates_total",
			Help:      "Resolved expansion candidates by policy outcome",
		}, []string{"resolution"}),
		skipped: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "algraph",
			Subsystem: "expand",
			Name:      "skipped_total",
			Help:      "Children skipped during expansion by reason",
		}, []string{"reason"}),
		comparisons: f.NewCounter(prometheus.CounterOpts{
			Namespace: "algraph",
			Subsystem: "expand",
			Name:      "comparisons_total",
			Help:      "Confluence oracle comparisons",
		}),
		levels: f.NewCounter(prometheus.CounterOpts{
			Namespace: "algraph",
			Subsystem: "expand",
			Name:      "levels_total",
			Help:      "Expansion levels processed",
		}),
	}
}

func (m *metrics) resolved(r Resolution) { m.candidates.WithLabelValues(r.String()).Inc() }

func (m *metrics) skip(reason string) { m.skipped.WithLabelValues(reason).Inc() }
