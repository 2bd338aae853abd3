package usecase

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts pipeline outcomes. A nil *Metrics records nothing.
type Metrics struct {
	teamsLocked      *prometheus.CounterVec
	resultsImported  *prometheus.CounterVec
	scoresSettled    prometheus.Counter
	costUpdates      prometheus.Counter
	operationErrors  *prometheus.CounterVec
	operationLatency *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		teamsLocked: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "race_pipeline_teams_locked_total", Help: "Team snapshots written or skipped by the lock engine"},
			[]string{"outcome"},
		),
		resultsImported: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "race_pipeline_results_imported_total", Help: "Rider result rows changed by imports"},
			[]string{"result_set"},
		),
		scoresSettled: prometheus.NewCounter(
			prometheus.CounterOpts{Name: "race_pipeline_scores_settled_total", Help: "Race scores written by settlement"},
		),
		costUpdates: prometheus.NewCounter(
			prometheus.CounterOpts{Name: "race_pipeline_cost_updates_total", Help: "Rider cost updates written by the repricer"},
		),
		operationErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "race_pipeline_operation_errors_total", Help: "Failed pipeline operations"},
			[]string{"operation"},
		),
		operationLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{Name: "race_pipeline_operation_duration_seconds", Help: "Pipeline operation latency", Buckets: prometheus.DefBuckets},
			[]string{"operation"},
		),
	}
}

func (m *Metrics) Register(reg prometheus.Registerer) error {
	if m == nil {
		return nil
	}
	for _, collector := range []prometheus.Collector{
		m.teamsLocked,
		m.resultsImported,
		m.scoresSettled,
		m.costUpdates,
		m.operationErrors,
		m.operationLatency,
	} {
		if err := reg.Register(collector); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) observe(operation string, seconds float64, err error) {
	if m == nil {
		return
	}
	m.operationLatency.WithLabelValues(operation).Observe(seconds)
	if err != nil {
		m.operationErrors.WithLabelValues(operation).Inc()
	}
}

func (m *Metrics) lock(locked, skipped int) {
	if m == nil {
		return
	}
	m.teamsLocked.WithLabelValues("locked").Add(float64(locked))
	m.teamsLocked.WithLabelValues("skipped").Add(float64(skipped))
}

func (m *Metrics) imported(set string, rows int) {
	if m == nil {
		return
	}
	m.resultsImported.WithLabelValues(set).Add(float64(rows))
}

func (m *Metrics) settled(scores, costUpdates int) {
	if m == nil {
		return
	}
	m.scoresSettled.Add(float64(scores))
	m.costUpdates.Add(float64(costUpdates))
}
