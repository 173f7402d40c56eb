package telemetry

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/shaiso/supercon/internal/domain"
)

// Метрики workflow.
var (
	stagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "supercon_stages_total",
		Help: "Stages executed, by stage and outcome.",
	}, []string{"stage", "status"})

	stageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "supercon_stage_duration_seconds",
		Help:    "Wall time of a workflow stage.",
		Buckets: prometheus.ExponentialBuckets(0.1, 4, 10),
	}, []string{"stage"})

	stagesInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "supercon_stages_in_flight",
		Help: "Stages currently running.",
	})

	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "supercon_runs_total",
		Help: "Finished workflow runs, by status.",
	}, []string{"status"})

	tcRecords = promauto.NewCounter(prometheus.CounterOpts{
		Name: "supercon_tc_records_total",
		Help: "Coupling records evaluated into Tc values.",
	})
)

// StageMetrics экспортирует ход стадий в Prometheus.
// Нулевое значение готово к использованию.
type StageMetrics struct{}

// StageStarted учитывает запуск стадии.
func (StageMetrics) StageStarted(_ context.Context, _ domain.StageEvent) {
	stagesInFlight.Inc()
}

// StageFinished учитывает завершение стадии.
func (StageMetrics) StageFinished(_ context.Context, ev domain.StageEvent) {
	stagesInFlight.Dec()

	status := string(domain.StageStatusSucceeded)
	if !ev.Succeeded() {
		status = string(domain.StageStatusFailed)
	}
	stagesTotal.WithLabelValues(string(ev.Stage), status).Inc()
	stageDuration.WithLabelValues(string(ev.Stage)).Observe(ev.Duration.Seconds())
}

// ObserveRun учитывает завершённый run.
func ObserveRun(status domain.RunStatus, results int) {
	runsTotal.WithLabelValues(string(status)).Inc()
	tcRecords.Add(float64(results))
}
