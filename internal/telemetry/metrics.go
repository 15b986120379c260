package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Значения label outcome.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
	OutcomeFailed  = "failed"
	OutcomeTimeout = "timeout"
)

var (
	brokerRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "camunda_demo_broker_requests_total",
		Help: "Total REST calls to the orchestration broker",
	}, []string{"operation", "outcome"})

	brokerDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "camunda_demo_broker_request_duration_seconds",
		Help:    "Duration of REST calls to the orchestration broker",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	jobsHandled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "camunda_demo_jobs_handled_total",
		Help: "Jobs handled by the job worker",
	}, []string{"type", "outcome"})

	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "camunda_demo_runs_total",
		Help: "Demo runs by outcome",
	}, []string{"outcome"})
)

// ObserveBrokerRequest учитывает один вызов брокера.
func ObserveBrokerRequest(operation string, started time.Time, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	brokerRequests.WithLabelValues(operation, outcome).Inc()
	brokerDuration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}

// ObserveJob учитывает обработку job. outcome: success, failed, error.
func ObserveJob(jobType, outcome string) {
	jobsHandled.WithLabelValues(jobType, outcome).Inc()
}

// ObserveRun учитывает завершённый demo run.
func ObserveRun(outcome string) {
	runsTotal.WithLabelValues(outcome).Inc()
}

// NewMux возвращает mux с /healthz и /metrics.
func NewMux() *http.ServeMux {
	startTime := time.Now()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok " + time.Since(startTime).Round(time.Second).String()))
	})
	mux.Handle("/metrics", promhttp.Handler())

	return mux
}
