package telemetry

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/resguardo-civil/incident-reporting-service/internal/infra/config"
)

// Metrics bundles the Prometheus collectors exposed by the service.
type Metrics struct {
	HTTPRequests       *prometheus.CounterVec
	LoginAttempts      *prometheus.CounterVec
	ReportTransitions  *prometheus.CounterVec
	AuditAppendFailed  prometheus.Counter
	IncidentWriteRetry prometheus.Counter
}

// New registers and returns the service metric collectors.
func New(cfg *config.AppConfig) (*Metrics, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	return &Metrics{
		HTTPRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "irs",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		LoginAttempts: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "irs",
			Name:      "login_attempts_total",
			Help:      "Login attempts partitioned by outcome",
		}, []string{"outcome"}),
		ReportTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "irs",
			Name:      "report_transitions_total",
			Help:      "Report workflow transitions partitioned by action and outcome",
		}, []string{"action", "outcome"}),
		AuditAppendFailed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "irs",
			Name:      "audit_append_failures_total",
			Help:      "Audit log append failures after the primary write landed",
		}),
		IncidentWriteRetry: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "irs",
			Name:      "incident_write_retries_total",
			Help:      "Incident writes retried after a stale version",
		}),
	}, nil
}
