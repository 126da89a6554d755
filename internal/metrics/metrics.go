package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iso_audit_http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "route", "status"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "iso_audit_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	findingsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iso_audit_findings_generated_total",
			Help: "Findings created by automatic generation",
		},
		[]string{"source"},
	)

	reportsGenerated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "iso_audit_reports_generated_total",
			Help: "Audit report versions generated",
		},
	)

	// Одна серия на организацию: число серий ограничено числом клиентов.
	complianceScore = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "iso_audit_compliance_score",
			Help: "Last computed overall compliance score (0-100)",
		},
		[]string{"organization_id"},
	)
)

func RecordRequest(method, route string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func FindingsGenerated(source string, n int) {
	if n > 0 {
		findingsGenerated.WithLabelValues(source).Add(float64(n))
	}
}

func ReportGenerated() {
	reportsGenerated.Inc()
}

func SetComplianceScore(orgID uint, score int) {
	complianceScore.WithLabelValues(strconv.FormatUint(uint64(orgID), 10)).Set(float64(score))
}
