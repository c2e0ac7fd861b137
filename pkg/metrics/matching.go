package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MatchingMetrics records outcomes of matching engine runs.
type MatchingMetrics struct {
	duration      *prometheus.HistogramVec
	candidates    *prometheus.CounterVec
	recorded      *prometheus.CounterVec
	notifications *prometheus.CounterVec
	emails        *prometheus.CounterVec
}

// NewMatchingMetrics registers the matching metrics on the provided registerer.
func NewMatchingMetrics(reg prometheus.Registerer) *MatchingMetrics {
	if reg == nil {
		return &MatchingMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "matching_run_duration_seconds",
		Help:    "Duration of matching engine runs in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"status"})
	candidates := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "matching_candidates_scored",
		Help: "Candidate items scored against a new report.",
	}, []string{"status"})
	recorded := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "matching_matches_recorded",
		Help: "Match rows recorded, split by fresh inserts vs existing pairs.",
	}, []string{"outcome"})
	notifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "matching_notifications_created",
		Help: "In-app notifications created by the match fan-out.",
	}, []string{"side"})
	emails := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "matching_emails_total",
		Help: "Match email deliveries by result.",
	}, []string{"result"})
	reg.MustRegister(duration, candidates, recorded, notifications, emails)
	return &MatchingMetrics{
		duration:      duration,
		candidates:    candidates,
		recorded:      recorded,
		notifications: notifications,
		emails:        emails,
	}
}

// ObserveRun records one orchestrator run with its terminal status.
func (m *MatchingMetrics) ObserveRun(status string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(status)).Observe(duration.Seconds())
}

// AddCandidates counts scored candidates for the probe item's status.
func (m *MatchingMetrics) AddCandidates(status string, count int) {
	if m == nil || m.candidates == nil || count <= 0 {
		return
	}
	m.candidates.WithLabelValues(normalizeLabel(status)).Add(float64(count))
}

// IncRecorded counts one recorder call; outcome is "inserted" or "existing".
func (m *MatchingMetrics) IncRecorded(outcome string) {
	if m == nil || m.recorded == nil {
		return
	}
	m.recorded.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncNotification counts a created notification for the given pair side.
func (m *MatchingMetrics) IncNotification(side string) {
	if m == nil || m.notifications == nil {
		return
	}
	m.notifications.WithLabelValues(normalizeLabel(side)).Inc()
}

// IncEmail counts a match email attempt; result is "sent" or "failed".
func (m *MatchingMetrics) IncEmail(result string) {
	if m == nil || m.emails == nil {
		return
	}
	m.emails.WithLabelValues(normalizeLabel(result)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
