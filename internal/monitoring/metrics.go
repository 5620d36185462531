// Package monitoring exposes Prometheus metrics for the session
// engine and the HTTP surface.  Collectors are registered through
// promauto on the default registry, which cmd/server serves at
// /metrics.
package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sessionTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "session_transitions_total",
			Help: "Session lifecycle transitions by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	occupiedPosts = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "posts_occupied",
			Help: "Number of posts currently hosting an active session",
		},
	)

	revenue = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "revenue_total",
			Help: "Money charged, by kind (booking or extension)",
		},
		[]string{"kind"},
	)

	loyaltyPoints = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "loyalty_points_granted_total",
			Help: "Loyalty points granted to clients",
		},
	)
)

// Metrics is a nil-safe facade over the collectors above.  A nil
// *Metrics silently drops every observation, so the engine can be
// wired without monitoring in tests.
type Metrics struct{}

// New returns a Metrics facade.
func New() *Metrics { return &Metrics{} }

// Transition counts a lifecycle operation and its outcome ("ok" or
// "error").
func (m *Metrics) Transition(operation, outcome string) {
	if m == nil {
		return
	}
	sessionTransitions.WithLabelValues(operation, outcome).Inc()
}

// PostOccupied moves the occupied-posts gauge by delta.
func (m *Metrics) PostOccupied(delta int) {
	if m == nil {
		return
	}
	occupiedPosts.Add(float64(delta))
}

// Revenue adds a charged amount under the given kind.
func (m *Metrics) Revenue(kind string, amount float64) {
	if m == nil {
		return
	}
	revenue.WithLabelValues(kind).Add(amount)
}

// PointsGranted counts loyalty points handed to clients.
func (m *Metrics) PointsGranted(points uint32) {
	if m == nil {
		return
	}
	loyaltyPoints.Add(float64(points))
}
