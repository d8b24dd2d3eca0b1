package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the service's prometheus collectors.
type Metrics struct {
	Transitions        *prometheus.CounterVec
	TransitionFailures *prometheus.CounterVec
	Notifications      *prometheus.CounterVec
}

func New(namespace string) *Metrics {
	return &Metrics{
		Transitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "workflow_transitions_total",
			Help:      "Successful workflow transitions by operation",
		}, []string{"operation"}),
		TransitionFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "workflow_transition_failures_total",
			Help:      "Rejected workflow transitions by operation",
		}, []string{"operation"}),
		Notifications: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Notification deliveries by channel and outcome",
		}, []string{"channel", "status"}),
	}
}

// NewForTest registers collectors on a private registry so parallel tests
// don't collide on the default one.
func NewForTest() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		Transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "workflow_transitions_total",
		}, []string{"operation"}),
		TransitionFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "workflow_transition_failures_total",
		}, []string{"operation"}),
		Notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "notifications_total",
		}, []string{"channel", "status"}),
	}
}
