package process

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeSuccess     = "success"
	outcomeFailure     = "failure"
	outcomeSignaled    = "signaled"
	outcomeSpawnFailed = "spawn_failed"
)

// Metrics tracks VCS invocations. A nil *Metrics records nothing.
type Metrics struct {
	invocations *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with registerer.
// Collectors already registered by an earlier call are reused. A nil
// registerer leaves them unregistered.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	return &Metrics{
		invocations: register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "svndesk",
			Subsystem: "vcs",
			Name:      "invocations_total",
			Help:      "Number of VCS invocations by subcommand and outcome.",
		}, []string{"subcommand", "outcome"})),
		duration: register(registerer, prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "svndesk",
			Subsystem: "vcs",
			Name:      "invocation_duration_seconds",
			Help:      "Wall-clock duration of VCS invocations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"subcommand"})),
	}
}

func register[T prometheus.Collector](registerer prometheus.Registerer, collector T) T {
	if registerer == nil {
		return collector
	}

	err := registerer.Register(collector)
	if err == nil {
		return collector
	}

	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(T); ok {
			return existing
		}
	}

	panic(err)
}

func (m *Metrics) observe(subcommand, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}

	m.invocations.WithLabelValues(subcommand, outcome).Inc()
	if outcome != outcomeSpawnFailed {
		m.duration.WithLabelValues(subcommand).Observe(elapsed.Seconds())
	}
}

func outcomeOf(exitCode *int) string {
	switch {
	case exitCode == nil:
		return outcomeSignaled
	case *exitCode == 0:
		return outcomeSuccess
	default:
		return outcomeFailure
	}
}
