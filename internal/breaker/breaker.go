// Package breaker wraps catalog REST calls in a circuit
// breaker so a single failing venue's retries don't pile up against it.
package breaker

import (
	"time"

	cb "github.com/sony/gobreaker"
)

// Breaker is a named circuit breaker around one venue's REST calls.
type Breaker struct {
	cb *cb.CircuitBreaker
}

// New returns a breaker that trips after 3 consecutive failures, or after a
// failure rate above 5% once at least 20 requests have been observed in the
// rolling interval, and stays open for 60s before probing again.
func New(name string) *Breaker {
	st := cb.Settings{Name: name}
	st.Interval = 60 * time.Second
	st.Timeout = 60 * time.Second
	st.ReadyToTrip = func(counts cb.Counts) bool {
		if counts.ConsecutiveFailures >= 3 {
			return true
		}
		total := counts.Requests
		if total < 20 {
			return false
		}
		return float64(counts.TotalFailures)/float64(total) > 0.05
	}
	return &Breaker{cb: cb.NewCircuitBreaker(st)}
}

// Execute runs fn through the breaker, short-circuiting to an error without
// calling fn when the breaker is open.
func (b *Breaker) Execute(fn func() (any, error)) (any, error) {
	return b.cb.Execute(fn)
}

// State reports the breaker's current state, mostly for health/metrics
// reporting.
func (b *Breaker) State() cb.State {
	return b.cb.State()
}
