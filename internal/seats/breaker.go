package seats

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/iliyamo/class-schedule/internal/logger"
	"github.com/iliyamo/class-schedule/internal/model"
)

// BreakerSettings tune the circuit breaker around a Lookup.
type BreakerSettings struct {
	Name         string
	MaxRequests  uint32
	Interval     time.Duration
	Timeout      time.Duration
	FailureRatio float64
	// MinRequests is the sample size needed before the breaker may trip.
	MinRequests uint32
}

// BreakerLookup short-circuits live lookups while the registration system
// keeps failing.
type BreakerLookup struct {
	next Lookup
	cb   *gobreaker.CircuitBreaker
	log  zerolog.Logger
}

// NewBreakerLookup wraps next.
func NewBreakerLookup(next Lookup, s BreakerSettings) *BreakerLookup {
	b := &BreakerLookup{next: next, log: logger.With("seats")}
	if s.Name == "" {
		s.Name = "seat-lookup"
	}
	if s.MinRequests == 0 {
		s.MinRequests = 3
	}
	st := gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < s.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= s.FailureRatio
		},
		// a page without a count is a data problem, not an outage
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrSeatsNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			b.log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("seat lookup circuit breaker changed state")
		},
	}
	b.cb = gobreaker.NewCircuitBreaker(st)
	return b
}

// LookupSeats implements Lookup.  While the breaker is open it fails fast
// with gobreaker.ErrOpenState.
func (b *BreakerLookup) LookupSeats(ctx context.Context, id model.ClassID) (int, error) {
	v, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.LookupSeats(ctx, id)
	})
	if err != nil {
		return 0, err
	}
	return v.(int), nil
}

// State reports the breaker state, for health output.
func (b *BreakerLookup) State() string { return b.cb.State().String() }
