package seats

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/class-schedule/internal/model"
)

type fakeLookup struct {
	calls int
	fn    func(ctx context.Context, id model.ClassID) (int, error)
}

func (f *fakeLookup) LookupSeats(ctx context.Context, id model.ClassID) (int, error) {
	f.calls++
	return f.fn(ctx, id)
}

func TestBreakerOpensAfterFailures(t *testing.T) {
	next := &fakeLookup{fn: func(context.Context, model.ClassID) (int, error) { return 0, errors.New("connection refused") }}
	b := NewBreakerLookup(next, BreakerSettings{Timeout: time.Minute, FailureRatio: 0.5, MinRequests: 3})
	id := model.MustParseClassID("1234B343")

	for i := 0; i < 3; i++ {
		_, err := b.LookupSeats(context.Background(), id)
		assert.Error(t, err)
	}
	assert.Equal(t, "open", b.State())

	_, err := b.LookupSeats(context.Background(), id)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 3, next.calls)
}

func TestBreakerIgnoresMissingCounts(t *testing.T) {
	next := &fakeLookup{fn: func(context.Context, model.ClassID) (int, error) { return 0, ErrSeatsNotFound }}
	b := NewBreakerLookup(next, BreakerSettings{Timeout: time.Minute, FailureRatio: 0.5, MinRequests: 1})

	for i := 0; i < 5; i++ {
		_, err := b.LookupSeats(context.Background(), model.MustParseClassID("1234B343"))
		assert.ErrorIs(t, err, ErrSeatsNotFound)
	}
	assert.Equal(t, "closed", b.State())
}

func TestBreakerPassesThroughCounts(t *testing.T) {
	next := &fakeLookup{fn: func(context.Context, model.ClassID) (int, error) { return 8, nil }}
	n, err := NewBreakerLookup(next, BreakerSettings{}).LookupSeats(context.Background(), model.MustParseClassID("1234B343"))
	assert.NoError(t, err)
	assert.Equal(t, 8, n)
}
