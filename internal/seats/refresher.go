package seats

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/iliyamo/class-schedule/internal/logger"
	"github.com/iliyamo/class-schedule/internal/model"
)

// Store reads and writes seat snapshots.  UpsertSeatSnapshot must be
// atomic per ClassID.  GetSeatSnapshot returns an empty snapshot when no
// row exists.
type Store interface {
	GetSeatSnapshot(ctx context.Context, id model.ClassID) (model.SeatSnapshot, error)
	UpsertSeatSnapshot(ctx context.Context, id model.ClassID, seats int, now time.Time) error
}

// Result is the outcome of one refresh.
//
// Refreshed is true when a live count was written.  Stale is true when the
// live lookup failed and Snapshot is the last known value (possibly empty).
type Result struct {
	Snapshot  model.SeatSnapshot `json:"-"`
	Seats     model.SeatCount    `json:"seats"`
	Refreshed bool               `json:"refreshed"`
	Stale     bool               `json:"stale"`
	Friendly  string             `json:"friendly"`
}

// Refresher applies the last-known-good policy to seat snapshots.
type Refresher struct {
	lookup Lookup
	store  Store
	locker Locker
	now    func() time.Time
	loc    *time.Location
	log    zerolog.Logger
}

// RefresherOption configures a Refresher.
type RefresherOption func(*Refresher)

// WithClock sets the clock used for LastUpdated stamps.
func WithClock(now func() time.Time) RefresherOption {
	return func(r *Refresher) { r.now = now }
}

// WithLocation sets the time zone for the friendly time.
func WithLocation(loc *time.Location) RefresherOption {
	return func(r *Refresher) { r.loc = loc }
}

// NewRefresher wires a Refresher.  A nil locker means an in-process lock.
func NewRefresher(lookup Lookup, store Store, locker Locker, opts ...RefresherOption) *Refresher {
	if locker == nil {
		locker = NewLocalLocker(10 * time.Second)
	}
	r := &Refresher{
		lookup: lookup,
		store:  store,
		locker: locker,
		now:    time.Now,
		loc:    time.Local,
		log:    logger.With("seats"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Refresh looks up the live seat count for id and stores it.  Lookup and
// write failures leave the stored snapshot as it was; only a failed read
// of the snapshot, or ctx cancellation, is an error.
func (r *Refresher) Refresh(ctx context.Context, id model.ClassID) (Result, error) {
	var res Result

	unlock, err := r.locker.Lock(ctx, "seat:"+id.String())
	switch {
	case err == nil:
		res.Refreshed = r.refreshLocked(ctx, id)
		unlock()
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return Result{}, err
	default:
		// another refresh holds the key; serve what it leaves behind
		r.log.Info().Err(err).Str("class_id", id.String()).Msg("seat refresh already in progress")
	}
	res.Stale = !res.Refreshed

	snap, err := r.store.GetSeatSnapshot(ctx, id)
	if err != nil {
		return Result{}, fmt.Errorf("read seat snapshot %s: %w", id, err)
	}
	res.Snapshot = snap
	res.Seats = snap.Count()
	res.Friendly = Friendly(snap, r.loc)
	return res, nil
}

func (r *Refresher) refreshLocked(ctx context.Context, id model.ClassID) bool {
	seats, err := r.lookup.LookupSeats(ctx, id)
	if err != nil {
		r.log.Warn().Err(err).Str("class_id", id.String()).Msg("live seat lookup failed, keeping last known count")
		return false
	}
	if seats < 0 {
		r.log.Warn().Int("seats", seats).Str("class_id", id.String()).Msg("negative seat count ignored")
		return false
	}
	if err := r.store.UpsertSeatSnapshot(ctx, id, seats, r.now()); err != nil {
		r.log.Error().Err(err).Str("class_id", id.String()).Msg("seat snapshot upsert failed")
		return false
	}
	return true
}

// Friendly renders a snapshot as "<seats>|<h:mm pm>".  Unknown parts are
// left empty.
func Friendly(s model.SeatSnapshot, loc *time.Location) string {
	seats := ""
	if s.SeatsAvailable != nil {
		seats = strconv.Itoa(*s.SeatsAvailable)
	}
	when := ""
	if t := s.UpdatedAt(); !t.IsZero() {
		if loc != nil {
			t = t.In(loc)
		}
		when = t.Format("3:04 pm")
	}
	return seats + "|" + when
}
