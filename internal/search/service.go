// Package search assembles class search results: it fetches catalog
// sections, schedule data and both text-search channels, joins them and
// pages the outcome.
package search

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/class-schedule/internal/facet"
	"github.com/iliyamo/class-schedule/internal/logger"
	"github.com/iliyamo/class-schedule/internal/model"
)

// Catalog provides read-only section data.  Facet evaluation happens
// inside the provider.
type Catalog interface {
	CurrentYearQuarter(ctx context.Context) (model.YearQuarter, error)
	ListYearQuarters(ctx context.Context, n int) ([]model.YearQuarter, error)
	GetSections(ctx context.Context, yrq model.YearQuarter, facets facet.Set) ([]model.Section, error)
	GetSectionsBySubjects(ctx context.Context, subjects []string, yrq model.YearQuarter, facets facet.Set) ([]model.Section, error)
}

// TextSearcher runs the two full-text search channels.
type TextSearcher interface {
	SearchSections(ctx context.Context, term string, yrq model.YearQuarter) ([]SearchHit, error)
	SearchNoSectionCourses(ctx context.Context, term string, yrq model.YearQuarter) ([]NoSectionHit, error)
}

// ScheduleDataSource returns seat snapshots and editorial metadata.
type ScheduleDataSource interface {
	GetScheduleData(ctx context.Context, yrq model.YearQuarter) ([]model.ScheduleData, error)
}

// SeatRefreshEnqueuer asks for seat counts to be refreshed in the
// background.
type SeatRefreshEnqueuer interface {
	EnqueueSeatRefresh(ctx context.Context, ids []model.ClassID) error
}

// Degraded source names reported in Response.Degraded.
const (
	SourceCurrentQuarter = "current_quarter"
	SourceNavigation     = "navigation"
	SourceCatalog        = "catalog"
	SourceScheduleData   = "schedule_data"
	SourceSectionSearch  = "section_search"
	SourceNoSection      = "no_section_search"
)

const (
	defaultNavSize = 4
	defaultNavTTL  = 10 * time.Minute

	defaultPrefetchTimeout = 5 * time.Second
)

// Request is one search.  A zero YearQuarter means the current
// registration quarter.
type Request struct {
	Term        string
	YearQuarter model.YearQuarter
	Subject     string
	Facets      facet.Set
	Offset      int
}

// Response is everything a search page renders.
type Response struct {
	Term           string              `json:"searchterm"`
	Searched       bool                `json:"searched"`
	YearQuarter    model.YearQuarter   `json:"year_quarter"`
	CurrentQuarter model.YearQuarter   `json:"current_quarter"`
	Navigation     []model.YearQuarter `json:"navigation"`
	Subject        string              `json:"subject,omitempty"`
	Facets         string              `json:"facets,omitempty"`
	Page
	SubjectSummary
	NoSection []NoSectionHit `json:"no_section"`
	Degraded  []string       `json:"degraded,omitempty"`
}

// QuarterMenu is the current registration quarter plus the most recent
// quarters offered for navigation.
type QuarterMenu struct {
	Current  model.YearQuarter
	Quarters []model.YearQuarter
}

// Service runs searches.  It is safe for concurrent use.
type Service struct {
	catalog         Catalog
	text            TextSearcher
	schedule        ScheduleDataSource
	merger          *ResultMerger
	prefetch        SeatRefreshEnqueuer
	prefetchTimeout time.Duration
	navSize         int
	navTTL          time.Duration
	nav             *expirable.LRU[string, QuarterMenu]
	log             zerolog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the clock used for friendly timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.merger = NewResultMerger(now) }
}

// WithSeatPrefetch enables background refresh requests for results on
// the returned page whose seat count is unknown.  Enqueueing runs after
// the response is assembled and is bounded by timeout, not by the
// request; a zero timeout uses the default.
func WithSeatPrefetch(e SeatRefreshEnqueuer, timeout time.Duration) Option {
	return func(s *Service) {
		s.prefetch = e
		if timeout > 0 {
			s.prefetchTimeout = timeout
		}
	}
}

// WithNavigation sets how many quarters the navigation menu shows and how
// long the menu is cached.
func WithNavigation(size int, ttl time.Duration) Option {
	return func(s *Service) {
		if size > 0 {
			s.navSize = size
		}
		if ttl > 0 {
			s.navTTL = ttl
		}
	}
}

// NewService wires a Service.
func NewService(catalog Catalog, text TextSearcher, schedule ScheduleDataSource, opts ...Option) *Service {
	s := &Service{
		catalog:         catalog,
		text:            text,
		schedule:        schedule,
		merger:          NewResultMerger(nil),
		navSize:         defaultNavSize,
		navTTL:          defaultNavTTL,
		prefetchTimeout: defaultPrefetchTimeout,
		log:             logger.With("search"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.nav = expirable.NewLRU[string, QuarterMenu](1, nil, s.navTTL)
	return s
}

// NormalizeTerm trims the term and collapses runs of whitespace.
func NormalizeTerm(term string) string {
	return strings.Join(strings.Fields(term), " ")
}

// Search runs req.  Upstream failures do not fail the search: the failed
// source contributes nothing and is listed in Response.Degraded.  Only
// context cancellation is returned as an error.
func (s *Service) Search(ctx context.Context, req Request) (*Response, error) {
	resp := &Response{
		Term:      NormalizeTerm(req.Term),
		Subject:   strings.TrimSpace(req.Subject),
		Facets:    req.Facets.Key(),
		Page:      Paginate(nil, req.Offset),
		NoSection: []NoSectionHit{},
	}
	resp.SubjectSummary = AggregateSubjects(nil)

	nav, err := s.Navigation(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		resp.Degraded = append(resp.Degraded, SourceNavigation)
	}
	resp.CurrentQuarter = nav.Current
	resp.Navigation = nav.Quarters

	resp.YearQuarter = req.YearQuarter
	if resp.YearQuarter.IsZero() {
		if nav.Current.IsZero() {
			resp.Degraded = append(resp.Degraded, SourceCurrentQuarter)
			return resp, nil
		}
		resp.YearQuarter = nav.Current
	}

	if resp.Term == "" {
		return resp, nil
	}
	resp.Searched = true

	in, degraded, err := s.fetch(ctx, resp.Term, resp.YearQuarter, resp.Subject, req.Facets)
	if err != nil {
		return nil, err
	}
	resp.Degraded = append(resp.Degraded, degraded...)

	ranker := NewSearchRanker(in.hits, in.noSection)
	merged := s.merger.Merge(in.sections, ranker, NewSeatSnapshotIndex(in.schedule))

	resp.SubjectSummary = AggregateSubjects(merged)
	resp.Page = Paginate(merged, req.Offset)
	resp.NoSection = filterNoSection(ranker.NoSection(), resp.Subject)

	if len(resp.Degraded) > 0 {
		s.log.Warn().Strs("degraded", resp.Degraded).Str("term", resp.Term).
			Str("yrq", resp.YearQuarter.Code()).Msg("search served with partial data")
	}
	s.prefetchSeats(ctx, resp.Items)
	return resp, nil
}

type fetched struct {
	sections  []model.Section
	schedule  []model.ScheduleData
	hits      []SearchHit
	noSection []NoSectionHit
}

// fetch issues the four reads concurrently and waits for all of them.
func (s *Service) fetch(ctx context.Context, term string, yrq model.YearQuarter, subject string, facets facet.Set) (fetched, []string, error) {
	var (
		out      fetched
		mu       sync.Mutex
		degraded []string
	)
	fail := func(source string, err error) {
		s.log.Error().Err(err).Str("source", source).Str("yrq", yrq.Code()).Msg("search fetch failed")
		mu.Lock()
		degraded = append(degraded, source)
		mu.Unlock()
	}

	var g errgroup.Group
	g.Go(func() error {
		var err error
		if subject != "" {
			out.sections, err = s.catalog.GetSectionsBySubjects(ctx, model.SubjectVariants(subject), yrq, facets)
		} else {
			out.sections, err = s.catalog.GetSections(ctx, yrq, facets)
		}
		if err != nil {
			out.sections = nil
			fail(SourceCatalog, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if out.schedule, err = s.schedule.GetScheduleData(ctx, yrq); err != nil {
			out.schedule = nil
			fail(SourceScheduleData, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if out.hits, err = s.text.SearchSections(ctx, term, yrq); err != nil {
			out.hits = nil
			fail(SourceSectionSearch, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if out.noSection, err = s.text.SearchNoSectionCourses(ctx, term, yrq); err != nil {
			out.noSection = nil
			fail(SourceNoSection, err)
		}
		return nil
	})
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return fetched{}, nil, err
	}
	slices.Sort(degraded)
	return out, degraded, nil
}

// Navigation returns the current registration quarter and the most recent
// quarters for the menu.  The pair is cached.
func (s *Service) Navigation(ctx context.Context) (QuarterMenu, error) {
	const key = "nav"
	if nav, ok := s.nav.Get(key); ok {
		return nav, nil
	}
	current, err := s.catalog.CurrentYearQuarter(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("current quarter lookup failed")
		return QuarterMenu{Quarters: []model.YearQuarter{}}, err
	}
	quarters, err := s.catalog.ListYearQuarters(ctx, s.navSize)
	if err != nil {
		s.log.Error().Err(err).Msg("quarter list lookup failed")
		return QuarterMenu{Current: current, Quarters: []model.YearQuarter{}}, err
	}
	if quarters == nil {
		quarters = []model.YearQuarter{}
	}
	nav := QuarterMenu{Current: current, Quarters: quarters}
	s.nav.Add(key, nav)
	return nav, nil
}

func (s *Service) prefetchSeats(ctx context.Context, items []MergedResult) {
	if s.prefetch == nil {
		return
	}
	var ids []model.ClassID
	for _, r := range items {
		if !r.SeatsAvailable.Known {
			ids = append(ids, r.Section.ID)
		}
	}
	if len(ids) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.prefetchTimeout)
	go func() {
		defer cancel()
		if err := s.prefetch.EnqueueSeatRefresh(ctx, ids); err != nil {
			s.log.Warn().Err(err).Int("count", len(ids)).Msg("seat prefetch enqueue failed")
		}
	}()
}

func filterNoSection(hits []NoSectionHit, subject string) []NoSectionHit {
	if subject == "" {
		return hits
	}
	variants := model.SubjectVariants(subject)
	out := make([]NoSectionHit, 0, len(hits))
	for _, h := range hits {
		if slices.Contains(variants, h.CourseID.Prefix()) {
			out = append(out, h)
		}
	}
	return out
}
