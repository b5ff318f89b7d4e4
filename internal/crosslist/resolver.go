// Package crosslist resolves the sections that are cross-listed with a
// course in a given quarter.
package crosslist

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/iliyamo/class-schedule/internal/logger"
	"github.com/iliyamo/class-schedule/internal/model"
)

// FanOutThreshold is the sibling count above which a group is reported as
// a data-quality anomaly.
const FanOutThreshold = 10

// Store reads the crosslisting relation.
type Store interface {
	FindCrosslistedClassIDs(ctx context.Context, courseID string) ([]string, error)
}

// Catalog fetches sections by ClassID.
type Catalog interface {
	GetSectionsByIDs(ctx context.Context, ids []model.ClassID) ([]model.Section, error)
}

// TitleSource returns editorial overrides for sections, used for custom
// titles.
type TitleSource interface {
	GetScheduleDataByIDs(ctx context.Context, ids []model.ClassID) ([]model.ScheduleData, error)
}

// Report is the outcome of one resolution.
//
// InvalidQuarter is set when the quarter code was malformed; the report
// is then empty and the store was not consulted.
type Report struct {
	CourseID        string                    `json:"course_id"`
	QuarterCode     string                    `json:"year_quarter"`
	SiblingClassIDs []model.ClassID           `json:"sibling_class_ids"`
	Courses         []model.CrossListedCourse `json:"courses"`
	NoneFound       bool                      `json:"none_found"`
	FanOutExceeded  bool                      `json:"fan_out_exceeded"`
	InvalidQuarter  error                     `json:"-"`
}

// Resolver builds cross-listing reports.
type Resolver struct {
	store   Store
	catalog Catalog
	titles  TitleSource
	log     zerolog.Logger
}

// NewResolver returns a Resolver.  titles may be nil, in which case
// catalog titles are used as is.
func NewResolver(store Store, catalog Catalog, titles TitleSource) *Resolver {
	return &Resolver{store: store, catalog: catalog, titles: titles, log: logger.With("crosslist")}
}

// Resolve finds the sections cross-listed with courseID in quarterCode.
// A malformed quarter does not fail the call; see Report.InvalidQuarter.
// Errors are returned only when the store or the catalog fails.
func (r *Resolver) Resolve(ctx context.Context, courseID, quarterCode string) (*Report, error) {
	courseID = strings.TrimSpace(courseID)
	rep := &Report{
		CourseID:        courseID,
		QuarterCode:     quarterCode,
		SiblingClassIDs: []model.ClassID{},
		Courses:         []model.CrossListedCourse{},
	}

	yrq, err := model.ParseYearQuarter(quarterCode)
	if err != nil {
		r.log.Error().Err(err).Str("course_id", courseID).Str("yrq", quarterCode).
			Msg("invalid year quarter for cross-listing lookup")
		rep.InvalidQuarter = err
		return rep, nil
	}
	rep.QuarterCode = yrq.Code()

	raw, err := r.store.FindCrosslistedClassIDs(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("find crosslisted class ids for %q: %w", courseID, err)
	}
	for _, s := range raw {
		if !strings.HasSuffix(strings.ToUpper(strings.TrimSpace(s)), yrq.Code()) {
			continue
		}
		id, err := model.ParseClassID(s)
		if err != nil {
			r.log.Warn().Err(err).Str("course_id", courseID).Msg("skipping malformed crosslisted class id")
			continue
		}
		rep.SiblingClassIDs = append(rep.SiblingClassIDs, id)
	}

	if len(rep.SiblingClassIDs) == 0 {
		rep.NoneFound = true
		r.log.Warn().Str("course_id", courseID).Str("yrq", yrq.Code()).Msg("no cross-listed sections found")
		return rep, nil
	}
	if len(rep.SiblingClassIDs) > FanOutThreshold {
		rep.FanOutExceeded = true
		r.log.Warn().Str("course_id", courseID).Int("count", len(rep.SiblingClassIDs)).
			Int("threshold", FanOutThreshold).Msg("cross-listing fan-out above threshold")
	}

	sections, err := r.catalog.GetSectionsByIDs(ctx, rep.SiblingClassIDs)
	if err != nil {
		return nil, fmt.Errorf("get crosslisted sections: %w", err)
	}
	titles := r.customTitles(ctx, rep.SiblingClassIDs)

	byID := make(map[model.ClassID]model.Section, len(sections))
	for _, s := range sections {
		byID[s.ID] = s
	}
	for _, id := range rep.SiblingClassIDs {
		s, ok := byID[id]
		if !ok {
			r.log.Warn().Str("class_id", id.String()).Msg("crosslisted section missing from catalog")
			continue
		}
		title := s.CourseTitle
		if t, ok := titles[id]; ok {
			title = t
		}
		rep.Courses = append(rep.Courses, model.CrossListedCourse{
			CourseID:          s.CourseID,
			SectionID:         s.ID,
			IsCommonCourse:    s.IsCommonCourse,
			Credits:           s.Credits,
			IsVariableCredits: s.IsVariableCredits,
			Title:             title,
		})
	}
	return rep, nil
}

func (r *Resolver) customTitles(ctx context.Context, ids []model.ClassID) map[model.ClassID]string {
	out := map[model.ClassID]string{}
	if r.titles == nil {
		return out
	}
	rows, err := r.titles.GetScheduleDataByIDs(ctx, ids)
	if err != nil {
		r.log.Warn().Err(err).Msg("custom titles unavailable, using catalog titles")
		return out
	}
	for _, row := range rows {
		if t := strings.TrimSpace(row.CustomTitle); t != "" {
			out[row.ClassID] = t
		}
	}
	return out
}
