package search

import (
	"sort"
	"strings"
	"time"

	"github.com/iliyamo/class-schedule/internal/model"
)

// MergedResult is one display-ready section: catalog data decorated with
// its seat snapshot, editorial metadata and search rank.
type MergedResult struct {
	Section             model.Section   `json:"section"`
	SeatsAvailable      model.SeatCount `json:"seats_available"`
	LastUpdated         time.Time       `json:"last_updated"`
	LastUpdatedFriendly string          `json:"last_updated_friendly"`
	SectionFootnotes    string          `json:"section_footnotes"`
	CourseFootnotes     string          `json:"course_footnotes"`
	CourseTitle         string          `json:"course_title"`
	CustomTitle         string          `json:"custom_title"`
	CustomDescription   string          `json:"custom_description"`
	Rank                int             `json:"rank"`
}

// ResultMerger joins catalog sections with search hits and schedule data.
type ResultMerger struct {
	now func() time.Time
}

// NewResultMerger returns a merger.  now is used for the friendly
// last-updated text; nil means time.Now.
func NewResultMerger(now func() time.Time) *ResultMerger {
	if now == nil {
		now = time.Now
	}
	return &ResultMerger{now: now}
}

// Merge keeps the sections the section search matched, decorates each
// with its schedule data and returns them in display order.  The output
// is never nil.
func (m *ResultMerger) Merge(sections []model.Section, hits *SearchRanker, index *SeatSnapshotIndex) []MergedResult {
	now := m.now()
	out := make([]MergedResult, 0, min(len(sections), hits.Len()))
	seen := make(map[model.ClassID]struct{}, len(sections))
	for _, sec := range sections {
		rank, ok := hits.Rank(sec.ID)
		if !ok {
			continue
		}
		if _, dup := seen[sec.ID]; dup {
			continue
		}
		seen[sec.ID] = struct{}{}

		data, _ := index.Lookup(sec.ID)
		out = append(out, decorate(sec, rank, data, now))
	}
	SortResults(out)
	return out
}

// decorate is the only place that decides defaults for missing schedule
// data.  A zero ScheduleData means no row was found.
func decorate(sec model.Section, rank int, data model.ScheduleData, now time.Time) MergedResult {
	title := sec.CourseTitle
	if custom := strings.TrimSpace(data.CustomTitle); custom != "" {
		title = custom
	}
	updated := data.Seats.UpdatedAt()
	return MergedResult{
		Section:             sec,
		SeatsAvailable:      data.Seats.Count(),
		LastUpdated:         updated,
		LastUpdatedFriendly: FriendlyTime(updated, now),
		SectionFootnotes:    data.SectionFootnote,
		CourseFootnotes:     data.CourseFootnote,
		CourseTitle:         title,
		CustomTitle:         data.CustomTitle,
		CustomDescription:   data.CustomDescription,
		Rank:                rank,
	}
}

// SortResults orders results by quarter (most recent first), then course
// number, then effective title.  Ties keep their input order.
func SortResults(rs []MergedResult) {
	sort.SliceStable(rs, func(i, j int) bool {
		a, b := rs[i], rs[j]
		if c := a.Section.YearQuarter.Compare(b.Section.YearQuarter); c != 0 {
			return c > 0
		}
		if a.Section.CourseNumber != b.Section.CourseNumber {
			return a.Section.CourseNumber < b.Section.CourseNumber
		}
		return a.CourseTitle < b.CourseTitle
	})
}

// FriendlyTime renders a seat update time: "never" for the zero time,
// "3:04 pm" when t falls on the same day as now, otherwise "3:04 pm 1/2".
func FriendlyTime(t, now time.Time) string {
	if t.IsZero() {
		return "never"
	}
	t = t.In(now.Location())
	ty, tm, td := t.Date()
	ny, nm, nd := now.Date()
	if ty == ny && tm == nm && td == nd {
		return t.Format("3:04 pm")
	}
	return t.Format("3:04 pm 1/2")
}
