package search

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/class-schedule/internal/model"
)

func TestMergeIsInnerJoinOnHits(t *testing.T) {
	secs := []model.Section{
		section("0001B343", "ENGL", "101", "Composition"),
		section("0002B343", "ENGL", "101", "Composition"),
		section("0003B343", "ENGL", "102", "Composition II"),
	}
	hits := NewSearchRanker([]SearchHit{hit("0001B343", 3), hit("0003B343", 1), hit("9999B343", 5)}, nil)

	got := NewResultMerger(clock).Merge(secs, hits, nil)
	assert.Equal(t, []string{"0001B343", "0003B343"}, ids(got))
}

func TestMergeSeatDataOnlyDecorates(t *testing.T) {
	secs := []model.Section{
		section("0001B343", "ENGL", "101", "Composition"),
		section("0002B343", "ENGL", "102", "Composition II"),
	}
	hits := NewSearchRanker([]SearchHit{hit("0001B343", 1), hit("0002B343", 1)}, nil)
	m := NewResultMerger(clock)

	without := m.Merge(secs, hits, NewSeatSnapshotIndex(nil))
	with := m.Merge(secs, hits, NewSeatSnapshotIndex([]model.ScheduleData{
		seats("0001B343", 4, fixedNow),
		seats("7777B343", 9, fixedNow),
	}))

	assert.Equal(t, ids(without), ids(with))
	assert.Equal(t, model.Seats(4), with[0].SeatsAvailable)
	assert.Equal(t, model.UnknownSeats, with[1].SeatsAvailable)
}

func TestMergeUnknownSeatsNeverRenderAsZero(t *testing.T) {
	secs := []model.Section{section("0001B343", "ENGL", "101", "Composition")}
	got := NewResultMerger(clock).Merge(secs, NewSearchRanker([]SearchHit{hit("0001B343", 0)}, nil), nil)
	require.Len(t, got, 1)

	r := got[0]
	assert.False(t, r.SeatsAvailable.Known)
	assert.Equal(t, "unknown", r.SeatsAvailable.Display())
	assert.Equal(t, "never", r.LastUpdatedFriendly)
	assert.Equal(t, "", r.SectionFootnotes)
	assert.Equal(t, "", r.CourseFootnotes)
	assert.Equal(t, "", r.CustomDescription)

	b, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"seats_available":null`)
}

func TestMergeEffectiveTitle(t *testing.T) {
	secs := []model.Section{
		section("0001B343", "ENGL", "101", "Composition"),
		section("0002B343", "ENGL", "101", "Composition"),
	}
	data := []model.ScheduleData{
		{ClassID: model.MustParseClassID("0001B343"), CustomTitle: "Academic Writing", CustomDescription: "desc", SectionFootnote: "bring a laptop"},
		{ClassID: model.MustParseClassID("0002B343"), CustomTitle: "   "},
	}
	got := NewResultMerger(clock).Merge(secs, NewSearchRanker([]SearchHit{hit("0001B343", 1), hit("0002B343", 1)}, nil), NewSeatSnapshotIndex(data))
	require.Len(t, got, 2)

	byID := map[string]MergedResult{}
	for _, r := range got {
		byID[r.Section.ID.String()] = r
	}
	assert.Equal(t, "Academic Writing", byID["0001B343"].CourseTitle)
	assert.Equal(t, "desc", byID["0001B343"].CustomDescription)
	assert.Equal(t, "bring a laptop", byID["0001B343"].SectionFootnotes)
	assert.Equal(t, "Composition", byID["0002B343"].CourseTitle)
}

func TestMergeOrdering(t *testing.T) {
	secs := []model.Section{
		section("0001B342", "ENGL", "101", "A"),
		section("0002B343", "ENGL", "201", "A"),
		section("0003B343", "ENGL", "101", "Zeta"),
		section("0004B343", "ENGL", "101", "Alpha"),
	}
	hits := NewSearchRanker([]SearchHit{hit("0001B342", 1), hit("0002B343", 1), hit("0003B343", 1), hit("0004B343", 1)}, nil)

	got := NewResultMerger(clock).Merge(secs, hits, nil)
	assert.Equal(t, []string{"0004B343", "0003B343", "0002B343", "0001B342"}, ids(got))
}

func TestMergeIsStableForEqualKeys(t *testing.T) {
	a := section("0001B343", "ENGL", "101", "Composition")
	b := section("0002B343", "ENGL", "101", "Composition")
	c := section("0003B343", "ENGL", "101", "Composition")
	hits := NewSearchRanker([]SearchHit{hit("0001B343", 1), hit("0002B343", 1), hit("0003B343", 1)}, nil)
	m := NewResultMerger(clock)

	assert.Equal(t, []string{"0001B343", "0002B343", "0003B343"}, ids(m.Merge([]model.Section{a, b, c}, hits, nil)))
	assert.Equal(t, []string{"0003B343", "0001B343", "0002B343"}, ids(m.Merge([]model.Section{c, a, b}, hits, nil)))
}

func TestMergeDropsDuplicateSections(t *testing.T) {
	s := section("0001B343", "ENGL", "101", "Composition")
	got := NewResultMerger(clock).Merge([]model.Section{s, s}, NewSearchRanker([]SearchHit{hit("0001B343", 1)}, nil), nil)
	assert.Len(t, got, 1)
}

func TestMergeEmptyInputs(t *testing.T) {
	got := NewResultMerger(clock).Merge(nil, nil, nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	p := Paginate(got, 0)
	assert.Equal(t, 0, p.TotalPages)
	assert.Equal(t, 0, p.TotalItems)
	assert.Empty(t, p.Items)
}

func TestMergeIsIdempotent(t *testing.T) {
	secs := []model.Section{
		section("0001B343", "ENGL", "101", "Composition"),
		section("0002B342", "MATH", "151", "Calculus"),
		section("0003B343", "CHEM", "121", "Chemistry"),
	}
	hits := NewSearchRanker([]SearchHit{hit("0001B343", 1), hit("0002B342", 2), hit("0003B343", 3)}, nil)
	index := NewSeatSnapshotIndex([]model.ScheduleData{seats("0002B342", 0, fixedNow.Add(-48*time.Hour))})
	m := NewResultMerger(clock)

	first, err := json.Marshal(m.Merge(secs, hits, index))
	require.NoError(t, err)
	second, err := json.Marshal(m.Merge(secs, hits, index))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

// ENGL 101 in quarter "2024": five catalog sections, four of which the
// section search matched.
func TestMergeEnglishScenario(t *testing.T) {
	secs := []model.Section{
		section("00012024", "ENGL", "101", "English Composition I"),
		section("00022024", "ENGL", "101", "English Composition I"),
		section("00032024", "ENGL", "101", "English Composition I"),
		section("00042024", "ENGL", "101", "English Composition I"),
		section("00052024", "ENGL", "101", "English Composition I"),
	}
	hits := NewSearchRanker([]SearchHit{
		hit("00022024", 10), hit("00042024", 8), hit("00012024", 8), hit("00052024", 2),
	}, nil)

	merged := NewResultMerger(clock).Merge(secs, hits, nil)
	require.Len(t, merged, 4)
	assert.Equal(t, []string{"00012024", "00022024", "00042024", "00052024"}, ids(merged))

	summary := AggregateSubjects(merged)
	assert.Equal(t, 1, summary.Count)
	assert.Equal(t, []string{"ENGL"}, summary.Subjects)
}

func TestFriendlyTime(t *testing.T) {
	assert.Equal(t, "never", FriendlyTime(time.Time{}, fixedNow))
	assert.Equal(t, "9:05 am", FriendlyTime(time.Date(2024, 3, 5, 9, 5, 0, 0, time.UTC), fixedNow))
	assert.Equal(t, "11:45 pm 3/4", FriendlyTime(time.Date(2024, 3, 4, 23, 45, 0, 0, time.UTC), fixedNow))
}
