package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/class-schedule/internal/facet"
	"github.com/iliyamo/class-schedule/internal/model"
)

var sectionRowColumns = []string{"class_id", "course_subject", "course_number", "course_title",
	"credits", "is_variable_credits", "modality", "start_date", "is_late_start", "footnotes"}

var meetingRowColumns = []string{"class_id", "days", "start_time", "end_time", "room", "instructor"}

func TestGetSectionsBySubjectsBuildsWhereAndAttachesMeetings(t *testing.T) {
	db, mock := newMock(t)
	facets, err := facet.Build(facet.Input{Online: "on", NumCredits: "5"})
	require.NoError(t, err)

	start := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(
		"WHERE s.year_quarter_id = ? AND s.course_subject IN (?,?) AND s.modality IN (?) AND s.credits >= ?")+
		`\s+`+regexp.QuoteMeta("ORDER BY s.course_subject, s.course_number, s.class_id")).
		WithArgs("B343", "ENGL", "ENGL&", "ONLINE", 5.0).
		WillReturnRows(sqlmock.NewRows(sectionRowColumns).
			AddRow("1234b343", "ENGL&", "101", " English Composition I ", 5.0, false, "ONLINE", start, false, "Bring a laptop\n\nOnline orientation").
			AddRow("BAD", "ENGL", "102", "Broken", 5.0, false, "ONLINE", nil, false, nil).
			AddRow("5678B343", "ENGL", "201", "Literature", 5.0, true, "ONLINE", nil, true, nil))
	mock.ExpectQuery(regexp.QuoteMeta("FROM section_meetings")).
		WithArgs("1234B343", "5678B343").
		WillReturnRows(sqlmock.NewRows(meetingRowColumns).
			AddRow("1234b343", "MW", "09:30:00", "10:20:00", "A101", "Smith").
			AddRow("9999B343", "TTh", "11:30:00", "12:20:00", "B202", "Jones"))

	got, err := NewCatalogRepo(db).GetSectionsBySubjects(context.Background(), []string{"ENGL", "ENGL&"},
		model.MustParseYearQuarter("B343"), facets)
	require.NoError(t, err)
	require.Len(t, got, 2)

	first := got[0]
	assert.Equal(t, "1234B343", first.ID.String())
	assert.Equal(t, "ENGL& 101", first.CourseID.String())
	assert.True(t, first.IsCommonCourse)
	assert.Equal(t, "ENGL", first.Subject)
	assert.Equal(t, "English Composition I", first.CourseTitle)
	assert.Equal(t, "B343", first.YearQuarter.Code())
	assert.Equal(t, model.ModalityOnline, first.Modality)
	assert.Equal(t, []string{"Bring a laptop", "Online orientation"}, first.Footnotes)
	require.Len(t, first.Meetings, 1)
	assert.Equal(t, "MW", first.Meetings[0].Days)
	assert.Equal(t, 9, first.Meetings[0].StartTime.Hour())
	assert.Equal(t, 30, first.Meetings[0].StartTime.Minute())
	assert.Equal(t, "Smith", first.Meetings[0].Instructor)

	second := got[1]
	assert.Equal(t, "5678B343", second.ID.String())
	assert.True(t, second.IsVariableCredits)
	assert.True(t, second.IsLateStart)
	assert.Empty(t, second.Meetings)
	assert.NotNil(t, second.Meetings)
	assert.Empty(t, second.Footnotes)
}

func TestGetSectionsWithoutFacets(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE s.year_quarter_id = ?") + `\s+ORDER BY`).
		WithArgs("B343").
		WillReturnRows(sqlmock.NewRows(sectionRowColumns))

	got, err := NewCatalogRepo(db).GetSections(context.Background(), model.MustParseYearQuarter("B343"), facet.Set{})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestGetSectionsByIDs(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCatalogRepo(db)

	got, err := repo.GetSectionsByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE s.class_id IN (?,?)")).
		WithArgs("1111B343", "2222B343").
		WillReturnRows(sqlmock.NewRows(sectionRowColumns).
			AddRow("1111B343", "ART", "101", "Drawing", 5.0, false, "ONCAMPUS", nil, false, nil))
	mock.ExpectQuery(regexp.QuoteMeta("FROM section_meetings")).
		WithArgs("1111B343").
		WillReturnRows(sqlmock.NewRows(meetingRowColumns))

	got, err = repo.GetSectionsByIDs(context.Background(), []model.ClassID{
		model.MustParseClassID("1111B343"), model.MustParseClassID("2222B343"),
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "ART 101", got[0].CourseID.String())
}

func TestCurrentYearQuarter(t *testing.T) {
	db, mock := newMock(t)
	now := time.Date(2024, 3, 5, 15, 30, 0, 0, time.UTC)
	repo := NewCatalogRepo(db)
	repo.now = func() time.Time { return now }

	mock.ExpectQuery(regexp.QuoteMeta("FROM year_quarters")).
		WithArgs(now).
		WillReturnRows(sqlmock.NewRows([]string{"year_quarter_id"}).AddRow("B344"))
	yrq, err := repo.CurrentYearQuarter(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "B344", yrq.Code())

	mock.ExpectQuery(regexp.QuoteMeta("FROM year_quarters")).
		WithArgs(now).
		WillReturnRows(sqlmock.NewRows([]string{"year_quarter_id"}))
	_, err = repo.CurrentYearQuarter(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListYearQuartersSkipsMalformed(t *testing.T) {
	db, mock := newMock(t)
	now := time.Date(2024, 3, 5, 15, 30, 0, 0, time.UTC)
	repo := NewCatalogRepo(db)
	repo.now = func() time.Time { return now }

	mock.ExpectQuery(regexp.QuoteMeta("LIMIT ?")).
		WithArgs(now, 4).
		WillReturnRows(sqlmock.NewRows([]string{"year_quarter_id"}).
			AddRow("B344").AddRow("B3").AddRow("B343"))

	got, err := repo.ListYearQuarters(context.Background(), 4)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "B344", got[0].Code())
	assert.Equal(t, "B343", got[1].Code())
}

func TestGetCourses(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCatalogRepo(db)

	got, err := repo.GetCourses(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)

	mock.ExpectQuery(regexp.QuoteMeta("TRIM(TRAILING '&' FROM c.course_subject) IN (?,?)") +
		`\s+` + regexp.QuoteMeta("ORDER BY c.course_subject, c.course_number")).
		WithArgs("ENGL", "MATH").
		WillReturnRows(sqlmock.NewRows([]string{"course_subject", "course_number", "title", "credits", "is_variable_credits", "description"}).
			AddRow("ENGL&", "101", "English Composition I ", 5.0, false, "Expository writing").
			AddRow("MATH", "141", "Precalculus I", 5.0, false, nil))

	got, err = repo.GetCourses(context.Background(), []string{"ENGL", "MATH"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "ENGL& 101", got[0].ID.String())
	assert.True(t, got[0].IsCommonCourse)
	assert.Equal(t, "English Composition I", got[0].Title)
	assert.Equal(t, "Expository writing", got[0].Description)
	assert.Equal(t, "MATH 141", got[1].ID.String())
	assert.False(t, got[1].IsCommonCourse)
	assert.Empty(t, got[1].Description)
}
