package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/class-schedule/internal/model"
)

func TestListSubjectsAllQuarters(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(`FROM courses c`).
		WillReturnRows(sqlmock.NewRows([]string{"slug", "course_prefix", "title"}).
			AddRow("art", "ART", "Art").
			AddRow("english", "ENGL&", "English"))

	got, err := NewSubjectRepo(db).ListSubjects(context.Background(), model.YearQuarter{})
	require.NoError(t, err)
	assert.Equal(t, []model.Subject{
		{Slug: "art", Prefix: "ART", Title: "Art"},
		{Slug: "english", Prefix: "ENGL&", Title: "English"},
	}, got)
}

func TestListSubjectsForQuarter(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(`WHERE s.year_quarter_id = \?`).
		WithArgs("B343").
		WillReturnRows(sqlmock.NewRows([]string{"slug", "course_prefix", "title"}))

	got, err := NewSubjectRepo(db).ListSubjects(context.Background(), model.MustParseYearQuarter("B343"))
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}
