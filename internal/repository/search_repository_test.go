package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/class-schedule/internal/model"
)

func TestCourseKey(t *testing.T) {
	tests := map[string]string{
		"engl& 101": "ENGL 101",
		"ENGL 101":  "ENGL 101",
		"art":       "ART",
	}
	for in, want := range tests {
		assert.Equal(t, want, courseKey(in), in)
	}
}

func TestSearchSections(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM sections s")).
		WithArgs("engl& 101", "B343", "engl& 101", "ENGL 101").
		WillReturnRows(sqlmock.NewRows([]string{"class_id", "rnk"}).
			AddRow("1234B343", 812).
			AddRow("oops", 500).
			AddRow("5678b343", 0))

	hits, err := NewSearchRepo(db).SearchSections(context.Background(), "engl& 101", model.MustParseYearQuarter("B343"))
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "1234B343", hits[0].ClassID.String())
	assert.Equal(t, 812, hits[0].Rank)
	assert.Equal(t, "5678B343", hits[1].ClassID.String())
	assert.Equal(t, 0, hits[1].Rank)
}

func TestSearchSectionsError(t *testing.T) {
	db, mock := newMock(t)
	boom := errors.New("boom")
	mock.ExpectQuery(regexp.QuoteMeta("FROM sections s")).WillReturnError(boom)

	_, err := NewSearchRepo(db).SearchSections(context.Background(), "x", model.MustParseYearQuarter("B343"))
	assert.ErrorIs(t, err, boom)
}

func TestSearchNoSectionCourses(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM courses c")).
		WithArgs("poetry", "poetry", "B343").
		WillReturnRows(sqlmock.NewRows([]string{"course_subject", "course_number", "title", "rnk"}).
			AddRow("ENGL&", "236", " Creative Writing ", 640))

	hits, err := NewSearchRepo(db).SearchNoSectionCourses(context.Background(), "poetry", model.MustParseYearQuarter("B343"))
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "ENGL& 236", hits[0].CourseID.String())
	assert.Equal(t, "ENGL", hits[0].Subject)
	assert.Equal(t, "236", hits[0].CourseNumber)
	assert.Equal(t, "Creative Writing", hits[0].Title)
	assert.Equal(t, 640, hits[0].Rank)
}
