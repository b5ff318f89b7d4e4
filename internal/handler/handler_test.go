package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/class-schedule/internal/crosslist"
	"github.com/iliyamo/class-schedule/internal/facet"
	"github.com/iliyamo/class-schedule/internal/model"
	"github.com/iliyamo/class-schedule/internal/repository"
	"github.com/iliyamo/class-schedule/internal/search"
	"github.com/iliyamo/class-schedule/internal/seats"
)

type fakeSearcher struct {
	search func(ctx context.Context, req search.Request) (*search.Response, error)
	got    search.Request
}

func (f *fakeSearcher) Search(ctx context.Context, req search.Request) (*search.Response, error) {
	f.got = req
	if f.search != nil {
		return f.search(ctx, req)
	}
	return &search.Response{Term: req.Term, Searched: req.Term != ""}, nil
}

type fakeAPI struct {
	subjects func(ctx context.Context, yrq model.YearQuarter) ([]model.Subject, error)
	courses  func(ctx context.Context, prefixes []string) ([]model.Course, error)
	resolve  func(ctx context.Context, courseID, quarterCode string) (*crosslist.Report, error)
	refresh  func(ctx context.Context, id model.ClassID) (seats.Result, error)
	section  func(ctx context.Context, id model.ClassID, text, by string, now time.Time) (bool, error)
	course   func(ctx context.Context, courseID model.CourseID, text, by string, now time.Time) error
}

func (f *fakeAPI) ListSubjects(ctx context.Context, yrq model.YearQuarter) ([]model.Subject, error) {
	return f.subjects(ctx, yrq)
}

func (f *fakeAPI) GetCourses(ctx context.Context, prefixes []string) ([]model.Course, error) {
	return f.courses(ctx, prefixes)
}

func (f *fakeAPI) Resolve(ctx context.Context, courseID, quarterCode string) (*crosslist.Report, error) {
	return f.resolve(ctx, courseID, quarterCode)
}

func (f *fakeAPI) Refresh(ctx context.Context, id model.ClassID) (seats.Result, error) {
	return f.refresh(ctx, id)
}

func (f *fakeAPI) UpdateSectionFootnote(ctx context.Context, id model.ClassID, text, by string, now time.Time) (bool, error) {
	return f.section(ctx, id, text, by, now)
}

func (f *fakeAPI) UpsertCourseFootnote(ctx context.Context, courseID model.CourseID, text, by string, now time.Time) error {
	return f.course(ctx, courseID, text, by, now)
}

var handlerNow = time.Date(2024, 3, 5, 15, 30, 0, 0, time.UTC)

func apiHandler(f *fakeAPI) *APIHandler {
	return &APIHandler{SubjectRepo: f, CourseRepo: f, Resolver: f, Refresher: f, FootnoteRepo: f, Now: func() time.Time { return handlerNow }}
}

func get(t *testing.T, h echo.HandlerFunc, target string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, target, nil), rec)
	require.NoError(t, h(c))
	return rec
}

func post(t *testing.T, h echo.HandlerFunc, form url.Values, user string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if user != "" {
		c.Set("user", user)
	}
	require.NoError(t, h(c))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	return m
}

func TestSearchParsesRequest(t *testing.T) {
	f := &fakeSearcher{}
	h := NewSearchHandler(f, "")

	rec := get(t, h.Search, "/search?searchterm=english%20%20%20101&quarter=Winter2014&Subject=ENGL&f_online=on&day_m=on&avail=open&p_offset=40")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "english 101", f.got.Term)
	assert.Equal(t, "B343", f.got.YearQuarter.Code())
	assert.Equal(t, "ENGL", f.got.Subject)
	assert.Equal(t, 40, f.got.Offset)
	want, err := facet.Build(facet.Input{Online: "on", Monday: "on", Avail: "open"})
	require.NoError(t, err)
	assert.Equal(t, want, f.got.Facets)
	assert.Equal(t, "english 101", decode(t, rec)["searchterm"])
}

func TestSearchRejectsBadInput(t *testing.T) {
	f := &fakeSearcher{search: func(context.Context, search.Request) (*search.Response, error) {
		t.Fatal("search must not run")
		return nil, nil
	}}
	h := NewSearchHandler(f, "")

	rec := get(t, h.Search, "/search?quarter=24")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_year_quarter", decode(t, rec)["error"])

	rec = get(t, h.Search, "/search?timestart=25:99")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_facet_value", decode(t, rec)["error"])
}

func TestSearchBadOffsetMeansFirstPage(t *testing.T) {
	f := &fakeSearcher{}
	rec := get(t, NewSearchHandler(f, "").Search, "/search?searchterm=x&p_offset=-3")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, f.got.Offset)
}

func TestSearchContinuingEdRedirect(t *testing.T) {
	h := NewSearchHandler(&fakeSearcher{}, "https://ce.example.edu/search?site=1")
	rec := get(t, h.Search, "/search?quarter=ce&searchterm=yoga")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://ce.example.edu/search?searchterm=yoga&site=1", rec.Header().Get(echo.HeaderLocation))

	rec = get(t, NewSearchHandler(&fakeSearcher{}, "").Search, "/search?quarter=CE")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSearchServiceFailure(t *testing.T) {
	f := &fakeSearcher{search: func(context.Context, search.Request) (*search.Response, error) {
		return nil, errors.New("boom")
	}}
	rec := get(t, NewSearchHandler(f, "").Search, "/search?searchterm=x")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestSubjectsQuarterSelection(t *testing.T) {
	var got model.YearQuarter
	f := &fakeAPI{subjects: func(_ context.Context, yrq model.YearQuarter) ([]model.Subject, error) {
		got = yrq
		return []model.Subject{{Slug: "english", Prefix: "ENGL&", Title: "English"}}, nil
	}}
	h := apiHandler(f)

	rec := get(t, h.Subjects, "/api/subjects?YearQuarter=All")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, got.IsZero())
	assert.JSONEq(t, `[{"slug":"english","subject":"ENGL&","title":"English"}]`, rec.Body.String())

	rec = get(t, h.Subjects, "/api/subjects?YearQuarter=Spring%202014")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "B344", got.Code())

	rec = get(t, h.Subjects, "/api/subjects?YearQuarter=nope")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCoursesPrefixLimits(t *testing.T) {
	var got []string
	f := &fakeAPI{courses: func(_ context.Context, prefixes []string) ([]model.Course, error) {
		got = prefixes
		return []model.Course{}, nil
	}}
	h := apiHandler(f)

	rec := get(t, h.Courses, "/api/courses?prefix=engl%26,math&prefix=ART")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"ENGL", "MATH", "ART"}, got)

	rec = get(t, h.Courses, "/api/courses")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "no_prefixes", decode(t, rec)["error"])

	rec = get(t, h.Courses, "/api/courses?prefix=A,B,C,D,E,F")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "too_many_prefixes", decode(t, rec)["error"])
}

func TestCrosslistedReport(t *testing.T) {
	f := &fakeAPI{resolve: func(_ context.Context, courseID, quarter string) (*crosslist.Report, error) {
		rep := &crosslist.Report{CourseID: courseID, QuarterCode: quarter, SiblingClassIDs: []model.ClassID{}, Courses: []model.CrossListedCourse{}}
		if quarter == "24" {
			rep.InvalidQuarter = errors.New("bad quarter")
		} else {
			rep.NoneFound = true
		}
		return rep, nil
	}}
	h := apiHandler(f)

	rec := get(t, h.Crosslisted, "/api/crosslisted?courseID=ART%20101&yearQuarterID=24")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["invalid_quarter"])
	assert.Equal(t, "ART 101", body["course_id"])

	rec = get(t, h.Crosslisted, "/api/crosslisted?courseID=ART%20101&yearQuarterID=B343")
	body = decode(t, rec)
	assert.Equal(t, false, body["invalid_quarter"])
	assert.Equal(t, true, body["none_found"])
}

func TestSeatsRefresh(t *testing.T) {
	f := &fakeAPI{refresh: func(_ context.Context, id model.ClassID) (seats.Result, error) {
		assert.Equal(t, "1234B343", id.String())
		return seats.Result{Seats: model.Seats(5), Refreshed: true, Friendly: "5|3:30 pm"}, nil
	}}
	h := apiHandler(f)

	rec := post(t, h.Seats, url.Values{"classID": {"1234B343"}}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, float64(5), body["seats"])
	assert.Equal(t, "5|3:30 pm", body["friendly"])

	rec = post(t, h.Seats, url.Values{"classID": {"1234B343"}, "format": {"legacy"}}, "")
	assert.Equal(t, "5|3:30 pm", rec.Body.String())

	rec = post(t, h.Seats, url.Values{"classID": {"12"}}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_class_id", decode(t, rec)["error"])
}

func TestSectionFootnote(t *testing.T) {
	var gotText, gotBy string
	f := &fakeAPI{section: func(_ context.Context, _ model.ClassID, text, by string, now time.Time) (bool, error) {
		gotText, gotBy = text, by
		assert.Equal(t, handlerNow, now)
		return true, nil
	}}
	rec := post(t, apiHandler(f).SectionFootnote, url.Values{"classId": {"1234B343"}, "text": {"  Meets in the lab.  "}}, "jdoe")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Meets in the lab.", gotText)
	assert.Equal(t, "jdoe", gotBy)
	assert.JSONEq(t, `{"result":true,"footnote":"Meets in the lab."}`, rec.Body.String())
}

func TestCourseFootnoteStripsMarkup(t *testing.T) {
	var got string
	f := &fakeAPI{course: func(_ context.Context, cid model.CourseID, text, _ string, _ time.Time) error {
		assert.Equal(t, "ENGL& 101", cid.String())
		got = text
		return nil
	}}
	rec := post(t, apiHandler(f).CourseFootnote, url.Values{"courseId": {"ENGL& 101"}, "footnote": {"<p>Transfers as <b>ENGL 101</b></p>"}}, "admin")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Transfers as ENGL 101", got)
}

func TestHealth(t *testing.T) {
	rec := get(t, Health(map[string]Check{"db": func(context.Context) error { return nil }}), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = get(t, Health(map[string]Check{"db": func(context.Context) error { return errors.New("down") }}), "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, map[string]any{"db": "down"}, decode(t, rec)["failed"])
}

func TestWriteErrorNotFound(t *testing.T) {
	f := &fakeAPI{subjects: func(context.Context, model.YearQuarter) ([]model.Subject, error) {
		return nil, fmt.Errorf("list subjects: %w", repository.ErrNotFound)
	}}
	rec := get(t, apiHandler(f).Subjects, "/api/subjects")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
