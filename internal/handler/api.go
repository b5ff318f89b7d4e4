package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/class-schedule/internal/crosslist"
	"github.com/iliyamo/class-schedule/internal/middleware"
	"github.com/iliyamo/class-schedule/internal/model"
	"github.com/iliyamo/class-schedule/internal/seats"
)

// allQuarters selects subjects across every quarter in the catalog.
const allQuarters = "All"

type SubjectLister interface {
	ListSubjects(ctx context.Context, yrq model.YearQuarter) ([]model.Subject, error)
}

type CourseLister interface {
	GetCourses(ctx context.Context, prefixes []string) ([]model.Course, error)
}

type CrosslistResolver interface {
	Resolve(ctx context.Context, courseID, quarterCode string) (*crosslist.Report, error)
}

type SeatRefresher interface {
	Refresh(ctx context.Context, id model.ClassID) (seats.Result, error)
}

type FootnoteStore interface {
	UpdateSectionFootnote(ctx context.Context, id model.ClassID, text, by string, now time.Time) (bool, error)
	UpsertCourseFootnote(ctx context.Context, courseID model.CourseID, text, by string, now time.Time) error
}

// APIHandler serves the JSON endpoints used by the schedule pages.
type APIHandler struct {
	SubjectRepo  SubjectLister
	CourseRepo   CourseLister
	Resolver     CrosslistResolver
	Refresher    SeatRefresher
	FootnoteRepo FootnoteStore
	Now          func() time.Time
}

func (h *APIHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// Subjects handles GET /api/subjects?YearQuarter=.  An empty value or
// "All" lists subjects across all quarters.
func (h *APIHandler) Subjects(c echo.Context) error {
	var yrq model.YearQuarter
	if raw := strings.TrimSpace(c.QueryParam("YearQuarter")); raw != "" && !strings.EqualFold(raw, allQuarters) {
		var err error
		if yrq, err = model.ParseYearQuarterInput(raw); err != nil {
			return writeError(c, err)
		}
	}
	subjects, err := h.SubjectRepo.ListSubjects(c.Request().Context(), yrq)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, subjects)
}

// Courses handles GET /api/courses?prefix=ENGL&prefix=MATH (or a comma
// separated list).
func (h *APIHandler) Courses(c echo.Context) error {
	var raw []string
	for _, v := range c.QueryParams()["prefix"] {
		raw = append(raw, strings.Split(v, ",")...)
	}
	prefixes, err := model.NormalizePrefixes(raw)
	if err != nil {
		return writeError(c, err)
	}
	courses, err := h.CourseRepo.GetCourses(c.Request().Context(), prefixes)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, courses)
}

type crosslistResponse struct {
	*crosslist.Report
	InvalidQuarter bool `json:"invalid_quarter"`
}

// Crosslisted handles GET /api/crosslisted?courseID=&yearQuarterID=.
func (h *APIHandler) Crosslisted(c echo.Context) error {
	rep, err := h.Resolver.Resolve(c.Request().Context(), c.QueryParam("courseID"), strings.TrimSpace(c.QueryParam("yearQuarterID")))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, crosslistResponse{Report: rep, InvalidQuarter: rep.InvalidQuarter != nil})
}

// Seats handles POST /api/seats.  With format=legacy the body is the
// plain "seats|time" string older pages expect.
func (h *APIHandler) Seats(c echo.Context) error {
	id, err := model.ParseClassID(c.FormValue("classID"))
	if err != nil {
		return writeError(c, err)
	}
	res, err := h.Refresher.Refresh(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	if c.FormValue("format") == "legacy" {
		return c.String(http.StatusOK, res.Friendly)
	}
	return c.JSON(http.StatusOK, res)
}

// SectionFootnote handles POST /api/footnotes/section.
func (h *APIHandler) SectionFootnote(c echo.Context) error {
	id, err := model.ParseClassID(c.FormValue("classId"))
	if err != nil {
		return writeError(c, err)
	}
	text := strings.TrimSpace(c.FormValue("text"))
	changed, err := h.FootnoteRepo.UpdateSectionFootnote(c.Request().Context(), id, text, middleware.Username(c), h.now())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"result": changed, "footnote": text})
}

// CourseFootnote handles POST /api/footnotes/course.  Markup is stripped
// from the footnote before it is stored.
func (h *APIHandler) CourseFootnote(c echo.Context) error {
	cid, err := model.ParseCourseID(c.FormValue("courseId"))
	if err != nil {
		return writeError(c, err)
	}
	text := stripHTML(c.FormValue("footnote"))
	if err := h.FootnoteRepo.UpsertCourseFootnote(c.Request().Context(), cid, text, middleware.Username(c), h.now()); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"result": true, "footnote": text})
}

func stripHTML(s string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(doc.Text())
}
