package handler

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/class-schedule/internal/facet"
	"github.com/iliyamo/class-schedule/internal/model"
	"github.com/iliyamo/class-schedule/internal/search"
)

// continuingEdQuarter is the pseudo quarter that sends the visitor to the
// continuing education catalog instead.
const continuingEdQuarter = "CE"

// Searcher runs a schedule search.
type Searcher interface {
	Search(ctx context.Context, req search.Request) (*search.Response, error)
}

// SearchHandler serves the schedule search page data.
type SearchHandler struct {
	svc             Searcher
	continuingEdURL string
}

// NewSearchHandler constructs a SearchHandler.  continuingEdURL receives
// the search term as its "searchterm" query parameter.
func NewSearchHandler(svc Searcher, continuingEdURL string) *SearchHandler {
	return &SearchHandler{svc: svc, continuingEdURL: continuingEdURL}
}

// Search handles GET /search.
func (h *SearchHandler) Search(c echo.Context) error {
	term := search.NormalizeTerm(c.QueryParam("searchterm"))
	quarter := strings.TrimSpace(c.QueryParam("quarter"))

	if strings.EqualFold(quarter, continuingEdQuarter) {
		if h.continuingEdURL == "" {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not_configured", "message": "continuing education search is not available"})
		}
		return c.Redirect(http.StatusFound, continuingEdRedirect(h.continuingEdURL, term))
	}

	req := search.Request{
		Term:    term,
		Subject: strings.TrimSpace(c.QueryParam("Subject")),
		Offset:  offsetParam(c.QueryParam("p_offset")),
	}
	if quarter != "" {
		yrq, err := model.ParseYearQuarterInput(quarter)
		if err != nil {
			return writeError(c, err)
		}
		req.YearQuarter = yrq
	}
	facets, err := facet.Build(facetInput(c))
	if err != nil {
		return writeError(c, err)
	}
	req.Facets = facets

	resp, err := h.svc.Search(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

func facetInput(c echo.Context) facet.Input {
	q := c.QueryParam
	return facet.Input{
		OnCampus:   q("f_oncampus"),
		Online:     q("f_online"),
		Hybrid:     q("f_hybrid"),
		Telecourse: q("f_telecourse"),
		Sunday:     q("day_su"),
		Monday:     q("day_m"),
		Tuesday:    q("day_t"),
		Wednesday:  q("day_w"),
		Thursday:   q("day_th"),
		Friday:     q("day_f"),
		Saturday:   q("day_s"),
		DayTokens:  c.QueryParams()["days"],
		TimeStart:  q("timestart"),
		TimeEnd:    q("timeend"),
		NumCredits: q("numcredits"),
		Avail:      q("avail"),
		LateStart:  q("latestart"),
	}
}

// offsetParam parses a page offset; anything unusable means the first page.
func offsetParam(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func continuingEdRedirect(base, term string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	if term != "" {
		q := u.Query()
		q.Set("searchterm", term)
		u.RawQuery = q.Encode()
	}
	return u.String()
}
