// Package seats refreshes seat snapshots from the live registration
// system.  A failed lookup never discards a known count: the previous
// snapshot is kept and reported as stale.
package seats

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/iliyamo/class-schedule/internal/model"
)

// ErrSeatsNotFound is returned when the registration page loaded but did
// not contain a seat count.
var ErrSeatsNotFound = errors.New("seat count not found on page")

// ErrLookupDisabled is returned by Disabled.
var ErrLookupDisabled = errors.New("live seat lookup disabled")

// Lookup fetches the current open seat count for a section.
type Lookup interface {
	LookupSeats(ctx context.Context, id model.ClassID) (int, error)
}

// LookupFunc adapts a function to Lookup.
type LookupFunc func(ctx context.Context, id model.ClassID) (int, error)

func (f LookupFunc) LookupSeats(ctx context.Context, id model.ClassID) (int, error) { return f(ctx, id) }

// Disabled never contacts the registration system, so every refresh
// serves the stored snapshot.
var Disabled Lookup = LookupFunc(func(context.Context, model.ClassID) (int, error) {
	return 0, ErrLookupDisabled
})

// HTTPLookup scrapes the registration system's class status page.
type HTTPLookup struct {
	client      *http.Client
	urlTemplate string
	selector    string
	userAgent   string
}

// NewHTTPLookup returns a lookup.  urlTemplate is formatted with the item
// number and quarter code; selector picks the element holding the count.
func NewHTTPLookup(client *http.Client, urlTemplate, selector, userAgent string, timeout time.Duration) *HTTPLookup {
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &HTTPLookup{client: client, urlTemplate: urlTemplate, selector: selector, userAgent: userAgent}
}

var firstNumber = regexp.MustCompile(`-?\d+`)

// LookupSeats requests the status page for id and parses the count.  A
// page reporting the class as full yields 0.
func (l *HTTPLookup) LookupSeats(ctx context.Context, id model.ClassID) (int, error) {
	u := fmt.Sprintf(l.urlTemplate, url.QueryEscape(id.ItemNumber()), url.QueryEscape(id.QuarterCode()))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, fmt.Errorf("build seat request: %w", err)
	}
	if l.userAgent != "" {
		req.Header.Set("User-Agent", l.userAgent)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("seat request for %s: %w", id, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("seat request for %s: unexpected status %d", id, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("parse seat page for %s: %w", id, err)
	}
	return parseSeats(doc.Find(l.selector).First().Text())
}

func parseSeats(text string) (int, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, ErrSeatsNotFound
	}
	if strings.Contains(strings.ToLower(text), "full") {
		return 0, nil
	}
	m := firstNumber.FindString(text)
	if m == "" {
		return 0, ErrSeatsNotFound
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, ErrSeatsNotFound
	}
	return n, nil
}
