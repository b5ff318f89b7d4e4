// Package facet turns raw search filter inputs into an immutable,
// comparable predicate set.  The set is evaluated by the catalog provider;
// nothing here touches section data.
package facet

import (
	"strconv"
	"strings"
	"time"

	"github.com/iliyamo/class-schedule/internal/model"
)

// MaxCredits is the highest accepted minimum-credit filter.
const MaxCredits = 30

// Input carries facet values exactly as they arrive from the request.
// Empty strings mean "no constraint".
type Input struct {
	OnCampus   string
	Online     string
	Hybrid     string
	Telecourse string

	Sunday    string
	Monday    string
	Tuesday   string
	Wednesday string
	Thursday  string
	Friday    string
	Saturday  string
	// DayTokens is an alternative to the per-day flags, e.g. ["m","w","f"].
	DayTokens []string

	TimeStart  string
	TimeEnd    string
	NumCredits string
	Avail      string
	LateStart  string
}

// Set is the validated facet selection.  It holds no slices or pointers so
// two sets built from the same input compare equal with ==.
type Set struct {
	modality  Modality
	days      Days
	timeRange TimeRange
	credits   Credits
	hasCredit bool
	openOnly  bool
	lateStart bool
}

// Build validates in and returns the corresponding Set.
func Build(in Input) (Set, error) {
	var s Set

	modalities := []struct {
		field string
		value string
		bit   Modality
	}{
		{"f_oncampus", in.OnCampus, OnCampus},
		{"f_online", in.Online, Online},
		{"f_hybrid", in.Hybrid, Hybrid},
		{"f_telecourse", in.Telecourse, Telecourse},
	}
	for _, m := range modalities {
		on, err := parseFlag(m.field, m.value)
		if err != nil {
			return Set{}, err
		}
		if on {
			s.modality |= m.bit
		}
	}

	days := []struct {
		field string
		value string
		bit   Days
	}{
		{"day_su", in.Sunday, Sunday},
		{"day_m", in.Monday, Monday},
		{"day_t", in.Tuesday, Tuesday},
		{"day_w", in.Wednesday, Wednesday},
		{"day_th", in.Thursday, Thursday},
		{"day_f", in.Friday, Friday},
		{"day_s", in.Saturday, Saturday},
	}
	for _, d := range days {
		on, err := parseFlag(d.field, d.value)
		if err != nil {
			return Set{}, err
		}
		if on {
			s.days |= d.bit
		}
	}
	for _, tok := range in.DayTokens {
		if strings.TrimSpace(tok) == "" {
			continue
		}
		bit, ok := parseDayToken(tok)
		if !ok {
			return Set{}, invalid("days", tok, "unknown day token")
		}
		s.days |= bit
	}

	if v := strings.TrimSpace(in.TimeStart); v != "" {
		min, err := parseClock(v)
		if err != nil {
			return Set{}, invalid("timestart", in.TimeStart, "malformed time")
		}
		s.timeRange.Start, s.timeRange.HasStart = min, true
	}
	if v := strings.TrimSpace(in.TimeEnd); v != "" {
		min, err := parseClock(v)
		if err != nil {
			return Set{}, invalid("timeend", in.TimeEnd, "malformed time")
		}
		s.timeRange.End, s.timeRange.HasEnd = min, true
	}
	if s.timeRange.HasStart && s.timeRange.HasEnd && s.timeRange.Start > s.timeRange.End {
		return Set{}, invalid("timestart", in.TimeStart, "start is after end")
	}

	switch v := strings.ToLower(strings.TrimSpace(in.NumCredits)); v {
	case "", "any":
	default:
		n, err := strconv.ParseFloat(v, 64)
		if err != nil || !(n >= 0 && n <= MaxCredits) {
			return Set{}, invalid("numcredits", in.NumCredits, "must be a number between 0 and 30")
		}
		s.credits, s.hasCredit = Credits{Min: n}, true
	}

	switch strings.ToLower(strings.TrimSpace(in.Avail)) {
	case "", "all":
	case "open":
		s.openOnly = true
	default:
		return Set{}, invalid("avail", in.Avail, "must be all or open")
	}

	late, err := parseFlag("latestart", in.LateStart)
	if err != nil {
		return Set{}, err
	}
	s.lateStart = late

	return s, nil
}

// IsEmpty reports whether no facet is constraining.
func (s Set) IsEmpty() bool { return s == Set{} }

// Modality returns the selected modalities; zero means any.
func (s Set) Modality() Modality { return s.modality }

// Days returns the selected days; zero means any.
func (s Set) Days() Days { return s.days }

// TimeRange returns the meeting time window and whether one is set.
func (s Set) TimeRange() (TimeRange, bool) {
	return s.timeRange, s.timeRange.HasStart || s.timeRange.HasEnd
}

// Credits returns the minimum-credit filter and whether one is set.
func (s Set) Credits() (Credits, bool) { return s.credits, s.hasCredit }

// OpenOnly reports whether only sections with open seats are wanted.
func (s Set) OpenOnly() bool { return s.openOnly }

// LateStartOnly reports whether only late-start sections are wanted.
func (s Set) LateStartOnly() bool { return s.lateStart }

// Predicates lists the enabled predicates in a fixed order.
func (s Set) Predicates() []Predicate {
	var out []Predicate
	if s.modality != 0 {
		out = append(out, s.modality)
	}
	if s.days != 0 {
		out = append(out, s.days)
	}
	if tr, ok := s.TimeRange(); ok {
		out = append(out, tr)
	}
	if s.hasCredit {
		out = append(out, s.credits)
	}
	if s.openOnly {
		out = append(out, Availability{})
	}
	if s.lateStart {
		out = append(out, LateStart{})
	}
	return out
}

// Key is a canonical string for the set, suitable for cache keys.  Equal
// sets produce equal keys.
func (s Set) Key() string {
	var parts []string
	if s.modality != 0 {
		parts = append(parts, "mod="+s.modality.String())
	}
	if s.days != 0 {
		parts = append(parts, "days="+s.days.String())
	}
	if tr, ok := s.TimeRange(); ok {
		parts = append(parts, "time="+tr.String())
	}
	if s.hasCredit {
		parts = append(parts, "cr="+s.credits.String())
	}
	if s.openOnly {
		parts = append(parts, "avail=open")
	}
	if s.lateStart {
		parts = append(parts, "late=1")
	}
	return strings.Join(parts, ";")
}

func parseFlag(field, v string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "off", "false", "0", "no":
		return false, nil
	case "on", "true", "1", "yes":
		return true, nil
	}
	return false, invalid(field, v, "expected on/off")
}

var clockLayouts = []string{"15:04", "3:04pm", "3:04 pm", "3pm", "3 pm"}

// parseClock returns minutes after midnight.
func parseClock(v string) (int, error) {
	v = strings.ToLower(v)
	var lastErr error
	for _, layout := range clockLayouts {
		t, err := time.Parse(layout, v)
		if err == nil {
			return t.Hour()*60 + t.Minute(), nil
		}
		lastErr = err
	}
	return 0, lastErr
}

func invalid(field, value, reason string) error {
	return model.NewValidationError(model.ErrInvalidFacetValue, field, value, reason)
}
