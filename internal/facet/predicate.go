package facet

import (
	"fmt"
	"strconv"
	"strings"
)

// Name identifies a facet dimension.
type Name string

const (
	NameModality     Name = "modality"
	NameDays         Name = "days"
	NameTimeRange    Name = "time"
	NameCredits      Name = "credits"
	NameAvailability Name = "avail"
	NameLateStart    Name = "latestart"
)

// Predicate is one enabled facet constraint.  Implementations are small
// comparable values; the catalog provider decides how to evaluate them.
type Predicate interface {
	Facet() Name
}

// Modality is a bitmask of accepted delivery modes.  A section matches
// when its modality is any of the set bits.
type Modality uint8

const (
	OnCampus Modality = 1 << iota
	Online
	Hybrid
	Telecourse
)

var modalityCodes = []struct {
	bit  Modality
	code string
}{
	{OnCampus, "ONCAMPUS"},
	{Online, "ONLINE"},
	{Hybrid, "HYBRID"},
	{Telecourse, "TELECOURSE"},
}

func (m Modality) Facet() Name { return NameModality }

// Codes returns the modality codes stored in the catalog, in fixed order.
func (m Modality) Codes() []string {
	var out []string
	for _, mc := range modalityCodes {
		if m&mc.bit != 0 {
			out = append(out, mc.code)
		}
	}
	return out
}

func (m Modality) String() string { return strings.Join(m.Codes(), "|") }

// Days is a bitmask of weekdays.  A section matches when it meets on any
// of the selected days.
type Days uint8

const (
	Sunday Days = 1 << iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

var dayTokens = []struct {
	bit   Days
	token string
}{
	{Sunday, "su"},
	{Monday, "m"},
	{Tuesday, "t"},
	{Wednesday, "w"},
	{Thursday, "th"},
	{Friday, "f"},
	{Saturday, "s"},
}

func (d Days) Facet() Name { return NameDays }

// Tokens returns the day tokens for the selected days, Sunday first.
func (d Days) Tokens() []string {
	var out []string
	for _, dt := range dayTokens {
		if d&dt.bit != 0 {
			out = append(out, dt.token)
		}
	}
	return out
}

func (d Days) String() string { return strings.Join(d.Tokens(), ",") }

func parseDayToken(tok string) (Days, bool) {
	tok = strings.ToLower(strings.TrimSpace(tok))
	for _, dt := range dayTokens {
		if dt.token == tok {
			return dt.bit, true
		}
	}
	return 0, false
}

// TimeRange bounds the meeting time in minutes after midnight.  Either
// bound may be absent.
type TimeRange struct {
	Start    int
	End      int
	HasStart bool
	HasEnd   bool
}

func (r TimeRange) Facet() Name { return NameTimeRange }

func (r TimeRange) String() string {
	start, end := "", ""
	if r.HasStart {
		start = clock(r.Start)
	}
	if r.HasEnd {
		end = clock(r.End)
	}
	return start + "-" + end
}

func clock(min int) string { return fmt.Sprintf("%02d:%02d", min/60, min%60) }

// Credits matches sections worth at least Min credits.
type Credits struct {
	Min float64
}

func (c Credits) Facet() Name { return NameCredits }

func (c Credits) String() string { return strconv.FormatFloat(c.Min, 'f', -1, 64) }

// Availability restricts results to sections with open seats.
type Availability struct{}

func (Availability) Facet() Name { return NameAvailability }

// LateStart restricts results to sections that begin after the quarter.
type LateStart struct{}

func (LateStart) Facet() Name { return NameLateStart }
