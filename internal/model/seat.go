package model

import (
	"encoding/json"
	"strconv"
	"time"
)

// SeatCount is the number of open seats, or unknown when no snapshot
// exists.  Unknown is never rendered as zero.
type SeatCount struct {
	Value int
	Known bool
}

// UnknownSeats is the sentinel used when no snapshot is available.
var UnknownSeats = SeatCount{}

// Seats returns a known seat count.
func Seats(n int) SeatCount { return SeatCount{Value: n, Known: true} }

// Display renders the count for people.
func (s SeatCount) Display() string {
	if !s.Known {
		return "unknown"
	}
	if s.Value <= 0 {
		return "Class full"
	}
	return strconv.Itoa(s.Value)
}

func (s SeatCount) String() string {
	if !s.Known {
		return "unknown"
	}
	return strconv.Itoa(s.Value)
}

// MarshalJSON encodes unknown as null.
func (s SeatCount) MarshalJSON() ([]byte, error) {
	if !s.Known {
		return []byte("null"), nil
	}
	return json.Marshal(s.Value)
}

// UnmarshalJSON decodes null as unknown.
func (s *SeatCount) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*s = UnknownSeats
		return nil
	}
	var n int
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*s = Seats(n)
	return nil
}

// SeatSnapshot is the latest known seat count for a section.  Both
// fields are optional: a row may exist before the first successful
// lookup.
//
// Fields:
//
//	ClassID        – section the snapshot belongs to.
//	SeatsAvailable – nil when no count has been recorded.
//	LastUpdated    – nil when never refreshed.
type SeatSnapshot struct {
	ClassID        ClassID
	SeatsAvailable *int
	LastUpdated    *time.Time
}

// Count returns the snapshot's seats as a SeatCount.
func (s SeatSnapshot) Count() SeatCount {
	if s.SeatsAvailable == nil {
		return UnknownSeats
	}
	return Seats(*s.SeatsAvailable)
}

// UpdatedAt returns the last update time or the zero time.
func (s SeatSnapshot) UpdatedAt() time.Time {
	if s.LastUpdated == nil {
		return time.Time{}
	}
	return *s.LastUpdated
}

// ScheduleData is the per-section row maintained by this application:
// the seat snapshot plus editorial metadata.  Every field other than
// ClassID may be empty.
type ScheduleData struct {
	ClassID           ClassID
	Seats             SeatSnapshot
	SectionFootnote   string
	CourseFootnote    string
	CustomTitle       string
	CustomDescription string
}

// SectionMeta is the editorial metadata attached to one section.
type SectionMeta struct {
	ClassID       ClassID
	Footnote      string
	LastUpdated   time.Time
	LastUpdatedBy string
}

// CourseMeta is the editorial metadata attached to one course.
type CourseMeta struct {
	CourseID      string
	Footnote      string
	LastUpdated   time.Time
	LastUpdatedBy string
}
