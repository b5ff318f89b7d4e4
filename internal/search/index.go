package search

import "github.com/iliyamo/class-schedule/internal/model"

// SeatSnapshotIndex looks up schedule data (seat snapshot and editorial
// metadata) by ClassID.  It is built once per request and never mutated.
type SeatSnapshotIndex struct {
	byID map[model.ClassID]model.ScheduleData
}

// NewSeatSnapshotIndex indexes rows by ClassID.  When a ClassID appears
// more than once the row with the most recent seat update wins; on a tie
// the first row is kept.
func NewSeatSnapshotIndex(rows []model.ScheduleData) *SeatSnapshotIndex {
	idx := &SeatSnapshotIndex{byID: make(map[model.ClassID]model.ScheduleData, len(rows))}
	for _, row := range rows {
		if row.ClassID.IsZero() {
			continue
		}
		prev, ok := idx.byID[row.ClassID]
		if ok && !row.Seats.UpdatedAt().After(prev.Seats.UpdatedAt()) {
			continue
		}
		idx.byID[row.ClassID] = row
	}
	return idx
}

// Lookup returns the row for id.  A nil index finds nothing.
func (x *SeatSnapshotIndex) Lookup(id model.ClassID) (model.ScheduleData, bool) {
	if x == nil {
		return model.ScheduleData{}, false
	}
	row, ok := x.byID[id]
	return row, ok
}

// Len returns the number of indexed ClassIDs.
func (x *SeatSnapshotIndex) Len() int {
	if x == nil {
		return 0
	}
	return len(x.byID)
}
