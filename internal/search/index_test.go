package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/class-schedule/internal/model"
)

func TestSeatSnapshotIndexKeepsLatest(t *testing.T) {
	older := seats("0001B343", 10, fixedNow.Add(-time.Hour))
	newer := seats("0001B343", 2, fixedNow)
	idx := NewSeatSnapshotIndex([]model.ScheduleData{newer, older, {}})

	require.Equal(t, 1, idx.Len())
	row, ok := idx.Lookup(model.MustParseClassID("0001B343"))
	require.True(t, ok)
	assert.Equal(t, model.Seats(2), row.Seats.Count())
}

func TestSeatSnapshotIndexNil(t *testing.T) {
	var idx *SeatSnapshotIndex
	_, ok := idx.Lookup(model.MustParseClassID("0001B343"))
	assert.False(t, ok)
	assert.Equal(t, 0, idx.Len())
}
