// Package queue defines the seat refresh messages exchanged over RabbitMQ
// and the worker loop that consumes them.
package queue

import (
	"time"

	"github.com/iliyamo/class-schedule/internal/model"
)

// SeatRefreshQueue is the default queue name.
const SeatRefreshQueue = "seat.refresh.requested"

// SeatRefreshRequested asks a worker to refresh the seat snapshot of one
// section.  Source records who asked (e.g. "search").
type SeatRefreshRequested struct {
	ClassID     string `json:"class_id"`
	Source      string `json:"source"`
	RequestedAt string `json:"requested_at"`
}

// NewSeatRefreshRequested builds an event for id.
func NewSeatRefreshRequested(id model.ClassID, source string, at time.Time) SeatRefreshRequested {
	return SeatRefreshRequested{ClassID: id.String(), Source: source, RequestedAt: at.UTC().Format(time.RFC3339)}
}
