package entity

import (
	"sort"
	"time"
)

// FirstNavTrackingMarker is the annotation looked up by the flight query
const FirstNavTrackingMarker = "FIRST_NAV_TRACKING"

// FlightEvent is one recorded telemetry message. RawEvent is kept as text since
// imported data may hold malformed JSON that must still be storable.
type FlightEvent struct {
	ID                uint
	FlightID          uint
	RawEvent          string
	FlightState       string
	Priority          int
	IdentifiedChanges string
	IsPlayed          bool
	CreatedAt         time.Time
}

// FlightEventMatch pairs an event with the unique id of its flight
type FlightEventMatch struct {
	FlightUniqueID string
	Event          *FlightEvent
}

// EventInput carries the editable fields of an event
type EventInput struct {
	RawEvent          string `json:"raw_event"`
	FlightState       string `json:"flight_state"`
	Priority          int    `json:"priority"`
	IdentifiedChanges string `json:"identified_changes"`
}

// SessionState summarizes the play flags of a flight
type SessionState string

const (
	SessionIdle       SessionState = "idle"
	SessionInProgress SessionState = "in_progress"
	SessionComplete   SessionState = "complete"
)

// ResolveInsertPriority returns the priority a new event takes and whether the
// existing events at or above it must shift up by one.
//
// requested <= 0 appends after the current maximum, a value above the maximum
// is kept as is, anything else inserts at that position.
func ResolveInsertPriority(requested, maxPriority int) (priority int, shift bool) {
	switch {
	case requested <= 0:
		return maxPriority + 1, false
	case requested > maxPriority:
		return requested, false
	default:
		return requested, true
	}
}

// SortByPriority orders events by ascending priority, keeping insertion order
// between equal priorities.
func SortByPriority(events []*FlightEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Priority < events[j].Priority
	})
}

// DeriveSessionState reports idle when nothing has been played, complete when
// everything has, and in progress otherwise.
func DeriveSessionState(events []*FlightEvent) SessionState {
	played := 0
	for _, e := range events {
		if e.IsPlayed {
			played++
		}
	}
	switch {
	case played == 0:
		return SessionIdle
	case played == len(events):
		return SessionComplete
	default:
		return SessionInProgress
	}
}
