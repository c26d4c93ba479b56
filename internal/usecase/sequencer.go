package usecase

import "flight-event-mock-service/internal/domain/entity"

// PlayDecision is the outcome of a sequencing check
type PlayDecision struct {
	Allowed         bool
	EventID         uint
	IsPlayed        bool
	EventPriority   int
	CurrentPriority int
	MinPriority     int
	IsFirstEvent    bool
}

// Details renders the decision for an error response
func (d PlayDecision) Details() map[string]interface{} {
	return map[string]interface{}{
		"event_id":         d.EventID,
		"is_played":        d.IsPlayed,
		"event_priority":   d.EventPriority,
		"current_priority": d.CurrentPriority,
		"min_priority":     d.MinPriority,
		"is_first_event":   d.IsFirstEvent,
	}
}

// Sequencer decides which events may be played. It holds no state and only
// reads the event slices it is given.
type Sequencer struct{}

// NewSequencer creates a new sequencer
func NewSequencer() *Sequencer {
	return &Sequencer{}
}

// CurrentPriority is the highest priority among played events, or 0
func (s *Sequencer) CurrentPriority(events []*entity.FlightEvent) int {
	current := 0
	for _, e := range events {
		if e.IsPlayed && e.Priority > current {
			current = e.Priority
		}
	}
	return current
}

// MinPriority is the lowest priority of the flight, or 0 without events
func (s *Sequencer) MinPriority(events []*entity.FlightEvent) int {
	if len(events) == 0 {
		return 0
	}
	lowest := events[0].Priority
	for _, e := range events[1:] {
		if e.Priority < lowest {
			lowest = e.Priority
		}
	}
	return lowest
}

// CanPlay allows replays, events at or beyond the current priority, and the
// first event of the flight at any time.
func (s *Sequencer) CanPlay(events []*entity.FlightEvent, event *entity.FlightEvent, isReplay bool) PlayDecision {
	current := s.CurrentPriority(events)
	lowest := s.MinPriority(events)

	return PlayDecision{
		Allowed:         isReplay || event.Priority >= current || event.Priority == lowest,
		EventID:         event.ID,
		IsPlayed:        event.IsPlayed,
		EventPriority:   event.Priority,
		CurrentPriority: current,
		MinPriority:     lowest,
		IsFirstEvent:    event.Priority == lowest,
	}
}

// NextCandidate returns the lowest priority unplayed event above
// afterPriority, or nil.
func (s *Sequencer) NextCandidate(events []*entity.FlightEvent, afterPriority int) *entity.FlightEvent {
	var next *entity.FlightEvent
	for _, e := range events {
		if e.IsPlayed || e.Priority <= afterPriority {
			continue
		}
		if next == nil || e.Priority < next.Priority {
			next = e
		}
	}
	return next
}
