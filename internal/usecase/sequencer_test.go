package usecase

import (
	"testing"

	"flight-event-mock-service/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func eventsAt(priorities ...int) []*entity.FlightEvent {
	events := make([]*entity.FlightEvent, 0, len(priorities))
	for i, p := range priorities {
		events = append(events, &entity.FlightEvent{ID: uint(i + 1), Priority: p})
	}
	return events
}

func TestSequencer_NothingPlayed(t *testing.T) {
	s := NewSequencer()
	events := eventsAt(1, 2, 3)

	assert.Equal(t, 0, s.CurrentPriority(events))
	assert.Equal(t, 1, s.MinPriority(events))

	first := s.CanPlay(events, events[0], false)
	assert.True(t, first.Allowed)
	assert.True(t, first.IsFirstEvent)

	second := s.CanPlay(events, events[1], false)
	assert.True(t, second.Allowed, "every priority passes before anything was played")
	assert.False(t, second.IsFirstEvent)
}

func TestSequencer_AfterFirstPlay(t *testing.T) {
	s := NewSequencer()
	events := eventsAt(1, 2, 3)
	events[0].IsPlayed = true

	assert.Equal(t, 1, s.CurrentPriority(events))
	assert.True(t, s.CanPlay(events, events[2], false).Allowed)
	assert.True(t, s.CanPlay(events, events[0], false).Allowed, "the first event may always be played")
}

func TestSequencer_RejectsBehindCurrent(t *testing.T) {
	s := NewSequencer()
	events := eventsAt(1, 2, 3)
	events[0].IsPlayed = true
	events[2].IsPlayed = true

	decision := s.CanPlay(events, events[1], false)
	assert.False(t, decision.Allowed)
	assert.Equal(t, 3, decision.CurrentPriority)
	assert.Equal(t, 1, decision.MinPriority)

	details := decision.Details()
	assert.Equal(t, 2, details["event_priority"])
	assert.Equal(t, false, details["is_first_event"])

	assert.True(t, s.CanPlay(events, events[1], true).Allowed, "replays bypass ordering")
}

func TestSequencer_DoesNotMutate(t *testing.T) {
	s := NewSequencer()
	events := eventsAt(3, 1, 2)
	events[1].IsPlayed = true

	s.CanPlay(events, events[0], false)
	s.NextCandidate(events, 1)

	assert.Equal(t, []int{3, 1, 2}, []int{events[0].Priority, events[1].Priority, events[2].Priority})
	assert.Equal(t, []bool{false, true, false}, []bool{events[0].IsPlayed, events[1].IsPlayed, events[2].IsPlayed})
}

func TestSequencer_NextCandidate(t *testing.T) {
	s := NewSequencer()
	events := eventsAt(1, 5, 3, 4)
	events[0].IsPlayed = true
	events[2].IsPlayed = true

	next := s.NextCandidate(events, 1)
	require.NotNil(t, next)
	assert.Equal(t, 4, next.Priority)

	assert.Nil(t, s.NextCandidate(events, 5))
	assert.Equal(t, 0, s.MinPriority(nil))
}
