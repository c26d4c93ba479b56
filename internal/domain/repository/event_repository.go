package repository

import (
	"context"

	"flight-event-mock-service/internal/domain/entity"
)

// EventRepository defines the interface for flight event operations
type EventRepository interface {
	// ListByFlight returns the events of a flight ordered by ascending priority
	ListByFlight(ctx context.Context, flightID uint) ([]*entity.FlightEvent, error)
	GetByID(ctx context.Context, flightID, eventID uint) (*entity.FlightEvent, error)
	// Insert places event according to entity.ResolveInsertPriority, shifting
	// existing events when needed. event.Priority is set to the final value.
	Insert(ctx context.Context, event *entity.FlightEvent, requestedPriority int) error
	Update(ctx context.Context, event *entity.FlightEvent) error
	Delete(ctx context.Context, flightID, eventID uint) error
	DeleteAll(ctx context.Context, flightID uint) (int64, error)
	// ReplaceAll atomically swaps every event of the flight for events
	ReplaceAll(ctx context.Context, flightID uint, events []*entity.FlightEvent) error
	MarkPlayed(ctx context.Context, eventID uint) error
	ResetPlayed(ctx context.Context, flightID uint) (int64, error)
	// FindAnnotated returns events whose identified changes contain marker
	// (case-insensitive) on flights whose unique id contains flightNumber.
	FindAnnotated(ctx context.Context, flightNumber, marker string) ([]*entity.FlightEventMatch, error)
}
