package repository

import (
	"context"

	"flight-event-mock-service/internal/domain/entity"
)

// FlightRepository defines the interface for flight operations
type FlightRepository interface {
	// Create stores the flight and, when cfg is not nil, its configuration in
	// one transaction.
	Create(ctx context.Context, flight *entity.Flight, cfg *entity.MockConfiguration) error
	GetByID(ctx context.Context, id uint) (*entity.Flight, error)
	GetByUniqueID(ctx context.Context, flightUniqueID string) (*entity.Flight, error)
	List(ctx context.Context) ([]*entity.Flight, error)
	// Delete removes the flight together with its events, configuration and tasks
	Delete(ctx context.Context, id uint) error
}
