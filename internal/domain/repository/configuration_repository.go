package repository

import (
	"context"

	"flight-event-mock-service/internal/domain/entity"
)

// ConfigurationRepository defines the interface for mock configuration operations
type ConfigurationRepository interface {
	GetByFlightID(ctx context.Context, flightID uint) (*entity.MockConfiguration, error)
	Upsert(ctx context.Context, cfg *entity.MockConfiguration) error
}

// TaskRepository defines the interface for additional task operations
type TaskRepository interface {
	// ListByConfiguration returns tasks ordered by ascending order
	ListByConfiguration(ctx context.Context, configurationID uint) ([]*entity.AdditionalTask, error)
	Create(ctx context.Context, task *entity.AdditionalTask) error
	Delete(ctx context.Context, configurationID, taskID uint) error
}
