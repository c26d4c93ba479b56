package repository

import (
	"context"

	"flight-event-mock-service/internal/domain/entity"
)

// PlaybackLogRepository defines the interface for the playback audit trail
type PlaybackLogRepository interface {
	Save(ctx context.Context, entry *entity.PlaybackLog) error
	FindByFlight(ctx context.Context, flightID uint, limit int) ([]*entity.PlaybackLog, error)
}
