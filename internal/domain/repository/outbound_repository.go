package repository

import (
	"context"

	"flight-event-mock-service/internal/domain/entity"
)

// OutboundClient issues HTTP POST requests. Non-2xx answers are returned as a
// response, not an error; errors are transport failures.
type OutboundClient interface {
	Post(ctx context.Context, req *entity.OutboundRequest) (*entity.OutboundResponse, error)
}

// EventPublisher writes records to a message broker
type EventPublisher interface {
	Publish(ctx context.Context, msg *entity.PublishMessage) error
}
