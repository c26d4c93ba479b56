package usecase

import (
	"context"

	"flight-event-mock-service/internal/domain/entity"
)

// TaskExecution is everything a handler may need to run one task
type TaskExecution struct {
	Task          *entity.AdditionalTask
	Flight        *entity.Flight
	Configuration *entity.MockConfiguration
}

// TaskHandler defines the interface for additional task handlers
type TaskHandler interface {
	// CanHandle determines if this handler runs tasks of the given type
	CanHandle(taskType entity.TaskType) bool

	// Execute runs the task and returns an error when it did not succeed
	Execute(ctx context.Context, exec *TaskExecution) error
}

// TaskRouter routes tasks to the appropriate handler based on type
type TaskRouter interface {
	// Register registers a handler
	Register(handler TaskHandler)

	// GetHandler returns the handler for a task type, or nil
	GetHandler(taskType entity.TaskType) TaskHandler
}
