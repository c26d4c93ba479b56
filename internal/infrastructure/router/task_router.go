package router

import (
	"fmt"

	"flight-event-mock-service/internal/domain/entity"
	"flight-event-mock-service/internal/usecase"
	"flight-event-mock-service/pkg/logger"
)

// TaskRouter routes additional tasks to handlers based on their type
type TaskRouter struct {
	handlers []usecase.TaskHandler
	logger   logger.Logger
}

// NewTaskRouter creates a new task router
func NewTaskRouter(logger logger.Logger) *TaskRouter {
	return &TaskRouter{
		handlers: make([]usecase.TaskHandler, 0),
		logger:   logger,
	}
}

// Register registers a handler
func (r *TaskRouter) Register(handler usecase.TaskHandler) {
	r.handlers = append(r.handlers, handler)
	r.logger.Info("Registered task handler", "handler", fmt.Sprintf("%T", handler))
}

// GetHandler returns the first handler accepting taskType
func (r *TaskRouter) GetHandler(taskType entity.TaskType) usecase.TaskHandler {
	for _, handler := range r.handlers {
		if handler.CanHandle(taskType) {
			return handler
		}
	}
	return nil
}
