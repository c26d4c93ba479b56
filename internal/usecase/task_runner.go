package usecase

import (
	"context"
	"fmt"
	"sort"

	"flight-event-mock-service/internal/domain/entity"
	"flight-event-mock-service/internal/domain/repository"
	"flight-event-mock-service/pkg/logger"
	"flight-event-mock-service/pkg/metrics"
)

// TaskRunner executes the enabled additional tasks of a configuration
type TaskRunner struct {
	taskRepo repository.TaskRepository
	router   TaskRouter
	logger   logger.Logger
	metrics  *metrics.Metrics
}

// NewTaskRunner creates a new task runner
func NewTaskRunner(
	taskRepo repository.TaskRepository,
	router TaskRouter,
	logger logger.Logger,
	metrics *metrics.Metrics,
) *TaskRunner {
	return &TaskRunner{
		taskRepo: taskRepo,
		router:   router,
		logger:   logger,
		metrics:  metrics,
	}
}

// RunAll runs enabled tasks by ascending order and stops at the first failure.
// It returns how many tasks succeeded.
func (r *TaskRunner) RunAll(ctx context.Context, flight *entity.Flight, cfg *entity.MockConfiguration) (int, error) {
	tasks, err := r.taskRepo.ListByConfiguration(ctx, cfg.ID)
	if err != nil {
		return 0, entity.ErrInternal("failed to load additional tasks", err)
	}

	enabled := make([]*entity.AdditionalTask, 0, len(tasks))
	for _, task := range tasks {
		if task.IsEnabled {
			enabled = append(enabled, task)
		}
	}
	sort.SliceStable(enabled, func(i, j int) bool {
		return enabled[i].Order < enabled[j].Order
	})

	ran := 0
	for _, task := range enabled {
		err := r.run(ctx, &TaskExecution{Task: task, Flight: flight, Configuration: cfg})
		r.metrics.ObserveTask(string(task.Type), err == nil)
		if err != nil {
			r.logger.Error("Additional task failed",
				"flightId", flight.ID,
				"task", task.Name,
				"type", task.Type,
				"order", task.Order,
				"error", err)
			return ran, entity.ErrTaskFailure(task.Name, err)
		}

		r.logger.Info("Additional task succeeded", "flightId", flight.ID, "task", task.Name, "type", task.Type)
		ran++
	}
	return ran, nil
}

func (r *TaskRunner) run(ctx context.Context, exec *TaskExecution) error {
	handler := r.router.GetHandler(exec.Task.Type)
	if handler == nil {
		return fmt.Errorf("unsupported task type %q", exec.Task.Type)
	}
	return handler.Execute(ctx, exec)
}
