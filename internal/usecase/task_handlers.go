package usecase

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"flight-event-mock-service/internal/domain/entity"
	"flight-event-mock-service/internal/domain/repository"
	"flight-event-mock-service/pkg/logger"
)

// PublishTaskHandler publishes the template payload to a Kafka topic
type PublishTaskHandler struct {
	publisher      repository.EventPublisher
	defaultServers []string
	logger         logger.Logger
}

// NewPublishTaskHandler creates a new kafka task handler. defaultServers is
// used when a template names no bootstrap servers.
func NewPublishTaskHandler(publisher repository.EventPublisher, defaultServers []string, logger logger.Logger) *PublishTaskHandler {
	return &PublishTaskHandler{
		publisher:      publisher,
		defaultServers: defaultServers,
		logger:         logger,
	}
}

// CanHandle checks if this handler runs the task type
func (h *PublishTaskHandler) CanHandle(taskType entity.TaskType) bool {
	return taskType == entity.TaskTypeKafka
}

// Execute publishes the template payload and waits for the acknowledgement
func (h *PublishTaskHandler) Execute(ctx context.Context, exec *TaskExecution) error {
	var tmpl entity.PublishTemplate
	if err := entity.ParseTemplate(exec.Task, &tmpl); err != nil {
		return err
	}

	servers := tmpl.Servers()
	if len(servers) == 0 {
		servers = h.defaultServers
	}
	if len(servers) == 0 {
		return fmt.Errorf("bootstrapServers is required")
	}
	if tmpl.TopicName == "" {
		return fmt.Errorf("topicName is required")
	}

	value, err := tmpl.MessageValue()
	if err != nil {
		return err
	}

	h.logger.Info("Publishing task message", "task", exec.Task.Name, "topic", tmpl.TopicName)
	return h.publisher.Publish(ctx, &entity.PublishMessage{
		BootstrapServers: servers,
		Topic:            tmpl.TopicName,
		Value:            value,
	})
}

// APITaskHandler POSTs the template body to an HTTP endpoint
type APITaskHandler struct {
	client  repository.OutboundClient
	timeout time.Duration
	logger  logger.Logger
}

// NewAPITaskHandler creates a new api task handler
func NewAPITaskHandler(client repository.OutboundClient, timeout time.Duration, logger logger.Logger) *APITaskHandler {
	return &APITaskHandler{
		client:  client,
		timeout: timeout,
		logger:  logger,
	}
}

// CanHandle checks if this handler runs the task type
func (h *APITaskHandler) CanHandle(taskType entity.TaskType) bool {
	return taskType == entity.TaskTypeAPI
}

// Execute sends the request and fails on transport errors or non-2xx answers
func (h *APITaskHandler) Execute(ctx context.Context, exec *TaskExecution) error {
	var tmpl entity.APITemplate
	if err := entity.ParseTemplate(exec.Task, &tmpl); err != nil {
		return err
	}
	if tmpl.URL == "" {
		return fmt.Errorf("url is required")
	}

	var body []byte
	if trimmed := bytes.TrimSpace(tmpl.Body); len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) {
		body = trimmed
	}

	resp, err := h.client.Post(ctx, &entity.OutboundRequest{
		URL:         tmpl.URL,
		Body:        body,
		Headers:     tmpl.HeaderValues(),
		Timeout:     h.timeout,
		Credentials: tmpl.OAuth2,
	})
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", tmpl.URL, err)
	}
	if !resp.Successful() {
		return fmt.Errorf("%s responded with status %d: %s", tmpl.URL, resp.StatusCode, truncate(string(resp.Body), maxLoggedResponse))
	}

	h.logger.Info("API task completed", "task", exec.Task.Name, "url", tmpl.URL, "status", resp.StatusCode)
	return nil
}

// CleanupTaskHandler runs additional cleanup statements as a task
type CleanupTaskHandler struct {
	cleanup *CleanupExecutor
}

// NewCleanupTaskHandler creates a new cleanup task handler
func NewCleanupTaskHandler(cleanup *CleanupExecutor) *CleanupTaskHandler {
	return &CleanupTaskHandler{cleanup: cleanup}
}

// CanHandle checks if this handler runs the task type
func (h *CleanupTaskHandler) CanHandle(taskType entity.TaskType) bool {
	return taskType == entity.TaskTypeCleanup
}

// Execute runs the template query, or the configured cleanup when the
// template has none, in one transaction.
func (h *CleanupTaskHandler) Execute(ctx context.Context, exec *TaskExecution) error {
	var tmpl entity.CleanupTemplate
	if exec.Task.Template != "" {
		if err := entity.ParseTemplate(exec.Task, &tmpl); err != nil {
			return err
		}
	}

	_, err := h.cleanup.RunAtomic(ctx, exec.Flight, exec.Configuration, tmpl.Query)
	return err
}
