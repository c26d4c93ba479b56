package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"flight-event-mock-service/internal/domain/entity"
	"flight-event-mock-service/internal/domain/repository"
	"flight-event-mock-service/pkg/logger"
)

const (
	proxyTimeout     = 15 * time.Second
	transformTimeout = 10 * time.Second
	transformPath    = "/nav/v1/internal/create-flight-detail-dto-v2"
)

// ToolService backs the operator utilities: ad hoc publishing, request
// proxying and payload transformation.
type ToolService struct {
	publisher      repository.EventPublisher
	client         repository.OutboundClient
	defaultServers []string
	logger         logger.Logger
}

// NewToolService creates a new tool service
func NewToolService(publisher repository.EventPublisher, client repository.OutboundClient, defaultServers []string, logger logger.Logger) *ToolService {
	return &ToolService{
		publisher:      publisher,
		client:         client,
		defaultServers: defaultServers,
		logger:         logger,
	}
}

// Produce publishes an arbitrary payload to a topic
func (s *ToolService) Produce(ctx context.Context, req entity.PublishTemplate) error {
	servers := req.Servers()
	if len(servers) == 0 {
		servers = s.defaultServers
	}
	if len(servers) == 0 || req.TopicName == "" || len(req.Payload) == 0 {
		return entity.ErrInvalidInput("Missing required fields")
	}

	value, err := req.MessageValue()
	if err != nil {
		return entity.ErrInvalidInput(err.Error())
	}

	err = s.publisher.Publish(ctx, &entity.PublishMessage{
		BootstrapServers: servers,
		Topic:            req.TopicName,
		Value:            value,
	})
	if err != nil {
		s.logger.Error("Failed to produce event", "topic", req.TopicName, "error", err)
		return entity.ErrInternal(fmt.Sprintf("Failed to produce event: %v", err), err)
	}
	return nil
}

// Proxy POSTs payload to url and mirrors the answer whatever its status
func (s *ToolService) Proxy(ctx context.Context, url string, headers map[string]string, payload json.RawMessage) (*entity.ProxyResult, error) {
	if url == "" || len(payload) == 0 {
		return nil, entity.ErrInvalidInput("Missing required parameters: payload or url")
	}

	resp, err := s.client.Post(ctx, &entity.OutboundRequest{
		URL:     url,
		Body:    payload,
		Headers: headers,
		Timeout: proxyTimeout,
	})
	if err != nil {
		s.logger.Error("Proxy request failed", "url", url, "error", err)
		return nil, &entity.AppError{
			Kind:       entity.KindTransportConnection,
			HTTPStatus: http.StatusBadGateway,
			Message:    fmt.Sprintf("Failed to reach target service: %v", err),
			Err:        err,
		}
	}

	content := json.RawMessage(resp.Body)
	if !json.Valid(resp.Body) {
		quoted, _ := json.Marshal(string(resp.Body))
		content = quoted
	}

	return &entity.ProxyResult{
		Status:  resp.StatusCode,
		Content: content,
		Headers: resp.Headers,
	}, nil
}

// Transform sends a raw event to the transformation service of hostAddress
// and returns its JSON answer.
func (s *ToolService) Transform(ctx context.Context, hostAddress string, rawEvent json.RawMessage) (json.RawMessage, int, error) {
	if hostAddress == "" || len(rawEvent) == 0 {
		return nil, 0, entity.ErrInvalidInput("Missing required parameters: raw_event or host_address")
	}

	url := strings.TrimRight(hostAddress, "/") + transformPath
	resp, err := s.client.Post(ctx, &entity.OutboundRequest{
		URL:     url,
		Body:    rawEvent,
		Timeout: transformTimeout,
	})
	if err != nil {
		s.logger.Error("Transformation service unreachable", "url", url, "error", err)
		return nil, 0, &entity.AppError{
			Kind:       entity.KindTransportConnection,
			HTTPStatus: http.StatusBadGateway,
			Message:    fmt.Sprintf("Failed to reach transformation service: %v", err),
			Err:        err,
		}
	}
	if !json.Valid(resp.Body) {
		return nil, 0, &entity.AppError{
			Kind:       entity.KindTransportHTTP,
			HTTPStatus: http.StatusBadGateway,
			Message:    "Invalid JSON response from transformation service",
		}
	}
	return json.RawMessage(resp.Body), resp.StatusCode, nil
}
