package repository

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"flight-event-mock-service/internal/domain/entity"
	"flight-event-mock-service/internal/domain/repository"
	"flight-event-mock-service/internal/infrastructure/oauth"
	"flight-event-mock-service/pkg/logger"
)

const maxResponseBytes = 1 << 20

// HTTPOutboundClient sends JSON POST requests to callbacks and task endpoints
type HTTPOutboundClient struct {
	logger    logger.Logger
	oauth     *oauth.ClientCredentialsOAuth
	transport http.RoundTripper
}

// NewHTTPOutboundClient creates a new outbound HTTP client
func NewHTTPOutboundClient(oauth *oauth.ClientCredentialsOAuth, logger logger.Logger) repository.OutboundClient {
	return &HTTPOutboundClient{
		logger:    logger,
		oauth:     oauth,
		transport: http.DefaultTransport,
	}
}

// Post sends req and returns the response whatever its status. Only failures
// to complete the exchange are returned as errors.
func (c *HTTPOutboundClient) Post(ctx context.Context, req *entity.OutboundRequest) (*entity.OutboundResponse, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.URL, bytes.NewReader(req.Body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	client := &http.Client{Timeout: req.Timeout, Transport: c.transport}
	if req.Credentials != nil && c.oauth != nil {
		client = c.oauth.Client(req.Credentials, client)
	}

	c.logger.Debug("Sending outbound request", "url", req.URL, "bytes", len(req.Body))

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	headers := make(map[string]string, len(resp.Header))
	for k := range resp.Header {
		headers[k] = resp.Header.Get(k)
	}

	c.logger.Info("Outbound request completed", "url", req.URL, "status", resp.StatusCode)

	return &entity.OutboundResponse{
		StatusCode: resp.StatusCode,
		Headers:    headers,
		Body:       body,
	}, nil
}
