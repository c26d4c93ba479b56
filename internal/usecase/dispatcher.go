package usecase

import (
	"context"
	"errors"
	"io"
	"net"
	"syscall"
	"time"

	"flight-event-mock-service/internal/domain/entity"
	"flight-event-mock-service/internal/domain/repository"
	"flight-event-mock-service/pkg/logger"
	"flight-event-mock-service/pkg/metrics"
)

const maxLoggedResponse = 500

// Dispatcher delivers event payloads to a callback URL
type Dispatcher struct {
	client  repository.OutboundClient
	timeout time.Duration
	logger  logger.Logger
	metrics *metrics.Metrics
}

// NewDispatcher creates a new dispatcher. timeout bounds each delivery.
func NewDispatcher(client repository.OutboundClient, timeout time.Duration, logger logger.Logger, metrics *metrics.Metrics) *Dispatcher {
	return &Dispatcher{
		client:  client,
		timeout: timeout,
		logger:  logger,
		metrics: metrics,
	}
}

// Deliver POSTs the normalized payload as a JSON list. Every failure is an
// *entity.AppError of a transport kind.
func (d *Dispatcher) Deliver(ctx context.Context, eventID uint, callbackURL string, payload entity.Payload) (*entity.DeliveryResult, error) {
	body, err := payload.CallbackBody()
	if err != nil {
		return nil, entity.ErrPayloadMalformed(eventID, "", payload.Err)
	}
	if payload.Kind == entity.PayloadScalar {
		d.logger.Warn("Event payload is neither object nor list, wrapping it", "eventId", eventID)
	}

	d.logger.Info("Sending event to callback", "eventId", eventID, "url", callbackURL, "bytes", len(body))

	start := time.Now()
	resp, err := d.client.Post(ctx, &entity.OutboundRequest{
		URL:     callbackURL,
		Body:    body,
		Timeout: d.timeout,
	})
	if err != nil {
		appErr := d.classify(callbackURL, err)
		d.metrics.ObserveDispatch(time.Since(start), string(appErr.Kind))
		d.logger.Error("Failed to deliver event",
			"eventId", eventID,
			"url", callbackURL,
			"kind", appErr.Kind,
			"error", err)
		return nil, appErr
	}

	if !resp.Successful() {
		d.metrics.ObserveDispatch(time.Since(start), string(entity.KindTransportHTTP))
		d.logger.Error("Callback rejected event",
			"eventId", eventID,
			"url", callbackURL,
			"status", resp.StatusCode,
			"response", truncate(string(resp.Body), maxLoggedResponse))
		return nil, entity.ErrTransportHTTP(callbackURL, resp.StatusCode, truncate(string(resp.Body), maxLoggedResponse))
	}

	d.metrics.ObserveDispatch(time.Since(start), "")
	d.logger.Info("Event delivered", "eventId", eventID, "status", resp.StatusCode, "duration", time.Since(start))

	return &entity.DeliveryResult{
		StatusCode: resp.StatusCode,
		Body:       resp.Body,
	}, nil
}

func (d *Dispatcher) classify(url string, err error) *entity.AppError {
	if isTimeout(err) {
		return entity.ErrTransportTimeout(url, d.timeout.Seconds(), err)
	}
	if isConnectionFailure(err) {
		return entity.ErrTransportConnection(url, err)
	}
	return entity.ErrTransportRequest(url, err)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isConnectionFailure(err error) bool {
	var opErr *net.OpError
	var dnsErr *net.DNSError
	switch {
	case errors.As(err, &opErr), errors.As(err, &dnsErr):
		return true
	case errors.Is(err, syscall.ECONNREFUSED), errors.Is(err, syscall.ECONNRESET):
		return true
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, context.Canceled):
		return true
	}
	return false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
