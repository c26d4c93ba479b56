package usecase

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"flight-event-mock-service/internal/domain/entity"
	outbound "flight-event-mock-service/internal/interface/repository"
	"flight-event-mock-service/internal/usecase/mocks"
	"flight-event-mock-service/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestDispatcher(timeout time.Duration) *Dispatcher {
	log := logger.NewNopLogger()
	return NewDispatcher(outbound.NewHTTPOutboundClient(nil, log), timeout, log, nil)
}

func TestDispatcher_WrapsObjectPayload(t *testing.T) {
	var received string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		received = string(body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	result, err := newTestDispatcher(time.Second).Deliver(context.Background(), 1, server.URL, entity.ParsePayload(`{"fid":"GA1"}`))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.JSONEq(t, `[{"fid":"GA1"}]`, received)
}

func TestDispatcher_ArrayPassesThrough(t *testing.T) {
	var received string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		received = string(body)
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	_, err := newTestDispatcher(time.Second).Deliver(context.Background(), 1, server.URL, entity.ParsePayload(`[{"a":1},{"b":2}]`))
	require.NoError(t, err)
	assert.JSONEq(t, `[{"a":1},{"b":2}]`, received)
}

func TestDispatcher_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()
	defer close(release)

	_, err := newTestDispatcher(50*time.Millisecond).Deliver(context.Background(), 1, server.URL, entity.ParsePayload(`{}`))
	require.Error(t, err)

	appErr, ok := entity.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, entity.KindTransportTimeout, appErr.Kind)
	assert.Equal(t, http.StatusGatewayTimeout, appErr.HTTPStatus)
}

func TestDispatcher_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := newTestDispatcher(time.Second).Deliver(context.Background(), 1, url, entity.ParsePayload(`{}`))

	appErr, ok := entity.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, entity.KindTransportConnection, appErr.Kind)
	assert.Equal(t, http.StatusServiceUnavailable, appErr.HTTPStatus)
}

func TestDispatcher_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "callback exploded", http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := newTestDispatcher(time.Second).Deliver(context.Background(), 1, server.URL, entity.ParsePayload(`{}`))

	appErr, ok := entity.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, entity.KindTransportHTTP, appErr.Kind)
	assert.Equal(t, http.StatusInternalServerError, appErr.Details["status_code"])
	assert.Contains(t, appErr.Details["response"], "callback exploded")
}

func TestDispatcher_UnclassifiedFailure(t *testing.T) {
	client := new(mocks.MockOutboundClient)
	client.On("Post", mock.Anything, mock.Anything).Return(nil, errors.New("unsupported protocol scheme"))

	d := NewDispatcher(client, time.Second, logger.NewNopLogger(), nil)
	_, err := d.Deliver(context.Background(), 1, "ftp://cb", entity.ParsePayload(`{}`))

	appErr, ok := entity.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, entity.KindTransportHTTP, appErr.Kind)
	assert.Equal(t, "Failed to send event: unsupported protocol scheme", appErr.Message)
	client.AssertExpectations(t)
}

func TestDispatcher_InvalidPayloadNeverSent(t *testing.T) {
	client := new(mocks.MockOutboundClient)
	d := NewDispatcher(client, time.Second, logger.NewNopLogger(), nil)

	_, err := d.Deliver(context.Background(), 7, "http://cb", entity.ParsePayload(`{"broken":`))
	assert.Equal(t, entity.KindPayloadMalformed, entity.KindOf(err))
	client.AssertNotCalled(t, "Post", mock.Anything, mock.Anything)
}
