package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"flight-event-mock-service/internal/domain/entity"
	"flight-event-mock-service/internal/interface/handler"
	"flight-event-mock-service/internal/interface/handler/mocks"
	"flight-event-mock-service/internal/usecase"
	"flight-event-mock-service/pkg/logger"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T) (*mux.Router, *mocks.MockFlightService, *mocks.MockSessionService) {
	flights := new(mocks.MockFlightService)
	sessions := new(mocks.MockSessionService)
	tools := new(mocks.MockToolService)
	t.Cleanup(func() {
		flights.AssertExpectations(t)
		sessions.AssertExpectations(t)
		tools.AssertExpectations(t)
	})

	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("# metrics"))
	})
	h := handler.NewHandler(flights, sessions, tools, logger.NewNopLogger())
	return NewHTTPRouter(h, metrics, logger.NewNopLogger()), flights, sessions
}

func TestHTTPRouter_Health(t *testing.T) {
	r, _, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "req-1")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "req-1", rr.Header().Get("X-Request-ID"))
	assert.JSONEq(t, `{"status":"healthy"}`, rr.Body.String())
}

func TestHTTPRouter_GeneratesRequestID(t *testing.T) {
	r, _, _ := setupRouter(t)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}

func TestHTTPRouter_Metrics(t *testing.T) {
	r, _, _ := setupRouter(t)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "# metrics", rr.Body.String())
}

func TestHTTPRouter_NonNumericIDIsNotRouted(t *testing.T) {
	r, _, _ := setupRouter(t)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/flights/abc/events", nil))

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHTTPRouter_FIDRouteTakesPrecedence(t *testing.T) {
	r, flights, _ := setupRouter(t)
	flights.On("FindEventWithFID", mock.Anything, uint(7)).
		Return(nil, entity.ErrNotFound("No event with fid field found"))

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/flights/7/events/fid", nil))

	assert.Equal(t, http.StatusNotFound, rr.Code)
	flights.AssertNotCalled(t, "GetEvent", mock.Anything, mock.Anything, mock.Anything)
}

func TestHTTPRouter_PlayRoute(t *testing.T) {
	r, _, sessions := setupRouter(t)
	sessions.On("PlayEvent", mock.Anything, uint(3), uint(11), true).
		Return(&entity.PlayResult{EventID: 11, Priority: 2, IsReplay: true, StatusCode: http.StatusOK}, nil)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/flights/3/events/11/play", strings.NewReader(`{"is_replay":true}`))
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "success", body["status"])
}

func TestHTTPRouter_MethodMismatch(t *testing.T) {
	r, _, _ := setupRouter(t)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/flights/3/session/start", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

type stubTaskHandler struct {
	taskType entity.TaskType
}

func (s *stubTaskHandler) CanHandle(taskType entity.TaskType) bool {
	return taskType == s.taskType
}

func (s *stubTaskHandler) Execute(ctx context.Context, exec *usecase.TaskExecution) error {
	return nil
}

func TestTaskRouter_GetHandler(t *testing.T) {
	r := NewTaskRouter(logger.NewNopLogger())
	api := &stubTaskHandler{taskType: entity.TaskTypeAPI}
	cleanup := &stubTaskHandler{taskType: entity.TaskTypeCleanup}
	r.Register(api)
	r.Register(cleanup)

	assert.Same(t, api, r.GetHandler(entity.TaskTypeAPI))
	assert.Same(t, cleanup, r.GetHandler(entity.TaskTypeCleanup))
	assert.Nil(t, r.GetHandler(entity.TaskTypeKafka))
}
