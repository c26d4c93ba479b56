package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"flight-event-mock-service/internal/domain/entity"
	"flight-event-mock-service/pkg/logger"

	"github.com/gorilla/mux"
)

// FlightService is the data entry side of the service
type FlightService interface {
	CreateFlight(ctx context.Context, flightUniqueID string, cfg *entity.MockConfiguration) (*entity.Flight, error)
	ListFlights(ctx context.Context) ([]*entity.Flight, error)
	GetFlightDetail(ctx context.Context, flightID uint) (*entity.FlightDetail, error)
	DeleteFlight(ctx context.Context, flightID uint) (*entity.Flight, error)
	SaveConfiguration(ctx context.Context, flightID uint, cfg *entity.MockConfiguration) (*entity.MockConfiguration, error)
	ListTasks(ctx context.Context, flightID uint) ([]*entity.AdditionalTask, error)
	AddTask(ctx context.Context, flightID uint, task *entity.AdditionalTask) (*entity.AdditionalTask, error)
	DeleteTask(ctx context.Context, flightID, taskID uint) error
	ListEvents(ctx context.Context, flightID uint) ([]*entity.FlightEvent, error)
	AddEvent(ctx context.Context, flightID uint, input entity.EventInput) (*entity.FlightEvent, error)
	GetEvent(ctx context.Context, flightID, eventID uint) (*entity.FlightEvent, error)
	UpdateEvent(ctx context.Context, flightID, eventID uint, input entity.EventInput) (*entity.FlightEvent, error)
	DeleteEvent(ctx context.Context, flightID, eventID uint) error
	DeleteAllEvents(ctx context.Context, flightID uint) (int64, error)
	FindEventWithFID(ctx context.Context, flightID uint) (*entity.FlightEvent, error)
	ImportEvents(ctx context.Context, flightID uint, r io.Reader) (int, error)
	FlightQuery(ctx context.Context, fnum, date string) (json.RawMessage, error)
}

// SessionService drives playback of a flight
type SessionService interface {
	PlayEvent(ctx context.Context, flightID, eventID uint, isReplay bool) (*entity.PlayResult, error)
	StartSession(ctx context.Context, flightID uint) (*entity.SessionResult, error)
	ResetSession(ctx context.Context, flightID uint) (*entity.SessionResult, error)
	AbortSession(ctx context.Context, flightID uint) (*entity.SessionResult, error)
	RunCleanup(ctx context.Context, flightID uint, text string) (*entity.CleanupReport, error)
	History(ctx context.Context, flightID uint, limit int) ([]*entity.PlaybackLog, error)
}

// ToolService backs the operator utilities
type ToolService interface {
	Produce(ctx context.Context, req entity.PublishTemplate) error
	Proxy(ctx context.Context, url string, headers map[string]string, payload json.RawMessage) (*entity.ProxyResult, error)
	Transform(ctx context.Context, hostAddress string, rawEvent json.RawMessage) (json.RawMessage, int, error)
}

// Handler contains HTTP handlers for the API
type Handler struct {
	flights  FlightService
	sessions SessionService
	tools    ToolService
	logger   logger.Logger
}

// NewHandler creates a new Handler instance
func NewHandler(flights FlightService, sessions SessionService, tools ToolService, logger logger.Logger) *Handler {
	return &Handler{
		flights:  flights,
		sessions: sessions,
		tools:    tools,
		logger:   logger,
	}
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func respondMessage(w http.ResponseWriter, status int, state, message string) {
	respondJSON(w, status, map[string]interface{}{"status": state, "message": message})
}

// respondError renders err as {"status":"error","message":...,"details":...}.
// Unclassified errors are logged and reported as a generic 500.
func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := entity.AsAppError(err)
	if !ok {
		h.logger.Error("Unhandled error", "method", r.Method, "path", r.URL.Path, "error", err)
		respondMessage(w, http.StatusInternalServerError, entity.StatusError, "An unexpected error occurred: "+err.Error())
		return
	}

	details := map[string]interface{}{"type": appErr.Kind}
	for k, v := range appErr.Details {
		details[k] = v
	}
	respondJSON(w, appErr.HTTPStatus, map[string]interface{}{
		"status":  entity.StatusError,
		"message": appErr.Message,
		"details": details,
	})
}

func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return entity.ErrInvalidInput("Invalid request body")
	}
	return nil
}

func pathID(r *http.Request, name string) (uint, error) {
	id, err := strconv.ParseUint(mux.Vars(r)[name], 10, 64)
	if err != nil || id == 0 {
		return 0, entity.ErrInvalidInput("Invalid " + name)
	}
	return uint(id), nil
}

// Health handles GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
