package router

import (
	"net/http"

	"flight-event-mock-service/internal/interface/handler"
	"flight-event-mock-service/pkg/logger"

	"github.com/gorilla/mux"
)

// NewHTTPRouter creates and configures the HTTP router
func NewHTTPRouter(h *handler.Handler, metrics http.Handler, log logger.Logger) *mux.Router {
	r := mux.NewRouter()
	r.Use(handler.RequestID(), handler.RecoverPanic(log), handler.AccessLog(log))

	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	if metrics != nil {
		r.Handle("/metrics", metrics).Methods(http.MethodGet)
	}

	api := r.PathPrefix("/api").Subrouter()

	// Flights
	api.HandleFunc("/flights", h.ListFlights).Methods(http.MethodGet)
	api.HandleFunc("/flights", h.CreateFlight).Methods(http.MethodPost)
	api.HandleFunc("/flights/{id:[0-9]+}", h.GetFlight).Methods(http.MethodGet)
	api.HandleFunc("/flights/{id:[0-9]+}", h.DeleteFlight).Methods(http.MethodDelete)
	api.HandleFunc("/flights/{id:[0-9]+}/configuration", h.SaveConfiguration).Methods(http.MethodPut)
	api.HandleFunc("/flights/{id:[0-9]+}/history", h.History).Methods(http.MethodGet)

	// Tasks
	api.HandleFunc("/flights/{id:[0-9]+}/tasks", h.ListTasks).Methods(http.MethodGet)
	api.HandleFunc("/flights/{id:[0-9]+}/tasks", h.AddTask).Methods(http.MethodPost)
	api.HandleFunc("/flights/{id:[0-9]+}/tasks/{taskId:[0-9]+}", h.DeleteTask).Methods(http.MethodDelete)

	// Events
	api.HandleFunc("/flights/{id:[0-9]+}/events", h.ListEvents).Methods(http.MethodGet)
	api.HandleFunc("/flights/{id:[0-9]+}/events", h.AddEvent).Methods(http.MethodPost)
	api.HandleFunc("/flights/{id:[0-9]+}/events", h.DeleteAllEvents).Methods(http.MethodDelete)
	api.HandleFunc("/flights/{id:[0-9]+}/events/import", h.ImportEvents).Methods(http.MethodPost)
	api.HandleFunc("/flights/{id:[0-9]+}/events/fid", h.GetEventWithFID).Methods(http.MethodGet)
	api.HandleFunc("/flights/{id:[0-9]+}/events/{eventId:[0-9]+}", h.GetEvent).Methods(http.MethodGet)
	api.HandleFunc("/flights/{id:[0-9]+}/events/{eventId:[0-9]+}", h.UpdateEvent).Methods(http.MethodPut)
	api.HandleFunc("/flights/{id:[0-9]+}/events/{eventId:[0-9]+}", h.DeleteEvent).Methods(http.MethodDelete)
	api.HandleFunc("/flights/{id:[0-9]+}/events/{eventId:[0-9]+}/play", h.PlayEvent).Methods(http.MethodPost)

	// Session
	api.HandleFunc("/flights/{id:[0-9]+}/session/start", h.StartSession).Methods(http.MethodPost)
	api.HandleFunc("/flights/{id:[0-9]+}/session/reset", h.ResetSession).Methods(http.MethodPost)
	api.HandleFunc("/flights/{id:[0-9]+}/session/abort", h.AbortSession).Methods(http.MethodPost)
	api.HandleFunc("/flights/{id:[0-9]+}/cleanup", h.RunCleanup).Methods(http.MethodPost)

	// Tools
	api.HandleFunc("/flight-query", h.FlightQuery).Methods(http.MethodGet)
	api.HandleFunc("/add-flight-push", h.AddFlightPush).Methods(http.MethodPost)
	api.HandleFunc("/kafka/produce", h.ProduceEvent).Methods(http.MethodPost)
	api.HandleFunc("/proxy", h.ProxyRequest).Methods(http.MethodPost)
	api.HandleFunc("/transform", h.TransformPayload).Methods(http.MethodPost)

	return r
}
