package handler

import (
	"fmt"
	"net/http"

	"flight-event-mock-service/internal/domain/entity"
)

type createFlightRequest struct {
	FlightUniqueID string                `json:"flight_unique_id"`
	Configuration  *configurationRequest `json:"configuration"`
}

// ListFlights handles GET /api/flights
func (h *Handler) ListFlights(w http.ResponseWriter, r *http.Request) {
	flights, err := h.flights.ListFlights(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	out := make([]flightResponse, 0, len(flights))
	for _, f := range flights {
		out = append(out, toFlightResponse(f))
	}
	respondJSON(w, http.StatusOK, out)
}

// CreateFlight handles POST /api/flights
func (h *Handler) CreateFlight(w http.ResponseWriter, r *http.Request) {
	var req createFlightRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	var cfg *entity.MockConfiguration
	if req.Configuration != nil {
		cfg = req.Configuration.toEntity(0)
	}

	flight, err := h.flights.CreateFlight(r.Context(), req.FlightUniqueID, cfg)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toFlightResponse(flight))
}

// GetFlight handles GET /api/flights/{id}
func (h *Handler) GetFlight(w http.ResponseWriter, r *http.Request) {
	flightID, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	detail, err := h.flights.GetFlightDetail(r.Context(), flightID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"flight":           toFlightResponse(detail.Flight),
		"configuration":    toConfigurationResponse(detail.Configuration),
		"tasks":            toTaskResponses(detail.Tasks),
		"events":           toEventResponses(detail.Events),
		"current_priority": detail.CurrentPriority,
		"state":            detail.State,
	})
}

// DeleteFlight handles DELETE /api/flights/{id}
func (h *Handler) DeleteFlight(w http.ResponseWriter, r *http.Request) {
	flightID, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	flight, err := h.flights.DeleteFlight(r.Context(), flightID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondMessage(w, http.StatusOK, entity.StatusSuccess, fmt.Sprintf("Flight %s has been deleted", flight.FlightUniqueID))
}

// SaveConfiguration handles PUT /api/flights/{id}/configuration
func (h *Handler) SaveConfiguration(w http.ResponseWriter, r *http.Request) {
	flightID, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	var req configurationRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	cfg, err := h.flights.SaveConfiguration(r.Context(), flightID, req.toEntity(flightID))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toConfigurationResponse(cfg))
}

// ListTasks handles GET /api/flights/{id}/tasks
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	flightID, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	tasks, err := h.flights.ListTasks(r.Context(), flightID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toTaskResponses(tasks))
}

// AddTask handles POST /api/flights/{id}/tasks
func (h *Handler) AddTask(w http.ResponseWriter, r *http.Request) {
	flightID, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	var req taskRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	task, err := h.flights.AddTask(r.Context(), flightID, req.toEntity())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toTaskResponse(task))
}

// DeleteTask handles DELETE /api/flights/{id}/tasks/{taskId}
func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	flightID, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	taskID, err := pathID(r, "taskId")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	if err := h.flights.DeleteTask(r.Context(), flightID, taskID); err != nil {
		h.respondError(w, r, err)
		return
	}
	respondMessage(w, http.StatusOK, entity.StatusSuccess, "Task deleted")
}
