package handler

import (
	"encoding/json"
	"net/http"

	"flight-event-mock-service/internal/domain/entity"
)

type proxyRequest struct {
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers"`
	Payload json.RawMessage   `json:"payload"`
}

type transformRequest struct {
	RawEvent    json.RawMessage `json:"raw_event"`
	HostAddress string          `json:"host_address"`
}

// FlightQuery handles GET /api/flight-query?fnum=&date=
func (h *Handler) FlightQuery(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	raw, err := h.flights.FlightQuery(r.Context(), query.Get("fnum"), query.Get("date"))
	if appErr, ok := entity.AsAppError(err); ok && appErr.Kind == entity.KindInvalidInput {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": appErr.Message})
		return
	}
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	if raw == nil {
		raw = json.RawMessage("null")
	}
	respondJSON(w, http.StatusOK, raw)
}

// AddFlightPush handles POST /api/add-flight-push
func (h *Handler) AddFlightPush(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]int{"errorCode": 8})
}

// ProduceEvent handles POST /api/kafka/produce
func (h *Handler) ProduceEvent(w http.ResponseWriter, r *http.Request) {
	var req entity.PublishTemplate
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	if err := h.tools.Produce(r.Context(), req); err != nil {
		h.respondError(w, r, err)
		return
	}
	respondMessage(w, http.StatusOK, entity.StatusSuccess, "Event produced successfully")
}

// ProxyRequest handles POST /api/proxy
func (h *Handler) ProxyRequest(w http.ResponseWriter, r *http.Request) {
	var req proxyRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	result, err := h.tools.Proxy(r.Context(), req.URL, req.Headers, req.Payload)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// TransformPayload handles POST /api/transform
func (h *Handler) TransformPayload(w http.ResponseWriter, r *http.Request) {
	var req transformRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	body, status, err := h.tools.Transform(r.Context(), req.HostAddress, req.RawEvent)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, status, body)
}
