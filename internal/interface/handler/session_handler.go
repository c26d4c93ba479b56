package handler

import (
	"net/http"
	"strconv"

	"flight-event-mock-service/internal/domain/entity"
)

type playRequest struct {
	IsReplay bool `json:"is_replay"`
}

type cleanupRequest struct {
	CleanupQuery string `json:"cleanup_query"`
}

// PlayEvent handles POST /api/flights/{id}/events/{eventId}/play
func (h *Handler) PlayEvent(w http.ResponseWriter, r *http.Request) {
	flightID, eventID, err := eventPath(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	var req playRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	result, err := h.sessions.PlayEvent(r.Context(), flightID, eventID, req.IsReplay)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, playResponse(result))
}

// StartSession handles POST /api/flights/{id}/session/start
func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	flightID, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	result, err := h.sessions.StartSession(r.Context(), flightID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, sessionResponse(result, false))
}

// ResetSession handles POST /api/flights/{id}/session/reset
func (h *Handler) ResetSession(w http.ResponseWriter, r *http.Request) {
	flightID, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	result, err := h.sessions.ResetSession(r.Context(), flightID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, sessionResponse(result, false))
}

// AbortSession handles POST /api/flights/{id}/session/abort
func (h *Handler) AbortSession(w http.ResponseWriter, r *http.Request) {
	flightID, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	result, err := h.sessions.AbortSession(r.Context(), flightID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, sessionResponse(result, true))
}

// RunCleanup handles POST /api/flights/{id}/cleanup
func (h *Handler) RunCleanup(w http.ResponseWriter, r *http.Request) {
	flightID, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	var req cleanupRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	report, err := h.sessions.RunCleanup(r.Context(), flightID, req.CleanupQuery)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	status := http.StatusOK
	if report.Status == entity.StatusError {
		status = http.StatusInternalServerError
	}
	respondJSON(w, status, cleanupResponse(report))
}

// History handles GET /api/flights/{id}/history
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	flightID, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := h.sessions.History(r.Context(), flightID, limit)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if entries == nil {
		entries = []*entity.PlaybackLog{}
	}
	respondJSON(w, http.StatusOK, entries)
}
