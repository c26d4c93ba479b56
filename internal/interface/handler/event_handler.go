package handler

import (
	"fmt"
	"io"
	"mime"
	"net/http"

	"flight-event-mock-service/internal/domain/entity"
)

const maxImportSize = 32 << 20

// ListEvents handles GET /api/flights/{id}/events
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	flightID, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	events, err := h.flights.ListEvents(r.Context(), flightID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toEventResponses(events))
}

// AddEvent handles POST /api/flights/{id}/events
func (h *Handler) AddEvent(w http.ResponseWriter, r *http.Request) {
	flightID, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	var input entity.EventInput
	if err := decodeJSON(r, &input); err != nil {
		h.respondError(w, r, err)
		return
	}

	event, err := h.flights.AddEvent(r.Context(), flightID, input)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toEventResponse(event))
}

// GetEvent handles GET /api/flights/{id}/events/{eventId}
func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	flightID, eventID, err := eventPath(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	event, err := h.flights.GetEvent(r.Context(), flightID, eventID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toEventResponse(event))
}

// UpdateEvent handles PUT /api/flights/{id}/events/{eventId}
func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	flightID, eventID, err := eventPath(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	var input entity.EventInput
	if err := decodeJSON(r, &input); err != nil {
		h.respondError(w, r, err)
		return
	}

	event, err := h.flights.UpdateEvent(r.Context(), flightID, eventID, input)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toEventResponse(event))
}

// DeleteEvent handles DELETE /api/flights/{id}/events/{eventId}
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	flightID, eventID, err := eventPath(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	if err := h.flights.DeleteEvent(r.Context(), flightID, eventID); err != nil {
		h.respondError(w, r, err)
		return
	}
	respondMessage(w, http.StatusOK, entity.StatusSuccess, "Event deleted")
}

// DeleteAllEvents handles DELETE /api/flights/{id}/events
func (h *Handler) DeleteAllEvents(w http.ResponseWriter, r *http.Request) {
	flightID, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	deleted, err := h.flights.DeleteAllEvents(r.Context(), flightID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  entity.StatusSuccess,
		"message": fmt.Sprintf("Deleted %d events", deleted),
		"deleted": deleted,
	})
}

// GetEventWithFID handles GET /api/flights/{id}/events/fid
func (h *Handler) GetEventWithFID(w http.ResponseWriter, r *http.Request) {
	flightID, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	event, err := h.flights.FindEventWithFID(r.Context(), flightID)
	if appErr, ok := entity.AsAppError(err); ok && appErr.Kind == entity.KindNotFound {
		respondJSON(w, http.StatusNotFound, map[string]string{"error": appErr.Message, "status": entity.StatusError})
		return
	}
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"raw_event":          event.RawEvent,
		"identified_changes": event.IdentifiedChanges,
		"flight_state":       event.FlightState,
		"priority":           event.Priority,
		"event_id":           event.ID,
	})
}

// ImportEvents handles POST /api/flights/{id}/events/import. The file is read
// from the csv_file form field, or from the raw body for other content types.
func (h *Handler) ImportEvents(w http.ResponseWriter, r *http.Request) {
	flightID, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	var src io.Reader = http.MaxBytesReader(w, r.Body, maxImportSize)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxImportSize); err != nil {
			h.respondError(w, r, entity.ErrInvalidInput("Invalid multipart form"))
			return
		}
		file, _, err := r.FormFile("csv_file")
		if err != nil {
			h.respondError(w, r, entity.ErrInvalidInput("csv_file is required"))
			return
		}
		defer file.Close()
		src = file
	}

	count, err := h.flights.ImportEvents(r.Context(), flightID, src)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":   entity.StatusSuccess,
		"message":  fmt.Sprintf("Successfully imported %d events", count),
		"imported": count,
	})
}

func eventPath(r *http.Request) (uint, uint, error) {
	flightID, err := pathID(r, "id")
	if err != nil {
		return 0, 0, err
	}
	eventID, err := pathID(r, "eventId")
	if err != nil {
		return 0, 0, err
	}
	return flightID, eventID, nil
}
