package handler

import (
	"net/http"
	"runtime/debug"
	"time"

	"flight-event-mock-service/internal/domain/entity"
	"flight-event-mock-service/internal/usecase"
	"flight-event-mock-service/pkg/logger"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

const requestIDHeader = "X-Request-ID"

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// RequestID injects and echoes a request id for correlation
func RequestID() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(requestIDHeader)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, requestID)
			next.ServeHTTP(w, r.WithContext(usecase.WithRequestID(r.Context(), requestID)))
		})
	}
}

// RecoverPanic converts panics into a generic 500 response
func RecoverPanic(log logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if recovered := recover(); recovered != nil {
					log.Error("Panic recovered",
						"method", r.Method,
						"path", r.URL.Path,
						"requestId", usecase.RequestIDFromContext(r.Context()),
						"panic", recovered,
						"stack", string(debug.Stack()))
					respondMessage(w, http.StatusInternalServerError, entity.StatusError, "An unexpected error occurred")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// AccessLog logs every request once it completed
func AccessLog(log logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			log.Info("HTTP request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration", time.Since(start),
				"requestId", usecase.RequestIDFromContext(r.Context()))
		})
	}
}
