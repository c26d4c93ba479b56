package entity

import "time"

// Playback operations recorded in the audit trail
const (
	OperationPlay    = "play"
	OperationReplay  = "replay"
	OperationStart   = "start"
	OperationReset   = "reset"
	OperationAbort   = "abort"
	OperationCleanup = "cleanup"
)

// PlaybackLog is one audit entry of a session operation
type PlaybackLog struct {
	ID         string    `bson:"_id,omitempty" json:"id"`
	FlightID   uint      `bson:"flightId" json:"flight_id"`
	EventID    uint      `bson:"eventId,omitempty" json:"event_id,omitempty"`
	Operation  string    `bson:"operation" json:"operation"`
	Status     string    `bson:"status" json:"status"`
	ErrorKind  string    `bson:"errorKind,omitempty" json:"error_kind,omitempty"`
	Message    string    `bson:"message,omitempty" json:"message,omitempty"`
	StatusCode int       `bson:"statusCode,omitempty" json:"status_code,omitempty"`
	DurationMs int64     `bson:"durationMs" json:"duration_ms"`
	RequestID  string    `bson:"requestId,omitempty" json:"request_id,omitempty"`
	CreatedAt  time.Time `bson:"createdAt" json:"created_at"`
}
