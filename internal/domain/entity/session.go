package entity

import (
	"encoding/json"
	"time"
)

// Result statuses shared by session operations
const (
	StatusSuccess        = "success"
	StatusPartialSuccess = "partial_success"
	StatusError          = "error"
)

// NextEvent points at the event a client should play next
type NextEvent struct {
	ID       uint `json:"id"`
	Priority int  `json:"priority"`
}

// PlayResult is returned after an event was delivered
type PlayResult struct {
	EventID           uint       `json:"event_id"`
	IdentifiedChanges string     `json:"identified_changes"`
	FlightState       string     `json:"flight_state"`
	Priority          int        `json:"priority"`
	IsReplay          bool       `json:"is_replay"`
	NextEvent         *NextEvent `json:"next_event"`
	StatusCode        int        `json:"-"`
}

// SessionResult is returned by start, reset and abort
type SessionResult struct {
	Status         string `json:"status"`
	Message        string `json:"message"`
	ClearedEvents  int64  `json:"cleared_events"`
	CleanupSuccess bool   `json:"cleanup_success"`
	CleanupError   string `json:"cleanup_error,omitempty"`
	AbortedEvents  []uint `json:"aborted_events,omitempty"`
}

// FailedQuery describes one failed statement of a diagnostic run
type FailedQuery struct {
	QueryIndex int    `json:"query_index"`
	Query      string `json:"query"`
	Error      string `json:"error"`
}

// CleanupReport summarizes a diagnostic cleanup run
type CleanupReport struct {
	Status          string        `json:"status"`
	Message         string        `json:"message"`
	TotalQueries    int           `json:"total_queries"`
	ExecutedQueries int           `json:"executed_queries"`
	FailedQueries   []FailedQuery `json:"failed_queries"`
}

// SQLStatement is one rendered cleanup statement. Index is 0-based.
type SQLStatement struct {
	Index    int
	Template string
	SQL      string
	Args     []interface{}
}

// DeliveryResult is the outcome of a successful callback delivery
type DeliveryResult struct {
	StatusCode int
	Body       []byte
}

// OutboundRequest is an HTTP POST issued by the service
type OutboundRequest struct {
	URL         string
	Body        []byte
	Headers     map[string]string
	Timeout     time.Duration
	Credentials *ClientCredentials
}

// OutboundResponse is the raw answer to an OutboundRequest
type OutboundResponse struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
}

// Successful reports a 2xx status
func (r *OutboundResponse) Successful() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// PublishMessage is a record sent to a message broker
type PublishMessage struct {
	BootstrapServers []string
	Topic            string
	Value            []byte
}

// ProxyResult mirrors an upstream response back to the caller
type ProxyResult struct {
	Status  int               `json:"status"`
	Content json.RawMessage   `json:"content"`
	Headers map[string]string `json:"headers"`
}
