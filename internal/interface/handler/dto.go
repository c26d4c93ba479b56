package handler

import (
	"encoding/json"
	"time"

	"flight-event-mock-service/internal/domain/entity"
)

type flightResponse struct {
	ID             uint      `json:"id"`
	FlightUniqueID string    `json:"flight_unique_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func toFlightResponse(f *entity.Flight) flightResponse {
	return flightResponse{
		ID:             f.ID,
		FlightUniqueID: f.FlightUniqueID,
		CreatedAt:      f.CreatedAt,
		UpdatedAt:      f.UpdatedAt,
	}
}

type eventResponse struct {
	ID                uint      `json:"id"`
	FlightID          uint      `json:"flight_id"`
	RawEvent          string    `json:"raw_event"`
	FlightState       string    `json:"flight_state"`
	Priority          int       `json:"priority"`
	IdentifiedChanges string    `json:"identified_changes"`
	IsPlayed          bool      `json:"is_played"`
	CreatedAt         time.Time `json:"created_at"`
}

func toEventResponse(e *entity.FlightEvent) eventResponse {
	return eventResponse{
		ID:                e.ID,
		FlightID:          e.FlightID,
		RawEvent:          e.RawEvent,
		FlightState:       e.FlightState,
		Priority:          e.Priority,
		IdentifiedChanges: e.IdentifiedChanges,
		IsPlayed:          e.IsPlayed,
		CreatedAt:         e.CreatedAt,
	}
}

func toEventResponses(events []*entity.FlightEvent) []eventResponse {
	out := make([]eventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, toEventResponse(e))
	}
	return out
}

// configurationRequest mirrors the editable configuration fields. Pointers
// tell an omitted field from an explicit false or zero.
type configurationRequest struct {
	CallbackURL        string `json:"callback_url"`
	DelayBetweenEvents *int   `json:"delay_between_events"`
	FastForward        bool   `json:"fast_forward"`
	ManualMode         bool   `json:"manual_mode"`
	CleanupBeforeStart *bool  `json:"cleanup_before_start"`
	CleanupQuery       string `json:"cleanup_query"`
	HostAddress        string `json:"host_address"`
	UseCustomDB        bool   `json:"use_custom_db"`
	DBHost             string `json:"db_host"`
	DBPort             string `json:"db_port"`
	DBName             string `json:"db_name"`
	DBUser             string `json:"db_user"`
	DBPassword         string `json:"db_password"`
}

func (c configurationRequest) toEntity(flightID uint) *entity.MockConfiguration {
	cfg := entity.NewMockConfiguration(flightID)
	cfg.CallbackURL = c.CallbackURL
	if c.DelayBetweenEvents != nil {
		cfg.DelayBetweenEvents = *c.DelayBetweenEvents
	}
	cfg.FastForward = c.FastForward
	cfg.ManualMode = c.ManualMode
	if c.CleanupBeforeStart != nil {
		cfg.CleanupBeforeStart = *c.CleanupBeforeStart
	}
	cfg.CleanupQuery = c.CleanupQuery
	cfg.HostAddress = c.HostAddress
	cfg.UseCustomDB = c.UseCustomDB
	cfg.DBHost = c.DBHost
	if c.DBPort != "" {
		cfg.DBPort = c.DBPort
	}
	cfg.DBName = c.DBName
	cfg.DBUser = c.DBUser
	cfg.DBPassword = c.DBPassword
	return cfg
}

type configurationResponse struct {
	ID                 uint   `json:"id"`
	FlightID           uint   `json:"flight_id"`
	CallbackURL        string `json:"callback_url"`
	DelayBetweenEvents int    `json:"delay_between_events"`
	FastForward        bool   `json:"fast_forward"`
	ManualMode         bool   `json:"manual_mode"`
	CleanupBeforeStart bool   `json:"cleanup_before_start"`
	CleanupQuery       string `json:"cleanup_query"`
	HostAddress        string `json:"host_address"`
	UseCustomDB        bool   `json:"use_custom_db"`
	DBHost             string `json:"db_host"`
	DBPort             string `json:"db_port"`
	DBName             string `json:"db_name"`
	DBUser             string `json:"db_user"`
	DBPasswordSet      bool   `json:"db_password_set"`
}

func toConfigurationResponse(c *entity.MockConfiguration) *configurationResponse {
	if c == nil {
		return nil
	}
	return &configurationResponse{
		ID:                 c.ID,
		FlightID:           c.FlightID,
		CallbackURL:        c.CallbackURL,
		DelayBetweenEvents: c.DelayBetweenEvents,
		FastForward:        c.FastForward,
		ManualMode:         c.ManualMode,
		CleanupBeforeStart: c.CleanupBeforeStart,
		CleanupQuery:       c.CleanupQuery,
		HostAddress:        c.HostAddress,
		UseCustomDB:        c.UseCustomDB,
		DBHost:             c.DBHost,
		DBPort:             c.DBPort,
		DBName:             c.DBName,
		DBUser:             c.DBUser,
		DBPasswordSet:      c.DBPassword != "",
	}
}

type taskRequest struct {
	Name      string          `json:"name"`
	TaskType  string          `json:"task_type"`
	Template  json.RawMessage `json:"payload_template"`
	Order     int             `json:"order"`
	IsEnabled *bool           `json:"is_enabled"`
}

// toEntity accepts the template either as a JSON document or as a string
// holding one.
func (t taskRequest) toEntity() *entity.AdditionalTask {
	template := string(t.Template)
	var inner string
	if err := json.Unmarshal(t.Template, &inner); err == nil {
		template = inner
	}
	if template == "null" {
		template = ""
	}

	task := &entity.AdditionalTask{
		Name:      t.Name,
		Type:      entity.TaskType(t.TaskType),
		Template:  template,
		Order:     t.Order,
		IsEnabled: true,
	}
	if t.IsEnabled != nil {
		task.IsEnabled = *t.IsEnabled
	}
	return task
}

type taskResponse struct {
	ID              uint            `json:"id"`
	ConfigurationID uint            `json:"configuration_id"`
	Name            string          `json:"name"`
	TaskType        entity.TaskType `json:"task_type"`
	Template        json.RawMessage `json:"payload_template"`
	Order           int             `json:"order"`
	IsEnabled       bool            `json:"is_enabled"`
}

func toTaskResponse(t *entity.AdditionalTask) taskResponse {
	template := json.RawMessage("null")
	if json.Valid([]byte(t.Template)) {
		template = json.RawMessage(t.Template)
	}
	return taskResponse{
		ID:              t.ID,
		ConfigurationID: t.ConfigurationID,
		Name:            t.Name,
		TaskType:        t.Type,
		Template:        template,
		Order:           t.Order,
		IsEnabled:       t.IsEnabled,
	}
}

func toTaskResponses(tasks []*entity.AdditionalTask) []taskResponse {
	out := make([]taskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toTaskResponse(t))
	}
	return out
}

func playResponse(result *entity.PlayResult) map[string]interface{} {
	resp := map[string]interface{}{
		"status":             entity.StatusSuccess,
		"message":            "Event played successfully",
		"event_id":           result.EventID,
		"identified_changes": result.IdentifiedChanges,
		"flight_state":       result.FlightState,
		"priority":           result.Priority,
		"is_replay":          result.IsReplay,
	}
	if result.NextEvent != nil {
		resp["next_event"] = result.NextEvent
	}
	return resp
}

func sessionResponse(result *entity.SessionResult, abort bool) map[string]interface{} {
	resp := map[string]interface{}{
		"status":          result.Status,
		"message":         result.Message,
		"cleanup_success": result.CleanupSuccess,
		"cleared_events":  result.ClearedEvents,
	}
	if !result.CleanupSuccess {
		resp["cleanup_error"] = result.CleanupError
	}
	if abort {
		aborted := result.AbortedEvents
		if aborted == nil {
			aborted = []uint{}
		}
		resp["aborted_events"] = aborted
	}
	return resp
}

func cleanupResponse(report *entity.CleanupReport) map[string]interface{} {
	resp := map[string]interface{}{
		"status":           report.Status,
		"message":          report.Message,
		"total_queries":    report.TotalQueries,
		"executed_queries": report.ExecutedQueries,
	}
	if report.Status != entity.StatusSuccess {
		resp["failed_queries"] = report.FailedQueries
	}
	return resp
}
