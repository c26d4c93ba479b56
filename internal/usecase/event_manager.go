package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"time"

	"flight-event-mock-service/internal/domain/entity"
	"flight-event-mock-service/internal/domain/repository"
	"flight-event-mock-service/pkg/logger"
	"flight-event-mock-service/pkg/utils"
)

const (
	flightQueryDateLayout = "20060102"
	flightUniqueIDDate    = "02012006"
)

// EventManager handles flights, their configuration, tasks and events
type EventManager struct {
	flightRepo repository.FlightRepository
	eventRepo  repository.EventRepository
	configRepo repository.ConfigurationRepository
	taskRepo   repository.TaskRepository
	sequencer  *Sequencer
	logger     logger.Logger
}

// NewEventManager creates a new event manager
func NewEventManager(
	flightRepo repository.FlightRepository,
	eventRepo repository.EventRepository,
	configRepo repository.ConfigurationRepository,
	taskRepo repository.TaskRepository,
	sequencer *Sequencer,
	logger logger.Logger,
) *EventManager {
	return &EventManager{
		flightRepo: flightRepo,
		eventRepo:  eventRepo,
		configRepo: configRepo,
		taskRepo:   taskRepo,
		sequencer:  sequencer,
		logger:     logger,
	}
}

func (m *EventManager) flight(ctx context.Context, flightID uint) (*entity.Flight, error) {
	flight, err := m.flightRepo.GetByID(ctx, flightID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, entity.ErrNotFound("Flight not found")
	}
	if err != nil {
		return nil, entity.ErrInternal("failed to load flight", err)
	}
	return flight, nil
}

func (m *EventManager) configuration(ctx context.Context, flightID uint) (*entity.MockConfiguration, error) {
	cfg, err := m.configRepo.GetByFlightID(ctx, flightID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, entity.ErrConfigurationMissing(flightID)
	}
	if err != nil {
		return nil, entity.ErrInternal("failed to load configuration", err)
	}
	return cfg, nil
}

// CreateFlight stores a new flight. cfg may be nil.
func (m *EventManager) CreateFlight(ctx context.Context, flightUniqueID string, cfg *entity.MockConfiguration) (*entity.Flight, error) {
	flightUniqueID = strings.TrimSpace(flightUniqueID)
	if flightUniqueID == "" {
		return nil, entity.ErrInvalidInput("flight_unique_id is required")
	}

	_, err := m.flightRepo.GetByUniqueID(ctx, flightUniqueID)
	if err == nil {
		return nil, entity.ErrInvalidInput("Flight " + flightUniqueID + " already exists")
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, entity.ErrInternal("failed to check flight", err)
	}

	flight := &entity.Flight{FlightUniqueID: flightUniqueID}
	if err := m.flightRepo.Create(ctx, flight, cfg); err != nil {
		return nil, entity.ErrInternal("failed to create flight", err)
	}

	m.logger.Info("Flight created", "flightId", flight.ID, "flightUniqueId", flightUniqueID)
	return flight, nil
}

// ListFlights returns every flight
func (m *EventManager) ListFlights(ctx context.Context) ([]*entity.Flight, error) {
	flights, err := m.flightRepo.List(ctx)
	if err != nil {
		return nil, entity.ErrInternal("failed to list flights", err)
	}
	return flights, nil
}

// GetFlightDetail returns a flight with its configuration, tasks, events and
// playback position.
func (m *EventManager) GetFlightDetail(ctx context.Context, flightID uint) (*entity.FlightDetail, error) {
	flight, err := m.flight(ctx, flightID)
	if err != nil {
		return nil, err
	}

	events, err := m.eventRepo.ListByFlight(ctx, flightID)
	if err != nil {
		return nil, entity.ErrInternal("failed to load events", err)
	}

	detail := &entity.FlightDetail{
		Flight:          flight,
		Events:          events,
		CurrentPriority: m.sequencer.CurrentPriority(events),
		State:           entity.DeriveSessionState(events),
		Tasks:           []*entity.AdditionalTask{},
	}

	cfg, err := m.configRepo.GetByFlightID(ctx, flightID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
	case err != nil:
		return nil, entity.ErrInternal("failed to load configuration", err)
	default:
		detail.Configuration = cfg
		if detail.Tasks, err = m.taskRepo.ListByConfiguration(ctx, cfg.ID); err != nil {
			return nil, entity.ErrInternal("failed to load tasks", err)
		}
	}
	return detail, nil
}

// DeleteFlight removes a flight and everything it owns
func (m *EventManager) DeleteFlight(ctx context.Context, flightID uint) (*entity.Flight, error) {
	flight, err := m.flight(ctx, flightID)
	if err != nil {
		return nil, err
	}
	if err := m.flightRepo.Delete(ctx, flightID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, entity.ErrNotFound("Flight not found")
		}
		return nil, entity.ErrInternal("failed to delete flight", err)
	}

	m.logger.Info("Flight deleted", "flightId", flightID, "flightUniqueId", flight.FlightUniqueID)
	return flight, nil
}

// SaveConfiguration creates or replaces the configuration of a flight
func (m *EventManager) SaveConfiguration(ctx context.Context, flightID uint, cfg *entity.MockConfiguration) (*entity.MockConfiguration, error) {
	if _, err := m.flight(ctx, flightID); err != nil {
		return nil, err
	}
	if cfg.DelayBetweenEvents < 0 {
		return nil, entity.ErrInvalidInput("delay_between_events must not be negative")
	}
	if cfg.UseCustomDB && cfg.HasCustomDatabase() {
		if err := cfg.CustomDatabase().Validate(); err != nil {
			return nil, entity.ErrInvalidInput(err.Error())
		}
	}
	if strings.TrimSpace(cfg.DBPort) == "" {
		cfg.DBPort = entity.DefaultCustomDBPort
	}

	cfg.FlightID = flightID
	if err := m.configRepo.Upsert(ctx, cfg); err != nil {
		return nil, entity.ErrInternal("failed to save configuration", err)
	}

	m.logger.Info("Configuration saved", "flightId", flightID, "callbackUrl", cfg.CallbackURL)
	return cfg, nil
}

// ListTasks returns the tasks of a flight's configuration
func (m *EventManager) ListTasks(ctx context.Context, flightID uint) ([]*entity.AdditionalTask, error) {
	cfg, err := m.configuration(ctx, flightID)
	if err != nil {
		return nil, err
	}
	tasks, err := m.taskRepo.ListByConfiguration(ctx, cfg.ID)
	if err != nil {
		return nil, entity.ErrInternal("failed to load tasks", err)
	}
	return tasks, nil
}

// AddTask attaches a task to a flight's configuration
func (m *EventManager) AddTask(ctx context.Context, flightID uint, task *entity.AdditionalTask) (*entity.AdditionalTask, error) {
	if strings.TrimSpace(task.Name) == "" {
		return nil, entity.ErrInvalidInput("name is required")
	}
	if !task.Type.Valid() {
		return nil, entity.ErrInvalidInput("task_type must be one of kafka, api, cleanup")
	}
	if task.Template != "" && !json.Valid([]byte(task.Template)) {
		return nil, entity.ErrInvalidInput("template must be valid JSON")
	}

	cfg, err := m.configuration(ctx, flightID)
	if err != nil {
		return nil, err
	}

	task.ConfigurationID = cfg.ID
	if err := m.taskRepo.Create(ctx, task); err != nil {
		return nil, entity.ErrInternal("failed to create task", err)
	}

	m.logger.Info("Task added", "flightId", flightID, "task", task.Name, "type", task.Type, "order", task.Order)
	return task, nil
}

// DeleteTask removes a task from a flight's configuration
func (m *EventManager) DeleteTask(ctx context.Context, flightID, taskID uint) error {
	cfg, err := m.configuration(ctx, flightID)
	if err != nil {
		return err
	}
	if err := m.taskRepo.Delete(ctx, cfg.ID, taskID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return entity.ErrNotFound("Task not found")
		}
		return entity.ErrInternal("failed to delete task", err)
	}
	return nil
}

// ListEvents returns the events of a flight ordered by priority
func (m *EventManager) ListEvents(ctx context.Context, flightID uint) ([]*entity.FlightEvent, error) {
	if _, err := m.flight(ctx, flightID); err != nil {
		return nil, err
	}
	events, err := m.eventRepo.ListByFlight(ctx, flightID)
	if err != nil {
		return nil, entity.ErrInternal("failed to load events", err)
	}
	return events, nil
}

// AddEvent inserts an event, shifting later priorities when needed
func (m *EventManager) AddEvent(ctx context.Context, flightID uint, input entity.EventInput) (*entity.FlightEvent, error) {
	if _, err := m.flight(ctx, flightID); err != nil {
		return nil, err
	}

	event := &entity.FlightEvent{
		FlightID:          flightID,
		RawEvent:          input.RawEvent,
		FlightState:       input.FlightState,
		IdentifiedChanges: input.IdentifiedChanges,
	}
	if err := m.eventRepo.Insert(ctx, event, input.Priority); err != nil {
		return nil, entity.ErrInternal("failed to add event", err)
	}

	m.logger.Info("Event added", "flightId", flightID, "eventId", event.ID, "priority", event.Priority)
	return event, nil
}

// GetEvent returns one event of a flight
func (m *EventManager) GetEvent(ctx context.Context, flightID, eventID uint) (*entity.FlightEvent, error) {
	event, err := m.eventRepo.GetByID(ctx, flightID, eventID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, entity.ErrNotFound("Event not found")
	}
	if err != nil {
		return nil, entity.ErrInternal("failed to load event", err)
	}
	return event, nil
}

// UpdateEvent replaces the editable fields of an event. The played flag is
// left untouched.
func (m *EventManager) UpdateEvent(ctx context.Context, flightID, eventID uint, input entity.EventInput) (*entity.FlightEvent, error) {
	event, err := m.GetEvent(ctx, flightID, eventID)
	if err != nil {
		return nil, err
	}

	event.RawEvent = input.RawEvent
	event.FlightState = input.FlightState
	event.IdentifiedChanges = input.IdentifiedChanges
	if input.Priority > 0 {
		event.Priority = input.Priority
	}

	if err := m.eventRepo.Update(ctx, event); err != nil {
		return nil, entity.ErrInternal("failed to update event", err)
	}
	return event, nil
}

// DeleteEvent removes one event
func (m *EventManager) DeleteEvent(ctx context.Context, flightID, eventID uint) error {
	if err := m.eventRepo.Delete(ctx, flightID, eventID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return entity.ErrNotFound("Event not found")
		}
		return entity.ErrInternal("failed to delete event", err)
	}
	return nil
}

// DeleteAllEvents removes every event of a flight
func (m *EventManager) DeleteAllEvents(ctx context.Context, flightID uint) (int64, error) {
	if _, err := m.flight(ctx, flightID); err != nil {
		return 0, err
	}
	deleted, err := m.eventRepo.DeleteAll(ctx, flightID)
	if err != nil {
		return 0, entity.ErrInternal("failed to delete events", err)
	}

	m.logger.Info("All events deleted", "flightId", flightID, "count", deleted)
	return deleted, nil
}

// FindEventWithFID returns the lowest priority event whose payload is an
// object carrying a "fid" key.
func (m *EventManager) FindEventWithFID(ctx context.Context, flightID uint) (*entity.FlightEvent, error) {
	events, err := m.ListEvents(ctx, flightID)
	if err != nil {
		return nil, err
	}

	for _, event := range events {
		obj, ok := entity.ParsePayload(event.RawEvent).Object()
		if !ok {
			continue
		}
		if _, has := obj["fid"]; has {
			return event, nil
		}
	}
	return nil, entity.ErrNotFound("No event with fid field found")
}

// ImportEvents replaces the events of a flight with the rows of a CSV file,
// numbering them 1..N in ingestion time order.
func (m *EventManager) ImportEvents(ctx context.Context, flightID uint, r io.Reader) (int, error) {
	if _, err := m.flight(ctx, flightID); err != nil {
		return 0, err
	}

	rows, err := utils.ParseEventCSV(r)
	if err != nil {
		return 0, entity.ErrInvalidInput("Error importing CSV: " + err.Error())
	}

	events := make([]*entity.FlightEvent, 0, len(rows))
	for i, row := range rows {
		events = append(events, &entity.FlightEvent{
			FlightID:          flightID,
			RawEvent:          row.RawEvent,
			IdentifiedChanges: row.IdentifiedChanges,
			FlightState:       row.FlightState,
			Priority:          i + 1,
		})
	}

	if err := m.eventRepo.ReplaceAll(ctx, flightID, events); err != nil {
		return 0, entity.ErrInternal("failed to import events", err)
	}

	m.logger.Info("Events imported", "flightId", flightID, "count", len(events))
	return len(events), nil
}

// FlightQuery returns the first FIRST_NAV_TRACKING payload of the flight
// numbered fnum on date (yyyyMMdd), or nil when none matches.
func (m *EventManager) FlightQuery(ctx context.Context, fnum, date string) (json.RawMessage, error) {
	if fnum == "" || date == "" {
		return nil, entity.ErrInvalidInput("Missing required parameters")
	}

	day, err := time.Parse(flightQueryDateLayout, date)
	if err != nil {
		return nil, entity.ErrInvalidInput("Invalid date format")
	}
	dayToken := day.Format(flightUniqueIDDate)

	matches, err := m.eventRepo.FindAnnotated(ctx, fnum, entity.FirstNavTrackingMarker)
	if err != nil {
		return nil, entity.ErrInternal("failed to query events", err)
	}

	for _, match := range matches {
		if !strings.Contains(match.FlightUniqueID, dayToken) {
			continue
		}
		if json.Valid([]byte(match.Event.RawEvent)) {
			return json.RawMessage(match.Event.RawEvent), nil
		}
	}
	return nil, nil
}
