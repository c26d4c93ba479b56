package usecase

import (
	"context"
	"errors"
	"time"

	"flight-event-mock-service/internal/domain/entity"
	"flight-event-mock-service/internal/domain/repository"
	"flight-event-mock-service/pkg/logger"
	"flight-event-mock-service/pkg/metrics"
)

const auditTimeout = 5 * time.Second

// SessionController orchestrates start, play, reset and abort of a flight's
// playback. Operations on the same flight are serialized through the locker.
type SessionController struct {
	flightRepo repository.FlightRepository
	eventRepo  repository.EventRepository
	configRepo repository.ConfigurationRepository
	logRepo    repository.PlaybackLogRepository
	sequencer  *Sequencer
	dispatcher *Dispatcher
	cleanup    *CleanupExecutor
	tasks      *TaskRunner
	locker     repository.FlightLocker
	lockWait   time.Duration
	wait       func(ctx context.Context, d time.Duration) error
	logger     logger.Logger
	metrics    *metrics.Metrics
}

// NewSessionController creates a new session controller
func NewSessionController(
	flightRepo repository.FlightRepository,
	eventRepo repository.EventRepository,
	configRepo repository.ConfigurationRepository,
	logRepo repository.PlaybackLogRepository,
	sequencer *Sequencer,
	dispatcher *Dispatcher,
	cleanup *CleanupExecutor,
	tasks *TaskRunner,
	locker repository.FlightLocker,
	lockWait time.Duration,
	logger logger.Logger,
	metrics *metrics.Metrics,
) *SessionController {
	return &SessionController{
		flightRepo: flightRepo,
		eventRepo:  eventRepo,
		configRepo: configRepo,
		logRepo:    logRepo,
		sequencer:  sequencer,
		dispatcher: dispatcher,
		cleanup:    cleanup,
		tasks:      tasks,
		locker:     locker,
		lockWait:   lockWait,
		wait:       sleepContext,
		logger:     logger,
		metrics:    metrics,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *SessionController) acquire(ctx context.Context, flightID uint) (func(), error) {
	lockCtx, cancel := context.WithTimeout(ctx, c.lockWait)
	defer cancel()

	unlock, err := c.locker.Lock(lockCtx, flightID)
	if err == nil {
		return unlock, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		c.logger.Warn("Flight is busy", "flightId", flightID, "waited", c.lockWait)
		return nil, entity.ErrSessionBusy(flightID)
	}
	return nil, entity.ErrInternal("failed to acquire flight lock", err)
}

func (c *SessionController) loadFlight(ctx context.Context, flightID uint) (*entity.Flight, error) {
	flight, err := c.flightRepo.GetByID(ctx, flightID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, entity.ErrNotFound("Flight not found")
	}
	if err != nil {
		return nil, entity.ErrInternal("failed to load flight", err)
	}
	return flight, nil
}

func (c *SessionController) loadConfiguration(ctx context.Context, flightID uint) (*entity.MockConfiguration, error) {
	cfg, err := c.configRepo.GetByFlightID(ctx, flightID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, entity.ErrConfigurationMissing(flightID)
	}
	if err != nil {
		return nil, entity.ErrInternal("failed to load configuration", err)
	}
	return cfg, nil
}

// PlayEvent delivers one event to the configured callback. A replay never
// changes play flags; a first play marks exactly that event as played once
// the callback accepted it.
func (c *SessionController) PlayEvent(ctx context.Context, flightID, eventID uint, isReplay bool) (*entity.PlayResult, error) {
	start := time.Now()
	operation := entity.OperationPlay
	if isReplay {
		operation = entity.OperationReplay
	}

	result, err := c.playEvent(ctx, flightID, eventID, isReplay)
	c.finish(ctx, operation, flightID, eventID, start, err, func(entry *entity.PlaybackLog) {
		if result != nil {
			entry.StatusCode = result.StatusCode
		}
	})
	return result, err
}

func (c *SessionController) playEvent(ctx context.Context, flightID, eventID uint, isReplay bool) (*entity.PlayResult, error) {
	unlock, err := c.acquire(ctx, flightID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if _, err := c.loadFlight(ctx, flightID); err != nil {
		return nil, err
	}

	event, err := c.eventRepo.GetByID(ctx, flightID, eventID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, entity.ErrNotFound("Event not found")
	}
	if err != nil {
		return nil, entity.ErrInternal("failed to load event", err)
	}

	cfg, err := c.loadConfiguration(ctx, flightID)
	if err != nil {
		return nil, err
	}

	events, err := c.eventRepo.ListByFlight(ctx, flightID)
	if err != nil {
		return nil, entity.ErrInternal("failed to load events", err)
	}

	decision := c.sequencer.CanPlay(events, event, isReplay)
	if !decision.Allowed {
		c.logger.Warn("Rejected out of sequence event",
			"flightId", flightID,
			"eventId", eventID,
			"priority", event.Priority,
			"currentPriority", decision.CurrentPriority)
		return nil, entity.ErrSequenceViolation(decision.Details())
	}

	payload := entity.ParsePayload(event.RawEvent)
	if payload.Kind == entity.PayloadInvalid {
		c.logger.Error("Failed to parse event payload", "eventId", eventID, "error", payload.Err)
		return nil, entity.ErrPayloadMalformed(event.ID, event.RawEvent, payload.Err)
	}

	if cfg.CallbackURL == "" {
		return nil, entity.ErrConfigurationIncomplete("No callback URL configured. Please set a callback URL in the configuration.")
	}

	delivery, err := c.dispatcher.Deliver(ctx, event.ID, cfg.CallbackURL, payload)
	if err != nil {
		return nil, err
	}

	if !isReplay {
		if err := c.eventRepo.MarkPlayed(ctx, event.ID); err != nil {
			return nil, entity.ErrInternal("event was delivered but could not be marked as played", err)
		}
		event.IsPlayed = true
		for _, e := range events {
			if e.ID == event.ID {
				e.IsPlayed = true
			}
		}
	}

	result := &entity.PlayResult{
		EventID:           event.ID,
		IdentifiedChanges: event.IdentifiedChanges,
		FlightState:       event.FlightState,
		Priority:          event.Priority,
		IsReplay:          isReplay,
		StatusCode:        delivery.StatusCode,
	}

	if cfg.FastForward && !cfg.ManualMode {
		if next := c.sequencer.NextCandidate(events, event.Priority); next != nil {
			result.NextEvent = &entity.NextEvent{ID: next.ID, Priority: next.Priority}
		}
	}

	if !cfg.ManualMode && !cfg.FastForward {
		if err := c.wait(ctx, cfg.Delay()); err != nil {
			c.logger.Warn("Delay between events interrupted", "flightId", flightID, "error", err)
		}
	}

	mode := entity.OperationPlay
	if isReplay {
		mode = entity.OperationReplay
	}
	c.metrics.ObservePlay(mode)
	c.logger.Info("Event played",
		"flightId", flightID,
		"eventId", event.ID,
		"priority", event.Priority,
		"replay", isReplay)
	return result, nil
}

// runPipeline runs the configured cleanup, when enabled, then the tasks
func (c *SessionController) runPipeline(ctx context.Context, flight *entity.Flight, cfg *entity.MockConfiguration) error {
	if cfg.CleanupBeforeStart {
		if _, err := c.cleanup.RunAtomic(ctx, flight, cfg, ""); err != nil {
			return err
		}
	}
	_, err := c.tasks.RunAll(ctx, flight, cfg)
	return err
}

// StartSession prepares a flight for playback. Play flags are only cleared
// once cleanup and every task succeeded.
func (c *SessionController) StartSession(ctx context.Context, flightID uint) (*entity.SessionResult, error) {
	start := time.Now()
	result, err := c.startSession(ctx, flightID)
	c.finish(ctx, entity.OperationStart, flightID, 0, start, err, nil)
	return result, err
}

func (c *SessionController) startSession(ctx context.Context, flightID uint) (*entity.SessionResult, error) {
	unlock, err := c.acquire(ctx, flightID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	flight, err := c.loadFlight(ctx, flightID)
	if err != nil {
		return nil, err
	}
	cfg, err := c.loadConfiguration(ctx, flightID)
	if err != nil {
		return nil, err
	}

	if err := c.runPipeline(ctx, flight, cfg); err != nil {
		return nil, err
	}

	cleared, err := c.eventRepo.ResetPlayed(ctx, flightID)
	if err != nil {
		return nil, entity.ErrInternal("failed to reset events", err)
	}

	c.logger.Info("Mock session started", "flightId", flightID, "clearedEvents", cleared)
	return &entity.SessionResult{
		Status:         entity.StatusSuccess,
		Message:        "Mock session started",
		ClearedEvents:  cleared,
		CleanupSuccess: true,
	}, nil
}

// ResetSession clears every play flag and re-runs the pipeline. A pipeline
// failure still leaves the flags cleared and is reported as partial success.
func (c *SessionController) ResetSession(ctx context.Context, flightID uint) (*entity.SessionResult, error) {
	start := time.Now()
	result, err := c.rebuild(ctx, flightID, "Mock session reset successfully", "Mock session reset but cleanup failed")
	c.finish(ctx, entity.OperationReset, flightID, 0, start, err, func(entry *entity.PlaybackLog) {
		if result != nil && !result.CleanupSuccess {
			entry.Status = result.Status
			entry.Message = result.CleanupError
		}
	})
	return result, err
}

// AbortSession behaves like ResetSession and reports no pending events
func (c *SessionController) AbortSession(ctx context.Context, flightID uint) (*entity.SessionResult, error) {
	start := time.Now()
	result, err := c.rebuild(ctx, flightID, "Mock session aborted successfully", "Mock session aborted but cleanup failed")
	if result != nil {
		result.AbortedEvents = []uint{}
	}
	c.finish(ctx, entity.OperationAbort, flightID, 0, start, err, func(entry *entity.PlaybackLog) {
		if result != nil && !result.CleanupSuccess {
			entry.Status = result.Status
			entry.Message = result.CleanupError
		}
	})
	return result, err
}

func (c *SessionController) rebuild(ctx context.Context, flightID uint, successMessage, partialMessage string) (*entity.SessionResult, error) {
	unlock, err := c.acquire(ctx, flightID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	flight, err := c.loadFlight(ctx, flightID)
	if err != nil {
		return nil, err
	}

	cleared, err := c.eventRepo.ResetPlayed(ctx, flightID)
	if err != nil {
		return nil, entity.ErrInternal("failed to reset events", err)
	}

	cfg, err := c.loadConfiguration(ctx, flightID)
	if err == nil {
		err = c.runPipeline(ctx, flight, cfg)
	}
	if err != nil {
		message := err.Error()
		if appErr, ok := entity.AsAppError(err); ok {
			message = appErr.Message
		}
		c.logger.Warn("Session cleared but pipeline failed", "flightId", flightID, "error", err)
		return &entity.SessionResult{
			Status:         entity.StatusPartialSuccess,
			Message:        partialMessage,
			ClearedEvents:  cleared,
			CleanupSuccess: false,
			CleanupError:   message,
		}, nil
	}

	return &entity.SessionResult{
		Status:         entity.StatusSuccess,
		Message:        successMessage,
		ClearedEvents:  cleared,
		CleanupSuccess: true,
	}, nil
}

// RunCleanup runs the diagnostic cleanup for a flight. text overrides the
// configured statements when not blank.
func (c *SessionController) RunCleanup(ctx context.Context, flightID uint, text string) (*entity.CleanupReport, error) {
	start := time.Now()

	flight, err := c.loadFlight(ctx, flightID)
	if err != nil {
		return nil, err
	}
	cfg, err := c.configRepo.GetByFlightID(ctx, flightID)
	if errors.Is(err, repository.ErrNotFound) {
		appErr := entity.ErrConfigurationMissing(flightID)
		appErr.Message = "No configuration found for this flight"
		return nil, appErr
	}
	if err != nil {
		return nil, entity.ErrInternal("failed to load configuration", err)
	}

	report, err := c.cleanup.RunDiagnostic(ctx, flight, cfg, text)
	c.finish(ctx, entity.OperationCleanup, flightID, 0, start, err, func(entry *entity.PlaybackLog) {
		if report != nil {
			entry.Status = report.Status
			entry.Message = report.Message
		}
	})
	return report, err
}

// History returns the newest audit entries of a flight
func (c *SessionController) History(ctx context.Context, flightID uint, limit int) ([]*entity.PlaybackLog, error) {
	if _, err := c.loadFlight(ctx, flightID); err != nil {
		return nil, err
	}
	entries, err := c.logRepo.FindByFlight(ctx, flightID, limit)
	if err != nil {
		return nil, entity.ErrInternal("failed to load playback history", err)
	}
	return entries, nil
}

// finish records metrics and an audit entry for a completed operation
func (c *SessionController) finish(ctx context.Context, operation string, flightID, eventID uint, start time.Time, err error, decorate func(*entity.PlaybackLog)) {
	entry := &entity.PlaybackLog{
		FlightID:   flightID,
		EventID:    eventID,
		Operation:  operation,
		Status:     entity.StatusSuccess,
		DurationMs: time.Since(start).Milliseconds(),
		RequestID:  RequestIDFromContext(ctx),
		CreatedAt:  time.Now(),
	}
	if err != nil {
		entry.Status = entity.StatusError
		entry.ErrorKind = string(entity.KindOf(err))
		entry.Message = err.Error()
	}
	if decorate != nil {
		decorate(entry)
	}

	c.metrics.ObserveSession(operation, entry.Status)

	auditCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditTimeout)
	defer cancel()
	if err := c.logRepo.Save(auditCtx, entry); err != nil {
		c.logger.Warn("Failed to record playback log", "operation", operation, "flightId", flightID, "error", err)
	}
}
