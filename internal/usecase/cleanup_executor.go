package usecase

import (
	"context"
	"fmt"
	"strings"

	"flight-event-mock-service/internal/domain/entity"
	"flight-event-mock-service/internal/domain/repository"
	"flight-event-mock-service/pkg/logger"
	"flight-event-mock-service/pkg/metrics"
	"flight-event-mock-service/pkg/utils"
)

// CleanupExecutor runs cleanup statements against the service database or a
// flight's custom database.
type CleanupExecutor struct {
	targets repository.CleanupTargetProvider
	logger  logger.Logger
	metrics *metrics.Metrics
}

// NewCleanupExecutor creates a new cleanup executor
func NewCleanupExecutor(targets repository.CleanupTargetProvider, logger logger.Logger, metrics *metrics.Metrics) *CleanupExecutor {
	return &CleanupExecutor{
		targets: targets,
		logger:  logger,
		metrics: metrics,
	}
}

func (e *CleanupExecutor) statements(flight *entity.Flight, cfg *entity.MockConfiguration, text string) []entity.SQLStatement {
	if strings.TrimSpace(text) == "" {
		text = cfg.EffectiveCleanupQuery()
	}
	return utils.RenderStatements(text, flight.FlightUniqueID)
}

func (e *CleanupExecutor) open(ctx context.Context, cfg *entity.MockConfiguration) (repository.CleanupTarget, error) {
	if !cfg.HasCustomDatabase() {
		return e.targets.Default(), nil
	}

	target, err := e.targets.Custom(ctx, cfg.CustomDatabase())
	if err != nil {
		e.logger.Error("Failed to open custom cleanup database", "host", cfg.DBHost, "error", err)
		return nil, entity.ErrStatementFailure(0, "", utils.CleanDatabaseError(err), err)
	}
	return target, nil
}

// RunAtomic executes every statement in one transaction and stops at the first
// failure, leaving the target unchanged. text overrides the configured cleanup
// when not blank.
func (e *CleanupExecutor) RunAtomic(ctx context.Context, flight *entity.Flight, cfg *entity.MockConfiguration, text string) (int, error) {
	stmts := e.statements(flight, cfg, text)
	if len(stmts) == 0 {
		return 0, nil
	}

	target, err := e.open(ctx, cfg)
	if err != nil {
		return 0, err
	}
	defer target.Close()

	executed := 0
	err = target.Transaction(ctx, func(tx repository.StatementExecer) error {
		for _, stmt := range stmts {
			if err := tx.Exec(ctx, stmt); err != nil {
				e.metrics.ObserveStatement(false)
				return entity.ErrStatementFailure(stmt.Index, stmt.Template, utils.CleanDatabaseError(err), err)
			}
			e.metrics.ObserveStatement(true)
			executed++
		}
		return nil
	})
	if err != nil {
		e.logger.Error("Cleanup failed", "flightId", flight.ID, "executed", executed, "total", len(stmts), "error", err)
		if appErr, ok := entity.AsAppError(err); ok {
			return 0, appErr
		}
		return 0, entity.ErrStatementFailure(len(stmts)-1, "", utils.CleanDatabaseError(err), err)
	}

	e.logger.Info("Cleanup completed", "flightId", flight.ID, "statements", executed)
	return executed, nil
}

// RunDiagnostic executes every statement in its own transaction and reports
// each failure without stopping.
func (e *CleanupExecutor) RunDiagnostic(ctx context.Context, flight *entity.Flight, cfg *entity.MockConfiguration, text string) (*entity.CleanupReport, error) {
	stmts := e.statements(flight, cfg, text)
	if len(stmts) == 0 {
		return nil, entity.ErrInvalidInput("No cleanup query configured")
	}

	target, err := e.open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer target.Close()

	report := &entity.CleanupReport{
		TotalQueries:  len(stmts),
		FailedQueries: []entity.FailedQuery{},
	}

	for _, stmt := range stmts {
		stmt := stmt
		err := target.Transaction(ctx, func(tx repository.StatementExecer) error {
			return tx.Exec(ctx, stmt)
		})
		if err != nil {
			e.metrics.ObserveStatement(false)
			report.FailedQueries = append(report.FailedQueries, entity.FailedQuery{
				QueryIndex: stmt.Index,
				Query:      stmt.Template,
				Error:      utils.CleanDatabaseError(err),
			})
			continue
		}
		e.metrics.ObserveStatement(true)
		report.ExecutedQueries++
	}

	switch {
	case report.ExecutedQueries == report.TotalQueries:
		report.Status = entity.StatusSuccess
		report.Message = fmt.Sprintf("Successfully executed all %d queries", report.TotalQueries)
	case report.ExecutedQueries > 0:
		report.Status = entity.StatusPartialSuccess
		report.Message = fmt.Sprintf("Executed %d of %d queries successfully", report.ExecutedQueries, report.TotalQueries)
	default:
		report.Status = entity.StatusError
		report.Message = "All queries failed"
	}

	e.logger.Info("Diagnostic cleanup finished",
		"flightId", flight.ID,
		"status", report.Status,
		"executed", report.ExecutedQueries,
		"total", report.TotalQueries)
	return report, nil
}
