package repository

import (
	"context"

	"flight-event-mock-service/internal/domain/entity"
)

// StatementExecer runs a single rendered statement
type StatementExecer interface {
	Exec(ctx context.Context, stmt entity.SQLStatement) error
}

// CleanupTarget is a database cleanup statements run against. Exec outside
// Transaction commits each statement on its own.
type CleanupTarget interface {
	StatementExecer
	Transaction(ctx context.Context, fn func(tx StatementExecer) error) error
	Close() error
}

// CleanupTargetProvider hands out the service database or a custom one
type CleanupTargetProvider interface {
	Default() CleanupTarget
	Custom(ctx context.Context, params entity.CustomDatabase) (CleanupTarget, error)
}

// FlightLocker serializes session operations of one flight
type FlightLocker interface {
	// Lock blocks until the flight is free or ctx is done
	Lock(ctx context.Context, flightID uint) (unlock func(), err error)
}
