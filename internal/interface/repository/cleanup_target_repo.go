package repository

import (
	"context"
	"fmt"
	"time"

	"flight-event-mock-service/internal/domain/entity"
	"flight-event-mock-service/internal/domain/repository"
	"flight-event-mock-service/pkg/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const customConnectTimeout = 10 * time.Second

// GormCleanupTarget runs cleanup statements through a gorm handle
type GormCleanupTarget struct {
	db     *gorm.DB
	closer func() error
}

// Exec runs a single statement
func (t *GormCleanupTarget) Exec(ctx context.Context, stmt entity.SQLStatement) error {
	return t.db.WithContext(ctx).Exec(stmt.SQL, stmt.Args...).Error
}

// Transaction runs fn inside one transaction, rolling back when fn fails
func (t *GormCleanupTarget) Transaction(ctx context.Context, fn func(tx repository.StatementExecer) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormCleanupTarget{db: tx})
	})
}

// Close releases a custom connection; the service database stays open
func (t *GormCleanupTarget) Close() error {
	if t.closer == nil {
		return nil
	}
	return t.closer()
}

// GormCleanupTargetProvider opens cleanup targets
type GormCleanupTargetProvider struct {
	db     *gorm.DB
	logger logger.Logger
}

// NewGormCleanupTargetProvider creates a provider backed by the service database
func NewGormCleanupTargetProvider(db *gorm.DB, logger logger.Logger) repository.CleanupTargetProvider {
	return &GormCleanupTargetProvider{
		db:     db,
		logger: logger,
	}
}

// Default returns the service database
func (p *GormCleanupTargetProvider) Default() repository.CleanupTarget {
	return &GormCleanupTarget{db: p.db}
}

// Custom connects to a user supplied PostgreSQL database. Parameters are set
// on a pgx config field by field so credentials never pass through a DSN.
func (p *GormCleanupTargetProvider) Custom(ctx context.Context, params entity.CustomDatabase) (repository.CleanupTarget, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	port, _ := params.PortNumber()

	connConfig, err := pgx.ParseConfig("")
	if err != nil {
		return nil, fmt.Errorf("failed to build connection config: %w", err)
	}
	connConfig.Host = params.Host
	connConfig.Port = port
	connConfig.Database = params.Name
	connConfig.User = params.User
	connConfig.Password = params.Password
	connConfig.ConnectTimeout = customConnectTimeout
	connConfig.Fallbacks = nil

	sqlDB := stdlib.OpenDB(*connConfig)
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to custom database %s:%d/%s: %w", params.Host, port, params.Name, err)
	}

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: gormlogger.Discard,
	})
	if err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to open custom database: %w", err)
	}

	p.logger.Info("Connected to custom cleanup database", "host", params.Host, "port", port, "database", params.Name)
	return &GormCleanupTarget{db: db, closer: sqlDB.Close}, nil
}
