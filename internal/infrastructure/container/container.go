package container

import (
	"context"
	"fmt"
	"net/http"

	"flight-event-mock-service/internal/domain/repository"
	"flight-event-mock-service/internal/infrastructure/config"
	"flight-event-mock-service/internal/infrastructure/lock"
	"flight-event-mock-service/internal/infrastructure/oauth"
	"flight-event-mock-service/internal/infrastructure/persistence"
	"flight-event-mock-service/internal/infrastructure/router"
	"flight-event-mock-service/internal/interface/handler"
	repo "flight-event-mock-service/internal/interface/repository"
	"flight-event-mock-service/internal/usecase"
	"flight-event-mock-service/pkg/logger"
	"flight-event-mock-service/pkg/metrics"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// Container holds the wired services shared by the server and the CLI
type Container struct {
	Config   *config.Config
	Logger   logger.Logger
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics

	Events   *usecase.EventManager
	Sessions *usecase.SessionController
	Tools    *usecase.ToolService

	db    *gorm.DB
	mongo *mongo.Client
	redis *redis.Client
}

// New connects every backing store and wires the use cases
func New(ctx context.Context, cfg *config.Config, log logger.Logger) (*Container, error) {
	c := &Container{Config: cfg, Logger: log}

	log.Info("Connecting to PostgreSQL")
	db, err := persistence.NewPostgresDB(cfg.PostgresURI, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	c.db = db

	if cfg.Migrate {
		log.Info("Running schema migration")
		if err := repo.Migrate(db); err != nil {
			c.Close(ctx)
			return nil, fmt.Errorf("failed to migrate schema: %w", err)
		}
	}

	logRepo := repo.NewNopPlaybackLogRepository()
	if cfg.PlaybackLogEnabled {
		log.Info("Connecting to MongoDB")
		client, mdb, err := persistence.NewMongoClient(ctx, cfg.MongoURI, cfg.MongoDB, cfg.MongoUser, cfg.MongoPassword)
		if err != nil {
			c.Close(ctx)
			return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		c.mongo = client
		logRepo = repo.NewMongoPlaybackLogRepository(mdb)
	}

	locker := lock.NewLocalLocker()
	if cfg.RedisAddr != "" {
		log.Info("Connecting to Redis", "addr", cfg.RedisAddr)
		client, err := persistence.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			c.Close(ctx)
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		c.redis = client
		locker = lock.NewRedisLocker(client, cfg.LockTTL, log)
	}

	c.Registry = prometheus.NewRegistry()
	c.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	c.Metrics = metrics.NewMetrics(cfg.MetricsNamespace, c.Registry)

	c.wire(db, logRepo, locker)
	return c, nil
}

func (c *Container) wire(db *gorm.DB, logRepo repository.PlaybackLogRepository, locker repository.FlightLocker) {
	cfg, log := c.Config, c.Logger

	flightRepo := repo.NewGormFlightRepository(db)
	eventRepo := repo.NewGormEventRepository(db)
	configRepo := repo.NewGormConfigurationRepository(db)
	taskRepo := repo.NewGormTaskRepository(db)

	outbound := repo.NewHTTPOutboundClient(oauth.NewClientCredentialsOAuth(log), log)
	publisher := repo.NewKafkaPublisher(cfg.KafkaPublishTimeout, log)

	sequencer := usecase.NewSequencer()
	dispatcher := usecase.NewDispatcher(outbound, cfg.CallbackTimeout, log, c.Metrics)
	cleanup := usecase.NewCleanupExecutor(repo.NewGormCleanupTargetProvider(db, log), log, c.Metrics)

	taskRouter := router.NewTaskRouter(log)
	taskRouter.Register(usecase.NewPublishTaskHandler(publisher, cfg.KafkaBootstrapServers, log))
	taskRouter.Register(usecase.NewAPITaskHandler(outbound, cfg.TaskAPITimeout, log))
	taskRouter.Register(usecase.NewCleanupTaskHandler(cleanup))
	tasks := usecase.NewTaskRunner(taskRepo, taskRouter, log, c.Metrics)

	c.Events = usecase.NewEventManager(flightRepo, eventRepo, configRepo, taskRepo, sequencer, log)
	c.Sessions = usecase.NewSessionController(
		flightRepo,
		eventRepo,
		configRepo,
		logRepo,
		sequencer,
		dispatcher,
		cleanup,
		tasks,
		locker,
		cfg.LockWait,
		log,
		c.Metrics,
	)
	c.Tools = usecase.NewToolService(publisher, outbound, cfg.KafkaBootstrapServers, log)
}

// HTTPHandler returns the API router with the metrics endpoint mounted
func (c *Container) HTTPHandler() http.Handler {
	h := handler.NewHandler(c.Events, c.Sessions, c.Tools, c.Logger)
	return router.NewHTTPRouter(h, promhttp.HandlerFor(c.Registry, promhttp.HandlerOpts{}), c.Logger)
}

// Close releases every connection opened by New
func (c *Container) Close(ctx context.Context) {
	if c.mongo != nil {
		if err := c.mongo.Disconnect(ctx); err != nil {
			c.Logger.Error("MongoDB disconnect error", "error", err)
		}
	}
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			c.Logger.Error("Redis close error", "error", err)
		}
	}
	if c.db != nil {
		if sqlDB, err := c.db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				c.Logger.Error("PostgreSQL close error", "error", err)
			}
		}
	}
}
