package di

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	"cosmos-admin/internal/cosmos/adapter/audit"
	"cosmos-admin/internal/cosmos/adapter/documentdb"
	"cosmos-admin/internal/cosmos/adapter/persistence"
	"cosmos-admin/internal/cosmos/adapter/persistence/memory"
	"cosmos-admin/internal/cosmos/adapter/persistence/mongodb"
	"cosmos-admin/internal/cosmos/config"
	"cosmos-admin/internal/cosmos/domain/repository"
	"cosmos-admin/internal/cosmos/usecase"
	"cosmos-admin/internal/shared/eventbus"
	"cosmos-admin/internal/shared/logger"

	"github.com/redis/go-redis/v9"
)

// Container owns the connections of one admin session and the usecases wired
// over them.
type Container struct {
	mu sync.RWMutex
	// Configuration
	Config *config.Config
	// Resource service client
	Client repository.ResourceClient
	// Audit pipeline, nil when auditing is disabled
	Bus   *eventbus.EventBus
	Redis *redis.Client
	// Usecases
	Admin *usecase.AdminUsecase
	// Logger
	Logger logger.Logger
}

// NewContainer creates a container for cfg. Nothing connects until Initialize.
func NewContainer(cfg *config.Config, log logger.Logger) *Container {
	if log == nil {
		log = logger.Default()
	}
	return &Container{Config: cfg, Logger: log}
}

// Initialize connects the configured backend, the audit pipeline and builds
// the usecases. On failure everything already opened is closed.
func (c *Container) Initialize(ctx context.Context) error {
	if err := c.InitializeClient(ctx); err != nil {
		return err
	}
	if err := c.InitializeAudit(ctx); err != nil {
		_ = c.Close()
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	var publisher repository.EventPublisher
	if c.Bus != nil {
		publisher = audit.NewPublisher(c.Bus)
	}
	c.Admin = usecase.NewAdminUsecase(c.Client, publisher, c.Logger)
	return nil
}

// InitializeClient connects the resource client selected by COSMOS_BACKEND.
func (c *Container) InitializeClient(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	cfg := c.Config
	switch cfg.Backend {
	case config.BackendREST:
		client, err := documentdb.NewClient(documentdb.Options{
			Host:       cfg.Host,
			MasterKey:  cfg.MasterKey,
			Timeout:    cfg.RequestTimeout,
			MaxRetries: cfg.MaxRetries,
		}, c.Logger)
		if err != nil {
			return fmt.Errorf("failed to create resource client: %w", err)
		}
		c.Client = client
	case config.BackendMongo:
		store, err := mongodb.Connect(ctx, cfg.Mongo.URI, mongodb.Options{
			CatalogDatabase: cfg.Mongo.CatalogDatabase,
			DatabasePrefix:  cfg.Mongo.DatabasePrefix,
		}, c.Logger)
		if err != nil {
			return fmt.Errorf("failed to connect MongoDB backend: %w", err)
		}
		c.Client = store
	case config.BackendMemory:
		c.Client = memory.NewStore()
	default:
		return fmt.Errorf("unknown backend %q", cfg.Backend)
	}

	c.Logger.Debugf("Resource client initialized for backend %s", cfg.Backend)
	return nil
}

// InitializeAudit wires the event bus with a log sink and, when REDIS_URL is
// set, a Redis stream sink.
func (c *Container) InitializeAudit(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.Config.Audit.Enabled() {
		return nil
	}

	client, err := config.NewRedisClient(c.Config.Audit)
	if err != nil {
		return err
	}
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	bus := eventbus.NewEventBusWithConfig(c.Logger.WithComponent("eventbus"), busConfig(c.Config.Audit))
	store := persistence.NewRedisAuditStore(client, c.Config.Audit.Stream, c.Config.Audit.StreamMaxLength, c.Logger)
	bus.Subscribe(eventbus.AllEvents, store.Handle)
	bus.Subscribe(eventbus.AllEvents, audit.LogSink(c.Logger))

	c.Redis = client
	c.Bus = bus
	c.Logger.Infof("Audit events published to Redis stream %s", c.Config.Audit.Stream)
	return nil
}

// busConfig retries a failed audit sink as configured.
func busConfig(cfg config.AuditConfig) eventbus.BusConfig {
	return eventbus.BusConfig{MaxRetries: cfg.Retries, RetryDelay: cfg.RetryDelay}
}

// HealthCheck pings every connection the container holds.
func (c *Container) HealthCheck(ctx context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if pinger, ok := c.Client.(interface{ Ping(context.Context) error }); ok {
		if err := pinger.Ping(ctx); err != nil {
			return fmt.Errorf("resource backend health check failed: %w", err)
		}
	}

	if c.Redis != nil {
		if err := c.Redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis health check failed: %w", err)
		}
	}
	return nil
}

// Cleanup releases connections in reverse order of initialization.
func (c *Container) Cleanup(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("cleanup interrupted: %w", err)
	}

	var errs []error
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}
	if c.Client != nil {
		if err := c.Client.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close resource client: %w", err))
		}
	}

	c.Redis = nil
	c.Bus = nil
	c.Client = nil
	c.Admin = nil
	return stderrors.Join(errs...)
}

// Close gracefully shuts down all connections with a timeout.
func (c *Container) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := c.Cleanup(ctx); err != nil {
		c.Logger.Warnf("Cleanup errors occurred: %v", err)
		return err
	}
	c.Logger.Debug("Container resources closed")
	return nil
}
