package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/mcoot/homeguess/internal/api"
	"github.com/mcoot/homeguess/internal/api/handler"
	"github.com/mcoot/homeguess/internal/catalog"
	"github.com/mcoot/homeguess/internal/dependencies/clock"
	"github.com/mcoot/homeguess/internal/dependencies/random"
	"github.com/mcoot/homeguess/internal/model"
	"github.com/mcoot/homeguess/internal/pubsub"
	"github.com/mcoot/homeguess/internal/realtime"
	"github.com/mcoot/homeguess/internal/services/scoring"
	"github.com/mcoot/homeguess/internal/services/session"
	"github.com/mcoot/homeguess/internal/storage"
	"github.com/mcoot/homeguess/internal/storage/memory"
	redisstorage "github.com/mcoot/homeguess/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// Fan-out bus constants
const (
	FanoutNone  = "none"
	FanoutRedis = "redis"
	FanoutNATS  = "nats"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage
	Locker  storage.Locker
	Bus     pubsub.Bus

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	Catalog           *catalog.Catalog
	ScoringService    *scoring.Service
	SessionController *session.Controller
	Broadcaster       *realtime.Broadcaster

	// HealthCheckers check the infrastructure this app was wired with
	HealthCheckers map[string]handler.Checker

	logger  *slog.Logger
	closers []io.Closer
}

// Config holds configuration for the application factory
type Config struct {
	// Catalog is the property catalog (required)
	Catalog *catalog.Catalog
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// Fanout selects the cross-instance bus ("none", "redis" or "nats")
	// If empty, defaults to "none"
	Fanout string
	// NATSConfig holds NATS settings (required if Fanout is "nats")
	NATSConfig *pubsub.NATSConfig
	// SessionConfig holds lock and store timeouts
	// If zero value, defaults to session.DefaultConfig()
	SessionConfig session.Config
	// RealtimeConfig holds websocket settings
	// If zero value, defaults to realtime.DefaultConfig()
	RealtimeConfig realtime.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	if cfg.Catalog == nil {
		return nil, errors.New("Catalog is required")
	}

	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	clk := clock.New()
	rnd := random.New()

	var (
		store   storage.Storage
		locker  storage.Locker
		redis   *redisstorage.Storage
		closers []io.Closer
		checks  = make(map[string]handler.Checker)
	)

	// Create storage based on type
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
		locker = memory.NewLocker(clk)
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		redis = redisStore
		store = redisStore
		locker = redisStore
		closers = append(closers, redisStore)
		checks["redis"] = handler.CheckerFunc(func(ctx context.Context) error {
			return redisStore.Client().Ping(ctx).Err()
		})
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	// Create the fan-out bus
	var bus pubsub.Bus
	fanout := cfg.Fanout
	if fanout == "" {
		fanout = FanoutNone
	}

	switch fanout {
	case FanoutNone:
		bus = pubsub.NewLocal()
	case FanoutRedis:
		if redis == nil {
			closeAll(closers)
			return nil, errors.New("redis fanout requires StorageType redis")
		}
		bus = pubsub.NewRedis(redis.Client(), logger)
	case FanoutNATS:
		natsCfg := pubsub.DefaultNATSConfig()
		if cfg.NATSConfig != nil {
			natsCfg = *cfg.NATSConfig
		}
		natsBus, err := pubsub.NewNATS(natsCfg, logger)
		if err != nil {
			closeAll(closers)
			return nil, fmt.Errorf("connect nats: %w", err)
		}
		bus = natsBus
		checks["nats"] = handler.CheckerFunc(natsBus.Ping)
	default:
		closeAll(closers)
		return nil, errors.New("invalid Fanout: must be 'none', 'redis' or 'nats'")
	}
	closers = append([]io.Closer{bus}, closers...)

	app := newWithDependencies(store, locker, bus, cfg.Catalog, clk, rnd, logger, cfg.SessionConfig, cfg.RealtimeConfig)
	for name, c := range checks {
		app.HealthCheckers[name] = c
	}
	app.closers = closers
	return app, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	locker storage.Locker,
	bus pubsub.Bus,
	cat *catalog.Catalog,
	clk clock.Clock,
	rnd random.Random,
	logger *slog.Logger,
	sessionCfg session.Config,
	realtimeCfg realtime.Config,
) *App {
	if sessionCfg == (session.Config{}) {
		sessionCfg = session.DefaultConfig()
	}
	if realtimeCfg.PongWait == 0 {
		realtimeCfg = realtime.DefaultConfig()
	}

	// Create services
	scoringService := scoring.New(cat)
	broadcaster := realtime.NewBroadcaster(store, bus, clk, logger, realtimeCfg)
	sessionController := session.NewController(store, locker, cat, scoringService, broadcaster, clk, rnd, logger, sessionCfg)

	return &App{
		Storage:           store,
		Locker:            locker,
		Bus:               bus,
		Clock:             clk,
		Random:            rnd,
		Catalog:           cat,
		ScoringService:    scoringService,
		SessionController: sessionController,
		Broadcaster:       broadcaster,
		HealthCheckers: map[string]handler.Checker{
			"catalog": handler.CheckerFunc(func(context.Context) error {
				if cat.Len() == 0 {
					return model.ErrCatalogEmpty
				}
				return nil
			}),
		},
		logger: logger,
	}
}

// Router builds the HTTP handler for this app
func (a *App) Router(corsOrigins []string) http.Handler {
	return api.NewRouter(api.RouterConfig{
		Logger:            a.logger,
		SessionController: a.SessionController,
		Catalog:           a.Catalog,
		Random:            a.Random,
		Broadcaster:       a.Broadcaster,
		HealthCheckers:    a.HealthCheckers,
		CORSOrigins:       corsOrigins,
	})
}

// Close releases the bus and store connections
func (a *App) Close() error {
	return closeAll(a.closers)
}

func closeAll(closers []io.Closer) error {
	var errs []error
	for _, c := range closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
