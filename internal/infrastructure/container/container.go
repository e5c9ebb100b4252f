// Package container provides dependency injection using Uber FX.
package container

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mealsmith/v1/internal/application/planner"
	"github.com/mealsmith/v1/internal/domain/planning"
	"github.com/mealsmith/v1/internal/infrastructure/config"
	"github.com/mealsmith/v1/internal/infrastructure/monitoring"
	gormRepo "github.com/mealsmith/v1/internal/infrastructure/persistence/gorm"
	"github.com/mealsmith/v1/internal/infrastructure/persistence/memory"
	"github.com/mealsmith/v1/internal/infrastructure/persistence/migrations"
	"github.com/mealsmith/v1/internal/infrastructure/persistence/postgres"
	redisStore "github.com/mealsmith/v1/internal/infrastructure/persistence/redis"
	"github.com/mealsmith/v1/internal/ports/outbound"
	"github.com/mealsmith/v1/pkg/healthcheck"
	"github.com/mealsmith/v1/pkg/logger"
)

// Module wires the full planner: config, logging, persistence, the
// generation store and the planner service.
var Module = fx.Options(
	ConfigModule,
	LoggerModule,
	DatabaseModule,
	RepositoryModule,
	GenerationStoreModule,
	MetricsModule,
	HealthModule,
	ServiceModule,
	LifecycleModule,
)

// ConfigModule provides configuration.
var ConfigModule = fx.Provide(
	func() (*config.Config, error) {
		return config.Load("")
	},
)

// LoggerModule provides logging.
var LoggerModule = fx.Provide(
	func(cfg *config.Config) (*zap.Logger, error) {
		return logger.New(logger.Config{
			Level:       cfg.App.LogLevel,
			Format:      cfg.App.LogFormat,
			Development: cfg.App.Environment == "development",
		})
	},
)

// DatabaseModule provides the database connection and applies migrations.
var DatabaseModule = fx.Options(
	fx.Provide(postgres.NewConnectionManager),
	fx.Provide(func(cm *postgres.ConnectionManager) *gorm.DB {
		return cm.GetDB()
	}),
	fx.Invoke(func(cfg *config.Config, db *gorm.DB, log *zap.Logger) error {
		if !cfg.Database.AutoMigrate {
			return nil
		}
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return migrations.Run(sqlDB, cfg.Database.Driver, log)
	}),
)

// RepositoryModule provides the repository implementations.
var RepositoryModule = fx.Provide(
	fx.Annotate(
		gormRepo.NewCatalogRepository,
		fx.As(new(outbound.CatalogRepository)),
		fx.As(new(outbound.PreferenceRepository)),
		fx.As(new(outbound.PantryRepository)),
		fx.As(new(outbound.RatingRepository)),
	),
	fx.Annotate(
		gormRepo.NewPlanRepository,
		fx.As(new(outbound.PlanRepository)),
	),
)

// generationStoreResult carries the store plus the underlying Redis client.
// The client is nil when the in-memory fallback is active.
type generationStoreResult struct {
	fx.Out

	Store  outbound.GenerationStore
	Client *redis.Client
}

// GenerationStoreModule provides the idempotency store. Production uses
// Redis; development without Redis falls back to the in-process store, which
// still coalesces within one process.
var GenerationStoreModule = fx.Provide(
	func(cfg *config.Config, log *zap.Logger) (generationStoreResult, error) {
		client, err := redisStore.NewClient(cfg)
		if err != nil {
			if cfg.IsProduction() {
				return generationStoreResult{}, err
			}
			log.Warn("Redis unavailable, using in-memory generation store",
				zap.Error(err))
			return generationStoreResult{Store: memory.NewStore()}, nil
		}
		return generationStoreResult{
			Store:  redisStore.NewGenerationStore(client, log),
			Client: client,
		}, nil
	},
)

// MetricsModule provides the metrics collector.
var MetricsModule = fx.Provide(
	monitoring.NewMetricsCollector,
	func(m *monitoring.MetricsCollector) outbound.MetricsRecorder { return m },
)

// HealthModule provides readiness checks for the database and, when active,
// the Redis generation store. The handler is served next to /metrics.
var HealthModule = fx.Provide(
	func(cfg *config.Config, db *gorm.DB, client *redis.Client, log *zap.Logger) (*healthcheck.HealthCheck, error) {
		hc := healthcheck.New(cfg.App.Version, log)

		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		hc.Register("database", healthcheck.NewDatabaseChecker(sqlDB))
		if client != nil {
			hc.Register("redis", healthcheck.NewRedisChecker(client))
		}
		return hc, nil
	},
)

// ServiceModule provides the planner service and its collaborators. Options
// are provided as a per-run snapshot so weight reloads from the config
// watcher reach the next generation without a restart.
var ServiceModule = fx.Provide(
	planner.NewRegenerationGuard,
	func(cfg *config.Config) planner.OptionsProvider {
		return func() planner.Options {
			return plannerOptions(cfg.PlannerSnapshot())
		}
	},
	planner.NewPlannerService,
)

// plannerOptions maps one planner configuration snapshot onto service options.
func plannerOptions(p config.PlannerConfig) planner.Options {
	opts := planner.DefaultOptions()

	if len(p.SlotMeals) > 0 {
		meals := make([]planning.MealType, 0, len(p.SlotMeals))
		for _, m := range p.SlotMeals {
			meals = append(meals, planning.MealType(m))
		}
		opts.SlotMeals = meals
	}
	if p.DefaultDeadline > 0 {
		opts.DefaultDeadline = p.DefaultDeadline
	}
	if p.MaxSwapPasses >= 0 {
		opts.Selector.MaxSwapPasses = p.MaxSwapPasses
	}

	w := p.Weights
	opts.Selector.Weights = planning.Weights{
		Rating:                w.Rating,
		Reuse:                 w.Reuse,
		Budget:                w.Budget,
		Affinity:              w.Affinity,
		RepeatPenalty:         w.RepeatPenalty,
		GoalBoost:             w.GoalBoost,
		RatingHalfLife:        w.RatingHalfLife,
		MinDaysBetweenRepeats: w.MinDaysBetweenRepeats,
		BudgetTolerance:       w.BudgetTolerance,
	}

	return opts
}

// LifecycleModule hooks infrastructure into application start and stop.
var LifecycleModule = fx.Invoke(
	func(lc fx.Lifecycle, cfg *config.Config, cm *postgres.ConnectionManager, metrics *monitoring.MetricsCollector, hc *healthcheck.HealthCheck, log *zap.Logger) {
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				if cfg.Metrics.Enabled {
					return metrics.Start(cfg.Metrics.Port, hc.Handler(), hc.LivenessHandler())
				}
				return nil
			},
			OnStop: func(ctx context.Context) error {
				if err := metrics.Stop(ctx); err != nil {
					log.Warn("Metrics shutdown failed", zap.Error(err))
				}
				return cm.Close()
			},
		})
	},
)
