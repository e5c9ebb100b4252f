// Package postgres provides database connection management for the planner.
// Despite the name it also opens sqlite databases for local development; the
// driver is selected by configuration.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/mealsmith/v1/internal/infrastructure/config"
)

// ConnectionManager manages the planner database connection and its pool.
type ConnectionManager struct {
	config *config.Config
	logger *zap.Logger
	db     *gorm.DB
	sqlDB  *sql.DB
}

// NewConnectionManager opens the configured database and verifies it answers.
func NewConnectionManager(cfg *config.Config, log *zap.Logger) (*ConnectionManager, error) {
	cm := &ConnectionManager{
		config: cfg,
		logger: log.Named("database"),
	}

	dialector, err := cm.dialector()
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 cm.gormLogger(),
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if cfg.Database.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	}
	if cfg.Database.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	}
	if cfg.Database.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	cm.db = db
	cm.sqlDB = sqlDB

	log.Info("Database connection initialized",
		zap.String("driver", cfg.Database.Driver),
		zap.Int("max_open_conns", cfg.Database.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.Database.MaxIdleConns),
	)

	return cm, nil
}

// dialector selects the GORM dialector for the configured driver.
func (cm *ConnectionManager) dialector() (gorm.Dialector, error) {
	switch cm.config.Database.Driver {
	case "postgres":
		return postgres.Open(cm.config.GetDSN()), nil
	case "sqlite":
		return sqlite.Open(cm.config.GetDSN()), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cm.config.Database.Driver)
	}
}

// gormLogger maps the application log level onto GORM's logger.
func (cm *ConnectionManager) gormLogger() gormlogger.Interface {
	level := gormlogger.Warn
	if cm.config.App.LogLevel == "debug" {
		level = gormlogger.Info
	}

	return gormlogger.New(
		&gormLogWriter{logger: cm.logger},
		gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}

// GetDB returns the shared GORM handle.
func (cm *ConnectionManager) GetDB() *gorm.DB {
	return cm.db
}

// HealthCheck pings the database.
func (cm *ConnectionManager) HealthCheck(ctx context.Context) error {
	if err := cm.sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

// Close closes the connection pool.
func (cm *ConnectionManager) Close() error {
	if cm.sqlDB == nil {
		return nil
	}
	return cm.sqlDB.Close()
}

// gormLogWriter adapts zap to GORM's printf-style logger interface.
type gormLogWriter struct {
	logger *zap.Logger
}

func (w *gormLogWriter) Printf(format string, args ...interface{}) {
	w.logger.Sugar().Debugf(format, args...)
}
