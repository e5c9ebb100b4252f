// Package config provides centralized configuration management
// using Viper for configuration loading and validation.
package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config holds all application configuration. The planner section may be
// rewritten by the config watcher after startup; read it through
// PlannerSnapshot rather than the field.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Planner  PlannerConfig  `mapstructure:"planner"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`

	mu sync.RWMutex
}

// AppConfig contains application-level configuration.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
	LogFormat   string `mapstructure:"log_format"`
}

// PlannerConfig contains plan-generation configuration. The objective weights
// are deliberately exposed here rather than hidden as constants so they can be
// overridden per deployment and pinned in tests.
type PlannerConfig struct {
	SlotMeals       []string      `mapstructure:"slot_meals"`
	DefaultDeadline time.Duration `mapstructure:"default_deadline"`
	MaxSwapPasses   int           `mapstructure:"max_swap_passes"`
	Weights         WeightsConfig `mapstructure:"weights"`
}

// WeightsConfig contains the composite-objective weighting.
type WeightsConfig struct {
	Rating                float64       `mapstructure:"rating"`
	Reuse                 float64       `mapstructure:"reuse"`
	Budget                float64       `mapstructure:"budget"`
	Affinity              float64       `mapstructure:"affinity"`
	RepeatPenalty         float64       `mapstructure:"repeat_penalty"`
	GoalBoost             float64       `mapstructure:"goal_boost"`
	RatingHalfLife        time.Duration `mapstructure:"rating_half_life"`
	MinDaysBetweenRepeats int           `mapstructure:"min_days_between_repeats"`
	BudgetTolerance       float64       `mapstructure:"budget_tolerance"`
}

// DatabaseConfig contains database configuration.
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Database        string        `mapstructure:"database"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// RedisConfig contains the generation-store backing configuration.
type RedisConfig struct {
	Host        string        `mapstructure:"host"`
	Port        int           `mapstructure:"port"`
	Password    string        `mapstructure:"password"`
	Database    int           `mapstructure:"database"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
	PoolSize    int           `mapstructure:"pool_size"`
}

// MetricsConfig contains prometheus exposition configuration.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/mealsmith")
	}

	v.SetEnvPrefix("MEALSMITH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// It's okay if config file doesn't exist, we have defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	config.watchWeights(v)

	return &config, nil
}

// watchWeights re-reads the objective weights when the config file changes on
// disk, so weight tuning does not require a process restart. Structural
// settings (slot shape, database) still require a restart.
func (c *Config) watchWeights(v *viper.Viper) {
	v.OnConfigChange(func(_ fsnotify.Event) {
		var next Config
		if err := v.Unmarshal(&next); err != nil {
			return
		}
		if err := next.Validate(); err != nil {
			return
		}
		c.mu.Lock()
		c.Planner.Weights = next.Planner.Weights
		c.Planner.MaxSwapPasses = next.Planner.MaxSwapPasses
		c.mu.Unlock()
	})
	v.WatchConfig()
}

// PlannerSnapshot returns a copy of the planner settings for one generation
// run. Each run takes its own snapshot so a file change between runs reaches
// the next one without tearing an in-flight run.
func (c *Config) PlannerSnapshot() PlannerConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()
	snapshot := c.Planner
	snapshot.SlotMeals = append([]string(nil), c.Planner.SlotMeals...)
	return snapshot
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "Mealsmith")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.log_format", "json")

	v.SetDefault("planner.slot_meals", []string{"dinner"})
	v.SetDefault("planner.default_deadline", "30s")
	v.SetDefault("planner.max_swap_passes", 3)
	v.SetDefault("planner.weights.rating", 0.30)
	v.SetDefault("planner.weights.reuse", 0.25)
	v.SetDefault("planner.weights.budget", 0.20)
	v.SetDefault("planner.weights.affinity", 0.15)
	v.SetDefault("planner.weights.repeat_penalty", 0.35)
	v.SetDefault("planner.weights.goal_boost", 0.20)
	v.SetDefault("planner.weights.rating_half_life", "672h")
	v.SetDefault("planner.weights.min_days_between_repeats", 3)
	v.SetDefault("planner.weights.budget_tolerance", 0.10)

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "1h")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.database", 0)
	v.SetDefault("redis.dial_timeout", "5s")
	v.SetDefault("redis.pool_size", 10)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app.name is required")
	}

	if len(c.Planner.SlotMeals) == 0 {
		return fmt.Errorf("planner.slot_meals must name at least one meal")
	}
	for _, meal := range c.Planner.SlotMeals {
		switch meal {
		case "breakfast", "lunch", "dinner":
		default:
			return fmt.Errorf("planner.slot_meals contains unknown meal %q", meal)
		}
	}

	w := c.Planner.Weights
	for name, value := range map[string]float64{
		"planner.weights.rating":         w.Rating,
		"planner.weights.reuse":          w.Reuse,
		"planner.weights.budget":         w.Budget,
		"planner.weights.affinity":       w.Affinity,
		"planner.weights.repeat_penalty": w.RepeatPenalty,
	} {
		if value < 0 {
			return fmt.Errorf("%s must not be negative", name)
		}
	}

	if c.Database.Driver != "postgres" && c.Database.Driver != "sqlite" {
		return fmt.Errorf("database.driver must be postgres or sqlite")
	}

	return nil
}

// IsProduction returns true if running in production.
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDSN returns the database connection string.
func (c *Config) GetDSN() string {
	if c.Database.Driver == "sqlite" {
		return c.Database.Database
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.Username,
		c.Database.Password,
		c.Database.Database,
		c.Database.SSLMode,
	)
}
