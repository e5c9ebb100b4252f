package healthcheck

import (
	"context"
	"database/sql"
	"time"

	"github.com/redis/go-redis/v9"
)

// DatabaseChecker checks database connectivity and pool pressure.
type DatabaseChecker struct {
	db      *sql.DB
	timeout time.Duration
}

// NewDatabaseChecker creates a database health checker
func NewDatabaseChecker(db *sql.DB) *DatabaseChecker {
	return &DatabaseChecker{db: db, timeout: 2 * time.Second}
}

// Check implements Checker.
func (c *DatabaseChecker) Check(ctx context.Context) Check {
	started := time.Now()
	check := Check{LastChecked: started, Status: StatusHealthy}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.db.PingContext(ctx); err != nil {
		check.Status = StatusUnhealthy
		check.Message = err.Error()
	} else if stats := c.db.Stats(); stats.MaxOpenConnections > 0 &&
		stats.InUse == stats.MaxOpenConnections {
		check.Status = StatusDegraded
		check.Message = "connection pool exhausted"
	}

	check.Duration = time.Since(started) / time.Millisecond
	return check
}

// RedisChecker checks Redis connectivity.
type RedisChecker struct {
	client  *redis.Client
	timeout time.Duration
}

// NewRedisChecker creates a Redis health checker
func NewRedisChecker(client *redis.Client) *RedisChecker {
	return &RedisChecker{client: client, timeout: 2 * time.Second}
}

// Check implements Checker.
func (c *RedisChecker) Check(ctx context.Context) Check {
	started := time.Now()
	check := Check{LastChecked: started, Status: StatusHealthy}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.client.Ping(ctx).Err(); err != nil {
		check.Status = StatusUnhealthy
		check.Message = err.Error()
	}

	check.Duration = time.Since(started) / time.Millisecond
	return check
}
