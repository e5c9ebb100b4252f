// Package redis implements the generation store on Redis: idempotency records
// for completed runs plus per-key locks that coalesce generation across
// processes.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mealsmith/v1/internal/infrastructure/config"
	"github.com/mealsmith/v1/internal/ports/outbound"
)

const (
	recordKeyPrefix = "mealsmith:generation:"
	lockKeyPrefix   = "mealsmith:genlock:"

	// Records outlive any realistic regeneration window; the plan itself is
	// the durable artifact, the record only short-circuits repeat requests.
	recordTTL = 14 * 24 * time.Hour
)

// GenerationStore is the Redis implementation of outbound.GenerationStore.
type GenerationStore struct {
	client *goredis.Client
	logger *zap.Logger
}

// NewClient creates a Redis client from configuration and verifies the
// connection.
func NewClient(cfg *config.Config) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:        fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password:    cfg.Redis.Password,
		DB:          cfg.Redis.Database,
		DialTimeout: cfg.Redis.DialTimeout,
		PoolSize:    cfg.Redis.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}

// NewGenerationStore creates a Redis-backed generation store.
func NewGenerationStore(client *goredis.Client, logger *zap.Logger) *GenerationStore {
	return &GenerationStore{
		client: client,
		logger: logger.Named("redis-generation-store"),
	}
}

// generationRecord is the stored JSON shape of one idempotency record.
type generationRecord struct {
	InputHash   string    `json:"input_hash"`
	PlanID      string    `json:"plan_id"`
	CompletedAt time.Time `json:"completed_at"`
}

// Get returns the idempotency record for the key, or nil when none exists.
func (s *GenerationStore) Get(ctx context.Context, key outbound.GenerationKey) (*outbound.GenerationRecord, error) {
	raw, err := s.client.Get(ctx, recordKeyPrefix+key.String()).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading generation record: %w", err)
	}

	var stored generationRecord
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, fmt.Errorf("decoding generation record: %w", err)
	}

	record := outbound.GenerationRecord{
		InputHash:   stored.InputHash,
		CompletedAt: stored.CompletedAt,
	}
	if err := record.PlanID.UnmarshalText([]byte(stored.PlanID)); err != nil {
		return nil, fmt.Errorf("decoding generation record plan id: %w", err)
	}

	return &record, nil
}

// Put stores the idempotency record for a completed run.
func (s *GenerationStore) Put(ctx context.Context, key outbound.GenerationKey, record outbound.GenerationRecord) error {
	raw, err := json.Marshal(generationRecord{
		InputHash:   record.InputHash,
		PlanID:      record.PlanID.String(),
		CompletedAt: record.CompletedAt,
	})
	if err != nil {
		return fmt.Errorf("encoding generation record: %w", err)
	}

	if err := s.client.Set(ctx, recordKeyPrefix+key.String(), raw, recordTTL).Err(); err != nil {
		return fmt.Errorf("writing generation record: %w", err)
	}
	return nil
}

// AcquireLock attempts to take the per-key generation lock. The lock expires
// after ttl, so a crashed holder cannot block the key forever.
func (s *GenerationStore) AcquireLock(ctx context.Context, key outbound.GenerationKey, ttl time.Duration) (bool, error) {
	acquired, err := s.client.SetNX(ctx, lockKeyPrefix+key.String(), "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquiring generation lock: %w", err)
	}
	return acquired, nil
}

// ReleaseLock releases the per-key generation lock.
func (s *GenerationStore) ReleaseLock(ctx context.Context, key outbound.GenerationKey) error {
	if err := s.client.Del(ctx, lockKeyPrefix+key.String()).Err(); err != nil {
		return fmt.Errorf("releasing generation lock: %w", err)
	}
	return nil
}

// compile-time interface check
var _ outbound.GenerationStore = (*GenerationStore)(nil)
