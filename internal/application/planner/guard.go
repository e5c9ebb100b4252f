package planner

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/mealsmith/v1/internal/domain/planning"
	"github.com/mealsmith/v1/internal/ports/outbound"
	"github.com/mealsmith/v1/pkg/errors"
)

// GenerateFunc runs one full generation pipeline under the guard's exclusion.
type GenerateFunc func(ctx context.Context) (*planning.MealPlan, *planning.ShoppingList, error)

// guardResult is what concurrent callers coalesce on.
type guardResult struct {
	plan   *planning.MealPlan
	list   *planning.ShoppingList
	reused bool
}

// RegenerationGuard enforces per-(household, week) idempotency. An unchanged
// input hash with an existing completed plan returns the stored plan without
// re-running the pipeline. Concurrent requests for the same key coalesce
// in-process through singleflight and serialize across processes through the
// generation store's lock.
type RegenerationGuard struct {
	store  outbound.GenerationStore
	plans  outbound.PlanRepository
	group  singleflight.Group
	logger *zap.Logger

	lockTTL      time.Duration
	lockPollEach time.Duration
}

// NewRegenerationGuard creates a guard over the given durable store.
func NewRegenerationGuard(store outbound.GenerationStore, plans outbound.PlanRepository, logger *zap.Logger) *RegenerationGuard {
	return &RegenerationGuard{
		store:        store,
		plans:        plans,
		logger:       logger.Named("regeneration-guard"),
		lockTTL:      2 * time.Minute,
		lockPollEach: 100 * time.Millisecond,
	}
}

// Run executes generate under the key's exclusion, unless the stored record
// already matches inputHash, in which case the stored plan is returned with
// reused=true.
func (g *RegenerationGuard) Run(
	ctx context.Context,
	key outbound.GenerationKey,
	inputHash string,
	generate GenerateFunc,
) (*planning.MealPlan, *planning.ShoppingList, bool, error) {
	v, err, shared := g.group.Do(key.String(), func() (interface{}, error) {
		return g.run(ctx, key, inputHash, generate)
	})
	if err != nil {
		return nil, nil, false, err
	}

	res := v.(*guardResult)
	if shared {
		g.logger.Debug("coalesced concurrent regeneration request",
			zap.String("key", key.String()),
		)
	}
	return res.plan, res.list, res.reused || shared, nil
}

func (g *RegenerationGuard) run(ctx context.Context, key outbound.GenerationKey, inputHash string, generate GenerateFunc) (*guardResult, error) {
	if res, err := g.stored(ctx, key, inputHash); err != nil {
		return nil, err
	} else if res != nil {
		return res, nil
	}

	if err := g.acquireLock(ctx, key); err != nil {
		return nil, err
	}
	defer g.releaseLock(key)

	// Another process may have completed the run while we waited.
	if res, err := g.stored(ctx, key, inputHash); err != nil {
		return nil, err
	} else if res != nil {
		return res, nil
	}

	plan, list, err := generate(ctx)
	if err != nil {
		return nil, err
	}

	record := outbound.GenerationRecord{
		InputHash:   inputHash,
		PlanID:      plan.ID(),
		CompletedAt: time.Now(),
	}
	if err := g.store.Put(ctx, key, record); err != nil {
		// The plan itself is saved; a lost record only costs one redundant
		// regeneration on the next request.
		g.logger.Warn("failed to persist generation record",
			zap.String("key", key.String()),
			zap.Error(err),
		)
	}

	return &guardResult{plan: plan, list: list}, nil
}

// stored returns the previously generated plan when the input hash is
// unchanged and the plan still exists.
func (g *RegenerationGuard) stored(ctx context.Context, key outbound.GenerationKey, inputHash string) (*guardResult, error) {
	record, err := g.store.Get(ctx, key)
	if err != nil {
		return nil, errors.NewDatabaseError("read generation record", err)
	}
	if record == nil || record.InputHash != inputHash {
		return nil, nil
	}

	plan, err := g.plans.FindByID(ctx, record.PlanID)
	if err != nil {
		return nil, errors.NewDatabaseError("load stored plan", err)
	}
	if plan == nil {
		return nil, nil
	}

	list, err := g.plans.FindShoppingList(ctx, plan.ID())
	if err != nil {
		return nil, errors.NewDatabaseError("load stored shopping list", err)
	}

	g.logger.Info("input hash unchanged, returning stored plan",
		zap.String("key", key.String()),
		zap.String("plan_id", plan.ID().String()),
	)
	return &guardResult{plan: plan, list: list, reused: true}, nil
}

// acquireLock blocks until the key's lock is held or the context expires.
func (g *RegenerationGuard) acquireLock(ctx context.Context, key outbound.GenerationKey) error {
	for {
		ok, err := g.store.AcquireLock(ctx, key, g.lockTTL)
		if err != nil {
			return errors.NewDatabaseError("acquire generation lock", err)
		}
		if ok {
			return nil
		}

		select {
		case <-ctx.Done():
			return errors.NewAppError(
				errors.CodeGenerationInProgress,
				"Generation already in progress for this household and week",
				key.String(),
			).WithCause(ctx.Err())
		case <-time.After(g.lockPollEach):
		}
	}
}

func (g *RegenerationGuard) releaseLock(key outbound.GenerationKey) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := g.store.ReleaseLock(ctx, key); err != nil {
		g.logger.Warn("failed to release generation lock",
			zap.String("key", key.String()),
			zap.Error(err),
		)
	}
}
