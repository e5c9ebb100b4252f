package planner

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"github.com/mealsmith/v1/internal/domain/planning"
	"github.com/mealsmith/v1/internal/infrastructure/persistence/memory"
	"github.com/mealsmith/v1/internal/ports/outbound"
)

// RegenerationGuardTestSuite provides a test suite for the RegenerationGuard
type RegenerationGuardTestSuite struct {
	suite.Suite
	store *memory.Store
	guard *RegenerationGuard
	key   outbound.GenerationKey
}

func (suite *RegenerationGuardTestSuite) SetupTest() {
	suite.store = memory.NewStore()
	suite.guard = NewRegenerationGuard(suite.store, suite.store, zap.NewNop())
	suite.key = outbound.GenerationKey{
		HouseholdID: uuid.New(),
		WeekOf:      time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC),
	}
}

// storedPlan builds and persists a minimal one-slot plan.
func (suite *RegenerationGuardTestSuite) storedPlan(hash string) (*planning.MealPlan, *planning.ShoppingList) {
	plan, err := planning.NewMealPlan(
		suite.key.HouseholdID, suite.key.WeekOf, hash,
		[]planning.SlotAssignment{{
			Slot:     planning.MealSlot{Day: 0, Meal: planning.MealTypeDinner},
			RecipeID: uuid.New(),
			Status:   planning.SlotStatusAssigned,
		}},
		planning.OutcomeCompleted, 12, "USD",
	)
	require.NoError(suite.T(), err)

	list := &planning.ShoppingList{PlanID: plan.ID(), Currency: "USD"}
	_, err = suite.store.Save(context.Background(), plan, list)
	require.NoError(suite.T(), err)
	return plan, list
}

func (suite *RegenerationGuardTestSuite) TestRun() {
	suite.Run("FirstRun_ShouldGenerateAndRecord", func() {
		// Arrange
		var calls int32
		generate := func(ctx context.Context) (*planning.MealPlan, *planning.ShoppingList, error) {
			atomic.AddInt32(&calls, 1)
			plan, list := suite.storedPlan("hash-1")
			return plan, list, nil
		}

		// Act
		plan, list, reused, err := suite.guard.Run(context.Background(), suite.key, "hash-1", generate)

		// Assert
		require.NoError(suite.T(), err)
		require.NotNil(suite.T(), plan)
		require.NotNil(suite.T(), list)
		assert.False(suite.T(), reused)
		assert.Equal(suite.T(), int32(1), calls)

		record, err := suite.store.Get(context.Background(), suite.key)
		require.NoError(suite.T(), err)
		require.NotNil(suite.T(), record)
		assert.Equal(suite.T(), "hash-1", record.InputHash)
		assert.Equal(suite.T(), plan.ID(), record.PlanID)
	})

	suite.Run("UnchangedHash_ShouldReturnStoredPlanWithoutRunning", func() {
		// Arrange
		stored, _ := suite.storedPlan("hash-1")
		require.NoError(suite.T(), suite.store.Put(context.Background(), suite.key, outbound.GenerationRecord{
			InputHash:   "hash-1",
			PlanID:      stored.ID(),
			CompletedAt: time.Now(),
		}))

		var calls int32
		generate := func(ctx context.Context) (*planning.MealPlan, *planning.ShoppingList, error) {
			atomic.AddInt32(&calls, 1)
			return nil, nil, nil
		}

		// Act
		plan, _, reused, err := suite.guard.Run(context.Background(), suite.key, "hash-1", generate)

		// Assert
		require.NoError(suite.T(), err)
		assert.True(suite.T(), reused)
		assert.Equal(suite.T(), stored.ID(), plan.ID())
		assert.Zero(suite.T(), atomic.LoadInt32(&calls))
	})

	suite.Run("RecordWithoutPlan_ShouldRegenerate", func() {
		// Arrange: the record outlived its plan row.
		require.NoError(suite.T(), suite.store.Put(context.Background(), suite.key, outbound.GenerationRecord{
			InputHash:   "hash-1",
			PlanID:      uuid.New(),
			CompletedAt: time.Now(),
		}))

		var calls int32
		generate := func(ctx context.Context) (*planning.MealPlan, *planning.ShoppingList, error) {
			atomic.AddInt32(&calls, 1)
			plan, list := suite.storedPlan("hash-1")
			return plan, list, nil
		}

		// Act
		plan, _, reused, err := suite.guard.Run(context.Background(), suite.key, "hash-1", generate)

		// Assert
		require.NoError(suite.T(), err)
		assert.False(suite.T(), reused)
		assert.Equal(suite.T(), int32(1), calls)

		record, err := suite.store.Get(context.Background(), suite.key)
		require.NoError(suite.T(), err)
		assert.Equal(suite.T(), plan.ID(), record.PlanID)
	})

	suite.Run("ChangedHash_ShouldRegenerate", func() {
		// Arrange
		stored, _ := suite.storedPlan("hash-1")
		require.NoError(suite.T(), suite.store.Put(context.Background(), suite.key, outbound.GenerationRecord{
			InputHash:   "hash-1",
			PlanID:      stored.ID(),
			CompletedAt: time.Now(),
		}))

		var calls int32
		generate := func(ctx context.Context) (*planning.MealPlan, *planning.ShoppingList, error) {
			atomic.AddInt32(&calls, 1)
			plan, list := suite.storedPlan("hash-2")
			return plan, list, nil
		}

		// Act
		plan, _, reused, err := suite.guard.Run(context.Background(), suite.key, "hash-2", generate)

		// Assert
		require.NoError(suite.T(), err)
		assert.False(suite.T(), reused)
		assert.Equal(suite.T(), int32(1), calls)
		assert.NotEqual(suite.T(), stored.ID(), plan.ID())

		record, err := suite.store.Get(context.Background(), suite.key)
		require.NoError(suite.T(), err)
		assert.Equal(suite.T(), "hash-2", record.InputHash)
	})

	suite.Run("ConcurrentSameKey_ShouldRunPipelineOnce", func() {
		// Arrange
		var calls int32
		release := make(chan struct{})
		generate := func(ctx context.Context) (*planning.MealPlan, *planning.ShoppingList, error) {
			atomic.AddInt32(&calls, 1)
			<-release
			plan, list := suite.storedPlan("hash-1")
			return plan, list, nil
		}

		// Act
		const callers = 5
		ids := make([]uuid.UUID, callers)
		var wg sync.WaitGroup
		for i := 0; i < callers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				plan, _, _, err := suite.guard.Run(context.Background(), suite.key, "hash-1", generate)
				require.NoError(suite.T(), err)
				ids[i] = plan.ID()
			}()
		}
		time.Sleep(50 * time.Millisecond)
		close(release)
		wg.Wait()

		// Assert
		assert.Equal(suite.T(), int32(1), atomic.LoadInt32(&calls))
		for i := 1; i < callers; i++ {
			assert.Equal(suite.T(), ids[0], ids[i])
		}
	})

	suite.Run("GenerateError_ShouldPropagateWithoutRecord", func() {
		// Arrange: a fresh key so earlier runs' records cannot satisfy this
		// one from the store.
		key := outbound.GenerationKey{HouseholdID: uuid.New(), WeekOf: suite.key.WeekOf}
		generate := func(ctx context.Context) (*planning.MealPlan, *planning.ShoppingList, error) {
			return nil, nil, assert.AnError
		}

		// Act
		_, _, _, err := suite.guard.Run(context.Background(), key, "hash-1", generate)

		// Assert
		require.Error(suite.T(), err)
		record, getErr := suite.store.Get(context.Background(), key)
		require.NoError(suite.T(), getErr)
		assert.Nil(suite.T(), record)
	})
}

func TestRegenerationGuardTestSuite(t *testing.T) {
	suite.Run(t, new(RegenerationGuardTestSuite))
}
