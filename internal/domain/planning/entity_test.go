package planning_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mealsmith/v1/internal/domain/planning"
)

// MealPlanTestSuite provides a test suite for the MealPlan aggregate
type MealPlanTestSuite struct {
	suite.Suite
	householdID uuid.UUID
	weekOf      time.Time
}

func (suite *MealPlanTestSuite) SetupSuite() {
	suite.householdID = uuid.New()
	suite.weekOf = time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
}

func (suite *MealPlanTestSuite) oneAssignment() []planning.SlotAssignment {
	return []planning.SlotAssignment{{
		Slot:        planning.MealSlot{Day: 0, Meal: planning.MealTypeDinner},
		RecipeID:    uuid.New(),
		RecipeTitle: "Dal Tadka",
		Status:      planning.SlotStatusAssigned,
		Score:       0.7,
	}}
}

func (suite *MealPlanTestSuite) TestCreation() {
	suite.Run("ValidPlan_ShouldCreateDraftAndRaiseEvent", func() {
		// Act
		plan, err := planning.NewMealPlan(
			suite.householdID, suite.weekOf, "hash-1",
			suite.oneAssignment(), planning.OutcomeCompleted, 42.5, "USD",
		)

		// Assert
		require.NoError(suite.T(), err)
		require.NotNil(suite.T(), plan)
		assert.NotEqual(suite.T(), uuid.Nil, plan.ID())
		assert.Equal(suite.T(), int64(1), plan.Version())
		assert.Equal(suite.T(), planning.PlanStatusDraft, plan.Status())
		assert.Equal(suite.T(), "hash-1", plan.InputHash())
		assert.Empty(suite.T(), plan.Annotations())

		events := plan.Events()
		require.Len(suite.T(), events, 1)
		generated, ok := events[0].(planning.PlanGeneratedEvent)
		require.True(suite.T(), ok, "should raise PlanGeneratedEvent")
		assert.Equal(suite.T(), plan.ID(), generated.PlanID)
		assert.Equal(suite.T(), suite.householdID, generated.HouseholdID)
	})

	suite.Run("NoAssignments_ShouldReturnError", func() {
		// Act
		plan, err := planning.NewMealPlan(
			suite.householdID, suite.weekOf, "hash-1",
			nil, planning.OutcomeCompleted, 0, "USD",
		)

		// Assert
		assert.Nil(suite.T(), plan)
		assert.ErrorIs(suite.T(), err, planning.ErrNoSlots)
	})

	suite.Run("MidWeekTimestamp_ShouldReturnError", func() {
		// Act
		plan, err := planning.NewMealPlan(
			suite.householdID, suite.weekOf.Add(3*time.Hour), "hash-1",
			suite.oneAssignment(), planning.OutcomeCompleted, 0, "USD",
		)

		// Assert
		assert.Nil(suite.T(), plan)
		assert.ErrorIs(suite.T(), err, planning.ErrInvalidWeekOf)
	})

	suite.Run("PartialOutcome_ShouldAutoAnnotate", func() {
		// Act
		plan, err := planning.NewMealPlan(
			suite.householdID, suite.weekOf, "hash-1",
			suite.oneAssignment(), planning.OutcomePartiallyCompleted, 0, "USD",
		)

		// Assert
		require.NoError(suite.T(), err)
		assert.Contains(suite.T(), plan.Annotations(), planning.AnnotationPartial)
	})
}

func (suite *MealPlanTestSuite) TestApprove() {
	suite.Run("Draft_ShouldFreezeAndRaiseEvent", func() {
		// Arrange
		plan, err := planning.NewMealPlan(
			suite.householdID, suite.weekOf, "hash-1",
			suite.oneAssignment(), planning.OutcomeCompleted, 10, "USD",
		)
		require.NoError(suite.T(), err)
		plan.Events() // drain creation event

		// Act
		err = plan.Approve()

		// Assert
		require.NoError(suite.T(), err)
		assert.Equal(suite.T(), planning.PlanStatusApproved, plan.Status())
		require.NotNil(suite.T(), plan.ApprovedAt())

		events := plan.Events()
		require.Len(suite.T(), events, 1)
		_, ok := events[0].(planning.PlanApprovedEvent)
		assert.True(suite.T(), ok, "should raise PlanApprovedEvent")
	})

	suite.Run("AlreadyApproved_ShouldReturnError", func() {
		// Arrange
		plan, err := planning.NewMealPlan(
			suite.householdID, suite.weekOf, "hash-1",
			suite.oneAssignment(), planning.OutcomeCompleted, 10, "USD",
		)
		require.NoError(suite.T(), err)
		require.NoError(suite.T(), plan.Approve())

		// Act & Assert
		assert.ErrorIs(suite.T(), plan.Approve(), planning.ErrPlanNotDraft)
	})
}

func (suite *MealPlanTestSuite) TestSupersede() {
	newPlan := func(hash string) *planning.MealPlan {
		plan, err := planning.NewMealPlan(
			suite.householdID, suite.weekOf, hash,
			suite.oneAssignment(), planning.OutcomeCompleted, 10, "USD",
		)
		require.NoError(suite.T(), err)
		plan.Events()
		return plan
	}

	suite.Run("DraftPredecessor_ShouldBumpVersionQuietly", func() {
		// Arrange
		prev := newPlan("hash-1")
		next := newPlan("hash-2")

		// Act
		err := next.Supersede(prev)

		// Assert
		require.NoError(suite.T(), err)
		assert.Equal(suite.T(), int64(2), next.Version())
		assert.Empty(suite.T(), next.Events())
	})

	suite.Run("ApprovedPredecessor_ShouldRaiseRegeneratedEvent", func() {
		// Arrange
		prev := newPlan("hash-1")
		require.NoError(suite.T(), prev.Approve())
		next := newPlan("hash-2")

		// Act
		err := next.Supersede(prev)

		// Assert
		require.NoError(suite.T(), err)
		assert.Equal(suite.T(), int64(2), next.Version())
		// The approved predecessor is left intact.
		assert.Equal(suite.T(), planning.PlanStatusApproved, prev.Status())

		events := next.Events()
		require.Len(suite.T(), events, 1)
		regen, ok := events[0].(planning.PlanRegeneratedEvent)
		require.True(suite.T(), ok, "should raise PlanRegeneratedEvent")
		assert.Equal(suite.T(), prev.ID(), regen.PreviousPlanID)
		assert.Equal(suite.T(), int64(2), regen.Version)
	})

	suite.Run("DifferentKey_ShouldReturnError", func() {
		// Arrange
		prev, err := planning.NewMealPlan(
			uuid.New(), suite.weekOf, "hash-1",
			suite.oneAssignment(), planning.OutcomeCompleted, 10, "USD",
		)
		require.NoError(suite.T(), err)
		next := newPlan("hash-2")

		// Act & Assert
		assert.ErrorIs(suite.T(), next.Supersede(prev), planning.ErrPlanKeyMismatch)
	})

	suite.Run("NilPredecessor_ShouldBeNoop", func() {
		// Arrange
		next := newPlan("hash-1")

		// Act & Assert
		require.NoError(suite.T(), next.Supersede(nil))
		assert.Equal(suite.T(), int64(1), next.Version())
	})
}

func (suite *MealPlanTestSuite) TestAnnotate() {
	suite.Run("DuplicateAnnotation_ShouldBeDeduplicated", func() {
		// Arrange
		plan, err := planning.NewMealPlan(
			suite.householdID, suite.weekOf, "hash-1",
			suite.oneAssignment(), planning.OutcomeCompleted, 10, "USD",
		)
		require.NoError(suite.T(), err)

		// Act
		plan.Annotate(planning.AnnotationBudgetInfeasible)
		plan.Annotate(planning.AnnotationBudgetInfeasible)

		// Assert
		assert.Equal(suite.T(),
			[]planning.PlanAnnotation{planning.AnnotationBudgetInfeasible},
			plan.Annotations())
	})
}

func TestMealPlanTestSuite(t *testing.T) {
	suite.Run(t, new(MealPlanTestSuite))
}
