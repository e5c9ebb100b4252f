package planning_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/mealsmith/v1/internal/domain/planning"
	"github.com/mealsmith/v1/test/testutils"
)

// ScoringEngineTestSuite provides a test suite for the ScoringEngine
type ScoringEngineTestSuite struct {
	suite.Suite
	now time.Time
}

func (suite *ScoringEngineTestSuite) SetupSuite() {
	suite.now = time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
}

// ratingOnly isolates the rating term of the composite objective.
func ratingOnly() planning.Weights {
	w := planning.DefaultWeights()
	w.Rating = 1
	w.Reuse = 0
	w.Budget = 0
	w.Affinity = 0
	w.RepeatPenalty = 0
	return w
}

func (suite *ScoringEngineTestSuite) TestRatingTerm() {
	suite.Run("UnratedRecipe_ShouldScoreNeutral", func() {
		// Arrange
		prefs := testutils.NewPreferencesBuilder().Build()
		engine := planning.NewScoringEngine(prefs, nil, planning.NewReuseGraph(), ratingOnly(), suite.now)
		candidate := testutils.NewRecipeBuilder().Build()

		// Act
		score := engine.Score(candidate, planning.PlanContext{})

		// Assert
		assert.InDelta(suite.T(), 0.5, score, 1e-9)
	})

	suite.Run("RecentTopRating_ShouldScoreNearOne", func() {
		// Arrange
		prefs := testutils.NewPreferencesBuilder().Build()
		candidate := testutils.NewRecipeBuilder().Build()
		ratings := []planning.Rating{
			testutils.RatingFor(candidate.ID, 5, suite.now.Add(-24*time.Hour)),
		}
		engine := planning.NewScoringEngine(prefs, ratings, planning.NewReuseGraph(), ratingOnly(), suite.now)

		// Act
		score := engine.Score(candidate, planning.PlanContext{})

		// Assert
		assert.InDelta(suite.T(), 1.0, score, 1e-9)
	})

	suite.Run("RecentRating_ShouldOutweighOldRating", func() {
		// Arrange
		prefs := testutils.NewPreferencesBuilder().Build()
		candidate := testutils.NewRecipeBuilder().Build()
		ratings := []planning.Rating{
			testutils.RatingFor(candidate.ID, 1, suite.now.Add(-100*24*time.Hour)),
			testutils.RatingFor(candidate.ID, 5, suite.now.Add(-24*time.Hour)),
		}
		engine := planning.NewScoringEngine(prefs, ratings, planning.NewReuseGraph(), ratingOnly(), suite.now)

		// Act
		score := engine.Score(candidate, planning.PlanContext{})

		// Assert: the unweighted mean of 0.2 and 1.0 would be 0.6; recency
		// weighting pulls the score toward the recent rating.
		assert.Greater(suite.T(), score, 0.8)
	})
}

func (suite *ScoringEngineTestSuite) TestBudgetTerm() {
	budgetOnly := planning.Weights{Budget: 1}

	suite.Run("ProjectedSpendUnderBudget_ShouldScoreRemainingShare", func() {
		// Arrange
		prefs := testutils.NewPreferencesBuilder().WithBudget(100).Build()
		engine := planning.NewScoringEngine(prefs, nil, planning.NewReuseGraph(), budgetOnly, suite.now)
		candidate := testutils.NewRecipeBuilder().WithCost(25).Build()

		// Act
		score := engine.Score(candidate, planning.PlanContext{Spent: 50})

		// Assert
		assert.InDelta(suite.T(), 0.25, score, 1e-9)
	})

	suite.Run("ProjectedSpendOverBudget_ShouldBottomOutAtZero", func() {
		// Arrange
		prefs := testutils.NewPreferencesBuilder().WithBudget(100).Build()
		engine := planning.NewScoringEngine(prefs, nil, planning.NewReuseGraph(), budgetOnly, suite.now)
		candidate := testutils.NewRecipeBuilder().WithCost(60).Build()

		// Act
		score := engine.Score(candidate, planning.PlanContext{Spent: 90})

		// Assert
		assert.Zero(suite.T(), score)
	})

	suite.Run("NoBudgetConfigured_ShouldBeNeutral", func() {
		// Arrange
		prefs := testutils.NewPreferencesBuilder().WithBudget(0).Build()
		engine := planning.NewScoringEngine(prefs, nil, planning.NewReuseGraph(), budgetOnly, suite.now)
		candidate := testutils.NewRecipeBuilder().WithCost(60).Build()

		// Act
		score := engine.Score(candidate, planning.PlanContext{Spent: 500})

		// Assert
		assert.InDelta(suite.T(), 0.5, score, 1e-9)
	})
}

func (suite *ScoringEngineTestSuite) TestAffinityTerm() {
	affinityOnly := planning.Weights{Affinity: 1, GoalBoost: 0.2}

	suite.Run("CuisineWeight_ShouldCarryThrough", func() {
		// Arrange
		prefs := testutils.NewPreferencesBuilder().WithCuisineWeight("italian", 0.8).Build()
		engine := planning.NewScoringEngine(prefs, nil, planning.NewReuseGraph(), affinityOnly, suite.now)
		candidate := testutils.NewRecipeBuilder().WithTags("italian").Build()

		// Act & Assert
		assert.InDelta(suite.T(), 0.8, engine.Score(candidate, planning.PlanContext{}), 1e-9)
	})

	suite.Run("GoalTagMatch_ShouldAddBoost", func() {
		// Arrange
		prefs := testutils.NewPreferencesBuilder().
			WithCuisineWeight("italian", 0.5).
			WithGoals("one-pot").
			Build()
		engine := planning.NewScoringEngine(prefs, nil, planning.NewReuseGraph(), affinityOnly, suite.now)
		candidate := testutils.NewRecipeBuilder().WithTags("italian", "one-pot").Build()

		// Act & Assert
		assert.InDelta(suite.T(), 0.7, engine.Score(candidate, planning.PlanContext{}), 1e-9)
	})
}

func (suite *ScoringEngineTestSuite) TestRepeatPenalty() {
	repeatOnly := planning.Weights{RepeatPenalty: 0.35, MinDaysBetweenRepeats: 3}

	suite.Run("RepeatWithinMinGap_ShouldBePenalized", func() {
		// Arrange
		prefs := testutils.NewPreferencesBuilder().Build()
		engine := planning.NewScoringEngine(prefs, nil, planning.NewReuseGraph(), repeatOnly, suite.now)
		candidate := testutils.NewRecipeBuilder().Build()
		ctx := planning.PlanContext{
			Day:      1,
			LastUsed: map[uuid.UUID]int{candidate.ID: 0},
		}

		// Act
		score := engine.Score(candidate, ctx)

		// Assert: gap 1 of minimum 3 leaves two thirds of the penalty.
		assert.InDelta(suite.T(), -0.35*(2.0/3.0), score, 1e-9)
	})

	suite.Run("RepeatAtMinGap_ShouldBeUnpenalized", func() {
		// Arrange
		prefs := testutils.NewPreferencesBuilder().Build()
		engine := planning.NewScoringEngine(prefs, nil, planning.NewReuseGraph(), repeatOnly, suite.now)
		candidate := testutils.NewRecipeBuilder().Build()
		ctx := planning.PlanContext{
			Day:      3,
			LastUsed: map[uuid.UUID]int{candidate.ID: 0},
		}

		// Act & Assert
		assert.Zero(suite.T(), engine.Score(candidate, ctx))
	})

	suite.Run("MorePenalizedTheMoreRecent", func() {
		// Arrange
		prefs := testutils.NewPreferencesBuilder().Build()
		engine := planning.NewScoringEngine(prefs, nil, planning.NewReuseGraph(), repeatOnly, suite.now)
		candidate := testutils.NewRecipeBuilder().Build()
		lastUsed := map[uuid.UUID]int{candidate.ID: 0}

		// Act
		gapOne := engine.Score(candidate, planning.PlanContext{Day: 1, LastUsed: lastUsed})
		gapTwo := engine.Score(candidate, planning.PlanContext{Day: 2, LastUsed: lastUsed})

		// Assert
		assert.Less(suite.T(), gapOne, gapTwo)
	})
}

func (suite *ScoringEngineTestSuite) TestDeterminism() {
	suite.Run("IdenticalInputs_ShouldScoreIdentically", func() {
		// Arrange
		prefs := testutils.NewPreferencesBuilder().
			WithBudget(120).
			WithCuisineWeight("thai", 0.6).
			Build()
		candidate := testutils.NewRecipeBuilder().WithTags("thai").WithCost(15).Build()
		ratings := []planning.Rating{
			testutils.RatingFor(candidate.ID, 4, suite.now.Add(-72*time.Hour)),
		}
		ctx := planning.PlanContext{Spent: 30, Day: 2}

		first := planning.NewScoringEngine(prefs, ratings, planning.NewReuseGraph(), planning.DefaultWeights(), suite.now)
		second := planning.NewScoringEngine(prefs, ratings, planning.NewReuseGraph(), planning.DefaultWeights(), suite.now)

		// Act & Assert
		assert.Equal(suite.T(), first.Score(candidate, ctx), second.Score(candidate, ctx))
	})
}

func TestScoringEngineTestSuite(t *testing.T) {
	suite.Run(t, new(ScoringEngineTestSuite))
}
