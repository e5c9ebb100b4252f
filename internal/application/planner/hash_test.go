package planner

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/mealsmith/v1/internal/domain/planning"
	"github.com/mealsmith/v1/test/testutils"
)

func TestComputeInputHash(t *testing.T) {
	householdID := uuid.New()
	weekOf := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	recipeID := uuid.New()

	basePrefs := func() planning.Preferences {
		return testutils.NewPreferencesBuilder().
			WithHousehold(householdID).
			WithDietTags("vegan", "gluten-free").
			WithAllergies("peanut").
			WithBudget(100).
			Build()
	}
	basePantry := func() []planning.PantryItem {
		return []planning.PantryItem{
			testutils.PantryItemFor("rice", 2, planning.UnitCup),
			testutils.PantryItemFor("flour", 500, planning.UnitGram),
		}
	}
	baseRatings := func() []planning.Rating {
		return []planning.Rating{
			testutils.RatingFor(recipeID, 4, weekOf.Add(-48*time.Hour)),
		}
	}

	t.Run("IdenticalInputs_ShouldHashIdentically", func(t *testing.T) {
		first := ComputeInputHash(householdID, weekOf, basePrefs(), basePantry(), "v1", baseRatings())
		second := ComputeInputHash(householdID, weekOf, basePrefs(), basePantry(), "v1", baseRatings())
		assert.Equal(t, first, second)
	})

	t.Run("SliceOrder_ShouldNotAffectHash", func(t *testing.T) {
		reorderedPrefs := basePrefs()
		reorderedPrefs.DietTags = []string{"gluten-free", "vegan"}
		reorderedPantry := []planning.PantryItem{
			testutils.PantryItemFor("flour", 500, planning.UnitGram),
			testutils.PantryItemFor("rice", 2, planning.UnitCup),
		}

		first := ComputeInputHash(householdID, weekOf, basePrefs(), basePantry(), "v1", baseRatings())
		second := ComputeInputHash(householdID, weekOf, reorderedPrefs, reorderedPantry, "v1", baseRatings())
		assert.Equal(t, first, second)
	})

	t.Run("ChangedBudget_ShouldChangeHash", func(t *testing.T) {
		changed := basePrefs()
		changed.WeeklyBudget = 90

		first := ComputeInputHash(householdID, weekOf, basePrefs(), basePantry(), "v1", baseRatings())
		second := ComputeInputHash(householdID, weekOf, changed, basePantry(), "v1", baseRatings())
		assert.NotEqual(t, first, second)
	})

	t.Run("ChangedCatalogVersion_ShouldChangeHash", func(t *testing.T) {
		first := ComputeInputHash(householdID, weekOf, basePrefs(), basePantry(), "v1", baseRatings())
		second := ComputeInputHash(householdID, weekOf, basePrefs(), basePantry(), "v2", baseRatings())
		assert.NotEqual(t, first, second)
	})

	t.Run("ChangedPantryQuantity_ShouldChangeHash", func(t *testing.T) {
		changed := basePantry()
		changed[0].Quantity = 3

		first := ComputeInputHash(householdID, weekOf, basePrefs(), basePantry(), "v1", baseRatings())
		second := ComputeInputHash(householdID, weekOf, basePrefs(), changed, "v1", baseRatings())
		assert.NotEqual(t, first, second)
	})

	t.Run("NewRating_ShouldChangeHash", func(t *testing.T) {
		withNew := append(baseRatings(), testutils.RatingFor(uuid.New(), 5, weekOf))

		first := ComputeInputHash(householdID, weekOf, basePrefs(), basePantry(), "v1", baseRatings())
		second := ComputeInputHash(householdID, weekOf, basePrefs(), basePantry(), "v1", withNew)
		assert.NotEqual(t, first, second)
	})

	t.Run("DifferentWeek_ShouldChangeHash", func(t *testing.T) {
		first := ComputeInputHash(householdID, weekOf, basePrefs(), basePantry(), "v1", baseRatings())
		second := ComputeInputHash(householdID, weekOf.AddDate(0, 0, 7), basePrefs(), basePantry(), "v1", baseRatings())
		assert.NotEqual(t, first, second)
	})
}
