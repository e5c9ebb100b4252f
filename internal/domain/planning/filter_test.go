package planning_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mealsmith/v1/internal/domain/planning"
	"github.com/mealsmith/v1/test/testutils"
)

// ConstraintFilterTestSuite provides a test suite for the ConstraintFilter
type ConstraintFilterTestSuite struct {
	suite.Suite
}

func (suite *ConstraintFilterTestSuite) TestAllergyExclusion() {
	suite.Run("RecipeWithAllergen_ShouldBeInadmissible", func() {
		// Arrange
		prefs := testutils.NewPreferencesBuilder().WithAllergies("peanut").Build()
		filter := planning.NewConstraintFilter(prefs)
		recipe := testutils.NewRecipeBuilder().
			WithLine("peanut-butter", 100, planning.UnitGram, 0.02, "peanut", "legume").
			Build()

		// Act & Assert
		assert.False(suite.T(), filter.Admissible(recipe))
	})

	suite.Run("RecipeWithoutAllergen_ShouldBeAdmissible", func() {
		// Arrange
		prefs := testutils.NewPreferencesBuilder().WithAllergies("peanut").Build()
		filter := planning.NewConstraintFilter(prefs)
		recipe := testutils.NewRecipeBuilder().
			WithLine("tofu", 200, planning.UnitGram, 0.01, "soy").
			Build()

		// Act & Assert
		assert.True(suite.T(), filter.Admissible(recipe))
	})

	suite.Run("AnySingleAllergenLine_ShouldExcludeWholeRecipe", func() {
		// Arrange
		prefs := testutils.NewPreferencesBuilder().WithAllergies("shellfish").Build()
		filter := planning.NewConstraintFilter(prefs)
		recipe := testutils.NewRecipeBuilder().
			WithLine("rice", 200, planning.UnitGram, 0.005).
			WithLine("shrimp", 150, planning.UnitGram, 0.04, "shellfish").
			Build()

		// Act & Assert
		assert.False(suite.T(), filter.Admissible(recipe))
	})
}

func (suite *ConstraintFilterTestSuite) TestDislikedIngredients() {
	suite.Run("DislikedSlug_ShouldBeInadmissible", func() {
		// Arrange
		prefs := testutils.NewPreferencesBuilder().WithDislikes("cilantro").Build()
		filter := planning.NewConstraintFilter(prefs)
		recipe := testutils.NewRecipeBuilder().
			WithLine("cilantro", 10, planning.UnitGram, 0.03).
			Build()

		// Act & Assert
		assert.False(suite.T(), filter.Admissible(recipe))
	})

	suite.Run("DislikeIsExactSlugMatch_NotSubstring", func() {
		// Arrange
		prefs := testutils.NewPreferencesBuilder().WithDislikes("cilantro").Build()
		filter := planning.NewConstraintFilter(prefs)
		recipe := testutils.NewRecipeBuilder().
			WithLine("cilantro-lime-dressing", 30, planning.UnitMilliliter, 0.01).
			Build()

		// Act & Assert
		assert.True(suite.T(), filter.Admissible(recipe))
	})
}

func (suite *ConstraintFilterTestSuite) TestDietTags() {
	suite.Run("RecipeMissingDietTag_ShouldBeInadmissible", func() {
		// Arrange
		prefs := testutils.NewPreferencesBuilder().WithDietTags("vegan").Build()
		filter := planning.NewConstraintFilter(prefs)
		recipe := testutils.NewRecipeBuilder().WithTags("vegetarian").Build()

		// Act & Assert
		assert.False(suite.T(), filter.Admissible(recipe))
	})

	suite.Run("RecipeCarryingAllDietTags_ShouldBeAdmissible", func() {
		// Arrange
		prefs := testutils.NewPreferencesBuilder().WithDietTags("vegan", "gluten-free").Build()
		filter := planning.NewConstraintFilter(prefs)
		recipe := testutils.NewRecipeBuilder().WithTags("vegan", "gluten-free", "quick").Build()

		// Act & Assert
		assert.True(suite.T(), filter.Admissible(recipe))
	})
}

func (suite *ConstraintFilterTestSuite) TestFilter() {
	suite.Run("MixedCatalog_ShouldPreserveOrder", func() {
		// Arrange
		prefs := testutils.NewPreferencesBuilder().WithDislikes("anchovy").Build()
		filter := planning.NewConstraintFilter(prefs)
		keep1 := testutils.NewRecipeBuilder().WithTitle("Keep One").Build()
		drop := testutils.NewRecipeBuilder().
			WithTitle("Drop").
			WithLine("anchovy", 20, planning.UnitGram, 0.05).
			Build()
		keep2 := testutils.NewRecipeBuilder().WithTitle("Keep Two").Build()

		// Act
		admissible, err := filter.Filter([]planning.Recipe{keep1, drop, keep2})

		// Assert
		require.NoError(suite.T(), err)
		require.Len(suite.T(), admissible, 2)
		assert.Equal(suite.T(), "Keep One", admissible[0].Title)
		assert.Equal(suite.T(), "Keep Two", admissible[1].Title)
	})

	suite.Run("EverythingExcluded_ShouldReturnInsufficientCandidates", func() {
		// Arrange
		prefs := testutils.NewPreferencesBuilder().WithDietTags("vegan").Build()
		filter := planning.NewConstraintFilter(prefs)
		catalog := []planning.Recipe{
			testutils.NewRecipeBuilder().Build(),
			testutils.NewRecipeBuilder().Build(),
		}

		// Act
		admissible, err := filter.Filter(catalog)

		// Assert
		assert.Nil(suite.T(), admissible)
		assert.ErrorIs(suite.T(), err, planning.ErrInsufficientCandidates)
	})

	suite.Run("UnconstrainedHousehold_ShouldKeepEverything", func() {
		// Arrange
		filter := planning.NewConstraintFilter(testutils.NewPreferencesBuilder().Build())
		catalog := testutils.CatalogOfSize(5)

		// Act
		admissible, err := filter.Filter(catalog)

		// Assert
		require.NoError(suite.T(), err)
		assert.Len(suite.T(), admissible, 5)
	})
}

func TestConstraintFilterTestSuite(t *testing.T) {
	suite.Run(t, new(ConstraintFilterTestSuite))
}
