// Package testutils provides test data factories for consistent test data
// generation.
package testutils

import (
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"

	"github.com/mealsmith/v1/internal/domain/planning"
)

// RecipeBuilder provides a fluent interface for building test recipes.
type RecipeBuilder struct {
	id            uuid.UUID
	title         string
	lines         []planning.RecipeLine
	tags          []string
	courses       []planning.MealType
	estimatedCost float64
	difficulty    planning.DifficultyLevel
}

// NewRecipeBuilder creates a recipe builder with sensible defaults.
func NewRecipeBuilder() *RecipeBuilder {
	faker := gofakeit.New(time.Now().UnixNano())

	return &RecipeBuilder{
		id:            uuid.New(),
		title:         faker.Dinner(),
		tags:          []string{},
		estimatedCost: 10,
		difficulty:    planning.DifficultyMedium,
	}
}

// WithID sets the recipe id. Fixed ids make tie-breaking deterministic.
func (rb *RecipeBuilder) WithID(id uuid.UUID) *RecipeBuilder {
	rb.id = id
	return rb
}

// WithTitle sets the recipe title.
func (rb *RecipeBuilder) WithTitle(title string) *RecipeBuilder {
	rb.title = title
	return rb
}

// WithLine appends an ingredient line.
func (rb *RecipeBuilder) WithLine(slug string, qty float64, unit planning.MeasurementUnit, unitCost float64, tags ...string) *RecipeBuilder {
	rb.lines = append(rb.lines, planning.RecipeLine{
		IngredientID:   uuid.NewSHA1(uuid.NameSpaceOID, []byte(slug)),
		IngredientSlug: slug,
		IngredientTags: tags,
		Quantity:       qty,
		Unit:           unit,
		UnitCost:       unitCost,
	})
	return rb
}

// WithTags sets the recipe tags.
func (rb *RecipeBuilder) WithTags(tags ...string) *RecipeBuilder {
	rb.tags = tags
	return rb
}

// WithCourses restricts the recipe to the given meal types.
func (rb *RecipeBuilder) WithCourses(courses ...planning.MealType) *RecipeBuilder {
	rb.courses = courses
	return rb
}

// WithCost sets the estimated cost.
func (rb *RecipeBuilder) WithCost(cost float64) *RecipeBuilder {
	rb.estimatedCost = cost
	return rb
}

// WithDifficulty sets the difficulty.
func (rb *RecipeBuilder) WithDifficulty(d planning.DifficultyLevel) *RecipeBuilder {
	rb.difficulty = d
	return rb
}

// Build constructs the recipe.
func (rb *RecipeBuilder) Build() planning.Recipe {
	lines := rb.lines
	if len(lines) == 0 {
		lines = []planning.RecipeLine{{
			IngredientID:   uuid.New(),
			IngredientSlug: "onion",
			Quantity:       1,
			Unit:           planning.UnitPiece,
			UnitCost:       0.5,
		}}
	}

	return planning.Recipe{
		ID:            rb.id,
		Title:         rb.title,
		Lines:         lines,
		Tags:          rb.tags,
		Courses:       rb.courses,
		EstimatedCost: rb.estimatedCost,
		Difficulty:    rb.difficulty,
	}
}

// PreferencesBuilder provides a fluent interface for building preference
// snapshots.
type PreferencesBuilder struct {
	prefs planning.Preferences
}

// NewPreferencesBuilder creates an unconstrained preferences builder.
func NewPreferencesBuilder() *PreferencesBuilder {
	return &PreferencesBuilder{
		prefs: planning.Preferences{
			HouseholdID:  uuid.New(),
			WeeklyBudget: 100,
			Currency:     "USD",
		},
	}
}

// WithHousehold sets the household id.
func (pb *PreferencesBuilder) WithHousehold(id uuid.UUID) *PreferencesBuilder {
	pb.prefs.HouseholdID = id
	return pb
}

// WithDietTags sets the required diet tags.
func (pb *PreferencesBuilder) WithDietTags(tags ...string) *PreferencesBuilder {
	pb.prefs.DietTags = tags
	return pb
}

// WithAllergies sets the allergy tags.
func (pb *PreferencesBuilder) WithAllergies(tags ...string) *PreferencesBuilder {
	pb.prefs.AllergyTags = tags
	return pb
}

// WithDislikes sets the disliked ingredient slugs.
func (pb *PreferencesBuilder) WithDislikes(slugs ...string) *PreferencesBuilder {
	pb.prefs.DislikedIngredients = slugs
	return pb
}

// WithBudget sets the weekly budget.
func (pb *PreferencesBuilder) WithBudget(budget float64) *PreferencesBuilder {
	pb.prefs.WeeklyBudget = budget
	return pb
}

// WithCuisineWeight sets one cuisine affinity weight.
func (pb *PreferencesBuilder) WithCuisineWeight(cuisine string, weight float64) *PreferencesBuilder {
	if pb.prefs.CuisineWeights == nil {
		pb.prefs.CuisineWeights = map[string]float64{}
	}
	pb.prefs.CuisineWeights[cuisine] = weight
	return pb
}

// WithGoals sets the goal tags.
func (pb *PreferencesBuilder) WithGoals(tags ...string) *PreferencesBuilder {
	pb.prefs.GoalTags = tags
	return pb
}

// Build constructs the preference snapshot.
func (pb *PreferencesBuilder) Build() planning.Preferences {
	return pb.prefs
}

// CatalogOfSize generates n simple dinner recipes with distinct ids and
// ingredients, ordered by index.
func CatalogOfSize(n int) []planning.Recipe {
	recipes := make([]planning.Recipe, 0, n)
	for i := 0; i < n; i++ {
		slug := fmt.Sprintf("ingredient-%03d", i)
		recipes = append(recipes, NewRecipeBuilder().
			WithID(uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("recipe-%03d", i)))).
			WithTitle(fmt.Sprintf("Recipe %03d", i)).
			WithLine(slug, 100, planning.UnitGram, 0.01).
			Build())
	}
	return recipes
}

// RatingFor builds a rating with the given score at the given time.
func RatingFor(recipeID uuid.UUID, score float64, ratedAt time.Time) planning.Rating {
	return planning.Rating{
		RecipeID: recipeID,
		Score:    score,
		RatedAt:  ratedAt,
	}
}

// PantryItemFor builds a pantry item for an ingredient slug.
func PantryItemFor(slug string, qty float64, unit planning.MeasurementUnit) planning.PantryItem {
	return planning.PantryItem{
		IngredientID:   uuid.NewSHA1(uuid.NameSpaceOID, []byte(slug)),
		IngredientSlug: slug,
		Quantity:       qty,
		Unit:           unit,
	}
}
