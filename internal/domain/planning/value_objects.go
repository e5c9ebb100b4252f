package planning

import (
	"time"

	"github.com/google/uuid"
)

// Value Objects - Immutable inputs to a plan-generation run. Everything here is
// a snapshot: the planner never mutates catalog, pantry, ratings or preferences.

// Ingredient is a canonical ingredient reference resolved upstream.
type Ingredient struct {
	ID       uuid.UUID
	Slug     string
	Tags     []string
	Unit     MeasurementUnit
	UnitCost float64 // estimated cost per canonical unit
}

// RecipeLine is one ingredient requirement in a recipe. The ingredient
// snapshot (slug, tags, unit cost) is denormalized onto the line so the
// planner needs no lookups during a run.
type RecipeLine struct {
	IngredientID   uuid.UUID
	IngredientSlug string
	IngredientTags []string
	Quantity       float64
	Unit           MeasurementUnit
	UnitCost       float64
}

// MacroEstimate carries externally computed macro values. Confidence is
// supplied by the estimation provider and consumed as-is.
type MacroEstimate struct {
	Calories   float64
	Protein    float64
	Carbs      float64
	Fat        float64
	Confidence float64 // [0,1]
}

// Recipe is a read-only candidate for slot assignment.
type Recipe struct {
	ID            uuid.UUID
	Title         string
	Lines         []RecipeLine
	Tags          []string
	Courses       []MealType // empty means suitable for any slot
	EstimatedCost float64
	Macros        MacroEstimate
	Difficulty    DifficultyLevel
}

// SuitsCourse reports whether the recipe can fill a slot of the given meal type.
func (r Recipe) SuitsCourse(meal MealType) bool {
	if len(r.Courses) == 0 {
		return true
	}
	for _, c := range r.Courses {
		if c == meal {
			return true
		}
	}
	return false
}

// Preferences is a household's preference snapshot. Allergy tags and disliked
// ingredients are hard constraints; everything else is scored.
type Preferences struct {
	HouseholdID         uuid.UUID          `validate:"required"`
	DietTags            []string           `validate:"dive,min=1"`
	AllergyTags         []string           `validate:"dive,min=1"`
	DislikedIngredients []string           `validate:"dive,min=1"`
	WeeklyBudget        float64            `validate:"gte=0"`
	Currency            string             `validate:"omitempty,iso4217"`
	CuisineWeights      map[string]float64 `validate:"dive,gte=0,lte=1"`
	GoalTags            []string           `validate:"dive,min=1"`
}

// PantryItem is an on-hand quantity used only to net shopping-list lines.
type PantryItem struct {
	IngredientID   uuid.UUID
	IngredientSlug string
	Quantity       float64
	Unit           MeasurementUnit
}

// Rating is a household's historical score for a recipe. More recent ratings
// weigh higher during scoring.
type Rating struct {
	RecipeID uuid.UUID
	Score    float64 // [0,5]
	RatedAt  time.Time
}

// MealType identifies the meal a slot belongs to.
type MealType string

const (
	MealTypeBreakfast MealType = "breakfast"
	MealTypeLunch     MealType = "lunch"
	MealTypeDinner    MealType = "dinner"
)

// mealOrder fixes the within-day ordering used for deterministic slot
// processing.
var mealOrder = map[MealType]int{
	MealTypeBreakfast: 0,
	MealTypeLunch:     1,
	MealTypeDinner:    2,
}

// MealSlot is one (day, meal-type) position in the week. Day is an offset from
// the plan's week-of date, 0 through 6.
type MealSlot struct {
	Day  int
	Meal MealType
}

// Before reports whether s precedes other in the fixed chronological order.
func (s MealSlot) Before(other MealSlot) bool {
	if s.Day != other.Day {
		return s.Day < other.Day
	}
	return mealOrder[s.Meal] < mealOrder[other.Meal]
}

// WeekSlots expands a slot shape (which meals per day) into the fixed,
// chronologically ordered slot set for one week.
func WeekSlots(meals []MealType) []MealSlot {
	slots := make([]MealSlot, 0, 7*len(meals))
	for day := 0; day < 7; day++ {
		for _, m := range meals {
			slots = append(slots, MealSlot{Day: day, Meal: m})
		}
	}
	return slots
}

// DifficultyLevel represents recipe difficulty.
type DifficultyLevel string

const (
	DifficultyEasy   DifficultyLevel = "easy"
	DifficultyMedium DifficultyLevel = "medium"
	DifficultyHard   DifficultyLevel = "hard"
)

// SlotStatus is a slot's terminal state after selection. Slots never persist
// mid-selection, so only the terminal states exist.
type SlotStatus string

const (
	SlotStatusAssigned SlotStatus = "assigned"
	SlotStatusFlagged  SlotStatus = "flagged"
)

// SlotFlag records why an unassigned slot was left as a gap.
type SlotFlag string

const (
	SlotFlagNone                   SlotFlag = ""
	SlotFlagInsufficientCandidates SlotFlag = "insufficient_candidates"
	SlotFlagTimedOut               SlotFlag = "timed_out"
)

// PlanOutcome is the terminal state of a generation run as a whole.
type PlanOutcome string

const (
	OutcomeCompleted          PlanOutcome = "completed"
	OutcomePartiallyCompleted PlanOutcome = "partially_completed"
	OutcomeTimedOut           PlanOutcome = "timed_out"
)

// PlanAnnotation is a soft, whole-plan warning carried on the MealPlan rather
// than raised as an error.
type PlanAnnotation string

const (
	AnnotationBudgetInfeasible PlanAnnotation = "budget_infeasible"
	AnnotationPartial          PlanAnnotation = "partial"
	AnnotationTimedOut         PlanAnnotation = "timed_out"
)

// SlotAssignment is the persisted shape of one filled (or flagged) slot.
type SlotAssignment struct {
	Slot        MealSlot
	RecipeID    uuid.UUID // uuid.Nil for a gap
	RecipeTitle string
	Status      SlotStatus
	Flag        SlotFlag
	Score       float64
}

// Assigned reports whether the slot holds a recipe.
func (a SlotAssignment) Assigned() bool {
	return a.Status == SlotStatusAssigned && a.RecipeID != uuid.Nil
}

// ShoppingLine is one netted ingredient requirement on a shopping list.
type ShoppingLine struct {
	IngredientID   uuid.UUID
	IngredientSlug string
	Required       float64 // sum across assigned recipes, unit-converted
	OnHand         float64 // pantry quantity, capped at Required
	ToBuy          float64 // max(0, Required - pantry on hand)
	Unit           MeasurementUnit
	EstimatedPrice float64
}

// ShoppingList is derived from a plan and never edited independently of it.
type ShoppingList struct {
	PlanID         uuid.UUID
	Lines          []ShoppingLine // ordered by ingredient slug
	EstimatedTotal float64
	Currency       string
}
