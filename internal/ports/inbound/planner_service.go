// Package inbound defines the interfaces for inbound ports (primary/driving
// adapters). The scheduler or API layer invokes the planner through these.
package inbound

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mealsmith/v1/internal/domain/planning"
)

// PlannerService is the plan-generation use-case boundary. The external
// scheduler supplies (household, week-of) as the idempotency key and owns
// cadence and retry policy; the planner only guarantees that re-invocation
// with an unchanged input snapshot reproduces the stored plan.
type PlannerService interface {
	GeneratePlan(ctx context.Context, cmd GeneratePlanCommand) (*MealPlanDTO, error)
	ApprovePlan(ctx context.Context, householdID, planID uuid.UUID) error
	GetPlan(ctx context.Context, planID uuid.UUID) (*MealPlanDTO, error)
}

// GeneratePlanCommand carries the inputs of one generation request.
type GeneratePlanCommand struct {
	HouseholdID uuid.UUID
	WeekOf      time.Time

	// Deadline bounds the run; zero means the service default applies. On
	// expiry the best partial plan found so far is returned.
	Deadline time.Time
}

// MealPlanDTO is the transport-friendly projection of a generated plan.
type MealPlanDTO struct {
	ID            uuid.UUID
	Version       int64
	HouseholdID   uuid.UUID
	WeekOf        time.Time
	Status        planning.PlanStatus
	Outcome       planning.PlanOutcome
	Annotations   []planning.PlanAnnotation
	Slots         []SlotDTO
	EstimatedCost float64
	Currency      string
	InputHash     string
	Reused        bool // true when an unchanged input hash returned the stored plan
	ShoppingList  *ShoppingListDTO
}

// SlotDTO is one slot of a plan, assigned or flagged.
type SlotDTO struct {
	Day         int
	Meal        planning.MealType
	RecipeID    uuid.UUID
	RecipeTitle string
	Status      planning.SlotStatus
	Flag        planning.SlotFlag
}

// ShoppingListDTO is the aggregated, pantry-netted shopping list.
type ShoppingListDTO struct {
	Lines          []ShoppingLineDTO
	EstimatedTotal float64
	Currency       string
}

// ShoppingLineDTO is one netted ingredient line.
type ShoppingLineDTO struct {
	IngredientID   uuid.UUID
	IngredientSlug string
	Required       float64
	ToBuy          float64
	Unit           planning.MeasurementUnit
	EstimatedPrice float64
}
