package planning

import (
	"time"

	"github.com/google/uuid"
)

// Domain events raised by the MealPlan aggregate.

// PlanGeneratedEvent is raised when a generation run produces a plan.
type PlanGeneratedEvent struct {
	PlanID      uuid.UUID
	HouseholdID uuid.UUID
	WeekOf      time.Time
	Outcome     PlanOutcome
	InputHash   string
	GeneratedAt time.Time
}

func (e PlanGeneratedEvent) EventName() string     { return "planning.plan_generated" }
func (e PlanGeneratedEvent) OccurredAt() time.Time { return e.GeneratedAt }

// PlanApprovedEvent is raised when a household freezes a draft plan.
type PlanApprovedEvent struct {
	PlanID      uuid.UUID
	HouseholdID uuid.UUID
	ApprovedAt  time.Time
}

func (e PlanApprovedEvent) EventName() string     { return "planning.plan_approved" }
func (e PlanApprovedEvent) OccurredAt() time.Time { return e.ApprovedAt }

// PlanRegeneratedEvent is raised when regeneration of an approved plan
// produces a new version instead of mutating the frozen one.
type PlanRegeneratedEvent struct {
	PlanID         uuid.UUID
	PreviousPlanID uuid.UUID
	Version        int64
	RegeneratedAt  time.Time
}

func (e PlanRegeneratedEvent) EventName() string     { return "planning.plan_regenerated" }
func (e PlanRegeneratedEvent) OccurredAt() time.Time { return e.RegeneratedAt }
