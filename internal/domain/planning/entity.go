// Package planning contains the core domain logic for weekly meal-plan
// generation: hard-constraint filtering, ingredient-reuse scoring, slot
// selection and plan assembly.
package planning

import (
	"time"

	"github.com/google/uuid"
	"github.com/mealsmith/v1/internal/domain/shared"
)

// PlanStatus is the lifecycle status of a persisted plan. Approval is an
// external act that freezes the plan.
type PlanStatus string

const (
	PlanStatusDraft    PlanStatus = "draft"
	PlanStatusApproved PlanStatus = "approved"
)

// MealPlan is the aggregate root produced by a generation run. Every recipe
// assigned to one of its slots satisfied all hard constraints of the
// preference snapshot identified by InputHash at generation time.
type MealPlan struct {
	id          uuid.UUID
	version     int64
	householdID uuid.UUID
	weekOf      time.Time

	assignments []SlotAssignment
	annotations []PlanAnnotation
	outcome     PlanOutcome

	estimatedCost float64
	currency      string

	status     PlanStatus
	inputHash  string
	approvedAt *time.Time
	createdAt  time.Time
	updatedAt  time.Time

	events []shared.DomainEvent
}

// NewMealPlan creates a draft plan from a completed (possibly partial)
// selection. Assignments must already be in chronological slot order.
func NewMealPlan(
	householdID uuid.UUID,
	weekOf time.Time,
	inputHash string,
	assignments []SlotAssignment,
	outcome PlanOutcome,
	estimatedCost float64,
	currency string,
) (*MealPlan, error) {
	if len(assignments) == 0 {
		return nil, ErrNoSlots
	}
	if !weekOf.Equal(weekOf.Truncate(24 * time.Hour)) {
		return nil, ErrInvalidWeekOf
	}

	now := time.Now()
	plan := &MealPlan{
		id:            uuid.New(),
		version:       1,
		householdID:   householdID,
		weekOf:        weekOf,
		assignments:   assignments,
		outcome:       outcome,
		estimatedCost: estimatedCost,
		currency:      currency,
		status:        PlanStatusDraft,
		inputHash:     inputHash,
		createdAt:     now,
		updatedAt:     now,
		events:        []shared.DomainEvent{},
	}

	switch outcome {
	case OutcomePartiallyCompleted:
		plan.annotations = append(plan.annotations, AnnotationPartial)
	case OutcomeTimedOut:
		plan.annotations = append(plan.annotations, AnnotationTimedOut)
	}

	plan.addEvent(PlanGeneratedEvent{
		PlanID:      plan.id,
		HouseholdID: householdID,
		WeekOf:      weekOf,
		Outcome:     outcome,
		InputHash:   inputHash,
		GeneratedAt: now,
	})

	return plan, nil
}

// ID returns the plan's unique identifier.
func (p *MealPlan) ID() uuid.UUID { return p.id }

// Version returns the plan's version within its (household, week) key.
func (p *MealPlan) Version() int64 { return p.version }

// HouseholdID returns the owning household.
func (p *MealPlan) HouseholdID() uuid.UUID { return p.householdID }

// WeekOf returns the plan's week-of date.
func (p *MealPlan) WeekOf() time.Time { return p.weekOf }

// Assignments returns the ordered slot assignments, gaps included.
func (p *MealPlan) Assignments() []SlotAssignment { return p.assignments }

// Annotations returns whole-plan soft warnings.
func (p *MealPlan) Annotations() []PlanAnnotation { return p.annotations }

// Outcome returns the terminal state of the generation run.
func (p *MealPlan) Outcome() PlanOutcome { return p.outcome }

// EstimatedCost returns the summed estimated cost of assigned recipes.
func (p *MealPlan) EstimatedCost() float64 { return p.estimatedCost }

// Currency returns the budget currency the cost is expressed in.
func (p *MealPlan) Currency() string { return p.currency }

// Status returns the plan lifecycle status.
func (p *MealPlan) Status() PlanStatus { return p.status }

// InputHash returns the generation input hash used for idempotency.
func (p *MealPlan) InputHash() string { return p.inputHash }

// ApprovedAt returns when the plan was frozen, if it was.
func (p *MealPlan) ApprovedAt() *time.Time { return p.approvedAt }

// CreatedAt returns when the plan was created.
func (p *MealPlan) CreatedAt() time.Time { return p.createdAt }

// UpdatedAt returns when the plan was last updated.
func (p *MealPlan) UpdatedAt() time.Time { return p.updatedAt }

// FlaggedSlots returns the assignments left unresolved, in slot order.
func (p *MealPlan) FlaggedSlots() []SlotAssignment {
	var flagged []SlotAssignment
	for _, a := range p.assignments {
		if a.Status == SlotStatusFlagged {
			flagged = append(flagged, a)
		}
	}
	return flagged
}

// Annotate adds a soft warning to the plan if not already present.
func (p *MealPlan) Annotate(annotation PlanAnnotation) {
	for _, a := range p.annotations {
		if a == annotation {
			return
		}
	}
	p.annotations = append(p.annotations, annotation)
	p.updatedAt = time.Now()
}

// Approve freezes the plan. Only a draft can be approved.
func (p *MealPlan) Approve() error {
	if p.status != PlanStatusDraft {
		return ErrPlanNotDraft
	}

	now := time.Now()
	p.status = PlanStatusApproved
	p.approvedAt = &now
	p.updatedAt = now

	p.addEvent(PlanApprovedEvent{
		PlanID:      p.id,
		HouseholdID: p.householdID,
		ApprovedAt:  now,
	})

	return nil
}

// Supersede marks this draft as the successor of a previous plan for the same
// (household, week) key. Regeneration never mutates a frozen plan; an approved
// predecessor stays intact and this plan becomes the next version.
func (p *MealPlan) Supersede(prev *MealPlan) error {
	if prev == nil {
		return nil
	}
	if prev.householdID != p.householdID || !prev.weekOf.Equal(p.weekOf) {
		return ErrPlanKeyMismatch
	}

	p.version = prev.version + 1
	p.updatedAt = time.Now()

	if prev.status == PlanStatusApproved {
		p.addEvent(PlanRegeneratedEvent{
			PlanID:         p.id,
			PreviousPlanID: prev.id,
			Version:        p.version,
			RegeneratedAt:  p.updatedAt,
		})
	}

	return nil
}

// Rehydrate reconstructs a plan from persisted state. Used by persistence
// mappers only; it raises no events.
func Rehydrate(
	id uuid.UUID,
	version int64,
	householdID uuid.UUID,
	weekOf time.Time,
	assignments []SlotAssignment,
	annotations []PlanAnnotation,
	outcome PlanOutcome,
	estimatedCost float64,
	currency string,
	status PlanStatus,
	inputHash string,
	approvedAt *time.Time,
	createdAt, updatedAt time.Time,
) *MealPlan {
	return &MealPlan{
		id:            id,
		version:       version,
		householdID:   householdID,
		weekOf:        weekOf,
		assignments:   assignments,
		annotations:   annotations,
		outcome:       outcome,
		estimatedCost: estimatedCost,
		currency:      currency,
		status:        status,
		inputHash:     inputHash,
		approvedAt:    approvedAt,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
		events:        []shared.DomainEvent{},
	}
}

// addEvent adds a domain event to be dispatched.
func (p *MealPlan) addEvent(event shared.DomainEvent) {
	p.events = append(p.events, event)
}

// Events returns and clears pending domain events.
func (p *MealPlan) Events() []shared.DomainEvent {
	events := p.events
	p.events = []shared.DomainEvent{}
	return events
}
