package planning

import "errors"

// Domain errors for plan generation

var (
	// Snapshot validation errors
	ErrEmptyCatalog           = errors.New("recipe catalog snapshot is empty")
	ErrContradictorySnapshot  = errors.New("preference snapshot is contradictory")
	ErrInvalidWeekOf          = errors.New("week-of date must be a week start at midnight UTC")
	ErrNoSlots                = errors.New("slot configuration produced no meal slots")

	// Filtering conditions
	ErrInsufficientCandidates = errors.New("no admissible recipe exists after hard-constraint filtering")

	// State transition errors
	ErrPlanNotDraft    = errors.New("only a draft plan can be approved")
	ErrPlanFrozen      = errors.New("an approved plan is frozen; regeneration creates a new version")
	ErrPlanNotFound    = errors.New("meal plan not found")
	ErrPlanKeyMismatch = errors.New("plans belong to different household/week keys")

	// Assembly errors
	ErrNegativeQuantity = errors.New("shopping-list quantities must never be negative")
)
