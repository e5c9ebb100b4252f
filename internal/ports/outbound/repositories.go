// Package outbound defines the interfaces for outbound ports (secondary/driven
// adapters). The planner core depends only on these read-only data-access and
// persistence contracts, never on a concrete adapter.
package outbound

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mealsmith/v1/internal/domain/planning"
)

// CatalogRepository reads the candidate recipe catalog for a household.
// Recipes arrive with macro references already resolved and cached upstream.
type CatalogRepository interface {
	GetAdmissibleCatalog(ctx context.Context, householdID uuid.UUID) ([]planning.Recipe, error)

	// Version identifies the catalog snapshot for input hashing.
	Version(ctx context.Context) (string, error)
}

// PreferenceRepository reads a household's preference snapshot.
type PreferenceRepository interface {
	GetPreferences(ctx context.Context, householdID uuid.UUID) (planning.Preferences, error)
}

// PantryRepository reads a household's on-hand quantities. The planner never
// writes back.
type PantryRepository interface {
	GetPantry(ctx context.Context, householdID uuid.UUID) ([]planning.PantryItem, error)
}

// RatingRepository reads a household's historical recipe ratings.
type RatingRepository interface {
	GetRatings(ctx context.Context, householdID uuid.UUID) ([]planning.Rating, error)
}

// PlanRepository persists generated plans and their derived shopping lists.
// The Find methods return (nil, nil) when nothing matches; errors are
// reserved for storage failures. Callers decide whether missing is notable.
type PlanRepository interface {
	Save(ctx context.Context, plan *planning.MealPlan, list *planning.ShoppingList) (uuid.UUID, error)
	FindByID(ctx context.Context, id uuid.UUID) (*planning.MealPlan, error)

	// FindLatestByWeek returns the highest version for the key, or nil.
	FindLatestByWeek(ctx context.Context, householdID uuid.UUID, weekOf time.Time) (*planning.MealPlan, error)

	FindShoppingList(ctx context.Context, planID uuid.UUID) (*planning.ShoppingList, error)
}

// GenerationKey identifies one idempotent generation unit.
type GenerationKey struct {
	HouseholdID uuid.UUID
	WeekOf      time.Time
}

// String renders the key in the form used for locks and store records.
func (k GenerationKey) String() string {
	return k.HouseholdID.String() + ":" + k.WeekOf.Format("2006-01-02")
}

// GenerationRecord is the durable idempotency record for a completed run.
type GenerationRecord struct {
	InputHash   string
	PlanID      uuid.UUID
	CompletedAt time.Time
}

// GenerationStore is the durable backing of the RegenerationGuard: idempotency
// records plus per-key mutual exclusion across processes.
type GenerationStore interface {
	Get(ctx context.Context, key GenerationKey) (*GenerationRecord, error)
	Put(ctx context.Context, key GenerationKey, record GenerationRecord) error

	// AcquireLock returns true when the caller now holds the key's lock.
	// The lock expires after ttl if not released.
	AcquireLock(ctx context.Context, key GenerationKey, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key GenerationKey) error
}

// MetricsRecorder receives planner outcome observations.
type MetricsRecorder interface {
	ObserveGeneration(outcome string, duration time.Duration)
	GenerationStarted()
	GenerationFinished()
}
