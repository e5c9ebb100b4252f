// Package memory provides in-memory adapters for every outbound port. They
// back unit tests and local development where neither Postgres nor Redis is
// available.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mealsmith/v1/internal/domain/planning"
	"github.com/mealsmith/v1/internal/ports/outbound"
)

// Store holds all planner data in process memory. One Store instance serves
// every repository port.
type Store struct {
	mu sync.RWMutex

	recipes        []planning.Recipe
	catalogVersion string
	preferences    map[uuid.UUID]planning.Preferences
	pantry         map[uuid.UUID][]planning.PantryItem
	ratings        map[uuid.UUID][]planning.Rating

	plans map[uuid.UUID]*planning.MealPlan
	lists map[uuid.UUID]*planning.ShoppingList

	records map[string]outbound.GenerationRecord
	locks   map[string]time.Time
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		preferences: make(map[uuid.UUID]planning.Preferences),
		pantry:      make(map[uuid.UUID][]planning.PantryItem),
		ratings:     make(map[uuid.UUID][]planning.Rating),
		plans:       make(map[uuid.UUID]*planning.MealPlan),
		lists:       make(map[uuid.UUID]*planning.ShoppingList),
		records:     make(map[string]outbound.GenerationRecord),
		locks:       make(map[string]time.Time),
	}
}

// SeedCatalog replaces the recipe catalog and bumps its version.
func (s *Store) SeedCatalog(recipes []planning.Recipe, version string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recipes = append([]planning.Recipe(nil), recipes...)
	s.catalogVersion = version
}

// SeedPreferences stores a household preference snapshot.
func (s *Store) SeedPreferences(prefs planning.Preferences) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.preferences[prefs.HouseholdID] = prefs
}

// SeedPantry stores a household's pantry items.
func (s *Store) SeedPantry(householdID uuid.UUID, items []planning.PantryItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pantry[householdID] = append([]planning.PantryItem(nil), items...)
}

// SeedRatings stores a household's recipe ratings.
func (s *Store) SeedRatings(householdID uuid.UUID, ratings []planning.Rating) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ratings[householdID] = append([]planning.Rating(nil), ratings...)
}

// GetAdmissibleCatalog returns the seeded catalog.
func (s *Store) GetAdmissibleCatalog(ctx context.Context, householdID uuid.UUID) ([]planning.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]planning.Recipe(nil), s.recipes...), nil
}

// Version returns the seeded catalog version.
func (s *Store) Version(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalogVersion, nil
}

// GetPreferences returns the household's snapshot; an unseeded household
// plans unconstrained.
func (s *Store) GetPreferences(ctx context.Context, householdID uuid.UUID) (planning.Preferences, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if prefs, ok := s.preferences[householdID]; ok {
		return prefs, nil
	}
	return planning.Preferences{HouseholdID: householdID}, nil
}

// GetPantry returns the household's pantry items.
func (s *Store) GetPantry(ctx context.Context, householdID uuid.UUID) ([]planning.PantryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]planning.PantryItem(nil), s.pantry[householdID]...), nil
}

// GetRatings returns the household's ratings.
func (s *Store) GetRatings(ctx context.Context, householdID uuid.UUID) ([]planning.Rating, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]planning.Rating(nil), s.ratings[householdID]...), nil
}

// Save stores a plan and its shopping list.
func (s *Store) Save(ctx context.Context, plan *planning.MealPlan, list *planning.ShoppingList) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plans[plan.ID()] = plan
	if list != nil {
		s.lists[plan.ID()] = list
	}
	return plan.ID(), nil
}

// FindByID returns the stored plan with the given id, or nil.
func (s *Store) FindByID(ctx context.Context, id uuid.UUID) (*planning.MealPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.plans[id], nil
}

// FindLatestByWeek returns the highest stored version for the key, or nil.
func (s *Store) FindLatestByWeek(ctx context.Context, householdID uuid.UUID, weekOf time.Time) (*planning.MealPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest *planning.MealPlan
	for _, plan := range s.plans {
		if plan.HouseholdID() != householdID || !plan.WeekOf().Equal(weekOf) {
			continue
		}
		if latest == nil || plan.Version() > latest.Version() {
			latest = plan
		}
	}
	return latest, nil
}

// FindShoppingList returns the stored list for a plan, or nil.
func (s *Store) FindShoppingList(ctx context.Context, planID uuid.UUID) (*planning.ShoppingList, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lists[planID], nil
}

// Get returns the idempotency record for the key, or nil.
func (s *Store) Get(ctx context.Context, key outbound.GenerationKey) (*outbound.GenerationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if record, ok := s.records[key.String()]; ok {
		return &record, nil
	}
	return nil, nil
}

// Put stores the idempotency record for a completed run.
func (s *Store) Put(ctx context.Context, key outbound.GenerationKey, record outbound.GenerationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[key.String()] = record
	return nil
}

// AcquireLock takes the per-key lock unless another holder's lock is still
// live.
func (s *Store) AcquireLock(ctx context.Context, key outbound.GenerationKey, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if expiry, held := s.locks[key.String()]; held && time.Now().Before(expiry) {
		return false, nil
	}
	s.locks[key.String()] = time.Now().Add(ttl)
	return true, nil
}

// ReleaseLock releases the per-key lock.
func (s *Store) ReleaseLock(ctx context.Context, key outbound.GenerationKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.locks, key.String())
	return nil
}

// compile-time interface checks
var (
	_ outbound.CatalogRepository    = (*Store)(nil)
	_ outbound.PreferenceRepository = (*Store)(nil)
	_ outbound.PantryRepository     = (*Store)(nil)
	_ outbound.RatingRepository     = (*Store)(nil)
	_ outbound.PlanRepository       = (*Store)(nil)
	_ outbound.GenerationStore      = (*Store)(nil)
)
