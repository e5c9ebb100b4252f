package planner

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/mealsmith/v1/internal/domain/planning"
)

// inputSnapshot is the canonical form hashed for idempotency. Every slice is
// sorted so field order never depends on repository iteration order; map keys
// are sorted by the JSON encoder.
type inputSnapshot struct {
	HouseholdID    string             `json:"household_id"`
	WeekOf         string             `json:"week_of"`
	DietTags       []string           `json:"diet_tags"`
	AllergyTags    []string           `json:"allergy_tags"`
	Disliked       []string           `json:"disliked"`
	WeeklyBudget   float64            `json:"weekly_budget"`
	Currency       string             `json:"currency"`
	CuisineWeights map[string]float64 `json:"cuisine_weights"`
	GoalTags       []string           `json:"goal_tags"`
	Pantry         []pantryEntry      `json:"pantry"`
	CatalogVersion string             `json:"catalog_version"`
	Ratings        []ratingEntry      `json:"ratings"`
}

type pantryEntry struct {
	Slug     string  `json:"slug"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}

type ratingEntry struct {
	RecipeID string  `json:"recipe_id"`
	Score    float64 `json:"score"`
	RatedAt  int64   `json:"rated_at"`
}

// ComputeInputHash produces the stable fingerprint of a generation run's
// inputs. An unchanged hash means regeneration would reproduce the stored
// plan, so the guard can skip the run entirely.
func ComputeInputHash(
	householdID uuid.UUID,
	weekOf time.Time,
	prefs planning.Preferences,
	pantry []planning.PantryItem,
	catalogVersion string,
	ratings []planning.Rating,
) string {
	snap := inputSnapshot{
		HouseholdID:    householdID.String(),
		WeekOf:         weekOf.UTC().Format("2006-01-02"),
		DietTags:       sortedCopy(prefs.DietTags),
		AllergyTags:    sortedCopy(prefs.AllergyTags),
		Disliked:       sortedCopy(prefs.DislikedIngredients),
		WeeklyBudget:   prefs.WeeklyBudget,
		Currency:       prefs.Currency,
		CuisineWeights: prefs.CuisineWeights,
		GoalTags:       sortedCopy(prefs.GoalTags),
		CatalogVersion: catalogVersion,
	}

	snap.Pantry = make([]pantryEntry, 0, len(pantry))
	for _, item := range pantry {
		snap.Pantry = append(snap.Pantry, pantryEntry{
			Slug:     item.IngredientSlug,
			Quantity: item.Quantity,
			Unit:     string(item.Unit),
		})
	}
	sort.Slice(snap.Pantry, func(i, j int) bool { return snap.Pantry[i].Slug < snap.Pantry[j].Slug })

	snap.Ratings = make([]ratingEntry, 0, len(ratings))
	for _, r := range ratings {
		snap.Ratings = append(snap.Ratings, ratingEntry{
			RecipeID: r.RecipeID.String(),
			Score:    r.Score,
			RatedAt:  r.RatedAt.UTC().Unix(),
		})
	}
	sort.Slice(snap.Ratings, func(i, j int) bool {
		if snap.Ratings[i].RecipeID != snap.Ratings[j].RecipeID {
			return snap.Ratings[i].RecipeID < snap.Ratings[j].RecipeID
		}
		return snap.Ratings[i].RatedAt < snap.Ratings[j].RatedAt
	})

	// Marshal cannot fail for this shape.
	encoded, _ := json.Marshal(snap)
	sum := sha256.Sum256(encoded)
	return hex.EncodeToString(sum[:])
}

func sortedCopy(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	sort.Strings(out)
	return out
}
