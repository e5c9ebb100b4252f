package planning

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Weights are the named constants of the composite objective. They are
// configuration, not hidden magic numbers: callers override them per run and
// tests pin them independently.
type Weights struct {
	Rating        float64
	Reuse         float64
	Budget        float64
	Affinity      float64
	RepeatPenalty float64

	// GoalBoost is the affinity added per matching tool/skill goal tag.
	GoalBoost float64

	// RatingHalfLife controls recency weighting of historical ratings.
	RatingHalfLife time.Duration

	// MinDaysBetweenRepeats is the variety policy: a recipe reused within
	// this many days is penalized in proportion to how recent the repeat is.
	MinDaysBetweenRepeats int

	// BudgetTolerance is the fraction by which the plan total may exceed the
	// weekly budget before the plan is annotated BudgetInfeasible.
	BudgetTolerance float64
}

// DefaultWeights returns the documented default objective weighting.
func DefaultWeights() Weights {
	return Weights{
		Rating:                0.30,
		Reuse:                 0.25,
		Budget:                0.20,
		Affinity:              0.15,
		RepeatPenalty:         0.35,
		GoalBoost:             0.20,
		RatingHalfLife:        28 * 24 * time.Hour,
		MinDaysBetweenRepeats: 3,
		BudgetTolerance:       0.10,
	}
}

// PlanContext is the partial-plan state a candidate is scored against.
type PlanContext struct {
	// Spent is the cumulative estimated cost of recipes assigned so far.
	Spent float64

	// Day is the day offset (0-6) of the slot being filled.
	Day int

	// LastUsed maps recipe id to the most recent day it was assigned.
	LastUsed map[uuid.UUID]int
}

// ScoringEngine computes the composite score of a candidate recipe in the
// context of a partially built plan. Given identical inputs it is
// deterministic: the reference time is fixed at construction.
type ScoringEngine struct {
	weights Weights
	prefs   Preferences
	reuse   *ReuseGraph
	ratings map[uuid.UUID]float64 // normalized recency-weighted rating per recipe
}

// NewScoringEngine precomputes the household's rating signal against the
// supplied reference time and binds the reuse tracker shared with the
// Selector.
func NewScoringEngine(prefs Preferences, ratings []Rating, reuse *ReuseGraph, weights Weights, now time.Time) *ScoringEngine {
	e := &ScoringEngine{
		weights: weights,
		prefs:   prefs,
		reuse:   reuse,
		ratings: make(map[uuid.UUID]float64),
	}

	// Recency-weighted mean per recipe, normalized from the 0-5 scale to [0,1].
	type acc struct{ sum, weight float64 }
	byRecipe := make(map[uuid.UUID]*acc)
	halfLife := weights.RatingHalfLife
	if halfLife <= 0 {
		halfLife = DefaultWeights().RatingHalfLife
	}
	for _, r := range ratings {
		age := now.Sub(r.RatedAt)
		if age < 0 {
			age = 0
		}
		w := math.Exp2(-age.Hours() / halfLife.Hours())
		a, ok := byRecipe[r.RecipeID]
		if !ok {
			a = &acc{}
			byRecipe[r.RecipeID] = a
		}
		a.sum += clamp01(r.Score/5) * w
		a.weight += w
	}
	for id, a := range byRecipe {
		if a.weight > 0 {
			e.ratings[id] = a.sum / a.weight
		}
	}

	return e
}

// Score computes the weighted composite objective for a candidate. Soft terms
// only: a poor score never makes a recipe inadmissible.
func (e *ScoringEngine) Score(candidate Recipe, ctx PlanContext) float64 {
	return e.ScoreAgainst(e.reuse, candidate, ctx)
}

// ScoreAgainst scores a candidate against an explicit reuse tracker. The
// Selector's swap pass replays scoring against scratch state without touching
// the live graph.
func (e *ScoringEngine) ScoreAgainst(reuse *ReuseGraph, candidate Recipe, ctx PlanContext) float64 {
	score := e.weights.Rating*e.ratingTerm(candidate.ID) +
		e.weights.Reuse*reuse.Score(candidate) +
		e.weights.Budget*e.budgetTerm(candidate, ctx) +
		e.weights.Affinity*e.affinityTerm(candidate)

	return score - e.repeatTerm(candidate.ID, ctx)
}

// ratingTerm is the household's normalized rating for the recipe, neutral at
// 0.5 when the household has never rated it.
func (e *ScoringEngine) ratingTerm(recipeID uuid.UUID) float64 {
	if r, ok := e.ratings[recipeID]; ok {
		return r
	}
	return 0.5
}

// budgetTerm decreases as the projected cumulative cost approaches the weekly
// budget and bottoms out at zero once the budget is exhausted. With no budget
// configured the term is neutral.
func (e *ScoringEngine) budgetTerm(candidate Recipe, ctx PlanContext) float64 {
	if e.prefs.WeeklyBudget <= 0 {
		return 0.5
	}
	projected := ctx.Spent + candidate.EstimatedCost
	return clamp01(1 - projected/e.prefs.WeeklyBudget)
}

// affinityTerm looks up cuisine weights for the recipe's tags and adds a
// fixed boost per matching tool/skill goal tag.
func (e *ScoringEngine) affinityTerm(candidate Recipe) float64 {
	var affinity float64
	for _, tag := range candidate.Tags {
		if w, ok := e.prefs.CuisineWeights[tag]; ok && w > affinity {
			affinity = w
		}
	}
	for _, goal := range e.prefs.GoalTags {
		if hasTag(candidate.Tags, goal) {
			affinity += e.weights.GoalBoost
		}
	}
	return clamp01(affinity)
}

// repeatTerm is the variety penalty: strictly decreasing score for a recipe
// already used earlier in the week, scaled by how recently.
func (e *ScoringEngine) repeatTerm(recipeID uuid.UUID, ctx PlanContext) float64 {
	minGap := e.weights.MinDaysBetweenRepeats
	if minGap <= 0 {
		return 0
	}
	last, used := ctx.LastUsed[recipeID]
	if !used {
		return 0
	}
	gap := ctx.Day - last
	if gap >= minGap {
		return 0
	}
	return e.weights.RepeatPenalty * (1 - float64(gap)/float64(minGap))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
