package planning

import (
	"context"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// SelectorConfig bounds a selection run.
type SelectorConfig struct {
	Weights Weights

	// MaxSwapPasses bounds the local-improvement phase. Zero disables it.
	MaxSwapPasses int

	// MaxParallelScore caps concurrent candidate scoring per slot. Zero
	// means GOMAXPROCS.
	MaxParallelScore int
}

// DefaultSelectorConfig returns the documented selection defaults.
func DefaultSelectorConfig() SelectorConfig {
	return SelectorConfig{
		Weights:       DefaultWeights(),
		MaxSwapPasses: 3,
	}
}

// SlotResult is one slot's terminal state in a selection.
type SlotResult struct {
	Slot   MealSlot
	Recipe *Recipe
	Status SlotStatus
	Flag   SlotFlag
	Score  float64
}

// Selection is the Selector's output: every input slot accounted for, either
// assigned or flagged, plus the run's terminal outcome.
type Selection struct {
	Slots     []SlotResult
	Outcome   PlanOutcome
	TotalCost float64
}

// Selector iteratively builds a full weekly assignment from an admissible,
// scored pool. Slots are processed in fixed chronological order and ties break
// on the lexicographically lowest recipe id, so identical input snapshots
// always reproduce the same plan.
type Selector struct {
	cfg    SelectorConfig
	logger *zap.Logger
}

// NewSelector creates a selector with the given bounds.
func NewSelector(cfg SelectorConfig, logger *zap.Logger) *Selector {
	return &Selector{
		cfg:    cfg,
		logger: logger.Named("selector"),
	}
}

// Build assigns recipes to slots under the supplied deadline context. It never
// fails the whole run: on deadline expiry the best plan found so far is
// returned with incomplete slots flagged, and a slot with no admissible
// candidate is flagged and skipped.
func (s *Selector) Build(
	ctx context.Context,
	slots []MealSlot,
	pool []Recipe,
	prefs Preferences,
	ratings []Rating,
	now time.Time,
) Selection {
	ordered := make([]MealSlot, len(slots))
	copy(ordered, slots)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Before(ordered[j]) })

	// Stable candidate order makes the lowest-id tie-break implicit: the
	// first candidate at the best score wins.
	candidates := make([]Recipe, len(pool))
	copy(candidates, pool)
	sort.SliceStable(candidates, func(i, j int) bool {
		return strings.Compare(candidates[i].ID.String(), candidates[j].ID.String()) < 0
	})

	reuse := NewReuseGraph()
	engine := NewScoringEngine(prefs, ratings, reuse, s.cfg.Weights, now)

	results := make([]SlotResult, 0, len(ordered))
	plan := PlanContext{LastUsed: make(map[uuid.UUID]int)}
	timedOut := false

	for i, slot := range ordered {
		if ctx.Err() != nil {
			timedOut = true
			for _, remaining := range ordered[i:] {
				results = append(results, SlotResult{
					Slot:   remaining,
					Status: SlotStatusFlagged,
					Flag:   SlotFlagTimedOut,
				})
			}
			break
		}

		slotPool := courseCandidates(candidates, slot.Meal)
		if len(slotPool) == 0 {
			s.logger.Warn("no admissible candidate for slot",
				zap.Int("day", slot.Day),
				zap.String("meal", string(slot.Meal)),
			)
			results = append(results, SlotResult{
				Slot:   slot,
				Status: SlotStatusFlagged,
				Flag:   SlotFlagInsufficientCandidates,
			})
			continue
		}

		plan.Day = slot.Day
		best, score := s.pickBest(ctx, engine, slotPool, plan)

		reuse.Add(*best)
		plan.Spent += best.EstimatedCost
		plan.LastUsed[best.ID] = slot.Day

		results = append(results, SlotResult{
			Slot:   slot,
			Recipe: best,
			Status: SlotStatusAssigned,
			Score:  score,
		})
	}

	if !timedOut && s.cfg.MaxSwapPasses > 0 {
		s.improve(ctx, engine, results)
	}

	sel := Selection{Slots: results}
	flagged := 0
	for _, r := range results {
		if r.Status == SlotStatusAssigned {
			sel.TotalCost += r.Recipe.EstimatedCost
		} else {
			flagged++
		}
	}
	switch {
	case timedOut:
		sel.Outcome = OutcomeTimedOut
	case flagged > 0:
		sel.Outcome = OutcomePartiallyCompleted
	default:
		sel.Outcome = OutcomeCompleted
	}

	s.logger.Info("selection finished",
		zap.String("outcome", string(sel.Outcome)),
		zap.Int("slots", len(results)),
		zap.Int("flagged", flagged),
		zap.Float64("total_cost", sel.TotalCost),
	)

	return sel
}

// pickBest scores every candidate for the current slot, in parallel, and
// returns the highest scorer. Ties resolve to the candidate earliest in the
// id-sorted pool.
func (s *Selector) pickBest(ctx context.Context, engine *ScoringEngine, slotPool []Recipe, plan PlanContext) (*Recipe, float64) {
	scores := make([]float64, len(slotPool))

	limit := s.cfg.MaxParallelScore
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	// Candidate scoring is read-only against the shared reuse and rating
	// state, so it parallelizes without coordination.
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i := range slotPool {
		g.Go(func() error {
			scores[i] = engine.Score(slotPool[i], plan)
			return nil
		})
	}
	_ = g.Wait()

	bestIdx := 0
	for i := 1; i < len(slotPool); i++ {
		if scores[i] > scores[bestIdx] {
			bestIdx = i
		}
	}
	return &slotPool[bestIdx], scores[bestIdx]
}

// improve runs a bounded local-improvement pass: swap pairs of assigned
// recipes whenever the swap strictly improves the replayed total score, until
// no improving swap exists or the pass budget is spent.
func (s *Selector) improve(ctx context.Context, engine *ScoringEngine, results []SlotResult) {
	current := s.replayTotal(engine, results)

	for pass := 0; pass < s.cfg.MaxSwapPasses; pass++ {
		improved := false
		for i := 0; i < len(results); i++ {
			if results[i].Status != SlotStatusAssigned {
				continue
			}
			for j := i + 1; j < len(results); j++ {
				if ctx.Err() != nil {
					return
				}
				if results[j].Status != SlotStatusAssigned {
					continue
				}
				if !results[i].Recipe.SuitsCourse(results[j].Slot.Meal) ||
					!results[j].Recipe.SuitsCourse(results[i].Slot.Meal) {
					continue
				}

				results[i].Recipe, results[j].Recipe = results[j].Recipe, results[i].Recipe
				swapped := s.replayTotal(engine, results)
				if swapped > current {
					current = swapped
					improved = true
					continue
				}
				results[i].Recipe, results[j].Recipe = results[j].Recipe, results[i].Recipe
			}
		}
		if !improved {
			break
		}
	}

	// Recompute per-slot scores so the persisted assignment reflects the
	// final ordering.
	s.replayInto(engine, results)
}

// replayTotal rescores the assignment chronologically against scratch state.
func (s *Selector) replayTotal(engine *ScoringEngine, results []SlotResult) float64 {
	reuse := NewReuseGraph()
	plan := PlanContext{LastUsed: make(map[uuid.UUID]int)}

	var total float64
	for _, r := range results {
		if r.Status != SlotStatusAssigned {
			continue
		}
		plan.Day = r.Slot.Day
		total += engine.ScoreAgainst(reuse, *r.Recipe, plan)
		reuse.Add(*r.Recipe)
		plan.Spent += r.Recipe.EstimatedCost
		plan.LastUsed[r.Recipe.ID] = r.Slot.Day
	}
	return total
}

// replayInto rewrites each assigned slot's score from a fresh replay.
func (s *Selector) replayInto(engine *ScoringEngine, results []SlotResult) {
	reuse := NewReuseGraph()
	plan := PlanContext{LastUsed: make(map[uuid.UUID]int)}

	for i := range results {
		if results[i].Status != SlotStatusAssigned {
			continue
		}
		plan.Day = results[i].Slot.Day
		results[i].Score = engine.ScoreAgainst(reuse, *results[i].Recipe, plan)
		reuse.Add(*results[i].Recipe)
		plan.Spent += results[i].Recipe.EstimatedCost
		plan.LastUsed[results[i].Recipe.ID] = results[i].Slot.Day
	}
}

// courseCandidates narrows the pool to recipes suiting the slot's meal type.
func courseCandidates(pool []Recipe, meal MealType) []Recipe {
	out := make([]Recipe, 0, len(pool))
	for _, r := range pool {
		if r.SuitsCourse(meal) {
			out = append(out, r)
		}
	}
	return out
}
