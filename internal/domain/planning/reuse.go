package planning

import "github.com/google/uuid"

// ReuseGraph tracks which ingredients the week already uses and scores how
// much of a candidate's ingredient list it would share. The score rewards
// ingredient reuse across the week to minimize waste.
//
// State updates are incremental: Add and Remove are O(lines) in the affected
// recipe, and Score is O(lines) in the candidate, so the Selector can consult
// it at every step without recomputing overlap from scratch.
type ReuseGraph struct {
	// count of selected recipes using each ingredient
	selected map[uuid.UUID]int
}

// NewReuseGraph creates an empty reuse tracker.
func NewReuseGraph() *ReuseGraph {
	return &ReuseGraph{selected: make(map[uuid.UUID]int)}
}

// Add registers an assigned recipe's ingredients.
func (g *ReuseGraph) Add(r Recipe) {
	for _, line := range r.Lines {
		g.selected[line.IngredientID]++
	}
}

// Remove unregisters a recipe, supporting the Selector's swap pass.
func (g *ReuseGraph) Remove(r Recipe) {
	for _, line := range r.Lines {
		if g.selected[line.IngredientID] <= 1 {
			delete(g.selected, line.IngredientID)
			continue
		}
		g.selected[line.IngredientID]--
	}
}

// Score returns the cost-weighted share of the candidate's ingredients that
// already appear in the selected set, in [0,1]. A candidate sharing strictly
// more ingredients, all else equal, never scores lower.
func (g *ReuseGraph) Score(candidate Recipe) float64 {
	if len(candidate.Lines) == 0 {
		return 0
	}

	var total, shared float64
	for _, line := range candidate.Lines {
		weight := line.UnitCost * line.Quantity
		if weight <= 0 {
			weight = 1
		}
		total += weight
		if g.selected[line.IngredientID] > 0 {
			shared += weight
		}
	}
	if total == 0 {
		return 0
	}
	return shared / total
}
