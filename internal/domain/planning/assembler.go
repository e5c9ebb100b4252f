package planning

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// PlanAssembler converts a completed (or partial) selection into the
// persisted-shape MealPlan plus its aggregated shopping list, netting out
// pantry on-hand quantities.
type PlanAssembler struct {
	budgetTolerance float64
}

// NewPlanAssembler creates an assembler. Tolerance is the fraction by which
// the plan total may exceed the weekly budget before the plan is annotated
// BudgetInfeasible.
func NewPlanAssembler(budgetTolerance float64) *PlanAssembler {
	return &PlanAssembler{budgetTolerance: budgetTolerance}
}

// aggregateLine accumulates one ingredient's requirement across the week.
// Quantities are held in the unit of the first line seen for the ingredient;
// later lines and pantry quantities convert into it.
type aggregateLine struct {
	ingredientID uuid.UUID
	slug         string
	required     float64
	unit         MeasurementUnit
	unitCost     float64
}

// Assemble builds the MealPlan and ShoppingList from a selection. Flagged
// slots are carried through as explicit gaps; they are never filled with a
// placeholder recipe. Incompatible units fail the affected aggregation with a
// *UnitConversionError rather than producing a wrong total.
func (a *PlanAssembler) Assemble(
	sel Selection,
	prefs Preferences,
	pantry []PantryItem,
	weekOf time.Time,
	inputHash string,
) (*MealPlan, *ShoppingList, error) {
	assignments := make([]SlotAssignment, 0, len(sel.Slots))
	aggregates := make(map[uuid.UUID]*aggregateLine)

	for _, slot := range sel.Slots {
		assignment := SlotAssignment{
			Slot:   slot.Slot,
			Status: slot.Status,
			Flag:   slot.Flag,
			Score:  slot.Score,
		}
		if slot.Status == SlotStatusAssigned {
			assignment.RecipeID = slot.Recipe.ID
			assignment.RecipeTitle = slot.Recipe.Title

			for _, line := range slot.Recipe.Lines {
				agg, ok := aggregates[line.IngredientID]
				if !ok {
					aggregates[line.IngredientID] = &aggregateLine{
						ingredientID: line.IngredientID,
						slug:         line.IngredientSlug,
						required:     line.Quantity,
						unit:         line.Unit,
						unitCost:     line.UnitCost,
					}
					continue
				}
				qty, err := ConvertQuantity(line.IngredientSlug, line.Quantity, line.Unit, agg.unit)
				if err != nil {
					return nil, nil, err
				}
				agg.required += qty
			}
		}
		assignments = append(assignments, assignment)
	}

	plan, err := NewMealPlan(prefs.HouseholdID, weekOf, inputHash, assignments, sel.Outcome, sel.TotalCost, prefs.Currency)
	if err != nil {
		return nil, nil, err
	}

	if prefs.WeeklyBudget > 0 && sel.TotalCost > prefs.WeeklyBudget*(1+a.budgetTolerance) {
		plan.Annotate(AnnotationBudgetInfeasible)
	}

	list, err := a.buildShoppingList(plan.ID(), aggregates, pantry, prefs.Currency)
	if err != nil {
		return nil, nil, err
	}

	return plan, list, nil
}

// buildShoppingList nets aggregated requirements against pantry on-hand
// quantities. The subtraction is capped at the requirement so line quantities
// are never negative.
func (a *PlanAssembler) buildShoppingList(
	planID uuid.UUID,
	aggregates map[uuid.UUID]*aggregateLine,
	pantry []PantryItem,
	currency string,
) (*ShoppingList, error) {
	onHand := make(map[uuid.UUID]PantryItem, len(pantry))
	for _, item := range pantry {
		onHand[item.IngredientID] = item
	}

	lines := make([]ShoppingLine, 0, len(aggregates))
	for id, agg := range aggregates {
		var available float64
		if item, ok := onHand[id]; ok {
			qty, err := ConvertQuantity(agg.slug, item.Quantity, item.Unit, agg.unit)
			if err != nil {
				return nil, err
			}
			available = qty
		}
		if available > agg.required {
			available = agg.required
		}

		toBuy := agg.required - available
		lines = append(lines, ShoppingLine{
			IngredientID:   agg.ingredientID,
			IngredientSlug: agg.slug,
			Required:       agg.required,
			OnHand:         available,
			ToBuy:          toBuy,
			Unit:           agg.unit,
			EstimatedPrice: toBuy * agg.unitCost,
		})
	}

	sort.Slice(lines, func(i, j int) bool { return lines[i].IngredientSlug < lines[j].IngredientSlug })

	list := &ShoppingList{PlanID: planID, Lines: lines, Currency: currency}
	for _, line := range lines {
		list.EstimatedTotal += line.EstimatedPrice
	}
	return list, nil
}
