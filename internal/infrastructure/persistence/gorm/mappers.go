package gorm

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/mealsmith/v1/internal/domain/planning"
)

// planToModel converts a domain plan to its persistence model.
func planToModel(plan *planning.MealPlan) (*MealPlanModel, error) {
	records := make([]slotAssignmentRecord, 0, len(plan.Assignments()))
	for _, a := range plan.Assignments() {
		rec := slotAssignmentRecord{
			Day:    a.Slot.Day,
			Meal:   string(a.Slot.Meal),
			Status: string(a.Status),
			Flag:   string(a.Flag),
			Score:  a.Score,
		}
		if a.RecipeID != uuid.Nil {
			rec.RecipeID = a.RecipeID.String()
			rec.RecipeTitle = a.RecipeTitle
		}
		records = append(records, rec)
	}

	assignments, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("marshaling slot assignments: %w", err)
	}

	annotations := make(StringSlice, 0, len(plan.Annotations()))
	for _, a := range plan.Annotations() {
		annotations = append(annotations, string(a))
	}

	return &MealPlanModel{
		ID:            plan.ID(),
		Version:       plan.Version(),
		HouseholdID:   plan.HouseholdID(),
		WeekOf:        plan.WeekOf(),
		Assignments:   assignments,
		Annotations:   annotations,
		Outcome:       string(plan.Outcome()),
		EstimatedCost: plan.EstimatedCost(),
		Currency:      plan.Currency(),
		Status:        string(plan.Status()),
		InputHash:     plan.InputHash(),
		ApprovedAt:    plan.ApprovedAt(),
		CreatedAt:     plan.CreatedAt(),
		UpdatedAt:     plan.UpdatedAt(),
	}, nil
}

// planToDomain reconstructs a domain plan from its persistence model.
func planToDomain(model *MealPlanModel) (*planning.MealPlan, error) {
	var records []slotAssignmentRecord
	if err := json.Unmarshal(model.Assignments, &records); err != nil {
		return nil, fmt.Errorf("unmarshaling slot assignments: %w", err)
	}

	assignments := make([]planning.SlotAssignment, 0, len(records))
	for _, rec := range records {
		a := planning.SlotAssignment{
			Slot:        planning.MealSlot{Day: rec.Day, Meal: planning.MealType(rec.Meal)},
			RecipeTitle: rec.RecipeTitle,
			Status:      planning.SlotStatus(rec.Status),
			Flag:        planning.SlotFlag(rec.Flag),
			Score:       rec.Score,
		}
		if rec.RecipeID != "" {
			id, err := uuid.Parse(rec.RecipeID)
			if err != nil {
				return nil, fmt.Errorf("parsing assigned recipe id: %w", err)
			}
			a.RecipeID = id
		}
		assignments = append(assignments, a)
	}

	annotations := make([]planning.PlanAnnotation, 0, len(model.Annotations))
	for _, a := range model.Annotations {
		annotations = append(annotations, planning.PlanAnnotation(a))
	}

	return planning.Rehydrate(
		model.ID,
		model.Version,
		model.HouseholdID,
		model.WeekOf,
		assignments,
		annotations,
		planning.PlanOutcome(model.Outcome),
		model.EstimatedCost,
		model.Currency,
		planning.PlanStatus(model.Status),
		model.InputHash,
		model.ApprovedAt,
		model.CreatedAt,
		model.UpdatedAt,
	), nil
}

// shoppingListToModel converts a derived list to its persistence model.
func shoppingListToModel(list *planning.ShoppingList) (*ShoppingListModel, error) {
	records := make([]shoppingLineRecord, 0, len(list.Lines))
	for _, l := range list.Lines {
		records = append(records, shoppingLineRecord{
			IngredientID:   l.IngredientID.String(),
			IngredientSlug: l.IngredientSlug,
			Required:       l.Required,
			OnHand:         l.OnHand,
			ToBuy:          l.ToBuy,
			Unit:           string(l.Unit),
			EstimatedPrice: l.EstimatedPrice,
		})
	}

	lines, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("marshaling shopping lines: %w", err)
	}

	return &ShoppingListModel{
		PlanID:         list.PlanID,
		Lines:          lines,
		EstimatedTotal: list.EstimatedTotal,
		Currency:       list.Currency,
	}, nil
}

// shoppingListToDomain reconstructs a derived list from its persistence model.
func shoppingListToDomain(model *ShoppingListModel) (*planning.ShoppingList, error) {
	var records []shoppingLineRecord
	if err := json.Unmarshal(model.Lines, &records); err != nil {
		return nil, fmt.Errorf("unmarshaling shopping lines: %w", err)
	}

	lines := make([]planning.ShoppingLine, 0, len(records))
	for _, rec := range records {
		id, err := uuid.Parse(rec.IngredientID)
		if err != nil {
			return nil, fmt.Errorf("parsing shopping line ingredient id: %w", err)
		}
		lines = append(lines, planning.ShoppingLine{
			IngredientID:   id,
			IngredientSlug: rec.IngredientSlug,
			Required:       rec.Required,
			OnHand:         rec.OnHand,
			ToBuy:          rec.ToBuy,
			Unit:           planning.MeasurementUnit(rec.Unit),
			EstimatedPrice: rec.EstimatedPrice,
		})
	}

	return &planning.ShoppingList{
		PlanID:         model.PlanID,
		Lines:          lines,
		EstimatedTotal: model.EstimatedTotal,
		Currency:       model.Currency,
	}, nil
}

// recipeToDomain reconstructs a catalog recipe from its persistence model.
func recipeToDomain(model *RecipeModel) (planning.Recipe, error) {
	var records []recipeLineRecord
	if err := json.Unmarshal(model.Lines, &records); err != nil {
		return planning.Recipe{}, fmt.Errorf("unmarshaling recipe lines: %w", err)
	}

	lines := make([]planning.RecipeLine, 0, len(records))
	for _, rec := range records {
		id, err := uuid.Parse(rec.IngredientID)
		if err != nil {
			return planning.Recipe{}, fmt.Errorf("parsing recipe line ingredient id: %w", err)
		}
		lines = append(lines, planning.RecipeLine{
			IngredientID:   id,
			IngredientSlug: rec.IngredientSlug,
			IngredientTags: rec.IngredientTags,
			Quantity:       rec.Quantity,
			Unit:           planning.MeasurementUnit(rec.Unit),
			UnitCost:       rec.UnitCost,
		})
	}

	courses := make([]planning.MealType, 0, len(model.Courses))
	for _, c := range model.Courses {
		courses = append(courses, planning.MealType(c))
	}

	return planning.Recipe{
		ID:            model.ID,
		Title:         model.Title,
		Lines:         lines,
		Tags:          model.Tags,
		Courses:       courses,
		EstimatedCost: model.EstimatedCost,
		Macros: planning.MacroEstimate{
			Calories:   model.MacroCalories,
			Protein:    model.MacroProtein,
			Carbs:      model.MacroCarbs,
			Fat:        model.MacroFat,
			Confidence: model.MacroConfidence,
		},
		Difficulty: planning.DifficultyLevel(model.Difficulty),
	}, nil
}

// preferencesToDomain reconstructs a preference snapshot from its model.
func preferencesToDomain(model *PreferencesModel) (planning.Preferences, error) {
	weights := map[string]float64{}
	if len(model.CuisineWeights) > 0 {
		if err := json.Unmarshal(model.CuisineWeights, &weights); err != nil {
			return planning.Preferences{}, fmt.Errorf("unmarshaling cuisine weights: %w", err)
		}
	}

	return planning.Preferences{
		HouseholdID:         model.HouseholdID,
		DietTags:            model.DietTags,
		AllergyTags:         model.AllergyTags,
		DislikedIngredients: model.DislikedIngredients,
		WeeklyBudget:        model.WeeklyBudget,
		Currency:            model.Currency,
		CuisineWeights:      weights,
		GoalTags:            model.GoalTags,
	}, nil
}

// pantryItemToDomain reconstructs a pantry entry from its model.
func pantryItemToDomain(model *PantryItemModel) planning.PantryItem {
	return planning.PantryItem{
		IngredientID:   model.IngredientID,
		IngredientSlug: model.IngredientSlug,
		Quantity:       model.Quantity,
		Unit:           planning.MeasurementUnit(model.Unit),
	}
}

// ratingToDomain reconstructs a rating from its model.
func ratingToDomain(model *RatingModel) planning.Rating {
	return planning.Rating{
		RecipeID: model.RecipeID,
		Score:    model.Score,
		RatedAt:  model.RatedAt,
	}
}
