// Package gorm provides GORM model definitions for the planner.
package gorm

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MealPlanModel represents the GORM model for generated plans. One row per
// plan version; the (household, week, version) triple is unique.
type MealPlanModel struct {
	ID          uuid.UUID `gorm:"type:char(36);primaryKey"`
	Version     int64     `gorm:"default:1;uniqueIndex:idx_plan_key"`
	HouseholdID uuid.UUID `gorm:"type:char(36);not null;uniqueIndex:idx_plan_key;index"`
	WeekOf      time.Time `gorm:"not null;uniqueIndex:idx_plan_key;index"`

	Assignments   JSONField   `gorm:"type:json;not null"`
	Annotations   StringSlice `gorm:"type:json"`
	Outcome       string      `gorm:"type:varchar(32);not null"`
	EstimatedCost float64     `gorm:"not null;default:0"`
	Currency      string      `gorm:"type:varchar(3)"`

	Status     string     `gorm:"type:varchar(16);not null;index"`
	InputHash  string     `gorm:"type:char(64);not null;index"`
	ApprovedAt *time.Time `gorm:""`
	CreatedAt  time.Time  `gorm:"index"`
	UpdatedAt  time.Time

	ShoppingList *ShoppingListModel `gorm:"foreignKey:PlanID"`
}

// TableName returns the table name for meal plans.
func (MealPlanModel) TableName() string { return "meal_plans" }

// slotAssignmentRecord is the JSON shape of one slot inside Assignments.
type slotAssignmentRecord struct {
	Day         int     `json:"day"`
	Meal        string  `json:"meal"`
	RecipeID    string  `json:"recipe_id,omitempty"`
	RecipeTitle string  `json:"recipe_title,omitempty"`
	Status      string  `json:"status"`
	Flag        string  `json:"flag,omitempty"`
	Score       float64 `json:"score,omitempty"`
}

// ShoppingListModel represents the GORM model for derived shopping lists.
// Recomputed whenever its plan changes, never edited independently.
type ShoppingListModel struct {
	PlanID         uuid.UUID `gorm:"type:char(36);primaryKey"`
	Lines          JSONField `gorm:"type:json;not null"`
	EstimatedTotal float64   `gorm:"not null;default:0"`
	Currency       string    `gorm:"type:varchar(3)"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName returns the table name for shopping lists.
func (ShoppingListModel) TableName() string { return "shopping_lists" }

// shoppingLineRecord is the JSON shape of one line inside Lines.
type shoppingLineRecord struct {
	IngredientID   string  `json:"ingredient_id"`
	IngredientSlug string  `json:"ingredient_slug"`
	Required       float64 `json:"required"`
	OnHand         float64 `json:"on_hand"`
	ToBuy          float64 `json:"to_buy"`
	Unit           string  `json:"unit"`
	EstimatedPrice float64 `json:"estimated_price"`
}

// RecipeModel represents the GORM model for catalog recipes (read side).
type RecipeModel struct {
	ID            uuid.UUID   `gorm:"type:char(36);primaryKey"`
	Title         string      `gorm:"type:varchar(255);not null"`
	Lines         JSONField   `gorm:"type:json;not null"`
	Tags          StringSlice `gorm:"type:json"`
	Courses       StringSlice `gorm:"type:json"`
	EstimatedCost float64     `gorm:"not null;default:0"`
	Difficulty    string      `gorm:"type:varchar(20)"`

	MacroCalories   float64 `gorm:"column:macro_calories"`
	MacroProtein    float64 `gorm:"column:macro_protein"`
	MacroCarbs      float64 `gorm:"column:macro_carbs"`
	MacroFat        float64 `gorm:"column:macro_fat"`
	MacroConfidence float64 `gorm:"column:macro_confidence"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for recipes.
func (RecipeModel) TableName() string { return "recipes" }

// recipeLineRecord is the JSON shape of one line inside a recipe.
type recipeLineRecord struct {
	IngredientID   string   `json:"ingredient_id"`
	IngredientSlug string   `json:"ingredient_slug"`
	IngredientTags []string `json:"ingredient_tags,omitempty"`
	Quantity       float64  `json:"quantity"`
	Unit           string   `json:"unit"`
	UnitCost       float64  `json:"unit_cost"`
}

// PreferencesModel represents the GORM model for household preference
// snapshots.
type PreferencesModel struct {
	HouseholdID         uuid.UUID   `gorm:"type:char(36);primaryKey"`
	DietTags            StringSlice `gorm:"type:json"`
	AllergyTags         StringSlice `gorm:"type:json"`
	DislikedIngredients StringSlice `gorm:"type:json"`
	WeeklyBudget        float64     `gorm:"not null;default:0"`
	Currency            string      `gorm:"type:varchar(3)"`
	CuisineWeights      JSONField   `gorm:"type:json"`
	GoalTags            StringSlice `gorm:"type:json"`
	UpdatedAt           time.Time
}

// TableName returns the table name for preferences.
func (PreferencesModel) TableName() string { return "household_preferences" }

// PantryItemModel represents the GORM model for pantry on-hand quantities.
type PantryItemModel struct {
	HouseholdID    uuid.UUID `gorm:"type:char(36);primaryKey"`
	IngredientID   uuid.UUID `gorm:"type:char(36);primaryKey"`
	IngredientSlug string    `gorm:"type:varchar(128);not null"`
	Quantity       float64   `gorm:"not null;default:0"`
	Unit           string    `gorm:"type:varchar(16);not null"`
	UpdatedAt      time.Time
}

// TableName returns the table name for pantry items.
func (PantryItemModel) TableName() string { return "pantry_items" }

// RatingModel represents the GORM model for household recipe ratings.
type RatingModel struct {
	HouseholdID uuid.UUID `gorm:"type:char(36);primaryKey"`
	RecipeID    uuid.UUID `gorm:"type:char(36);primaryKey"`
	Score       float64   `gorm:"not null"`
	RatedAt     time.Time `gorm:"primaryKey"`
}

// TableName returns the table name for ratings.
func (RatingModel) TableName() string { return "recipe_ratings" }

// CatalogVersionModel holds the single catalog version row bumped by the
// (out of scope) catalog import pipeline.
type CatalogVersionModel struct {
	ID        int    `gorm:"primaryKey"`
	Version   string `gorm:"type:varchar(64);not null"`
	UpdatedAt time.Time
}

// TableName returns the table name for the catalog version.
func (CatalogVersionModel) TableName() string { return "catalog_version" }

// StringSlice custom type for handling string slices in JSON.
type StringSlice []string

// Scan implements the sql.Scanner interface.
func (s *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*s = StringSlice{}
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("cannot scan %T into StringSlice", value)
	}
}

// Value implements the driver.Valuer interface.
func (s StringSlice) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	b, err := json.Marshal(s)
	return string(b), err
}

// JSONField custom type for arbitrary JSON columns.
type JSONField []byte

// Scan implements the sql.Scanner interface.
func (j *JSONField) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	switch v := value.(type) {
	case []byte:
		*j = append((*j)[0:0], v...)
		return nil
	case string:
		*j = JSONField(v)
		return nil
	default:
		return fmt.Errorf("cannot scan %T into JSONField", value)
	}
}

// Value implements the driver.Valuer interface.
func (j JSONField) Value() (driver.Value, error) {
	if len(j) == 0 {
		return "null", nil
	}
	return string(j), nil
}
