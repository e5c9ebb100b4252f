package gorm

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mealsmith/v1/internal/domain/planning"
	"github.com/mealsmith/v1/internal/ports/outbound"
	apperrors "github.com/mealsmith/v1/pkg/errors"
)

// CatalogRepository is the GORM implementation of the read-side repositories
// feeding a generation run: catalog, preferences, pantry and ratings. They
// share one adapter because they share a snapshot database.
type CatalogRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewCatalogRepository creates a new GORM catalog repository.
func NewCatalogRepository(db *gorm.DB, logger *zap.Logger) *CatalogRepository {
	return &CatalogRepository{
		db:     db,
		logger: logger.Named("gorm-catalog-repository"),
	}
}

// GetAdmissibleCatalog loads every candidate recipe for the household.
// Hard-constraint filtering happens in the domain, not in SQL, so the same
// filter runs identically in tests and in production.
func (r *CatalogRepository) GetAdmissibleCatalog(ctx context.Context, householdID uuid.UUID) ([]planning.Recipe, error) {
	var models []RecipeModel
	if err := r.db.WithContext(ctx).Order("id").Find(&models).Error; err != nil {
		return nil, apperrors.NewDatabaseError("load catalog", err)
	}

	recipes := make([]planning.Recipe, 0, len(models))
	for i := range models {
		recipe, err := recipeToDomain(&models[i])
		if err != nil {
			r.logger.Warn("Skipping unreadable catalog recipe",
				zap.String("recipe_id", models[i].ID.String()),
				zap.Error(err))
			continue
		}
		recipes = append(recipes, recipe)
	}
	return recipes, nil
}

// Version returns the current catalog snapshot version.
func (r *CatalogRepository) Version(ctx context.Context) (string, error) {
	var model CatalogVersionModel
	err := r.db.WithContext(ctx).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", apperrors.NewDatabaseError("load catalog version", err)
	}
	return model.Version, nil
}

// GetPreferences loads the household's preference snapshot.
func (r *CatalogRepository) GetPreferences(ctx context.Context, householdID uuid.UUID) (planning.Preferences, error) {
	var model PreferencesModel
	err := r.db.WithContext(ctx).First(&model, "household_id = ?", householdID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// A household without a stored snapshot plans unconstrained.
			return planning.Preferences{HouseholdID: householdID}, nil
		}
		return planning.Preferences{}, apperrors.NewDatabaseError("load preferences", err)
	}
	return preferencesToDomain(&model)
}

// GetPantry loads the household's on-hand quantities.
func (r *CatalogRepository) GetPantry(ctx context.Context, householdID uuid.UUID) ([]planning.PantryItem, error) {
	var models []PantryItemModel
	err := r.db.WithContext(ctx).
		Where("household_id = ?", householdID).
		Order("ingredient_slug").
		Find(&models).Error
	if err != nil {
		return nil, apperrors.NewDatabaseError("load pantry", err)
	}

	items := make([]planning.PantryItem, 0, len(models))
	for i := range models {
		items = append(items, pantryItemToDomain(&models[i]))
	}
	return items, nil
}

// GetRatings loads the household's historical recipe ratings.
func (r *CatalogRepository) GetRatings(ctx context.Context, householdID uuid.UUID) ([]planning.Rating, error) {
	var models []RatingModel
	err := r.db.WithContext(ctx).
		Where("household_id = ?", householdID).
		Order("rated_at").
		Find(&models).Error
	if err != nil {
		return nil, apperrors.NewDatabaseError("load ratings", err)
	}

	ratings := make([]planning.Rating, 0, len(models))
	for i := range models {
		ratings = append(ratings, ratingToDomain(&models[i]))
	}
	return ratings, nil
}

// compile-time interface checks
var (
	_ outbound.CatalogRepository    = (*CatalogRepository)(nil)
	_ outbound.PreferenceRepository = (*CatalogRepository)(nil)
	_ outbound.PantryRepository     = (*CatalogRepository)(nil)
	_ outbound.RatingRepository     = (*CatalogRepository)(nil)
)
