package gorm

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mealsmith/v1/internal/domain/planning"
	"github.com/mealsmith/v1/internal/ports/outbound"
	apperrors "github.com/mealsmith/v1/pkg/errors"
)

// PlanRepository is the GORM implementation of outbound.PlanRepository.
// A plan and its derived shopping list are written in one transaction so the
// list can never outlive or precede its plan.
type PlanRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewPlanRepository creates a new GORM plan repository.
func NewPlanRepository(db *gorm.DB, logger *zap.Logger) *PlanRepository {
	return &PlanRepository{
		db:     db,
		logger: logger.Named("gorm-plan-repository"),
	}
}

// Save persists a plan together with its shopping list and returns the
// plan's identifier.
func (r *PlanRepository) Save(ctx context.Context, plan *planning.MealPlan, list *planning.ShoppingList) (uuid.UUID, error) {
	planModel, err := planToModel(plan)
	if err != nil {
		return uuid.Nil, apperrors.NewDatabaseError("save plan", err)
	}

	var listModel *ShoppingListModel
	if list != nil {
		listModel, err = shoppingListToModel(list)
		if err != nil {
			return uuid.Nil, apperrors.NewDatabaseError("save plan", err)
		}
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(planModel).Error; err != nil {
			return err
		}
		if listModel != nil {
			if err := tx.Save(listModel).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		r.logger.Error("Failed to save meal plan",
			zap.String("plan_id", plan.ID().String()),
			zap.Error(err))
		return uuid.Nil, apperrors.NewDatabaseError("save plan", err)
	}

	return plan.ID(), nil
}

// FindByID retrieves a plan by its identifier, or nil when none exists.
func (r *PlanRepository) FindByID(ctx context.Context, id uuid.UUID) (*planning.MealPlan, error) {
	var model MealPlanModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.NewDatabaseError("find plan", err)
	}

	plan, err := planToDomain(&model)
	if err != nil {
		return nil, apperrors.NewDatabaseError("find plan", err)
	}
	return plan, nil
}

// FindLatestByWeek returns the highest plan version for the household and
// week, or nil when none exists.
func (r *PlanRepository) FindLatestByWeek(ctx context.Context, householdID uuid.UUID, weekOf time.Time) (*planning.MealPlan, error) {
	var model MealPlanModel
	err := r.db.WithContext(ctx).
		Where("household_id = ? AND week_of = ?", householdID, weekOf).
		Order("version DESC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.NewDatabaseError("find latest plan", err)
	}

	plan, err := planToDomain(&model)
	if err != nil {
		return nil, apperrors.NewDatabaseError("find latest plan", err)
	}
	return plan, nil
}

// FindShoppingList retrieves the derived shopping list for a plan, or nil
// when the plan has none.
func (r *PlanRepository) FindShoppingList(ctx context.Context, planID uuid.UUID) (*planning.ShoppingList, error) {
	var model ShoppingListModel
	err := r.db.WithContext(ctx).First(&model, "plan_id = ?", planID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.NewDatabaseError("find shopping list", err)
	}

	list, err := shoppingListToDomain(&model)
	if err != nil {
		return nil, apperrors.NewDatabaseError("find shopping list", err)
	}
	return list, nil
}

// compile-time interface check
var _ outbound.PlanRepository = (*PlanRepository)(nil)
