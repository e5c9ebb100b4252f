// Package planner provides the application layer for weekly plan generation.
// It implements the use cases defined in the inbound ports.
package planner

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mealsmith/v1/internal/domain/planning"
	"github.com/mealsmith/v1/internal/ports/inbound"
	"github.com/mealsmith/v1/internal/ports/outbound"
	"github.com/mealsmith/v1/pkg/errors"
)

// Options are the application-level generation settings, mapped from process
// configuration by the container.
type Options struct {
	// SlotMeals is the week's slot shape: which meals each day carries.
	SlotMeals []planning.MealType

	// Selector bounds the selection run and carries the objective weights.
	Selector planning.SelectorConfig

	// DefaultDeadline applies when the command supplies none.
	DefaultDeadline time.Duration
}

// DefaultOptions returns the documented defaults: seven dinner slots with the
// default objective weighting.
func DefaultOptions() Options {
	return Options{
		SlotMeals:       []planning.MealType{planning.MealTypeDinner},
		Selector:        planning.DefaultSelectorConfig(),
		DefaultDeadline: 30 * time.Second,
	}
}

// OptionsProvider yields the generation settings for one run. The service
// calls it per GeneratePlan, so a provider backed by the config watcher gets
// reloaded weights into the next run without a restart.
type OptionsProvider func() Options

// StaticOptions wraps fixed options in a provider.
func StaticOptions(opts Options) OptionsProvider {
	return func() Options { return opts }
}

// PlannerService implements the plan-generation use cases.
type PlannerService struct {
	catalog  outbound.CatalogRepository
	prefs    outbound.PreferenceRepository
	pantry   outbound.PantryRepository
	ratings  outbound.RatingRepository
	plans    outbound.PlanRepository
	guard    *RegenerationGuard
	metrics  outbound.MetricsRecorder
	validate *validator.Validate
	opts     OptionsProvider
	logger   *zap.Logger
}

// NewPlannerService creates a new planner service.
func NewPlannerService(
	catalog outbound.CatalogRepository,
	prefs outbound.PreferenceRepository,
	pantry outbound.PantryRepository,
	ratings outbound.RatingRepository,
	plans outbound.PlanRepository,
	guard *RegenerationGuard,
	metrics outbound.MetricsRecorder,
	opts OptionsProvider,
	logger *zap.Logger,
) inbound.PlannerService {
	return &PlannerService{
		catalog:  catalog,
		prefs:    prefs,
		pantry:   pantry,
		ratings:  ratings,
		plans:    plans,
		guard:    guard,
		metrics:  metrics,
		validate: validator.New(),
		opts:     opts,
		logger:   logger.Named("planner-service"),
	}
}

// GeneratePlan generates (or reuses) the weekly plan for a household. The
// whole pipeline runs under the RegenerationGuard's per-key exclusion.
func (s *PlannerService) GeneratePlan(ctx context.Context, cmd inbound.GeneratePlanCommand) (*inbound.MealPlanDTO, error) {
	started := time.Now()
	s.metrics.GenerationStarted()
	defer s.metrics.GenerationFinished()

	weekOf := cmd.WeekOf.UTC().Truncate(24 * time.Hour)
	s.logger.Info("Generating weekly plan",
		zap.String("household_id", cmd.HouseholdID.String()),
		zap.Time("week_of", weekOf),
	)

	prefs, err := s.loadPreferences(ctx, cmd.HouseholdID)
	if err != nil {
		return nil, err
	}

	catalog, err := s.catalog.GetAdmissibleCatalog(ctx, cmd.HouseholdID)
	if err != nil {
		return nil, errors.NewDatabaseError("load recipe catalog", err)
	}
	catalogVersion, err := s.catalog.Version(ctx)
	if err != nil {
		return nil, errors.NewDatabaseError("read catalog version", err)
	}
	pantry, err := s.pantry.GetPantry(ctx, cmd.HouseholdID)
	if err != nil {
		return nil, errors.NewDatabaseError("load pantry", err)
	}
	ratings, err := s.ratings.GetRatings(ctx, cmd.HouseholdID)
	if err != nil {
		return nil, errors.NewDatabaseError("load ratings", err)
	}

	inputHash := ComputeInputHash(cmd.HouseholdID, weekOf, prefs, pantry, catalogVersion, ratings)
	key := outbound.GenerationKey{HouseholdID: cmd.HouseholdID, WeekOf: weekOf}

	// One snapshot of the options per run so a concurrent weight reload
	// never tears a run in progress.
	opts := s.opts()

	plan, list, reused, err := s.guard.Run(ctx, key, inputHash, func(runCtx context.Context) (*planning.MealPlan, *planning.ShoppingList, error) {
		return s.generate(runCtx, cmd, opts, weekOf, prefs, catalog, pantry, ratings, inputHash)
	})
	if err != nil {
		return nil, err
	}

	outcome := string(plan.Outcome())
	if reused {
		outcome = "reused"
	}
	s.metrics.ObserveGeneration(outcome, time.Since(started))

	s.logger.Info("Weekly plan ready",
		zap.String("plan_id", plan.ID().String()),
		zap.String("outcome", outcome),
		zap.Bool("reused", reused),
		zap.Duration("took", time.Since(started)),
	)

	return s.planToDTO(plan, list, reused), nil
}

// generate runs the pipeline: filter, select, assemble, persist.
func (s *PlannerService) generate(
	ctx context.Context,
	cmd inbound.GeneratePlanCommand,
	opts Options,
	weekOf time.Time,
	prefs planning.Preferences,
	catalog []planning.Recipe,
	pantry []planning.PantryItem,
	ratings []planning.Rating,
	inputHash string,
) (*planning.MealPlan, *planning.ShoppingList, error) {
	runCtx := ctx
	var cancel context.CancelFunc
	if !cmd.Deadline.IsZero() {
		runCtx, cancel = context.WithDeadline(ctx, cmd.Deadline)
	} else if opts.DefaultDeadline > 0 {
		runCtx, cancel = context.WithTimeout(ctx, opts.DefaultDeadline)
	}
	if cancel != nil {
		defer cancel()
	}

	filter := planning.NewConstraintFilter(prefs)
	pool, err := filter.Filter(catalog)
	if err != nil {
		// No admissible recipe at all: the selector flags every slot and
		// the plan comes back partial rather than failing the run.
		if !stderrors.Is(err, planning.ErrInsufficientCandidates) {
			return nil, nil, errors.Wrap(err, "constraint filtering failed")
		}
		s.logger.Warn("hard constraints excluded the entire catalog",
			zap.String("household_id", prefs.HouseholdID.String()),
			zap.Int("catalog_size", len(catalog)),
		)
		pool = nil
	}

	slots := planning.WeekSlots(opts.SlotMeals)
	selector := planning.NewSelector(opts.Selector, s.logger)

	// Scoring uses week-of as the rating-recency reference so identical
	// snapshots reproduce identical plans regardless of when the run
	// happens.
	selection := selector.Build(runCtx, slots, pool, prefs, ratings, weekOf)

	assembler := planning.NewPlanAssembler(opts.Selector.Weights.BudgetTolerance)
	plan, list, err := assembler.Assemble(selection, prefs, pantry, weekOf, inputHash)
	if err != nil {
		var convErr *planning.UnitConversionError
		if stderrors.As(err, &convErr) {
			return nil, nil, errors.NewUnitConversionError(convErr.IngredientSlug, err)
		}
		return nil, nil, errors.Wrap(err, "plan assembly failed")
	}

	prior, err := s.plans.FindLatestByWeek(ctx, prefs.HouseholdID, weekOf)
	if err != nil {
		return nil, nil, errors.NewDatabaseError("load previous plan version", err)
	}
	if prior != nil {
		if err := plan.Supersede(prior); err != nil {
			return nil, nil, errors.Wrap(err, "failed to version plan")
		}
	}

	if _, err := s.plans.Save(ctx, plan, list); err != nil {
		return nil, nil, errors.NewDatabaseError("save plan", err)
	}

	return plan, list, nil
}

// ApprovePlan freezes a draft plan.
func (s *PlannerService) ApprovePlan(ctx context.Context, householdID, planID uuid.UUID) error {
	plan, err := s.plans.FindByID(ctx, planID)
	if err != nil {
		return errors.NewDatabaseError("find plan", err)
	}
	if plan == nil {
		return errors.NewPlanNotFoundError(planID.String())
	}
	if plan.HouseholdID() != householdID {
		return errors.NewPlanNotFoundError(planID.String())
	}

	if err := plan.Approve(); err != nil {
		return errors.Wrap(err, "failed to approve plan")
	}

	list, err := s.plans.FindShoppingList(ctx, planID)
	if err != nil {
		return errors.NewDatabaseError("load shopping list", err)
	}
	if _, err := s.plans.Save(ctx, plan, list); err != nil {
		return errors.NewDatabaseError("save approved plan", err)
	}

	s.logger.Info("Plan approved",
		zap.String("plan_id", planID.String()),
		zap.String("household_id", householdID.String()),
	)
	return nil
}

// GetPlan retrieves a plan with its shopping list.
func (s *PlannerService) GetPlan(ctx context.Context, planID uuid.UUID) (*inbound.MealPlanDTO, error) {
	plan, err := s.plans.FindByID(ctx, planID)
	if err != nil {
		return nil, errors.NewDatabaseError("find plan", err)
	}
	if plan == nil {
		return nil, errors.NewPlanNotFoundError(planID.String())
	}

	list, err := s.plans.FindShoppingList(ctx, planID)
	if err != nil {
		return nil, errors.NewDatabaseError("load shopping list", err)
	}

	return s.planToDTO(plan, list, false), nil
}

// loadPreferences reads and validates the preference snapshot. A malformed or
// contradictory snapshot aborts generation before any selection work.
func (s *PlannerService) loadPreferences(ctx context.Context, householdID uuid.UUID) (planning.Preferences, error) {
	prefs, err := s.prefs.GetPreferences(ctx, householdID)
	if err != nil {
		return planning.Preferences{}, errors.NewDatabaseError("load preferences", err)
	}

	if err := s.validate.Struct(prefs); err != nil {
		return planning.Preferences{}, errors.NewInvalidPreferencesError("schema validation failed", err)
	}

	allergy := make(map[string]struct{}, len(prefs.AllergyTags))
	for _, tag := range prefs.AllergyTags {
		allergy[tag] = struct{}{}
	}
	for _, diet := range prefs.DietTags {
		if _, ok := allergy[diet]; ok {
			return planning.Preferences{}, errors.NewInvalidPreferencesError(
				"diet tag conflicts with allergy tag: "+diet,
				planning.ErrContradictorySnapshot,
			)
		}
	}

	return prefs, nil
}

// planToDTO converts the aggregate to its transport projection.
func (s *PlannerService) planToDTO(plan *planning.MealPlan, list *planning.ShoppingList, reused bool) *inbound.MealPlanDTO {
	dto := &inbound.MealPlanDTO{
		ID:            plan.ID(),
		Version:       plan.Version(),
		HouseholdID:   plan.HouseholdID(),
		WeekOf:        plan.WeekOf(),
		Status:        plan.Status(),
		Outcome:       plan.Outcome(),
		Annotations:   plan.Annotations(),
		EstimatedCost: plan.EstimatedCost(),
		Currency:      plan.Currency(),
		InputHash:     plan.InputHash(),
		Reused:        reused,
	}

	for _, a := range plan.Assignments() {
		dto.Slots = append(dto.Slots, inbound.SlotDTO{
			Day:         a.Slot.Day,
			Meal:        a.Slot.Meal,
			RecipeID:    a.RecipeID,
			RecipeTitle: a.RecipeTitle,
			Status:      a.Status,
			Flag:        a.Flag,
		})
	}

	if list != nil {
		listDTO := &inbound.ShoppingListDTO{
			EstimatedTotal: list.EstimatedTotal,
			Currency:       list.Currency,
		}
		for _, line := range list.Lines {
			listDTO.Lines = append(listDTO.Lines, inbound.ShoppingLineDTO{
				IngredientID:   line.IngredientID,
				IngredientSlug: line.IngredientSlug,
				Required:       line.Required,
				ToBuy:          line.ToBuy,
				Unit:           line.Unit,
				EstimatedPrice: line.EstimatedPrice,
			})
		}
		dto.ShoppingList = listDTO
	}

	return dto
}
