// Package main provides the meal-plan generation worker. With -household it
// runs one generation and exits; without it the process stays up serving
// metrics and waiting for work.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/fx"

	"github.com/mealsmith/v1/internal/infrastructure/container"
	"github.com/mealsmith/v1/internal/ports/inbound"
)

func main() {
	household := flag.String("household", "", "household UUID to generate a plan for")
	week := flag.String("week", "", "week-of date (YYYY-MM-DD), defaults to next Monday")
	flag.Parse()

	var opts []fx.Option
	opts = append(opts, fx.NopLogger, container.Module)

	oneShot := *household != ""
	done := make(chan error, 1)

	if oneShot {
		opts = append(opts, fx.Invoke(func(service inbound.PlannerService) {
			go func() {
				done <- generateOnce(service, *household, *week)
			}()
		}))
	}

	app := fx.New(opts...)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	var runErr error
	if oneShot {
		select {
		case runErr = <-done:
		case <-ctx.Done():
		}
	} else {
		<-ctx.Done()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := app.Stop(shutdownCtx); err != nil {
		log.Fatalf("Failed to stop application gracefully: %v", err)
	}

	if runErr != nil {
		log.Fatalf("Plan generation failed: %v", runErr)
	}
}

// generateOnce runs a single generation and prints the resulting plan.
func generateOnce(service inbound.PlannerService, household, week string) error {
	householdID, err := uuid.Parse(household)
	if err != nil {
		return fmt.Errorf("invalid household id: %w", err)
	}

	weekOf := nextMonday(time.Now().UTC())
	if week != "" {
		weekOf, err = time.Parse("2006-01-02", week)
		if err != nil {
			return fmt.Errorf("invalid week date: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	plan, err := service.GeneratePlan(ctx, inbound.GeneratePlanCommand{
		HouseholdID: householdID,
		WeekOf:      weekOf,
	})
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

// nextMonday returns the first Monday strictly after t, at midnight UTC.
func nextMonday(t time.Time) time.Time {
	t = t.Truncate(24 * time.Hour)
	days := (int(time.Monday) - int(t.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	return t.AddDate(0, 0, days)
}
