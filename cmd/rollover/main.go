// Command rollover runs the daily assessment job once and exits. With -year
// it rolls over and sweeps pending payments for that year instead of the
// current one.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"firedues/internal/config"
	"firedues/internal/database"
	"firedues/internal/jobs"
	"firedues/internal/logger"
	"firedues/internal/services"
)

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	year := flag.Int("year", 0, "assessment year (default: current year)")
	migrateFirst := flag.Bool("migrate", false, "apply pending migrations before running")
	flag.Parse()

	if err := run(*year, *migrateFirst); err != nil {
		logger.Get().Fatalf("Rollover failed: %v", err)
	}
}

func run(year int, migrateFirst bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dbManager, err := database.NewManager(database.NewConfig(cfg))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer dbManager.Close()

	if migrateFirst {
		if err := dbManager.RunMigrations(); err != nil {
			return fmt.Errorf("failed to run database migrations: %w", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db := dbManager.DB()
	fees := services.NewFeeScheduleService(db)
	job := jobs.NewDailyAssessmentJob(
		services.NewRolloverService(db, fees),
		services.NewPaymentService(db),
		services.NewJobRunService(db),
		time.Now,
	)

	if year == 0 {
		_, err := job.RunOnce(ctx, jobs.TriggerManual)
		return err
	}
	if _, err := job.Rollover(ctx, jobs.TriggerManual, year); err != nil {
		return err
	}
	_, err = job.AllocatePending(ctx, jobs.TriggerManual, year)
	return err
}
