// Package jobs runs the recurring assessment work: the yearly rollover and
// the sweep that applies payments parked for a future year.
package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"gorm.io/datatypes"

	"firedues/internal/logger"
	"firedues/internal/models"
	"firedues/internal/services"
)

// Job kinds recorded in job_runs.
const (
	KindDailyAssessment = "daily_assessment"
	KindRollover        = "rollover"
	KindPending         = "pending_allocation"
)

// Triggers recorded in job_runs.
const (
	TriggerStartup  = "startup"
	TriggerSchedule = "schedule"
	TriggerManual   = "manual"
)

// DailyAssessmentJob creates the current year's assessments and then applies
// payments that were waiting for them. Runs are serialized.
type DailyAssessmentJob struct {
	rollover services.RolloverServicer
	payments services.PaymentServicer
	runs     services.JobRunServicer
	now      func() time.Time

	mu sync.Mutex
}

// NewDailyAssessmentJob creates a DailyAssessmentJob. now defaults to time.Now.
func NewDailyAssessmentJob(rollover services.RolloverServicer, payments services.PaymentServicer, runs services.JobRunServicer, now func() time.Time) *DailyAssessmentJob {
	if now == nil {
		now = time.Now
	}
	return &DailyAssessmentJob{rollover: rollover, payments: payments, runs: runs, now: now}
}

// RunOnce runs rollover then the pending sweep for the clock's current year.
// The year is read once so both steps agree across a new-year boundary.
func (j *DailyAssessmentJob) RunOnce(ctx context.Context, trigger string) (*models.JobRun, error) {
	asOf := j.now()
	year := asOf.Year()
	return j.record(ctx, KindDailyAssessment, trigger, year, func(run *models.JobRun) error {
		created, err := j.rollover.CreateMissingAssessments(ctx, year)
		run.Created = created
		if err != nil {
			return err
		}
		run.Applied, err = j.payments.AllocatePendingForYear(ctx, year, asOf)
		return err
	})
}

// Rollover creates missing assessments for year.
func (j *DailyAssessmentJob) Rollover(ctx context.Context, trigger string, year int) (*models.JobRun, error) {
	return j.record(ctx, KindRollover, trigger, year, func(run *models.JobRun) error {
		var err error
		run.Created, err = j.rollover.CreateMissingAssessments(ctx, year)
		return err
	})
}

// AllocatePending applies payments parked for year.
func (j *DailyAssessmentJob) AllocatePending(ctx context.Context, trigger string, year int) (*models.JobRun, error) {
	asOf := j.now()
	return j.record(ctx, KindPending, trigger, year, func(run *models.JobRun) error {
		var err error
		run.Applied, err = j.payments.AllocatePendingForYear(ctx, year, asOf)
		return err
	})
}

func (j *DailyAssessmentJob) record(ctx context.Context, kind, trigger string, year int, fn func(*models.JobRun) error) (*models.JobRun, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	start := j.now()
	run, err := j.runs.Start(ctx, kind, trigger, year, start)
	if err != nil {
		return nil, err
	}

	runErr := fn(run)
	run.Details = runDetails(run, j.now().Sub(start))
	if err := j.runs.Finish(ctx, run, j.now(), runErr); err != nil {
		logger.Get().Errorw("Failed to record job run", "job_run_id", run.ID, "kind", kind, "error", err)
	}

	log := logger.Get()
	switch {
	case runErr == nil:
		log.Infow("Job run complete", "job_run_id", run.ID, "kind", kind, "trigger", trigger, "year", year,
			"created", run.Created, "applied", run.Applied)
	case errors.Is(runErr, context.Canceled):
		log.Infow("Job run cancelled", "job_run_id", run.ID, "kind", kind, "year", year)
	default:
		log.Errorw("Job run failed", "job_run_id", run.ID, "kind", kind, "trigger", trigger, "year", year, "error", runErr)
	}
	return run, runErr
}

func runDetails(run *models.JobRun, elapsed time.Duration) datatypes.JSON {
	b, err := json.Marshal(map[string]interface{}{
		"created":     run.Created,
		"applied":     run.Applied,
		"duration_ms": elapsed.Milliseconds(),
	})
	if err != nil {
		return nil
	}
	return datatypes.JSON(b)
}
