package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"

	"firedues/internal/logger"
)

// Scheduler triggers a DailyAssessmentJob on a cron schedule.
type Scheduler struct {
	job          *DailyAssessmentJob
	cron         *cron.Cron
	runOnStartup bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewScheduler parses spec (standard five-field cron or a descriptor such as
// "@daily" or "@every 24h") and prepares a scheduler for job.
func NewScheduler(job *DailyAssessmentJob, spec string, runOnStartup bool) (*Scheduler, error) {
	c := cron.New(
		cron.WithLogger(cronLogger{}),
		cron.WithChain(cron.Recover(cronLogger{}), cron.SkipIfStillRunning(cronLogger{})),
	)
	s := &Scheduler{job: job, cron: c, runOnStartup: runOnStartup}
	if _, err := c.AddFunc(spec, func() { s.tick(TriggerSchedule) }); err != nil {
		return nil, fmt.Errorf("invalid rollover schedule %q: %w", spec, err)
	}
	return s, nil
}

// Start begins scheduling. Runs started by the scheduler are cancelled when
// ctx is done or Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	s.ctx, s.cancel = context.WithCancel(ctx)
	if s.runOnStartup {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.tick(TriggerStartup)
		}()
	}
	s.cron.Start()
	logger.Get().Infow("Assessment scheduler started", "run_on_startup", s.runOnStartup)
}

// Stop cancels in-flight runs and waits for them to return.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	<-s.cron.Stop().Done()
	s.wg.Wait()
	logger.Get().Infow("Assessment scheduler stopped")
}

func (s *Scheduler) tick(trigger string) {
	if s.ctx.Err() != nil {
		return
	}
	// RunOnce logs the outcome; cancellation during shutdown is expected.
	if _, err := s.job.RunOnce(s.ctx, trigger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Get().Warnw("Scheduled assessment run did not complete", "trigger", trigger, "error", err)
	}
}

// cronLogger routes cron's internal logging to zap.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.Get().Debugw(msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.Get().Errorw(msg, append(keysAndValues, "error", err)...)
}
