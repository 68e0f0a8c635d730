package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "firedues/internal/errors"
	"firedues/internal/models"
	"firedues/internal/pagination"
)

// jobRunService records background job executions.
type jobRunService struct {
	db *gorm.DB
}

// NewJobRunService creates a new JobRunServicer.
func NewJobRunService(db *gorm.DB) JobRunServicer {
	return &jobRunService{db: db}
}

// Start inserts a running job record.
func (s *jobRunService) Start(ctx context.Context, kind, trigger string, year int, startedAt time.Time) (*models.JobRun, error) {
	kind = strings.TrimSpace(kind)
	if kind == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "job kind is required")
	}
	run := &models.JobRun{
		Kind:      kind,
		Year:      year,
		Trigger:   trigger,
		Status:    models.JobRunStatusRunning,
		StartedAt: startedAt.UTC(),
	}
	if err := s.db.WithContext(ctx).Create(run).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return run, nil
}

// Finish stores the outcome of run. A cancelled context marks the run
// cancelled rather than failed. The write ignores ctx cancellation so a
// shutdown still closes the record.
func (s *jobRunService) Finish(ctx context.Context, run *models.JobRun, finishedAt time.Time, runErr error) error {
	finished := finishedAt.UTC()
	run.FinishedAt = &finished
	switch {
	case runErr == nil:
		run.Status = models.JobRunStatusSucceeded
		run.Error = ""
	case errors.Is(runErr, context.Canceled):
		run.Status = models.JobRunStatusCancelled
		run.Error = runErr.Error()
	default:
		run.Status = models.JobRunStatusFailed
		run.Error = runErr.Error()
	}

	err := s.db.WithContext(context.WithoutCancel(ctx)).Model(run).
		Select("status", "created", "applied", "error", "details", "finished_at").
		Updates(run).Error
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// List pages job runs, newest first, optionally for one kind.
func (s *jobRunService) List(ctx context.Context, kind string, page pagination.PageRequest) (*pagination.PageResponse[models.JobRun], error) {
	query := s.db.WithContext(ctx).Model(&models.JobRun{})
	if kind = strings.TrimSpace(kind); kind != "" {
		query = query.Where("kind = ?", kind)
	}
	resp, err := pagination.Fetch[models.JobRun](query, page, "started_at DESC, id DESC")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return resp, nil
}
