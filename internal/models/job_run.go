package models

import (
	"time"

	"firedues/internal/uuid"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// JobRunStatus tracks a background job invocation.
type JobRunStatus string

const (
	JobRunStatusRunning   JobRunStatus = "running"
	JobRunStatusSucceeded JobRunStatus = "succeeded"
	JobRunStatusFailed    JobRunStatus = "failed"
	JobRunStatusCancelled JobRunStatus = "cancelled"
)

// JobRun records one execution of the assessment job or one of its steps.
type JobRun struct {
	ID         string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	Kind       string         `gorm:"type:varchar(32);not null;index" json:"kind"`
	Year       int            `gorm:"not null" json:"year"`
	Trigger    string         `gorm:"type:varchar(16);not null" json:"trigger"`
	Status     JobRunStatus   `gorm:"type:varchar(16);not null" json:"status"`
	Created    int            `gorm:"not null" json:"created"`
	Applied    int            `gorm:"not null" json:"applied"`
	Error      string         `json:"error,omitempty"`
	Details    datatypes.JSON `json:"details,omitempty"`
	StartedAt  time.Time      `gorm:"not null;index" json:"started_at"`
	FinishedAt *time.Time     `json:"finished_at,omitempty"`
}

// BeforeCreate hook generates a UUIDv7 for new records
func (r *JobRun) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New()
	}
	return nil
}
