package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "firedues/internal/errors"
	"firedues/internal/models"
)

// Accepted assessment years.
const (
	MinYear = 2000
	MaxYear = 3000
)

func validateYear(year int) error {
	if year < MinYear || year > MaxYear {
		return apperrors.ErrInvalidYear
	}
	return nil
}

// appError passes AppErrors through and wraps anything else as internal.
func appError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperrors.Wrap(apperrors.ErrInternalServer, err)
}

// notFound maps gorm.ErrRecordNotFound onto sentinel.
func notFound(err error, sentinel *apperrors.AppError) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return apperrors.Wrap(apperrors.ErrInternalServer, err)
}

func personExists(tx *gorm.DB, personID uint) error {
	var n int64
	if err := tx.Model(&models.Person{}).Where("id = ?", personID).Count(&n).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if n == 0 {
		return apperrors.ErrPersonNotFound
	}
	return nil
}

// ownedBy scopes a query on assessments to properties person owns on asOf.
func ownedBy(personID uint, asOf time.Time) func(*gorm.DB) *gorm.DB {
	day := models.DateOnly(asOf)
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(
			"EXISTS (SELECT 1 FROM ownerships o WHERE o.property_id = assessments.property_id AND o.person_id = ? AND o.start_date <= ? AND (o.end_date IS NULL OR o.end_date >= ?))",
			personID, day, day,
		)
	}
}
