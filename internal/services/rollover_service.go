package services

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "firedues/internal/errors"
	"firedues/internal/logger"
	"firedues/internal/models"
)

var errAlreadyAssessed = errors.New("assessment already exists")

// rolloverService creates missing assessments from the fee schedule.
type rolloverService struct {
	db   *gorm.DB
	fees FeeScheduleServicer
}

// NewRolloverService creates a new RolloverServicer.
func NewRolloverService(db *gorm.DB, fees FeeScheduleServicer) RolloverServicer {
	return &rolloverService{db: db, fees: fees}
}

// CreateMissingAssessments inserts an assessment for every active property
// lacking one for year and returns how many rows it created. Without a fee
// schedule for year nothing is created.
func (s *rolloverService) CreateMissingAssessments(ctx context.Context, year int) (int, error) {
	if err := validateYear(year); err != nil {
		return 0, err
	}

	fee, ok, err := s.feeFor(ctx, year)
	if err != nil || !ok {
		return 0, err
	}

	var ids []uint
	err = s.db.WithContext(ctx).Model(&models.Property{}).
		Where("active = ?", true).
		Where("id NOT IN (SELECT property_id FROM assessments WHERE year = ?)", year).
		Order("id").
		Pluck("id", &ids).Error
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	created, err := s.insertMissing(ctx, year, fee, ids)
	if err != nil {
		return created, err
	}
	logger.Get().Infow("Assessment rollover complete", "year", year, "candidates", len(ids), "created", created)
	return created, nil
}

// CreateMissingAssessmentsForPerson is CreateMissingAssessments restricted to
// the active properties personID owns on asOf.
func (s *rolloverService) CreateMissingAssessmentsForPerson(ctx context.Context, personID uint, year int, asOf time.Time) (int, error) {
	if err := validateYear(year); err != nil {
		return 0, err
	}
	if err := personExists(s.db.WithContext(ctx), personID); err != nil {
		return 0, err
	}

	fee, ok, err := s.feeFor(ctx, year)
	if err != nil || !ok {
		return 0, err
	}

	day := models.DateOnly(asOf)
	var ids []uint
	err = s.db.WithContext(ctx).Model(&models.Property{}).
		Where("active = ?", true).
		Where("EXISTS (SELECT 1 FROM ownerships o WHERE o.property_id = properties.id AND o.person_id = ? AND o.start_date <= ? AND (o.end_date IS NULL OR o.end_date >= ?))", personID, day, day).
		Where("id NOT IN (SELECT property_id FROM assessments WHERE year = ?)", year).
		Order("id").
		Pluck("id", &ids).Error
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	created, err := s.insertMissing(ctx, year, fee, ids)
	if err != nil {
		return created, err
	}
	if created > 0 {
		logger.Get().Infow("Created assessments for person", "person_id", personID, "year", year, "created", created)
	}
	return created, nil
}

// feeFor resolves the fee and applies the zero-fee gate.
func (s *rolloverService) feeFor(ctx context.Context, year int) (decimal.Decimal, bool, error) {
	fee, err := s.fees.GetFee(ctx, year)
	if err != nil {
		return decimal.Zero, false, err
	}
	if !fee.IsPositive() {
		logger.Get().Warnw("No fee schedule configured, skipping assessment rollover", "year", year)
		return decimal.Zero, false, nil
	}
	return fee, true, nil
}

// insertMissing writes all rows in one transaction. When a concurrent writer
// got there first the batch is rolled back and each property is retried on
// its own, skipping any that now have an assessment.
func (s *rolloverService) insertMissing(ctx context.Context, year int, fee decimal.Decimal, propertyIDs []uint) (int, error) {
	if len(propertyIDs) == 0 {
		return 0, nil
	}

	rows := make([]models.Assessment, 0, len(propertyIDs))
	for _, id := range propertyIDs {
		rows = append(rows, newAssessment(id, year, fee))
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&rows).Error
	})
	if err == nil {
		return len(rows), nil
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	logger.Get().Warnw("Assessment batch conflicted with a concurrent rollover, reconciling", "year", year, "candidates", len(propertyIDs))

	created := 0
	for _, id := range propertyIDs {
		if err := ctx.Err(); err != nil {
			return created, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var n int64
			if err := tx.Model(&models.Assessment{}).Where("property_id = ? AND year = ?", id, year).Count(&n).Error; err != nil {
				return err
			}
			if n > 0 {
				return errAlreadyAssessed
			}
			row := newAssessment(id, year, fee)
			return tx.Create(&row).Error
		})
		switch {
		case err == nil:
			created++
		case errors.Is(err, errAlreadyAssessed), errors.Is(err, gorm.ErrDuplicatedKey):
		default:
			return created, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return created, nil
}

func newAssessment(propertyID uint, year int, fee decimal.Decimal) models.Assessment {
	return models.Assessment{
		PropertyID: propertyID,
		Year:       year,
		AmountDue:  fee,
		AmountPaid: decimal.Zero,
		Status:     models.AssessmentStatusUnpaid,
	}
}
