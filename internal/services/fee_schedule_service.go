package services

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "firedues/internal/errors"
	"firedues/internal/models"
)

// feeScheduleService handles fee schedule lookups and maintenance.
type feeScheduleService struct {
	db *gorm.DB
}

// NewFeeScheduleService creates a new FeeScheduleServicer.
func NewFeeScheduleService(db *gorm.DB) FeeScheduleServicer {
	return &feeScheduleService{db: db}
}

// GetFee returns the configured fee, or zero when the year has none.
func (s *feeScheduleService) GetFee(ctx context.Context, year int) (decimal.Decimal, error) {
	var fee models.FeeSchedule
	err := s.db.WithContext(ctx).Where("year = ?", year).First(&fee).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return fee.AmountPerProperty, nil
}

// Get returns the schedule row for year.
func (s *feeScheduleService) Get(ctx context.Context, year int) (*models.FeeSchedule, error) {
	if err := validateYear(year); err != nil {
		return nil, err
	}
	var fee models.FeeSchedule
	if err := s.db.WithContext(ctx).Where("year = ?", year).First(&fee).Error; err != nil {
		return nil, notFound(err, apperrors.ErrFeeScheduleNotFound)
	}
	return &fee, nil
}

// List returns every schedule, newest year first.
func (s *feeScheduleService) List(ctx context.Context) ([]models.FeeSchedule, error) {
	var fees []models.FeeSchedule
	if err := s.db.WithContext(ctx).Order("year DESC").Find(&fees).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return fees, nil
}

// Set creates or replaces the fee for year.
func (s *feeScheduleService) Set(ctx context.Context, year int, amount decimal.Decimal) (*models.FeeSchedule, error) {
	if err := validateYear(year); err != nil {
		return nil, err
	}
	if amount.IsNegative() {
		return nil, apperrors.ErrNegativeFeeAmount
	}

	fee := models.FeeSchedule{Year: year, AmountPerProperty: models.RoundMoney(amount)}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "year"}},
		DoUpdates: clause.AssignmentColumns([]string{"amount_per_property", "updated_at"}),
	}).Create(&fee).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return s.Get(ctx, year)
}

// Delete removes a schedule row. Deleting a missing row is not an error.
func (s *feeScheduleService) Delete(ctx context.Context, id uint) error {
	if err := s.db.WithContext(ctx).Delete(&models.FeeSchedule{}, id).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
