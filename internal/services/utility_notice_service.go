package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "firedues/internal/errors"
	"firedues/internal/logger"
	"firedues/internal/models"
	"firedues/internal/pagination"
)

// utilityNoticeService records utility billing rows and turns matched rows
// into split payments.
type utilityNoticeService struct {
	db *gorm.DB
}

// NewUtilityNoticeService creates a new UtilityNoticeServicer.
func NewUtilityNoticeService(db *gorm.DB) UtilityNoticeServicer {
	return &utilityNoticeService{db: db}
}

// Import stores one notice per row in a single transaction. Rows without a
// person are flagged for review.
func (s *utilityNoticeService) Import(ctx context.Context, in UtilityImport, asOf time.Time) (*UtilityImportResult, error) {
	if len(in.Rows) == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "no rows to import")
	}
	year := asOf.Year()
	if in.Year != nil {
		year = *in.Year
	}
	if err := validateYear(year); err != nil {
		return nil, err
	}
	rows := make([]UtilityRow, len(in.Rows))
	for i, row := range in.Rows {
		row.PayerName = strings.TrimSpace(row.PayerName)
		row.Amount = models.RoundMoney(row.Amount)
		if row.PayerName == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, fmt.Sprintf("row %d: payer name is required", i+1))
		}
		if !row.Amount.IsPositive() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, fmt.Sprintf("row %d: amount must be greater than zero", i+1))
		}
		rows[i] = row
	}

	result := &UtilityImportResult{Notices: make([]models.UtilityNotice, 0, len(rows)), Allocated: decimal.Zero}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, row := range rows {
			notice := models.UtilityNotice{
				PayerNameRaw: row.PayerName,
				Amount:       row.Amount,
				ImportedAt:   asOf.UTC(),
				NeedsReview:  row.PersonID == nil,
			}
			if row.PersonID != nil {
				alloc, err := matchNotice(tx, &notice, *row.PersonID, year, in.CreatePayments, asOf)
				if err != nil {
					return err
				}
				if alloc != nil {
					result.PaymentsCreated++
					result.Allocated = result.Allocated.Add(alloc.Allocated)
				}
			} else {
				result.NeedsReview++
			}
			if err := tx.Create(&notice).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			result.Notices = append(result.Notices, notice)
		}
		return nil
	})
	if err != nil {
		return nil, appError(err)
	}

	logger.Get().Infow("Utility notices imported",
		"rows", len(rows),
		"payments_created", result.PaymentsCreated,
		"needs_review", result.NeedsReview,
		"allocated", result.Allocated.StringFixed(2),
	)
	return result, nil
}

// List pages notices, newest import first.
func (s *utilityNoticeService) List(ctx context.Context, filter UtilityNoticeFilter, page pagination.PageRequest) (*pagination.PageResponse[models.UtilityNotice], error) {
	query := s.db.WithContext(ctx).Model(&models.UtilityNotice{})
	if filter.NeedsReview != nil {
		query = query.Where("needs_review = ?", *filter.NeedsReview)
	}
	resp, err := pagination.Fetch[models.UtilityNotice](query, page, "imported_at DESC, id DESC")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return resp, nil
}

// Match assigns a notice to a person and records its payment, or clears the
// match when personID is nil. A notice that already produced a payment
// cannot be moved to someone else.
func (s *utilityNoticeService) Match(ctx context.Context, noticeID uint, personID *uint, asOf time.Time) (*models.UtilityNotice, error) {
	var notice models.UtilityNotice
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(forUpdate).First(&notice, noticeID).Error; err != nil {
			return notFound(err, apperrors.ErrUtilityNoticeNotFound)
		}

		if personID == nil {
			if notice.PaymentID != nil {
				return apperrors.ErrNoticeAlreadyPaid
			}
			notice.MatchedPersonID = nil
			notice.OriginalFullName = nil
			notice.NeedsReview = true
			return saveNotice(tx, &notice)
		}

		if notice.PaymentID != nil {
			if notice.MatchedPersonID != nil && *notice.MatchedPersonID == *personID {
				return nil
			}
			return apperrors.ErrNoticeAlreadyPaid
		}
		if _, err := matchNotice(tx, &notice, *personID, asOf.Year(), true, asOf); err != nil {
			return err
		}
		return saveNotice(tx, &notice)
	})
	if err != nil {
		return nil, appError(err)
	}
	return &notice, nil
}

// matchNotice links notice to personID and, when pay is set, records a
// utility payment for its amount split across that person's assessments.
func matchNotice(tx *gorm.DB, notice *models.UtilityNotice, personID uint, year int, pay bool, asOf time.Time) (*AllocationResult, error) {
	var person models.Person
	if err := tx.First(&person, personID).Error; err != nil {
		return nil, notFound(err, apperrors.ErrPersonNotFound)
	}
	name := person.FullName()
	notice.MatchedPersonID = &person.ID
	notice.OriginalFullName = &name
	notice.NeedsReview = false
	if !pay {
		return nil, nil
	}

	req := PaymentRequest{
		PersonID:    person.ID,
		Amount:      notice.Amount,
		PaymentType: models.PaymentTypeUtility,
		PaidAt:      asOf,
		Mode:        models.AllocationModeSplitAcrossAll,
		Year:        &year,
	}
	if err := normalizePaymentRequest(&req, asOf); err != nil {
		return nil, err
	}
	result, err := createAndAllocate(tx, req, asOf)
	if err != nil {
		return nil, err
	}
	notice.PaymentID = &result.Payment.ID
	notice.IsAllocated = len(result.Allocations) > 0
	return result, nil
}

func saveNotice(tx *gorm.DB, notice *models.UtilityNotice) error {
	err := tx.Model(notice).Select("matched_person_id", "original_full_name", "payment_id", "is_allocated", "needs_review").
		Updates(notice).Error
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
