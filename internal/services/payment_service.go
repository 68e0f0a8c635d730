package services

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"firedues/internal/allocation"
	apperrors "firedues/internal/errors"
	"firedues/internal/logger"
	"firedues/internal/models"
	"firedues/internal/pagination"
)

// paymentService records payments and applies them to assessments.
type paymentService struct {
	db *gorm.DB
}

// NewPaymentService creates a new PaymentServicer.
func NewPaymentService(db *gorm.DB) PaymentServicer {
	return &paymentService{db: db}
}

// CreateAndAllocate records a payment and applies it in one transaction.
// Split payments for a year after asOf are parked with a target year and
// picked up later by AllocatePendingForYear.
func (s *paymentService) CreateAndAllocate(ctx context.Context, req PaymentRequest, asOf time.Time) (*AllocationResult, error) {
	if err := normalizePaymentRequest(&req, asOf); err != nil {
		return nil, err
	}

	var result *AllocationResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		result, err = createAndAllocate(tx, req, asOf)
		return err
	})
	if err != nil {
		return nil, appError(err)
	}
	return result, nil
}

// CreatePayment records a payment without applying it.
func (s *paymentService) CreatePayment(ctx context.Context, req PaymentRequest, asOf time.Time) (*models.Payment, error) {
	if err := normalizePaymentRequest(&req, asOf); err != nil {
		return nil, err
	}

	var payment *models.Payment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := personExists(tx, req.PersonID); err != nil {
			return err
		}
		var err error
		payment, err = insertPayment(tx, req)
		return err
	})
	if err != nil {
		return nil, appError(err)
	}
	return payment, nil
}

// AllocatePayment applies a recorded payment. Donations and payments that
// already have allocation rows are rejected.
func (s *paymentService) AllocatePayment(ctx context.Context, paymentID uint, req AllocationRequest, asOf time.Time) (*AllocationResult, error) {
	if err := normalizeAllocationRequest(&req); err != nil {
		return nil, err
	}

	var result *AllocationResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var payment models.Payment
		if err := tx.Clauses(forUpdate).First(&payment, paymentID).Error; err != nil {
			return notFound(err, apperrors.ErrPaymentNotFound)
		}
		if payment.IsDonation {
			return apperrors.ErrDonationNotAllocatable
		}
		n, err := countAllocations(tx, payment.ID)
		if err != nil {
			return err
		}
		if n > 0 {
			return apperrors.ErrPaymentAlreadyAllocated
		}
		result, err = allocate(tx, &payment, req, asOf)
		return err
	})
	if err != nil {
		return nil, appError(err)
	}
	return result, nil
}

// AllocatePendingForYear applies every non-donation payment parked for year
// that has no allocations yet. Each payment gets its own transaction; one
// failing payment is logged and skipped. Payments whose owner still has no
// open assessments stay parked. Returns the number of payments applied.
func (s *paymentService) AllocatePendingForYear(ctx context.Context, year int, asOf time.Time) (int, error) {
	if err := validateYear(year); err != nil {
		return 0, err
	}

	var ids []uint
	err := s.db.WithContext(ctx).Model(&models.Payment{}).
		Where("target_year = ? AND is_donation = ?", year, false).
		Where("NOT EXISTS (SELECT 1 FROM payment_allocations pa WHERE pa.payment_id = payments.id)").
		Order("id").
		Pluck("id", &ids).Error
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	applied := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return applied, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		var ok bool
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var err error
			ok, err = resolvePending(tx, id, year, asOf)
			return err
		})
		if err != nil {
			if ctx.Err() != nil {
				return applied, apperrors.Wrap(apperrors.ErrInternalServer, ctx.Err())
			}
			logger.Get().Errorw("Failed to apply pending payment", "payment_id", id, "year", year, "error", err)
			continue
		}
		if ok {
			applied++
		}
	}

	if len(ids) > 0 {
		logger.Get().Infow("Pending payment sweep complete", "year", year, "pending", len(ids), "applied", applied)
	}
	return applied, nil
}

// resolvePending re-checks one parked payment inside tx and splits it.
func resolvePending(tx *gorm.DB, paymentID uint, year int, asOf time.Time) (bool, error) {
	var payment models.Payment
	if err := tx.Clauses(forUpdate).First(&payment, paymentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	if payment.IsDonation || payment.TargetYear == nil || *payment.TargetYear != year {
		return false, nil
	}
	n, err := countAllocations(tx, payment.ID)
	if err != nil || n > 0 {
		return false, err
	}

	candidates, byID, err := splitCandidates(tx, payment.PersonID, year, asOf)
	if err != nil {
		return false, err
	}
	shares := allocation.Split(candidates, payment.Amount)
	if len(shares) == 0 {
		return false, nil
	}
	if _, err := applyShares(tx, payment.ID, shares, byID); err != nil {
		return false, err
	}
	if err := tx.Model(&payment).Update("target_year", nil).Error; err != nil {
		return false, err
	}
	return true, nil
}

// ListAssessmentOptions lists the year's assessments on properties the person
// owns on asOf, ordered by address.
func (s *paymentService) ListAssessmentOptions(ctx context.Context, personID uint, year int, asOf time.Time) ([]AssessmentOption, error) {
	if err := validateYear(year); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	if err := personExists(db, personID); err != nil {
		return nil, err
	}

	type optionRow struct {
		ID           uint
		PropertyID   uint
		Year         int
		AmountDue    decimal.Decimal
		AmountPaid   decimal.Decimal
		Status       models.AssessmentStatus
		AddressLine1 string
		AddressLine2 *string
		City         *string
		State        *string
		Zip          *string
	}
	var rows []optionRow
	err := db.Model(&models.Assessment{}).
		Select("assessments.id, assessments.property_id, assessments.year, assessments.amount_due, assessments.amount_paid, assessments.status, properties.address_line1, properties.address_line2, properties.city, properties.state, properties.zip").
		Joins("JOIN properties ON properties.id = assessments.property_id").
		Where("assessments.year = ?", year).
		Scopes(ownedBy(personID, asOf)).
		Order("properties.address_line1, assessments.id").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	options := make([]AssessmentOption, 0, len(rows))
	for _, r := range rows {
		address := r.AddressLine1
		if r.AddressLine2 != nil && strings.TrimSpace(*r.AddressLine2) != "" {
			address += ", " + *r.AddressLine2
		}
		options = append(options, AssessmentOption{
			AssessmentID: r.ID,
			PropertyID:   r.PropertyID,
			Address:      address,
			City:         r.City,
			State:        r.State,
			Zip:          r.Zip,
			Year:         r.Year,
			AmountDue:    r.AmountDue,
			AmountPaid:   r.AmountPaid,
			Balance:      allocation.Balance(r.AmountDue, r.AmountPaid),
			Status:       r.Status,
		})
	}
	return options, nil
}

// ListByPerson pages a person's payments, newest first, with the years they
// were applied to and where they went.
func (s *paymentService) ListByPerson(ctx context.Context, personID uint, page pagination.PageRequest) (*pagination.PageResponse[PaymentSummary], error) {
	page.Defaults()
	db := s.db.WithContext(ctx)
	if err := personExists(db, personID); err != nil {
		return nil, err
	}

	var total int64
	if err := db.Model(&models.Payment{}).Where("person_id = ?", personID).Count(&total).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var payments []models.Payment
	err := db.Preload("TargetProperty").
		Where("person_id = ?", personID).
		Order("paid_at DESC, id DESC").
		Scopes(pagination.Paginate(page)).
		Find(&payments).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	ids := make([]uint, 0, len(payments))
	for _, p := range payments {
		ids = append(ids, p.ID)
	}

	type allocRow struct {
		PaymentID uint
		Amount    decimal.Decimal
		Year      int
	}
	var allocs []allocRow
	if len(ids) > 0 {
		err := db.Model(&models.PaymentAllocation{}).
			Select("payment_allocations.payment_id, payment_allocations.amount, assessments.year").
			Joins("JOIN assessments ON assessments.id = payment_allocations.assessment_id").
			Where("payment_allocations.payment_id IN ?", ids).
			Scan(&allocs).Error
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	years := map[uint]map[int]struct{}{}
	applied := map[uint]decimal.Decimal{}
	for _, a := range allocs {
		if years[a.PaymentID] == nil {
			years[a.PaymentID] = map[int]struct{}{}
		}
		years[a.PaymentID][a.Year] = struct{}{}
		applied[a.PaymentID] = applied[a.PaymentID].Add(a.Amount)
	}

	summaries := make([]PaymentSummary, 0, len(payments))
	for _, p := range payments {
		summaries = append(summaries, PaymentSummary{
			Payment:     p,
			Allocated:   applied[p.ID],
			YearDisplay: yearDisplay(years[p.ID]),
			AppliedTo:   appliedTo(p),
		})
	}

	resp := pagination.NewPageResponse(summaries, page.Page, page.PageSize, total)
	return &resp, nil
}

// GetAllocations returns the allocation rows of a payment with their assessments.
func (s *paymentService) GetAllocations(ctx context.Context, paymentID uint) ([]models.PaymentAllocation, error) {
	db := s.db.WithContext(ctx)
	var payment models.Payment
	if err := db.Select("id").First(&payment, paymentID).Error; err != nil {
		return nil, notFound(err, apperrors.ErrPaymentNotFound)
	}

	var allocs []models.PaymentAllocation
	if err := db.Preload("Assessment").Where("payment_id = ?", paymentID).Order("id").Find(&allocs).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return allocs, nil
}

func yearDisplay(years map[int]struct{}) string {
	switch len(years) {
	case 0:
		return "—"
	case 1:
		for y := range years {
			return strconv.Itoa(y)
		}
	}
	return "Multiple"
}

func appliedTo(p models.Payment) string {
	switch {
	case p.IsDonation:
		return "Donation"
	case p.TargetProperty != nil:
		return p.TargetProperty.AddressLine1
	default:
		return "Split"
	}
}
