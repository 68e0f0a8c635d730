package services

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"firedues/internal/allocation"
	apperrors "firedues/internal/errors"
	"firedues/internal/models"
)

// The functions in this file run inside a caller-owned transaction so the
// payment row and its allocations commit or roll back together.

// forUpdate locks rows an allocation reads before writing back to them.
// SQLite drops the clause and relies on _txlock=immediate.
var forUpdate = clause.Locking{Strength: "UPDATE"}

func normalizePaymentRequest(req *PaymentRequest, asOf time.Time) error {
	req.Amount = models.RoundMoney(req.Amount)
	if !req.Amount.IsPositive() {
		return apperrors.ErrInvalidAmount
	}
	if req.PaymentType == "" {
		req.PaymentType = models.PaymentTypeCash
	}
	if !req.PaymentType.Valid() {
		return apperrors.ErrInvalidPaymentType
	}
	if req.PaidAt.IsZero() {
		req.PaidAt = asOf
	}
	req.CheckNumber = trimmedOrNil(req.CheckNumber)
	req.Notes = trimmedOrNil(req.Notes)
	if req.IsDonation {
		return nil
	}

	alloc := AllocationRequest{Mode: req.Mode, TargetAssessmentID: req.TargetAssessmentID, Year: req.Year}
	if err := normalizeAllocationRequest(&alloc); err != nil {
		return err
	}
	req.Mode = alloc.Mode
	return nil
}

func normalizeAllocationRequest(req *AllocationRequest) error {
	if req.Mode == "" {
		req.Mode = models.AllocationModeSplitAcrossAll
	}
	if !req.Mode.Valid() {
		return apperrors.ErrInvalidAllocationMode
	}
	if req.Mode == models.AllocationModeSingleAssessment && (req.TargetAssessmentID == nil || *req.TargetAssessmentID == 0) {
		return apperrors.ErrTargetAssessmentRequired
	}
	if req.Year != nil {
		if err := validateYear(*req.Year); err != nil {
			return err
		}
	}
	return nil
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

// createAndAllocate expects a normalized request.
func createAndAllocate(tx *gorm.DB, req PaymentRequest, asOf time.Time) (*AllocationResult, error) {
	if err := personExists(tx, req.PersonID); err != nil {
		return nil, err
	}
	payment, err := insertPayment(tx, req)
	if err != nil {
		return nil, err
	}
	if payment.IsDonation {
		return &AllocationResult{
			Payment:     payment,
			Allocations: []models.PaymentAllocation{},
			Allocated:   decimal.Zero,
			Unallocated: payment.Amount,
		}, nil
	}
	return allocate(tx, payment, AllocationRequest{
		Mode:               req.Mode,
		TargetAssessmentID: req.TargetAssessmentID,
		Year:               req.Year,
	}, asOf)
}

func insertPayment(tx *gorm.DB, req PaymentRequest) (*models.Payment, error) {
	payment := &models.Payment{
		PersonID:    req.PersonID,
		Amount:      req.Amount,
		PaymentType: req.PaymentType,
		PaidAt:      req.PaidAt.UTC(),
		CheckNumber: req.CheckNumber,
		IsDonation:  req.IsDonation,
		Notes:       req.Notes,
	}
	if err := tx.Create(payment).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return payment, nil
}

// allocate applies an unallocated, non-donation payment.
func allocate(tx *gorm.DB, payment *models.Payment, req AllocationRequest, asOf time.Time) (*AllocationResult, error) {
	result := &AllocationResult{Payment: payment, Allocations: []models.PaymentAllocation{}}

	switch req.Mode {
	case models.AllocationModeSingleAssessment:
		var target models.Assessment
		if err := tx.Clauses(forUpdate).First(&target, *req.TargetAssessmentID).Error; err != nil {
			return nil, notFound(err, apperrors.ErrAssessmentNotFound)
		}
		if err := tx.Model(payment).Update("target_property_id", target.PropertyID).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		payment.TargetPropertyID = &target.PropertyID

		// A settled target takes nothing and the rest of the payment stays unapplied.
		if share, ok := allocation.Single(candidateOf(target), payment.Amount); ok {
			allocs, err := applyShares(tx, payment.ID, []allocation.Share{share}, map[uint]*models.Assessment{target.ID: &target})
			if err != nil {
				return nil, err
			}
			result.Allocations = allocs
		}

	default:
		year := asOf.Year()
		if req.Year != nil {
			year = *req.Year
		}
		if year > asOf.Year() {
			if err := tx.Model(payment).Update("target_year", year).Error; err != nil {
				return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			payment.TargetYear = &year
			result.Deferred = true
			break
		}

		candidates, byID, err := splitCandidates(tx, payment.PersonID, year, asOf)
		if err != nil {
			return nil, err
		}
		shares := allocation.Split(candidates, payment.Amount)
		allocs, err := applyShares(tx, payment.ID, shares, byID)
		if err != nil {
			return nil, err
		}
		result.Allocations = allocs
	}

	if len(result.Allocations) > 0 && payment.TargetYear != nil {
		if err := tx.Model(payment).Update("target_year", nil).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		payment.TargetYear = nil
	}

	result.Allocated = decimal.Zero
	for _, a := range result.Allocations {
		result.Allocated = result.Allocated.Add(a.Amount)
	}
	result.Unallocated = payment.Amount.Sub(result.Allocated)
	return result, nil
}

// splitCandidates loads and locks the year's assessments on properties
// personID owns on asOf, ordered by id.
func splitCandidates(tx *gorm.DB, personID uint, year int, asOf time.Time) ([]allocation.Candidate, map[uint]*models.Assessment, error) {
	var assessments []models.Assessment
	err := tx.Clauses(forUpdate).
		Where("assessments.year = ?", year).
		Scopes(ownedBy(personID, asOf)).
		Order("assessments.id").
		Find(&assessments).Error
	if err != nil {
		return nil, nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	candidates := make([]allocation.Candidate, 0, len(assessments))
	byID := make(map[uint]*models.Assessment, len(assessments))
	for i := range assessments {
		a := &assessments[i]
		candidates = append(candidates, candidateOf(*a))
		byID[a.ID] = a
	}
	return candidates, byID, nil
}

func candidateOf(a models.Assessment) allocation.Candidate {
	return allocation.Candidate{AssessmentID: a.ID, AmountDue: a.AmountDue, AmountPaid: a.AmountPaid}
}

// applyShares writes one allocation row per share and adds the share to the
// assessment's paid total. The assessments must have been read under
// forUpdate in tx so their paid totals are current.
func applyShares(tx *gorm.DB, paymentID uint, shares []allocation.Share, assessments map[uint]*models.Assessment) ([]models.PaymentAllocation, error) {
	allocs := make([]models.PaymentAllocation, 0, len(shares))
	for _, share := range shares {
		a, ok := assessments[share.AssessmentID]
		if !ok {
			return nil, apperrors.ErrAssessmentNotFound
		}

		paid := a.AmountPaid.Add(share.Amount)
		status := models.DeriveStatus(a.AmountDue, paid)
		err := tx.Model(&models.Assessment{}).Where("id = ?", a.ID).Updates(map[string]interface{}{
			"amount_paid": paid,
			"status":      status,
		}).Error
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		a.AmountPaid = paid
		a.Status = status

		row := models.PaymentAllocation{PaymentID: paymentID, AssessmentID: a.ID, Amount: share.Amount}
		if err := tx.Create(&row).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		allocs = append(allocs, row)
	}
	return allocs, nil
}

func countAllocations(tx *gorm.DB, paymentID uint) (int64, error) {
	var n int64
	if err := tx.Model(&models.PaymentAllocation{}).Where("payment_id = ?", paymentID).Count(&n).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return n, nil
}
