package models

import "github.com/shopspring/decimal"

// AssessmentStatus is derived from amount due and amount paid.
type AssessmentStatus string

const (
	AssessmentStatusUnpaid   AssessmentStatus = "unpaid"
	AssessmentStatusPartial  AssessmentStatus = "partial"
	AssessmentStatusPaid     AssessmentStatus = "paid"
	AssessmentStatusOverpaid AssessmentStatus = "overpaid"
)

// FeeSchedule is the per-property fee for one year.
type FeeSchedule struct {
	Base
	Year              int             `gorm:"not null;uniqueIndex:idx_fee_schedules_year" json:"year"`
	AmountPerProperty decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount_per_property"`
}

// Assessment is the annual liability of one property. At most one exists per
// property and year.
type Assessment struct {
	Base
	PropertyID uint             `gorm:"not null;uniqueIndex:idx_assessments_property_year,priority:1" json:"property_id"`
	Year       int              `gorm:"not null;uniqueIndex:idx_assessments_property_year,priority:2;index" json:"year"`
	AmountDue  decimal.Decimal  `gorm:"type:decimal(12,2);not null" json:"amount_due"`
	AmountPaid decimal.Decimal  `gorm:"type:decimal(12,2);not null" json:"amount_paid"`
	Status     AssessmentStatus `gorm:"type:varchar(16);not null" json:"status"`

	Property *Property `gorm:"foreignKey:PropertyID;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT" json:"property,omitempty"`
}

// Balance returns max(0, due - paid).
func (a Assessment) Balance() decimal.Decimal {
	b := a.AmountDue.Sub(a.AmountPaid)
	if b.IsNegative() {
		return decimal.Zero
	}
	return b
}

// DeriveStatus maps due and paid totals onto an AssessmentStatus.
func DeriveStatus(due, paid decimal.Decimal) AssessmentStatus {
	switch {
	case paid.IsZero() && due.IsPositive():
		return AssessmentStatusUnpaid
	case paid.LessThan(due):
		return AssessmentStatusPartial
	case paid.Equal(due):
		return AssessmentStatusPaid
	default:
		return AssessmentStatusOverpaid
	}
}
