package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentType identifies how money was received.
type PaymentType string

const (
	PaymentTypeCash    PaymentType = "cash"
	PaymentTypeCheck   PaymentType = "check"
	PaymentTypeUtility PaymentType = "utility"
)

// Valid reports whether t is a known payment type.
func (t PaymentType) Valid() bool {
	switch t {
	case PaymentTypeCash, PaymentTypeCheck, PaymentTypeUtility:
		return true
	}
	return false
}

// AllocationMode selects how a payment is spread over assessments.
type AllocationMode string

const (
	AllocationModeSplitAcrossAll   AllocationMode = "split_across_all"
	AllocationModeSingleAssessment AllocationMode = "single_assessment"
)

// Valid reports whether m is a known allocation mode.
func (m AllocationMode) Valid() bool {
	return m == AllocationModeSplitAcrossAll || m == AllocationModeSingleAssessment
}

// Payment is money received from one person. A non-nil TargetYear with no
// allocations marks a payment waiting for that year's assessments.
type Payment struct {
	Base
	PersonID         uint            `gorm:"not null;index" json:"person_id"`
	Amount           decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	PaymentType      PaymentType     `gorm:"type:varchar(16);not null" json:"payment_type"`
	PaidAt           time.Time       `gorm:"not null" json:"paid_at"`
	CheckNumber      *string         `json:"check_number,omitempty"`
	IsDonation       bool            `gorm:"not null" json:"is_donation"`
	Notes            *string         `json:"notes,omitempty"`
	TargetPropertyID *uint           `json:"target_property_id,omitempty"`
	TargetYear       *int            `gorm:"index" json:"target_year,omitempty"`

	Person         *Person   `gorm:"foreignKey:PersonID;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT" json:"-"`
	TargetProperty *Property `gorm:"foreignKey:TargetPropertyID;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT" json:"target_property,omitempty"`
}

// PaymentAllocation records the part of a payment applied to one assessment.
// Rows are written once and never changed.
type PaymentAllocation struct {
	Base
	PaymentID    uint            `gorm:"not null;index" json:"payment_id"`
	AssessmentID uint            `gorm:"not null;index" json:"assessment_id"`
	Amount       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`

	Payment    *Payment    `gorm:"foreignKey:PaymentID;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT" json:"-"`
	Assessment *Assessment `gorm:"foreignKey:AssessmentID;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT" json:"assessment,omitempty"`
}

// UtilityNotice is one row of an imported utility billing file.
type UtilityNotice struct {
	Base
	PayerNameRaw     string          `gorm:"not null" json:"payer_name_raw"`
	Amount           decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	ImportedAt       time.Time       `gorm:"not null" json:"imported_at"`
	MatchedPersonID  *uint           `gorm:"index" json:"matched_person_id,omitempty"`
	OriginalFullName *string         `json:"original_full_name,omitempty"`
	PaymentID        *uint           `json:"payment_id,omitempty"`
	IsAllocated      bool            `gorm:"not null" json:"is_allocated"`
	NeedsReview      bool            `gorm:"not null;index" json:"needs_review"`

	MatchedPerson *Person  `gorm:"foreignKey:MatchedPersonID;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT" json:"-"`
	Payment       *Payment `gorm:"foreignKey:PaymentID;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT" json:"-"`
}
