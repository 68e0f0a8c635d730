package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"firedues/internal/models"
	"firedues/internal/pagination"
)

// UserServicer defines the contract for clerk accounts.
type UserServicer interface {
	CreateUser(ctx context.Context, email, password, firstName, lastName string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	AttemptLogin(ctx context.Context, email, password string) (*models.User, error)
	StoreRefreshTokenHash(ctx context.Context, userID uint, tokenHash string) error
	GetRefreshTokenHash(ctx context.Context, userID uint) (string, error)
}

// FeeScheduleServicer resolves and maintains per-year property fees.
type FeeScheduleServicer interface {
	// GetFee returns the per-property fee for year, or zero when none is
	// configured. It only errors when the store is unavailable.
	GetFee(ctx context.Context, year int) (decimal.Decimal, error)
	Get(ctx context.Context, year int) (*models.FeeSchedule, error)
	List(ctx context.Context) ([]models.FeeSchedule, error)
	Set(ctx context.Context, year int, amount decimal.Decimal) (*models.FeeSchedule, error)
	Delete(ctx context.Context, id uint) error
}

// RolloverServicer guarantees one assessment per active property per year.
type RolloverServicer interface {
	CreateMissingAssessments(ctx context.Context, year int) (int, error)
	CreateMissingAssessmentsForPerson(ctx context.Context, personID uint, year int, asOf time.Time) (int, error)
}

// PaymentRequest describes a payment to record and how to apply it.
type PaymentRequest struct {
	PersonID           uint
	Amount             decimal.Decimal
	PaymentType        models.PaymentType
	PaidAt             time.Time
	CheckNumber        *string
	IsDonation         bool
	Notes              *string
	Mode               models.AllocationMode
	TargetAssessmentID *uint
	// Year selects the assessments for split allocation; nil means the
	// year of the as-of date. A year after the as-of year defers allocation.
	Year *int
}

// AllocationRequest applies an already recorded payment.
type AllocationRequest struct {
	Mode               models.AllocationMode
	TargetAssessmentID *uint
	Year               *int
}

// AllocationResult reports what one allocation call wrote.
type AllocationResult struct {
	Payment     *models.Payment            `json:"payment"`
	Allocations []models.PaymentAllocation `json:"allocations"`
	Allocated   decimal.Decimal            `json:"allocated"`
	Unallocated decimal.Decimal            `json:"unallocated"`
	Deferred    bool                       `json:"deferred"`
}

// AssessmentOption is an assessment a payer may target directly.
type AssessmentOption struct {
	AssessmentID uint                    `json:"assessment_id"`
	PropertyID   uint                    `json:"property_id"`
	Address      string                  `json:"address"`
	City         *string                 `json:"city,omitempty"`
	State        *string                 `json:"state,omitempty"`
	Zip          *string                 `json:"zip,omitempty"`
	Year         int                     `json:"year"`
	AmountDue    decimal.Decimal         `json:"amount_due"`
	AmountPaid   decimal.Decimal         `json:"amount_paid"`
	Balance      decimal.Decimal         `json:"balance"`
	Status       models.AssessmentStatus `json:"status"`
}

// PaymentSummary is a payment row with display projections.
type PaymentSummary struct {
	models.Payment
	Allocated   decimal.Decimal `json:"allocated"`
	YearDisplay string          `json:"year_display"`
	AppliedTo   string          `json:"applied_to"`
}

// PaymentServicer is the allocation engine's entry point.
type PaymentServicer interface {
	CreateAndAllocate(ctx context.Context, req PaymentRequest, asOf time.Time) (*AllocationResult, error)
	CreatePayment(ctx context.Context, req PaymentRequest, asOf time.Time) (*models.Payment, error)
	AllocatePayment(ctx context.Context, paymentID uint, req AllocationRequest, asOf time.Time) (*AllocationResult, error)
	AllocatePendingForYear(ctx context.Context, year int, asOf time.Time) (int, error)
	ListAssessmentOptions(ctx context.Context, personID uint, year int, asOf time.Time) ([]AssessmentOption, error)
	ListByPerson(ctx context.Context, personID uint, page pagination.PageRequest) (*pagination.PageResponse[PaymentSummary], error)
	GetAllocations(ctx context.Context, paymentID uint) ([]models.PaymentAllocation, error)
}

// PersonInput holds the editable fields of a person.
type PersonInput struct {
	FirstName string
	LastName  string
	Email     *string
	Phone     *string
	Notes     *string
}

// PropertyInput holds the editable fields of a property.
type PropertyInput struct {
	AddressLine1 string
	AddressLine2 *string
	City         *string
	State        *string
	Zip          *string
	ParcelNumber *string
}

// IntakeInput registers a new member together with the property they own.
type IntakeInput struct {
	Person   PersonInput
	Property PropertyInput
}

// IntakeResult is the rows written by an intake.
type IntakeResult struct {
	Person    *models.Person    `json:"person"`
	Property  *models.Property  `json:"property"`
	Ownership *models.Ownership `json:"ownership"`
}

// PersonServicer maintains members.
type PersonServicer interface {
	CreatePerson(ctx context.Context, in PersonInput) (*models.Person, error)
	Intake(ctx context.Context, in IntakeInput, asOf time.Time) (*IntakeResult, error)
	GetPerson(ctx context.Context, id uint) (*models.Person, error)
	ListPeople(ctx context.Context, page pagination.PageRequest, search string) (*pagination.PageResponse[models.Person], error)
	DeletePerson(ctx context.Context, id uint) error
	ListOwnerships(ctx context.Context, personID uint) ([]models.Ownership, error)
}

// PropertyServicer maintains properties and who owns them.
type PropertyServicer interface {
	CreateProperty(ctx context.Context, in PropertyInput) (*models.Property, error)
	GetProperty(ctx context.Context, id uint) (*models.Property, error)
	SetPropertyActive(ctx context.Context, id uint, active bool) (*models.Property, error)
	DeleteProperty(ctx context.Context, id uint) error
	AddOwnership(ctx context.Context, personID, propertyID uint, start time.Time, end *time.Time) (*models.Ownership, error)
	EndOwnership(ctx context.Context, ownershipID uint, end time.Time) (*models.Ownership, error)
}

// UtilityRow is one payer line from a utility billing import.
type UtilityRow struct {
	PayerName string
	Amount    decimal.Decimal
	PersonID  *uint
}

// UtilityImport is a batch of utility billing rows.
type UtilityImport struct {
	Rows []UtilityRow
	// Year is the assessment year matched rows are split across; nil means
	// the year of the as-of date.
	Year *int
	// CreatePayments records and allocates a utility payment for every row
	// that names a person. Otherwise rows are only recorded.
	CreatePayments bool
}

// UtilityImportResult summarises an import.
type UtilityImportResult struct {
	Notices         []models.UtilityNotice `json:"notices"`
	PaymentsCreated int                    `json:"payments_created"`
	NeedsReview     int                    `json:"needs_review"`
	Allocated       decimal.Decimal        `json:"allocated"`
}

// UtilityNoticeFilter narrows a notice listing.
type UtilityNoticeFilter struct {
	NeedsReview *bool
}

// UtilityNoticeServicer turns utility billing rows into payments.
type UtilityNoticeServicer interface {
	Import(ctx context.Context, in UtilityImport, asOf time.Time) (*UtilityImportResult, error)
	List(ctx context.Context, filter UtilityNoticeFilter, page pagination.PageRequest) (*pagination.PageResponse[models.UtilityNotice], error)
	Match(ctx context.Context, noticeID uint, personID *uint, asOf time.Time) (*models.UtilityNotice, error)
}

// JobRunServicer records background job executions.
type JobRunServicer interface {
	Start(ctx context.Context, kind, trigger string, year int, startedAt time.Time) (*models.JobRun, error)
	Finish(ctx context.Context, run *models.JobRun, finishedAt time.Time, runErr error) error
	List(ctx context.Context, kind string, page pagination.PageRequest) (*pagination.PageResponse[models.JobRun], error)
}
