package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"firedues/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// Date returns midnight UTC for the given calendar day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("clerk%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestPerson creates an active person with a unique name.
func CreateTestPerson(t *testing.T, db *gorm.DB) *models.Person {
	t.Helper()

	person := &models.Person{
		FirstName: "Test",
		LastName:  fmt.Sprintf("Member%d", nextID()),
		Active:    true,
	}
	if err := db.Create(person).Error; err != nil {
		t.Fatalf("failed to create test person: %v", err)
	}
	return person
}

// CreateTestProperty creates an active property with a unique address.
func CreateTestProperty(t *testing.T, db *gorm.DB) *models.Property {
	t.Helper()
	return CreateTestPropertyWithAddress(t, db, fmt.Sprintf("%d Hydrant Rd", nextID()))
}

// CreateTestPropertyWithAddress creates an active property at the given address.
func CreateTestPropertyWithAddress(t *testing.T, db *gorm.DB, address string) *models.Property {
	t.Helper()

	property := &models.Property{AddressLine1: address, Active: true}
	if err := db.Create(property).Error; err != nil {
		t.Fatalf("failed to create test property: %v", err)
	}
	return property
}

// CreateTestInactiveProperty creates a deactivated property.
func CreateTestInactiveProperty(t *testing.T, db *gorm.DB) *models.Property {
	t.Helper()

	property := CreateTestProperty(t, db)
	if err := db.Model(property).Update("active", false).Error; err != nil {
		t.Fatalf("failed to deactivate test property: %v", err)
	}
	property.Active = false
	return property
}

// CreateTestOwnership links person and property from start, open-ended when end is nil.
func CreateTestOwnership(t *testing.T, db *gorm.DB, personID, propertyID uint, start time.Time, end *time.Time) *models.Ownership {
	t.Helper()

	ownership := &models.Ownership{
		PersonID:   personID,
		PropertyID: propertyID,
		StartDate:  models.DateOnly(start),
	}
	if end != nil {
		e := models.DateOnly(*end)
		ownership.EndDate = &e
	}
	if err := db.Create(ownership).Error; err != nil {
		t.Fatalf("failed to create test ownership: %v", err)
	}
	return ownership
}

// CreateTestOwnedProperty creates a property owned by personID since 2000-01-01.
func CreateTestOwnedProperty(t *testing.T, db *gorm.DB, personID uint) *models.Property {
	t.Helper()

	property := CreateTestProperty(t, db)
	CreateTestOwnership(t, db, personID, property.ID, Date(2000, time.January, 1), nil)
	return property
}

// CreateTestFeeSchedule sets the per-property fee for year.
func CreateTestFeeSchedule(t *testing.T, db *gorm.DB, year int, amount string) *models.FeeSchedule {
	t.Helper()

	fee := &models.FeeSchedule{Year: year, AmountPerProperty: D(amount)}
	if err := db.Create(fee).Error; err != nil {
		t.Fatalf("failed to create test fee schedule: %v", err)
	}
	return fee
}

// CreateTestAssessment creates an assessment with the given due and paid amounts.
func CreateTestAssessment(t *testing.T, db *gorm.DB, propertyID uint, year int, due, paid string) *models.Assessment {
	t.Helper()

	assessment := &models.Assessment{
		PropertyID: propertyID,
		Year:       year,
		AmountDue:  D(due),
		AmountPaid: D(paid),
		Status:     models.DeriveStatus(D(due), D(paid)),
	}
	if err := db.Create(assessment).Error; err != nil {
		t.Fatalf("failed to create test assessment: %v", err)
	}
	return assessment
}

// CreateTestPayment creates an unallocated cash payment.
func CreateTestPayment(t *testing.T, db *gorm.DB, personID uint, amount string) *models.Payment {
	t.Helper()
	return createTestPayment(t, db, &models.Payment{PersonID: personID, Amount: D(amount)})
}

// CreateTestPendingPayment creates a payment parked for a future year.
func CreateTestPendingPayment(t *testing.T, db *gorm.DB, personID uint, amount string, year int) *models.Payment {
	t.Helper()
	return createTestPayment(t, db, &models.Payment{PersonID: personID, Amount: D(amount), TargetYear: &year})
}

// CreateTestDonation creates a donation, optionally tagged with a target year.
func CreateTestDonation(t *testing.T, db *gorm.DB, personID uint, amount string, year *int) *models.Payment {
	t.Helper()
	return createTestPayment(t, db, &models.Payment{PersonID: personID, Amount: D(amount), IsDonation: true, TargetYear: year})
}

func createTestPayment(t *testing.T, db *gorm.DB, payment *models.Payment) *models.Payment {
	t.Helper()

	payment.PaymentType = models.PaymentTypeCash
	payment.PaidAt = Date(2025, time.March, 1)
	if err := db.Create(payment).Error; err != nil {
		t.Fatalf("failed to create test payment: %v", err)
	}
	return payment
}

// ReloadAssessment fetches the current state of an assessment.
func ReloadAssessment(t *testing.T, db *gorm.DB, id uint) *models.Assessment {
	t.Helper()

	var a models.Assessment
	if err := db.First(&a, id).Error; err != nil {
		t.Fatalf("failed to reload assessment %d: %v", id, err)
	}
	return &a
}

// ReloadPayment fetches the current state of a payment.
func ReloadPayment(t *testing.T, db *gorm.DB, id uint) *models.Payment {
	t.Helper()

	var p models.Payment
	if err := db.First(&p, id).Error; err != nil {
		t.Fatalf("failed to reload payment %d: %v", id, err)
	}
	return &p
}

// CountAllocations returns the number of allocation rows for a payment.
func CountAllocations(t *testing.T, db *gorm.DB, paymentID uint) int64 {
	t.Helper()

	var n int64
	if err := db.Model(&models.PaymentAllocation{}).Where("payment_id = ?", paymentID).Count(&n).Error; err != nil {
		t.Fatalf("failed to count allocations: %v", err)
	}
	return n
}
