package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firedues/internal/testutil"
)

func TestCreateProperty(t *testing.T) {
	ctx := context.Background()

	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPropertyService(db)

		p, err := svc.CreateProperty(ctx, PropertyInput{AddressLine1: " 7 Pumper Rd ", City: strPtr("Ashford")})
		testutil.AssertNoError(t, err)
		assert.Equal(t, "7 Pumper Rd", p.AddressLine1)
		assert.True(t, p.Active)
	})

	t.Run("address_required", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPropertyService(db)

		_, err := svc.CreateProperty(ctx, PropertyInput{})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("duplicate_parcel", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPropertyService(db)

		_, err := svc.CreateProperty(ctx, PropertyInput{AddressLine1: "1 A St", ParcelNumber: strPtr("P-1")})
		testutil.AssertNoError(t, err)
		_, err = svc.CreateProperty(ctx, PropertyInput{AddressLine1: "2 B St", ParcelNumber: strPtr("P-1")})
		testutil.AssertAppError(t, err, "DUPLICATE_PARCEL")
	})
}

func TestSetPropertyActive(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewPropertyService(db)
	p := testutil.CreateTestProperty(t, db)

	updated, err := svc.SetPropertyActive(ctx, p.ID, false)
	testutil.AssertNoError(t, err)
	assert.False(t, updated.Active)

	reloaded, err := svc.GetProperty(ctx, p.ID)
	testutil.AssertNoError(t, err)
	assert.False(t, reloaded.Active)

	_, err = svc.SetPropertyActive(ctx, 999, true)
	testutil.AssertAppError(t, err, "PROPERTY_NOT_FOUND")
}

func TestDeleteProperty(t *testing.T) {
	ctx := context.Background()

	t.Run("unused", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPropertyService(db)
		p := testutil.CreateTestProperty(t, db)

		testutil.AssertNoError(t, svc.DeleteProperty(ctx, p.ID))
		_, err := svc.GetProperty(ctx, p.ID)
		testutil.AssertAppError(t, err, "PROPERTY_NOT_FOUND")
	})

	t.Run("assessed_is_restricted", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPropertyService(db)
		p := testutil.CreateTestProperty(t, db)
		testutil.CreateTestAssessment(t, db, p.ID, 2025, "100", "0")

		testutil.AssertAppError(t, svc.DeleteProperty(ctx, p.ID), "PROPERTY_HAS_DEPENDENTS")
	})
}

func TestOwnershipLifecycle(t *testing.T) {
	ctx := context.Background()

	t.Run("add_and_end", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPropertyService(db)
		person := testutil.CreateTestPerson(t, db)
		p := testutil.CreateTestProperty(t, db)

		o, err := svc.AddOwnership(ctx, person.ID, p.ID, time.Date(2020, time.March, 4, 18, 0, 0, 0, time.UTC), nil)
		testutil.AssertNoError(t, err)
		assert.True(t, o.StartDate.Equal(testutil.Date(2020, time.March, 4)))
		assert.True(t, o.OwnedAt(testutil.Date(2025, time.January, 1)))

		ended, err := svc.EndOwnership(ctx, o.ID, testutil.Date(2024, time.December, 31))
		testutil.AssertNoError(t, err)
		require.NotNil(t, ended.EndDate)
		assert.False(t, ended.OwnedAt(testutil.Date(2025, time.January, 1)))
	})

	t.Run("end_before_start", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPropertyService(db)
		person := testutil.CreateTestPerson(t, db)
		p := testutil.CreateTestProperty(t, db)
		end := testutil.Date(2019, time.January, 1)

		_, err := svc.AddOwnership(ctx, person.ID, p.ID, testutil.Date(2020, time.January, 1), &end)
		testutil.AssertAppError(t, err, "INVALID_OWNERSHIP_DATES")

		o := testutil.CreateTestOwnership(t, db, person.ID, p.ID, testutil.Date(2020, time.January, 1), nil)
		_, err = svc.EndOwnership(ctx, o.ID, end)
		testutil.AssertAppError(t, err, "INVALID_OWNERSHIP_DATES")
	})

	t.Run("unknown_parties", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPropertyService(db)
		person := testutil.CreateTestPerson(t, db)
		p := testutil.CreateTestProperty(t, db)
		start := testutil.Date(2020, time.January, 1)

		_, err := svc.AddOwnership(ctx, 999, p.ID, start, nil)
		testutil.AssertAppError(t, err, "PERSON_NOT_FOUND")
		_, err = svc.AddOwnership(ctx, person.ID, 999, start, nil)
		testutil.AssertAppError(t, err, "PROPERTY_NOT_FOUND")
		_, err = svc.EndOwnership(ctx, 999, start)
		testutil.AssertAppError(t, err, "OWNERSHIP_NOT_FOUND")
	})
}
