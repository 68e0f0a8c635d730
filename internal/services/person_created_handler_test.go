package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firedues/internal/events"
	"firedues/internal/models"
	"firedues/internal/testutil"
)

type otherEvent struct{}

func (otherEvent) Name() string { return events.PersonCreatedEvent }

func TestPersonCreatedHandler(t *testing.T) {
	now := func() time.Time { return testutil.Date(2025, time.August, 1) }

	t.Run("assesses_new_persons_properties", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		testutil.CreateTestFeeSchedule(t, db, 2025, "100.00")
		rollover := NewRolloverService(db, NewFeeScheduleService(db))

		bus := events.NewBus(context.Background())
		bus.Subscribe(events.PersonCreatedEvent, NewPersonCreatedHandler(rollover, now))
		people := NewPersonService(db, bus)

		res, err := people.Intake(context.Background(), IntakeInput{
			Person:   PersonInput{FirstName: "New", LastName: "Member"},
			Property: PropertyInput{AddressLine1: "5 Siren St"},
		}, now())
		testutil.AssertNoError(t, err)
		bus.Wait()

		var rows []models.Assessment
		require.NoError(t, db.Where("property_id = ?", res.Property.ID).Find(&rows).Error)
		require.Len(t, rows, 1)
		assert.Equal(t, 2025, rows[0].Year)

		handler := NewPersonCreatedHandler(rollover, now)
		testutil.AssertNoError(t, handler(context.Background(), events.PersonCreated{PersonID: res.Person.ID}))
		var n int64
		require.NoError(t, db.Model(&models.Assessment{}).Count(&n).Error)
		assert.Equal(t, int64(1), n)
	})

	t.Run("rejects_foreign_payload", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		handler := NewPersonCreatedHandler(NewRolloverService(db, NewFeeScheduleService(db)), now)

		assert.Error(t, handler(context.Background(), otherEvent{}))
	})
}
