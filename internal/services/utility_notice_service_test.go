package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firedues/internal/models"
	"firedues/internal/pagination"
	"firedues/internal/testutil"
)

func TestImportUtilityNotices(t *testing.T) {
	ctx := context.Background()
	asOf := testutil.Date(2025, time.July, 15)

	t.Run("matched_rows_become_split_payments", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUtilityNoticeService(db)
		person := testutil.CreateTestPerson(t, db)
		as := ownedAssessments(t, db, person.ID, 2025, "100.00", "100.00")

		res, err := svc.Import(ctx, UtilityImport{
			Rows: []UtilityRow{
				{PayerName: "MEMBER, TEST", Amount: testutil.D("50"), PersonID: &person.ID},
				{PayerName: "SOMEONE ELSE", Amount: testutil.D("20")},
			},
			CreatePayments: true,
		}, asOf)
		testutil.AssertNoError(t, err)
		assert.Equal(t, 1, res.PaymentsCreated)
		assert.Equal(t, 1, res.NeedsReview)
		testutil.AssertMoney(t, "50.00", res.Allocated)
		require.Len(t, res.Notices, 2)

		matched := res.Notices[0]
		require.NotNil(t, matched.PaymentID)
		assert.True(t, matched.IsAllocated)
		assert.False(t, matched.NeedsReview)
		require.NotNil(t, matched.OriginalFullName)
		assert.Equal(t, person.FullName(), *matched.OriginalFullName)

		payment := testutil.ReloadPayment(t, db, *matched.PaymentID)
		assert.Equal(t, models.PaymentTypeUtility, payment.PaymentType)
		for _, a := range as {
			testutil.AssertMoney(t, "25.00", testutil.ReloadAssessment(t, db, a.ID).AmountPaid)
		}

		unmatched := res.Notices[1]
		assert.True(t, unmatched.NeedsReview)
		assert.Nil(t, unmatched.PaymentID)
	})

	t.Run("record_only", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUtilityNoticeService(db)
		person := testutil.CreateTestPerson(t, db)

		res, err := svc.Import(ctx, UtilityImport{
			Rows: []UtilityRow{{PayerName: "MEMBER", Amount: testutil.D("50"), PersonID: &person.ID}},
		}, asOf)
		testutil.AssertNoError(t, err)
		assert.Zero(t, res.PaymentsCreated)
		assert.Nil(t, res.Notices[0].PaymentID)
		assert.Equal(t, person.ID, *res.Notices[0].MatchedPersonID)
	})

	t.Run("invalid_row_rejects_batch", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUtilityNoticeService(db)

		_, err := svc.Import(ctx, UtilityImport{Rows: []UtilityRow{
			{PayerName: "OK", Amount: testutil.D("5")},
			{PayerName: "BAD", Amount: testutil.D("0")},
		}}, asOf)
		testutil.AssertAppError(t, err, "INVALID_INPUT")

		var n int64
		require.NoError(t, db.Model(&models.UtilityNotice{}).Count(&n).Error)
		assert.Zero(t, n)
	})

	t.Run("unknown_person_rolls_back", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUtilityNoticeService(db)
		ghost := uint(404)

		_, err := svc.Import(ctx, UtilityImport{Rows: []UtilityRow{
			{PayerName: "OK", Amount: testutil.D("5")},
			{PayerName: "GHOST", Amount: testutil.D("5"), PersonID: &ghost},
		}, CreatePayments: true}, asOf)
		testutil.AssertAppError(t, err, "PERSON_NOT_FOUND")

		var n int64
		require.NoError(t, db.Model(&models.UtilityNotice{}).Count(&n).Error)
		assert.Zero(t, n)
	})
}

func TestMatchUtilityNotice(t *testing.T) {
	ctx := context.Background()
	asOf := testutil.Date(2025, time.July, 15)

	t.Run("match_creates_payment_then_locks", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUtilityNoticeService(db)
		person := testutil.CreateTestPerson(t, db)
		other := testutil.CreateTestPerson(t, db)
		ownedAssessments(t, db, person.ID, 2025, "100.00")

		res, err := svc.Import(ctx, UtilityImport{Rows: []UtilityRow{{PayerName: "UNKNOWN", Amount: testutil.D("30")}}}, asOf)
		testutil.AssertNoError(t, err)
		noticeID := res.Notices[0].ID

		notice, err := svc.Match(ctx, noticeID, &person.ID, asOf)
		testutil.AssertNoError(t, err)
		require.NotNil(t, notice.PaymentID)
		assert.True(t, notice.IsAllocated)
		assert.False(t, notice.NeedsReview)

		again, err := svc.Match(ctx, noticeID, &person.ID, asOf)
		testutil.AssertNoError(t, err)
		assert.Equal(t, *notice.PaymentID, *again.PaymentID)

		_, err = svc.Match(ctx, noticeID, &other.ID, asOf)
		testutil.AssertAppError(t, err, "NOTICE_ALREADY_PAID")
		_, err = svc.Match(ctx, noticeID, nil, asOf)
		testutil.AssertAppError(t, err, "NOTICE_ALREADY_PAID")
	})

	t.Run("unmatch_without_payment", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUtilityNoticeService(db)
		person := testutil.CreateTestPerson(t, db)

		res, err := svc.Import(ctx, UtilityImport{Rows: []UtilityRow{{PayerName: "MEMBER", Amount: testutil.D("30"), PersonID: &person.ID}}}, asOf)
		testutil.AssertNoError(t, err)

		notice, err := svc.Match(ctx, res.Notices[0].ID, nil, asOf)
		testutil.AssertNoError(t, err)
		assert.Nil(t, notice.MatchedPersonID)
		assert.True(t, notice.NeedsReview)

		review := true
		page, err := svc.List(ctx, UtilityNoticeFilter{NeedsReview: &review}, pagination.PageRequest{})
		testutil.AssertNoError(t, err)
		assert.Equal(t, int64(1), page.TotalItems)
	})

	t.Run("missing_notice", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUtilityNoticeService(db)

		_, err := svc.Match(ctx, 12, nil, asOf)
		testutil.AssertAppError(t, err, "UTILITY_NOTICE_NOT_FOUND")
	})
}
