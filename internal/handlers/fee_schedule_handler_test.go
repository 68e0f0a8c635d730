package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "firedues/internal/errors"
	"firedues/internal/models"
	"firedues/internal/services"
)

type mockFeeScheduleService struct {
	getFn    func(year int) (*models.FeeSchedule, error)
	listFn   func() ([]models.FeeSchedule, error)
	setFn    func(year int, amount decimal.Decimal) (*models.FeeSchedule, error)
	deleteFn func(id uint) error
}

var _ services.FeeScheduleServicer = (*mockFeeScheduleService)(nil)

func (m *mockFeeScheduleService) GetFee(_ context.Context, _ int) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (m *mockFeeScheduleService) Get(_ context.Context, year int) (*models.FeeSchedule, error) {
	if m.getFn != nil {
		return m.getFn(year)
	}
	return &models.FeeSchedule{Year: year}, nil
}

func (m *mockFeeScheduleService) List(_ context.Context) ([]models.FeeSchedule, error) {
	if m.listFn != nil {
		return m.listFn()
	}
	return []models.FeeSchedule{}, nil
}

func (m *mockFeeScheduleService) Set(_ context.Context, year int, amount decimal.Decimal) (*models.FeeSchedule, error) {
	if m.setFn != nil {
		return m.setFn(year, amount)
	}
	return &models.FeeSchedule{Year: year, AmountPerProperty: amount}, nil
}

func (m *mockFeeScheduleService) Delete(_ context.Context, id uint) error {
	if m.deleteFn != nil {
		return m.deleteFn(id)
	}
	return nil
}

func setupFeeScheduleRouter(h *FeeScheduleHandler) *gin.Engine {
	r := gin.New()
	r.GET("/fee-schedules", h.ListFeeSchedules)
	r.PUT("/fee-schedules", h.SetFeeSchedule)
	r.GET("/fee-schedules/:year", h.GetFeeSchedule)
	r.DELETE("/fee-schedules/:id", h.DeleteFeeSchedule)
	return r
}

func TestFeeScheduleHandler_Set(t *testing.T) {
	t.Run("returns 200 and passes a rounded decimal", func(t *testing.T) {
		var gotYear int
		var gotAmount decimal.Decimal
		svc := &mockFeeScheduleService{
			setFn: func(year int, amount decimal.Decimal) (*models.FeeSchedule, error) {
				gotYear, gotAmount = year, amount
				return &models.FeeSchedule{Base: models.Base{ID: 1}, Year: year, AmountPerProperty: amount}, nil
			},
		}
		r := setupFeeScheduleRouter(NewFeeScheduleHandler(svc))

		rec := doRequest(r, "PUT", "/fee-schedules", `{"year":2025,"amount_per_property":"150.50"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotYear != 2025 || !gotAmount.Equal(decimal.RequireFromString("150.5")) {
			t.Errorf("unexpected call: year=%d amount=%s", gotYear, gotAmount)
		}
	})

	t.Run("accepts a zero fee", func(t *testing.T) {
		r := setupFeeScheduleRouter(NewFeeScheduleHandler(&mockFeeScheduleService{}))

		rec := doRequest(r, "PUT", "/fee-schedules", `{"year":2025,"amount_per_property":"0"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("returns 400 on negative amount", func(t *testing.T) {
		r := setupFeeScheduleRouter(NewFeeScheduleHandler(&mockFeeScheduleService{}))

		rec := doRequest(r, "PUT", "/fee-schedules", `{"year":2025,"amount_per_property":"-1"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("passes service validation through", func(t *testing.T) {
		svc := &mockFeeScheduleService{
			setFn: func(int, decimal.Decimal) (*models.FeeSchedule, error) { return nil, apperrors.ErrInvalidYear },
		}
		r := setupFeeScheduleRouter(NewFeeScheduleHandler(svc))

		rec := doRequest(r, "PUT", "/fee-schedules", `{"year":1999,"amount_per_property":"10"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_YEAR")
	})
}

func TestFeeScheduleHandler_Get(t *testing.T) {
	t.Run("returns 404 when not configured", func(t *testing.T) {
		svc := &mockFeeScheduleService{
			getFn: func(int) (*models.FeeSchedule, error) { return nil, apperrors.ErrFeeScheduleNotFound },
		}
		r := setupFeeScheduleRouter(NewFeeScheduleHandler(svc))

		rec := doRequest(r, "GET", "/fee-schedules/2031", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on non-numeric year", func(t *testing.T) {
		r := setupFeeScheduleRouter(NewFeeScheduleHandler(&mockFeeScheduleService{}))

		rec := doRequest(r, "GET", "/fee-schedules/next", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("lists schedules", func(t *testing.T) {
		svc := &mockFeeScheduleService{
			listFn: func() ([]models.FeeSchedule, error) {
				return []models.FeeSchedule{{Year: 2024}, {Year: 2025}}, nil
			},
		}
		r := setupFeeScheduleRouter(NewFeeScheduleHandler(svc))

		rec := doRequest(r, "GET", "/fee-schedules", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if n := len(parseJSON(t, rec)["fee_schedules"].([]interface{})); n != 2 {
			t.Errorf("expected 2 schedules, got %d", n)
		}
	})
}

func TestFeeScheduleHandler_Delete(t *testing.T) {
	var deleted uint
	svc := &mockFeeScheduleService{deleteFn: func(id uint) error { deleted = id; return nil }}
	r := setupFeeScheduleRouter(NewFeeScheduleHandler(svc))

	rec := doRequest(r, "DELETE", "/fee-schedules/3", "")

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if deleted != 3 {
		t.Errorf("expected delete of 3, got %d", deleted)
	}
}
