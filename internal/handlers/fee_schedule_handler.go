package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"firedues/internal/services"
)

// FeeScheduleHandler handles per-year fee configuration.
type FeeScheduleHandler struct {
	feeService services.FeeScheduleServicer
}

// NewFeeScheduleHandler creates a new FeeScheduleHandler.
func NewFeeScheduleHandler(feeService services.FeeScheduleServicer) *FeeScheduleHandler {
	return &FeeScheduleHandler{feeService: feeService}
}

// SetFeeScheduleRequest sets the per-property fee for a year.
type SetFeeScheduleRequest struct {
	Year              int    `json:"year" binding:"required"`
	AmountPerProperty string `json:"amount_per_property" binding:"required,money_nonneg"`
}

// ListFeeSchedules returns every configured year
// @Summary     List fee schedules
// @Tags        fee-schedules
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array}  models.FeeSchedule
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /fee-schedules [get]
func (h *FeeScheduleHandler) ListFeeSchedules(c *gin.Context) {
	fees, err := h.feeService.List(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"fee_schedules": fees})
}

// GetFeeSchedule returns the fee schedule for a year
// @Summary     Get a year's fee schedule
// @Tags        fee-schedules
// @Produce     json
// @Security    BearerAuth
// @Param       year path int true "Assessment year"
// @Success     200 {object} models.FeeSchedule
// @Failure     400 {object} ErrorResponse "Invalid year"
// @Failure     404 {object} ErrorResponse "Not configured"
// @Router      /fee-schedules/{year} [get]
func (h *FeeScheduleHandler) GetFeeSchedule(c *gin.Context) {
	year, err := parseYear(c.Param("year"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	fee, err := h.feeService.Get(c.Request.Context(), year)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"fee_schedule": fee})
}

// SetFeeSchedule creates or replaces a year's fee
// @Summary     Set a year's fee
// @Description Existing assessments keep the amount they were created with.
// @Tags        fee-schedules
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body SetFeeScheduleRequest true "Year and amount"
// @Success     200 {object} models.FeeSchedule
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /fee-schedules [put]
func (h *FeeScheduleHandler) SetFeeSchedule(c *gin.Context) {
	var req SetFeeScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}
	amount, err := parseMoney(req.AmountPerProperty)
	if err != nil {
		respondWithError(c, err)
		return
	}
	fee, err := h.feeService.Set(c.Request.Context(), req.Year, amount)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"fee_schedule": fee})
}

// DeleteFeeSchedule removes a fee schedule
// @Summary     Delete a fee schedule
// @Tags        fee-schedules
// @Security    BearerAuth
// @Param       id path int true "Fee schedule ID"
// @Success     204
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Router      /fee-schedules/{id} [delete]
func (h *FeeScheduleHandler) DeleteFeeSchedule(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}
	if err := h.feeService.Delete(c.Request.Context(), id); err != nil {
		respondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
