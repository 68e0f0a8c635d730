package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"firedues/internal/models"
	"firedues/internal/services"
)

// PaymentHandler records payments and applies them to assessments.
type PaymentHandler struct {
	paymentService services.PaymentServicer
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentService services.PaymentServicer) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// CreatePaymentRequest records a payment and says how to apply it.
type CreatePaymentRequest struct {
	PersonID           uint                  `json:"person_id" binding:"required"`
	Amount             string                `json:"amount" binding:"required,money"`
	PaymentType        models.PaymentType    `json:"payment_type" binding:"omitempty,payment_type"`
	PaidAt             *string               `json:"paid_at"`
	CheckNumber        *string               `json:"check_number" binding:"omitempty,max=50"`
	IsDonation         bool                  `json:"is_donation"`
	Notes              *string               `json:"notes" binding:"omitempty,max=1000"`
	AllocationMode     models.AllocationMode `json:"allocation_mode" binding:"omitempty,allocation_mode"`
	TargetAssessmentID *uint                 `json:"target_assessment_id"`
	Year               *int                  `json:"year"`
	// RecordOnly stores the payment without applying it.
	RecordOnly bool `json:"record_only"`
}

// AllocatePaymentRequest applies an existing payment.
type AllocatePaymentRequest struct {
	AllocationMode     models.AllocationMode `json:"allocation_mode" binding:"omitempty,allocation_mode"`
	TargetAssessmentID *uint                 `json:"target_assessment_id"`
	Year               *int                  `json:"year"`
}

// YearRequest names an assessment year; omitted means the current year.
type YearRequest struct {
	Year *int `json:"year"`
}

// CreatePayment records a payment and applies it
// @Summary     Record a payment
// @Description Records the payment and applies it in one step. split_across_all spreads it over the year's assessments in proportion to their balances; single_assessment pays one assessment up to its balance. A split payment for a future year waits until that year's assessments exist. Donations are never applied.
// @Tags        payments
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreatePaymentRequest true "Payment"
// @Success     201 {object} services.AllocationResult
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Person or assessment not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /payments [post]
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}
	amount, err := parseMoney(req.Amount)
	if err != nil {
		respondWithError(c, err)
		return
	}
	paidAt, err := optionalDate(req.PaidAt)
	if err != nil {
		respondWithError(c, err)
		return
	}

	payment := services.PaymentRequest{
		PersonID:           req.PersonID,
		Amount:             amount,
		PaymentType:        req.PaymentType,
		CheckNumber:        req.CheckNumber,
		IsDonation:         req.IsDonation,
		Notes:              req.Notes,
		Mode:               req.AllocationMode,
		TargetAssessmentID: req.TargetAssessmentID,
		Year:               req.Year,
	}
	if paidAt != nil {
		payment.PaidAt = *paidAt
	}

	if req.RecordOnly {
		recorded, err := h.paymentService.CreatePayment(c.Request.Context(), payment, clock())
		if err != nil {
			respondWithError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"payment": recorded})
		return
	}

	result, err := h.paymentService.CreateAndAllocate(c.Request.Context(), payment, clock())
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// AllocatePayment applies a recorded payment
// @Summary     Apply a recorded payment
// @Tags        payments
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int                    true "Payment ID"
// @Param       request body AllocatePaymentRequest true "Allocation"
// @Success     200 {object} services.AllocationResult
// @Failure     400 {object} ErrorResponse "Invalid input or donation"
// @Failure     404 {object} ErrorResponse "Payment not found"
// @Failure     409 {object} ErrorResponse "Already allocated"
// @Router      /payments/{id}/allocate [post]
func (h *PaymentHandler) AllocatePayment(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}
	var req AllocatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}
	result, err := h.paymentService.AllocatePayment(c.Request.Context(), id, services.AllocationRequest{
		Mode:               req.AllocationMode,
		TargetAssessmentID: req.TargetAssessmentID,
		Year:               req.Year,
	}, clock())
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetAllocations lists where a payment went
// @Summary     Payment allocations
// @Tags        payments
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Payment ID"
// @Success     200 {array}  models.PaymentAllocation
// @Failure     404 {object} ErrorResponse "Payment not found"
// @Router      /payments/{id}/allocations [get]
func (h *PaymentHandler) GetAllocations(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}
	allocs, err := h.paymentService.GetAllocations(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"allocations": allocs})
}

// AllocatePending applies payments waiting for a year's assessments
// @Summary     Apply pending payments
// @Description Splits every unapplied payment parked for the year across its owner's assessments. Payments whose owner still has no assessments stay parked.
// @Tags        payments
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body YearRequest false "Year (default current)"
// @Success     200 {object} map[string]int
// @Failure     400 {object} ErrorResponse "Invalid year"
// @Router      /payments/pending/allocate [post]
func (h *PaymentHandler) AllocatePending(c *gin.Context) {
	asOf := clock()
	year, err := bindYear(c, asOf.Year())
	if err != nil {
		respondWithError(c, err)
		return
	}
	applied, err := h.paymentService.AllocatePendingForYear(c.Request.Context(), year, asOf)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"year": year, "applied": applied})
}

// bindYear reads an optional {"year":N} body.
func bindYear(c *gin.Context, def int) (int, error) {
	var req YearRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			return 0, bindError(err)
		}
	}
	if req.Year == nil {
		return def, nil
	}
	return *req.Year, nil
}
