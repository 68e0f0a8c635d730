package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"firedues/internal/services"
)

// AssessmentHandler triggers assessment rollover on demand.
type AssessmentHandler struct {
	rolloverService services.RolloverServicer
}

// NewAssessmentHandler creates a new AssessmentHandler.
func NewAssessmentHandler(rolloverService services.RolloverServicer) *AssessmentHandler {
	return &AssessmentHandler{rolloverService: rolloverService}
}

// Rollover creates missing assessments for a year
// @Summary     Roll over assessments
// @Description Creates one assessment per active property for the year at that year's fee. Safe to repeat. Does nothing when the year has no fee configured.
// @Tags        assessments
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body YearRequest false "Year (default current)"
// @Success     200 {object} map[string]int
// @Failure     400 {object} ErrorResponse "Invalid year"
// @Router      /assessments/rollover [post]
func (h *AssessmentHandler) Rollover(c *gin.Context) {
	year, err := bindYear(c, clock().Year())
	if err != nil {
		respondWithError(c, err)
		return
	}
	created, err := h.rolloverService.CreateMissingAssessments(c.Request.Context(), year)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"year": year, "created": created})
}
