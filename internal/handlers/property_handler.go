package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"firedues/internal/services"
)

// PropertyHandler handles properties and ownership periods.
type PropertyHandler struct {
	propertyService services.PropertyServicer
}

// NewPropertyHandler creates a new PropertyHandler.
func NewPropertyHandler(propertyService services.PropertyServicer) *PropertyHandler {
	return &PropertyHandler{propertyService: propertyService}
}

// SetActiveRequest activates or retires a property.
type SetActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// AddOwnershipRequest opens an ownership period.
type AddOwnershipRequest struct {
	PersonID   uint    `json:"person_id" binding:"required"`
	PropertyID uint    `json:"property_id" binding:"required"`
	StartDate  *string `json:"start_date"`
	EndDate    *string `json:"end_date"`
}

// EndOwnershipRequest closes an ownership period.
type EndOwnershipRequest struct {
	EndDate *string `json:"end_date"`
}

// CreateProperty registers a property
// @Summary     Create a property
// @Tags        properties
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body PropertyRequest true "Property"
// @Success     201 {object} models.Property
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     409 {object} ErrorResponse "Duplicate parcel number"
// @Router      /properties [post]
func (h *PropertyHandler) CreateProperty(c *gin.Context) {
	var req PropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}
	property, err := h.propertyService.CreateProperty(c.Request.Context(), req.input())
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"property": property})
}

// GetProperty returns one property
// @Summary     Get a property
// @Tags        properties
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Property ID"
// @Success     200 {object} models.Property
// @Failure     404 {object} ErrorResponse "Property not found"
// @Router      /properties/{id} [get]
func (h *PropertyHandler) GetProperty(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}
	property, err := h.propertyService.GetProperty(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"property": property})
}

// SetPropertyActive activates or retires a property
// @Summary     Set property active flag
// @Description Inactive properties get no new assessments.
// @Tags        properties
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int              true "Property ID"
// @Param       request body SetActiveRequest true "Active flag"
// @Success     200 {object} models.Property
// @Failure     404 {object} ErrorResponse "Property not found"
// @Router      /properties/{id}/active [put]
func (h *PropertyHandler) SetPropertyActive(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}
	var req SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}
	property, err := h.propertyService.SetPropertyActive(c.Request.Context(), id, *req.Active)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"property": property})
}

// DeleteProperty removes a property with no history
// @Summary     Delete a property
// @Tags        properties
// @Security    BearerAuth
// @Param       id path int true "Property ID"
// @Success     204
// @Failure     404 {object} ErrorResponse "Property not found"
// @Failure     409 {object} ErrorResponse "Property has ownerships, assessments or payments"
// @Router      /properties/{id} [delete]
func (h *PropertyHandler) DeleteProperty(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}
	if err := h.propertyService.DeleteProperty(c.Request.Context(), id); err != nil {
		respondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AddOwnership records that a person owns a property
// @Summary     Add an ownership
// @Tags        ownerships
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body AddOwnershipRequest true "Ownership (start defaults to today)"
// @Success     201 {object} models.Ownership
// @Failure     400 {object} ErrorResponse "Invalid dates"
// @Failure     404 {object} ErrorResponse "Person or property not found"
// @Router      /ownerships [post]
func (h *PropertyHandler) AddOwnership(c *gin.Context) {
	var req AddOwnershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}
	start, err := optionalDate(req.StartDate)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if start == nil {
		today := clock()
		start = &today
	}
	end, err := optionalDate(req.EndDate)
	if err != nil {
		respondWithError(c, err)
		return
	}
	ownership, err := h.propertyService.AddOwnership(c.Request.Context(), req.PersonID, req.PropertyID, *start, end)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ownership": ownership})
}

// EndOwnership closes an ownership
// @Summary     End an ownership
// @Tags        ownerships
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int                 true  "Ownership ID"
// @Param       request body EndOwnershipRequest false "End date (default today)"
// @Success     200 {object} models.Ownership
// @Failure     400 {object} ErrorResponse "End before start"
// @Failure     404 {object} ErrorResponse "Ownership not found"
// @Router      /ownerships/{id}/end [put]
func (h *PropertyHandler) EndOwnership(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}
	var req EndOwnershipRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, bindError(err))
			return
		}
	}
	end, err := optionalDate(req.EndDate)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if end == nil {
		today := clock()
		end = &today
	}
	ownership, err := h.propertyService.EndOwnership(c.Request.Context(), id, *end)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ownership": ownership})
}
