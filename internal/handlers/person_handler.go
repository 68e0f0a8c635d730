package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"firedues/internal/pagination"
	"firedues/internal/services"
)

// PersonHandler handles members and their payment views.
type PersonHandler struct {
	personService  services.PersonServicer
	paymentService services.PaymentServicer
}

// NewPersonHandler creates a new PersonHandler.
func NewPersonHandler(personService services.PersonServicer, paymentService services.PaymentServicer) *PersonHandler {
	return &PersonHandler{personService: personService, paymentService: paymentService}
}

// PersonRequest holds a person's editable fields.
type PersonRequest struct {
	FirstName string  `json:"first_name" binding:"required,max=100"`
	LastName  string  `json:"last_name" binding:"required,max=100"`
	Email     *string `json:"email" binding:"omitempty,email,max=255"`
	Phone     *string `json:"phone" binding:"omitempty,max=50"`
	Notes     *string `json:"notes" binding:"omitempty,max=1000"`
}

func (r PersonRequest) input() services.PersonInput {
	return services.PersonInput{FirstName: r.FirstName, LastName: r.LastName, Email: r.Email, Phone: r.Phone, Notes: r.Notes}
}

// PropertyRequest holds a property's editable fields.
type PropertyRequest struct {
	AddressLine1 string  `json:"address_line1" binding:"required,max=255"`
	AddressLine2 *string `json:"address_line2" binding:"omitempty,max=255"`
	City         *string `json:"city" binding:"omitempty,max=100"`
	State        *string `json:"state" binding:"omitempty,max=50"`
	Zip          *string `json:"zip" binding:"omitempty,max=20"`
	ParcelNumber *string `json:"parcel_number" binding:"omitempty,max=64"`
}

func (r PropertyRequest) input() services.PropertyInput {
	return services.PropertyInput{
		AddressLine1: r.AddressLine1,
		AddressLine2: r.AddressLine2,
		City:         r.City,
		State:        r.State,
		Zip:          r.Zip,
		ParcelNumber: r.ParcelNumber,
	}
}

// IntakeRequest registers a member together with their property.
type IntakeRequest struct {
	Person   PersonRequest   `json:"person" binding:"required"`
	Property PropertyRequest `json:"property" binding:"required"`
}

// ListPeopleQuery filters the people listing.
type ListPeopleQuery struct {
	pagination.PageRequest
	Search string `form:"search" binding:"max=100"`
}

// CreatePerson registers a member
// @Summary     Create a person
// @Description Creates a member. Assessments for the current year are created in the background for properties they already own.
// @Tags        people
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body PersonRequest true "Person"
// @Success     201 {object} models.Person
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /people [post]
func (h *PersonHandler) CreatePerson(c *gin.Context) {
	var req PersonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}
	person, err := h.personService.CreatePerson(c.Request.Context(), req.input())
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"person": person})
}

// Intake registers a member with the property they own
// @Summary     Member intake
// @Description Creates the person, finds or creates the property by parcel number, and opens an ownership starting today.
// @Tags        people
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body IntakeRequest true "Person and property"
// @Success     201 {object} services.IntakeResult
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /people/intake [post]
func (h *PersonHandler) Intake(c *gin.Context) {
	var req IntakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}
	result, err := h.personService.Intake(c.Request.Context(), services.IntakeInput{
		Person:   req.Person.input(),
		Property: req.Property.input(),
	}, clock())
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// ListPeople pages members
// @Summary     List people
// @Tags        people
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int    false "Page"
// @Param       page_size query int    false "Page size"
// @Param       search    query string false "Name fragment"
// @Success     200 {object} pagination.PageResponse[models.Person]
// @Router      /people [get]
func (h *PersonHandler) ListPeople(c *gin.Context) {
	var q ListPeopleQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, bindError(err))
		return
	}
	page, err := h.personService.ListPeople(c.Request.Context(), q.PageRequest, q.Search)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetPerson returns one member
// @Summary     Get a person
// @Tags        people
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Person ID"
// @Success     200 {object} models.Person
// @Failure     404 {object} ErrorResponse "Person not found"
// @Router      /people/{id} [get]
func (h *PersonHandler) GetPerson(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}
	person, err := h.personService.GetPerson(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"person": person})
}

// DeletePerson removes a member with no history
// @Summary     Delete a person
// @Tags        people
// @Security    BearerAuth
// @Param       id path int true "Person ID"
// @Success     204
// @Failure     404 {object} ErrorResponse "Person not found"
// @Failure     409 {object} ErrorResponse "Person has ownerships, payments or notices"
// @Router      /people/{id} [delete]
func (h *PersonHandler) DeletePerson(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}
	if err := h.personService.DeletePerson(c.Request.Context(), id); err != nil {
		respondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListPayments pages a member's payments
// @Summary     List a person's payments
// @Description Newest first, with the assessment years each payment reached and where it was applied.
// @Tags        people
// @Produce     json
// @Security    BearerAuth
// @Param       id        path  int true  "Person ID"
// @Param       page      query int false "Page"
// @Param       page_size query int false "Page size"
// @Success     200 {object} pagination.PageResponse[services.PaymentSummary]
// @Failure     404 {object} ErrorResponse "Person not found"
// @Router      /people/{id}/payments [get]
func (h *PersonHandler) ListPayments(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, bindError(err))
		return
	}
	payments, err := h.paymentService.ListByPerson(c.Request.Context(), id, page)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, payments)
}

// ListAssessmentOptions lists assessments a payment may target
// @Summary     Assessment options for a person
// @Description The year's assessments on properties the person owns today, ordered by address.
// @Tags        people
// @Produce     json
// @Security    BearerAuth
// @Param       id   path  int true  "Person ID"
// @Param       year query int false "Assessment year (default current)"
// @Success     200 {array}  services.AssessmentOption
// @Failure     400 {object} ErrorResponse "Invalid year"
// @Failure     404 {object} ErrorResponse "Person not found"
// @Router      /people/{id}/assessment-options [get]
func (h *PersonHandler) ListAssessmentOptions(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}
	asOf := clock()
	year, err := queryYear(c, asOf)
	if err != nil {
		respondWithError(c, err)
		return
	}
	options, err := h.paymentService.ListAssessmentOptions(c.Request.Context(), id, year, asOf)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"year": year, "options": options})
}

// ListOwnerships lists a member's ownerships
// @Summary     List a person's ownerships
// @Tags        people
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Person ID"
// @Success     200 {array}  models.Ownership
// @Failure     404 {object} ErrorResponse "Person not found"
// @Router      /people/{id}/ownerships [get]
func (h *PersonHandler) ListOwnerships(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}
	ownerships, err := h.personService.ListOwnerships(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ownerships": ownerships})
}
