package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"firedues/internal/pagination"
	"firedues/internal/services"
)

// UtilityNoticeHandler handles utility billing imports.
type UtilityNoticeHandler struct {
	noticeService services.UtilityNoticeServicer
}

// NewUtilityNoticeHandler creates a new UtilityNoticeHandler.
func NewUtilityNoticeHandler(noticeService services.UtilityNoticeServicer) *UtilityNoticeHandler {
	return &UtilityNoticeHandler{noticeService: noticeService}
}

// UtilityRowRequest is one payer line of an import.
type UtilityRowRequest struct {
	PayerName string `json:"payer_name" binding:"required,max=255"`
	Amount    string `json:"amount" binding:"required,money"`
	PersonID  *uint  `json:"person_id"`
}

// ImportUtilityNoticesRequest is a batch of payer lines.
type ImportUtilityNoticesRequest struct {
	Year           *int                `json:"year"`
	CreatePayments bool                `json:"create_payments"`
	Rows           []UtilityRowRequest `json:"rows" binding:"required,min=1,max=5000,dive"`
}

// MatchUtilityNoticeRequest assigns or clears a notice's person.
type MatchUtilityNoticeRequest struct {
	PersonID *uint `json:"person_id"`
}

// ListUtilityNoticesQuery filters notices.
type ListUtilityNoticesQuery struct {
	pagination.PageRequest
	NeedsReview *bool `form:"needs_review"`
}

// ImportUtilityNotices stores a utility billing batch
// @Summary     Import utility notices
// @Description Stores one notice per row. Rows naming a person can create a utility payment split across that person's assessments for the year. Rows without a person are flagged for review. The batch is all or nothing.
// @Tags        utility-notices
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body ImportUtilityNoticesRequest true "Rows"
// @Success     201 {object} services.UtilityImportResult
// @Failure     400 {object} ErrorResponse "Invalid rows"
// @Failure     404 {object} ErrorResponse "Person not found"
// @Router      /utility-notices/import [post]
func (h *UtilityNoticeHandler) ImportUtilityNotices(c *gin.Context) {
	var req ImportUtilityNoticesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	in := services.UtilityImport{Year: req.Year, CreatePayments: req.CreatePayments, Rows: make([]services.UtilityRow, 0, len(req.Rows))}
	for _, row := range req.Rows {
		amount, err := parseMoney(row.Amount)
		if err != nil {
			respondWithError(c, err)
			return
		}
		in.Rows = append(in.Rows, services.UtilityRow{PayerName: row.PayerName, Amount: amount, PersonID: row.PersonID})
	}

	result, err := h.noticeService.Import(c.Request.Context(), in, clock())
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// ListUtilityNotices pages imported notices
// @Summary     List utility notices
// @Tags        utility-notices
// @Produce     json
// @Security    BearerAuth
// @Param       needs_review query bool false "Only notices awaiting a person"
// @Param       page         query int  false "Page"
// @Param       page_size    query int  false "Page size"
// @Success     200 {object} pagination.PageResponse[models.UtilityNotice]
// @Router      /utility-notices [get]
func (h *UtilityNoticeHandler) ListUtilityNotices(c *gin.Context) {
	var q ListUtilityNoticesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, bindError(err))
		return
	}
	page, err := h.noticeService.List(c.Request.Context(), services.UtilityNoticeFilter{NeedsReview: q.NeedsReview}, q.PageRequest)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// MatchUtilityNotice assigns a notice to a person
// @Summary     Match a utility notice
// @Description Assigning a person records and applies the notice's payment for the current year. A null person clears the match of a notice that has no payment yet.
// @Tags        utility-notices
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int                       true "Notice ID"
// @Param       request body MatchUtilityNoticeRequest true "Person"
// @Success     200 {object} models.UtilityNotice
// @Failure     404 {object} ErrorResponse "Notice or person not found"
// @Failure     409 {object} ErrorResponse "Notice already paid"
// @Router      /utility-notices/{id}/match [put]
func (h *UtilityNoticeHandler) MatchUtilityNotice(c *gin.Context) {
	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}
	var req MatchUtilityNoticeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}
	notice, err := h.noticeService.Match(c.Request.Context(), id, req.PersonID, clock())
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notice": notice})
}
