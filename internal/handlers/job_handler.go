package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"firedues/internal/jobs"
	"firedues/internal/pagination"
	"firedues/internal/services"
)

// JobHandler exposes the assessment job to external schedulers. Routes are
// guarded by an API key instead of a clerk token.
type JobHandler struct {
	job  *jobs.DailyAssessmentJob
	runs services.JobRunServicer
}

// NewJobHandler creates a new JobHandler.
func NewJobHandler(job *jobs.DailyAssessmentJob, runs services.JobRunServicer) *JobHandler {
	return &JobHandler{job: job, runs: runs}
}

// ListJobRunsQuery filters job runs.
type ListJobRunsQuery struct {
	pagination.PageRequest
	Kind string `form:"kind" binding:"max=32"`
}

// RunRollover runs rollover for a year and records the run
// @Summary     Run rollover
// @Tags        jobs
// @Accept      json
// @Produce     json
// @Security    APIKeyAuth
// @Param       request body YearRequest false "Year (default current)"
// @Success     200 {object} models.JobRun
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Failure     500 {object} ErrorResponse "Run failed"
// @Router      /internal/jobs/rollover [post]
func (h *JobHandler) RunRollover(c *gin.Context) {
	year, err := bindYear(c, clock().Year())
	if err != nil {
		respondWithError(c, err)
		return
	}
	run, err := h.job.Rollover(c.Request.Context(), jobs.TriggerManual, year)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"job_run": run})
}

// RunPending applies parked payments for a year and records the run
// @Summary     Run pending allocation
// @Tags        jobs
// @Accept      json
// @Produce     json
// @Security    APIKeyAuth
// @Param       request body YearRequest false "Year (default current)"
// @Success     200 {object} models.JobRun
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Failure     500 {object} ErrorResponse "Run failed"
// @Router      /internal/jobs/pending [post]
func (h *JobHandler) RunPending(c *gin.Context) {
	year, err := bindYear(c, clock().Year())
	if err != nil {
		respondWithError(c, err)
		return
	}
	run, err := h.job.AllocatePending(c.Request.Context(), jobs.TriggerManual, year)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"job_run": run})
}

// ListJobRuns pages recorded runs
// @Summary     List job runs
// @Tags        jobs
// @Produce     json
// @Security    APIKeyAuth
// @Param       kind      query string false "Job kind"
// @Param       page      query int    false "Page"
// @Param       page_size query int    false "Page size"
// @Success     200 {object} pagination.PageResponse[models.JobRun]
// @Router      /internal/jobs/runs [get]
func (h *JobHandler) ListJobRuns(c *gin.Context) {
	var q ListJobRunsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, bindError(err))
		return
	}
	page, err := h.runs.List(c.Request.Context(), q.Kind, q.PageRequest)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}
