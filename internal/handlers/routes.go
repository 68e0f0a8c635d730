package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"firedues/internal/middleware"
)

// Handlers groups every HTTP handler the API serves.
type Handlers struct {
	Auth          *AuthHandler
	FeeSchedule   *FeeScheduleHandler
	Person        *PersonHandler
	Property      *PropertyHandler
	Payment       *PaymentHandler
	Assessment    *AssessmentHandler
	UtilityNotice *UtilityNoticeHandler
	Job           *JobHandler
}

// RegisterRoutes mounts the health check, the clerk API under /api/v1 and
// the API-key guarded job endpoints under /internal/jobs.
func RegisterRoutes(router *gin.Engine, h Handlers, jobsAPIKey string) {
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/refresh", h.Auth.Refresh)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", h.Auth.GetProfile)

	fees := protected.Group("/fee-schedules")
	fees.GET("", h.FeeSchedule.ListFeeSchedules)
	fees.PUT("", h.FeeSchedule.SetFeeSchedule)
	fees.GET("/:year", h.FeeSchedule.GetFeeSchedule)
	fees.DELETE("/:id", h.FeeSchedule.DeleteFeeSchedule)

	people := protected.Group("/people")
	people.POST("", h.Person.CreatePerson)
	people.POST("/intake", h.Person.Intake)
	people.GET("", h.Person.ListPeople)
	people.GET("/:id", h.Person.GetPerson)
	people.DELETE("/:id", h.Person.DeletePerson)
	people.GET("/:id/payments", h.Person.ListPayments)
	people.GET("/:id/assessment-options", h.Person.ListAssessmentOptions)
	people.GET("/:id/ownerships", h.Person.ListOwnerships)

	properties := protected.Group("/properties")
	properties.POST("", h.Property.CreateProperty)
	properties.GET("/:id", h.Property.GetProperty)
	properties.PUT("/:id/active", h.Property.SetPropertyActive)
	properties.DELETE("/:id", h.Property.DeleteProperty)

	ownerships := protected.Group("/ownerships")
	ownerships.POST("", h.Property.AddOwnership)
	ownerships.PUT("/:id/end", h.Property.EndOwnership)

	payments := protected.Group("/payments")
	payments.POST("", h.Payment.CreatePayment)
	payments.POST("/pending/allocate", h.Payment.AllocatePending)
	payments.POST("/:id/allocate", h.Payment.AllocatePayment)
	payments.GET("/:id/allocations", h.Payment.GetAllocations)

	protected.POST("/assessments/rollover", h.Assessment.Rollover)

	notices := protected.Group("/utility-notices")
	notices.POST("/import", h.UtilityNotice.ImportUtilityNotices)
	notices.GET("", h.UtilityNotice.ListUtilityNotices)
	notices.PUT("/:id/match", h.UtilityNotice.MatchUtilityNotice)

	jobs := router.Group("/internal/jobs")
	jobs.Use(middleware.APIKeyMiddleware(jobsAPIKey))
	jobs.POST("/rollover", h.Job.RunRollover)
	jobs.POST("/pending", h.Job.RunPending)
	jobs.GET("/runs", h.Job.ListJobRuns)
}
