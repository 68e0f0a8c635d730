package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"firedues/internal/config"
	"firedues/internal/database"
	"firedues/internal/events"
	"firedues/internal/handlers"
	"firedues/internal/jobs"
	"firedues/internal/logger"
	"firedues/internal/middleware"
	"firedues/internal/services"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "firedues/internal/docs" // Import swagger docs
)

// @title           Fire District Dues API
// @version         1.0
// @description     Membership dues for a volunteer fire district: yearly property assessments, payments and how they are applied.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @securityDefinitions.apikey APIKeyAuth
// @in header
// @name X-API-Key

const shutdownTimeout = 15 * time.Second

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dbManager, err := database.NewManager(database.NewConfig(cfg))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnw("Failed to close database", "error", err)
		}
	}()

	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Services
	db := dbManager.DB()
	bus := events.NewBus(ctx)
	userService := services.NewUserService(db)
	feeService := services.NewFeeScheduleService(db)
	rolloverService := services.NewRolloverService(db, feeService)
	paymentService := services.NewPaymentService(db)
	personService := services.NewPersonService(db, bus)
	propertyService := services.NewPropertyService(db)
	noticeService := services.NewUtilityNoticeService(db)
	jobRunService := services.NewJobRunService(db)

	bus.Subscribe(events.PersonCreatedEvent, services.NewPersonCreatedHandler(rolloverService, time.Now))

	// Background jobs
	job := jobs.NewDailyAssessmentJob(rolloverService, paymentService, jobRunService, time.Now)
	scheduler, err := jobs.NewScheduler(job, cfg.RolloverSchedule, cfg.RolloverOnStartup)
	if err != nil {
		return err
	}

	// Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.CORS(cfg.CORSOrigins))
	router.Use(middleware.ErrorHandler())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	handlers.RegisterRoutes(router, handlers.Handlers{
		Auth:          handlers.NewAuthHandler(userService),
		FeeSchedule:   handlers.NewFeeScheduleHandler(feeService),
		Person:        handlers.NewPersonHandler(personService, paymentService),
		Property:      handlers.NewPropertyHandler(propertyService),
		Payment:       handlers.NewPaymentHandler(paymentService),
		Assessment:    handlers.NewAssessmentHandler(rolloverService),
		UtilityNotice: handlers.NewUtilityNoticeHandler(noticeService),
		Job:           handlers.NewJobHandler(job, jobRunService),
	}, cfg.JobsAPIKey)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	scheduler.Start(ctx)

	serveErr := make(chan error, 1)
	go func() {
		log.Infof("Starting firedues server on port %s", cfg.Port)
		log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			stop()
			scheduler.Stop()
			bus.Wait()
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warnw("HTTP server shutdown did not complete", "error", err)
	}
	scheduler.Stop()
	bus.Wait()

	log.Info("Server stopped")
	return nil
}
