package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"firedues/internal/events"
	"firedues/internal/handlers"
	"firedues/internal/jobs"
	"firedues/internal/logger"
	"firedues/internal/middleware"
	"firedues/internal/services"
	"firedues/internal/testutil"
	"firedues/internal/validator"
)

const testJobsAPIKey = "integration-jobs-key"

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB     *gorm.DB
	Bus    *events.Bus
	Router *gin.Engine
}

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupApp creates a full application stack backed by an isolated in-memory SQLite.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := testutil.SetupTestDB(t)
	bus := events.NewBus(context.Background())
	t.Cleanup(func() {
		bus.Wait()
		testutil.TeardownTestDB(t, db)
	})

	// Services
	userService := services.NewUserService(db)
	feeService := services.NewFeeScheduleService(db)
	rolloverService := services.NewRolloverService(db, feeService)
	paymentService := services.NewPaymentService(db)
	personService := services.NewPersonService(db, bus)
	propertyService := services.NewPropertyService(db)
	noticeService := services.NewUtilityNoticeService(db)
	jobRunService := services.NewJobRunService(db)

	bus.Subscribe(events.PersonCreatedEvent, services.NewPersonCreatedHandler(rolloverService, time.Now))
	job := jobs.NewDailyAssessmentJob(rolloverService, paymentService, jobRunService, time.Now)

	// Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	handlers.RegisterRoutes(router, handlers.Handlers{
		Auth:          handlers.NewAuthHandler(userService),
		FeeSchedule:   handlers.NewFeeScheduleHandler(feeService),
		Person:        handlers.NewPersonHandler(personService, paymentService),
		Property:      handlers.NewPropertyHandler(propertyService),
		Payment:       handlers.NewPaymentHandler(paymentService),
		Assessment:    handlers.NewAssessmentHandler(rolloverService),
		UtilityNotice: handlers.NewUtilityNoticeHandler(noticeService),
		Job:           handlers.NewJobHandler(job, jobRunService),
	}, testJobsAPIKey)

	return &testApp{DB: db, Bus: bus, Router: router}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// jobRequest calls an internal job endpoint with the given API key.
func (app *testApp) jobRequest(method, path, body, apiKey string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// mustStatus fails the test unless rec has the expected status.
func mustStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// assertMoney compares a JSON-encoded decimal with an expected amount.
func assertMoney(t *testing.T, expected string, got interface{}) {
	t.Helper()
	s, ok := got.(string)
	if !ok {
		t.Fatalf("expected decimal string, got %T (%v)", got, got)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("invalid decimal %q: %v", s, err)
	}
	testutil.AssertMoney(t, expected, d)
}

// registerUser registers a new clerk and returns the access token, refresh token, and user ID.
func (app *testApp) registerUser(t *testing.T, email, password string) (accessToken, refreshToken string, userID float64) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q,"first_name":"Test","last_name":"Clerk"}`, email, password)
	rec := app.request("POST", "/api/v1/auth/register", body, "")
	mustStatus(t, rec, http.StatusCreated)
	result := parseJSON(t, rec)
	user := result["user"].(map[string]interface{})
	return result["access_token"].(string), result["refresh_token"].(string), user["id"].(float64)
}

// loginUser logs in and returns the access and refresh tokens.
func (app *testApp) loginUser(t *testing.T, email, password string) (accessToken, refreshToken string) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q}`, email, password)
	rec := app.request("POST", "/api/v1/auth/login", body, "")
	mustStatus(t, rec, http.StatusOK)
	result := parseJSON(t, rec)
	return result["access_token"].(string), result["refresh_token"].(string)
}

// setFee configures the per-property fee for year.
func (app *testApp) setFee(t *testing.T, token string, year int, amount string) {
	t.Helper()
	body := fmt.Sprintf(`{"year":%d,"amount_per_property":%q}`, year, amount)
	mustStatus(t, app.request("PUT", "/api/v1/fee-schedules", body, token), http.StatusOK)
}

// intake registers a member with one property and waits for the
// new-member assessment to be written. Returns the person and property IDs.
func (app *testApp) intake(t *testing.T, token, lastName, address string) (personID, propertyID uint) {
	t.Helper()
	body := fmt.Sprintf(`{"person":{"first_name":"Pat","last_name":%q},"property":{"address_line1":%q}}`, lastName, address)
	rec := app.request("POST", "/api/v1/people/intake", body, token)
	mustStatus(t, rec, http.StatusCreated)
	app.Bus.Wait()

	result := parseJSON(t, rec)
	person := result["person"].(map[string]interface{})
	property := result["property"].(map[string]interface{})
	return uint(person["id"].(float64)), uint(property["id"].(float64))
}

// addProperty creates a property owned by personID from today.
func (app *testApp) addProperty(t *testing.T, token string, personID uint, address string) uint {
	t.Helper()
	rec := app.request("POST", "/api/v1/properties", fmt.Sprintf(`{"address_line1":%q}`, address), token)
	mustStatus(t, rec, http.StatusCreated)
	propertyID := uint(parseJSON(t, rec)["property"].(map[string]interface{})["id"].(float64))

	body := fmt.Sprintf(`{"person_id":%d,"property_id":%d}`, personID, propertyID)
	mustStatus(t, app.request("POST", "/api/v1/ownerships", body, token), http.StatusCreated)
	return propertyID
}
