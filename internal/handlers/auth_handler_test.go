package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "firedues/internal/errors"
	"firedues/internal/middleware"
	"firedues/internal/models"
	"firedues/internal/services"
)

// --- mock services ---

type mockUserService struct {
	createUserFn            func(email, password, firstName, lastName string) (*models.User, error)
	getUserByEmailFn        func(email string) (*models.User, error)
	getUserByIDFn           func(id uint) (*models.User, error)
	attemptLoginFn          func(email, password string) (*models.User, error)
	storeRefreshTokenHashFn func(userID uint, tokenHash string) error
	getRefreshTokenHashFn   func(userID uint) (string, error)
}

var _ services.UserServicer = (*mockUserService)(nil)

func (m *mockUserService) CreateUser(_ context.Context, email, password, firstName, lastName string) (*models.User, error) {
	if m.createUserFn != nil {
		return m.createUserFn(email, password, firstName, lastName)
	}
	return &models.User{}, nil
}

func (m *mockUserService) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	if m.getUserByEmailFn != nil {
		return m.getUserByEmailFn(email)
	}
	return &models.User{}, nil
}

func (m *mockUserService) GetUserByID(_ context.Context, id uint) (*models.User, error) {
	if m.getUserByIDFn != nil {
		return m.getUserByIDFn(id)
	}
	return &models.User{Base: models.Base{ID: id}, IsActive: true}, nil
}

func (m *mockUserService) AttemptLogin(_ context.Context, email, password string) (*models.User, error) {
	if m.attemptLoginFn != nil {
		return m.attemptLoginFn(email, password)
	}
	return &models.User{}, nil
}

func (m *mockUserService) StoreRefreshTokenHash(_ context.Context, userID uint, tokenHash string) error {
	if m.storeRefreshTokenHashFn != nil {
		return m.storeRefreshTokenHashFn(userID, tokenHash)
	}
	return nil
}

func (m *mockUserService) GetRefreshTokenHash(_ context.Context, userID uint) (string, error) {
	if m.getRefreshTokenHashFn != nil {
		return m.getRefreshTokenHashFn(userID)
	}
	return "", nil
}

func setupAuthRouter(handler *AuthHandler) *gin.Engine {
	r := gin.New()
	r.POST("/auth/register", handler.Register)
	r.POST("/auth/login", handler.Login)
	r.POST("/auth/refresh", handler.Refresh)
	r.GET("/profile", injectUserID(1), handler.GetProfile)
	return r
}

// --- tests ---

func TestAuthHandler_Register(t *testing.T) {
	t.Run("returns 201 with tokens and stores the refresh hash", func(t *testing.T) {
		var storedFor uint
		var storedHash string
		userSvc := &mockUserService{
			createUserFn: func(email, _, firstName, lastName string) (*models.User, error) {
				return &models.User{Base: models.Base{ID: 42}, Email: email, FirstName: firstName, LastName: lastName}, nil
			},
			storeRefreshTokenHashFn: func(id uint, hash string) error {
				storedFor, storedHash = id, hash
				return nil
			},
		}
		r := setupAuthRouter(NewAuthHandler(userSvc))

		rec := doRequest(r, "POST", "/auth/register",
			`{"email":"clerk@firedistrict.org","password":"password123","first_name":"Dana","last_name":"Reyes"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		access, _ := result["access_token"].(string)
		refresh, _ := result["refresh_token"].(string)
		if access == "" || refresh == "" || access == refresh {
			t.Fatalf("expected distinct non-empty tokens, got %q / %q", access, refresh)
		}
		if storedFor != 42 || storedHash != middleware.HashToken(refresh) {
			t.Errorf("expected hash of the issued refresh token stored for clerk 42, got %d/%s", storedFor, storedHash)
		}
		if user := result["user"].(map[string]interface{}); user["email"] != "clerk@firedistrict.org" || user["last_name"] != "Reyes" {
			t.Errorf("unexpected user in response: %v", user)
		}
	})

	tests := []struct {
		name       string
		body       string
		createErr  error
		storeErr   error
		wantStatus int
		wantCode   string
	}{
		{"missing email", `{"password":"password123"}`, nil, nil, http.StatusBadRequest, "INVALID_INPUT"},
		{"malformed email", `{"email":"not-an-email","password":"password123"}`, nil, nil, http.StatusBadRequest, "INVALID_INPUT"},
		{"short password", `{"email":"clerk@firedistrict.org","password":"short"}`, nil, nil, http.StatusBadRequest, "INVALID_INPUT"},
		{"duplicate email", `{"email":"dup@firedistrict.org","password":"password123"}`, apperrors.ErrDuplicateEmail, nil, http.StatusConflict, "DUPLICATE_EMAIL"},
		{"token storage fails", `{"email":"clerk@firedistrict.org","password":"password123"}`, nil, errors.New("db connection lost"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			userSvc := &mockUserService{
				createUserFn: func(email, _, _, _ string) (*models.User, error) {
					if tc.createErr != nil {
						return nil, tc.createErr
					}
					return &models.User{Base: models.Base{ID: 1}, Email: email}, nil
				},
				storeRefreshTokenHashFn: func(uint, string) error { return tc.storeErr },
			}
			r := setupAuthRouter(NewAuthHandler(userSvc))

			rec := doRequest(r, "POST", "/auth/register", tc.body)

			if rec.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tc.wantStatus, rec.Code, rec.Body.String())
			}
			assertErrorCode(t, parseJSON(t, rec), tc.wantCode)
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		loginErr   error
		wantStatus int
		wantCode   string
	}{
		{"success", `{"email":"clerk@firedistrict.org","password":"password123"}`, nil, http.StatusOK, ""},
		{"invalid credentials", `{"email":"clerk@firedistrict.org","password":"wrong"}`, apperrors.ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
		{"locked account", `{"email":"locked@firedistrict.org","password":"password123"}`, apperrors.ErrAccountLocked, http.StatusLocked, "ACCOUNT_LOCKED"},
		{"missing fields", `{}`, nil, http.StatusBadRequest, "INVALID_INPUT"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			userSvc := &mockUserService{
				attemptLoginFn: func(email, _ string) (*models.User, error) {
					if tc.loginErr != nil {
						return nil, tc.loginErr
					}
					return &models.User{Base: models.Base{ID: 1}, Email: email, FirstName: "Dana", IsActive: true}, nil
				},
			}
			r := setupAuthRouter(NewAuthHandler(userSvc))

			rec := doRequest(r, "POST", "/auth/login", tc.body)

			if rec.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tc.wantStatus, rec.Code, rec.Body.String())
			}
			result := parseJSON(t, rec)
			if tc.wantCode != "" {
				assertErrorCode(t, result, tc.wantCode)
				return
			}
			if token, _ := result["access_token"].(string); token == "" {
				t.Error("expected non-empty access_token")
			}
		})
	}
}

func TestAuthHandler_Refresh(t *testing.T) {
	user := &models.User{Base: models.Base{ID: 9}, Email: "clerk@firedistrict.org", IsActive: true}

	t.Run("rotates a valid refresh token", func(t *testing.T) {
		token, err := middleware.GenerateRefreshToken(user)
		if err != nil {
			t.Fatal(err)
		}
		stored := middleware.HashToken(token)
		userSvc := &mockUserService{
			getRefreshTokenHashFn: func(uint) (string, error) { return stored, nil },
			getUserByIDFn:         func(uint) (*models.User, error) { return user, nil },
			storeRefreshTokenHashFn: func(_ uint, hash string) error {
				stored = hash
				return nil
			},
		}
		r := setupAuthRouter(NewAuthHandler(userSvc))

		rec := doRequest(r, "POST", "/auth/refresh", fmt.Sprintf(`{"refresh_token":%q}`, token))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if stored != middleware.HashToken(result["refresh_token"].(string)) {
			t.Error("expected the new refresh token hash to be stored")
		}
	})

	t.Run("rejects a revoked token", func(t *testing.T) {
		token, _ := middleware.GenerateRefreshToken(user)
		userSvc := &mockUserService{
			getRefreshTokenHashFn: func(uint) (string, error) { return middleware.HashToken("something else"), nil },
		}
		r := setupAuthRouter(NewAuthHandler(userSvc))

		rec := doRequest(r, "POST", "/auth/refresh", fmt.Sprintf(`{"refresh_token":%q}`, token))

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_TOKEN")
	})

	t.Run("rejects a token for an inactive clerk", func(t *testing.T) {
		token, _ := middleware.GenerateRefreshToken(user)
		userSvc := &mockUserService{
			getRefreshTokenHashFn: func(uint) (string, error) { return middleware.HashToken(token), nil },
			getUserByIDFn: func(id uint) (*models.User, error) {
				return &models.User{Base: models.Base{ID: id}, IsActive: false}, nil
			},
		}
		r := setupAuthRouter(NewAuthHandler(userSvc))

		rec := doRequest(r, "POST", "/auth/refresh", fmt.Sprintf(`{"refresh_token":%q}`, token))

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("rejects when nothing is stored", func(t *testing.T) {
		token, _ := middleware.GenerateRefreshToken(user)
		r := setupAuthRouter(NewAuthHandler(&mockUserService{}))

		rec := doRequest(r, "POST", "/auth/refresh", fmt.Sprintf(`{"refresh_token":%q}`, token))

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("rejects an access token", func(t *testing.T) {
		token, _ := middleware.GenerateAccessToken(user)
		r := setupAuthRouter(NewAuthHandler(&mockUserService{}))

		rec := doRequest(r, "POST", "/auth/refresh", fmt.Sprintf(`{"refresh_token":%q}`, token))

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}

func TestAuthHandler_GetProfile(t *testing.T) {
	t.Run("returns 200 with user profile", func(t *testing.T) {
		now := time.Now()
		userSvc := &mockUserService{
			getUserByIDFn: func(id uint) (*models.User, error) {
				return &models.User{
					Base:        models.Base{ID: id},
					Email:       "clerk@firedistrict.org",
					FirstName:   "Dana",
					LastName:    "Reyes",
					LastLoginAt: &now,
				}, nil
			},
		}
		r := setupAuthRouter(NewAuthHandler(userSvc))

		rec := doRequest(r, "GET", "/profile", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		user := parseJSON(t, rec)["user"].(map[string]interface{})
		if user["first_name"] != "Dana" {
			t.Errorf("expected Dana, got %v", user["first_name"])
		}
	})

	t.Run("returns 401 without auth", func(t *testing.T) {
		r := gin.New()
		r.GET("/profile", NewAuthHandler(&mockUserService{}).GetProfile)

		rec := doRequest(r, "GET", "/profile", "")

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("returns 404 when user not found", func(t *testing.T) {
		userSvc := &mockUserService{
			getUserByIDFn: func(_ uint) (*models.User, error) {
				return nil, apperrors.ErrUserNotFound
			},
		}
		r := setupAuthRouter(NewAuthHandler(userSvc))

		rec := doRequest(r, "GET", "/profile", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}
