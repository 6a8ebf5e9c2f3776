package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/jrbailey528/solanasign/internal/domain"
	"github.com/jrbailey528/solanasign/internal/dto"
	"github.com/jrbailey528/solanasign/pkg/middleware"
)

// MockAuthService is a mock implementation of AuthService for testing
type MockAuthService struct {
	RegisterFunc      func(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	LoginFunc         func(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	GetProfileFunc    func(ctx context.Context, userID string) (*dto.UserResponse, error)
	UpdateProfileFunc func(ctx context.Context, userID string, req *dto.UpdateProfileRequest) (*dto.UserResponse, error)
}

func (m *MockAuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, req)
	}
	return nil, nil
}

func (m *MockAuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, req)
	}
	return nil, nil
}

func (m *MockAuthService) GetProfile(ctx context.Context, userID string) (*dto.UserResponse, error) {
	if m.GetProfileFunc != nil {
		return m.GetProfileFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockAuthService) UpdateProfile(ctx context.Context, userID string, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	if m.UpdateProfileFunc != nil {
		return m.UpdateProfileFunc(ctx, userID, req)
	}
	return nil, nil
}

func setupAuthRouter(h *AuthHandler, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	if userID != "" {
		router.Use(func(c *gin.Context) {
			c.Set(middleware.ContextKeyUserID, userID)
			c.Next()
		})
	}

	auth := router.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
	}
	user := router.Group("/user")
	{
		user.GET("/profile", h.GetProfile)
		user.PUT("/profile", h.UpdateProfile)
	}

	return router
}

func TestAuthHandler_Register(t *testing.T) {
	tests := []struct {
		name           string
		request        *dto.RegisterRequest
		mockFunc       func(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error)
		expectedStatus int
		expectedCode   string
	}{
		{
			name:    "successful registration",
			request: &dto.RegisterRequest{Name: "Alice", Email: "alice@example.com", Password: "correct-horse"},
			mockFunc: func(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
				return &dto.AuthResponse{
					Token: "token-123",
					User:  &dto.UserResponse{ID: "user-123", Name: req.Name, Email: req.Email},
				}, nil
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "short password rejected at binding",
			request:        &dto.RegisterRequest{Name: "Alice", Email: "alice@example.com", Password: "short"},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "INVALID_REQUEST",
		},
		{
			name:    "duplicate email",
			request: &dto.RegisterRequest{Name: "Alice", Email: "alice@example.com", Password: "correct-horse"},
			mockFunc: func(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
				return nil, domain.ErrEmailAlreadyExists
			},
			expectedStatus: http.StatusConflict,
			expectedCode:   "EMAIL_EXISTS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewAuthHandler(&MockAuthService{RegisterFunc: tt.mockFunc})
			router := setupAuthRouter(handler, "")

			body, _ := json.Marshal(tt.request)
			req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if tt.expectedCode != "" {
				var response dto.ErrorResponse
				if err := json.Unmarshal(w.Body.Bytes(), &response); err == nil {
					if response.Code != tt.expectedCode {
						t.Errorf("expected code %s, got %s", tt.expectedCode, response.Code)
					}
				}
			}
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	tests := []struct {
		name           string
		request        *dto.LoginRequest
		mockFunc       func(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
		expectedStatus int
		expectedCode   string
	}{
		{
			name:    "successful login",
			request: &dto.LoginRequest{Email: "alice@example.com", Password: "correct-horse"},
			mockFunc: func(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
				return &dto.AuthResponse{
					Token: "token-123",
					User:  &dto.UserResponse{ID: "user-123", Email: req.Email},
				}, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:    "bad credentials",
			request: &dto.LoginRequest{Email: "alice@example.com", Password: "wrong"},
			mockFunc: func(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
				return nil, domain.ErrInvalidCredentials
			},
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   "INVALID_CREDENTIALS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewAuthHandler(&MockAuthService{LoginFunc: tt.mockFunc})
			router := setupAuthRouter(handler, "")

			body, _ := json.Marshal(tt.request)
			req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if tt.expectedCode != "" {
				var response dto.ErrorResponse
				if err := json.Unmarshal(w.Body.Bytes(), &response); err == nil {
					if response.Code != tt.expectedCode {
						t.Errorf("expected code %s, got %s", tt.expectedCode, response.Code)
					}
				}
			}
		})
	}
}

func TestAuthHandler_GetProfile(t *testing.T) {
	handler := NewAuthHandler(&MockAuthService{
		GetProfileFunc: func(ctx context.Context, userID string) (*dto.UserResponse, error) {
			return &dto.UserResponse{ID: userID, Name: "Alice"}, nil
		},
	})

	// Authenticated
	router := setupAuthRouter(handler, "user-123")
	req := httptest.NewRequest(http.MethodGet, "/user/profile", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	// Unauthenticated
	router = setupAuthRouter(handler, "")
	req = httptest.NewRequest(http.MethodGet, "/user/profile", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", w.Code)
	}
}
