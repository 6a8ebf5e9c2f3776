package handler

import (
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

// MockTransactionService is a mock implementation of TransactionService for testing
type MockTransactionService struct {
	GetUserTransactionsFunc func(ctx context.Context, userID string) (*dto.TransactionHistoryResponse, error)
	GetTicketHistoryFunc    func(ctx context.Context, ticketID string) (*dto.TransactionHistoryResponse, error)
}

func (m *MockTransactionService) GetUserTransactions(ctx context.Context, userID string) (*dto.TransactionHistoryResponse, error) {
	if m.GetUserTransactionsFunc != nil {
		return m.GetUserTransactionsFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockTransactionService) GetTicketHistory(ctx context.Context, ticketID string) (*dto.TransactionHistoryResponse, error) {
	if m.GetTicketHistoryFunc != nil {
		return m.GetTicketHistoryFunc(ctx, ticketID)
	}
	return nil, nil
}

func setupTransactionRouter(h *TransactionHandler, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	if userID != "" {
		router.Use(func(c *gin.Context) {
			c.Set(middleware.ContextKeyUserID, userID)
			c.Next()
		})
	}

	router.GET("/user/transactions", h.GetUserTransactions)
	router.GET("/tickets/:id/history", h.GetTicketHistory)

	return router
}

func TestTransactionHandler_GetUserTransactions(t *testing.T) {
	handler := NewTransactionHandler(&MockTransactionService{
		GetUserTransactionsFunc: func(ctx context.Context, userID string) (*dto.TransactionHistoryResponse, error) {
			return &dto.TransactionHistoryResponse{
				Transactions: []*dto.TransactionResponse{{ID: "tx-123", TicketID: "ticket-123", Kind: "mint"}},
				Count:        1,
			}, nil
		},
	})

	router := setupTransactionRouter(handler, "user-123")
	req := httptest.NewRequest(http.MethodGet, "/user/transactions", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var response dto.TransactionHistoryResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Count != 1 {
		t.Errorf("count = %d, want 1", response.Count)
	}

	router = setupTransactionRouter(handler, "")
	req = httptest.NewRequest(http.MethodGet, "/user/transactions", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401 without identity, got %d", w.Code)
	}
}

func TestTransactionHandler_GetTicketHistory(t *testing.T) {
	handler := NewTransactionHandler(&MockTransactionService{
		GetTicketHistoryFunc: func(ctx context.Context, ticketID string) (*dto.TransactionHistoryResponse, error) {
			if ticketID == "ticket-999" {
				return nil, domain.ErrTicketNotFound
			}
			return &dto.TransactionHistoryResponse{
				Transactions: []*dto.TransactionResponse{
					{ID: "tx-1", TicketID: ticketID, Kind: "mint"},
					{ID: "tx-2", TicketID: ticketID, Kind: "transfer"},
				},
				Count: 2,
			}, nil
		},
	})
	router := setupTransactionRouter(handler, "")

	req := httptest.NewRequest(http.MethodGet, "/tickets/ticket-123/history", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/tickets/ticket-999/history", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404 for unknown ticket, got %d", w.Code)
	}
}
