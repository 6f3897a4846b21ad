package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/linkpay/linkpay/internal/domain/paymentlink"
	"github.com/linkpay/linkpay/internal/domain/transaction"
	"github.com/linkpay/linkpay/internal/links"
)

type MockLinkService struct {
	mock.Mock
}

func (m *MockLinkService) Create(ctx context.Context, params links.CreateParams) (*paymentlink.Link, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentlink.Link), args.Error(1)
}

func (m *MockLinkService) GetByID(ctx context.Context, id uuid.UUID) (*paymentlink.Link, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentlink.Link), args.Error(1)
}

func (m *MockLinkService) ListByMerchant(ctx context.Context, merchantID string, limit, offset int) ([]*paymentlink.Link, error) {
	args := m.Called(ctx, merchantID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*paymentlink.Link), args.Error(1)
}

func (m *MockLinkService) CheckoutURL(link *paymentlink.Link) string {
	args := m.Called(link)
	return args.String(0)
}

type MockTransactionLister struct {
	mock.Mock
}

func (m *MockTransactionLister) GetByPaymentLinkID(ctx context.Context, linkID uuid.UUID) ([]*transaction.Transaction, error) {
	args := m.Called(ctx, linkID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*transaction.Transaction), args.Error(1)
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	return r
}

func checkoutURLFor(link *paymentlink.Link) string {
	return fmt.Sprintf("https://pay.example.com/checkout/%s", link.ID)
}

func activeLink(merchantID string, amountInCents int64) *paymentlink.Link {
	now := time.Now().UTC()
	return &paymentlink.Link{
		ID:            uuid.New(),
		MerchantID:    merchantID,
		AmountInCents: amountInCents,
		Currency:      "USD",
		Description:   "Spanish lessons - March",
		Status:        paymentlink.StatusActive,
		ExpiresAt:     now.Add(24 * time.Hour),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func decodeData[T any](t *testing.T, body []byte) T {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal(body, &resp))
	require.NotNil(t, resp.Data)
	dataBytes, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var out T
	require.NoError(t, json.Unmarshal(dataBytes, &out))
	return out
}

func decodeError(t *testing.T, body []byte) *ErrorInfo {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal(body, &resp))
	require.NotNil(t, resp.Error)
	return resp.Error
}

func TestLinkHandler_Create(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockLinkService)
		handler := NewLinkHandler(logger, mockService, new(MockTransactionLister))

		link := activeLink("merchant_123", 10000)
		mockService.On("Create", mock.Anything, mock.MatchedBy(func(p links.CreateParams) bool {
			return p.MerchantID == "merchant_123" && p.AmountInCents == int64(10000) && p.Currency == "USD"
		})).Return(link, nil)
		mockService.On("CheckoutURL", link).Return(checkoutURLFor(link))

		router := setupTestRouter()
		router.POST("/links", handler.Create)

		reqBody := CreateLinkRequest{
			MerchantID:    "merchant_123",
			AmountInCents: 10000,
			Currency:      "USD",
			Description:   "Spanish lessons - March",
		}
		jsonBody, _ := json.Marshal(reqBody)

		req, _ := http.NewRequest(http.MethodPost, "/links", bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)
		responseBody := decodeData[LinkResponse](t, rr.Body.Bytes())
		assert.Equal(t, link.ID.String(), responseBody.ID)
		assert.Equal(t, "ACTIVE", responseBody.Status)
		assert.Equal(t, checkoutURLFor(link), responseBody.CheckoutURL)
		mockService.AssertExpectations(t)
	})

	t.Run("InvalidRequestBody", func(t *testing.T) {
		mockService := new(MockLinkService)
		handler := NewLinkHandler(logger, mockService, new(MockTransactionLister))

		router := setupTestRouter()
		router.POST("/links", handler.Create)

		req, _ := http.NewRequest(http.MethodPost, "/links", bytes.NewBufferString(`{"merchant_id":`))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("NegativeAmountRejectedByBinding", func(t *testing.T) {
		mockService := new(MockLinkService)
		handler := NewLinkHandler(logger, mockService, new(MockTransactionLister))

		router := setupTestRouter()
		router.POST("/links", handler.Create)

		req, _ := http.NewRequest(http.MethodPost, "/links",
			bytes.NewBufferString(`{"merchant_id":"merchant_123","amount_in_cents":-50,"currency":"USD"}`))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertNotCalled(t, "Create")
	})

	t.Run("ValidationError", func(t *testing.T) {
		mockService := new(MockLinkService)
		handler := NewLinkHandler(logger, mockService, new(MockTransactionLister))

		mockService.On("Create", mock.Anything, mock.Anything).
			Return(nil, links.ErrInvalidLink{Reason: "expiry must be in the future"})

		router := setupTestRouter()
		router.POST("/links", handler.Create)

		past := time.Now().Add(-time.Hour)
		reqBody := CreateLinkRequest{
			MerchantID:    "merchant_123",
			AmountInCents: 10000,
			Currency:      "USD",
			ExpiresAt:     &past,
		}
		jsonBody, _ := json.Marshal(reqBody)

		req, _ := http.NewRequest(http.MethodPost, "/links", bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		errInfo := decodeError(t, rr.Body.Bytes())
		assert.Contains(t, errInfo.Message, "expiry must be in the future")
		mockService.AssertExpectations(t)
	})

	t.Run("ServiceError", func(t *testing.T) {
		mockService := new(MockLinkService)
		handler := NewLinkHandler(logger, mockService, new(MockTransactionLister))

		mockService.On("Create", mock.Anything, mock.Anything).Return(nil, errors.New("write failed"))

		router := setupTestRouter()
		router.POST("/links", handler.Create)

		reqBody := CreateLinkRequest{MerchantID: "merchant_123", AmountInCents: 10000, Currency: "USD"}
		jsonBody, _ := json.Marshal(reqBody)

		req, _ := http.NewRequest(http.MethodPost, "/links", bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		mockService.AssertExpectations(t)
	})
}

func TestLinkHandler_GetByID(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockLinkService)
		handler := NewLinkHandler(logger, mockService, new(MockTransactionLister))

		link := activeLink("merchant_123", 10000)
		mockService.On("GetByID", mock.Anything, link.ID).Return(link, nil)
		mockService.On("CheckoutURL", link).Return(checkoutURLFor(link))

		router := setupTestRouter()
		router.GET("/links/:id", handler.GetByID)

		req, _ := http.NewRequest(http.MethodGet, "/links/"+link.ID.String(), nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		responseBody := decodeData[LinkResponse](t, rr.Body.Bytes())
		assert.Equal(t, link.ID.String(), responseBody.ID)
		assert.Equal(t, link.MerchantID, responseBody.MerchantID)
		mockService.AssertExpectations(t)
	})

	t.Run("InvalidID", func(t *testing.T) {
		mockService := new(MockLinkService)
		handler := NewLinkHandler(logger, mockService, new(MockTransactionLister))

		router := setupTestRouter()
		router.GET("/links/:id", handler.GetByID)

		req, _ := http.NewRequest(http.MethodGet, "/links/not-a-uuid", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertNotCalled(t, "GetByID")
	})

	t.Run("NotFound", func(t *testing.T) {
		mockService := new(MockLinkService)
		handler := NewLinkHandler(logger, mockService, new(MockTransactionLister))

		linkID := uuid.New()
		mockService.On("GetByID", mock.Anything, linkID).
			Return(nil, paymentlink.ErrLinkNotFound{ID: linkID})

		router := setupTestRouter()
		router.GET("/links/:id", handler.GetByID)

		req, _ := http.NewRequest(http.MethodGet, "/links/"+linkID.String(), nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		errInfo := decodeError(t, rr.Body.Bytes())
		assert.Equal(t, "PAYMENT_LINK_NOT_FOUND", errInfo.Code)
		mockService.AssertExpectations(t)
	})
}

func TestLinkHandler_ListTransactions(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockLinkService)
		mockLister := new(MockTransactionLister)
		handler := NewLinkHandler(logger, mockService, mockLister)

		link := activeLink("merchant_123", 10000)
		now := time.Now().UTC()
		paid := &transaction.Transaction{
			ID:            uuid.New(),
			PaymentLinkID: link.ID,
			AmountInCents: 10470,
			Status:        transaction.StatusPaid,
			PSPMetadata: transaction.PSPMetadata{
				Provider:  transaction.ProviderStripe,
				Reference: "ch_abc123",
			},
			CreatedAt: now,
		}
		failed := &transaction.Transaction{
			ID:            uuid.New(),
			PaymentLinkID: link.ID,
			AmountInCents: 10470,
			Status:        transaction.StatusFailed,
			FailureReason: "card_declined",
			CreatedAt:     now.Add(-time.Minute),
		}
		mockService.On("GetByID", mock.Anything, link.ID).Return(link, nil)
		mockLister.On("GetByPaymentLinkID", mock.Anything, link.ID).
			Return([]*transaction.Transaction{paid, failed}, nil)

		router := setupTestRouter()
		router.GET("/links/:id/transactions", handler.ListTransactions)

		req, _ := http.NewRequest(http.MethodGet, "/links/"+link.ID.String()+"/transactions", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		responseBody := decodeData[TransactionListResponse](t, rr.Body.Bytes())
		require.Len(t, responseBody.Transactions, 2)
		assert.Equal(t, paid.ID.String(), responseBody.Transactions[0].ID)
		assert.Equal(t, "USD", responseBody.Transactions[0].Currency)
		assert.Equal(t, "STRIPE", responseBody.Transactions[0].Provider)
		assert.Equal(t, "card_declined", responseBody.Transactions[1].FailureReason)
		mockService.AssertExpectations(t)
		mockLister.AssertExpectations(t)
	})

	t.Run("InvalidID", func(t *testing.T) {
		mockService := new(MockLinkService)
		mockLister := new(MockTransactionLister)
		handler := NewLinkHandler(logger, mockService, mockLister)

		router := setupTestRouter()
		router.GET("/links/:id/transactions", handler.ListTransactions)

		req, _ := http.NewRequest(http.MethodGet, "/links/not-a-uuid/transactions", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockLister.AssertNotCalled(t, "GetByPaymentLinkID")
	})

	t.Run("LinkNotFound", func(t *testing.T) {
		mockService := new(MockLinkService)
		mockLister := new(MockTransactionLister)
		handler := NewLinkHandler(logger, mockService, mockLister)

		linkID := uuid.New()
		mockService.On("GetByID", mock.Anything, linkID).
			Return(nil, paymentlink.ErrLinkNotFound{ID: linkID})

		router := setupTestRouter()
		router.GET("/links/:id/transactions", handler.ListTransactions)

		req, _ := http.NewRequest(http.MethodGet, "/links/"+linkID.String()+"/transactions", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		errInfo := decodeError(t, rr.Body.Bytes())
		assert.Equal(t, "PAYMENT_LINK_NOT_FOUND", errInfo.Code)
		mockLister.AssertNotCalled(t, "GetByPaymentLinkID")
	})

	t.Run("RepositoryError", func(t *testing.T) {
		mockService := new(MockLinkService)
		mockLister := new(MockTransactionLister)
		handler := NewLinkHandler(logger, mockService, mockLister)

		link := activeLink("merchant_123", 10000)
		mockService.On("GetByID", mock.Anything, link.ID).Return(link, nil)
		mockLister.On("GetByPaymentLinkID", mock.Anything, link.ID).
			Return(nil, errors.New("read failed"))

		router := setupTestRouter()
		router.GET("/links/:id/transactions", handler.ListTransactions)

		req, _ := http.NewRequest(http.MethodGet, "/links/"+link.ID.String()+"/transactions", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		mockLister.AssertExpectations(t)
	})
}

func TestLinkHandler_ListByMerchant(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockLinkService)
		handler := NewLinkHandler(logger, mockService, new(MockTransactionLister))

		first := activeLink("merchant_123", 10000)
		second := activeLink("merchant_123", 2500)
		mockService.On("ListByMerchant", mock.Anything, "merchant_123", 20, 0).
			Return([]*paymentlink.Link{first, second}, nil)
		mockService.On("CheckoutURL", mock.Anything).Return("https://pay.example.com/checkout/x")

		router := setupTestRouter()
		router.GET("/links", handler.ListByMerchant)

		req, _ := http.NewRequest(http.MethodGet, "/links?merchant_id=merchant_123", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		responseBody := decodeData[LinkListResponse](t, rr.Body.Bytes())
		require.Len(t, responseBody.Links, 2)
		assert.Equal(t, first.ID.String(), responseBody.Links[0].ID)
		mockService.AssertExpectations(t)
	})

	t.Run("PaginationOffsets", func(t *testing.T) {
		mockService := new(MockLinkService)
		handler := NewLinkHandler(logger, mockService, new(MockTransactionLister))

		mockService.On("ListByMerchant", mock.Anything, "merchant_123", 10, 20).
			Return([]*paymentlink.Link{}, nil)

		router := setupTestRouter()
		router.GET("/links", handler.ListByMerchant)

		req, _ := http.NewRequest(http.MethodGet, "/links?merchant_id=merchant_123&page=3&per_page=10", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("MissingMerchantID", func(t *testing.T) {
		mockService := new(MockLinkService)
		handler := NewLinkHandler(logger, mockService, new(MockTransactionLister))

		router := setupTestRouter()
		router.GET("/links", handler.ListByMerchant)

		req, _ := http.NewRequest(http.MethodGet, "/links", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertNotCalled(t, "ListByMerchant")
	})
}
