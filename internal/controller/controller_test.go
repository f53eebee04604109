package controller

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolup-zm/payment-service/internal/dto"
	pkgdto "github.com/schoolup-zm/payment-service/pkg/dto"
	"github.com/schoolup-zm/payment-service/pkg/errs"
)

type stubService struct {
	initiateFn func(ctx context.Context, req dto.PaymentRequest) (dto.PaymentResponse, error)
	confirmFn  func(ctx context.Context, req dto.CollectionNotification) error
	balanceFn  func(ctx context.Context, studentID string) (dto.BalanceResponse, error)
	paymentsFn func(ctx context.Context, filter pkgdto.Filter) ([]dto.PaymentRecordResponse, error)
	messagesFn func(ctx context.Context, userID string) ([]dto.MessageResponse, error)
	markReadFn func(ctx context.Context, id, receiverID string) error
}

func (s *stubService) InitiatePayment(ctx context.Context, req dto.PaymentRequest) (dto.PaymentResponse, error) {
	return s.initiateFn(ctx, req)
}

func (s *stubService) ConfirmPayment(ctx context.Context, req dto.CollectionNotification) error {
	return s.confirmFn(ctx, req)
}

func (s *stubService) OutstandingBalance(ctx context.Context, studentID string) (dto.BalanceResponse, error) {
	return s.balanceFn(ctx, studentID)
}

func (s *stubService) GetPayments(ctx context.Context, filter pkgdto.Filter) ([]dto.PaymentRecordResponse, error) {
	return s.paymentsFn(ctx, filter)
}

func (s *stubService) GetMessages(ctx context.Context, userID string) ([]dto.MessageResponse, error) {
	return s.messagesFn(ctx, userID)
}

func (s *stubService) MarkMessageRead(ctx context.Context, id, receiverID string) error {
	return s.markReadFn(ctx, id, receiverID)
}

func (s *stubService) ExpirePendingTransactions() {}

func createTestServer(stub *stubService) *echo.Echo {
	e := echo.New()
	passthrough := func(next echo.HandlerFunc) echo.HandlerFunc {
		return next
	}
	CreatePaymentController(e.Group("/api/v1"), stub, passthrough)
	return e
}

func TestCollectionWebhook_StatusCodes(t *testing.T) {
	testCases := []struct {
		name         string
		body         string
		serviceErr   error
		expectedCode int
	}{
		{
			name:         "processed notification",
			body:         `{"transaction_id": "txn-1", "status": "SUCCESS", "amount": 1000}`,
			serviceErr:   nil,
			expectedCode: http.StatusOK,
		},
		{
			name:         "duplicate delivery acknowledged",
			body:         `{"transaction_id": "txn-1", "status": "SUCCESS", "amount": 1000}`,
			serviceErr:   errs.ErrDuplicateConfirmation,
			expectedCode: http.StatusOK,
		},
		{
			name:         "unknown transaction acknowledged",
			body:         `{"transaction_id": "txn-ghost", "status": "SUCCESS", "amount": 1000}`,
			serviceErr:   errs.ErrTransactionNotFound,
			expectedCode: http.StatusOK,
		},
		{
			name:         "amount mismatch acknowledged",
			body:         `{"transaction_id": "txn-1", "status": "SUCCESS", "amount": 999}`,
			serviceErr:   errs.ErrAmountMismatch,
			expectedCode: http.StatusOK,
		},
		{
			name:         "unparseable status rejected",
			body:         `{"transaction_id": "txn-1", "status": "MAYBE", "amount": 1000}`,
			serviceErr:   errs.ErrValidation,
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "internal error surfaces",
			body:         `{"transaction_id": "txn-1", "status": "SUCCESS", "amount": 1000}`,
			serviceErr:   errs.ErrInternalServer,
			expectedCode: http.StatusInternalServerError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			stub := &stubService{
				confirmFn: func(ctx context.Context, req dto.CollectionNotification) error {
					return tc.serviceErr
				},
			}
			e := createTestServer(stub)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/notifications", strings.NewReader(tc.body))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			rec := httptest.NewRecorder()

			e.ServeHTTP(rec, req)

			assert.Equal(t, tc.expectedCode, rec.Code)
		})
	}
}

func TestCollectionWebhook_StructurallyInvalidPayloads(t *testing.T) {
	called := false
	stub := &stubService{
		confirmFn: func(ctx context.Context, req dto.CollectionNotification) error {
			called = true
			return nil
		},
	}
	e := createTestServer(stub)

	testCases := []struct {
		name string
		body string
	}{
		{name: "malformed json", body: `{"transaction_id": `},
		{name: "missing transaction id", body: `{"status": "SUCCESS", "amount": 1000}`},
		{name: "missing status", body: `{"transaction_id": "txn-1", "amount": 1000}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/notifications", strings.NewReader(tc.body))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			rec := httptest.NewRecorder()

			e.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.False(t, called, "a structurally invalid payload must not reach the service")
		})
	}
}

func TestInitiatePayment_Endpoint(t *testing.T) {
	testCases := []struct {
		name         string
		serviceErr   error
		expectedCode int
	}{
		{name: "push triggered", serviceErr: nil, expectedCode: http.StatusOK},
		{name: "validation failure", serviceErr: errs.ErrValidation, expectedCode: http.StatusBadRequest},
		{name: "unknown student", serviceErr: errs.ErrStudentNotFound, expectedCode: http.StatusNotFound},
		{name: "aggregator down", serviceErr: errs.ErrGatewayUnavailable, expectedCode: http.StatusBadGateway},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			stub := &stubService{
				initiateFn: func(ctx context.Context, req dto.PaymentRequest) (dto.PaymentResponse, error) {
					if tc.serviceErr != nil {
						return dto.PaymentResponse{}, tc.serviceErr
					}
					return dto.PaymentResponse{TransactionID: "txn-1", Status: "PENDING"}, nil
				},
			}
			e := createTestServer(stub)

			body := `{"student_id": "std-1", "amount": 1000, "payer_phone": "0971234567", "network": "MTN"}`
			req := httptest.NewRequest(http.MethodPost, "/api/v1/payments", strings.NewReader(body))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			rec := httptest.NewRecorder()

			e.ServeHTTP(rec, req)

			assert.Equal(t, tc.expectedCode, rec.Code)
			if tc.serviceErr == nil {
				assert.Contains(t, rec.Body.String(), "txn-1")
			}
		})
	}
}

func TestOutstandingBalance_Endpoint(t *testing.T) {
	stub := &stubService{
		balanceFn: func(ctx context.Context, studentID string) (dto.BalanceResponse, error) {
			require.Equal(t, "std-1", studentID)
			return dto.BalanceResponse{StudentID: "std-1", Balance: 1500, Currency: "ZMW"}, nil
		},
	}
	e := createTestServer(stub)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/students/std-1/balance", nil)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "1500")
}

func TestGetMessages_RequiresUserID(t *testing.T) {
	stub := &stubService{
		messagesFn: func(ctx context.Context, userID string) ([]dto.MessageResponse, error) {
			return nil, nil
		},
	}
	e := createTestServer(stub)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/messages", nil)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMarkMessageRead_Endpoint(t *testing.T) {
	var gotID, gotReceiver string
	stub := &stubService{
		markReadFn: func(ctx context.Context, id, receiverID string) error {
			gotID, gotReceiver = id, receiverID
			return nil
		},
	}
	e := createTestServer(stub)

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/messages/msg-1/read?user_id=parent-1", nil)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "msg-1", gotID)
	assert.Equal(t, "parent-1", gotReceiver)
}

func TestGetPayments_PassesFilter(t *testing.T) {
	var gotFilter pkgdto.Filter
	stub := &stubService{
		paymentsFn: func(ctx context.Context, filter pkgdto.Filter) ([]dto.PaymentRecordResponse, error) {
			gotFilter = filter
			return []dto.PaymentRecordResponse{{ID: "pay-1", ReceiptNumber: "MTN-123456"}}, nil
		},
	}
	e := createTestServer(stub)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/payments?student_id=std-1&status=PAID", nil)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "std-1", gotFilter.StudentID)
	assert.Equal(t, "PAID", gotFilter.Status)
	assert.Contains(t, rec.Body.String(), "MTN-123456")
}
