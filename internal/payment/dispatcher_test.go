package payment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreateRedirect(ctx context.Context, req RedirectRequest) (*RedirectResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*RedirectResponse), args.Error(1)
}

func (m *MockGateway) VerifyNotification(r *http.Request, body []byte) error {
	args := m.Called(r, body)
	return args.Error(0)
}

// MockPaymentRepository is a mock implementation of the Repository interface
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) SavePayment(ctx context.Context, p *Payment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPaymentRepository) UpdatePaymentStatus(ctx context.Context, providerReference, status string) error {
	args := m.Called(ctx, providerReference, status)
	return args.Error(0)
}

func (m *MockPaymentRepository) GetPaymentByOrder(ctx context.Context, orderID uuid.UUID) (*Payment, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Payment), args.Error(1)
}

func (m *MockPaymentRepository) SaveWebhook(
	ctx context.Context,
	provider, eventID, eventType, reference string,
	payload json.RawMessage,
	signatureValid bool,
) (int64, bool, error) {
	args := m.Called(ctx, provider, eventID, eventType, reference, payload, signatureValid)
	return args.Get(0).(int64), args.Bool(1), args.Error(2)
}

func (m *MockPaymentRepository) MarkWebhookProcessed(ctx context.Context, webhookID int64) error {
	args := m.Called(ctx, webhookID)
	return args.Error(0)
}

func (m *MockPaymentRepository) MarkWebhookFailed(ctx context.Context, webhookID int64, reason string) error {
	args := m.Called(ctx, webhookID, reason)
	return args.Error(0)
}

func dispatchRequest(method Method) DispatchRequest {
	return DispatchRequest{
		OrderID:     uuid.New(),
		OrderNumber: "KS-20260823-101500-4821",
		Method:      method,
		Amount:      1399,
		Currency:    "CZK",
		Lines: []Line{
			{VariantID: "v1", Title: "Trail Runner", SKU: "TR-42-BLK", Quantity: 1, UnitPrice: 1000, LineTotal: 1000},
		},
		Customer: Customer{Name: "Jana Novakova", Email: "jana@example.com"},
	}
}

func TestDispatcher_Dispatch(t *testing.T) {
	ctx := context.Background()

	t.Run("GatewayBranch", func(t *testing.T) {
		gateway := new(MockGateway)
		repo := new(MockPaymentRepository)
		d := NewDispatcher(gateway, repo, "123456789/0100")

		req := dispatchRequest(MethodGateway)
		gateway.On("CreateRedirect", ctx, mock.MatchedBy(func(r RedirectRequest) bool {
			return r.Reference == req.OrderNumber && r.Amount == 1399
		})).Return(&RedirectResponse{
			ProviderReference: "pg_123",
			RedirectURL:       "https://pay.example.com/s/abc",
			Status:            "PENDING",
		}, nil)
		repo.On("SavePayment", ctx, mock.MatchedBy(func(p *Payment) bool {
			return p.Provider == ProviderGateway && p.ProviderReference == "pg_123" &&
				p.Status == StatusPending && p.Amount == 1399
		})).Return(nil)

		outcome, err := d.Dispatch(ctx, req)
		require.NoError(t, err)

		redirect, ok := outcome.(GatewayRedirect)
		require.True(t, ok)
		assert.Equal(t, "https://pay.example.com/s/abc", redirect.RedirectURL)
		assert.Equal(t, MethodGateway, outcome.Method())
		repo.AssertExpectations(t)
	})

	t.Run("GatewayFailureWrapped", func(t *testing.T) {
		gateway := new(MockGateway)
		repo := new(MockPaymentRepository)
		d := NewDispatcher(gateway, repo, "123456789/0100")

		gateway.On("CreateRedirect", ctx, mock.Anything).
			Return(nil, errors.New("provider timeout"))

		req := dispatchRequest(MethodGateway)
		_, err := d.Dispatch(ctx, req)

		var dispatchErr *GatewayDispatchError
		require.ErrorAs(t, err, &dispatchErr)
		assert.Equal(t, req.OrderNumber, dispatchErr.OrderNumber)
		repo.AssertNotCalled(t, "SavePayment")
	})

	t.Run("BankBranch", func(t *testing.T) {
		gateway := new(MockGateway)
		repo := new(MockPaymentRepository)
		d := NewDispatcher(gateway, repo, "123456789/0100")

		repo.On("SavePayment", ctx, mock.MatchedBy(func(p *Payment) bool {
			return p.Provider == ProviderBank && p.Method == MethodBank
		})).Return(nil)

		req := dispatchRequest(MethodBank)
		outcome, err := d.Dispatch(ctx, req)
		require.NoError(t, err)

		transfer, ok := outcome.(BankTransfer)
		require.True(t, ok)
		assert.Equal(t, req.OrderNumber, transfer.Reference)
		assert.Contains(t, transfer.Steps[0], "1399 CZK")
		assert.Contains(t, transfer.Steps[0], "123456789/0100")
		gateway.AssertNotCalled(t, "CreateRedirect")
	})

	t.Run("CODNeverTouchesGateway", func(t *testing.T) {
		gateway := new(MockGateway)
		repo := new(MockPaymentRepository)
		d := NewDispatcher(gateway, repo, "123456789/0100")

		repo.On("SavePayment", ctx, mock.MatchedBy(func(p *Payment) bool {
			return p.Provider == ProviderCOD && p.Method == MethodCOD
		})).Return(nil)

		outcome, err := d.Dispatch(ctx, dispatchRequest(MethodCOD))
		require.NoError(t, err)

		cod, ok := outcome.(CashOnDelivery)
		require.True(t, ok)
		assert.Contains(t, cod.Steps[1], "1399 CZK")
		assert.Equal(t, "pay on delivery", outcome.DisplayStatus())
		gateway.AssertNotCalled(t, "CreateRedirect")
	})

	t.Run("UnknownMethod", func(t *testing.T) {
		d := NewDispatcher(new(MockGateway), new(MockPaymentRepository), "")

		_, err := d.Dispatch(ctx, dispatchRequest(Method("voucher")))

		var dispatchErr *GatewayDispatchError
		assert.ErrorAs(t, err, &dispatchErr)
	})
}
