package payment

import (
	"context"

	"kickstep-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DispatchRequest carries everything a payment branch can need. Which fields
// are actually used depends on the method: gateway dispatch needs the lines
// and customer contact, the deferred branches only the amount and reference.
type DispatchRequest struct {
	OrderID     uuid.UUID
	OrderNumber string
	Method      Method
	Amount      int64
	Currency    string
	Lines       []Line
	Customer    Customer
}

// Dispatcher routes a freshly placed order into exactly one settlement
// branch. It never touches order state; the caller reacts to the Outcome.
type Dispatcher struct {
	gateway     Gateway
	repo        Repository
	bankAccount string
}

func NewDispatcher(gateway Gateway, repo Repository, bankAccount string) *Dispatcher {
	return &Dispatcher{
		gateway:     gateway,
		repo:        repo,
		bankAccount: bankAccount,
	}
}

func (d *Dispatcher) Dispatch(ctx context.Context, req DispatchRequest) (Outcome, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "dispatcher"),
		zap.String("order_number", req.OrderNumber),
		zap.String("method", string(req.Method)),
		zap.Int64("amount", req.Amount),
	)

	switch req.Method {
	case MethodGateway:
		return d.dispatchGateway(ctx, log, req)
	case MethodBank:
		return d.dispatchBank(ctx, log, req)
	case MethodCOD:
		return d.dispatchCOD(ctx, log, req)
	}

	// ParseMethod at the API edge makes this unreachable.
	return nil, &GatewayDispatchError{
		OrderID:     req.OrderID,
		OrderNumber: req.OrderNumber,
		Err:         errUnknownMethod(req.Method),
	}
}

func (d *Dispatcher) dispatchGateway(ctx context.Context, log *zap.Logger, req DispatchRequest) (Outcome, error) {
	resp, err := d.gateway.CreateRedirect(ctx, RedirectRequest{
		Reference: req.OrderNumber,
		Amount:    req.Amount,
		Currency:  req.Currency,
		Lines:     req.Lines,
		Customer:  req.Customer,
	})
	if err != nil {
		// The order is already committed; it stays pending for follow-up.
		log.Error("gateway handoff failed", zap.Error(err))
		return nil, &GatewayDispatchError{OrderID: req.OrderID, OrderNumber: req.OrderNumber, Err: err}
	}

	p := &Payment{
		OrderID:           req.OrderID,
		Provider:          ProviderGateway,
		ProviderReference: resp.ProviderReference,
		RedirectURL:       resp.RedirectURL,
		Amount:            req.Amount,
		Currency:          req.Currency,
		Status:            StatusPending,
		Method:            MethodGateway,
		ExpiresAt:         resp.ExpiresAt,
	}
	if err := d.repo.SavePayment(ctx, p); err != nil {
		log.Error("failed to save gateway payment", zap.Error(err))
		return nil, &GatewayDispatchError{OrderID: req.OrderID, OrderNumber: req.OrderNumber, Err: err}
	}

	log.Info("gateway redirect initiated",
		zap.String("provider_reference", resp.ProviderReference),
	)

	return GatewayRedirect{
		RedirectURL:       resp.RedirectURL,
		ProviderReference: resp.ProviderReference,
	}, nil
}

func (d *Dispatcher) dispatchBank(ctx context.Context, log *zap.Logger, req DispatchRequest) (Outcome, error) {
	p := &Payment{
		OrderID:           req.OrderID,
		Provider:          ProviderBank,
		ProviderReference: req.OrderNumber,
		Amount:            req.Amount,
		Currency:          req.Currency,
		Status:            StatusPending,
		Method:            MethodBank,
	}
	if err := d.repo.SavePayment(ctx, p); err != nil {
		return nil, err
	}

	steps := InjectVariables(GetInstructions(MethodBank), InstructionVars{
		"amount":    FormatAmount(req.Amount, req.Currency),
		"account":   d.bankAccount,
		"reference": req.OrderNumber,
	})

	log.Info("bank transfer instructions issued")

	return BankTransfer{Reference: req.OrderNumber, Steps: steps}, nil
}

func (d *Dispatcher) dispatchCOD(ctx context.Context, log *zap.Logger, req DispatchRequest) (Outcome, error) {
	p := &Payment{
		OrderID:           req.OrderID,
		Provider:          ProviderCOD,
		ProviderReference: req.OrderNumber,
		Amount:            req.Amount,
		Currency:          req.Currency,
		Status:            StatusPending,
		Method:            MethodCOD,
	}
	if err := d.repo.SavePayment(ctx, p); err != nil {
		return nil, err
	}

	steps := InjectVariables(GetInstructions(MethodCOD), InstructionVars{
		"amount": FormatAmount(req.Amount, req.Currency),
	})

	log.Info("cash on delivery confirmed")

	return CashOnDelivery{Steps: steps}, nil
}

type errUnknownMethod Method

func (e errUnknownMethod) Error() string {
	return "unknown payment method: " + string(e)
}
