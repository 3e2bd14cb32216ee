package order

import (
	"context"
	"errors"
	"fmt"

	"kickstep-be/internal/logger"
	"kickstep-be/internal/payment"
	"kickstep-be/internal/product"
	"kickstep-be/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service interface {
	// PlaceOrder runs the whole checkout submission: validate, reserve stock
	// atomically, persist, and hand off to the payment branch.
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*PlacementResult, error)

	GetOrderDetail(ctx context.Context, orderID uuid.UUID) (*Order, error)
	ListOrders(ctx context.Context, filter *OrderFilterInput, sort *OrderSortInput, limit, offset int32) ([]*Order, error)

	UpdateStatus(ctx context.Context, orderID uuid.UUID, to Status) (*Order, error)

	// MarkPaid and MarkPaymentFailed apply asynchronous settlement results.
	// Both are idempotent: replaying the same result is a no-op.
	MarkPaid(ctx context.Context, orderNumber, providerRef string) error
	MarkPaymentFailed(ctx context.Context, orderNumber, providerRef string) error
}

// PaymentDispatcher routes a placed order into its settlement branch.
type PaymentDispatcher interface {
	Dispatch(ctx context.Context, req payment.DispatchRequest) (payment.Outcome, error)
}

// CartClearer empties a user's cart after a successful checkout. Declared
// here so the order package does not depend on the cart package.
type CartClearer interface {
	Clear(ctx context.Context, userID uint) error
}

// SettlementStore is the slice of the payment repository that owns the
// payments ledger rows.
type SettlementStore interface {
	UpdatePaymentStatus(ctx context.Context, providerReference, status string) error
}

type service struct {
	repo       Repository
	dispatcher PaymentDispatcher
	cart       CartClearer
	payments   SettlementStore
	currency   string
}

func NewService(repo Repository, dispatcher PaymentDispatcher, cart CartClearer, payments SettlementStore, currency string) Service {
	return &service{
		repo:       repo,
		dispatcher: dispatcher,
		cart:       cart,
		payments:   payments,
		currency:   currency,
	}
}

func (s *service) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*PlacementResult, error) {
	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "PlaceOrder"),
		zap.Uint("user_id", userID),
	)

	if len(input.Lines) == 0 {
		return nil, ErrEmptyOrder
	}
	if input.ShippingCost < 0 {
		return nil, ErrInvalidLine
	}

	var subtotal int64
	for _, l := range input.Lines {
		if l.VariantID == "" || l.Quantity <= 0 || l.UnitPrice < 0 {
			return nil, ErrInvalidLine
		}
		subtotal += l.UnitPrice * int64(l.Quantity)
	}

	currency := input.Currency
	if currency == "" {
		currency = s.currency
	}

	o := &Order{
		ID:              uuid.New(),
		UserID:          userID,
		Number:          utils.GenerateOrderNumber(),
		Subtotal:        subtotal,
		ShippingCost:    input.ShippingCost,
		Total:           subtotal + input.ShippingCost,
		Currency:        currency,
		Status:          StatusPending,
		PaymentStatus:   PaymentUnpaid,
		PaymentMethod:   input.PaymentMethod,
		ShippingMethod:  input.ShippingMethod,
		ShippingAddress: input.ShippingAddress,
		BillingAddress:  input.BillingAddress,
	}
	for _, l := range input.Lines {
		o.Lines = append(o.Lines, &OrderLine{
			ID:        uuid.New(),
			VariantID: l.VariantID,
			UnitPrice: l.UnitPrice,
			Quantity:  l.Quantity,
			LineTotal: l.UnitPrice * int64(l.Quantity),
		})
	}

	if err := s.repo.PlaceOrderTx(ctx, o); err != nil {
		var insufficient *product.InsufficientStockError
		var inactive *product.VariantInactiveError
		if errors.As(err, &insufficient) || errors.As(err, &inactive) ||
			errors.Is(err, product.ErrVariantNotFound) {
			return nil, err
		}
		log.Error("placement transaction failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrTransactionFault, err)
	}

	outcome, err := s.dispatch(ctx, o)
	if err != nil {
		// The order is committed and stock is held. The storefront gets the
		// fault; the order stays PENDING for a retry or manual follow-up.
		log.Error("payment dispatch failed",
			zap.String("order_number", o.Number),
			zap.Error(err),
		)
		return nil, err
	}

	if err := s.cart.Clear(ctx, userID); err != nil {
		// Checkout already succeeded; a stale cart is recoverable.
		log.Warn("failed to clear cart after checkout", zap.Error(err))
	}

	log.Info("checkout complete",
		zap.String("order_number", o.Number),
		zap.String("status", string(o.Status)),
		zap.Int64("total", o.Total),
	)

	return &PlacementResult{
		OrderID:       o.ID,
		OrderNumber:   o.Number,
		Status:        o.Status,
		PaymentStatus: o.PaymentStatus,
		Total:         o.Total,
		Next:          outcome,
	}, nil
}

// dispatch hands the committed order to its payment branch and records the
// branch result on the order row. The gateway branch leaves the order
// pending; the deferred branches confirm it immediately.
func (s *service) dispatch(ctx context.Context, o *Order) (payment.Outcome, error) {
	lines := make([]payment.Line, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, payment.Line{
			VariantID: l.VariantID,
			Title:     l.Title,
			SKU:       l.SKU,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			LineTotal: l.LineTotal,
		})
	}

	outcome, err := s.dispatcher.Dispatch(ctx, payment.DispatchRequest{
		OrderID:     o.ID,
		OrderNumber: o.Number,
		Method:      o.PaymentMethod,
		Amount:      o.Total,
		Currency:    o.Currency,
		Lines:       lines,
		Customer: payment.Customer{
			Name:  o.ShippingAddress.Name,
			Email: utils.GetUserEmailFromContext(ctx),
			Phone: o.ShippingAddress.Phone,
		},
	})
	if err != nil {
		return nil, err
	}

	var provider, reference string
	status := o.Status

	switch next := outcome.(type) {
	case payment.GatewayRedirect:
		provider, reference = payment.ProviderGateway, next.ProviderReference
	case payment.BankTransfer:
		provider, reference = payment.ProviderBank, next.Reference
		status = StatusConfirmed
	case payment.CashOnDelivery:
		provider, reference = payment.ProviderCOD, o.Number
		status = StatusConfirmed
	}

	if err := s.repo.RecordDispatch(ctx, o.ID, provider, reference, status); err != nil {
		return nil, fmt.Errorf("failed to record payment dispatch: %w", err)
	}

	o.Status = status
	o.PaymentProvider = provider
	o.PaymentReference = reference
	return outcome, nil
}

func (s *service) GetOrderDetail(ctx context.Context, orderID uuid.UUID) (*Order, error) {
	o, err := s.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	userID, _ := utils.GetUserIDFromContext(ctx)
	if o.UserID != userID && !utils.IsAdmin(ctx) {
		// Hide existence from non-owners.
		return nil, ErrOrderNotFound
	}
	return o, nil
}

func (s *service) ListOrders(
	ctx context.Context,
	filter *OrderFilterInput,
	sort *OrderSortInput,
	limit, offset int32,
) ([]*Order, error) {
	if _, ok := utils.GetUserIDFromContext(ctx); !ok {
		return nil, ErrUnauthenticated
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.FetchOrders(ctx, filter, sort, limit, offset)
}

func (s *service) UpdateStatus(ctx context.Context, orderID uuid.UUID, to Status) (*Order, error) {
	if !utils.IsAdmin(ctx) {
		return nil, ErrUnauthorized
	}

	o, err := s.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !CanTransition(o.Status, to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, to)
	}

	if err := s.repo.UpdateStatus(ctx, orderID, to); err != nil {
		return nil, err
	}

	logger.FromCtx(ctx).Info("order status updated",
		zap.String("order_id", orderID.String()),
		zap.String("from", string(o.Status)),
		zap.String("to", string(to)),
	)

	o.Status = to
	return o, nil
}

func (s *service) MarkPaid(ctx context.Context, orderNumber, providerRef string) error {
	o, err := s.repo.GetOrderByNumber(ctx, orderNumber)
	if err != nil {
		return err
	}

	if o.PaymentStatus == PaymentPaid {
		// Replayed callback.
		return nil
	}
	if !CanPaymentTransition(o.PaymentStatus, PaymentPaid) {
		return fmt.Errorf("%w: payment %s -> PAID", ErrInvalidTransition, o.PaymentStatus)
	}

	// The payments ledger is written first. If the order write below fails,
	// the gateway redelivers and both writes replay; a replay after a
	// successful order write would be short-circuited by the PAID check.
	if err := s.payments.UpdatePaymentStatus(ctx, providerRef, string(PaymentPaid)); err != nil {
		return err
	}

	// A paid pending order is confirmed in the same write; orders already
	// past PENDING keep their fulfillment progress.
	var status *Status
	if o.Status == StatusPending {
		confirmed := StatusConfirmed
		status = &confirmed
	}

	if err := s.repo.UpdatePaymentResult(ctx, orderNumber, PaymentPaid, status, providerRef); err != nil {
		return err
	}

	logger.FromCtx(ctx).Info("order marked paid",
		zap.String("order_number", orderNumber),
		zap.String("provider_reference", providerRef),
	)
	return nil
}

func (s *service) MarkPaymentFailed(ctx context.Context, orderNumber, providerRef string) error {
	o, err := s.repo.GetOrderByNumber(ctx, orderNumber)
	if err != nil {
		return err
	}

	if o.PaymentStatus == PaymentFailed {
		return nil
	}
	if o.PaymentStatus == PaymentPaid {
		// A failure callback never undoes a recorded settlement.
		logger.FromCtx(ctx).Warn("failure callback for already paid order",
			zap.String("order_number", orderNumber),
		)
		return nil
	}
	if !CanPaymentTransition(o.PaymentStatus, PaymentFailed) {
		return fmt.Errorf("%w: payment %s -> FAILED", ErrInvalidTransition, o.PaymentStatus)
	}

	if err := s.payments.UpdatePaymentStatus(ctx, providerRef, string(PaymentFailed)); err != nil {
		return err
	}

	if err := s.repo.UpdatePaymentResult(ctx, orderNumber, PaymentFailed, nil, providerRef); err != nil {
		return err
	}

	logger.FromCtx(ctx).Info("order payment marked failed",
		zap.String("order_number", orderNumber),
	)
	return nil
}
