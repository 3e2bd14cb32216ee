package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"kickstep-be/internal/cart"
	"kickstep-be/internal/logger"
	"kickstep-be/internal/metrics"
	"kickstep-be/internal/order"
	"kickstep-be/internal/payment"
	"kickstep-be/internal/product"
	"kickstep-be/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PaymentReader fetches the payments row backing a gateway order.
type PaymentReader interface {
	GetPaymentByOrder(ctx context.Context, orderID uuid.UUID) (*payment.Payment, error)
}

type OrderHandler struct {
	orders   order.Service
	carts    cart.Service
	payments PaymentReader
	checkout *metrics.Checkout
}

func NewOrderHandler(orders order.Service, carts cart.Service, payments PaymentReader, checkout *metrics.Checkout) *OrderHandler {
	return &OrderHandler{
		orders:   orders,
		carts:    carts,
		payments: payments,
		checkout: checkout,
	}
}

type checkoutRequest struct {
	PaymentMethod   string         `json:"payment_method" binding:"required"`
	ShippingMethod  string         `json:"shipping_method"`
	ShippingCost    int64          `json:"shipping_cost"`
	ShippingAddress order.Address  `json:"shipping_address" binding:"required"`
	BillingAddress  *order.Address `json:"billing_address"`
}

// Checkout turns the caller's cart into an order. The lines are taken from
// the server-side cart, never from the request body, so a stale client cannot
// invent prices or quantities.
func (h *OrderHandler) Checkout(c *gin.Context) {
	ctx := c.Request.Context()

	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "payment_method and shipping_address are required"})
		return
	}

	method, err := payment.ParseMethod(req.PaymentMethod)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, _ := utils.GetUserIDFromContext(ctx)
	cartLines, err := h.carts.GetLines(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if len(cartLines) == 0 {
		respondError(c, cart.ErrCartEmpty)
		return
	}

	lines := make([]order.PlacementLine, 0, len(cartLines))
	for _, l := range cartLines {
		lines = append(lines, order.PlacementLine{
			VariantID: l.VariantID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		})
	}

	billing := req.ShippingAddress
	if req.BillingAddress != nil {
		billing = *req.BillingAddress
	}

	timer := metrics.StartTimer()
	result, err := h.orders.PlaceOrder(ctx, order.PlaceOrderInput{
		Lines:           lines,
		ShippingMethod:  req.ShippingMethod,
		ShippingCost:    req.ShippingCost,
		ShippingAddress: req.ShippingAddress,
		BillingAddress:  billing,
		PaymentMethod:   method,
	})
	if err != nil {
		var insufficient *product.InsufficientStockError
		var dispatchErr *payment.GatewayDispatchError
		switch {
		case errors.As(err, &insufficient):
			h.checkout.OversellRejections.Inc()
		case errors.As(err, &dispatchErr):
			h.checkout.GatewayFaults.Inc()
		}
		respondError(c, err)
		return
	}

	h.checkout.OrdersPlaced.Inc()
	h.checkout.ObservePlacement(timer.Duration())

	c.JSON(http.StatusCreated, gin.H{
		"order_id":       result.OrderID,
		"order_number":   result.OrderNumber,
		"status":         result.Status,
		"payment_status": result.PaymentStatus,
		"total":          result.Total,
		"payment": gin.H{
			"method":         result.Next.Method(),
			"display_status": result.Next.DisplayStatus(),
			"next":           result.Next,
		},
	})
}

func (h *OrderHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	var filter order.OrderFilterInput
	if s := c.Query("status"); s != "" {
		status := order.Status(s)
		filter.Status = &status
	}
	if s := c.Query("search"); s != "" {
		filter.Search = utils.StrPtr(s)
	}

	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "20"), 10, 32)
	offset, _ := strconv.ParseInt(c.DefaultQuery("offset", "0"), 10, 32)

	orders, err := h.orders.ListOrders(ctx, &filter, nil, int32(limit), int32(offset))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *OrderHandler) Get(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	ctx := c.Request.Context()
	o, err := h.orders.GetOrderDetail(ctx, orderID)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := gin.H{"order": o}

	// An unpaid gateway order surfaces its live payment session so the buyer
	// can resume a checkout they abandoned at the hosted page.
	if o.PaymentMethod == payment.MethodGateway && o.PaymentStatus == order.PaymentUnpaid {
		p, err := h.payments.GetPaymentByOrder(ctx, o.ID)
		if err != nil {
			logger.FromCtx(ctx).Warn("failed to load payment for order",
				zap.String("order_id", o.ID.String()),
				zap.Error(err),
			)
		} else {
			resp["payment"] = gin.H{
				"provider":     p.Provider,
				"status":       p.Status,
				"redirect_url": p.RedirectURL,
			}
		}
	}

	c.JSON(http.StatusOK, resp)
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}

	o, err := h.orders.UpdateStatus(c.Request.Context(), orderID, order.Status(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, o)
}

func (h *OrderHandler) Metrics(c *gin.Context) {
	c.JSON(http.StatusOK, h.checkout.Snapshot())
}
