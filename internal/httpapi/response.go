package httpapi

import (
	"errors"
	"net/http"

	"kickstep-be/internal/cart"
	"kickstep-be/internal/logger"
	"kickstep-be/internal/order"
	"kickstep-be/internal/payment"
	"kickstep-be/internal/product"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError translates the domain error vocabulary into HTTP. Stock
// conflicts carry the failing variant and the quantity still available so the
// storefront can adjust the cart without another round trip.
func respondError(c *gin.Context, err error) {
	var insufficient *product.InsufficientStockError
	if errors.As(err, &insufficient) {
		c.JSON(http.StatusConflict, gin.H{
			"error":              "insufficient stock",
			"failing_variant_id": insufficient.VariantID,
			"available_quantity": insufficient.Available,
		})
		return
	}

	var inactive *product.VariantInactiveError
	if errors.As(err, &inactive) {
		c.JSON(http.StatusConflict, gin.H{
			"error":              "variant no longer available",
			"failing_variant_id": inactive.VariantID,
		})
		return
	}

	var dispatchErr *payment.GatewayDispatchError
	if errors.As(err, &dispatchErr) {
		// The order exists; only the gateway handoff failed.
		c.JSON(http.StatusBadGateway, gin.H{
			"error":        "payment gateway unavailable",
			"order_id":     dispatchErr.OrderID,
			"order_number": dispatchErr.OrderNumber,
		})
		return
	}

	switch {
	case errors.Is(err, product.ErrProductNotFound),
		errors.Is(err, product.ErrVariantNotFound),
		errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, cart.ErrLineNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

	case errors.Is(err, order.ErrUnauthenticated),
		errors.Is(err, cart.ErrUserNotAuthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})

	case errors.Is(err, order.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})

	case errors.Is(err, order.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})

	case errors.Is(err, order.ErrEmptyOrder),
		errors.Is(err, order.ErrInvalidLine),
		errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, cart.ErrCartEmpty):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	default:
		logger.FromCtx(c.Request.Context()).Error("unhandled request error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
