package httpapi

import (
	"net/http"

	"kickstep-be/internal/cart"
	"kickstep-be/internal/logger"
	"kickstep-be/internal/product"
	"kickstep-be/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AvailabilityHandler struct {
	products product.Service
	carts    cart.Service
}

func NewAvailabilityHandler(products product.Service, carts cart.Service) *AvailabilityHandler {
	return &AvailabilityHandler{products: products, carts: carts}
}

// Get answers the product page query: which options are still selectable and
// what the current selection resolves to. For a signed-in user the caller's
// cart contents count against the remaining stock.
func (h *AvailabilityHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	sel := product.Selection{
		Size:  c.Query("size"),
		Color: c.Query("color"),
	}

	var inCart map[string]int
	if userID, ok := utils.GetUserIDFromContext(ctx); ok {
		quantities, err := h.carts.Quantities(ctx, userID)
		if err != nil {
			// Availability still works without the cart overlay.
			logger.FromCtx(ctx).Warn("failed to load cart quantities", zap.Error(err))
		} else {
			inCart = quantities
		}
	}

	view, err := h.products.GetAvailability(ctx, c.Param("id"), sel, inCart)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}
