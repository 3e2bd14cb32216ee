package httpapi

import (
	"net/http"

	"kickstep-be/internal/cart"
	"kickstep-be/internal/utils"

	"github.com/gin-gonic/gin"
)

type CartHandler struct {
	carts cart.Service
}

func NewCartHandler(carts cart.Service) *CartHandler {
	return &CartHandler{carts: carts}
}

type addLineRequest struct {
	VariantID string `json:"variant_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required"`
}

type setQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	userID, _ := utils.GetUserIDFromContext(ctx)

	lines, err := h.carts.GetLines(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	var subtotal int64
	for _, l := range lines {
		subtotal += l.UnitPrice * int64(l.Quantity)
	}

	c.JSON(http.StatusOK, gin.H{
		"lines":    lines,
		"subtotal": subtotal,
	})
}

func (h *CartHandler) AddLine(c *gin.Context) {
	ctx := c.Request.Context()
	userID, _ := utils.GetUserIDFromContext(ctx)

	var req addLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "variant_id and quantity are required"})
		return
	}

	line, err := h.carts.AddLine(ctx, userID, req.VariantID, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, line)
}

func (h *CartHandler) SetQuantity(c *gin.Context) {
	ctx := c.Request.Context()
	userID, _ := utils.GetUserIDFromContext(ctx)

	var req setQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "quantity is required"})
		return
	}

	if err := h.carts.SetQuantity(ctx, userID, c.Param("variantId"), req.Quantity); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *CartHandler) RemoveLine(c *gin.Context) {
	ctx := c.Request.Context()
	userID, _ := utils.GetUserIDFromContext(ctx)

	if err := h.carts.RemoveLine(ctx, userID, c.Param("variantId")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
