package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"kickstep-be/internal/product"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockProductService struct {
	mock.Mock
}

func (m *mockProductService) GetAvailability(ctx context.Context, productID string, sel product.Selection, inCart map[string]int) (*product.AvailabilityView, error) {
	args := m.Called(ctx, productID, sel, inCart)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.AvailabilityView), args.Error(1)
}

var _ product.Service = (*mockProductService)(nil)

func TestAvailabilityHandler_Get(t *testing.T) {
	t.Run("AnonymousSelection", func(t *testing.T) {
		products := new(mockProductService)
		carts := new(mockCartService)
		h := NewAvailabilityHandler(products, carts)

		products.On("GetAvailability", mock.Anything, "p1",
			product.Selection{Size: "42", Color: "black"}, map[string]int(nil)).
			Return(&product.AvailabilityView{
				ProductID:   "p1",
				Scenario:    product.ScenarioSizeAndColor,
				Complete:    true,
				Purchasable: true,
				MaxAddable:  3,
			}, nil)

		req := httptest.NewRequest(http.MethodGet, "/products/p1/availability?size=42&color=black", nil)
		w := performAs(h.Get, req, 0, gin.Param{Key: "id", Value: "p1"})

		require.Equal(t, http.StatusOK, w.Code)

		var view product.AvailabilityView
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
		assert.True(t, view.Purchasable)
		assert.Equal(t, 3, view.MaxAddable)
		carts.AssertNotCalled(t, "Quantities")
	})

	t.Run("SignedInCountsCart", func(t *testing.T) {
		products := new(mockProductService)
		carts := new(mockCartService)
		h := NewAvailabilityHandler(products, carts)

		carts.On("Quantities", mock.Anything, uint(1)).
			Return(map[string]int{"v1": 2}, nil)
		products.On("GetAvailability", mock.Anything, "p1",
			product.Selection{}, map[string]int{"v1": 2}).
			Return(&product.AvailabilityView{ProductID: "p1"}, nil)

		req := httptest.NewRequest(http.MethodGet, "/products/p1/availability", nil)
		w := performAs(h.Get, req, 1, gin.Param{Key: "id", Value: "p1"})

		assert.Equal(t, http.StatusOK, w.Code)
		products.AssertExpectations(t)
	})

	t.Run("ProductNotFound", func(t *testing.T) {
		products := new(mockProductService)
		h := NewAvailabilityHandler(products, new(mockCartService))

		products.On("GetAvailability", mock.Anything, "ghost", mock.Anything, mock.Anything).
			Return(nil, product.ErrProductNotFound)

		req := httptest.NewRequest(http.MethodGet, "/products/ghost/availability", nil)
		w := performAs(h.Get, req, 0, gin.Param{Key: "id", Value: "ghost"})

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
