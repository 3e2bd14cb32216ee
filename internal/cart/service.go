package cart

import (
	"context"
	"errors"

	"kickstep-be/internal/logger"
	"kickstep-be/internal/product"

	"go.uber.org/zap"
)

// Service maintains per-user cart state and enforces the client-side
// quantity-vs-stock ceiling. Live stock is re-fetched on every increase; the
// check here is advisory because independent carts can still race — order
// placement holds the authoritative check.
type Service interface {
	AddLine(ctx context.Context, userID uint, variantID string, deltaQty int) (*CartLine, error)
	SetQuantity(ctx context.Context, userID uint, variantID string, quantity int) error
	RemoveLine(ctx context.Context, userID uint, variantID string) error
	GetLines(ctx context.Context, userID uint) ([]*CartLine, error)
	Quantities(ctx context.Context, userID uint) (map[string]int, error)
	Clear(ctx context.Context, userID uint) error
}

type service struct {
	repo        Repository
	productRepo product.Repository
}

func NewService(repo Repository, productRepo product.Repository) Service {
	return &service{repo: repo, productRepo: productRepo}
}

func (s *service) AddLine(ctx context.Context, userID uint, variantID string, deltaQty int) (*CartLine, error) {
	if userID == 0 {
		return nil, ErrUserNotAuthenticated
	}
	if deltaQty <= 0 {
		return nil, ErrInvalidQuantity
	}

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "AddLine"),
		zap.Uint("user_id", userID),
		zap.String("variant_id", variantID),
		zap.Int("delta_qty", deltaQty),
	)

	// Live stock, never the catalog copy the client rendered from.
	variant, err := s.productRepo.GetVariantByID(ctx, variantID)
	if err != nil {
		return nil, err
	}
	if !variant.Active {
		log.Warn("variant inactive")
		return nil, &product.VariantInactiveError{VariantID: variantID}
	}

	existing, err := s.repo.GetLineByVariant(ctx, userID, variantID)
	if err != nil {
		return nil, err
	}

	inCart := 0
	if existing != nil {
		inCart = existing.Quantity
	}

	if inCart+deltaQty > variant.Stock {
		available := variant.Stock - inCart
		if available < 0 {
			available = 0
		}
		log.Info("cart ceiling hit",
			zap.Int("in_cart", inCart),
			zap.Int("stock", variant.Stock),
			zap.Int("available", available),
		)
		return nil, &product.InsufficientStockError{VariantID: variantID, Available: available}
	}

	if existing == nil {
		line, err := s.repo.CreateLine(ctx, CreateLineParams{
			UserID:    userID,
			VariantID: variant.ID,
			ProductID: variant.ProductID,
			Quantity:  deltaQty,
			UnitPrice: variant.Price,
			Title:     variant.ProductTitle,
			Size:      variant.Size,
			Color:     variant.Color,
			SKU:       variant.SKU,
		})
		if errors.Is(err, ErrDuplicateLine) {
			// Lost the insert race to a parallel request; fold into the line
			// that won.
			return s.AddLine(ctx, userID, variantID, deltaQty)
		}
		return line, err
	}

	if err := s.repo.UpdateQuantity(ctx, existing.ID, inCart+deltaQty); err != nil {
		return nil, err
	}
	existing.Quantity = inCart + deltaQty
	return existing, nil
}

func (s *service) SetQuantity(ctx context.Context, userID uint, variantID string, quantity int) error {
	if userID == 0 {
		return ErrUserNotAuthenticated
	}
	if quantity <= 0 {
		// Zero or negative means the line goes away.
		return s.repo.RemoveLine(ctx, userID, variantID)
	}

	existing, err := s.repo.GetLineByVariant(ctx, userID, variantID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrLineNotFound
	}

	// Decreasing demand never needs a stock check.
	if quantity > existing.Quantity {
		variant, err := s.productRepo.GetVariantByID(ctx, variantID)
		if err != nil {
			return err
		}
		if !variant.Active {
			return &product.VariantInactiveError{VariantID: variantID}
		}
		if quantity > variant.Stock {
			available := variant.Stock
			if available < 0 {
				available = 0
			}
			return &product.InsufficientStockError{VariantID: variantID, Available: available}
		}
	}

	return s.repo.UpdateQuantity(ctx, existing.ID, quantity)
}

func (s *service) RemoveLine(ctx context.Context, userID uint, variantID string) error {
	if userID == 0 {
		return ErrUserNotAuthenticated
	}
	return s.repo.RemoveLine(ctx, userID, variantID)
}

func (s *service) GetLines(ctx context.Context, userID uint) ([]*CartLine, error) {
	if userID == 0 {
		return nil, ErrUserNotAuthenticated
	}
	return s.repo.GetLines(ctx, userID)
}

func (s *service) Quantities(ctx context.Context, userID uint) (map[string]int, error) {
	if userID == 0 {
		return map[string]int{}, nil
	}
	return s.repo.QuantitiesByVariant(ctx, userID)
}

func (s *service) Clear(ctx context.Context, userID uint) error {
	if userID == 0 {
		return ErrUserNotAuthenticated
	}
	return s.repo.Clear(ctx, userID)
}
