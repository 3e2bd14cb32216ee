package product

import (
	"context"

	"kickstep-be/internal/logger"

	"go.uber.org/zap"
)

type Service interface {
	GetAvailability(ctx context.Context, productID string, sel Selection, inCart map[string]int) (*AvailabilityView, error)
}

// AvailabilityView is what the storefront renders for one product page:
// the scenario, per-option enabled flags, and the resolved variant if the
// selection is complete.
type AvailabilityView struct {
	ProductID   string        `json:"product_id"`
	Scenario    Scenario      `json:"scenario"`
	Sizes       []OptionState `json:"sizes,omitempty"`
	Colors      []OptionState `json:"colors,omitempty"`
	Variant     *Variant      `json:"variant,omitempty"`
	Complete    bool          `json:"complete"`
	Purchasable bool          `json:"purchasable"`
	MaxAddable  int           `json:"max_addable"`
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) GetAvailability(ctx context.Context, productID string, sel Selection, inCart map[string]int) (*AvailabilityView, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "GetAvailability"),
		zap.String("product_id", productID),
	)

	p, err := s.repo.GetProductWithVariants(ctx, productID)
	if err != nil {
		log.Warn("failed to load product for availability", zap.Error(err))
		return nil, err
	}

	avail := ResolveAvailability(p.Variants, sel, inCart)

	// A disabled product is never purchasable, whatever its variants say.
	if p.Status != StatusActive {
		avail.Purchasable = false
		avail.MaxAddable = 0
	}

	view := &AvailabilityView{
		ProductID:   p.ID,
		Scenario:    avail.Scenario,
		Variant:     avail.Variant,
		Complete:    avail.Complete,
		Purchasable: avail.Purchasable,
		MaxAddable:  avail.MaxAddable,
	}

	switch avail.Scenario {
	case ScenarioSizeOnly:
		view.Sizes = OptionStates(p.Variants, AxisSize, sel, inCart)
	case ScenarioColorOnly:
		view.Colors = OptionStates(p.Variants, AxisColor, sel, inCart)
	case ScenarioSizeAndColor:
		view.Sizes = OptionStates(p.Variants, AxisSize, sel, inCart)
		view.Colors = OptionStates(p.Variants, AxisColor, sel, inCart)
	}

	return view, nil
}
