package product

import (
	"context"
	"database/sql"
	"errors"

	"kickstep-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	GetProductWithVariants(ctx context.Context, productID string) (*Product, error)
	GetVariantByID(ctx context.Context, variantID string) (*Variant, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetProductWithVariants(ctx context.Context, productID string) (*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "GetProductWithVariants"),
		zap.String("product_id", productID),
	)

	var p Product
	var imageURL sql.NullString

	err := r.db.QueryRowContext(ctx, `
		SELECT id, title, price, currency, status, image_url
		FROM products
		WHERE id = $1
	`, productID).Scan(&p.ID, &p.Title, &p.Price, &p.Currency, &p.Status, &imageURL)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		log.Error("failed to query product", zap.Error(err))
		return nil, err
	}
	if imageURL.Valid {
		p.ImageURL = &imageURL.String
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, product_id, COALESCE(size, ''), COALESCE(color, ''), sku, stock, active
		FROM product_variants
		WHERE product_id = $1
		ORDER BY size, color
	`, productID)
	if err != nil {
		log.Error("failed to query variants", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var v Variant
		if err := rows.Scan(&v.ID, &v.ProductID, &v.Size, &v.Color, &v.SKU, &v.Stock, &v.Active); err != nil {
			log.Error("failed to scan variant row", zap.Error(err))
			return nil, err
		}
		v.Price = p.Price
		v.ProductTitle = p.Title
		p.Variants = append(p.Variants, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &p, nil
}

func (r *repository) GetVariantByID(ctx context.Context, variantID string) (*Variant, error) {
	var v Variant
	err := r.db.QueryRowContext(ctx, `
		SELECT
			v.id, v.product_id, COALESCE(v.size, ''), COALESCE(v.color, ''),
			v.sku, v.stock, v.active,
			p.price, p.title
		FROM product_variants v
		JOIN products p ON p.id = v.product_id
		WHERE v.id = $1
	`, variantID).Scan(
		&v.ID, &v.ProductID, &v.Size, &v.Color,
		&v.SKU, &v.Stock, &v.Active,
		&v.Price, &v.ProductTitle,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrVariantNotFound
	}
	if err != nil {
		logger.FromCtx(ctx).Error("failed to query variant",
			zap.String("variant_id", variantID),
			zap.Error(err),
		)
		return nil, err
	}

	return &v, nil
}
