package cart

import (
	"context"
	"database/sql"
	"errors"

	"kickstep-be/internal/logger"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	GetLines(ctx context.Context, userID uint) ([]*CartLine, error)
	GetLineByVariant(ctx context.Context, userID uint, variantID string) (*CartLine, error)
	QuantitiesByVariant(ctx context.Context, userID uint) (map[string]int, error)
	CreateLine(ctx context.Context, params CreateLineParams) (*CartLine, error)
	UpdateQuantity(ctx context.Context, lineID string, quantity int) error
	RemoveLine(ctx context.Context, userID uint, variantID string) error
	Clear(ctx context.Context, userID uint) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const lineColumns = `
	id, user_id, variant_id, product_id, quantity, unit_price,
	title, COALESCE(size, ''), COALESCE(color, ''), sku, created_at, updated_at
`

func scanLine(row interface{ Scan(...any) error }) (*CartLine, error) {
	var l CartLine
	err := row.Scan(
		&l.ID, &l.UserID, &l.VariantID, &l.ProductID, &l.Quantity, &l.UnitPrice,
		&l.Title, &l.Size, &l.Color, &l.SKU, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *repository) GetLines(ctx context.Context, userID uint) ([]*CartLine, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+lineColumns+`
		FROM cart_lines
		WHERE user_id = $1
		ORDER BY created_at
	`, userID)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to query cart lines",
			zap.Uint("user_id", userID),
			zap.Error(err),
		)
		return nil, err
	}
	defer rows.Close()

	var lines []*CartLine
	for rows.Next() {
		l, err := scanLine(rows)
		if err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (r *repository) GetLineByVariant(ctx context.Context, userID uint, variantID string) (*CartLine, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+lineColumns+`
		FROM cart_lines
		WHERE user_id = $1 AND variant_id = $2
	`, userID, variantID)

	l, err := scanLine(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (r *repository) QuantitiesByVariant(ctx context.Context, userID uint) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT variant_id, quantity
		FROM cart_lines
		WHERE user_id = $1
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var variantID string
		var qty int
		if err := rows.Scan(&variantID, &qty); err != nil {
			return nil, err
		}
		out[variantID] = qty
	}
	return out, rows.Err()
}

func (r *repository) CreateLine(ctx context.Context, params CreateLineParams) (*CartLine, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO cart_lines (
			id, user_id, variant_id, product_id, quantity, unit_price,
			title, size, color, sku
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING `+lineColumns+`
	`,
		uuid.New().String(),
		params.UserID,
		params.VariantID,
		params.ProductID,
		params.Quantity,
		params.UnitPrice,
		params.Title,
		params.Size,
		params.Color,
		params.SKU,
	)

	l, err := scanLine(row)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == PgUniqueViolation {
			return nil, ErrDuplicateLine
		}
		logger.FromCtx(ctx).Error("failed to insert cart line",
			zap.String("variant_id", params.VariantID),
			zap.Error(err),
		)
		return nil, err
	}
	return l, nil
}

func (r *repository) UpdateQuantity(ctx context.Context, lineID string, quantity int) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE cart_lines
		SET quantity = $1, updated_at = NOW()
		WHERE id = $2
	`, quantity, lineID)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrLineNotFound
	}
	return nil
}

func (r *repository) RemoveLine(ctx context.Context, userID uint, variantID string) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM cart_lines
		WHERE user_id = $1 AND variant_id = $2
	`, userID, variantID)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrLineNotFound
	}
	return nil
}

func (r *repository) Clear(ctx context.Context, userID uint) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM cart_lines
		WHERE user_id = $1
	`, userID)
	return err
}
