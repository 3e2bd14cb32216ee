package order

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"kickstep-be/internal/logger"
	"kickstep-be/internal/product"
	"kickstep-be/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Repository interface {
	// PlaceOrderTx atomically validates stock, decrements it, and persists
	// the order with its line snapshots. It is the sole purchase-path stock
	// mutator in the system.
	PlaceOrderTx(ctx context.Context, o *Order) error

	GetOrderByID(ctx context.Context, orderID uuid.UUID) (*Order, error)
	GetOrderByNumber(ctx context.Context, number string) (*Order, error)
	FetchOrders(ctx context.Context, filter *OrderFilterInput, sort *OrderSortInput, limit, offset int32) ([]*Order, error)

	UpdateStatus(ctx context.Context, orderID uuid.UUID, status Status) error
	// RecordDispatch stores the payment branch chosen for a fresh order and
	// the status the branch leaves it in.
	RecordDispatch(ctx context.Context, orderID uuid.UUID, provider, reference string, status Status) error
	// UpdatePaymentResult applies a settlement callback to the order row:
	// payment_status always changes, status only when the callback confirms
	// a pending order. The payments ledger is the payment package's.
	UpdatePaymentResult(ctx context.Context, number string, paymentStatus PaymentStatus, status *Status, providerRef string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

// lockVariantQuery re-reads stock and the snapshot fields under a row lock so
// concurrent placements on the same variant serialize.
const lockVariantQuery = `
	SELECT v.stock, v.active, p.title, COALESCE(v.size, ''), COALESCE(v.color, ''), v.sku
	FROM product_variants v
	JOIN products p ON p.id = v.product_id
	WHERE v.id = $1
	FOR UPDATE OF v
`

func (r *repository) PlaceOrderTx(ctx context.Context, o *Order) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "PlaceOrderTx"),
		zap.String("order_number", o.Number),
		zap.Int("line_count", len(o.Lines)),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction", zap.Error(err))
		return err
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error("failed to rollback transaction", zap.Error(rbErr))
			}
		}
	}()

	// 1. Lock each variant row, re-check availability, decrement.
	for _, line := range o.Lines {
		var (
			stock  int
			active bool
		)
		err := tx.QueryRowContext(ctx, lockVariantQuery, line.VariantID).
			Scan(&stock, &active, &line.Title, &line.Size, &line.Color, &line.SKU)
		if errors.Is(err, sql.ErrNoRows) {
			return product.ErrVariantNotFound
		}
		if err != nil {
			log.Error("failed to lock variant row",
				zap.String("variant_id", line.VariantID),
				zap.Error(err),
			)
			return err
		}

		if !active {
			log.Info("variant inactive, aborting placement",
				zap.String("variant_id", line.VariantID),
			)
			return &product.VariantInactiveError{VariantID: line.VariantID}
		}
		if stock < line.Quantity {
			log.Info("insufficient stock, aborting placement",
				zap.String("variant_id", line.VariantID),
				zap.Int("stock", stock),
				zap.Int("requested", line.Quantity),
			)
			return &product.InsufficientStockError{VariantID: line.VariantID, Available: stock}
		}

		// The stock >= qty guard is redundant under the row lock but keeps
		// the stock CHECK constraint from ever being the one to fire.
		res, err := tx.ExecContext(ctx, `
			UPDATE product_variants
			SET stock = stock - $1
			WHERE id = $2 AND stock >= $1
		`, line.Quantity, line.VariantID)
		if err != nil {
			return err
		}
		if affected, _ := res.RowsAffected(); affected == 0 {
			return &product.InsufficientStockError{VariantID: line.VariantID, Available: stock}
		}
	}

	// 2. Insert the order.
	shippingAddr, err := json.Marshal(o.ShippingAddress)
	if err != nil {
		return err
	}
	billingAddr, err := json.Marshal(o.BillingAddress)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (
			id, user_id, order_number,
			subtotal, shipping_cost, total, currency,
			status, payment_status, payment_method,
			shipping_method, shipping_address, billing_address
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`,
		o.ID, o.UserID, o.Number,
		o.Subtotal, o.ShippingCost, o.Total, o.Currency,
		o.Status, o.PaymentStatus, o.PaymentMethod,
		o.ShippingMethod, shippingAddr, billingAddr,
	)
	if err != nil {
		log.Error("failed to insert order", zap.Error(err))
		return err
	}

	// 3. Insert the line snapshots.
	for _, line := range o.Lines {
		line.OrderID = o.ID
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_lines (
				id, order_id, variant_id,
				title, size, color, sku,
				unit_price, quantity, line_total
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		`,
			line.ID, line.OrderID, line.VariantID,
			line.Title, line.Size, line.Color, line.SKU,
			line.UnitPrice, line.Quantity, line.LineTotal,
		)
		if err != nil {
			log.Error("failed to insert order line",
				zap.String("variant_id", line.VariantID),
				zap.Error(err),
			)
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit placement transaction", zap.Error(err))
		return err
	}

	committed = true
	log.Info("order placed",
		zap.String("order_id", o.ID.String()),
		zap.Int64("total", o.Total),
	)

	return nil
}

const orderColumns = `
	id, user_id, order_number,
	subtotal, shipping_cost, total, currency,
	status, payment_status, payment_method,
	COALESCE(payment_provider, ''), COALESCE(payment_reference, ''),
	shipping_method, shipping_address, billing_address,
	created_at, updated_at
`

func scanOrder(row interface{ Scan(...any) error }) (*Order, error) {
	var o Order
	var shippingAddr, billingAddr []byte

	err := row.Scan(
		&o.ID, &o.UserID, &o.Number,
		&o.Subtotal, &o.ShippingCost, &o.Total, &o.Currency,
		&o.Status, &o.PaymentStatus, &o.PaymentMethod,
		&o.PaymentProvider, &o.PaymentReference,
		&o.ShippingMethod, &shippingAddr, &billingAddr,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(shippingAddr, &o.ShippingAddress); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(billingAddr, &o.BillingAddress); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *repository) GetOrderByID(ctx context.Context, orderID uuid.UUID) (*Order, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE id = $1
	`, orderID)

	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	if o.Lines, err = r.fetchLines(ctx, o.ID); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *repository) GetOrderByNumber(ctx context.Context, number string) (*Order, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE order_number = $1
	`, number)

	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (r *repository) fetchLines(ctx context.Context, orderID uuid.UUID) ([]*OrderLine, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, variant_id, title, COALESCE(size, ''), COALESCE(color, ''),
		       sku, unit_price, quantity, line_total
		FROM order_lines
		WHERE order_id = $1
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []*OrderLine
	for rows.Next() {
		var l OrderLine
		if err := rows.Scan(
			&l.ID, &l.OrderID, &l.VariantID, &l.Title, &l.Size, &l.Color,
			&l.SKU, &l.UnitPrice, &l.Quantity, &l.LineTotal,
		); err != nil {
			return nil, err
		}
		lines = append(lines, &l)
	}
	return lines, rows.Err()
}

func (r *repository) FetchOrders(
	ctx context.Context,
	filter *OrderFilterInput,
	sort *OrderSortInput,
	limit, offset int32,
) ([]*Order, error) {

	userID, _ := utils.GetUserIDFromContext(ctx)
	isAdmin := utils.IsAdmin(ctx)

	log := logger.FromCtx(ctx).With(
		zap.String("method", "FetchOrders"),
		zap.Bool("is_admin", isAdmin),
		zap.Int32("limit", limit),
		zap.Int32("offset", offset),
	)

	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE 1=1
	`

	args := []any{}
	argIndex := 1

	if !isAdmin {
		query += fmt.Sprintf(" AND user_id = $%d", argIndex)
		args = append(args, userID)
		argIndex++
	}

	if filter != nil {
		if filter.Search != nil && *filter.Search != "" {
			query += fmt.Sprintf(
				" AND (id::text ILIKE $%d OR order_number ILIKE $%d)",
				argIndex, argIndex,
			)
			args = append(args, "%"+*filter.Search+"%")
			argIndex++
		}

		if filter.Status != nil && *filter.Status != "" {
			query += fmt.Sprintf(" AND status = $%d", argIndex)
			args = append(args, *filter.Status)
			argIndex++
		}

		if filter.DateFrom != nil {
			query += fmt.Sprintf(" AND created_at >= $%d", argIndex)
			args = append(args, *filter.DateFrom)
			argIndex++
		}

		if filter.DateTo != nil {
			query += fmt.Sprintf(" AND created_at <= $%d", argIndex)
			args = append(args, *filter.DateTo)
			argIndex++
		}
	}

	orderBy := "created_at DESC"
	if sort != nil {
		dir := strings.ToUpper(string(sort.Direction))
		if dir != "ASC" && dir != "DESC" {
			dir = "DESC"
		}

		switch sort.Field {
		case OrderSortFieldTotal:
			orderBy = "total " + dir
		case OrderSortFieldCreatedAt:
			orderBy = "created_at " + dir
		}
	}

	query += " ORDER BY " + orderBy
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query orders", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var orders []*Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			log.Error("failed to scan order row", zap.Error(err))
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	log.Debug("fetch orders success", zap.Int("count", len(orders)))
	return orders, nil
}

func (r *repository) UpdateStatus(ctx context.Context, orderID uuid.UUID, status Status) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2
	`, status, orderID)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *repository) RecordDispatch(ctx context.Context, orderID uuid.UUID, provider, reference string, status Status) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET payment_provider = $1, payment_reference = $2, status = $3, updated_at = NOW()
		WHERE id = $4
	`, provider, reference, status, orderID)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *repository) UpdatePaymentResult(
	ctx context.Context,
	number string,
	paymentStatus PaymentStatus,
	status *Status,
	providerRef string,
) error {

	query := `UPDATE orders SET payment_status = $1, payment_reference = $2, updated_at = NOW()`
	args := []any{paymentStatus, providerRef}
	if status != nil {
		query += `, status = $3 WHERE order_number = $4`
		args = append(args, *status, number)
	} else {
		query += ` WHERE order_number = $3`
		args = append(args, number)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update order payment status: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}
