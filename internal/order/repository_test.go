package order

import (
	"context"
	"testing"
	"time"

	"kickstep-be/internal/payment"
	"kickstep-be/internal/product"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func placementOrder(lines ...*OrderLine) *Order {
	var subtotal int64
	for _, l := range lines {
		l.ID = uuid.New()
		l.LineTotal = l.UnitPrice * int64(l.Quantity)
		subtotal += l.LineTotal
	}
	return &Order{
		ID:            uuid.New(),
		UserID:        1,
		Number:        "KS-20260823-101500-4821",
		Subtotal:      subtotal,
		ShippingCost:  399,
		Total:         subtotal + 399,
		Currency:      "CZK",
		Status:        StatusPending,
		PaymentStatus: PaymentUnpaid,
		PaymentMethod: payment.MethodCOD,
		Lines:         lines,
	}
}

func variantLockRows(stock int, active bool) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"stock", "active", "title", "size", "color", "sku"}).
		AddRow(stock, active, "Trail Runner", "42", "black", "TR-42-BLK")
}

func TestRepository_PlaceOrderTx(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		o := placementOrder(
			&OrderLine{VariantID: "v1", Quantity: 2, UnitPrice: 2490},
		)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT v.stock, v.active").
			WithArgs("v1").
			WillReturnRows(variantLockRows(5, true))
		mock.ExpectExec("UPDATE product_variants").
			WithArgs(2, "v1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO orders").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO order_lines").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err = repo.PlaceOrderTx(ctx, o)
		require.NoError(t, err)

		// Lock query enriched the snapshot.
		assert.Equal(t, "Trail Runner", o.Lines[0].Title)
		assert.Equal(t, "TR-42-BLK", o.Lines[0].SKU)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	// The second line fails the stock check: the whole transaction rolls
	// back, so the first line's decrement never lands.
	t.Run("SecondLineInsufficientRollsBackAll", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		o := placementOrder(
			&OrderLine{VariantID: "v1", Quantity: 1, UnitPrice: 2490},
			&OrderLine{VariantID: "v2", Quantity: 4, UnitPrice: 1890},
		)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT v.stock, v.active").
			WithArgs("v1").
			WillReturnRows(variantLockRows(5, true))
		mock.ExpectExec("UPDATE product_variants").
			WithArgs(1, "v1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("SELECT v.stock, v.active").
			WithArgs("v2").
			WillReturnRows(variantLockRows(2, true))
		mock.ExpectRollback()

		err = repo.PlaceOrderTx(ctx, o)

		var stockErr *product.InsufficientStockError
		require.ErrorAs(t, err, &stockErr)
		assert.Equal(t, "v2", stockErr.VariantID)
		assert.Equal(t, 2, stockErr.Available)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("InactiveVariant", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		o := placementOrder(&OrderLine{VariantID: "v1", Quantity: 1, UnitPrice: 2490})

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT v.stock, v.active").
			WithArgs("v1").
			WillReturnRows(variantLockRows(5, false))
		mock.ExpectRollback()

		err = repo.PlaceOrderTx(ctx, o)

		var inactiveErr *product.VariantInactiveError
		assert.ErrorAs(t, err, &inactiveErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("VariantGone", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		o := placementOrder(&OrderLine{VariantID: "ghost", Quantity: 1, UnitPrice: 100})

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT v.stock, v.active").
			WithArgs("ghost").
			WillReturnRows(sqlmock.NewRows([]string{"stock", "active", "title", "size", "color", "sku"}))
		mock.ExpectRollback()

		err = repo.PlaceOrderTx(ctx, o)
		assert.ErrorIs(t, err, product.ErrVariantNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	// Stock moved between the read and the write: the guarded UPDATE matches
	// no row and the placement aborts instead of going negative.
	t.Run("GuardedDecrementMisses", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		o := placementOrder(&OrderLine{VariantID: "v1", Quantity: 2, UnitPrice: 2490})

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT v.stock, v.active").
			WithArgs("v1").
			WillReturnRows(variantLockRows(2, true))
		mock.ExpectExec("UPDATE product_variants").
			WithArgs(2, "v1").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err = repo.PlaceOrderTx(ctx, o)

		var stockErr *product.InsufficientStockError
		assert.ErrorAs(t, err, &stockErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func orderRow(id uuid.UUID, number string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "user_id", "order_number",
		"subtotal", "shipping_cost", "total", "currency",
		"status", "payment_status", "payment_method",
		"payment_provider", "payment_reference",
		"shipping_method", "shipping_address", "billing_address",
		"created_at", "updated_at",
	}).AddRow(
		id, 1, number,
		1000, 399, 1399, "CZK",
		"CONFIRMED", "UNPAID", "bank",
		"BANK", number,
		"courier", []byte(`{"name":"Jana","city":"Praha"}`), []byte(`{}`),
		now, now,
	)
}

func TestRepository_GetOrderByID(t *testing.T) {
	ctx := context.Background()

	t.Run("Found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		id := uuid.New()
		mock.ExpectQuery("SELECT (.+) FROM orders").
			WithArgs(id).
			WillReturnRows(orderRow(id, "KS-1"))
		mock.ExpectQuery("SELECT (.+) FROM order_lines").
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "order_id", "variant_id", "title", "size", "color",
				"sku", "unit_price", "quantity", "line_total",
			}).AddRow(uuid.New(), id, "v1", "Trail Runner", "42", "black", "TR-42-BLK", 1000, 1, 1000))

		o, err := repo.GetOrderByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "KS-1", o.Number)
		assert.Equal(t, StatusConfirmed, o.Status)
		assert.Equal(t, "Praha", o.ShippingAddress.City)
		require.Len(t, o.Lines, 1)
		assert.Equal(t, "Trail Runner", o.Lines[0].Title)
	})

	t.Run("NotFound", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		id := uuid.New()
		mock.ExpectQuery("SELECT (.+) FROM orders").
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err = repo.GetOrderByID(ctx, id)
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})
}

func TestRepository_UpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("NoRowMeansNotFound", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		id := uuid.New()
		mock.ExpectExec("UPDATE orders SET status").
			WithArgs(StatusShipped, id).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err = repo.UpdateStatus(ctx, id, StatusShipped)
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})
}

func TestRepository_UpdatePaymentResult(t *testing.T) {
	ctx := context.Background()

	t.Run("PaidAndConfirmed", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		confirmed := StatusConfirmed

		mock.ExpectExec("UPDATE orders SET payment_status").
			WithArgs(PaymentPaid, "pg_123", confirmed, "KS-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err = repo.UpdatePaymentResult(ctx, "KS-1", PaymentPaid, &confirmed, "pg_123")
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("UnknownOrder", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		mock.ExpectExec("UPDATE orders SET payment_status").
			WithArgs(PaymentFailed, "pg_123", "KS-missing").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err = repo.UpdatePaymentResult(ctx, "KS-missing", PaymentFailed, nil, "pg_123")
		assert.ErrorIs(t, err, ErrOrderNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
