package order

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront-backend/internal/domain"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

const orderColumns = `id, user_id, total, status, shipping_address, phone, COALESCE(notes, ''), paid_at, shipped_at, delivered_at, created_at, updated_at`

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	err := row.Scan(&o.ID, &o.UserID, &o.Total, &o.Status, &o.ShippingAddress, &o.Phone, &o.Notes,
		&o.PaidAt, &o.ShippedAt, &o.DeliveredAt, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// CreateFromCart is the checkout transaction. Product rows are locked in
// ascending id order so two concurrent checkouts over the same products
// cannot deadlock, and every line is re-validated against the locked state
// before any stock is spent.
func (r *postgresRepo) CreateFromCart(ctx context.Context, userID int64, in CheckoutInput) (*domain.Order, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	lines, err := cartLines(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, domain.ErrEmptyCart
	}

	sort.Slice(lines, func(i, j int) bool { return lines[i].ProductID < lines[j].ProductID })

	for i := range lines {
		var active bool
		var stock int
		var name string
		err := tx.QueryRow(ctx, `
SELECT name, stock, active
FROM products
WHERE id = $1
FOR UPDATE
`, lines[i].ProductID).Scan(&name, &stock, &active)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, domain.ErrNotFound
			}
			return nil, err
		}
		if !active {
			return nil, domain.ErrProductInactive
		}
		if stock < lines[i].Quantity {
			return nil, domain.ErrInsufficientStock
		}
	}

	total := domain.CartTotal(lines)

	order, err := scanOrder(tx.QueryRow(ctx, `
INSERT INTO orders (user_id, total, status, shipping_address, phone, notes)
VALUES ($1, $2, 'pending', $3, $4, NULLIF($5, ''))
RETURNING `+orderColumns, userID, total, in.ShippingAddress, in.Phone, in.Notes))
	if err != nil {
		return nil, err
	}

	for _, l := range lines {
		var ol domain.OrderLine
		err := tx.QueryRow(ctx, `
INSERT INTO order_lines (order_id, product_id, quantity, unit_price, subtotal)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, order_id, product_id, quantity, unit_price, subtotal, created_at
`, order.ID, l.ProductID, l.Quantity, l.UnitPrice, l.Subtotal()).
			Scan(&ol.ID, &ol.OrderID, &ol.ProductID, &ol.Quantity, &ol.UnitPrice, &ol.Subtotal, &ol.CreatedAt)
		if err != nil {
			return nil, err
		}
		order.Lines = append(order.Lines, ol)

		cmd, err := tx.Exec(ctx, `
UPDATE products SET stock = stock - $2, updated_at = now()
WHERE id = $1 AND stock >= $2
`, l.ProductID, l.Quantity)
		if err != nil {
			return nil, err
		}
		if cmd.RowsAffected() == 0 {
			// rows are locked above, so this can only mean insufficient stock
			return nil, domain.ErrInsufficientStock
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM cart_lines WHERE user_id = $1`, userID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	r.logger.Printf("order repo: created order id=%d user=%d lines=%d total=%s", order.ID, userID, len(order.Lines), order.Total)
	return order, nil
}

func cartLines(ctx context.Context, tx pgx.Tx, userID int64) ([]domain.CartLine, error) {
	rows, err := tx.Query(ctx, `
SELECT id, user_id, product_id, quantity, unit_price, created_at, updated_at
FROM cart_lines
WHERE user_id = $1
`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []domain.CartLine
	for rows.Next() {
		var l domain.CartLine
		if err := rows.Scan(&l.ID, &l.UserID, &l.ProductID, &l.Quantity, &l.UnitPrice, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (r *postgresRepo) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	order, err := scanOrder(r.pool.QueryRow(ctx, `
SELECT `+orderColumns+`
FROM orders
WHERE id = $1
`, id))
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
SELECT l.id, l.order_id, l.product_id, p.name, l.quantity, l.unit_price, l.subtotal, l.created_at
FROM order_lines l
JOIN products p ON p.id = l.product_id
WHERE l.order_id = $1
ORDER BY l.id ASC
`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var l domain.OrderLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.ProductName, &l.Quantity, &l.UnitPrice, &l.Subtotal, &l.CreatedAt); err != nil {
			return nil, err
		}
		order.Lines = append(order.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *postgresRepo) List(ctx context.Context, f Filter) ([]domain.Order, error) {
	q := `
SELECT ` + orderColumns + `
FROM orders
`
	var args []interface{}
	var conds []string
	if f.UserID != nil {
		args = append(args, *f.UserID)
		conds = append(conds, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if f.Status != nil {
		args = append(args, *f.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	for i, cond := range conds {
		if i == 0 {
			q += "WHERE " + cond
		} else {
			q += " AND " + cond
		}
		q += "\n"
	}
	q += "ORDER BY created_at DESC\n"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		q += fmt.Sprintf("LIMIT $%d\n", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		q += fmt.Sprintf("OFFSET $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Order
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.Total, &o.Status, &o.ShippingAddress, &o.Phone, &o.Notes,
			&o.PaidAt, &o.ShippedAt, &o.DeliveredAt, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, o)
	}
	return result, rows.Err()
}

// UpdateStatus locks the order row, validates the transition against the
// current status, and stamps the corresponding timestamp only if it was
// never set.
func (r *postgresRepo) UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) (*domain.Order, error) {
	if status == domain.OrderCancelled {
		return nil, domain.ErrInvalidState
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var current domain.OrderStatus
	err = tx.QueryRow(ctx, `SELECT status FROM orders WHERE id = $1 FOR UPDATE`, id).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if !domain.CanTransition(current, status) {
		return nil, domain.ErrInvalidState
	}

	var stampCol string
	switch status {
	case domain.OrderPaid:
		stampCol = "paid_at"
	case domain.OrderShipped:
		stampCol = "shipped_at"
	case domain.OrderDelivered:
		stampCol = "delivered_at"
	}

	q := `
UPDATE orders
SET status = $2, ` + stampCol + ` = COALESCE(` + stampCol + `, now()), updated_at = now()
WHERE id = $1
RETURNING ` + orderColumns
	out, err := scanOrder(tx.QueryRow(ctx, q, id, status))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	r.logger.Printf("order repo: order id=%d %s -> %s", id, current, status)
	return out, nil
}

// Cancel returns every line's quantity to product stock and marks the order
// cancelled in one transaction.
func (r *postgresRepo) Cancel(ctx context.Context, id int64) (*domain.Order, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var current domain.OrderStatus
	err = tx.QueryRow(ctx, `SELECT status FROM orders WHERE id = $1 FOR UPDATE`, id).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if !domain.Cancellable(current) {
		return nil, domain.ErrNotCancellable
	}

	if _, err := tx.Exec(ctx, `
UPDATE products p
SET stock = p.stock + l.quantity, updated_at = now()
FROM order_lines l
WHERE l.order_id = $1 AND l.product_id = p.id
`, id); err != nil {
		return nil, err
	}

	out, err := scanOrder(tx.QueryRow(ctx, `
UPDATE orders
SET status = 'cancelled', updated_at = now()
WHERE id = $1
RETURNING `+orderColumns, id))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	r.logger.Printf("order repo: cancelled order id=%d (was %s)", id, current)
	return out, nil
}

func (r *postgresRepo) Delete(ctx context.Context, id int64) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var current domain.OrderStatus
	err = tx.QueryRow(ctx, `SELECT status FROM orders WHERE id = $1 FOR UPDATE`, id).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}
	if !domain.Deletable(current) {
		return domain.ErrDeleteNotAllowed
	}

	if _, err := tx.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
