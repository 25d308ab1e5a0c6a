package cart

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront-backend/internal/domain"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

const lineColumns = `id, user_id, product_id, quantity, unit_price, created_at, updated_at`

func (r *postgresRepo) LinesByUser(ctx context.Context, userID int64) ([]domain.CartLine, error) {
	const q = `
SELECT l.id, l.user_id, l.product_id, l.quantity, l.unit_price, l.created_at, l.updated_at,
       p.id, p.name, COALESCE(p.description, ''), p.price, p.stock, COALESCE(p.image_ref, ''),
       p.category_id, p.subcategory_id, p.active
FROM cart_lines l
JOIN products p ON p.id = l.product_id
WHERE l.user_id = $1
ORDER BY l.created_at DESC
`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.CartLine
	for rows.Next() {
		var l domain.CartLine
		var p domain.Product
		if err := rows.Scan(&l.ID, &l.UserID, &l.ProductID, &l.Quantity, &l.UnitPrice, &l.CreatedAt, &l.UpdatedAt,
			&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.ImageRef,
			&p.CategoryID, &p.SubcategoryID, &p.Active); err != nil {
			return nil, err
		}
		l.Product = &p
		result = append(result, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// AddLine locks the product row for the duration of the transaction so the
// stock check and the line write see a consistent stock value.
func (r *postgresRepo) AddLine(ctx context.Context, userID, productID int64, quantity int) (*domain.CartLine, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var p domain.Product
	err = tx.QueryRow(ctx, `
SELECT id, price, stock, active
FROM products
WHERE id = $1
FOR UPDATE
`, productID).Scan(&p.ID, &p.Price, &p.Stock, &p.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if !p.Active {
		return nil, domain.ErrProductInactive
	}

	var lineID int64
	var existingQty int
	err = tx.QueryRow(ctx, `
SELECT id, quantity
FROM cart_lines
WHERE user_id = $1 AND product_id = $2
`, userID, productID).Scan(&lineID, &existingQty)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	var out domain.CartLine
	if err == nil {
		// merge into the existing line, keeping its original price snapshot
		newQty := existingQty + quantity
		if !p.HasStock(newQty) {
			return nil, domain.ErrInsufficientStock
		}
		err = tx.QueryRow(ctx, `
UPDATE cart_lines
SET quantity = $2, updated_at = now()
WHERE id = $1
RETURNING `+lineColumns, lineID, newQty).
			Scan(&out.ID, &out.UserID, &out.ProductID, &out.Quantity, &out.UnitPrice, &out.CreatedAt, &out.UpdatedAt)
		if err != nil {
			return nil, err
		}
	} else {
		if !p.HasStock(quantity) {
			return nil, domain.ErrInsufficientStock
		}
		err = tx.QueryRow(ctx, `
INSERT INTO cart_lines (user_id, product_id, quantity, unit_price)
VALUES ($1, $2, $3, $4)
RETURNING `+lineColumns, userID, productID, quantity, p.Price).
			Scan(&out.ID, &out.UserID, &out.ProductID, &out.Quantity, &out.UnitPrice, &out.CreatedAt, &out.UpdatedAt)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *postgresRepo) UpdateQuantity(ctx context.Context, userID, lineID int64, quantity int) (*domain.CartLine, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var productID int64
	err = tx.QueryRow(ctx, `
SELECT product_id
FROM cart_lines
WHERE id = $1 AND user_id = $2
`, lineID, userID).Scan(&productID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	// validated against live stock, not the snapshot
	var stock int
	if err := tx.QueryRow(ctx, `SELECT stock FROM products WHERE id = $1 FOR UPDATE`, productID).Scan(&stock); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if stock < quantity {
		return nil, domain.ErrInsufficientStock
	}

	var out domain.CartLine
	err = tx.QueryRow(ctx, `
UPDATE cart_lines
SET quantity = $2, updated_at = now()
WHERE id = $1
RETURNING `+lineColumns, lineID, quantity).
		Scan(&out.ID, &out.UserID, &out.ProductID, &out.Quantity, &out.UnitPrice, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *postgresRepo) RemoveLine(ctx context.Context, userID, lineID int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM cart_lines WHERE id = $1 AND user_id = $2`, lineID, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) Clear(ctx context.Context, userID int64) (int64, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM cart_lines WHERE user_id = $1`, userID)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
