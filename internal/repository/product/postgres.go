package product

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
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

const productColumns = `id, name, COALESCE(description, ''), price, stock, COALESCE(image_ref, ''), category_id, subcategory_id, active, created_at, updated_at`

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.ImageRef,
		&p.CategoryID, &p.SubcategoryID, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *postgresRepo) List(ctx context.Context, f Filter) ([]domain.Product, error) {
	q := `
SELECT p.id, p.name, COALESCE(p.description, ''), p.price, p.stock, COALESCE(p.image_ref, ''),
       p.category_id, p.subcategory_id, p.active, p.created_at, p.updated_at,
       c.name, s.name
FROM products p
JOIN categories c ON c.id = p.category_id
JOIN subcategories s ON s.id = p.subcategory_id
`
	var args []interface{}
	var conds []string
	addCond := func(cond string, arg interface{}) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.CategoryID != nil {
		addCond("p.category_id = $%d", *f.CategoryID)
	}
	if f.SubcategoryID != nil {
		addCond("p.subcategory_id = $%d", *f.SubcategoryID)
	}
	if f.Active != nil {
		addCond("p.active = $%d", *f.Active)
	}
	if f.Search != "" {
		addCond("p.name ILIKE '%%' || $%d || '%%'", f.Search)
	}
	for i, cond := range conds {
		if i == 0 {
			q += "WHERE " + cond
		} else {
			q += " AND " + cond
		}
		q += "\n"
	}
	q += "ORDER BY p.name ASC\n"
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
		r.logger.Printf("product repo: list error=%v", err)
		return nil, err
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.ImageRef,
			&p.CategoryID, &p.SubcategoryID, &p.Active, &p.CreatedAt, &p.UpdatedAt,
			&p.CategoryName, &p.SubcategoryName); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	const q = `
SELECT p.id, p.name, COALESCE(p.description, ''), p.price, p.stock, COALESCE(p.image_ref, ''),
       p.category_id, p.subcategory_id, p.active, p.created_at, p.updated_at,
       c.name, s.name
FROM products p
JOIN categories c ON c.id = p.category_id
JOIN subcategories s ON s.id = p.subcategory_id
WHERE p.id = $1
`
	var p domain.Product
	err := r.pool.QueryRow(ctx, q, id).Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.ImageRef,
		&p.CategoryID, &p.SubcategoryID, &p.Active, &p.CreatedAt, &p.UpdatedAt,
		&p.CategoryName, &p.SubcategoryName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Create checks the hierarchy inside the insert transaction: category and
// subcategory must exist and be active, and the subcategory must belong to
// the given category.
func (r *postgresRepo) Create(ctx context.Context, p domain.Product) (*domain.Product, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := checkHierarchy(ctx, tx, p.CategoryID, p.SubcategoryID); err != nil {
		return nil, err
	}

	const q = `
INSERT INTO products (name, description, price, stock, image_ref, category_id, subcategory_id, active)
VALUES ($1, NULLIF($2, ''), $3, $4, NULLIF($5, ''), $6, $7, TRUE)
RETURNING ` + productColumns
	out, err := scanProduct(tx.QueryRow(ctx, q, p.Name, p.Description, p.Price, p.Stock, p.ImageRef, p.CategoryID, p.SubcategoryID))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	r.logger.Printf("product repo: created id=%d name=%q", out.ID, out.Name)
	return out, nil
}

func checkHierarchy(ctx context.Context, tx pgx.Tx, categoryID, subcategoryID int64) error {
	var catActive bool
	err := tx.QueryRow(ctx, `SELECT active FROM categories WHERE id = $1 FOR SHARE`, categoryID).Scan(&catActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}
	if !catActive {
		return domain.ErrParentInactive
	}

	var subActive bool
	var subCategoryID int64
	err = tx.QueryRow(ctx, `SELECT active, category_id FROM subcategories WHERE id = $1 FOR SHARE`, subcategoryID).Scan(&subActive, &subCategoryID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}
	if subCategoryID != categoryID {
		return domain.ErrHierarchyMismatch
	}
	if !subActive {
		return domain.ErrParentInactive
	}
	return nil
}

func (r *postgresRepo) Upsert(ctx context.Context, p domain.Product) (*domain.Product, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := checkHierarchy(ctx, tx, p.CategoryID, p.SubcategoryID); err != nil {
		return nil, err
	}

	const upd = `
UPDATE products
SET description = COALESCE(NULLIF($3, ''), description),
    price = $4,
    stock = $5,
    updated_at = now()
WHERE subcategory_id = $1 AND name = $2
RETURNING ` + productColumns
	out, err := scanProduct(tx.QueryRow(ctx, upd, p.SubcategoryID, p.Name, p.Description, p.Price, p.Stock))
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		const ins = `
INSERT INTO products (name, description, price, stock, image_ref, category_id, subcategory_id, active)
VALUES ($1, NULLIF($2, ''), $3, $4, NULLIF($5, ''), $6, $7, TRUE)
RETURNING ` + productColumns
		out, err = scanProduct(tx.QueryRow(ctx, ins, p.Name, p.Description, p.Price, p.Stock, p.ImageRef, p.CategoryID, p.SubcategoryID))
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return out, nil
}

// Update rewrites the product, including a possible move to another
// category/subcategory pair. The target hierarchy is validated inside the
// same transaction so a move cannot land under an inactive or mismatched
// parent.
func (r *postgresRepo) Update(ctx context.Context, p domain.Product) (*domain.Product, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := checkHierarchy(ctx, tx, p.CategoryID, p.SubcategoryID); err != nil {
		return nil, err
	}

	const q = `
UPDATE products
SET name = $2,
    description = NULLIF($3, ''),
    price = $4,
    image_ref = NULLIF($5, ''),
    category_id = $6,
    subcategory_id = $7,
    updated_at = now()
WHERE id = $1
RETURNING ` + productColumns
	out, err := scanProduct(tx.QueryRow(ctx, q, p.ID, p.Name, p.Description, p.Price, p.ImageRef, p.CategoryID, p.SubcategoryID))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *postgresRepo) SetActive(ctx context.Context, id int64, active bool) (*domain.Product, error) {
	const q = `
UPDATE products
SET active = $2, updated_at = now()
WHERE id = $1
RETURNING ` + productColumns
	return scanProduct(r.pool.QueryRow(ctx, q, id, active))
}

func (r *postgresRepo) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return domain.ErrHasDependents
		}
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) SetStock(ctx context.Context, id int64, stock int) (*domain.Product, error) {
	const q = `
UPDATE products
SET stock = $2, updated_at = now()
WHERE id = $1
RETURNING ` + productColumns
	return scanProduct(r.pool.QueryRow(ctx, q, id, stock))
}

func (r *postgresRepo) IncreaseStock(ctx context.Context, id int64, qty int) (*domain.Product, error) {
	const q = `
UPDATE products
SET stock = stock + $2, updated_at = now()
WHERE id = $1
RETURNING ` + productColumns
	out, err := scanProduct(r.pool.QueryRow(ctx, q, id, qty))
	if err != nil {
		return nil, err
	}
	r.logger.Printf("product repo: stock +%d id=%d now=%d", qty, id, out.Stock)
	return out, nil
}

// DecreaseStock takes the row lock and spends stock in a single conditional
// UPDATE, so two concurrent decrements can never overspend the same units.
func (r *postgresRepo) DecreaseStock(ctx context.Context, id int64, qty int) (*domain.Product, error) {
	const q = `
UPDATE products
SET stock = stock - $2, updated_at = now()
WHERE id = $1 AND stock >= $2
RETURNING ` + productColumns
	out, err := scanProduct(r.pool.QueryRow(ctx, q, id, qty))
	if err == nil {
		r.logger.Printf("product repo: stock -%d id=%d now=%d", qty, id, out.Stock)
		return out, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	// Either the product is gone or the guard rejected the decrement.
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, id).Scan(&exists); err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrInsufficientStock
	}
	return nil, domain.ErrNotFound
}
