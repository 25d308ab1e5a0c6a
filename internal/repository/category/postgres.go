package category

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront-backend/internal/domain"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

const categoryColumns = `id, name, COALESCE(description, ''), active, created_at, updated_at`

func (r *postgresRepo) List(ctx context.Context, f Filter) ([]domain.Category, error) {
	q := `
SELECT c.id, c.name, COALESCE(c.description, ''), c.active, c.created_at, c.updated_at,
       (SELECT COUNT(*) FROM subcategories s WHERE s.category_id = c.id),
       (SELECT COUNT(*) FROM products p WHERE p.category_id = c.id)
FROM categories c
`
	args := []interface{}{}
	if f.Active != nil {
		q += `WHERE c.active = $1
`
		args = append(args, *f.Active)
	}
	q += `ORDER BY c.name ASC`

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.Active, &c.CreatedAt, &c.UpdatedAt, &c.SubcategoryCount, &c.ProductCount); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	const q = `
SELECT c.id, c.name, COALESCE(c.description, ''), c.active, c.created_at, c.updated_at,
       (SELECT COUNT(*) FROM products p WHERE p.category_id = c.id)
FROM categories c
WHERE c.id = $1
`
	var c domain.Category
	err := r.pool.QueryRow(ctx, q, id).Scan(&c.ID, &c.Name, &c.Description, &c.Active, &c.CreatedAt, &c.UpdatedAt, &c.ProductCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	const subsQuery = `
SELECT id, category_id, name, COALESCE(description, ''), active, created_at, updated_at
FROM subcategories
WHERE category_id = $1
ORDER BY name ASC
`
	rows, err := r.pool.Query(ctx, subsQuery, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var s domain.Subcategory
		if err := rows.Scan(&s.ID, &s.CategoryID, &s.Name, &s.Description, &s.Active, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		c.Subcategories = append(c.Subcategories, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	c.SubcategoryCount = len(c.Subcategories)
	return &c, nil
}

func (r *postgresRepo) Create(ctx context.Context, c domain.Category) (*domain.Category, error) {
	const q = `
INSERT INTO categories (name, description, active)
VALUES ($1, NULLIF($2, ''), TRUE)
RETURNING ` + categoryColumns
	var out domain.Category
	err := r.pool.QueryRow(ctx, q, c.Name, c.Description).
		Scan(&out.ID, &out.Name, &out.Description, &out.Active, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrDuplicateName
		}
		return nil, err
	}
	return &out, nil
}

func (r *postgresRepo) Update(ctx context.Context, c domain.Category) (*domain.Category, error) {
	const q = `
UPDATE categories
SET name = $2,
    description = NULLIF($3, ''),
    updated_at = now()
WHERE id = $1
RETURNING ` + categoryColumns
	var out domain.Category
	err := r.pool.QueryRow(ctx, q, c.ID, c.Name, c.Description).
		Scan(&out.ID, &out.Name, &out.Description, &out.Active, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, domain.ErrDuplicateName
		}
		return nil, err
	}
	return &out, nil
}

// SetActive deactivates or reactivates a category. Deactivation and the
// cascade over subcategories and products commit as one transaction; any
// failure rolls the whole thing back, category row included.
func (r *postgresRepo) SetActive(ctx context.Context, id int64, active bool) (*domain.Category, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	const q = `
UPDATE categories
SET active = $2, updated_at = now()
WHERE id = $1
RETURNING ` + categoryColumns
	var out domain.Category
	err = tx.QueryRow(ctx, q, id, active).
		Scan(&out.ID, &out.Name, &out.Description, &out.Active, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	if !active {
		if _, err := tx.Exec(ctx, `
UPDATE subcategories SET active = FALSE, updated_at = now()
WHERE category_id = $1 AND active
`, id); err != nil {
			return nil, err
		}
		if _, err := tx.Exec(ctx, `
UPDATE products SET active = FALSE, updated_at = now()
WHERE category_id = $1 AND active
`, id); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *postgresRepo) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrHasDependents
		}
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) Ensure(ctx context.Context, name, description string) (*domain.Category, error) {
	const q = `
INSERT INTO categories (name, description, active)
VALUES ($1, NULLIF($2, ''), TRUE)
ON CONFLICT (name) DO UPDATE
SET description = COALESCE(NULLIF(EXCLUDED.description, ''), categories.description),
    updated_at = now()
RETURNING ` + categoryColumns
	var out domain.Category
	err := r.pool.QueryRow(ctx, q, name, description).
		Scan(&out.ID, &out.Name, &out.Description, &out.Active, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation
}
