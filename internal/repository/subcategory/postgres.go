package subcategory

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront-backend/internal/domain"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

const subcategoryColumns = `id, category_id, name, COALESCE(description, ''), active, created_at, updated_at`

func (r *postgresRepo) List(ctx context.Context, f Filter) ([]domain.Subcategory, error) {
	q := `
SELECT s.id, s.category_id, s.name, COALESCE(s.description, ''), s.active, s.created_at, s.updated_at,
       c.name,
       (SELECT COUNT(*) FROM products p WHERE p.subcategory_id = s.id)
FROM subcategories s
JOIN categories c ON c.id = s.category_id
`
	var args []interface{}
	where := ""
	if f.CategoryID != nil {
		args = append(args, *f.CategoryID)
		where = `WHERE s.category_id = $1
`
	}
	if f.Active != nil {
		args = append(args, *f.Active)
		if where == "" {
			where = `WHERE s.active = $1
`
		} else {
			where += `AND s.active = $2
`
		}
	}
	q += where + `ORDER BY s.name ASC`

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Subcategory
	for rows.Next() {
		var s domain.Subcategory
		if err := rows.Scan(&s.ID, &s.CategoryID, &s.Name, &s.Description, &s.Active, &s.CreatedAt, &s.UpdatedAt, &s.CategoryName, &s.ProductCount); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id int64) (*domain.Subcategory, error) {
	const q = `
SELECT s.id, s.category_id, s.name, COALESCE(s.description, ''), s.active, s.created_at, s.updated_at,
       c.name,
       (SELECT COUNT(*) FROM products p WHERE p.subcategory_id = s.id)
FROM subcategories s
JOIN categories c ON c.id = s.category_id
WHERE s.id = $1
`
	var s domain.Subcategory
	err := r.pool.QueryRow(ctx, q, id).
		Scan(&s.ID, &s.CategoryID, &s.Name, &s.Description, &s.Active, &s.CreatedAt, &s.UpdatedAt, &s.CategoryName, &s.ProductCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// Create inserts the subcategory after checking the parent category inside the
// same transaction, so a concurrent category deactivation cannot slip a new
// subcategory under an inactive parent.
func (r *postgresRepo) Create(ctx context.Context, s domain.Subcategory) (*domain.Subcategory, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var parentActive bool
	err = tx.QueryRow(ctx, `SELECT active FROM categories WHERE id = $1 FOR SHARE`, s.CategoryID).Scan(&parentActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if !parentActive {
		return nil, domain.ErrParentInactive
	}

	const q = `
INSERT INTO subcategories (category_id, name, description, active)
VALUES ($1, $2, NULLIF($3, ''), TRUE)
RETURNING ` + subcategoryColumns
	var out domain.Subcategory
	err = tx.QueryRow(ctx, q, s.CategoryID, s.Name, s.Description).
		Scan(&out.ID, &out.CategoryID, &out.Name, &out.Description, &out.Active, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrDuplicateName
		}
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *postgresRepo) Update(ctx context.Context, s domain.Subcategory) (*domain.Subcategory, error) {
	const q = `
UPDATE subcategories
SET name = $2,
    description = NULLIF($3, ''),
    updated_at = now()
WHERE id = $1
RETURNING ` + subcategoryColumns
	var out domain.Subcategory
	err := r.pool.QueryRow(ctx, q, s.ID, s.Name, s.Description).
		Scan(&out.ID, &out.CategoryID, &out.Name, &out.Description, &out.Active, &out.CreatedAt, &out.UpdatedAt)
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

// SetActive deactivates or reactivates a subcategory. Deactivating cascades
// to the subcategory's products within one transaction.
func (r *postgresRepo) SetActive(ctx context.Context, id int64, active bool) (*domain.Subcategory, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	const q = `
UPDATE subcategories
SET active = $2, updated_at = now()
WHERE id = $1
RETURNING ` + subcategoryColumns
	var out domain.Subcategory
	err = tx.QueryRow(ctx, q, id, active).
		Scan(&out.ID, &out.CategoryID, &out.Name, &out.Description, &out.Active, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	if !active {
		if _, err := tx.Exec(ctx, `
UPDATE products SET active = FALSE, updated_at = now()
WHERE subcategory_id = $1 AND active
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
	cmd, err := r.pool.Exec(ctx, `DELETE FROM subcategories WHERE id = $1`, id)
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

func (r *postgresRepo) Ensure(ctx context.Context, categoryID int64, name, description string) (*domain.Subcategory, error) {
	const q = `
INSERT INTO subcategories (category_id, name, description, active)
VALUES ($1, $2, NULLIF($3, ''), TRUE)
ON CONFLICT (category_id, name) DO UPDATE
SET description = COALESCE(NULLIF(EXCLUDED.description, ''), subcategories.description),
    updated_at = now()
RETURNING ` + subcategoryColumns
	var out domain.Subcategory
	err := r.pool.QueryRow(ctx, q, categoryID, name, description).
		Scan(&out.ID, &out.CategoryID, &out.Name, &out.Description, &out.Active, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
