package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

type productSeed struct {
	Name        string
	Description string
	Price       string
	Stock       int
}

type subcategorySeed struct {
	Name     string
	Products []productSeed
}

type categorySeed struct {
	Name          string
	Description   string
	Subcategories []subcategorySeed
}

// Apply inserts basic seed data for manual testing. It is idempotent via
// ON CONFLICT and name-scoped upserts.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	if err := ensureUser(ctx, pool, "Admin", "admin@storefront.local", "admin123", "admin"); err != nil {
		return fmt.Errorf("ensure admin user: %w", err)
	}
	if err := ensureUser(ctx, pool, "Demo Client", "client@storefront.local", "client123", "client"); err != nil {
		return fmt.Errorf("ensure client user: %w", err)
	}

	catalog := []categorySeed{
		{
			Name:        "Electronics",
			Description: "Phones, audio and accessories",
			Subcategories: []subcategorySeed{
				{
					Name: "Headphones",
					Products: []productSeed{
						{Name: "Wireless Over-Ear Headphones", Description: "Closed-back, 30h battery", Price: "89.99", Stock: 25},
						{Name: "In-Ear Monitors", Description: "Dual driver wired IEMs", Price: "39.50", Stock: 60},
					},
				},
				{
					Name: "Chargers",
					Products: []productSeed{
						{Name: "65W USB-C Charger", Description: "GaN dual-port wall charger", Price: "29.00", Stock: 40},
					},
				},
			},
		},
		{
			Name:        "Home",
			Description: "Kitchen and living",
			Subcategories: []subcategorySeed{
				{
					Name: "Mugs",
					Products: []productSeed{
						{Name: "Stoneware Mug 350ml", Description: "Dishwasher safe", Price: "12.99", Stock: 80},
					},
				},
			},
		},
	}

	for _, c := range catalog {
		categoryID, err := ensureCategory(ctx, pool, c.Name, c.Description)
		if err != nil {
			return fmt.Errorf("ensure category %s: %w", c.Name, err)
		}
		for _, s := range c.Subcategories {
			subcategoryID, err := ensureSubcategory(ctx, pool, categoryID, s.Name)
			if err != nil {
				return fmt.Errorf("ensure subcategory %s: %w", s.Name, err)
			}
			for _, p := range s.Products {
				if err := upsertProduct(ctx, pool, categoryID, subcategoryID, p); err != nil {
					return fmt.Errorf("upsert product %s: %w", p.Name, err)
				}
			}
		}
	}

	return nil
}

func ensureUser(ctx context.Context, pool *pgxpool.Pool, name, email, password, role string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO users (name, email, password_hash, role)
VALUES ($1, $2, $3, $4)
ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name, role = EXCLUDED.role
`
	_, err = pool.Exec(ctx, q, name, email, string(hashed), role)
	return err
}

func ensureCategory(ctx context.Context, pool *pgxpool.Pool, name, description string) (int64, error) {
	const q = `
INSERT INTO categories (name, description)
VALUES ($1, NULLIF($2, ''))
ON CONFLICT (name) DO UPDATE SET description = EXCLUDED.description
RETURNING id
`
	var id int64
	if err := pool.QueryRow(ctx, q, name, description).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func ensureSubcategory(ctx context.Context, pool *pgxpool.Pool, categoryID int64, name string) (int64, error) {
	const q = `
INSERT INTO subcategories (category_id, name)
VALUES ($1, $2)
ON CONFLICT (category_id, name) DO UPDATE SET updated_at = now()
RETURNING id
`
	var id int64
	if err := pool.QueryRow(ctx, q, categoryID, name).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func upsertProduct(ctx context.Context, pool *pgxpool.Pool, categoryID, subcategoryID int64, p productSeed) error {
	const upd = `
UPDATE products
SET description = $3, price = $4, stock = $5, updated_at = now()
WHERE subcategory_id = $1 AND name = $2
`
	cmd, err := pool.Exec(ctx, upd, subcategoryID, p.Name, p.Description, p.Price, p.Stock)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() > 0 {
		return nil
	}
	const ins = `
INSERT INTO products (name, description, price, stock, category_id, subcategory_id)
VALUES ($1, $2, $3, $4, $5, $6)
`
	_, err = pool.Exec(ctx, ins, p.Name, p.Description, p.Price, p.Stock, categoryID, subcategoryID)
	return err
}
