package product

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"storefront-backend/internal/domain"
	"storefront-backend/internal/migrate"
	categoryrepo "storefront-backend/internal/repository/category"
	subcategoryrepo "storefront-backend/internal/repository/subcategory"
)

type fixture struct {
	products Repository

	electronicsID int64
	headphonesID  int64
	homeID        int64
	mugsID        int64
}

func setupFixture(ctx context.Context, t *testing.T) (*fixture, categoryrepo.Repository, subcategoryrepo.Repository) {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(pool.Close)
	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("ping db: %v", err)
	}
	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	if _, err := pool.Exec(ctx, `TRUNCATE order_lines, orders, cart_lines, products, subcategories, categories RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}

	categories := categoryrepo.NewPostgres(pool)
	subcategories := subcategoryrepo.NewPostgres(pool)

	electronics, err := categories.Create(ctx, domain.Category{Name: "Electronics"})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	headphones, err := subcategories.Create(ctx, domain.Subcategory{CategoryID: electronics.ID, Name: "Headphones"})
	if err != nil {
		t.Fatalf("create subcategory: %v", err)
	}
	home, err := categories.Create(ctx, domain.Category{Name: "Home"})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	mugs, err := subcategories.Create(ctx, domain.Subcategory{CategoryID: home.ID, Name: "Mugs"})
	if err != nil {
		t.Fatalf("create subcategory: %v", err)
	}

	return &fixture{
		products:      NewPostgres(pool, nil),
		electronicsID: electronics.ID,
		headphonesID:  headphones.ID,
		homeID:        home.ID,
		mugsID:        mugs.ID,
	}, categories, subcategories
}

func (fx *fixture) createProduct(ctx context.Context, t *testing.T) *domain.Product {
	t.Helper()
	p, err := fx.products.Create(ctx, domain.Product{
		Name:          "Wireless Headphones",
		Price:         decimal.RequireFromString("89.99"),
		Stock:         5,
		CategoryID:    fx.electronicsID,
		SubcategoryID: fx.headphonesID,
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	return p
}

func TestUpdateMovesProduct_Integration(t *testing.T) {
	ctx := context.Background()
	fx, _, _ := setupFixture(ctx, t)
	p := fx.createProduct(ctx, t)

	p.CategoryID = fx.homeID
	p.SubcategoryID = fx.mugsID
	moved, err := fx.products.Update(ctx, *p)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if moved.CategoryID != fx.homeID || moved.SubcategoryID != fx.mugsID {
		t.Fatalf("expected product moved to %d/%d, got %d/%d",
			fx.homeID, fx.mugsID, moved.CategoryID, moved.SubcategoryID)
	}

	got, err := fx.products.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if got.SubcategoryID != fx.mugsID {
		t.Fatalf("move not persisted, subcategory %d", got.SubcategoryID)
	}
}

func TestUpdateRejectsMismatchedHierarchy_Integration(t *testing.T) {
	ctx := context.Background()
	fx, _, _ := setupFixture(ctx, t)
	p := fx.createProduct(ctx, t)

	// Mugs belongs to Home, not Electronics
	p.SubcategoryID = fx.mugsID
	if _, err := fx.products.Update(ctx, *p); !errors.Is(err, domain.ErrHierarchyMismatch) {
		t.Fatalf("expected ErrHierarchyMismatch, got %v", err)
	}

	got, err := fx.products.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if got.SubcategoryID != fx.headphonesID {
		t.Fatalf("rejected move must not persist, subcategory %d", got.SubcategoryID)
	}
}

func TestUpdateRejectsMoveUnderInactiveParent_Integration(t *testing.T) {
	ctx := context.Background()
	fx, categories, _ := setupFixture(ctx, t)
	p := fx.createProduct(ctx, t)

	if _, err := categories.SetActive(ctx, fx.homeID, false); err != nil {
		t.Fatalf("deactivate category: %v", err)
	}

	p.CategoryID = fx.homeID
	p.SubcategoryID = fx.mugsID
	if _, err := fx.products.Update(ctx, *p); !errors.Is(err, domain.ErrParentInactive) {
		t.Fatalf("expected ErrParentInactive, got %v", err)
	}
}
