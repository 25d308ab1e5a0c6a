package cart

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
	productrepo "storefront-backend/internal/repository/product"
	subcategoryrepo "storefront-backend/internal/repository/subcategory"
	userrepo "storefront-backend/internal/repository/user"
)

type fixture struct {
	carts     Repository
	products  productrepo.Repository
	userID    int64
	productID int64
}

func setupFixture(ctx context.Context, t *testing.T, stock int) *fixture {
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
	if _, err := pool.Exec(ctx, `TRUNCATE order_lines, orders, cart_lines, products, subcategories, categories, refresh_tokens, users RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}

	cat, err := categoryrepo.NewPostgres(pool).Create(ctx, domain.Category{Name: "Electronics"})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	sub, err := subcategoryrepo.NewPostgres(pool).Create(ctx, domain.Subcategory{CategoryID: cat.ID, Name: "Headphones"})
	if err != nil {
		t.Fatalf("create subcategory: %v", err)
	}
	products := productrepo.NewPostgres(pool, nil)
	p, err := products.Create(ctx, domain.Product{
		Name:          "Wireless Headphones",
		Price:         decimal.RequireFromString("89.99"),
		Stock:         stock,
		CategoryID:    cat.ID,
		SubcategoryID: sub.ID,
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	u, err := userrepo.NewPostgres(pool, nil).Create(ctx, domain.User{
		Name:         "Buyer",
		Email:        "buyer@example.com",
		PasswordHash: "irrelevant",
		Role:         domain.RoleClient,
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	return &fixture{
		carts:     NewPostgres(pool),
		products:  products,
		userID:    u.ID,
		productID: p.ID,
	}
}

func TestAddLine_MergesAndSnapshotsPrice_Integration(t *testing.T) {
	ctx := context.Background()
	fx := setupFixture(ctx, t, 10)

	first, err := fx.carts.AddLine(ctx, fx.userID, fx.productID, 2)
	if err != nil {
		t.Fatalf("add line: %v", err)
	}
	if !first.UnitPrice.Equal(decimal.RequireFromString("89.99")) {
		t.Fatalf("expected snapshot price 89.99, got %s", first.UnitPrice)
	}

	// price change after the snapshot must not leak into the line
	p, err := fx.products.GetByID(ctx, fx.productID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	p.Price = decimal.RequireFromString("120.00")
	if _, err := fx.products.Update(ctx, *p); err != nil {
		t.Fatalf("update price: %v", err)
	}

	merged, err := fx.carts.AddLine(ctx, fx.userID, fx.productID, 3)
	if err != nil {
		t.Fatalf("merge line: %v", err)
	}
	if merged.ID != first.ID {
		t.Fatalf("expected merge into existing line %d, got %d", first.ID, merged.ID)
	}
	if merged.Quantity != 5 {
		t.Fatalf("expected merged quantity 5, got %d", merged.Quantity)
	}
	if !merged.UnitPrice.Equal(decimal.RequireFromString("89.99")) {
		t.Fatalf("expected original snapshot kept, got %s", merged.UnitPrice)
	}

	lines, err := fx.carts.LinesByUser(ctx, fx.userID)
	if err != nil {
		t.Fatalf("lines: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("expected a single merged line, got %d", len(lines))
	}
}

func TestAddLine_StockGuard_Integration(t *testing.T) {
	ctx := context.Background()
	fx := setupFixture(ctx, t, 4)

	if _, err := fx.carts.AddLine(ctx, fx.userID, fx.productID, 5); !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}

	if _, err := fx.carts.AddLine(ctx, fx.userID, fx.productID, 3); err != nil {
		t.Fatalf("add line: %v", err)
	}
	// merged total of 6 would exceed the 4 in stock
	if _, err := fx.carts.AddLine(ctx, fx.userID, fx.productID, 3); !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock on merge, got %v", err)
	}
}

func TestAddLine_InactiveProduct_Integration(t *testing.T) {
	ctx := context.Background()
	fx := setupFixture(ctx, t, 10)

	if _, err := fx.products.SetActive(ctx, fx.productID, false); err != nil {
		t.Fatalf("deactivate product: %v", err)
	}
	if _, err := fx.carts.AddLine(ctx, fx.userID, fx.productID, 1); !errors.Is(err, domain.ErrProductInactive) {
		t.Fatalf("expected ErrProductInactive, got %v", err)
	}
}

func TestUpdateQuantityAndRemove_Integration(t *testing.T) {
	ctx := context.Background()
	fx := setupFixture(ctx, t, 5)

	line, err := fx.carts.AddLine(ctx, fx.userID, fx.productID, 1)
	if err != nil {
		t.Fatalf("add line: %v", err)
	}

	updated, err := fx.carts.UpdateQuantity(ctx, fx.userID, line.ID, 5)
	if err != nil {
		t.Fatalf("update quantity: %v", err)
	}
	if updated.Quantity != 5 {
		t.Fatalf("expected quantity 5, got %d", updated.Quantity)
	}

	if _, err := fx.carts.UpdateQuantity(ctx, fx.userID, line.ID, 6); !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}

	// another user cannot touch the line
	if _, err := fx.carts.UpdateQuantity(ctx, fx.userID+1, line.ID, 1); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign user, got %v", err)
	}

	if err := fx.carts.RemoveLine(ctx, fx.userID, line.ID); err != nil {
		t.Fatalf("remove line: %v", err)
	}
	if err := fx.carts.RemoveLine(ctx, fx.userID, line.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second remove, got %v", err)
	}
}
