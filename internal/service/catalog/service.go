package catalog

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"storefront-backend/internal/domain"
	categoryrepo "storefront-backend/internal/repository/category"
	productrepo "storefront-backend/internal/repository/product"
	subcategoryrepo "storefront-backend/internal/repository/subcategory"
)

// Service owns the catalog hierarchy: categories, subcategories and products,
// including the deactivation cascades and the inventory guard. Holding all
// three repositories in one service keeps the parent/child creation checks in
// one place instead of circular per-entity lookups.
type Service struct {
	categories    categoryRepo
	subcategories subcategoryRepo
	products      productRepo
	files         fileDeleter
}

type categoryRepo interface {
	List(ctx context.Context, f categoryrepo.Filter) ([]domain.Category, error)
	GetByID(ctx context.Context, id int64) (*domain.Category, error)
	Create(ctx context.Context, c domain.Category) (*domain.Category, error)
	Update(ctx context.Context, c domain.Category) (*domain.Category, error)
	SetActive(ctx context.Context, id int64, active bool) (*domain.Category, error)
	Delete(ctx context.Context, id int64) error
}

type subcategoryRepo interface {
	List(ctx context.Context, f subcategoryrepo.Filter) ([]domain.Subcategory, error)
	GetByID(ctx context.Context, id int64) (*domain.Subcategory, error)
	Create(ctx context.Context, s domain.Subcategory) (*domain.Subcategory, error)
	Update(ctx context.Context, s domain.Subcategory) (*domain.Subcategory, error)
	SetActive(ctx context.Context, id int64, active bool) (*domain.Subcategory, error)
	Delete(ctx context.Context, id int64) error
}

type productRepo interface {
	List(ctx context.Context, f productrepo.Filter) ([]domain.Product, error)
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	Create(ctx context.Context, p domain.Product) (*domain.Product, error)
	Update(ctx context.Context, p domain.Product) (*domain.Product, error)
	SetActive(ctx context.Context, id int64, active bool) (*domain.Product, error)
	Delete(ctx context.Context, id int64) error
	SetStock(ctx context.Context, id int64, stock int) (*domain.Product, error)
	IncreaseStock(ctx context.Context, id int64, qty int) (*domain.Product, error)
	DecreaseStock(ctx context.Context, id int64, qty int) (*domain.Product, error)
}

type fileDeleter interface {
	Delete(ref string) bool
}

func New(categories categoryrepo.Repository, subcategories subcategoryrepo.Repository, products productrepo.Repository, files fileDeleter) *Service {
	return &Service{
		categories:    categories,
		subcategories: subcategories,
		products:      products,
		files:         files,
	}
}

// CategoryInput carries category create/update payloads.
type CategoryInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// SubcategoryInput carries subcategory create/update payloads.
type SubcategoryInput struct {
	CategoryID  int64  `json:"categoryId"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ProductInput carries product create/update payloads. ImageRef is set by the
// handler after storing the upload, never by the client directly.
type ProductInput struct {
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	Stock         int             `json:"stock"`
	ImageRef      string          `json:"-"`
	CategoryID    int64           `json:"categoryId"`
	SubcategoryID int64           `json:"subcategoryId"`
}

func (s *Service) ListCategories(ctx context.Context, f categoryrepo.Filter) ([]domain.Category, error) {
	return s.categories.List(ctx, f)
}

func (s *Service) GetCategory(ctx context.Context, id int64) (*domain.Category, error) {
	return s.categories.GetByID(ctx, id)
}

func (s *Service) CreateCategory(ctx context.Context, in CategoryInput) (*domain.Category, error) {
	name := strings.TrimSpace(in.Name)
	if err := validateName("name", name, 2, 100); err != nil {
		return nil, err
	}
	return s.categories.Create(ctx, domain.Category{Name: name, Description: strings.TrimSpace(in.Description)})
}

func (s *Service) UpdateCategory(ctx context.Context, id int64, in CategoryInput) (*domain.Category, error) {
	name := strings.TrimSpace(in.Name)
	if err := validateName("name", name, 2, 100); err != nil {
		return nil, err
	}
	return s.categories.Update(ctx, domain.Category{ID: id, Name: name, Description: strings.TrimSpace(in.Description)})
}

// SetCategoryActive flips a category's flag. Deactivation cascades to every
// subcategory and product under the category; reactivation touches only the
// category itself.
func (s *Service) SetCategoryActive(ctx context.Context, id int64, active bool) (*domain.Category, error) {
	return s.categories.SetActive(ctx, id, active)
}

func (s *Service) DeleteCategory(ctx context.Context, id int64) error {
	return s.categories.Delete(ctx, id)
}

func (s *Service) ListSubcategories(ctx context.Context, f subcategoryrepo.Filter) ([]domain.Subcategory, error) {
	return s.subcategories.List(ctx, f)
}

func (s *Service) GetSubcategory(ctx context.Context, id int64) (*domain.Subcategory, error) {
	return s.subcategories.GetByID(ctx, id)
}

func (s *Service) CreateSubcategory(ctx context.Context, in SubcategoryInput) (*domain.Subcategory, error) {
	name := strings.TrimSpace(in.Name)
	if err := validateName("name", name, 2, 100); err != nil {
		return nil, err
	}
	if in.CategoryID <= 0 {
		return nil, domain.NewValidationError("categoryId", "must reference a category")
	}
	return s.subcategories.Create(ctx, domain.Subcategory{
		CategoryID:  in.CategoryID,
		Name:        name,
		Description: strings.TrimSpace(in.Description),
	})
}

func (s *Service) UpdateSubcategory(ctx context.Context, id int64, in SubcategoryInput) (*domain.Subcategory, error) {
	name := strings.TrimSpace(in.Name)
	if err := validateName("name", name, 2, 100); err != nil {
		return nil, err
	}
	return s.subcategories.Update(ctx, domain.Subcategory{ID: id, Name: name, Description: strings.TrimSpace(in.Description)})
}

// SetSubcategoryActive flips a subcategory's flag; deactivation cascades to
// its products only.
func (s *Service) SetSubcategoryActive(ctx context.Context, id int64, active bool) (*domain.Subcategory, error) {
	return s.subcategories.SetActive(ctx, id, active)
}

func (s *Service) DeleteSubcategory(ctx context.Context, id int64) error {
	return s.subcategories.Delete(ctx, id)
}

func (s *Service) ListProducts(ctx context.Context, f productrepo.Filter) ([]domain.Product, error) {
	return s.products.List(ctx, f)
}

func (s *Service) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	return s.products.GetByID(ctx, id)
}

func (s *Service) CreateProduct(ctx context.Context, in ProductInput) (*domain.Product, error) {
	p, err := productFromInput(in)
	if err != nil {
		return nil, err
	}
	return s.products.Create(ctx, *p)
}

func (s *Service) UpdateProduct(ctx context.Context, id int64, in ProductInput) (*domain.Product, error) {
	p, err := productFromInput(in)
	if err != nil {
		return nil, err
	}
	p.ID = id

	// A replaced image orphans the old file, but the row must update first:
	// deleting before a failed update would leave image_ref dangling.
	var replaced string
	if prev, err := s.products.GetByID(ctx, id); err == nil {
		if in.ImageRef == "" {
			p.ImageRef = prev.ImageRef
		} else if prev.ImageRef != "" && prev.ImageRef != in.ImageRef {
			replaced = prev.ImageRef
		}
	}
	out, err := s.products.Update(ctx, *p)
	if err != nil {
		return nil, err
	}
	if replaced != "" && s.files != nil {
		s.files.Delete(replaced)
	}
	return out, nil
}

func (s *Service) SetProductActive(ctx context.Context, id int64, active bool) (*domain.Product, error) {
	return s.products.SetActive(ctx, id, active)
}

// DeleteProduct removes the product row and, on success, its stored image.
func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}
	if p.ImageRef != "" && s.files != nil {
		s.files.Delete(p.ImageRef)
	}
	return nil
}

// HasStock reports whether the product has at least qty units. qty defaults
// to 1 when non-positive.
func (s *Service) HasStock(ctx context.Context, productID int64, qty int) (bool, error) {
	if qty <= 0 {
		qty = 1
	}
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return false, err
	}
	return p.HasStock(qty), nil
}

func (s *Service) SetStock(ctx context.Context, productID int64, stock int) (*domain.Product, error) {
	if stock < 0 {
		return nil, domain.NewValidationError("stock", "cannot be negative")
	}
	return s.products.SetStock(ctx, productID, stock)
}

func (s *Service) IncreaseStock(ctx context.Context, productID int64, qty int) (*domain.Product, error) {
	if qty <= 0 {
		return nil, domain.NewValidationError("quantity", "must be positive")
	}
	return s.products.IncreaseStock(ctx, productID, qty)
}

func (s *Service) DecreaseStock(ctx context.Context, productID int64, qty int) (*domain.Product, error) {
	if qty <= 0 {
		return nil, domain.NewValidationError("quantity", "must be positive")
	}
	return s.products.DecreaseStock(ctx, productID, qty)
}

func productFromInput(in ProductInput) (*domain.Product, error) {
	name := strings.TrimSpace(in.Name)
	if err := validateName("name", name, 3, 200); err != nil {
		return nil, err
	}
	if in.Price.IsNegative() {
		return nil, domain.NewValidationError("price", "cannot be negative")
	}
	if in.Stock < 0 {
		return nil, domain.NewValidationError("stock", "cannot be negative")
	}
	if in.CategoryID <= 0 {
		return nil, domain.NewValidationError("categoryId", "must reference a category")
	}
	if in.SubcategoryID <= 0 {
		return nil, domain.NewValidationError("subcategoryId", "must reference a subcategory")
	}
	if in.ImageRef != "" && !domain.ValidImageRef(in.ImageRef) {
		return nil, domain.NewValidationError("image", "must be a jpg, jpeg, png or gif file")
	}
	return &domain.Product{
		Name:          name,
		Description:   strings.TrimSpace(in.Description),
		Price:         in.Price,
		Stock:         in.Stock,
		ImageRef:      in.ImageRef,
		CategoryID:    in.CategoryID,
		SubcategoryID: in.SubcategoryID,
	}, nil
}

func validateName(field, name string, min, max int) error {
	if name == "" {
		return domain.NewValidationError(field, "cannot be empty")
	}
	// characters, not bytes: the schema limits use char_length
	if n := utf8.RuneCountInString(name); n < min || n > max {
		return domain.NewValidationError(field, "invalid length")
	}
	return nil
}
