package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"storefront-backend/internal/domain"
)

type CategoryEnsurer interface {
	Ensure(ctx context.Context, name, description string) (*domain.Category, error)
}

type SubcategoryEnsurer interface {
	Ensure(ctx context.Context, categoryID int64, name, description string) (*domain.Subcategory, error)
}

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

// CSVImporter reads catalog CSV exports and inserts/updates products,
// creating missing categories and subcategories along the way.
type CSVImporter struct {
	reader        *csv.Reader
	categories    CategoryEnsurer
	subcategories SubcategoryEnsurer
	products      ProductWriter
}

func NewCSVImporter(r io.Reader, categories CategoryEnsurer, subcategories SubcategoryEnsurer, products ProductWriter) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{
		reader:        csvr,
		categories:    categories,
		subcategories: subcategories,
		products:      products,
	}
}

type csvRow struct {
	Name        string
	Description string
	Price       string
	Stock       int
	Category    string
	Subcategory string
}

// Run parses CSV rows and upserts one product per row. Category and
// subcategory lookups are cached so repeated rows cost one query each.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)

	categoryIDs := map[string]int64{}
	subcategoryIDs := map[string]int64{}

	var imported int
	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}

		row := parseRow(record, index)
		if row == nil {
			continue
		}
		if row.Name == "" || row.Price == "" || row.Category == "" || row.Subcategory == "" {
			return imported, fmt.Errorf("invalid row (missing required fields) for name %q", row.Name)
		}

		price, err := decimal.NewFromString(row.Price)
		if err != nil {
			return imported, fmt.Errorf("invalid price %q for %q: %w", row.Price, row.Name, err)
		}

		categoryID, ok := categoryIDs[row.Category]
		if !ok {
			cat, err := i.categories.Ensure(ctx, row.Category, "")
			if err != nil {
				return imported, fmt.Errorf("ensure category %q: %w", row.Category, err)
			}
			categoryID = cat.ID
			categoryIDs[row.Category] = categoryID
		}

		subKey := row.Category + "/" + row.Subcategory
		subcategoryID, ok := subcategoryIDs[subKey]
		if !ok {
			sub, err := i.subcategories.Ensure(ctx, categoryID, row.Subcategory, "")
			if err != nil {
				return imported, fmt.Errorf("ensure subcategory %q: %w", row.Subcategory, err)
			}
			subcategoryID = sub.ID
			subcategoryIDs[subKey] = subcategoryID
		}

		_, err = i.products.Upsert(ctx, domain.Product{
			Name:          row.Name,
			Description:   row.Description,
			Price:         price,
			Stock:         row.Stock,
			CategoryID:    categoryID,
			SubcategoryID: subcategoryID,
		})
		if err != nil {
			return imported, fmt.Errorf("upsert product %q: %w", row.Name, err)
		}
		imported++
	}

	return imported, nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.TrimSpace(strings.ToLower(h))] = i
	}
	return idx
}

func parseRow(record []string, index map[string]int) *csvRow {
	name := pick(record, index, "name")
	if name == "" {
		return nil
	}

	stock := 0
	if raw := pick(record, index, "stock"); raw != "" {
		stock, _ = strconv.Atoi(raw)
	}

	return &csvRow{
		Name:        name,
		Description: pick(record, index, "description"),
		Price:       pick(record, index, "price"),
		Stock:       stock,
		Category:    pick(record, index, "category"),
		Subcategory: pick(record, index, "subcategory"),
	}
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
