// Package demand turns supplier CSV files into draft purchase demands in
// the warehouse service.
package demand

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shelfsync/shelfsync/internal/csvio"
	"github.com/shelfsync/shelfsync/internal/model"
	"github.com/shelfsync/shelfsync/internal/warehouse"
)

// Warehouse is the subset of the warehouse client the demand workflow uses.
type Warehouse interface {
	SearchProducts(ctx context.Context, names []string) (warehouse.ProductSearchResult, error)
	CreateDemand(ctx context.Context, refs warehouse.DemandRefs, products []model.Product) (model.Demand, error)
}

// Service orchestrates CSV parsing, product matching and demand creation.
type Service struct {
	warehouse Warehouse
	refs      warehouse.DemandRefs
	logger    *slog.Logger
}

// NewService creates a demand service bound to the given warehouse entities.
func NewService(wh Warehouse, refs warehouse.DemandRefs) *Service {
	return &Service{
		warehouse: wh,
		refs:      refs,
		logger:    slog.Default().With("component", "demand"),
	}
}

// CreateFromFile processes a supplier CSV file and creates a draft demand
// from the rows that could be matched to warehouse products.
func (s *Service) CreateFromFile(ctx context.Context, path string) (model.DemandResult, error) {
	s.logger.Info("Start creating demand", "file", path)

	rows, err := csvio.ReadFile(path)
	if err != nil {
		return model.DemandResult{}, err
	}

	return s.Create(ctx, rows)
}

// Create matches CSV rows against warehouse products by serial number and
// creates a draft demand from the matches.
func (s *Service) Create(ctx context.Context, rows []model.CSVRow) (model.DemandResult, error) {
	valid, invalid := csvio.Filter(rows)
	if len(valid) == 0 {
		return model.DemandResult{Invalid: invalid}, fmt.Errorf("no valid rows found in CSV file")
	}

	names := make([]string, 0, len(valid))
	for _, row := range valid {
		names = append(names, row.ProductName)
	}

	search, err := s.warehouse.SearchProducts(ctx, names)
	if err != nil {
		return model.DemandResult{Invalid: invalid}, fmt.Errorf("product search failed: %w", err)
	}

	notFoundNames := make(map[string]bool, len(search.NotFound))
	for _, name := range search.NotFound {
		notFoundNames[name] = true
	}

	var products []model.Product
	var processed, notFound, unmatched []model.CSVRow

	for _, row := range valid {
		if notFoundNames[row.ProductName] {
			notFound = append(notFound, row)
			continue
		}

		product, ok := matchBySerial(row, search.Products)
		if !ok {
			s.logger.Warn("No product carries the row's serial number",
				"row_index", row.Index,
				"serial_number", row.SerialNumber)
			unmatched = append(unmatched, row)
			continue
		}

		// The demand position carries the row's serial and price, not the
		// catalogue defaults
		position := model.Product{
			ID:            product.ID,
			Name:          product.Name,
			Things:        []string{row.SerialNumber},
			PurchasePrice: row.PurchasePrice,
		}
		if position.PurchasePrice == nil {
			position.PurchasePrice = product.PurchasePrice
		}

		products = append(products, position)
		processed = append(processed, row)
	}

	if len(products) == 0 {
		return model.DemandResult{
			Invalid:   invalid,
			NotFound:  notFound,
			Unmatched: unmatched,
		}, fmt.Errorf("no CSV rows matched warehouse products")
	}

	created, err := s.warehouse.CreateDemand(ctx, s.refs, products)
	if err != nil {
		return model.DemandResult{}, fmt.Errorf("demand creation failed: %w", err)
	}

	s.logger.Info("Demand created",
		"demand_id", created.ID,
		"processed", len(processed),
		"invalid", len(invalid),
		"not_found", len(notFound),
		"unmatched", len(unmatched))

	return model.DemandResult{
		Demand:    created,
		Processed: processed,
		Invalid:   invalid,
		NotFound:  notFound,
		Unmatched: unmatched,
	}, nil
}

// matchBySerial finds the product that has the row's serial number
// registered among its things.
func matchBySerial(row model.CSVRow, products []model.Product) (model.Product, bool) {
	for _, product := range products {
		if product.HasThing(row.SerialNumber) {
			return product, true
		}
	}
	return model.Product{}, false
}
