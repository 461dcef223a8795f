package demand

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfsync/shelfsync/internal/model"
	"github.com/shelfsync/shelfsync/internal/warehouse"
)

func f(v float64) *float64 {
	return &v
}

// mockWarehouse is a canned Warehouse implementation for service tests.
type mockWarehouse struct {
	searchResult  warehouse.ProductSearchResult
	searchErr     error
	createErr     error
	created       []model.Product
	searchedNames []string
}

func (m *mockWarehouse) SearchProducts(_ context.Context, names []string) (warehouse.ProductSearchResult, error) {
	m.searchedNames = names
	return m.searchResult, m.searchErr
}

func (m *mockWarehouse) CreateDemand(_ context.Context, _ warehouse.DemandRefs, products []model.Product) (model.Demand, error) {
	if m.createErr != nil {
		return model.Demand{}, m.createErr
	}
	m.created = products
	return model.Demand{ID: "demand-1", Products: products}, nil
}

func testRefs() warehouse.DemandRefs {
	return warehouse.DemandRefs{
		OrganizationID: "org-1",
		CounterpartyID: "agent-1",
		StoreID:        "store-1",
	}
}

func TestServiceCreate(t *testing.T) {
	t.Run("matches rows by serial and creates a demand", func(t *testing.T) {
		wh := &mockWarehouse{
			searchResult: warehouse.ProductSearchResult{
				Products: []model.Product{
					{ID: "p1", Name: "iPhone 14", Things: []string{"SN1", "SN2"}, PurchasePrice: f(50000)},
				},
			},
		}

		rows := []model.CSVRow{
			{Index: 1, SerialNumber: "SN1", ProductName: "iPhone 14", PurchasePrice: f(55000)},
			{Index: 2, SerialNumber: "SN2", ProductName: "iPhone 14"},
		}

		result, err := NewService(wh, testRefs()).Create(context.Background(), rows)

		require.NoError(t, err)
		assert.Equal(t, "demand-1", result.Demand.ID)
		assert.Len(t, result.Processed, 2)
		assert.Empty(t, result.NotFound)
		assert.Empty(t, result.Unmatched)

		require.Len(t, wh.created, 2)
		assert.Equal(t, []string{"SN1"}, wh.created[0].Things, "position carries the row serial, not the catalogue list")
		require.NotNil(t, wh.created[0].PurchasePrice)
		assert.Equal(t, 55000.0, *wh.created[0].PurchasePrice, "row price wins over the catalogue price")
		require.NotNil(t, wh.created[1].PurchasePrice)
		assert.Equal(t, 50000.0, *wh.created[1].PurchasePrice, "catalogue price is the fallback")
	})

	t.Run("separates invalid, not-found and unmatched rows", func(t *testing.T) {
		wh := &mockWarehouse{
			searchResult: warehouse.ProductSearchResult{
				Products: []model.Product{
					{ID: "p1", Name: "iPhone 14", Things: []string{"SN1"}},
				},
				NotFound: []string{"Unknown Gadget"},
			},
		}

		rows := []model.CSVRow{
			{Index: 1, SerialNumber: "SN1", ProductName: "iPhone 14"},
			{Index: 2, SerialNumber: "", ProductName: "iPhone 14"},
			{Index: 3, SerialNumber: "SN9", ProductName: "Unknown Gadget"},
			{Index: 4, SerialNumber: "SN8", ProductName: "iPhone 14"},
		}

		result, err := NewService(wh, testRefs()).Create(context.Background(), rows)

		require.NoError(t, err)
		assert.Len(t, result.Processed, 1)
		assert.Len(t, result.Invalid, 1)
		assert.Len(t, result.NotFound, 1)
		assert.Len(t, result.Unmatched, 1)

		assert.Equal(t, []string{"iPhone 14", "Unknown Gadget", "iPhone 14"}, wh.searchedNames,
			"invalid rows must not be searched")
	})

	t.Run("all rows invalid fails without searching", func(t *testing.T) {
		wh := &mockWarehouse{}

		result, err := NewService(wh, testRefs()).Create(context.Background(), []model.CSVRow{
			{Index: 1, SerialNumber: "", ProductName: ""},
		})

		require.Error(t, err)
		assert.Len(t, result.Invalid, 1)
		assert.Nil(t, wh.searchedNames)
	})

	t.Run("search failure aborts", func(t *testing.T) {
		wh := &mockWarehouse{searchErr: errors.New("warehouse down")}

		_, err := NewService(wh, testRefs()).Create(context.Background(), []model.CSVRow{
			{Index: 1, SerialNumber: "SN1", ProductName: "iPhone 14"},
		})

		require.Error(t, err)
	})

	t.Run("nothing matched fails before demand creation", func(t *testing.T) {
		wh := &mockWarehouse{
			searchResult: warehouse.ProductSearchResult{NotFound: []string{"iPhone 14"}},
		}

		result, err := NewService(wh, testRefs()).Create(context.Background(), []model.CSVRow{
			{Index: 1, SerialNumber: "SN1", ProductName: "iPhone 14"},
		})

		require.Error(t, err)
		assert.Len(t, result.NotFound, 1)
		assert.Nil(t, wh.created)
	})

	t.Run("demand creation failure surfaces", func(t *testing.T) {
		wh := &mockWarehouse{
			searchResult: warehouse.ProductSearchResult{
				Products: []model.Product{{ID: "p1", Name: "iPhone 14", Things: []string{"SN1"}}},
			},
			createErr: errors.New("api error"),
		}

		_, err := NewService(wh, testRefs()).Create(context.Background(), []model.CSVRow{
			{Index: 1, SerialNumber: "SN1", ProductName: "iPhone 14"},
		})

		require.Error(t, err)
	})
}
