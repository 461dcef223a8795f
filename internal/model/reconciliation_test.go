package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func f(v float64) *float64 {
	return &v
}

func TestCompareFlag(t *testing.T) {
	tests := []struct {
		listing *PartnerListing
		name    string
		item    StockItem
		want    DiscrepancyFlag
	}{
		{
			name:    "nil listing is unmatched",
			item:    StockItem{Quantity: 5},
			listing: nil,
			want:    FlagUnmatched,
		},
		{
			name:    "equal quantities match",
			item:    StockItem{Quantity: 5},
			listing: &PartnerListing{AvailableQuantity: f(5)},
			want:    FlagMatch,
		},
		{
			name:    "warehouse has more than the partner shows",
			item:    StockItem{Quantity: 10},
			listing: &PartnerListing{AvailableQuantity: f(5)},
			want:    FlagSurplus,
		},
		{
			name:    "partner shows more than the warehouse has",
			item:    StockItem{Quantity: 3},
			listing: &PartnerListing{AvailableQuantity: f(8)},
			want:    FlagShortage,
		},
		{
			name:    "quantity wins over a conflicting price",
			item:    StockItem{Quantity: 5, UnitPrice: f(100)},
			listing: &PartnerListing{AvailableQuantity: f(5), Price: f(200)},
			want:    FlagMatch,
		},
		{
			name:    "price comparison without quantities",
			item:    StockItem{Quantity: 5, UnitPrice: f(100)},
			listing: &PartnerListing{Price: f(200)},
			want:    FlagShortage,
		},
		{
			name:    "higher warehouse price is a surplus",
			item:    StockItem{Quantity: 5, UnitPrice: f(300)},
			listing: &PartnerListing{Price: f(200)},
			want:    FlagSurplus,
		},
		{
			name:    "equal prices match",
			item:    StockItem{Quantity: 5, UnitPrice: f(200)},
			listing: &PartnerListing{Price: f(200)},
			want:    FlagMatch,
		},
		{
			name:    "no comparable data still matches on presence",
			item:    StockItem{Quantity: 5},
			listing: &PartnerListing{Title: "Bolt M6"},
			want:    FlagMatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CompareFlag(tt.item, tt.listing))
		})
	}
}

func TestStockItemHash(t *testing.T) {
	a := StockItem{ID: "1", Name: "Bolt M6", SerialNumber: "SN1"}
	b := StockItem{ID: "2", Name: "Bolt M6", SerialNumber: "SN1", Quantity: 99}
	c := StockItem{ID: "3", Name: "Bolt M6", SerialNumber: "SN2"}
	d := StockItem{ID: "4", Name: "  Bolt M6  ", SerialNumber: "SN1"}

	assert.Equal(t, a.Hash(), b.Hash(), "quantity must not affect the cache key")
	assert.NotEqual(t, a.Hash(), c.Hash())
	assert.Equal(t, a.Hash(), d.Hash(), "surrounding whitespace must not affect the cache key")
}
