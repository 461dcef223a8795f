package model

// CSVRow is one parsed line of a supplier CSV upload.
type CSVRow struct {
	Index         int
	SerialNumber  string
	ProductName   string
	PurchasePrice *float64
}

// Valid reports whether the row carries enough data to be matched against a
// warehouse product.
func (r CSVRow) Valid() bool {
	return r.SerialNumber != "" && r.ProductName != ""
}

// Product is a warehouse catalogue entry. Things holds the serial numbers
// registered for the product.
type Product struct {
	ID            string
	Name          string
	Things        []string
	PurchasePrice *float64
}

// HasThing reports whether the given serial number is registered on the
// product.
func (p Product) HasThing(serial string) bool {
	for _, t := range p.Things {
		if t == serial {
			return true
		}
	}
	return false
}

// Demand is a draft purchase demand created in the warehouse service.
type Demand struct {
	ID       string
	Products []Product
}

// ProductGroup is a warehouse product folder used to scope stock searches.
type ProductGroup struct {
	ID       string
	Name     string
	Archived bool
}

// DemandResult summarizes a CSV-to-demand run for display.
type DemandResult struct {
	Demand    Demand
	Processed []CSVRow
	Invalid   []CSVRow
	NotFound  []CSVRow
	Unmatched []CSVRow
}
