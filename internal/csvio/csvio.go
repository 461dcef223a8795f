// Package csvio reads supplier CSV uploads into demand rows.
package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/shelfsync/shelfsync/internal/common"
	"github.com/shelfsync/shelfsync/internal/model"
)

// Required column headers.
const (
	headerSerialNumber = "Serial Number"
	headerProductName  = "Product Name"
	headerSalesPrice   = "Sales Price"
)

// ReadFile parses a supplier CSV file into rows.
func ReadFile(path string) ([]model.CSVRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return Read(f)
}

// Read parses supplier CSV data. The first record is the header and must
// contain the serial number and product name columns; the price column is
// optional per row.
func Read(r io.Reader) ([]model.CSVRow, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read CSV header: %v", common.ErrParseFailure, err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}

	for _, required := range []string{headerSerialNumber, headerProductName} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("%w: CSV must contain a %q column", common.ErrParseFailure, required)
		}
	}

	var rows []model.CSVRow
	for idx := 1; ; idx++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read CSV row %d: %v", common.ErrParseFailure, idx, err)
		}

		row := model.CSVRow{
			Index:        idx,
			SerialNumber: strings.TrimSpace(field(record, columns, headerSerialNumber)),
			ProductName:  strings.TrimSpace(field(record, columns, headerProductName)),
		}

		if raw := strings.TrimSpace(field(record, columns, headerSalesPrice)); raw != "" {
			if price, parseErr := strconv.ParseFloat(raw, 64); parseErr == nil {
				row.PurchasePrice = &price
			}
		}

		rows = append(rows, row)
	}

	return rows, nil
}

// Filter splits rows into those usable for demand creation and those with
// missing data.
func Filter(rows []model.CSVRow) (valid, invalid []model.CSVRow) {
	for _, row := range rows {
		if row.Valid() {
			valid = append(valid, row)
		} else {
			invalid = append(invalid, row)
		}
	}
	return valid, invalid
}

func field(record []string, columns map[string]int, name string) string {
	idx, ok := columns[name]
	if !ok || idx >= len(record) {
		return ""
	}
	return record[idx]
}
