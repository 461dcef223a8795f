package model

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// StockItem represents a single warehouse inventory position. Items are
// immutable for the duration of one reconciliation run.
type StockItem struct {
	ID           string
	Name         string
	SerialNumber string
	Quantity     float64
	UnitPrice    *float64
}

// Hash creates a stable key for prediction caching. Two items with the same
// name and serial number share predicted queries.
func (s *StockItem) Hash() string {
	data := fmt.Sprintf("%s:%s", strings.TrimSpace(s.Name), s.SerialNumber)
	sum := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", sum)
}
