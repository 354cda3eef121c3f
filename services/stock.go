// Package services provides the pure domain logic behind the WBES admin
// backend: dashboard aggregation, revision diffing and formatting, document
// numbering, stock arithmetic and document export.
package services

import "fmt"

// Stock status values reported for a material against its reorder level.
const (
	StockOut = "out_of_stock"
	StockLow = "low_stock"
	StockOK  = "in_stock"
)

// StockStatus classifies an on-hand quantity against a reorder level.
// A zero reorder level means the material is never flagged low.
func StockStatus(quantity, reorderLevel float64) string {
	if quantity <= 0 {
		return StockOut
	}
	if reorderLevel > 0 && quantity <= reorderLevel {
		return StockLow
	}
	return StockOK
}

// ApplyReceipt returns the new on-hand quantity after receiving qty units.
func ApplyReceipt(quantity, qty float64) float64 {
	if qty < 0 {
		return quantity
	}
	return quantity + qty
}

// ApplyIssue returns the new on-hand quantity after issuing qty units, or an
// error when the issue would drive stock negative.
func ApplyIssue(quantity, qty float64) (float64, error) {
	if qty < 0 {
		return quantity, fmt.Errorf("issue quantity must not be negative, got %v", qty)
	}
	if qty > quantity {
		return quantity, fmt.Errorf("insufficient stock: have %v, requested %v", quantity, qty)
	}
	return quantity - qty, nil
}
