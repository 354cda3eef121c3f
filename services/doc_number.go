package services

import (
	"fmt"
	"time"

	"github.com/pocketbase/pocketbase"
)

// GetFiscalYear returns the Indian fiscal year string for a given date.
// Indian fiscal year runs April to March.
// Jan 2026 → "25-26", May 2026 → "26-27"
func GetFiscalYear(t time.Time) string {
	year := t.Year()
	month := t.Month()

	var startYear int
	if month >= time.April {
		startYear = year
	} else {
		startYear = year - 1
	}
	endYear := startYear + 1

	return fmt.Sprintf("%02d-%02d", startYear%100, endYear%100)
}

// formatDocNumber constructs a document number from components.
// Uses "-" as separator so the number stays safe in URLs and filenames.
func formatDocNumber(docType, fiscalYear string, sequence int) string {
	return fmt.Sprintf("WBES-%s-%s-%03d", docType, fiscalYear, sequence)
}

// nextDocNumber creates the next document number for a collection whose
// numbers carry the given docType tag. The sequence is per document type per
// fiscal year, derived by counting existing records with a matching prefix.
func nextDocNumber(app *pocketbase.PocketBase, collection, numberField, docType string, now time.Time) string {
	fiscalYear := GetFiscalYear(now)
	prefix := fmt.Sprintf("WBES-%s-%s-", docType, fiscalYear)

	existing, err := app.FindRecordsByFilter(
		collection,
		numberField+" ~ {:prefix}",
		"",
		0,
		0,
		map[string]any{"prefix": prefix + "%"},
	)
	if err != nil {
		// collection missing or no records yet, start at 1
		existing = nil
	}

	return formatDocNumber(docType, fiscalYear, len(existing)+1)
}

// GenerateQuotationNumber creates the next quotation number.
// Format: WBES-QTN-{fiscal_year}-{sequence}
func GenerateQuotationNumber(app *pocketbase.PocketBase, now time.Time) string {
	return nextDocNumber(app, "quotations", "quotation_number", "QTN", now)
}

// GeneratePONumber creates the next purchase order number.
// Format: WBES-PO-{fiscal_year}-{sequence}
func GeneratePONumber(app *pocketbase.PocketBase, now time.Time) string {
	return nextDocNumber(app, "purchase_orders", "po_number", "PO", now)
}

// GenerateMRNumber creates the next material request number.
// Format: WBES-MR-{fiscal_year}-{sequence}
func GenerateMRNumber(app *pocketbase.PocketBase, now time.Time) string {
	return nextDocNumber(app, "material_requests", "request_number", "MR", now)
}

// GenerateGRNNumber creates the next goods receipt note number.
// Format: WBES-GRN-{fiscal_year}-{sequence}
func GenerateGRNNumber(app *pocketbase.PocketBase, now time.Time) string {
	return nextDocNumber(app, "purchase_orders", "grn_number", "GRN", now)
}
