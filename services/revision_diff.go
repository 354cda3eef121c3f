package services

import (
	"encoding/json"
	"reflect"
)

// ChangeRecord names one quotation field that differs between a revision and
// its parent, with the raw values on either side.
type ChangeRecord struct {
	Field string `json:"field"`
	From  any    `json:"from"`
	To    any    `json:"to"`
}

// DiffFields is the fixed, ordered set of quotation fields a revision can
// change. The comparison view lists changes in this order regardless of the
// order fields were edited in.
var DiffFields = []string{
	"offerDate",
	"enquiryDate",
	"companyInfo",
	"scopeOfWork",
	"priceSchedule",
	"paymentTerms",
	"deliveryTerms",
	"grandTotal",
}

// fieldLabels maps diffable field names to their display labels.
var fieldLabels = map[string]string{
	"offerDate":     "Offer Date",
	"enquiryDate":   "Enquiry Date",
	"companyInfo":   "Company Info",
	"scopeOfWork":   "Scope of Work",
	"priceSchedule": "Price Schedule",
	"paymentTerms":  "Payment Terms",
	"deliveryTerms": "Delivery & Warranty Terms",
	"grandTotal":    "Grand Total",
}

// FieldLabel returns the display label for a diffable field, or the field
// name itself for anything unknown.
func FieldLabel(field string) string {
	if label, ok := fieldLabels[field]; ok {
		return label
	}
	return field
}

// ComputeRevisionDiff compares a revision's content against its parent
// quotation and returns one ChangeRecord per differing field, in DiffFields
// order. Values are normalized through a JSON round trip first so that
// structurally equal values compare equal regardless of their Go
// representation (e.g. int vs float64).
func ComputeRevisionDiff(parent, revised map[string]any) []ChangeRecord {
	var changes []ChangeRecord
	for _, field := range DiffFields {
		from := normalizeJSON(parent[field])
		to := normalizeJSON(revised[field])
		if !reflect.DeepEqual(from, to) {
			changes = append(changes, ChangeRecord{Field: field, From: from, To: to})
		}
	}
	return changes
}

// normalizeJSON round-trips a value through JSON so comparisons see the wire
// representation. Blank strings normalize to nil: an unset date field and an
// absent one are the same thing to the diff.
func normalizeJSON(v any) any {
	if v == nil {
		return nil
	}
	if s, ok := v.(string); ok && s == "" {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return v
	}
	return out
}
