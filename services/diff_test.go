package services

import (
	"strings"
	"testing"
)

func TestFormatDiffValueScalars(t *testing.T) {
	tests := []struct {
		name  string
		field string
		value any
		want  string
	}{
		{"nil", "grandTotal", nil, "(empty)"},
		{"blank string", "notes", "   ", "(empty)"},
		{"plain string", "notes", "urgent delivery", "urgent delivery"},
		{"whole float", "grandTotal", 250000.0, "250000"},
		{"fractional float", "grandTotal", 1234.56, "1234.56"},
		{"int", "grandTotal", 42, "42"},
		{"bool", "approved", true, "true"},
		{"unknown field falls back to scalar", "someNewField", 3.5, "3.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatDiffValue(tt.field, tt.value); got != tt.want {
				t.Errorf("FormatDiffValue(%q, %v) = %q, want %q", tt.field, tt.value, got, tt.want)
			}
		})
	}
}

func TestFormatDiffValueDates(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"plain date", "2026-03-15", "15 Mar 2026"},
		{"rfc3339", "2026-03-15T10:30:00Z", "15 Mar 2026"},
		{"storage datetime", "2026-03-15 10:30:00.000Z", "15 Mar 2026"},
		{"epoch seconds", float64(1773532800), "15 Mar 2026"},
		{"epoch milliseconds", float64(1773532800000), "15 Mar 2026"},
		{"unparseable falls back to literal", "next tuesday", "next tuesday"},
		{"nil date", nil, "(empty)"},
		{"blank date", "", "(empty)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatDiffValue("offerDate", tt.value); got != tt.want {
				t.Errorf("FormatDiffValue(offerDate, %v) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

func TestFormatDiffValueSnakeCaseFieldNames(t *testing.T) {
	// storage names resolve to the same kind as the wire names
	if got := FormatDiffValue("offer_date", "2026-01-05"); got != "05 Jan 2026" {
		t.Errorf("offer_date = %q, want 05 Jan 2026", got)
	}
	if FieldKindOf("payment_terms") != KindPaymentTerms {
		t.Errorf("payment_terms must resolve to KindPaymentTerms")
	}
}

func TestFormatDiffValuePaymentTerms(t *testing.T) {
	value := []any{
		map[string]any{"milestoneDescription": "Deposit", "amountPercent": 30.0},
		map[string]any{"milestone_description": "On Delivery", "amount_percent": 50.0},
		map[string]any{"description": "Handover", "percent": 20.0},
	}

	got := FormatDiffValue("paymentTerms", value)
	want := "1. Deposit — 30%\n2. On Delivery — 50%\n3. Handover — 20%"
	if got != want {
		t.Errorf("paymentTerms:\ngot  %q\nwant %q", got, want)
	}
}

func TestFormatDiffValueScopeOfWork(t *testing.T) {
	value := []any{
		map[string]any{"description": "Supply of panels", "qty": 4.0, "unit": "nos", "remarks": "fire rated"},
		map[string]any{"description": "Cabling", "quantity": 120.0, "uom": "mtrs"},
	}

	got := FormatDiffValue("scopeOfWork", value)
	want := "1. Supply of panels — Qty: 4 nos — fire rated\n2. Cabling — Qty: 120 mtrs"
	if got != want {
		t.Errorf("scopeOfWork:\ngot  %q\nwant %q", got, want)
	}
}

func TestFormatDiffValueListFallbacks(t *testing.T) {
	tests := []struct {
		name  string
		field string
		value any
		want  string
	}{
		{"empty list", "paymentTerms", []any{}, "(empty)"},
		{"string items", "scopeOfWork", []any{"site survey", "installation"}, "1. site survey\n2. installation"},
		{"string slice", "deliveryNotes", []string{"by road"}, "1. by road"},
		{"malformed term degrades to generic line", "paymentTerms", []any{map[string]any{"note": "tbd"}}, "1. note: tbd"},
		{"scalar item", "paymentTerms", []any{99.0}, "1. 99"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatDiffValue(tt.field, tt.value); got != tt.want {
				t.Errorf("FormatDiffValue(%q, %v) = %q, want %q", tt.field, tt.value, got, tt.want)
			}
		})
	}
}

func TestFormatDiffValuePriceSchedule(t *testing.T) {
	value := map[string]any{
		"basePrice":       250000.0,
		"discountPercent": 5.0,
		"taxPercent":      18.0,
		"grandTotal":      280250.0,
	}

	got := FormatDiffValue("priceSchedule", value)
	for _, fragment := range []string{"Base Price: ₹2,50,000.00", "Discount: 5%", "Tax: 18%", "Grand Total: ₹2,80,250.00"} {
		if !strings.Contains(got, fragment) {
			t.Errorf("priceSchedule missing %q in %q", fragment, got)
		}
	}
}

func TestFormatDiffValuePriceSchedulePartial(t *testing.T) {
	// only present sub-fields are rendered
	got := FormatDiffValue("priceSchedule", map[string]any{"grandTotal": 9999.0})
	if got != "Grand Total: ₹9,999.00" {
		t.Errorf("partial priceSchedule = %q", got)
	}
}

func TestFormatDiffValueDeliveryTerms(t *testing.T) {
	value := map[string]any{
		"deliveryPeriod": "8 weeks from PO",
		"warrantyPeriod": "12 months",
		"installation":   "included",
	}

	got := FormatDiffValue("deliveryTerms", value)
	want := "Delivery: 8 weeks from PO\nWarranty: 12 months\nInstallation: included"
	if got != want {
		t.Errorf("deliveryTerms:\ngot  %q\nwant %q", got, want)
	}
}

func TestFormatDiffValueCompanyInfo(t *testing.T) {
	value := map[string]any{
		"name":    "Acme Traders",
		"address": "Plot 12, Industrial Area",
		"phone":   "04-1234567",
		"email":   "sales@acme.example",
		"trn":     "100123456700003",
	}

	got := FormatDiffValue("companyInfo", value)
	want := "Acme Traders\nPlot 12, Industrial Area\nPhone: 04-1234567\nEmail: sales@acme.example\nTax Reg: 100123456700003"
	if got != want {
		t.Errorf("companyInfo:\ngot  %q\nwant %q", got, want)
	}
}

func TestFormatDiffValueCompositeFallbacks(t *testing.T) {
	// a composite field carrying none of its known sub-fields falls back to
	// sorted key: value lines
	got := FormatDiffValue("deliveryTerms", map[string]any{"zeta": "z", "alpha": "a"})
	want := "alpha: a\nzeta: z"
	if got != want {
		t.Errorf("composite fallback = %q, want %q", got, want)
	}

	if got := FormatDiffValue("companyInfo", map[string]any{}); got != "(empty)" {
		t.Errorf("empty object = %q, want (empty)", got)
	}
}

func TestFormatDiffValueJSONStrings(t *testing.T) {
	tests := []struct {
		name  string
		field string
		value string
		want  string
	}{
		{
			"serialized payment terms",
			"paymentTerms",
			`[{"milestoneDescription":"Deposit","amountPercent":40}]`,
			"1. Deposit — 40%",
		},
		{
			"serialized object",
			"deliveryTerms",
			`{"deliveryPeriod":"6 weeks"}`,
			"Delivery: 6 weeks",
		},
		{
			"invalid json stays literal",
			"paymentTerms",
			"{not json",
			"{not json",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatDiffValue(tt.field, tt.value); got != tt.want {
				t.Errorf("FormatDiffValue(%q, %q) = %q, want %q", tt.field, tt.value, got, tt.want)
			}
		})
	}
}

func TestFormatDiffValueShapeMismatch(t *testing.T) {
	// a list where an object is expected and vice versa must still render
	if got := FormatDiffValue("priceSchedule", []any{"a", "b"}); got != "1. a\n2. b" {
		t.Errorf("list-for-object = %q", got)
	}
	if got := FormatDiffValue("paymentTerms", map[string]any{"k": "v"}); got != "k: v" {
		t.Errorf("object-for-list = %q", got)
	}
}

func TestFormatDiffValueGenericObject(t *testing.T) {
	got := FormatDiffValue("misc", map[string]any{
		"b": 2.0,
		"a": map[string]any{"nested": true},
	})
	// keys sorted, nested values formatted recursively through the scalar path
	if !strings.HasPrefix(got, "a: ") || !strings.Contains(got, "b: 2") {
		t.Errorf("generic object = %q", got)
	}
}
