package services

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// emptyPlaceholder is what the comparison view shows for absent values.
const emptyPlaceholder = "(empty)"

// FieldKind names the shape a change-record value is expected to have.
// Dispatching on an explicit kind instead of ad hoc runtime checks keeps the
// never-fails contract of FormatDiffValue easy to audit: every kind has a
// rendering for every runtime shape, falling back to the generic one on a
// mismatch.
type FieldKind int

const (
	KindScalar FieldKind = iota
	KindDate
	KindPaymentTerms
	KindScopeOfWork
	KindPriceSchedule
	KindDeliveryTerms
	KindCompanyInfo
)

// fieldKinds maps change-record field names to their expected shape. Both
// the camelCase names used on the wire and the snake_case storage names
// resolve to the same kind.
var fieldKinds = map[string]FieldKind{
	"offerDate":      KindDate,
	"offer_date":     KindDate,
	"enquiryDate":    KindDate,
	"enquiry_date":   KindDate,
	"paymentTerms":   KindPaymentTerms,
	"payment_terms":  KindPaymentTerms,
	"scopeOfWork":    KindScopeOfWork,
	"scope_of_work":  KindScopeOfWork,
	"priceSchedule":  KindPriceSchedule,
	"price_schedule": KindPriceSchedule,
	"deliveryTerms":  KindDeliveryTerms,
	"delivery_terms": KindDeliveryTerms,
	"companyInfo":    KindCompanyInfo,
	"company_info":   KindCompanyInfo,
}

// FieldKindOf resolves the expected shape for a change-record field name.
// Unknown fields are scalars.
func FieldKindOf(field string) FieldKind {
	if kind, ok := fieldKinds[field]; ok {
		return kind
	}
	return KindScalar
}

// FormatDiffValue renders one side of a change record into readable text for
// the revision comparison view. It is total: whatever shape v turns out to
// have at runtime, the result is a best-effort string, never a panic or an
// error. Absent and blank values render "(empty)".
func FormatDiffValue(field string, v any) string {
	return formatValue(FieldKindOf(field), v)
}

func formatValue(kind FieldKind, v any) string {
	if v == nil {
		return emptyPlaceholder
	}

	if kind == KindDate {
		if s, ok := formatDateValue(v); ok {
			return s
		}
		// not parseable as a date, fall through to generic handling
	}

	switch val := v.(type) {
	case []any:
		return formatList(kind, val)
	case []string:
		items := make([]any, len(val))
		for i, s := range val {
			items[i] = s
		}
		return formatList(kind, items)
	case map[string]any:
		return formatObject(kind, val)
	case string:
		return formatString(kind, val)
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return formatNumber(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case json.Number:
		return val.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// formatDateValue accepts the date forms the backend emits: plain
// YYYY-MM-DD, ISO datetimes with or without zone, and epoch numbers
// (seconds, or milliseconds when implausibly large for seconds).
func formatDateValue(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		s := strings.TrimSpace(val)
		layouts := []string{
			"2006-01-02",
			time.RFC3339,
			"2006-01-02 15:04:05.000Z",
			"2006-01-02T15:04:05",
			"2006-01-02 15:04:05",
		}
		for _, layout := range layouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.Format("02 Jan 2006"), true
			}
		}
		return "", false
	case float64:
		return formatEpoch(int64(val)), true
	case int:
		return formatEpoch(int64(val)), true
	case int64:
		return formatEpoch(val), true
	default:
		return "", false
	}
}

func formatEpoch(n int64) string {
	// values past the year ~33658 as seconds are millisecond epochs
	if n > 1e12 {
		n = n / 1000
	}
	return time.Unix(n, 0).UTC().Format("02 Jan 2006")
}

// formatList renders a sequence as a newline-joined, 1-indexed list.
// Payment-terms and scope-of-work items get their specialized line forms;
// everything else gets the generic rendering.
func formatList(kind FieldKind, items []any) string {
	if len(items) == 0 {
		return emptyPlaceholder
	}

	lines := make([]string, 0, len(items))
	for i, item := range items {
		index := i + 1
		switch kind {
		case KindPaymentTerms:
			lines = append(lines, paymentTermLine(index, item))
		case KindScopeOfWork:
			lines = append(lines, scopeOfWorkLine(index, item))
		default:
			lines = append(lines, genericLine(index, item))
		}
	}
	return strings.Join(lines, "\n")
}

func paymentTermLine(index int, item any) string {
	m, ok := item.(map[string]any)
	if !ok {
		return genericLine(index, item)
	}
	desc := stringField(m, "milestoneDescription", "milestone_description", "description")
	percent, hasPercent := numberField(m, "amountPercent", "amount_percent", "percent")
	if desc == "" && !hasPercent {
		return genericLine(index, item)
	}
	return fmt.Sprintf("%d. %s — %s%%", index, desc, formatNumber(percent))
}

func scopeOfWorkLine(index int, item any) string {
	m, ok := item.(map[string]any)
	if !ok {
		return genericLine(index, item)
	}
	desc := stringField(m, "description")
	qty, hasQty := numberField(m, "qty", "quantity")
	unit := stringField(m, "unit", "uom")
	remarks := stringField(m, "remarks")
	if desc == "" && !hasQty {
		return genericLine(index, item)
	}
	line := fmt.Sprintf("%d. %s — Qty: %s", index, desc, FormatQty(qty, unit))
	if remarks != "" {
		line += " — " + remarks
	}
	return line
}

// genericLine stringifies one list element: strings as-is, objects as their
// own key/value pairs, anything else through the scalar path.
func genericLine(index int, item any) string {
	switch val := item.(type) {
	case string:
		return fmt.Sprintf("%d. %s", index, val)
	case map[string]any:
		pairs := make([]string, 0, len(val))
		for _, key := range sortedKeys(val) {
			pairs = append(pairs, fmt.Sprintf("%s: %s", key, formatValue(KindScalar, val[key])))
		}
		return fmt.Sprintf("%d. %s", index, strings.Join(pairs, ", "))
	default:
		return fmt.Sprintf("%d. %s", index, formatValue(KindScalar, item))
	}
}

// formatObject renders a structured value. The three known composite fields
// get bespoke multi-line renderings assembling only the sub-fields that are
// present; everything else falls back to generic key: value lines with the
// same formatting rules applied recursively.
func formatObject(kind FieldKind, m map[string]any) string {
	switch kind {
	case KindPriceSchedule:
		return priceScheduleText(m)
	case KindDeliveryTerms:
		return deliveryTermsText(m)
	case KindCompanyInfo:
		return companyInfoText(m)
	default:
		return genericObjectText(m)
	}
}

func priceScheduleText(m map[string]any) string {
	var lines []string
	if base, ok := numberField(m, "basePrice", "base_price"); ok {
		lines = append(lines, "Base Price: "+FormatINR(base))
	}
	if discount, ok := numberField(m, "discountPercent", "discount_percent"); ok {
		lines = append(lines, "Discount: "+formatNumber(discount)+"%")
	}
	if tax, ok := numberField(m, "taxPercent", "tax_percent"); ok {
		lines = append(lines, "Tax: "+formatNumber(tax)+"%")
	}
	if total, ok := numberField(m, "grandTotal", "grand_total"); ok {
		lines = append(lines, "Grand Total: "+FormatINR(total))
	}
	if len(lines) == 0 {
		return genericObjectText(m)
	}
	return strings.Join(lines, "\n")
}

func deliveryTermsText(m map[string]any) string {
	var lines []string
	if v := stringField(m, "deliveryPeriod", "delivery_period"); v != "" {
		lines = append(lines, "Delivery: "+v)
	}
	if v := stringField(m, "warrantyPeriod", "warranty_period"); v != "" {
		lines = append(lines, "Warranty: "+v)
	}
	if v := stringField(m, "installation"); v != "" {
		lines = append(lines, "Installation: "+v)
	}
	if len(lines) == 0 {
		return genericObjectText(m)
	}
	return strings.Join(lines, "\n")
}

func companyInfoText(m map[string]any) string {
	var lines []string
	if v := stringField(m, "name", "companyName", "company_name"); v != "" {
		lines = append(lines, v)
	}
	if v := stringField(m, "address"); v != "" {
		lines = append(lines, v)
	}
	if v := stringField(m, "phone"); v != "" {
		lines = append(lines, "Phone: "+v)
	}
	if v := stringField(m, "email"); v != "" {
		lines = append(lines, "Email: "+v)
	}
	if v := stringField(m, "trn", "gstin"); v != "" {
		lines = append(lines, "Tax Reg: "+v)
	}
	if len(lines) == 0 {
		return genericObjectText(m)
	}
	return strings.Join(lines, "\n")
}

func genericObjectText(m map[string]any) string {
	if len(m) == 0 {
		return emptyPlaceholder
	}
	lines := make([]string, 0, len(m))
	for _, key := range sortedKeys(m) {
		lines = append(lines, fmt.Sprintf("%s: %s", key, formatValue(KindScalar, m[key])))
	}
	return strings.Join(lines, "\n")
}

// formatString trims and renders a plain string. Strings that look like
// serialized JSON are parsed and re-dispatched through the structured path;
// a parse failure means the string really was a literal.
func formatString(kind FieldKind, s string) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return emptyPlaceholder
	}
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		var parsed any
		if err := json.Unmarshal([]byte(trimmed), &parsed); err == nil {
			return formatValue(kind, parsed)
		}
	}
	return trimmed
}

// formatNumber renders a float without a trailing ".0" for whole values.
func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func stringField(m map[string]any, names ...string) string {
	for _, name := range names {
		if v, ok := m[name].(string); ok {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func numberField(m map[string]any, names ...string) (float64, bool) {
	for _, name := range names {
		switch v := m[name].(type) {
		case float64:
			return v, true
		case int:
			return float64(v), true
		case json.Number:
			if f, err := v.Float64(); err == nil {
				return f, true
			}
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}
