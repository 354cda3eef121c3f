package services

import (
	"fmt"
	"log"
	"time"

	"github.com/pocketbase/pocketbase"
)

// ── Quotation export ─────────────────────────────────────────────────────

// ScopeRow is one scope-of-work line in a quotation document.
type ScopeRow struct {
	SINo        int
	Description string
	Qty         float64
	Unit        string
	Remarks     string
}

// PaymentTermRow is one payment milestone in a quotation document.
type PaymentTermRow struct {
	Description string
	Percent     float64
}

// QuotationExportData holds all data needed to generate a quotation PDF.
type QuotationExportData struct {
	CompanyName string

	QuotationNumber string
	RevisionNumber  int // 0 for the base quotation
	CustomerName    string
	ProjectTitle    string
	OfferDate       string
	EnquiryDate     string
	Status          string

	ScopeRows    []ScopeRow
	PaymentTerms []PaymentTermRow

	BasePrice       float64
	DiscountPercent float64
	TaxPercent      float64
	GrandTotal      float64

	DeliveryPeriod string
	WarrantyPeriod string
	Installation   string

	GeneratedDate string
}

// BuildQuotationExportData assembles quotation PDF data from the stored
// records. companyName comes from configuration, not from the record.
func BuildQuotationExportData(app *pocketbase.PocketBase, quotationID, companyName string) (*QuotationExportData, error) {
	quotation, err := app.FindRecordById("quotations", quotationID)
	if err != nil {
		return nil, fmt.Errorf("quotation not found: %w", err)
	}

	data := &QuotationExportData{
		CompanyName:     companyName,
		QuotationNumber: quotation.GetString("quotation_number"),
		Status:          quotation.GetString("management_approval_status"),
		GrandTotal:      quotation.GetFloat("grand_total"),
		GeneratedDate:   time.Now().Format("02 Jan 2006"),
	}

	if dt := quotation.GetDateTime("offer_date"); !dt.IsZero() {
		data.OfferDate = dt.Time().Format("02 Jan 2006")
	}
	if dt := quotation.GetDateTime("enquiry_date"); !dt.IsZero() {
		data.EnquiryDate = dt.Time().Format("02 Jan 2006")
	}

	leadID := quotation.GetString("lead")
	if leadID != "" {
		lead, err := app.FindRecordById("leads", leadID)
		if err != nil {
			log.Printf("quotation_export: could not find lead %s: %v", leadID, err)
		} else {
			data.CustomerName = lead.GetString("customer_name")
			data.ProjectTitle = lead.GetString("project_title")
		}
	}

	data.ScopeRows = decodeScopeRows(DecodeJSONField(quotation, "scope_of_work"))
	data.PaymentTerms = decodePaymentTerms(DecodeJSONField(quotation, "payment_terms"))

	if schedule, ok := DecodeJSONField(quotation, "price_schedule").(map[string]any); ok {
		data.BasePrice, _ = numberField(schedule, "basePrice", "base_price")
		data.DiscountPercent, _ = numberField(schedule, "discountPercent", "discount_percent")
		data.TaxPercent, _ = numberField(schedule, "taxPercent", "tax_percent")
		if total, ok := numberField(schedule, "grandTotal", "grand_total"); ok {
			data.GrandTotal = total
		}
	}

	if terms, ok := DecodeJSONField(quotation, "delivery_terms").(map[string]any); ok {
		data.DeliveryPeriod = stringField(terms, "deliveryPeriod", "delivery_period")
		data.WarrantyPeriod = stringField(terms, "warrantyPeriod", "warranty_period")
		data.Installation = stringField(terms, "installation")
	}

	return data, nil
}

func decodeScopeRows(v any) []ScopeRow {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	var rows []ScopeRow
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		qty, _ := numberField(m, "qty", "quantity")
		rows = append(rows, ScopeRow{
			SINo:        i + 1,
			Description: stringField(m, "description"),
			Qty:         qty,
			Unit:        stringField(m, "unit", "uom"),
			Remarks:     stringField(m, "remarks"),
		})
	}
	return rows
}

func decodePaymentTerms(v any) []PaymentTermRow {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	var rows []PaymentTermRow
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		percent, _ := numberField(m, "amountPercent", "amount_percent", "percent")
		rows = append(rows, PaymentTermRow{
			Description: stringField(m, "milestoneDescription", "milestone_description", "description"),
			Percent:     percent,
		})
	}
	return rows
}

// ── Purchase order export ────────────────────────────────────────────────

// POLineRow is one line item in a purchase order document.
type POLineRow struct {
	SINo        int
	Description string
	Qty         float64
	Unit        string
	Rate        float64
	Amount      float64
}

// POExportData holds all data needed to generate a PO PDF.
type POExportData struct {
	CompanyName string

	PONumber     string
	SupplierName string
	StoreName    string
	OrderDate    string
	Status       string
	GRNNumber    string
	ReceivedDate string

	LineItems []POLineRow
	Total     float64

	GeneratedDate string
}

// BuildPOExportData assembles purchase order PDF data from the stored records.
func BuildPOExportData(app *pocketbase.PocketBase, poID, companyName string) (*POExportData, error) {
	po, err := app.FindRecordById("purchase_orders", poID)
	if err != nil {
		return nil, fmt.Errorf("purchase order not found: %w", err)
	}

	data := &POExportData{
		CompanyName:   companyName,
		PONumber:      po.GetString("po_number"),
		SupplierName:  po.GetString("supplier_name"),
		Status:        po.GetString("status"),
		GRNNumber:     po.GetString("grn_number"),
		GeneratedDate: time.Now().Format("02 Jan 2006"),
	}

	if dt := po.GetDateTime("order_date"); !dt.IsZero() {
		data.OrderDate = dt.Time().Format("02 Jan 2006")
	}
	if dt := po.GetDateTime("received_date"); !dt.IsZero() {
		data.ReceivedDate = dt.Time().Format("02 Jan 2006")
	}

	storeID := po.GetString("store")
	if storeID != "" {
		store, err := app.FindRecordById("stores", storeID)
		if err != nil {
			log.Printf("po_export: could not find store %s: %v", storeID, err)
		} else {
			data.StoreName = store.GetString("name")
		}
	}

	items, _ := DecodeJSONField(po, "items").([]any)
	var total float64
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		qty, _ := numberField(m, "qty", "quantity")
		rate, _ := numberField(m, "rate", "unit_price", "unitPrice")
		amount := qty * rate
		total += amount
		data.LineItems = append(data.LineItems, POLineRow{
			SINo:        i + 1,
			Description: stringField(m, "description", "name"),
			Qty:         qty,
			Unit:        stringField(m, "unit", "uom"),
			Rate:        rate,
			Amount:      amount,
		})
	}

	data.Total = total
	if stored := po.GetFloat("total"); stored > 0 {
		data.Total = stored
	}

	return data, nil
}
