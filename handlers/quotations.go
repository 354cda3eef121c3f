package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"wbes/services"
)

func quotationResponse(rec *core.Record) map[string]any {
	return map[string]any{
		"id":                       rec.Id,
		"leadId":                   rec.GetString("lead"),
		"quotationNumber":          rec.GetString("quotation_number"),
		"offerDate":                dateOnly(rec.GetString("offer_date")),
		"enquiryDate":              dateOnly(rec.GetString("enquiry_date")),
		"companyInfo":              services.DecodeJSONField(rec, "company_info"),
		"scopeOfWork":              services.DecodeJSONField(rec, "scope_of_work"),
		"priceSchedule":            services.DecodeJSONField(rec, "price_schedule"),
		"paymentTerms":             services.DecodeJSONField(rec, "payment_terms"),
		"deliveryTerms":            services.DecodeJSONField(rec, "delivery_terms"),
		"managementApprovalStatus": rec.GetString("management_approval_status"),
		"grandTotal":               rec.GetFloat("grand_total"),
		"created":                  rec.GetString("created"),
	}
}

// dateOnly strips the time portion from a stored datetime string so date
// fields compare and serialize as plain calendar dates.
func dateOnly(s string) string {
	if len(s) >= 10 {
		return s[:10]
	}
	return s
}

// quotationContent carries the editable quotation fields shared by create,
// update and revision payloads. Pointer/any fields distinguish "absent" from
// "set to empty".
type quotationContent struct {
	OfferDate     *string  `json:"offerDate"`
	EnquiryDate   *string  `json:"enquiryDate"`
	CompanyInfo   any      `json:"companyInfo"`
	ScopeOfWork   any      `json:"scopeOfWork"`
	PriceSchedule any      `json:"priceSchedule"`
	PaymentTerms  any      `json:"paymentTerms"`
	DeliveryTerms any      `json:"deliveryTerms"`
	GrandTotal    *float64 `json:"grandTotal"`
}

func applyQuotationContent(rec *core.Record, content quotationContent) {
	if content.OfferDate != nil {
		rec.Set("offer_date", *content.OfferDate)
	}
	if content.EnquiryDate != nil {
		rec.Set("enquiry_date", *content.EnquiryDate)
	}
	if content.CompanyInfo != nil {
		rec.Set("company_info", content.CompanyInfo)
	}
	if content.ScopeOfWork != nil {
		rec.Set("scope_of_work", content.ScopeOfWork)
	}
	if content.PriceSchedule != nil {
		rec.Set("price_schedule", content.PriceSchedule)
	}
	if content.PaymentTerms != nil {
		rec.Set("payment_terms", content.PaymentTerms)
	}
	if content.DeliveryTerms != nil {
		rec.Set("delivery_terms", content.DeliveryTerms)
	}
	if content.GrandTotal != nil {
		rec.Set("grand_total", *content.GrandTotal)
	}
}

// contentMap flattens a quotation or revision record into the diffable field
// map used by services.ComputeRevisionDiff.
func contentMap(rec *core.Record) map[string]any {
	return map[string]any{
		"offerDate":     dateOnly(rec.GetString("offer_date")),
		"enquiryDate":   dateOnly(rec.GetString("enquiry_date")),
		"companyInfo":   services.DecodeJSONField(rec, "company_info"),
		"scopeOfWork":   services.DecodeJSONField(rec, "scope_of_work"),
		"priceSchedule": services.DecodeJSONField(rec, "price_schedule"),
		"paymentTerms":  services.DecodeJSONField(rec, "payment_terms"),
		"deliveryTerms": services.DecodeJSONField(rec, "delivery_terms"),
		"grandTotal":    rec.GetFloat("grand_total"),
	}
}

func HandleQuotationList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		statusFilter := e.Request.URL.Query().Get("status")

		var (
			records []*core.Record
			err     error
		)
		if statusFilter != "" {
			records, err = app.FindRecordsByFilter(
				"quotations",
				"management_approval_status = {:status}",
				"-created",
				0,
				0,
				map[string]any{"status": statusFilter},
			)
		} else {
			records, err = app.FindAllRecords("quotations")
		}
		if err != nil {
			log.Printf("quotations: could not query quotations: %v", err)
			return apiError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		items := make([]map[string]any, 0, len(records))
		for _, rec := range records {
			items = append(items, quotationResponse(rec))
		}
		return e.JSON(http.StatusOK, items)
	}
}

func HandleQuotationView(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		rec, err := app.FindRecordById("quotations", e.Request.PathValue("id"))
		if err != nil {
			return apiError(e, http.StatusNotFound, "Quotation not found")
		}
		return e.JSON(http.StatusOK, quotationResponse(rec))
	}
}

func HandleQuotationCreate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var payload struct {
			LeadID string `json:"leadId"`
			quotationContent
		}
		if err := e.BindBody(&payload); err != nil {
			return apiError(e, http.StatusBadRequest, "Invalid request body")
		}

		lead, err := app.FindRecordById("leads", payload.LeadID)
		if err != nil {
			return apiError(e, http.StatusBadRequest, "Lead not found")
		}

		quotationsCol, err := app.FindCollectionByNameOrId("quotations")
		if err != nil {
			log.Printf("quotations: could not find quotations collection: %v", err)
			return apiError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		rec := core.NewRecord(quotationsCol)
		rec.Set("lead", lead.Id)
		rec.Set("quotation_number", services.GenerateQuotationNumber(app, time.Now()))
		rec.Set("management_approval_status", "draft")
		applyQuotationContent(rec, payload.quotationContent)
		if err := app.Save(rec); err != nil {
			log.Printf("quotations: could not save quotation: %v", err)
			return apiError(e, http.StatusBadRequest, "Could not save quotation")
		}

		writeAudit(app, e, "create", "quotations", rec.Id, "Created quotation "+rec.GetString("quotation_number"))
		return e.JSON(http.StatusCreated, quotationResponse(rec))
	}
}

func HandleQuotationUpdate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		rec, err := app.FindRecordById("quotations", e.Request.PathValue("id"))
		if err != nil {
			return apiError(e, http.StatusNotFound, "Quotation not found")
		}

		status := rec.GetString("management_approval_status")
		if status == "approved" || status == "rejected" {
			return apiError(e, http.StatusConflict, "Decided quotations cannot be edited; create a revision instead")
		}

		var content quotationContent
		if err := e.BindBody(&content); err != nil {
			return apiError(e, http.StatusBadRequest, "Invalid request body")
		}

		applyQuotationContent(rec, content)
		if err := app.Save(rec); err != nil {
			log.Printf("quotations: could not update quotation %s: %v", rec.Id, err)
			return apiError(e, http.StatusBadRequest, "Could not update quotation")
		}

		writeAudit(app, e, "update", "quotations", rec.Id, "Updated quotation "+rec.GetString("quotation_number"))
		return e.JSON(http.StatusOK, quotationResponse(rec))
	}
}

func HandleQuotationDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := requireRole(e, "admin", "manager"); err != nil {
			return err
		}

		rec, err := app.FindRecordById("quotations", e.Request.PathValue("id"))
		if err != nil {
			return apiError(e, http.StatusNotFound, "Quotation not found")
		}

		number := rec.GetString("quotation_number")
		if err := app.Delete(rec); err != nil {
			log.Printf("quotations: could not delete quotation %s: %v", rec.Id, err)
			return apiError(e, http.StatusInternalServerError, "Could not delete quotation")
		}

		writeAudit(app, e, "delete", "quotations", rec.Id, "Deleted quotation "+number)
		return e.JSON(http.StatusOK, map[string]any{"deleted": true})
	}
}

// approvalTransition validates and applies a management approval status
// change. Submitting for approval (→ pending) is open to any signed-in
// user; deciding (→ approved/rejected) needs manager or admin.
func approvalTransition(app *pocketbase.PocketBase, e *core.RequestEvent, rec *core.Record, collectionName string, allowed map[string][]string) error {
	var payload struct {
		Status string `json:"status"`
	}
	if err := e.BindBody(&payload); err != nil {
		return apiError(e, http.StatusBadRequest, "Invalid request body")
	}

	current := rec.GetString("management_approval_status")
	next := strings.TrimSpace(payload.Status)

	validNext, ok := allowed[current]
	if !ok || !contains(validNext, next) {
		return apiError(e, http.StatusConflict,
			fmt.Sprintf("Cannot move from %s to %s", current, next))
	}

	if next == "approved" || next == "rejected" {
		if err := requireRole(e, "admin", "manager"); err != nil {
			return err
		}
	} else {
		if err := requireRole(e, "admin", "manager", "estimator"); err != nil {
			return err
		}
	}

	rec.Set("management_approval_status", next)
	if err := app.Save(rec); err != nil {
		log.Printf("approval: could not update %s %s: %v", collectionName, rec.Id, err)
		return apiError(e, http.StatusInternalServerError, "Could not update approval status")
	}

	writeAudit(app, e, "approval:"+next, collectionName, rec.Id,
		fmt.Sprintf("Moved %s from %s to %s", collectionName, current, next))
	return nil
}

func contains(values []string, v string) bool {
	for _, value := range values {
		if value == v {
			return true
		}
	}
	return false
}

var quotationTransitions = map[string][]string{
	"draft":   {"pending"},
	"pending": {"approved", "rejected"},
}

func HandleQuotationApproval(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		rec, err := app.FindRecordById("quotations", e.Request.PathValue("id"))
		if err != nil {
			return apiError(e, http.StatusNotFound, "Quotation not found")
		}
		if err := approvalTransition(app, e, rec, "quotations", quotationTransitions); err != nil {
			return err
		}
		return e.JSON(http.StatusOK, quotationResponse(rec))
	}
}

// HandleQuotationExportPDF generates and downloads the quotation document.
func HandleQuotationExportPDF(app *pocketbase.PocketBase, companyName string) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		data, err := services.BuildQuotationExportData(app, e.Request.PathValue("id"), companyName)
		if err != nil {
			log.Printf("quotation_export: %v", err)
			return apiError(e, http.StatusNotFound, "Quotation not found")
		}

		pdfBytes, err := services.GenerateQuotationPDF(data)
		if err != nil {
			log.Printf("quotation_export: failed to generate: %v", err)
			return apiError(e, http.StatusInternalServerError, "Failed to generate PDF file")
		}

		filename := fmt.Sprintf("%s.pdf", sanitizeFilename(data.QuotationNumber))

		e.Response.Header().Set("Content-Type", "application/pdf")
		e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
		e.Response.Write(pdfBytes)
		return nil
	}
}

// sanitizeFilename removes characters that are unsafe for filenames.
func sanitizeFilename(s string) string {
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, "/", "-")
	s = strings.ReplaceAll(s, "\\", "-")
	s = strings.ReplaceAll(s, ":", "-")
	return s
}
