package handlers

import (
	"fmt"
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"wbes/services"
)

func revisionResponse(rec *core.Record) map[string]any {
	return map[string]any{
		"id":                       rec.Id,
		"quotationId":              rec.GetString("quotation"),
		"revisionNumber":           rec.GetInt("revision_number"),
		"offerDate":                dateOnly(rec.GetString("offer_date")),
		"enquiryDate":              dateOnly(rec.GetString("enquiry_date")),
		"companyInfo":              services.DecodeJSONField(rec, "company_info"),
		"scopeOfWork":              services.DecodeJSONField(rec, "scope_of_work"),
		"priceSchedule":            services.DecodeJSONField(rec, "price_schedule"),
		"paymentTerms":             services.DecodeJSONField(rec, "payment_terms"),
		"deliveryTerms":            services.DecodeJSONField(rec, "delivery_terms"),
		"diffFromParent":           services.DecodeJSONField(rec, "diff_from_parent"),
		"managementApprovalStatus": rec.GetString("management_approval_status"),
		"grandTotal":               rec.GetFloat("grand_total"),
		"created":                  rec.GetString("created"),
	}
}

func HandleQuotationRevisionList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		quotationID := e.Request.PathValue("id")
		if _, err := app.FindRecordById("quotations", quotationID); err != nil {
			return apiError(e, http.StatusNotFound, "Quotation not found")
		}

		records, err := app.FindRecordsByFilter(
			"revisions",
			"quotation = {:quotationId}",
			"-revision_number",
			0,
			0,
			map[string]any{"quotationId": quotationID},
		)
		if err != nil {
			log.Printf("revisions: could not query revisions for %s: %v", quotationID, err)
			return apiError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		items := make([]map[string]any, 0, len(records))
		for _, rec := range records {
			items = append(items, revisionResponse(rec))
		}
		return e.JSON(http.StatusOK, items)
	}
}

// HandleRevisionCreate creates a revision from its parent quotation (or the
// quotation's latest revision, if any), applies the submitted changes and
// stores the computed field-level diff on the new record.
func HandleRevisionCreate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		parent, err := app.FindRecordById("quotations", e.Request.PathValue("id"))
		if err != nil {
			return apiError(e, http.StatusNotFound, "Quotation not found")
		}

		var content quotationContent
		if err := e.BindBody(&content); err != nil {
			return apiError(e, http.StatusBadRequest, "Invalid request body")
		}

		existing, err := app.FindRecordsByFilter(
			"revisions",
			"quotation = {:quotationId}",
			"-revision_number",
			1,
			0,
			map[string]any{"quotationId": parent.Id},
		)
		if err != nil {
			log.Printf("revisions: could not query revisions for %s: %v", parent.Id, err)
			return apiError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		// Each revision diffs against the latest revision so the chain
		// reads as incremental changes, not cumulative ones.
		baseline := contentMap(parent)
		revisionNumber := 1
		if len(existing) > 0 {
			baseline = contentMap(existing[0])
			revisionNumber = existing[0].GetInt("revision_number") + 1
		}

		revisionsCol, err := app.FindCollectionByNameOrId("revisions")
		if err != nil {
			log.Printf("revisions: could not find revisions collection: %v", err)
			return apiError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		rec := core.NewRecord(revisionsCol)
		rec.Set("quotation", parent.Id)
		rec.Set("revision_number", revisionNumber)
		rec.Set("management_approval_status", "pending")

		// Start from the baseline, then layer the submitted changes.
		rec.Set("offer_date", baseline["offerDate"])
		rec.Set("enquiry_date", baseline["enquiryDate"])
		rec.Set("company_info", baseline["companyInfo"])
		rec.Set("scope_of_work", baseline["scopeOfWork"])
		rec.Set("price_schedule", baseline["priceSchedule"])
		rec.Set("payment_terms", baseline["paymentTerms"])
		rec.Set("delivery_terms", baseline["deliveryTerms"])
		rec.Set("grand_total", baseline["grandTotal"])
		applyQuotationContent(rec, content)

		diff := services.ComputeRevisionDiff(baseline, contentMap(rec))
		rec.Set("diff_from_parent", diff)

		if err := app.Save(rec); err != nil {
			log.Printf("revisions: could not save revision: %v", err)
			return apiError(e, http.StatusBadRequest, "Could not save revision")
		}

		writeAudit(app, e, "create", "revisions", rec.Id,
			fmt.Sprintf("Created revision R%d of %s", revisionNumber, parent.GetString("quotation_number")))
		return e.JSON(http.StatusCreated, revisionResponse(rec))
	}
}

func HandleRevisionView(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		rec, err := app.FindRecordById("revisions", e.Request.PathValue("id"))
		if err != nil {
			return apiError(e, http.StatusNotFound, "Revision not found")
		}
		return e.JSON(http.StatusOK, revisionResponse(rec))
	}
}

// HandleRevisionDiff renders the stored diff with human-readable labels and
// formatted from/to values.
func HandleRevisionDiff(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		rec, err := app.FindRecordById("revisions", e.Request.PathValue("id"))
		if err != nil {
			return apiError(e, http.StatusNotFound, "Revision not found")
		}

		rows := make([]map[string]any, 0)
		stored := services.DecodeJSONField(rec, "diff_from_parent")
		changes, _ := stored.([]any)
		for _, c := range changes {
			change, ok := c.(map[string]any)
			if !ok {
				continue
			}
			field, _ := change["field"].(string)
			rows = append(rows, map[string]any{
				"field": field,
				"label": services.FieldLabel(field),
				"from":  services.FormatDiffValue(field, change["from"]),
				"to":    services.FormatDiffValue(field, change["to"]),
			})
		}
		return e.JSON(http.StatusOK, rows)
	}
}

var revisionTransitions = map[string][]string{
	"pending": {"approved", "rejected"},
}

func HandleRevisionApproval(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		rec, err := app.FindRecordById("revisions", e.Request.PathValue("id"))
		if err != nil {
			return apiError(e, http.StatusNotFound, "Revision not found")
		}
		if err := approvalTransition(app, e, rec, "revisions", revisionTransitions); err != nil {
			return err
		}
		return e.JSON(http.StatusOK, revisionResponse(rec))
	}
}
