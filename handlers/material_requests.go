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

// requestItem is one material line on a material request.
type requestItem struct {
	MaterialID string  `json:"materialId"`
	Quantity   float64 `json:"quantity"`
}

func materialRequestResponse(rec *core.Record) map[string]any {
	return map[string]any{
		"id":            rec.Id,
		"requestNumber": rec.GetString("request_number"),
		"projectId":     rec.GetString("project"),
		"requestedBy":   rec.GetString("requested_by"),
		"items":         services.DecodeJSONField(rec, "items"),
		"status":        rec.GetString("status"),
		"remarks":       rec.GetString("remarks"),
		"created":       rec.GetString("created"),
	}
}

func HandleMaterialRequestList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		statusFilter := e.Request.URL.Query().Get("status")

		var (
			records []*core.Record
			err     error
		)
		if statusFilter != "" {
			records, err = app.FindRecordsByFilter(
				"material_requests",
				"status = {:status}",
				"-created",
				0,
				0,
				map[string]any{"status": statusFilter},
			)
		} else {
			records, err = app.FindRecordsByFilter("material_requests", "id != ''", "-created", 0, 0)
		}
		if err != nil {
			log.Printf("material_requests: could not query requests: %v", err)
			return apiError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		page, perPage := pageParams(e)
		pagination := services.Paginate(len(records), page, perPage)
		start, end := pagination.PageBounds()

		items := make([]map[string]any, 0, end-start)
		for _, rec := range records[start:end] {
			items = append(items, materialRequestResponse(rec))
		}
		return e.JSON(http.StatusOK, map[string]any{
			"requests":   items,
			"pagination": pagination,
		})
	}
}

func HandleMaterialRequestCreate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var payload struct {
			ProjectID string        `json:"projectId"`
			Items     []requestItem `json:"items"`
			Remarks   string        `json:"remarks"`
		}
		if err := e.BindBody(&payload); err != nil {
			return apiError(e, http.StatusBadRequest, "Invalid request body")
		}
		if len(payload.Items) == 0 {
			return apiError(e, http.StatusBadRequest, "At least one item is required")
		}
		for _, item := range payload.Items {
			if item.MaterialID == "" || item.Quantity <= 0 {
				return apiError(e, http.StatusBadRequest, "Every item needs a material and a positive quantity")
			}
			if _, err := app.FindRecordById("materials", item.MaterialID); err != nil {
				return apiError(e, http.StatusBadRequest, "Unknown material: "+item.MaterialID)
			}
		}

		requestsCol, err := app.FindCollectionByNameOrId("material_requests")
		if err != nil {
			log.Printf("material_requests: could not find material_requests collection: %v", err)
			return apiError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		rec := core.NewRecord(requestsCol)
		rec.Set("request_number", services.GenerateMRNumber(app, time.Now()))
		rec.Set("project", payload.ProjectID)
		if user := CurrentUserFrom(e.Request); user != nil {
			rec.Set("requested_by", user.ID)
		}
		rec.Set("items", payload.Items)
		rec.Set("status", "pending")
		rec.Set("remarks", strings.TrimSpace(payload.Remarks))
		if err := app.Save(rec); err != nil {
			log.Printf("material_requests: could not save request: %v", err)
			return apiError(e, http.StatusBadRequest, "Could not save material request")
		}

		writeAudit(app, e, "create", "material_requests", rec.Id,
			"Created material request "+rec.GetString("request_number"))
		return e.JSON(http.StatusCreated, materialRequestResponse(rec))
	}
}

func HandleMaterialRequestApproval(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := requireRole(e, "admin", "manager"); err != nil {
			return err
		}

		rec, err := app.FindRecordById("material_requests", e.Request.PathValue("id"))
		if err != nil {
			return apiError(e, http.StatusNotFound, "Material request not found")
		}

		var payload struct {
			Status string `json:"status"`
		}
		if err := e.BindBody(&payload); err != nil {
			return apiError(e, http.StatusBadRequest, "Invalid request body")
		}

		current := rec.GetString("status")
		next := strings.TrimSpace(payload.Status)
		if current != "pending" || (next != "approved" && next != "rejected") {
			return apiError(e, http.StatusConflict,
				fmt.Sprintf("Cannot move from %s to %s", current, next))
		}

		rec.Set("status", next)
		if err := app.Save(rec); err != nil {
			log.Printf("material_requests: could not update request %s: %v", rec.Id, err)
			return apiError(e, http.StatusInternalServerError, "Could not update material request")
		}

		writeAudit(app, e, "approval:"+next, "material_requests", rec.Id,
			"Moved material request "+rec.GetString("request_number")+" to "+next)
		return e.JSON(http.StatusOK, materialRequestResponse(rec))
	}
}

// HandleMaterialRequestFulfill issues stock for an approved request. Every
// line is validated against current stock before anything is written, so a
// request either fulfills completely or not at all.
func HandleMaterialRequestFulfill(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := requireRole(e, "admin", "storekeeper"); err != nil {
			return err
		}

		rec, err := app.FindRecordById("material_requests", e.Request.PathValue("id"))
		if err != nil {
			return apiError(e, http.StatusNotFound, "Material request not found")
		}
		if rec.GetString("status") != "approved" {
			return apiError(e, http.StatusConflict, "Only approved requests can be fulfilled")
		}

		items := decodeRequestItems(rec)
		if len(items) == 0 {
			return apiError(e, http.StatusConflict, "Request has no items to fulfill")
		}

		type issue struct {
			material *core.Record
			newQty   float64
		}
		issues := make([]issue, 0, len(items))
		for _, item := range items {
			material, err := app.FindRecordById("materials", item.MaterialID)
			if err != nil {
				return apiError(e, http.StatusConflict, "Unknown material: "+item.MaterialID)
			}
			newQty, err := services.ApplyIssue(material.GetFloat("quantity"), item.Quantity)
			if err != nil {
				return apiError(e, http.StatusConflict,
					fmt.Sprintf("%s: %v", material.GetString("name"), err))
			}
			issues = append(issues, issue{material: material, newQty: newQty})
		}

		for _, iss := range issues {
			iss.material.Set("quantity", iss.newQty)
			if err := app.Save(iss.material); err != nil {
				log.Printf("material_requests: could not update stock for %s: %v", iss.material.Id, err)
				return apiError(e, http.StatusInternalServerError, "Could not update stock")
			}
		}

		rec.Set("status", "fulfilled")
		if err := app.Save(rec); err != nil {
			log.Printf("material_requests: could not mark request %s fulfilled: %v", rec.Id, err)
			return apiError(e, http.StatusInternalServerError, "Could not update material request")
		}

		writeAudit(app, e, "fulfill", "material_requests", rec.Id,
			"Fulfilled material request "+rec.GetString("request_number"))
		return e.JSON(http.StatusOK, materialRequestResponse(rec))
	}
}

func decodeRequestItems(rec *core.Record) []requestItem {
	raw, _ := services.DecodeJSONField(rec, "items").([]any)
	items := make([]requestItem, 0, len(raw))
	for _, r := range raw {
		m, ok := r.(map[string]any)
		if !ok {
			continue
		}
		materialID, _ := m["materialId"].(string)
		quantity, _ := m["quantity"].(float64)
		items = append(items, requestItem{MaterialID: materialID, Quantity: quantity})
	}
	return items
}
