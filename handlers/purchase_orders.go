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

// poItem is one line item on a purchase order. MaterialID links the line to
// inventory so goods receipt can increment stock.
type poItem struct {
	MaterialID  string  `json:"materialId"`
	Description string  `json:"description"`
	Unit        string  `json:"unit"`
	Qty         float64 `json:"qty"`
	Rate        float64 `json:"rate"`
}

func purchaseOrderResponse(rec *core.Record) map[string]any {
	return map[string]any{
		"id":           rec.Id,
		"poNumber":     rec.GetString("po_number"),
		"supplierName": rec.GetString("supplier_name"),
		"storeId":      rec.GetString("store"),
		"orderDate":    dateOnly(rec.GetString("order_date")),
		"items":        services.DecodeJSONField(rec, "items"),
		"status":       rec.GetString("status"),
		"total":        rec.GetFloat("total"),
		"grnNumber":    rec.GetString("grn_number"),
		"receivedDate": dateOnly(rec.GetString("received_date")),
		"created":      rec.GetString("created"),
	}
}

func HandlePurchaseOrderList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		statusFilter := e.Request.URL.Query().Get("status")

		var (
			records []*core.Record
			err     error
		)
		if statusFilter != "" {
			records, err = app.FindRecordsByFilter(
				"purchase_orders",
				"status = {:status}",
				"-created",
				0,
				0,
				map[string]any{"status": statusFilter},
			)
		} else {
			records, err = app.FindRecordsByFilter("purchase_orders", "id != ''", "-created", 0, 0)
		}
		if err != nil {
			log.Printf("purchase_orders: could not query purchase orders: %v", err)
			return apiError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		items := make([]map[string]any, 0, len(records))
		for _, rec := range records {
			items = append(items, purchaseOrderResponse(rec))
		}
		return e.JSON(http.StatusOK, items)
	}
}

func HandlePurchaseOrderView(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		rec, err := app.FindRecordById("purchase_orders", e.Request.PathValue("id"))
		if err != nil {
			return apiError(e, http.StatusNotFound, "Purchase order not found")
		}
		return e.JSON(http.StatusOK, purchaseOrderResponse(rec))
	}
}

func HandlePurchaseOrderCreate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := requireRole(e, "admin", "manager", "storekeeper"); err != nil {
			return err
		}

		var payload struct {
			SupplierName string   `json:"supplierName"`
			StoreID      string   `json:"storeId"`
			OrderDate    string   `json:"orderDate"`
			Items        []poItem `json:"items"`
		}
		if err := e.BindBody(&payload); err != nil {
			return apiError(e, http.StatusBadRequest, "Invalid request body")
		}
		if strings.TrimSpace(payload.SupplierName) == "" {
			return apiError(e, http.StatusBadRequest, "Supplier name is required")
		}
		if len(payload.Items) == 0 {
			return apiError(e, http.StatusBadRequest, "At least one item is required")
		}

		var total float64
		for _, item := range payload.Items {
			if item.Qty <= 0 || item.Rate < 0 {
				return apiError(e, http.StatusBadRequest, "Every item needs a positive quantity and a non-negative rate")
			}
			total += item.Qty * item.Rate
		}

		poCol, err := app.FindCollectionByNameOrId("purchase_orders")
		if err != nil {
			log.Printf("purchase_orders: could not find purchase_orders collection: %v", err)
			return apiError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		rec := core.NewRecord(poCol)
		rec.Set("po_number", services.GeneratePONumber(app, time.Now()))
		rec.Set("supplier_name", strings.TrimSpace(payload.SupplierName))
		rec.Set("store", payload.StoreID)
		if payload.OrderDate != "" {
			rec.Set("order_date", payload.OrderDate)
		} else {
			rec.Set("order_date", time.Now().Format("2006-01-02"))
		}
		rec.Set("items", payload.Items)
		rec.Set("status", "pending")
		rec.Set("total", total)
		if err := app.Save(rec); err != nil {
			log.Printf("purchase_orders: could not save purchase order: %v", err)
			return apiError(e, http.StatusBadRequest, "Could not save purchase order")
		}

		writeAudit(app, e, "create", "purchase_orders", rec.Id,
			"Created purchase order "+rec.GetString("po_number"))
		return e.JSON(http.StatusCreated, purchaseOrderResponse(rec))
	}
}

func HandlePurchaseOrderApproval(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := requireRole(e, "admin", "manager"); err != nil {
			return err
		}

		rec, err := app.FindRecordById("purchase_orders", e.Request.PathValue("id"))
		if err != nil {
			return apiError(e, http.StatusNotFound, "Purchase order not found")
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
			log.Printf("purchase_orders: could not update purchase order %s: %v", rec.Id, err)
			return apiError(e, http.StatusInternalServerError, "Could not update purchase order")
		}

		writeAudit(app, e, "approval:"+next, "purchase_orders", rec.Id,
			"Moved purchase order "+rec.GetString("po_number")+" to "+next)
		return e.JSON(http.StatusOK, purchaseOrderResponse(rec))
	}
}

// HandlePurchaseOrderReceive records a goods receipt against an approved
// purchase order: stamps a GRN number and the received date, and increments
// stock for every line that references a material.
func HandlePurchaseOrderReceive(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := requireRole(e, "admin", "storekeeper"); err != nil {
			return err
		}

		rec, err := app.FindRecordById("purchase_orders", e.Request.PathValue("id"))
		if err != nil {
			return apiError(e, http.StatusNotFound, "Purchase order not found")
		}
		if rec.GetString("status") != "approved" {
			return apiError(e, http.StatusConflict, "Only approved purchase orders can be received")
		}

		items, _ := services.DecodeJSONField(rec, "items").([]any)
		for _, item := range items {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			materialID, _ := m["materialId"].(string)
			qty, _ := m["qty"].(float64)
			if materialID == "" || qty <= 0 {
				continue
			}
			material, err := app.FindRecordById("materials", materialID)
			if err != nil {
				log.Printf("purchase_orders: received line references unknown material %s: %v", materialID, err)
				continue
			}
			material.Set("quantity", services.ApplyReceipt(material.GetFloat("quantity"), qty))
			if err := app.Save(material); err != nil {
				log.Printf("purchase_orders: could not update stock for %s: %v", materialID, err)
				return apiError(e, http.StatusInternalServerError, "Could not update stock")
			}
		}

		now := time.Now()
		rec.Set("status", "received")
		rec.Set("grn_number", services.GenerateGRNNumber(app, now))
		rec.Set("received_date", now.Format("2006-01-02"))
		if err := app.Save(rec); err != nil {
			log.Printf("purchase_orders: could not mark purchase order %s received: %v", rec.Id, err)
			return apiError(e, http.StatusInternalServerError, "Could not update purchase order")
		}

		writeAudit(app, e, "receive", "purchase_orders", rec.Id,
			"Received purchase order "+rec.GetString("po_number")+" under "+rec.GetString("grn_number"))
		return e.JSON(http.StatusOK, purchaseOrderResponse(rec))
	}
}

// HandlePOExportPDF generates and downloads the purchase order document.
func HandlePOExportPDF(app *pocketbase.PocketBase, companyName string) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		data, err := services.BuildPOExportData(app, e.Request.PathValue("id"), companyName)
		if err != nil {
			log.Printf("po_export: %v", err)
			return apiError(e, http.StatusNotFound, "Purchase order not found")
		}

		pdfBytes, err := services.GeneratePOPDF(data)
		if err != nil {
			log.Printf("po_export: failed to generate: %v", err)
			return apiError(e, http.StatusInternalServerError, "Failed to generate PDF file")
		}

		filename := fmt.Sprintf("%s.pdf", sanitizeFilename(data.PONumber))

		e.Response.Header().Set("Content-Type", "application/pdf")
		e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
		e.Response.Write(pdfBytes)
		return nil
	}
}
