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

func storeResponse(rec *core.Record) map[string]any {
	return map[string]any{
		"id":       rec.Id,
		"name":     rec.GetString("name"),
		"location": rec.GetString("location"),
	}
}

func materialResponse(rec *core.Record) map[string]any {
	quantity := rec.GetFloat("quantity")
	reorderLevel := rec.GetFloat("reorder_level")
	return map[string]any{
		"id":           rec.Id,
		"name":         rec.GetString("name"),
		"code":         rec.GetString("code"),
		"unit":         rec.GetString("unit"),
		"storeId":      rec.GetString("store"),
		"quantity":     quantity,
		"reorderLevel": reorderLevel,
		"unitPrice":    rec.GetFloat("unit_price"),
		"stockStatus":  services.StockStatus(quantity, reorderLevel),
	}
}

func HandleStoreList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		records, err := app.FindAllRecords("stores")
		if err != nil {
			log.Printf("stores: could not query stores: %v", err)
			return apiError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		items := make([]map[string]any, 0, len(records))
		for _, rec := range records {
			items = append(items, storeResponse(rec))
		}
		return e.JSON(http.StatusOK, items)
	}
}

func HandleStoreCreate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := requireRole(e, "admin", "manager", "storekeeper"); err != nil {
			return err
		}

		var payload struct {
			Name     string `json:"name"`
			Location string `json:"location"`
		}
		if err := e.BindBody(&payload); err != nil {
			return apiError(e, http.StatusBadRequest, "Invalid request body")
		}
		if strings.TrimSpace(payload.Name) == "" {
			return apiError(e, http.StatusBadRequest, "Store name is required")
		}

		storesCol, err := app.FindCollectionByNameOrId("stores")
		if err != nil {
			log.Printf("stores: could not find stores collection: %v", err)
			return apiError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		rec := core.NewRecord(storesCol)
		rec.Set("name", strings.TrimSpace(payload.Name))
		rec.Set("location", strings.TrimSpace(payload.Location))
		if err := app.Save(rec); err != nil {
			log.Printf("stores: could not save store: %v", err)
			return apiError(e, http.StatusBadRequest, "Could not save store")
		}

		writeAudit(app, e, "create", "stores", rec.Id, "Created store "+rec.GetString("name"))
		return e.JSON(http.StatusCreated, storeResponse(rec))
	}
}

func HandleMaterialList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		records, err := app.FindAllRecords("materials")
		if err != nil {
			log.Printf("materials: could not query materials: %v", err)
			return apiError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		items := make([]map[string]any, 0, len(records))
		for _, rec := range records {
			items = append(items, materialResponse(rec))
		}
		return e.JSON(http.StatusOK, items)
	}
}

// HandleMaterialLowStock lists materials at or below their reorder level,
// including the ones that are fully out of stock.
func HandleMaterialLowStock(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		records, err := app.FindAllRecords("materials")
		if err != nil {
			log.Printf("materials: could not query materials: %v", err)
			return apiError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		items := make([]map[string]any, 0)
		for _, rec := range records {
			if services.StockStatus(rec.GetFloat("quantity"), rec.GetFloat("reorder_level")) != services.StockOK {
				items = append(items, materialResponse(rec))
			}
		}
		return e.JSON(http.StatusOK, items)
	}
}

type materialPayload struct {
	Name         *string  `json:"name"`
	Code         *string  `json:"code"`
	Unit         *string  `json:"unit"`
	StoreID      *string  `json:"storeId"`
	Quantity     *float64 `json:"quantity"`
	ReorderLevel *float64 `json:"reorderLevel"`
	UnitPrice    *float64 `json:"unitPrice"`
}

func applyMaterialPayload(rec *core.Record, payload materialPayload) {
	if payload.Name != nil {
		rec.Set("name", strings.TrimSpace(*payload.Name))
	}
	if payload.Code != nil {
		rec.Set("code", strings.TrimSpace(*payload.Code))
	}
	if payload.Unit != nil {
		rec.Set("unit", strings.TrimSpace(*payload.Unit))
	}
	if payload.StoreID != nil {
		rec.Set("store", *payload.StoreID)
	}
	if payload.Quantity != nil {
		rec.Set("quantity", *payload.Quantity)
	}
	if payload.ReorderLevel != nil {
		rec.Set("reorder_level", *payload.ReorderLevel)
	}
	if payload.UnitPrice != nil {
		rec.Set("unit_price", *payload.UnitPrice)
	}
}

func HandleMaterialCreate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := requireRole(e, "admin", "manager", "storekeeper"); err != nil {
			return err
		}

		var payload materialPayload
		if err := e.BindBody(&payload); err != nil {
			return apiError(e, http.StatusBadRequest, "Invalid request body")
		}
		if payload.Name == nil || strings.TrimSpace(*payload.Name) == "" {
			return apiError(e, http.StatusBadRequest, "Material name is required")
		}
		if payload.Unit == nil || strings.TrimSpace(*payload.Unit) == "" {
			return apiError(e, http.StatusBadRequest, "Material unit is required")
		}
		if payload.Quantity != nil && *payload.Quantity < 0 {
			return apiError(e, http.StatusBadRequest, "Quantity cannot be negative")
		}

		materialsCol, err := app.FindCollectionByNameOrId("materials")
		if err != nil {
			log.Printf("materials: could not find materials collection: %v", err)
			return apiError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		rec := core.NewRecord(materialsCol)
		applyMaterialPayload(rec, payload)
		if err := app.Save(rec); err != nil {
			log.Printf("materials: could not save material: %v", err)
			return apiError(e, http.StatusBadRequest, "Could not save material")
		}

		writeAudit(app, e, "create", "materials", rec.Id, "Created material "+rec.GetString("name"))
		return e.JSON(http.StatusCreated, materialResponse(rec))
	}
}

func HandleMaterialUpdate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := requireRole(e, "admin", "manager", "storekeeper"); err != nil {
			return err
		}

		rec, err := app.FindRecordById("materials", e.Request.PathValue("id"))
		if err != nil {
			return apiError(e, http.StatusNotFound, "Material not found")
		}

		var payload materialPayload
		if err := e.BindBody(&payload); err != nil {
			return apiError(e, http.StatusBadRequest, "Invalid request body")
		}
		if payload.Quantity != nil && *payload.Quantity < 0 {
			return apiError(e, http.StatusBadRequest, "Quantity cannot be negative")
		}

		applyMaterialPayload(rec, payload)
		if err := app.Save(rec); err != nil {
			log.Printf("materials: could not update material %s: %v", rec.Id, err)
			return apiError(e, http.StatusBadRequest, "Could not update material")
		}

		writeAudit(app, e, "update", "materials", rec.Id, "Updated material "+rec.GetString("name"))
		return e.JSON(http.StatusOK, materialResponse(rec))
	}
}

func HandleMaterialDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := requireRole(e, "admin", "manager"); err != nil {
			return err
		}

		rec, err := app.FindRecordById("materials", e.Request.PathValue("id"))
		if err != nil {
			return apiError(e, http.StatusNotFound, "Material not found")
		}

		name := rec.GetString("name")
		if err := app.Delete(rec); err != nil {
			log.Printf("materials: could not delete material %s: %v", rec.Id, err)
			return apiError(e, http.StatusInternalServerError, "Could not delete material")
		}

		writeAudit(app, e, "delete", "materials", rec.Id, "Deleted material "+name)
		return e.JSON(http.StatusOK, map[string]any{"deleted": true})
	}
}

// HandleMaterialExportExcel generates and downloads the inventory workbook.
func HandleMaterialExportExcel(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		records, err := app.FindAllRecords("materials")
		if err != nil {
			log.Printf("material_export: could not query materials: %v", err)
			return apiError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		storeNames := map[string]string{}
		if stores, err := app.FindAllRecords("stores"); err == nil {
			for _, s := range stores {
				storeNames[s.Id] = s.GetString("name")
			}
		}

		rows := make([]services.MaterialExportRow, 0, len(records))
		for _, rec := range records {
			quantity := rec.GetFloat("quantity")
			reorderLevel := rec.GetFloat("reorder_level")
			rows = append(rows, services.MaterialExportRow{
				Name:         rec.GetString("name"),
				Code:         rec.GetString("code"),
				Unit:         rec.GetString("unit"),
				StoreName:    storeNames[rec.GetString("store")],
				Quantity:     quantity,
				ReorderLevel: reorderLevel,
				UnitPrice:    rec.GetFloat("unit_price"),
				Status:       services.StockStatus(quantity, reorderLevel),
			})
		}

		xlsxBytes, err := services.GenerateMaterialsExcel(rows)
		if err != nil {
			log.Printf("material_export: failed to generate: %v", err)
			return apiError(e, http.StatusInternalServerError, "Failed to generate Excel file")
		}

		filename := fmt.Sprintf("Materials_%d.xlsx", time.Now().Year())

		e.Response.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
		e.Response.Write(xlsxBytes)
		return nil
	}
}
