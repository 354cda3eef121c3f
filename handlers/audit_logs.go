package handlers

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"wbes/services"
)

func auditLogResponse(rec *core.Record, userNames map[string]string) map[string]any {
	userID := rec.GetString("user")
	return map[string]any{
		"id":             rec.Id,
		"userId":         userID,
		"userName":       userNames[userID],
		"action":         rec.GetString("action"),
		"collectionName": rec.GetString("collection_name"),
		"recordId":       rec.GetString("record_id"),
		"detail":         rec.GetString("detail"),
		"created":        rec.GetString("created"),
	}
}

func userNameIndex(app *pocketbase.PocketBase) map[string]string {
	names := map[string]string{}
	users, err := app.FindAllRecords("staff")
	if err != nil {
		log.Printf("audit_logs: could not query users: %v", err)
		return names
	}
	for _, u := range users {
		names[u.Id] = u.GetString("name")
	}
	return names
}

// HandleAuditLogList returns the audit trail, newest first, paginated.
func HandleAuditLogList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := requireRole(e, "admin", "manager"); err != nil {
			return err
		}

		records, err := app.FindRecordsByFilter("audit_logs", "id != ''", "-created", 0, 0)
		if err != nil {
			log.Printf("audit_logs: could not query audit logs: %v", err)
			return apiError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		page, perPage := pageParams(e)
		pagination := services.Paginate(len(records), page, perPage)
		start, end := pagination.PageBounds()

		userNames := userNameIndex(app)
		logs := make([]map[string]any, 0, end-start)
		for _, rec := range records[start:end] {
			logs = append(logs, auditLogResponse(rec, userNames))
		}
		return e.JSON(http.StatusOK, map[string]any{
			"logs":       logs,
			"pagination": pagination,
		})
	}
}

// HandleAuditLogExportExcel generates and downloads the audit trail workbook.
func HandleAuditLogExportExcel(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := requireRole(e, "admin", "manager"); err != nil {
			return err
		}

		records, err := app.FindRecordsByFilter("audit_logs", "id != ''", "-created", 0, 0)
		if err != nil {
			log.Printf("audit_export: could not query audit logs: %v", err)
			return apiError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		userNames := userNameIndex(app)
		rows := make([]services.AuditLogExportRow, 0, len(records))
		for _, rec := range records {
			when := rec.GetString("created")
			if dt := rec.GetDateTime("created"); !dt.IsZero() {
				when = dt.Time().Format("02 Jan 2006 15:04")
			}
			rows = append(rows, services.AuditLogExportRow{
				Timestamp:  when,
				UserName:   userNames[rec.GetString("user")],
				Action:     rec.GetString("action"),
				Collection: rec.GetString("collection_name"),
				RecordID:   rec.GetString("record_id"),
				Detail:     rec.GetString("detail"),
			})
		}

		xlsxBytes, err := services.GenerateAuditLogExcel(rows)
		if err != nil {
			log.Printf("audit_export: failed to generate: %v", err)
			return apiError(e, http.StatusInternalServerError, "Failed to generate Excel file")
		}

		filename := fmt.Sprintf("AuditLog_%d.xlsx", time.Now().Year())

		e.Response.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
		e.Response.Write(xlsxBytes)
		return nil
	}
}
