package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

func projectResponse(rec *core.Record) map[string]any {
	return map[string]any{
		"id":              rec.Id,
		"name":            rec.GetString("name"),
		"clientName":      rec.GetString("client_name"),
		"referenceNumber": rec.GetString("reference_number"),
		"location":        rec.GetString("location"),
		"status":          rec.GetString("status"),
		"startDate":       dateOnly(rec.GetString("start_date")),
		"endDate":         dateOnly(rec.GetString("end_date")),
		"created":         rec.GetString("created"),
	}
}

var projectStatuses = []string{"active", "completed", "on_hold"}

func HandleProjectList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		statusFilter := e.Request.URL.Query().Get("status")

		var (
			records []*core.Record
			err     error
		)
		if statusFilter != "" {
			records, err = app.FindRecordsByFilter(
				"projects",
				"status = {:status}",
				"-created",
				0,
				0,
				map[string]any{"status": statusFilter},
			)
		} else {
			records, err = app.FindAllRecords("projects")
		}
		if err != nil {
			log.Printf("projects: could not query projects: %v", err)
			return apiError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		items := make([]map[string]any, 0, len(records))
		for _, rec := range records {
			items = append(items, projectResponse(rec))
		}
		return e.JSON(http.StatusOK, items)
	}
}

func HandleProjectView(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		rec, err := app.FindRecordById("projects", e.Request.PathValue("id"))
		if err != nil {
			return apiError(e, http.StatusNotFound, "Project not found")
		}
		return e.JSON(http.StatusOK, projectResponse(rec))
	}
}

type projectPayload struct {
	Name            *string `json:"name"`
	ClientName      *string `json:"clientName"`
	ReferenceNumber *string `json:"referenceNumber"`
	Location        *string `json:"location"`
	Status          *string `json:"status"`
	StartDate       *string `json:"startDate"`
	EndDate         *string `json:"endDate"`
}

func applyProjectPayload(rec *core.Record, payload projectPayload) error {
	if payload.Name != nil {
		rec.Set("name", strings.TrimSpace(*payload.Name))
	}
	if payload.ClientName != nil {
		rec.Set("client_name", strings.TrimSpace(*payload.ClientName))
	}
	if payload.ReferenceNumber != nil {
		rec.Set("reference_number", strings.TrimSpace(*payload.ReferenceNumber))
	}
	if payload.Location != nil {
		rec.Set("location", strings.TrimSpace(*payload.Location))
	}
	if payload.Status != nil {
		if !contains(projectStatuses, *payload.Status) {
			return &statusError{*payload.Status}
		}
		rec.Set("status", *payload.Status)
	}
	if payload.StartDate != nil {
		rec.Set("start_date", *payload.StartDate)
	}
	if payload.EndDate != nil {
		rec.Set("end_date", *payload.EndDate)
	}
	return nil
}

type statusError struct {
	status string
}

func (e *statusError) Error() string {
	return "invalid status: " + e.status
}

func HandleProjectCreate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var payload projectPayload
		if err := e.BindBody(&payload); err != nil {
			return apiError(e, http.StatusBadRequest, "Invalid request body")
		}
		if payload.Name == nil || strings.TrimSpace(*payload.Name) == "" {
			return apiError(e, http.StatusBadRequest, "Project name is required")
		}

		projectsCol, err := app.FindCollectionByNameOrId("projects")
		if err != nil {
			log.Printf("projects: could not find projects collection: %v", err)
			return apiError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		rec := core.NewRecord(projectsCol)
		rec.Set("status", "active")
		if err := applyProjectPayload(rec, payload); err != nil {
			return apiError(e, http.StatusBadRequest, err.Error())
		}
		if err := app.Save(rec); err != nil {
			log.Printf("projects: could not save project: %v", err)
			return apiError(e, http.StatusBadRequest, "Could not save project")
		}

		writeAudit(app, e, "create", "projects", rec.Id, "Created project "+rec.GetString("name"))
		return e.JSON(http.StatusCreated, projectResponse(rec))
	}
}

func HandleProjectUpdate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		rec, err := app.FindRecordById("projects", e.Request.PathValue("id"))
		if err != nil {
			return apiError(e, http.StatusNotFound, "Project not found")
		}

		var payload projectPayload
		if err := e.BindBody(&payload); err != nil {
			return apiError(e, http.StatusBadRequest, "Invalid request body")
		}
		if err := applyProjectPayload(rec, payload); err != nil {
			return apiError(e, http.StatusBadRequest, err.Error())
		}
		if err := app.Save(rec); err != nil {
			log.Printf("projects: could not update project %s: %v", rec.Id, err)
			return apiError(e, http.StatusBadRequest, "Could not update project")
		}

		writeAudit(app, e, "update", "projects", rec.Id, "Updated project "+rec.GetString("name"))
		return e.JSON(http.StatusOK, projectResponse(rec))
	}
}

func HandleProjectDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := requireRole(e, "admin", "manager"); err != nil {
			return err
		}

		rec, err := app.FindRecordById("projects", e.Request.PathValue("id"))
		if err != nil {
			return apiError(e, http.StatusNotFound, "Project not found")
		}

		name := rec.GetString("name")
		if err := app.Delete(rec); err != nil {
			log.Printf("projects: could not delete project %s: %v", rec.Id, err)
			return apiError(e, http.StatusInternalServerError, "Could not delete project")
		}

		writeAudit(app, e, "delete", "projects", rec.Id, "Deleted project "+name)
		return e.JSON(http.StatusOK, map[string]any{"deleted": true})
	}
}
