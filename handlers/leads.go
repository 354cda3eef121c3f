package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

func leadResponse(rec *core.Record) map[string]any {
	return map[string]any{
		"id":           rec.Id,
		"customerName": rec.GetString("customer_name"),
		"projectTitle": rec.GetString("project_title"),
		"contactPhone": rec.GetString("contact_phone"),
		"contactEmail": rec.GetString("contact_email"),
		"source":       rec.GetString("source"),
		"projectId":    rec.GetString("project"),
		"notes":        rec.GetString("notes"),
		"created":      rec.GetString("created"),
	}
}

func HandleLeadList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		records, err := app.FindAllRecords("leads")
		if err != nil {
			log.Printf("leads: could not query leads: %v", err)
			return apiError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		items := make([]map[string]any, 0, len(records))
		for _, rec := range records {
			items = append(items, leadResponse(rec))
		}
		return e.JSON(http.StatusOK, items)
	}
}

func HandleLeadView(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		rec, err := app.FindRecordById("leads", e.Request.PathValue("id"))
		if err != nil {
			return apiError(e, http.StatusNotFound, "Lead not found")
		}
		return e.JSON(http.StatusOK, leadResponse(rec))
	}
}

type leadPayload struct {
	CustomerName *string `json:"customerName"`
	ProjectTitle *string `json:"projectTitle"`
	ContactPhone *string `json:"contactPhone"`
	ContactEmail *string `json:"contactEmail"`
	Source       *string `json:"source"`
	Notes        *string `json:"notes"`
}

func applyLeadPayload(rec *core.Record, payload leadPayload) {
	if payload.CustomerName != nil {
		rec.Set("customer_name", strings.TrimSpace(*payload.CustomerName))
	}
	if payload.ProjectTitle != nil {
		rec.Set("project_title", strings.TrimSpace(*payload.ProjectTitle))
	}
	if payload.ContactPhone != nil {
		rec.Set("contact_phone", strings.TrimSpace(*payload.ContactPhone))
	}
	if payload.ContactEmail != nil {
		rec.Set("contact_email", strings.TrimSpace(*payload.ContactEmail))
	}
	if payload.Source != nil {
		rec.Set("source", *payload.Source)
	}
	if payload.Notes != nil {
		rec.Set("notes", *payload.Notes)
	}
}

func HandleLeadCreate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var payload leadPayload
		if err := e.BindBody(&payload); err != nil {
			return apiError(e, http.StatusBadRequest, "Invalid request body")
		}
		if payload.CustomerName == nil || strings.TrimSpace(*payload.CustomerName) == "" {
			return apiError(e, http.StatusBadRequest, "Customer name is required")
		}

		leadsCol, err := app.FindCollectionByNameOrId("leads")
		if err != nil {
			log.Printf("leads: could not find leads collection: %v", err)
			return apiError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		rec := core.NewRecord(leadsCol)
		applyLeadPayload(rec, payload)
		if err := app.Save(rec); err != nil {
			log.Printf("leads: could not save lead: %v", err)
			return apiError(e, http.StatusBadRequest, "Could not save lead")
		}

		writeAudit(app, e, "create", "leads", rec.Id, "Created lead "+rec.GetString("customer_name"))
		return e.JSON(http.StatusCreated, leadResponse(rec))
	}
}

func HandleLeadUpdate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		rec, err := app.FindRecordById("leads", e.Request.PathValue("id"))
		if err != nil {
			return apiError(e, http.StatusNotFound, "Lead not found")
		}

		var payload leadPayload
		if err := e.BindBody(&payload); err != nil {
			return apiError(e, http.StatusBadRequest, "Invalid request body")
		}
		if payload.CustomerName != nil && strings.TrimSpace(*payload.CustomerName) == "" {
			return apiError(e, http.StatusBadRequest, "Customer name must not be blank")
		}

		applyLeadPayload(rec, payload)
		if err := app.Save(rec); err != nil {
			log.Printf("leads: could not update lead %s: %v", rec.Id, err)
			return apiError(e, http.StatusBadRequest, "Could not update lead")
		}

		writeAudit(app, e, "update", "leads", rec.Id, "Updated lead "+rec.GetString("customer_name"))
		return e.JSON(http.StatusOK, leadResponse(rec))
	}
}

func HandleLeadDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := requireRole(e, "admin", "manager"); err != nil {
			return err
		}

		rec, err := app.FindRecordById("leads", e.Request.PathValue("id"))
		if err != nil {
			return apiError(e, http.StatusNotFound, "Lead not found")
		}
		if rec.GetString("project") != "" {
			return apiError(e, http.StatusConflict, "Converted leads cannot be deleted")
		}

		name := rec.GetString("customer_name")
		if err := app.Delete(rec); err != nil {
			log.Printf("leads: could not delete lead %s: %v", rec.Id, err)
			return apiError(e, http.StatusInternalServerError, "Could not delete lead")
		}

		writeAudit(app, e, "delete", "leads", rec.Id, "Deleted lead "+name)
		return e.JSON(http.StatusOK, map[string]any{"deleted": true})
	}
}

// HandleLeadConvert turns a lead into a project. The lead keeps a relation
// to the created project, which is what marks it converted on the dashboard.
func HandleLeadConvert(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := requireRole(e, "admin", "manager", "estimator"); err != nil {
			return err
		}

		lead, err := app.FindRecordById("leads", e.Request.PathValue("id"))
		if err != nil {
			return apiError(e, http.StatusNotFound, "Lead not found")
		}
		if lead.GetString("project") != "" {
			return apiError(e, http.StatusConflict, "Lead is already converted")
		}

		var payload struct {
			ProjectName     string `json:"projectName"`
			ReferenceNumber string `json:"referenceNumber"`
		}
		if err := e.BindBody(&payload); err != nil {
			return apiError(e, http.StatusBadRequest, "Invalid request body")
		}

		projectName := strings.TrimSpace(payload.ProjectName)
		if projectName == "" {
			projectName = lead.GetString("project_title")
		}
		if projectName == "" {
			return apiError(e, http.StatusBadRequest, "Project name is required")
		}

		projectsCol, err := app.FindCollectionByNameOrId("projects")
		if err != nil {
			log.Printf("leads: could not find projects collection: %v", err)
			return apiError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		project := core.NewRecord(projectsCol)
		project.Set("name", projectName)
		project.Set("client_name", lead.GetString("customer_name"))
		project.Set("reference_number", strings.TrimSpace(payload.ReferenceNumber))
		project.Set("status", "active")
		if err := app.Save(project); err != nil {
			log.Printf("leads: could not create project from lead %s: %v", lead.Id, err)
			return apiError(e, http.StatusBadRequest, "Could not create project")
		}

		lead.Set("project", project.Id)
		if err := app.Save(lead); err != nil {
			log.Printf("leads: could not link lead %s to project %s: %v", lead.Id, project.Id, err)
			return apiError(e, http.StatusInternalServerError, "Could not link lead to project")
		}

		writeAudit(app, e, "convert", "leads", lead.Id,
			fmt.Sprintf("Converted lead %s to project %s", lead.GetString("customer_name"), projectName))
		return e.JSON(http.StatusCreated, map[string]any{
			"lead":    leadResponse(lead),
			"project": projectResponse(project),
		})
	}
}
