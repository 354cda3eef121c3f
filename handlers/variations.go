package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

func variationResponse(rec *core.Record) map[string]any {
	return map[string]any{
		"id":                       rec.Id,
		"projectId":                rec.GetString("project"),
		"title":                    rec.GetString("title"),
		"description":              rec.GetString("description"),
		"additionalCost":           rec.GetFloat("additional_cost"),
		"managementApprovalStatus": rec.GetString("management_approval_status"),
		"created":                  rec.GetString("created"),
	}
}

func HandleProjectVariationList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		projectID := e.Request.PathValue("id")
		if _, err := app.FindRecordById("projects", projectID); err != nil {
			return apiError(e, http.StatusNotFound, "Project not found")
		}

		records, err := app.FindRecordsByFilter(
			"project_variations",
			"project = {:projectId}",
			"-created",
			0,
			0,
			map[string]any{"projectId": projectID},
		)
		if err != nil {
			log.Printf("variations: could not query variations for %s: %v", projectID, err)
			return apiError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		items := make([]map[string]any, 0, len(records))
		for _, rec := range records {
			items = append(items, variationResponse(rec))
		}
		return e.JSON(http.StatusOK, items)
	}
}

func HandleProjectVariationCreate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		project, err := app.FindRecordById("projects", e.Request.PathValue("id"))
		if err != nil {
			return apiError(e, http.StatusNotFound, "Project not found")
		}

		var payload struct {
			Title          string  `json:"title"`
			Description    string  `json:"description"`
			AdditionalCost float64 `json:"additionalCost"`
		}
		if err := e.BindBody(&payload); err != nil {
			return apiError(e, http.StatusBadRequest, "Invalid request body")
		}
		if strings.TrimSpace(payload.Title) == "" {
			return apiError(e, http.StatusBadRequest, "Variation title is required")
		}

		variationsCol, err := app.FindCollectionByNameOrId("project_variations")
		if err != nil {
			log.Printf("variations: could not find project_variations collection: %v", err)
			return apiError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		rec := core.NewRecord(variationsCol)
		rec.Set("project", project.Id)
		rec.Set("title", strings.TrimSpace(payload.Title))
		rec.Set("description", strings.TrimSpace(payload.Description))
		rec.Set("additional_cost", payload.AdditionalCost)
		rec.Set("management_approval_status", "pending")
		if err := app.Save(rec); err != nil {
			log.Printf("variations: could not save variation: %v", err)
			return apiError(e, http.StatusBadRequest, "Could not save variation")
		}

		writeAudit(app, e, "create", "project_variations", rec.Id,
			fmt.Sprintf("Created variation %q on project %s", rec.GetString("title"), project.GetString("name")))
		return e.JSON(http.StatusCreated, variationResponse(rec))
	}
}

var variationTransitions = map[string][]string{
	"pending": {"approved", "rejected"},
}

func HandleVariationApproval(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		rec, err := app.FindRecordById("project_variations", e.Request.PathValue("id"))
		if err != nil {
			return apiError(e, http.StatusNotFound, "Variation not found")
		}
		if err := approvalTransition(app, e, rec, "project_variations", variationTransitions); err != nil {
			return err
		}
		return e.JSON(http.StatusOK, variationResponse(rec))
	}
}

func HandleVariationDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := requireRole(e, "admin", "manager"); err != nil {
			return err
		}

		rec, err := app.FindRecordById("project_variations", e.Request.PathValue("id"))
		if err != nil {
			return apiError(e, http.StatusNotFound, "Variation not found")
		}

		title := rec.GetString("title")
		if err := app.Delete(rec); err != nil {
			log.Printf("variations: could not delete variation %s: %v", rec.Id, err)
			return apiError(e, http.StatusInternalServerError, "Could not delete variation")
		}

		writeAudit(app, e, "delete", "project_variations", rec.Id, "Deleted variation "+title)
		return e.JSON(http.StatusOK, map[string]any{"deleted": true})
	}
}
