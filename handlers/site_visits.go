package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

func siteVisitResponse(rec *core.Record) map[string]any {
	return map[string]any{
		"id":        rec.Id,
		"leadId":    rec.GetString("lead"),
		"projectId": rec.GetString("project"),
		"visitDate": rec.GetString("visit_date"),
		"location":  rec.GetString("location"),
		"engineer":  rec.GetString("engineer"),
		"notes":     rec.GetString("notes"),
	}
}

func listSiteVisits(app *pocketbase.PocketBase, e *core.RequestEvent, field, ownerID string) error {
	records, err := app.FindRecordsByFilter(
		"site_visits",
		field+" = {:ownerId}",
		"-visit_date",
		0,
		0,
		map[string]any{"ownerId": ownerID},
	)
	if err != nil {
		log.Printf("site_visits: could not query site_visits by %s: %v", field, err)
		return apiError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
	}

	items := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		items = append(items, siteVisitResponse(rec))
	}
	return e.JSON(http.StatusOK, items)
}

func HandleLeadSiteVisitList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		leadID := e.Request.PathValue("id")
		if _, err := app.FindRecordById("leads", leadID); err != nil {
			return apiError(e, http.StatusNotFound, "Lead not found")
		}
		return listSiteVisits(app, e, "lead", leadID)
	}
}

func HandleProjectSiteVisitList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		projectID := e.Request.PathValue("id")
		if _, err := app.FindRecordById("projects", projectID); err != nil {
			return apiError(e, http.StatusNotFound, "Project not found")
		}
		return listSiteVisits(app, e, "project", projectID)
	}
}

func HandleLeadSiteVisitCreate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		lead, err := app.FindRecordById("leads", e.Request.PathValue("id"))
		if err != nil {
			return apiError(e, http.StatusNotFound, "Lead not found")
		}

		var payload struct {
			VisitDate string `json:"visitDate"`
			Location  string `json:"location"`
			Engineer  string `json:"engineer"`
			Notes     string `json:"notes"`
		}
		if err := e.BindBody(&payload); err != nil {
			return apiError(e, http.StatusBadRequest, "Invalid request body")
		}
		if strings.TrimSpace(payload.VisitDate) == "" {
			return apiError(e, http.StatusBadRequest, "Visit date is required")
		}

		visitsCol, err := app.FindCollectionByNameOrId("site_visits")
		if err != nil {
			log.Printf("site_visits: could not find site_visits collection: %v", err)
			return apiError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		rec := core.NewRecord(visitsCol)
		rec.Set("lead", lead.Id)
		rec.Set("visit_date", payload.VisitDate)
		rec.Set("location", strings.TrimSpace(payload.Location))
		rec.Set("engineer", strings.TrimSpace(payload.Engineer))
		rec.Set("notes", payload.Notes)
		if err := app.Save(rec); err != nil {
			log.Printf("site_visits: could not save visit for lead %s: %v", lead.Id, err)
			return apiError(e, http.StatusBadRequest, "Could not save site visit")
		}

		writeAudit(app, e, "create", "site_visits", rec.Id, "Logged site visit for "+lead.GetString("customer_name"))
		return e.JSON(http.StatusCreated, siteVisitResponse(rec))
	}
}

func HandleSiteVisitDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := requireRole(e, "admin", "manager", "estimator"); err != nil {
			return err
		}

		rec, err := app.FindRecordById("site_visits", e.Request.PathValue("id"))
		if err != nil {
			return apiError(e, http.StatusNotFound, "Site visit not found")
		}
		if err := app.Delete(rec); err != nil {
			log.Printf("site_visits: could not delete visit %s: %v", rec.Id, err)
			return apiError(e, http.StatusInternalServerError, "Could not delete site visit")
		}

		writeAudit(app, e, "delete", "site_visits", rec.Id, "Deleted site visit")
		return e.JSON(http.StatusOK, map[string]any{"deleted": true})
	}
}
