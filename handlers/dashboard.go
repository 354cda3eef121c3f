package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"wbes/services"
)

// pbCollectionSource feeds the dashboard aggregator from the live
// PocketBase collections.
type pbCollectionSource struct {
	app *pocketbase.PocketBase
}

func (s *pbCollectionSource) Leads(ctx context.Context) ([]services.Lead, error) {
	records, err := s.app.FindAllRecords("leads")
	if err != nil {
		return nil, err
	}
	leads := make([]services.Lead, 0, len(records))
	for _, rec := range records {
		leads = append(leads, services.Lead{
			ID:        rec.Id,
			ProjectID: rec.GetString("project"),
		})
	}
	return leads, nil
}

func (s *pbCollectionSource) Quotations(ctx context.Context) ([]services.Quotation, error) {
	records, err := s.app.FindAllRecords("quotations")
	if err != nil {
		return nil, err
	}
	quotations := make([]services.Quotation, 0, len(records))
	for _, rec := range records {
		quotations = append(quotations, services.Quotation{
			ID:         rec.Id,
			Lead:       rec.GetString("lead"),
			Status:     rec.GetString("management_approval_status"),
			GrandTotal: rec.Get("grand_total"),
		})
	}
	return quotations, nil
}

func (s *pbCollectionSource) Revisions(ctx context.Context) ([]services.Revision, error) {
	records, err := s.app.FindAllRecords("revisions")
	if err != nil {
		return nil, err
	}
	revisions := make([]services.Revision, 0, len(records))
	for _, rec := range records {
		revisions = append(revisions, services.Revision{
			ID:         rec.Id,
			Quotation:  rec.GetString("quotation"),
			Status:     rec.GetString("management_approval_status"),
			GrandTotal: rec.Get("grand_total"),
		})
	}
	return revisions, nil
}

func (s *pbCollectionSource) Projects(ctx context.Context) ([]services.Project, error) {
	records, err := s.app.FindAllRecords("projects")
	if err != nil {
		return nil, err
	}
	projects := make([]services.Project, 0, len(records))
	for _, rec := range records {
		projects = append(projects, services.Project{
			ID:     rec.Id,
			Status: rec.GetString("status"),
		})
	}
	return projects, nil
}

func (s *pbCollectionSource) Variations(ctx context.Context) ([]services.Variation, error) {
	records, err := s.app.FindAllRecords("project_variations")
	if err != nil {
		return nil, err
	}
	variations := make([]services.Variation, 0, len(records))
	for _, rec := range records {
		variations = append(variations, services.Variation{
			ID:             rec.Id,
			Status:         rec.GetString("management_approval_status"),
			AdditionalCost: rec.Get("additional_cost"),
		})
	}
	return variations, nil
}

func (s *pbCollectionSource) SiteVisitsForLead(ctx context.Context, leadID string) ([]services.SiteVisit, error) {
	return s.siteVisitsBy("lead", leadID)
}

func (s *pbCollectionSource) SiteVisitsForProject(ctx context.Context, projectID string) ([]services.SiteVisit, error) {
	return s.siteVisitsBy("project", projectID)
}

func (s *pbCollectionSource) siteVisitsBy(field, ownerID string) ([]services.SiteVisit, error) {
	records, err := s.app.FindRecordsByFilter(
		"site_visits",
		field+" = {:ownerId}",
		"",
		0,
		0,
		map[string]any{"ownerId": ownerID},
	)
	if err != nil {
		return nil, err
	}
	visits := make([]services.SiteVisit, 0, len(records))
	for _, rec := range records {
		visits = append(visits, services.SiteVisit{
			ID:        rec.Id,
			VisitedAt: rec.GetDateTime("visit_date").Time(),
			Location:  rec.GetString("location"),
		})
	}
	return visits, nil
}

// HandleDashboardStats aggregates the dashboard snapshot on demand. A
// primary collection failure is reported as retryable so the UI shows a
// retry affordance instead of a partial dashboard.
func HandleDashboardStats(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		src := &pbCollectionSource{app: app}
		snapshot, err := services.Aggregate(e.Request.Context(), src, time.Now())
		if err != nil {
			var aggErr *services.AggregationError
			if errors.As(err, &aggErr) {
				log.Printf("dashboard: aggregation failed: %v", aggErr)
				return e.JSON(http.StatusBadGateway, map[string]any{
					"error":      "Dashboard data is unavailable. Please retry.",
					"collection": aggErr.Collection,
					"retryable":  true,
				})
			}
			log.Printf("dashboard: unexpected error: %v", err)
			return apiError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}
		return e.JSON(http.StatusOK, snapshot)
	}
}
