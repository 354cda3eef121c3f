package services

import (
	"context"
	"fmt"
	"log"
	"math"
	"strconv"
	"sync"
	"time"
)

// ── Input entities ───────────────────────────────────────────────────────
//
// The aggregator works on lightweight snapshots of the backend collections
// rather than on storage records, so it stays pure and unit-testable.
// Reference and monetary fields are `any` on purpose: the backend may hand
// back a bare id or an embedded object for a relation, and a number, string
// or nothing at all for money. Normalization happens here, in one place.

type Lead struct {
	ID        string
	ProjectID string
}

type Quotation struct {
	ID         string
	Lead       any
	Status     string
	GrandTotal any
}

type Revision struct {
	ID         string
	Quotation  string
	Status     string
	GrandTotal any
}

type Project struct {
	ID     string
	Status string
}

type Variation struct {
	ID             string
	Status         string
	AdditionalCost any
}

// SiteVisit is a field-inspection record. A zero VisitedAt means the record
// carries no timestamp and is skipped by all counters.
type SiteVisit struct {
	ID        string
	VisitedAt time.Time
	Location  string
}

// CollectionSource supplies the raw collections the dashboard is built from.
// The five list methods are the primary fetches; the two per-entity methods
// are the site-visit fan-outs.
type CollectionSource interface {
	Leads(ctx context.Context) ([]Lead, error)
	Quotations(ctx context.Context) ([]Quotation, error)
	Revisions(ctx context.Context) ([]Revision, error)
	Projects(ctx context.Context) ([]Project, error)
	Variations(ctx context.Context) ([]Variation, error)
	SiteVisitsForLead(ctx context.Context, leadID string) ([]SiteVisit, error)
	SiteVisitsForProject(ctx context.Context, projectID string) ([]SiteVisit, error)
}

// AggregationError reports the failure of one of the five primary collection
// fetches. The dashboard must not be rendered from a partial snapshot, so a
// primary failure aborts the whole aggregation; the caller shows a retry
// affordance instead.
type AggregationError struct {
	Collection string
	Err        error
}

func (e *AggregationError) Error() string {
	return fmt.Sprintf("aggregate: fetch %s: %v", e.Collection, e.Err)
}

func (e *AggregationError) Unwrap() error { return e.Err }

// ── Snapshot ─────────────────────────────────────────────────────────────

type SiteVisitStats struct {
	Total       int     `json:"total"`
	ThisMonth   int     `json:"thisMonth"`
	LastMonth   int     `json:"lastMonth"`
	MonthChange float64 `json:"monthChange"`
}

type LeadStats struct {
	Total                 int     `json:"total"`
	WithSiteVisits        int     `json:"withSiteVisits"`
	WithQuotations        int     `json:"withQuotations"`
	WithBoth              int     `json:"withBoth"`
	Converted             int     `json:"converted"`
	NoActivity            int     `json:"noActivity"`
	WithSiteVisitsPercent float64 `json:"withSiteVisitsPercent"`
	WithQuotationsPercent float64 `json:"withQuotationsPercent"`
	ConvertedPercent      float64 `json:"convertedPercent"`
	NoActivityPercent     float64 `json:"noActivityPercent"`
}

type QuotationStats struct {
	Total           int     `json:"total"`
	Draft           int     `json:"draft"`
	Pending         int     `json:"pending"`
	Approved        int     `json:"approved"`
	Rejected        int     `json:"rejected"`
	ApprovedPercent float64 `json:"approvedPercent"`
	TotalValue      float64 `json:"totalValue"`
}

type RevisionStats struct {
	Total           int     `json:"total"`
	Pending         int     `json:"pending"`
	Approved        int     `json:"approved"`
	Rejected        int     `json:"rejected"`
	ApprovedPercent float64 `json:"approvedPercent"`
	TotalValue      float64 `json:"totalValue"`
}

type ProjectStats struct {
	Total         int     `json:"total"`
	Active        int     `json:"active"`
	Completed     int     `json:"completed"`
	OnHold        int     `json:"onHold"`
	ActivePercent float64 `json:"activePercent"`
}

type VariationStats struct {
	Total           int     `json:"total"`
	Pending         int     `json:"pending"`
	Approved        int     `json:"approved"`
	Rejected        int     `json:"rejected"`
	ApprovedPercent float64 `json:"approvedPercent"`
	AdditionalCost  float64 `json:"additionalCost"`
}

// DashboardSnapshot is the immutable result of one aggregation run,
// consumed purely for rendering.
type DashboardSnapshot struct {
	GeneratedAt time.Time      `json:"generatedAt"`
	SiteVisits  SiteVisitStats `json:"siteVisits"`
	Leads       LeadStats      `json:"leads"`
	Quotations  QuotationStats `json:"quotations"`
	Revisions   RevisionStats  `json:"revisions"`
	Projects    ProjectStats   `json:"projects"`
	Variations  VariationStats `json:"variations"`
}

// ── Aggregation ──────────────────────────────────────────────────────────

// Aggregate fetches the five primary collections concurrently, fans out the
// per-lead and per-project site-visit fetches (also concurrently), and
// reduces everything into a DashboardSnapshot relative to the wall-clock
// time `now`.
//
// A failed primary fetch yields an *AggregationError; a failed fan-out fetch
// degrades to an empty visit list for that one lead/project and is logged.
func Aggregate(ctx context.Context, src CollectionSource, now time.Time) (*DashboardSnapshot, error) {
	var (
		leads      []Lead
		quotations []Quotation
		revisions  []Revision
		projects   []Project
		variations []Variation
	)

	primaries := []struct {
		name  string
		fetch func() error
	}{
		{"leads", func() (err error) { leads, err = src.Leads(ctx); return }},
		{"quotations", func() (err error) { quotations, err = src.Quotations(ctx); return }},
		{"revisions", func() (err error) { revisions, err = src.Revisions(ctx); return }},
		{"projects", func() (err error) { projects, err = src.Projects(ctx); return }},
		{"variations", func() (err error) { variations, err = src.Variations(ctx); return }},
	}

	errs := make([]error, len(primaries))
	var wg sync.WaitGroup
	for i, p := range primaries {
		wg.Add(1)
		go func(i int, fetch func() error) {
			defer wg.Done()
			errs[i] = fetch()
		}(i, p.fetch)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, &AggregationError{Collection: primaries[i].name, Err: err}
		}
	}

	leadVisits := gatherSiteVisits(ctx, leads, projects, src)

	snap := &DashboardSnapshot{GeneratedAt: now}
	snap.SiteVisits = countSiteVisits(leadVisits.all(), now)
	snap.Leads = categorizeLeads(leads, quotations, leadVisits.byLead)
	snap.Quotations = rollupQuotations(quotations)
	snap.Revisions = rollupRevisions(revisions)
	snap.Projects = rollupProjects(projects)
	snap.Variations = rollupVariations(variations)
	return snap, nil
}

// siteVisitSets holds fan-out results correlated back to their owner by id.
type siteVisitSets struct {
	byLead    map[string][]SiteVisit
	byProject map[string][]SiteVisit
}

func (s siteVisitSets) all() []SiteVisit {
	var out []SiteVisit
	for _, visits := range s.byLead {
		out = append(out, visits...)
	}
	for _, visits := range s.byProject {
		out = append(out, visits...)
	}
	return out
}

// gatherSiteVisits issues one fetch per lead and per project, all
// concurrently. Results are keyed by owner id, never by completion order.
// Individual failures are swallowed into an empty list so one bad fetch
// cannot take down the dashboard.
func gatherSiteVisits(ctx context.Context, leads []Lead, projects []Project, src CollectionSource) siteVisitSets {
	type fanoutResult struct {
		owner  string
		visits []SiteVisit
		err    error
	}

	leadResults := make([]fanoutResult, len(leads))
	projectResults := make([]fanoutResult, len(projects))

	var wg sync.WaitGroup
	for i, lead := range leads {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			visits, err := src.SiteVisitsForLead(ctx, id)
			leadResults[i] = fanoutResult{owner: id, visits: visits, err: err}
		}(i, lead.ID)
	}
	for i, project := range projects {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			visits, err := src.SiteVisitsForProject(ctx, id)
			projectResults[i] = fanoutResult{owner: id, visits: visits, err: err}
		}(i, project.ID)
	}
	wg.Wait()

	sets := siteVisitSets{
		byLead:    make(map[string][]SiteVisit, len(leads)),
		byProject: make(map[string][]SiteVisit, len(projects)),
	}
	for _, res := range leadResults {
		if res.err != nil {
			log.Printf("dashboard: site visits for lead %s: %v", res.owner, res.err)
			sets.byLead[res.owner] = nil
			continue
		}
		sets.byLead[res.owner] = res.visits
	}
	for _, res := range projectResults {
		if res.err != nil {
			log.Printf("dashboard: site visits for project %s: %v", res.owner, res.err)
			sets.byProject[res.owner] = nil
			continue
		}
		sets.byProject[res.owner] = res.visits
	}
	return sets
}

// countSiteVisits classifies visits into calendar-month buckets relative to
// now. The window is a strict calendar-month match, not a rolling 30 days.
// Visits without a timestamp are skipped entirely.
func countSiteVisits(visits []SiteVisit, now time.Time) SiteVisitStats {
	var stats SiteVisitStats

	// AddDate normalizes month-end dates (Mar 31 minus a month is "Feb 31",
	// i.e. early March), so the previous month is derived from its first day.
	year, month, _ := now.Date()
	prev := time.Date(year, month-1, 1, 0, 0, 0, 0, now.Location())
	for _, v := range visits {
		if v.VisitedAt.IsZero() {
			continue
		}
		stats.Total++
		if sameCalendarMonth(v.VisitedAt, now) {
			stats.ThisMonth++
		} else if sameCalendarMonth(v.VisitedAt, prev) {
			stats.LastMonth++
		}
	}
	stats.MonthChange = MonthChange(stats.ThisMonth, stats.LastMonth)
	return stats
}

func sameCalendarMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}

// categorizeLeads derives the five lead activity counts. The buckets are not
// mutually exclusive except noActivity, which requires all three activity
// flags to be false.
func categorizeLeads(leads []Lead, quotations []Quotation, visitsByLead map[string][]SiteVisit) LeadStats {
	quotedLeads := make(map[string]bool, len(quotations))
	for _, q := range quotations {
		if key := refKey(q.Lead); key != "" {
			quotedLeads[key] = true
		}
	}

	stats := LeadStats{Total: len(leads)}
	for _, lead := range leads {
		hasVisits := len(visitsByLead[lead.ID]) > 0
		hasQuotations := quotedLeads[lead.ID]
		converted := lead.ProjectID != ""

		if hasVisits {
			stats.WithSiteVisits++
		}
		if hasQuotations {
			stats.WithQuotations++
		}
		if hasVisits && hasQuotations {
			stats.WithBoth++
		}
		if converted {
			stats.Converted++
		}
		if !hasVisits && !hasQuotations && !converted {
			stats.NoActivity++
		}
	}

	stats.WithSiteVisitsPercent = Percent(stats.WithSiteVisits, stats.Total)
	stats.WithQuotationsPercent = Percent(stats.WithQuotations, stats.Total)
	stats.ConvertedPercent = Percent(stats.Converted, stats.Total)
	stats.NoActivityPercent = Percent(stats.NoActivity, stats.Total)
	return stats
}

func rollupQuotations(quotations []Quotation) QuotationStats {
	stats := QuotationStats{Total: len(quotations)}
	for _, q := range quotations {
		switch q.Status {
		case "draft":
			stats.Draft++
		case "pending":
			stats.Pending++
		case "approved":
			stats.Approved++
		case "rejected":
			stats.Rejected++
		}
		stats.TotalValue += moneyValue(q.GrandTotal)
	}
	stats.ApprovedPercent = Percent(stats.Approved, stats.Total)
	return stats
}

func rollupRevisions(revisions []Revision) RevisionStats {
	stats := RevisionStats{Total: len(revisions)}
	for _, r := range revisions {
		switch r.Status {
		case "pending":
			stats.Pending++
		case "approved":
			stats.Approved++
		case "rejected":
			stats.Rejected++
		}
		stats.TotalValue += moneyValue(r.GrandTotal)
	}
	stats.ApprovedPercent = Percent(stats.Approved, stats.Total)
	return stats
}

func rollupProjects(projects []Project) ProjectStats {
	stats := ProjectStats{Total: len(projects)}
	for _, p := range projects {
		switch p.Status {
		case "active":
			stats.Active++
		case "completed":
			stats.Completed++
		case "on_hold":
			stats.OnHold++
		}
	}
	stats.ActivePercent = Percent(stats.Active, stats.Total)
	return stats
}

func rollupVariations(variations []Variation) VariationStats {
	stats := VariationStats{Total: len(variations)}
	for _, v := range variations {
		switch v.Status {
		case "pending":
			stats.Pending++
		case "approved":
			stats.Approved++
		case "rejected":
			stats.Rejected++
		}
		stats.AdditionalCost += moneyValue(v.AdditionalCost)
	}
	stats.ApprovedPercent = Percent(stats.Approved, stats.Total)
	return stats
}

// ── Arithmetic helpers ───────────────────────────────────────────────────

// Percent returns part/total*100 rounded to one decimal place, defined as 0
// for an empty total so an empty collection never yields NaN or Infinity.
func Percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return round1(float64(part) / float64(total) * 100)
}

// MonthChange returns the percent change from previous to current. A zero
// previous month is defined as 100 when current is positive and 0 otherwise;
// this is the documented business rule, not a generic division guard.
func MonthChange(current, previous int) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return round1(float64(current-previous) / float64(previous) * 100)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// refKey normalizes a relation reference to its id string. The backend may
// hand back a bare id or an embedded object carrying "id" or "_id".
func refKey(ref any) string {
	switch v := ref.(type) {
	case nil:
		return ""
	case string:
		return v
	case map[string]any:
		if id, ok := v["id"].(string); ok {
			return id
		}
		if id, ok := v["_id"].(string); ok {
			return id
		}
		return ""
	default:
		return ""
	}
}

// moneyValue coerces a monetary field to float64, treating missing or
// non-numeric values as zero.
func moneyValue(v any) float64 {
	switch n := v.(type) {
	case nil:
		return 0
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}
