package services

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakeSource is a scripted CollectionSource for aggregator tests.
type fakeSource struct {
	leads      []Lead
	quotations []Quotation
	revisions  []Revision
	projects   []Project
	variations []Variation

	visitsByLead    map[string][]SiteVisit
	visitsByProject map[string][]SiteVisit

	failCollection string
	failLeadVisits map[string]error
}

var errFetch = errors.New("connection refused")

func (f *fakeSource) Leads(ctx context.Context) ([]Lead, error) {
	if f.failCollection == "leads" {
		return nil, errFetch
	}
	return f.leads, nil
}

func (f *fakeSource) Quotations(ctx context.Context) ([]Quotation, error) {
	if f.failCollection == "quotations" {
		return nil, errFetch
	}
	return f.quotations, nil
}

func (f *fakeSource) Revisions(ctx context.Context) ([]Revision, error) {
	if f.failCollection == "revisions" {
		return nil, errFetch
	}
	return f.revisions, nil
}

func (f *fakeSource) Projects(ctx context.Context) ([]Project, error) {
	if f.failCollection == "projects" {
		return nil, errFetch
	}
	return f.projects, nil
}

func (f *fakeSource) Variations(ctx context.Context) ([]Variation, error) {
	if f.failCollection == "variations" {
		return nil, errFetch
	}
	return f.variations, nil
}

func (f *fakeSource) SiteVisitsForLead(ctx context.Context, leadID string) ([]SiteVisit, error) {
	if err, ok := f.failLeadVisits[leadID]; ok {
		return nil, err
	}
	return f.visitsByLead[leadID], nil
}

func (f *fakeSource) SiteVisitsForProject(ctx context.Context, projectID string) ([]SiteVisit, error) {
	return f.visitsByProject[projectID], nil
}

// now is fixed mid-month so "last month" is unambiguous.
var testNow = time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)

func TestAggregateSnapshot(t *testing.T) {
	src := &fakeSource{
		leads: []Lead{
			{ID: "l1"},
			{ID: "l2", ProjectID: "p1"},
			{ID: "l3"},
			{ID: "l4"},
		},
		quotations: []Quotation{
			{ID: "q1", Lead: "l1", Status: "approved", GrandTotal: 100000.0},
			{ID: "q2", Lead: map[string]any{"id": "l2"}, Status: "pending", GrandTotal: 50000.0},
			{ID: "q3", Lead: "l1", Status: "draft", GrandTotal: "25000"},
			{ID: "q4", Lead: "missing", Status: "rejected", GrandTotal: nil},
		},
		revisions: []Revision{
			{ID: "r1", Quotation: "q1", Status: "approved", GrandTotal: 110000.0},
			{ID: "r2", Quotation: "q1", Status: "pending", GrandTotal: 115000.0},
		},
		projects: []Project{
			{ID: "p1", Status: "active"},
			{ID: "p2", Status: "completed"},
			{ID: "p3", Status: "on_hold"},
			{ID: "p4", Status: "active"},
		},
		variations: []Variation{
			{ID: "v1", Status: "approved", AdditionalCost: 20000.0},
			{ID: "v2", Status: "pending", AdditionalCost: "bad-number"},
		},
		visitsByLead: map[string][]SiteVisit{
			"l1": {
				{ID: "sv1", VisitedAt: testNow.AddDate(0, 0, -2)},
				{ID: "sv2", VisitedAt: testNow.AddDate(0, -1, 0)},
			},
			"l2": {
				{ID: "sv3", VisitedAt: testNow.AddDate(0, -5, 0)},
			},
		},
		visitsByProject: map[string][]SiteVisit{
			"p1": {
				{ID: "sv4", VisitedAt: testNow.AddDate(0, 0, -1)},
				{ID: "sv5"}, // no timestamp, must be skipped
			},
		},
	}

	snap, err := Aggregate(context.Background(), src, testNow)
	if err != nil {
		t.Fatalf("Aggregate returned error: %v", err)
	}

	if snap.GeneratedAt != testNow {
		t.Errorf("GeneratedAt = %v, want %v", snap.GeneratedAt, testNow)
	}

	sv := snap.SiteVisits
	if sv.Total != 4 {
		t.Errorf("SiteVisits.Total = %d, want 4 (zero-timestamp visit must be skipped)", sv.Total)
	}
	if sv.ThisMonth != 2 {
		t.Errorf("SiteVisits.ThisMonth = %d, want 2", sv.ThisMonth)
	}
	if sv.LastMonth != 1 {
		t.Errorf("SiteVisits.LastMonth = %d, want 1", sv.LastMonth)
	}
	if sv.MonthChange != 100 {
		t.Errorf("SiteVisits.MonthChange = %v, want 100", sv.MonthChange)
	}

	leads := snap.Leads
	if leads.Total != 4 {
		t.Errorf("Leads.Total = %d, want 4", leads.Total)
	}
	if leads.WithSiteVisits != 2 {
		t.Errorf("Leads.WithSiteVisits = %d, want 2", leads.WithSiteVisits)
	}
	// q2 references l2 through an embedded object; it must still count
	if leads.WithQuotations != 2 {
		t.Errorf("Leads.WithQuotations = %d, want 2", leads.WithQuotations)
	}
	if leads.WithBoth != 2 {
		t.Errorf("Leads.WithBoth = %d, want 2", leads.WithBoth)
	}
	if leads.Converted != 1 {
		t.Errorf("Leads.Converted = %d, want 1", leads.Converted)
	}
	if leads.NoActivity != 2 {
		t.Errorf("Leads.NoActivity = %d, want 2", leads.NoActivity)
	}
	if leads.WithSiteVisitsPercent != 50 {
		t.Errorf("Leads.WithSiteVisitsPercent = %v, want 50", leads.WithSiteVisitsPercent)
	}

	q := snap.Quotations
	if q.Total != 4 || q.Draft != 1 || q.Pending != 1 || q.Approved != 1 || q.Rejected != 1 {
		t.Errorf("Quotations rollup = %+v, want one of each status", q)
	}
	if q.ApprovedPercent != 25 {
		t.Errorf("Quotations.ApprovedPercent = %v, want 25", q.ApprovedPercent)
	}
	// string money parses, nil money counts as zero
	if q.TotalValue != 175000 {
		t.Errorf("Quotations.TotalValue = %v, want 175000", q.TotalValue)
	}

	p := snap.Projects
	if p.Active != 2 || p.Completed != 1 || p.OnHold != 1 {
		t.Errorf("Projects rollup = %+v", p)
	}
	if p.ActivePercent != 50 {
		t.Errorf("Projects.ActivePercent = %v, want 50", p.ActivePercent)
	}

	v := snap.Variations
	if v.AdditionalCost != 20000 {
		t.Errorf("Variations.AdditionalCost = %v, want 20000 (non-numeric cost must count as zero)", v.AdditionalCost)
	}
}

func TestAggregateEmptySource(t *testing.T) {
	snap, err := Aggregate(context.Background(), &fakeSource{}, testNow)
	if err != nil {
		t.Fatalf("Aggregate returned error: %v", err)
	}

	if snap.Leads.Total != 0 || snap.Leads.ConvertedPercent != 0 {
		t.Errorf("empty leads: got %+v, want zeros", snap.Leads)
	}
	if snap.Quotations.ApprovedPercent != 0 {
		t.Errorf("empty quotations: ApprovedPercent = %v, want 0", snap.Quotations.ApprovedPercent)
	}
	if snap.SiteVisits.MonthChange != 0 {
		t.Errorf("empty visits: MonthChange = %v, want 0", snap.SiteVisits.MonthChange)
	}
}

func TestAggregatePrimaryFailure(t *testing.T) {
	for _, collection := range []string{"leads", "quotations", "revisions", "projects", "variations"} {
		t.Run(collection, func(t *testing.T) {
			src := &fakeSource{failCollection: collection}

			snap, err := Aggregate(context.Background(), src, testNow)
			if snap != nil {
				t.Fatalf("expected nil snapshot on %s failure, got %+v", collection, snap)
			}

			var aggErr *AggregationError
			if !errors.As(err, &aggErr) {
				t.Fatalf("expected *AggregationError, got %T: %v", err, err)
			}
			if aggErr.Collection != collection {
				t.Errorf("AggregationError.Collection = %q, want %q", aggErr.Collection, collection)
			}
			if !errors.Is(err, errFetch) {
				t.Errorf("AggregationError must wrap the underlying error")
			}
		})
	}
}

func TestAggregateFanoutFailureIsIsolated(t *testing.T) {
	src := &fakeSource{
		leads: []Lead{{ID: "lA"}, {ID: "lB"}},
		visitsByLead: map[string][]SiteVisit{
			"lA": {
				{ID: "sv1", VisitedAt: testNow.AddDate(0, 0, -3)},
				{ID: "sv2", VisitedAt: testNow.AddDate(0, 0, -4)},
			},
		},
		failLeadVisits: map[string]error{"lB": errFetch},
	}

	snap, err := Aggregate(context.Background(), src, testNow)
	if err != nil {
		t.Fatalf("fan-out failure must not fail the aggregation, got: %v", err)
	}

	if snap.SiteVisits.Total != 2 {
		t.Errorf("SiteVisits.Total = %d, want 2 (lead A's visits must survive lead B's failure)", snap.SiteVisits.Total)
	}
	if snap.Leads.WithSiteVisits != 1 {
		t.Errorf("Leads.WithSiteVisits = %d, want 1", snap.Leads.WithSiteVisits)
	}
	if snap.Leads.NoActivity != 1 {
		t.Errorf("Leads.NoActivity = %d, want 1 (failed lead degrades to no visits)", snap.Leads.NoActivity)
	}
}

func TestCountSiteVisitsCalendarMonth(t *testing.T) {
	// Jan 31 → "last month" is December; a rolling 30-day window would
	// classify these differently.
	now := time.Date(2026, time.January, 31, 10, 0, 0, 0, time.UTC)
	visits := []SiteVisit{
		{ID: "a", VisitedAt: time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "b", VisitedAt: time.Date(2025, time.December, 31, 23, 0, 0, 0, time.UTC)},
		{ID: "c", VisitedAt: time.Date(2025, time.December, 1, 8, 0, 0, 0, time.UTC)},
		{ID: "d", VisitedAt: time.Date(2025, time.November, 30, 8, 0, 0, 0, time.UTC)},
	}

	stats := countSiteVisits(visits, now)
	if stats.ThisMonth != 1 {
		t.Errorf("ThisMonth = %d, want 1", stats.ThisMonth)
	}
	if stats.LastMonth != 2 {
		t.Errorf("LastMonth = %d, want 2", stats.LastMonth)
	}
	if stats.Total != 4 {
		t.Errorf("Total = %d, want 4", stats.Total)
	}
}

func TestCountSiteVisitsMonthEnd(t *testing.T) {
	// Month-end dates where subtracting a month naively lands in the wrong
	// month (Mar 31 minus a month normalizes to early March, Dec 31 to
	// early December).
	tests := []struct {
		name      string
		now       time.Time
		visit     time.Time
		lastMonth int
	}{
		{
			"march 31 counts february",
			time.Date(2026, time.March, 31, 10, 0, 0, 0, time.UTC),
			time.Date(2026, time.February, 15, 9, 0, 0, 0, time.UTC),
			1,
		},
		{
			"december 31 counts november",
			time.Date(2026, time.December, 31, 10, 0, 0, 0, time.UTC),
			time.Date(2026, time.November, 20, 9, 0, 0, 0, time.UTC),
			1,
		},
		{
			"may 31 does not count march",
			time.Date(2026, time.May, 31, 10, 0, 0, 0, time.UTC),
			time.Date(2026, time.March, 31, 9, 0, 0, 0, time.UTC),
			0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := countSiteVisits([]SiteVisit{{ID: "v", VisitedAt: tt.visit}}, tt.now)
			if stats.LastMonth != tt.lastMonth {
				t.Errorf("LastMonth = %d, want %d", stats.LastMonth, tt.lastMonth)
			}
			if stats.ThisMonth != 0 {
				t.Errorf("ThisMonth = %d, want 0", stats.ThisMonth)
			}
		})
	}
}

func TestPercent(t *testing.T) {
	tests := []struct {
		name  string
		part  int
		total int
		want  float64
	}{
		{"zero total", 5, 0, 0},
		{"zero part", 0, 10, 0},
		{"half", 5, 10, 50},
		{"third rounds to one decimal", 1, 3, 33.3},
		{"two thirds rounds up", 2, 3, 66.7},
		{"full", 7, 7, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Percent(tt.part, tt.total); got != tt.want {
				t.Errorf("Percent(%d, %d) = %v, want %v", tt.part, tt.total, got, tt.want)
			}
		})
	}
}

func TestMonthChange(t *testing.T) {
	tests := []struct {
		name     string
		current  int
		previous int
		want     float64
	}{
		{"both zero", 0, 0, 0},
		{"from zero to some", 4, 0, 100},
		{"growth", 15, 10, 50},
		{"decline", 5, 10, -50},
		{"to zero", 0, 8, -100},
		{"fractional", 10, 3, 233.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MonthChange(tt.current, tt.previous); got != tt.want {
				t.Errorf("MonthChange(%d, %d) = %v, want %v", tt.current, tt.previous, got, tt.want)
			}
		})
	}
}

func TestRefKey(t *testing.T) {
	tests := []struct {
		name string
		ref  any
		want string
	}{
		{"nil", nil, ""},
		{"bare id", "lead123", "lead123"},
		{"object with id", map[string]any{"id": "lead456"}, "lead456"},
		{"object with _id", map[string]any{"_id": "lead789"}, "lead789"},
		{"object without id", map[string]any{"name": "x"}, ""},
		{"unexpected type", 42, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := refKey(tt.ref); got != tt.want {
				t.Errorf("refKey(%v) = %q, want %q", tt.ref, got, tt.want)
			}
		})
	}
}

func TestMoneyValue(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want float64
	}{
		{"nil", nil, 0},
		{"float", 1234.5, 1234.5},
		{"int", 500, 500},
		{"numeric string", "2500.75", 2500.75},
		{"garbage string", "N/A", 0},
		{"bool", true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := moneyValue(tt.in); got != tt.want {
				t.Errorf("moneyValue(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
