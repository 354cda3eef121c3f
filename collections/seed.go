package collections

import (
	"fmt"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// ── Definition structs ───────────────────────────────────────────────────

type userDef struct {
	name  string
	email string
	role  string
}

type siteVisitDef struct {
	daysAgo  int
	location string
	engineer string
	notes    string
}

type leadDef struct {
	customerName string
	projectTitle string
	contactPhone string
	source       string
	visits       []siteVisitDef
	projectName  string // non-empty marks the lead as converted
}

type quotationDef struct {
	leadCustomer  string // matched against leadDef.customerName
	offerDate     string
	enquiryDate   string
	status        string
	grandTotal    float64
	scopeOfWork   []map[string]any
	priceSchedule map[string]any
	paymentTerms  []map[string]any
	deliveryTerms map[string]any
	companyInfo   map[string]any
}

type materialDef struct {
	name         string
	code         string
	unit         string
	quantity     float64
	reorderLevel float64
	unitPrice    float64
}

// Seed populates the collections with realistic WBES demo data: a small
// sales pipeline (leads, site visits, quotations, one revision), two
// projects with a variation, and a stocked store. It is safe to call on
// every startup because it returns early if any lead records already exist.
func Seed(app *pocketbase.PocketBase) error {
	leadsCol, err := app.FindCollectionByNameOrId("leads")
	if err != nil {
		return fmt.Errorf("seed: could not find leads collection: %w", err)
	}
	existing, err := app.FindAllRecords(leadsCol)
	if err != nil {
		return fmt.Errorf("seed: could not query leads: %w", err)
	}
	if len(existing) > 0 {
		return nil // already seeded
	}

	now := time.Now()

	// ── Users ────────────────────────────────────────────────────────
	users := []userDef{
		{"Priya Nair", "priya@wbes.example", "admin"},
		{"Arun Menon", "arun@wbes.example", "manager"},
		{"Salim Khan", "salim@wbes.example", "estimator"},
		{"Devika Rao", "devika@wbes.example", "storekeeper"},
	}
	usersCol, err := app.FindCollectionByNameOrId("staff")
	if err != nil {
		return fmt.Errorf("seed: could not find staff collection: %w", err)
	}
	for _, u := range users {
		rec := core.NewRecord(usersCol)
		rec.Set("name", u.name)
		rec.Set("email", u.email)
		rec.Set("role", u.role)
		rec.Set("active", true)
		if err := app.Save(rec); err != nil {
			return fmt.Errorf("seed: save user %q: %w", u.name, err)
		}
	}

	// ── Projects ─────────────────────────────────────────────────────
	projectsCol, err := app.FindCollectionByNameOrId("projects")
	if err != nil {
		return fmt.Errorf("seed: could not find projects collection: %w", err)
	}
	projectIDs := map[string]string{}
	projects := []struct {
		name   string
		client string
		ref    string
		status string
	}{
		{"Al Noor Warehouse Extension", "Al Noor Trading LLC", "WBES-PRJ-001", "active"},
		{"Marina Heights Fit-Out", "Marina Heights Owners Assoc", "WBES-PRJ-002", "on_hold"},
	}
	for _, p := range projects {
		rec := core.NewRecord(projectsCol)
		rec.Set("name", p.name)
		rec.Set("client_name", p.client)
		rec.Set("reference_number", p.ref)
		rec.Set("status", p.status)
		rec.Set("start_date", now.AddDate(0, -2, 0).Format("2006-01-02"))
		if err := app.Save(rec); err != nil {
			return fmt.Errorf("seed: save project %q: %w", p.name, err)
		}
		projectIDs[p.name] = rec.Id
	}

	// ── Leads and their site visits ──────────────────────────────────
	leads := []leadDef{
		{
			customerName: "Al Noor Trading LLC",
			projectTitle: "Warehouse extension",
			contactPhone: "+91 98450 11223",
			source:       "referral",
			projectName:  "Al Noor Warehouse Extension",
			visits: []siteVisitDef{
				{daysAgo: 45, location: "Industrial Area Phase 2", engineer: "Salim Khan", notes: "Initial survey"},
				{daysAgo: 12, location: "Industrial Area Phase 2", engineer: "Salim Khan", notes: "Measurement check"},
			},
		},
		{
			customerName: "Greenfield Estates",
			projectTitle: "Compound wall and gatehouse",
			contactPhone: "+91 98450 44556",
			source:       "website",
			visits: []siteVisitDef{
				{daysAgo: 5, location: "Greenfield site office", engineer: "Salim Khan", notes: "Scope walkthrough"},
			},
		},
		{
			customerName: "Coastal Foods Pvt Ltd",
			projectTitle: "Cold storage room",
			contactPhone: "+91 98450 77889",
			source:       "phone",
		},
		{
			customerName: "Sunrise Apartments",
			projectTitle: "Facade repair",
			source:       "walk_in",
		},
	}

	visitsCol, err := app.FindCollectionByNameOrId("site_visits")
	if err != nil {
		return fmt.Errorf("seed: could not find site_visits collection: %w", err)
	}

	leadIDs := map[string]string{}
	for _, l := range leads {
		rec := core.NewRecord(leadsCol)
		rec.Set("customer_name", l.customerName)
		rec.Set("project_title", l.projectTitle)
		rec.Set("contact_phone", l.contactPhone)
		rec.Set("source", l.source)
		if l.projectName != "" {
			rec.Set("project", projectIDs[l.projectName])
		}
		if err := app.Save(rec); err != nil {
			return fmt.Errorf("seed: save lead %q: %w", l.customerName, err)
		}
		leadIDs[l.customerName] = rec.Id

		for _, v := range l.visits {
			visit := core.NewRecord(visitsCol)
			visit.Set("lead", rec.Id)
			visit.Set("visit_date", now.AddDate(0, 0, -v.daysAgo).Format("2006-01-02 15:04:05.000Z"))
			visit.Set("location", v.location)
			visit.Set("engineer", v.engineer)
			visit.Set("notes", v.notes)
			if err := app.Save(visit); err != nil {
				return fmt.Errorf("seed: save site visit for %q: %w", l.customerName, err)
			}
		}
	}

	// One project-side visit for the active project.
	projVisit := core.NewRecord(visitsCol)
	projVisit.Set("project", projectIDs["Al Noor Warehouse Extension"])
	projVisit.Set("visit_date", now.AddDate(0, 0, -3).Format("2006-01-02 15:04:05.000Z"))
	projVisit.Set("location", "Industrial Area Phase 2")
	projVisit.Set("engineer", "Salim Khan")
	projVisit.Set("notes", "Progress inspection")
	if err := app.Save(projVisit); err != nil {
		return fmt.Errorf("seed: save project site visit: %w", err)
	}

	// ── Quotations ───────────────────────────────────────────────────
	wbesInfo := map[string]any{
		"name":    "WBES Engineering Services",
		"address": "Plot 14, Industrial Estate, Kochi",
		"phone":   "+91 484 221 0000",
		"email":   "estimation@wbes.example",
		"gstin":   "32AAACW1234F1Z5",
	}

	quotations := []quotationDef{
		{
			leadCustomer: "Al Noor Trading LLC",
			offerDate:    now.AddDate(0, -1, -10).Format("2006-01-02"),
			enquiryDate:  now.AddDate(0, -2, 0).Format("2006-01-02"),
			status:       "approved",
			grandTotal:   2183000,
			scopeOfWork: []map[string]any{
				{"description": "Structural steel portal frames", "qty": 12.0, "unit": "nos", "remarks": "Including erection"},
				{"description": "Roof sheeting with insulation", "qty": 850.0, "unit": "sqm", "remarks": ""},
			},
			priceSchedule: map[string]any{
				"basePrice":       2000000.0,
				"discountPercent": 2.5,
				"taxPercent":      12.0,
				"grandTotal":      2183000.0,
			},
			paymentTerms: []map[string]any{
				{"milestoneDescription": "Advance on order", "amountPercent": 30.0},
				{"milestoneDescription": "On material delivery", "amountPercent": 50.0},
				{"milestoneDescription": "On completion", "amountPercent": 20.0},
			},
			deliveryTerms: map[string]any{
				"deliveryPeriod": "10 weeks from advance",
				"warrantyPeriod": "12 months",
				"installation":   "Included",
			},
			companyInfo: wbesInfo,
		},
		{
			leadCustomer: "Greenfield Estates",
			offerDate:    now.AddDate(0, 0, -4).Format("2006-01-02"),
			enquiryDate:  now.AddDate(0, 0, -20).Format("2006-01-02"),
			status:       "pending",
			grandTotal:   640000,
			scopeOfWork: []map[string]any{
				{"description": "RCC compound wall 2.4m", "qty": 320.0, "unit": "rm", "remarks": "Including excavation"},
				{"description": "Gatehouse structure", "qty": 1.0, "unit": "lot", "remarks": ""},
			},
			priceSchedule: map[string]any{
				"basePrice":  571428.57,
				"taxPercent": 12.0,
				"grandTotal": 640000.0,
			},
			paymentTerms: []map[string]any{
				{"milestoneDescription": "Advance on order", "amountPercent": 40.0},
				{"milestoneDescription": "On completion", "amountPercent": 60.0},
			},
			companyInfo: wbesInfo,
		},
		{
			leadCustomer: "Coastal Foods Pvt Ltd",
			offerDate:    now.AddDate(0, 0, -2).Format("2006-01-02"),
			status:       "draft",
			grandTotal:   0,
			scopeOfWork: []map[string]any{
				{"description": "Cold room panels 100mm PUF", "qty": 140.0, "unit": "sqm", "remarks": "Pending final measurement"},
			},
			companyInfo: wbesInfo,
		},
	}

	quotationsCol, err := app.FindCollectionByNameOrId("quotations")
	if err != nil {
		return fmt.Errorf("seed: could not find quotations collection: %w", err)
	}

	fiscalYear := fiscalYearTag(now)
	quotationIDs := map[string]string{}
	for i, q := range quotations {
		rec := core.NewRecord(quotationsCol)
		rec.Set("lead", leadIDs[q.leadCustomer])
		rec.Set("quotation_number", fmt.Sprintf("WBES-QTN-%s-%03d", fiscalYear, i+1))
		rec.Set("offer_date", q.offerDate)
		rec.Set("enquiry_date", q.enquiryDate)
		rec.Set("management_approval_status", q.status)
		rec.Set("grand_total", q.grandTotal)
		rec.Set("scope_of_work", q.scopeOfWork)
		rec.Set("price_schedule", q.priceSchedule)
		rec.Set("payment_terms", q.paymentTerms)
		rec.Set("delivery_terms", q.deliveryTerms)
		rec.Set("company_info", q.companyInfo)
		if err := app.Save(rec); err != nil {
			return fmt.Errorf("seed: save quotation for %q: %w", q.leadCustomer, err)
		}
		quotationIDs[q.leadCustomer] = rec.Id
	}

	// One pending revision on the Greenfield quotation: scope trimmed,
	// totals reduced, diff recorded the same way the API records it.
	revisionsCol, err := app.FindCollectionByNameOrId("revisions")
	if err != nil {
		return fmt.Errorf("seed: could not find revisions collection: %w", err)
	}
	revision := core.NewRecord(revisionsCol)
	revision.Set("quotation", quotationIDs["Greenfield Estates"])
	revision.Set("revision_number", 1)
	revision.Set("offer_date", now.AddDate(0, 0, -1).Format("2006-01-02"))
	revision.Set("management_approval_status", "pending")
	revision.Set("grand_total", 588000)
	revision.Set("scope_of_work", []map[string]any{
		{"description": "RCC compound wall 2.4m", "qty": 290.0, "unit": "rm", "remarks": "Revised length after survey"},
		{"description": "Gatehouse structure", "qty": 1.0, "unit": "lot", "remarks": ""},
	})
	revision.Set("price_schedule", map[string]any{
		"basePrice":  525000.0,
		"taxPercent": 12.0,
		"grandTotal": 588000.0,
	})
	revision.Set("diff_from_parent", []map[string]any{
		{"field": "offerDate", "from": quotations[1].offerDate, "to": now.AddDate(0, 0, -1).Format("2006-01-02")},
		{"field": "scopeOfWork", "from": quotations[1].scopeOfWork, "to": revision.Get("scope_of_work")},
		{"field": "priceSchedule", "from": quotations[1].priceSchedule, "to": revision.Get("price_schedule")},
		{"field": "grandTotal", "from": 640000.0, "to": 588000.0},
	})
	if err := app.Save(revision); err != nil {
		return fmt.Errorf("seed: save revision: %w", err)
	}

	// ── Project variations ───────────────────────────────────────────
	variationsCol, err := app.FindCollectionByNameOrId("project_variations")
	if err != nil {
		return fmt.Errorf("seed: could not find project_variations collection: %w", err)
	}
	variations := []struct {
		project        string
		title          string
		description    string
		additionalCost float64
		status         string
	}{
		{"Al Noor Warehouse Extension", "Additional mezzanine deck", "Client requested 120 sqm mezzanine over bay 3", 310000, "approved"},
		{"Al Noor Warehouse Extension", "Upgraded rolling shutters", "Motorized shutters instead of manual", 84000, "pending"},
	}
	for _, v := range variations {
		rec := core.NewRecord(variationsCol)
		rec.Set("project", projectIDs[v.project])
		rec.Set("title", v.title)
		rec.Set("description", v.description)
		rec.Set("additional_cost", v.additionalCost)
		rec.Set("management_approval_status", v.status)
		if err := app.Save(rec); err != nil {
			return fmt.Errorf("seed: save variation %q: %w", v.title, err)
		}
	}

	// ── Store and materials ──────────────────────────────────────────
	storesCol, err := app.FindCollectionByNameOrId("stores")
	if err != nil {
		return fmt.Errorf("seed: could not find stores collection: %w", err)
	}
	store := core.NewRecord(storesCol)
	store.Set("name", "Central Store")
	store.Set("location", "Kochi yard")
	if err := app.Save(store); err != nil {
		return fmt.Errorf("seed: save store: %w", err)
	}

	materials := []materialDef{
		{"OPC Cement 53 Grade", "MAT-CEM-53", "bag", 420, 100, 390},
		{"TMT Bar 12mm", "MAT-TMT-12", "ton", 8.5, 3, 56500},
		{"Structural Steel ISMB 200", "MAT-ISMB-200", "ton", 2.2, 3, 61000},
		{"Roof Sheet 0.5mm", "MAT-RS-05", "sqm", 960, 200, 340},
		{"PUF Panel 100mm", "MAT-PUF-100", "sqm", 0, 50, 1450},
	}
	materialsCol, err := app.FindCollectionByNameOrId("materials")
	if err != nil {
		return fmt.Errorf("seed: could not find materials collection: %w", err)
	}
	materialIDs := map[string]string{}
	for _, mdef := range materials {
		rec := core.NewRecord(materialsCol)
		rec.Set("name", mdef.name)
		rec.Set("code", mdef.code)
		rec.Set("unit", mdef.unit)
		rec.Set("store", store.Id)
		rec.Set("quantity", mdef.quantity)
		rec.Set("reorder_level", mdef.reorderLevel)
		rec.Set("unit_price", mdef.unitPrice)
		if err := app.Save(rec); err != nil {
			return fmt.Errorf("seed: save material %q: %w", mdef.name, err)
		}
		materialIDs[mdef.code] = rec.Id
	}

	// ── One pending material request and one approved purchase order ─
	requestsCol, err := app.FindCollectionByNameOrId("material_requests")
	if err != nil {
		return fmt.Errorf("seed: could not find material_requests collection: %w", err)
	}
	request := core.NewRecord(requestsCol)
	request.Set("request_number", fmt.Sprintf("WBES-MR-%s-%03d", fiscalYear, 1))
	request.Set("project", projectIDs["Al Noor Warehouse Extension"])
	request.Set("status", "pending")
	request.Set("items", []map[string]any{
		{"materialId": materialIDs["MAT-CEM-53"], "quantity": 60.0},
		{"materialId": materialIDs["MAT-TMT-12"], "quantity": 1.5},
	})
	request.Set("remarks", "Bay 3 foundation pour")
	if err := app.Save(request); err != nil {
		return fmt.Errorf("seed: save material request: %w", err)
	}

	posCol, err := app.FindCollectionByNameOrId("purchase_orders")
	if err != nil {
		return fmt.Errorf("seed: could not find purchase_orders collection: %w", err)
	}
	po := core.NewRecord(posCol)
	po.Set("po_number", fmt.Sprintf("WBES-PO-%s-%03d", fiscalYear, 1))
	po.Set("supplier_name", "Kerala Steel Agencies")
	po.Set("store", store.Id)
	po.Set("order_date", now.AddDate(0, 0, -6).Format("2006-01-02"))
	po.Set("status", "approved")
	po.Set("items", []map[string]any{
		{"materialId": materialIDs["MAT-ISMB-200"], "description": "Structural Steel ISMB 200", "qty": 4.0, "unit": "ton", "rate": 59800.0},
	})
	po.Set("total", 239200)
	if err := app.Save(po); err != nil {
		return fmt.Errorf("seed: save purchase order: %w", err)
	}

	fmt.Println("Seeded WBES demo data")
	return nil
}

// fiscalYearTag mirrors services.GetFiscalYear without importing services
// into the collections package.
func fiscalYearTag(t time.Time) string {
	startYear := t.Year()
	if t.Month() < time.April {
		startYear--
	}
	return fmt.Sprintf("%02d-%02d", startYear%100, (startYear+1)%100)
}
