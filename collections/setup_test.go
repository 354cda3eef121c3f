package collections_test

import (
	"testing"

	"github.com/pocketbase/pocketbase/core"

	"wbes/collections"
	"wbes/testhelpers"
)

// expectedCollections is the full list of collections that Setup() must create.
var expectedCollections = []string{
	"staff",
	"projects",
	"leads",
	"site_visits",
	"quotations",
	"revisions",
	"project_variations",
	"stores",
	"materials",
	"material_requests",
	"purchase_orders",
	"audit_logs",
}

func TestSetup_AllCollectionsExist(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	for _, name := range expectedCollections {
		col, err := app.FindCollectionByNameOrId(name)
		if err != nil {
			t.Errorf("collection %q not found after Setup(): %v", name, err)
			continue
		}
		if col.Name != name {
			t.Errorf("expected collection name %q, got %q", name, col.Name)
		}
	}
}

func TestSetup_Idempotent(t *testing.T) {
	app := testhelpers.NewTestApp(t) // Setup() already called once via NewTestApp

	// Collect IDs from first run
	ids := make(map[string]string)
	for _, name := range expectedCollections {
		col, _ := app.FindCollectionByNameOrId(name)
		ids[name] = col.Id
	}

	// Run Setup() again
	collections.Setup(app)

	// IDs should not change
	for _, name := range expectedCollections {
		col, err := app.FindCollectionByNameOrId(name)
		if err != nil {
			t.Errorf("collection %q missing after second Setup(): %v", name, err)
			continue
		}
		if col.Id != ids[name] {
			t.Errorf("collection %q id changed after second Setup(): %s -> %s", name, ids[name], col.Id)
		}
	}
}

func TestSetup_StaffFields(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	col, _ := app.FindCollectionByNameOrId("staff")

	fields := []string{"name", "email", "role", "active", "created", "updated"}
	for _, f := range fields {
		if col.Fields.GetByName(f) == nil {
			t.Errorf("staff: missing field %q", f)
		}
	}

	roleField := col.Fields.GetByName("role")
	if sf, ok := roleField.(*core.SelectField); ok {
		expected := map[string]bool{"admin": true, "manager": true, "estimator": true, "storekeeper": true}
		for _, v := range sf.Values {
			if !expected[v] {
				t.Errorf("unexpected role value: %q", v)
			}
			delete(expected, v)
		}
		for v := range expected {
			t.Errorf("missing role value: %q", v)
		}
	} else {
		t.Errorf("role field is not a SelectField")
	}
}

func TestSetup_ProjectsFields(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	col, _ := app.FindCollectionByNameOrId("projects")

	fields := []string{"name", "client_name", "reference_number", "status", "start_date", "created", "updated"}
	for _, f := range fields {
		if col.Fields.GetByName(f) == nil {
			t.Errorf("projects: missing field %q", f)
		}
	}

	statusField := col.Fields.GetByName("status")
	if sf, ok := statusField.(*core.SelectField); ok {
		expected := map[string]bool{"active": true, "completed": true, "on_hold": true}
		for _, v := range sf.Values {
			if !expected[v] {
				t.Errorf("unexpected status value: %q", v)
			}
			delete(expected, v)
		}
		for v := range expected {
			t.Errorf("missing status value: %q", v)
		}
	} else {
		t.Errorf("status field is not a SelectField")
	}
}

func TestSetup_LeadsFields(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	col, _ := app.FindCollectionByNameOrId("leads")

	fields := []string{"customer_name", "project_title", "contact_phone", "contact_email", "source", "project", "notes", "created", "updated"}
	for _, f := range fields {
		if col.Fields.GetByName(f) == nil {
			t.Errorf("leads: missing field %q", f)
		}
	}

	// The project relation marks a lead as converted; deleting the project
	// must not delete the lead.
	projectField := col.Fields.GetByName("project")
	if rf, ok := projectField.(*core.RelationField); ok {
		if rf.CascadeDelete {
			t.Error("leads.project: expected CascadeDelete=false")
		}
		if rf.MaxSelect != 1 {
			t.Errorf("leads.project: expected MaxSelect=1, got %d", rf.MaxSelect)
		}
	} else {
		t.Errorf("leads.project is not a RelationField")
	}
}

func TestSetup_QuotationsFields(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	col, _ := app.FindCollectionByNameOrId("quotations")

	fields := []string{
		"lead", "quotation_number", "offer_date", "enquiry_date",
		"company_info", "scope_of_work", "price_schedule", "payment_terms",
		"delivery_terms", "management_approval_status", "grand_total",
		"created", "updated",
	}
	for _, f := range fields {
		if col.Fields.GetByName(f) == nil {
			t.Errorf("quotations: missing field %q", f)
		}
	}

	leadField := col.Fields.GetByName("lead")
	if rf, ok := leadField.(*core.RelationField); ok {
		if !rf.CascadeDelete {
			t.Error("quotations.lead: expected CascadeDelete=true")
		}
	}

	statusField := col.Fields.GetByName("management_approval_status")
	if sf, ok := statusField.(*core.SelectField); ok {
		if len(sf.Values) != 4 {
			t.Errorf("quotations.management_approval_status: expected 4 values, got %d", len(sf.Values))
		}
	}
}

func TestSetup_RevisionsFields(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	col, _ := app.FindCollectionByNameOrId("revisions")

	fields := []string{
		"quotation", "revision_number", "offer_date", "enquiry_date",
		"company_info", "scope_of_work", "price_schedule", "payment_terms",
		"delivery_terms", "diff_from_parent", "management_approval_status",
		"grand_total", "created", "updated",
	}
	for _, f := range fields {
		if col.Fields.GetByName(f) == nil {
			t.Errorf("revisions: missing field %q", f)
		}
	}

	// Revisions are born pending, there is no draft state.
	statusField := col.Fields.GetByName("management_approval_status")
	if sf, ok := statusField.(*core.SelectField); ok {
		if len(sf.Values) != 3 {
			t.Errorf("revisions.management_approval_status: expected 3 values, got %d", len(sf.Values))
		}
	}

	quotationField := col.Fields.GetByName("quotation")
	if rf, ok := quotationField.(*core.RelationField); ok {
		if !rf.CascadeDelete {
			t.Error("revisions.quotation: expected CascadeDelete=true")
		}
	}
}

func TestSetup_MaterialsFields(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	col, _ := app.FindCollectionByNameOrId("materials")

	fields := []string{"name", "code", "unit", "store", "quantity", "reorder_level", "unit_price", "created", "updated"}
	for _, f := range fields {
		if col.Fields.GetByName(f) == nil {
			t.Errorf("materials: missing field %q", f)
		}
	}
}

func TestSetup_MaterialRequestsFields(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	col, _ := app.FindCollectionByNameOrId("material_requests")

	fields := []string{"request_number", "project", "requested_by", "items", "status", "remarks", "created", "updated"}
	for _, f := range fields {
		if col.Fields.GetByName(f) == nil {
			t.Errorf("material_requests: missing field %q", f)
		}
	}

	statusField := col.Fields.GetByName("status")
	if sf, ok := statusField.(*core.SelectField); ok {
		expected := map[string]bool{"pending": true, "approved": true, "rejected": true, "fulfilled": true}
		for _, v := range sf.Values {
			if !expected[v] {
				t.Errorf("unexpected status value: %q", v)
			}
		}
	}
}

func TestSetup_PurchaseOrdersFields(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	col, _ := app.FindCollectionByNameOrId("purchase_orders")

	fields := []string{
		"po_number", "supplier_name", "store", "order_date", "items",
		"status", "total", "grn_number", "received_date", "created", "updated",
	}
	for _, f := range fields {
		if col.Fields.GetByName(f) == nil {
			t.Errorf("purchase_orders: missing field %q", f)
		}
	}

	statusField := col.Fields.GetByName("status")
	if sf, ok := statusField.(*core.SelectField); ok {
		expected := []string{"pending", "approved", "rejected", "received"}
		if len(sf.Values) != len(expected) {
			t.Errorf("purchase_orders.status: expected %d values, got %d", len(expected), len(sf.Values))
		}
	}
}

func TestSetup_AuditLogsFields(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	col, _ := app.FindCollectionByNameOrId("audit_logs")

	fields := []string{"user", "action", "collection_name", "record_id", "detail", "created"}
	for _, f := range fields {
		if col.Fields.GetByName(f) == nil {
			t.Errorf("audit_logs: missing field %q", f)
		}
	}
}

func TestSetup_SiteVisitCascadeDeleteOnLead(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	lead := testhelpers.CreateTestLead(t, app, "Cascade Customer")
	visit := testhelpers.CreateTestSiteVisit(t, app, lead.Id, "2026-01-10 00:00:00.000Z", "Site A")

	if err := app.Delete(lead); err != nil {
		t.Fatalf("failed to delete lead: %v", err)
	}

	if _, err := app.FindRecordById("site_visits", visit.Id); err == nil {
		t.Error("site visit should have been cascade-deleted with lead")
	}
}

func TestSetup_QuotationCascadeDeleteOnLead(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	lead := testhelpers.CreateTestLead(t, app, "Cascade Customer")
	quotation := testhelpers.CreateTestQuotation(t, app, lead.Id, "WBES-QTN-25-26-001", "draft", 0)

	if err := app.Delete(lead); err != nil {
		t.Fatalf("failed to delete lead: %v", err)
	}

	if _, err := app.FindRecordById("quotations", quotation.Id); err == nil {
		t.Error("quotation should have been cascade-deleted with lead")
	}
}
