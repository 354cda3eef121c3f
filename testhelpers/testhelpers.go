// Package testhelpers provides utilities for testing PocketBase-based applications.
package testhelpers

import (
	"testing"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"wbes/collections"
)

// NewTestApp creates a PocketBase instance backed by a temporary directory.
// It bootstraps the app and runs collections.Setup to create all tables.
// The temporary directory is cleaned up automatically when the test finishes.
func NewTestApp(t *testing.T) *pocketbase.PocketBase {
	t.Helper()

	tmpDir := t.TempDir()
	app := pocketbase.NewWithConfig(pocketbase.Config{
		DefaultDataDir: tmpDir,
	})

	if err := app.Bootstrap(); err != nil {
		t.Fatalf("failed to bootstrap test app: %v", err)
	}

	collections.Setup(app)

	return app
}

// CreateTestUser creates an active user record with the given name and role.
func CreateTestUser(t *testing.T, app *pocketbase.PocketBase, name, role string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("staff")
	if err != nil {
		t.Fatalf("failed to find staff collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("name", name)
	record.Set("role", role)
	record.Set("active", true)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test user: %v", err)
	}

	return record
}

// CreateTestLead creates a lead record with the given customer name.
func CreateTestLead(t *testing.T, app *pocketbase.PocketBase, customerName string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("leads")
	if err != nil {
		t.Fatalf("failed to find leads collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("customer_name", customerName)
	record.Set("project_title", customerName+" Works")
	record.Set("contact_phone", "9876543210")

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test lead: %v", err)
	}

	return record
}

// CreateTestProject creates a project record with the given name and returns it.
func CreateTestProject(t *testing.T, app *pocketbase.PocketBase, name string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("projects")
	if err != nil {
		t.Fatalf("failed to find projects collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("name", name)
	record.Set("status", "active")

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test project: %v", err)
	}

	return record
}

// CreateTestSiteVisit creates a site visit linked to a lead.
func CreateTestSiteVisit(t *testing.T, app *pocketbase.PocketBase, leadID, visitDate, location string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("site_visits")
	if err != nil {
		t.Fatalf("failed to find site_visits collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("lead", leadID)
	record.Set("visit_date", visitDate)
	record.Set("location", location)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test site visit: %v", err)
	}

	return record
}

// CreateTestQuotation creates a quotation linked to a lead.
func CreateTestQuotation(t *testing.T, app *pocketbase.PocketBase, leadID, number, status string, grandTotal float64) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("quotations")
	if err != nil {
		t.Fatalf("failed to find quotations collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("lead", leadID)
	record.Set("quotation_number", number)
	record.Set("management_approval_status", status)
	record.Set("grand_total", grandTotal)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test quotation: %v", err)
	}

	return record
}

// CreateTestStore creates a store record.
func CreateTestStore(t *testing.T, app *pocketbase.PocketBase, name string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("stores")
	if err != nil {
		t.Fatalf("failed to find stores collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("name", name)
	record.Set("location", "Mumbai")

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test store: %v", err)
	}

	return record
}

// CreateTestMaterial creates a material record with the given stock levels.
func CreateTestMaterial(t *testing.T, app *pocketbase.PocketBase, name string, quantity, reorderLevel float64) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("materials")
	if err != nil {
		t.Fatalf("failed to find materials collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("name", name)
	record.Set("unit", "nos")
	record.Set("quantity", quantity)
	record.Set("reorder_level", reorderLevel)
	record.Set("unit_price", 100.0)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test material: %v", err)
	}

	return record
}

// CreateTestPurchaseOrder creates a PO record with the given status.
func CreateTestPurchaseOrder(t *testing.T, app *pocketbase.PocketBase, poNumber, status string, items any) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("purchase_orders")
	if err != nil {
		t.Fatalf("failed to find purchase_orders collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("po_number", poNumber)
	record.Set("supplier_name", "Test Supplier")
	record.Set("status", status)
	if items != nil {
		record.Set("items", items)
	}

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test PO: %v", err)
	}

	return record
}

// CreateTestMaterialRequest creates a material request with the given status.
func CreateTestMaterialRequest(t *testing.T, app *pocketbase.PocketBase, requestNumber, status string, items any) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("material_requests")
	if err != nil {
		t.Fatalf("failed to find material_requests collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("request_number", requestNumber)
	record.Set("status", status)
	if items != nil {
		record.Set("items", items)
	}

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test material request: %v", err)
	}

	return record
}
