package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// Setup programmatically creates/ensures every WBES collection exists:
// staff, projects, leads, site_visits, quotations, revisions,
// project_variations, stores, materials, material_requests,
// purchase_orders and audit_logs.
func Setup(app *pocketbase.PocketBase) {
	staff := ensureCollection(app, "staff", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.EmailField{Name: "email", Required: false})
		c.Fields.Add(&core.SelectField{
			Name:      "role",
			Required:  true,
			Values:    []string{"admin", "manager", "estimator", "storekeeper"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.BoolField{Name: "active"})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})

	projects := ensureCollection(app, "projects", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.TextField{Name: "client_name", Required: false})
		c.Fields.Add(&core.TextField{Name: "reference_number", Required: false})
		c.Fields.Add(&core.SelectField{
			Name:      "status",
			Required:  true,
			Values:    []string{"active", "completed", "on_hold"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.DateField{Name: "start_date"})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})

	leads := ensureCollection(app, "leads", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "customer_name", Required: true})
		c.Fields.Add(&core.TextField{Name: "project_title", Required: false})
		c.Fields.Add(&core.TextField{Name: "contact_phone", Required: false})
		c.Fields.Add(&core.EmailField{Name: "contact_email", Required: false})
		c.Fields.Add(&core.SelectField{
			Name:      "source",
			Required:  false,
			Values:    []string{"referral", "website", "walk_in", "phone"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.RelationField{
			Name:         "project",
			Required:     false,
			CollectionId: projects.Id,
			MaxSelect:    1,
		})
		c.Fields.Add(&core.TextField{Name: "notes", Required: false})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})

	ensureCollection(app, "site_visits", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "lead",
			Required:      false,
			CollectionId:  leads.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.RelationField{
			Name:          "project",
			Required:      false,
			CollectionId:  projects.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.DateField{Name: "visit_date"})
		c.Fields.Add(&core.TextField{Name: "location", Required: false})
		c.Fields.Add(&core.TextField{Name: "engineer", Required: false})
		c.Fields.Add(&core.TextField{Name: "notes", Required: false})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
	})

	quotations := ensureCollection(app, "quotations", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "lead",
			Required:      true,
			CollectionId:  leads.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.TextField{Name: "quotation_number", Required: true})
		c.Fields.Add(&core.DateField{Name: "offer_date"})
		c.Fields.Add(&core.DateField{Name: "enquiry_date"})
		c.Fields.Add(&core.JSONField{Name: "company_info"})
		c.Fields.Add(&core.JSONField{Name: "scope_of_work"})
		c.Fields.Add(&core.JSONField{Name: "price_schedule"})
		c.Fields.Add(&core.JSONField{Name: "payment_terms"})
		c.Fields.Add(&core.JSONField{Name: "delivery_terms"})
		c.Fields.Add(&core.SelectField{
			Name:      "management_approval_status",
			Required:  true,
			Values:    []string{"draft", "pending", "approved", "rejected"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.NumberField{Name: "grand_total"})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})

	ensureCollection(app, "revisions", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "quotation",
			Required:      true,
			CollectionId:  quotations.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.NumberField{Name: "revision_number", Required: true})
		c.Fields.Add(&core.DateField{Name: "offer_date"})
		c.Fields.Add(&core.DateField{Name: "enquiry_date"})
		c.Fields.Add(&core.JSONField{Name: "company_info"})
		c.Fields.Add(&core.JSONField{Name: "scope_of_work"})
		c.Fields.Add(&core.JSONField{Name: "price_schedule"})
		c.Fields.Add(&core.JSONField{Name: "payment_terms"})
		c.Fields.Add(&core.JSONField{Name: "delivery_terms"})
		c.Fields.Add(&core.JSONField{Name: "diff_from_parent"})
		c.Fields.Add(&core.SelectField{
			Name:      "management_approval_status",
			Required:  true,
			Values:    []string{"pending", "approved", "rejected"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.NumberField{Name: "grand_total"})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})

	ensureCollection(app, "project_variations", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "project",
			Required:      true,
			CollectionId:  projects.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.TextField{Name: "title", Required: true})
		c.Fields.Add(&core.TextField{Name: "description", Required: false})
		c.Fields.Add(&core.NumberField{Name: "additional_cost"})
		c.Fields.Add(&core.SelectField{
			Name:      "management_approval_status",
			Required:  true,
			Values:    []string{"pending", "approved", "rejected"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})

	stores := ensureCollection(app, "stores", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.TextField{Name: "location", Required: false})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
	})

	ensureCollection(app, "materials", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.TextField{Name: "code", Required: false})
		c.Fields.Add(&core.TextField{Name: "unit", Required: true})
		c.Fields.Add(&core.RelationField{
			Name:         "store",
			Required:     false,
			CollectionId: stores.Id,
			MaxSelect:    1,
		})
		c.Fields.Add(&core.NumberField{Name: "quantity"})
		c.Fields.Add(&core.NumberField{Name: "reorder_level"})
		c.Fields.Add(&core.NumberField{Name: "unit_price"})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})

	ensureCollection(app, "material_requests", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "request_number", Required: true})
		c.Fields.Add(&core.RelationField{
			Name:         "project",
			Required:     false,
			CollectionId: projects.Id,
			MaxSelect:    1,
		})
		c.Fields.Add(&core.RelationField{
			Name:         "requested_by",
			Required:     false,
			CollectionId: staff.Id,
			MaxSelect:    1,
		})
		c.Fields.Add(&core.JSONField{Name: "items"})
		c.Fields.Add(&core.SelectField{
			Name:      "status",
			Required:  true,
			Values:    []string{"pending", "approved", "rejected", "fulfilled"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.TextField{Name: "remarks", Required: false})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})

	ensureCollection(app, "purchase_orders", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "po_number", Required: true})
		c.Fields.Add(&core.TextField{Name: "supplier_name", Required: true})
		c.Fields.Add(&core.RelationField{
			Name:         "store",
			Required:     false,
			CollectionId: stores.Id,
			MaxSelect:    1,
		})
		c.Fields.Add(&core.DateField{Name: "order_date"})
		c.Fields.Add(&core.JSONField{Name: "items"})
		c.Fields.Add(&core.SelectField{
			Name:      "status",
			Required:  true,
			Values:    []string{"pending", "approved", "rejected", "received"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.NumberField{Name: "total"})
		c.Fields.Add(&core.TextField{Name: "grn_number", Required: false})
		c.Fields.Add(&core.DateField{Name: "received_date"})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})

	ensureCollection(app, "audit_logs", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:         "user",
			Required:     false,
			CollectionId: staff.Id,
			MaxSelect:    1,
		})
		c.Fields.Add(&core.TextField{Name: "action", Required: true})
		c.Fields.Add(&core.TextField{Name: "collection_name", Required: true})
		c.Fields.Add(&core.TextField{Name: "record_id", Required: false})
		c.Fields.Add(&core.TextField{Name: "detail", Required: false})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
	})
}

// ensureCollection checks if a collection already exists by name. If it does,
// the existing collection is returned. Otherwise a new base collection is
// created, the addFields callback is invoked to populate its fields, and the
// collection is saved.
func ensureCollection(app *pocketbase.PocketBase, name string, addFields func(*core.Collection)) *core.Collection {
	existing, err := app.FindCollectionByNameOrId(name)
	if err == nil && existing != nil {
		log.Printf("Collection %q already exists, skipping creation.\n", name)
		return existing
	}

	collection := core.NewBaseCollection(name)
	addFields(collection)

	if err := app.Save(collection); err != nil {
		log.Fatalf("Failed to create collection %q: %v", name, err)
	}

	fmt.Printf("Created collection %q (id=%s)\n", name, collection.Id)
	return collection
}
