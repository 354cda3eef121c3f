package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"wbes/collections"
	"wbes/handlers"
)

func main() {
	// Optional .env for local development; real deployments set env directly.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("main: could not load .env: %v", err)
	}

	companyName := os.Getenv("WBES_COMPANY_NAME")
	if companyName == "" {
		companyName = "WBES Engineering Pvt Ltd"
	}

	app := pocketbase.New()

	// Create collections and seed demo data on startup
	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		collections.Setup(app)
		if os.Getenv("WBES_SEED_DEMO") == "true" {
			if err := collections.Seed(app); err != nil {
				log.Printf("Warning: seed data failed: %v", err)
			}
		}
		return se.Next()
	})

	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		// Resolve the gateway-supplied identity on every request
		se.Router.BindFunc(handlers.UserContextMiddleware(app))

		// ── Dashboard ────────────────────────────────────────────
		se.Router.GET("/api/dashboard/stats", handlers.HandleDashboardStats(app))

		// ── Leads ────────────────────────────────────────────────
		se.Router.GET("/api/leads", handlers.HandleLeadList(app))
		se.Router.POST("/api/leads", handlers.HandleLeadCreate(app))
		se.Router.GET("/api/leads/{id}", handlers.HandleLeadView(app))
		se.Router.PATCH("/api/leads/{id}", handlers.HandleLeadUpdate(app))
		se.Router.DELETE("/api/leads/{id}", handlers.HandleLeadDelete(app))
		se.Router.POST("/api/leads/{id}/convert", handlers.HandleLeadConvert(app))

		// ── Site visits ──────────────────────────────────────────
		se.Router.GET("/api/leads/{id}/site-visits", handlers.HandleLeadSiteVisitList(app))
		se.Router.POST("/api/leads/{id}/site-visits", handlers.HandleLeadSiteVisitCreate(app))
		se.Router.GET("/api/site-visits/project/{id}", handlers.HandleProjectSiteVisitList(app))
		se.Router.DELETE("/api/site-visits/{id}", handlers.HandleSiteVisitDelete(app))

		// ── Quotations ───────────────────────────────────────────
		se.Router.GET("/api/quotations", handlers.HandleQuotationList(app))
		se.Router.POST("/api/quotations", handlers.HandleQuotationCreate(app))
		se.Router.GET("/api/quotations/{id}", handlers.HandleQuotationView(app))
		se.Router.PATCH("/api/quotations/{id}", handlers.HandleQuotationUpdate(app))
		se.Router.DELETE("/api/quotations/{id}", handlers.HandleQuotationDelete(app))
		se.Router.POST("/api/quotations/{id}/approval", handlers.HandleQuotationApproval(app))
		se.Router.GET("/api/quotations/{id}/export/pdf", handlers.HandleQuotationExportPDF(app, companyName))

		// ── Revisions ────────────────────────────────────────────
		se.Router.GET("/api/quotations/{id}/revisions", handlers.HandleQuotationRevisionList(app))
		se.Router.POST("/api/quotations/{id}/revisions", handlers.HandleRevisionCreate(app))
		se.Router.GET("/api/revisions/{id}", handlers.HandleRevisionView(app))
		se.Router.GET("/api/revisions/{id}/diff", handlers.HandleRevisionDiff(app))
		se.Router.POST("/api/revisions/{id}/approval", handlers.HandleRevisionApproval(app))

		// ── Projects ─────────────────────────────────────────────
		se.Router.GET("/api/projects", handlers.HandleProjectList(app))
		se.Router.POST("/api/projects", handlers.HandleProjectCreate(app))
		se.Router.GET("/api/projects/{id}", handlers.HandleProjectView(app))
		se.Router.PATCH("/api/projects/{id}", handlers.HandleProjectUpdate(app))
		se.Router.DELETE("/api/projects/{id}", handlers.HandleProjectDelete(app))

		// ── Variations ───────────────────────────────────────────
		se.Router.GET("/api/projects/{id}/variations", handlers.HandleProjectVariationList(app))
		se.Router.POST("/api/projects/{id}/variations", handlers.HandleProjectVariationCreate(app))
		se.Router.POST("/api/variations/{id}/approval", handlers.HandleVariationApproval(app))
		se.Router.DELETE("/api/variations/{id}", handlers.HandleVariationDelete(app))

		// ── Stores & materials ───────────────────────────────────
		se.Router.GET("/api/stores", handlers.HandleStoreList(app))
		se.Router.POST("/api/stores", handlers.HandleStoreCreate(app))
		se.Router.GET("/api/materials", handlers.HandleMaterialList(app))
		se.Router.POST("/api/materials", handlers.HandleMaterialCreate(app))
		se.Router.GET("/api/materials/low-stock", handlers.HandleMaterialLowStock(app))
		se.Router.GET("/api/materials/export/excel", handlers.HandleMaterialExportExcel(app))
		se.Router.PATCH("/api/materials/{id}", handlers.HandleMaterialUpdate(app))
		se.Router.DELETE("/api/materials/{id}", handlers.HandleMaterialDelete(app))

		// ── Material requests ────────────────────────────────────
		se.Router.GET("/api/material-requests", handlers.HandleMaterialRequestList(app))
		se.Router.POST("/api/material-requests", handlers.HandleMaterialRequestCreate(app))
		se.Router.POST("/api/material-requests/{id}/approval", handlers.HandleMaterialRequestApproval(app))
		se.Router.POST("/api/material-requests/{id}/fulfill", handlers.HandleMaterialRequestFulfill(app))

		// ── Purchase orders ──────────────────────────────────────
		se.Router.GET("/api/purchase-orders", handlers.HandlePurchaseOrderList(app))
		se.Router.POST("/api/purchase-orders", handlers.HandlePurchaseOrderCreate(app))
		se.Router.GET("/api/purchase-orders/{id}", handlers.HandlePurchaseOrderView(app))
		se.Router.POST("/api/purchase-orders/{id}/approval", handlers.HandlePurchaseOrderApproval(app))
		se.Router.POST("/api/purchase-orders/{id}/receive", handlers.HandlePurchaseOrderReceive(app))
		se.Router.GET("/api/purchase-orders/{id}/export/pdf", handlers.HandlePOExportPDF(app, companyName))

		// ── Audit logs ───────────────────────────────────────────
		se.Router.GET("/api/audit-logs", handlers.HandleAuditLogList(app))
		se.Router.GET("/api/audit-logs/export/excel", handlers.HandleAuditLogExportExcel(app))

		// ── Users ────────────────────────────────────────────────
		se.Router.GET("/api/users", handlers.HandleUserList(app))
		se.Router.POST("/api/users", handlers.HandleUserCreate(app))
		se.Router.PATCH("/api/users/{id}", handlers.HandleUserUpdate(app))

		return se.Next()
	})

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}
