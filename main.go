package main

import (
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"orcamento/collections"
	"orcamento/handlers"
)

func main() {
	app := pocketbase.New()

	// Create collections and seed data on startup
	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		collections.Setup(app)
		if err := collections.Seed(app); err != nil {
			log.Printf("Warning: seed data failed: %v", err)
		}
		return se.Next()
	})

	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		// Every operation runs behind account resolution
		se.Router.BindFunc(handlers.RequireAccount(app))

		// ── Catalog ──────────────────────────────────────────────
		se.Router.GET("/catalog/products", handlers.HandleProductList(app))
		se.Router.POST("/catalog/products", handlers.HandleProductSave(app))
		se.Router.POST("/catalog/products/{id}/save", handlers.HandleProductSave(app))
		se.Router.GET("/catalog/products/{id}/tiers", handlers.HandleProductTiers(app))
		se.Router.GET("/catalog/suppliers", handlers.HandleSupplierList(app))
		se.Router.POST("/catalog/suppliers", handlers.HandleSupplierSave(app))
		se.Router.POST("/catalog/suppliers/{id}/save", handlers.HandleSupplierSave(app))
		se.Router.POST("/catalog/units", handlers.HandleUnitSave(app))
		se.Router.POST("/catalog/offers", handlers.HandleOfferUpsert(app))

		// ── Projects & estimates ─────────────────────────────────
		se.Router.GET("/projects", handlers.HandleProjectList(app))
		se.Router.POST("/projects", handlers.HandleProjectSave(app))
		se.Router.GET("/projects/{projectId}/estimate", handlers.HandleEstimateScreen(app))
		se.Router.GET("/estimates/{id}/totals", handlers.HandleEstimateTotals(app))
		se.Router.POST("/estimates/{id}/approval", handlers.HandleEstimateToggleApproval(app))

		// ── Line items ───────────────────────────────────────────
		se.Router.POST("/estimates/{id}/items", handlers.HandleItemAdd(app))
		se.Router.PATCH("/items/{id}", handlers.HandleItemUpdate(app))
		se.Router.PATCH("/items/{id}/adjustment", handlers.HandleItemAdjustment(app))
		se.Router.DELETE("/items/{id}", handlers.HandleItemDelete(app))

		// ── Financial overlay ────────────────────────────────────
		se.Router.POST("/financial/adjustments", handlers.HandleAdjustmentSave(app))
		se.Router.DELETE("/financial/adjustments", handlers.HandleAdjustmentDelete(app))
		se.Router.GET("/projects/{projectId}/financial", handlers.HandleFinancialView(app))

		return se.Next()
	})

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}
