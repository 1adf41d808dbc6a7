package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// Setup programmatically creates/ensures all application collections.
//
// Every domain collection carries an "account" relation so catalog and
// estimate data stays scoped to the owning account. Offer price slots and
// frozen line item unit prices are text columns because a number column
// cannot distinguish "no price source" from an actual zero price.
func Setup(app *pocketbase.PocketBase) {
	accounts := ensureCollection(app, "accounts", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "external_id", Required: true})
		c.Fields.Add(&core.TextField{Name: "name", Required: false})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
		c.AddIndex("idx_accounts_external_id", true, "external_id", "")
	})

	units := ensureCollection(app, "units", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "account",
			Required:      true,
			CollectionId:  accounts.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.TextField{Name: "label", Required: true})
		c.Fields.Add(&core.TextField{Name: "description", Required: false})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})

	products := ensureCollection(app, "products", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "account",
			Required:      true,
			CollectionId:  accounts.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.TextField{Name: "category", Required: false})
		c.Fields.Add(&core.SelectField{
			Name:      "kind",
			Required:  true,
			Values:    []string{"good", "service", "both"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.RelationField{
			Name:         "unit",
			Required:     false,
			CollectionId: units.Id,
			MaxSelect:    1,
		})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})

	suppliers := ensureCollection(app, "suppliers", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "account",
			Required:      true,
			CollectionId:  accounts.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.TextField{Name: "tax_id", Required: false})
		c.Fields.Add(&core.TextField{Name: "contact_note", Required: false})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})

	ensureCollection(app, "offers", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "account",
			Required:      true,
			CollectionId:  accounts.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.RelationField{
			Name:          "supplier",
			Required:      true,
			CollectionId:  suppliers.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.RelationField{
			Name:          "product",
			Required:      true,
			CollectionId:  products.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		// Material tiers P1-P3 and labor tiers M1-M3, "" = slot empty.
		for _, slot := range []string{"p1", "p2", "p3", "m1", "m2", "m3"} {
			c.Fields.Add(&core.TextField{Name: slot, Required: false})
		}
		c.Fields.Add(&core.TextField{Name: "note", Required: false})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
		c.AddIndex("idx_offers_account_supplier_product", true, "account, supplier, product", "")
	})

	projects := ensureCollection(app, "projects", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "account",
			Required:      true,
			CollectionId:  accounts.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.TextField{Name: "client_name", Required: false})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})

	estimates := ensureCollection(app, "estimates", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "account",
			Required:      true,
			CollectionId:  accounts.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.RelationField{
			Name:          "project",
			Required:      true,
			CollectionId:  projects.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.BoolField{Name: "approved"})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})

	lineItems := ensureCollection(app, "line_items", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "account",
			Required:      true,
			CollectionId:  accounts.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.RelationField{
			Name:          "estimate",
			Required:      true,
			CollectionId:  estimates.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.RelationField{
			Name:         "product",
			Required:     true,
			CollectionId: products.Id,
			MaxSelect:    1,
		})
		c.Fields.Add(&core.RelationField{
			Name:         "supplier",
			Required:     false,
			CollectionId: suppliers.Id,
			MaxSelect:    1,
		})
		c.Fields.Add(&core.RelationField{
			Name:         "unit",
			Required:     false,
			CollectionId: units.Id,
			MaxSelect:    1,
		})
		c.Fields.Add(&core.NumberField{Name: "quantity", Required: true})
		c.Fields.Add(&core.SelectField{
			Name:      "source_material",
			Required:  false,
			Values:    []string{"P1", "P2", "P3", "MANUAL"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.SelectField{
			Name:      "source_labor",
			Required:  false,
			Values:    []string{"M1", "M2", "M3", "MANUAL"},
			MaxSelect: 1,
		})
		// Frozen unit prices, "" = no price source (distinct from "0").
		c.Fields.Add(&core.TextField{Name: "unit_material", Required: false})
		c.Fields.Add(&core.TextField{Name: "unit_labor", Required: false})
		c.Fields.Add(&core.SelectField{
			Name:      "adjustment_kind",
			Required:  false,
			Values:    []string{"percent", "fixed"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.NumberField{Name: "adjustment_value", Required: false})
		// total_item holds the SALE total; the cost total is always
		// recomputed from quantity and the frozen unit prices.
		c.Fields.Add(&core.NumberField{Name: "total_item", Required: false})
		c.Fields.Add(&core.TextField{Name: "group_tag", Required: false})
		c.Fields.Add(&core.NumberField{Name: "sort_order", Required: false})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})

	ensureCollection(app, "financial_adjustments", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "account",
			Required:      true,
			CollectionId:  accounts.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		// Exactly one of line_item/project is set (enforced by the service).
		c.Fields.Add(&core.RelationField{
			Name:          "line_item",
			Required:      false,
			CollectionId:  lineItems.Id,
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
		c.Fields.Add(&core.SelectField{
			Name:      "kind",
			Required:  true,
			Values:    []string{"percent", "fixed", "honorarium"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.NumberField{Name: "value", Required: false})
		c.Fields.Add(&core.TextField{Name: "note", Required: false})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
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
