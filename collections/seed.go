package collections

import (
	"fmt"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// ── Definition structs ───────────────────────────────────────────────────

type unitDef struct {
	label       string
	description string
}

type productDef struct {
	name     string
	category string
	kind     string
	unit     string
}

type offerDef struct {
	supplier string
	product  string
	slots    map[string]string
}

var seedUnits = []unitDef{
	{"m2", "square meter"},
	{"un", "unit"},
	{"h", "hour"},
}

var seedProducts = []productDef{
	{"Acrylic Paint", "Finishing", "good", "un"},
	{"Wall Painting", "Finishing", "both", "m2"},
	{"Electrical Point", "Electrical", "service", "un"},
}

var seedSuppliers = []string{"Central Supplies", "Prime Materials"}

var seedOffers = []offerDef{
	{"Central Supplies", "Wall Painting", map[string]string{
		"p1": "28.5", "p2": "32", "p3": "35",
		"m1": "18", "m2": "22", "m3": "25",
	}},
	{"Prime Materials", "Wall Painting", map[string]string{
		"p1": "30", "p2": "33.9",
		"m1": "20",
	}},
	{"Central Supplies", "Electrical Point", map[string]string{
		"m1": "45", "m2": "60", "m3": "80",
	}},
}

// Seed creates a demo account with a small catalog and tiered offers so a
// fresh instance has something to explore. Runs once: any existing account
// skips the whole seed.
func Seed(app *pocketbase.PocketBase) error {
	existing, err := app.FindAllRecords("accounts")
	if err == nil && len(existing) > 0 {
		return nil
	}

	accountsCol, err := app.FindCollectionByNameOrId("accounts")
	if err != nil {
		return fmt.Errorf("seed: could not find accounts collection: %w", err)
	}
	account := core.NewRecord(accountsCol)
	account.Set("external_id", "demo")
	account.Set("name", "Demo Account")
	if err := app.Save(account); err != nil {
		return fmt.Errorf("seed: could not save demo account: %w", err)
	}

	unitsCol, err := app.FindCollectionByNameOrId("units")
	if err != nil {
		return fmt.Errorf("seed: could not find units collection: %w", err)
	}
	unitIDs := make(map[string]string, len(seedUnits))
	for _, def := range seedUnits {
		record := core.NewRecord(unitsCol)
		record.Set("account", account.Id)
		record.Set("label", def.label)
		record.Set("description", def.description)
		if err := app.Save(record); err != nil {
			return fmt.Errorf("seed: could not save unit %q: %w", def.label, err)
		}
		unitIDs[def.label] = record.Id
	}

	productsCol, err := app.FindCollectionByNameOrId("products")
	if err != nil {
		return fmt.Errorf("seed: could not find products collection: %w", err)
	}
	productIDs := make(map[string]string, len(seedProducts))
	for _, def := range seedProducts {
		record := core.NewRecord(productsCol)
		record.Set("account", account.Id)
		record.Set("name", def.name)
		record.Set("category", def.category)
		record.Set("kind", def.kind)
		record.Set("unit", unitIDs[def.unit])
		if err := app.Save(record); err != nil {
			return fmt.Errorf("seed: could not save product %q: %w", def.name, err)
		}
		productIDs[def.name] = record.Id
	}

	suppliersCol, err := app.FindCollectionByNameOrId("suppliers")
	if err != nil {
		return fmt.Errorf("seed: could not find suppliers collection: %w", err)
	}
	supplierIDs := make(map[string]string, len(seedSuppliers))
	for _, name := range seedSuppliers {
		record := core.NewRecord(suppliersCol)
		record.Set("account", account.Id)
		record.Set("name", name)
		if err := app.Save(record); err != nil {
			return fmt.Errorf("seed: could not save supplier %q: %w", name, err)
		}
		supplierIDs[name] = record.Id
	}

	offersCol, err := app.FindCollectionByNameOrId("offers")
	if err != nil {
		return fmt.Errorf("seed: could not find offers collection: %w", err)
	}
	for _, def := range seedOffers {
		record := core.NewRecord(offersCol)
		record.Set("account", account.Id)
		record.Set("supplier", supplierIDs[def.supplier])
		record.Set("product", productIDs[def.product])
		for slot, value := range def.slots {
			record.Set(slot, value)
		}
		if err := app.Save(record); err != nil {
			return fmt.Errorf("seed: could not save offer %s/%s: %w", def.supplier, def.product, err)
		}
	}

	return nil
}
