// Package testhelpers provides utilities for testing PocketBase-based applications.
package testhelpers

import (
	"strconv"
	"testing"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"orcamento/collections"
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

// CreateTestAccount creates an account with a deterministic external token.
func CreateTestAccount(t *testing.T, app *pocketbase.PocketBase, name string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("accounts")
	if err != nil {
		t.Fatalf("failed to find accounts collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("external_id", "tok-"+name)
	record.Set("name", name)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test account: %v", err)
	}
	return record
}

// CreateTestUnit creates a unit of measure owned by the account.
func CreateTestUnit(t *testing.T, app *pocketbase.PocketBase, accountID, label string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("units")
	if err != nil {
		t.Fatalf("failed to find units collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("account", accountID)
	record.Set("label", label)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test unit: %v", err)
	}
	return record
}

// CreateTestProduct creates a product owned by the account.
func CreateTestProduct(t *testing.T, app *pocketbase.PocketBase, accountID, name string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("products")
	if err != nil {
		t.Fatalf("failed to find products collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("account", accountID)
	record.Set("name", name)
	record.Set("category", "General")
	record.Set("kind", "both")

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test product: %v", err)
	}
	return record
}

// CreateTestSupplier creates a supplier owned by the account.
func CreateTestSupplier(t *testing.T, app *pocketbase.PocketBase, accountID, name string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("suppliers")
	if err != nil {
		t.Fatalf("failed to find suppliers collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("account", accountID)
	record.Set("name", name)
	record.Set("tax_id", "12.345.678/0001-90")

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test supplier: %v", err)
	}
	return record
}

// CreateTestOffer creates an offer with the given price slots. Slots absent
// from the map stay empty ("" = no price).
func CreateTestOffer(t *testing.T, app *pocketbase.PocketBase, accountID, supplierID, productID string, slots map[string]float64) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("offers")
	if err != nil {
		t.Fatalf("failed to find offers collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("account", accountID)
	record.Set("supplier", supplierID)
	record.Set("product", productID)
	for slot, value := range slots {
		record.Set(slot, strconv.FormatFloat(value, 'f', -1, 64))
	}

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test offer: %v", err)
	}
	return record
}

// CreateTestProject creates a project owned by the account.
func CreateTestProject(t *testing.T, app *pocketbase.PocketBase, accountID, name string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("projects")
	if err != nil {
		t.Fatalf("failed to find projects collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("account", accountID)
	record.Set("name", name)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test project: %v", err)
	}
	return record
}

// CreateTestEstimate creates an estimate linked to a project.
func CreateTestEstimate(t *testing.T, app *pocketbase.PocketBase, accountID, projectID, name string, approved bool) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("estimates")
	if err != nil {
		t.Fatalf("failed to find estimates collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("account", accountID)
	record.Set("project", projectID)
	record.Set("name", name)
	record.Set("approved", approved)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test estimate: %v", err)
	}
	return record
}
