package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// HandleProductSave handles POST /catalog/products and POST
// /catalog/products/{id}/save. Creates or updates a product owned by the
// acting account.
func HandleProductSave(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := e.Request.ParseForm(); err != nil {
			return e.JSON(http.StatusBadRequest, map[string]any{"error": "Invalid form data"})
		}
		accountID := AccountID(e.Request)

		name := strings.TrimSpace(e.Request.FormValue("name"))
		category := strings.TrimSpace(e.Request.FormValue("category"))
		kind := strings.TrimSpace(e.Request.FormValue("kind"))
		unitID := strings.TrimSpace(e.Request.FormValue("unit"))

		fieldErrors := make(map[string]string)
		if name == "" {
			fieldErrors["name"] = "Name is required"
		}
		switch kind {
		case "good", "service", "both":
		default:
			fieldErrors["kind"] = "Kind must be good, service or both"
		}
		if len(fieldErrors) > 0 {
			return respondFieldErrors(e, fieldErrors)
		}

		if unitID != "" {
			unit, err := app.FindRecordById("units", unitID)
			if err != nil || unit.GetString("account") != accountID {
				return e.JSON(http.StatusNotFound, map[string]any{"error": "unit not found"})
			}
		}

		record, err := findOrNewOwned(app, accountID, "products", e.Request.PathValue("id"))
		if err != nil {
			return e.JSON(http.StatusNotFound, map[string]any{"error": "product not found"})
		}
		record.Set("account", accountID)
		record.Set("name", name)
		record.Set("category", category)
		record.Set("kind", kind)
		record.Set("unit", unitID)

		if err := app.Save(record); err != nil {
			log.Printf("product_save: %v", err)
			return e.JSON(http.StatusInternalServerError, map[string]any{"error": "Something went wrong. Please try again."})
		}
		return e.JSON(http.StatusOK, map[string]any{"id": record.Id})
	}
}

// HandleProductList handles GET /catalog/products.
func HandleProductList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		accountID := AccountID(e.Request)
		records, err := app.FindRecordsByFilter(
			"products",
			"account = {:account}",
			"name",
			0,
			0,
			map[string]any{"account": accountID},
		)
		if err != nil {
			log.Printf("product_list: %v", err)
			return e.JSON(http.StatusInternalServerError, map[string]any{"error": "Something went wrong. Please try again."})
		}

		products := make([]map[string]any, 0, len(records))
		for _, rec := range records {
			products = append(products, map[string]any{
				"id":       rec.Id,
				"name":     rec.GetString("name"),
				"category": rec.GetString("category"),
				"kind":     rec.GetString("kind"),
				"unit":     rec.GetString("unit"),
			})
		}
		return e.JSON(http.StatusOK, map[string]any{"products": products})
	}
}

// HandleSupplierSave handles POST /catalog/suppliers and POST
// /catalog/suppliers/{id}/save.
func HandleSupplierSave(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := e.Request.ParseForm(); err != nil {
			return e.JSON(http.StatusBadRequest, map[string]any{"error": "Invalid form data"})
		}
		accountID := AccountID(e.Request)

		name := strings.TrimSpace(e.Request.FormValue("name"))
		taxID := strings.TrimSpace(e.Request.FormValue("tax_id"))
		contactNote := strings.TrimSpace(e.Request.FormValue("contact_note"))

		if name == "" {
			return respondFieldErrors(e, map[string]string{"name": "Name is required"})
		}

		record, err := findOrNewOwned(app, accountID, "suppliers", e.Request.PathValue("id"))
		if err != nil {
			return e.JSON(http.StatusNotFound, map[string]any{"error": "supplier not found"})
		}
		record.Set("account", accountID)
		record.Set("name", name)
		record.Set("tax_id", taxID)
		record.Set("contact_note", contactNote)

		if err := app.Save(record); err != nil {
			log.Printf("supplier_save: %v", err)
			return e.JSON(http.StatusInternalServerError, map[string]any{"error": "Something went wrong. Please try again."})
		}
		return e.JSON(http.StatusOK, map[string]any{"id": record.Id})
	}
}

// HandleSupplierList handles GET /catalog/suppliers.
func HandleSupplierList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		accountID := AccountID(e.Request)
		records, err := app.FindRecordsByFilter(
			"suppliers",
			"account = {:account}",
			"name",
			0,
			0,
			map[string]any{"account": accountID},
		)
		if err != nil {
			log.Printf("supplier_list: %v", err)
			return e.JSON(http.StatusInternalServerError, map[string]any{"error": "Something went wrong. Please try again."})
		}

		suppliers := make([]map[string]any, 0, len(records))
		for _, rec := range records {
			suppliers = append(suppliers, map[string]any{
				"id":           rec.Id,
				"name":         rec.GetString("name"),
				"tax_id":       rec.GetString("tax_id"),
				"contact_note": rec.GetString("contact_note"),
			})
		}
		return e.JSON(http.StatusOK, map[string]any{"suppliers": suppliers})
	}
}

// HandleUnitSave handles POST /catalog/units.
func HandleUnitSave(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := e.Request.ParseForm(); err != nil {
			return e.JSON(http.StatusBadRequest, map[string]any{"error": "Invalid form data"})
		}
		accountID := AccountID(e.Request)

		label := strings.TrimSpace(e.Request.FormValue("label"))
		description := strings.TrimSpace(e.Request.FormValue("description"))

		if label == "" {
			return respondFieldErrors(e, map[string]string{"label": "Label is required"})
		}

		record, err := findOrNewOwned(app, accountID, "units", e.Request.PathValue("id"))
		if err != nil {
			return e.JSON(http.StatusNotFound, map[string]any{"error": "unit not found"})
		}
		record.Set("account", accountID)
		record.Set("label", label)
		record.Set("description", description)

		if err := app.Save(record); err != nil {
			log.Printf("unit_save: %v", err)
			return e.JSON(http.StatusInternalServerError, map[string]any{"error": "Something went wrong. Please try again."})
		}
		return e.JSON(http.StatusOK, map[string]any{"id": record.Id})
	}
}

// findOrNewOwned loads an owned record for update, or returns a fresh record
// when id is empty.
func findOrNewOwned(app *pocketbase.PocketBase, accountID, collection, id string) (*core.Record, error) {
	if id == "" {
		col, err := app.FindCollectionByNameOrId(collection)
		if err != nil {
			return nil, err
		}
		return core.NewRecord(col), nil
	}
	record, err := app.FindRecordById(collection, id)
	if err != nil {
		return nil, err
	}
	if record.GetString("account") != accountID {
		return nil, errNotOwned
	}
	return record, nil
}

var errNotOwned = &ownershipError{}

type ownershipError struct{}

func (e *ownershipError) Error() string { return "record does not belong to the acting account" }
