package handlers

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"orcamento/services"
)

var offerSlots = []string{"p1", "p2", "p3", "m1", "m2", "m3"}

// HandleOfferUpsert handles POST /catalog/offers.
// There is at most one offer per (account, supplier, product); posting for an
// existing pair updates that row in place.
func HandleOfferUpsert(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := e.Request.ParseForm(); err != nil {
			return e.JSON(http.StatusBadRequest, map[string]any{"error": "Invalid form data"})
		}
		accountID := AccountID(e.Request)

		supplierID := strings.TrimSpace(e.Request.FormValue("supplier"))
		productID := strings.TrimSpace(e.Request.FormValue("product"))
		note := strings.TrimSpace(e.Request.FormValue("note"))

		fieldErrors := make(map[string]string)
		if supplierID == "" {
			fieldErrors["supplier"] = "Supplier is required"
		}
		if productID == "" {
			fieldErrors["product"] = "Product is required"
		}

		// Empty slots stay empty: "" is "no price", not zero.
		slots := make(map[string]string, len(offerSlots))
		for _, slot := range offerSlots {
			raw := strings.TrimSpace(e.Request.FormValue(slot))
			if raw == "" {
				slots[slot] = ""
				continue
			}
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				fieldErrors[slot] = "Must be a number"
				continue
			}
			if v < 0 {
				fieldErrors[slot] = "Must be zero or greater"
				continue
			}
			slots[slot] = strconv.FormatFloat(services.Round2(v), 'f', -1, 64)
		}

		if len(fieldErrors) > 0 {
			return respondFieldErrors(e, fieldErrors)
		}

		supplier, err := app.FindRecordById("suppliers", supplierID)
		if err != nil || supplier.GetString("account") != accountID {
			return e.JSON(http.StatusNotFound, map[string]any{"error": "supplier not found"})
		}
		product, err := app.FindRecordById("products", productID)
		if err != nil || product.GetString("account") != accountID {
			return e.JSON(http.StatusNotFound, map[string]any{"error": "product not found"})
		}

		record, err := app.FindFirstRecordByFilter(
			"offers",
			"account = {:account} && supplier = {:supplier} && product = {:product}",
			map[string]any{"account": accountID, "supplier": supplierID, "product": productID},
		)
		if err != nil {
			col, err := app.FindCollectionByNameOrId("offers")
			if err != nil {
				log.Printf("offer_upsert: could not find offers collection: %v", err)
				return e.JSON(http.StatusInternalServerError, map[string]any{"error": "Something went wrong. Please try again."})
			}
			record = core.NewRecord(col)
			record.Set("account", accountID)
			record.Set("supplier", supplierID)
			record.Set("product", productID)
		}

		for slot, value := range slots {
			record.Set(slot, value)
		}
		record.Set("note", note)

		if err := app.Save(record); err != nil {
			// The unique (account, supplier, product) index catches the
			// create/create race; the loser surfaces as a conflict.
			log.Printf("offer_upsert: save failed: %v", err)
			return e.JSON(http.StatusConflict, map[string]any{"error": "An offer for this supplier and product already exists"})
		}
		return e.JSON(http.StatusOK, map[string]any{"id": record.Id})
	}
}

// HandleProductTiers handles GET /catalog/products/{id}/tiers.
// Returns the global min/mid/max ranking for material and labor prices across
// all of the product's offers, plus the smart-add default selection.
func HandleProductTiers(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		accountID := AccountID(e.Request)
		productID := e.Request.PathValue("id")

		product, err := app.FindRecordById("products", productID)
		if err != nil || product.GetString("account") != accountID {
			return e.JSON(http.StatusNotFound, map[string]any{"error": "product not found"})
		}

		offers, err := services.ProductOffers(app, accountID, productID)
		if err != nil {
			log.Printf("product_tiers: %v", err)
			return e.JSON(http.StatusInternalServerError, map[string]any{"error": "Something went wrong. Please try again."})
		}

		supplierID, materialLabel, laborLabel := services.DefaultSelection(offers)
		return e.JSON(http.StatusOK, map[string]any{
			"material": tierSetJSON(services.ComputeTiers(services.MaterialPoints(offers))),
			"labor":    tierSetJSON(services.ComputeTiers(services.LaborPoints(offers))),
			"default": map[string]any{
				"supplier":        supplierID,
				"source_material": materialLabel,
				"source_labor":    laborLabel,
			},
		})
	}
}

func tierSetJSON(ts *services.TierSet) any {
	if ts == nil {
		return nil
	}
	ref := func(r services.TierRef) map[string]any {
		return map[string]any{
			"supplier": r.SupplierID,
			"label":    r.Label,
			"value":    r.Value,
		}
	}
	return map[string]any{
		"min": ref(ts.Min),
		"mid": ref(ts.Mid),
		"max": ref(ts.Max),
	}
}
