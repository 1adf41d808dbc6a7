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

// HandleItemAdd handles POST /estimates/{id}/items.
// Resolves and freezes the selected tier prices onto a new line item.
func HandleItemAdd(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		return saveItem(app, e, "")
	}
}

// HandleItemUpdate handles PATCH /items/{id}.
// Re-selecting a supplier or tier re-freezes the unit prices.
func HandleItemUpdate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		itemID := e.Request.PathValue("id")
		if itemID == "" {
			return e.JSON(http.StatusBadRequest, map[string]any{"error": "Missing line item id"})
		}
		return saveItem(app, e, itemID)
	}
}

func saveItem(app *pocketbase.PocketBase, e *core.RequestEvent, itemID string) error {
	if err := e.Request.ParseForm(); err != nil {
		return e.JSON(http.StatusBadRequest, map[string]any{"error": "Invalid form data"})
	}
	accountID := AccountID(e.Request)

	quantityStr := strings.TrimSpace(e.Request.FormValue("quantity"))
	quantity, err := strconv.ParseFloat(quantityStr, 64)
	if err != nil {
		quantity = 0
	}

	in := services.LineItemInput{
		EstimateID:     e.Request.PathValue("id"),
		ProductID:      strings.TrimSpace(e.Request.FormValue("product")),
		SupplierID:     strings.TrimSpace(e.Request.FormValue("supplier")),
		UnitID:         strings.TrimSpace(e.Request.FormValue("unit")),
		Quantity:       quantity,
		MaterialLabel:  strings.TrimSpace(e.Request.FormValue("source_material")),
		LaborLabel:     strings.TrimSpace(e.Request.FormValue("source_labor")),
		ManualMaterial: optionalFloat(e.Request.FormValue("unit_material")),
		ManualLabor:    optionalFloat(e.Request.FormValue("unit_labor")),
		GroupTag:       strings.TrimSpace(e.Request.FormValue("group_tag")),
	}
	if itemID != "" {
		in.EstimateID = ""
	}

	adj, fieldErr := parseAdjustment(e.Request.FormValue("adjustment_kind"), e.Request.FormValue("adjustment_value"))
	if fieldErr != nil {
		return respondFieldErrors(e, fieldErr)
	}
	in.Adjustment = adj

	record, err := services.UpsertLineItem(app, accountID, itemID, in)
	if err != nil {
		return respondServiceError(e, "item_save", err)
	}

	return e.JSON(http.StatusOK, itemJSON(record))
}

// HandleItemAdjustment handles PATCH /items/{id}/adjustment.
// Changes only the adjustment: frozen unit prices stay untouched and the
// totals are recomputed from them. An empty kind clears the adjustment.
func HandleItemAdjustment(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := e.Request.ParseForm(); err != nil {
			return e.JSON(http.StatusBadRequest, map[string]any{"error": "Invalid form data"})
		}
		accountID := AccountID(e.Request)
		itemID := e.Request.PathValue("id")

		adj, fieldErr := parseAdjustment(e.Request.FormValue("adjustment_kind"), e.Request.FormValue("adjustment_value"))
		if fieldErr != nil {
			return respondFieldErrors(e, fieldErr)
		}

		record, err := services.UpdateAdjustment(app, accountID, itemID, adj)
		if err != nil {
			return respondServiceError(e, "item_adjustment", err)
		}
		return e.JSON(http.StatusOK, itemJSON(record))
	}
}

// HandleItemDelete handles DELETE /items/{id}.
func HandleItemDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		accountID := AccountID(e.Request)
		itemID := e.Request.PathValue("id")

		if err := services.DeleteLineItem(app, accountID, itemID); err != nil {
			return respondServiceError(e, "item_delete", err)
		}
		log.Printf("item_delete: removed %s", itemID)
		return e.JSON(http.StatusOK, map[string]any{"deleted": itemID})
	}
}

func parseAdjustment(kindRaw, valueRaw string) (*services.Adjustment, map[string]string) {
	kind := strings.TrimSpace(kindRaw)
	if kind == "" {
		return nil, nil
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(valueRaw), 64)
	if err != nil {
		return nil, map[string]string{"adjustment_value": "Must be a number"}
	}
	return &services.Adjustment{Kind: kind, Value: value}, nil
}

func optionalFloat(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}

func itemJSON(record *core.Record) map[string]any {
	unitMaterial, unitLabor := services.LineUnitPrices(record)
	return map[string]any{
		"id":              record.Id,
		"estimate":        record.GetString("estimate"),
		"quantity":        record.GetFloat("quantity"),
		"source_material": record.GetString("source_material"),
		"source_labor":    record.GetString("source_labor"),
		"unit_material":   unitMaterial,
		"unit_labor":      unitLabor,
		"cost_total":      services.LineCostTotal(record),
		"sale_total":      record.GetFloat("total_item"),
	}
}
