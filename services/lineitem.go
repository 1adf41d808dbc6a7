package services

import (
	"fmt"
	"math"

	"github.com/pocketbase/pocketbase/core"
)

// Adjustment kinds. Percent and fixed apply per line; honorarium only exists
// in the financial ledger, scoped to a project.
const (
	AdjustPercent    = "percent"
	AdjustFixed      = "fixed"
	AdjustHonorarium = "honorarium"
)

// Adjustment transforms a line's sale total. Kind "percent" scales the cost
// total by 1+Value/100 (clamped at zero); kind "fixed" replaces the sale
// total with Value outright.
type Adjustment struct {
	Kind  string
	Value float64
}

// Round2 rounds to 2 decimals, half up. The epsilon absorbs binary
// representation error so 10.005 rounds to 10.01 even though its float64
// value sits just below the decimal halfway point.
func Round2(v float64) float64 {
	return math.Floor(v*100+0.5+1e-9) / 100
}

// Round3 rounds to 3 decimals, half up. Used for quantities.
func Round3(v float64) float64 {
	return math.Floor(v*1000+0.5+1e-9) / 1000
}

// CostTotal is quantity x (unitMaterial + unitLabor) rounded to 2 decimals.
// Unset prices count as zero; the unset-ness itself lives in storage.
func CostTotal(quantity float64, unitMaterial, unitLabor *float64) float64 {
	var m, l float64
	if unitMaterial != nil {
		m = *unitMaterial
	}
	if unitLabor != nil {
		l = *unitLabor
	}
	return Round2(quantity * (m + l))
}

// SaleTotal derives the client-facing total from the cost total and an
// optional adjustment.
func SaleTotal(cost float64, adj *Adjustment) float64 {
	if adj == nil {
		return cost
	}
	switch adj.Kind {
	case AdjustPercent:
		return Round2(math.Max(0, cost*(1+adj.Value/100)))
	case AdjustFixed:
		return Round2(adj.Value)
	}
	return cost
}

// LineItemInput is the payload for creating or re-editing an estimate line.
type LineItemInput struct {
	EstimateID string
	ProductID  string
	SupplierID string
	UnitID     string
	Quantity   float64

	MaterialLabel  string
	LaborLabel     string
	ManualMaterial *float64
	ManualLabor    *float64

	Adjustment *Adjustment
	GroupTag   string
}

// UpsertLineItem creates a line item (itemID == "") or re-edits an existing
// one. Both paths resolve and freeze the unit prices at this moment: later
// offer edits never reach a saved line. Validation fully precedes the write.
func UpsertLineItem(app core.App, accountID, itemID string, in LineItemInput) (*core.Record, error) {
	if math.IsNaN(in.Quantity) || math.IsInf(in.Quantity, 0) || in.Quantity <= 0 {
		return nil, &ValidationError{Field: "quantity", Message: "must be a number greater than zero"}
	}
	if !ValidMaterialSource(in.MaterialLabel) {
		return nil, &ValidationError{Field: "source_material", Message: "invalid material price source"}
	}
	if !ValidLaborSource(in.LaborLabel) {
		return nil, &ValidationError{Field: "source_labor", Message: "invalid labor price source"}
	}
	if err := validateAdjustment(in.Adjustment); err != nil {
		return nil, err
	}

	var record *core.Record
	if itemID == "" {
		estimate, err := ownedRecord(app, accountID, "estimates", in.EstimateID, "estimate")
		if err != nil {
			return nil, err
		}
		col, err := app.FindCollectionByNameOrId("line_items")
		if err != nil {
			return nil, fmt.Errorf("line item: could not find collection: %w", err)
		}
		record = core.NewRecord(col)
		record.Set("account", accountID)
		record.Set("estimate", estimate.Id)
		record.Set("sort_order", nextSortOrder(app, estimate.Id))
	} else {
		existing, err := ownedRecord(app, accountID, "line_items", itemID, "line item")
		if err != nil {
			return nil, err
		}
		record = existing
	}

	if _, err := ownedRecord(app, accountID, "products", in.ProductID, "product"); err != nil {
		return nil, err
	}
	if in.SupplierID != "" {
		if _, err := ownedRecord(app, accountID, "suppliers", in.SupplierID, "supplier"); err != nil {
			return nil, err
		}
	}
	if in.UnitID != "" {
		if _, err := ownedRecord(app, accountID, "units", in.UnitID, "unit"); err != nil {
			return nil, err
		}
	}

	material, labor, err := SelectPrices(app, accountID, in.SupplierID, in.ProductID,
		in.MaterialLabel, in.LaborLabel, in.ManualMaterial, in.ManualLabor)
	if err != nil {
		return nil, err
	}

	quantity := Round3(in.Quantity)
	cost := CostTotal(quantity, material.Ptr(), labor.Ptr())

	record.Set("product", in.ProductID)
	record.Set("supplier", in.SupplierID)
	record.Set("unit", in.UnitID)
	record.Set("quantity", quantity)
	record.Set("source_material", in.MaterialLabel)
	record.Set("source_labor", in.LaborLabel)
	record.Set("unit_material", slotString(material))
	record.Set("unit_labor", slotString(labor))
	record.Set("group_tag", in.GroupTag)
	applyAdjustment(record, cost, in.Adjustment)

	if err := app.Save(record); err != nil {
		return nil, fmt.Errorf("line item: save failed: %w", err)
	}
	return record, nil
}

// UpdateAdjustment changes only the adjustment of an existing line. The
// frozen unit prices stay untouched; both totals are recomputed from them.
// A nil adjustment clears any previous one.
func UpdateAdjustment(app core.App, accountID, itemID string, adj *Adjustment) (*core.Record, error) {
	if err := validateAdjustment(adj); err != nil {
		return nil, err
	}

	record, err := ownedRecord(app, accountID, "line_items", itemID, "line item")
	if err != nil {
		return nil, err
	}

	cost := LineCostTotal(record)
	applyAdjustment(record, cost, adj)

	if err := app.Save(record); err != nil {
		return nil, fmt.Errorf("line item: save failed: %w", err)
	}
	return record, nil
}

// DeleteLineItem removes a line item; the estimate total shrinks by exactly
// the line's prior sale total.
func DeleteLineItem(app core.App, accountID, itemID string) error {
	record, err := ownedRecord(app, accountID, "line_items", itemID, "line item")
	if err != nil {
		return err
	}
	if err := app.Delete(record); err != nil {
		return fmt.Errorf("line item: delete failed: %w", err)
	}
	return nil
}

// LineUnitPrices reads the frozen unit prices of a stored line item.
func LineUnitPrices(record *core.Record) (unitMaterial, unitLabor *float64) {
	if v, ok := parseSlot(record.GetString("unit_material")); ok {
		unitMaterial = &v
	}
	if v, ok := parseSlot(record.GetString("unit_labor")); ok {
		unitLabor = &v
	}
	return unitMaterial, unitLabor
}

// LineCostTotal recomputes a stored line's unadjusted cost total.
func LineCostTotal(record *core.Record) float64 {
	m, l := LineUnitPrices(record)
	return CostTotal(record.GetFloat("quantity"), m, l)
}

// LineAdjustment reads a stored line's adjustment, or nil when none is set.
func LineAdjustment(record *core.Record) *Adjustment {
	kind := record.GetString("adjustment_kind")
	if kind == "" {
		return nil
	}
	return &Adjustment{Kind: kind, Value: record.GetFloat("adjustment_value")}
}

func applyAdjustment(record *core.Record, cost float64, adj *Adjustment) {
	if adj == nil {
		record.Set("adjustment_kind", "")
		record.Set("adjustment_value", 0)
	} else {
		record.Set("adjustment_kind", adj.Kind)
		record.Set("adjustment_value", adj.Value)
	}
	record.Set("total_item", SaleTotal(cost, adj))
}

func validateAdjustment(adj *Adjustment) error {
	if adj == nil {
		return nil
	}
	if adj.Kind != AdjustPercent && adj.Kind != AdjustFixed {
		return &ValidationError{Field: "adjustment_kind", Message: "must be percent or fixed"}
	}
	if math.IsNaN(adj.Value) || math.IsInf(adj.Value, 0) {
		return &ValidationError{Field: "adjustment_value", Message: "must be a finite number"}
	}
	return nil
}

// ownedRecord loads a record and checks it belongs to the acting account.
// A foreign record reads the same as a missing one.
func ownedRecord(app core.App, accountID, collection, id, entity string) (*core.Record, error) {
	if id == "" {
		return nil, &NotFoundError{Entity: entity}
	}
	record, err := app.FindRecordById(collection, id)
	if err != nil {
		return nil, &NotFoundError{Entity: entity}
	}
	if record.GetString("account") != accountID {
		return nil, &NotFoundError{Entity: entity}
	}
	return record, nil
}

// nextSortOrder returns the next sort_order value for an estimate's lines.
func nextSortOrder(app core.App, estimateID string) int {
	existing, err := app.FindRecordsByFilter(
		"line_items",
		"estimate = {:estimate}",
		"-sort_order",
		1,
		0,
		map[string]any{"estimate": estimateID},
	)
	if err != nil || len(existing) == 0 {
		return 1
	}
	return existing[0].GetInt("sort_order") + 1
}
