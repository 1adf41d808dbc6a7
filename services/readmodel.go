package services

import (
	"fmt"

	"github.com/pocketbase/pocketbase/core"
)

// EstimateRow is the flat read model export/report consumers render from.
// Unit prices are nil when the line has no price source for that side, so
// consumers can distinguish "—" from a zero price.
type EstimateRow struct {
	LineItemID     string   `json:"line_item_id"`
	ProductName    string   `json:"product_name"`
	SupplierName   string   `json:"supplier_name"`
	UnitLabel      string   `json:"unit_label"`
	Quantity       float64  `json:"quantity"`
	SourceMaterial string   `json:"source_material"`
	SourceLabor    string   `json:"source_labor"`
	UnitMaterial   *float64 `json:"unit_material"`
	UnitLabor      *float64 `json:"unit_labor"`
	Adjustment     string   `json:"adjustment"`
	CostTotal      float64  `json:"cost_total"`
	SaleTotal      float64  `json:"sale_total"`
}

// EstimateRows builds the flat rows for one estimate, in line order.
func EstimateRows(app core.App, estimateID string) ([]EstimateRow, error) {
	items, err := app.FindRecordsByFilter(
		"line_items",
		"estimate = {:estimate}",
		"sort_order",
		0,
		0,
		map[string]any{"estimate": estimateID},
	)
	if err != nil {
		return nil, fmt.Errorf("read model: could not load line items: %w", err)
	}

	names := nameCache{app: app, cache: map[string]string{}}
	rows := make([]EstimateRow, 0, len(items))
	for _, item := range items {
		unitMaterial, unitLabor := LineUnitPrices(item)
		row := EstimateRow{
			LineItemID:     item.Id,
			ProductName:    names.lookup("products", item.GetString("product"), "name"),
			SupplierName:   names.lookup("suppliers", item.GetString("supplier"), "name"),
			UnitLabel:      names.lookup("units", item.GetString("unit"), "label"),
			Quantity:       item.GetFloat("quantity"),
			SourceMaterial: item.GetString("source_material"),
			SourceLabor:    item.GetString("source_labor"),
			UnitMaterial:   unitMaterial,
			UnitLabor:      unitLabor,
			Adjustment:     DescribeAdjustment(item.GetString("adjustment_kind"), item.GetFloat("adjustment_value")),
			CostTotal:      LineCostTotal(item),
			SaleTotal:      item.GetFloat("total_item"),
		}
		rows = append(rows, row)
	}
	return rows, nil
}

type nameCache struct {
	app   core.App
	cache map[string]string
}

func (c *nameCache) lookup(collection, id, field string) string {
	if id == "" {
		return ""
	}
	key := collection + "/" + id
	if v, ok := c.cache[key]; ok {
		return v
	}
	var value string
	if record, err := c.app.FindRecordById(collection, id); err == nil {
		value = record.GetString(field)
	}
	c.cache[key] = value
	return value
}
