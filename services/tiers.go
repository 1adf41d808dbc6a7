// Package services holds the pricing core: tier resolution, price selection,
// line item totals, estimate aggregation and the financial reporting overlay.
package services

import (
	"sort"

	"github.com/pocketbase/pocketbase/core"
)

// Tier labels. P1-P3 are material price slots, M1-M3 labor price slots.
// SourceManual means the caller supplies the unit price directly.
const (
	TierP1       = "P1"
	TierP2       = "P2"
	TierP3       = "P3"
	TierM1       = "M1"
	TierM2       = "M2"
	TierM3       = "M3"
	SourceManual = "MANUAL"
)

var materialSlots = []string{TierP1, TierP2, TierP3}
var laborSlots = []string{TierM1, TierM2, TierM3}

// ValidMaterialSource reports whether label is a legal material source
// ("" means no source selected).
func ValidMaterialSource(label string) bool {
	switch label {
	case "", TierP1, TierP2, TierP3, SourceManual:
		return true
	}
	return false
}

// ValidLaborSource reports whether label is a legal labor source.
func ValidLaborSource(label string) bool {
	switch label {
	case "", TierM1, TierM2, TierM3, SourceManual:
		return true
	}
	return false
}

// PricePoint is one populated price slot of one supplier's offer.
type PricePoint struct {
	SupplierID string
	Label      string
	Value      float64
}

// TierRef is a ranked price tagged with the single (supplier, tier label)
// pair it originates from.
type TierRef struct {
	SupplierID string
	Label      string
	Value      float64
}

// TierSet is the global min/mid/max ranking across all suppliers of a product.
type TierSet struct {
	Min TierRef
	Mid TierRef
	Max TierRef
}

// ComputeTiers ranks all populated price points of one product:
//
//	0 points -> nil (nothing to rank)
//	1 point  -> min = mid = max
//	2 points -> min = mid = smaller, max = larger
//	3+       -> sorted ascending: min = first, max = last, mid = index n/2
//
// The mid element is the sorted index floor(n/2), not an averaged median.
// When several points share the ranked value, the first point in input order
// wins, so the result is deterministic for a given supplier list order.
func ComputeTiers(points []PricePoint) *TierSet {
	if len(points) == 0 {
		return nil
	}

	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Value
	}
	sort.Float64s(values)

	n := len(values)
	var minV, midV, maxV float64
	switch {
	case n == 1:
		minV, midV, maxV = values[0], values[0], values[0]
	case n == 2:
		// No true median with two points; reuse the lower one for mid.
		minV, midV, maxV = values[0], values[0], values[1]
	default:
		minV, midV, maxV = values[0], values[n/2], values[n-1]
	}

	return &TierSet{
		Min: firstMatch(points, minV),
		Mid: firstMatch(points, midV),
		Max: firstMatch(points, maxV),
	}
}

func firstMatch(points []PricePoint, value float64) TierRef {
	for _, p := range points {
		if p.Value == value {
			return TierRef{SupplierID: p.SupplierID, Label: p.Label, Value: p.Value}
		}
	}
	// Unreachable: value always originates from points.
	return TierRef{}
}

// MaterialPoints collects the populated material slots of the given offers,
// preserving offer order.
func MaterialPoints(offers []*core.Record) []PricePoint {
	return collectPoints(offers, materialSlots)
}

// LaborPoints collects the populated labor slots of the given offers.
func LaborPoints(offers []*core.Record) []PricePoint {
	return collectPoints(offers, laborSlots)
}

func collectPoints(offers []*core.Record, labels []string) []PricePoint {
	var points []PricePoint
	for _, offer := range offers {
		supplierID := offer.GetString("supplier")
		for _, label := range labels {
			if v, ok := parseSlot(offer.GetString(slotField(label))); ok {
				points = append(points, PricePoint{
					SupplierID: supplierID,
					Label:      label,
					Value:      v,
				})
			}
		}
	}
	return points
}

// DefaultSelection picks the smart-add default for an item form: the cheapest
// material tier across all offers, else the cheapest labor tier, else nothing.
func DefaultSelection(offers []*core.Record) (supplierID, materialLabel, laborLabel string) {
	if ts := ComputeTiers(MaterialPoints(offers)); ts != nil {
		return ts.Min.SupplierID, ts.Min.Label, ""
	}
	if ts := ComputeTiers(LaborPoints(offers)); ts != nil {
		return ts.Min.SupplierID, "", ts.Min.Label
	}
	return "", "", ""
}

// ProductOffers returns all offers of a product for one account, ordered by
// creation so tier tie-breaks stay deterministic.
func ProductOffers(app core.App, accountID, productID string) ([]*core.Record, error) {
	return app.FindRecordsByFilter(
		"offers",
		"account = {:account} && product = {:product}",
		"created",
		0,
		0,
		map[string]any{"account": accountID, "product": productID},
	)
}
