package services

import (
	"strconv"
	"strings"

	"github.com/pocketbase/pocketbase/core"
)

// PriceSourceKind tags how a unit price was (or was not) resolved.
type PriceSourceKind int

const (
	// PriceUnset means no price source: missing offer, empty slot, or no
	// tier selected. Distinct from a resolved zero price.
	PriceUnset PriceSourceKind = iota
	// PriceResolved means the price came from an offer tier slot.
	PriceResolved
	// PriceManual means the caller supplied the price directly.
	PriceManual
)

// PriceSource is a resolved unit price or the explicit absence of one.
type PriceSource struct {
	Kind  PriceSourceKind
	Value float64
}

// Ptr returns the price value, or nil when unset.
func (s PriceSource) Ptr() *float64 {
	if s.Kind == PriceUnset {
		return nil
	}
	v := s.Value
	return &v
}

// SelectPrices looks up the offer row for (supplier, product) and projects the
// requested material and labor tier slots into concrete unit prices.
//
// A missing offer or an empty slot is not an error: the corresponding side
// comes back unset and contributes zero to totals. MANUAL sources take the
// caller-supplied value and never require an offer row to exist.
func SelectPrices(app core.App, accountID, supplierID, productID, materialLabel, laborLabel string, manualMaterial, manualLabor *float64) (PriceSource, PriceSource, error) {
	if !ValidMaterialSource(materialLabel) {
		return PriceSource{}, PriceSource{}, &ValidationError{Field: "source_material", Message: "invalid material price source"}
	}
	if !ValidLaborSource(laborLabel) {
		return PriceSource{}, PriceSource{}, &ValidationError{Field: "source_labor", Message: "invalid labor price source"}
	}

	var offer *core.Record
	if needsOffer(materialLabel) || needsOffer(laborLabel) {
		if supplierID != "" {
			found, err := app.FindFirstRecordByFilter(
				"offers",
				"account = {:account} && supplier = {:supplier} && product = {:product}",
				map[string]any{"account": accountID, "supplier": supplierID, "product": productID},
			)
			if err == nil {
				offer = found
			}
		}
	}

	material := selectOne(offer, materialLabel, manualMaterial)
	labor := selectOne(offer, laborLabel, manualLabor)
	return material, labor, nil
}

func needsOffer(label string) bool {
	return label != "" && label != SourceManual
}

func selectOne(offer *core.Record, label string, manual *float64) PriceSource {
	switch {
	case label == "":
		return PriceSource{Kind: PriceUnset}
	case label == SourceManual:
		if manual == nil {
			return PriceSource{Kind: PriceUnset}
		}
		return PriceSource{Kind: PriceManual, Value: Round2(*manual)}
	case offer == nil:
		return PriceSource{Kind: PriceUnset}
	default:
		v, ok := parseSlot(offer.GetString(slotField(label)))
		if !ok {
			return PriceSource{Kind: PriceUnset}
		}
		return PriceSource{Kind: PriceResolved, Value: Round2(v)}
	}
}

// slotField maps a tier label (P2) to its offer column (p2).
func slotField(label string) string {
	return strings.ToLower(label)
}

// parseSlot reads a stored price slot; "" means the slot is empty.
func parseSlot(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// slotString renders a price for slot storage; unset prices stay "".
func slotString(p PriceSource) string {
	if p.Kind == PriceUnset {
		return ""
	}
	return strconv.FormatFloat(Round2(p.Value), 'f', -1, 64)
}

// priceString renders an already-rounded price value for slot storage.
func priceString(v float64) string {
	return strconv.FormatFloat(Round2(v), 'f', -1, 64)
}
