package services

import (
	"fmt"
	"math"

	"github.com/pocketbase/pocketbase/core"
)

// AdjustmentInput is a reporting-only override rule. Exactly one of
// LineItemID/ProjectID must be set. Honorarium rules are project-wide only.
type AdjustmentInput struct {
	LineItemID string
	ProjectID  string
	Kind       string
	Value      float64
	Note       string
	// Propagate re-writes the same rule for every other line item sharing
	// the target line's group tag.
	Propagate bool
}

// FinancialView is the report overlay computed from the approved estimate and
// the adjustment ledger. The frozen estimate itself is never touched.
type FinancialView struct {
	BaseTotal           float64
	AdjustedTotal       float64
	WithHonorariumTotal float64
	ProfitEstimate      float64
}

// UpsertAdjustment writes one ledger rule, keyed by (scope target, kind):
// saving a percent rule for a line that already has one updates it in place.
func UpsertAdjustment(app core.App, accountID string, in AdjustmentInput) error {
	if (in.LineItemID == "") == (in.ProjectID == "") {
		return &ValidationError{Field: "scope", Message: "exactly one of line item or project is required"}
	}
	if math.IsNaN(in.Value) || math.IsInf(in.Value, 0) {
		return &ValidationError{Field: "value", Message: "must be a finite number"}
	}
	switch in.Kind {
	case AdjustPercent, AdjustFixed:
	case AdjustHonorarium:
		if in.ProjectID == "" {
			return &ValidationError{Field: "kind", Message: "honorarium applies to a project, not a line item"}
		}
	default:
		return &ValidationError{Field: "kind", Message: "must be percent, fixed or honorarium"}
	}

	if in.ProjectID != "" {
		if _, err := ownedRecord(app, accountID, "projects", in.ProjectID, "project"); err != nil {
			return err
		}
		return upsertRule(app, accountID, "project", in.ProjectID, in.Kind, in.Value, in.Note)
	}

	line, err := ownedRecord(app, accountID, "line_items", in.LineItemID, "line item")
	if err != nil {
		return err
	}
	if err := upsertRule(app, accountID, "line_item", line.Id, in.Kind, in.Value, in.Note); err != nil {
		return err
	}

	if in.Propagate {
		return propagateRule(app, accountID, line, in)
	}
	return nil
}

// DeleteAdjustment removes a ledger rule by (target, kind). Deleting a rule
// that does not exist is a no-op.
func DeleteAdjustment(app core.App, accountID string, in AdjustmentInput) error {
	if (in.LineItemID == "") == (in.ProjectID == "") {
		return &ValidationError{Field: "scope", Message: "exactly one of line item or project is required"}
	}
	scopeField, targetID := "line_item", in.LineItemID
	if in.ProjectID != "" {
		scopeField, targetID = "project", in.ProjectID
	}
	rule, err := findRule(app, scopeField, targetID, in.Kind)
	if err != nil || rule == nil {
		return nil
	}
	if rule.GetString("account") != accountID {
		return &NotFoundError{Entity: "adjustment"}
	}
	if err := app.Delete(rule); err != nil {
		return fmt.Errorf("adjustment: delete failed: %w", err)
	}
	return nil
}

// ComputeFinancialView overlays the adjustment ledger on the project's
// approved estimate:
//
//	base     = sum of line sale totals
//	adjusted = per-line ledger rules, then the project percent/fixed rule
//	with     = adjusted plus the project honorarium surcharge
//	profit   = with - estimate cost total
//
// A project without an approved estimate yields a zero view.
func ComputeFinancialView(app core.App, projectID string, policy ApprovedEstimatePolicy) (FinancialView, error) {
	var view FinancialView

	estimate, err := ApprovedEstimate(app, projectID, policy)
	if err != nil {
		return view, err
	}
	if estimate == nil {
		return view, nil
	}

	items, err := app.FindRecordsByFilter(
		"line_items",
		"estimate = {:estimate}",
		"sort_order",
		0,
		0,
		map[string]any{"estimate": estimate.Id},
	)
	if err != nil {
		return view, fmt.Errorf("financial view: could not load line items: %w", err)
	}

	var base, adjusted, cost float64
	for _, item := range items {
		sale := item.GetFloat("total_item")
		base += sale
		cost += LineCostTotal(item)

		lineAdjusted, err := applyLedgerRules(app, "line_item", item.Id, sale)
		if err != nil {
			return view, err
		}
		adjusted += lineAdjusted
	}

	adjusted, err = applyLedgerRules(app, "project", projectID, adjusted)
	if err != nil {
		return view, err
	}

	with := adjusted
	if rule, err := findRule(app, "project", projectID, AdjustHonorarium); err != nil {
		return view, err
	} else if rule != nil {
		with = Round2(adjusted * (1 + rule.GetFloat("value")/100))
	}

	view.BaseTotal = Round2(base)
	view.AdjustedTotal = Round2(adjusted)
	view.WithHonorariumTotal = Round2(with)
	view.ProfitEstimate = Round2(with - cost)
	return view, nil
}

// applyLedgerRules applies the target's percent/fixed rules to a subtotal.
// A fixed rule wins over a percent rule when both exist for the same target.
func applyLedgerRules(app core.App, scopeField, targetID string, subtotal float64) (float64, error) {
	if rule, err := findRule(app, scopeField, targetID, AdjustFixed); err != nil {
		return 0, err
	} else if rule != nil {
		return Round2(rule.GetFloat("value")), nil
	}
	if rule, err := findRule(app, scopeField, targetID, AdjustPercent); err != nil {
		return 0, err
	} else if rule != nil {
		return Round2(math.Max(0, subtotal*(1+rule.GetFloat("value")/100))), nil
	}
	return subtotal, nil
}

func findRule(app core.App, scopeField, targetID, kind string) (*core.Record, error) {
	records, err := app.FindRecordsByFilter(
		"financial_adjustments",
		fmt.Sprintf("%s = {:target} && kind = {:kind}", scopeField),
		"-created",
		1,
		0,
		map[string]any{"target": targetID, "kind": kind},
	)
	if err != nil {
		return nil, fmt.Errorf("adjustment: lookup failed: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0], nil
}

func upsertRule(app core.App, accountID, scopeField, targetID, kind string, value float64, note string) error {
	record, err := findRule(app, scopeField, targetID, kind)
	if err != nil {
		return err
	}
	if record == nil {
		col, err := app.FindCollectionByNameOrId("financial_adjustments")
		if err != nil {
			return fmt.Errorf("adjustment: could not find collection: %w", err)
		}
		record = core.NewRecord(col)
		record.Set("account", accountID)
		record.Set(scopeField, targetID)
		record.Set("kind", kind)
	}
	record.Set("value", value)
	record.Set("note", note)
	if err := app.Save(record); err != nil {
		return fmt.Errorf("adjustment: save failed: %w", err)
	}
	return nil
}

// propagateRule re-evaluates the same rule (not the same absolute delta)
// against every sibling line sharing the target line's group tag.
func propagateRule(app core.App, accountID string, line *core.Record, in AdjustmentInput) error {
	groupTag := line.GetString("group_tag")
	if groupTag == "" {
		return nil
	}
	siblings, err := app.FindRecordsByFilter(
		"line_items",
		"estimate = {:estimate} && group_tag = {:tag} && id != {:id}",
		"sort_order",
		0,
		0,
		map[string]any{
			"estimate": line.GetString("estimate"),
			"tag":      groupTag,
			"id":       line.Id,
		},
	)
	if err != nil {
		return fmt.Errorf("adjustment: could not load similar items: %w", err)
	}
	for _, sibling := range siblings {
		if err := upsertRule(app, accountID, "line_item", sibling.Id, in.Kind, in.Value, in.Note); err != nil {
			return err
		}
	}
	return nil
}
