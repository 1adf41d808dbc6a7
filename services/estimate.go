package services

import (
	"fmt"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
)

// EstimateTotals carries both sides of the dual-total bookkeeping: the true
// outlay (cost) and the client-facing value after per-line adjustments (sale).
type EstimateTotals struct {
	CostTotal float64
	SaleTotal float64
}

// EnsureEstimate returns the project's most recent estimate, creating the
// first one when the project has none yet. Opening a project's item screen is
// what implicitly triggers the creation.
func EnsureEstimate(app core.App, accountID, projectID string) (*core.Record, error) {
	project, err := ownedRecord(app, accountID, "projects", projectID, "project")
	if err != nil {
		return nil, err
	}

	existing, err := app.FindRecordsByFilter(
		"estimates",
		"project = {:project}",
		"-created",
		1,
		0,
		map[string]any{"project": project.Id},
	)
	if err == nil && len(existing) > 0 {
		return existing[0], nil
	}

	col, err := app.FindCollectionByNameOrId("estimates")
	if err != nil {
		return nil, fmt.Errorf("estimate: could not find collection: %w", err)
	}
	record := core.NewRecord(col)
	record.Set("account", accountID)
	record.Set("project", project.Id)
	record.Set("name", "Estimate 1")
	record.Set("approved", false)
	if err := app.Save(record); err != nil {
		return nil, fmt.Errorf("estimate: save failed: %w", err)
	}
	return record, nil
}

// Totals sums the estimate's line items. The sale total comes straight from
// the persisted per-line sale totals; the cost total is recomputed from each
// line's quantity and frozen unit prices.
func Totals(app core.App, estimateID string) (EstimateTotals, error) {
	var totals EstimateTotals

	var sale float64
	err := app.DB().
		NewQuery("SELECT COALESCE(SUM(total_item), 0) FROM line_items WHERE estimate = {:estimate}").
		Bind(dbx.Params{"estimate": estimateID}).
		Row(&sale)
	if err != nil {
		return totals, fmt.Errorf("estimate totals: sale sum failed: %w", err)
	}

	items, err := app.FindRecordsByFilter(
		"line_items",
		"estimate = {:estimate}",
		"sort_order",
		0,
		0,
		map[string]any{"estimate": estimateID},
	)
	if err != nil {
		return totals, fmt.Errorf("estimate totals: could not load line items: %w", err)
	}

	var cost float64
	for _, item := range items {
		cost += LineCostTotal(item)
	}

	totals.CostTotal = Round2(cost)
	totals.SaleTotal = Round2(sale)
	return totals, nil
}

// ToggleApproval flips the estimate's approval flag. Approval is not
// exclusive: several estimates of one project may be approved at once, and
// consumers pick one via an ApprovedEstimatePolicy.
func ToggleApproval(app core.App, accountID, estimateID string) (*core.Record, error) {
	record, err := ownedRecord(app, accountID, "estimates", estimateID, "estimate")
	if err != nil {
		return nil, err
	}
	record.Set("approved", !record.GetBool("approved"))
	if err := app.Save(record); err != nil {
		return nil, fmt.Errorf("estimate: save failed: %w", err)
	}
	return record, nil
}

// ApprovedEstimatePolicy picks the single authoritative estimate out of a
// project's approved ones. It receives at least one record and must pick one.
type ApprovedEstimatePolicy func(approved []*core.Record) *core.Record

// PickLatestApproved is the default policy: the most recently created
// approved estimate, record id as tie-break.
func PickLatestApproved(approved []*core.Record) *core.Record {
	var latest *core.Record
	for _, est := range approved {
		if latest == nil {
			latest = est
			continue
		}
		a, b := est.GetDateTime("created").Time(), latest.GetDateTime("created").Time()
		if a.After(b) || (a.Equal(b) && est.Id > latest.Id) {
			latest = est
		}
	}
	return latest
}

// ApprovedEstimate resolves the estimate whose totals feed dashboards and
// reports. Returns nil (and no error) when the project has no approved
// estimate. A nil policy falls back to PickLatestApproved.
func ApprovedEstimate(app core.App, projectID string, policy ApprovedEstimatePolicy) (*core.Record, error) {
	approved, err := app.FindRecordsByFilter(
		"estimates",
		"project = {:project} && approved = true",
		"-created",
		0,
		0,
		map[string]any{"project": projectID},
	)
	if err != nil {
		return nil, fmt.Errorf("estimate: could not load approved estimates: %w", err)
	}
	if len(approved) == 0 {
		return nil, nil
	}
	if policy == nil {
		policy = PickLatestApproved
	}
	return policy(approved), nil
}
