package services

import (
	"errors"
	"testing"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"orcamento/testhelpers"
)

// financialFixture builds an approved estimate with two grouped lines:
// 10 x 100 = 1000 and 5 x 100 = 500, both tagged "painting".
func financialFixture(t *testing.T, app *pocketbase.PocketBase) (account, project *core.Record, lineA, lineB *core.Record) {
	t.Helper()

	account = testhelpers.CreateTestAccount(t, app, "tenant")
	project = testhelpers.CreateTestProject(t, app, account.Id, "Renovation")
	estimate := testhelpers.CreateTestEstimate(t, app, account.Id, project.Id, "Estimate 1", true)
	product := testhelpers.CreateTestProduct(t, app, account.Id, "Wall Painting")

	manual := 100.0
	var err error
	lineA, err = UpsertLineItem(app, account.Id, "", LineItemInput{
		EstimateID:     estimate.Id,
		ProductID:      product.Id,
		Quantity:       10,
		MaterialLabel:  SourceManual,
		ManualMaterial: &manual,
		GroupTag:       "painting",
	})
	if err != nil {
		t.Fatalf("UpsertLineItem returned error: %v", err)
	}
	lineB, err = UpsertLineItem(app, account.Id, "", LineItemInput{
		EstimateID:     estimate.Id,
		ProductID:      product.Id,
		Quantity:       5,
		MaterialLabel:  SourceManual,
		ManualMaterial: &manual,
		GroupTag:       "painting",
	})
	if err != nil {
		t.Fatalf("UpsertLineItem returned error: %v", err)
	}
	return account, project, lineA, lineB
}

func TestUpsertAdjustment_ScopeValidation(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	account, project, lineA, _ := financialFixture(t, app)

	tests := []struct {
		name  string
		in    AdjustmentInput
		field string
	}{
		{
			name:  "neither scope",
			in:    AdjustmentInput{Kind: AdjustPercent, Value: 10},
			field: "scope",
		},
		{
			name:  "both scopes",
			in:    AdjustmentInput{LineItemID: lineA.Id, ProjectID: project.Id, Kind: AdjustPercent, Value: 10},
			field: "scope",
		},
		{
			name:  "honorarium on a line item",
			in:    AdjustmentInput{LineItemID: lineA.Id, Kind: AdjustHonorarium, Value: 10},
			field: "kind",
		},
		{
			name:  "unknown kind",
			in:    AdjustmentInput{ProjectID: project.Id, Kind: "discount", Value: 10},
			field: "kind",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := UpsertAdjustment(app, account.Id, tt.in)
			var validation *ValidationError
			if !errors.As(err, &validation) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if validation.Field != tt.field {
				t.Errorf("field = %q, want %q", validation.Field, tt.field)
			}
		})
	}
}

func TestComputeFinancialView_FullOverlay(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	account, project, lineA, _ := financialFixture(t, app)

	// -10% on one line, propagated to its group sibling.
	err := UpsertAdjustment(app, account.Id, AdjustmentInput{
		LineItemID: lineA.Id,
		Kind:       AdjustPercent,
		Value:      -10,
		Propagate:  true,
	})
	if err != nil {
		t.Fatalf("UpsertAdjustment returned error: %v", err)
	}
	// Project-wide 10% honorarium.
	err = UpsertAdjustment(app, account.Id, AdjustmentInput{
		ProjectID: project.Id,
		Kind:      AdjustHonorarium,
		Value:     10,
	})
	if err != nil {
		t.Fatalf("UpsertAdjustment returned error: %v", err)
	}

	view, err := ComputeFinancialView(app, project.Id, nil)
	if err != nil {
		t.Fatalf("ComputeFinancialView returned error: %v", err)
	}
	if view.BaseTotal != 1500 {
		t.Errorf("base total = %v, want 1500", view.BaseTotal)
	}
	if view.AdjustedTotal != 1350 {
		t.Errorf("adjusted total = %v, want 1350", view.AdjustedTotal)
	}
	if view.WithHonorariumTotal != 1485 {
		t.Errorf("with honorarium = %v, want 1485", view.WithHonorariumTotal)
	}
	if view.ProfitEstimate != -15 {
		t.Errorf("profit estimate = %v, want -15", view.ProfitEstimate)
	}

	// The ledger is an overlay: the stored estimate stays frozen.
	reloaded, err := app.FindRecordById("line_items", lineA.Id)
	if err != nil {
		t.Fatalf("failed to reload line item: %v", err)
	}
	if reloaded.GetFloat("total_item") != 1000 {
		t.Errorf("stored sale total changed to %v, want 1000", reloaded.GetFloat("total_item"))
	}
}

func TestComputeFinancialView_NoApprovedEstimate(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	account := testhelpers.CreateTestAccount(t, app, "tenant")
	project := testhelpers.CreateTestProject(t, app, account.Id, "Renovation")
	testhelpers.CreateTestEstimate(t, app, account.Id, project.Id, "Draft", false)

	view, err := ComputeFinancialView(app, project.Id, nil)
	if err != nil {
		t.Fatalf("ComputeFinancialView returned error: %v", err)
	}
	if view != (FinancialView{}) {
		t.Errorf("expected zero view without an approved estimate, got %+v", view)
	}
}

func TestComputeFinancialView_FixedWinsOverPercent(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	account, project, lineA, _ := financialFixture(t, app)

	for _, in := range []AdjustmentInput{
		{LineItemID: lineA.Id, Kind: AdjustPercent, Value: -10},
		{LineItemID: lineA.Id, Kind: AdjustFixed, Value: 800},
	} {
		if err := UpsertAdjustment(app, account.Id, in); err != nil {
			t.Fatalf("UpsertAdjustment returned error: %v", err)
		}
	}

	view, err := ComputeFinancialView(app, project.Id, nil)
	if err != nil {
		t.Fatalf("ComputeFinancialView returned error: %v", err)
	}
	// line A fixed at 800, line B untouched at 500.
	if view.AdjustedTotal != 1300 {
		t.Errorf("adjusted total = %v, want 1300", view.AdjustedTotal)
	}
}

func TestComputeFinancialView_ProjectFixedReplacesTotal(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	account, project, _, _ := financialFixture(t, app)

	err := UpsertAdjustment(app, account.Id, AdjustmentInput{
		ProjectID: project.Id,
		Kind:      AdjustFixed,
		Value:     2000,
	})
	if err != nil {
		t.Fatalf("UpsertAdjustment returned error: %v", err)
	}

	view, err := ComputeFinancialView(app, project.Id, nil)
	if err != nil {
		t.Fatalf("ComputeFinancialView returned error: %v", err)
	}
	if view.AdjustedTotal != 2000 {
		t.Errorf("adjusted total = %v, want 2000", view.AdjustedTotal)
	}
	// profit = 2000 - 1500 cost
	if view.ProfitEstimate != 500 {
		t.Errorf("profit estimate = %v, want 500", view.ProfitEstimate)
	}
}

func TestUpsertAdjustment_UpdatesInPlace(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	account, _, lineA, _ := financialFixture(t, app)

	for _, value := range []float64{10, 20} {
		err := UpsertAdjustment(app, account.Id, AdjustmentInput{
			LineItemID: lineA.Id,
			Kind:       AdjustPercent,
			Value:      value,
		})
		if err != nil {
			t.Fatalf("UpsertAdjustment returned error: %v", err)
		}
	}

	rules, err := app.FindRecordsByFilter(
		"financial_adjustments",
		"line_item = {:line}",
		"",
		0,
		0,
		map[string]any{"line": lineA.Id},
	)
	if err != nil {
		t.Fatalf("failed to load rules: %v", err)
	}
	if len(rules) != 1 {
		t.Fatalf("expected a single rule per (target, kind), got %d", len(rules))
	}
	if rules[0].GetFloat("value") != 20 {
		t.Errorf("rule value = %v, want 20", rules[0].GetFloat("value"))
	}
}

func TestUpsertAdjustment_PropagationSkipsOtherGroups(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	account, _, lineA, _ := financialFixture(t, app)

	// A third line in a different group must not receive the rule.
	product := testhelpers.CreateTestProduct(t, app, account.Id, "Electrical Point")
	manual := 60.0
	outsider, err := UpsertLineItem(app, account.Id, "", LineItemInput{
		EstimateID:     lineA.GetString("estimate"),
		ProductID:      product.Id,
		Quantity:       1,
		MaterialLabel:  SourceManual,
		ManualMaterial: &manual,
		GroupTag:       "electrical",
	})
	if err != nil {
		t.Fatalf("UpsertLineItem returned error: %v", err)
	}

	err = UpsertAdjustment(app, account.Id, AdjustmentInput{
		LineItemID: lineA.Id,
		Kind:       AdjustPercent,
		Value:      -10,
		Propagate:  true,
	})
	if err != nil {
		t.Fatalf("UpsertAdjustment returned error: %v", err)
	}

	rules, err := app.FindRecordsByFilter(
		"financial_adjustments",
		"line_item = {:line}",
		"",
		0,
		0,
		map[string]any{"line": outsider.Id},
	)
	if err != nil {
		t.Fatalf("failed to load rules: %v", err)
	}
	if len(rules) != 0 {
		t.Errorf("rule leaked into another group: %d rules", len(rules))
	}
}

func TestDeleteAdjustment(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	account, project, lineA, _ := financialFixture(t, app)

	err := UpsertAdjustment(app, account.Id, AdjustmentInput{
		LineItemID: lineA.Id,
		Kind:       AdjustPercent,
		Value:      -10,
	})
	if err != nil {
		t.Fatalf("UpsertAdjustment returned error: %v", err)
	}
	err = DeleteAdjustment(app, account.Id, AdjustmentInput{
		LineItemID: lineA.Id,
		Kind:       AdjustPercent,
	})
	if err != nil {
		t.Fatalf("DeleteAdjustment returned error: %v", err)
	}

	view, err := ComputeFinancialView(app, project.Id, nil)
	if err != nil {
		t.Fatalf("ComputeFinancialView returned error: %v", err)
	}
	if view.AdjustedTotal != 1500 {
		t.Errorf("adjusted total after delete = %v, want 1500", view.AdjustedTotal)
	}

	// Deleting a rule that is already gone is a no-op.
	err = DeleteAdjustment(app, account.Id, AdjustmentInput{
		LineItemID: lineA.Id,
		Kind:       AdjustPercent,
	})
	if err != nil {
		t.Errorf("deleting an absent rule must be a no-op, got %v", err)
	}
}

func TestAdjustmentOwnership(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	_, _, lineA, _ := financialFixture(t, app)
	intruder := testhelpers.CreateTestAccount(t, app, "intruder")

	err := UpsertAdjustment(app, intruder.Id, AdjustmentInput{
		LineItemID: lineA.Id,
		Kind:       AdjustPercent,
		Value:      -10,
	})
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError for a foreign line item, got %v", err)
	}
}
