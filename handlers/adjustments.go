package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"orcamento/services"
)

// HandleAdjustmentSave handles POST /financial/adjustments.
// Writes a reporting-only ledger rule; the frozen estimate never changes.
func HandleAdjustmentSave(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := e.Request.ParseForm(); err != nil {
			return e.JSON(http.StatusBadRequest, map[string]any{"error": "Invalid form data"})
		}
		accountID := AccountID(e.Request)

		valueStr := strings.TrimSpace(e.Request.FormValue("value"))
		value, err := strconv.ParseFloat(valueStr, 64)
		if err != nil {
			return respondFieldErrors(e, map[string]string{"value": "Must be a number"})
		}

		in := services.AdjustmentInput{
			LineItemID: strings.TrimSpace(e.Request.FormValue("line_item")),
			ProjectID:  strings.TrimSpace(e.Request.FormValue("project")),
			Kind:       strings.TrimSpace(e.Request.FormValue("kind")),
			Value:      value,
			Note:       strings.TrimSpace(e.Request.FormValue("note")),
			Propagate:  e.Request.FormValue("propagate") == "true",
		}

		if err := services.UpsertAdjustment(app, accountID, in); err != nil {
			return respondServiceError(e, "adjustment_save", err)
		}
		return e.JSON(http.StatusOK, map[string]any{"saved": true})
	}
}

// HandleAdjustmentDelete handles DELETE /financial/adjustments.
func HandleAdjustmentDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := e.Request.ParseForm(); err != nil {
			return e.JSON(http.StatusBadRequest, map[string]any{"error": "Invalid form data"})
		}
		accountID := AccountID(e.Request)

		in := services.AdjustmentInput{
			LineItemID: strings.TrimSpace(e.Request.FormValue("line_item")),
			ProjectID:  strings.TrimSpace(e.Request.FormValue("project")),
			Kind:       strings.TrimSpace(e.Request.FormValue("kind")),
		}
		if err := services.DeleteAdjustment(app, accountID, in); err != nil {
			return respondServiceError(e, "adjustment_delete", err)
		}
		return e.JSON(http.StatusOK, map[string]any{"deleted": true})
	}
}

// HandleFinancialView handles GET /projects/{projectId}/financial.
// Read-only overlay for the financial report screen.
func HandleFinancialView(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		accountID := AccountID(e.Request)
		projectID := e.Request.PathValue("projectId")

		project, err := app.FindRecordById("projects", projectID)
		if err != nil || project.GetString("account") != accountID {
			return e.JSON(http.StatusNotFound, map[string]any{"error": "project not found"})
		}

		view, err := services.ComputeFinancialView(app, projectID, nil)
		if err != nil {
			return respondServiceError(e, "financial_view", err)
		}
		return e.JSON(http.StatusOK, map[string]any{
			"base_total":            view.BaseTotal,
			"adjusted_total":        view.AdjustedTotal,
			"with_honorarium_total": view.WithHonorariumTotal,
			"profit_estimate":       view.ProfitEstimate,
		})
	}
}
