package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"orcamento/services"
)

// HandleProjectSave handles POST /projects.
func HandleProjectSave(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := e.Request.ParseForm(); err != nil {
			return e.JSON(http.StatusBadRequest, map[string]any{"error": "Invalid form data"})
		}
		accountID := AccountID(e.Request)

		name := strings.TrimSpace(e.Request.FormValue("name"))
		clientName := strings.TrimSpace(e.Request.FormValue("client_name"))
		if name == "" {
			return respondFieldErrors(e, map[string]string{"name": "Name is required"})
		}

		col, err := app.FindCollectionByNameOrId("projects")
		if err != nil {
			log.Printf("project_save: could not find projects collection: %v", err)
			return e.JSON(http.StatusInternalServerError, map[string]any{"error": "Something went wrong. Please try again."})
		}
		record := core.NewRecord(col)
		record.Set("account", accountID)
		record.Set("name", name)
		record.Set("client_name", clientName)

		if err := app.Save(record); err != nil {
			log.Printf("project_save: %v", err)
			return e.JSON(http.StatusInternalServerError, map[string]any{"error": "Something went wrong. Please try again."})
		}
		return e.JSON(http.StatusOK, map[string]any{"id": record.Id})
	}
}

// HandleProjectList handles GET /projects.
func HandleProjectList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		accountID := AccountID(e.Request)
		records, err := app.FindRecordsByFilter(
			"projects",
			"account = {:account}",
			"-created",
			0,
			0,
			map[string]any{"account": accountID},
		)
		if err != nil {
			log.Printf("project_list: %v", err)
			return e.JSON(http.StatusInternalServerError, map[string]any{"error": "Something went wrong. Please try again."})
		}

		projects := make([]map[string]any, 0, len(records))
		for _, rec := range records {
			projects = append(projects, map[string]any{
				"id":          rec.Id,
				"name":        rec.GetString("name"),
				"client_name": rec.GetString("client_name"),
			})
		}
		return e.JSON(http.StatusOK, map[string]any{"projects": projects})
	}
}

// HandleEstimateScreen handles GET /projects/{projectId}/estimate.
// First access of a project's item screen ensures an estimate exists; the
// response carries the totals and the flat line rows.
func HandleEstimateScreen(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		accountID := AccountID(e.Request)
		projectID := e.Request.PathValue("projectId")

		estimate, err := services.EnsureEstimate(app, accountID, projectID)
		if err != nil {
			return respondServiceError(e, "estimate_screen", err)
		}

		totals, err := services.Totals(app, estimate.Id)
		if err != nil {
			return respondServiceError(e, "estimate_screen", err)
		}
		rows, err := services.EstimateRows(app, estimate.Id)
		if err != nil {
			return respondServiceError(e, "estimate_screen", err)
		}

		return e.JSON(http.StatusOK, map[string]any{
			"estimate": map[string]any{
				"id":       estimate.Id,
				"name":     estimate.GetString("name"),
				"approved": estimate.GetBool("approved"),
			},
			"cost_total": totals.CostTotal,
			"sale_total": totals.SaleTotal,
			"items":      rows,
		})
	}
}

// HandleEstimateTotals handles GET /estimates/{id}/totals.
func HandleEstimateTotals(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		accountID := AccountID(e.Request)
		estimateID := e.Request.PathValue("id")

		estimate, err := app.FindRecordById("estimates", estimateID)
		if err != nil || estimate.GetString("account") != accountID {
			return e.JSON(http.StatusNotFound, map[string]any{"error": "estimate not found"})
		}

		totals, err := services.Totals(app, estimateID)
		if err != nil {
			return respondServiceError(e, "estimate_totals", err)
		}
		return e.JSON(http.StatusOK, map[string]any{
			"cost_total": totals.CostTotal,
			"sale_total": totals.SaleTotal,
		})
	}
}

// HandleEstimateToggleApproval handles POST /estimates/{id}/approval.
func HandleEstimateToggleApproval(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		accountID := AccountID(e.Request)
		estimateID := e.Request.PathValue("id")

		record, err := services.ToggleApproval(app, accountID, estimateID)
		if err != nil {
			return respondServiceError(e, "estimate_approval", err)
		}
		return e.JSON(http.StatusOK, map[string]any{
			"id":       record.Id,
			"approved": record.GetBool("approved"),
		})
	}
}
