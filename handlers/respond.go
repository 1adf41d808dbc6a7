// Package handlers adapts form-encoded key-value payloads onto the pricing
// core and responds with JSON. Rendering, sessions and export encoding live
// outside this service.
package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase/core"

	"orcamento/services"
)

// respondServiceError maps the core error taxonomy onto HTTP:
// validation -> 400 with a field-error map, not found -> 404,
// conflict -> 409, anything else -> logged 500.
func respondServiceError(e *core.RequestEvent, op string, err error) error {
	var validation *services.ValidationError
	if errors.As(err, &validation) {
		return e.JSON(http.StatusBadRequest, map[string]any{
			"errors": map[string]string{validation.Field: validation.Message},
		})
	}

	var notFound *services.NotFoundError
	if errors.As(err, &notFound) {
		log.Printf("%s: %v", op, err)
		return e.JSON(http.StatusNotFound, map[string]any{"error": notFound.Error()})
	}

	var conflict *services.ConflictError
	if errors.As(err, &conflict) {
		return e.JSON(http.StatusConflict, map[string]any{"error": conflict.Error()})
	}

	log.Printf("%s: %v", op, err)
	return e.JSON(http.StatusInternalServerError, map[string]any{"error": "Something went wrong. Please try again."})
}

// respondFieldErrors aborts a write with inline per-field messages.
func respondFieldErrors(e *core.RequestEvent, fieldErrors map[string]string) error {
	return e.JSON(http.StatusBadRequest, map[string]any{"errors": fieldErrors})
}
