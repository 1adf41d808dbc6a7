package handlers

import (
	"context"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

type contextKey string

// AccountIDKey holds the resolved internal account id for the request.
const AccountIDKey contextKey = "accountID"

// AccountID extracts the resolved account id from the request context.
func AccountID(r *http.Request) string {
	if val, ok := r.Context().Value(AccountIDKey).(string); ok {
		return val
	}
	return ""
}

// RequireAccount resolves the external user token from the X-Account-Token
// header into an internal account id and stores it in the request context.
// Every catalog and estimate operation runs behind this middleware; requests
// without a resolvable account get a 401 and never reach the core.
func RequireAccount(app *pocketbase.PocketBase) func(e *core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		token := e.Request.Header.Get("X-Account-Token")
		if token == "" {
			return e.JSON(http.StatusUnauthorized, map[string]any{"error": "missing account token"})
		}

		account, err := app.FindFirstRecordByFilter(
			"accounts",
			"external_id = {:token}",
			map[string]any{"token": token},
		)
		if err != nil {
			return e.JSON(http.StatusUnauthorized, map[string]any{"error": "unknown account"})
		}

		ctx := context.WithValue(e.Request.Context(), AccountIDKey, account.Id)
		e.Request = e.Request.WithContext(ctx)
		return e.Next()
	}
}
