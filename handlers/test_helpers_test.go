package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

func newTestRequestEvent(app *pocketbase.PocketBase, req *http.Request, rec *httptest.ResponseRecorder) *core.RequestEvent {
	e := &core.RequestEvent{}
	e.App = app
	e.Request = req
	e.Response = rec
	return e
}

// withAccount injects a resolved account id the way RequireAccount would.
func withAccount(req *http.Request, accountID string) *http.Request {
	ctx := context.WithValue(req.Context(), AccountIDKey, accountID)
	return req.WithContext(ctx)
}
