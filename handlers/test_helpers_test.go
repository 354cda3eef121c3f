package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/router"
)

// newTestRequestEvent creates a RequestEvent suitable for handler tests.
func newTestRequestEvent(app *pocketbase.PocketBase, req *http.Request, rec *httptest.ResponseRecorder) *core.RequestEvent {
	e := &core.RequestEvent{}
	e.App = app
	e.Request = req
	e.Response = rec
	return e
}

// errorStatus returns the HTTP status carried by a handler's returned error.
// Rejections surface as returned api errors, not as written responses.
func errorStatus(t *testing.T, err error) int {
	t.Helper()

	var apiErr *router.ApiError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected an api error, got %v", err)
	}
	return apiErr.Status
}

// withUser stamps an acting user into the request context, standing in for
// UserContextMiddleware.
func withUser(req *http.Request, id, name, role string) *http.Request {
	user := &CurrentUser{ID: id, Name: name, Role: role}
	return req.WithContext(context.WithValue(req.Context(), CurrentUserKey, user))
}
