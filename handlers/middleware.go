package handlers

import (
	"context"
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

type contextKey string

const CurrentUserKey contextKey = "currentUser"

// CurrentUser is the acting user resolved from the gateway-supplied identity
// header. Authentication itself happens upstream; this backend only maps the
// id to a user record and its role.
type CurrentUser struct {
	ID   string
	Name string
	Role string
}

// CurrentUserFrom extracts the acting user from the request context, or nil
// when the request carried no (valid) identity.
func CurrentUserFrom(r *http.Request) *CurrentUser {
	if val, ok := r.Context().Value(CurrentUserKey).(*CurrentUser); ok {
		return val
	}
	return nil
}

// UserContextMiddleware reads the X-User-Id header set by the upstream
// gateway, loads the matching active user record, and stores it in the
// request context for role checks and audit attribution. Requests without a
// resolvable user proceed anonymously; role-gated handlers reject them.
func UserContextMiddleware(app *pocketbase.PocketBase) func(e *core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		userID := e.Request.Header.Get("X-User-Id")
		if userID == "" {
			return e.Next()
		}

		rec, err := app.FindRecordById("staff", userID)
		if err != nil {
			log.Printf("middleware: user %s not found: %v", userID, err)
			return e.Next()
		}
		if !rec.GetBool("active") {
			log.Printf("middleware: user %s is inactive, ignoring identity header", userID)
			return e.Next()
		}

		user := &CurrentUser{
			ID:   rec.Id,
			Name: rec.GetString("name"),
			Role: rec.GetString("role"),
		}
		ctx := context.WithValue(e.Request.Context(), CurrentUserKey, user)
		e.Request = e.Request.WithContext(ctx)
		return e.Next()
	}
}

// requireRole rejects the request unless the acting user holds one of the
// given roles. A missing identity is a 401, a wrong role a 403.
func requireRole(e *core.RequestEvent, roles ...string) error {
	user := CurrentUserFrom(e.Request)
	if user == nil {
		return apiError(e, http.StatusUnauthorized, "Sign-in required")
	}
	for _, role := range roles {
		if user.Role == role {
			return nil
		}
	}
	return apiError(e, http.StatusForbidden, "Not allowed for your role")
}

// writeAudit records a mutating action in the audit trail. Audit failures
// are logged, never propagated: losing an audit line must not fail the
// user's request.
func writeAudit(app *pocketbase.PocketBase, e *core.RequestEvent, action, collectionName, recordID, detail string) {
	auditCol, err := app.FindCollectionByNameOrId("audit_logs")
	if err != nil {
		log.Printf("audit: could not find audit_logs collection: %v", err)
		return
	}

	rec := core.NewRecord(auditCol)
	if user := CurrentUserFrom(e.Request); user != nil {
		rec.Set("user", user.ID)
	}
	rec.Set("action", action)
	rec.Set("collection_name", collectionName)
	rec.Set("record_id", recordID)
	rec.Set("detail", detail)
	if err := app.Save(rec); err != nil {
		log.Printf("audit: could not save %s %s/%s: %v", action, collectionName, recordID, err)
	}
}
