package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

var userRoles = []string{"admin", "manager", "estimator", "storekeeper"}

func userResponse(rec *core.Record) map[string]any {
	return map[string]any{
		"id":     rec.Id,
		"name":   rec.GetString("name"),
		"email":  rec.GetString("email"),
		"role":   rec.GetString("role"),
		"active": rec.GetBool("active"),
	}
}

func HandleUserList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := requireRole(e, "admin"); err != nil {
			return err
		}

		records, err := app.FindAllRecords("staff")
		if err != nil {
			log.Printf("users: could not query users: %v", err)
			return apiError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		items := make([]map[string]any, 0, len(records))
		for _, rec := range records {
			items = append(items, userResponse(rec))
		}
		return e.JSON(http.StatusOK, items)
	}
}

func HandleUserCreate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := requireRole(e, "admin"); err != nil {
			return err
		}

		var payload struct {
			Name  string `json:"name"`
			Email string `json:"email"`
			Role  string `json:"role"`
		}
		if err := e.BindBody(&payload); err != nil {
			return apiError(e, http.StatusBadRequest, "Invalid request body")
		}
		if strings.TrimSpace(payload.Name) == "" {
			return apiError(e, http.StatusBadRequest, "User name is required")
		}
		if !contains(userRoles, payload.Role) {
			return apiError(e, http.StatusBadRequest, "Unknown role: "+payload.Role)
		}

		usersCol, err := app.FindCollectionByNameOrId("staff")
		if err != nil {
			log.Printf("users: could not find staff collection: %v", err)
			return apiError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		rec := core.NewRecord(usersCol)
		rec.Set("name", strings.TrimSpace(payload.Name))
		rec.Set("email", strings.TrimSpace(payload.Email))
		rec.Set("role", payload.Role)
		rec.Set("active", true)
		if err := app.Save(rec); err != nil {
			log.Printf("users: could not save user: %v", err)
			return apiError(e, http.StatusBadRequest, "Could not save user")
		}

		writeAudit(app, e, "create", "staff", rec.Id, "Created user "+rec.GetString("name"))
		return e.JSON(http.StatusCreated, userResponse(rec))
	}
}

// HandleUserUpdate changes a user's role or active flag.
func HandleUserUpdate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := requireRole(e, "admin"); err != nil {
			return err
		}

		rec, err := app.FindRecordById("staff", e.Request.PathValue("id"))
		if err != nil {
			return apiError(e, http.StatusNotFound, "User not found")
		}

		var payload struct {
			Name   *string `json:"name"`
			Email  *string `json:"email"`
			Role   *string `json:"role"`
			Active *bool   `json:"active"`
		}
		if err := e.BindBody(&payload); err != nil {
			return apiError(e, http.StatusBadRequest, "Invalid request body")
		}

		if payload.Name != nil {
			rec.Set("name", strings.TrimSpace(*payload.Name))
		}
		if payload.Email != nil {
			rec.Set("email", strings.TrimSpace(*payload.Email))
		}
		if payload.Role != nil {
			if !contains(userRoles, *payload.Role) {
				return apiError(e, http.StatusBadRequest, "Unknown role: "+*payload.Role)
			}
			rec.Set("role", *payload.Role)
		}
		if payload.Active != nil {
			rec.Set("active", *payload.Active)
		}

		if err := app.Save(rec); err != nil {
			log.Printf("users: could not update user %s: %v", rec.Id, err)
			return apiError(e, http.StatusBadRequest, "Could not update user")
		}

		writeAudit(app, e, "update", "staff", rec.Id, "Updated user "+rec.GetString("name"))
		return e.JSON(http.StatusOK, userResponse(rec))
	}
}
