package handlers

import (
	"strconv"

	"github.com/pocketbase/pocketbase/core"
)

// apiError returns a normalized API error for the router to serialize. The
// non-nil return matters: guard helpers like requireRole are checked with
// `err != nil`, so a failed check must stop the handler instead of letting it
// fall through into the mutation.
func apiError(e *core.RequestEvent, status int, message string) error {
	return e.Error(status, message, nil)
}

// pageParams reads the page/perPage query parameters for paginated lists.
// Values are returned raw; services.Paginate does the clamping.
func pageParams(e *core.RequestEvent) (page, perPage int) {
	query := e.Request.URL.Query()
	page, _ = strconv.Atoi(query.Get("page"))
	perPage, _ = strconv.Atoi(query.Get("perPage"))
	return page, perPage
}
