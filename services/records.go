package services

import (
	"encoding/json"

	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"
)

// DecodeJSONField decodes a JSON-typed record field into plain Go values
// (map[string]any, []any, string, float64, ...). Missing or malformed
// content decodes to nil rather than an error: JSON fields are free-form
// and downstream formatting is total over its input anyway.
func DecodeJSONField(rec *core.Record, name string) any {
	switch raw := rec.Get(name).(type) {
	case nil:
		return nil
	case types.JSONRaw:
		if len(raw) == 0 {
			return nil
		}
		var out any
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil
		}
		return out
	case string:
		if raw == "" {
			return nil
		}
		var out any
		if err := json.Unmarshal([]byte(raw), &out); err != nil {
			return raw
		}
		return out
	default:
		return raw
	}
}
