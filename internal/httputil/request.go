package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// maxJSONBody caps JSON request bodies; uploads use multipart instead
const maxJSONBody = 1 << 20

// ParseJSON decodes JSON from the request body into dest
func ParseJSON(w http.ResponseWriter, r *http.Request, dest interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	return nil
}

// OptionalID parses an id query parameter. A missing, empty or "root"
// value selects the root scope and returns nil.
func OptionalID(r *http.Request, key string) *string {
	v := r.URL.Query().Get(key)
	if v == "" || v == "root" {
		return nil
	}
	return &v
}
