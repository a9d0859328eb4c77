package httputil

import (
	"bytes"
	"encoding/json"
)

// OptionalString tells an absent JSON field apart from an explicit null.
//   - Present=false: field absent
//   - Present=true, Value=nil: field is null
//   - Present=true, Value=&"...": field has a value
//
// Move requests use it so that `{"parent_id": null}` (move to root) is not
// confused with a body that forgot the field.
type OptionalString struct {
	Present bool
	Value   *string
}

// UnmarshalJSON implements json.Unmarshaler. It only runs for present fields.
func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Present = true

	if string(bytes.TrimSpace(data)) == "null" {
		o.Value = nil
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}
