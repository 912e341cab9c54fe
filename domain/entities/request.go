package entities

import "encoding/json"

// ParsedRequest is the value produced by the gate once the request bytes
// have been validated as UTF-8 and parsed as JSON. It lives for the duration
// of a single call.
type ParsedRequest struct {
	// Value is the generic decoding of the request
	// (map[string]any, []any, string, float64, bool or nil).
	Value any

	// Raw is the validated request text.
	Raw json.RawMessage
}

// Decode unmarshals the request text into v.
// Processors use this to bind the request to a typed struct.
func (r ParsedRequest) Decode(v any) error {
	return json.Unmarshal(r.Raw, v)
}

// Field returns the value stored under key when the request is a JSON object.
func (r ParsedRequest) Field(key string) (any, bool) {
	obj, ok := r.Value.(map[string]any)
	if !ok {
		return nil, false
	}
	v, ok := obj[key]
	return v, ok
}
