// Package schema publishes JSON Schema documents for the boundary: the
// request shape accepted by a processor and the fixed response envelope.
package schema

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// GenerateSchema reflects a processor's request struct into the "request"
// half of the schema document. Field names come from `json` tags and
// requiredness from `jsonschema:"required"`, so the published shape matches
// what jsonffi.Bind accepts.
func GenerateSchema(request interface{}) ([]byte, error) {
	r := jsonschema.Reflector{ExpandedStruct: true}

	doc, err := json.MarshalIndent(r.Reflect(request), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("schema: marshal request schema: %w", err)
	}
	return doc, nil
}
