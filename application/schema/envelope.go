package schema

import (
	"encoding/json"
	"fmt"
)

// EnvelopeSchemaID identifies the envelope schema when it is compiled.
const EnvelopeSchemaID = "https://reglet.dev/schemas/jsonffi/envelope.json"

// EnvelopeSchema describes every response: exactly one of "Ok" and "Err",
// each mapped to a string, and nothing else.
const EnvelopeSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "https://reglet.dev/schemas/jsonffi/envelope.json",
  "title": "Envelope",
  "oneOf": [
    {
      "type": "object",
      "properties": {"Ok": {"type": "string"}},
      "required": ["Ok"],
      "additionalProperties": false
    },
    {
      "type": "object",
      "properties": {"Err": {"type": "string"}},
      "required": ["Err"],
      "additionalProperties": false
    }
  ]
}`

// Document bundles the schemas a caller needs to talk to the boundary.
type Document struct {
	Request  json.RawMessage `json:"request"`
	Response json.RawMessage `json:"response"`
}

// NewDocument pairs a request schema with the envelope schema.
// A nil request schema is published as the permissive schema true.
func NewDocument(requestSchema []byte) Document {
	if len(requestSchema) == 0 {
		requestSchema = []byte("true")
	}
	return Document{
		Request:  json.RawMessage(requestSchema),
		Response: json.RawMessage(EnvelopeSchema),
	}
}

// Marshal serializes the document.
func (d Document) Marshal() ([]byte, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema document: %w", err)
	}
	return data, nil
}
