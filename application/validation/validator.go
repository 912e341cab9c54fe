// Package validation checks serialized envelopes against the published
// envelope schema.
package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/reglet-dev/jsonffi/application/schema"
	"github.com/reglet-dev/jsonffi/domain/entities"
	"github.com/reglet-dev/jsonffi/domain/ports"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// EnvelopeValidator implements validation using the envelope JSON schema.
type EnvelopeValidator struct {
	schema *jsonschema.Schema
}

var _ ports.EnvelopeValidator = (*EnvelopeValidator)(nil)

// NewEnvelopeValidator compiles the envelope schema.
func NewEnvelopeValidator() (*EnvelopeValidator, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020

	if err := compiler.AddResource(schema.EnvelopeSchemaID, strings.NewReader(schema.EnvelopeSchema)); err != nil {
		return nil, fmt.Errorf("failed to add envelope schema resource: %w", err)
	}
	sch, err := compiler.Compile(schema.EnvelopeSchemaID)
	if err != nil {
		return nil, fmt.Errorf("invalid envelope schema: %w", err)
	}
	return &EnvelopeValidator{schema: sch}, nil
}

// MustEnvelopeValidator is like NewEnvelopeValidator but panics on error.
func MustEnvelopeValidator() *EnvelopeValidator {
	v, err := NewEnvelopeValidator()
	if err != nil {
		panic(err)
	}
	return v
}

// Validate returns nil when data is a well-formed envelope.
func (v *EnvelopeValidator) Validate(data []byte) error {
	return v.Report(data).Err()
}

// Report checks data and lists every violation found.
func (v *EnvelopeValidator) Report(data []byte) *entities.ValidationResult {
	result := &entities.ValidationResult{Valid: true}

	doc, err := decodeDocument(data)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, entities.ValidationError{
			Message: fmt.Sprintf("failed to prepare validation object: %v", err),
		})
		return result
	}

	if err := v.schema.Validate(doc); err != nil {
		result.Valid = false
		var ve *jsonschema.ValidationError
		if !errors.As(err, &ve) {
			result.Errors = append(result.Errors, entities.ValidationError{Message: err.Error()})
			return result
		}
		for _, be := range ve.BasicOutput().Errors {
			if be.Error == "" {
				continue
			}
			result.Errors = append(result.Errors, entities.ValidationError{
				Location: be.InstanceLocation,
				Message:  be.Error,
			})
		}
		if len(result.Errors) == 0 {
			result.Errors = append(result.Errors, entities.ValidationError{Message: ve.Error()})
		}
	}

	return result
}

// decodeDocument decodes with UseNumber, which is what the schema library
// expects for numeric instances.
func decodeDocument(data []byte) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("trailing data after document")
	}
	return doc, nil
}
