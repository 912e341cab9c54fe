// Package plugh is the example domain logic served through the boundary.
// A request is a JSON object whose "plugh" key holds a string; the
// response reports that string's length in bytes.
package plugh

import (
	"fmt"

	"github.com/reglet-dev/jsonffi"
	"github.com/reglet-dev/jsonffi/application/schema"
)

// NotValidMessage is returned for every request that does not carry a
// string under "plugh".
const NotValidMessage = "plugh not present or not valid"

// Request is the accepted request shape.
type Request struct {
	Plugh *string `json:"plugh" validate:"required" jsonschema:"required,description=String whose byte length is reported"`
}

// Processor implements ports.Processor for plugh requests.
type Processor struct{}

// Process returns "plugh has length N" where N is the byte length of the
// "plugh" string.
func (Processor) Process(req jsonffi.ParsedRequest) (string, error) {
	var r Request
	if err := jsonffi.Bind(req, &r); err != nil {
		return "", jsonffi.Reject(NotValidMessage, err)
	}

	return fmt.Sprintf("plugh has length %d", len(*r.Plugh)), nil
}

// RequestSchema implements ports.SchemaProvider.
func (Processor) RequestSchema() ([]byte, error) {
	return schema.GenerateSchema(&Request{})
}
