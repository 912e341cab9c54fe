package ports

import "github.com/reglet-dev/jsonffi/domain/entities"

// Processor is the domain logic behind the boundary.
//
// Process must be pure: no I/O and no retained references to req.
// A returned error becomes an Err envelope; errors implementing
// errors.EnvelopeError control their own message.
type Processor interface {
	Process(req entities.ParsedRequest) (string, error)
}

// ProcessorFunc adapts an ordinary function to the Processor interface.
type ProcessorFunc func(req entities.ParsedRequest) (string, error)

// Process implements Processor.
func (f ProcessorFunc) Process(req entities.ParsedRequest) (string, error) {
	return f(req)
}

// SchemaProvider is optionally implemented by processors that can describe
// the requests they accept as a JSON Schema document.
type SchemaProvider interface {
	RequestSchema() ([]byte, error)
}
