// Package jsonffi is the entry point for writing domain logic served across
// the JSON boundary. It re-exports the core types and adds helpers for
// binding and inspecting requests.
package jsonffi

import (
	"github.com/reglet-dev/jsonffi/application/boundary"
	"github.com/reglet-dev/jsonffi/domain/entities"
	domainerrors "github.com/reglet-dev/jsonffi/domain/errors"
	"github.com/reglet-dev/jsonffi/domain/ports"
)

// Envelope is the Ok/Err response carried across the boundary.
type Envelope = entities.Envelope

// ParsedRequest is a request that passed the UTF-8 and JSON checks.
type ParsedRequest = entities.ParsedRequest

// Processor is the domain logic behind the boundary.
type Processor = ports.Processor

// ProcessorFunc adapts a function to Processor.
type ProcessorFunc = ports.ProcessorFunc

// Bridge runs requests through the gate and a Processor.
type Bridge = boundary.Bridge

// Ok creates a success envelope.
func Ok(payload string) Envelope {
	return entities.Ok(payload)
}

// Err creates a failure envelope.
func Err(message string) Envelope {
	return entities.Err(message)
}

// NewBridge creates a Bridge around p.
func NewBridge(p Processor, opts ...boundary.Option) *Bridge {
	return boundary.New(p, opts...)
}

// Reject returns the error a Processor should return for a request it
// does not accept. message becomes the Err payload verbatim; cause is kept
// for logging and errors.Is.
func Reject(message string, cause error) error {
	return &domainerrors.DomainError{Message: message, Err: cause}
}
