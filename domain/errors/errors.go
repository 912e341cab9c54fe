// Package errors provides the failure taxonomy of the boundary.
// Every recoverable failure is converted into an Err envelope with
// ToEnvelope; nothing is propagated across the boundary as a panic.
// All error types support error unwrapping via errors.As() and errors.Is().
package errors

import (
	stdErrors "errors"
	"fmt"

	"github.com/reglet-dev/jsonffi/domain/entities"
)

// Stable message prefixes. Callers match on these, so they must not change.
const (
	PrefixEncoding = "Encoding error: "
	PrefixJSON     = "JSON Parse error: "
	PrefixInternal = "Internal error: "
)

// Category names a class of failure.
type Category string

const (
	CategoryEncoding Category = "encoding"
	CategoryJSON     Category = "json"
	CategoryDomain   Category = "domain"
	CategoryInternal Category = "internal"
	CategoryMemory   Category = "memory"
)

// EnvelopeError is implemented by errors that know how to render themselves
// as an Err envelope message. New error types only need to implement this
// interface to be classified by ToEnvelope.
type EnvelopeError interface {
	error
	Category() Category
	EnvelopeMessage() string
}

// ToEnvelope converts a Go error into an Err envelope.
// Errors that do not implement EnvelopeError are treated as domain errors
// and their message is used verbatim.
func ToEnvelope(err error) entities.Envelope {
	if err == nil {
		return entities.Err("")
	}

	var ee EnvelopeError
	if stdErrors.As(err, &ee) {
		return entities.Err(ee.EnvelopeMessage())
	}

	return entities.Err(err.Error())
}

// CategoryOf reports the category of err, defaulting to CategoryDomain.
func CategoryOf(err error) Category {
	var ee EnvelopeError
	if stdErrors.As(err, &ee) {
		return ee.Category()
	}
	return CategoryDomain
}

// EncodingError is returned when the request bytes are not valid UTF-8.
type EncodingError struct {
	// Offset is the index of the first byte of the offending sequence.
	Offset int
	// Length is the number of bytes that form the invalid sequence.
	Length int
	// Incomplete is true when the input ends in the middle of a sequence.
	Incomplete bool
}

func (e *EncodingError) Error() string {
	if e.Incomplete {
		return fmt.Sprintf("incomplete utf-8 byte sequence from index %d", e.Offset)
	}
	return fmt.Sprintf("invalid utf-8 sequence of %d bytes from index %d", e.Length, e.Offset)
}

// Category implements EnvelopeError.
func (e *EncodingError) Category() Category { return CategoryEncoding }

// EnvelopeMessage implements EnvelopeError.
func (e *EncodingError) EnvelopeMessage() string {
	return PrefixEncoding + e.Error()
}

// JSONError is returned when the decoded text is not a single JSON value.
type JSONError struct {
	Err error
}

func (e *JSONError) Error() string {
	return e.Err.Error()
}

func (e *JSONError) Unwrap() error {
	return e.Err
}

// Category implements EnvelopeError.
func (e *JSONError) Category() Category { return CategoryJSON }

// EnvelopeMessage implements EnvelopeError.
func (e *JSONError) EnvelopeMessage() string {
	return PrefixJSON + e.Error()
}

// DomainError is a validation failure reported by domain logic.
// The message is surfaced without any prefix.
type DomainError struct {
	Err     error
	Message string
}

// NewDomainError creates a DomainError with the given message.
func NewDomainError(message string) *DomainError {
	return &DomainError{Message: message}
}

func (e *DomainError) Error() string {
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Category implements EnvelopeError.
func (e *DomainError) Category() Category { return CategoryDomain }

// EnvelopeMessage implements EnvelopeError.
func (e *DomainError) EnvelopeMessage() string {
	return e.Message
}

// InternalError wraps a panic recovered inside the boundary.
type InternalError struct {
	Value any
	Stack []byte
}

func (e *InternalError) Error() string {
	switch v := e.Value.(type) {
	case error:
		return v.Error()
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Category implements EnvelopeError.
func (e *InternalError) Category() Category { return CategoryInternal }

// EnvelopeMessage implements EnvelopeError.
func (e *InternalError) EnvelopeMessage() string {
	return PrefixInternal + e.Error()
}

// MemoryMisuseError describes a free of a handle the allocator does not
// own, or of an allocation whose header tag has been overwritten.
// It is never turned into an envelope: there is no response to carry it.
type MemoryMisuseError struct {
	Op      string
	Addr    uintptr
	Problem string
}

func (e *MemoryMisuseError) Error() string {
	return fmt.Sprintf("%s of handle 0x%x: %s", e.Op, e.Addr, e.Problem)
}
