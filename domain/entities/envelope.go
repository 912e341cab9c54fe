package entities

import (
	"encoding/json"
	"errors"
	"fmt"
)

// EnvelopeKind tags which side of the envelope is populated.
type EnvelopeKind string

const (
	// EnvelopeOk marks a domain success.
	EnvelopeOk EnvelopeKind = "Ok"

	// EnvelopeErr marks a failure, either from the gate or from domain logic.
	EnvelopeErr EnvelopeKind = "Err"
)

// EncodeFallback is emitted verbatim when an envelope cannot be serialized.
// It is valid JSON and deliberately carries no detail.
const EncodeFallback = `{"Err":"JSON encode error"}`

// ErrMalformedEnvelope is returned when a document does not have the
// exact shape {"Ok": string} or {"Err": string}.
var ErrMalformedEnvelope = errors.New("malformed envelope")

// Envelope is the tagged Ok/Err value carried by every response.
// The zero value is not a valid envelope; build one with Ok or Err.
type Envelope struct {
	kind  EnvelopeKind
	value string
}

// Ok creates a success envelope.
func Ok(payload string) Envelope {
	return Envelope{kind: EnvelopeOk, value: payload}
}

// Err creates a failure envelope.
func Err(message string) Envelope {
	return Envelope{kind: EnvelopeErr, value: message}
}

// Kind reports which side is populated. Empty for the zero value.
func (e Envelope) Kind() EnvelopeKind {
	return e.kind
}

// IsOk returns true for success envelopes.
func (e Envelope) IsOk() bool {
	return e.kind == EnvelopeOk
}

// IsErr returns true for failure envelopes.
func (e Envelope) IsErr() bool {
	return e.kind == EnvelopeErr
}

// Payload returns the success payload and whether the envelope is Ok.
func (e Envelope) Payload() (string, bool) {
	if e.kind != EnvelopeOk {
		return "", false
	}
	return e.value, true
}

// Message returns the failure message and whether the envelope is Err.
func (e Envelope) Message() (string, bool) {
	if e.kind != EnvelopeErr {
		return "", false
	}
	return e.value, true
}

// Value returns the populated side regardless of kind.
func (e Envelope) Value() string {
	return e.value
}

// String renders the envelope as Ok("...") or Err("...").
func (e Envelope) String() string {
	if e.kind == "" {
		return "<invalid envelope>"
	}
	return fmt.Sprintf("%s(%q)", e.kind, e.value)
}

// MarshalJSON encodes the envelope as a single-key object.
func (e Envelope) MarshalJSON() ([]byte, error) {
	switch e.kind {
	case EnvelopeOk, EnvelopeErr:
		return json.Marshal(map[EnvelopeKind]string{e.kind: e.value})
	default:
		return nil, fmt.Errorf("%w: zero value cannot be encoded", ErrMalformedEnvelope)
	}
}

// UnmarshalJSON decodes an envelope in strict mode.
func (e *Envelope) UnmarshalJSON(data []byte) error {
	env, err := ParseEnvelope(data, true)
	if err != nil {
		return err
	}
	*e = env
	return nil
}

// ParseEnvelope decodes a response document.
//
// Exactly one of "Ok" and "Err" must be present and its value must be a
// string. In strict mode any additional key is rejected as well; otherwise
// additional keys are ignored.
func ParseEnvelope(data []byte, strict bool) (Envelope, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	if fields == nil {
		return Envelope{}, fmt.Errorf("%w: document is null", ErrMalformedEnvelope)
	}

	okRaw, hasOk := fields[string(EnvelopeOk)]
	errRaw, hasErr := fields[string(EnvelopeErr)]

	switch {
	case hasOk && hasErr:
		return Envelope{}, fmt.Errorf("%w: both Ok and Err present", ErrMalformedEnvelope)
	case !hasOk && !hasErr:
		return Envelope{}, fmt.Errorf("%w: neither Ok nor Err present", ErrMalformedEnvelope)
	}

	if strict && len(fields) != 1 {
		return Envelope{}, fmt.Errorf("%w: unexpected keys alongside the tag", ErrMalformedEnvelope)
	}

	kind, raw := EnvelopeOk, okRaw
	if hasErr {
		kind, raw = EnvelopeErr, errRaw
	}

	var value string
	if err := json.Unmarshal(raw, &value); err != nil || isJSONNull(raw) {
		return Envelope{}, fmt.Errorf("%w: %s value must be a string", ErrMalformedEnvelope, kind)
	}

	return Envelope{kind: kind, value: value}, nil
}

func isJSONNull(raw json.RawMessage) bool {
	return string(raw) == "null"
}
