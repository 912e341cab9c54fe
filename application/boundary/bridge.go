// Package boundary wires the gate, domain logic and the result envelope
// into the single request/response step behind every exported entry point.
package boundary

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/reglet-dev/jsonffi/application/gate"
	"github.com/reglet-dev/jsonffi/application/schema"
	"github.com/reglet-dev/jsonffi/domain/entities"
	domainerrors "github.com/reglet-dev/jsonffi/domain/errors"
	"github.com/reglet-dev/jsonffi/domain/ports"
)

// Bridge runs requests through the gate and a Processor.
// A Bridge is safe for concurrent use when its Processor is.
type Bridge struct {
	processor ports.Processor
	logger    *slog.Logger
	marshal   func(entities.Envelope) ([]byte, error)
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithLogger sets the logger used for recovered panics and encode failures.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bridge) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithMarshaler replaces envelope serialization. Mostly useful in tests
// that need to force the encode fallback.
func WithMarshaler(marshal func(entities.Envelope) ([]byte, error)) Option {
	return func(b *Bridge) {
		if marshal != nil {
			b.marshal = marshal
		}
	}
}

// New creates a Bridge around processor.
func New(processor ports.Processor, opts ...Option) *Bridge {
	b := &Bridge{
		processor: processor,
		logger:    slog.Default(),
		marshal:   func(env entities.Envelope) ([]byte, error) { return json.Marshal(env) },
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Handle classifies raw and produces exactly one envelope. It never panics.
func (b *Bridge) Handle(raw []byte) (env entities.Envelope) {
	defer func() {
		if r := recover(); r != nil {
			ierr := &domainerrors.InternalError{Value: r, Stack: debug.Stack()}
			b.logger.Error("boundary: panic recovered", "error", ierr.Error())
			env = domainerrors.ToEnvelope(ierr)
		}
	}()

	req, err := gate.Decode(raw)
	if err != nil {
		b.logger.Debug("boundary: request rejected", "category", domainerrors.CategoryOf(err), "error", err.Error())
		return domainerrors.ToEnvelope(err)
	}

	payload, err := b.processor.Process(req)
	if err != nil {
		return domainerrors.ToEnvelope(err)
	}
	return entities.Ok(payload)
}

// Respond is Handle followed by serialization. The result is always a
// valid JSON envelope.
func (b *Bridge) Respond(raw []byte) []byte {
	return b.Encode(b.Handle(raw))
}

// Encode serializes env, falling back to entities.EncodeFallback on failure.
func (b *Bridge) Encode(env entities.Envelope) (data []byte) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("boundary: envelope encode panicked", "error", fmt.Sprint(r))
			data = []byte(entities.EncodeFallback)
		}
	}()

	data, err := b.marshal(env)
	if err != nil {
		b.logger.Error("boundary: failed to encode envelope", "error", err.Error())
		return []byte(entities.EncodeFallback)
	}
	return data
}

// Schema returns the request and envelope schemas as one JSON document.
// Processors that do not implement ports.SchemaProvider publish the
// permissive request schema.
func (b *Bridge) Schema() ([]byte, error) {
	var requestSchema []byte
	if provider, ok := b.processor.(ports.SchemaProvider); ok {
		s, err := provider.RequestSchema()
		if err != nil {
			return nil, fmt.Errorf("failed to generate request schema: %w", err)
		}
		requestSchema = s
	}
	return schema.NewDocument(requestSchema).Marshal()
}
