// Package client is the Go caller side of the boundary. It encodes
// requests, sends them through a Transport and turns the response envelope
// into a payload or a *RemoteError.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/reglet-dev/jsonffi/application/boundary"
	"github.com/reglet-dev/jsonffi/domain/entities"
	domainerrors "github.com/reglet-dev/jsonffi/domain/errors"
	"github.com/reglet-dev/jsonffi/domain/ports"
)

// Transport delivers a raw request and returns the raw response.
// *host.Module satisfies it.
type Transport interface {
	Process(ctx context.Context, req []byte) ([]byte, error)
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, req []byte) ([]byte, error)

// Process implements Transport.
func (f TransportFunc) Process(ctx context.Context, req []byte) ([]byte, error) {
	return f(ctx, req)
}

// InProcess returns a Transport that calls a boundary.Bridge directly.
func InProcess(b *boundary.Bridge) Transport {
	return TransportFunc(func(_ context.Context, req []byte) ([]byte, error) {
		return b.Respond(req), nil
	})
}

// RemoteError is an Err envelope received from the boundary.
type RemoteError struct {
	Category domainerrors.Category
	Message  string
}

func (e *RemoteError) Error() string {
	return e.Message
}

// Detail returns the message without its category prefix.
func (e *RemoteError) Detail() string {
	for _, prefix := range []string{domainerrors.PrefixEncoding, domainerrors.PrefixJSON, domainerrors.PrefixInternal} {
		if rest, ok := strings.CutPrefix(e.Message, prefix); ok {
			return rest
		}
	}
	return e.Message
}

// Classify derives the category of an Err message from its prefix.
// Unprefixed messages come from domain logic.
func Classify(message string) domainerrors.Category {
	switch {
	case strings.HasPrefix(message, domainerrors.PrefixEncoding):
		return domainerrors.CategoryEncoding
	case strings.HasPrefix(message, domainerrors.PrefixJSON):
		return domainerrors.CategoryJSON
	case strings.HasPrefix(message, domainerrors.PrefixInternal):
		return domainerrors.CategoryInternal
	default:
		return domainerrors.CategoryDomain
	}
}

// Client sends requests through a Transport.
type Client struct {
	transport Transport
	strict    bool
	validator ports.EnvelopeValidator
}

// Option configures a Client.
type Option func(*Client)

// WithStrict rejects envelopes carrying keys other than the tag.
func WithStrict(strict bool) Option {
	return func(c *Client) {
		c.strict = strict
	}
}

// WithValidator checks every response against the envelope schema before
// decoding it.
func WithValidator(v ports.EnvelopeValidator) Option {
	return func(c *Client) {
		c.validator = v
	}
}

// New creates a Client. Decoding is strict unless WithStrict(false) is given.
func New(transport Transport, opts ...Option) *Client {
	c := &Client{transport: transport, strict: true}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Decode turns a raw response into an envelope.
func (c *Client) Decode(data []byte) (entities.Envelope, error) {
	if c.validator != nil {
		if err := c.validator.Validate(data); err != nil {
			return entities.Envelope{}, err
		}
	}
	return entities.ParseEnvelope(data, c.strict)
}

// CallRaw sends req unchanged and decodes the response envelope.
func (c *Client) CallRaw(ctx context.Context, req []byte) (entities.Envelope, error) {
	data, err := c.transport.Process(ctx, req)
	if err != nil {
		return entities.Envelope{}, fmt.Errorf("transport failed: %w", err)
	}
	return c.Decode(data)
}

// Call marshals req as JSON, sends it and returns the Ok payload.
// An Err envelope is returned as a *RemoteError.
func (c *Client) Call(ctx context.Context, req any) (string, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}
	env, err := c.CallRaw(ctx, data)
	if err != nil {
		return "", err
	}
	if payload, ok := env.Payload(); ok {
		return payload, nil
	}
	message, _ := env.Message()
	return "", &RemoteError{Category: Classify(message), Message: message}
}
