package boundary_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/reglet-dev/jsonffi/application/boundary"
	"github.com/reglet-dev/jsonffi/domain/entities"
	domainerrors "github.com/reglet-dev/jsonffi/domain/errors"
	"github.com/reglet-dev/jsonffi/domain/ports"
	"github.com/reglet-dev/jsonffi/internal/plugh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBridge(t *testing.T, p ports.Processor, opts ...boundary.Option) (*boundary.Bridge, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return boundary.New(p, append([]boundary.Option{boundary.WithLogger(logger)}, opts...)...), &buf
}

func TestBridge_Respond_Scenarios(t *testing.T) {
	b, _ := newBridge(t, plugh.Processor{})

	tests := []struct {
		name    string
		request []byte
		want    string
	}{
		{
			name:    "domain success",
			request: []byte(`{"plugh":"A test string"}`),
			want:    `{"Ok":"plugh has length 13"}`,
		},
		{
			name:    "domain failure",
			request: []byte(`{"foo":"A test string"}`),
			want:    `{"Err":"plugh not present or not valid"}`,
		},
		{
			name:    "invalid json",
			request: []byte(`{Invalid json}`),
			want:    `{"Err":"JSON Parse error: invalid character 'I' looking for beginning of object key string"}`,
		},
		{
			name:    "invalid utf-8",
			request: []byte{0xE7},
			want:    `{"Err":"Encoding error: incomplete utf-8 byte sequence from index 0"}`,
		},
		{
			name:    "multibyte length",
			request: []byte(`{"plugh":"héllo"}`),
			want:    `{"Ok":"plugh has length 6"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.JSONEq(t, tt.want, string(b.Respond(tt.request)))
		})
	}
}

func TestBridge_Handle_Idempotent(t *testing.T) {
	b, _ := newBridge(t, plugh.Processor{})
	req := []byte(`{"plugh":"A test string"}`)

	first := b.Handle(req)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, b.Handle(req))
	}
}

func TestBridge_Handle_DoesNotRetainRequest(t *testing.T) {
	var seen entities.ParsedRequest
	b, _ := newBridge(t, ports.ProcessorFunc(func(req entities.ParsedRequest) (string, error) {
		seen = req
		return "ok", nil
	}))

	req := []byte(`"abc"`)
	b.Handle(req)
	copy(req, `"xyz"`)

	assert.Equal(t, `"abc"`, string(seen.Raw))
}

func TestBridge_Handle_PanicBecomesInternalError(t *testing.T) {
	b, logs := newBridge(t, ports.ProcessorFunc(func(entities.ParsedRequest) (string, error) {
		panic("boom")
	}))

	env := b.Handle([]byte(`{}`))
	require.True(t, env.IsErr())
	assert.Equal(t, domainerrors.PrefixInternal+"boom", env.Value())
	assert.Contains(t, logs.String(), "boundary: panic recovered")
}

func TestBridge_Handle_PlainErrorsAreDomainErrors(t *testing.T) {
	b, _ := newBridge(t, ports.ProcessorFunc(func(entities.ParsedRequest) (string, error) {
		return "", errors.New("not today")
	}))

	env := b.Handle([]byte(`null`))
	require.True(t, env.IsErr())
	assert.Equal(t, "not today", env.Value())
}

func TestBridge_Encode_Fallback(t *testing.T) {
	failing := func(entities.Envelope) ([]byte, error) { return nil, errors.New("disk full") }
	b, logs := newBridge(t, plugh.Processor{}, boundary.WithMarshaler(failing))

	out := b.Respond([]byte(`{"plugh":"x"}`))
	assert.Equal(t, entities.EncodeFallback, string(out))
	assert.True(t, json.Valid(out))
	assert.Contains(t, logs.String(), "disk full")
}

func TestBridge_Encode_FallbackOnPanic(t *testing.T) {
	panicking := func(entities.Envelope) ([]byte, error) { panic("bad marshaler") }
	b, _ := newBridge(t, plugh.Processor{}, boundary.WithMarshaler(panicking))

	assert.Equal(t, entities.EncodeFallback, string(b.Respond([]byte(`{}`))))
}

func TestBridge_Respond_EscapesPayload(t *testing.T) {
	b, _ := newBridge(t, ports.ProcessorFunc(func(entities.ParsedRequest) (string, error) {
		return "quote \" and \u2028 newline\n", nil
	}))

	out := b.Respond([]byte(`1`))
	env, err := entities.ParseEnvelope(out, true)
	require.NoError(t, err)
	assert.Equal(t, "quote \" and \u2028 newline\n", env.Value())
}

func TestBridge_Schema(t *testing.T) {
	b, _ := newBridge(t, plugh.Processor{})

	data, err := b.Schema()
	require.NoError(t, err)

	var doc map[string]map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	props, ok := doc["request"]["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "plugh")
	assert.Equal(t, "Envelope", doc["response"]["title"])
}

func TestBridge_Schema_WithoutProvider(t *testing.T) {
	b, _ := newBridge(t, ports.ProcessorFunc(func(entities.ParsedRequest) (string, error) { return "", nil }))

	data, err := b.Schema()
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `"request":true`))
}
