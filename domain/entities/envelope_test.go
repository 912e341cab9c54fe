package entities

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOk(t *testing.T) {
	env := Ok("plugh has length 13")

	assert.True(t, env.IsOk())
	assert.False(t, env.IsErr())
	assert.Equal(t, EnvelopeOk, env.Kind())

	payload, ok := env.Payload()
	assert.True(t, ok)
	assert.Equal(t, "plugh has length 13", payload)

	_, isErr := env.Message()
	assert.False(t, isErr)
}

func TestErr(t *testing.T) {
	env := Err("plugh not present or not valid")

	assert.True(t, env.IsErr())
	assert.False(t, env.IsOk())

	msg, ok := env.Message()
	assert.True(t, ok)
	assert.Equal(t, "plugh not present or not valid", msg)

	_, isOk := env.Payload()
	assert.False(t, isOk)
}

func TestEnvelope_MarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		env  Envelope
		want string
	}{
		{name: "ok", env: Ok("done"), want: `{"Ok":"done"}`},
		{name: "err", env: Err("JSON Parse error: boom"), want: `{"Err":"JSON Parse error: boom"}`},
		{name: "empty payload", env: Ok(""), want: `{"Ok":""}`},
		{name: "escaped", env: Err("quote \" and \x00"), want: `{"Err":"quote \" and \u0000"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.env)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(data))
		})
	}
}

func TestEnvelope_MarshalJSON_ZeroValue(t *testing.T) {
	_, err := json.Marshal(Envelope{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedEnvelope)
}

func TestEnvelope_String(t *testing.T) {
	assert.Equal(t, `Ok("x")`, Ok("x").String())
	assert.Equal(t, `Err("y")`, Err("y").String())
	assert.Equal(t, "<invalid envelope>", Envelope{}.String())
}

func TestParseEnvelope(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		strict  bool
		want    Envelope
		wantErr bool
	}{
		{name: "ok", input: `{"Ok":"fine"}`, strict: true, want: Ok("fine")},
		{name: "err", input: `{"Err":"bad"}`, strict: true, want: Err("bad")},
		{name: "whitespace", input: " { \"Ok\" : \"fine\" } ", strict: true, want: Ok("fine")},
		{name: "both keys", input: `{"Ok":"a","Err":"b"}`, strict: false, wantErr: true},
		{name: "neither key", input: `{"foo":"a"}`, strict: false, wantErr: true},
		{name: "empty object", input: `{}`, strict: false, wantErr: true},
		{name: "extra key strict", input: `{"Ok":"a","extra":1}`, strict: true, wantErr: true},
		{name: "extra key lenient", input: `{"Ok":"a","extra":1}`, strict: false, want: Ok("a")},
		{name: "number value", input: `{"Ok":1}`, strict: false, wantErr: true},
		{name: "null value", input: `{"Err":null}`, strict: false, wantErr: true},
		{name: "array", input: `["Ok","a"]`, strict: false, wantErr: true},
		{name: "null document", input: `null`, strict: false, wantErr: true},
		{name: "not json", input: `{Ok}`, strict: false, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseEnvelope([]byte(tt.input), tt.strict)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrMalformedEnvelope)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEnvelope_UnmarshalJSON_IsStrict(t *testing.T) {
	var env Envelope
	require.NoError(t, json.Unmarshal([]byte(`{"Err":"x"}`), &env))
	assert.Equal(t, Err("x"), env)

	err := json.Unmarshal([]byte(`{"Err":"x","Ok":"y"}`), &env)
	assert.ErrorIs(t, err, ErrMalformedEnvelope)

	err = json.Unmarshal([]byte(`{"Err":"x","note":"y"}`), &env)
	assert.ErrorIs(t, err, ErrMalformedEnvelope)
}

func TestEnvelope_RoundTrip(t *testing.T) {
	for _, env := range []Envelope{Ok("plugh has length 13"), Err("Encoding error: x")} {
		data, err := json.Marshal(env)
		require.NoError(t, err)

		var back Envelope
		require.NoError(t, json.Unmarshal(data, &back))
		assert.Equal(t, env, back)
	}
}

func TestEncodeFallback_IsValidEnvelope(t *testing.T) {
	env, err := ParseEnvelope([]byte(EncodeFallback), true)
	require.NoError(t, err)
	assert.Equal(t, Err("JSON encode error"), env)
}
