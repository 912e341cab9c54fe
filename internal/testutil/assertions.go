// Package testutil provides common test utilities and assertions for jsonffi tests
package testutil

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/reglet-dev/jsonffi/domain/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertJSONEqual compares two JSON strings for equality, ignoring formatting
func AssertJSONEqual(t *testing.T, expected, actual string, msgAndArgs ...interface{}) {
	t.Helper()

	var expectedJSON, actualJSON interface{}
	require.NoError(t, json.Unmarshal([]byte(expected), &expectedJSON), "expected JSON is invalid")
	require.NoError(t, json.Unmarshal([]byte(actual), &actualJSON), "actual JSON is invalid")

	assert.Equal(t, expectedJSON, actualJSON, msgAndArgs...)
}

// RequireEnvelope strictly decodes a serialized response.
func RequireEnvelope(t *testing.T, data []byte) entities.Envelope {
	t.Helper()
	env, err := entities.ParseEnvelope(data, true)
	require.NoError(t, err, "response is not a strict envelope: %s", data)
	return env
}

// AssertOk asserts env is Ok with the given payload.
func AssertOk(t *testing.T, env entities.Envelope, payload string) {
	t.Helper()
	got, ok := env.Payload()
	if assert.True(t, ok, "expected Ok, got %s", env) {
		assert.Equal(t, payload, got)
	}
}

// AssertErr asserts env is Err with the given message.
func AssertErr(t *testing.T, env entities.Envelope, message string) {
	t.Helper()
	got, ok := env.Message()
	if assert.True(t, ok, "expected Err, got %s", env) {
		assert.Equal(t, message, got)
	}
}

// AssertErrPrefix asserts env is Err and its message starts with prefix.
func AssertErrPrefix(t *testing.T, env entities.Envelope, prefix string) {
	t.Helper()
	got, ok := env.Message()
	if assert.True(t, ok, "expected Err, got %s", env) {
		assert.True(t, strings.HasPrefix(got, prefix), "message %q should start with %q", got, prefix)
	}
}

// CString returns a NUL-terminated copy of s, as a C caller would pass it.
func CString(s string) []byte {
	b := make([]byte, len(s)+1)
	copy(b, s)
	return b
}
