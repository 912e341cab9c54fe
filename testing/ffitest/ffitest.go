// Package ffitest provides a test harness for jsonffi processors and
// boundary builds.
package ffitest

import (
	"context"
	"strings"
	"testing"

	"github.com/reglet-dev/jsonffi/application/boundary"
	"github.com/reglet-dev/jsonffi/client"
	"github.com/reglet-dev/jsonffi/domain/entities"
	"github.com/reglet-dev/jsonffi/domain/ports"
	"github.com/reglet-dev/jsonffi/internal/scenario"
)

// TestCase defines a test case for a boundary.
type TestCase struct {
	Name     string
	Request  []byte
	Validate func(t *testing.T, env entities.Envelope)
}

// RunProcessorTests runs tests against a processor through an in-process
// boundary.
func RunProcessorTests(t *testing.T, p ports.Processor, tests []TestCase) {
	t.Helper()
	RunTransportTests(t, client.InProcess(boundary.New(p)), tests)
}

// RunTransportTests runs tests through any Transport, such as a
// *host.Module.
func RunTransportTests(t *testing.T, transport client.Transport, tests []TestCase) {
	t.Helper()
	c := client.New(transport)

	for _, tc := range tests {
		t.Run(tc.Name, func(t *testing.T) {
			env, err := c.CallRaw(context.Background(), tc.Request)
			if err != nil {
				t.Fatalf("call failed: %v", err)
			}
			if tc.Validate != nil {
				tc.Validate(t, env)
			}
		})
	}
}

// RunScenarioFile runs every case of a scenario file through transport.
func RunScenarioFile(t *testing.T, transport client.Transport, path string) {
	t.Helper()
	suite, err := scenario.Load(path)
	if err != nil {
		t.Fatalf("failed to load scenarios: %v", err)
	}

	c := client.New(transport, client.WithStrict(suite.Strict))
	for _, sc := range suite.Cases {
		t.Run(sc.Name, func(t *testing.T) {
			req, err := sc.Bytes()
			if err != nil {
				t.Fatalf("bad request: %v", err)
			}
			env, err := c.CallRaw(context.Background(), req)
			if err != nil {
				t.Fatalf("call failed: %v", err)
			}
			if err := sc.Check(env); err != nil {
				t.Error(err)
			}
		})
	}
}

// ExpectOk returns a Validate func asserting an Ok envelope with payload.
func ExpectOk(payload string) func(*testing.T, entities.Envelope) {
	return func(t *testing.T, env entities.Envelope) {
		t.Helper()
		got, ok := env.Payload()
		if !ok || got != payload {
			t.Errorf("expected Ok(%q), got %s", payload, env)
		}
	}
}

// ExpectErr returns a Validate func asserting an Err envelope with message.
func ExpectErr(message string) func(*testing.T, entities.Envelope) {
	return func(t *testing.T, env entities.Envelope) {
		t.Helper()
		got, ok := env.Message()
		if !ok || got != message {
			t.Errorf("expected Err(%q), got %s", message, env)
		}
	}
}

// ExpectErrPrefix returns a Validate func asserting an Err envelope whose
// message starts with prefix.
func ExpectErrPrefix(prefix string) func(*testing.T, entities.Envelope) {
	return func(t *testing.T, env entities.Envelope) {
		t.Helper()
		got, ok := env.Message()
		if !ok || !strings.HasPrefix(got, prefix) {
			t.Errorf("expected Err starting with %q, got %s", prefix, env)
		}
	}
}
