package plugh

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/reglet-dev/jsonffi/application/gate"
	domainerrors "github.com/reglet-dev/jsonffi/domain/errors"
	"github.com/reglet-dev/jsonffi/domain/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.Processor = Processor{}
var _ ports.SchemaProvider = Processor{}

func process(t *testing.T, input string) (string, error) {
	t.Helper()
	req, err := gate.Decode([]byte(input))
	require.NoError(t, err)
	return Processor{}.Process(req)
}

func TestProcess_Success(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: `{"plugh": "A test string"}`, want: "plugh has length 13"},
		{input: `{"plugh": "héllo"}`, want: "plugh has length 6"},
		{input: `{"plugh": "x", "other": [1, 2]}`, want: "plugh has length 1"},
		{input: `{"plugh": "x", "Plugh": "longer"}`, want: "plugh has length 1"},
		{input: `{"PLUGH": 13, "plugh": "abc"}`, want: "plugh has length 3"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := process(t, tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProcess_NotValid(t *testing.T) {
	inputs := []string{
		`{"foo": "A test string"}`,
		`{"plugh": 13}`,
		`{"plugh": null}`,
		`{"plugh": ["a"]}`,
		`"plugh"`,
		`["plugh"]`,
		`null`,
		`{}`,
		`{"PLUGH": "abc"}`,
		`{"Plugh": "abc"}`,
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			_, err := process(t, input)
			require.Error(t, err)
			assert.Equal(t, NotValidMessage, err.Error())
			assert.Equal(t, domainerrors.CategoryDomain, domainerrors.CategoryOf(err))
		})
	}
}

func TestProcess_MissingKeyIsValidationError(t *testing.T) {
	_, err := process(t, `{"foo": "A test string"}`)

	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, "Plugh", verrs[0].Field())
	assert.Equal(t, "required", verrs[0].Tag())
}

func TestProcess_FoldedKeyIsValidationError(t *testing.T) {
	_, err := process(t, `{"Plugh": "abc"}`)

	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, "required", verrs[0].Tag())
}

func TestProcess_WrongTypeIsDecodeError(t *testing.T) {
	_, err := process(t, `{"plugh": 13}`)

	var typeErr *json.UnmarshalTypeError
	assert.True(t, errors.As(err, &typeErr))
}

func TestRequestSchema(t *testing.T) {
	data, err := Processor{}.RequestSchema()
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))

	props, ok := doc["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "plugh")
	assert.Contains(t, doc["required"], "plugh")
}
