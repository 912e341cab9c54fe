package jsonffi

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is a package-level singleton for better performance.
// Creating a new validator on each call is expensive; reusing is recommended.
var validate = validator.New()

// ErrNotObject is returned by Bind when the request is not a JSON object.
var ErrNotObject = errors.New("request is not a JSON object")

// Bind decodes an object request into target, a pointer to a struct, and
// runs its `validate` tags. Top-level keys must match a field's JSON name
// exactly; "Name" does not fill a field tagged "name".
func Bind(req ParsedRequest, target interface{}) error {
	if !IsObject(req) {
		return ErrNotObject
	}

	if err := decodeExact(req, target); err != nil {
		return fmt.Errorf("failed to decode request: %w", err)
	}

	if err := validate.Struct(target); err != nil {
		return fmt.Errorf("request validation failed: %w", err)
	}

	return nil
}

// decodeExact decodes only the top-level keys spelled exactly like a JSON
// field name of target.
func decodeExact(req ParsedRequest, target interface{}) error {
	names := jsonNames(reflect.TypeOf(target))
	if names == nil {
		return req.Decode(target)
	}

	var fields map[string]json.RawMessage
	if err := req.Decode(&fields); err != nil {
		return err
	}
	for key := range fields {
		if !names[key] {
			delete(fields, key)
		}
	}

	data, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, target)
}

// jsonNames lists the JSON names encoding/json would use for the fields of
// t, following pointers and untagged embedded structs. It returns nil when
// t is not a struct.
func jsonNames(t reflect.Type) map[string]bool {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}

	names := make(map[string]bool, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, _, _ := strings.Cut(tag, ",")
		if f.Anonymous && name == "" {
			if embedded := jsonNames(f.Type); embedded != nil {
				for key := range embedded {
					names[key] = true
				}
				continue
			}
		}
		if !f.IsExported() {
			continue
		}
		if name == "" {
			name = f.Name
		}
		names[name] = true
	}
	return names
}
