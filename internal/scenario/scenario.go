// Package scenario loads request/expectation pairs from TOML or YAML files
// and checks responses against them.
package scenario

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/reglet-dev/jsonffi/domain/entities"
	"gopkg.in/yaml.v3"
)

// ErrMismatch is returned by Check when a response differs from the
// expectation.
var ErrMismatch = errors.New("response mismatch")

// Case is one request and the response it must produce.
// Exactly one of Ok, Err and ErrPrefix is set.
type Case struct {
	Name       string  `toml:"name" yaml:"name"`
	Request    *string `toml:"request" yaml:"request"`
	RequestHex *string `toml:"request_hex" yaml:"request_hex"`
	Ok         *string `toml:"ok" yaml:"ok"`
	Err        *string `toml:"err" yaml:"err"`
	ErrPrefix  *string `toml:"err_prefix" yaml:"err_prefix"`
}

// Suite is a loaded scenario file.
type Suite struct {
	// Strict requests strict envelope decoding. Command-line flags may
	// override it.
	Strict bool
	Cases  []Case
}

type fileSuite struct {
	Strict bool   `toml:"strict" yaml:"strict"`
	Cases  []Case `toml:"case" yaml:"cases"`
}

// Load reads a scenario file. The format follows the extension:
// .toml, or .yaml/.yml.
func Load(path string) (Suite, error) {
	var raw fileSuite
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		meta, err := toml.DecodeFile(path, &raw)
		if err != nil {
			return Suite{}, fmt.Errorf("load scenarios: %w", err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return Suite{}, fmt.Errorf("load scenarios: unknown keys %v", undecoded)
		}
		if !meta.IsDefined("strict") {
			raw.Strict = true
		}
	case ".yaml", ".yml":
		f, err := os.Open(path)
		if err != nil {
			return Suite{}, fmt.Errorf("load scenarios: %w", err)
		}
		defer f.Close()

		raw.Strict = true
		dec := yaml.NewDecoder(f)
		dec.KnownFields(true)
		if err := dec.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
			return Suite{}, fmt.Errorf("load scenarios: %w", err)
		}
	default:
		return Suite{}, fmt.Errorf("load scenarios: unsupported file type %q", ext)
	}

	if len(raw.Cases) == 0 {
		return Suite{}, fmt.Errorf("load scenarios: %s defines no cases", path)
	}
	for i, c := range raw.Cases {
		if err := c.Validate(); err != nil {
			return Suite{}, fmt.Errorf("load scenarios: case %d: %w", i+1, err)
		}
	}
	return Suite{Strict: raw.Strict, Cases: raw.Cases}, nil
}

// Validate checks that the case is runnable.
func (c Case) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("name is required")
	}
	if (c.Request == nil) == (c.RequestHex == nil) {
		return fmt.Errorf("%s: exactly one of request and request_hex is required", c.Name)
	}
	if c.RequestHex != nil {
		if _, err := c.Bytes(); err != nil {
			return fmt.Errorf("%s: %w", c.Name, err)
		}
	}
	expectations := 0
	for _, e := range []*string{c.Ok, c.Err, c.ErrPrefix} {
		if e != nil {
			expectations++
		}
	}
	if expectations != 1 {
		return fmt.Errorf("%s: exactly one of ok, err and err_prefix is required", c.Name)
	}
	return nil
}

// Bytes returns the raw request.
func (c Case) Bytes() ([]byte, error) {
	if c.RequestHex != nil {
		b, err := hex.DecodeString(strings.ReplaceAll(*c.RequestHex, " ", ""))
		if err != nil {
			return nil, fmt.Errorf("request_hex: %w", err)
		}
		return b, nil
	}
	if c.Request != nil {
		return []byte(*c.Request), nil
	}
	return nil, nil
}

// Check compares env with the expectation.
func (c Case) Check(env entities.Envelope) error {
	switch {
	case c.Ok != nil:
		if got, ok := env.Payload(); !ok || got != *c.Ok {
			return fmt.Errorf("%w: want Ok(%q), got %s", ErrMismatch, *c.Ok, env)
		}
	case c.Err != nil:
		if got, ok := env.Message(); !ok || got != *c.Err {
			return fmt.Errorf("%w: want Err(%q), got %s", ErrMismatch, *c.Err, env)
		}
	case c.ErrPrefix != nil:
		if got, ok := env.Message(); !ok || !strings.HasPrefix(got, *c.ErrPrefix) {
			return fmt.Errorf("%w: want Err starting with %q, got %s", ErrMismatch, *c.ErrPrefix, env)
		}
	default:
		return errors.New("case has no expectation")
	}
	return nil
}
