// Package gate validates raw request bytes before they reach domain logic.
//
// The gate is a linear state machine with no retries:
//
//	RawBytes --utf-8--> DecodedText --json--> Parsed
//	    |                    |
//	    v                    v
//	EncodingError         JSONError
//
// Only Parsed proceeds to domain logic. Partial results are never surfaced.
package gate

import (
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/reglet-dev/jsonffi/domain/entities"
	domainerrors "github.com/reglet-dev/jsonffi/domain/errors"
)

// State is a terminal state of the gate.
type State int

const (
	// StateParsed means the request is valid UTF-8 and a single JSON value.
	StateParsed State = iota
	// StateEncodingError means the bytes are not valid UTF-8.
	StateEncodingError
	// StateJSONError means the text is not a single valid JSON value.
	StateJSONError
)

func (s State) String() string {
	switch s {
	case StateParsed:
		return "parsed"
	case StateEncodingError:
		return "encoding_error"
	case StateJSONError:
		return "json_error"
	default:
		return "unknown"
	}
}

// Decode runs raw through the gate. On success it returns the parsed
// request; otherwise the error is an *errors.EncodingError or an
// *errors.JSONError. raw is not retained.
func Decode(raw []byte) (entities.ParsedRequest, error) {
	if err := CheckUTF8(raw); err != nil {
		return entities.ParsedRequest{}, err
	}

	value, err := parseJSON(raw)
	if err != nil {
		return entities.ParsedRequest{}, &domainerrors.JSONError{Err: err}
	}

	text := make(json.RawMessage, len(raw))
	copy(text, raw)

	return entities.ParsedRequest{Value: value, Raw: text}, nil
}

// Classify reports the terminal state reached by raw.
func Classify(raw []byte) State {
	_, err := Decode(raw)
	var encErr *domainerrors.EncodingError
	var jsonErr *domainerrors.JSONError
	switch {
	case err == nil:
		return StateParsed
	case errors.As(err, &encErr):
		return StateEncodingError
	case errors.As(err, &jsonErr):
		return StateJSONError
	default:
		return StateJSONError
	}
}

// CheckUTF8 returns an *errors.EncodingError describing the first invalid
// sequence in raw, or nil when raw is valid UTF-8. Length is the number of
// bytes forming the longest valid prefix of the broken sequence (1 to 3).
// Incomplete is set when the input ends inside an otherwise valid sequence.
func CheckUTF8(raw []byte) error {
	if utf8.Valid(raw) {
		return nil
	}

	for i := 0; i < len(raw); {
		r, size := utf8.DecodeRune(raw[i:])
		if r != utf8.RuneError || size > 1 {
			i += size
			continue
		}
		length, incomplete := invalidSequence(raw[i:])
		return &domainerrors.EncodingError{
			Offset:     i,
			Length:     length,
			Incomplete: incomplete,
		}
	}

	// Unreachable when utf8.Valid reported false.
	return &domainerrors.EncodingError{Offset: len(raw), Length: 0}
}

// invalidSequence measures the broken sequence at the start of b.
func invalidSequence(b []byte) (length int, incomplete bool) {
	width, lo, hi := leadByte(b[0])
	if width == 0 {
		return 1, false
	}

	for k := 1; k < width; k++ {
		if k >= len(b) {
			return 0, true
		}
		if b[k] < lo || b[k] > hi {
			return k, false
		}
		lo, hi = 0x80, 0xBF
	}

	// A complete well-formed sequence is not reported by DecodeRune.
	return width, false
}

// leadByte returns the sequence width announced by c and the accepted
// range of the byte that follows it. Width 0 means c cannot start a
// sequence.
func leadByte(c byte) (width int, lo, hi byte) {
	switch {
	case c >= 0xC2 && c <= 0xDF:
		return 2, 0x80, 0xBF
	case c == 0xE0:
		return 3, 0xA0, 0xBF
	case c == 0xED:
		return 3, 0x80, 0x9F
	case c >= 0xE1 && c <= 0xEF:
		return 3, 0x80, 0xBF
	case c == 0xF0:
		return 4, 0x90, 0xBF
	case c >= 0xF1 && c <= 0xF3:
		return 4, 0x80, 0xBF
	case c == 0xF4:
		return 4, 0x80, 0x8F
	default:
		return 0, 0, 0
	}
}

// parseJSON decodes exactly one JSON value. Trailing non-whitespace data,
// empty input and unpaired surrogate escapes are errors.
func parseJSON(text []byte) (any, error) {
	var value any
	if err := json.Unmarshal(text, &value); err != nil {
		return nil, err
	}
	if err := checkSurrogates(text); err != nil {
		return nil, err
	}
	return value, nil
}

// SurrogateError reports a \u escape naming half of a UTF-16 surrogate
// pair without the other half. encoding/json on its own replaces it
// with U+FFFD.
type SurrogateError struct {
	Offset   int
	Trailing bool
}

func (e *SurrogateError) Error() string {
	kind := "leading"
	if e.Trailing {
		kind = "trailing"
	}
	return fmt.Sprintf("lone %s surrogate in hex escape at offset %d", kind, e.Offset)
}

// checkSurrogates scans text, already known to be valid JSON, for
// unpaired surrogate escapes. Backslashes only occur inside strings.
func checkSurrogates(text []byte) error {
	for i := 0; i < len(text); i++ {
		if text[i] != '\\' {
			continue
		}
		if text[i+1] != 'u' {
			i++
			continue
		}

		cp := hexEscape(text[i+2 : i+6])
		switch {
		case cp >= 0xDC00 && cp <= 0xDFFF:
			return &SurrogateError{Offset: i, Trailing: true}
		case cp >= 0xD800 && cp <= 0xDBFF:
			next := i + 6
			if next+6 > len(text) || text[next] != '\\' || text[next+1] != 'u' {
				return &SurrogateError{Offset: i}
			}
			if low := hexEscape(text[next+2 : next+6]); low < 0xDC00 || low > 0xDFFF {
				return &SurrogateError{Offset: i}
			}
			i = next + 5
		default:
			i += 5
		}
	}
	return nil
}

func hexEscape(h []byte) rune {
	var r rune
	for _, c := range h {
		r <<= 4
		switch {
		case c >= '0' && c <= '9':
			r |= rune(c - '0')
		case c >= 'a' && c <= 'f':
			r |= rune(c - 'a' + 10)
		case c >= 'A' && c <= 'F':
			r |= rune(c - 'A' + 10)
		}
	}
	return r
}
