package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Number is a float64 that decodes leniently from client JSON: numeric
// strings are parsed, null, empty and unparseable values become 0 and
// booleans become 1 or 0.
type Number float64

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		*n = 0
		return nil
	}
	switch b[0] {
	case 'n':
		*n = 0
	case 't':
		*n = 1
	case 'f':
		*n = 0
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*n = Number(parseLenient(s))
	case '{', '[':
		return fmt.Errorf("number expected, got %s", kindOf(b[0]))
	default:
		f, err := strconv.ParseFloat(string(b), 64)
		if err != nil {
			return fmt.Errorf("invalid number %q: %w", b, err)
		}
		*n = Number(finite(f))
	}
	return nil
}

// Float returns the value as a float64.
func (n Number) Float() float64 { return float64(n) }

func parseLenient(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return finite(f)
}

func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// Flag is a bool that also accepts strings and numbers. Strings are parsed
// with strconv.ParseBool and otherwise count as set when non-empty.
type Flag bool

// UnmarshalJSON implements json.Unmarshaler.
func (f *Flag) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		*f = false
		return nil
	}
	switch b[0] {
	case 'n', 'f':
		*f = false
	case 't':
		*f = true
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if v, err := strconv.ParseBool(s); err == nil {
			*f = Flag(v)
			return nil
		}
		*f = s != ""
	case '{', '[':
		return fmt.Errorf("boolean expected, got %s", kindOf(b[0]))
	default:
		v, err := strconv.ParseFloat(string(b), 64)
		if err != nil {
			return fmt.Errorf("invalid boolean %q: %w", b, err)
		}
		*f = v != 0
	}
	return nil
}

// Text is a string that also accepts JSON numbers and booleans, so a phone
// number sent as 9876543210 is kept as "9876543210".
type Text string

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		*t = ""
		return nil
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(s)
	case 'n':
		*t = ""
	case '{', '[':
		return fmt.Errorf("string expected, got %s", kindOf(b[0]))
	default:
		*t = Text(b)
	}
	return nil
}

// Trimmed returns the value with surrounding whitespace removed.
func (t Text) Trimmed() string { return strings.TrimSpace(string(t)) }

func kindOf(c byte) string {
	if c == '{' {
		return "object"
	}
	return "array"
}
