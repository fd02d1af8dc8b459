// Package structured decodes JSON objects out of free-form model output.
package structured

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrNoJSON is returned when the text contains no JSON object
var ErrNoJSON = errors.New("no JSON object found in response")

// Result is either a parsed value or the raw text that could not be parsed
type Result[T any] struct {
	Value T
	Raw   string
	Err   error
}

// Parsed reports whether Value holds a decoded response
func (r Result[T]) Parsed() bool { return r.Err == nil }

// Degraded reports whether the response had to be kept as raw text
func (r Result[T]) Degraded() bool { return r.Err != nil }

// Decode strips code fences, locates the outermost JSON object and decodes it into T
func Decode[T any](raw string) Result[T] {
	res := Result[T]{Raw: raw}

	body := ExtractObject(StripFences(raw))
	if body == "" {
		res.Err = ErrNoJSON
		return res
	}

	if err := json.Unmarshal([]byte(body), &res.Value); err != nil {
		var zero T
		res.Value = zero
		res.Err = fmt.Errorf("decode response: %w", err)
	}
	return res
}

// StripFences removes a surrounding ``` or ```json code fence
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// Drop the info string (e.g. "json") up to the first newline
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		if info := strings.TrimSpace(s[:nl]); !strings.ContainsAny(info, "{[") {
			s = s[nl+1:]
		}
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// ExtractObject returns the text from the first '{' to the last '}', or ""
func ExtractObject(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return ""
}

// Number is a float that also decodes from numeric strings such as "85" or "85%"
type Number float64

// UnmarshalJSON accepts numbers, numeric strings and null
func (n *Number) UnmarshalJSON(data []byte) error {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch x := v.(type) {
	case nil:
		*n = 0
	case float64:
		*n = Number(x)
	case string:
		s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(x), "%"))
		if s == "" {
			*n = 0
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("number: %w", err)
		}
		*n = Number(f)
	default:
		return fmt.Errorf("number: unexpected JSON %s", string(data))
	}
	return nil
}

// Clamp returns the value limited to [0, 100]
func (n Number) Clamp() float64 {
	f := float64(n)
	if f < 0 {
		return 0
	}
	if f > 100 {
		return 100
	}
	return f
}

// Strings is a list of strings that also decodes from a single string
type Strings []string

// UnmarshalJSON accepts an array of strings, a single string or null
func (s *Strings) UnmarshalJSON(data []byte) error {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch x := v.(type) {
	case nil:
		*s = nil
	case string:
		if strings.TrimSpace(x) == "" {
			*s = nil
		} else {
			*s = Strings{x}
		}
	case []interface{}:
		out := make(Strings, 0, len(x))
		for _, item := range x {
			switch it := item.(type) {
			case string:
				if strings.TrimSpace(it) != "" {
					out = append(out, it)
				}
			case nil:
			default:
				out = append(out, fmt.Sprint(it))
			}
		}
		*s = out
	default:
		return fmt.Errorf("strings: unexpected JSON %s", string(data))
	}
	return nil
}
