// Package jsonutil decodes JSON payloads out of LLM response text. Model
// output frequently wraps the JSON in markdown code fences or surrounds it
// with prose, so decoding is a three step affair: strip fences, locate the
// JSON object or array, unmarshal and validate into the target type.
package jsonutil

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Kind classifies a decode failure so callers can distinguish a response
// with no JSON at all from one that is malformed or schema-incomplete.
type Kind int

const (
	// KindNoJSON means the response text contains no JSON object or array.
	KindNoJSON Kind = iota
	// KindMalformed means JSON was found but failed to unmarshal.
	KindMalformed
	// KindSchema means the JSON unmarshalled but is missing required fields.
	KindSchema
)

func (k Kind) String() string {
	switch k {
	case KindNoJSON:
		return "no-json"
	case KindMalformed:
		return "malformed"
	case KindSchema:
		return "schema"
	}
	return "unknown"
}

// DecodeError is the failure variant of a decode: it carries the failure
// class, the underlying cause, and a truncated preview of the offending text.
type DecodeError struct {
	Kind    Kind
	Err     error
	Preview string
}

func (e *DecodeError) Error() string {
	if e.Preview != "" {
		return fmt.Sprintf("%s: %v (text: %s)", e.Kind, e.Err, e.Preview)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// validate holds the shared validator instance used for schema checks.
var validate = validator.New(validator.WithRequiredStructEnabled())

// StripFences removes ```json ... ``` or ``` ... ``` wrapping from text.
// Returns the content between the fences, or the original text unchanged
// when no opening fence is present.
func StripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	lines := strings.Split(text, "\n")
	if len(lines) < 3 {
		return text
	}

	end := len(lines) - 1
	for i := len(lines) - 1; i >= 1; i-- {
		if strings.TrimSpace(lines[i]) == "```" {
			end = i
			break
		}
	}

	return strings.Join(lines[1:end], "\n")
}

// extract returns the first JSON object or array embedded in text, matching
// the earliest opening delimiter with the last corresponding closer.
func extract(text string) (string, error) {
	text = strings.TrimSpace(text)

	objIdx := strings.Index(text, "{")
	arrIdx := strings.Index(text, "[")
	if objIdx == -1 && arrIdx == -1 {
		return "", fmt.Errorf("no JSON object or array found")
	}

	start, closer := objIdx, "}"
	if objIdx == -1 || (arrIdx != -1 && arrIdx < objIdx) {
		start, closer = arrIdx, "]"
	}

	text = text[start:]
	end := strings.LastIndex(text, closer)
	if end == -1 {
		return "", fmt.Errorf("no closing %s found", closer)
	}

	return text[:end+1], nil
}

// Decode strips fences from raw LLM response text, extracts the embedded
// JSON, and unmarshals it into T. Failures are returned as *DecodeError.
func Decode[T any](raw string) (T, error) {
	var zero T

	text := StripFences(raw)
	jsonStr, err := extract(text)
	if err != nil {
		return zero, &DecodeError{Kind: KindNoJSON, Err: err, Preview: preview(raw)}
	}

	var result T
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return zero, &DecodeError{Kind: KindMalformed, Err: err, Preview: preview(jsonStr)}
	}
	return result, nil
}

// DecodeValid decodes as Decode does, then checks the result against the
// target type's validate struct tags. A decoded value that is missing
// required fields comes back as a KindSchema failure.
func DecodeValid[T any](raw string) (T, error) {
	result, err := Decode[T](raw)
	if err != nil {
		return result, err
	}

	if err := validate.Struct(result); err != nil {
		var zero T
		return zero, &DecodeError{Kind: KindSchema, Err: err}
	}
	return result, nil
}

// ValidSlice checks every element of a decoded slice against its validate
// struct tags. Slices need their own entry point because validator.Struct
// rejects non-struct top-level values.
func ValidSlice[T any](items []T) error {
	for i, item := range items {
		if err := validate.Struct(item); err != nil {
			return &DecodeError{Kind: KindSchema, Err: fmt.Errorf("item %d: %w", i, err)}
		}
	}
	return nil
}

// preview truncates s for inclusion in error text.
func preview(s string) string {
	const max = 200
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
