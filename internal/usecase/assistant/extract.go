package assistant

import (
	"encoding/json"
	"errors"
	"strings"
)

var errNoLiteral = errors.New("no JSON literal found in response")

// ExtractArray returns the span from the first '[' to the last ']' in text.
// The match is greedy: prose containing brackets before or after the literal,
// or several literals in one response, widen the span and usually make it fail
// strict decoding. It reports false when either bracket is missing or the last
// ']' precedes the first '['.
func ExtractArray(text string) (string, bool) {
	return extractSpan(text, "[", "]")
}

// ExtractObject is ExtractArray for '{' ... '}'.
func ExtractObject(text string) (string, bool) {
	return extractSpan(text, "{", "}")
}

func extractSpan(text, open, close string) (string, bool) {
	start := strings.Index(text, open)
	end := strings.LastIndex(text, close)
	if start == -1 || end == -1 || end < start {
		return "", false
	}
	return text[start : end+1], true
}

func decodeArray[T any](text string) ([]T, error) {
	span, ok := ExtractArray(text)
	if !ok {
		return nil, errNoLiteral
	}
	out := []T{}
	if err := json.Unmarshal([]byte(span), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func decodeObject[T any](text string) (T, error) {
	var out T
	span, ok := ExtractObject(text)
	if !ok {
		return out, errNoLiteral
	}
	if err := json.Unmarshal([]byte(span), &out); err != nil {
		return out, err
	}
	return out, nil
}
