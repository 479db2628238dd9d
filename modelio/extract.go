package modelio

import (
	"encoding/json"
	"fmt"
	"strings"
)

// MalformedOutputError reports that model output did not contain a parseable
// JSON object. Snippet holds a truncated prefix of the original text for
// diagnostics.
type MalformedOutputError struct {
	Snippet string
}

func (e *MalformedOutputError) Error() string {
	return fmt.Sprintf("could not extract JSON from model output: %s", e.Snippet)
}

const malformedSnippetLimit = 200

// ExtractJSON recovers a single JSON object from raw model text. The text may
// be a bare object, an object wrapped in a fenced code block with an optional
// language tag, or an object surrounded by prose. It returns the fully parsed
// object or a MalformedOutputError; it never returns a partial result.
func ExtractJSON(text string) (map[string]interface{}, error) {
	var obj map[string]interface{}

	if err := json.Unmarshal([]byte(stripFences(text)), &obj); err == nil {
		return obj, nil
	}

	// Fall back to the greedy brace span in the original text.
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start != -1 && end > start {
		if err := json.Unmarshal([]byte(text[start:end+1]), &obj); err == nil {
			return obj, nil
		}
	}

	snippet := text
	if r := []rune(snippet); len(r) > malformedSnippetLimit {
		snippet = string(r[:malformedSnippetLimit])
	}
	return nil, &MalformedOutputError{Snippet: snippet}
}

// stripFences removes a leading fence marker (with optional language tag) and
// a trailing fence marker.
func stripFences(text string) string {
	s := strings.TrimSpace(text)
	if strings.HasPrefix(s, "```") {
		s = s[3:]
		// Drop the language tag up to the end of the fence line.
		if nl := strings.IndexByte(s, '\n'); nl != -1 && !strings.ContainsAny(s[:nl], "{}") {
			s = s[nl+1:]
		}
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
