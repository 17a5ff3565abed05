package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedOutput marks model output that could not be read as JSON.
var ErrMalformedOutput = errors.New("malformed model output")

// ExtractJSON parses the JSON value in a model reply. Code fences are
// stripped first; if the text still does not parse, the slice between the
// first '{' and the last '}' is tried.
func ExtractJSON(content string) (any, error) {
	text := stripFences(content)

	var v any
	err := json.Unmarshal([]byte(text), &v)
	if err == nil {
		return v, nil
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start != -1 && end > start {
		if err = json.Unmarshal([]byte(text[start:end+1]), &v); err == nil {
			return v, nil
		}
	}
	return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
}

func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	// drop the info string (json, JSON, ...)
	if nl := strings.IndexByte(text, '\n'); nl != -1 {
		text = text[nl+1:]
	} else {
		text = strings.TrimPrefix(strings.TrimPrefix(text, "json"), "JSON")
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
