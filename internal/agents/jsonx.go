package agents

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractJSON pulls the JSON object out of a model response, tolerating
// markdown code fences and surrounding prose.
func ExtractJSON(raw string) (string, error) {
	s := strings.TrimSpace(raw)

	if idx := strings.Index(s, "```json"); idx >= 0 {
		s = s[idx+len("```json"):]
		if end := strings.Index(s, "```"); end >= 0 {
			s = s[:end]
		}
	} else if idx := strings.Index(s, "```"); idx >= 0 {
		s = s[idx+3:]
		if end := strings.Index(s, "```"); end >= 0 {
			s = s[:end]
		}
	}

	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return "", fmt.Errorf("no JSON object in response")
	}
	var closer byte = '}'
	if s[start] == '[' {
		closer = ']'
	}
	end := strings.LastIndexByte(s, closer)
	if end <= start {
		return "", fmt.Errorf("unterminated JSON in response")
	}
	return strings.TrimSpace(s[start : end+1]), nil
}

// ParseJSONResponse extracts and decodes a model response into out.
func ParseJSONResponse(raw string, out interface{}) error {
	payload, err := ExtractJSON(raw)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(payload), out); err != nil {
		return fmt.Errorf("malformed JSON in response: %w", err)
	}
	return nil
}
