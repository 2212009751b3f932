package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/keeperhq/keeper/internal/intent"
	"github.com/keeperhq/keeper/internal/service"
)

// rawClassification mirrors the JSON shape the model is asked for. Params
// values arrive untyped because models sometimes emit numbers.
type rawClassification struct {
	Params       map[string]any `json:"params"`
	Intent       string         `json:"intent"`
	Confirmation string         `json:"confirmation"`
}

// parseClassification extracts a classification from model output,
// tolerating markdown fences and prose around the JSON object.
func parseClassification(content, originalQuery string) (*service.Classification, error) {
	jsonText := extractJSON(content)
	if jsonText == "" {
		return nil, fmt.Errorf("no JSON object in classifier response: %q", truncate(content, 120))
	}

	var raw rawClassification
	if err := json.Unmarshal([]byte(jsonText), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse classifier response: %w", err)
	}

	tag := intent.Tag(strings.TrimSpace(raw.Intent))
	if !tag.Valid() {
		// Unknown tags degrade to chat rather than failing the turn.
		tag = intent.GeneralChat
	}

	params := make(map[string]string, len(raw.Params))
	for k, v := range raw.Params {
		switch value := v.(type) {
		case string:
			params[k] = value
		case float64:
			params[k] = strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", value), "0"), ".")
		case bool:
			params[k] = fmt.Sprintf("%t", value)
		}
	}

	return &service.Classification{
		Intent:        string(tag),
		Params:        params,
		Confirmation:  strings.TrimSpace(raw.Confirmation),
		OriginalQuery: originalQuery,
	}, nil
}

// extractJSON returns the first balanced top-level JSON object in s.
func extractJSON(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")

	start := strings.Index(s, "{")
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
