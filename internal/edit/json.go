package edit

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var jsonBlockRegex = regexp.MustCompile("```(?:json)?\\s*")

// removes markdown code fences from the response
func cleanJSONResponse(s string) string {
	s = strings.TrimSpace(s)
	s = jsonBlockRegex.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// strips a fence wrapped around a whole plain-text answer
func cleanTextResponse(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") && strings.HasSuffix(s, "```") && len(s) >= 6 {
		s = strings.TrimSuffix(s, "```")
		s = strings.TrimPrefix(s, "```")
		if nl := strings.IndexByte(s, '\n'); nl >= 0 && !strings.ContainsAny(s[:nl], " \t") {
			s = s[nl+1:] // language tag
		}
	}
	return strings.TrimSpace(s)
}

// extractJSONObject returns the first JSON object in text, skipping any
// prose before it.
func extractJSONObject(text string) (map[string]any, error) {
	for i := 0; i < len(text); i++ {
		if text[i] != '{' {
			continue
		}
		var obj map[string]any
		if err := json.NewDecoder(strings.NewReader(text[i:])).Decode(&obj); err == nil {
			return obj, nil
		}
	}
	return nil, fmt.Errorf("no JSON object found in response: %s", truncateString(text, 1200))
}

// unwrapNested follows up to three levels of an object whose response,
// output or text field holds the real JSON object as a string.
func unwrapNested(obj map[string]any) map[string]any {
	cur := obj
	for range 3 {
		var nested string
		for _, key := range []string{"response", "output", "text"} {
			if s, ok := cur[key].(string); ok && s != "" {
				nested = strings.TrimSpace(s)
				break
			}
		}
		if !strings.HasPrefix(nested, "{") {
			break
		}
		next, err := extractJSONObject(nested)
		if err != nil {
			break
		}
		cur = next
	}
	return cur
}

// truncates a string to maxLen characters
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
