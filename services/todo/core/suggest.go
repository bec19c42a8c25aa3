package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

const suggestionPrompt = `
Based on the following task, suggest AI-powered improvements.

Title: %s
Context: %s

Respond ONLY in JSON:
{
  "priority": number (1-5),
  "deadline": "YYYY-MM-DD",
  "tags": ["string"],
  "enhancedDescription": "string",
  "reasoning": "string"
}
`

// QuotaSuggestion is returned instead of an error when the completion
// service is out of quota.
func QuotaSuggestion() Suggestion {
	return Suggestion{
		Priority:            3,
		Deadline:            "N/A",
		Tags:                []string{},
		EnhancedDescription: "Gemini quota exceeded.",
		Reasoning:           "You've exceeded usage limits. Try again later or upgrade plan.",
	}
}

func SuggestionPrompt(title, taskContext string) string {
	return fmt.Sprintf(suggestionPrompt, title, taskContext)
}

// rawSuggestion mirrors Suggestion with pointers so absent keys can be told
// apart from zero values.
type rawSuggestion struct {
	Priority            *float64  `json:"priority"`
	Deadline            *string   `json:"deadline"`
	Tags                *[]string `json:"tags"`
	EnhancedDescription *string   `json:"enhancedDescription"`
	Reasoning           *string   `json:"reasoning"`
}

// ParseSuggestion strips markdown code fences from reply and decodes the
// remaining JSON object. Any decode failure or missing field is reported
// as ErrMalformedResponse.
func ParseSuggestion(reply string) (Suggestion, error) {
	content := strings.TrimSpace(reply)
	content = strings.ReplaceAll(content, "```json", "")
	content = strings.ReplaceAll(content, "```", "")
	content = strings.TrimSpace(content)

	var raw rawSuggestion
	dec := json.NewDecoder(bytes.NewReader([]byte(content)))
	if err := dec.Decode(&raw); err != nil {
		return Suggestion{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if dec.More() {
		return Suggestion{}, fmt.Errorf("%w: trailing data after object", ErrMalformedResponse)
	}

	var missing []string
	if raw.Priority == nil {
		missing = append(missing, "priority")
	}
	if raw.Deadline == nil {
		missing = append(missing, "deadline")
	}
	if raw.Tags == nil {
		missing = append(missing, "tags")
	}
	if raw.EnhancedDescription == nil {
		missing = append(missing, "enhancedDescription")
	}
	if raw.Reasoning == nil {
		missing = append(missing, "reasoning")
	}
	if len(missing) > 0 {
		return Suggestion{}, fmt.Errorf("%w: missing %s", ErrMalformedResponse, strings.Join(missing, ", "))
	}

	return Suggestion{
		Priority:            *raw.Priority,
		Deadline:            *raw.Deadline,
		Tags:                *raw.Tags,
		EnhancedDescription: *raw.EnhancedDescription,
		Reasoning:           *raw.Reasoning,
	}, nil
}
