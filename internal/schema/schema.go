// Package schema is the single chokepoint between raw model output and the
// typed stage results. Every stage's text passes through here before the
// orchestrator accepts it.
package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// snippetLen caps the raw-output excerpt carried by a Violation.
const snippetLen = 200

// Violation reports stage output that failed structural or range validation.
// Not retried automatically: a malformed response is likely to recur, so it
// escalates to the caller instead of looping.
type Violation struct {
	Stage   string
	Snippet string
	Err     error
}

func (v *Violation) Error() string {
	return fmt.Sprintf("schema violation in stage %q: %v", v.Stage, v.Err)
}

func (v *Violation) Unwrap() error {
	return v.Err
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// decode strips incidental formatting, parses rawText as JSON into out, and
// runs struct-tag validation. Returns a *Violation on any failure.
func decode(stage, rawText string, out any) error {
	cleaned := CleanJSON(rawText)
	if err := json.Unmarshal([]byte(cleaned), out); err != nil {
		return violation(stage, rawText, err)
	}
	if err := validate.Struct(out); err != nil {
		return violation(stage, rawText, err)
	}
	return nil
}

func violation(stage, rawText string, err error) *Violation {
	snippet := strings.TrimSpace(rawText)
	if len(snippet) > snippetLen {
		snippet = snippet[:snippetLen]
	}
	return &Violation{Stage: stage, Snippet: snippet, Err: err}
}

// CleanJSON extracts a JSON object from text that may carry markdown code
// fences or surrounding prose.
func CleanJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	return strings.TrimSpace(text)
}
