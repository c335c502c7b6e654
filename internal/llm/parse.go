package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"tutor-bot/internal/util"
)

// decodeObject strips fences and decodes raw into v, falling back to the
// first balanced JSON object when the reply carries prose around it.
func decodeObject(raw string, v any) error {
	txt := util.StripCodeFences(strings.TrimSpace(raw))
	if txt == "" {
		return errors.New("empty response")
	}
	firstErr := json.Unmarshal([]byte(txt), v)
	if firstErr == nil {
		return nil
	}
	if obj := util.FirstJSONObject(txt); obj != "" {
		if err := json.Unmarshal([]byte(obj), v); err == nil {
			return nil
		}
	}
	return fmt.Errorf("bad JSON: %w", firstErr)
}

// ParseGoal decodes a goal-extraction reply of the form {"goal": "..."}.
func ParseGoal(raw string) (string, error) {
	var out struct {
		Goal string `json:"goal"`
	}
	if err := decodeObject(raw, &out); err != nil {
		return "", err
	}
	goal := strings.TrimSpace(out.Goal)
	if goal == "" {
		return "", errors.New("goal is empty")
	}
	return goal, nil
}

// ParseAssessment decodes and validates an assessment reply. A label
// outside the closed vocabulary is a contract violation and comes back as
// an error, never as a coerced neighbor.
func ParseAssessment(raw string) (Assessment, error) {
	var out Assessment
	if err := decodeObject(raw, &out); err != nil {
		return Assessment{}, err
	}
	if !out.CognitiveState.IsValid() {
		return Assessment{}, fmt.Errorf("cognitiveState %q is outside the label vocabulary", out.CognitiveState)
	}
	return out, nil
}
