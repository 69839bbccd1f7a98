package pipeline

import "simforge/internal/extract"

// Verdict is the terminal review stage's output: named numeric scores plus
// the model's own pass flag. Approval is computed separately by the caller's
// ApprovalRule; the model's flag is recorded, not trusted.
type Verdict struct {
	Scores          map[string]float64 `json:"scores"`
	Average         float64            `json:"average_score"`
	Pass            bool               `json:"pass"`
	Strengths       []string           `json:"strengths,omitempty"`
	RequiredChanges []string           `json:"required_changes,omitempty"`
	ReturnTo        string             `json:"return_to,omitempty"`
}

// ApprovalRule decides approval from the verdict scores alone. Pure function,
// unit-testable without any network involvement.
type ApprovalRule func(scores map[string]float64) bool

// Default approval thresholds: every criterion at least 3, mean at least 4.
const (
	DefaultScoreFloor = 3.0
	DefaultScoreBar   = 4.0
)

// MinimumScores returns the rule "every score >= floor and mean >= bar".
// An empty scores map never approves.
func MinimumScores(floor, bar float64) ApprovalRule {
	return func(scores map[string]float64) bool {
		if len(scores) == 0 {
			return false
		}
		var sum float64
		for _, score := range scores {
			if score < floor {
				return false
			}
			sum += score
		}
		return sum/float64(len(scores)) >= bar
	}
}

// VerdictFromPayload builds a Verdict from the review stage's structured
// payload, defaulting every missing field. A nil or non-structured payload
// yields an empty failing verdict.
func VerdictFromPayload(p *extract.Payload) *Verdict {
	v := &Verdict{Scores: map[string]float64{}}
	if p == nil || p.Kind != extract.KindStructured {
		return v
	}
	obj := p.Object

	if scores, ok := obj["scores"].(map[string]any); ok {
		for name, raw := range scores {
			if n, ok := raw.(float64); ok {
				v.Scores[name] = n
			}
		}
	}
	if len(v.Scores) > 0 {
		var sum float64
		for _, s := range v.Scores {
			sum += s
		}
		v.Average = sum / float64(len(v.Scores))
	}
	if pass, ok := obj["pass"].(bool); ok {
		v.Pass = pass
	}
	v.Strengths = stringSlice(obj["strengths"])
	v.RequiredChanges = stringSlice(obj["required_changes"])
	v.ReturnTo = stringField(obj, "return_to", "")
	return v
}

func stringSlice(raw any) []string {
	items, ok := raw.([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
