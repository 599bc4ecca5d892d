package pipeline

import (
	"context"
	"strings"
	"sync"

	"github.com/curiomarket/appraise-cli/pkg/vision"
)

// Compile-time interface check.
var _ vision.Client = (*StubVisionClient)(nil)

// StubVisionClient implements vision.Client with canned stage responses,
// keyed off the system prompt. Used by tests and the analyze --stub dry-run
// mode.
type StubVisionClient struct {
	// Overrides replace the canned response for a stage ("triage",
	// "evidence", "candidates", "final") when set.
	Overrides map[string]string

	// Err, when set, fails every call.
	Err error

	mu    sync.Mutex
	calls []string
}

// Calls returns the stages invoked so far, in call order. Safe for use
// after concurrent stage execution.
func (s *StubVisionClient) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.calls))
	copy(out, s.calls)
	return out
}

const stubTriageJSON = `{"category": "vintage", "domain_expert": "ceramics",
 "item_type": "glazed pottery vase", "estimated_era": "1930s",
 "quality_tier": "mid", "confidence": 0.72, "visible_text": ""}`

const stubEvidenceJSON = `{"text_readings": [{"text": "USA 845", "location": "base",
 "category": "maker_mark", "confidence": 0.8}],
 "maker_marks": ["USA 845"], "materials": ["glazed earthenware"],
 "techniques": ["molded", "hand-glazed"], "condition_grade": "good",
 "condition_issues": ["minor crazing"], "distinctive_features": ["drip glaze"],
 "red_flags": []}`

const stubCandidatesJSON = `{"candidates": [
 {"rank": 1, "label": "American art pottery vase", "maker": "Roseville",
  "model": "", "period": "1930s", "confidence": 0.65,
  "evidence_for": ["glaze style", "USA base mark"], "evidence_against": ["no shape number"],
  "value_estimate": {"low_cents": 8000, "high_cents": 20000, "basis": "recent auction comparables"}},
 {"rank": 2, "label": "Mid-century studio pottery", "maker": "", "model": "",
  "period": "1950s", "confidence": 0.3, "evidence_for": ["drip glaze"],
  "evidence_against": ["molded body"],
  "value_estimate": {"low_cents": 3000, "high_cents": 8000, "basis": "general market"}}]}`

const stubFinalJSON = `{"name": "American art pottery vase", "maker": "Roseville",
 "era": "1930s", "style": "Arts and Crafts",
 "estimated_value_low_cents": 8000, "estimated_value_high_cents": 20000,
 "confidence": 0.68, "evidence": ["USA 845 base mark", "period glaze"],
 "verification_tips": ["compare shape number against Roseville catalogs"],
 "red_flags": [], "resale_guidance": "Sell through an art pottery specialist.",
 "authentication": {"confidence": 0.7, "risk_level": "medium",
  "checks": [{"description": "Verify the base mark font against documented examples",
   "category": "marks", "priority": "high"}],
  "known_fake_indicators": ["overly glossy reproduction glaze"],
  "requested_photos": ["close-up of the base mark"],
  "expert_referral": {"recommended": false, "reason": ""},
  "summary": "Consistent with period production."}}`

// Analyze implements vision.Client.
func (s *StubVisionClient) Analyze(_ context.Context, req vision.Request) (*vision.Result, error) {
	if s.Err != nil {
		return nil, s.Err
	}

	stage := stageOfPrompt(req.System)
	s.mu.Lock()
	s.calls = append(s.calls, stage)
	s.mu.Unlock()

	text := ""
	if s.Overrides != nil {
		text = s.Overrides[stage]
	}
	if text == "" {
		switch stage {
		case "triage":
			text = stubTriageJSON
		case "evidence":
			text = stubEvidenceJSON
		case "candidates":
			text = stubCandidatesJSON
		case "final":
			text = stubFinalJSON
		}
	}

	return &vision.Result{
		Text:       text,
		Model:      req.Model,
		StopReason: "end_turn",
		Usage: vision.TokenUsage{
			InputTokens:  150,
			OutputTokens: 60,
		},
	}, nil
}

func stageOfPrompt(system string) string {
	lower := strings.ToLower(system)
	switch {
	case strings.Contains(lower, "triage"):
		return "triage"
	case strings.Contains(lower, "forensic"):
		return "evidence"
	case strings.Contains(lower, "hypotheses"):
		return "candidates"
	default:
		return "final"
	}
}
