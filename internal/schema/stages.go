package schema

import (
	"fmt"
	"sort"

	"github.com/curiomarket/appraise-cli/internal/model"
)

// Stage names as carried by Violation and progress events.
const (
	StageTriage     = "triage"
	StageEvidence   = "evidence"
	StageCandidates = "candidates"
	StageFinal      = "final"
)

// DecodeTriage validates the triage stage output.
func DecodeTriage(rawText string) (*model.TriageResult, error) {
	var out model.TriageResult
	if err := decode(StageTriage, rawText, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DecodeEvidence validates the evidence-extraction stage output.
func DecodeEvidence(rawText string) (*model.EvidenceReport, error) {
	var out model.EvidenceReport
	if err := decode(StageEvidence, rawText, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DecodeCandidates validates the candidate-generation stage output and
// enforces contiguous ranks starting at 1. Confidence monotonicity by rank
// is deliberately NOT checked.
func DecodeCandidates(rawText string) (*model.CandidateSet, error) {
	var out model.CandidateSet
	if err := decode(StageCandidates, rawText, &out); err != nil {
		return nil, err
	}

	sort.Slice(out.Candidates, func(i, j int) bool {
		return out.Candidates[i].Rank < out.Candidates[j].Rank
	})
	for i, c := range out.Candidates {
		if c.Rank != i+1 {
			return nil, violation(StageCandidates, rawText,
				fmt.Errorf("ranks must be contiguous from 1, got %d at position %d", c.Rank, i))
		}
		if c.ValueEstimate.HighCents < c.ValueEstimate.LowCents {
			return nil, violation(StageCandidates, rawText,
				fmt.Errorf("candidate %d value range inverted (%d > %d)", c.Rank, c.ValueEstimate.LowCents, c.ValueEstimate.HighCents))
		}
	}
	return &out, nil
}

// FinalOutput is the wire shape of the combined final-analysis stage:
// identification plus the authentication sub-report. Deal assessment,
// marketplace links, and usage are computed locally and never requested
// from the model.
type FinalOutput struct {
	Name               string                         `json:"name" validate:"required"`
	Maker              string                         `json:"maker"`
	Era                string                         `json:"era"`
	Style              string                         `json:"style"`
	EstimatedValueLow  int64                          `json:"estimated_value_low_cents" validate:"gte=0"`
	EstimatedValueHigh int64                          `json:"estimated_value_high_cents" validate:"gte=0"`
	Confidence         float64                        `json:"confidence" validate:"gte=0,lte=1"`
	Evidence           []string                       `json:"evidence"`
	VerificationTips   []string                       `json:"verification_tips"`
	RedFlags           []string                       `json:"red_flags"`
	ResaleGuidance     string                         `json:"resale_guidance"`
	Authentication     model.AuthenticationAssessment `json:"authentication" validate:"required"`
}

// DecodeFinal validates the combined final-analysis stage output.
func DecodeFinal(rawText string) (*FinalOutput, error) {
	var out FinalOutput
	if err := decode(StageFinal, rawText, &out); err != nil {
		return nil, err
	}
	if out.EstimatedValueHigh < out.EstimatedValueLow {
		return nil, violation(StageFinal, rawText,
			fmt.Errorf("value range inverted (%d > %d)", out.EstimatedValueLow, out.EstimatedValueHigh))
	}
	return &out, nil
}
