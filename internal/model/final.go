package model

import "github.com/curiomarket/appraise-cli/pkg/vision"

// RiskLevel grades counterfeit/authenticity risk.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskVeryHigh RiskLevel = "very_high"
)

// riskOrder maps levels to escalation order.
var riskOrder = map[RiskLevel]int{
	RiskLow:      0,
	RiskMedium:   1,
	RiskHigh:     2,
	RiskVeryHigh: 3,
}

// Rank returns the escalation order of a level (low=0 … very_high=3).
// Unknown levels rank as medium.
func (r RiskLevel) Rank() int {
	if n, ok := riskOrder[r]; ok {
		return n
	}
	return riskOrder[RiskMedium]
}

// Escalate returns the next level up, capped at very_high.
func (r RiskLevel) Escalate() RiskLevel {
	switch r {
	case RiskLow:
		return RiskMedium
	case RiskMedium:
		return RiskHigh
	default:
		return RiskVeryHigh
	}
}

// AuthCheck is one item on the authentication checklist.
type AuthCheck struct {
	Description string `json:"description" validate:"required"`
	Category    string `json:"category"` // e.g. "marks", "materials", "construction", "provenance"
	Priority    string `json:"priority"` // "high", "medium", "low"
}

// ExpertReferral flags when professional authentication is warranted.
type ExpertReferral struct {
	Recommended bool   `json:"recommended"`
	Reason      string `json:"reason"`
}

// AuthenticationAssessment is the authenticity sub-report of a FinalAnalysis.
type AuthenticationAssessment struct {
	Confidence          float64        `json:"confidence" validate:"gte=0,lte=1"`
	RiskLevel           RiskLevel      `json:"risk_level" validate:"required,oneof=low medium high very_high"`
	Checks              []AuthCheck    `json:"checks" validate:"dive"`
	KnownFakeIndicators []string       `json:"known_fake_indicators"`
	RequestedPhotos     []string       `json:"requested_photos"`
	ExpertReferral      ExpertReferral `json:"expert_referral"`
	Summary             string         `json:"summary"`
}

// DealRating buckets an asking price against the estimated value range.
type DealRating string

const (
	DealExceptional DealRating = "exceptional"
	DealGood        DealRating = "good"
	DealFair        DealRating = "fair"
	DealOverpriced  DealRating = "overpriced"
)

// DealAssessment compares the asking price with the value-range midpoint.
// Profit bounds are signed; negative values signal a likely loss and must
// never be clamped.
type DealAssessment struct {
	Rating              DealRating `json:"rating"`
	PercentOfMarket     float64    `json:"percent_of_market"`
	Explanation         string     `json:"explanation"`
	ProfitPotentialLow  int64      `json:"profit_potential_low_cents"`
	ProfitPotentialHigh int64      `json:"profit_potential_high_cents"`
}

// MarketplaceLink is one suggested listing/search destination.
type MarketplaceLink struct {
	Marketplace string `json:"marketplace"`
	URL         string `json:"url"`
}

// FinalAnalysis is the terminal artifact of one pipeline run. Constructed
// once, never mutated afterwards, owned by the caller that receives it.
type FinalAnalysis struct {
	Name                  string                   `json:"name" validate:"required"`
	Maker                 string                   `json:"maker"`
	Era                   string                   `json:"era"`
	Style                 string                   `json:"style"`
	Category              ItemCategory             `json:"category"`
	EstimatedValueLow     int64                    `json:"estimated_value_low_cents" validate:"gte=0"`
	EstimatedValueHigh    int64                    `json:"estimated_value_high_cents" validate:"gte=0"`
	Confidence            float64                  `json:"confidence" validate:"gte=0,lte=1"`
	Evidence              []string                 `json:"evidence"`
	AlternativeCandidates []Candidate              `json:"alternative_candidates"`
	VerificationTips      []string                 `json:"verification_tips"`
	RedFlags              []string                 `json:"red_flags"`
	ResaleGuidance        string                   `json:"resale_guidance"`
	Authentication        AuthenticationAssessment `json:"authentication"`
	Deal                  *DealAssessment          `json:"deal,omitempty"`
	Links                 []MarketplaceLink        `json:"marketplace_links,omitempty"`
	Usage                 vision.TokenUsage        `json:"token_usage"`
	EstimatedCostUSD      float64                  `json:"estimated_cost_usd"`
}
