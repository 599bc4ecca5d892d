package pipeline

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/curiomarket/appraise-cli/internal/model"
)

// luxuryBrands are makers with high counterfeit prevalence. Matching any of
// them escalates risk one level regardless of domain baseline.
var luxuryBrands = []string{
	"rolex",
	"omega",
	"patek philippe",
	"audemars piguet",
	"cartier",
	"tiffany",
	"van cleef",
	"bulgari",
	"hermès",
	"hermes",
	"louis vuitton",
	"chanel",
	"gucci",
	"prada",
	"dior",
}

var brandFolder = cases.Fold()

// CalibrateRisk adjusts the baseline counterfeit risk for a domain given the
// top candidate and extracted evidence. Deterministic and monotonic: the
// result never falls below base.
//
// Escalation: one level if the maker matches a luxury brand or the high
// value estimate crosses the luxury threshold; one further level if the
// evidence carries any red flag. Capped at very_high.
func CalibrateRisk(base model.RiskLevel, top *model.Candidate, evidence model.EvidenceReport, luxuryThresholdCents int64) model.RiskLevel {
	risk := base

	if top != nil {
		if isLuxuryBrand(top.Maker) || top.ValueEstimate.HighCents >= luxuryThresholdCents {
			risk = risk.Escalate()
		}
	}

	if len(evidence.RedFlags) > 0 {
		risk = risk.Escalate()
	}

	return risk
}

func isLuxuryBrand(maker string) bool {
	folded := brandFolder.String(strings.TrimSpace(maker))
	if folded == "" {
		return false
	}
	for _, brand := range luxuryBrands {
		if strings.Contains(folded, brand) {
			return true
		}
	}
	return false
}
