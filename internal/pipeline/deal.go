package pipeline

import (
	"fmt"

	"github.com/curiomarket/appraise-cli/internal/model"
)

// RateDeal compares an asking price against the estimated value range.
// Returns nil when no asking price is given or the range midpoint is not
// positive (deal assessment is optional by nature; insufficient inputs
// degrade to absence, not error). Profit bounds keep their sign: a negative
// bound tells the caller the ask exceeds the estimated value.
func RateDeal(askingCents *int64, lowCents, highCents int64) *model.DealAssessment {
	if askingCents == nil {
		return nil
	}

	midpoint := float64(lowCents+highCents) / 2
	if midpoint <= 0 {
		return nil
	}

	asking := *askingCents
	percent := float64(asking) / midpoint * 100

	var rating model.DealRating
	switch {
	case percent <= 50:
		rating = model.DealExceptional
	case percent <= 80:
		rating = model.DealGood
	case percent <= 120:
		rating = model.DealFair
	default:
		rating = model.DealOverpriced
	}

	return &model.DealAssessment{
		Rating:              rating,
		PercentOfMarket:     percent,
		Explanation:         explainDeal(rating, percent),
		ProfitPotentialLow:  lowCents - asking,
		ProfitPotentialHigh: highCents - asking,
	}
}

func explainDeal(rating model.DealRating, percent float64) string {
	switch rating {
	case model.DealExceptional:
		return fmt.Sprintf("Asking price is %.0f%% of the estimated market midpoint, well below market.", percent)
	case model.DealGood:
		return fmt.Sprintf("Asking price is %.0f%% of the estimated market midpoint, below market.", percent)
	case model.DealFair:
		return fmt.Sprintf("Asking price is %.0f%% of the estimated market midpoint, around market value.", percent)
	default:
		return fmt.Sprintf("Asking price is %.0f%% of the estimated market midpoint, above market value.", percent)
	}
}
