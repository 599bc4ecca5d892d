package model

// ItemCategory is the coarse classification assigned by triage.
type ItemCategory string

const (
	CategoryAntique       ItemCategory = "antique"
	CategoryVintage       ItemCategory = "vintage"
	CategoryModernBranded ItemCategory = "modern_branded"
	CategoryModernGeneric ItemCategory = "modern_generic"
)

// AllCategories lists every valid item category.
func AllCategories() []ItemCategory {
	return []ItemCategory{
		CategoryAntique,
		CategoryVintage,
		CategoryModernBranded,
		CategoryModernGeneric,
	}
}

// QualityTier is the triage estimate of overall item quality.
type QualityTier string

const (
	TierMuseum  QualityTier = "museum"
	TierHigh    QualityTier = "high"
	TierMid     QualityTier = "mid"
	TierLow     QualityTier = "low"
	TierUnknown QualityTier = "unknown"
)

// TriageResult is the first stage's output. Produced once, consumed by every
// later stage to select its instruction profile, never mutated.
type TriageResult struct {
	Category     ItemCategory `json:"category" validate:"required,oneof=antique vintage modern_branded modern_generic"`
	DomainExpert string       `json:"domain_expert" validate:"required"`
	ItemType     string       `json:"item_type" validate:"required"`
	EstimatedEra *string      `json:"estimated_era"`
	QualityTier  QualityTier  `json:"quality_tier" validate:"required,oneof=museum high mid low unknown"`
	Confidence   float64      `json:"confidence" validate:"gte=0,lte=1"`
	VisibleText  string       `json:"visible_text"`
}
