package model

// ConditionGrade is the extracted physical condition of the item.
type ConditionGrade string

const (
	ConditionMint      ConditionGrade = "mint"
	ConditionExcellent ConditionGrade = "excellent"
	ConditionGood      ConditionGrade = "good"
	ConditionFair      ConditionGrade = "fair"
	ConditionPoor      ConditionGrade = "poor"
)

// TextReading is one piece of visible text observed on the item.
type TextReading struct {
	Text       string  `json:"text" validate:"required"`
	Location   string  `json:"location"`
	Category   string  `json:"category"` // e.g. "maker_mark", "serial", "label", "signature"
	Confidence float64 `json:"confidence" validate:"gte=0,lte=1"`
}

// EvidenceReport holds everything observable on the image: extracted facts
// only, no identification. Read-only input to the final analysis.
type EvidenceReport struct {
	TextReadings        []TextReading  `json:"text_readings" validate:"dive"`
	MakerMarks          []string       `json:"maker_marks"`
	Materials           []string       `json:"materials"`
	Techniques          []string       `json:"techniques"`
	ConditionGrade      ConditionGrade `json:"condition_grade" validate:"required,oneof=mint excellent good fair poor"`
	ConditionIssues     []string       `json:"condition_issues"`
	DistinctiveFeatures []string       `json:"distinctive_features"`
	RedFlags            []string       `json:"red_flags"`
}
