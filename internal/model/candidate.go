package model

// ValueEstimate is a candidate's market value range in minor currency units.
type ValueEstimate struct {
	LowCents  int64  `json:"low_cents" validate:"gte=0"`
	HighCents int64  `json:"high_cents" validate:"gte=0"`
	Basis     string `json:"basis"`
}

// Candidate is one ranked identification hypothesis.
type Candidate struct {
	Rank            int           `json:"rank" validate:"gte=1,lte=3"`
	Label           string        `json:"label" validate:"required"`
	Maker           string        `json:"maker"`
	Model           string        `json:"model"`
	Period          string        `json:"period"`
	Confidence      float64       `json:"confidence" validate:"gte=0,lte=1"`
	EvidenceFor     []string      `json:"evidence_for"`
	EvidenceAgainst []string      `json:"evidence_against"`
	ValueEstimate   ValueEstimate `json:"value_estimate"`
}

// CandidateSet is the ordered list of hypotheses from candidate generation.
// Ranks are contiguous starting at 1. Rank 1 is the model's best hypothesis;
// confidence is not required to decrease with rank (the model may order by
// plausibility rather than raw confidence).
type CandidateSet struct {
	Candidates []Candidate `json:"candidates" validate:"required,min=1,max=3,dive"`
}

// Top returns the rank-1 candidate, or nil for an empty set.
func (s CandidateSet) Top() *Candidate {
	for i := range s.Candidates {
		if s.Candidates[i].Rank == 1 {
			return &s.Candidates[i]
		}
	}
	return nil
}
