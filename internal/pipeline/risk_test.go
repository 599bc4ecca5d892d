package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/curiomarket/appraise-cli/internal/model"
)

const luxuryThreshold = int64(500_000)

func plainCandidate() *model.Candidate {
	return &model.Candidate{
		Rank:  1,
		Label: "oak side table",
		Maker: "unknown",
		ValueEstimate: model.ValueEstimate{
			LowCents:  5000,
			HighCents: 20000,
		},
	}
}

func TestCalibrateRisk_NoSignalsKeepsBase(t *testing.T) {
	got := CalibrateRisk(model.RiskLow, plainCandidate(), model.EvidenceReport{}, luxuryThreshold)
	assert.Equal(t, model.RiskLow, got)
}

func TestCalibrateRisk_LuxuryBrandEscalates(t *testing.T) {
	c := plainCandidate()
	c.Maker = "Rolex"
	got := CalibrateRisk(model.RiskHigh, c, model.EvidenceReport{}, luxuryThreshold)
	assert.Equal(t, model.RiskVeryHigh, got)
}

func TestCalibrateRisk_BrandMatchIsCaseInsensitive(t *testing.T) {
	c := plainCandidate()
	c.Maker = "TIFFANY & Co."
	got := CalibrateRisk(model.RiskLow, c, model.EvidenceReport{}, luxuryThreshold)
	assert.Equal(t, model.RiskMedium, got)
}

func TestCalibrateRisk_HighValueEscalates(t *testing.T) {
	c := plainCandidate()
	c.ValueEstimate.HighCents = luxuryThreshold
	got := CalibrateRisk(model.RiskMedium, c, model.EvidenceReport{}, luxuryThreshold)
	assert.Equal(t, model.RiskHigh, got)
}

func TestCalibrateRisk_RedFlagEscalatesFurther(t *testing.T) {
	c := plainCandidate()
	c.Maker = "Cartier"
	ev := model.EvidenceReport{RedFlags: []string{"mark font inconsistent with period"}}
	// low → medium (brand) → high (red flag)
	got := CalibrateRisk(model.RiskLow, c, ev, luxuryThreshold)
	assert.Equal(t, model.RiskHigh, got)
}

func TestCalibrateRisk_CappedAtVeryHigh(t *testing.T) {
	c := plainCandidate()
	c.Maker = "Patek Philippe"
	ev := model.EvidenceReport{RedFlags: []string{"suspect engraving"}}
	got := CalibrateRisk(model.RiskVeryHigh, c, ev, luxuryThreshold)
	assert.Equal(t, model.RiskVeryHigh, got)
}

func TestCalibrateRisk_Monotonic(t *testing.T) {
	levels := []model.RiskLevel{model.RiskLow, model.RiskMedium, model.RiskHigh, model.RiskVeryHigh}
	candidates := []*model.Candidate{nil, plainCandidate()}
	luxury := plainCandidate()
	luxury.Maker = "Omega"
	candidates = append(candidates, luxury)

	evidences := []model.EvidenceReport{
		{},
		{RedFlags: []string{"glued joint on a dovetailed piece"}},
	}

	for _, base := range levels {
		for _, c := range candidates {
			for _, ev := range evidences {
				got := CalibrateRisk(base, c, ev, luxuryThreshold)
				assert.GreaterOrEqual(t, got.Rank(), base.Rank(),
					"base %s candidate %+v redflags %d", base, c, len(ev.RedFlags))
			}
		}
	}
}

func TestCalibrateRisk_AddingSignalNeverDecreases(t *testing.T) {
	c := plainCandidate()
	without := CalibrateRisk(model.RiskMedium, c, model.EvidenceReport{}, luxuryThreshold)

	flagged := model.EvidenceReport{RedFlags: []string{"artificial aging"}}
	with := CalibrateRisk(model.RiskMedium, c, flagged, luxuryThreshold)
	assert.GreaterOrEqual(t, with.Rank(), without.Rank())

	pricey := plainCandidate()
	pricey.ValueEstimate.HighCents = luxuryThreshold * 2
	withValue := CalibrateRisk(model.RiskMedium, pricey, model.EvidenceReport{}, luxuryThreshold)
	assert.GreaterOrEqual(t, withValue.Rank(), without.Rank())
}

func TestCalibrateRisk_Deterministic(t *testing.T) {
	c := plainCandidate()
	c.Maker = "Hermès"
	ev := model.EvidenceReport{RedFlags: []string{"machine stitching"}}
	first := CalibrateRisk(model.RiskLow, c, ev, luxuryThreshold)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, CalibrateRisk(model.RiskLow, c, ev, luxuryThreshold))
	}
}

func TestCalibrateRisk_NilCandidate(t *testing.T) {
	got := CalibrateRisk(model.RiskMedium, nil, model.EvidenceReport{}, luxuryThreshold)
	assert.Equal(t, model.RiskMedium, got)
}
