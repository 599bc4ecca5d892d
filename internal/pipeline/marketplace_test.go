package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curiomarket/appraise-cli/internal/model"
)

func TestBuildMarketplaceLinks_AntiqueRouting(t *testing.T) {
	links := BuildMarketplaceLinks("oak dresser", "Stickley", model.CategoryAntique)
	require.Len(t, links, 3)
	assert.Equal(t, "1stDibs", links[0].Marketplace)
	assert.Equal(t, "Ruby Lane", links[1].Marketplace)
	assert.Equal(t, "eBay", links[2].Marketplace)
	assert.Contains(t, links[0].URL, "Stickley+oak+dresser")
}

func TestBuildMarketplaceLinks_VintageUsesAntiqueMarkets(t *testing.T) {
	links := BuildMarketplaceLinks("pottery vase", "", model.CategoryVintage)
	require.Len(t, links, 3)
	assert.Equal(t, "1stDibs", links[0].Marketplace)
}

func TestBuildMarketplaceLinks_ModernRouting(t *testing.T) {
	for _, cat := range []model.ItemCategory{model.CategoryModernBranded, model.CategoryModernGeneric} {
		links := BuildMarketplaceLinks("wireless speaker", "Sony", cat)
		require.Len(t, links, 3)
		assert.Equal(t, "eBay", links[0].Marketplace)
		assert.Equal(t, "Amazon", links[1].Marketplace)
		assert.Equal(t, "Google Shopping", links[2].Marketplace)
	}
}

func TestBuildMarketplaceLinks_QueryEscaped(t *testing.T) {
	links := BuildMarketplaceLinks(`vase & "urn"`, "", model.CategoryAntique)
	require.NotEmpty(t, links)
	for _, l := range links {
		assert.NotContains(t, l.URL, " ")
		assert.NotContains(t, l.URL, `"`)
	}
}

func TestBuildMarketplaceLinks_EmptyIdentification(t *testing.T) {
	assert.Nil(t, BuildMarketplaceLinks("", "   ", model.CategoryAntique))
}

func TestBuildMarketplaceLinks_Deterministic(t *testing.T) {
	first := BuildMarketplaceLinks("clock", "Ansonia", model.CategoryAntique)
	second := BuildMarketplaceLinks("clock", "Ansonia", model.CategoryAntique)
	assert.Equal(t, first, second)
}
