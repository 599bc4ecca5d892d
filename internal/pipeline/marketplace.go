package pipeline

import (
	"net/url"
	"strings"

	"github.com/samber/lo"

	"github.com/curiomarket/appraise-cli/internal/model"
)

// marketplace is one search destination with a URL builder.
type marketplace struct {
	name  string
	build func(query string) string
}

var antiqueMarketplaces = []marketplace{
	{"1stDibs", func(q string) string {
		return "https://www.1stdibs.com/search/?q=" + url.QueryEscape(q)
	}},
	{"Ruby Lane", func(q string) string {
		return "https://www.rubylane.com/search?q=" + url.QueryEscape(q)
	}},
	{"eBay", func(q string) string {
		return "https://www.ebay.com/sch/i.html?_nkw=" + url.QueryEscape(q)
	}},
}

var modernMarketplaces = []marketplace{
	{"eBay", func(q string) string {
		return "https://www.ebay.com/sch/i.html?_nkw=" + url.QueryEscape(q)
	}},
	{"Amazon", func(q string) string {
		return "https://www.amazon.com/s?k=" + url.QueryEscape(q)
	}},
	{"Google Shopping", func(q string) string {
		return "https://www.google.com/search?tbm=shop&q=" + url.QueryEscape(q)
	}},
}

// BuildMarketplaceLinks constructs category-aware search links from the
// identification. Deterministic string building only; no network call.
// Antique and vintage items route to antiques marketplaces, modern items to
// general retail.
func BuildMarketplaceLinks(name, maker string, category model.ItemCategory) []model.MarketplaceLink {
	query := strings.TrimSpace(strings.TrimSpace(maker) + " " + strings.TrimSpace(name))
	if query == "" {
		return nil
	}

	markets := modernMarketplaces
	if category == model.CategoryAntique || category == model.CategoryVintage {
		markets = antiqueMarketplaces
	}

	return lo.Map(markets, func(m marketplace, _ int) model.MarketplaceLink {
		return model.MarketplaceLink{
			Marketplace: m.name,
			URL:         m.build(query),
		}
	})
}
