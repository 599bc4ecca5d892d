// Package domain holds the specialist knowledge table: per-category
// vocabulary injected into stage instructions and baseline counterfeit risk.
// The table is data (embedded YAML), so new categories are additive.
package domain

import (
	_ "embed"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/curiomarket/appraise-cli/internal/model"
)

//go:embed profiles.yaml
var profilesYAML []byte

// InstructionProfile supplies stage prompts with domain vocabulary.
type InstructionProfile struct {
	Expert     string
	Vocabulary []string `yaml:"vocabulary"`
	KnownMarks []string `yaml:"known_marks"`
	EraTerms   []string `yaml:"era_terms"`
}

// PromptSection renders the profile as an instruction block for injection
// into a stage template. Empty sections are omitted.
func (p InstructionProfile) PromptSection() string {
	var b strings.Builder
	b.WriteString("Domain specialization: " + p.Expert + "\n")
	if len(p.Vocabulary) > 0 {
		b.WriteString("Relevant terminology: " + strings.Join(p.Vocabulary, ", ") + "\n")
	}
	if len(p.KnownMarks) > 0 {
		b.WriteString("Known makers and marks to check against: " + strings.Join(p.KnownMarks, ", ") + "\n")
	}
	if len(p.EraTerms) > 0 {
		b.WriteString("Era vocabulary: " + strings.Join(p.EraTerms, ", ") + "\n")
	}
	return b.String()
}

type profileEntry struct {
	BaseRisk   string   `yaml:"base_risk"`
	Vocabulary []string `yaml:"vocabulary"`
	KnownMarks []string `yaml:"known_marks"`
	EraTerms   []string `yaml:"era_terms"`
}

type profileFile struct {
	Profiles map[string]profileEntry `yaml:"profiles"`
}

var table map[string]profileEntry

func init() {
	var f profileFile
	if err := yaml.Unmarshal(profilesYAML, &f); err != nil {
		panic("domain: bad profiles.yaml: " + err.Error())
	}
	table = f.Profiles
}

// Experts returns the names of every known specialist.
func Experts() []string {
	out := make([]string, 0, len(table))
	for name := range table {
		out = append(out, name)
	}
	return out
}

// Known reports whether a specialist exists in the table.
func Known(expert string) bool {
	_, ok := table[normalize(expert)]
	return ok
}

// ProfileFor returns the instruction profile for a specialist, falling back
// to the general profile for unknown names.
func ProfileFor(expert string) InstructionProfile {
	name := normalize(expert)
	entry, ok := table[name]
	if !ok {
		name = "general"
		entry = table[name]
	}
	return InstructionProfile{
		Expert:     name,
		Vocabulary: entry.Vocabulary,
		KnownMarks: entry.KnownMarks,
		EraTerms:   entry.EraTerms,
	}
}

// BaseRiskFor returns the baseline counterfeit risk for a specialist,
// defaulting to medium for unknown names or levels.
func BaseRiskFor(expert string) model.RiskLevel {
	entry, ok := table[normalize(expert)]
	if !ok {
		return model.RiskMedium
	}
	switch model.RiskLevel(entry.BaseRisk) {
	case model.RiskLow, model.RiskMedium, model.RiskHigh, model.RiskVeryHigh:
		return model.RiskLevel(entry.BaseRisk)
	default:
		return model.RiskMedium
	}
}

func normalize(expert string) string {
	return strings.ToLower(strings.TrimSpace(expert))
}
