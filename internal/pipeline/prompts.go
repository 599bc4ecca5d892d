package pipeline

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/curiomarket/appraise-cli/internal/domain"
	"github.com/curiomarket/appraise-cli/internal/model"
)

//go:embed prompts.yaml
var promptsYAML []byte

type stageTemplate struct {
	System string `yaml:"system"`
	User   string `yaml:"user"`
}

type promptFile struct {
	Version     int                      `yaml:"version"`
	Calibration string                   `yaml:"calibration"`
	Stages      map[string]stageTemplate `yaml:"stages"`
}

var prompts promptFile

func init() {
	if err := yaml.Unmarshal(promptsYAML, &prompts); err != nil {
		panic("pipeline: bad prompts.yaml: " + err.Error())
	}
	for _, name := range []string{"triage", "evidence", "candidates", "final"} {
		if t, ok := prompts.Stages[name]; !ok || t.System == "" || t.User == "" {
			panic("pipeline: prompts.yaml missing stage " + name)
		}
	}
}

// PromptVersion returns the instruction-template version in use, for log
// correlation when prompts evolve.
func PromptVersion() int {
	return prompts.Version
}

func triagePrompt() (system, user string) {
	t := prompts.Stages["triage"]
	return t.System, fmt.Sprintf(t.User, prompts.Calibration)
}

func evidencePrompt(triage model.TriageResult, profile domain.InstructionProfile) (system, user string) {
	t := prompts.Stages["evidence"]
	user = fmt.Sprintf(t.User,
		triage.ItemType,
		triage.Category,
		triage.QualityTier,
		profile.PromptSection(),
		prompts.Calibration,
	)
	return t.System, user
}

func candidatesPrompt(triage model.TriageResult, profile domain.InstructionProfile) (system, user string) {
	t := prompts.Stages["candidates"]
	visible := triage.VisibleText
	if visible == "" {
		visible = "(none)"
	}
	user = fmt.Sprintf(t.User,
		triage.ItemType,
		triage.Category,
		triage.QualityTier,
		visible,
		profile.PromptSection(),
		prompts.Calibration,
	)
	return t.System, user
}

func finalPrompt(triage model.TriageResult, evidence model.EvidenceReport, candidates model.CandidateSet, profile domain.InstructionProfile) (system, user string) {
	t := prompts.Stages["final"]

	// Stage outputs already passed schema validation; marshaling them back
	// cannot fail.
	triageJSON, _ := json.Marshal(triage)
	evidenceJSON, _ := json.Marshal(evidence)
	candidatesJSON, _ := json.Marshal(candidates)

	user = fmt.Sprintf(t.User,
		string(triageJSON),
		string(evidenceJSON),
		string(candidatesJSON),
		profile.PromptSection(),
		prompts.Calibration,
	)
	return t.System, user
}
