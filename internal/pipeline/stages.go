package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/curiomarket/appraise-cli/internal/domain"
	"github.com/curiomarket/appraise-cli/internal/model"
	"github.com/curiomarket/appraise-cli/internal/resilience"
	"github.com/curiomarket/appraise-cli/internal/schema"
	"github.com/curiomarket/appraise-cli/pkg/vision"
)

// Per-stage generation parameters. Extraction stages run cold; the final
// narrative runs warmer.
var (
	tempTriage     = 0.2
	tempEvidence   = 0.1
	tempCandidates = 0.5
	tempFinal      = 0.7
)

const (
	maxTokensTriage     = 1024
	maxTokensEvidence   = 2048
	maxTokensCandidates = 2048
	maxTokensFinal      = 4096
)

// invokeStage issues one reasoning call for one stage: retries transient
// service failures with backoff, runs through the shared circuit breaker,
// and applies the per-stage timeout. Schema violations are the caller's to
// raise; this returns raw text only.
func (o *Orchestrator) invokeStage(ctx context.Context, stage, system, user string, image vision.Image, modelID string, maxTokens int64, temperature float64) (string, *vision.TokenUsage, error) {
	stageCtx := ctx
	if timeout := o.cfg.Pipeline.StageTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		stageCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	retryCfg := o.retry
	retryCfg.OnRetry = resilience.RetryLogger(stage)

	start := time.Now()
	result, err := resilience.DoVal(stageCtx, retryCfg, func(ctx context.Context) (*vision.Result, error) {
		return resilience.ExecuteVal(ctx, o.breaker, func(ctx context.Context) (*vision.Result, error) {
			return o.client.Analyze(ctx, vision.Request{
				Model:       modelID,
				System:      system,
				Prompt:      user,
				Image:       image,
				MaxTokens:   maxTokens,
				Temperature: &temperature,
			})
		})
	})
	if err != nil {
		return "", nil, eris.Wrapf(err, "stage %s", stage)
	}

	result.Usage.LogCost(result.Model, stage)
	zap.L().Debug("stage call complete",
		zap.String("stage", stage),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		zap.String("stop_reason", result.StopReason),
	)
	return result.Text, &result.Usage, nil
}

// runTriage classifies the object and selects the domain specialization.
// The only stage that runs without prior pipeline state.
func (o *Orchestrator) runTriage(ctx context.Context, req model.AnalysisRequest) (*model.TriageResult, *vision.TokenUsage, error) {
	system, user := triagePrompt()
	raw, usage, err := o.invokeStage(ctx, schema.StageTriage, system, user,
		imageOf(req), o.cfg.Vision.TriageModel, maxTokensTriage, tempTriage)
	if err != nil {
		return nil, nil, err
	}

	triage, err := schema.DecodeTriage(raw)
	if err != nil {
		return nil, usage, err
	}

	// Unknown specialties collapse to general rather than failing the run.
	if !domain.Known(triage.DomainExpert) {
		zap.L().Warn("triage returned unknown specialty, using general",
			zap.String("domain_expert", triage.DomainExpert),
		)
		triage.DomainExpert = "general"
	}

	return triage, usage, nil
}

// runEvidence extracts observable facts. Depends only on triage output; safe
// to run concurrently with candidate generation.
func (o *Orchestrator) runEvidence(ctx context.Context, req model.AnalysisRequest, triage model.TriageResult) (*model.EvidenceReport, *vision.TokenUsage, error) {
	profile := domain.ProfileFor(triage.DomainExpert)
	system, user := evidencePrompt(triage, profile)
	raw, usage, err := o.invokeStage(ctx, schema.StageEvidence, system, user,
		imageOf(req), o.cfg.Vision.AnalysisModel, maxTokensEvidence, tempEvidence)
	if err != nil {
		return nil, nil, err
	}

	report, err := schema.DecodeEvidence(raw)
	if err != nil {
		return nil, usage, err
	}
	return report, usage, nil
}

// runCandidates generates ranked identification hypotheses. Depends only on
// triage output; safe to run concurrently with evidence extraction.
func (o *Orchestrator) runCandidates(ctx context.Context, req model.AnalysisRequest, triage model.TriageResult) (*model.CandidateSet, *vision.TokenUsage, error) {
	profile := domain.ProfileFor(triage.DomainExpert)
	system, user := candidatesPrompt(triage, profile)
	raw, usage, err := o.invokeStage(ctx, schema.StageCandidates, system, user,
		imageOf(req), o.cfg.Vision.AnalysisModel, maxTokensCandidates, tempCandidates)
	if err != nil {
		return nil, nil, err
	}

	set, err := schema.DecodeCandidates(raw)
	if err != nil {
		return nil, usage, err
	}
	return set, usage, nil
}

// runFinal produces the merged identification + authentication report in a
// single call, trading prompt size for round-trip latency and cost.
func (o *Orchestrator) runFinal(ctx context.Context, req model.AnalysisRequest, triage model.TriageResult, evidence model.EvidenceReport, candidates model.CandidateSet) (*schema.FinalOutput, *vision.TokenUsage, error) {
	profile := domain.ProfileFor(triage.DomainExpert)
	system, user := finalPrompt(triage, evidence, candidates, profile)
	raw, usage, err := o.invokeStage(ctx, schema.StageFinal, system, user,
		imageOf(req), o.cfg.Vision.AnalysisModel, maxTokensFinal, tempFinal)
	if err != nil {
		return nil, nil, err
	}

	out, err := schema.DecodeFinal(raw)
	if err != nil {
		return nil, usage, err
	}
	return out, usage, nil
}

func imageOf(req model.AnalysisRequest) vision.Image {
	return vision.Image{MediaType: req.MediaType, Data: req.Image}
}
