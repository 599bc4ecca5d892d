// Package pipeline turns one photographed object into a validated
// identification report by orchestrating staged calls to the reasoning
// service.
package pipeline

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/curiomarket/appraise-cli/internal/config"
	"github.com/curiomarket/appraise-cli/internal/domain"
	"github.com/curiomarket/appraise-cli/internal/model"
	"github.com/curiomarket/appraise-cli/internal/resilience"
	"github.com/curiomarket/appraise-cli/internal/schema"
	"github.com/curiomarket/appraise-cli/pkg/vision"
)

// State is the orchestrator's position in the pipeline.
type State string

const (
	StateIdle       State = "idle"
	StateTriaging   State = "triaging"
	StateExtracting State = "extracting" // evidence ∥ candidates
	StateFinalizing State = "finalizing"
	StateComplete   State = "complete"
	StateFailed     State = "failed"
)

// eventBuffer bounds the Stream channel. Non-terminal events are dropped
// rather than blocking the pipeline when the subscriber lags.
const eventBuffer = 16

// Orchestrator drives one analysis request through the stage graph:
// triage → {evidence ∥ candidates} → final → derived calculators.
// One instance per request; never shared across concurrent requests.
type Orchestrator struct {
	cfg     *config.Config
	client  vision.Client
	breaker *resilience.CircuitBreaker
	retry   resilience.RetryConfig

	mu    sync.Mutex
	state State
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithBreaker shares a circuit breaker across orchestrator instances. The
// breaker guards the shared reasoning-service transport, so servers should
// pass the same breaker to every request's orchestrator.
func WithBreaker(cb *resilience.CircuitBreaker) Option {
	return func(o *Orchestrator) {
		o.breaker = cb
	}
}

// New creates an Orchestrator for a single request. The vision client is
// injected, never global, so tests substitute doubles and each request's
// calls are independently cancellable.
func New(cfg *config.Config, client vision.Client, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		cfg:    cfg,
		client: client,
		retry: resilience.RetryConfig{
			MaxAttempts:    cfg.Retry.MaxAttempts,
			InitialBackoff: time.Duration(cfg.Retry.InitialBackoffMs) * time.Millisecond,
			MaxBackoff:     time.Duration(cfg.Retry.MaxBackoffMs) * time.Millisecond,
			Multiplier:     cfg.Retry.Multiplier,
			JitterFraction: cfg.Retry.JitterFraction,
		},
		state: StateIdle,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.breaker == nil {
		o.breaker = resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			FailureThreshold: cfg.Circuit.FailureThreshold,
			ResetTimeout:     time.Duration(cfg.Circuit.ResetTimeoutSecs) * time.Second,
		})
	}
	return o
}

// State returns the orchestrator's current pipeline state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
}

// Run executes the pipeline synchronously, returning the final analysis or a
// typed error. For callers that don't need streaming.
func (o *Orchestrator) Run(ctx context.Context, req model.AnalysisRequest) (*model.FinalAnalysis, error) {
	return o.run(ctx, req, func(model.ProgressEvent) {})
}

// Stream executes the pipeline and returns an ordered event channel. The
// stream ends with exactly one terminal event carrying the final analysis or
// an error descriptor, after which the channel is closed. Intermediate
// events are dropped when the subscriber cannot keep up; the terminal event
// is always delivered (or abandoned only if ctx ends).
func (o *Orchestrator) Stream(ctx context.Context, req model.AnalysisRequest) <-chan model.ProgressEvent {
	events := make(chan model.ProgressEvent, eventBuffer)

	emit := func(e model.ProgressEvent) {
		if e.Terminal() {
			select {
			case events <- e:
			case <-ctx.Done():
			}
			return
		}
		select {
		case events <- e:
		default:
		}
	}

	go func() {
		defer close(events)
		_, _ = o.run(ctx, req, emit)
	}()

	return events
}

// run is the single pipeline implementation behind Run and Stream. It emits
// every progress event, including exactly one terminal event, via emit.
func (o *Orchestrator) run(ctx context.Context, req model.AnalysisRequest, emit func(model.ProgressEvent)) (*model.FinalAnalysis, error) {
	log := zap.L().With(
		zap.String("request_id", req.ID.String()),
		zap.String("caller_id", req.CallerID),
		zap.Int("prompt_version", PromptVersion()),
	)

	fail := func(stage string, err error) (*model.FinalAnalysis, error) {
		pe := failStage(stage, err)
		o.setState(StateFailed)
		log.Error("pipeline failed",
			zap.String("stage", pe.Stage),
			zap.String("kind", ErrorKind(pe)),
			zap.Error(pe),
		)
		emit(model.ProgressEvent{
			Type:    model.EventFailed,
			Stage:   pe.Stage,
			Message: "analysis failed",
			Percent: 100,
			Error:   pe.Error(),
		})
		return nil, pe
	}

	if err := req.Validate(o.cfg.Pipeline.MaxImageBytes); err != nil {
		return fail("input", err)
	}

	if timeout := o.cfg.Pipeline.OverallTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	var totalUsage vision.TokenUsage

	// ===== Triage (blocking) =====
	o.setState(StateTriaging)
	emit(model.ProgressEvent{
		Type:    model.EventStageStarted,
		Stage:   schema.StageTriage,
		Message: "classifying the object",
		Percent: 5,
	})

	triage, usage, err := o.runTriage(ctx, req)
	if usage != nil {
		totalUsage.Add(*usage)
	}
	if err != nil {
		return fail(schema.StageTriage, err)
	}

	log.Info("triage complete",
		zap.String("category", string(triage.Category)),
		zap.String("domain_expert", triage.DomainExpert),
		zap.String("item_type", triage.ItemType),
		zap.Float64("confidence", triage.Confidence),
	)
	emit(model.ProgressEvent{
		Type:    model.EventStageComplete,
		Stage:   schema.StageTriage,
		Message: "identified as " + triage.ItemType,
		Percent: 25,
	})

	// ===== Evidence ∥ Candidates =====
	// Both branches read only the immutable triage output and write only
	// their own slot. The first fatal error cancels the sibling through the
	// group context; a failure of either branch fails the whole pipeline.
	o.setState(StateExtracting)
	emit(model.ProgressEvent{
		Type:    model.EventStageStarted,
		Stage:   schema.StageEvidence,
		Message: "extracting observable evidence",
		Percent: 30,
	})
	emit(model.ProgressEvent{
		Type:    model.EventStageStarted,
		Stage:   schema.StageCandidates,
		Message: "generating identification hypotheses",
		Percent: 30,
	})

	var (
		evidence   *model.EvidenceReport
		candidates *model.CandidateSet
		usageMu    sync.Mutex
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		report, u, evErr := o.runEvidence(gCtx, req, *triage)
		usageMu.Lock()
		if u != nil {
			totalUsage.Add(*u)
		}
		usageMu.Unlock()
		if evErr != nil {
			return failStage(schema.StageEvidence, evErr)
		}
		evidence = report
		emit(model.ProgressEvent{
			Type:    model.EventStageComplete,
			Stage:   schema.StageEvidence,
			Message: "evidence extracted",
			Percent: 50,
		})
		return nil
	})

	g.Go(func() error {
		set, u, candErr := o.runCandidates(gCtx, req, *triage)
		usageMu.Lock()
		if u != nil {
			totalUsage.Add(*u)
		}
		usageMu.Unlock()
		if candErr != nil {
			return failStage(schema.StageCandidates, candErr)
		}
		candidates = set
		emit(model.ProgressEvent{
			Type:    model.EventStageComplete,
			Stage:   schema.StageCandidates,
			Message: "hypotheses ranked",
			Percent: 60,
		})
		return nil
	})

	if err := g.Wait(); err != nil {
		return fail(StateExtracting.String(), err)
	}

	// ===== Combined final analysis =====
	o.setState(StateFinalizing)
	emit(model.ProgressEvent{
		Type:    model.EventStageStarted,
		Stage:   schema.StageFinal,
		Message: "writing the final report",
		Percent: 75,
	})

	finalOut, usage, err := o.runFinal(ctx, req, *triage, *evidence, *candidates)
	if usage != nil {
		totalUsage.Add(*usage)
	}
	if err != nil {
		return fail(schema.StageFinal, err)
	}

	// ===== Derived calculators (pure, local) =====
	result := o.assemble(req, *triage, *evidence, *candidates, *finalOut, totalUsage)

	o.setState(StateComplete)
	log.Info("pipeline complete",
		zap.String("name", result.Name),
		zap.Float64("confidence", result.Confidence),
		zap.String("risk_level", string(result.Authentication.RiskLevel)),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		zap.Int64("input_tokens", totalUsage.InputTokens),
		zap.Int64("output_tokens", totalUsage.OutputTokens),
	)
	emit(model.ProgressEvent{
		Type:    model.EventComplete,
		Message: "analysis complete",
		Percent: 100,
		Result:  result,
	})
	return result, nil
}

// assemble merges the validated final stage output with the derived
// calculators into the terminal artifact.
func (o *Orchestrator) assemble(req model.AnalysisRequest, triage model.TriageResult, evidence model.EvidenceReport, candidates model.CandidateSet, out schema.FinalOutput, usage vision.TokenUsage) *model.FinalAnalysis {
	baseRisk := domain.BaseRiskFor(triage.DomainExpert)
	calibrated := CalibrateRisk(baseRisk, candidates.Top(), evidence, o.cfg.Pipeline.LuxuryValueThreshold)

	auth := out.Authentication
	// The calibrator floors the model's own judgment; risk never drops below
	// the deterministic level.
	if calibrated.Rank() > auth.RiskLevel.Rank() {
		auth.RiskLevel = calibrated
	}

	var alternatives []model.Candidate
	for _, c := range candidates.Candidates {
		if c.Rank > 1 {
			alternatives = append(alternatives, c)
		}
	}

	return &model.FinalAnalysis{
		Name:                  out.Name,
		Maker:                 out.Maker,
		Era:                   out.Era,
		Style:                 out.Style,
		Category:              triage.Category,
		EstimatedValueLow:     out.EstimatedValueLow,
		EstimatedValueHigh:    out.EstimatedValueHigh,
		Confidence:            out.Confidence,
		Evidence:              out.Evidence,
		AlternativeCandidates: alternatives,
		VerificationTips:      out.VerificationTips,
		RedFlags:              out.RedFlags,
		ResaleGuidance:        out.ResaleGuidance,
		Authentication:        auth,
		Deal:                  RateDeal(req.AskingPriceCents, out.EstimatedValueLow, out.EstimatedValueHigh),
		Links:                 BuildMarketplaceLinks(out.Name, out.Maker, triage.Category),
		Usage:                 usage,
		EstimatedCostUSD:      usage.EstimateCost(o.cfg.Vision.AnalysisModel),
	}
}

func (s State) String() string {
	return string(s)
}
