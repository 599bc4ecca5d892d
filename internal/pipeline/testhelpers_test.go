package pipeline

import (
	"github.com/curiomarket/appraise-cli/internal/config"
	"github.com/curiomarket/appraise-cli/internal/model"
)

// pngBytes is a minimal payload carrying the PNG magic so media-type
// sniffing accepts it.
var pngBytes = append([]byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}, make([]byte, 24)...)

func testConfig() *config.Config {
	return &config.Config{
		Vision: config.VisionConfig{
			TriageModel:   "claude-haiku-4-5-20251001",
			AnalysisModel: "claude-sonnet-4-5-20250929",
		},
		Pipeline: config.PipelineConfig{
			MaxImageBytes:        model.DefaultMaxImageBytes,
			StageTimeoutSecs:     5,
			OverallTimeoutSecs:   20,
			LuxuryValueThreshold: 500_000,
		},
		Retry: config.RetryConfig{
			MaxAttempts:      1,
			InitialBackoffMs: 1,
			MaxBackoffMs:     5,
			Multiplier:       2.0,
		},
		Circuit: config.CircuitConfig{
			FailureThreshold: 100,
			ResetTimeoutSecs: 1,
		},
	}
}

func testRequest(askingCents *int64) model.AnalysisRequest {
	return model.NewAnalysisRequest(pngBytes, "", askingCents)
}

func int64Ptr(v int64) *int64 {
	return &v
}
