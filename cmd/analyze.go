package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/curiomarket/appraise-cli/internal/model"
	"github.com/curiomarket/appraise-cli/internal/pipeline"
	"github.com/curiomarket/appraise-cli/pkg/vision"
)

var (
	analyzeAskingPrice int64
	analyzeStub        bool
	analyzeQuiet       bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <image-path>",
	Short: "Analyze a single photograph and print the appraisal report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		image, err := os.ReadFile(args[0])
		if err != nil {
			return eris.Wrap(err, "read image")
		}

		var askingPrice *int64
		if cmd.Flags().Changed("asking-price") {
			askingPrice = &analyzeAskingPrice
		}

		req := model.NewAnalysisRequest(image, "", askingPrice)

		var client vision.Client
		if analyzeStub {
			client = &pipeline.StubVisionClient{}
		} else {
			if cfg.Vision.Key == "" {
				return eris.New("vision.key is not configured (set APPRAISE_VISION_KEY)")
			}
			client = vision.NewClient(cfg.Vision.Key,
				vision.WithRateLimit(cfg.Vision.RateLimitRPS, cfg.Vision.RateBurst))
		}

		orch := pipeline.New(cfg, client)

		events := orch.Stream(ctx, req)
		var result *model.FinalAnalysis
		for ev := range events {
			switch ev.Type {
			case model.EventComplete:
				result = ev.Result
			case model.EventFailed:
				return eris.New(ev.Error)
			default:
				if !analyzeQuiet {
					fmt.Fprintf(os.Stderr, "[%3d%%] %s\n", ev.Percent, ev.Message)
				}
			}
		}
		if result == nil {
			return eris.New("analysis ended without a result")
		}

		zap.L().Info("analysis complete",
			zap.String("request_id", req.ID.String()),
			zap.String("name", result.Name),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	analyzeCmd.Flags().Int64Var(&analyzeAskingPrice, "asking-price", 0, "asking price in cents; enables deal rating")
	analyzeCmd.Flags().BoolVar(&analyzeStub, "stub", false, "use canned responses instead of the reasoning service")
	analyzeCmd.Flags().BoolVar(&analyzeQuiet, "quiet", false, "suppress progress output")
	rootCmd.AddCommand(analyzeCmd)
}
