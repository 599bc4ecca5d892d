package main

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/curiomarket/appraise-cli/internal/model"
	"github.com/curiomarket/appraise-cli/internal/pipeline"
	"github.com/curiomarket/appraise-cli/internal/resilience"
	"github.com/curiomarket/appraise-cli/pkg/vision"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the analysis HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if cfg.Vision.Key == "" {
			return eris.New("vision.key is not configured (set APPRAISE_VISION_KEY)")
		}
		client := vision.NewClient(cfg.Vision.Key,
			vision.WithRateLimit(cfg.Vision.RateLimitRPS, cfg.Vision.RateBurst))

		// One breaker for the shared transport; one orchestrator per request.
		breaker := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			FailureThreshold: cfg.Circuit.FailureThreshold,
			ResetTimeout:     cfg.Circuit.ResetTimeout(),
		})

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
		}))

		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
		})

		r.Post("/v1/analyze", func(w http.ResponseWriter, req *http.Request) {
			handleAnalyze(w, req, client, breaker)
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// analyzeRequest is the wire shape of POST /v1/analyze.
type analyzeRequest struct {
	// Image is a data URI ("data:image/jpeg;base64,...") or bare base64.
	Image            string `json:"image"`
	MediaType        string `json:"media_type,omitempty"`
	AskingPriceCents *int64 `json:"asking_price_cents,omitempty"`
	CallerID         string `json:"caller_id,omitempty"`
}

func handleAnalyze(w http.ResponseWriter, httpReq *http.Request, client vision.Client, breaker *resilience.CircuitBreaker) {
	var (
		image     []byte
		mediaType string
		body      analyzeRequest
	)

	if strings.HasPrefix(httpReq.Header.Get("Content-Type"), "multipart/form-data") {
		var err error
		image, mediaType, err = readMultipartImage(httpReq)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
			return
		}
		if v := httpReq.FormValue("asking_price_cents"); v != "" {
			cents, parseErr := strconv.ParseInt(v, 10, 64)
			if parseErr != nil {
				writeError(w, http.StatusBadRequest, "invalid_input", "asking_price_cents must be an integer")
				return
			}
			body.AskingPriceCents = &cents
		}
		body.CallerID = httpReq.FormValue("caller_id")
	} else {
		if err := json.NewDecoder(httpReq.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_input", "invalid request body")
			return
		}
		var err error
		image, mediaType, err = decodeImagePayload(body.Image)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
			return
		}
		if mediaType == "" {
			mediaType = body.MediaType
		}
	}

	req := model.NewAnalysisRequest(image, mediaType, body.AskingPriceCents)
	req.CallerID = body.CallerID

	orch := pipeline.New(cfg, client, pipeline.WithBreaker(breaker))

	if httpReq.URL.Query().Get("stream") == "false" {
		result, runErr := orch.Run(httpReq.Context(), req)
		if runErr != nil {
			writeError(w, statusOf(runErr), pipeline.ErrorKind(runErr), runErr.Error())
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(result)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "internal", "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for ev := range orch.Stream(httpReq.Context(), req) {
		payload, marshalErr := json.Marshal(ev)
		if marshalErr != nil {
			continue
		}
		fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, payload)
		flusher.Flush()
	}
}

// maxMultipartMemory bounds the in-memory parse buffer; larger parts spill
// to temp files.
const maxMultipartMemory = 32 << 20

// readMultipartImage pulls the "image" file part from a multipart form.
func readMultipartImage(req *http.Request) ([]byte, string, error) {
	if err := req.ParseMultipartForm(maxMultipartMemory); err != nil {
		return nil, "", eris.Wrap(err, "parse multipart form")
	}
	file, header, err := req.FormFile("image")
	if err != nil {
		return nil, "", eris.New(`multipart form needs an "image" file part`)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, "", eris.Wrap(err, "read image part")
	}
	return raw, header.Header.Get("Content-Type"), nil
}

// decodeImagePayload accepts a data URI or bare base64 and returns raw bytes
// plus the declared media type, if any.
func decodeImagePayload(payload string) ([]byte, string, error) {
	if payload == "" {
		return nil, "", eris.New("image is required")
	}

	mediaType := ""
	if strings.HasPrefix(payload, "data:") {
		comma := strings.Index(payload, ",")
		if comma < 0 {
			return nil, "", eris.New("malformed data URI")
		}
		meta := payload[len("data:"):comma]
		mediaType = strings.TrimSuffix(meta, ";base64")
		payload = payload[comma+1:]
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", eris.Wrap(err, "decode image base64")
	}
	return raw, mediaType, nil
}

func statusOf(err error) int {
	switch pipeline.ErrorKind(err) {
	case "invalid_input":
		return http.StatusBadRequest
	case "service_unavailable":
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, status int, kind, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"error":  kind,
		"detail": message,
	})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
