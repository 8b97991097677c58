// Command phonaid is the entry point for the Phonaid pronunciation-feedback
// service.
//
// Two modes:
//
//   - Default: start up, expose Prometheus metrics, and wait for shutdown.
//   - One-shot: with -audio/-target/-lang, analyze a single recording from
//     the command line and print the scored result as JSON.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	anyllmlib "github.com/mozilla-ai/any-llm-go"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/phonaid/phonaid/internal/analysis"
	"github.com/phonaid/phonaid/internal/app"
	"github.com/phonaid/phonaid/internal/attempt"
	"github.com/phonaid/phonaid/internal/config"
	"github.com/phonaid/phonaid/internal/ipa"
	"github.com/phonaid/phonaid/internal/observe"
	"github.com/phonaid/phonaid/internal/prompt"
	"github.com/phonaid/phonaid/internal/resilience"
	"github.com/phonaid/phonaid/internal/score"
	"github.com/phonaid/phonaid/internal/store/memstore"
	pgstore "github.com/phonaid/phonaid/internal/store/postgres"
	"github.com/phonaid/phonaid/pkg/blob"
	"github.com/phonaid/phonaid/pkg/provider/asr"
	asropenai "github.com/phonaid/phonaid/pkg/provider/asr/openai"
	asrwhisper "github.com/phonaid/phonaid/pkg/provider/asr/whisper"
	"github.com/phonaid/phonaid/pkg/provider/llm"
	"github.com/phonaid/phonaid/pkg/provider/llm/anyllm"
	llmopenai "github.com/phonaid/phonaid/pkg/provider/llm/openai"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	audioPath := flag.String("audio", "", "one-shot mode: path to a WAV recording to analyze")
	target := flag.String("target", "", "one-shot mode: the target word or phrase")
	lang := flag.String("lang", "en", "one-shot mode: BCP-47 primary language subtag")
	deep := flag.Bool("deep", false, "one-shot mode: also run the deep-analysis critique")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "phonaid: config file %q not found\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "phonaid: %v\n", err)
		}
		return 1
	}

	logger := newLogger(cfg.Server.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownOtel, err := observe.InitProvider(ctx, observe.ProviderConfig{ServiceName: "phonaid"})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := shutdownOtel(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()

	service, cleanup, err := buildService(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialise application", "err", err)
		return 1
	}
	defer cleanup()

	if *audioPath != "" {
		return runOneShot(ctx, service, *audioPath, *target, *lang, *deep)
	}

	if cfg.Server.MetricsAddr != "" {
		go serveMetrics(cfg.Server.MetricsAddr)
	}

	slog.Info("phonaid ready", "metrics_addr", cfg.Server.MetricsAddr)
	<-ctx.Done()
	slog.Info("shutdown signal received, stopping")
	return 0
}

// buildService wires providers, stores, and the pipeline from config.
func buildService(ctx context.Context, cfg *config.Config) (*app.Service, func(), error) {
	cleanup := func() {}

	blobs, err := blob.NewFSStore(cfg.Storage.BlobDir)
	if err != nil {
		return nil, cleanup, err
	}

	var attempts attempt.Store
	var templates prompt.Store
	if dsn := cfg.Storage.PostgresDSN; dsn != "" {
		pool, err := pgxpool.New(ctx, dsn)
		if err != nil {
			return nil, cleanup, fmt.Errorf("connect to postgres: %w", err)
		}
		cleanup = pool.Close
		pg := pgstore.New(pool)
		if err := pg.Migrate(ctx); err != nil {
			pool.Close()
			return nil, func() {}, err
		}
		attempts = pg
		templates = pg
	} else {
		mem := memstore.New()
		attempts = mem
		templates = mem
	}

	recognizer, err := buildRecognizer(cfg)
	if err != nil {
		return nil, cleanup, err
	}

	llmProvider, err := buildLLM(cfg)
	if err != nil {
		return nil, cleanup, err
	}

	resolver, err := buildResolver(cfg, llmProvider, templates)
	if err != nil {
		return nil, cleanup, err
	}

	classifierOpts := []score.Option{}
	if cfg.Scoring.GoodThreshold != 0 {
		classifierOpts = append(classifierOpts, score.WithGoodThreshold(cfg.Scoring.GoodThreshold))
	}
	if cfg.Scoring.AcceptableThreshold != 0 {
		classifierOpts = append(classifierOpts, score.WithAcceptableThreshold(cfg.Scoring.AcceptableThreshold))
	}
	classifier := score.NewClassifier(classifierOpts...)

	orchestratorOpts := []attempt.Option{}
	if cfg.Timeouts.ASR > 0 {
		orchestratorOpts = append(orchestratorOpts, attempt.WithASRTimeout(cfg.Timeouts.ASR))
	}
	if total := cfg.Timeouts.Lexicon + cfg.Timeouts.Generative; total > 0 {
		orchestratorOpts = append(orchestratorOpts, attempt.WithIPATimeout(total))
	}
	orchestrator := attempt.NewOrchestrator(blobs, recognizer, resolver, classifier, attempts, orchestratorOpts...)

	var analysisService *analysis.Service
	if llmProvider != nil {
		reconcilerOpts := []analysis.ReconcilerOption{}
		if cfg.Scoring.HighConfidenceThreshold != 0 {
			reconcilerOpts = append(reconcilerOpts, analysis.WithHighConfidenceThreshold(cfg.Scoring.HighConfidenceThreshold))
		}
		serviceOpts := []analysis.ServiceOption{}
		if cfg.Timeouts.Analysis > 0 {
			serviceOpts = append(serviceOpts, analysis.WithAnalysisTimeout(cfg.Timeouts.Analysis))
		}
		analysisService = analysis.NewService(
			analysis.NewCritic(llmProvider, templates),
			analysis.NewReconciler(reconcilerOpts...),
			attempts,
			blobs,
			serviceOpts...,
		)
	}

	return app.New(orchestrator, attempts, analysisService), cleanup, nil
}

// buildRecognizer creates the primary ASR backend and wraps it with
// failover when fallbacks are configured.
func buildRecognizer(cfg *config.Config) (asr.Recognizer, error) {
	primary, err := makeRecognizer(cfg.Providers.ASR)
	if err != nil {
		return nil, err
	}
	if len(cfg.Providers.ASRFallbacks) == 0 {
		return primary, nil
	}

	group := resilience.NewASRFallback(primary, cfg.Providers.ASR.Name, resilience.FallbackConfig{})
	for _, entry := range cfg.Providers.ASRFallbacks {
		fb, err := makeRecognizer(entry)
		if err != nil {
			return nil, err
		}
		group.AddFallback(entry.Name, fb)
	}
	return group, nil
}

func makeRecognizer(entry config.ProviderEntry) (asr.Recognizer, error) {
	switch entry.Name {
	case "whisper":
		return asrwhisper.New(entry.ModelPath)
	case "openai":
		var opts []asropenai.Option
		if entry.BaseURL != "" {
			opts = append(opts, asropenai.WithBaseURL(entry.BaseURL))
		}
		return asropenai.New(entry.APIKey, entry.Model, opts...)
	default:
		return nil, fmt.Errorf("unsupported asr provider %q; supported: whisper, openai", entry.Name)
	}
}

// buildLLM creates the completion backend, or returns nil when none is
// configured. The generative IPA fallback and deep analysis then stay off.
func buildLLM(cfg *config.Config) (llm.Provider, error) {
	if cfg.Providers.LLM.Name == "" {
		return nil, nil
	}
	primary, err := makeLLM(cfg.Providers.LLM)
	if err != nil {
		return nil, err
	}
	if len(cfg.Providers.LLMFallbacks) == 0 {
		return primary, nil
	}

	group := resilience.NewLLMFallback(primary, cfg.Providers.LLM.Name, resilience.FallbackConfig{})
	for _, entry := range cfg.Providers.LLMFallbacks {
		fb, err := makeLLM(entry)
		if err != nil {
			return nil, err
		}
		group.AddFallback(entry.Name, fb)
	}
	return group, nil
}

func makeLLM(entry config.ProviderEntry) (llm.Provider, error) {
	// The native OpenAI provider carries audio input for the critique path;
	// every other backend goes through any-llm-go and is text-only.
	if entry.Name == "openai" {
		var opts []llmopenai.Option
		if entry.BaseURL != "" {
			opts = append(opts, llmopenai.WithBaseURL(entry.BaseURL))
		}
		return llmopenai.New(entry.APIKey, entry.Model, opts...)
	}

	var opts []anyllmlib.Option
	if entry.APIKey != "" {
		opts = append(opts, anyllmlib.WithAPIKey(entry.APIKey))
	}
	if entry.BaseURL != "" {
		opts = append(opts, anyllmlib.WithBaseURL(entry.BaseURL))
	}
	return anyllm.New(entry.Name, entry.Model, opts...)
}

// buildResolver assembles the IPA source chain: lexicon first, generative
// fallback second.
func buildResolver(cfg *config.Config, llmProvider llm.Provider, templates prompt.Store) (*ipa.Resolver, error) {
	var sources []ipa.Source

	if cfg.Lexicon.BaseURL != "" {
		var opts []ipa.LexiconOption
		if cfg.Timeouts.Lexicon > 0 {
			opts = append(opts, ipa.WithLexiconTimeout(cfg.Timeouts.Lexicon))
		}
		lex, err := ipa.NewLexiconSource(cfg.Lexicon.BaseURL, opts...)
		if err != nil {
			return nil, err
		}
		sources = append(sources, lex)
	}

	if llmProvider != nil {
		sources = append(sources, ipa.NewGenerativeSource(llmProvider, templates))
	}

	return ipa.NewResolver(sources...), nil
}

// runOneShot analyzes a single recording and prints the result as JSON.
func runOneShot(ctx context.Context, service *app.Service, audioPath, target, lang string, deep bool) int {
	if target == "" {
		fmt.Fprintln(os.Stderr, "phonaid: -target is required in one-shot mode")
		return 2
	}

	audio, err := os.ReadFile(audioPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "phonaid: read audio: %v\n", err)
		return 1
	}

	result, err := service.AnalyzeAttempt(ctx, audio, target, lang, "cli", "cli")
	if err != nil {
		fmt.Fprintf(os.Stderr, "phonaid: %v\n", err)
		return 1
	}

	out := map[string]any{"attempt": result}
	if deep {
		enrichment, err := service.RunDeepAnalysis(ctx, result.AttemptID, audio)
		if err != nil {
			fmt.Fprintf(os.Stderr, "phonaid: deep analysis: %v\n", err)
			return 1
		}
		out["enrichment"] = enrichment
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fmt.Fprintf(os.Stderr, "phonaid: encode result: %v\n", err)
		return 1
	}
	return 0
}

// serveMetrics exposes the Prometheus /metrics endpoint.
func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	slog.Info("metrics endpoint listening", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("metrics server error", "err", err)
	}
}

func newLogger(level config.LogLevel) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogDebug:
		lvl = slog.LevelDebug
	case config.LogWarn:
		lvl = slog.LevelWarn
	case config.LogError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
