package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// ValidProviderNames lists known provider names per provider kind.
// Used by [Validate] to warn about unrecognised provider names.
var ValidProviderNames = map[string][]string{
	"asr": {"whisper", "openai"},
	"llm": {"openai", "anthropic", "ollama", "gemini", "deepseek", "mistral", "groq", "llamacpp", "llamafile"},
}

// Load reads the YAML configuration file at path and returns a validated
// [Config]. It is a convenience wrapper around [LoadFromReader] and
// [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// Useful in tests where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	// Server
	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	// Provider name validation, warn for unknown names.
	validateProviderName("asr", cfg.Providers.ASR.Name)
	for _, e := range cfg.Providers.ASRFallbacks {
		validateProviderName("asr", e.Name)
	}
	validateProviderName("llm", cfg.Providers.LLM.Name)
	for _, e := range cfg.Providers.LLMFallbacks {
		validateProviderName("llm", e.Name)
	}

	if cfg.Providers.ASR.Name == "" {
		errs = append(errs, errors.New("providers.asr.name is required"))
	}
	if cfg.Providers.ASR.Name == "whisper" && cfg.Providers.ASR.ModelPath == "" {
		errs = append(errs, errors.New("providers.asr.model_path is required for the whisper provider"))
	}
	if cfg.Providers.LLM.Name == "" {
		slog.Warn("no LLM provider configured; generative IPA fallback and deep analysis will be unavailable")
	}

	// Storage
	if cfg.Storage.BlobDir == "" {
		errs = append(errs, errors.New("storage.blob_dir is required"))
	}
	if cfg.Storage.PostgresDSN == "" {
		slog.Warn("storage.postgres_dsn is empty; attempts will be kept in memory and lost on exit")
	}

	// Lexicon
	if cfg.Lexicon.BaseURL == "" {
		slog.Warn("lexicon.base_url is empty; IPA resolution will rely on the generative fallback only")
	}

	// Scoring thresholds
	if cfg.Scoring.GoodThreshold != 0 && (cfg.Scoring.GoodThreshold < 0 || cfg.Scoring.GoodThreshold > 1) {
		errs = append(errs, fmt.Errorf("scoring.good_threshold %.4f is out of range [0, 1]", cfg.Scoring.GoodThreshold))
	}
	if cfg.Scoring.AcceptableThreshold != 0 && (cfg.Scoring.AcceptableThreshold < 0 || cfg.Scoring.AcceptableThreshold > 1) {
		errs = append(errs, fmt.Errorf("scoring.acceptable_threshold %.4f is out of range [0, 1]", cfg.Scoring.AcceptableThreshold))
	}
	if cfg.Scoring.HighConfidenceThreshold != 0 && (cfg.Scoring.HighConfidenceThreshold < 0 || cfg.Scoring.HighConfidenceThreshold > 1) {
		errs = append(errs, fmt.Errorf("scoring.high_confidence_threshold %.4f is out of range [0, 1]", cfg.Scoring.HighConfidenceThreshold))
	}
	if cfg.Scoring.GoodThreshold != 0 && cfg.Scoring.AcceptableThreshold != 0 &&
		cfg.Scoring.AcceptableThreshold > cfg.Scoring.GoodThreshold {
		errs = append(errs, fmt.Errorf("scoring.acceptable_threshold %.4f must not exceed scoring.good_threshold %.4f",
			cfg.Scoring.AcceptableThreshold, cfg.Scoring.GoodThreshold))
	}

	// Timeouts
	if cfg.Timeouts.ASR < 0 || cfg.Timeouts.Lexicon < 0 || cfg.Timeouts.Generative < 0 || cfg.Timeouts.Analysis < 0 {
		errs = append(errs, errors.New("timeouts must not be negative"))
	}

	return errors.Join(errs...)
}

// validateProviderName logs a warning if name is non-empty and not found in
// the [ValidProviderNames] list for the given kind.
func validateProviderName(kind, name string) {
	if name == "" {
		return
	}
	known, ok := ValidProviderNames[kind]
	if !ok {
		return
	}
	if slices.Contains(known, name) {
		return
	}
	slog.Warn("unknown provider name, may be a typo or third-party provider",
		"kind", kind,
		"name", name,
		"known", known,
	)
}
