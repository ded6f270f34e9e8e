// Package cli wires configuration into assistants and shells for cmd/waybill.
package cli

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hazriqpedia/waybill"
	"github.com/hazriqpedia/waybill/internal/adapters/file"
	"github.com/hazriqpedia/waybill/internal/config"
	"github.com/hazriqpedia/waybill/internal/logging"
	"github.com/hazriqpedia/waybill/internal/trace"
	"github.com/hazriqpedia/waybill/pkg/adapters/memory"
	"github.com/hazriqpedia/waybill/pkg/adapters/openai"
	"github.com/hazriqpedia/waybill/pkg/adapters/redis"
	"github.com/hazriqpedia/waybill/pkg/observability"
	"github.com/hazriqpedia/waybill/pkg/persistence/middleware"
	"github.com/hazriqpedia/waybill/pkg/ports"
	"github.com/hazriqpedia/waybill/pkg/research"
	"github.com/hazriqpedia/waybill/pkg/shipment"
)

// Stack holds what every command shares: logger, model client, tracing,
// metrics and conversation memory.
type Stack struct {
	Config   *config.Config
	Logger   *slog.Logger
	Client   ports.CompletionClient
	Tracer   ports.Tracer
	Metrics  *observability.Metrics
	Registry *prometheus.Registry
	Store    ports.HistoryStore
	Locker   ports.DistributedLocker

	closers []io.Closer
}

// NewLogger creates the application logger. Debug wins over the configured level.
func NewLogger(cfg *config.Config, debug bool) (*slog.Logger, error) {
	if debug {
		return logging.New(slog.LevelDebug), nil
	}
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	return logging.New(level), nil
}

// NewStack builds the shared dependencies. Callers must Close it.
// client may be nil, in which case the OpenAI-compatible client is created from cfg.
func NewStack(ctx context.Context, cfg *config.Config, logger *slog.Logger, client ports.CompletionClient) (*Stack, error) {
	s := &Stack{
		Config:   cfg,
		Logger:   logger,
		Client:   client,
		Registry: prometheus.NewRegistry(),
	}
	s.Metrics = observability.NewMetrics(s.Registry)

	if s.Client == nil {
		c, err := NewClient(cfg.LLM)
		if err != nil {
			return nil, err
		}
		s.Client = c
	}

	tracer, closer, err := NewTracer(cfg.Trace, logger)
	if err != nil {
		return nil, err
	}
	s.Tracer = tracer
	if closer != nil {
		s.closers = append(s.closers, closer)
	}

	if err := s.openStore(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// NewClient creates the completion client, reading the API key from the
// environment when the config leaves it empty.
func NewClient(cfg config.LLMConfig) (*openai.Client, error) {
	key := cfg.APIKey
	if key == "" {
		key = openai.APIKeyFromEnv()
	}
	oc := openai.Config{
		APIKey:      key,
		BaseURL:     cfg.BaseURL,
		Model:       cfg.Model,
		HTTPTimeout: cfg.Timeout,
	}
	if cfg.Temperature != 0 {
		t := cfg.Temperature
		oc.Temperature = &t
	}
	c, err := openai.New(oc)
	if errors.Is(err, openai.ErrMissingAPIKey) {
		return nil, fmt.Errorf("%w: set GEMINI_API_KEY, GOOGLE_API_KEY or llm.api_key", err)
	}
	return c, err
}

// NewTracer returns the NDJSON tracer when a trace file is configured and the
// debug-level slog tracer otherwise.
func NewTracer(cfg config.TraceConfig, logger *slog.Logger) (ports.Tracer, io.Closer, error) {
	if cfg.File == "" {
		return trace.NewSlogTracer(logger), nil, nil
	}
	f, err := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open trace file: %w", err)
	}
	return trace.NewZerologTracer(f), f, nil
}

func (s *Stack) openStore(ctx context.Context) error {
	cfg := s.Config.Store
	switch cfg.Type {
	case config.StoreFile:
		s.Store = file.New(cfg.Path, file.WithMaxTurns(cfg.MaxTurns))
	case config.StoreRedis:
		rs := redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB,
			redis.WithTTL(cfg.TTL),
			redis.WithMaxTurns(cfg.MaxTurns),
		)
		if err := rs.Ping(ctx); err != nil {
			_ = rs.Close()
			return fmt.Errorf("redis store unavailable at %s: %w", cfg.RedisAddr, err)
		}
		s.Store = rs
		s.Locker = redis.NewLocker(rs.Client(), redis.DefaultPrefix)
		s.closers = append(s.closers, rs)
	default:
		s.Store = memory.NewStore(memory.WithMaxTurns(cfg.MaxTurns))
	}

	mws, err := storeMiddleware(cfg)
	if err != nil {
		return err
	}
	s.Store = middleware.Chain(s.Store, mws...)
	s.Logger.Debug("history store ready", "type", cfg.Type, "middleware", len(mws))
	return nil
}

// storeMiddleware masks before it encrypts, so masked values never reach storage.
func storeMiddleware(cfg config.StoreConfig) ([]middleware.Middleware, error) {
	var mws []middleware.Middleware
	if len(cfg.MaskArgs) > 0 || len(cfg.MaskValues) > 0 {
		mw, err := middleware.NewPIIMiddleware(middleware.PIIConfig{ArgKeys: cfg.MaskArgs, Values: cfg.MaskValues})
		if err != nil {
			return nil, fmt.Errorf("invalid store mask pattern: %w", err)
		}
		mws = append(mws, mw)
	}
	if cfg.EncryptionKey == "" {
		return mws, nil
	}

	active, err := base64.StdEncoding.DecodeString(cfg.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("invalid store.encryption_key: %w", err)
	}
	enc := middleware.EncryptionConfig{ActiveKey: active}
	for i, k := range cfg.FallbackKeys {
		key, err := base64.StdEncoding.DecodeString(k)
		if err != nil {
			return nil, fmt.Errorf("invalid store.fallback_keys[%d]: %w", i, err)
		}
		enc.FallbackKeys = append(enc.FallbackKeys, key)
	}
	mw, err := middleware.NewEncryptionMiddleware(enc)
	if err != nil {
		return nil, err
	}
	return append(mws, mw), nil
}

// Close releases the trace file and store connections.
func (s *Stack) Close() error {
	var errs []error
	for _, c := range s.closers {
		errs = append(errs, c.Close())
	}
	s.closers = nil
	return errors.Join(errs...)
}

func (s *Stack) assistantOptions() []waybill.Option {
	cfg := s.Config.Agent
	opts := []waybill.Option{
		waybill.WithLogger(s.Logger),
		waybill.WithTracer(s.Tracer),
		waybill.WithMaxIterations(cfg.MaxIterations),
		waybill.WithToolOutputLimit(cfg.ToolOutputLimit),
		waybill.WithLifecycleHooks(observability.LogHooks(s.Logger).Merge(s.Metrics.Hooks())),
		waybill.WithHistoryStore(s.Store),
		waybill.WithHistoryWindow(cfg.HistoryWindow),
	}
	if s.Locker != nil {
		opts = append(opts, waybill.WithLocker(s.Locker))
	}
	return opts
}

// ShipmentAssistant builds the logistics assistant and its backing service.
func (s *Stack) ShipmentAssistant(extra ...waybill.Option) (*waybill.Assistant, *shipment.Service, error) {
	seed := shipment.DefaultSeed()
	if path := s.Config.Shipment.SeedFile; path != "" {
		loaded, err := shipment.LoadSeed(path)
		if err != nil {
			return nil, nil, err
		}
		seed = loaded
	}
	svc := shipment.NewService(seed,
		shipment.WithPostalValidation(s.Config.Shipment.ValidatePostal),
		shipment.WithLogger(s.Logger),
	)
	a, err := waybill.NewShipmentAssistant(s.Client, svc, append(s.assistantOptions(), extra...)...)
	if err != nil {
		return nil, nil, err
	}
	return a, svc, nil
}

// ResearchToolset builds the research backends from config.
func (s *Stack) ResearchToolset() research.Toolset {
	cfg := s.Config.Research
	ts := research.NewToolset(cfg.OutputDir)
	if cfg.SearchURL != "" {
		ts.Searcher.Endpoint = cfg.SearchURL
	}
	if cfg.MaxResults > 0 {
		ts.Searcher.MaxResults = cfg.MaxResults
	}
	if cfg.WikipediaURL != "" {
		ts.Wikipedia.BaseURL = cfg.WikipediaURL
	}
	ts.Wikipedia.MaxChars = cfg.WikipediaChars
	return ts
}

// ResearchAssistant builds the research assistant.
func (s *Stack) ResearchAssistant(extra ...waybill.Option) (*waybill.Assistant, error) {
	return waybill.NewResearchAssistant(s.Client, s.ResearchToolset(), append(s.assistantOptions(), extra...)...)
}
