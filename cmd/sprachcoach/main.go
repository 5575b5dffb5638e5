// Command sprachcoach is the German language tutoring server.
package main

import (
	"context"
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
	"github.com/joho/godotenv"
	anyllmlib "github.com/mozilla-ai/any-llm-go"

	"github.com/lberndt/sprachcoach/internal/config"
	"github.com/lberndt/sprachcoach/internal/health"
	"github.com/lberndt/sprachcoach/internal/httpapi"
	"github.com/lberndt/sprachcoach/internal/observe"
	"github.com/lberndt/sprachcoach/internal/store"
	"github.com/lberndt/sprachcoach/internal/store/memstore"
	"github.com/lberndt/sprachcoach/internal/tutor"
	"github.com/lberndt/sprachcoach/internal/tutor/refine"
	"github.com/lberndt/sprachcoach/internal/verify"
	"github.com/lberndt/sprachcoach/pkg/provider/llm"
	"github.com/lberndt/sprachcoach/pkg/provider/llm/anyllm"
	openaillm "github.com/lberndt/sprachcoach/pkg/provider/llm/openai"
	"github.com/lberndt/sprachcoach/pkg/provider/stt"
	googlestt "github.com/lberndt/sprachcoach/pkg/provider/stt/google"
	"github.com/lberndt/sprachcoach/pkg/provider/translate"
	"github.com/lberndt/sprachcoach/pkg/provider/translate/jigsawstack"
	"github.com/lberndt/sprachcoach/pkg/provider/tts"
	"github.com/lberndt/sprachcoach/pkg/provider/tts/gtts"
)

// defaultSampleRate is the audio sample rate assumed for uploaded speech when
// the config does not override it.
const defaultSampleRate = 16000

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	// .env is optional; real deployments set environment variables directly.
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using environment variables")
	}

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "sprachcoach: config file %q not found — copy config.example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "sprachcoach: %v\n", err)
		}
		return 1
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	logger := newLogger(cfg.Server.LogLevel)
	slog.SetDefault(logger)

	slog.Info("sprachcoach starting",
		"config", *configPath,
		"listen_addr", cfg.Server.ListenAddr,
		"log_level", cfg.Server.LogLevel,
	)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Observability ─────────────────────────────────────────────────────────
	otelShutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName: "sprachcoach",
	})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()

	metrics := observe.DefaultMetrics()

	// ── Persistence ───────────────────────────────────────────────────────────
	st, dbCheck, closeStore, err := openStore(ctx, cfg.Database)
	if err != nil {
		slog.Error("failed to open store", "err", err)
		return 1
	}
	defer closeStore()

	// ── Providers ─────────────────────────────────────────────────────────────
	reg := config.NewRegistry()
	registerBuiltinProviders(reg)

	providers, err := buildProviders(cfg, reg)
	if err != nil {
		slog.Error("failed to build providers", "err", err)
		return 1
	}
	if providers.llm == nil {
		slog.Error("no llm provider configured; the tutor cannot run without one")
		return 1
	}

	// Every provider call reports latency and error counters.
	providers.llm = observe.InstrumentLLM(providers.llm, metrics, cfg.Providers.LLM.Name)
	if providers.stt != nil {
		providers.stt = observe.InstrumentSTT(providers.stt, metrics, cfg.Providers.STT.Name)
	}
	if providers.tts != nil {
		providers.tts = observe.InstrumentTTS(providers.tts, metrics, cfg.Providers.TTS.Name)
	}
	if providers.translate != nil {
		providers.translate = observe.InstrumentTranslate(providers.translate, metrics, cfg.Providers.Translate.Name)
	}

	// ── Tutor pipeline ────────────────────────────────────────────────────────
	var classifierOpts []refine.KeywordOption
	if len(cfg.Tutor.PunctuationKeywords) > 0 {
		classifierOpts = append(classifierOpts, refine.WithPunctuationKeywords(cfg.Tutor.PunctuationKeywords...))
	}
	if len(cfg.Tutor.GrammarKeywords) > 0 {
		classifierOpts = append(classifierOpts, refine.WithGrammarKeywords(cfg.Tutor.GrammarKeywords...))
	}
	classifier := refine.NewKeywordClassifier(classifierOpts...)

	engineOpts := []tutor.Option{
		tutor.WithLogger(logger),
		tutor.WithMetrics(metrics),
	}
	if cfg.Tutor.HistoryLimit > 0 {
		engineOpts = append(engineOpts, tutor.WithHistoryLimit(cfg.Tutor.HistoryLimit))
	}
	if cfg.Tutor.TurnTimeoutSeconds > 0 {
		engineOpts = append(engineOpts, tutor.WithTurnTimeout(time.Duration(cfg.Tutor.TurnTimeoutSeconds)*time.Second))
	}
	if cfg.Tutor.Temperature > 0 {
		engineOpts = append(engineOpts, tutor.WithTemperature(cfg.Tutor.Temperature))
	}
	engine := tutor.New(st, providers.llm, classifier, engineOpts...)

	verifier := verify.New(providers.llm, classifier, verify.WithLogger(logger))
	checker := verify.NewChecker(verifier, logger)

	// ── HTTP surface ──────────────────────────────────────────────────────────
	handlerOpts := []httpapi.Option{httpapi.WithLogger(logger)}
	if providers.stt != nil {
		handlerOpts = append(handlerOpts, httpapi.WithSTT(providers.stt))
	}
	if providers.tts != nil {
		handlerOpts = append(handlerOpts, httpapi.WithTTS(providers.tts))
	}
	if providers.translate != nil {
		handlerOpts = append(handlerOpts, httpapi.WithTranslate(providers.translate))
	}
	apiHandler := httpapi.NewHandler(engine, checker, st, handlerOpts...)

	var checkers []health.Checker
	if dbCheck != nil {
		checkers = append(checkers, health.Checker{Name: "database", Check: dbCheck})
	}
	probes := health.New(checkers...)

	router := httpapi.NewRouter(apiHandler, metrics, probes)

	addr := cfg.Server.ListenAddr
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{
		Addr:        addr,
		Handler:     router,
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 2 * time.Minute,
	}

	// ── Serve ─────────────────────────────────────────────────────────────────
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr, "tls", cfg.Server.TLS != nil)
		var err error
		if tlsCfg := cfg.Server.TLS; tlsCfg != nil {
			err = srv.ListenAndServeTLS(tlsCfg.CertFile, tlsCfg.KeyFile)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		slog.Error("server failed", "err", err)
		return 1
	case <-ctx.Done():
	}

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	slog.Info("shutdown signal received, stopping…")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "err", err)
		return 1
	}
	slog.Info("goodbye")
	return 0
}

// ── Persistence wiring ────────────────────────────────────────────────────────

// openStore opens the configured store. With a PostgreSQL DSN it connects,
// runs migrations, and returns a readiness check; without one it falls back
// to the in-memory store.
func openStore(ctx context.Context, cfg config.DatabaseConfig) (store.Store, func(context.Context) error, func(), error) {
	if cfg.PostgresDSN == "" {
		slog.Warn("no postgres_dsn configured, using in-memory store; data is lost on restart")
		return memstore.New(), nil, func() {}, nil
	}

	pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect postgres: %w", err)
	}

	pg := store.NewPostgresStore(pool)
	if err := pg.Migrate(ctx); err != nil {
		pool.Close()
		return nil, nil, nil, fmt.Errorf("migrate: %w", err)
	}
	slog.Info("database connected and migrated")

	return pg, pool.Ping, pool.Close, nil
}

// ── Provider wiring ───────────────────────────────────────────────────────────

// serviceProviders holds the instantiated external-service providers.
// Only the LLM is mandatory.
type serviceProviders struct {
	llm       llm.Provider
	stt       stt.Provider
	tts       tts.Provider
	translate translate.Provider
}

// registerBuiltinProviders wires all built-in provider factories into reg.
func registerBuiltinProviders(reg *config.Registry) {
	// Cloud LLM backends share the same pattern: optional APIKey + BaseURL.
	for _, providerName := range []string{"openai", "anthropic", "gemini", "mistral", "groq"} {
		reg.RegisterLLM(providerName, func(entry config.ProviderEntry) (llm.Provider, error) {
			var opts []anyllmlib.Option
			if entry.APIKey != "" {
				opts = append(opts, anyllmlib.WithAPIKey(entry.APIKey))
			}
			if entry.BaseURL != "" {
				opts = append(opts, anyllmlib.WithBaseURL(entry.BaseURL))
			}
			return anyllm.New(providerName, entry.Model, opts...)
		})
	}

	// ollama is a local server; it uses BaseURL for the address, not an API key.
	reg.RegisterLLM("ollama", func(entry config.ProviderEntry) (llm.Provider, error) {
		var opts []anyllmlib.Option
		if entry.BaseURL != "" {
			opts = append(opts, anyllmlib.WithBaseURL(entry.BaseURL))
		}
		return anyllm.New("ollama", entry.Model, opts...)
	})

	// openai-native goes through the official SDK instead of any-llm-go,
	// which keeps structured JSON responses available.
	reg.RegisterLLM("openai-native", func(entry config.ProviderEntry) (llm.Provider, error) {
		var opts []openaillm.Option
		if entry.BaseURL != "" {
			opts = append(opts, openaillm.WithBaseURL(entry.BaseURL))
		}
		return openaillm.New(entry.APIKey, entry.Model, opts...)
	})

	reg.RegisterSTT("google", func(entry config.ProviderEntry) (stt.Provider, error) {
		rate := defaultSampleRate
		if r := optInt(entry.Options, "sample_rate"); r > 0 {
			rate = r
		}
		var opts []googlestt.Option
		if entry.APIKey != "" {
			opts = append(opts, googlestt.WithAPIKey(entry.APIKey))
		}
		if entry.BaseURL != "" {
			opts = append(opts, googlestt.WithEndpoint(entry.BaseURL))
		}
		return googlestt.New(rate, opts...), nil
	})

	reg.RegisterTTS("gtts", func(entry config.ProviderEntry) (tts.Provider, error) {
		var opts []gtts.Option
		if entry.BaseURL != "" {
			opts = append(opts, gtts.WithEndpoint(entry.BaseURL))
		}
		return gtts.New(opts...), nil
	})

	reg.RegisterTranslate("jigsawstack", func(entry config.ProviderEntry) (translate.Provider, error) {
		var opts []jigsawstack.Option
		if entry.BaseURL != "" {
			opts = append(opts, jigsawstack.WithEndpoint(entry.BaseURL))
		}
		return jigsawstack.New(entry.APIKey, opts...)
	})
}

// buildProviders instantiates the providers named in cfg using the registry.
// A missing name leaves the corresponding provider nil and its endpoints
// disabled; an unknown name is an error.
func buildProviders(cfg *config.Config, reg *config.Registry) (*serviceProviders, error) {
	ps := &serviceProviders{}

	if name := cfg.Providers.LLM.Name; name != "" {
		p, err := reg.CreateLLM(cfg.Providers.LLM)
		if err != nil {
			return nil, fmt.Errorf("create llm provider %q: %w", name, err)
		}
		ps.llm = p
		slog.Info("provider created", "kind", "llm", "name", name, "model", cfg.Providers.LLM.Model)
	}

	if name := cfg.Providers.STT.Name; name != "" {
		p, err := reg.CreateSTT(cfg.Providers.STT)
		if err != nil {
			return nil, fmt.Errorf("create stt provider %q: %w", name, err)
		}
		ps.stt = p
		slog.Info("provider created", "kind", "stt", "name", name)
	}

	if name := cfg.Providers.TTS.Name; name != "" {
		p, err := reg.CreateTTS(cfg.Providers.TTS)
		if err != nil {
			return nil, fmt.Errorf("create tts provider %q: %w", name, err)
		}
		ps.tts = p
		slog.Info("provider created", "kind", "tts", "name", name)
	}

	if name := cfg.Providers.Translate.Name; name != "" {
		p, err := reg.CreateTranslate(cfg.Providers.Translate)
		if err != nil {
			return nil, fmt.Errorf("create translate provider %q: %w", name, err)
		}
		ps.translate = p
		slog.Info("provider created", "kind", "translate", "name", name)
	}

	return ps, nil
}

// ── Logger ────────────────────────────────────────────────────────────────────

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
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// optInt extracts an integer from a provider Options map. YAML decodes
// numbers as int, so only that case is handled. Returns 0 when absent.
func optInt(opts map[string]any, key string) int {
	if opts == nil {
		return 0
	}
	if v, ok := opts[key].(int); ok {
		return v
	}
	return 0
}
