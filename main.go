package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/subosito/gotenv"

	"github.com/varsilias/persona-proxy/internal/api"
	"github.com/varsilias/persona-proxy/internal/buildinfo"
	"github.com/varsilias/persona-proxy/internal/chat"
	"github.com/varsilias/persona-proxy/internal/config"
	"github.com/varsilias/persona-proxy/internal/logging"
	"github.com/varsilias/persona-proxy/internal/metrics"
	"github.com/varsilias/persona-proxy/internal/middleware"
	"github.com/varsilias/persona-proxy/internal/models"
	"github.com/varsilias/persona-proxy/internal/observability"
	"github.com/varsilias/persona-proxy/internal/ollama"
	"github.com/varsilias/persona-proxy/internal/prompt"
	"github.com/varsilias/persona-proxy/internal/ui"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := config.New()
	var cfgFile string

	serve := func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(v, cfgFile)
		if err != nil {
			return err
		}
		return run(cmd.Context(), cfg)
	}

	rootCmd := &cobra.Command{
		Use:   "persona-proxy",
		Short: "Chat proxy that injects a fixed system prompt before calling an LLM provider",
		Long: `persona-proxy keeps the provider API key on the server and prepends the
same system prompt to every conversation sent by the browser client.

Configuration comes from flags, environment variables (PORT, ALLOWED_ORIGINS,
OPENAI_API_KEY, OPENAI_MODEL, ...), an optional .env file and an optional
YAML file passed with --config.`,
		SilenceUsage: true,
		RunE:         serve,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file path (yaml)")
	flags.String("port", "3000", "HTTP listen port")
	flags.String("allowed-origins", config.DefaultAllowedOrigins, "comma-separated browser origins allowed to call the API")
	flags.String("provider", config.ProviderOpenAI, "completion provider: openai|ollama|gemini|echo")
	flags.String("static-dir", "public", "directory served at /")
	flags.String("log-level", "info", "log level: debug|info|warn|error")
	flags.Bool("log-json", false, "log as JSON")
	for key, name := range map[string]string{
		"port":            "port",
		"allowed_origins": "allowed-origins",
		"provider":        "provider",
		"static_dir":      "static-dir",
		"log.level":       "log-level",
		"log.json":        "log-json",
	} {
		_ = v.BindPFlag(key, flags.Lookup(name))
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server (default)",
		RunE:  serve,
	})
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), buildinfo.Text())
		},
	})

	cobra.OnInitialize(loadDotEnv)
	return rootCmd
}

// loadDotEnv mirrors dotenv: values from .env never override the real environment.
func loadDotEnv() {
	if err := gotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: reading .env: %v\n", err)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	logger := logging.New(cfg.Log.Level, cfg.Log.JSON)
	logger.Info("build", "version", buildinfo.Version, "commit", buildinfo.Commit, "built_at", buildinfo.BuiltAt)

	if errs := config.Validate(cfg); len(errs) > 0 {
		for _, err := range errs {
			logger.Error("invalid configuration", "err", err)
		}
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	for _, w := range cfg.Warnings() {
		logger.Warn(w)
	}

	systemPrompt, source, err := prompt.Resolve(cfg.SystemPrompt, cfg.SystemPromptFile)
	if err != nil {
		logger.Error("system prompt", "err", err)
		return err
	}
	logger.Info("system prompt loaded", "source", source, "chars", len(systemPrompt))

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp, err := observability.InitTracing(ctx, observability.TracingConfig{
		ServiceName:    "persona-proxy",
		ServiceVersion: buildinfo.Version,
		OTLPEndpoint:   cfg.OTel.Endpoint,
		SampleRate:     cfg.OTel.SampleRate,
	})
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tp.Shutdown(sctx)
	}()

	engine, manager, err := newEngine(ctx, cfg, logger)
	if err != nil {
		logger.Error("provider init", "provider", cfg.Provider, "err", err)
		return err
	}

	var collector *metrics.Collector
	if cfg.Metrics.Enabled {
		collector = metrics.New(prometheus.NewRegistry())
	}

	handler := newHandler(deps{
		cfg:          cfg,
		log:          logger,
		engine:       engine,
		models:       manager,
		metrics:      collector,
		tracing:      tp,
		systemPrompt: systemPrompt,
	})
	server := newServer(cfg, handler)

	errChan := make(chan error, 1)
	go func() { errChan <- server.ListenAndServe() }()
	logger.Info(fmt.Sprintf("Serveur OK sur http://localhost:%s", cfg.Port),
		"addr", cfg.Addr(),
		"provider", cfg.Provider,
		"model", cfg.Model(),
		"allowed_origins", cfg.AllowedOrigins,
	)

	select {
	case err := <-errChan:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "err", err)
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(sctx); err != nil {
		logger.Error("graceful shutdown failed", "err", err)
		return err
	}
	logger.Info("server stopped")
	return nil
}

// newEngine builds the completion provider and the matching readiness check.
func newEngine(ctx context.Context, cfg *config.Config, log *slog.Logger) (chat.Engine, models.Manager, error) {
	switch cfg.Provider {
	case config.ProviderOllama:
		oc := ollama.NewClient(cfg.Ollama.BaseURL, log, nil)
		if err := oc.Ping(ctx); err != nil {
			log.Warn("ollama not reachable yet", "base_url", cfg.Ollama.BaseURL, "err", err)
		}
		return chat.NewOllamaEngine(oc), models.NewOllamaManager(oc), nil
	case config.ProviderGemini:
		eng, err := chat.NewGeminiEngine(ctx, cfg.Gemini.APIKey)
		if err != nil {
			return nil, nil, err
		}
		return eng, models.NewStaticManager(cfg.Gemini.Model), nil
	case config.ProviderEcho:
		return chat.NewEchoEngine(30 * time.Millisecond), models.NewStaticManager("echo"), nil
	default:
		eng := chat.NewOpenAIEngine(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, nil)
		return eng, models.NewOpenAIManager(eng.Client()), nil
	}
}

type deps struct {
	cfg          *config.Config
	log          *slog.Logger
	engine       chat.Engine
	models       models.Manager
	metrics      *metrics.Collector
	tracing      *observability.TracerProvider
	systemPrompt string
}

// newServer leaves the write deadline to the provider call unless
// PROVIDER_TIMEOUT bounds it, so a slow completion still ends in a JSON answer.
func newServer(cfg *config.Config, handler http.Handler) *http.Server {
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	if cfg.ProviderTimeout > 0 {
		srv.WriteTimeout = cfg.ProviderTimeout + writeGrace
	}
	return srv
}

// writeGrace covers body decoding and writing the response around the
// provider call.
const writeGrace = 30 * time.Second

func newHandler(d deps) http.Handler {
	ctrl := chat.NewController(d.log, d.engine, chat.Options{
		Provider:     d.cfg.Provider,
		Model:        d.cfg.Model(),
		SystemPrompt: d.systemPrompt,
		Timeout:      d.cfg.ProviderTimeout,
		MaxInFlight:  d.cfg.MaxInFlight,
		Metrics:      d.metrics,
	})

	mux := chi.NewRouter()
	mux.Use(d.tracing.Middleware, d.metrics.Middleware)

	api.RegisterRoutes(mux, api.NewHandlers(d.log, ctrl, d.models))
	ui.RegisterRoutes(mux, ui.New(d.log))
	if d.metrics != nil {
		mux.Method(http.MethodGet, "/metrics", d.metrics.Handler())
	}
	if d.cfg.StaticDir != "" {
		mux.Handle("/*", http.FileServer(http.Dir(d.cfg.StaticDir)))
	}

	// refused origins never reach the router, static files included
	return middleware.Chain(mux,
		middleware.VersionHeader(),
		middleware.RequestID(),
		middleware.AccessLog(d.log),
		middleware.Recoverer(d.log),
		middleware.OriginGuard(d.cfg.AllowedOrigins, d.log, d.metrics),
	)
}
