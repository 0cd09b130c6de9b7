// Package main is the entry point for the API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/thoughtstream-ai/reasoning-platform/internal/audit"
	"github.com/thoughtstream-ai/reasoning-platform/internal/config"
	"github.com/thoughtstream-ai/reasoning-platform/internal/handler"
	"github.com/thoughtstream-ai/reasoning-platform/internal/llm"
	"github.com/thoughtstream-ai/reasoning-platform/internal/middleware"
	"github.com/thoughtstream-ai/reasoning-platform/internal/service"
	"github.com/thoughtstream-ai/reasoning-platform/pkg/logger"
	"github.com/thoughtstream-ai/reasoning-platform/pkg/tracing"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger.SetGlobal(log)

	log.Info("starting API server")

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", zap.Error(err))
		os.Exit(1)
	}

	// Initialize tracing if enabled
	ctx := context.Background()
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "reasoning-platform", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// Build the audit sink chain: file and/or NATS behind a bounded async
	// queue so a slow sink never stalls event delivery.
	var sinks []audit.Sink
	var fileSink *audit.FileSink
	var natsSink *audit.NATSSink

	if cfg.EnableComplianceLogging {
		fileSink, err = audit.NewFileSink(cfg.ComplianceLogDir)
		if err != nil {
			log.Error("failed to create compliance log sink", zap.Error(err))
			os.Exit(1)
		}
		sinks = append(sinks, fileSink)
	}
	if cfg.NATSAuditEnabled {
		natsSink, err = audit.NewNATSSink(ctx, audit.NATSConfig{
			URL:      cfg.NATSURL,
			CAFile:   cfg.NATSCAFile,
			CertFile: cfg.NATSCertFile,
			KeyFile:  cfg.NATSKeyFile,
			Token:    cfg.NATSToken,
		}, log)
		if err != nil {
			log.Error("failed to connect NATS audit sink", zap.Error(err))
			os.Exit(1)
		}
		sinks = append(sinks, natsSink)
	}

	var sink audit.Sink
	switch len(sinks) {
	case 0:
		sink = audit.NopSink{}
	case 1:
		sink = audit.NewAsyncSink(sinks[0], cfg.AuditQueueSize, log)
	default:
		sink = audit.NewAsyncSink(audit.Multi(sinks...), cfg.AuditQueueSize, log)
	}
	defer sink.Close()

	// Initialize the upstream LLM client
	var llmClient llm.Client
	switch strings.ToLower(cfg.DefaultLLM) {
	case "anthropic":
		llmClient, err = llm.NewAnthropicClient(cfg.AnthropicAPIKey)
	default:
		llmClient, err = llm.NewAzureClient(cfg.AzureAPIKey, cfg.AzureEndpoint, cfg.AzureModelDeployment, cfg.AzureAPIVersion)
	}
	if err != nil {
		log.Error("failed to create LLM client", zap.Error(err))
		os.Exit(1)
	}

	opts := service.Options{
		Model:        cfg.AzureModelDeployment,
		APIVersion:   cfg.AzureAPIVersion,
		Endpoint:     cfg.AzureEndpoint,
		SystemPrompt: cfg.SystemPrompt,
	}
	if fileSink != nil {
		opts.LogPath = fileSink.Path
	}

	chatService := service.NewChatService(llmClient, sink, opts, log)

	healthHandler := handler.NewHealthHandler(cfg, natsSink)
	chatHandler := handler.NewChatHandler(chatService, log)

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Correlation-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health endpoints
	r.Get("/", healthHandler.Root)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// Metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	// Chat endpoints
	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))
		r.Post("/chat", chatHandler.Chat)
		r.Post("/chat/stream", chatHandler.Stream)
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      r,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}
