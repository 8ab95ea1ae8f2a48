package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.uber.org/zap"

	"github.com/crs-platform/orchestrator/internal/activities"
	"github.com/crs-platform/orchestrator/internal/agents"
	"github.com/crs-platform/orchestrator/internal/config"
	"github.com/crs-platform/orchestrator/internal/health"
	"github.com/crs-platform/orchestrator/internal/httpapi"
	"github.com/crs-platform/orchestrator/internal/llm"
	"github.com/crs-platform/orchestrator/internal/search"
	"github.com/crs-platform/orchestrator/internal/session"
	temporaladapter "github.com/crs-platform/orchestrator/internal/temporal"
	"github.com/crs-platform/orchestrator/internal/workflows"
)

// temporalPinger adapts the Temporal client health RPC to the health
// package's Pinger shape.
type temporalPinger struct {
	client client.Client
}

func (p temporalPinger) Ping(ctx context.Context) error {
	_, err := p.client.CheckHealth(ctx, &client.CheckHealthRequest{})
	return err
}

func main() {
	// Best effort; production deployments use real env vars.
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		var cfgErr *config.ConfigurationError
		if errors.As(err, &cfgErr) {
			logger.Fatal("Invalid configuration", zap.Error(err))
		}
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	providers, err := cfg.ResolveAgentProviders()
	if err != nil {
		logger.Fatal("Failed to resolve agent providers", zap.Error(err))
	}
	logger.Info("Agent providers resolved",
		zap.String("provider", cfg.Provider),
		zap.String("router_model", providers.Router.Model),
		zap.String("summarizer_model", providers.Summarizer.Model))

	searchClient := search.NewClient(cfg.Search.BraveAPIKey, cfg.Search.MaxResults, logger)

	acts := activities.New(
		agents.NewIntentClassifier(llm.NewClient(providers.Router, logger)),
		agents.NewKeywordExtractor(llm.NewClient(providers.Keywords, logger)),
		agents.NewWebSearchAgent(llm.NewClient(providers.WebSearch, logger), searchClient, logger),
		agents.NewSummarizer(llm.NewClient(providers.Summarizer, logger)),
		time.Duration(cfg.Search.SessionTimeoutSeconds)*time.Second,
		logger,
	)

	sessions, err := session.NewManager(
		cfg.Session.RedisAddr,
		time.Duration(cfg.Session.TTLHours)*time.Hour,
		logger,
	)
	if err != nil {
		logger.Fatal("Failed to initialize session manager", zap.Error(err))
	}
	defer sessions.Close()

	temporalClient, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    temporaladapter.NewZapAdapter(logger),
	})
	if err != nil {
		logger.Fatal("Failed to connect to Temporal", zap.Error(err))
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, cfg.Temporal.TaskQueue, worker.Options{})
	w.RegisterWorkflow(workflows.PipelineWorkflow)
	acts.Register(w)

	if err := w.Start(); err != nil {
		logger.Fatal("Failed to start Temporal worker", zap.Error(err))
	}
	defer w.Stop()
	logger.Info("Temporal worker started", zap.String("task_queue", cfg.Temporal.TaskQueue))

	// Metrics on its own port.
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		addr := fmt.Sprintf(":%d", cfg.Server.MetricsPort)
		logger.Info("Metrics server listening", zap.String("addr", addr))
		if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
			logger.Error("Metrics server failed", zap.Error(err))
		}
	}()

	healthManager := health.NewManager(logger)
	healthManager.RegisterChecker(health.NewPingChecker("redis", sessions))
	healthManager.RegisterChecker(health.NewPingChecker("temporal", temporalPinger{temporalClient}))

	mux := http.NewServeMux()
	httpapi.NewQueryHandler(temporalClient, sessions, cfg.Temporal.TaskQueue, logger).RegisterRoutes(mux)
	health.NewHandler(healthManager).RegisterRoutes(mux)

	apiServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("API server listening", zap.String("addr", apiServer.Addr))
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("API server failed", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("Shutting down", zap.String("signal", sig.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("API server shutdown failed", zap.Error(err))
	}
}
