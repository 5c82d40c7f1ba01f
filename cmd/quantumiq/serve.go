// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/AleutianAI/quantumiq/pkg/logging"
	"github.com/AleutianAI/quantumiq/services/quantum"
	"github.com/AleutianAI/quantumiq/services/tutor/agent"
	"github.com/AleutianAI/quantumiq/services/tutor/agent/llm"
	"github.com/AleutianAI/quantumiq/services/tutor/agent/tools"
	"github.com/AleutianAI/quantumiq/services/tutor/challenges"
	"github.com/AleutianAI/quantumiq/services/tutor/config"
	"github.com/AleutianAI/quantumiq/services/tutor/observability"
	"github.com/AleutianAI/quantumiq/services/tutor/routes"
	"github.com/AleutianAI/quantumiq/services/tutor/store"
)

const serviceName = "quantumiq-tutor"

// expandHome resolves a leading ~/ against the user's home directory.
func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

// storeConfig maps the configured store path to a Badger config. An
// empty path selects the in-memory store.
func storeConfig(path string) store.Config {
	if path == "" {
		return store.InMemoryConfig()
	}
	return store.DefaultConfig(expandHome(path))
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the QuantumIQ HTTP service",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

// initTracer wires the OTLP/gRPC exporter when a collector endpoint is
// configured. Without OTEL_EXPORTER_OTLP_ENDPOINT tracing stays local
// (a no-op provider) so the service runs standalone.
func initTracer(ctx context.Context) (func(context.Context), error) {
	otelEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otelEndpoint == "" {
		slog.Info("OTEL_EXPORTER_OTLP_ENDPOINT not set, tracing disabled")
		return func(context.Context) {}, nil
	}

	conn, err := grpc.NewClient(otelEndpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}
	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, err
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceNameKey.String(serviceName)))
	if err != nil {
		return nil, err
	}
	bsp := sdktrace.NewBatchSpanProcessor(traceExporter)
	traceProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(bsp))
	otel.SetTracerProvider(traceProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{}))

	return func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := traceExporter.Shutdown(ctx); err != nil {
			slog.Error("failed to shutdown OTLP exporter", "error", err)
		}
	}, nil
}

// newReasoningClient builds the LLM client from config. Without an API
// key the service runs in lightweight mode: simulation and challenges
// work fully, chat degrades to canned replies.
func newReasoningClient(cfg config.LLMConfig) llm.Client {
	apiKey := os.Getenv(cfg.APIKeyEnv)
	if apiKey == "" {
		slog.Warn("API key not set, chat runs in lightweight mode",
			"env", cfg.APIKeyEnv)
		mock := llm.NewMockClient()
		mock.SetDefaultResponse(&llm.Response{
			Content:    "The tutor is offline right now, but simulation and challenges still work. Configure an API key to enable tutoring.",
			StopReason: "end",
		})
		return mock
	}

	client, err := llm.NewOpenAIClient(llm.OpenAIConfig{
		APIKey:         apiKey,
		Model:          cfg.Model,
		BaseURL:        cfg.BaseURL,
		RequestTimeout: cfg.RequestTimeout,
	})
	if err != nil {
		// Only reachable on empty key, which is handled above.
		slog.Error("Failed to build reasoning client", "error", err)
		return llm.NewMockClient()
	}
	return client
}

func runServe(ctx context.Context) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if portFlag > 0 {
		cfg.Server.Port = portFlag
	}

	level := logging.LevelInfo
	if debugMode {
		level = logging.LevelDebug
	}
	logger := logging.New(logging.Config{
		Level:   level,
		Service: "tutor",
		JSON:    !debugMode,
	})
	defer logger.Close()
	slog.SetDefault(logger.Slog())

	if debugMode {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	cleanup, err := initTracer(ctx)
	if err != nil {
		return fmt.Errorf("setup tracer: %w", err)
	}
	defer cleanup(context.Background())

	st, err := store.Open(storeConfig(cfg.Store.Path))
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	pipeline := quantum.NewPipeline(quantum.WithShots(cfg.Simulation.Shots))
	challengeSvc, err := challenges.NewService(st, pipeline, cfg.Simulation.PassThreshold)
	if err != nil {
		return fmt.Errorf("challenge service: %w", err)
	}

	registry, err := tools.NewDefaultRegistry(tools.Deps{Store: st, Challenges: challengeSvc})
	if err != nil {
		return fmt.Errorf("tool registry: %w", err)
	}
	executor := tools.NewExecutor(registry, cfg.Agent.ToolTimeout, slog.Default())

	loop, err := agent.NewLoop(newReasoningClient(cfg.LLM), registry, executor,
		agent.WithMaxIterations(cfg.Agent.MaxIterations),
		agent.WithTurnTimeout(cfg.Agent.TurnTimeout),
		agent.WithLogger(slog.Default()),
	)
	if err != nil {
		return fmt.Errorf("agent loop: %w", err)
	}

	metrics := observability.InitMetrics()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))

	routes.SetupRoutes(router, routes.Deps{
		Loop:           loop,
		Challenges:     challengeSvc,
		Store:          st,
		Metrics:        metrics,
		DefaultShots:   cfg.Simulation.Shots,
		RateLimitRPS:   cfg.Server.RateLimitRPS,
		RateLimitBurst: cfg.Server.RateLimitBurst,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.RequestTimeout,
		WriteTimeout: cfg.Server.RequestTimeout,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		slog.Info("Starting QuantumIQ server", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		slog.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}
