package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/network/netpoll"
	"github.com/spf13/cobra"

	"github.com/lvyanru/weather-apiserver/internal/config"
	"github.com/lvyanru/weather-apiserver/internal/handler"
	"github.com/lvyanru/weather-apiserver/internal/infrastructure/generation"
	"github.com/lvyanru/weather-apiserver/internal/router"
	"github.com/lvyanru/weather-apiserver/internal/session"
	"github.com/lvyanru/weather-apiserver/internal/streaming"
	"github.com/lvyanru/weather-apiserver/internal/usecase"
	"github.com/lvyanru/weather-apiserver/pkg/logger"
)

var (
	cfgFile string
	version = "0.1.0"
)

var rootCmd = &cobra.Command{
	Use:   "weather-apiserver",
	Short: "Weather assistant API server with session-aware streaming chat",
	Long: `Weather API Server is an HTTP API server built with the Hertz framework.
It keeps per-user conversation sessions in memory, enriches prompts with
location and unit context, and streams assistant answers over SSE.`,
	Version: version,
	Run:     runServer,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "configs/config.yaml", "path to config file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

func runServer(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	appLogger, err := logger.Setup(logger.Options{
		Level:     cfg.Log.Level,
		Format:    cfg.Log.Format,
		Output:    cfg.Log.Output,
		FilePath:  cfg.Log.FilePath,
		AddSource: cfg.Log.AddSource,
	})
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}

	slog.Info("weather apiserver starting",
		"version", version,
		"config", cfgFile,
	)

	// Route Hertz framework logs through slog.
	hlog.SetLogger(logger.NewHlogAdapter(appLogger))

	// Session store with background eviction.
	store := session.NewStore(session.Config{
		TTL:             cfg.Session.TTL,
		CleanupInterval: cfg.Session.CleanupInterval,
	}, session.SystemClock(), appLogger)

	// Generation backend.
	genClient, err := generation.NewClient(generation.Config{
		BaseURL: cfg.Assistant.BaseURL,
		APIKey:  cfg.Assistant.APIKey,
		Model:   cfg.Assistant.Model,
		Timeout: cfg.Assistant.Timeout,
	}, appLogger)
	if err != nil {
		slog.Error("failed to create generation client", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := genClient.Ping(ctx); err != nil {
		slog.Warn("generation backend check failed, chat may not work", "error", err)
	}
	cancel()

	engine := streaming.NewEngine(streaming.Config{
		ChunkSize:         cfg.Streaming.ChunkSize,
		Pacing:            cfg.Streaming.Pacing,
		HeartbeatCount:    cfg.Streaming.HeartbeatCount,
		HeartbeatInterval: cfg.Streaming.HeartbeatInterval,
	}, appLogger)

	chatUsecase := usecase.NewChatUsecase(store, genClient, engine, session.SystemClock(), appLogger)

	chatHandler := handler.NewChatHandler(chatUsecase, appLogger)
	sessionHandler := handler.NewSessionHandler(chatUsecase, appLogger)
	healthHandler := handler.NewHealthHandler(genClient)

	h := server.Default(
		server.WithHostPorts(cfg.GetServerAddr()),
		server.WithReadTimeout(cfg.Server.ReadTimeout),
		server.WithWriteTimeout(cfg.Server.WriteTimeout),
		server.WithMaxRequestBodySize(cfg.Server.MaxRequestBodySize),
		server.WithTransport(netpoll.NewTransporter),
	)

	router.Setup(h, chatHandler, sessionHandler, healthHandler)

	slog.Info("server started",
		"address", cfg.GetServerAddr(),
		"mode", cfg.Server.Mode,
	)

	go func() {
		if err := h.Run(); err != nil {
			slog.Error("server run failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := h.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown failed", "error", err)
		os.Exit(1)
	}

	// Stop the session janitor.
	store.Close()

	slog.Info("server stopped gracefully")
}
