package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/entarch/archcat-go/internal/auth"
	"github.com/entarch/archcat-go/internal/database"
	"github.com/entarch/archcat-go/internal/metrics"
	"github.com/entarch/archcat-go/internal/server"
	"github.com/entarch/archcat-go/internal/suggest"
	"github.com/entarch/archcat-go/pkg/catalog"
	"github.com/entarch/archcat-go/pkg/logger"
)

var (
	libsqlURL   = flag.String("libsql-url", "", "libSQL database URL (default: file:./archcat.db)")
	authToken   = flag.String("auth-token", "", "Authentication token for remote databases")
	transport   = flag.String("transport", "stdio", "Transport to use: stdio or sse")
	addr        = flag.String("addr", ":8080", "Address to listen on when using SSE transport")
	sseEndpoint = flag.String("sse-endpoint", "/sse", "SSE endpoint path when using SSE transport")
)

func main() {
	flag.Parse()
	_ = godotenv.Load()

	if err := logger.Init(os.Getenv("ENV")); err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.Get()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("received shutdown signal, closing server")
		cancel()
	}()

	cfg := catalog.LoadConfig()
	if *libsqlURL != "" {
		cfg.URL = *libsqlURL
	}
	if *authToken != "" {
		cfg.AuthToken = *authToken
	}

	// Initialize metrics (noop if disabled)
	metrics.InitFromEnv()

	db, err := database.NewDBManager(&database.Config{URL: cfg.URL, AuthToken: cfg.AuthToken})
	if err != nil {
		log.Fatal("failed to open catalog database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Warn("error closing database", zap.Error(err))
		}
	}()

	engine, err := suggest.NewEngine(db.SuggestStore(), suggest.Config{
		Weights:   cfg.Weights,
		TopN:      cfg.TopN,
		MinSignal: cfg.MinSignal,
	})
	if err != nil {
		log.Fatal("invalid suggestion configuration", zap.Error(err))
	}

	mcpServer := server.NewMCPServer(db, engine, auth.NewManager(db), log)

	log.Info("starting archcat MCP server", zap.String("transport", *transport))
	switch *transport {
	case "stdio":
		go func() {
			if err := mcpServer.Run(ctx); err != nil {
				log.Warn("server error", zap.Error(err))
			}
		}()
	case "sse":
		go func() {
			if err := mcpServer.RunSSE(ctx, *addr, *sseEndpoint); err != nil {
				log.Warn("SSE server error", zap.Error(err))
			}
		}()
	default:
		log.Fatal("unknown transport", zap.String("transport", *transport))
	}

	<-ctx.Done()

	log.Info("server stopped")
}
