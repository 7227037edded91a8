package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"git.ruekov.eu/ruakij/chat-relay/cmd/api/config"
	"git.ruekov.eu/ruakij/chat-relay/cmd/api/logger"
	"git.ruekov.eu/ruakij/chat-relay/cmd/api/router"
	"git.ruekov.eu/ruakij/chat-relay/cmd/api/service"
	"git.ruekov.eu/ruakij/chat-relay/cmd/api/telemetry"
	"git.ruekov.eu/ruakij/chat-relay/cmd/api/wrapper"
	"github.com/gin-gonic/gin"
	"github.com/spf13/pflag"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(pflag.CommandLine)
	if err != nil {
		logger.Error.Fatal(err)
	}

	logFile, err := logger.Init(cfg.LogFile)
	if err != nil {
		logger.Error.Fatalf("Error opening log file: %s", err)
	}
	defer logFile.Close()
	gin.DefaultWriter = logger.Info.Writer()
	gin.DefaultErrorWriter = logger.Error.Writer()

	shutdownTracing, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName: "chat-relay",
		Disable:     !cfg.TracingEnabled,
	})
	if err != nil {
		logger.Error.Fatalf("Error setting up tracing: %s", err)
	}
	defer shutdownTracing(context.Background())

	if cfg.APIKey == "" {
		logger.Warn.Println("OPENROUTER_API_KEY is not set, upstream requests will be rejected")
	}

	// Setup services
	upstream := wrapper.NewOpenRouterWrapper(wrapper.Config{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
		Referer: cfg.Referer,
		Title:   cfg.Title,
	})
	chatService := service.NewChatService(upstream)

	// Setup Router
	logger.Info.Println("Setup router..")
	engine, err := router.New(chatService, router.Options{
		AllowOrigins:   cfg.AllowOrigins,
		TrustedProxies: cfg.TrustedProxies,
	})
	if err != nil {
		logger.Error.Fatalf("Error setting up router: %s", err)
	}

	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: engine,
	}

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		logger.Info.Println("Shutting down..")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn.Printf("Shutdown incomplete: %s", err)
		}
	}()

	logger.Info.Printf("Start router on %s (model %s)..", cfg.ListenAddr, cfg.Model)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error.Fatal(err)
	}
	<-shutdownDone
}
