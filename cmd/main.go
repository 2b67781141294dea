package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	httpctx "github.com/chatline/chatline-server/internal/api/http/context"
	"github.com/chatline/chatline-server/internal/api/http/router"
	"github.com/chatline/chatline-server/internal/api/ws"
	"github.com/chatline/chatline-server/internal/config"
	"github.com/chatline/chatline-server/internal/delivery"
	"github.com/chatline/chatline-server/internal/logger"
	"github.com/chatline/chatline-server/internal/metrics"
	"github.com/chatline/chatline-server/internal/model"
	"github.com/chatline/chatline-server/internal/presence"
	"github.com/chatline/chatline-server/internal/repository/postgres"
	"github.com/chatline/chatline-server/internal/server"
	"github.com/chatline/chatline-server/internal/service"
	storage "github.com/chatline/chatline-server/internal/storage/minio"
	"github.com/chatline/chatline-server/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	metrics.Register()

	db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize storage", "error", err)
	}
	defer db.Close()

	userRepo := postgres.NewUserRepository(db)
	messageRepo := postgres.NewMessageRepository(db)
	tokenManager := token.NewJWT(cfg.JWT.Secret)

	minioClient, err := minio.New(cfg.Storage.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Storage.AccessKey, cfg.Storage.SecretKey, ""),
		Secure: cfg.Storage.UseSSL,
	})
	if err != nil {
		logger.Fatal("failed to create minio client", "error", err)
	}
	storageClient, err := storage.NewClient(ctx, minioClient, cfg.Storage.Bucket, mediaPublicURL(cfg.Storage))
	if err != nil {
		logger.Fatal("failed to initialize storage client", "error", err)
	}

	registry := presence.NewRegistry()
	dispatcher := delivery.NewDispatcher(registry, logger)
	ctxMgr := httpctx.NewManager()

	chatService := service.NewChat(messageRepo, userRepo, storageClient, dispatcher, logger)
	tokenService := service.NewTokenService(tokenManager, logger)
	gateway := ws.NewGateway(registry, ctxMgr, cfg.WS.SendQueueSize, cfg.WS.WriteTimeout, logger)

	handler := router.New(chatService, tokenService, gateway, ctxMgr, logger).Register()
	httpServer := server.NewHTTPServer(handler, fmt.Sprintf(":%s", cfg.HTTP.Port))

	var sl model.SecurityLayer
	if cfg.HTTP.EnableHTTPS {
		sl = server.NewTLSListener(cfg.HTTP.CertFileName, cfg.HTTP.PrivateKeyFileName)
	} else {
		sl = server.NewPlainListener()
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func(s model.Server) {
		defer wg.Done()
		logger.Info("Starting server on", "address", s.Address())
		if err := s.Start(sl); err != nil {
			logger.Error("failed to start server", "error", err)
		}
	}(httpServer)

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err, "address", httpServer.Address())
	}

	// Shutdown drops every websocket; their handlers unregister themselves.
	for _, conn := range registry.Drain() {
		conn.Close()
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

// mediaPublicURL derives the base URL embedded into message image links when
// no explicit override is configured.
func mediaPublicURL(cfg config.Storage) string {
	if cfg.PublicURL != "" {
		return cfg.PublicURL
	}
	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s", scheme, cfg.Endpoint)
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
