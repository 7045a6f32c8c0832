package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"campus_chat/internal/api"
	"campus_chat/internal/logger"
	"campus_chat/internal/repository"
	"campus_chat/internal/service"
	"campus_chat/internal/storage"
	"campus_chat/internal/utils"
	"campus_chat/pkg/config"
)

func main() {
	// 載入應用程式配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zlog := logger.New(cfg.Env)
	defer zlog.Sync()

	if cfg.DotEnvLoaded {
		zlog.Info("Loaded configuration from .env file")
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 初始化 repositories
	var repos *repository.Repositories
	switch cfg.DB.Driver {
	case "memory":
		zlog.Warn("Using in-memory storage, data is lost on restart")
		repos = repository.NewMemoryRepositories()
	default:
		db, err := storage.NewPostgresDB(cfg.DB.Host, cfg.DB.User, cfg.DB.Password, cfg.DB.Name, cfg.DB.Port, cfg.DB.TimeZone)
		if err != nil {
			zlog.Fatal("Failed to initialize database", zap.Error(err))
		}
		// 確保在程序結束時關閉數據庫連接
		defer db.Close()

		if err := db.Migrate(ctx, zlog.Named("migrate")); err != nil {
			zlog.Fatal("Failed to migrate database", zap.Error(err))
		}
		repos = repository.NewRepositories(db)
	}

	// 初始化 services
	tokens := utils.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Expiration)
	services := service.NewServices(repos, tokens, cfg.WS, cfg.Admin, zlog)

	router := api.NewRouter(services, cfg.Server.AllowedOrigins, zlog)
	srv := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: router,
	}

	go func() {
		zlog.Info("Starting server",
			zap.String("address", cfg.Server.Address),
			zap.String("environment", cfg.Env),
			zap.String("db_driver", cfg.DB.Driver),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("Failed to run server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zlog.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("Server shutdown failed", zap.Error(err))
	}
}
