package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"warbler/docs" // swagger docs
	"warbler/internal/auth"
	"warbler/internal/cache"
	"warbler/internal/config"
	"warbler/internal/db"
	"warbler/internal/handler"
	"warbler/internal/repository"
	"warbler/internal/router"
	"warbler/internal/service"
)

// @title Warbler API
// @version 1.0
// @description Short message social network: accounts, messages and follows.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey SessionAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token, or send the session cookie.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	setupLogger(cfg.LogLevel, cfg.IsProduction())

	gormDB, err := db.Open(cfg.DBDriver, cfg.DBDSN, cfg.DBLogLevel)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	log.Info().Str("driver", cfg.DBDriver).Msg("Database connection established")

	if cfg.ResetDB {
		log.Warn().Msg("RESET_DB=true detected, dropping all tables")
		if err := db.Reset(gormDB); err != nil {
			log.Fatal().Err(err).Msg("Failed to drop tables")
		}
	}

	if err := db.Migrate(gormDB); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 3*time.Second)
	if err := cacheClient.Ping(pingCtx); err != nil {
		log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("Redis unreachable, sign-in will fail until it is back")
	}
	cancelPing()

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	messageRepo := repository.NewMessageRepository(gormDB)
	followsRepo := repository.NewFollowsRepository(gormDB)

	// Initialize auth components
	tokenService := auth.NewTokenService(cfg.SessionSecret, cfg.SessionTTL)
	sessionStore := auth.NewSessionStore(cacheClient, cfg.SessionTTL)

	// Initialize services
	authService, err := service.NewAuthService(userRepo, tokenService, sessionStore, service.NewCredentialValidator(), service.AuthOptions{
		BcryptCost:            cfg.BcryptCost,
		DefaultImageURL:       cfg.DefaultImageURL,
		DefaultHeaderImageURL: cfg.DefaultHeaderImageURL,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create auth service")
	}
	userService := service.NewUserService(userRepo, messageRepo, sessionStore, cacheClient)
	messageService := service.NewMessageService(messageRepo)
	followService := service.NewFollowService(userRepo, followsRepo)

	// Initialize handlers
	cookie := handler.CookieConfig{Name: cfg.SessionCookie, Secure: cfg.IsProduction()}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	router.Register(e, cfg, authService, router.Handlers{
		Auth:    handler.NewAuthHandler(authService, cookie),
		User:    handler.NewUserHandler(userService, cookie),
		Message: handler.NewMessageHandler(messageService),
		Follow:  handler.NewFollowHandler(followService),
	})

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.SwaggerHost
	}
	log.Info().Str("url", "http://"+docs.SwaggerInfo.Host+"/swagger/index.html").Msg("Swagger documentation available")

	addr := ":" + cfg.ServerPort
	go func() {
		log.Info().Str("addr", addr).Msg("Starting server")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	if sqlDB, err := gormDB.DB(); err == nil {
		_ = sqlDB.Close()
	}

	log.Info().Msg("Server exited")
}

// setupLogger configures zerolog logger
func setupLogger(level string, production bool) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if !production {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	zerolog.DefaultContextLogger = &log.Logger

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
