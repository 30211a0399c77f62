package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"conferencecentral/config"
	_ "conferencecentral/docs"
	"conferencecentral/internal/adapters/auth"
	emailadapter "conferencecentral/internal/adapters/email"
	delivery "conferencecentral/internal/delivery/http"
	"conferencecentral/internal/delivery/http/controllers"
	"conferencecentral/internal/delivery/http/middleware"
	"conferencecentral/internal/domain"
	"conferencecentral/internal/repository/postgres"
	"conferencecentral/internal/repository/rediscache"
	"conferencecentral/internal/services"
)

// @title Conference Central API
// @version 1.0
// @description Organizer profiles, conference management, and seat booking.
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger := config.NewLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("failed to open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Error("failed to ping database", "err", err)
		os.Exit(1)
	}

	var identityRepo domain.IdentityRepository = postgres.NewIdentityRepository(db)
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Error("failed to parse redis URL", "err", err)
			os.Exit(1)
		}
		redisClient := redis.NewClient(opts)
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Error("failed to ping redis", "err", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		identityRepo = rediscache.NewIdentityCache(identityRepo, redisClient, logger)
		logger.Info("identity read-through cache enabled")
	}

	mailer, err := emailadapter.NewMailer(emailadapter.MailerConfig{
		Provider:        cfg.Mailer.Provider,
		FromAddress:     cfg.Mailer.FromAddress,
		FromName:        cfg.Mailer.FromName,
		Region:          cfg.Mailer.SESRegion,
		AccessKeyID:     cfg.Mailer.SESAccessKeyID,
		SecretAccessKey: cfg.Mailer.SESSecretKey,
	})
	if err != nil {
		logger.Error("failed to create mailer", "err", err)
		os.Exit(1)
	}

	store := postgres.NewStore(db)
	transactor := postgres.NewTransactor(db)

	emailService := services.NewEmailService(mailer, emailadapter.NewTemplateRenderer())
	identityResolver := services.NewIdentityService(identityRepo)
	profileService := services.NewProfileService(store, transactor)
	conferenceService := services.NewConferenceService(store, transactor, emailService, logger)

	verifier := auth.NewJWTVerifier(cfg.JWTSecret)
	profileController := controllers.NewProfileController(logger, identityResolver, profileService)
	conferenceController := controllers.NewConferenceController(logger, identityResolver, conferenceService)

	mux := delivery.NewRouter(profileController, conferenceController, verifier)
	var handler http.Handler = mux
	handler = middleware.LoggingMiddleware(logger, handler)
	handler = middleware.RequestID(handler)
	if len(cfg.CORSAllowedOrigins) > 0 {
		handler = middleware.CORS(cfg.CORSAllowedOrigins, handler)
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "err", err)
	}
}
