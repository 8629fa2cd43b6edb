package main

import (
	"context"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mindmate/backend/ai"
	"mindmate/backend/internal/models"
	"mindmate/backend/pkg/config"
	"mindmate/backend/pkg/di"
	"mindmate/backend/pkg/logger"
	"mindmate/backend/pkg/router"
	"mindmate/backend/pkg/secrets"
	"mindmate/backend/shared/observability"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		stdlog.Println("No .env file found")
	}

	cfg := config.New()

	logConfig := logger.DefaultConfig()
	logConfig.Level = cfg.Logging.Level
	logConfig.JSON = cfg.Logging.Format != "text"
	log := logger.New(logConfig)
	logger.SetGlobal(log)

	log.Info("Starting application", "env", cfg.Server.Env)

	db, err := config.NewDB()
	if err != nil {
		log.LogError(err, "Failed to initialize database")
		os.Exit(1)
	}

	if err := db.AutoMigrate(
		&models.UserProfile{},
		&models.Character{},
		&models.ChatSession{},
		&models.Message{},
		&models.Content{},
		&models.ContentMessage{},
		&models.ContentParticipation{},
	); err != nil {
		log.LogError(err, "Failed to migrate database")
		os.Exit(1)
	}

	if err := secrets.Init(log); err != nil {
		log.LogError(err, "Failed to initialize secrets manager")
		os.Exit(1)
	}

	ctx := context.Background()
	apiKey, err := secrets.GetSecret(ctx, "gemini-api-key")
	if err != nil {
		log.LogError(err, "Failed to load the completion API key")
		os.Exit(1)
	}
	cfg.JWT.Secret = secrets.GetSecretWithDefault(ctx, "jwt-secret", cfg.JWT.Secret)

	completer, err := ai.NewGeminiClient(ctx, ai.GeminiConfig{
		APIKey: apiKey,
		Model:  cfg.Gemini.Model,
	})
	if err != nil {
		log.LogError(err, "Failed to create completion client")
		os.Exit(1)
	}

	shutdownTracing := observability.SetupTracing("mindmate-backend")
	defer shutdownTracing()
	observability.SetupMetrics()

	container := di.New(db, cfg, completer, log)
	container.Health.Start()

	r := router.New(container)
	r.SetupRoutes()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r.Engine,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout + cfg.Gemini.Timeout,
	}

	go func() {
		log.Info("Server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.LogError(err, "Server failed to start")
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.LogError(err, "Server forced to shutdown")
	}

	log.Info("Server exited gracefully")
}
