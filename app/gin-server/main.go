package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/yoockh/mockinterview/config"
	"github.com/yoockh/mockinterview/internal/api/handlers"
	"github.com/yoockh/mockinterview/internal/api/middleware"
	"github.com/yoockh/mockinterview/internal/api/routes"
	"github.com/yoockh/mockinterview/internal/cache"
	"github.com/yoockh/mockinterview/internal/generator"
	"github.com/yoockh/mockinterview/internal/logger"
	"github.com/yoockh/mockinterview/internal/providers/llm"
	pgrepo "github.com/yoockh/mockinterview/internal/repositories/postgres"
	"github.com/yoockh/mockinterview/internal/services"
	"github.com/yoockh/mockinterview/internal/utils"
)

func main() {
	_ = godotenv.Load()

	if err := run(); err != nil {
		logrus.WithError(err).Fatal("server exited")
	}
}

// run owns every resource so that its defers run before main exits.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	log := logger.New(cfg.LogLevel, cfg.Debug)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Init PostgreSQL
	db, err := config.InitPostgres(cfg.DatabaseURL, cfg.Debug)
	if err != nil {
		return fmt.Errorf("postgres init: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	if err := config.Migrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	log.Info("PostgreSQL connected")

	// Init Redis; the API works without it
	var c cache.Cache = cache.Nop{}
	if cfg.RedisURL != "" {
		rdb, err := config.InitRedis(ctx, cfg.RedisURL)
		if err != nil {
			log.WithError(err).Warn("Redis unavailable, caching disabled")
		} else {
			defer rdb.Close()
			c = cache.NewRedisCache(rdb, "mockinterview:")
			log.Info("Redis connected")
		}
	}

	provider, err := newProvider(ctx, cfg)
	if err != nil {
		return fmt.Errorf("llm provider init: %w", err)
	}
	if provider != nil {
		defer provider.Close()
	}
	gen := generator.New(provider, log, generator.WithRetries(uint64(cfg.LLMMaxRetries)))
	log.WithField("provider", cfg.LLMProvider).Info("generator ready")

	tokens, err := utils.NewTokenIssuer(cfg.JWTSecret, cfg.JWTAlgorithm, cfg.JWTExpiry())
	if err != nil {
		return fmt.Errorf("token issuer init: %w", err)
	}

	store := pgrepo.NewStore(db)
	users := services.NewUserService(store.Users, services.Identity{
		Email: cfg.DefaultUserEmail,
		Name:  cfg.DefaultUserName,
	}, tokens)
	interviews := services.NewInterviewService(store, users, gen, c, log)

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log), middleware.CORS(cfg.AllowedOrigins))

	routes.RegisterRoutes(r, routes.Deps{
		Interview: handlers.NewInterviewHandler(interviews),
		Session:   handlers.NewSessionHandler(users),
		Meta:      handlers.NewMetaHandler(cfg.AppName, cfg.AppVersion),
		Tokens:    tokens,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.WithField("port", cfg.Port).Info("server listening")
	if err := serve(ctx, srv, 10*time.Second); err != nil {
		return err
	}
	log.Info("server stopped")
	return nil
}

// serve runs srv until ctx is done, then shuts it down within grace. A listen failure
// is returned instead of ending the process.
func serve(ctx context.Context, srv *http.Server, grace time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// newProvider returns nil for LLM_PROVIDER=none.
func newProvider(ctx context.Context, cfg *config.Settings) (llm.Provider, error) {
	switch cfg.LLMProvider {
	case config.ProviderOpenAI:
		return llm.NewOpenAI(llm.OpenAIOptions{
			APIKey:      cfg.OpenAIAPIKey,
			BaseURL:     cfg.OpenAIBaseURL,
			Model:       cfg.OpenAIModel,
			Temperature: 0.7,
			MaxTokens:   2000,
			System:      generator.SystemPrompt,
		}), nil
	case config.ProviderVertex:
		return llm.NewVertexGemini(ctx, llm.VertexOptions{
			ProjectID:   cfg.VertexProject,
			Location:    cfg.VertexLocation,
			Model:       cfg.VertexModel,
			Temperature: 0.7,
			MaxTokens:   2000,
			System:      generator.SystemPrompt,
		})
	default:
		return nil, nil
	}
}
