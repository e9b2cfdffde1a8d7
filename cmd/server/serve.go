package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/iliyamo/food-ordering-assistant/internal/assistant"
	"github.com/iliyamo/food-ordering-assistant/internal/cache"
	"github.com/iliyamo/food-ordering-assistant/internal/config"
	"github.com/iliyamo/food-ordering-assistant/internal/conversation"
	"github.com/iliyamo/food-ordering-assistant/internal/database"
	"github.com/iliyamo/food-ordering-assistant/internal/handler"
	"github.com/iliyamo/food-ordering-assistant/internal/repository"
	"github.com/iliyamo/food-ordering-assistant/internal/router"
	"github.com/iliyamo/food-ordering-assistant/internal/service"
	"github.com/iliyamo/food-ordering-assistant/internal/tools"
)

func newServeCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the chat API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			logger := newLogger(cfg.Env, v.GetString("LOG_LEVEL"))
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, logger)
		},
	}
}

func serve(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient(cfg.Redis)
	if rdb == nil {
		logger.Warn("redis unavailable; rate limiting disabled", "addr", cfg.Redis.Addr)
	} else {
		defer rdb.Close()
	}
	history := newHistoryStore(cfg.Assistant, rdb, logger)

	catalog := cache.NewService(cfg.Cache)
	catalog.SetLogger(logger.With("component", "cache"))

	var ledger tools.Ledger
	switch {
	case !cfg.Assistant.RequirePreview:
	case rdb != nil:
		ledger = tools.NewRedisLedger(rdb, cfg.Assistant.PreviewTTL)
	default:
		ledger = tools.NewMemoryLedger(cfg.Assistant.PreviewTTL)
	}
	svc := tools.NewService(tools.Deps{
		Restaurants:        repository.NewRestaurantRepo(db),
		Menus:              repository.NewMenuRepo(db),
		Items:              repository.NewItemRepo(db),
		Orders:             repository.NewOrderRepo(db),
		Cache:              catalog,
		Events:             service.NewOrderPublisher(cfg.RabbitURL, logger),
		Ledger:             ledger,
		Logger:             logger.With("component", "tools"),
		Location:           cfg.Assistant.Location(),
		IncludeUnavailable: cfg.Env == "dev",
	})
	policy, err := tools.ParsePolicy(cfg.Assistant.ToolFailurePolicy)
	if err != nil {
		return err
	}
	dispatcher, err := tools.NewDispatcher(svc.Handlers(), policy, logger)
	if err != nil {
		return err
	}

	llm, err := assistant.NewGoogleAI(ctx, cfg.Assistant)
	if err != nil {
		return fmt.Errorf("model client: %w", err)
	}
	session := assistant.NewSession(llm, dispatcher, history,
		assistant.WithTimeout(cfg.RequestTimeout),
		assistant.WithLogger(logger.With("component", "assistant")),
	)

	e := router.New(cfg, router.Handlers{
		Health: &handler.HealthHandler{DB: db},
		Chat:   &handler.ChatHandler{Session: session, History: history},
		Orders: &handler.OrderHandler{Orders: svc},
		Cache:  &handler.CacheHandler{Cache: catalog},
	}, rdb, logger)

	errCh := make(chan error, 1)
	go func() { errCh <- e.Start(":" + cfg.Port) }()
	logger.Info("listening", "port", cfg.Port, "env", cfg.Env, "model", cfg.Assistant.Model, "policy", cfg.Assistant.ToolFailurePolicy)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// newHistoryStore keeps conversations in Redis when it is configured and
// reachable, and in process memory otherwise.
func newHistoryStore(cfg config.AssistantConfig, rdb *redis.Client, logger *slog.Logger) conversation.Store {
	opts := conversation.Options{TTL: cfg.HistoryTTL, MaxTurns: cfg.HistoryMaxTurns}
	if cfg.HistoryBackend == "redis" && rdb != nil {
		return conversation.NewRedisStore(rdb, opts)
	}
	if cfg.HistoryBackend == "redis" {
		logger.Warn("conversation history kept in memory")
	}
	return conversation.NewMemoryStore(opts)
}
