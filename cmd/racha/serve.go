package main

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/racha-app/racha/internal/config"
	"github.com/racha-app/racha/internal/server"
	"github.com/racha-app/racha/internal/session"
	"github.com/racha-app/racha/internal/store"
	"github.com/racha-app/racha/internal/web"
)

var serveDev bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web server",
	Long:  "Apply pending migrations, then serve the web application until interrupted.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

func init() {
	serveCmd.Flags().BoolVar(&serveDev, "dev", false, "development mode: human-readable logs")
}

func serve() error {
	logger, err := newLogger(serveDev)
	if err != nil {
		return err
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	st, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}

	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return fmt.Errorf("failed to migrate: %w", err)
	}

	sessStore, err := newSessionStore(cfg, st)
	if err != nil {
		st.Close()
		return err
	}

	sessions := session.DefaultConfig(sessStore)
	sessions.MaxAge = cfg.SessionMaxAge
	sessions.Secure = cfg.CookieSecure

	render, err := web.NewRenderer(logger)
	if err != nil {
		st.Close()
		return err
	}

	handler := web.NewHandler(st, sessions, render, logger)

	srv, err := server.New(server.DefaultConfig(cfg.BindAddr, handler.Router()))
	if err != nil {
		st.Close()
		return err
	}

	shutdown := server.NewGracefulShutdown(srv, logger)
	shutdown.RegisterHook(func(ctx context.Context) error {
		return sessStore.Close()
	})
	shutdown.RegisterHook(func(ctx context.Context) error {
		return st.Close()
	})

	return shutdown.Start()
}

func newLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func newSessionStore(cfg *config.Config, st *store.Store) (session.Store, error) {
	switch cfg.SessionBackend {
	case "memory":
		return session.NewMemoryStore(), nil
	case "database":
		return session.NewDatabaseStore(session.DefaultDatabaseConfig(st.DB()))
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		return session.NewRedisStoreFromClient(client, ""), nil
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.SessionBackend)
	}
}
