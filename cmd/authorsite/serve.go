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

	"github.com/spf13/cobra"
	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	"github.com/ericfisherdev/authorsite/internal/adapter/driven/emailjs"
	redisadapter "github.com/ericfisherdev/authorsite/internal/adapter/driven/redis"
	sqliteadapter "github.com/ericfisherdev/authorsite/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/authorsite/internal/adapter/driven/wordpress"
	httphandler "github.com/ericfisherdev/authorsite/internal/adapter/driving/http"
	webhandler "github.com/ericfisherdev/authorsite/internal/adapter/driving/web"
	"github.com/ericfisherdev/authorsite/internal/application"
	"github.com/ericfisherdev/authorsite/internal/config"
	"github.com/ericfisherdev/authorsite/internal/domain/port/driven"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, logger)
		},
	}
}

func serve(parent context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"cms_base_url", cfg.CMSBaseURL,
		"comments_per_page", cfg.CommentsPerPage,
		"cache_ttl", cfg.CacheTTL,
		"redis", cfg.RedisURL != "",
		"emailjs", cfg.HasEmailJS(),
	)

	// 1. Setup signal-based context (SIGINT, SIGTERM).
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Open database (dual reader/writer with WAL mode) and migrate.
	db, err := sqliteadapter.NewDB(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}
	logger.Info("database ready", "path", cfg.DBPath)

	health := application.NewHealthService(2 * time.Second)
	health.Register("database", func(ctx context.Context) error {
		return db.Ping(ctx)
	})

	// 3. Cache store: redis when configured, sqlite otherwise.
	cacheStore, closeCache, err := openCacheStore(ctx, cfg, db, health)
	if err != nil {
		return err
	}
	defer closeCache()

	if !cfg.HasSecretKey() {
		logger.Warn("AUTHORSITE_SECRET_KEY not set, author sign-in is disabled")
	}
	sessions := sqliteadapter.NewSessionRepo(db, cfg.SecretKey)

	// 4. External services.
	wp, err := wordpress.NewClient(cfg.CMSBaseURL, cfg.JWTBaseURL, cfg.CMSTimeout, logger)
	if err != nil {
		return err
	}

	var contact *application.ContactService
	if cfg.HasEmailJS() {
		mailer := emailjs.NewClient(cfg.EmailJS.BaseURL, emailjs.Credentials{
			ServiceID:  cfg.EmailJS.ServiceID,
			PublicKey:  cfg.EmailJS.PublicKey,
			PrivateKey: cfg.EmailJS.PrivateKey,
		}, cfg.CMSTimeout, logger)
		contact = application.NewContactService(mailer, cfg.EmailJS.ContactTemplate, cfg.EmailJS.BookingTemplate, logger)
	} else {
		logger.Warn("emailjs not configured, contact forms are disabled")
	}

	// 5. Application services.
	cache := application.NewCache(cacheStore, cfg.CacheTTL, nil, logger)
	colors := application.NewColorSampler(wp, logger)
	media := application.NewMediaService(wp, cache, colors, logger)
	content := application.NewContentService(wp, media, logger)
	feeds := application.NewFeedRegistry(wp, cfg.CommentsPerPage, cfg.CMSTimeout, cfg.FeedIdleTTL, nil, logger)
	defer feeds.Close()
	auth := application.NewAuthService(wp, sessions, nil, logger)
	comments := application.NewCommentService(wp, nil, logger)

	maintenance := application.NewMaintenanceService(auth, feeds, media, cfg.MaintenanceInterval, logger)
	go maintenance.Start(ctx)

	// 6. Handlers.
	mux := http.NewServeMux()
	httphandler.RegisterAPIRoutes(mux, httphandler.NewHandler(wp, media, health, cfg.CommentsPerPage, logger))

	site, err := webhandler.LoadSite()
	if err != nil {
		return err
	}
	web, err := webhandler.NewHandler(webhandler.Services{
		Content:  content,
		Media:    media,
		Comments: comments,
		Feeds:    feeds,
		Auth:     auth,
		Contact:  contact,
	}, site, cfg.SecureCookies, logger)
	if err != nil {
		return err
	}
	webhandler.RegisterRoutes(mux, web)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           httphandler.ApplyMiddleware(mux, logger),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// 7. Wait for shutdown signal or a listener failure.
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	// 8. Graceful shutdown with 10s timeout.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}

// openCacheStore returns the configured cache backend and registers its
// health check. The returned close func is always non-nil.
func openCacheStore(ctx context.Context, cfg *config.Config, db *sqliteadapter.DB, health *application.HealthService) (driven.CacheStore, func(), error) {
	if cfg.RedisURL == "" {
		return sqliteadapter.NewCacheRepo(db), func() {}, nil
	}

	client, err := redisadapter.Dial(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	health.Register("redis", func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	})
	closeFn := func() {
		if err := client.Close(); err != nil {
			slog.Error("error closing redis client", "error", err)
		}
	}
	return redisadapter.NewCacheStore(client, redisadapter.DefaultNamespace, cfg.CacheTTL), closeFn, nil
}
