package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"

	"github.com/iliyamo/class-schedule/internal/config"
	"github.com/iliyamo/class-schedule/internal/crosslist"
	"github.com/iliyamo/class-schedule/internal/handler"
	"github.com/iliyamo/class-schedule/internal/logger"
	"github.com/iliyamo/class-schedule/internal/middleware"
	"github.com/iliyamo/class-schedule/internal/repository"
	"github.com/iliyamo/class-schedule/internal/router"
	"github.com/iliyamo/class-schedule/internal/search"
	queue_publisher "github.com/iliyamo/class-schedule/internal/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	setupLogger(cfg)

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		logger.Warn().Msg("redis unavailable; output cache and rate limiting disabled")
	} else {
		defer rdb.Close()
	}

	catalog := repository.NewCatalogRepo(db)
	schedule := repository.NewScheduleRepo(db)

	opts := []search.Option{search.WithNavigation(cfg.NavQuarters, cfg.NavTTL)}
	if qc := config.LoadQueueConfig(); qc.Prefetch {
		opts = append(opts, search.WithSeatPrefetch(queue_publisher.NewSeatRefreshPublisher(qc.URL, qc.Queue, "search"), qc.PrefetchTimeout))
	}
	svc := search.NewService(catalog, repository.NewSearchRepo(db), schedule, opts...)

	checks := map[string]handler.Check{"mysql": db.PingContext}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RequestLogger())
	router.RegisterRoutes(e, router.Deps{
		Search: handler.NewSearchHandler(svc, cfg.ContinuingEdURL),
		API: &handler.APIHandler{
			SubjectRepo:  repository.NewSubjectRepo(db),
			CourseRepo:   catalog,
			Resolver:     crosslist.NewResolver(repository.NewCrosslistRepo(db), catalog, schedule),
			Refresher:    newRefresher(cfg, schedule),
			FootnoteRepo: repository.NewMetaRepo(db),
		},
		Health:    handler.Health(checks),
		Cache:     middleware.NewRedisCache(config.LoadCacheConfig(), rdb),
		RateLimit: middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
		JWTSecret: cfg.JWTSecret,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("listening")
		errCh <- e.Start(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info().Msg("shutting down")
	return e.Shutdown(shutdownCtx)
}
