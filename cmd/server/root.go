package main

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/iliyamo/class-schedule/internal/config"
	"github.com/iliyamo/class-schedule/internal/database"
	"github.com/iliyamo/class-schedule/internal/logger"
	"github.com/iliyamo/class-schedule/internal/repository"
	"github.com/iliyamo/class-schedule/internal/seats"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "class-schedule",
	Short: "Class schedule search service",
	Long: `class-schedule serves the public class schedule: faceted section search,
subject and course listings, cross-listed sections and live seat counts.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// a missing .env is fine; the environment may already be set
		_ = godotenv.Load(envFile)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading configuration")
	rootCmd.AddCommand(serveCmd, workerCmd, tokenCmd)
}

func setupLogger(cfg config.Config) {
	logger.Configure(logger.Config{Level: logger.Level(cfg.LogLevel), Pretty: cfg.LogPretty})
}

func openDB(cfg config.Config) (*sql.DB, error) {
	db, err := database.Open(database.Options{
		User: cfg.DBUser,
		Pass: cfg.DBPass,
		Host: cfg.DBHost,
		Port: cfg.DBPort,
		Name: cfg.DBName,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}

// newRefresher wires the seat refresh path shared by the API and the
// worker: scraper behind a circuit breaker, MySQL snapshots and a Redis
// lock that falls back to an in-process one.
func newRefresher(cfg config.Config, store *repository.ScheduleRepo) *seats.Refresher {
	sc := config.LoadSeatLookupConfig()

	lookup := seats.Disabled
	if sc.Enabled {
		lookup = seats.NewBreakerLookup(
			seats.NewHTTPLookup(&http.Client{}, sc.URLTemplate, sc.Selector, sc.UserAgent, sc.Timeout),
			seats.BreakerSettings{
				MaxRequests:  sc.BreakerMaxRequests,
				Interval:     sc.BreakerInterval,
				Timeout:      sc.BreakerTimeout,
				FailureRatio: sc.BreakerFailureRatio,
			},
		)
	}
	rdb := config.NewRedisClient()
	if rdb == nil {
		logger.Warn().Msg("redis unavailable; seat locks are process local")
	}
	locker := seats.NewRedisLocker(rdb, "cs:lock", sc.LockTTL)

	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		logger.Warn().Err(err).Str("tz", cfg.TimeZone).Msg("unknown time zone; using UTC")
		loc = time.UTC
	}
	return seats.NewRefresher(lookup, store, locker, seats.WithLocation(loc))
}
