package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/iliyamo/class-schedule/internal/config"
	"github.com/iliyamo/class-schedule/internal/logger"
	"github.com/iliyamo/class-schedule/internal/model"
	"github.com/iliyamo/class-schedule/internal/queue"
	"github.com/iliyamo/class-schedule/internal/repository"
)

var workerCmd = &cobra.Command{
	Use:   "seat-worker",
	Short: "Consume seat refresh requests from RabbitMQ",
	RunE:  runWorker,
}

func runWorker(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	setupLogger(cfg)
	qc := config.LoadQueueConfig()

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	refresher := newRefresher(cfg, repository.NewScheduleRepo(db))
	consumer := queue.NewConsumer(qc.URL, qc.Queue, qc.ConsumerQoS, func(ctx context.Context, id model.ClassID) error {
		res, err := refresher.Refresh(ctx, id)
		if err != nil {
			return err
		}
		logger.Debug().Str("class_id", id.String()).Bool("refreshed", res.Refreshed).Msg("seat refresh handled")
		return nil
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info().Str("queue", qc.Queue).Msg("seat worker started")
	if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
