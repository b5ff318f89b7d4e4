package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/iliyamo/class-schedule/internal/logger"
	"github.com/iliyamo/class-schedule/internal/model"
)

// Handler processes one refresh request.
type Handler func(ctx context.Context, id model.ClassID) error

// Consumer reads SeatRefreshRequested events and hands them to a Handler.
type Consumer struct {
	url    string
	queue  string
	qos    int
	handle Handler
	log    zerolog.Logger
}

// NewConsumer returns a Consumer for queue at url.
func NewConsumer(url, queue string, qos int, h Handler) *Consumer {
	if queue == "" {
		queue = SeatRefreshQueue
	}
	if qos <= 0 {
		qos = 20
	}
	return &Consumer{url: url, queue: queue, qos: qos, handle: h, log: logger.With("seat-worker")}
}

// Run connects to the broker and consumes until ctx is done.  Broken
// connections are re-dialled with exponential backoff.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.log.Warn().Err(err).Dur("retry_in", backoff).Msg("failed to dial broker")
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consumeLoop(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.Warn().Err(err).Msg("consume loop ended, reconnecting")
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(c.qos, 0, false); err != nil {
		c.log.Warn().Err(err).Msg("set QoS failed")
	}
	if _, err := ch.QueueDeclare(c.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}
	c.log.Info().Str("queue", c.queue).Msg("consuming seat refresh requests")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := c.HandleMessage(ctx, d.Body); err != nil {
				c.log.Error().Err(err).Msg("handle seat refresh failed")
				// reject without requeue to avoid tight loops
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// HandleMessage decodes one message body and runs the handler.
func (c *Consumer) HandleMessage(ctx context.Context, body []byte) error {
	var ev SeatRefreshRequested
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	id, err := model.ParseClassID(ev.ClassID)
	if err != nil {
		return err
	}
	if err := c.handle(ctx, id); err != nil {
		return fmt.Errorf("refresh %s: %w", id, err)
	}
	c.log.Debug().Str("class_id", id.String()).Str("source", ev.Source).Msg("seat refresh handled")
	return nil
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
