// Package queue_publisher publishes seat refresh requests to RabbitMQ.
// Errors are logged and returned so callers may ignore them without
// interrupting the request that triggered the publish.
package queue_publisher

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/iliyamo/class-schedule/internal/logger"
	"github.com/iliyamo/class-schedule/internal/model"
	q "github.com/iliyamo/class-schedule/internal/queue"
)

// SeatRefreshPublisher sends SeatRefreshRequested events.
type SeatRefreshPublisher struct {
	url    string
	queue  string
	source string
	now    func() time.Time
	log    zerolog.Logger
}

// NewSeatRefreshPublisher returns a publisher for queue at url.  source is
// stamped on every event.
func NewSeatRefreshPublisher(url, queue, source string) *SeatRefreshPublisher {
	if queue == "" {
		queue = q.SeatRefreshQueue
	}
	return &SeatRefreshPublisher{url: url, queue: queue, source: source, now: time.Now, log: logger.With("queue")}
}

// Encode builds the persistent publishing for one event.
func (p *SeatRefreshPublisher) Encode(id model.ClassID) (amqp.Publishing, error) {
	now := p.now()
	body, err := json.Marshal(q.NewSeatRefreshRequested(id, p.source, now))
	if err != nil {
		return amqp.Publishing{}, err
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    now.UTC(),
		MessageId:    id.String(),
		Body:         body,
	}, nil
}

// EnqueueSeatRefresh publishes one event per id over a single connection.
func (p *SeatRefreshPublisher) EnqueueSeatRefresh(ctx context.Context, ids []model.ClassID) error {
	if len(ids) == 0 {
		return nil
	}
	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.log.Warn().Err(err).Msg("rabbitmq dial failed")
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.log.Warn().Err(err).Msg("rabbitmq channel open failed")
		return err
	}
	defer func() { _ = ch.Close() }()

	// durable so requests survive broker restarts
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		p.log.Warn().Err(err).Str("queue", p.queue).Msg("rabbitmq queue declare failed")
		return err
	}

	for _, id := range ids {
		pub, err := p.Encode(id)
		if err != nil {
			return err
		}
		if err := ch.PublishWithContext(ctx, "", p.queue, false, false, pub); err != nil {
			p.log.Warn().Err(err).Str("class_id", id.String()).Msg("rabbitmq publish failed")
			return err
		}
	}
	return nil
}
