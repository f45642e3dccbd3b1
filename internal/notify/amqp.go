package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"studio-booking/pkg/utils"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

type amqpNotifier struct {
	cfg utils.AMQPConfig
	log *zap.Logger
}

// NewAMQPNotifier publishes notification messages to a durable queue.
// Dial-per-publish keeps the publisher stateless; the caller treats every
// error as best-effort and only logs it.
func NewAMQPNotifier(cfg utils.AMQPConfig, log *zap.Logger) Notifier {
	return &amqpNotifier{
		cfg: cfg,
		log: log.With(zap.String("notifier", "amqp")),
	}
}

func (n *amqpNotifier) Send(ctx context.Context, msg Message) error {
	conn, err := amqp.Dial(n.cfg.URL)
	if err != nil {
		n.log.Warn("Failed to dial broker", zap.Error(err))
		return fmt.Errorf("dial broker: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		n.log.Warn("Failed to open channel", zap.Error(err))
		return fmt.Errorf("open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	// Durable so messages survive broker restarts. Declare is idempotent.
	if _, err := ch.QueueDeclare(n.cfg.Queue, true, false, false, false, nil); err != nil {
		n.log.Warn("Failed to declare queue", zap.Error(err))
		return fmt.Errorf("declare queue %s: %w", n.cfg.Queue, err)
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	err = ch.PublishWithContext(ctx, "", n.cfg.Queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		n.log.Warn("Failed to publish notification",
			zap.Error(err),
			zap.String("kind", string(msg.Kind)),
			zap.String("to", msg.To),
		)
		return fmt.Errorf("publish notification: %w", err)
	}

	n.log.Debug("Notification published",
		zap.String("kind", string(msg.Kind)),
		zap.String("to", msg.To),
	)
	return nil
}
