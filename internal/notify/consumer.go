package notify

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/smtp"
	"time"

	"studio-booking/pkg/utils"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// StartConsumer drains the notification queue and delivers email. It runs a
// reconnect loop with exponential backoff and never returns under normal
// operation; run it on its own goroutine. Messages that cannot be parsed
// are rejected without requeue to avoid tight redelivery loops.
func StartConsumer(amqpCfg utils.AMQPConfig, emailCfg utils.EmailConfig, log *zap.Logger) {
	log = log.With(zap.String("component", "notification-consumer"))

	backoff := time.Second
	for {
		conn, err := amqp.Dial(amqpCfg.URL)
		if err != nil {
			log.Warn("Failed to dial broker, retrying",
				zap.Error(err),
				zap.Duration("backoff", backoff),
			)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		if err := consumeLoop(conn, amqpCfg.Queue, emailCfg, log); err != nil {
			log.Warn("Consume loop ended, reconnecting", zap.Error(err))
			_ = conn.Close()
			time.Sleep(2 * time.Second)
		}
	}
}

func consumeLoop(conn *amqp.Connection, queue string, emailCfg utils.EmailConfig, log *zap.Logger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(20, 0, false); err != nil {
		log.Warn("Failed to set QoS", zap.Error(err))
	}

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	msgs, err := ch.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume queue: %w", err)
	}

	for d := range msgs {
		var msg Message
		if err := json.Unmarshal(d.Body, &msg); err != nil {
			log.Error("Failed to decode notification, rejecting", zap.Error(err))
			_ = d.Nack(false, false)
			continue
		}

		if err := sendEmail(emailCfg, msg); err != nil {
			log.Error("Failed to deliver email",
				zap.Error(err),
				zap.String("kind", string(msg.Kind)),
				zap.String("to", msg.To),
			)
			// Best-effort: drop rather than requeue so a broken SMTP
			// target does not grow the queue forever.
			_ = d.Nack(false, false)
			continue
		}

		log.Info("Notification delivered",
			zap.String("kind", string(msg.Kind)),
			zap.String("to", msg.To),
		)
		_ = d.Ack(false)
	}

	return errors.New("deliveries channel closed")
}

// sendEmail delivers a plain-text message over SMTP.
func sendEmail(cfg utils.EmailConfig, msg Message) error {
	subject, body := composeEmail(msg)

	payload := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s",
		cfg.From, msg.To, subject, body)

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	var auth smtp.Auth
	if cfg.User != "" {
		auth = smtp.PlainAuth("", cfg.User, cfg.Password, cfg.Host)
	}

	if err := smtp.SendMail(addr, auth, cfg.From, []string{msg.To}, []byte(payload)); err != nil {
		return fmt.Errorf("send mail to %s: %w", msg.To, err)
	}
	return nil
}

func composeEmail(msg Message) (subject, body string) {
	when := msg.StartsAt.Format("2006-01-02 15:04")
	amount := fmt.Sprintf("%.2f %s", float64(msg.AmountCents)/100, msg.Currency)

	switch msg.Kind {
	case KindConfirmation:
		subject = "Booking confirmed"
		body = fmt.Sprintf("Hi %s,\n\nYour seat for %s on %s is confirmed.\nAmount paid: %s\nReservation: %s\n\nSee you there!",
			msg.BuyerName, msg.Activity, when, amount, msg.ReservationID)
	case KindPaymentFailed:
		subject = "Payment failed"
		body = fmt.Sprintf("Hi %s,\n\nYour payment could not be processed.\nReason: %s\n\nPlease try again with another payment method.",
			msg.BuyerName, msg.Reason)
	case KindRefund:
		subject = "Refund confirmed"
		body = fmt.Sprintf("Hi %s,\n\nYour refund of %s has been processed. The amount will appear on your statement within 5-10 business days.\nYour reservation has been cancelled and the seat released.",
			msg.BuyerName, amount)
	default:
		subject = "Booking update"
		body = fmt.Sprintf("Hi %s,\n\nThere is an update on your booking %s.", msg.BuyerName, msg.ReservationID)
	}
	return subject, body
}
