package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// StartLifecycleConsumer connects to RabbitMQ, declares the durable
// reservation.lifecycle queue and consumes it, appending one audit
// line per event to logs/lifecycle.log.  It runs a reconnect loop
// with exponential backoff and keeps the server operating through
// broker outages; processing errors reject the offending message
// without requeueing to avoid tight redelivery loops.
func StartLifecycleConsumer(log zerolog.Logger) {
	log = log.With().Str("component", "lifecycle-consumer").Logger()

	backoff := time.Second
	for {
		conn, err := amqp.Dial(brokerURL())
		if err != nil {
			log.Warn().Err(err).Dur("retry_in", backoff).Msg("broker dial failed")
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(conn, log); err != nil {
			log.Warn().Err(err).Msg("consume loop ended, reconnecting")
			time.Sleep(2 * time.Second)
		}
	}
}

func consumeLoop(conn *amqp.Connection, log zerolog.Logger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Warn().Err(err).Msg("set QoS failed")
	}

	if _, err := ch.QueueDeclare(lifecycleQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(lifecycleQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := appendAuditLine(d.Body); err != nil {
			log.Error().Err(err).Msg("handle message failed")
			_ = d.Nack(false, false)
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

func appendAuditLine(body []byte) error {
	var ev LifecycleEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if err := os.MkdirAll("logs", 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(filepath.Join("logs", "lifecycle.log"),
		os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	line := fmt.Sprintf("[%s] %s | reservation_id=%d | code=%s | user_id=%d | venue=%q | service=%q | status=%s | total=%d %s | refund=%d %s | guest_notified=%t\n",
		ev.OccurredAt, ev.Kind, ev.ReservationID, ev.ConfirmationCode, ev.UserID,
		ev.VenueName, ev.ServiceName, ev.Status, ev.TotalCents, ev.Currency,
		ev.RefundCents, ev.RefundStatus, ev.GuestNotified)

	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}
