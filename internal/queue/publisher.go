package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/BruksfildServices01/playpark/internal/domain/settlement"
)

// PublishPurchaseCompleted sends one event as a persistent message on the
// default exchange, routed by queue name. It opens its own connection, so
// it suits one-off replays rather than hot paths.
func PublishPurchaseCompleted(ctx context.Context, url, queue string, ev settlement.PurchaseCompleted) error {
	if err := ev.Validate(); err != nil {
		return err
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return fmt.Errorf("dial broker: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := declare(ch, queue); err != nil {
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	return ch.PublishWithContext(ctx, "", queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.TransactionID,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
}
