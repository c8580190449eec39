// Package queue carries purchase-completed events between the order
// subsystem and the settlement adapter over RabbitMQ.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/playpark/internal/domain/settlement"
	"github.com/BruksfildServices01/playpark/internal/httperr"
	"github.com/BruksfildServices01/playpark/internal/logger"
	ucSettlement "github.com/BruksfildServices01/playpark/internal/usecase/settlement"
)

const (
	prefetch      = 20
	maxBackoff    = 30 * time.Second
	handleTimeout = 30 * time.Second
)

// Applier is satisfied by *settlement.ApplyPurchase.
type Applier interface {
	Execute(ctx context.Context, ev settlement.PurchaseCompleted) (*ucSettlement.ApplyResult, error)
}

type disposition int

const (
	ack disposition = iota
	reject
	requeue
)

type PurchaseConsumer struct {
	url   string
	queue string
	apply Applier
	log   *zap.Logger
}

func NewPurchaseConsumer(url, queue string, apply Applier, log *zap.Logger) *PurchaseConsumer {
	return &PurchaseConsumer{
		url:   url,
		queue: queue,
		apply: apply,
		log:   logger.OrNop(log).With(zap.String("queue", queue)),
	}
}

// Run dials the broker and consumes until ctx is cancelled, reconnecting
// with exponential backoff whenever the connection drops.
func (pc *PurchaseConsumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		conn, err := amqp.Dial(pc.url)
		if err != nil {
			pc.log.Warn("dial broker failed", zap.Error(err), zap.Duration("retry_in", backoff))
			if !sleep(ctx, backoff) {
				return nil
			}
			if backoff < maxBackoff {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = pc.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return nil
		}
		pc.log.Warn("consume loop ended, reconnecting", zap.Error(err))
		if !sleep(ctx, 2*time.Second) {
			return nil
		}
	}
}

func (pc *PurchaseConsumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(prefetch, 0, false); err != nil {
		pc.log.Warn("set qos failed", zap.Error(err))
	}

	if _, err := declare(ch, pc.queue); err != nil {
		return err
	}

	msgs, err := ch.Consume(pc.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}
	pc.log.Info("consuming purchase events")

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			pc.settle(ctx, d)
		}
	}
}

func (pc *PurchaseConsumer) settle(ctx context.Context, d amqp.Delivery) {
	hctx, cancel := context.WithTimeout(ctx, handleTimeout)
	defer cancel()

	switch pc.handle(hctx, d.Body, d.Redelivered) {
	case ack:
		_ = d.Ack(false)
	case requeue:
		_ = d.Nack(false, true)
	default:
		_ = d.Nack(false, false)
	}
}

// handle applies one event. Malformed events and events naming unknown
// guardians or locations are rejected. Other failures are requeued once;
// a redelivered message that fails again is rejected.
func (pc *PurchaseConsumer) handle(ctx context.Context, body []byte, redelivered bool) disposition {
	var ev settlement.PurchaseCompleted
	if err := json.Unmarshal(body, &ev); err != nil {
		pc.log.Warn("rejecting undecodable purchase event", zap.Error(err))
		return reject
	}

	res, err := pc.apply.Execute(ctx, ev)
	if err != nil {
		fields := []zap.Field{zap.String("transaction_id", ev.TransactionID), zap.Error(err)}
		switch {
		case httperr.Is(err, httperr.KindInvalid), httperr.Is(err, httperr.KindNotFound):
			pc.log.Warn("rejecting purchase event", fields...)
			return reject
		case redelivered:
			pc.log.Error("purchase event failed after redelivery", fields...)
			return reject
		default:
			pc.log.Warn("requeueing purchase event", fields...)
			return requeue
		}
	}

	if res.Duplicate {
		pc.log.Debug("duplicate purchase event", zap.String("transaction_id", ev.TransactionID))
	}
	return ack
}

func declare(ch *amqp.Channel, queue string) (amqp.Queue, error) {
	q, err := ch.QueueDeclare(queue, true, false, false, false, nil)
	if err != nil {
		return q, fmt.Errorf("queue declare: %w", err)
	}
	return q, nil
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
