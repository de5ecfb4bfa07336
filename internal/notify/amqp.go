package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"flight-reservation/internal/model"
	"flight-reservation/pkg/logger"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type AMQPPublisher struct {
	conn    *amqp.Connection
	channel amqpChannel
	queue   string
	log     *zap.Logger
}

// DialAMQPPublisher 建立連線並宣告 durable queue
func DialAMQPPublisher(url, queue string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq: dial failed: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq: channel open failed: %w", err)
	}

	if _, err := ch.QueueDeclare(
		queue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq: queue declare failed: %w", err)
	}

	p := newAMQPPublisher(ch, queue)
	p.conn = conn
	return p, nil
}

func newAMQPPublisher(ch amqpChannel, queue string) *AMQPPublisher {
	return &AMQPPublisher{
		channel: ch,
		queue:   queue,
		log:     logger.WithComponent("notify"),
	}
}

func (p *AMQPPublisher) Publish(ctx context.Context, event *model.TicketEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal ticket event: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         string(event.Type),
		MessageId:    event.BookingRef.String(),
		Body:         body,
	}

	// default exchange，routing key 即 queue 名稱
	if err := p.channel.PublishWithContext(ctx, "", p.queue, false, false, pub); err != nil {
		return fmt.Errorf("rabbitmq: publish failed: %w", err)
	}

	p.log.Debug("ticket event published",
		zap.String("queue", p.queue),
		zap.String("type", string(event.Type)),
		zap.String("booking_ref", event.BookingRef.String()),
	)
	return nil
}

func (p *AMQPPublisher) Close() error {
	err := p.channel.Close()
	if p.conn != nil {
		if cerr := p.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
