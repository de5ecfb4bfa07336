package notify

import (
	"context"
	"fmt"
	"strconv"

	"flight-reservation/config"
	"flight-reservation/internal/model"
)

// Publisher 將機票事件轉發給外部通知系統（email/OTP 等由下游處理）
type Publisher interface {
	Publish(ctx context.Context, event *model.TicketEvent) error
	Close() error
}

// NewPublisher 依設定選擇通知傳輸方式
func NewPublisher(cfg config.NotifyConfig) (Publisher, error) {
	switch cfg.Driver {
	case "", "none":
		return NopPublisher{}, nil
	case "kafka":
		if len(cfg.KafkaBrokers) == 0 {
			return nil, fmt.Errorf("notify: kafka driver requires brokers")
		}
		return NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic), nil
	case "amqp":
		return DialAMQPPublisher(cfg.AMQPURL, cfg.AMQPQueue)
	default:
		return nil, fmt.Errorf("notify: unknown driver %q", cfg.Driver)
	}
}

// NopPublisher 不發送任何通知
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, *model.TicketEvent) error { return nil }

func (NopPublisher) Close() error { return nil }

// messageKey 同一航班的事件落在同一分區，保持順序
func messageKey(event *model.TicketEvent) string {
	return strconv.FormatInt(event.FlightID, 10)
}
