package service

import (
	"context"
	"math"
	"time"

	"flight-reservation/internal/model"
	"flight-reservation/internal/queue"

	"go.uber.org/zap"
)

const publishTimeout = 2 * time.Second

// priceTolerance 前端價格與伺服器價格可接受的誤差
const priceTolerance = 0.01

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// publishEvent 交易提交後才呼叫；失敗只記錄，不影響已提交的結果
func publishEvent(ctx context.Context, q queue.TicketEventQueue, log *zap.Logger, event *model.TicketEvent) {
	if q == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := q.Publish(ctx, event); err != nil {
		log.Warn("failed to publish ticket event",
			zap.String("type", string(event.Type)),
			zap.String("booking_ref", event.BookingRef.String()),
			zap.Int64("flight_id", event.FlightID),
			zap.Error(err),
		)
	}
}
