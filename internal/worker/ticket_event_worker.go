package worker

import (
	"context"
	"errors"
	"sync"

	"flight-reservation/internal/model"
	"flight-reservation/internal/notify"
	"flight-reservation/internal/queue"
	"flight-reservation/internal/service"
	apperrors "flight-reservation/pkg/app_errors"
	"flight-reservation/pkg/logger"

	"go.uber.org/zap"
)

type TicketEventWorker interface {
	// 訂閱機票事件隊列
	Start(ctx context.Context) error
	// Wait 等待消費迴圈結束（ctx 取消後）
	Wait()
}

type TicketEventWorkerImpl struct {
	flightService service.FlightService
	publisher     notify.Publisher
	queue         queue.TicketEventQueue
	log           *zap.Logger
	wg            sync.WaitGroup
}

func NewTicketEventWorker(flightService service.FlightService, publisher notify.Publisher, queue queue.TicketEventQueue) TicketEventWorker {
	return &TicketEventWorkerImpl{
		flightService: flightService,
		publisher:     publisher,
		queue:         queue,
		log:           logger.WithComponent("worker"),
	}
}

func (w *TicketEventWorkerImpl) Start(ctx context.Context) error {
	msgs, err := w.queue.Subscribe(ctx)
	if err != nil {
		return err
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for msg := range msgs {
			if err := w.handle(ctx, msg.Data); err != nil {
				// 快取或通知暫時失敗，交回隊列重試
				w.log.Warn("ticket event handling failed, requeue",
					zap.String("type", string(msg.Data.Type)),
					zap.String("booking_ref", msg.Data.BookingRef.String()),
					zap.Error(err),
				)
				msg.Nack(true)
				continue
			}
			msg.Ack()
		}
	}()
	return nil
}

func (w *TicketEventWorkerImpl) Wait() {
	w.wg.Wait()
}

// handle 先以資料庫最新值覆寫剩餘座位快取，再轉發通知
func (w *TicketEventWorkerImpl) handle(ctx context.Context, event *model.TicketEvent) error {
	if _, err := w.flightService.RefreshAvailability(ctx, event.FlightID); err != nil {
		// 航班已刪除時快取已失效，仍需通知
		if !errors.Is(err, apperrors.ErrFlightNotFound) {
			return err
		}
	}

	if err := w.publisher.Publish(ctx, event); err != nil {
		return err
	}

	w.log.Debug("ticket event processed",
		zap.String("type", string(event.Type)),
		zap.Int64("flight_id", event.FlightID),
		zap.Int("tickets", len(event.TicketIDs)),
	)
	return nil
}
