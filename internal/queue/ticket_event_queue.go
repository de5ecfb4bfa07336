package queue

import (
	"context"
	"errors"

	"flight-reservation/internal/model"
)

var ErrQueueFull = errors.New("ticket event queue is full")

type Delivery struct {
	Data *model.TicketEvent
	Ack  func()
	Nack func(requeue bool)
}

type TicketEventQueue interface {
	// 發送機票事件到隊列
	Publish(ctx context.Context, event *model.TicketEvent) error
	// 訂閱機票事件
	Subscribe(ctx context.Context) (<-chan Delivery, error)
}

type memoryEnvelope struct {
	event    *model.TicketEvent
	attempts int
}

// MemoryTicketEventQueue 以 Go channel 模擬 MQ，供開發與測試使用
type MemoryTicketEventQueue struct {
	ch         chan memoryEnvelope
	maxRetries int
}

func NewMemoryTicketEventQueue(bufferSize, maxRetries int) *MemoryTicketEventQueue {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &MemoryTicketEventQueue{
		ch:         make(chan memoryEnvelope, bufferSize),
		maxRetries: maxRetries,
	}
}

// Publish 隊列已滿時不阻塞交易流程，直接回傳 ErrQueueFull
func (q *MemoryTicketEventQueue) Publish(ctx context.Context, event *model.TicketEvent) error {
	select {
	case q.ch <- memoryEnvelope{event: event}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrQueueFull
	}
}

func (q *MemoryTicketEventQueue) Subscribe(ctx context.Context) (<-chan Delivery, error) {
	out := make(chan Delivery)

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case env := <-q.ch:
				env.attempts++
				d := Delivery{
					Data: env.event,
					Ack:  func() {},
					Nack: func(requeue bool) {
						if !requeue || (q.maxRetries > 0 && env.attempts >= q.maxRetries) {
							return
						}
						// 另起 goroutine 重新排入，避免消費端阻塞
						go func() {
							select {
							case q.ch <- env:
							case <-ctx.Done():
							}
						}()
					},
				}
				select {
				case out <- d:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}
