package worker_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"flight-reservation/internal/model"
	"flight-reservation/internal/queue"
	"flight-reservation/internal/service/mocks"
	"flight-reservation/internal/worker"
	apperrors "flight-reservation/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// fakePublisher 記錄收到的事件；前 failures 次回傳錯誤
type fakePublisher struct {
	mu        sync.Mutex
	failures  int
	attempts  int
	published chan *model.TicketEvent
}

func newFakePublisher(failures int) *fakePublisher {
	return &fakePublisher{failures: failures, published: make(chan *model.TicketEvent, 10)}
}

func (p *fakePublisher) Publish(_ context.Context, event *model.TicketEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.attempts++
	if p.attempts <= p.failures {
		return errors.New("broker unavailable")
	}
	p.published <- event
	return nil
}

func (p *fakePublisher) Close() error { return nil }

func (p *fakePublisher) attemptCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.attempts
}

func bookedEvent() *model.TicketEvent {
	return &model.TicketEvent{
		Type:       model.TicketEventBooked,
		BookingRef: uuid.New(),
		FlightID:   1,
		TicketIDs:  []int64{10, 11},
	}
}

func waitPublished(t *testing.T, p *fakePublisher) *model.TicketEvent {
	t.Helper()
	select {
	case e := <-p.published:
		return e
	case <-time.After(time.Second):
		t.Fatal("超時！Worker 沒有在時間內處理事件")
		return nil
	}
}

func TestTicketEventWorker_RefreshesCacheAndNotifies(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := queue.NewMemoryTicketEventQueue(10, 3)
	svc := mocks.NewFlightServiceMock()
	svc.On("RefreshAvailability", mock.Anything, int64(1)).
		Return(&model.FlightAvailability{FlightID: 1, AvailableSeats: 4}, nil)
	pub := newFakePublisher(0)

	w := worker.NewTicketEventWorker(svc, pub, q)
	require.NoError(t, w.Start(ctx))

	event := bookedEvent()
	require.NoError(t, q.Publish(ctx, event))

	got := waitPublished(t, pub)
	assert.Equal(t, event.BookingRef, got.BookingRef)
	svc.AssertCalled(t, "RefreshAvailability", mock.Anything, int64(1))

	cancel()
	w.Wait()
}

func TestTicketEventWorker_RetriesOnPublishFailure(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := queue.NewMemoryTicketEventQueue(10, 5)
	svc := mocks.NewFlightServiceMock()
	svc.On("RefreshAvailability", mock.Anything, int64(1)).
		Return(&model.FlightAvailability{FlightID: 1}, nil)
	pub := newFakePublisher(2)

	w := worker.NewTicketEventWorker(svc, pub, q)
	require.NoError(t, w.Start(ctx))
	require.NoError(t, q.Publish(ctx, bookedEvent()))

	waitPublished(t, pub)
	assert.Equal(t, 3, pub.attemptCount())
	svc.AssertNumberOfCalls(t, "RefreshAvailability", 3)
}

func TestTicketEventWorker_DeletedFlightStillNotifies(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := queue.NewMemoryTicketEventQueue(10, 3)
	svc := mocks.NewFlightServiceMock()
	svc.On("RefreshAvailability", mock.Anything, int64(1)).Return(nil, apperrors.ErrFlightNotFound)
	pub := newFakePublisher(0)

	w := worker.NewTicketEventWorker(svc, pub, q)
	require.NoError(t, w.Start(ctx))
	require.NoError(t, q.Publish(ctx, bookedEvent()))

	waitPublished(t, pub)
	assert.Equal(t, 1, pub.attemptCount())
}

func TestTicketEventWorker_GivesUpAfterMaxRetries(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := queue.NewMemoryTicketEventQueue(10, 2)
	svc := mocks.NewFlightServiceMock()
	var refreshes atomic.Int32
	svc.On("RefreshAvailability", mock.Anything, int64(1)).
		Run(func(mock.Arguments) { refreshes.Add(1) }).
		Return(nil, apperrors.Transient(errors.New("db down")))
	pub := newFakePublisher(0)

	w := worker.NewTicketEventWorker(svc, pub, q)
	require.NoError(t, w.Start(ctx))
	require.NoError(t, q.Publish(ctx, bookedEvent()))

	assert.Eventually(t, func() bool {
		return refreshes.Load() == 2
	}, time.Second, 10*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	svc.AssertNumberOfCalls(t, "RefreshAvailability", 2)
	assert.Equal(t, 0, pub.attemptCount())
}
