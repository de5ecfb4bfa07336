package service_test

import (
	"context"
	"testing"
	"time"

	"flight-reservation/internal/model"
	"flight-reservation/internal/queue"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
)

// fakeTx 只記錄 Commit/Rollback；查詢都由 repository mock 處理
type fakeTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
	commitErr  error
}

func (tx *fakeTx) Commit(context.Context) error {
	if tx.commitErr != nil {
		return tx.commitErr
	}
	tx.committed = true
	return nil
}

func (tx *fakeTx) Rollback(context.Context) error {
	if tx.committed {
		return pgx.ErrTxClosed
	}
	tx.rolledBack = true
	return nil
}

type fakeDB struct {
	tx       *fakeTx
	err      error
	begun    int
	lastOpts pgx.TxOptions
}

func newFakeDB() *fakeDB {
	return &fakeDB{tx: &fakeTx{}}
}

func (db *fakeDB) BeginTx(_ context.Context, opts pgx.TxOptions) (pgx.Tx, error) {
	if db.err != nil {
		return nil, db.err
	}
	db.begun++
	db.lastOpts = opts
	return db.tx, nil
}

func int64Ptr(v int64) *int64 { return &v }

func float64Ptr(v float64) *float64 { return &v }

// nextEvent 從記憶體隊列取出一筆事件
func nextEvent(t *testing.T, q *queue.MemoryTicketEventQueue) *model.TicketEvent {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := q.Subscribe(ctx)
	require.NoError(t, err)

	select {
	case d := <-ch:
		d.Ack()
		return d.Data
	case <-time.After(time.Second):
		t.Fatal("未收到事件")
		return nil
	}
}

func assertNoEvent(t *testing.T, q *queue.MemoryTicketEventQueue) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := q.Subscribe(ctx)
	require.NoError(t, err)

	select {
	case d := <-ch:
		t.Fatalf("不應發出事件: %+v", d.Data)
	case <-time.After(50 * time.Millisecond):
	}
}
