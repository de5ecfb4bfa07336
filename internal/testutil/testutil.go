package testutil

import (
	"context"
	"testing"
	"time"

	"flight-reservation/config"
	"flight-reservation/internal/database"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

const integrationLockKey int64 = 7_301_001

// Setup 連線測試用 Postgres 與 Redis 並套用 schema；任一服務無法連線時略過測試
func Setup(t *testing.T) (*pgxpool.Pool, *redis.Client) {
	t.Helper()

	pool := SetupDatabase(t)
	rdb := SetupRedisOnly(t)
	return pool, rdb
}

// SetupDatabase 只初始化 Postgres，並在每個測試開始前清空資料表
func SetupDatabase(t *testing.T) *pgxpool.Pool {
	t.Helper()
	cfg := config.LoadTestConfig()

	pool, err := database.InitDatabase(&cfg.Database)
	if err != nil {
		t.Skipf("test database unavailable: %v", err)
	}
	t.Cleanup(pool.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// 各 package 的整合測試共用同一個 DB，以 advisory lock 串行化
	conn, err := pool.Acquire(ctx)
	if err != nil {
		t.Fatalf("failed to acquire connection: %v", err)
	}
	if _, err := conn.Exec(context.Background(), `SELECT pg_advisory_lock($1)`, integrationLockKey); err != nil {
		conn.Release()
		t.Fatalf("failed to take integration lock: %v", err)
	}
	t.Cleanup(func() {
		_, _ = conn.Exec(context.Background(), `SELECT pg_advisory_unlock($1)`, integrationLockKey)
		conn.Release()
	})

	if err := database.Migrate(ctx, pool); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	if err := database.Truncate(ctx, pool); err != nil {
		t.Fatalf("failed to truncate tables: %v", err)
	}

	return pool
}

// SetupRedisOnly 僅初始化 Redis，用於只依賴 Redis 的測試（如 queue、cache 整合測試）
func SetupRedisOnly(t *testing.T) *redis.Client {
	t.Helper()
	cfg := config.LoadTestConfig()

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		t.Skipf("test redis unavailable: %v", err)
	}

	ctx := context.Background()
	if err := rdb.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("failed to flush redis: %v", err)
	}
	t.Cleanup(func() {
		_ = rdb.FlushDB(context.Background()).Err()
		_ = rdb.Close()
	})

	return rdb
}
