package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"flight-reservation/internal/model"
	apperrors "flight-reservation/pkg/app_errors"

	"github.com/redis/go-redis/v9"
)

type FlightAvailabilityCache interface {
	// 讀取：未命中時回傳 ErrCacheMiss
	Get(ctx context.Context, flightID int64) (*model.FlightAvailability, error)
	// 寫入：版本較舊的資料不會覆蓋較新的資料 (使用Lua腳本確保原子性)
	Set(ctx context.Context, availability *model.FlightAvailability) (bool, error)
	// 刪除：航班刪除或重建座位時使用
	Invalidate(ctx context.Context, flightID int64) error
}

type RedisFlightAvailabilityCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewFlightAvailabilityCache(client *redis.Client, ttl time.Duration) FlightAvailabilityCache {
	return &RedisFlightAvailabilityCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *RedisFlightAvailabilityCache) key(flightID int64) string {
	return fmt.Sprintf("flight:%d:availability", flightID)
}

func (c *RedisFlightAvailabilityCache) Get(ctx context.Context, flightID int64) (*model.FlightAvailability, error) {
	result, err := c.client.HGetAll(ctx, c.key(flightID)).Result()
	if err != nil {
		return nil, err
	}

	// 檢查 key 是否存在
	if len(result) == 0 {
		return nil, apperrors.ErrCacheMiss
	}

	capacity, err := strconv.Atoi(result["capacity"])
	if err != nil {
		return nil, fmt.Errorf("invalid capacity: %v", err)
	}

	available, err := strconv.Atoi(result["available"])
	if err != nil {
		return nil, fmt.Errorf("invalid available: %v", err)
	}

	version, err := strconv.ParseInt(result["version"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid version: %v", err)
	}

	return &model.FlightAvailability{
		FlightID:       flightID,
		Capacity:       capacity,
		AvailableSeats: available,
		Version:        version,
	}, nil
}

var setIfNewerScript = redis.NewScript(`
	local key = KEYS[1]
	local version = tonumber(ARGV[1])
	local ttl_ms = tonumber(ARGV[4])

	-- 已有較新版本則放棄
	local current = redis.call('HGET', key, 'version')
	if current and tonumber(current) > version then
		return 0
	end

	redis.call('HSET', key, 'version', ARGV[1], 'capacity', ARGV[2], 'available', ARGV[3])
	if ttl_ms > 0 then
		redis.call('PEXPIRE', key, ttl_ms)
	end
	return 1
`)

func (c *RedisFlightAvailabilityCache) Set(ctx context.Context, availability *model.FlightAvailability) (bool, error) {
	res, err := setIfNewerScript.Run(ctx, c.client,
		[]string{c.key(availability.FlightID)},
		availability.Version, availability.Capacity, availability.AvailableSeats, c.ttl.Milliseconds(),
	).Int64()
	if err != nil {
		return false, err
	}

	switch res {
	case 1:
		return true, nil
	case 0:
		return false, nil
	default:
		return false, errors.New("unexpected result")
	}
}

func (c *RedisFlightAvailabilityCache) Invalidate(ctx context.Context, flightID int64) error {
	return c.client.Del(ctx, c.key(flightID)).Err()
}
