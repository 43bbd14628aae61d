package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"invigil/internal/models"
)

// cacheTTL bounds how long a cached timer state is considered worth
// restoring after a crash or restart.
const cacheTTL = 12 * time.Hour

// CachedTimerState is the restart-recovery payload: the timer state plus the
// wall-clock and monotonic instants it was saved at. The monotonic stamp is
// only meaningful inside the process that wrote it; the driver uses the pair
// to rebase elapsed time onto a new process's clock.
type CachedTimerState struct {
	State           models.TimerState `json:"state"`
	WallClockSaveMs int64             `json:"wall_clock_save_ms"`
	MonotonicSaveMs int64             `json:"monotonic_save_ms"`
}

type TimerCache interface {
	Set(ctx context.Context, sessionID string, cached CachedTimerState) error
	Get(ctx context.Context, sessionID string) (*CachedTimerState, error)
	Delete(ctx context.Context, sessionID string) error
}

type timerCache struct {
	client *redis.Client
}

// NewTimerCache connects to redis and verifies the connection. Callers treat
// a nil cache as "recovery disabled".
func NewTimerCache(ctx context.Context, addr string) (TimerCache, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &timerCache{client: client}, nil
}

func key(sessionID string) string {
	return "invigil:timer:" + sessionID
}

func (c *timerCache) Set(ctx context.Context, sessionID string, cached CachedTimerState) error {
	data, err := json.Marshal(cached)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key(sessionID), data, cacheTTL).Err()
}

func (c *timerCache) Get(ctx context.Context, sessionID string) (*CachedTimerState, error) {
	data, err := c.client.Get(ctx, key(sessionID)).Result()
	if err != nil {
		return nil, err
	}
	var cached CachedTimerState
	err = json.Unmarshal([]byte(data), &cached)
	return &cached, err
}

func (c *timerCache) Delete(ctx context.Context, sessionID string) error {
	return c.client.Del(ctx, key(sessionID)).Err()
}
