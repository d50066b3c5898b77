package sim

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jawadev0/ussd-magician/internal/cache"
)

// Counter tracks daily USSD operations per SIM slot. Counts reset when the
// calendar day changes.
type Counter interface {
	Increment(ctx context.Context, slot int) (int, error)
	Today(ctx context.Context, slot int) (int, error)
}

const dayFormat = "2006-01-02"

// RedisCounter keeps day-keyed counters in Redis, so the reset falls out of
// the key naturally and counts survive restarts.
type RedisCounter struct {
	redis  *cache.Redis
	logger *slog.Logger
	now    func() time.Time
}

// NewRedisCounter returns a Redis-backed daily counter.
func NewRedisCounter(redis *cache.Redis, logger *slog.Logger) *RedisCounter {
	return &RedisCounter{
		redis:  redis,
		logger: logger.With("component", "sim_counter"),
		now:    time.Now,
	}
}

func (c *RedisCounter) key(slot int) string {
	return fmt.Sprintf("sim:ops:%d:%s", slot, c.now().Format(dayFormat))
}

// Increment bumps today's counter for the slot.
func (c *RedisCounter) Increment(ctx context.Context, slot int) (int, error) {
	// 48h TTL keeps yesterday's key around briefly for inspection.
	n, err := c.redis.Incr(ctx, c.key(slot), 48*time.Hour)
	if err != nil {
		return 0, fmt.Errorf("increment sim counter: %w", err)
	}
	return int(n), nil
}

// Today returns the slot's operation count for the current day.
func (c *RedisCounter) Today(ctx context.Context, slot int) (int, error) {
	n, err := c.redis.GetInt(ctx, c.key(slot))
	if err != nil {
		return 0, fmt.Errorf("read sim counter: %w", err)
	}
	return int(n), nil
}

// MemoryCounter keeps counters in process memory, zeroing them when the day
// rolls over. Used when no Redis is configured and in tests.
type MemoryCounter struct {
	mu     sync.Mutex
	counts map[int]int
	day    string
	now    func() time.Time
}

// NewMemoryCounter returns an in-process daily counter.
func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{
		counts: map[int]int{},
		now:    time.Now,
	}
}

func (c *MemoryCounter) rollover() {
	today := c.now().Format(dayFormat)
	if c.day != today {
		c.day = today
		c.counts = map[int]int{}
	}
}

// Increment bumps today's counter for the slot.
func (c *MemoryCounter) Increment(ctx context.Context, slot int) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rollover()
	c.counts[slot]++
	return c.counts[slot], nil
}

// Today returns the slot's operation count for the current day.
func (c *MemoryCounter) Today(ctx context.Context, slot int) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rollover()
	return c.counts[slot], nil
}
