package auth

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Bucket allows Limit requests per Window. A zero Limit counts requests
// without ever rejecting them.
type Bucket struct {
	Window time.Duration
	Limit  int
}

// DefaultBuckets are 100 requests a minute, 10000 an hour and an unlimited
// daily counter.
var DefaultBuckets = []Bucket{
	{Window: time.Minute, Limit: 100},
	{Window: time.Hour, Limit: 10000},
	{Window: 24 * time.Hour, Limit: 0},
}

// Counter stores the per window request counts of a throttle key.
type Counter interface {
	// Hit adds one request to key and returns the new count. The first hit
	// opens a window of ttl.
	Hit(ctx context.Context, key string, ttl time.Duration) (int64, error)
	// Release takes back a hit that was rejected.
	Release(ctx context.Context, key string) error
}

// Throttle limits requests per API key over several windows. Buckets are
// checked in order; every bucket passed before a rejection still counts
// the request.
type Throttle struct {
	counter Counter
	buckets []Bucket
}

func NewThrottle(counter Counter, buckets []Bucket) *Throttle {
	if len(buckets) == 0 {
		buckets = DefaultBuckets
	}
	return &Throttle{counter: counter, buckets: buckets}
}

// Allow records a request for apiKey. Requests without a key are not
// throttled.
func (t *Throttle) Allow(ctx context.Context, apiKey string) error {
	if apiKey == "" {
		return nil
	}
	for _, bucket := range t.buckets {
		key := apiKey + "_" + strconv.FormatInt(int64(bucket.Window/time.Second), 10)
		count, err := t.counter.Hit(ctx, key, bucket.Window)
		if err != nil {
			return err
		}
		if bucket.Limit > 0 && count > int64(bucket.Limit) {
			if err := t.counter.Release(ctx, key); err != nil {
				return err
			}
			return &ThrottledError{Window: bucket.Window, Limit: bucket.Limit}
		}
	}
	return nil
}

type memoryWindow struct {
	count   int64
	expires time.Time
}

// MemoryCounter keeps counts in process.
type MemoryCounter struct {
	mu      sync.Mutex
	windows map[string]*memoryWindow
	now     func() time.Time
}

func NewMemoryCounter(now func() time.Time) *MemoryCounter {
	if now == nil {
		now = time.Now
	}
	return &MemoryCounter{windows: map[string]*memoryWindow{}, now: now}
}

func (m *MemoryCounter) Hit(_ context.Context, key string, ttl time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	window, ok := m.windows[key]
	if !ok || !now.Before(window.expires) {
		window = &memoryWindow{expires: now.Add(ttl)}
		m.windows[key] = window
	}
	window.count++
	return window.count, nil
}

func (m *MemoryCounter) Release(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if window, ok := m.windows[key]; ok && window.count > 0 {
		window.count--
	}
	return nil
}

// RedisCounter shares counts between server processes.
type RedisCounter struct {
	client *redis.Client
	prefix string
}

func NewRedisCounter(client *redis.Client) *RedisCounter {
	return &RedisCounter{client: client, prefix: "lis:throttle:"}
}

// NewRedisClient connects to url and checks the connection.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("auth: invalid redis url: %w", err)
	}
	client := redis.NewClient(opt)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("auth: connect to redis: %w", err)
	}
	return client, nil
}

// hitScript increments and sets the window expiry in one round trip, so
// concurrent requests each see their own count.
var hitScript = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 or redis.call("PTTL", KEYS[1]) < 0 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return n
`)

// releaseScript never resurrects an expired window.
var releaseScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 1 then
	return redis.call("DECR", KEYS[1])
end
return 0
`)

func (r *RedisCounter) Hit(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	count, err := hitScript.Run(ctx, r.client, []string{r.prefix + key}, ttl.Milliseconds()).Int64()
	if err != nil {
		return 0, fmt.Errorf("auth: throttle hit: %w", err)
	}
	return count, nil
}

func (r *RedisCounter) Release(ctx context.Context, key string) error {
	if err := releaseScript.Run(ctx, r.client, []string{r.prefix + key}).Err(); err != nil {
		return fmt.Errorf("auth: throttle release: %w", err)
	}
	return nil
}
