package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/yourusername/teamflow/pkg/logger"
)

// RateLimiterConfig содержит настройки ограничителя запросов
type RateLimiterConfig struct {
	// Максимальное количество запросов в окне
	Limit int
	// Размер окна
	Window time.Duration
}

// RateLimiter ограничивает частоту запросов по IP-адресу клиента.
// Счетчики хранятся в Redis; без Redis используется локальная карта
type RateLimiter struct {
	config  RateLimiterConfig
	logger  logger.Logger
	redis   *redis.Client
	local   map[string]*windowCounter
	localMu sync.Mutex
}

type windowCounter struct {
	count   int
	resetAt time.Time
}

// NewRateLimiter создает новый экземпляр RateLimiter
func NewRateLimiter(config RateLimiterConfig, redisClient *redis.Client, logger logger.Logger) *RateLimiter {
	return &RateLimiter{
		config: config,
		redis:  redisClient,
		logger: logger,
		local:  make(map[string]*windowCounter),
	}
}

// Limit применяет ограничение частоты запросов
func (m *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := fmt.Sprintf("rate_limit:ip:%s", clientIP(r))

		remaining, resetAt, limited, err := m.take(r.Context(), key)
		if err != nil {
			m.logger.Error("Rate limiter error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(m.config.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))

		if limited {
			w.Header().Set("Retry-After", strconv.Itoa(int(time.Until(resetAt).Seconds())))
			http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (m *RateLimiter) take(ctx context.Context, key string) (int, time.Time, bool, error) {
	if m.redis != nil {
		return m.takeRedis(ctx, key)
	}
	return m.takeLocal(key)
}

// takeRedis считает запросы в фиксированном окне поверх Redis
func (m *RateLimiter) takeRedis(ctx context.Context, key string) (int, time.Time, bool, error) {
	now := time.Now()
	windowKey := fmt.Sprintf("%s:%d", key, now.UnixNano()/int64(m.config.Window))

	pipe := m.redis.TxPipeline()
	incr := pipe.Incr(ctx, windowKey)
	pipe.Expire(ctx, windowKey, m.config.Window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, now, false, err
	}

	count, err := incr.Result()
	if err != nil {
		return 0, now, false, err
	}

	resetAt := now.Add(m.config.Window)
	remaining := m.config.Limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, resetAt, count > int64(m.config.Limit), nil
}

func (m *RateLimiter) takeLocal(key string) (int, time.Time, bool, error) {
	m.localMu.Lock()
	defer m.localMu.Unlock()

	now := time.Now()
	counter, ok := m.local[key]
	if !ok || now.After(counter.resetAt) {
		counter = &windowCounter{resetAt: now.Add(m.config.Window)}
		m.local[key] = counter
	}
	counter.count++

	remaining := m.config.Limit - counter.count
	if remaining < 0 {
		remaining = 0
	}
	return remaining, counter.resetAt, counter.count > m.config.Limit, nil
}

// StartCleanupTask периодически убирает истекшие локальные счетчики.
// Блокирует до отмены контекста, запускается отдельной горутиной
func (m *RateLimiter) StartCleanupTask(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.localMu.Lock()
			now := time.Now()
			for key, counter := range m.local {
				if now.After(counter.resetAt) {
					delete(m.local, key)
				}
			}
			m.localMu.Unlock()
		case <-ctx.Done():
			return
		}
	}
}

// clientIP возвращает IP-адрес клиента с учетом прокси-заголовков
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		return strings.TrimSpace(ips[0])
	}
	if xrip := r.Header.Get("X-Real-IP"); xrip != "" {
		return xrip
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
