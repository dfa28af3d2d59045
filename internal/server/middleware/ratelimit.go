package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
)

// bucket - состояние одного ключа: остаток токенов и момент
// последнего полного пополнения
type bucket struct {
	refilledAt time.Time
	tokens     int
	mu         sync.Mutex
}

// RateLimiter - токен-бакет на ключ (IP клиента).
// Бакет пополняется целиком раз в window, а не дробно.
type RateLimiter struct {
	buckets map[string]*bucket
	logger  *slog.Logger
	stopC   chan struct{}
	rate    int
	window  time.Duration
	mu      sync.RWMutex
}

// NewRateLimiter создает limiter: не более rate запросов за window на ключ
func NewRateLimiter(rate int, window time.Duration, logger *slog.Logger) *RateLimiter {
	rl := &RateLimiter{
		buckets: make(map[string]*bucket),
		rate:    rate,
		window:  window,
		logger:  logger,
		stopC:   make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

// Allow списывает токен ключа и сообщает, разрешен ли запрос
func (rl *RateLimiter) Allow(key string) bool {
	b := rl.getBucket(key)

	b.mu.Lock()
	defer b.mu.Unlock()

	if time.Since(b.refilledAt) >= rl.window {
		b.tokens = rl.rate
		b.refilledAt = time.Now()
	}
	if b.tokens == 0 {
		return false
	}
	b.tokens--
	return true
}

func (rl *RateLimiter) getBucket(key string) *bucket {
	rl.mu.RLock()
	b, ok := rl.buckets[key]
	rl.mu.RUnlock()
	if ok {
		return b
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()
	// Параллельный запрос мог успеть создать бакет
	if b, ok := rl.buckets[key]; ok {
		return b
	}
	b = &bucket{tokens: rl.rate, refilledAt: time.Now()}
	rl.buckets[key] = b
	return b
}

// Stop останавливает фоновую подчистку бакетов
func (rl *RateLimiter) Stop() {
	close(rl.stopC)
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.window * 2)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stopC:
			return
		case <-ticker.C:
			rl.removeStale()
		}
	}
}

// removeStale удаляет бакеты, не пополнявшиеся два окна подряд
func (rl *RateLimiter) removeStale() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-rl.window * 2)
	for key, b := range rl.buckets {
		b.mu.Lock()
		stale := b.refilledAt.Before(cutoff)
		b.mu.Unlock()
		if stale {
			delete(rl.buckets, key)
		}
	}
}

// RateLimit ограничивает частоту запросов по IP клиента
func RateLimit(rate int, window time.Duration, logger *slog.Logger) func(http.Handler) http.Handler {
	limiter := NewRateLimiter(rate, window, logger)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientIP(r)
			if !limiter.Allow(key) {
				logger.Warn("rate limit exceeded", "ip", key, "path", r.URL.Path)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error":"rate limit exceeded, please try again later"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP извлекает IP клиента с учетом прокси-заголовков
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// Первый адрес списка - реальный клиент
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}
