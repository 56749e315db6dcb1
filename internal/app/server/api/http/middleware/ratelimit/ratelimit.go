package ratelimit

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/patrickmn/go-cache"
	"golang.org/x/exp/slog"
	"golang.org/x/time/rate"
)

// DeviceHeader заголовок, по которому различаются устройства
const DeviceHeader = "X-Device-ID"

// Counter учитывает отклоненные запросы
type Counter interface {
	RateLimited()
}

// Limiter ограничивает частоту запросов с одного устройства. Лимитеры
// простаивающих устройств вытесняются из кеша.
type Limiter struct {
	limit   rate.Limit
	burst   int
	perKey  *cache.Cache
	counter Counter
	log     *slog.Logger
}

// New создает ограничитель: perSecond запросов в секунду, всплеск до burst.
// perSecond <= 0 отключает ограничение.
func New(perSecond float64, burst int, counter Counter, log *slog.Logger) *Limiter {
	if burst < 1 {
		burst = 1
	}
	return &Limiter{
		limit:   rate.Limit(perSecond),
		burst:   burst,
		perKey:  cache.New(10*time.Minute, 15*time.Minute),
		counter: counter,
		log:     log.With("component", "rate_limiter"),
	}
}

// Allow расходует один токен ключа key
func (l *Limiter) Allow(key string) bool {
	if l.limit <= 0 {
		return true
	}
	return l.limiterFor(key).Allow()
}

func (l *Limiter) limiterFor(key string) *rate.Limiter {
	if v, ok := l.perKey.Get(key); ok {
		return v.(*rate.Limiter)
	}
	lim := rate.NewLimiter(l.limit, l.burst)
	// Add не перезаписывает лимитер, созданный параллельным запросом
	if err := l.perKey.Add(key, lim, cache.DefaultExpiration); err != nil {
		if v, ok := l.perKey.Get(key); ok {
			return v.(*rate.Limiter)
		}
	}
	return lim
}

func (l *Limiter) Middleware() func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		key := requestKey(ctx)
		if l.Allow(key) {
			next(ctx)
			return
		}

		if l.counter != nil {
			l.counter.RateLimited()
		}
		l.log.Warn("rate limit exceeded", "key", key, "path", ctx.URL().Path)

		retry := 1
		if l.limit > 0 && l.limit < 1 {
			retry = int(1/float64(l.limit)) + 1
		}
		ctx.SetHeader("Retry-After", strconv.Itoa(retry))
		ctx.SetHeader("Content-Type", "application/json")
		ctx.SetStatus(http.StatusTooManyRequests)
		_ = json.NewEncoder(ctx.BodyWriter()).Encode(map[string]string{
			"status": "Error",
			"error":  "rate limit exceeded",
		})
	}
}

// requestKey устройство из заголовка, иначе адрес клиента
func requestKey(ctx huma.Context) string {
	if device := ctx.Header(DeviceHeader); device != "" {
		return "device:" + device
	}
	host, _, err := net.SplitHostPort(ctx.RemoteAddr())
	if err != nil {
		host = ctx.RemoteAddr()
	}
	return "addr:" + host
}
