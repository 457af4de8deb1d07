package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/ceyewan/shardmanager/clog"
	"github.com/ceyewan/shardmanager/metrics"
	"github.com/ceyewan/shardmanager/xerrors"
)

// limiterWrapper 包装 rate.Limiter 并记录最后访问时间
type limiterWrapper struct {
	limiter  *rate.Limiter
	lastSeen time.Time
	mu       sync.Mutex
}

type standaloneLimiter struct {
	cfg      *StandaloneConfig
	logger   clog.Logger
	limiters sync.Map // map[string]*limiterWrapper
	stopCh   chan struct{}
	stopOnce sync.Once

	allowedCounter metrics.Counter
	deniedCounter  metrics.Counter
}

func newStandalone(cfg *StandaloneConfig, logger clog.Logger, meter metrics.Meter) (Limiter, error) {
	cfg.setDefaults()
	if meter == nil {
		meter = metrics.Discard()
	}

	allowed, err := meter.Counter(MetricAllowed, "Number of allowed requests")
	if err != nil {
		return nil, xerrors.Wrap(err, "create allowed counter")
	}
	denied, err := meter.Counter(MetricDenied, "Number of denied requests")
	if err != nil {
		return nil, xerrors.Wrap(err, "create denied counter")
	}

	l := &standaloneLimiter{
		cfg:            cfg,
		logger:         logger,
		stopCh:         make(chan struct{}),
		allowedCounter: allowed,
		deniedCounter:  denied,
	}

	go l.cleanup(cfg.CleanupInterval, cfg.IdleTimeout)

	logger.Info("standalone rate limiter created",
		clog.Duration("cleanup_interval", cfg.CleanupInterval),
		clog.Duration("idle_timeout", cfg.IdleTimeout))

	return l, nil
}

// Allow 尝试获取 1 个令牌
func (l *standaloneLimiter) Allow(ctx context.Context, key string, limit Limit) (bool, error) {
	return l.AllowN(ctx, key, limit, 1)
}

// AllowN 尝试获取 N 个令牌
func (l *standaloneLimiter) AllowN(ctx context.Context, key string, limit Limit, n int) (bool, error) {
	if key == "" {
		return false, ErrKeyEmpty
	}
	if limit.Rate <= 0 || limit.Burst <= 0 {
		return false, ErrInvalidLimit
	}
	if n <= 0 {
		return false, xerrors.Wrapf(xerrors.ErrInvalidInput, "ratelimit: n must be positive")
	}

	wrapper := l.getLimiter(key, limit)

	now := time.Now()
	wrapper.mu.Lock()
	allowed := wrapper.limiter.AllowN(now, n)
	wrapper.lastSeen = now
	wrapper.mu.Unlock()

	if allowed {
		l.allowedCounter.Inc(ctx, metrics.L(LabelMode, ModeStandalone))
	} else {
		l.deniedCounter.Inc(ctx, metrics.L(LabelMode, ModeStandalone))
		l.logger.DebugContext(ctx, "rate limit exceeded",
			clog.String("key", key),
			clog.Float64("rate", limit.Rate),
			clog.Int("burst", limit.Burst),
			clog.Int("requested", n))
	}

	return allowed, nil
}

// getLimiter 获取或创建指定 key 的限流器，缓存 key 包含规则，规则变化时使用新的令牌桶
func (l *standaloneLimiter) getLimiter(key string, limit Limit) *limiterWrapper {
	cacheKey := fmt.Sprintf("%s:%v:%d", key, limit.Rate, limit.Burst)

	if v, ok := l.limiters.Load(cacheKey); ok {
		return v.(*limiterWrapper)
	}

	wrapper := &limiterWrapper{
		limiter:  rate.NewLimiter(rate.Limit(limit.Rate), limit.Burst),
		lastSeen: time.Now(),
	}

	actual, _ := l.limiters.LoadOrStore(cacheKey, wrapper)
	return actual.(*limiterWrapper)
}

// cleanup 定期清理过期的限流器
func (l *standaloneLimiter) cleanup(interval, idleTimeout time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if count := l.evictIdle(time.Now(), idleTimeout); count > 0 {
				l.logger.Debug("cleaned up idle limiters", clog.Int("count", count))
			}
		case <-l.stopCh:
			return
		}
	}
}

func (l *standaloneLimiter) evictIdle(now time.Time, idleTimeout time.Duration) int {
	count := 0
	l.limiters.Range(func(key, value any) bool {
		wrapper := value.(*limiterWrapper)
		wrapper.mu.Lock()
		idle := now.Sub(wrapper.lastSeen)
		wrapper.mu.Unlock()

		if idle > idleTimeout {
			l.limiters.Delete(key)
			count++
		}
		return true
	})
	return count
}

// Close 关闭限流器，幂等
func (l *standaloneLimiter) Close() error {
	l.stopOnce.Do(func() {
		close(l.stopCh)
	})
	return nil
}
