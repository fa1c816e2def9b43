package middleware

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/warraqio/warraq/internal/pkg/errcode"
	"github.com/warraqio/warraq/internal/pkg/logutil"
	"github.com/warraqio/warraq/internal/pkg/response"
)

type windowCount struct {
	start time.Time
	count int
}

type rateLimiter struct {
	mu            sync.Mutex
	window        time.Duration
	limit         int
	hits          map[string]*windowCount
	sweepInterval time.Duration
	lastSweep     time.Time
	now           func() time.Time
}

// RateLimit allows limit requests per window for each client ip and route
// pair.
func RateLimit(limit int, window time.Duration) gin.HandlerFunc {
	limiter := &rateLimiter{
		window:        window,
		limit:         limit,
		hits:          make(map[string]*windowCount),
		sweepInterval: window,
		now:           time.Now,
	}
	return limiter.handle
}

func (l *rateLimiter) handle(c *gin.Context) {
	if l.window <= 0 || l.limit <= 0 {
		c.Next()
		return
	}
	ip := c.ClientIP()
	path := c.FullPath()
	if path == "" {
		path = c.Request.URL.Path
	}
	key := strings.Join([]string{ip, path}, "|")

	now := l.now()
	l.mu.Lock()
	l.maybeSweepLocked(now)
	wc, ok := l.hits[key]
	if !ok || now.Sub(wc.start) >= l.window {
		l.hits[key] = &windowCount{start: now, count: 1}
		l.mu.Unlock()
		c.Next()
		return
	}
	if wc.count >= l.limit {
		l.mu.Unlock()
		logutil.GetLogger(c.Request.Context()).Warn("rate limit hit",
			zap.String("ip", ip),
			zap.String("path", path),
		)
		response.Error(c, http.StatusTooManyRequests, errcode.ErrTooMany, http.StatusText(http.StatusTooManyRequests))
		c.Abort()
		return
	}
	wc.count++
	l.mu.Unlock()
	c.Next()
}

func (l *rateLimiter) maybeSweepLocked(now time.Time) {
	if now.Sub(l.lastSweep) < l.sweepInterval {
		return
	}
	for key, wc := range l.hits {
		if now.Sub(wc.start) >= l.window {
			delete(l.hits, key)
		}
	}
	l.lastSweep = now
}
