package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// DeviceRateLimiter hands out a token-bucket limiter per device id,
// falling back to the client IP when no device id is present on the
// request. Limiters are created lazily and kept for the process
// lifetime; this domain's device cardinality is bounded by real traffic,
// not an attacker-controlled input space, so no eviction is needed.
type DeviceRateLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*rate.Limiter
	limit     rate.Limit
	burst     int
	whitelist map[string]struct{}
}

// NewDeviceRateLimiter builds a limiter allowing requestsPerMinute per
// device, with a burst equal to that same per-minute allowance.
func NewDeviceRateLimiter(requestsPerMinute int, whitelistIPs []string) *DeviceRateLimiter {
	wl := make(map[string]struct{}, len(whitelistIPs)+2)
	wl["127.0.0.1"] = struct{}{}
	wl["::1"] = struct{}{}
	for _, ip := range whitelistIPs {
		if ip != "" {
			wl[ip] = struct{}{}
		}
	}

	return &DeviceRateLimiter{
		limiters:  make(map[string]*rate.Limiter),
		limit:     rate.Limit(float64(requestsPerMinute) / 60.0),
		burst:     requestsPerMinute,
		whitelist: wl,
	}
}

func (d *DeviceRateLimiter) limiterFor(key string) *rate.Limiter {
	d.mu.Lock()
	defer d.mu.Unlock()

	l, ok := d.limiters[key]
	if !ok {
		l = rate.NewLimiter(d.limit, d.burst)
		d.limiters[key] = l
	}
	return l
}

// Middleware returns a gin.HandlerFunc that rate-limits by the request's
// "device" query/form value, or by client IP when absent.
func (d *DeviceRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if _, ok := d.whitelist[ip]; ok {
			c.Next()
			return
		}

		key := c.Query("device")
		if key == "" {
			key = c.PostForm("device")
		}
		if key == "" {
			key = ip
		}

		if !d.limiterFor(key).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"code":   429,
				"result": "rate limit exceeded",
			})
			return
		}

		c.Next()
	}
}
