package middleware

import (
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"kickstep-be/internal/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Rate limit tiers
const (
	// Checkout / payment webhook (strict)
	limitStrict = rate.Limit(2)
	burstStrict = 5

	// General browsing (default)
	limitGeneral = rate.Limit(10)
	burstGeneral = 20
)

// visitor holds the rate limiter and the last time it was seen.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

var (
	visitors = make(map[string]*visitor)
	mu       sync.Mutex
)

func init() {
	go cleanupVisitors()
}

// getVisitor retrieves or creates a rate limiter for the given identity.
func getVisitor(key string, r rate.Limit, b int) *rate.Limiter {
	mu.Lock()
	defer mu.Unlock()

	v, exists := visitors[key]
	if !exists {
		limiter := rate.NewLimiter(r, b)
		visitors[key] = &visitor{limiter, time.Now()}
		return limiter
	}

	v.lastSeen = time.Now()
	return v.limiter
}

// cleanupVisitors removes stale entries to prevent unbounded growth.
func cleanupVisitors() {
	for {
		time.Sleep(time.Minute)

		mu.Lock()
		for key, v := range visitors {
			if time.Since(v.lastSeen) > 3*time.Minute {
				delete(visitors, key)
			}
		}
		mu.Unlock()
	}
}

func identityFor(c *gin.Context) string {
	if userID, ok := utils.GetUserIDFromContext(c.Request.Context()); ok {
		return fmt.Sprintf("user:%d", userID)
	}
	if deviceID := c.GetHeader("X-Device-ID"); deviceID != "" {
		return "device:" + deviceID
	}
	ip, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		ip = c.Request.RemoteAddr
	}
	return "ip:" + ip
}

// RateLimit applies the general tier to a route group.
func RateLimit() gin.HandlerFunc {
	return rateLimitWith(limitGeneral, burstGeneral, "general")
}

// RateLimitStrict applies the strict tier (checkout, webhook).
func RateLimitStrict() gin.HandlerFunc {
	return rateLimitWith(limitStrict, burstStrict, "strict")
}

func rateLimitWith(limit rate.Limit, burst int, tier string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := tier + ":" + identityFor(c)
		if !getVisitor(key, limit, burst).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
