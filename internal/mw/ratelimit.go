package mw

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// ClientRateLimiter stores a rate limiter per client address.
type ClientRateLimiter struct {
	clients map[string]*rate.Limiter
	mu      *sync.RWMutex
	r       rate.Limit
	b       int
}

// NewClientRateLimiter creates a new ClientRateLimiter.
func NewClientRateLimiter(r rate.Limit, b int) *ClientRateLimiter {
	return &ClientRateLimiter{
		clients: make(map[string]*rate.Limiter),
		mu:      &sync.RWMutex{},
		r:       r,
		b:       b,
	}
}

func (l *ClientRateLimiter) add(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter := rate.NewLimiter(l.r, l.b)
	l.clients[key] = limiter
	return limiter
}

// GetLimiter returns the rate limiter for a client key.
func (l *ClientRateLimiter) GetLimiter(key string) *rate.Limiter {
	l.mu.RLock()
	limiter, exists := l.clients[key]
	l.mu.RUnlock()

	if !exists {
		return l.add(key)
	}
	return limiter
}

// RateLimiter is a middleware limiting requests per client. When ipHeader
// is set (deployments behind a proxy) the client key is read from that
// header, otherwise from the connection's remote address.
func RateLimiter(r rate.Limit, b int, ipHeader string) gin.HandlerFunc {
	limiter := NewClientRateLimiter(r, b)
	return func(c *gin.Context) {
		key := ""
		if ipHeader != "" {
			key = c.GetHeader(ipHeader)
		}
		if key == "" {
			key = c.ClientIP()
		}
		if !limiter.GetLimiter(key).Allow() {
			c.AbortWithStatus(http.StatusTooManyRequests)
			return
		}
		c.Next()
	}
}
