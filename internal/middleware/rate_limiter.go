package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/Alishanbouraa/chickensap/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// slidingWindow counts requests per IP within a fixed-size window.
type slidingWindow struct {
	mu      sync.Mutex
	entries map[string]*windowEntry
	limit   int
	window  time.Duration
}

type windowEntry struct {
	count     int
	windowEnd time.Time
}

func newSlidingWindow(limit int, window time.Duration) *slidingWindow {
	return &slidingWindow{
		entries: make(map[string]*windowEntry),
		limit:   limit,
		window:  window,
	}
}

// allow increments the IP's counter and reports whether it is within limit.
func (w *slidingWindow) allow(ip string) (bool, time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := time.Now()
	entry, ok := w.entries[ip]
	if !ok || now.After(entry.windowEnd) {
		entry = &windowEntry{windowEnd: now.Add(w.window)}
		w.entries[ip] = entry
	}
	entry.count++
	return entry.count <= w.limit, entry.windowEnd
}

func (w *slidingWindow) purge() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := time.Now()
	purged := 0
	for ip, entry := range w.entries {
		if now.After(entry.windowEnd) {
			delete(w.entries, ip)
			purged++
		}
	}
	return purged
}

var (
	loginWindow = newSlidingWindow(20, time.Minute)
	apiWindow   = newSlidingWindow(200, time.Minute)
)

// LoginRateLimiter limits login attempts to 20 per minute per IP.
func LoginRateLimiter() gin.HandlerFunc {
	return func(c *gin.Context) {
		if ok, _ := loginWindow.allow(c.ClientIP()); !ok {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("Too many login attempts. Try again in a minute."))
			return
		}
		c.Next()
	}
}

// RateLimiter is the general API limiter: 200 requests per minute per IP.
func RateLimiter() gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, windowEnd := apiWindow.allow(c.ClientIP())
		if !ok {
			c.Header("Retry-After", windowEnd.Format(time.RFC1123))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("Too many requests. Try again shortly."))
			return
		}
		c.Next()
	}
}

// Periodically drop expired entries so IPs that never return don't
// accumulate in the maps.
const purgeInterval = 5 * time.Minute

func init() {
	go func() {
		ticker := time.NewTicker(purgeInterval)
		defer ticker.Stop()
		for range ticker.C {
			login := loginWindow.purge()
			api := apiWindow.purge()
			if login > 0 || api > 0 {
				log.Debug().
					Int("login_entries_purged", login).
					Int("api_entries_purged", api).
					Msg("rate limiter maps purged")
			}
		}
	}()
}
