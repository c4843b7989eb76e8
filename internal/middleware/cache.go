package middleware

import (
	"bytes"
	"crypto/sha1"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/tickethub/tickethub/internal/config"
)

// bodyRecorder tees the response body so a successful response can be
// stored after it has been sent to the client.
type bodyRecorder struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
	limit  int
}

func (w *bodyRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	if w.buf.Len()+len(b) <= w.limit {
		w.buf.Write(b)
	} else {
		// Over the limit: poison the buffer so the entry is skipped.
		w.buf.Reset()
		w.limit = 0
	}
	return w.ResponseWriter.Write(b)
}

// NewResponseCache caches successful JSON GET responses in Redis,
// keyed by request path and query string. Cached entries are replayed
// verbatim with an X-Cache: HIT header. Non-GET requests, error
// responses and oversized bodies are never cached. Without a Redis
// client the middleware is a pass-through.
func NewResponseCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method != http.MethodGet {
				return next(c)
			}
			key := cacheKey(cfg.Prefix, c)
			ctx := c.Request().Context()

			if body, err := rdb.Get(ctx, key).Bytes(); err == nil {
				c.Response().Header().Set("X-Cache", "HIT")
				return c.JSONBlob(http.StatusOK, body)
			}

			rec := &bodyRecorder{
				ResponseWriter: c.Response().Writer,
				status:         http.StatusOK,
				limit:          cfg.MaxBodyBytes,
			}
			c.Response().Writer = rec
			if err := next(c); err != nil {
				return err
			}
			if rec.status == http.StatusOK && rec.buf.Len() > 0 {
				// Best effort; a failed SET only costs the next request
				// a cache miss.
				_ = rdb.Set(ctx, key, rec.buf.Bytes(), ttl).Err()
			}
			return nil
		}
	}
}

// cacheKey digests the concrete request path, not the registered
// route: the cached routes carry an :id parameter, so keying on the
// route pattern would hand every show the same entry.
func cacheKey(prefix string, c echo.Context) string {
	u := c.Request().URL
	sum := sha1.Sum([]byte(u.Path + "?" + u.RawQuery))
	return fmt.Sprintf("%s:%x", prefix, sum)
}
