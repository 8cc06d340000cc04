package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"rideflux/internal/redis"
)

const (
	idempotencyHeader = "Idempotency-Key"
	replayHeader      = "X-Idempotent-Replay"
)

// responseWriter wraps gin.ResponseWriter to capture the response.
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Idempotency returns middleware that replays cached responses for POST
// requests carrying an Idempotency-Key. Keys are scoped to the request
// path, and only 2xx JSON responses are cached; anything else passes
// through uncached. A replay is marked with X-Idempotent-Replay so clients
// can tell it apart from a fresh write.
func Idempotency(store redis.IdempotencyStoreInterface) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		key := c.GetHeader(idempotencyHeader)
		if key == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		endpoint := c.Request.URL.Path

		cached, err := store.Get(ctx, key, endpoint)
		if err != nil {
			// Redis error - proceed without idempotency.
			c.Next()
			return
		}
		if cached != nil {
			c.Header(replayHeader, "true")
			c.Data(cached.StatusCode, "application/json", cached.Body)
			c.Abort()
			return
		}

		w := &responseWriter{
			ResponseWriter: c.Writer,
			body:           &bytes.Buffer{},
		}
		c.Writer = w

		c.Next()

		if c.Writer.Status() >= 200 && c.Writer.Status() < 300 && json.Valid(w.body.Bytes()) {
			_ = store.Set(ctx, key, endpoint, &redis.CachedResponse{
				StatusCode: c.Writer.Status(),
				Body:       w.body.Bytes(),
			})
		}
	}
}
