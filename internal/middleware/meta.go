package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lostid-api/pkg/middleware/requestid"
)

const (
	requestStartKey = "request_start"
	cacheHitKey     = "cache_hit"
)

// WithResponseMeta stamps the request start so handlers can report processing time.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(requestStartKey, time.Now())
		c.Next()
	}
}

// SetCacheHit records whether the payload about to be written came from cache.
func SetCacheHit(c *gin.Context, hit bool) {
	c.Set(cacheHitKey, hit)
}

// ResponseMeta builds the meta block for a response: request ID, cache hit flag when one was
// recorded, and elapsed time so far.
func ResponseMeta(c *gin.Context) map[string]interface{} {
	meta := map[string]interface{}{}
	if id := requestid.Value(c); id != "" {
		meta["request_id"] = id
	}
	if hit, ok := c.Get(cacheHitKey); ok {
		meta[cacheHitKey] = hit
	}
	if start, ok := c.Get(requestStartKey); ok {
		if t, ok := start.(time.Time); ok {
			meta["processing_time_ms"] = time.Since(t).Milliseconds()
		}
	}
	if len(meta) == 0 {
		return nil
	}
	return meta
}
