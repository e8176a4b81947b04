package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lostid-api/internal/middleware"
	"github.com/noah-isme/lostid-api/internal/models"
	"github.com/noah-isme/lostid-api/internal/service"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	return middleware.ClaimsFrom(c)
}

// actorFromContext builds the service actor for the verified principal plus request metadata.
func actorFromContext(c *gin.Context) service.Actor {
	return service.ActorFromClaims(claimsFromContext(c), c.ClientIP(), c.GetHeader("User-Agent"))
}

// pageQuery reads page and limit. Missing or malformed values become zero so the service default applies.
func pageQuery(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.Query("page"))
	limit, _ = strconv.Atoi(c.Query("limit"))
	return page, limit
}

// intQuery parses an optional integer query parameter. ok is false when present but malformed.
func intQuery(c *gin.Context, key string) (value int, ok bool) {
	raw := c.Query(key)
	if raw == "" {
		return 0, true
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return value, true
}

func withMeta(c *gin.Context, hit bool) map[string]interface{} {
	middleware.SetCacheHit(c, hit)
	return middleware.ResponseMeta(c)
}
