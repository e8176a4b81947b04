package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	cfg := fromViper(v)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "/api", cfg.APIPrefix)
	assert.Equal(t, "jwt", cfg.JWT.CookieName)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiration)
	assert.Equal(t, int64(5*1024*1024), cfg.Uploads.MaxFileSize)
	assert.ElementsMatch(t, []string{"image/jpeg", "image/png", "image/gif", "image/webp"}, cfg.Uploads.AllowedMIMEs)
	assert.Equal(t, 2*time.Minute, cfg.Stats.CacheTTL)
}

func TestOverrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("JWT_EXPIRATION", "not-a-duration")
	v.Set("UPLOADS_MAX_FILE_SIZE", 0)
	v.Set("ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	v.Set("STATS_CACHE_TTL", "30s")
	cfg := fromViper(v)

	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiration)
	assert.Equal(t, int64(5*1024*1024), cfg.Uploads.MaxFileSize)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 30*time.Second, cfg.Stats.CacheTTL)
}
