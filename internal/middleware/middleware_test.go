package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lostid-api/internal/models"
	appErrors "github.com/noah-isme/lostid-api/pkg/errors"
)

type tokenStub map[string]*models.JWTClaims

func (s tokenStub) ValidateToken(token string) (*models.JWTClaims, error) {
	if claims, ok := s[token]; ok {
		return claims, nil
	}
	return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
}

var testTokens = tokenStub{
	"student-token": {UserID: "s-1", Role: models.RoleStudent},
	"admin-token":   {UserID: "a-1", Role: models.RoleAdmin},
}

func newGuardedRouter(roles ...models.UserRole) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	chain := []gin.HandlerFunc{JWT(testTokens, "")}
	if len(roles) > 0 {
		chain = append(chain, RequireRoles(roles...))
	}
	chain = append(chain, func(c *gin.Context) {
		c.String(http.StatusOK, ClaimsFrom(c).UserID)
	})
	r.GET("/guarded", chain...)
	return r
}

func TestJWTReadsCookieBeforeBearer(t *testing.T) {
	router := newGuardedRouter()

	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	req.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: "admin-token"})
	req.Header.Set("Authorization", "Bearer student-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "a-1", rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/guarded", nil)
	req.Header.Set("Authorization", "Bearer student-token")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "s-1", rec.Body.String())
}

func TestJWTRejectsMissingOrInvalidToken(t *testing.T) {
	router := newGuardedRouter()
	cases := map[string]string{
		"missing":   "",
		"malformed": "Token student-token",
		"unknown":   "Bearer forged",
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestRequireRoles(t *testing.T) {
	router := newGuardedRouter(models.RoleAdmin, models.RoleSuperAdmin)

	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	req.Header.Set("Authorization", "Bearer student-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/guarded", nil)
	req.Header.Set("Authorization", "Bearer admin-token")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestOptionalJWTNeverBlocks(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/open", OptionalJWT(testTokens, ""), func(c *gin.Context) {
		if claims := ClaimsFrom(c); claims != nil {
			c.String(http.StatusOK, claims.UserID)
			return
		}
		c.String(http.StatusOK, "anonymous")
	})

	req := httptest.NewRequest(http.MethodGet, "/open", nil)
	req.Header.Set("Authorization", "Bearer forged")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, "anonymous", rec.Body.String())
}

type observed struct {
	mu     sync.Mutex
	paths  []string
	status []int
}

func (o *observed) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.paths = append(o.paths, path)
	o.status = append(o.status, status)
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	obs := &observed{}
	r := gin.New()
	r.Use(Metrics(obs))
	r.GET("/claims/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for _, path := range []string{"/claims/abc", "/nowhere"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}
	assert.Equal(t, []string{"/claims/:id", "unmatched"}, obs.paths)
	assert.Equal(t, []int{http.StatusNoContent, http.StatusNotFound}, obs.status)
}

type auditStub struct {
	logs []*models.AuditLog
	err  error
}

func (a *auditStub) Create(ctx context.Context, log *models.AuditLog) error {
	a.logs = append(a.logs, log)
	return a.err
}

func TestAuditRecordsOnlySuccessfulRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	writer := &auditStub{err: errors.New("insert failed")}
	r := gin.New()
	r.GET("/export", JWT(testTokens, ""), Audit(writer, nil, models.AuditActionExport, models.AuditResourceExport), func(c *gin.Context) {
		if c.Query("fail") != "" {
			c.Status(http.StatusNotFound)
			return
		}
		c.Status(http.StatusOK)
	})

	for _, target := range []string{"/export?type=claims", "/export?fail=1"} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		req.Header.Set("Authorization", "Bearer admin-token")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
	}

	require.Len(t, writer.logs, 1)
	assert.Equal(t, models.AuditActionExport, writer.logs[0].Action)
	require.NotNil(t, writer.logs[0].UserID)
	assert.Equal(t, "a-1", *writer.logs[0].UserID)
	assert.Contains(t, string(writer.logs[0].NewValues), "type=claims")
}

func TestResponseMetaCarriesCacheHit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var meta map[string]interface{}
	r := gin.New()
	r.Use(WithResponseMeta())
	r.GET("/stats", func(c *gin.Context) {
		SetCacheHit(c, true)
		meta = ResponseMeta(c)
		c.Status(http.StatusOK)
	})
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/stats", nil))

	require.NotNil(t, meta)
	assert.Equal(t, true, meta["cache_hit"])
	assert.Contains(t, meta, "processing_time_ms")
}
