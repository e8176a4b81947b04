package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lostid-api/internal/middleware"
	"github.com/noah-isme/lostid-api/internal/models"
	appErrors "github.com/noah-isme/lostid-api/pkg/errors"
)

type fakeAuthService struct {
	loginErr   error
	lastLogin  models.LoginRequest
	adminLogin bool
}

func (f *fakeAuthService) Signup(ctx context.Context, req models.SignupRequest) (*models.LoginResponse, error) {
	return &models.LoginResponse{AccessToken: "signup-token", User: models.UserInfo{Email: req.Email, Role: models.RoleStudent}}, nil
}

func (f *fakeAuthService) LoginStudent(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	f.lastLogin = req
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &models.LoginResponse{AccessToken: "student-token", User: models.UserInfo{ID: "s-1", Role: models.RoleStudent}}, nil
}

func (f *fakeAuthService) LoginAdmin(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	f.adminLogin = true
	return &models.LoginResponse{AccessToken: "admin-token", User: models.UserInfo{ID: "a-1", Role: models.RoleAdmin}}, nil
}

func (f *fakeAuthService) Me(ctx context.Context, claims *models.JWTClaims) (*models.UserInfo, error) {
	return &models.UserInfo{ID: claims.UserID, Role: claims.Role}, nil
}

func (f *fakeAuthService) TokenTTL() time.Duration { return time.Hour }

func jsonRequest(method, target string, body interface{}) *http.Request {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(method, target, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == middleware.DefaultCookieName {
			return cookie
		}
	}
	return nil
}

func TestAuthHandlerLoginSetsHTTPOnlyCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &fakeAuthService{}
	h := NewAuthHandler(svc, CookieConfig{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = jsonRequest(http.MethodPost, "/api/auth/login", map[string]string{"email": "a@campus.edu", "password": "pw"})
	c.Request.Header.Set("User-Agent", "test-agent")

	h.Login(c)

	require.Equal(t, http.StatusOK, rec.Code)
	cookie := sessionCookie(rec)
	require.NotNil(t, cookie)
	assert.Equal(t, "student-token", cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, 3600, cookie.MaxAge)
	assert.Equal(t, "test-agent", svc.lastLogin.UserAgent)
	assert.Contains(t, rec.Body.String(), `"access_token":"student-token"`)
}

func TestAuthHandlerLoginFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewAuthHandler(&fakeAuthService{loginErr: appErrors.ErrInvalidCredentials}, CookieConfig{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = jsonRequest(http.MethodPost, "/api/auth/login", map[string]string{"email": "a@campus.edu", "password": "bad"})
	h.Login(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, sessionCookie(rec))
}

func TestAuthHandlerSignupReturnsCreated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewAuthHandler(&fakeAuthService{}, CookieConfig{Secure: true})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = jsonRequest(http.MethodPost, "/api/auth/signup", models.SignupRequest{Email: "a@campus.edu"})
	h.Signup(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
	cookie := sessionCookie(rec)
	require.NotNil(t, cookie)
	assert.True(t, cookie.Secure)
}

func TestAuthHandlerRejectsMalformedJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewAuthHandler(&fakeAuthService{}, CookieConfig{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/auth/admin/login", bytes.NewBufferString("{"))
	c.Request.Header.Set("Content-Type", "application/json")
	h.AdminLogin(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthHandlerLogoutClearsCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewAuthHandler(&fakeAuthService{}, CookieConfig{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	h.Logout(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	cookie := sessionCookie(rec)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.True(t, cookie.MaxAge < 0)
}

func TestAuthHandlerMeRequiresPrincipal(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewAuthHandler(&fakeAuthService{}, CookieConfig{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	h.Me(c)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "s-1", Role: models.RoleStudent})
	h.Me(c)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":"s-1"`)
}
