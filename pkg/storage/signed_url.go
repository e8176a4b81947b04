package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidToken = errors.New("invalid download token")
	ErrTokenExpired = errors.New("download token expired")
)

// SignedURLSigner issues and checks HMAC tokens that grant time-limited access to one file.
type SignedURLSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSignedURLSigner(secret string, ttl time.Duration) *SignedURLSigner {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &SignedURLSigner{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Sign returns a token of the form "<expiresUnix>.<hexsig>" bound to filename.
func (s *SignedURLSigner) Sign(filename string) (string, time.Time, error) {
	if filename == "" {
		return "", time.Time{}, fmt.Errorf("filename required")
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("signing secret missing")
	}
	expiresAt := s.now().Add(s.ttl)
	ts := strconv.FormatInt(expiresAt.Unix(), 10)
	return ts + "." + s.signature(filename, ts), expiresAt, nil
}

// Verify checks that token was issued for filename and has not expired.
func (s *SignedURLSigner) Verify(filename, token string) error {
	ts, sig, ok := strings.Cut(token, ".")
	if !ok || ts == "" || sig == "" {
		return ErrInvalidToken
	}
	expUnix, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return ErrInvalidToken
	}
	if !hmac.Equal([]byte(s.signature(filename, ts)), []byte(sig)) {
		return ErrInvalidToken
	}
	if s.now().After(time.Unix(expUnix, 0)) {
		return ErrTokenExpired
	}
	return nil
}

// URL renders the signed download path for filename under prefix.
func (s *SignedURLSigner) URL(prefix, filename string) (string, error) {
	token, _, err := s.Sign(filename)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/%s?token=%s", strings.TrimRight(prefix, "/"), filename, token), nil
}

func (s *SignedURLSigner) signature(filename, ts string) string {
	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write([]byte(filename + "|" + ts))
	return hex.EncodeToString(mac.Sum(nil))
}
