// Package session is the admin login. Credentials come from configuration;
// a successful login leaves a timestamped flag in local storage and returns
// a signed token for API calls.
package session

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dwalast/drugguide/internal/config"
	"github.com/dwalast/drugguide/pkg/common/code"
	"github.com/dwalast/drugguide/pkg/common/constant"
	"github.com/dwalast/drugguide/pkg/common/uuid"
	"github.com/dwalast/drugguide/pkg/middleware/logger"
	"github.com/dwalast/drugguide/pkg/repo"
	"github.com/golang-jwt/jwt/v5"
)

const issuer = "drugguide"

type authData struct {
	IsAuthenticated bool  `json:"isAuthenticated"`
	Timestamp       int64 `json:"timestamp"`
}

type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type Option func(*Session)

func WithCredentials(email, password string) Option {
	return func(s *Session) {
		s.email = email
		s.password = password
	}
}

func WithSecret(secret string) Option {
	return func(s *Session) {
		s.secret = []byte(secret)
	}
}

func WithTTL(ttl time.Duration) Option {
	return func(s *Session) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

type Session struct {
	kv       repo.KV
	email    string
	password string
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
}

func New(kv repo.KV, opts ...Option) *Session {
	conf := config.Global().Admin
	s := &Session{
		kv:       kv,
		email:    conf.Email,
		password: conf.Password,
		secret:   []byte(conf.JWTSecret),
		ttl:      constant.AuthTTL,
		now:      time.Now,
	}
	if conf.TokenTTL > 0 {
		s.ttl = conf.TokenTTL
	}
	for _, opt := range opts {
		opt(s)
	}
	if len(s.secret) == 0 {
		// tokens then only survive as long as the process
		s.secret = make([]byte, 32)
		_, _ = rand.Read(s.secret)
	}
	return s
}

func equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// Login checks the credentials, stores the local flag and issues a token.
func (s *Session) Login(ctx context.Context, email, password string) (*Token, error) {
	if s.email == "" || s.password == "" {
		logger.Warnf(ctx, "admin login attempted without configured credentials")
		return nil, code.LoginFailed
	}
	if !equal(email, s.email) || !equal(password, s.password) {
		return nil, code.LoginFailed
	}

	now := s.now()
	raw, _ := json.Marshal(&authData{IsAuthenticated: true, Timestamp: now.UnixMilli()})
	if err := s.kv.Set(ctx, constant.AuthKey, raw); err != nil {
		logger.Errorf(ctx, "save auth flag err: %+v", err)
		return nil, err
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    issuer,
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}).SignedString(s.secret)
	if err != nil {
		logger.Errorf(ctx, "sign admin token err: %+v", err)
		return nil, err
	}
	return &Token{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.ttl / time.Second),
	}, nil
}

// IsAuthenticated reports whether the local flag is set and younger than
// the session lifetime. Expired or unreadable flags are removed.
func (s *Session) IsAuthenticated(ctx context.Context) bool {
	raw, err := s.kv.Get(ctx, constant.AuthKey)
	if err != nil {
		if !errors.Is(err, code.RecordNotFound) {
			logger.Warnf(ctx, "load auth flag err: %+v", err)
		}
		return false
	}
	data := &authData{}
	if err := json.Unmarshal(raw, data); err != nil {
		s.Logout(ctx)
		return false
	}
	if s.now().UnixMilli()-data.Timestamp > s.ttl.Milliseconds() {
		s.Logout(ctx)
		return false
	}
	return data.IsAuthenticated
}

func (s *Session) Logout(ctx context.Context) {
	if err := s.kv.Delete(ctx, constant.AuthKey); err != nil {
		logger.Warnf(ctx, "remove auth flag err: %+v", err)
	}
}

// Verify parses an admin token issued by Login.
func (s *Session) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithIssuer(issuer))
	if err != nil || !parsed.Valid {
		return nil, code.InvalidToken.WithCause(err)
	}
	return claims, nil
}
