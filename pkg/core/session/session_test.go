package session

import (
	"context"
	"testing"
	"time"

	"github.com/dwalast/drugguide/pkg/common/code"
	"github.com/dwalast/drugguide/pkg/common/constant"
	"github.com/dwalast/drugguide/pkg/repo/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newSession(c *clock, opts ...Option) *Session {
	opts = append([]Option{
		WithCredentials("admin@dwalast.com", "s3cret"),
		WithSecret("test-secret"),
		WithClock(c.now),
	}, opts...)
	return New(kv.NewMemory(), opts...)
}

func TestLoginAndExpiry(t *testing.T) {
	ctx := context.Background()
	c := &clock{t: time.Date(2026, 10, 15, 10, 0, 0, 0, time.UTC)}
	s := newSession(c)

	assert.False(t, s.IsAuthenticated(ctx))
	_, err := s.Login(ctx, "admin@dwalast.com", "wrong")
	assert.Equal(t, code.LoginFailed, code.CodeOf(err))
	assert.False(t, s.IsAuthenticated(ctx))

	tok, err := s.Login(ctx, "admin@dwalast.com", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "Bearer", tok.TokenType)
	assert.Equal(t, int64(24*60*60), tok.ExpiresIn)
	assert.True(t, s.IsAuthenticated(ctx))

	c.t = c.t.Add(24 * time.Hour)
	assert.True(t, s.IsAuthenticated(ctx))

	c.t = c.t.Add(time.Millisecond)
	assert.False(t, s.IsAuthenticated(ctx))
	_, err = s.kv.Get(ctx, constant.AuthKey)
	assert.ErrorIs(t, err, code.RecordNotFound)
}

func TestLogoutAndCorruptFlag(t *testing.T) {
	ctx := context.Background()
	c := &clock{t: time.Now()}
	s := newSession(c)

	_, err := s.Login(ctx, "admin@dwalast.com", "s3cret")
	require.NoError(t, err)
	s.Logout(ctx)
	assert.False(t, s.IsAuthenticated(ctx))

	require.NoError(t, s.kv.Set(ctx, constant.AuthKey, []byte("{")))
	assert.False(t, s.IsAuthenticated(ctx))
	_, err = s.kv.Get(ctx, constant.AuthKey)
	assert.ErrorIs(t, err, code.RecordNotFound)
}

func TestVerifyToken(t *testing.T) {
	ctx := context.Background()
	c := &clock{t: time.Now()}
	s := newSession(c)

	tok, err := s.Login(ctx, "admin@dwalast.com", "s3cret")
	require.NoError(t, err)

	claims, err := s.Verify(tok.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "admin@dwalast.com", claims.Email)

	other := newSession(c, WithSecret("another-secret"))
	_, err = other.Verify(tok.AccessToken)
	assert.Equal(t, code.InvalidToken, code.CodeOf(err))

	c.t = c.t.Add(25 * time.Hour)
	_, err = s.Verify(tok.AccessToken)
	assert.Equal(t, code.InvalidToken, code.CodeOf(err))

	_, err = s.Verify("not-a-token")
	assert.Equal(t, code.InvalidToken, code.CodeOf(err))
}

func TestLoginWithoutConfiguredCredentials(t *testing.T) {
	s := New(kv.NewMemory(), WithCredentials("", ""))
	_, err := s.Login(context.Background(), "", "")
	assert.Equal(t, code.LoginFailed, code.CodeOf(err))
}
