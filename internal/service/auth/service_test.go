package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/ordersync/internal/domain"
)

func TestService_LoginAndAuthenticate(t *testing.T) {
	svc := NewService(map[string]string{"admin": "secret"}, time.Hour, nil)

	session, err := svc.Login("admin", "secret")
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, "admin", session.Username)

	got, err := svc.Authenticate(session.Token)
	require.NoError(t, err)
	assert.Equal(t, session, got)
}

func TestService_LoginRejectsBadCredentials(t *testing.T) {
	svc := NewService(map[string]string{"admin": "secret"}, time.Hour, nil)

	_, err := svc.Login("admin", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = svc.Login("ghost", "secret")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestService_TokenExpires(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	svc := NewService(map[string]string{"admin": "secret"}, time.Minute, nil)
	svc.now = func() time.Time { return now }

	session, err := svc.Login("admin", "secret")
	require.NoError(t, err)

	now = now.Add(59 * time.Second)
	_, err = svc.Authenticate(session.Token)
	require.NoError(t, err)

	now = now.Add(time.Second)
	_, err = svc.Authenticate(session.Token)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestService_UnknownAndRevokedTokens(t *testing.T) {
	svc := NewService(map[string]string{"admin": "secret"}, 0, nil)
	assert.Equal(t, defaultTokenTTL, svc.ttl)

	_, err := svc.Authenticate("")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	_, err = svc.Authenticate("nope")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	session, err := svc.Login("admin", "secret")
	require.NoError(t, err)
	svc.Revoke(session.Token)

	_, err = svc.Authenticate(session.Token)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestService_DeleteExpired(t *testing.T) {
	now := time.Now()
	svc := NewService(map[string]string{"admin": "secret"}, time.Minute, nil)
	svc.now = func() time.Time { return now }

	for range 3 {
		_, err := svc.Login("admin", "secret")
		require.NoError(t, err)
	}
	now = now.Add(2 * time.Minute)
	fresh, err := svc.Login("admin", "secret")
	require.NoError(t, err)

	deleted, err := svc.DeleteExpired(now, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	deleted, err = svc.DeleteExpired(now, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	_, err = svc.Authenticate(fresh.Token)
	assert.NoError(t, err)

	svc.mu.Lock()
	defer svc.mu.Unlock()
	assert.Len(t, svc.sessions, 1)
}
