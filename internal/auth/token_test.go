package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/complaint-service/internal/domain"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", 30)
	actor := domain.Actor{ID: 12, Kind: domain.ActorKindEmployee, RoleID: 2, DivisionID: 4}

	token, expiresAt, err := tm.GenerateToken(actor)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), expiresAt, 5*time.Second)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	got, err := claims.Actor()
	require.NoError(t, err)
	assert.Equal(t, actor, got)
}

func TestTokenManager_Rejects(t *testing.T) {
	tm := NewTokenManager("secret", 30)
	token, _, err := tm.GenerateToken(domain.Actor{ID: 1, Kind: domain.ActorKindCustomer})
	require.NoError(t, err)

	_, err = NewTokenManager("other-secret", 30).ParseToken(token)
	assert.Error(t, err)

	expired := NewTokenManager("secret", 30)
	expired.nowFn = func() time.Time { return time.Now().Add(-time.Hour) }
	old, _, err := expired.GenerateToken(domain.Actor{ID: 1, Kind: domain.ActorKindCustomer})
	require.NoError(t, err)
	_, err = tm.ParseToken(old)
	assert.Error(t, err)

	system, _, err := tm.GenerateToken(domain.Actor{ID: 1, Kind: domain.ActorKindSystem})
	require.NoError(t, err)
	claims, err := tm.ParseToken(system)
	require.NoError(t, err)
	_, err = claims.Actor()
	assert.Error(t, err)
}

func TestPasswords(t *testing.T) {
	hash, err := HashPassword("s3cret", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NoError(t, ComparePassword(hash, "s3cret"))
	assert.Error(t, ComparePassword(hash, "guess"))
}
