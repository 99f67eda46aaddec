package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/complaint-service/internal/auth"
	"github.com/spec-kit/complaint-service/internal/config"
	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/repository/memory"
)

func newTestAuthService(t *testing.T) *AuthService {
	t.Helper()
	hash, err := auth.HashPassword("password123", bcrypt.MinCost)
	require.NoError(t, err)

	store := memory.NewStore()
	memory.SeedDemo(store, hash)
	store.AddEmployee(domain.Employee{FullName: "Former", Email: "former@example.com", PasswordHash: hash, RoleID: 2, DivisionID: 3})

	return NewAuthService(config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 15}, AuthDependencies{
		CustomerRepo: store.Customers(),
		EmployeeRepo: store.Employees(),
	})
}

func TestAuthService_LoginCustomer(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	result, err := svc.LoginCustomer(ctx, "  Customer@Example.com ", "password123")
	require.NoError(t, err)
	assert.Equal(t, domain.Actor{ID: 1, Kind: domain.ActorKindCustomer}, result.Actor)

	claims, err := svc.TokenManager().ParseToken(result.Token)
	require.NoError(t, err)
	actor, err := claims.Actor()
	require.NoError(t, err)
	assert.Equal(t, result.Actor, actor)

	_, err = svc.LoginCustomer(ctx, "customer@example.com", "wrong")
	requireStatus(t, err, http.StatusUnauthorized)

	_, err = svc.LoginCustomer(ctx, "nobody@example.com", "password123")
	requireStatus(t, err, http.StatusUnauthorized)
}

func TestAuthService_LoginEmployee(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	result, err := svc.LoginEmployee(ctx, "card@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, cardActor, result.Actor)

	claims, err := svc.TokenManager().ParseToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, int64(2), claims.DivisionID)

	_, err = svc.LoginEmployee(ctx, "former@example.com", "password123")
	requireStatus(t, err, http.StatusUnauthorized)

	_, err = svc.LoginEmployee(ctx, "customer@example.com", "password123")
	requireStatus(t, err, http.StatusUnauthorized)
}
