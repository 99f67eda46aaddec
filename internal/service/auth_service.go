package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/complaint-service/internal/auth"
	"github.com/spec-kit/complaint-service/internal/config"
	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/repository"
	apperrors "github.com/spec-kit/complaint-service/pkg/util/errorutil"
)

// AuthService coordinates login flows for customers and employees.
type AuthService struct {
	customers repository.CustomerRepository
	employees repository.EmployeeRepository
	tokenMgr  *auth.TokenManager
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	CustomerRepo repository.CustomerRepository
	EmployeeRepo repository.EmployeeRepository
}

// LoginResult is an issued access token with its caller.
type LoginResult struct {
	Actor     domain.Actor
	Token     string
	ExpiresAt time.Time
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	return &AuthService{
		customers: deps.CustomerRepo,
		employees: deps.EmployeeRepo,
		tokenMgr:  auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
	}
}

// LoginCustomer authenticates a customer.
func (s *AuthService) LoginCustomer(ctx context.Context, email, password string) (*LoginResult, error) {
	customer, err := s.customers.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, s.unknownAccount(err, password)
	}
	if err := auth.ComparePassword(customer.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	return s.issue(domain.Actor{ID: customer.ID, Kind: domain.ActorKindCustomer})
}

// LoginEmployee authenticates an employee and embeds role and division in the token.
func (s *AuthService) LoginEmployee(ctx context.Context, email, password string) (*LoginResult, error) {
	employee, err := s.employees.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, s.unknownAccount(err, password)
	}
	if err := auth.ComparePassword(employee.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	if !employee.Active {
		return nil, apperrors.NewUnauthorized("employee account is inactive")
	}
	return s.issue(employee.Actor())
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) issue(actor domain.Actor) (*LoginResult, error) {
	token, exp, err := s.tokenMgr.GenerateToken(actor)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &LoginResult{Actor: actor, Token: token, ExpiresAt: exp}, nil
}

// unknownAccount spends a bcrypt comparison so missing emails take as long as wrong passwords.
func (s *AuthService) unknownAccount(err error, password string) error {
	if !errors.Is(err, pgx.ErrNoRows) {
		return apperrors.MapError(err)
	}
	auth.CompareAgainstPlaceholder(password)
	return apperrors.NewUnauthorized("invalid credentials")
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
