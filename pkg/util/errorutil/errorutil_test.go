package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainError(t *testing.T) {
	assert.Nil(t, ToDomainError(nil))

	validation := NewValidationError("bad", map[string]any{"field": "x"})
	got := ToDomainError(fmt.Errorf("wrapped: %w", validation))
	require.NotNil(t, got)
	assert.Equal(t, "VALIDATION_FAILED", got.Code)
	assert.Equal(t, http.StatusBadRequest, got.HTTPStatus)

	notFound := ToDomainError(pgx.ErrNoRows)
	assert.Equal(t, http.StatusNotFound, notFound.HTTPStatus)

	internal := ToDomainError(errors.New("disk on fire"))
	assert.Equal(t, "INTERNAL_ERROR", internal.Code)
	assert.Equal(t, "internal server error", internal.Message)
	assert.Contains(t, internal.Error(), "disk on fire")
}

func TestNotFoundOr(t *testing.T) {
	err := NotFoundOr(fmt.Errorf("get: %w", pgx.ErrNoRows), "ticket", map[string]any{"ticket_id": "t1"})
	assert.True(t, HasCode(err, "NOT_FOUND"))
	assert.Equal(t, "ticket not found", err.Error())

	err = NotFoundOr(errors.New("timeout"), "ticket", nil)
	assert.True(t, HasCode(err, "INTERNAL_ERROR"))

	assert.Nil(t, MapError(nil))
}

func TestConstructors(t *testing.T) {
	cases := []struct {
		err    error
		code   string
		status int
	}{
		{NewUnauthorized("x"), "UNAUTHORIZED", http.StatusUnauthorized},
		{NewForbidden("x"), "FORBIDDEN", http.StatusForbidden},
		{NewConflict("x", nil), "CONFLICT", http.StatusConflict},
		{NewNotFound("ticket", nil), "NOT_FOUND", http.StatusNotFound},
	}
	for _, tc := range cases {
		domainErr := ToDomainError(tc.err)
		assert.Equal(t, tc.code, domainErr.Code)
		assert.Equal(t, tc.status, domainErr.HTTPStatus)
	}
}
