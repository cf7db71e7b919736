package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"
)

func TestAuthDisabledWithoutPassword(t *testing.T) {
	auth, err := NewAuthService("", "", "secret", time.Hour)
	require.NoError(t, err)

	assert.False(t, auth.Enabled())
	_, apiErr := auth.Login(context.Background(), "anything")
	require.NotNil(t, apiErr)
	assert.Equal(t, "auth_disabled", apiErr.Code)
}

func TestAuthLoginIssuesParsableToken(t *testing.T) {
	auth, err := NewAuthService("hunter2", "", "secret", time.Hour)
	require.NoError(t, err)
	require.True(t, auth.Enabled())

	result, apiErr := auth.Login(context.Background(), "hunter2")
	require.Nil(t, apiErr)
	assert.NotEmpty(t, result.Token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), result.ExpiresAt, time.Minute)

	subject, apiErr := auth.ParseToken(result.Token)
	require.Nil(t, apiErr)
	assert.Equal(t, controlSubject, subject)

	other, err := NewAuthService("hunter2", "", "other-secret", time.Hour)
	require.NoError(t, err)
	_, apiErr = other.ParseToken(result.Token)
	require.NotNil(t, apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
}

func TestAuthAcceptsPrehashedPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)

	auth, err := NewAuthService("", string(hash), "secret", time.Hour)
	require.NoError(t, err)

	_, apiErr := auth.Login(context.Background(), "hunter2")
	assert.Nil(t, apiErr)

	_, err = NewAuthService("", "not-a-hash", "secret", time.Hour)
	assert.Error(t, err)
}

func TestAuthRejectsWrongPasswordAndThrottles(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)
	auth, err := NewAuthService("", string(hash), "secret", time.Hour)
	require.NoError(t, err)
	auth.limiter = rate.NewLimiter(0, 2)
	ctx := context.Background()

	_, apiErr := auth.Login(ctx, "wrong")
	require.NotNil(t, apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)

	_, apiErr = auth.Login(ctx, "hunter2")
	require.Nil(t, apiErr)

	_, apiErr = auth.Login(ctx, "hunter2")
	require.NotNil(t, apiErr)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.Status)
}

func TestAuthRequiresSecretWithPassword(t *testing.T) {
	_, err := NewAuthService("hunter2", "", "", time.Hour)
	assert.Error(t, err)

	disabled, err := NewAuthService("", "", "", time.Hour)
	require.NoError(t, err)
	assert.False(t, disabled.Enabled())
}

func TestAuthRejectsTokenSignedWithOtherSecret(t *testing.T) {
	auth, err := NewAuthService("hunter2", "", "configured-secret", time.Hour)
	require.NoError(t, err)

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   controlSubject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("change-this-secret"))
	require.NoError(t, err)

	_, apiErr := auth.ParseToken(forged)
	require.NotNil(t, apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
}
