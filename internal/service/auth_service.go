package service

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"

	apperrors "pomodoro/desktop/internal/errors"
)

const controlSubject = "controller"

var (
	loginRate  = rate.Every(time.Second)
	loginBurst = 5
)

// AuthService guards the control API with a single shared password. With no
// password configured it is disabled and every request is allowed.
type AuthService struct {
	passwordHash []byte
	jwtSecret    []byte
	tokenTTL     time.Duration
	limiter      *rate.Limiter
}

type AuthResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// NewAuthService hashes password when given; otherwise passwordHash must be
// a bcrypt hash or empty. A password requires a non-empty jwtSecret.
func NewAuthService(password, passwordHash, jwtSecret string, tokenTTL time.Duration) (*AuthService, error) {
	s := &AuthService{
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		limiter:   rate.NewLimiter(loginRate, loginBurst),
	}

	switch {
	case password != "":
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash control password: %w", err)
		}
		s.passwordHash = hash
	case passwordHash != "":
		if _, err := bcrypt.Cost([]byte(passwordHash)); err != nil {
			return nil, fmt.Errorf("control password hash: %w", err)
		}
		s.passwordHash = []byte(passwordHash)
	}
	if s.Enabled() && len(s.jwtSecret) == 0 {
		return nil, fmt.Errorf("jwt secret is required when a control password is set")
	}
	return s, nil
}

func (s *AuthService) Enabled() bool {
	return len(s.passwordHash) > 0
}

func (s *AuthService) Login(_ context.Context, password string) (*AuthResult, *apperrors.APIError) {
	if !s.Enabled() {
		return nil, apperrors.BadRequest("auth_disabled", "no control password is configured")
	}
	if password == "" {
		return nil, apperrors.BadRequest("invalid_credentials", "password is required")
	}
	if !s.limiter.Allow() {
		return nil, apperrors.TooManyRequests("too many login attempts")
	}

	if bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)) != nil {
		return nil, apperrors.Unauthorized("invalid password")
	}

	return s.issueToken()
}

func (s *AuthService) ParseToken(tokenString string) (string, *apperrors.APIError) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return "", apperrors.Unauthorized("invalid token")
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return "", apperrors.Unauthorized("invalid token")
	}

	if claims.Subject != controlSubject {
		return "", apperrors.Unauthorized("invalid token subject")
	}

	return claims.Subject, nil
}

func (s *AuthService) issueToken() (*AuthResult, *apperrors.APIError) {
	now := time.Now().UTC()
	expiresAt := now.Add(s.tokenTTL)
	claims := jwt.RegisteredClaims{
		Subject:   controlSubject,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, apperrors.Internal("failed to sign token")
	}
	return &AuthResult{Token: signed, ExpiresAt: expiresAt}, nil
}
