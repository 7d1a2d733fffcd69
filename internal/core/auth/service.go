// Package auth guards the HTTP API behind a single admin password.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"horizonx-machine/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
	"golang.org/x/crypto/bcrypt"
)

type service struct {
	passwordHash []byte
	jwtSecret    []byte
	tokenExpiry  time.Duration
	subject      string
	clock        clockwork.Clock
}

// NewService signs tokens for subject, normally the machine id.
func NewService(passwordHash, secret, subject string, expiry time.Duration, clock clockwork.Clock) domain.AuthService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &service{
		passwordHash: []byte(passwordHash),
		jwtSecret:    []byte(secret),
		tokenExpiry:  expiry,
		subject:      subject,
		clock:        clock,
	}
}

func (s *service) Login(ctx context.Context, req domain.LoginRequest) (*domain.AuthResponse, error) {
	if len(s.passwordHash) == 0 {
		return nil, domain.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(req.Password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	now := s.clock.Now()
	expiresAt := now.Add(s.tokenExpiry)

	claims := jwt.RegisteredClaims{
		Subject:   s.subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &domain.AuthResponse{
		AccessToken: tokenString,
		ExpiresAt:   expiresAt.Unix(),
	}, nil
}

func (s *service) Validate(tokenString string) error {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return s.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.clock.Now),
		jwt.WithSubject(s.subject),
	)
	if err != nil || !token.Valid {
		return errors.Join(domain.ErrUnauthorized, err)
	}

	return nil
}
