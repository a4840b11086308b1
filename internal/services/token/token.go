// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package token provides password hashing, signed session tokens and opaque
// single-use tokens.
package token

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// OpaqueTokenLength is the number of random bytes for opaque tokens.
const OpaqueTokenLength = 32

// ErrInvalidSession is returned for any session token that does not resolve
// to a user: bad signature, malformed, or expired. Callers treat it as
// "no user", never as a server error.
var ErrInvalidSession = errors.New("invalid session token")

// dummyHash is used for constant-time login to prevent timing attacks
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy-password-for-timing"), bcrypt.DefaultCost)

// Service issues and verifies credentials: bcrypt password hashes, HS256
// session tokens and random opaque tokens.
type Service struct {
	secret     []byte
	sessionTTL time.Duration
}

// NewService creates a token service. The secret signs session tokens.
func NewService(secret string, sessionTTL time.Duration) (*Service, error) {
	if secret == "" {
		return nil, fmt.Errorf("signing secret is required")
	}
	if sessionTTL <= 0 {
		sessionTTL = 30 * time.Minute
	}
	return &Service{
		secret:     []byte(secret),
		sessionTTL: sessionTTL,
	}, nil
}

// SessionTTL returns the configured session token lifetime.
func (s *Service) SessionTTL() time.Duration {
	return s.sessionTTL
}

// HashPassword hashes a password with bcrypt.
func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether the password matches the stored hash.
func (s *Service) VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// VerifyDummy burns a bcrypt comparison against a throwaway hash so login
// attempts for unknown users take as long as failed password checks.
func (s *Service) VerifyDummy(password string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}

// IssueSession signs a session token carrying the user ID as subject.
func (s *Service) IssueSession(userID int64) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.sessionTTL)),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// ResolveSession verifies a session token and returns the user ID it was
// issued for.
func (s *Service) ResolveSession(tokenString string) (int64, error) {
	if tokenString == "" {
		return 0, ErrInvalidSession
	}

	var claims jwt.RegisteredClaims
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	_, err := parser.ParseWithClaims(tokenString, &claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		return 0, ErrInvalidSession
	}
	if claims.ExpiresAt == nil {
		return 0, ErrInvalidSession
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return 0, ErrInvalidSession
	}
	return userID, nil
}

// OpaqueToken generates a cryptographically random, URL-safe token. The same
// generator serves email verification and password reset; which database
// column stores the value is the only difference between the two.
func (s *Service) OpaqueToken() (string, error) {
	bytes := make([]byte, OpaqueTokenLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}
