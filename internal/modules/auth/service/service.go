package service

import (
	"errors"
	"fmt"
	"time"

	"anoa.com/proofofgrind/pkg/address"
	"anoa.com/proofofgrind/pkg/apperror"
	"github.com/golang-jwt/jwt/v5"
)

const issuer = "proof-of-grind"

// SessionService issues and verifies HS256 session tokens whose subject is
// the caller's checksummed address. It does not prove wallet ownership.
type SessionService interface {
	IssueToken(rawAddress string, now time.Time) (string, time.Time, error)
	ParseToken(tokenString string) (string, error)
}

type sessionService struct {
	secret []byte
	ttl    time.Duration
}

func NewSessionService(secret string, ttl time.Duration) SessionService {
	return &sessionService{secret: []byte(secret), ttl: ttl}
}

func (s *sessionService) IssueToken(rawAddress string, now time.Time) (string, time.Time, error) {
	addr, err := address.Normalize(rawAddress)
	if err != nil {
		return "", time.Time{}, err
	}

	expiresAt := now.Add(s.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   addr,
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign session token: %w", err)
	}
	return token, expiresAt, nil
}

func (s *sessionService) ParseToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(issuer))
	if err != nil || !token.Valid {
		return "", fmt.Errorf("%w: invalid or expired token", apperror.ErrUnauthorized)
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return "", errors.Join(apperror.ErrUnauthorized, errors.New("invalid token claims"))
	}

	addr, err := address.Normalize(claims.Subject)
	if err != nil {
		return "", fmt.Errorf("%w: invalid token subject", apperror.ErrUnauthorized)
	}
	return addr, nil
}
