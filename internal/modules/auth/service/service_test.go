package service

import (
	"strings"
	"testing"
	"time"

	"anoa.com/proofofgrind/pkg/apperror"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const vitalik = "0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045"

func TestIssueAndParse(t *testing.T) {
	svc := NewSessionService("test-secret", time.Hour)

	token, expiresAt, err := svc.IssueToken(strings.ToLower(vitalik), time.Now())
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	addr, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, vitalik, addr)
}

func TestIssueRejectsBadAddress(t *testing.T) {
	svc := NewSessionService("test-secret", time.Hour)
	_, _, err := svc.IssueToken("0xnope", time.Now())
	assert.ErrorIs(t, err, apperror.ErrInvalidAddress)
}

func TestParseRejects(t *testing.T) {
	svc := NewSessionService("test-secret", time.Hour)

	expired, _, err := svc.IssueToken(vitalik, time.Now().Add(-2*time.Hour))
	require.NoError(t, err)

	otherKey, _, err := NewSessionService("other-secret", time.Hour).IssueToken(vitalik, time.Now())
	require.NoError(t, err)

	foreign, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   vitalik,
		Issuer:    "someone-else",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	badSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "not-an-address",
		Issuer:    issuer,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	for name, token := range map[string]string{
		"garbage":      "abc.def.ghi",
		"expired":      expired,
		"wrong key":    otherKey,
		"wrong issuer": foreign,
		"bad subject":  badSubject,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ParseToken(token)
			assert.ErrorIs(t, err, apperror.ErrUnauthorized)
		})
	}
}
