package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorToStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not registered", ErrNotRegistered, http.StatusNotFound},
		{"wrapped not registered", fmt.Errorf("grind 0xabc: %w", ErrNotRegistered), http.StatusNotFound},
		{"already registered", ErrAlreadyRegistered, http.StatusConflict},
		{"cooldown", ErrCooldownActive, http.StatusTooManyRequests},
		{"check-in period", ErrCheckInTooSoon, http.StatusTooManyRequests},
		{"self boost", ErrSelfBoost, http.StatusBadRequest},
		{"invalid address", ErrInvalidAddress, http.StatusBadRequest},
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized},
		{"app error code wins", New(http.StatusTeapot, "short and stout", ErrInternal), http.StatusTeapot},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MapErrorToStatus(tt.err))
		})
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	err := New(http.StatusBadRequest, "bad target", ErrSelfBoost)
	assert.ErrorIs(t, err, ErrSelfBoost)
	assert.Equal(t, ErrSelfBoost.Error(), err.Error())

	bare := New(http.StatusBadRequest, "bad target", nil)
	assert.Equal(t, "bad target", bare.Error())
}
