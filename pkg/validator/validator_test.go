package validator

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type boostPayload struct {
	Target string `validate:"required,eth_addr"`
	Limit  int    `validate:"min=1,max=100"`
}

func TestFormatValidationError(t *testing.T) {
	v := validator.New()

	err := v.Struct(boostPayload{Limit: 500})
	require.Error(t, err)
	assert.Equal(t, "Target address is required; Limit must be at most 100", FormatValidationError(err))

	err = v.Struct(boostPayload{Target: "0x12", Limit: 1})
	require.Error(t, err)
	assert.Equal(t, "Target address must be a 0x-prefixed 20-byte hex address", FormatValidationError(err))
}

func TestFormatValidationErrorPassthrough(t *testing.T) {
	assert.Equal(t, "boom", FormatValidationError(errors.New("boom")))
}
