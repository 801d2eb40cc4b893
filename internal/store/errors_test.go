package store

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesVariants(t *testing.T) {
	err := fmt.Errorf("get note: %w", ErrNotFound.WithMessage("note 5 not found"))

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrAlreadyExists))
}

func TestError_Message(t *testing.T) {
	cause := errors.New("disk full")
	err := ErrAlreadyExists.WithCause(cause)

	assert.Equal(t, "resource already exists: disk full", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, http.StatusConflict, err.HTTPCode())
}
