package validation_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/lifocus/lifocus-server/internal/errors"
	"github.com/lifocus/lifocus-server/internal/validation"
)

type registerRequest struct {
	Username string  `json:"username" validate:"required,notblank,max=64"`
	Password string  `json:"password" validate:"required,min=6,max=1024"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
}

func TestValidator_ValidateSuccess(t *testing.T) {
	v := validation.New()

	email := "a@example.com"
	assert.NoError(t, v.Validate(registerRequest{Username: "alice", Password: "secret1", Email: &email}))
	assert.NoError(t, v.Validate(registerRequest{Username: "bob", Password: "secret1"}))
}

func TestValidator_ValidateErrors(t *testing.T) {
	v := validation.New()
	badEmail := "not-an-email"

	tests := []struct {
		name      string
		req       registerRequest
		wantField string
		wantMsg   string
	}{
		{"missing username", registerRequest{Password: "secret1"}, "username", "is required"},
		{"blank username", registerRequest{Username: "   ", Password: "secret1"}, "username", "must not be blank"},
		{"short password", registerRequest{Username: "alice", Password: "abc"}, "password", "must be at least 6 characters"},
		{"bad email", registerRequest{Username: "alice", Password: "secret1", Email: &badEmail}, "email", "must be a valid email address"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.req)
			require.Error(t, err)

			var domainErr *domainerrors.Error
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, http.StatusBadRequest, domainErr.HTTPStatus())

			details, ok := domainErr.Details.(map[string]string)
			require.True(t, ok)
			assert.Equal(t, tt.wantMsg, details[tt.wantField])
			assert.Contains(t, domainErr.Message, tt.wantField)
		})
	}
}
