package goerror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"server", NewServer(errors.New("boom")), http.StatusInternalServerError},
		{"forbidden", NewBusiness("Bad credentials", CodeForbidden), http.StatusForbidden},
		{"unauthorized", NewBusiness("Unauthorized", CodeUnauthorized), http.StatusUnauthorized},
		{"not found", NewBusiness("Account not found", CodeNotFound), http.StatusNotFound},
		{"conflict", NewBusinessWrap(ErrConflict, "Account already exists", CodeConflict), http.StatusConflict},
		{"unavailable", NewBusiness("Maintenance", CodeUnavailable), http.StatusServiceUnavailable},
		{"invalid format", NewInvalidFormat(), http.StatusBadRequest},
		{"invalid input", NewInvalidInput(nil, "email", "is required"), http.StatusUnprocessableEntity},
		{"odd kv", NewInvalidInput(nil, "email"), http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ge, ok := As(tt.err)
			require.True(t, ok)
			assert.Equal(t, tt.want, ge.StatusCode())
		})
	}
}

func TestAs_Wrapped(t *testing.T) {
	err := fmt.Errorf("login: %w", NewBusiness("Bad credentials", CodeForbidden))

	ge, ok := As(err)
	require.True(t, ok)
	assert.Equal(t, "Bad credentials", ge.Msg())
	assert.Equal(t, TypeBusiness, ge.Type())

	_, ok = As(errors.New("plain"))
	assert.False(t, ok)
}

func TestNewBusinessWrap_KeepsCause(t *testing.T) {
	err := NewBusinessWrap(ErrConflict, "Account already exists", CodeConflict)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestNewInvalidInput_Fields(t *testing.T) {
	ge, ok := As(NewInvalidInput(nil, "email", "must be a valid email", "password", "is required"))
	require.True(t, ok)
	assert.Equal(t, map[string]string{
		"email":    "must be a valid email",
		"password": "is required",
	}, ge.Fields())
}

func TestError_Message(t *testing.T) {
	assert.Equal(t, "boom", NewServer(errors.New("boom")).Error())
	assert.Equal(t, "Invalid request body", NewInvalidFormat().Error())
	assert.Equal(t, "missing body", NewInvalidFormat("missing body").Error())
}
