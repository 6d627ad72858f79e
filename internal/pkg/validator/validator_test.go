package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type loginInput struct {
	Email       string `validate:"required,email"`
	Password    string `validate:"required"`
	NewPassword string `validate:"omitempty,password"`
}

func TestV10Validator(t *testing.T) {
	v, err := NewV10Validator()
	require.NoError(t, err)

	assert.NoError(t, v.Validate(loginInput{Email: "a@b.co", Password: "x"}))

	err = v.Validate(loginInput{Email: "nope", NewPassword: "short"})
	require.Error(t, err)

	var ve ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "Email must be a valid email address", ve.Values()["email"])
	assert.Equal(t, "Password is a required field", ve.Values()["password"])
	assert.Equal(t, "NewPassword must be 8-72 characters", ve.Values()["new_password"])
}

func TestV10Validator_NotStruct(t *testing.T) {
	v, err := NewV10Validator()
	require.NoError(t, err)

	err = v.Validate("plain string")
	require.Error(t, err)

	var ve ValidationError
	assert.False(t, errors.As(err, &ve))
}
