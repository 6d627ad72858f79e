package hash

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestNew(t *testing.T) {
	h, err := New("", 0, "")
	require.NoError(t, err)
	assert.IsType(t, &Bcrypt{}, h)

	h, err = New(" Argon2id ", 0, "")
	require.NoError(t, err)
	assert.IsType(t, &Argon2id{}, h)

	_, err = New("md5", 0, "")
	assert.Error(t, err)

	_, err = New("bcrypt", 64, "")
	assert.Error(t, err)
}

func TestHashers(t *testing.T) {
	hashers := map[string]Hash{
		"bcrypt":   NewBcrypt(bcrypt.MinCost, "pepper"),
		"argon2id": NewArgon2id("pepper"),
	}

	for name, h := range hashers {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			encoded, err := h.Hash("password")
			require.NoError(t, err)
			assert.NotEqual(t, "password", string(encoded))

			assert.True(t, h.Verify(string(encoded), "password"))
			assert.False(t, h.Verify(string(encoded), "Password"))
			assert.False(t, h.Verify("", "password"))
			assert.False(t, h.Verify("not-a-hash", "password"))

			again, err := h.Hash("password")
			require.NoError(t, err)
			assert.NotEqual(t, string(encoded), string(again), "salt must differ")
		})
	}
}

func TestPepperMismatch(t *testing.T) {
	encoded, err := NewBcrypt(bcrypt.MinCost, "a").Hash("password")
	require.NoError(t, err)
	assert.False(t, NewBcrypt(bcrypt.MinCost, "b").Verify(string(encoded), "password"))
}

func TestArgon2id_Format(t *testing.T) {
	encoded, err := NewArgon2id("").Hash("password")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(encoded), "$argon2id$v=19$m=32768,t=3,p=2$"))
	assert.False(t, NewArgon2id("").Verify(strings.Replace(string(encoded), "argon2id", "argon2i", 1), "password"))
}
