package hash

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Hash turns a secret into a storable encoding and checks candidates against it.
type Hash interface {
	Hash(plaintext string) ([]byte, error)
	Verify(hashed, plaintext string) bool
}

// Supported algorithm names, as used by configuration.
const (
	AlgorithmBcrypt   = "bcrypt"
	AlgorithmArgon2id = "argon2id"
)

// New returns the Hash implementation named by algorithm.
// An empty name selects bcrypt with bcrypt.DefaultCost when cost is zero.
func New(algorithm string, cost int, pepper string) (Hash, error) {
	switch strings.ToLower(strings.TrimSpace(algorithm)) {
	case "", AlgorithmBcrypt:
		if cost == 0 {
			cost = bcrypt.DefaultCost
		}
		if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
			return nil, fmt.Errorf("hash: bcrypt cost %d out of range [%d,%d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
		}
		return NewBcrypt(cost, pepper), nil
	case AlgorithmArgon2id:
		return NewArgon2id(pepper), nil
	default:
		return nil, fmt.Errorf("hash: unsupported algorithm %q", algorithm)
	}
}
