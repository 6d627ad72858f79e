package entity

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shandysiswandi/authgate/internal/pkg/goerror"
)

// Roles granted at token issuance.
const (
	RoleAdmin = "ROLE_ADMIN"
	RoleUser  = "ROLE_USER"
)

// ErrDuplicateIdentifier is returned by a store when the identifier is taken.
var ErrDuplicateIdentifier = fmt.Errorf("credential: duplicate identifier: %w", goerror.ErrConflict)

// Account is a stored login credential. Accounts are created once and never
// updated or deleted.
type Account struct {
	Identifier     string    `json:"identifier"`
	CredentialHash string    `json:"-"`
	IsPrivileged   bool      `json:"is_privileged"`
	CreatedAt      time.Time `json:"created_at"`
}

// Roles returns the roles carried by tokens issued for the account.
func (a Account) Roles() []string {
	if a.IsPrivileged {
		return []string{RoleAdmin, RoleUser}
	}
	return []string{RoleUser}
}

// LogValue keeps the credential hash out of logs.
func (a Account) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("identifier", a.Identifier),
		slog.Bool("is_privileged", a.IsPrivileged),
	)
}

// NormalizeIdentifier trims and lower-cases an email-style identifier so
// lookups and inserts agree on the key.
func NormalizeIdentifier(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
