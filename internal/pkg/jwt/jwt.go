package jwt

import (
	"errors"
	"time"

	libJWT "github.com/golang-jwt/jwt/v5"
)

// MinSecretLength is the minimum HS512 key size in bytes (512 bits).
const MinSecretLength = 64

var (
	// ErrWeakSigningSecret is returned by NewHS512 when the secret is shorter than MinSecretLength.
	ErrWeakSigningSecret = errors.New("jwt: HS512 signing secret must be at least 64 bytes")

	// ErrInvalidConfig is returned by NewHS512 for an unusable issuer, audience or lifetime.
	ErrInvalidConfig = errors.New("jwt: invalid configuration")

	// ErrEmptySubject is returned by Issue when the subject is empty.
	ErrEmptySubject = errors.New("jwt: empty subject")

	// ErrMalformedToken covers a missing prefix, bad segmentation, undecodable
	// segments and missing or ill-typed claims.
	ErrMalformedToken = errors.New("jwt: malformed token")

	// ErrInvalidSignature is returned when the signature does not match header.payload.
	ErrInvalidSignature = errors.New("jwt: invalid signature")

	// ErrIssuerAudienceMismatch is returned when iss or aud differ from the configured values.
	ErrIssuerAudienceMismatch = errors.New("jwt: issuer or audience mismatch")

	// ErrTokenExpired is returned when now is outside [iat, exp).
	ErrTokenExpired = errors.New("jwt: token expired")
)

// Issuer mints signed tokens.
type Issuer interface {
	Issue(subject string, roles []string) (string, error)
}

// Verifier checks presented tokens and returns their claims.
type Verifier interface {
	Verify(raw string) (Claims, error)
}

type clocker interface {
	Now() time.Time
}

// Config holds the settings shared by issuance and verification.
type Config struct {
	// Secret is the HMAC-SHA-512 key.
	Secret []byte
	// Type is written to the "typ" header.
	Type string
	// Issuer and Audience are written on issue and required on verify.
	Issuer   string
	Audience string
	// TTL is the token lifetime.
	TTL time.Duration
	// Prefix is the scheme label in front of the compact token, e.g. "Bearer ".
	Prefix string
	Clock  clocker
}

// Claims is the token payload.
type Claims struct {
	libJWT.RegisteredClaims
	Roles []string `json:"roles"`
}
