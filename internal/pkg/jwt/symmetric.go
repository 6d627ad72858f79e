package jwt

import (
	"errors"
	"strings"
	"time"

	libJWT "github.com/golang-jwt/jwt/v5"
)

// Symmetric issues and verifies HS512 tokens with a shared secret.
// It is immutable after construction and safe for concurrent use.
type Symmetric struct {
	secret   []byte
	typ      string
	issuer   string
	audience string
	ttl      time.Duration
	prefix   string
	clock    clocker
	parser   *libJWT.Parser
}

// NewHS512 validates cfg and returns a Symmetric.
func NewHS512(cfg Config) (*Symmetric, error) {
	if len(cfg.Secret) < MinSecretLength {
		return nil, ErrWeakSigningSecret
	}

	if cfg.Issuer == "" || cfg.Audience == "" || cfg.TTL <= 0 || cfg.Clock == nil {
		return nil, ErrInvalidConfig
	}

	typ := cfg.Type
	if typ == "" {
		typ = "JWT"
	}

	secret := make([]byte, len(cfg.Secret))
	copy(secret, cfg.Secret)

	return &Symmetric{
		secret:   secret,
		typ:      typ,
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		ttl:      cfg.TTL,
		prefix:   cfg.Prefix,
		clock:    cfg.Clock,
		parser: libJWT.NewParser(
			libJWT.WithValidMethods([]string{libJWT.SigningMethodHS512.Alg()}),
			libJWT.WithIssuer(cfg.Issuer),
			libJWT.WithAudience(cfg.Audience),
			libJWT.WithIssuedAt(),
			libJWT.WithExpirationRequired(),
			libJWT.WithTimeFunc(cfg.Clock.Now),
			libJWT.WithStrictDecoding(),
		),
	}, nil
}

// Issue returns "<prefix><header>.<payload>.<signature>" for subject and roles.
// Roles keep their order and duplicates; nil roles are encoded as [].
func (s *Symmetric) Issue(subject string, roles []string) (string, error) {
	if subject == "" {
		return "", ErrEmptySubject
	}

	if roles == nil {
		roles = []string{}
	}

	now := s.clock.Now()

	token := libJWT.NewWithClaims(libJWT.SigningMethodHS512, Claims{
		RegisteredClaims: libJWT.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   subject,
			Audience:  libJWT.ClaimStrings{s.audience},
			ExpiresAt: libJWT.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  libJWT.NewNumericDate(now),
		},
		Roles: roles,
	})
	token.Header["typ"] = s.typ

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", err
	}

	return s.prefix + signed, nil
}

// Verify checks raw and returns its claims, or one of the package sentinel errors.
func (s *Symmetric) Verify(raw string) (Claims, error) {
	compact, ok := strings.CutPrefix(raw, s.prefix)
	if !ok {
		return Claims{}, ErrMalformedToken
	}

	parts := strings.Split(compact, ".")
	if len(parts) != 3 {
		return Claims{}, ErrMalformedToken
	}

	sig, err := s.parser.DecodeSegment(parts[2])
	if err != nil {
		return Claims{}, ErrMalformedToken
	}

	// Signature first: nothing attacker-controlled is decoded before this passes.
	if err := libJWT.SigningMethodHS512.Verify(parts[0]+"."+parts[1], sig, s.secret); err != nil {
		return Claims{}, ErrInvalidSignature
	}

	var claims Claims
	_, err = s.parser.ParseWithClaims(compact, &claims, func(*libJWT.Token) (any, error) {
		return s.secret, nil
	})

	if errors.Is(err, libJWT.ErrTokenMalformed) || errors.Is(err, libJWT.ErrTokenRequiredClaimMissing) {
		return Claims{}, ErrMalformedToken
	}

	if err != nil && !errors.Is(err, libJWT.ErrTokenInvalidClaims) {
		// alg header outside the allowed set, or an unverifiable token.
		return Claims{}, ErrInvalidSignature
	}

	if !wellFormed(claims) {
		return Claims{}, ErrMalformedToken
	}

	switch {
	case err == nil:
		return claims, nil
	case errors.Is(err, libJWT.ErrTokenInvalidIssuer), errors.Is(err, libJWT.ErrTokenInvalidAudience):
		return Claims{}, ErrIssuerAudienceMismatch
	case errors.Is(err, libJWT.ErrTokenExpired),
		errors.Is(err, libJWT.ErrTokenUsedBeforeIssued),
		errors.Is(err, libJWT.ErrTokenNotValidYet):
		return Claims{}, ErrTokenExpired
	default:
		return Claims{}, ErrMalformedToken
	}
}

func wellFormed(c Claims) bool {
	return c.Subject != "" &&
		c.Roles != nil &&
		c.Issuer != "" &&
		len(c.Audience) > 0 &&
		c.IssuedAt != nil &&
		c.ExpiresAt != nil
}
