// Package jwt issues and verifies the service's bearer tokens.
//
// Tokens are compact HS512 JWTs carrying the standard iss, sub, aud, iat and
// exp claims plus a roles array. The issued string carries the configured
// scheme prefix ("Bearer " by default) so clients can resend it verbatim in the
// Authorization header.
//
// Verification checks the signature before looking at any claim, then the
// claim shape, then issuer and audience, then the validity window. Every
// failure is reported as one of the sentinel errors in this package.
package jwt
