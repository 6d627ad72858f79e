package router

import (
	"errors"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/shandysiswandi/authgate/internal/pkg/authz"
	"github.com/shandysiswandi/authgate/internal/pkg/instrument"
	"github.com/shandysiswandi/authgate/internal/pkg/jwt"
	"github.com/shandysiswandi/authgate/internal/pkg/principal"
)

// Verification outcomes recorded by the authentication middleware.
const (
	OutcomeAbsent           = "absent"
	OutcomeVerified         = "verified"
	OutcomeMalformed        = "malformed"
	OutcomeInvalidSignature = "invalid_signature"
	OutcomeIssuerAudience   = "issuer_audience_mismatch"
	OutcomeExpired          = "expired"
)

func verificationOutcome(err error) string {
	switch {
	case err == nil:
		return OutcomeVerified
	case errors.Is(err, jwt.ErrInvalidSignature):
		return OutcomeInvalidSignature
	case errors.Is(err, jwt.ErrIssuerAudienceMismatch):
		return OutcomeIssuerAudience
	case errors.Is(err, jwt.ErrTokenExpired):
		return OutcomeExpired
	default:
		return OutcomeMalformed
	}
}

// middlewareAuthentication attaches a principal.Identity to every request.
// It never writes a response: a missing or failing token yields the anonymous
// identity and the request continues to authorization.
func middlewareAuthentication(verifier jwt.Verifier, ins instrument.Instrumentation) Middleware {
	counter, err := ins.Meter("auth.gate").Int64Counter(
		"auth.gate.verifications",
		metric.WithDescription("Bearer token verifications by outcome"),
	)
	if err != nil {
		slog.Error("failed to create auth gate counter", "error", err)
	}

	record := func(r *http.Request, outcome string) {
		if counter != nil {
			counter.Add(r.Context(), 1, metric.WithAttributes(attribute.String("outcome", outcome)))
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get("Authorization")
			if raw == "" {
				record(r, OutcomeAbsent)
				next.ServeHTTP(w, r.WithContext(principal.WithIdentity(r.Context(), principal.Anonymous())))
				return
			}

			claims, err := verifier.Verify(raw)
			outcome := verificationOutcome(err)
			record(r, outcome)

			if err != nil {
				slog.WarnContext(r.Context(), "bearer token rejected, continuing as anonymous",
					"reason", outcome,
					"error", err,
				)
				next.ServeHTTP(w, r.WithContext(principal.WithIdentity(r.Context(), principal.Anonymous())))
				return
			}

			trace.SpanFromContext(r.Context()).SetAttributes(attribute.String("enduser.id", claims.Subject))

			id := principal.Identity{Subject: claims.Subject, Roles: claims.Roles}
			next.ServeHTTP(w, r.WithContext(principal.WithIdentity(r.Context(), id)))
		})
	}
}

// middlewareAuthorization evaluates the policy table for the identity set by
// middlewareAuthentication. Denials are uniform regardless of why the caller
// is anonymous.
func middlewareAuthorization(az authz.Authorizer) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := principal.FromContext(r.Context())

			allowed, err := az.Authorize(id, r.Method, r.URL.Path)
			if err != nil {
				slog.ErrorContext(r.Context(), "authorization check failed", "error", err)
				writeJSON(w, errorResponse{Message: "Internal server error"}, http.StatusInternalServerError)
				return
			}

			if !allowed {
				slog.InfoContext(r.Context(), "access denied",
					"subject", id.Subject,
					"anonymous", id.IsAnonymous(),
					"method", r.Method,
					"path", r.URL.Path,
				)
				writeJSON(w, errorResponse{Message: "Access denied"}, http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
