package router

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	libJWT "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"

	"github.com/shandysiswandi/authgate/internal/pkg/authz"
	"github.com/shandysiswandi/authgate/internal/pkg/config"
	"github.com/shandysiswandi/authgate/internal/pkg/goerror"
	"github.com/shandysiswandi/authgate/internal/pkg/jwt"
	"github.com/shandysiswandi/authgate/internal/pkg/principal"
	"github.com/shandysiswandi/authgate/internal/pkg/validator"
)

type stubVerifier struct {
	calls  atomic.Int32
	tokens map[string]jwt.Claims
	errs   map[string]error
}

func (s *stubVerifier) Verify(raw string) (jwt.Claims, error) {
	s.calls.Inc()
	if err, ok := s.errs[raw]; ok {
		return jwt.Claims{}, err
	}
	if c, ok := s.tokens[raw]; ok {
		return c, nil
	}
	return jwt.Claims{}, jwt.ErrMalformedToken
}

type denyAll struct{ calls atomic.Int32 }

func (d *denyAll) Authorize(principal.Identity, string, string) (bool, error) {
	d.calls.Inc()
	return false, nil
}

type failingAuthorizer struct{}

func (failingAuthorizer) Authorize(principal.Identity, string, string) (bool, error) {
	return false, errors.New("policy store down")
}

type fixedID string

func (f fixedID) Generate() string { return string(f) }

func claimsFor(sub string, roles ...string) jwt.Claims {
	return jwt.Claims{RegisteredClaims: libJWT.RegisteredClaims{Subject: sub}, Roles: roles}
}

func newVerifier() *stubVerifier {
	return &stubVerifier{
		tokens: map[string]jwt.Claims{
			"Bearer user":  claimsFor("user@example.com", "ROLE_USER"),
			"Bearer admin": claimsFor("admin@email.com", "ROLE_ADMIN", "ROLE_USER"),
		},
		errs: map[string]error{
			"Bearer expired":  jwt.ErrTokenExpired,
			"Bearer tampered": jwt.ErrInvalidSignature,
			"Bearer foreign":  jwt.ErrIssuerAudienceMismatch,
		},
	}
}

func newTestRouter(t *testing.T, v jwt.Verifier, az authz.Authorizer, cfg config.Config) *Router {
	t.Helper()

	if az == nil {
		en, err := authz.New(authz.DefaultRules(), authz.DefaultRoleLinks())
		require.NoError(t, err)
		az = en
	}

	return NewRouter(Config{
		Config:     cfg,
		UUID:       fixedID("generated-cid"),
		Verifier:   v,
		Authorizer: az,
	})
}

func whoami(r *Request) (any, error) {
	id := principal.FromContext(r.Context())
	return map[string]any{"subject": id.Subject, "roles": id.Roles, "anonymous": id.IsAnonymous()}, nil
}

func serve(h http.Handler, method, path, auth string, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestChain_Order(t *testing.T) {
	var order []string
	mw := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { order = append(order, "handler") }),
		mw("first"), mw("second"), mw("third"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, []string{"first", "second", "third", "handler"}, order)
}

func TestAuthentication_AttachesIdentity(t *testing.T) {
	r := newTestRouter(t, newVerifier(), nil, nil)
	r.GET("/api/v1/whoami", whoami)

	tests := []struct {
		name    string
		auth    string
		subject string
		anon    bool
	}{
		{"no header", "", "", true},
		{"verified", "Bearer user", "user@example.com", false},
		{"expired", "Bearer expired", "", true},
		{"tampered", "Bearer tampered", "", true},
		{"foreign issuer", "Bearer foreign", "", true},
		{"garbage", "Basic Zm9vOmJhcg==", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(r, http.MethodGet, "/api/v1/whoami", tt.auth, "")
			require.Equal(t, http.StatusOK, rec.Code)

			data := decode(t, rec)["data"].(map[string]any)
			assert.Equal(t, tt.subject, data["subject"])
			assert.Equal(t, tt.anon, data["anonymous"])
		})
	}
}

func TestAuthorization_UniformDenial(t *testing.T) {
	r := newTestRouter(t, newVerifier(), nil, nil)
	r.GET("/api/v1/me", whoami)
	r.GET("/api/v1/admin/accounts/:identifier", whoami)

	for _, auth := range []string{"", "Bearer expired", "Bearer tampered", "Bearer foreign", "junk"} {
		rec := serve(r, http.MethodGet, "/api/v1/me", auth, "")
		assert.Equal(t, http.StatusForbidden, rec.Code, "auth=%q", auth)
		assert.Equal(t, map[string]any{"message": "Access denied"}, decode(t, rec))
	}

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/api/v1/me", "Bearer user", "").Code)
	assert.Equal(t, http.StatusForbidden, serve(r, http.MethodGet, "/api/v1/admin/accounts/x", "Bearer user", "").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/api/v1/admin/accounts/x", "Bearer admin", "").Code)
}

func TestAuthorization_Error(t *testing.T) {
	r := newTestRouter(t, newVerifier(), failingAuthorizer{}, nil)
	r.GET("/api/v1/me", whoami)

	rec := serve(r, http.MethodGet, "/api/v1/me", "Bearer user", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestPublicGET_BypassesGuards(t *testing.T) {
	v := newVerifier()
	deny := &denyAll{}
	r := newTestRouter(t, v, deny, nil)
	r.PublicGET("/health", func(*Request) (any, error) { return map[string]string{"status": "UP"}, nil })

	rec := serve(r, http.MethodGet, "/health", "Bearer tampered", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, v.calls.Load())
	assert.Zero(t, deny.calls.Load())
}

func TestErrorCodec(t *testing.T) {
	r := newTestRouter(t, newVerifier(), nil, nil)
	r.GET("/forbidden", func(*Request) (any, error) {
		return nil, goerror.NewBusiness("Bad credentials", goerror.CodeForbidden)
	})
	r.GET("/plain", func(*Request) (any, error) { return nil, errors.New("db exploded") })
	r.GET("/invalid", func(*Request) (any, error) {
		return nil, goerror.NewInvalidInput(validator.ValidationError{"email": "Email is a required field"})
	})

	rec := serve(r, http.MethodGet, "/forbidden", "", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Bad credentials", decode(t, rec)["message"])

	rec = serve(r, http.MethodGet, "/plain", "", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", decode(t, rec)["message"])

	rec = serve(r, http.MethodGet, "/invalid", "", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, map[string]any{"email": "Email is a required field"}, decode(t, rec)["error"])
}

func TestDecodeBody(t *testing.T) {
	r := newTestRouter(t, newVerifier(), nil, nil)
	r.POST("/echo", func(req *Request) (any, error) {
		var in struct {
			Email string `json:"email"`
		}
		if err := req.DecodeBody(&in); err != nil {
			return nil, err
		}
		return in, nil
	})

	assert.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/echo", "", `{"email":"a@b.c"}`).Code)
	assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodPost, "/echo", "", "").Code)
	assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodPost, "/echo", "", `{"email":`).Code)
	assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodPost, "/echo", "", `{"unknown":1}`).Code)
	assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodPost, "/echo", "", `{"email":"a"}{"email":"b"}`).Code)
}

func TestRecoverer(t *testing.T) {
	r := newTestRouter(t, newVerifier(), nil, nil)
	r.GET("/boom", func(*Request) (any, error) { panic("boom") })

	rec := serve(r, http.MethodGet, "/boom", "", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", decode(t, rec)["message"])
}

func TestMaintenance(t *testing.T) {
	cfg, err := config.NewViperFromBytes("yaml", []byte(`
app:
  maintenance:
    endpoints: "POST /api/v1/authentication, /api/v1/things/:id"
`))
	require.NoError(t, err)

	r := newTestRouter(t, newVerifier(), nil, cfg)
	ok := func(*Request) (any, error) { return map[string]bool{"ok": true}, nil }
	r.POST("/api/v1/authentication", ok)
	r.GET("/api/v1/things/:id", ok)
	r.GET("/api/v1/other", ok)

	assert.Equal(t, http.StatusServiceUnavailable, serve(r, http.MethodPost, "/api/v1/authentication", "", "").Code)
	assert.Equal(t, http.StatusServiceUnavailable, serve(r, http.MethodGet, "/api/v1/things/7", "", "").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/api/v1/other", "", "").Code)
}

func TestCorrelationID(t *testing.T) {
	r := newTestRouter(t, newVerifier(), nil, nil)
	r.GET("/api/v1/ping", func(*Request) (any, error) { return map[string]bool{"ok": true}, nil })

	rec := serve(r, http.MethodGet, "/api/v1/ping", "", "")
	assert.Equal(t, "generated-cid", rec.Header().Get("X-Correlation-ID"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil)
	req.Header.Set("X-Request-ID", "  from-proxy ")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, "from-proxy", rec.Header().Get("X-Correlation-ID"))
}

func TestNotFound(t *testing.T) {
	r := newTestRouter(t, newVerifier(), nil, nil)

	rec := serve(r, http.MethodGet, "/nowhere", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestVerificationOutcome(t *testing.T) {
	assert.Equal(t, OutcomeVerified, verificationOutcome(nil))
	assert.Equal(t, OutcomeExpired, verificationOutcome(jwt.ErrTokenExpired))
	assert.Equal(t, OutcomeInvalidSignature, verificationOutcome(jwt.ErrInvalidSignature))
	assert.Equal(t, OutcomeIssuerAudience, verificationOutcome(jwt.ErrIssuerAudienceMismatch))
	assert.Equal(t, OutcomeMalformed, verificationOutcome(jwt.ErrMalformedToken))
}

func TestInternalFrames(t *testing.T) {
	stack := []byte("goroutine 1 [running]:\nmain.main()\n\t/src/app/internal/pkg/router/router.go:42 +0x1d\n\t/usr/lib/go/src/runtime/proc.go:283 +0x2b\n")
	assert.Equal(t, []string{"internal/pkg/router/router.go:42"}, internalFrames(stack))
}
