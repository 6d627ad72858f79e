package authz

import (
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/authgate/internal/pkg/principal"
)

var (
	anon  = principal.Anonymous()
	user  = principal.Identity{Subject: "user@example.com", Roles: []string{"ROLE_USER"}}
	admin = principal.Identity{Subject: "admin@email.com", Roles: []string{"ROLE_ADMIN", "ROLE_USER"}}
	bare  = principal.Identity{Subject: "svc", Roles: []string{}}
)

func TestDefaultRules(t *testing.T) {
	en, err := New(DefaultRules(), DefaultRoleLinks())
	require.NoError(t, err)

	tests := []struct {
		name   string
		id     principal.Identity
		method string
		path   string
		want   bool
	}{
		{"health anonymous", anon, http.MethodGet, "/health", true},
		{"login anonymous", anon, http.MethodPost, "/api/v1/authentication", true},
		{"anything anonymous", anon, http.MethodGet, "/api/v1/things", true},
		{"me anonymous", anon, http.MethodGet, "/api/v1/me", false},
		{"me user", user, http.MethodGet, "/api/v1/me", true},
		{"me without roles", bare, http.MethodGet, "/api/v1/me", true},
		{"me wrong method", user, http.MethodDelete, "/api/v1/me", false},
		{"admin anonymous", anon, http.MethodGet, "/api/v1/admin/accounts/a", false},
		{"admin user", user, http.MethodPost, "/api/v1/admin/accounts", false},
		{"admin admin", admin, http.MethodPost, "/api/v1/admin/accounts", true},
		{"admin admin get", admin, http.MethodGet, "/api/v1/admin/accounts/user@example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := en.Authorize(tt.id, tt.method, tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRoleLinks(t *testing.T) {
	rules := []string{
		"ROLE_USER, /api/v1/reports, GET, allow",
		"everyone, /*, *, deny",
	}

	en, err := New(rules, []string{"ROLE_ADMIN, ROLE_USER"})
	require.NoError(t, err)

	onlyAdmin := principal.Identity{Subject: "root", Roles: []string{"ROLE_ADMIN"}}
	ok, err := en.Authorize(onlyAdmin, http.MethodGet, "/api/v1/reports")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = en.Authorize(bare, http.MethodGet, "/api/v1/reports")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFirstMatchWins(t *testing.T) {
	en, err := New([]string{
		"everyone, /api/v1/items/:id, get, deny",
		"everyone, /api/v1/items/*, *, allow",
	}, nil)
	require.NoError(t, err)

	ok, err := en.Authorize(user, http.MethodGet, "/api/v1/items/42")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = en.Authorize(user, http.MethodPut, "/api/v1/items/42")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFirstMatchWins_AcrossSubjects(t *testing.T) {
	en, err := New([]string{
		"ROLE_USER, /api/v1/reports, GET, deny",
		"everyone, /*, *, allow",
	}, DefaultRoleLinks())
	require.NoError(t, err)

	tests := []struct {
		name string
		id   principal.Identity
		want bool
	}{
		{"role deny beats later everyone allow", user, false},
		{"linked role inherits the deny", principal.Identity{Subject: "root", Roles: []string{"ROLE_ADMIN"}}, false},
		{"other roles fall through", bare, true},
		{"anonymous falls through", anon, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := en.Authorize(tt.id, http.MethodGet, "/api/v1/reports")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFirstMatchWins_EarlierAllowBeatsLaterRoleDeny(t *testing.T) {
	en, err := New([]string{
		"authenticated, /api/v1/reports, GET, allow",
		"ROLE_USER, /api/v1/reports, GET, deny",
	}, nil)
	require.NoError(t, err)

	ok, err := en.Authorize(user, http.MethodGet, "/api/v1/reports")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDuplicateRowKeepsFirstPosition(t *testing.T) {
	en, err := New([]string{
		"everyone, /x, GET, deny",
		"everyone, /*, *, allow",
		"everyone, /x, GET, deny",
	}, nil)
	require.NoError(t, err)

	ok, err := en.Authorize(anon, http.MethodGet, "/x")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNoRulesDenies(t *testing.T) {
	en, err := New(nil, nil)
	require.NoError(t, err)

	ok, err := en.Authorize(admin, http.MethodGet, "/health")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestInvalidRules(t *testing.T) {
	for _, rules := range [][]string{
		{"everyone, /*, *"},
		{"everyone, /*, *, maybe"},
		{"everyone, , GET, allow"},
	} {
		_, err := New(rules, nil)
		assert.ErrorIs(t, err, ErrInvalidRule, "%v", rules)
	}

	_, err := New(nil, []string{"ROLE_ADMIN"})
	assert.ErrorIs(t, err, ErrInvalidRule)
}

func TestReload(t *testing.T) {
	en, err := New([]string{"everyone, /*, *, allow"}, nil)
	require.NoError(t, err)

	require.Error(t, en.Reload([]string{"broken"}, nil))
	ok, err := en.Authorize(anon, http.MethodGet, "/x")
	require.NoError(t, err)
	assert.True(t, ok, "failed reload keeps previous table")

	require.NoError(t, en.Reload([]string{"everyone, /*, *, deny"}, nil))
	ok, err = en.Authorize(anon, http.MethodGet, "/x")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSubjects(t *testing.T) {
	assert.Equal(t, []string{SubjectAnonymous}, Subjects(anon))
	assert.Equal(t, []string{"ROLE_ADMIN", "ROLE_USER", SubjectAuthenticated}, Subjects(principal.Identity{
		Subject: "a", Roles: []string{"ROLE_ADMIN", "ROLE_USER", "ROLE_ADMIN"},
	}))
}

func TestConcurrentAuthorize(t *testing.T) {
	en, err := New(DefaultRules(), DefaultRoleLinks())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := en.Authorize(admin, http.MethodGet, "/api/v1/admin/accounts/x")
			assert.NoError(t, err)
			assert.True(t, ok)
		}()
	}
	wg.Wait()
}
