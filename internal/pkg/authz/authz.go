// Package authz decides whether an identity may call a route.
//
// Decisions come from an ordered policy table of "subject, path, method,
// effect" rows evaluated by casbin. The first row that matches any subject of
// the caller decides; no match denies. Paths use keyMatch2 patterns ("/*" and
// ":param") and method "*" matches any method.
//
// Every caller has one or more subjects:
//   - anonymous callers have the single subject "anonymous"
//   - verified callers have each distinct role plus "authenticated"
//
// Both "anonymous" and "authenticated" belong to "everyone".
package authz

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/casbin/casbin/v3"
	"github.com/casbin/casbin/v3/model"
	"github.com/samber/lo"

	"github.com/shandysiswandi/authgate/internal/pkg/principal"
)

// Built-in subjects.
const (
	SubjectAnonymous     = "anonymous"
	SubjectAuthenticated = "authenticated"
	SubjectEveryone      = "everyone"
)

const (
	effectAllow = "allow"
	effectDeny  = "deny"
)

// ErrInvalidRule is returned for a policy row or role link that cannot be parsed.
var ErrInvalidRule = errors.New("authz: invalid rule")

const policyModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act, eft

[role_definition]
g = _, _

[policy_effect]
e = priority(p.eft) || deny

[matchers]
m = g(r.sub, p.sub) && keyMatch2(r.obj, p.obj) && (p.act == "*" || r.act == p.act)
`

// Authorizer reports whether id may call method on path.
type Authorizer interface {
	Authorize(id principal.Identity, method, path string) (bool, error)
}

// DefaultRules is the policy table used when none is configured. It permits
// everything except the caller's own profile, which needs an identity, and the
// admin routes, which need ROLE_ADMIN.
func DefaultRules() []string {
	return []string{
		"everyone, /health, GET, allow",
		"everyone, /api/v1/health, GET, allow",
		"everyone, /api/v1/authentication, POST, allow",
		"ROLE_ADMIN, /api/v1/admin/*, *, allow",
		"everyone, /api/v1/admin/*, *, deny",
		"authenticated, /api/v1/me, GET, allow",
		"everyone, /api/v1/me, *, deny",
		"everyone, /*, *, allow",
	}
}

// DefaultRoleLinks makes ROLE_ADMIN inherit every ROLE_USER rule.
func DefaultRoleLinks() []string {
	return []string{"ROLE_ADMIN, ROLE_USER"}
}

// Enforcer is a casbin-backed Authorizer. It is safe for concurrent use.
type Enforcer struct {
	mu    sync.RWMutex
	table *table
}

// table is one immutable policy generation. rows mirrors the casbin policy
// in insertion order.
type table struct {
	e    *casbin.Enforcer
	rows [][]string
}

// New builds an Enforcer from policy rows and role links ("member, group").
func New(rules, roleLinks []string) (*Enforcer, error) {
	t, err := build(rules, roleLinks)
	if err != nil {
		return nil, err
	}
	return &Enforcer{table: t}, nil
}

// Reload atomically swaps the policy table. On error the current table stays.
func (en *Enforcer) Reload(rules, roleLinks []string) error {
	t, err := build(rules, roleLinks)
	if err != nil {
		return err
	}

	en.mu.Lock()
	en.table = t
	en.mu.Unlock()

	return nil
}

// Authorize implements Authorizer. Each subject is matched separately and the
// matched row with the lowest index across all subjects decides.
func (en *Enforcer) Authorize(id principal.Identity, method, path string) (bool, error) {
	en.mu.RLock()
	t := en.table
	en.mu.RUnlock()

	first := -1
	for _, sub := range Subjects(id) {
		_, matched, err := t.e.EnforceEx(sub, path, method)
		if err != nil {
			return false, fmt.Errorf("authz: enforce %s %s for %q: %w", method, path, sub, err)
		}
		if len(matched) == 0 {
			continue
		}

		idx := slices.IndexFunc(t.rows, func(row []string) bool {
			return slices.Equal(row, matched)
		})
		if idx >= 0 && (first < 0 || idx < first) {
			first = idx
		}
	}

	if first < 0 {
		return false, nil
	}
	return t.rows[first][3] == effectAllow, nil
}

// Subjects returns the policy subjects the identity acts as, most specific first.
func Subjects(id principal.Identity) []string {
	if id.IsAnonymous() {
		return []string{SubjectAnonymous}
	}
	return append(id.Grants(), SubjectAuthenticated)
}

func build(rules, roleLinks []string) (*table, error) {
	m, err := model.NewModelFromString(policyModel)
	if err != nil {
		return nil, err
	}

	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, err
	}

	for _, member := range []string{SubjectAnonymous, SubjectAuthenticated} {
		if _, err := e.AddGroupingPolicy(member, SubjectEveryone); err != nil {
			return nil, err
		}
	}

	for _, raw := range roleLinks {
		link, err := splitRow(raw, 2)
		if err != nil {
			return nil, err
		}
		if _, err := e.AddGroupingPolicy(link[0], link[1]); err != nil {
			return nil, err
		}
	}

	rows := make([][]string, 0, len(rules))

	for _, raw := range rules {
		row, err := splitRow(raw, 4)
		if err != nil {
			return nil, err
		}
		row[3] = strings.ToLower(row[3])
		if row[3] != effectAllow && row[3] != effectDeny {
			return nil, fmt.Errorf("%w: effect %q in %q", ErrInvalidRule, row[3], raw)
		}
		row[2] = strings.ToUpper(row[2])
		added, err := e.AddPolicy(row[0], row[1], row[2], row[3])
		if err != nil {
			return nil, err
		}
		// a repeated row keeps its first position
		if added {
			rows = append(rows, row)
		}
	}

	return &table{e: e, rows: rows}, nil
}

func splitRow(raw string, want int) ([]string, error) {
	fields := lo.Map(strings.Split(raw, ","), func(s string, _ int) string {
		return strings.TrimSpace(s)
	})
	if len(fields) != want || lo.Contains(fields, "") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRule, raw)
	}
	return fields, nil
}
