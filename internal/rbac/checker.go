package rbac

import (
	"context"
	"strings"
)

// Checker answers "may this role perform this action" against a
// role->permission policy. Permissions are colon-scoped action names
// ("exam:create"); a grant may cover a whole scope with a trailing
// wildcard ("exam:*") or everything with "*".
type Checker struct {
	RolePermissions map[string][]string
}

// NewChecker builds a Checker over rp, falling back to the institute's
// default policy when rp is nil.
func NewChecker(rp map[string][]string) *Checker {
	if rp == nil {
		rp = RolePermissions
	}
	return &Checker{RolePermissions: rp}
}

func (c *Checker) Has(role, perm string) bool {
	for _, grant := range c.RolePermissions[role] {
		if grantMatches(grant, perm) {
			return true
		}
	}
	return false
}

// Any reports whether the role holds at least one of the permissions.
func (c *Checker) Any(role string, perms ...string) bool {
	for _, p := range perms {
		if c.Has(role, p) {
			return true
		}
	}
	return false
}

// All reports whether the role holds every one of the permissions.
func (c *Checker) All(role string, perms ...string) bool {
	for _, p := range perms {
		if !c.Has(role, p) {
			return false
		}
	}
	return true
}

func grantMatches(grant, perm string) bool {
	switch {
	case grant == "*", grant == perm:
		return true
	case strings.HasSuffix(grant, ":*"):
		return strings.HasPrefix(perm, grant[:len(grant)-1])
	}
	return false
}

// ---- role in context ----

type ctxKey struct{}

var ctxKeyRole = ctxKey{}

func WithRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, ctxKeyRole, role)
}

func RoleFromContext(ctx context.Context) string {
	if v := ctx.Value(ctxKeyRole); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
