package rbac_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/brightprep/brightprep-erp/internal/rbac"
)

func doGuarded(t *testing.T, mw func(http.Handler) http.Handler, role string) int {
	t.Helper()
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	req := httptest.NewRequest("GET", "/x", nil)
	if role != "" {
		req = req.WithContext(rbac.WithRole(req.Context(), role))
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr.Code
}

func TestRequire(t *testing.T) {
	if got := doGuarded(t, rbac.Require("exam:create"), "teacher"); got != http.StatusNoContent {
		t.Errorf("teacher exam:create = %d, want 204", got)
	}
	if got := doGuarded(t, rbac.Require("exam:create"), "student"); got != http.StatusForbidden {
		t.Errorf("student exam:create = %d, want 403", got)
	}
	// No role in context (unauthenticated) is always refused.
	if got := doGuarded(t, rbac.Require("exam:view"), ""); got != http.StatusForbidden {
		t.Errorf("missing role = %d, want 403", got)
	}
}

func TestRequireAny(t *testing.T) {
	mw := rbac.RequireAny("finance:view-own", "finance:view-child")
	if got := doGuarded(t, mw, "parent"); got != http.StatusNoContent {
		t.Errorf("parent = %d, want 204", got)
	}
	if got := doGuarded(t, mw, "security_admin"); got != http.StatusForbidden {
		t.Errorf("security_admin = %d, want 403", got)
	}
}
