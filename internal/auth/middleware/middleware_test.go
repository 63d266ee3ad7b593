package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	auth "github.com/brightprep/brightprep-erp/internal/auth/middleware"
	"github.com/brightprep/brightprep-erp/internal/db"
	"github.com/brightprep/brightprep-erp/internal/directory"
	"github.com/brightprep/brightprep-erp/internal/rbac"
)

func TestIssueAndParse_Roundtrip(t *testing.T) {
	svc := auth.NewAuthService("test-secret", time.Hour)
	tok, err := svc.IssueJWT("u1", "ravi", "student")
	if err != nil {
		t.Fatal(err)
	}
	c, err := svc.Parse(tok)
	if err != nil {
		t.Fatal(err)
	}
	if c.Sub != "u1" || c.Username != "ravi" || c.Role != "student" {
		t.Fatalf("claims = %+v", c)
	}
}

func TestParse_RejectsWrongSecret(t *testing.T) {
	tok, err := auth.NewAuthService("secret-a", time.Hour).IssueJWT("u1", "ravi", "student")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := auth.NewAuthService("secret-b", time.Hour).Parse(tok); err == nil {
		t.Fatalf("token signed with another secret accepted")
	}
}

func TestParse_RejectsUnsignedToken(t *testing.T) {
	// alg=none style forgery: header/payload with empty signature.
	svc := auth.NewAuthService("test-secret", time.Hour)
	tok, _ := svc.IssueJWT("u1", "ravi", "student")
	parts := strings.Split(tok, ".")
	forged := parts[0] + "." + parts[1] + "."
	if _, err := svc.Parse(forged); err == nil {
		t.Fatalf("unsigned token accepted")
	}
}

func TestLoginHandler_And_JWTMiddleware(t *testing.T) {
	ctx := context.Background()
	dbh, err := db.Open(ctx, db.DriverSQLite, "file:auth_login?mode=memory&cache=shared")
	if err != nil {
		t.Fatal(err)
	}
	defer dbh.Close()

	dir := directory.NewSQLStore(dbh)
	if _, err := dir.CreateStudent(ctx, directory.NewStudentInput{
		Username: "login.student", Password: "secret123", FullName: "Login Student",
	}); err != nil {
		t.Fatal(err)
	}

	svc := auth.NewAuthService("test-secret", time.Hour)
	login := auth.LoginHandler(svc, dbh)

	// Wrong password refused.
	rec := httptest.NewRecorder()
	login(rec, httptest.NewRequest("POST", "/auth/login",
		strings.NewReader(`{"username":"login.student","password":"wrong"}`)))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password: status %d", rec.Code)
	}

	// Unknown user refused with the same status.
	rec = httptest.NewRecorder()
	login(rec, httptest.NewRequest("POST", "/auth/login",
		strings.NewReader(`{"username":"ghost","password":"secret123"}`)))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unknown user: status %d", rec.Code)
	}

	// Good credentials issue a usable token.
	rec = httptest.NewRecorder()
	login(rec, httptest.NewRequest("POST", "/auth/login",
		strings.NewReader(`{"username":"login.student","password":"secret123"}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("login: status %d body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		AccessToken string `json:"access_token"`
		User        struct {
			Role string `json:"role"`
		} `json:"user"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.User.Role != "student" {
		t.Fatalf("role = %q", resp.User.Role)
	}

	// Middleware attaches subject, username and role for downstream use
	// (rbac checks, receipt attribution).
	var gotRole, gotSub, gotUser string
	h := auth.JWTMiddleware(svc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRole = rbac.RoleFromContext(r.Context())
		gotSub = auth.SubjectFromContext(r.Context())
		gotUser = auth.UsernameFromContext(r.Context())
	}))

	req := httptest.NewRequest("GET", "/exams", nil)
	req.Header.Set("Authorization", "Bearer "+resp.AccessToken)
	h.ServeHTTP(httptest.NewRecorder(), req)
	if gotRole != "student" || gotSub == "" {
		t.Fatalf("context: role=%q sub=%q", gotRole, gotSub)
	}
	if gotUser != "login.student" {
		t.Fatalf("username in context = %q, want %q", gotUser, "login.student")
	}

	// Missing bearer refused.
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/exams", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing bearer: status %d", rec.Code)
	}
}
