package auth

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Balram-8696/examprephub/internal/db"
	"github.com/Balram-8696/examprephub/internal/rbac"
)

var memDBSeq int

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	memDBSeq++
	dsn := fmt.Sprintf("file:auth_test_%d?mode=memory&cache=shared", memDBSeq)
	d, err := db.Open(context.Background(), db.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

func seedUser(t *testing.T, d *sql.DB, id, username, password, role string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	_, err = d.ExecContext(context.Background(),
		`INSERT INTO users (id,username,password_hash,role,created_at) VALUES ($1,$2,$3,$4,$5)`,
		id, username, string(hash), role, time.Now().Unix())
	if err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
}

func TestIssueAndParseJWT(t *testing.T) {
	a := NewAuthService("test-secret")
	tok, err := a.IssueJWT("u1", "student")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	c, err := a.Parse(tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.Sub != "u1" || c.Role != "student" {
		t.Fatalf("claims = %+v", c)
	}

	// token signed with a different secret is rejected
	other, _ := NewAuthService("other-secret").IssueJWT("u1", "student")
	if _, err := a.Parse(other); err == nil {
		t.Fatal("foreign signature accepted")
	}
	if _, err := a.Parse("not.a.token"); err == nil {
		t.Fatal("garbage token accepted")
	}
}

func TestLoginHandler(t *testing.T) {
	d := openTestDB(t)
	seedUser(t, d, "u1", "ravi", "s3cret", "student")
	a := NewAuthService("test-secret")
	h := LoginHandler(a, d)

	login := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
		rec := httptest.NewRecorder()
		h(rec, req)
		return rec
	}

	rec := login(`{"username":"ravi","password":"s3cret"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("valid login: %d %s", rec.Code, rec.Body.String())
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["role"] != "student" || resp["access_token"] == "" {
		t.Fatalf("login response = %v", resp)
	}
	if c, err := a.Parse(resp["access_token"]); err != nil || c.Sub != "u1" {
		t.Fatalf("issued token does not parse back: %v %+v", err, c)
	}

	if rec := login(`{"username":"ravi","password":"wrong"}`); rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password: %d", rec.Code)
	}
	if rec := login(`{"username":"ghost","password":"s3cret"}`); rec.Code != http.StatusUnauthorized {
		t.Fatalf("unknown user: %d", rec.Code)
	}
	if rec := login(`{"username":"ravi"}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("missing password: %d", rec.Code)
	}
	if rec := login(`{not json`); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad json: %d", rec.Code)
	}
}

// echoIdentity captures what the middleware chain attached to the context.
func echoIdentity() (http.HandlerFunc, *struct{ Sub, Role string }) {
	got := &struct{ Sub, Role string }{}
	return func(w http.ResponseWriter, r *http.Request) {
		got.Sub = SubjectFromContext(r.Context())
		got.Role = rbac.RoleFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}, got
}

func TestJWTMiddleware(t *testing.T) {
	a := NewAuthService("test-secret")
	next, got := echoIdentity()
	h := JWTMiddleware(a)(next)

	call := func(authz string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/tests", nil)
		if authz != "" {
			req.Header.Set("Authorization", authz)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	if rec := call(""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing header: %d", rec.Code)
	}
	if rec := call("Basic abc"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("non-bearer scheme: %d", rec.Code)
	}
	if rec := call("Bearer garbage"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("garbage bearer: %d", rec.Code)
	}

	tok, err := a.IssueJWT("u1", "student")
	if err != nil {
		t.Fatal(err)
	}
	if rec := call("Bearer " + tok); rec.Code != http.StatusOK {
		t.Fatalf("valid bearer: %d", rec.Code)
	}
	if got.Sub != "u1" || got.Role != "student" {
		t.Fatalf("context identity = %+v", got)
	}
}

func TestAttachRoleFromDB(t *testing.T) {
	d := openTestDB(t)
	seedUser(t, d, "u1", "ravi", "x", "admin")

	call := func(sub, claimRole string, allowFallback bool) (*httptest.ResponseRecorder, string) {
		next, got := echoIdentity()
		h := AttachRoleFromDB(d, allowFallback)(next)
		req := httptest.NewRequest(http.MethodGet, "/tests", nil)
		ctx := WithSubject(req.Context(), sub)
		ctx = rbac.WithRole(ctx, claimRole)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req.WithContext(ctx))
		return rec, got.Role
	}

	// DB role wins over the claim role
	rec, role := call("u1", "student", false)
	if rec.Code != http.StatusOK || role != "admin" {
		t.Fatalf("db refresh: code=%d role=%q", rec.Code, role)
	}

	// missing row falls back to the claim role when allowed
	rec, role = call("ghost", "student", true)
	if rec.Code != http.StatusOK || role != "student" {
		t.Fatalf("claim fallback: code=%d role=%q", rec.Code, role)
	}

	// missing row with no fallback is forbidden
	rec, _ = call("ghost", "student", false)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("no fallback: %d", rec.Code)
	}
	rec, _ = call("ghost", "", true)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("fallback without claim role: %d", rec.Code)
	}
}

// Full path: login issues a token that authenticates a request and carries
// the DB role through both middlewares.
func TestLoginThenAuthenticatedRequest(t *testing.T) {
	d := openTestDB(t)
	seedUser(t, d, "u1", "ravi", "s3cret", "student")
	a := NewAuthService("test-secret")

	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"username":"ravi","password":"s3cret"}`))
	rec := httptest.NewRecorder()
	LoginHandler(a, d)(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("login: %d %s", rec.Code, rec.Body.String())
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}

	next, got := echoIdentity()
	h := JWTMiddleware(a)(AttachRoleFromDB(d, false)(next))
	req = httptest.NewRequest(http.MethodGet, "/tests", nil)
	req.Header.Set("Authorization", "Bearer "+resp["access_token"])
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("authenticated request: %d", rec.Code)
	}
	if got.Sub != "u1" || got.Role != "student" {
		t.Fatalf("identity after chain = %+v", got)
	}
}
