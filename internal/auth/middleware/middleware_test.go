package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func testService(t *testing.T) *AuthService {
	t.Helper()
	adminHash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	viewerHash, _ := bcrypt.GenerateFromPassword([]byte("readonly"), bcrypt.MinCost)
	return NewAuthService("test-secret", "admin", string(adminHash),
		map[string]string{"lecturer": string(viewerHash)})
}

func TestLoginRoles(t *testing.T) {
	a := testService(t)
	if got := a.authenticate("admin", "hunter2"); got != RoleAdmin {
		t.Errorf("admin role = %q", got)
	}
	if got := a.authenticate("admin", "wrong"); got != "" {
		t.Errorf("bad admin password accepted: %q", got)
	}
	if got := a.authenticate("lecturer", "readonly"); got != RoleViewer {
		t.Errorf("viewer role = %q", got)
	}
	if got := a.authenticate("nobody", "x"); got != "" {
		t.Errorf("unknown user accepted: %q", got)
	}
}

func TestJWTRoundtrip(t *testing.T) {
	a := testService(t)
	tok, err := a.IssueJWT("admin", RoleAdmin)
	if err != nil {
		t.Fatal(err)
	}
	c, err := a.Parse(tok)
	if err != nil || c.Sub != "admin" || c.Role != RoleAdmin {
		t.Fatalf("claims = %+v, err %v", c, err)
	}
}

func TestRequireRole(t *testing.T) {
	a := testService(t)
	handler := JWTMiddleware(a)(RequireRole(RoleAdmin)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })))

	call := func(token string) int {
		req := httptest.NewRequest("POST", "/runs", strings.NewReader(""))
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := call(""); code != http.StatusUnauthorized {
		t.Errorf("no token: %d", code)
	}
	viewerTok, _ := a.IssueJWT("lecturer", RoleViewer)
	if code := call(viewerTok); code != http.StatusForbidden {
		t.Errorf("viewer on admin route: %d", code)
	}
	adminTok, _ := a.IssueJWT("admin", RoleAdmin)
	if code := call(adminTok); code != http.StatusOK {
		t.Errorf("admin: %d", code)
	}
}
