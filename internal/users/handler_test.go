package users

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"docassist-backend/internal/shared/auth"
)

func TestHandlerRegisterLogin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(newTestService(auth.NewSigner("secret", time.Hour))).RegisterRoutes(r)

	do := func(method, path, body, authz string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		if authz != "" {
			req.Header.Set("Authorization", authz)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	steps := []struct {
		name string
		path string
		body string
		want int
	}{
		{"register", "/register", `{"username":"alice","password":"pw"}`, http.StatusOK},
		{"duplicate", "/register", `{"username":"alice","password":"pw"}`, http.StatusConflict},
		{"missing", "/register", `{"username":"alice"}`, http.StatusBadRequest},
		{"bad password", "/login", `{"username":"alice","password":"x"}`, http.StatusUnauthorized},
	}
	for _, s := range steps {
		if rec := do(http.MethodPost, s.path, s.body, ""); rec.Code != s.want {
			t.Fatalf("%s: status = %d, want %d (%s)", s.name, rec.Code, s.want, rec.Body.String())
		}
	}

	rec := do(http.MethodPost, "/login", `{"username":"alice","password":"pw"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d", rec.Code)
	}
	var body struct {
		Success bool   `json:"success"`
		Token   string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || !body.Success || body.Token == "" {
		t.Fatalf("unexpected login body %s", rec.Body.String())
	}

	if rec := do(http.MethodGet, "/me", "", "Bearer "+body.Token); rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"alice"`) {
		t.Fatalf("me = %d %s", rec.Code, rec.Body.String())
	}
	if rec := do(http.MethodGet, "/me", "", "Bearer junk"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("me with junk token = %d", rec.Code)
	}
}
