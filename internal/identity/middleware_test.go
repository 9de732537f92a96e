package identity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
)

type fakeVerifier struct{}

func (fakeVerifier) Verify(_ context.Context, token string) (*Principal, error) {
	if token != "valid" {
		return nil, ErrInvalidSession
	}
	return &Principal{ID: "u1", Email: "owner@example.com"}, nil
}

func protectedRouter(v Verifier) *mux.Router {
	r := mux.NewRouter()
	sub := r.PathPrefix("/private").Subrouter()
	sub.Use(RequireAuth(v))
	sub.HandleFunc("", func(w http.ResponseWriter, r *http.Request) {
		p := FromContext(r.Context())
		if p == nil {
			http.Error(w, "no principal", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(p.ID))
	}).Methods(http.MethodPost)
	return r
}

func TestRequireAuth(t *testing.T) {
	t.Parallel()

	r := protectedRouter(fakeVerifier{})

	cases := []struct {
		name       string
		authHeader string
		wantStatus int
		wantBody   string
	}{
		{"no header", "", http.StatusUnauthorized, "missing_token"},
		{"not bearer", "Basic abc", http.StatusUnauthorized, "missing_token"},
		{"empty bearer", "Bearer   ", http.StatusUnauthorized, "missing_token"},
		{"bad token", "Bearer nope", http.StatusUnauthorized, "invalid_session"},
		{"good token", "Bearer valid", http.StatusOK, "u1"},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodPost, "/private", nil)
			if c.authHeader != "" {
				req.Header.Set("Authorization", c.authHeader)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			if rec.Code != c.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, c.wantStatus)
			}
			if !strings.Contains(rec.Body.String(), c.wantBody) {
				t.Fatalf("body %q does not contain %q", rec.Body.String(), c.wantBody)
			}
		})
	}
}

func TestRequireAuthWithoutVerifier(t *testing.T) {
	t.Parallel()

	// provider не сконфигурирован: стабильный 500, не деградация
	r := protectedRouter(nil)
	req := httptest.NewRequest(http.MethodPost, "/private", nil)
	req.Header.Set("Authorization", "Bearer valid")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "missing_credentials") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}
