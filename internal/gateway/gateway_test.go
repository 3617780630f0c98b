package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/halosani-dev/halosani/internal/session"
)

func TestClassifyPath(t *testing.T) {
	tests := []struct {
		path string
		want session.Role
	}{
		{"/admin/blogs", session.RoleAdmin},
		{"/admin", session.RoleAdmin},
		{"/admin/feedback/summary", session.RoleAdmin},
		{"/user/blogs", session.RoleUser},
		{"/webinfo", session.RoleUser},
		// The fallback branch: not recognizably admin, so user-scoped.
		// This mirrors the client's historical behavior on purpose.
		{"/administrator/panel", session.RoleUser},
		{"/adminx", session.RoleUser},
		{"/", session.RoleUser},
	}

	for _, tt := range tests {
		if got := ClassifyPath(tt.path); got != tt.want {
			t.Errorf("ClassifyPath(%q) = %s, want %s", tt.path, got, tt.want)
		}
	}
}

// newTestGateway wires a gateway against a fake upstream that records the
// Authorization header it saw.
func newTestGateway(t *testing.T, handler http.HandlerFunc) (*Gateway, *session.MemoryStore, *httptest.Server) {
	t.Helper()
	upstream := httptest.NewServer(handler)
	t.Cleanup(upstream.Close)

	store := session.NewMemoryStore()
	return New(upstream.URL, store, zerolog.Nop()), store, upstream
}

func TestDo_AttachesUserToken(t *testing.T) {
	var gotAuth string
	gw, store, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	})

	ctx := context.Background()
	const sid = "sid1"
	if err := store.Set(ctx, sid, session.RoleUser, "abc123"); err != nil {
		t.Fatal(err)
	}
	if err := store.Set(ctx, sid, session.RoleAdmin, "admin-token"); err != nil {
		t.Fatal(err)
	}

	resp, err := gw.Do(ctx, sid, Request{Method: http.MethodGet, Path: "/user/blogs"})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if gotAuth != "Bearer abc123" {
		t.Errorf("Authorization = %q, want Bearer abc123", gotAuth)
	}
}

func TestDo_AttachesAdminTokenRegardlessOfUserToken(t *testing.T) {
	var gotAuth string
	gw, store, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	})

	ctx := context.Background()
	const sid = "sid1"
	if err := store.Set(ctx, sid, session.RoleUser, "user-token"); err != nil {
		t.Fatal(err)
	}
	if err := store.Set(ctx, sid, session.RoleAdmin, "xyz"); err != nil {
		t.Fatal(err)
	}

	if _, err := gw.Do(ctx, sid, Request{Method: http.MethodGet, Path: "/admin/blogs"}); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if gotAuth != "Bearer xyz" {
		t.Errorf("Authorization = %q, want Bearer xyz", gotAuth)
	}
}

func TestDo_NoTokenMeansNoHeader(t *testing.T) {
	var gotAuth string
	var sawHeader bool
	gw, _, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, sawHeader = r.Header["Authorization"]
		w.WriteHeader(http.StatusOK)
	})

	if _, err := gw.Do(context.Background(), "sid1", Request{Method: http.MethodGet, Path: "/webinfo"}); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if sawHeader {
		t.Errorf("Authorization header sent without a token: %q", gotAuth)
	}
}

func TestDo_Unauthorized_ClearsTokenAndReturnsAuthExpired(t *testing.T) {
	gw, store, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	ctx := context.Background()
	const sid = "sid1"
	if err := store.Set(ctx, sid, session.RoleAdmin, "xyz"); err != nil {
		t.Fatal(err)
	}

	_, err := gw.Do(ctx, sid, Request{Method: http.MethodGet, Path: "/admin/dashboard"})

	var expired *AuthExpiredError
	if !errors.As(err, &expired) {
		t.Fatalf("err = %v, want *AuthExpiredError", err)
	}
	if expired.Role != session.RoleAdmin {
		t.Errorf("expired role = %s, want admin", expired.Role)
	}
	if _, ok, _ := store.Get(ctx, sid, session.RoleAdmin); ok {
		t.Error("admin token still present after 401")
	}
}

func TestDo_Unauthorized_ClearsOnlyTheFailedScope(t *testing.T) {
	gw, store, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	ctx := context.Background()
	const sid = "sid1"
	if err := store.Set(ctx, sid, session.RoleUser, "abc"); err != nil {
		t.Fatal(err)
	}
	if err := store.Set(ctx, sid, session.RoleAdmin, "xyz"); err != nil {
		t.Fatal(err)
	}

	if _, err := gw.Do(ctx, sid, Request{Method: http.MethodGet, Path: "/admin/blogs"}); err == nil {
		t.Fatal("expected AuthExpiredError, got nil")
	}

	if _, ok, _ := store.Get(ctx, sid, session.RoleAdmin); ok {
		t.Error("admin token survived the 401")
	}
	value, ok, _ := store.Get(ctx, sid, session.RoleUser)
	if !ok || value != "abc" {
		t.Errorf("user token = (%q, %v), want (abc, true)", value, ok)
	}
}

func TestDo_OtherErrorsPassThrough(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusForbidden, http.StatusNotFound, http.StatusInternalServerError} {
		gw, store, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		})

		ctx := context.Background()
		if err := store.Set(ctx, "sid1", session.RoleUser, "abc"); err != nil {
			t.Fatal(err)
		}

		resp, err := gw.Do(ctx, "sid1", Request{Method: http.MethodGet, Path: "/user/blogs"})
		if err != nil {
			t.Fatalf("status %d: unexpected error %v", status, err)
		}
		if resp.StatusCode != status {
			t.Errorf("status = %d, want %d", resp.StatusCode, status)
		}
		if _, ok, _ := store.Get(ctx, "sid1", session.RoleUser); !ok {
			t.Errorf("status %d cleared the token; only 401 may do that", status)
		}
	}
}

func TestDo_ExplicitScopeBeatsInference(t *testing.T) {
	var gotAuth string
	gw, store, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	})

	ctx := context.Background()
	if err := store.Set(ctx, "sid1", session.RoleAdmin, "xyz"); err != nil {
		t.Fatal(err)
	}

	// The path would classify as user-scoped; the descriptor says admin.
	if _, err := gw.Do(ctx, "sid1", Request{
		Method: http.MethodGet,
		Path:   "/management/reports",
		Scope:  session.RoleAdmin,
	}); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if gotAuth != "Bearer xyz" {
		t.Errorf("Authorization = %q, want Bearer xyz", gotAuth)
	}
}
