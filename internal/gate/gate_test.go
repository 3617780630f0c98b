package gate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/halosani-dev/halosani/internal/session"
)

func newGateRouter(store session.Store, role session.Role, sid string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(SIDKey, sid)
		c.Next()
	})

	group := router.Group("/" + string(role))
	group.Use(Require(store, role, zerolog.Nop()))
	group.GET("/dashboard", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"rendered": true})
	})

	return router
}

func TestRequire_MissingTokenRedirectsWithPendingTarget(t *testing.T) {
	store := session.NewMemoryStore()
	router := newGateRouter(store, session.RoleAdmin, "sid1")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", w.Code)
	}

	location, err := url.Parse(w.Header().Get("Location"))
	if err != nil {
		t.Fatalf("bad Location header: %v", err)
	}
	if location.Path != "/admin/login" {
		t.Errorf("redirect path = %q, want /admin/login", location.Path)
	}
	if next := location.Query().Get(NextParam); next != "/admin/dashboard" {
		t.Errorf("pending target = %q, want /admin/dashboard", next)
	}
}

func TestRequire_PreservesQueryInPendingTarget(t *testing.T) {
	store := session.NewMemoryStore()
	router := newGateRouter(store, session.RoleUser, "sid1")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/user/dashboard?tab=saved", nil)
	router.ServeHTTP(w, req)

	location, _ := url.Parse(w.Header().Get("Location"))
	if next := location.Query().Get(NextParam); next != "/user/dashboard?tab=saved" {
		t.Errorf("pending target = %q, want /user/dashboard?tab=saved", next)
	}
}

func TestRequire_PresentTokenRenders(t *testing.T) {
	store := session.NewMemoryStore()
	if err := store.Set(context.Background(), "sid1", session.RoleAdmin, "xyz"); err != nil {
		t.Fatal(err)
	}
	router := newGateRouter(store, session.RoleAdmin, "sid1")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

func TestRequire_ReevaluatedPerNavigation(t *testing.T) {
	store := session.NewMemoryStore()
	ctx := context.Background()
	if err := store.Set(ctx, "sid1", session.RoleUser, "abc"); err != nil {
		t.Fatal(err)
	}
	router := newGateRouter(store, session.RoleUser, "sid1")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/user/dashboard", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("first navigation status = %d, want 200", w.Code)
	}

	// The gate holds no memory: clearing the token gates the next navigation
	if err := store.Clear(ctx, "sid1", session.RoleUser); err != nil {
		t.Fatal(err)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/user/dashboard", nil))
	if w.Code != http.StatusFound {
		t.Fatalf("second navigation status = %d, want 302", w.Code)
	}
}

func TestSafeNext(t *testing.T) {
	tests := []struct {
		name string
		next string
		role session.Role
		want string
	}{
		{"valid relative path", "/user/blogs", session.RoleUser, "/user/blogs"},
		{"valid with query", "/admin/blogs?page=2", session.RoleAdmin, "/admin/blogs?page=2"},
		{"empty falls back user", "", session.RoleUser, "/"},
		{"empty falls back admin", "", session.RoleAdmin, "/admin/dashboard"},
		{"absolute URL rejected", "https://evil.example/phish", session.RoleUser, "/"},
		{"scheme-relative rejected", "//evil.example/phish", session.RoleAdmin, "/admin/dashboard"},
		{"not rooted rejected", "user/blogs", session.RoleUser, "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SafeNext(tt.next, tt.role); got != tt.want {
				t.Errorf("SafeNext(%q) = %q, want %q", tt.next, got, tt.want)
			}
		})
	}
}
