package e2e

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/halosani-dev/halosani/internal/config"
	"github.com/halosani-dev/halosani/internal/server"
)

// startStack boots a fake HaloSani API plus the web gate with the sqlite
// session backend, everything in-process.
func startStack(t *testing.T) (*httptest.Server, *http.Client) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/user/login", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"token":"user-token","user":{"id":"u1","name":"Ayu","email":"ayu@halosani.cloud"}}`))
	})
	mux.HandleFunc("/admin/login", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"token":"admin-token","user":{"id":"a1","name":"Sari","email":"sari@halosani.cloud"}}`))
	})
	guard := func(token, payload string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer "+token {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(payload))
		}
	}
	mux.HandleFunc("/user/blogs", guard("user-token", `[{"id":"b1","title":"Sleep hygiene"}]`))
	mux.HandleFunc("/admin/dashboard", guard("admin-token", `{"users":12}`))
	// Revoked upstream session: every call answers 401
	mux.HandleFunc("/admin/feedback/summary", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	upstream := httptest.NewServer(mux)
	t.Cleanup(upstream.Close)

	cfg := &config.Config{
		API:    config.APIConfig{BaseURL: upstream.URL},
		Server: config.ServerConfig{Port: "0", AllowedOrigin: "http://localhost:5173"},
		Session: config.SessionConfig{
			Backend:     "sqlite",
			DatabaseURL: filepath.Join(t.TempDir(), "gate.sqlite"),
			Secret:      "e2e-secret",
		},
		Logging: config.LoggingConfig{Level: "error", Format: "json"},
	}

	srv, err := server.New(cfg, zerolog.Nop(), "e2e")
	require.NoError(t, err)

	gate := httptest.NewServer(srv.Router())
	t.Cleanup(gate.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return gate, &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func login(t *testing.T, client *http.Client, base, path string) {
	t.Helper()
	resp, err := client.Post(base+path, "application/json",
		strings.NewReader(`{"email":"someone@halosani.cloud","password":"secret123"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSessionFlow(t *testing.T) {
	gate, client := startStack(t)

	// Scenario A: no admin token, the gate redirects and remembers intent
	resp, err := client.Get(gate.URL + "/admin/dashboard")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)

	location, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	require.Equal(t, "/admin/login", location.Path)
	require.Equal(t, "/admin/dashboard", location.Query().Get("next"))

	// Scenario B: after user login, the relay carries the user bearer token
	login(t, client, gate.URL, "/user/login")

	resp, err = client.Get(gate.URL + "/user/blogs")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(body), "Sleep hygiene")

	// Both roles logged in on the same visitor session
	login(t, client, gate.URL, "/admin/login")

	resp, err = client.Get(gate.URL + "/admin/dashboard")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Scenario C: an upstream 401 on an admin path clears the admin token
	// and forces navigation to the admin login
	resp, err = client.Get(gate.URL + "/admin/feedback/summary")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)

	location, err = url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	require.Equal(t, "/admin/login", location.Path)

	resp, err = client.Get(gate.URL + "/admin/dashboard")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode, "admin gate must be closed after the 401")

	// Scenario D: the user token survived the admin expiry untouched
	resp, err = client.Get(gate.URL + "/user/blogs")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
