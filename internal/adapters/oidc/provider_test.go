package oidc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/esdeck/esdeck-api/internal/ports"
)

// newFakeIdP serves a minimal OIDC discovery document and an empty JWKS.
func newFakeIdP(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	var srv *httptest.Server
	mux.HandleFunc("/.well-known/openid-configuration", func(w http.ResponseWriter, _ *http.Request) {
		doc := map[string]any{
			"issuer":                 srv.URL,
			"authorization_endpoint": srv.URL + "/authorize",
			"token_endpoint":         srv.URL + "/token",
			"jwks_uri":               srv.URL + "/keys",
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(doc)
	})
	mux.HandleFunc("/keys", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"keys":[]}`))
	})

	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(idp *httptest.Server) ProviderConfig {
	return ProviderConfig{
		IssuerURL:    idp.URL,
		ClientID:     "esdeck",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost:8080/auth/callback",
		HTTPClient:   idp.Client(),
	}
}

func TestNewProvider_DiscoversEndpoints(t *testing.T) {
	idp := newFakeIdP(t)

	p, err := NewProvider(context.Background(), testConfig(idp))
	require.NoError(t, err)

	assert.Equal(t, ProviderType, p.Type())
	assert.Equal(t, idp.URL+"/authorize", p.Endpoint().AuthURL)
	assert.Equal(t, idp.URL+"/token", p.Endpoint().TokenURL)
}

func TestNewProvider_RequiredConfig(t *testing.T) {
	idp := newFakeIdP(t)

	tests := []struct {
		name   string
		mutate func(*ProviderConfig)
	}{
		{"missing issuer", func(c *ProviderConfig) { c.IssuerURL = "" }},
		{"missing client id", func(c *ProviderConfig) { c.ClientID = "" }},
		{"missing client secret", func(c *ProviderConfig) { c.ClientSecret = "" }},
		{"missing redirect url", func(c *ProviderConfig) { c.RedirectURL = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(idp)
			tt.mutate(&cfg)
			_, err := NewProvider(context.Background(), cfg)
			assert.Error(t, err)
		})
	}
}

func TestNewProvider_DiscoveryFailureIsFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg := testConfig(srv)
	cfg.HTTPClient = srv.Client()
	_, err := NewProvider(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "discovery")
}

func TestProvider_BeginBuildsAuthURL(t *testing.T) {
	idp := newFakeIdP(t)
	p, err := NewProvider(context.Background(), testConfig(idp))
	require.NoError(t, err)

	raw, err := p.Begin(context.Background(), "anti csrf/state")
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	q := u.Query()

	assert.Equal(t, "/authorize", u.Path)
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "esdeck", q.Get("client_id"))
	assert.Equal(t, "http://localhost:8080/auth/callback", q.Get("redirect_uri"))
	assert.Equal(t, "anti csrf/state", q.Get("state"), "state must round-trip through percent-encoding")
	assert.Contains(t, q.Get("scope"), "openid")
}

func TestProvider_BeginRequiresState(t *testing.T) {
	idp := newFakeIdP(t)
	p, err := NewProvider(context.Background(), testConfig(idp))
	require.NoError(t, err)

	_, err = p.Begin(context.Background(), "")
	assert.Error(t, err)
}

func TestProvider_AuthenticateRequiresCode(t *testing.T) {
	idp := newFakeIdP(t)
	p, err := NewProvider(context.Background(), testConfig(idp))
	require.NoError(t, err)

	_, err = p.Authenticate(context.Background(), ports.AuthRequest{})
	assert.ErrorIs(t, err, ports.ErrAuthenticationFailed)
}
