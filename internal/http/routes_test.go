package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	domainauth "github.com/esdeck/esdeck-api/internal/domain/auth"
	"github.com/esdeck/esdeck-api/internal/mocks"
	"github.com/esdeck/esdeck-api/internal/ports"
)

func TestRouterLoginThenMe(t *testing.T) {
	ctrl := gomock.NewController(t)
	catalog := mocks.NewMockClusterCatalog(ctrl)

	alice := domainauth.AuthUser{ID: "u-1", Username: "alice", AccessibleClusters: []string{"prod"}}
	svc := &fakeAuthService{
		loginFunc: successfulLogin(alice),
		resolveFunc: func(_ context.Context, token string) (domainauth.AuthUser, domainauth.Session, error) {
			if token != "tok-123" {
				return domainauth.AuthUser{}, domainauth.Session{}, ports.ErrSessionNotFound
			}
			return alice, domainauth.Session{Token: token, Username: "alice"}, nil
		},
	}

	router := NewRouter(RouterServices{Auth: svc, Catalog: catalog})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"username":"alice","password":"s3cret"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	cookie := findCookie(t, rec.Result(), SessionCookieName)
	require.NotNil(t, cookie)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"alice"`)
}

func TestRouterProtectsClusterRoutes(t *testing.T) {
	ctrl := gomock.NewController(t)
	catalog := mocks.NewMockClusterCatalog(ctrl)

	router := NewRouter(RouterServices{Auth: &fakeAuthService{}, Catalog: catalog})

	for _, target := range []string{
		"/api/clusters",
		"/api/clusters/prod",
		"/api/clusters/prod/proxy/_cluster/health",
		"/api/auth/me",
	} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, target)
	}
}

func TestRouterHealthIsPublic(t *testing.T) {
	ctrl := gomock.NewController(t)
	router := NewRouter(RouterServices{Auth: &fakeAuthService{}, Catalog: mocks.NewMockClusterCatalog(ctrl)})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
