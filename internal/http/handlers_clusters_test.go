package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	domainauth "github.com/esdeck/esdeck-api/internal/domain/auth"
	"github.com/esdeck/esdeck-api/internal/mocks"
	"github.com/esdeck/esdeck-api/internal/ports"
)

func requestAs(t *testing.T, user domainauth.AuthUser, method, target string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	return req.WithContext(SetAuthUserInContext(req.Context(), user))
}

func TestListClustersFiltersByAccess(t *testing.T) {
	ctrl := gomock.NewController(t)
	catalog := mocks.NewMockClusterCatalog(ctrl)
	catalog.EXPECT().ListClusters(gomock.Any()).Return([]ports.ClusterInfo{
		{ID: "prod", Status: "green"},
		{ID: "staging", Status: "yellow"},
		{ID: "secret", Status: "green"},
	}, nil)

	h := &ClusterHandlers{Catalog: catalog}
	user := domainauth.AuthUser{Username: "alice", AccessibleClusters: []string{"prod", "staging"}}

	rec := httptest.NewRecorder()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/clusters", h.List)
	mux.ServeHTTP(rec, requestAs(t, user, http.MethodGet, "/api/clusters"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"prod"`)
	assert.Contains(t, rec.Body.String(), `"staging"`)
	assert.NotContains(t, rec.Body.String(), `"secret"`)
}

func TestListClustersWildcardSeesEverything(t *testing.T) {
	ctrl := gomock.NewController(t)
	catalog := mocks.NewMockClusterCatalog(ctrl)
	catalog.EXPECT().ListClusters(gomock.Any()).Return([]ports.ClusterInfo{
		{ID: "prod"}, {ID: "staging"},
	}, nil)

	h := &ClusterHandlers{Catalog: catalog}
	user := domainauth.AuthUser{Username: "root", AccessibleClusters: []string{domainauth.Wildcard}}

	rec := httptest.NewRecorder()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/clusters", h.List)
	mux.ServeHTTP(rec, requestAs(t, user, http.MethodGet, "/api/clusters"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"prod"`)
	assert.Contains(t, rec.Body.String(), `"staging"`)
}

func TestGetClusterDeniedBeforeLookup(t *testing.T) {
	ctrl := gomock.NewController(t)
	catalog := mocks.NewMockClusterCatalog(ctrl)
	// No GetCluster expectation: the handler must not touch the catalog.

	h := &ClusterHandlers{Catalog: catalog}
	user := domainauth.AuthUser{Username: "alice", AccessibleClusters: []string{"staging"}}

	rec := httptest.NewRecorder()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/clusters/{id}", h.Get)
	mux.ServeHTTP(rec, requestAs(t, user, http.MethodGet, "/api/clusters/prod"))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "cluster_access_denied")
}

func TestGetClusterNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	catalog := mocks.NewMockClusterCatalog(ctrl)
	catalog.EXPECT().GetCluster(gomock.Any(), "ghost").Return(ports.ClusterInfo{}, ports.ErrClusterNotFound)

	h := &ClusterHandlers{Catalog: catalog}
	user := domainauth.AuthUser{Username: "root", AccessibleClusters: []string{domainauth.Wildcard}}

	rec := httptest.NewRecorder()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/clusters/{id}", h.Get)
	mux.ServeHTTP(rec, requestAs(t, user, http.MethodGet, "/api/clusters/ghost"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProxyForwardsMethodPathAndQuery(t *testing.T) {
	ctrl := gomock.NewController(t)
	catalog := mocks.NewMockClusterCatalog(ctrl)
	catalog.EXPECT().
		Proxy(gomock.Any(), "prod", http.MethodGet, "/_cat/indices?v=true", gomock.Any()).
		Return(ports.ProxyResponse{StatusCode: http.StatusOK, Body: []byte(`green open logs-1`)}, nil)

	h := &ClusterHandlers{Catalog: catalog}
	user := domainauth.AuthUser{Username: "alice", AccessibleClusters: []string{"prod"}}

	rec := httptest.NewRecorder()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/clusters/{id}/proxy/{path...}", h.Proxy)
	mux.ServeHTTP(rec, requestAs(t, user, http.MethodGet, "/api/clusters/prod/proxy/_cat/indices?v=true"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "logs-1")
}

func TestProxyDenied(t *testing.T) {
	ctrl := gomock.NewController(t)
	catalog := mocks.NewMockClusterCatalog(ctrl)

	h := &ClusterHandlers{Catalog: catalog}
	user := domainauth.AuthUser{Username: "alice", AccessibleClusters: []string{}}

	rec := httptest.NewRecorder()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/clusters/{id}/proxy/{path...}", h.Proxy)
	mux.ServeHTTP(rec, requestAs(t, user, http.MethodDelete, "/api/clusters/prod/proxy/logs-1"))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestProxyUpstreamFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	catalog := mocks.NewMockClusterCatalog(ctrl)
	catalog.EXPECT().
		Proxy(gomock.Any(), "prod", http.MethodGet, "/_cluster/health", gomock.Any()).
		Return(ports.ProxyResponse{}, assert.AnError)

	h := &ClusterHandlers{Catalog: catalog}
	user := domainauth.AuthUser{Username: "alice", AccessibleClusters: []string{"prod"}}

	rec := httptest.NewRecorder()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/clusters/{id}/proxy/{path...}", h.Proxy)
	mux.ServeHTTP(rec, requestAs(t, user, http.MethodGet, "/api/clusters/prod/proxy/_cluster/health"))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}
