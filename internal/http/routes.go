package httpx

import (
	"log/slog"
	"net/http"

	"github.com/esdeck/esdeck-api/internal/ports"
)

// RouterServices holds the services needed by the HTTP router.
type RouterServices struct {
	Auth    AuthServiceInterface
	Catalog ports.ClusterCatalog
	Logger  *slog.Logger // Logger for middleware and handler errors (optional)
}

// NewRouter creates and configures the HTTP router.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()

	authHandlers := &AuthHandlers{Svc: services.Auth, Logger: logger}
	clusterHandlers := &ClusterHandlers{Catalog: services.Catalog, Logger: logger}

	registerAuthRoutes(mux, authHandlers, services.Auth)
	registerClusterRoutes(mux, clusterHandlers, services.Auth)
	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	return Logging(logger)(Recover(logger)(mux))
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers, auth AuthServiceInterface) {
	mux.HandleFunc("POST /api/auth/login", h.Login)
	mux.HandleFunc("POST /api/auth/logout", h.Logout)
	mux.Handle("GET /api/auth/me", RequireAuth(auth)(http.HandlerFunc(h.Me)))
	mux.HandleFunc("GET /auth/oidc/start", h.OIDCStart)
	mux.HandleFunc("GET /auth/callback", h.OIDCCallback)
}

func registerClusterRoutes(mux *http.ServeMux, h *ClusterHandlers, auth AuthServiceInterface) {
	requireAuth := RequireAuth(auth)
	mux.Handle("GET /api/clusters", requireAuth(http.HandlerFunc(h.List)))
	mux.Handle("GET /api/clusters/{id}", requireAuth(http.HandlerFunc(h.Get)))
	mux.Handle("/api/clusters/{id}/proxy/{path...}", requireAuth(http.HandlerFunc(h.Proxy)))
}
