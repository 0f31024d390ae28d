package httpx

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/esdeck/esdeck-api/internal/ports"
)

// maxProxyBodyBytes bounds forwarded request bodies.
const maxProxyBodyBytes = 4 << 20

// ClusterHandlers serves the cluster catalog and the request proxy. All
// routes run behind RequireAuth; access checks happen per cluster here.
type ClusterHandlers struct {
	Catalog ports.ClusterCatalog
	Logger  *slog.Logger
}

func (h *ClusterHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// List returns the clusters the caller may see, with health summaries.
// GET /api/clusters.
func (h *ClusterHandlers) List(w http.ResponseWriter, r *http.Request) {
	user, ok := GetAuthUserFromContext(r.Context())
	if !ok {
		writeAuthRequired(w)
		return
	}

	infos, err := h.Catalog.ListClusters(r.Context())
	if err != nil {
		h.logger().ErrorContext(r.Context(), "list clusters failed", "error", err)
		WriteError(w, ErrorParams{
			Code:    http.StatusInternalServerError,
			ErrCode: "cluster_list_failed",
			Err:     errors.New("could not list clusters"),
		})
		return
	}

	visible := make([]ports.ClusterInfo, 0, len(infos))
	for _, info := range infos {
		if user.CanAccessCluster(info.ID) {
			visible = append(visible, info)
		}
	}
	WriteJSON(w, http.StatusOK, map[string]any{"clusters": visible})
}

// Get returns one cluster summary.
// GET /api/clusters/{id}.
func (h *ClusterHandlers) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := GetAuthUserFromContext(r.Context())
	if !ok {
		writeAuthRequired(w)
		return
	}
	clusterID := r.PathValue("id")

	// Access is checked before existence so unknown IDs and forbidden IDs
	// answer identically to callers without the grant.
	if !user.CanAccessCluster(clusterID) {
		writeClusterForbidden(w)
		return
	}

	info, err := h.Catalog.GetCluster(r.Context(), clusterID)
	if err != nil {
		if errors.Is(err, ports.ErrClusterNotFound) {
			WriteError(w, ErrorParams{
				Code:    http.StatusNotFound,
				ErrCode: "cluster_not_found",
				Err:     ports.ErrClusterNotFound,
			})
			return
		}
		h.logger().ErrorContext(r.Context(), "get cluster failed", "cluster", clusterID, "error", err)
		WriteError(w, ErrorParams{
			Code:    http.StatusBadGateway,
			ErrCode: "cluster_unreachable",
			Err:     errors.New("cluster request failed"),
		})
		return
	}
	WriteJSON(w, http.StatusOK, info)
}

// Proxy forwards an arbitrary request to the cluster.
// ANY /api/clusters/{id}/proxy/{path...}.
func (h *ClusterHandlers) Proxy(w http.ResponseWriter, r *http.Request) {
	user, ok := GetAuthUserFromContext(r.Context())
	if !ok {
		writeAuthRequired(w)
		return
	}
	clusterID := r.PathValue("id")
	if !user.CanAccessCluster(clusterID) {
		writeClusterForbidden(w)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxProxyBodyBytes))
	if err != nil {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "invalid_body",
			Err:     errors.New("could not read request body"),
		})
		return
	}

	path := "/" + r.PathValue("path")
	if raw := r.URL.RawQuery; raw != "" {
		path += "?" + raw
	}

	resp, err := h.Catalog.Proxy(r.Context(), clusterID, r.Method, path, body)
	if err != nil {
		if errors.Is(err, ports.ErrClusterNotFound) {
			WriteError(w, ErrorParams{
				Code:    http.StatusNotFound,
				ErrCode: "cluster_not_found",
				Err:     ports.ErrClusterNotFound,
			})
			return
		}
		h.logger().ErrorContext(r.Context(), "proxy failed",
			"cluster", clusterID, "method", r.Method, "path", path, "error", err)
		WriteError(w, ErrorParams{
			Code:    http.StatusBadGateway,
			ErrCode: "cluster_unreachable",
			Err:     errors.New("cluster request failed"),
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.StatusCode)
	_, _ = w.Write(resp.Body)
}

func writeClusterForbidden(w http.ResponseWriter) {
	WriteError(w, ErrorParams{
		Code:    http.StatusForbidden,
		ErrCode: "cluster_access_denied",
		Err:     errors.New("access to this cluster is denied"),
	})
}
