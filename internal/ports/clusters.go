package ports

import (
	"context"
	"time"
)

// ClusterInfo is the narrow view of a managed Elasticsearch cluster exposed
// to the auth and HTTP layers.
type ClusterInfo struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Nodes  int    `json:"nodes"`
	Status string `json:"status"`
}

// ProxyResponse carries a forwarded cluster response back to the caller.
type ProxyResponse struct {
	StatusCode int
	Body       []byte
}

// ClusterCatalog is the external collaborator that knows the configured
// clusters and forwards approved requests to them.
type ClusterCatalog interface {
	// ClusterIDs returns the IDs of every configured cluster.
	ClusterIDs() []string

	// ListClusters returns a summary for each configured cluster.
	ListClusters(ctx context.Context) ([]ClusterInfo, error)

	// GetCluster returns the summary for one cluster or ErrClusterNotFound.
	GetCluster(ctx context.Context, id string) (ClusterInfo, error)

	// Proxy forwards method+path+body to the cluster and returns its response.
	Proxy(ctx context.Context, id, method, path string, body []byte) (ProxyResponse, error)
}

// AuditEvent records a security-relevant authentication outcome.
type AuditEvent struct {
	ID        string
	Kind      string
	Username  string
	RemoteIP  string
	Detail    string
	CreatedAt time.Time
}

// Audit event kinds.
const (
	AuditLoginSuccess   = "login_success"
	AuditLoginFailure   = "login_failure"
	AuditRateLimitBlock = "rate_limit_block"
	AuditLogout         = "logout"
)

// AuditRecorder persists authentication audit events. Recording is
// best-effort; failures must never fail the request being audited.
type AuditRecorder interface {
	Record(ctx context.Context, event AuditEvent) error
}

// ErrClusterNotFound is returned for unknown cluster IDs.
type clusterNotFoundError struct{}

func (clusterNotFoundError) Error() string { return "cluster not found" }

var ErrClusterNotFound error = clusterNotFoundError{}
