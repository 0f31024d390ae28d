// Package elastic is the narrow client for the managed Elasticsearch
// clusters: listing summaries and forwarding approved requests. Anything
// smarter (retries, aggregation) lives outside this codebase.
package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	jmespath "github.com/jmespath-community/go-jmespath"

	"github.com/esdeck/esdeck-api/internal/ports"
)

// ClusterConn describes one configured cluster connection.
type ClusterConn struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	URL      string `json:"url"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
}

// JMESPath expressions used to pull summary fields out of the
// _cluster/health document. Kept as expressions rather than struct tags so a
// deployment fronting a health-shaped aggregator can override them.
const (
	defaultNameExpr   = "cluster_name"
	defaultNodesExpr  = "number_of_nodes"
	defaultStatusExpr = "status"
)

// Catalog implements ports.ClusterCatalog over plain HTTP.
type Catalog struct {
	clusters map[string]ClusterConn
	order    []string
	client   *http.Client
	logger   *slog.Logger

	nameExpr   string
	nodesExpr  string
	statusExpr string
}

var _ ports.ClusterCatalog = (*Catalog)(nil)

// Options groups dependencies for the catalog.
type Options struct {
	Clusters   []ClusterConn
	HTTPClient *http.Client // Optional, defaults to a 15s-timeout client
	Logger     *slog.Logger
}

// NewCatalog validates the configured connections and compiles the summary
// extraction expressions.
func NewCatalog(opts Options) (*Catalog, error) {
	if len(opts.Clusters) == 0 {
		return nil, errors.New("elastic: at least one cluster connection is required")
	}

	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	clusters := make(map[string]ClusterConn, len(opts.Clusters))
	order := make([]string, 0, len(opts.Clusters))
	for _, c := range opts.Clusters {
		if c.ID == "" || c.URL == "" {
			return nil, errors.New("elastic: cluster connections need an id and a url")
		}
		if _, dup := clusters[c.ID]; dup {
			return nil, fmt.Errorf("elastic: duplicate cluster id %q", c.ID)
		}
		clusters[c.ID] = c
		order = append(order, c.ID)
	}

	for _, expr := range []string{defaultNameExpr, defaultNodesExpr, defaultStatusExpr} {
		if _, err := jmespath.Compile(expr); err != nil {
			return nil, fmt.Errorf("compile summary expression %q: %w", expr, err)
		}
	}

	return &Catalog{
		clusters:   clusters,
		order:      order,
		client:     client,
		logger:     logger.With("component", "elastic_catalog"),
		nameExpr:   defaultNameExpr,
		nodesExpr:  defaultNodesExpr,
		statusExpr: defaultStatusExpr,
	}, nil
}

func (c *Catalog) ClusterIDs() []string {
	return append([]string(nil), c.order...)
}

func (c *Catalog) ListClusters(ctx context.Context) ([]ports.ClusterInfo, error) {
	out := make([]ports.ClusterInfo, 0, len(c.order))
	for _, id := range c.order {
		info, err := c.GetCluster(ctx, id)
		if err != nil {
			// An unreachable cluster still shows up in the dashboard; the
			// summary just carries no health.
			c.logger.WarnContext(ctx, "cluster health fetch failed", "cluster", id, "error", err)
			conn := c.clusters[id]
			info = ports.ClusterInfo{ID: id, Name: conn.Name, Status: "unreachable"}
		}
		out = append(out, info)
	}
	return out, nil
}

func (c *Catalog) GetCluster(ctx context.Context, id string) (ports.ClusterInfo, error) {
	conn, ok := c.clusters[id]
	if !ok {
		return ports.ClusterInfo{}, ports.ErrClusterNotFound
	}

	resp, err := c.do(ctx, conn, http.MethodGet, "/_cluster/health", nil)
	if err != nil {
		return ports.ClusterInfo{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return ports.ClusterInfo{}, fmt.Errorf("cluster %s health returned status %d", id, resp.StatusCode)
	}

	var doc any
	if err := json.Unmarshal(resp.Body, &doc); err != nil {
		return ports.ClusterInfo{}, fmt.Errorf("decode cluster %s health: %w", id, err)
	}

	info := ports.ClusterInfo{ID: id, Name: conn.Name}
	if v, err := jmespath.Search(c.nameExpr, doc); err == nil {
		if s, ok := v.(string); ok && info.Name == "" {
			info.Name = s
		}
	}
	if v, err := jmespath.Search(c.nodesExpr, doc); err == nil {
		if n, ok := v.(float64); ok {
			info.Nodes = int(n)
		}
	}
	if v, err := jmespath.Search(c.statusExpr, doc); err == nil {
		if s, ok := v.(string); ok {
			info.Status = s
		}
	}

	return info, nil
}

func (c *Catalog) Proxy(ctx context.Context, id, method, path string, body []byte) (ports.ProxyResponse, error) {
	conn, ok := c.clusters[id]
	if !ok {
		return ports.ProxyResponse{}, ports.ErrClusterNotFound
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.do(ctx, conn, method, path, body)
}

func (c *Catalog) do(ctx context.Context, conn ClusterConn, method, path string, body []byte) (ports.ProxyResponse, error) {
	var reader io.Reader
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, strings.TrimSuffix(conn.URL, "/")+path, reader)
	if err != nil {
		return ports.ProxyResponse{}, fmt.Errorf("build cluster request: %w", err)
	}
	if len(body) > 0 {
		req.Header.Set("Content-Type", "application/json")
	}
	if conn.Username != "" {
		req.SetBasicAuth(conn.Username, conn.Password)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return ports.ProxyResponse{}, fmt.Errorf("cluster %s request: %w", conn.ID, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return ports.ProxyResponse{}, fmt.Errorf("read cluster %s response: %w", conn.ID, err)
	}

	return ports.ProxyResponse{StatusCode: resp.StatusCode, Body: data}, nil
}
