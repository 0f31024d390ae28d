// Package auth contains domain-level types for authentication, sessions,
// and cluster access control. It is pure and free of framework/adapter concerns.
package auth

import "time"

// Wildcard is the sentinel cluster value granting access to every cluster.
const Wildcard = "*"

// AuthUser represents the authenticated principal attached to a request.
// It is created once at successful authentication and never mutated afterward.
type AuthUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	// Groups holds the principal's group or role memberships in the order the
	// identity source reported them.
	Groups []string `json:"groups"`
	// AccessibleClusters is the resolved set of cluster IDs this principal may
	// operate on. It may contain the literal Wildcard entry.
	AccessibleClusters []string `json:"accessible_clusters"`
}

// CanAccessCluster reports whether the principal may operate on the given cluster.
func (u AuthUser) CanAccessCluster(clusterID string) bool {
	for _, c := range u.AccessibleClusters {
		if c == Wildcard || c == clusterID {
			return true
		}
	}
	return false
}

// FilterClusters narrows a candidate cluster-ID list to the ones the principal
// may access, expanding the wildcard against the candidates.
func (u AuthUser) FilterClusters(all []string) []string {
	out := make([]string, 0, len(all))
	for _, id := range all {
		if u.CanAccessCluster(id) {
			out = append(out, id)
		}
	}
	return out
}

// Identity is the provider-agnostic result of credential or token verification.
// Adapters map provider-specific claims into this shape.
type Identity struct {
	UserID   string
	Username string
	Groups   []string
}

// Session is the server-side record binding an opaque token to a principal.
// Ownership lives with the session store; callers only ever see value copies.
// Invariant: ExpiresAt is always LastActivity plus the store's timeout.
type Session struct {
	Token        string    `json:"token"`
	UserID       string    `json:"user_id"`
	Username     string    `json:"username"`
	Roles        []string  `json:"roles"`
	CreatedAt    time.Time `json:"created_at"`
	ExpiresAt    time.Time `json:"expires_at"`
	LastActivity time.Time `json:"last_activity"`
}

// Expired reports whether the session has passed its expiry at the given instant.
func (s Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Role names a set of cluster-ID glob patterns. Roles are loaded once from
// configuration and never mutated at runtime.
type Role struct {
	Name            string   `json:"name"`
	ClusterPatterns []string `json:"cluster_patterns"`
}

// MatchesCluster reports whether any of the role's patterns match the cluster ID.
func (r Role) MatchesCluster(clusterID string) bool {
	for _, p := range r.ClusterPatterns {
		if GlobMatch(p, clusterID) {
			return true
		}
	}
	return false
}

// GroupClusterMapping grants a group (or Wildcard for every group) a set of
// cluster IDs. A Wildcard entry in Clusters grants all clusters.
type GroupClusterMapping struct {
	Group    string   `json:"group"`
	Clusters []string `json:"clusters"`
}

// AppliesTo reports whether the mapping covers any of the given groups.
func (m GroupClusterMapping) AppliesTo(groups []string) bool {
	if m.Group == Wildcard {
		return true
	}
	for _, g := range groups {
		if g == m.Group {
			return true
		}
	}
	return false
}
