// Package accessmap reduces group/role memberships to accessible cluster IDs.
// Two strategies exist: glob-pattern roles and direct group-to-cluster
// mappings. Both default to deny: no match means no access.
package accessmap

import (
	domainauth "github.com/esdeck/esdeck-api/internal/domain/auth"
	"github.com/esdeck/esdeck-api/internal/ports"
)

// RoleResolver grants clusters through configured roles whose glob patterns
// are matched against candidate cluster IDs.
type RoleResolver struct {
	roles map[string]domainauth.Role
}

var _ ports.AccessResolver = (*RoleResolver)(nil)

// NewRoleResolver indexes the configured roles by name.
func NewRoleResolver(roles []domainauth.Role) *RoleResolver {
	byName := make(map[string]domainauth.Role, len(roles))
	for _, r := range roles {
		byName[r.Name] = r
	}
	return &RoleResolver{roles: byName}
}

func (r *RoleResolver) CanAccessCluster(groups []string, clusterID string) bool {
	for _, name := range groups {
		role, ok := r.roles[name]
		if !ok {
			continue
		}
		if role.MatchesCluster(clusterID) {
			return true
		}
	}
	return false
}

func (r *RoleResolver) ResolveClusterAccess(groups []string, candidates []string) []string {
	out := make([]string, 0, len(candidates))
	for _, id := range candidates {
		if r.CanAccessCluster(groups, id) {
			out = append(out, id)
		}
	}
	return out
}

// GroupResolver grants clusters through direct group-to-cluster mappings.
// A Wildcard cluster grant short-circuits to exactly the wildcard set; it is
// expanded against real cluster IDs only when responses are produced.
type GroupResolver struct {
	mappings []domainauth.GroupClusterMapping
}

var _ ports.AccessResolver = (*GroupResolver)(nil)

// NewGroupResolver creates a resolver over the configured mappings.
func NewGroupResolver(mappings []domainauth.GroupClusterMapping) *GroupResolver {
	return &GroupResolver{mappings: mappings}
}

func (g *GroupResolver) ResolveClusterAccess(groups []string, _ []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range g.mappings {
		if !m.AppliesTo(groups) {
			continue
		}
		for _, c := range m.Clusters {
			if c == domainauth.Wildcard {
				return []string{domainauth.Wildcard}
			}
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	if out == nil {
		return []string{}
	}
	return out
}

func (g *GroupResolver) CanAccessCluster(groups []string, clusterID string) bool {
	for _, m := range g.mappings {
		if !m.AppliesTo(groups) {
			continue
		}
		for _, c := range m.Clusters {
			if c == domainauth.Wildcard || c == clusterID {
				return true
			}
		}
	}
	return false
}

// Composite unions the grants of several resolvers. Used when both roles and
// group mappings are configured.
type Composite struct {
	resolvers []ports.AccessResolver
}

var _ ports.AccessResolver = (*Composite)(nil)

// NewComposite creates a union resolver. Nil members are skipped.
func NewComposite(resolvers ...ports.AccessResolver) *Composite {
	var kept []ports.AccessResolver
	for _, r := range resolvers {
		if r != nil {
			kept = append(kept, r)
		}
	}
	return &Composite{resolvers: kept}
}

func (c *Composite) ResolveClusterAccess(groups []string, candidates []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range c.resolvers {
		for _, id := range r.ResolveClusterAccess(groups, candidates) {
			if id == domainauth.Wildcard {
				return []string{domainauth.Wildcard}
			}
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	if out == nil {
		return []string{}
	}
	return out
}

func (c *Composite) CanAccessCluster(groups []string, clusterID string) bool {
	for _, r := range c.resolvers {
		if r.CanAccessCluster(groups, clusterID) {
			return true
		}
	}
	return false
}
