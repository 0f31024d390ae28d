package accessmap

import (
	"testing"

	"github.com/stretchr/testify/assert"

	domainauth "github.com/esdeck/esdeck-api/internal/domain/auth"
)

func TestRoleResolver_MatchesCluster(t *testing.T) {
	r := NewRoleResolver([]domainauth.Role{
		{Name: "prod-admin", ClusterPatterns: []string{"prod-*"}},
		{Name: "all-access", ClusterPatterns: []string{"*"}},
	})

	assert.True(t, r.CanAccessCluster([]string{"prod-admin"}, "prod-1"))
	assert.False(t, r.CanAccessCluster([]string{"prod-admin"}, "dev-1"))
	assert.True(t, r.CanAccessCluster([]string{"all-access"}, "dev-1"))
	assert.False(t, r.CanAccessCluster([]string{"unknown-role"}, "prod-1"))
	assert.False(t, r.CanAccessCluster(nil, "prod-1"), "no memberships means no access")
}

func TestRoleResolver_ResolveFiltersCandidates(t *testing.T) {
	r := NewRoleResolver([]domainauth.Role{
		{Name: "prod-admin", ClusterPatterns: []string{"prod-*"}},
	})

	got := r.ResolveClusterAccess([]string{"prod-admin"}, []string{"prod-1", "prod-2", "dev-1"})
	assert.Equal(t, []string{"prod-1", "prod-2"}, got)

	got = r.ResolveClusterAccess([]string{"viewer"}, []string{"prod-1"})
	assert.Empty(t, got)
}

func TestGroupResolver_UnionsMappings(t *testing.T) {
	g := NewGroupResolver([]domainauth.GroupClusterMapping{
		{Group: "ops", Clusters: []string{"prod-1", "prod-2"}},
		{Group: "devs", Clusters: []string{"dev-1", "prod-1"}},
	})

	got := g.ResolveClusterAccess([]string{"ops", "devs"}, nil)
	assert.Equal(t, []string{"prod-1", "prod-2", "dev-1"}, got)
}

func TestGroupResolver_WildcardGroupApplies(t *testing.T) {
	g := NewGroupResolver([]domainauth.GroupClusterMapping{
		{Group: "*", Clusters: []string{"sandbox"}},
	})

	got := g.ResolveClusterAccess([]string{"anything"}, nil)
	assert.Equal(t, []string{"sandbox"}, got)
}

func TestGroupResolver_WildcardClusterShortCircuits(t *testing.T) {
	g := NewGroupResolver([]domainauth.GroupClusterMapping{
		{Group: "ops", Clusters: []string{"prod-1"}},
		{Group: "admins", Clusters: []string{"*"}},
		{Group: "ops", Clusters: []string{"prod-2"}},
	})

	got := g.ResolveClusterAccess([]string{"ops", "admins"}, nil)
	assert.Equal(t, []string{"*"}, got, "wildcard grant must collapse the whole set")
}

func TestGroupResolver_DefaultDeny(t *testing.T) {
	g := NewGroupResolver([]domainauth.GroupClusterMapping{
		{Group: "ops", Clusters: []string{"prod-1"}},
	})

	assert.Empty(t, g.ResolveClusterAccess([]string{"guests"}, nil))
	assert.False(t, g.CanAccessCluster([]string{"guests"}, "prod-1"))
	assert.False(t, g.CanAccessCluster([]string{"guests"}, "anything"))
}

func TestComposite_UnionsStrategies(t *testing.T) {
	roles := NewRoleResolver([]domainauth.Role{
		{Name: "prod-admin", ClusterPatterns: []string{"prod-*"}},
	})
	groups := NewGroupResolver([]domainauth.GroupClusterMapping{
		{Group: "devs", Clusters: []string{"dev-1"}},
	})
	c := NewComposite(roles, groups)

	got := c.ResolveClusterAccess([]string{"prod-admin", "devs"}, []string{"prod-1", "dev-1"})
	assert.ElementsMatch(t, []string{"prod-1", "dev-1"}, got)

	assert.True(t, c.CanAccessCluster([]string{"devs"}, "dev-1"))
	assert.False(t, c.CanAccessCluster([]string{"devs"}, "prod-1"))
}

func TestComposite_WildcardWins(t *testing.T) {
	groups := NewGroupResolver([]domainauth.GroupClusterMapping{
		{Group: "admins", Clusters: []string{"*"}},
	})
	roles := NewRoleResolver([]domainauth.Role{
		{Name: "prod-admin", ClusterPatterns: []string{"prod-*"}},
	})
	c := NewComposite(groups, roles)

	got := c.ResolveClusterAccess([]string{"admins", "prod-admin"}, []string{"prod-1"})
	assert.Equal(t, []string{"*"}, got)
}
