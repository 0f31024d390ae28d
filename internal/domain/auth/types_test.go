package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAuthUser_CanAccessCluster(t *testing.T) {
	specific := AuthUser{AccessibleClusters: []string{"prod-1", "dev-1"}}
	assert.True(t, specific.CanAccessCluster("prod-1"))
	assert.False(t, specific.CanAccessCluster("prod-2"))

	all := AuthUser{AccessibleClusters: []string{Wildcard}}
	assert.True(t, all.CanAccessCluster("anything"))

	none := AuthUser{}
	assert.False(t, none.CanAccessCluster("prod-1"))
}

func TestAuthUser_FilterClusters(t *testing.T) {
	all := []string{"prod-1", "prod-2", "dev-1"}

	u := AuthUser{AccessibleClusters: []string{"prod-2", "dev-1"}}
	assert.Equal(t, []string{"prod-2", "dev-1"}, u.FilterClusters(all))

	admin := AuthUser{AccessibleClusters: []string{Wildcard}}
	assert.Equal(t, all, admin.FilterClusters(all))

	guest := AuthUser{}
	assert.Empty(t, guest.FilterClusters(all))
}

func TestSession_Expired(t *testing.T) {
	deadline := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	s := Session{ExpiresAt: deadline}

	assert.False(t, s.Expired(deadline.Add(-time.Second)))
	assert.False(t, s.Expired(deadline))
	assert.True(t, s.Expired(deadline.Add(time.Second)))
}

func TestRole_MatchesCluster(t *testing.T) {
	r := Role{Name: "prod-admin", ClusterPatterns: []string{"prod-*"}}
	assert.True(t, r.MatchesCluster("prod-1"))
	assert.False(t, r.MatchesCluster("dev-1"))

	multi := Role{Name: "mixed", ClusterPatterns: []string{"dev-*", "staging"}}
	assert.True(t, multi.MatchesCluster("dev-7"))
	assert.True(t, multi.MatchesCluster("staging"))
	assert.False(t, multi.MatchesCluster("prod-1"))

	empty := Role{Name: "nothing"}
	assert.False(t, empty.MatchesCluster("prod-1"))
}

func TestGroupClusterMapping_AppliesTo(t *testing.T) {
	m := GroupClusterMapping{Group: "ops", Clusters: []string{"prod-1"}}
	assert.True(t, m.AppliesTo([]string{"devs", "ops"}))
	assert.False(t, m.AppliesTo([]string{"devs"}))
	assert.False(t, m.AppliesTo(nil))

	wild := GroupClusterMapping{Group: Wildcard}
	assert.True(t, wild.AppliesTo(nil))
	assert.True(t, wild.AppliesTo([]string{"anything"}))
}
