package config

import (
	"encoding/json"
	"fmt"

	domainauth "github.com/esdeck/esdeck-api/internal/domain/auth"
)

// AccessConfig carries the role and mapping tables. Both are JSON
// arrays packed into single env values; when both are configured their
// grants are unioned.
type AccessConfig struct {
	Roles  RoleList     `env:"ACCESS_ROLES"`
	Groups GroupMapList `env:"ACCESS_GROUP_MAPPINGS"`
}

// RoleList parses a JSON array of roles from one env value.
type RoleList []domainauth.Role

func (r *RoleList) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*r = nil
		return nil
	}
	var roles []domainauth.Role
	if err := json.Unmarshal(text, &roles); err != nil {
		return fmt.Errorf("parsing ACCESS_ROLES: %w", err)
	}
	for i, role := range roles {
		if role.Name == "" {
			return fmt.Errorf("parsing ACCESS_ROLES: entry %d has no name", i)
		}
	}
	*r = roles
	return nil
}

// GroupMapList parses a JSON array of group-to-cluster mappings.
type GroupMapList []domainauth.GroupClusterMapping

func (g *GroupMapList) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*g = nil
		return nil
	}
	var mappings []domainauth.GroupClusterMapping
	if err := json.Unmarshal(text, &mappings); err != nil {
		return fmt.Errorf("parsing ACCESS_GROUP_MAPPINGS: %w", err)
	}
	for i, m := range mappings {
		if m.Group == "" {
			return fmt.Errorf("parsing ACCESS_GROUP_MAPPINGS: entry %d has no group", i)
		}
	}
	*g = mappings
	return nil
}
