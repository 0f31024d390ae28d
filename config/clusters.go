package config

import (
	"encoding/json"
	"fmt"
)

// ClusterEntry is one Elasticsearch connection. Name is optional; the
// catalog falls back to the cluster's self-reported name.
type ClusterEntry struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	URL      string `json:"url"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// ClusterEntries parses a JSON array of connections from one env value.
type ClusterEntries []ClusterEntry

func (e *ClusterEntries) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*e = nil
		return nil
	}
	var entries []ClusterEntry
	if err := json.Unmarshal(text, &entries); err != nil {
		return fmt.Errorf("parsing CLUSTERS: %w", err)
	}
	seen := make(map[string]bool, len(entries))
	for i, c := range entries {
		if c.ID == "" || c.URL == "" {
			return fmt.Errorf("parsing CLUSTERS: entry %d is missing id or url", i)
		}
		if seen[c.ID] {
			return fmt.Errorf("parsing CLUSTERS: duplicate cluster id %q", c.ID)
		}
		seen[c.ID] = true
	}
	*e = entries
	return nil
}

// ClustersConfig holds the managed cluster connections.
type ClustersConfig struct {
	Entries ClusterEntries `env:"CLUSTERS"`
}
