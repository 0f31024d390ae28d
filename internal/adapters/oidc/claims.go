package oidc

import (
	"encoding/json"
	"fmt"
	"time"
)

// IDTokenClaims holds the decoded claims of a verified ID token: the
// registered claims this package validates, plus the full claim map so
// deployments can read custom claims (notably group memberships under a
// non-standard key).
type IDTokenClaims struct {
	known knownClaims
	Extra map[string]any
}

type knownClaims struct {
	Issuer            string   `json:"iss"`
	Subject           string   `json:"sub"`
	Audience          audience `json:"aud"`
	Expiry            int64    `json:"exp"`
	IssuedAt          int64    `json:"iat"`
	Email             string   `json:"email"`
	Name              string   `json:"name"`
	PreferredUsername string   `json:"preferred_username"`
	Groups            []string `json:"groups"`
}

// audience tolerates the spec'd string-or-array encoding of "aud".
type audience []string

func (a *audience) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*a = audience{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("aud claim is neither string nor array: %w", err)
	}
	*a = audience(many)
	return nil
}

// Validate fails closed unless the token's issuer equals the discovered
// issuer, its audience contains the configured client ID, and its expiry is
// in the future.
func (c IDTokenClaims) Validate(issuer, clientID string, now time.Time) error {
	if c.known.Issuer != issuer {
		return fmt.Errorf("id token issuer mismatch: got %q, want %q", c.known.Issuer, issuer)
	}

	found := false
	for _, aud := range c.known.Audience {
		if aud == clientID {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("id token audience %v does not include client %q", []string(c.known.Audience), clientID)
	}

	if c.known.Expiry <= 0 {
		return fmt.Errorf("id token has no expiry")
	}
	if expiry := time.Unix(c.known.Expiry, 0); !expiry.After(now) {
		return fmt.Errorf("id token expired at %s", expiry.UTC().Format(time.RFC3339))
	}

	return nil
}

// Subject returns the stable user identifier.
func (c IDTokenClaims) Subject() string { return c.known.Subject }

// DisplayName picks the principal's name: preferred_username, else email,
// else the subject.
func (c IDTokenClaims) DisplayName() string {
	if c.known.PreferredUsername != "" {
		return c.known.PreferredUsername
	}
	if c.known.Email != "" {
		return c.known.Email
	}
	return c.known.Subject
}

// Groups reads group memberships from the configured claim key. When a custom
// key yields nothing, the legacy fixed "groups" claim is consulted so older
// IdP configurations keep working.
func (c IDTokenClaims) Groups(claimKey string) []string {
	if claimKey == "" {
		claimKey = DefaultGroupsClaim
	}

	if groups := stringSlice(c.Extra[claimKey]); len(groups) > 0 {
		return groups
	}
	if claimKey != DefaultGroupsClaim {
		return append([]string(nil), c.known.Groups...)
	}
	return nil
}

// stringSlice coerces a decoded JSON claim value into []string, dropping
// non-string members.
func stringSlice(v any) []string {
	switch vv := v.(type) {
	case []string:
		return append([]string(nil), vv...)
	case []any:
		out := make([]string, 0, len(vv))
		for _, item := range vv {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		if vv == "" {
			return nil
		}
		return []string{vv}
	default:
		return nil
	}
}
