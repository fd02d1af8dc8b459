package model

import (
	"fmt"
	"time"
)

// AuthorityTier represents the classification of source authority
type AuthorityTier int

const (
	TierUnknown   AuthorityTier = 0 // Not yet classified
	TierPrimary   AuthorityTier = 1 // Official documents, papers, vendor announcements
	TierSecondary AuthorityTier = 2 // Encyclopedias, major publishers, reputable media
	TierTertiary  AuthorityTier = 3 // Blogs, forums, personal websites
)

func (t AuthorityTier) String() string {
	switch t {
	case TierPrimary:
		return "primary"
	case TierSecondary:
		return "secondary"
	case TierTertiary:
		return "tertiary"
	default:
		return "unknown"
	}
}

// MarshalText lets tiers render by name in JSON and YAML
func (t AuthorityTier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText parses a tier name
func (t *AuthorityTier) UnmarshalText(text []byte) error {
	switch string(text) {
	case "primary":
		*t = TierPrimary
	case "secondary":
		*t = TierSecondary
	case "tertiary":
		*t = TierTertiary
	case "", "unknown":
		*t = TierUnknown
	default:
		return fmt.Errorf("unknown authority tier: %q", text)
	}
	return nil
}

// SourceCheck is the accessibility check of one cited source URL
type SourceCheck struct {
	URL           string        `json:"url" yaml:"url"`
	Host          string        `json:"host,omitempty" yaml:"host,omitempty"`
	Accessible    bool          `json:"accessible" yaml:"accessible"`
	StatusCode    int           `json:"status_code,omitempty" yaml:"status_code,omitempty"`
	IsDead        bool          `json:"is_dead" yaml:"is_dead"` // 404, 410, or unreachable
	RedirectURL   string        `json:"redirect_url,omitempty" yaml:"redirect_url,omitempty"`
	LastModified  *time.Time    `json:"last_modified,omitempty" yaml:"last_modified,omitempty"`
	RobotsAllowed bool          `json:"robots_allowed" yaml:"robots_allowed"`
	Authority     AuthorityTier `json:"authority" yaml:"authority"`
	Error         string        `json:"error,omitempty" yaml:"error,omitempty"`
}
