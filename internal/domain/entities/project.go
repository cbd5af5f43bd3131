package entities

import (
	"time"

	"github.com/volatiletech/null/v8"
)

// ProjectQuota is the registry's usage accounting for a project.
type ProjectQuota struct {
	Current uint64 `json:"current"`
	Max     uint64 `json:"max"`
	IsValid bool   `json:"isValid"`
}

// ProjectFeature is a feature toggle attached to a project.
type ProjectFeature struct {
	ID        string `json:"id"`
	IsEnabled bool   `json:"isEnabled"`
}

// ProjectData is the registry record for one project id. It is immutable
// for the lifetime of a cache entry.
type ProjectData struct {
	ID             string           `json:"id"`
	IsEnabled      bool             `json:"isEnabled"`
	IsRateLimited  bool             `json:"isRateLimited"`
	Quota          ProjectQuota     `json:"quota"`
	AllowedOrigins []string         `json:"allowedOrigins"`
	Features       []ProjectFeature `json:"features"`
	Name           null.String      `json:"name,omitempty"`
	OwnerEmail     null.String      `json:"ownerEmail,omitempty"`
	CreatedAt      null.Time        `json:"createdAt,omitempty"`
}

// HasFeature reports whether the feature id is present and enabled.
func (p *ProjectData) HasFeature(id string) bool {
	for _, f := range p.Features {
		if f.ID == id {
			return f.IsEnabled
		}
	}
	return false
}

// QuotaExceeded reports whether the project is over its paid quota.
func (p *ProjectData) QuotaExceeded() bool {
	return !p.Quota.IsValid || (p.Quota.Max > 0 && p.Quota.Current >= p.Quota.Max)
}

// CachedProject wraps a registry lookup result for the two-tier cache.
// Negative results (unknown or misconfigured ids) are cached too, so the
// registry is hit at most once per TTL per project id.
type CachedProject struct {
	Data      *ProjectData `json:"data,omitempty"`
	NotFound  bool         `json:"notFound,omitempty"`
	Invalid   bool         `json:"invalid,omitempty"`
	FetchedAt time.Time    `json:"fetchedAt"`
}
