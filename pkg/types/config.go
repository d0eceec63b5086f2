// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// EnrichmentStrategy selects how registry works are combined with
// CrossRef metadata.
type EnrichmentStrategy string

const (
	// StrategyPerWork enriches every registry work in place: CrossRef
	// fields overlay the registry-derived record when present, registry
	// fields remain as fallback, and works without a DOI keep
	// registry-only fields.
	StrategyPerWork EnrichmentStrategy = "per-work"

	// StrategyHarvest collects the distinct DOIs surfaced anywhere in
	// the registry listing, discards the registry titles and authors,
	// and builds one record per DOI purely from CrossRef.
	StrategyHarvest EnrichmentStrategy = "harvest"
)

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "pubsync/0.1 (mailto:lab@example.org)").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SyncConfig holds settings for the sync pipeline.
type SyncConfig struct {
	HTTPConfig `yaml:",inline"`

	// ResearchersPath is the mapping document (key → name + ORCID iD).
	// JSON or YAML by extension. Must exist and be non-empty.
	ResearchersPath string `json:"researchers_path" yaml:"researchers_path"`

	// StorePath is the publication store JSON document. Absence is
	// tolerated and treated as an empty store.
	StorePath string `json:"store_path" yaml:"store_path"`

	// Strategy selects per-work enrichment or DOI harvest (default per-work).
	Strategy EnrichmentStrategy `json:"strategy" yaml:"strategy"`

	// RegistryDelay is the polite pause between ORCID registry calls
	// (default 2s). Must be at least LookupDelay.
	RegistryDelay time.Duration `json:"registry_delay" yaml:"registry_delay"`

	// LookupDelay is the polite pause between CrossRef calls (default 1s).
	LookupDelay time.Duration `json:"lookup_delay" yaml:"lookup_delay"`

	// TitleDistance is the maximum edit distance at which two
	// normalized titles are considered the same work (default 6).
	TitleDistance int `json:"title_distance" yaml:"title_distance"`

	// AuthorSearchRows caps the author-name search fallback results
	// (default 5).
	AuthorSearchRows int `json:"author_search_rows" yaml:"author_search_rows"`

	// Mailto is the contact address sent to the public APIs for polite
	// pool access.
	Mailto string `json:"mailto,omitempty" yaml:"mailto,omitempty"`
}

// Defaults used when flags and the config file leave a field unset.
const (
	DefaultTimeout          = 60 * time.Second
	DefaultRegistryDelay    = 2 * time.Second
	DefaultLookupDelay      = 1 * time.Second
	DefaultTitleDistance    = 6
	DefaultAuthorSearchRows = 5
)

// ApplyDefaults fills zero-valued fields with the package defaults. The
// registry delay is raised to the lookup delay when configured lower, so
// registry pacing is never the more aggressive of the two.
func (c *SyncConfig) ApplyDefaults() {
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Strategy == "" {
		c.Strategy = StrategyPerWork
	}
	if c.RegistryDelay == 0 {
		c.RegistryDelay = DefaultRegistryDelay
	}
	if c.LookupDelay == 0 {
		c.LookupDelay = DefaultLookupDelay
	}
	if c.RegistryDelay < c.LookupDelay {
		c.RegistryDelay = c.LookupDelay
	}
	if c.TitleDistance == 0 {
		c.TitleDistance = DefaultTitleDistance
	}
	if c.AuthorSearchRows == 0 {
		c.AuthorSearchRows = DefaultAuthorSearchRows
	}
}
