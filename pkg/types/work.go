// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the data model shared by the sync pipeline stages.
package types

// Work provenance tags. Every WorkRecord carries exactly one.
const (
	// SourceORCID marks a record built only from the ORCID registry.
	SourceORCID = "orcid"

	// SourceCrossRef marks a record enriched (or built) from a CrossRef
	// lookup by DOI.
	SourceCrossRef = "crossref"

	// SourceCrossRefSearch marks a record found through the CrossRef
	// author-name search fallback.
	SourceCrossRefSearch = "crossref-search"
)

// WorkRecord is the canonical internal shape for one publication,
// regardless of which source produced it.
type WorkRecord struct {
	// ID is the registry-internal work identifier (ORCID put-code).
	// Empty for records that did not come from the registry.
	ID string `json:"id,omitempty" yaml:"id,omitempty"`

	// Title is the work title. May be empty.
	Title string `json:"title" yaml:"title"`

	// Authors is a single comma-joined "Given Family" (or credited
	// name) string. May be empty.
	Authors string `json:"authors,omitempty" yaml:"authors,omitempty"`

	// Year is the 4-digit publication year, or 0 when unknown.
	Year int `json:"year,omitempty" yaml:"year,omitempty"`

	// Venue is the journal or container name. May be empty.
	Venue string `json:"venue,omitempty" yaml:"venue,omitempty"`

	// DOI is the canonical lower-cased, prefix-stripped DOI, or empty.
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`

	// URL is a resolvable link to the work, possibly synthesized from
	// the DOI.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`

	// Citations is the citation count reported by the bibliographic
	// source (0 when absent).
	Citations int `json:"citations,omitempty" yaml:"citations,omitempty"`

	// Source identifies which source produced the record: orcid,
	// crossref, or crossref-search.
	Source string `json:"source" yaml:"source"`
}

// Researcher is one entry of the mapping document: a display name and an
// optional ORCID iD. The mapping key (a short code) lives outside the
// struct.
type Researcher struct {
	// Name is the display name used for console output and for the
	// author-search fallback.
	Name string `json:"name" yaml:"name"`

	// ORCID is the registry identifier (e.g. "0000-0002-1825-0097").
	// A researcher without one is skipped.
	ORCID string `json:"orcid,omitempty" yaml:"orcid,omitempty"`
}

// ResearcherPubs is one researcher's slot in the publication store.
type ResearcherPubs struct {
	// Name is the display name, copied from the mapping document.
	Name string `json:"name" yaml:"name"`

	// Papers is the ordered publication list. Existing entries are
	// never reordered or removed; new records append at the end.
	Papers []WorkRecord `json:"papers" yaml:"papers"`
}

// PublicationStore maps researcher keys to their publication lists. It is
// the in-memory form of the store document on disk.
type PublicationStore map[string]*ResearcherPubs
