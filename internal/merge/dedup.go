// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package merge

import (
	"github.com/agnivade/levenshtein"

	"github.com/imslab/pubsync/internal/ids"
	"github.com/imslab/pubsync/pkg/types"
)

// AlreadyExists reports whether candidate is a duplicate of some record
// in existing. A candidate with a DOI matches on normalized-DOI equality
// alone; titles are irrelevant for that comparison. Without a DOI the
// candidate matches any record whose normalized title is within
// titleDistance edits of its own. A record with an empty normalized title
// never matches by title.
//
// DOIs are a reliable global key when present; the title tolerance
// absorbs minor formatting differences between registries (punctuation,
// subtitle truncation) when no DOI is available.
func AlreadyExists(existing []types.WorkRecord, candidate types.WorkRecord, titleDistance int) bool {
	if doi := ids.NormalizeDOI(candidate.DOI); doi != "" {
		for _, rec := range existing {
			if ids.NormalizeDOI(rec.DOI) == doi {
				return true
			}
		}
		return false
	}

	title := ids.NormalizeTitle(candidate.Title)
	if title == "" {
		return false
	}
	for _, rec := range existing {
		other := ids.NormalizeTitle(rec.Title)
		if other == "" {
			continue
		}
		if levenshtein.ComputeDistance(title, other) <= titleDistance {
			return true
		}
	}
	return false
}
