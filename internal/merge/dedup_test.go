// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package merge

import (
	"testing"

	"github.com/imslab/pubsync/pkg/types"
)

const distance = 6

func TestAlreadyExistsByDOI(t *testing.T) {
	existing := []types.WorkRecord{
		{Title: "A Completely Different Title", DOI: "https://doi.org/10.1/X"},
		{Title: "Another One", DOI: "10.2/y"},
	}

	// DOI equality is checked in canonical form and titles are ignored.
	cand := types.WorkRecord{Title: "Unrelated Words Here", DOI: "10.1/x"}
	if !AlreadyExists(existing, cand, distance) {
		t.Error("candidate with matching canonical DOI should be a duplicate")
	}

	// Reversed direction: existing bare, candidate prefixed.
	existing2 := []types.WorkRecord{{DOI: "10.1/x"}}
	cand2 := types.WorkRecord{DOI: "HTTPS://DOI.ORG/10.1/X"}
	if !AlreadyExists(existing2, cand2, distance) {
		t.Error("DOI dedup should be order-independent across spellings")
	}

	// A candidate with a DOI never falls back to title matching.
	cand3 := types.WorkRecord{Title: "A Completely Different Title", DOI: "10.9/unmatched"}
	if AlreadyExists(existing, cand3, distance) {
		t.Error("unmatched DOI should not be a duplicate even with an identical title")
	}
}

func TestAlreadyExistsByTitleThreshold(t *testing.T) {
	existing := []types.WorkRecord{{Title: "Deep Learning for Protein Folding"}}
	base := "deep learning for protein folding"

	tests := []struct {
		name  string
		title string
		want  bool
	}{
		{"identical", base, true},
		{"punctuation difference", "Deep-Learning for Protein Folding!", true},
		{"six edits", base + "abcdef", true},
		{"seven edits", base + "abcdefg", false},
		{"unrelated", "graph neural network survey", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cand := types.WorkRecord{Title: tt.title}
			if got := AlreadyExists(existing, cand, distance); got != tt.want {
				t.Errorf("AlreadyExists(title=%q) = %v, want %v", tt.title, got, tt.want)
			}
		})
	}
}

func TestAlreadyExistsEmptyTitles(t *testing.T) {
	// An existing record with an empty normalized title never matches.
	existing := []types.WorkRecord{{Title: "???"}, {Title: ""}}
	cand := types.WorkRecord{Title: "ab"}
	if AlreadyExists(existing, cand, distance) {
		t.Error("empty normalized titles must never match")
	}

	// A candidate with neither DOI nor usable title matches nothing.
	blank := types.WorkRecord{}
	if AlreadyExists(existing, blank, distance) {
		t.Error("blank candidate should not be a duplicate")
	}
}
