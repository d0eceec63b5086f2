// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package merge drives the per-researcher sync pipeline: fetch registry
// works, enrich them from the bibliographic lookup, fall back to an
// author-name search when the registry yields nothing, and append the
// non-duplicate survivors to the publication store.
package merge

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/imslab/pubsync/pkg/types"
)

// Registry lists a researcher's works from the external registry.
type Registry interface {
	Works(ctx context.Context, orcidID string) ([]types.WorkRecord, error)
	DOIs(ctx context.Context, orcidID string) ([]string, error)
}

// Lookup resolves bibliographic metadata by DOI or author-name search.
type Lookup interface {
	WorkByDOI(ctx context.Context, doi string) (types.WorkRecord, error)
	SearchByAuthor(ctx context.Context, author string, rows int) ([]types.WorkRecord, error)
}

// Syncer runs the merge pipeline. All pacing lives in the clients'
// limiters, so execution stays strictly sequential with polite gaps
// between external calls.
type Syncer struct {
	Registry Registry
	Lookup   Lookup
	Config   types.SyncConfig
}

// Summary holds counts from one sync run.
type Summary struct {
	Researchers int
	Skipped     int
	Failed      int
	Added       int
}

// Run processes every researcher in sorted key order and mutates store in
// place. Failures are contained at the researcher boundary: a researcher
// whose registry fetch fails is logged and skipped, and the run continues.
// Run itself never fails; only loading the mapping document can abort a
// sync, and that happens before Run is called.
func (s *Syncer) Run(ctx context.Context, researchers map[string]types.Researcher, store types.PublicationStore, w io.Writer) Summary {
	keys := make([]string, 0, len(researchers))
	for k := range researchers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var summary Summary
	for _, key := range keys {
		entry := researchers[key]
		summary.Researchers++

		if entry.ORCID == "" {
			fmt.Fprintf(w, "skipped %s (%s): no registry identifier\n", key, entry.Name)
			summary.Skipped++
			continue
		}

		candidates, err := s.collect(ctx, entry, w)
		if err != nil {
			fmt.Fprintf(w, "failed  %s (%s): %v\n", key, entry.Name, err)
			summary.Failed++
			continue
		}

		if len(candidates) == 0 {
			fmt.Fprintf(w, "registry empty for %s, searching by author name %q\n", key, entry.Name)
			candidates, err = s.Lookup.SearchByAuthor(ctx, entry.Name, s.Config.AuthorSearchRows)
			if err != nil {
				fmt.Fprintf(w, "failed  %s (%s): author search: %v\n", key, entry.Name, err)
				summary.Failed++
				continue
			}
		}

		added := mergeInto(store, key, entry.Name, candidates, s.Config.TitleDistance)
		summary.Added += added
		fmt.Fprintf(w, "synced  %s (%s): %d fetched, %d new\n", key, entry.Name, len(candidates), added)
	}

	fmt.Fprintf(w, "\nSync summary: %d researchers, %d new records, %d skipped, %d failed\n",
		summary.Researchers, summary.Added, summary.Skipped, summary.Failed)
	return summary
}

// collect fetches and enriches one researcher's candidate records
// according to the configured strategy. Work-scoped lookup failures
// degrade inside; only a failed registry listing propagates.
func (s *Syncer) collect(ctx context.Context, entry types.Researcher, w io.Writer) ([]types.WorkRecord, error) {
	switch s.Config.Strategy {
	case types.StrategyHarvest:
		return s.collectHarvest(ctx, entry, w)
	default:
		return s.collectPerWork(ctx, entry, w)
	}
}

// collectPerWork keeps every registry work and overlays CrossRef fields
// onto the ones that carry a DOI. A failed lookup leaves the registry
// record as-is.
func (s *Syncer) collectPerWork(ctx context.Context, entry types.Researcher, w io.Writer) ([]types.WorkRecord, error) {
	works, err := s.Registry.Works(ctx, entry.ORCID)
	if err != nil {
		return nil, err
	}

	for i, work := range works {
		if work.DOI == "" {
			continue
		}
		enriched, err := s.Lookup.WorkByDOI(ctx, work.DOI)
		if err != nil {
			fmt.Fprintf(w, "  warning: lookup %s failed, keeping registry fields: %v\n", work.DOI, err)
			continue
		}
		works[i] = overlay(work, enriched)
	}
	return works, nil
}

// collectHarvest discards registry titles and authors entirely: it takes
// the distinct DOIs surfaced in the listing and builds one record per DOI
// purely from CrossRef. Failed lookups are skipped, not fatal.
func (s *Syncer) collectHarvest(ctx context.Context, entry types.Researcher, w io.Writer) ([]types.WorkRecord, error) {
	dois, err := s.Registry.DOIs(ctx, entry.ORCID)
	if err != nil {
		return nil, err
	}

	var records []types.WorkRecord
	for _, doi := range dois {
		rec, err := s.Lookup.WorkByDOI(ctx, doi)
		if err != nil {
			fmt.Fprintf(w, "  warning: lookup %s failed, skipping: %v\n", doi, err)
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// overlay merges an enriched CrossRef record over a registry record:
// CrossRef fields win when present, registry fields remain as fallback,
// and the registry put-code survives.
func overlay(registry, enriched types.WorkRecord) types.WorkRecord {
	out := enriched
	out.ID = registry.ID
	if out.Title == "" {
		out.Title = registry.Title
	}
	if out.Authors == "" {
		out.Authors = registry.Authors
	}
	if out.Year == 0 {
		out.Year = registry.Year
	}
	if out.Venue == "" {
		out.Venue = registry.Venue
	}
	if out.DOI == "" {
		out.DOI = registry.DOI
	}
	if out.URL == "" {
		out.URL = registry.URL
	}
	return out
}

// mergeInto appends the non-duplicate candidates to the researcher's
// stored list, creating the slot on first sight, and returns the number
// of records added. Existing entries are never reordered or removed.
func mergeInto(store types.PublicationStore, key, name string, candidates []types.WorkRecord, titleDistance int) int {
	slot, ok := store[key]
	if !ok {
		slot = &types.ResearcherPubs{Name: name}
		store[key] = slot
	}
	if slot.Name == "" {
		slot.Name = name
	}

	added := 0
	for _, cand := range candidates {
		if AlreadyExists(slot.Papers, cand, titleDistance) {
			continue
		}
		slot.Papers = append(slot.Papers, cand)
		added++
	}
	return added
}
