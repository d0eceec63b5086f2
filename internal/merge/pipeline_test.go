// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Integration test covering the full sync path from registry listing
// through CrossRef enrichment and dedup to the persisted store, using
// mock servers for both external APIs.

package merge_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/time/rate"

	"github.com/imslab/pubsync/internal/crossref"
	"github.com/imslab/pubsync/internal/httputil"
	"github.com/imslab/pubsync/internal/merge"
	"github.com/imslab/pubsync/internal/orcid"
	"github.com/imslab/pubsync/internal/store"
	"github.com/imslab/pubsync/pkg/types"
)

const pipelineListingJSON = `{
  "group": [
    {
      "external-ids": {"external-id": [
        {"external-id-type": "doi", "external-id-value": "10.1/foo"}
      ]},
      "work-summary": [
        {
          "put-code": 42,
          "title": {"title": {"value": "foo paper (preprint)"}},
          "publication-date": {"year": {"value": "2019"}},
          "external-ids": {"external-id": [
            {"external-id-type": "doi", "external-id-value": "10.1/foo"}
          ]}
        }
      ]
    }
  ]
}`

const pipelineCrossrefJSON = `{
  "message": {
    "DOI": "10.1/foo",
    "title": ["Foo Paper"],
    "author": [{"given": "Jane", "family": "Doe"}],
    "published-print": {"date-parts": [[2020]]},
    "container-title": ["Journal X"]
  }
}`

func TestPipelineSyncThenResync(t *testing.T) {
	registryTS := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/works"):
			fmt.Fprint(w, pipelineListingJSON)
		default:
			// Work detail is unavailable; the summary must carry the run.
			http.NotFound(w, r)
		}
	}))
	defer registryTS.Close()

	lookupTS := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/10.1%2Ffoo" || r.URL.Path == "/10.1/foo" {
			fmt.Fprint(w, pipelineCrossrefJSON)
			return
		}
		http.NotFound(w, r)
	}))
	defer lookupTS.Close()

	restoreRegistry := orcid.OverrideBaseURL(registryTS.URL)
	defer restoreRegistry()
	restoreLookup := crossref.OverrideBaseURL(lookupTS.URL)
	defer restoreLookup()

	cfg := types.SyncConfig{}
	cfg.ApplyDefaults()

	registry := &orcid.Client{
		Client: registryTS.Client(), UserAgent: "pubsync-test/0",
		Limiter: rate.NewLimiter(rate.Inf, 1),
	}
	lookup := &crossref.Client{
		Client: lookupTS.Client(), UserAgent: "pubsync-test/0",
		Limiter: rate.NewLimiter(rate.Inf, 1),
		Retry:   httputil.Policy{MaxAttempts: 1},
	}
	syncer := &merge.Syncer{Registry: registry, Lookup: lookup, Config: cfg}

	researchers := map[string]types.Researcher{
		"jdoe": {Name: "Jane Doe", ORCID: "0000-0000-0000-0001"},
	}

	dir := t.TempDir()
	storePath := filepath.Join(dir, "publications.json")
	pubs, err := store.LoadPublications(storePath)
	if err != nil {
		t.Fatalf("LoadPublications: %v", err)
	}

	var buf bytes.Buffer
	summary := syncer.Run(context.Background(), researchers, pubs, &buf)
	if summary.Added != 1 {
		t.Fatalf("first run Added = %d, want 1\noutput:\n%s", summary.Added, buf.String())
	}
	if err := store.SavePublications(storePath, pubs); err != nil {
		t.Fatalf("SavePublications: %v", err)
	}

	// Inspect the persisted document directly: year must be a JSON
	// number, not a string.
	raw, err := os.ReadFile(storePath)
	if err != nil {
		t.Fatalf("reading store: %v", err)
	}
	var onDisk map[string]struct {
		Name   string `json:"name"`
		Papers []struct {
			Title  string `json:"title"`
			DOI    string `json:"doi"`
			Year   int    `json:"year"`
			Source string `json:"source"`
		} `json:"papers"`
	}
	if err := json.Unmarshal(raw, &onDisk); err != nil {
		t.Fatalf("parsing store JSON: %v", err)
	}
	papers := onDisk["jdoe"].Papers
	if len(papers) != 1 {
		t.Fatalf("store has %d papers, want 1", len(papers))
	}
	if papers[0].DOI != "10.1/foo" || papers[0].Year != 2020 || papers[0].Title != "Foo Paper" {
		t.Errorf("stored paper = %+v, want enriched CrossRef fields", papers[0])
	}
	if papers[0].Source != types.SourceCrossRef {
		t.Errorf("Source = %q, want enriched tag", papers[0].Source)
	}

	// Second run with identical inputs: load from disk, sync, save.
	pubs2, err := store.LoadPublications(storePath)
	if err != nil {
		t.Fatalf("reloading store: %v", err)
	}
	var buf2 bytes.Buffer
	summary2 := syncer.Run(context.Background(), researchers, pubs2, &buf2)
	if summary2.Added != 0 {
		t.Errorf("second run Added = %d, want 0 (idempotent re-sync)", summary2.Added)
	}
	if err := store.SavePublications(storePath, pubs2); err != nil {
		t.Fatalf("second SavePublications: %v", err)
	}

	// The overwrite left a backup of the first version.
	backup, err := os.ReadFile(storePath + store.BackupSuffix)
	if err != nil {
		t.Fatalf("reading backup: %v", err)
	}
	if string(backup) != string(raw) {
		t.Error("backup should hold the prior store version verbatim")
	}
}

func TestPipelineFallbackToAuthorSearch(t *testing.T) {
	registryTS := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"group": []}`)
	}))
	defer registryTS.Close()

	searchJSON := `{
	  "message": {"items": [
	    {"DOI": "10.9/found", "title": ["Found By Search"], "issued": {"date-parts": [[2023]]}}
	  ]}
	}`
	lookupTS := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("query.author") == "Jane Doe" {
			fmt.Fprint(w, searchJSON)
			return
		}
		http.NotFound(w, r)
	}))
	defer lookupTS.Close()

	defer orcid.OverrideBaseURL(registryTS.URL)()
	defer crossref.OverrideBaseURL(lookupTS.URL)()

	cfg := types.SyncConfig{}
	cfg.ApplyDefaults()

	syncer := &merge.Syncer{
		Registry: &orcid.Client{
			Client: registryTS.Client(), UserAgent: "pubsync-test/0",
			Limiter: rate.NewLimiter(rate.Inf, 1),
		},
		Lookup: &crossref.Client{
			Client: lookupTS.Client(), UserAgent: "pubsync-test/0",
			Limiter: rate.NewLimiter(rate.Inf, 1),
			Retry:   httputil.Policy{MaxAttempts: 1},
		},
		Config: cfg,
	}

	pubs := types.PublicationStore{}
	var buf bytes.Buffer
	summary := syncer.Run(context.Background(), map[string]types.Researcher{
		"jdoe": {Name: "Jane Doe", ORCID: "0000-0000-0000-0001"},
	}, pubs, &buf)

	if summary.Added != 1 {
		t.Fatalf("Added = %d, want 1 from fallback\noutput:\n%s", summary.Added, buf.String())
	}
	rec := pubs["jdoe"].Papers[0]
	if rec.Source != types.SourceCrossRefSearch {
		t.Errorf("Source = %q, want fallback tag", rec.Source)
	}
	if rec.Title != "Found By Search" {
		t.Errorf("Title = %q", rec.Title)
	}
}
