// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package orcid lists a researcher's works from the ORCID public registry.
//
// The registry groups duplicate-submission variants of the same underlying
// work; this adapter flattens each group into one WorkRecord, optionally
// enriched from the per-work detail endpoint. Individual missing fields
// never fail a listing; only a failed or unparsable listing call does.
package orcid

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/imslab/pubsync/internal/httputil"
	"github.com/imslab/pubsync/internal/ids"
	"github.com/imslab/pubsync/pkg/types"
)

// orcidAPIBase is the ORCID public API base URL. Declared as a var so
// tests can substitute an httptest server.
var orcidAPIBase = "https://pub.orcid.org/v3.0"

// OverrideBaseURL points the client at a different registry endpoint and
// returns a function that restores the previous one. Intended for tests.
func OverrideBaseURL(url string) func() {
	old := orcidAPIBase
	orcidAPIBase = url
	return func() { orcidAPIBase = old }
}

// Client fetches work listings from the ORCID public API. Calls are paced
// by the limiter so consecutive registry requests keep a polite distance.
type Client struct {
	Client    *http.Client
	UserAgent string
	Limiter   *rate.Limiter
}

// NewClient builds a registry client that spaces consecutive calls at
// least delay apart.
func NewClient(httpClient *http.Client, userAgent string, delay time.Duration) *Client {
	return &Client{
		Client:    httpClient,
		UserAgent: userAgent,
		Limiter:   rate.NewLimiter(rate.Every(delay), 1),
	}
}

// Works retrieves the full work listing for one ORCID iD. For each work
// group it takes the first summary and tries the richer detail document;
// a failed detail fetch is non-fatal and the summary alone is used.
func (c *Client) Works(ctx context.Context, orcidID string) ([]types.WorkRecord, error) {
	listing, err := c.fetchListing(ctx, orcidID)
	if err != nil {
		return nil, err
	}

	var records []types.WorkRecord
	for _, group := range listing.Groups {
		if len(group.Summaries) == 0 {
			continue
		}
		summary := group.Summaries[0]

		// Detail failure degrades to the summary fields.
		detail, detailErr := c.fetchDetail(ctx, orcidID, summary.PutCode)
		if detailErr != nil {
			detail = nil
		}

		records = append(records, buildRecord(summary, detail, group))
	}
	return records, nil
}

// DOIs retrieves the distinct DOIs surfaced anywhere in the work listing,
// in listing order and canonical form. No detail documents are fetched.
func (c *Client) DOIs(ctx context.Context, orcidID string) ([]string, error) {
	listing, err := c.fetchListing(ctx, orcidID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var dois []string
	for _, group := range listing.Groups {
		candidates := group.ExternalIDs.IDs
		for _, summary := range group.Summaries {
			candidates = append(candidates, summary.ExternalIDs.IDs...)
		}
		if doi := findDOI(candidates); doi != "" && !seen[doi] {
			seen[doi] = true
			dois = append(dois, doi)
		}
	}
	return dois, nil
}

func (c *Client) fetchListing(ctx context.Context, orcidID string) (*worksListing, error) {
	body, err := c.get(ctx, fmt.Sprintf("%s/%s/works", orcidAPIBase, orcidID))
	if err != nil {
		return nil, fmt.Errorf("ORCID works listing for %s: %w", orcidID, err)
	}

	var listing worksListing
	if err := json.Unmarshal(body, &listing); err != nil {
		return nil, fmt.Errorf("parsing ORCID works listing for %s: %w", orcidID, err)
	}
	return &listing, nil
}

func (c *Client) fetchDetail(ctx context.Context, orcidID string, putCode int64) (*workDetail, error) {
	body, err := c.get(ctx, fmt.Sprintf("%s/%s/work/%d", orcidAPIBase, orcidID, putCode))
	if err != nil {
		return nil, err
	}

	var detail workDetail
	if err := json.Unmarshal(body, &detail); err != nil {
		return nil, fmt.Errorf("parsing ORCID work %d: %w", putCode, err)
	}
	return &detail, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	if err := c.Limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.UserAgent)

	resp, err := httputil.Do(ctx, c.Client, req, httputil.Single)
	if err != nil {
		return nil, fmt.Errorf("ORCID API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ORCID API returned HTTP %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// buildRecord maps one (summary, detail) pair to the canonical record
// shape. Detail fields win over summary fields; every lookup tolerates
// absence.
func buildRecord(summary workSummary, detail *workDetail, group workGroup) types.WorkRecord {
	rec := types.WorkRecord{
		ID:     strconv.FormatInt(summary.PutCode, 10),
		Source: types.SourceORCID,
	}

	rec.Title = summary.Title.Title.Value
	rec.Year = parseYear(summary.PublicationDate.Year.Value)
	rec.Venue = summary.JournalTitle.Value
	rec.URL = summary.URL.Value

	if detail != nil {
		if t := detail.Title.Title.Value; t != "" {
			rec.Title = t
		}
		if y := parseYear(detail.PublicationDate.Year.Value); y != 0 && rec.Year == 0 {
			rec.Year = y
		}
		if v := detail.JournalTitle.Value; v != "" {
			rec.Venue = v
		}
		if u := detail.URL.Value; u != "" {
			rec.URL = u
		}
		rec.Authors = joinContributors(detail.Contributors.Contributors)
	}

	// DOI precedence: detail ids, then summary ids, then group-level ids.
	var candidates []externalID
	if detail != nil {
		candidates = append(candidates, detail.ExternalIDs.IDs...)
	}
	candidates = append(candidates, summary.ExternalIDs.IDs...)
	candidates = append(candidates, group.ExternalIDs.IDs...)
	rec.DOI = findDOI(candidates)

	if rec.URL == "" && rec.DOI != "" {
		rec.URL = "https://doi.org/" + rec.DOI
	}
	return rec
}

// findDOI scans an external-identifier list for the first DOI entry,
// matching the type field case-insensitively by substring, and returns it
// in canonical form.
func findDOI(extIDs []externalID) string {
	for _, id := range extIDs {
		if strings.Contains(strings.ToLower(id.Type), "doi") {
			if doi := ids.NormalizeDOI(id.Value); doi != "" {
				return doi
			}
		}
	}
	return ""
}

// joinContributors joins contributor credit-names into the canonical
// comma-separated author string, skipping empties.
func joinContributors(contributors []contributor) string {
	var names []string
	for _, c := range contributors {
		if name := strings.TrimSpace(c.CreditName.Value); name != "" {
			names = append(names, name)
		}
	}
	return strings.Join(names, ", ")
}

// parseYear converts the registry's string year to a 4-digit integer,
// returning 0 for anything unusable.
func parseYear(s string) int {
	y, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || y < 1000 || y > 9999 {
		return 0
	}
	return y
}

// ORCID public API JSON structures. The registry wraps most scalars in
// {"value": ...} objects.
type worksListing struct {
	Groups []workGroup `json:"group"`
}

type workGroup struct {
	ExternalIDs externalIDList `json:"external-ids"`
	Summaries   []workSummary  `json:"work-summary"`
}

type workSummary struct {
	PutCode         int64           `json:"put-code"`
	Title           workTitle       `json:"title"`
	JournalTitle    valueString     `json:"journal-title"`
	PublicationDate publicationDate `json:"publication-date"`
	ExternalIDs     externalIDList  `json:"external-ids"`
	URL             valueString     `json:"url"`
}

type workDetail struct {
	PutCode         int64           `json:"put-code"`
	Title           workTitle       `json:"title"`
	JournalTitle    valueString     `json:"journal-title"`
	PublicationDate publicationDate `json:"publication-date"`
	ExternalIDs     externalIDList  `json:"external-ids"`
	Contributors    contributorList `json:"contributors"`
	URL             valueString     `json:"url"`
}

type workTitle struct {
	Title valueString `json:"title"`
}

type publicationDate struct {
	Year valueString `json:"year"`
}

type externalIDList struct {
	IDs []externalID `json:"external-id"`
}

type externalID struct {
	Type  string `json:"external-id-type"`
	Value string `json:"external-id-value"`
}

type contributorList struct {
	Contributors []contributor `json:"contributor"`
}

type contributor struct {
	CreditName valueString `json:"credit-name"`
}

type valueString struct {
	Value string `json:"value"`
}
