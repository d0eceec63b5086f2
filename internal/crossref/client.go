// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package crossref looks up authoritative bibliographic metadata, either
// for a single DOI or through the author-name search used as a fallback
// when the registry yields nothing.
package crossref

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/imslab/pubsync/internal/httputil"
	"github.com/imslab/pubsync/internal/ids"
	"github.com/imslab/pubsync/pkg/types"
)

// crossrefAPIBase is the CrossRef works endpoint. Declared as a var so
// tests can substitute an httptest server.
var crossrefAPIBase = "https://api.crossref.org/works"

// OverrideBaseURL points the client at a different works endpoint and
// returns a function that restores the previous one. Intended for tests.
func OverrideBaseURL(url string) func() {
	old := crossrefAPIBase
	crossrefAPIBase = url
	return func() { crossrefAPIBase = old }
}

// Client fetches CrossRef work metadata. Calls are paced by the limiter
// and individual lookups get one best-effort retry.
type Client struct {
	Client    *http.Client
	UserAgent string
	// Mailto is sent as a query parameter for polite pool access.
	Mailto  string
	Limiter *rate.Limiter
	Retry   httputil.Policy
}

// NewClient builds a lookup client that spaces consecutive calls at least
// delay apart and retries each failed lookup once.
func NewClient(httpClient *http.Client, userAgent, mailto string, delay time.Duration) *Client {
	return &Client{
		Client:    httpClient,
		UserAgent: userAgent,
		Mailto:    mailto,
		Limiter:   rate.NewLimiter(rate.Every(delay), 1),
		Retry:     httputil.RetryOnce,
	}
}

// WorkByDOI fetches the authoritative record for one DOI. It fails when
// the DOI resolves to nothing or the transport gives up; the caller
// decides how to degrade.
func (c *Client) WorkByDOI(ctx context.Context, doi string) (types.WorkRecord, error) {
	reqURL := crossrefAPIBase + "/" + url.PathEscape(ids.NormalizeDOI(doi))
	if c.Mailto != "" {
		reqURL += "?mailto=" + url.QueryEscape(c.Mailto)
	}

	body, err := c.get(ctx, reqURL)
	if err != nil {
		return types.WorkRecord{}, fmt.Errorf("CrossRef lookup for %s: %w", doi, err)
	}

	var cr workResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		return types.WorkRecord{}, fmt.Errorf("parsing CrossRef response for %s: %w", doi, err)
	}
	return buildRecord(cr.Message, types.SourceCrossRef), nil
}

// SearchByAuthor fetches up to rows candidate works for a free-text
// author name, sorted by publication date descending. Results carry the
// author-search source tag.
func (c *Client) SearchByAuthor(ctx context.Context, author string, rows int) ([]types.WorkRecord, error) {
	params := url.Values{
		"query.author": {author},
		"rows":         {fmt.Sprintf("%d", rows)},
		"sort":         {"published"},
		"order":        {"desc"},
	}
	if c.Mailto != "" {
		params.Set("mailto", c.Mailto)
	}

	body, err := c.get(ctx, crossrefAPIBase+"?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("CrossRef author search for %q: %w", author, err)
	}

	var sr searchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, fmt.Errorf("parsing CrossRef search response for %q: %w", author, err)
	}

	var records []types.WorkRecord
	for _, work := range sr.Message.Items {
		records = append(records, buildRecord(work, types.SourceCrossRefSearch))
	}
	return records, nil
}

func (c *Client) get(ctx context.Context, reqURL string) ([]byte, error) {
	if err := c.Limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.UserAgent)

	resp, err := httputil.Do(ctx, c.Client, req, c.Retry)
	if err != nil {
		return nil, fmt.Errorf("CrossRef API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("CrossRef API returned HTTP %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

// buildRecord maps one CrossRef work document to the canonical record
// shape. Every field lookup has a fallback and absence never errors.
func buildRecord(work crossrefWork, source string) types.WorkRecord {
	rec := types.WorkRecord{
		DOI:       ids.NormalizeDOI(work.DOI),
		Citations: work.IsReferencedBy,
		Source:    source,
	}

	if len(work.Title) > 0 {
		rec.Title = work.Title[0]
	}
	rec.Authors = joinAuthors(work.Author)

	// Year precedence: print date, then online date, then generic issued.
	for _, d := range []crossrefDate{work.PublishedPrint, work.PublishedOnline, work.Issued} {
		if y := d.year(); y != 0 {
			rec.Year = y
			break
		}
	}

	if len(work.ContainerTitle) > 0 {
		rec.Venue = work.ContainerTitle[0]
	}

	rec.URL = work.URL
	if rec.URL == "" && rec.DOI != "" {
		rec.URL = "https://doi.org/" + rec.DOI
	}
	return rec
}

// joinAuthors joins "Given Family" author names, skipping entries where
// both parts are empty.
func joinAuthors(authors []crossrefAuthor) string {
	var names []string
	for _, a := range authors {
		name := strings.TrimSpace(a.Given + " " + a.Family)
		if name == "" {
			name = strings.TrimSpace(a.Name)
		}
		if name != "" {
			names = append(names, name)
		}
	}
	return strings.Join(names, ", ")
}

// CrossRef API JSON structures.
type workResponse struct {
	Message crossrefWork `json:"message"`
}

type searchResponse struct {
	Message struct {
		Items []crossrefWork `json:"items"`
	} `json:"message"`
}

type crossrefWork struct {
	DOI             string           `json:"DOI"`
	Title           []string         `json:"title"`
	Author          []crossrefAuthor `json:"author"`
	PublishedPrint  crossrefDate     `json:"published-print"`
	PublishedOnline crossrefDate     `json:"published-online"`
	Issued          crossrefDate     `json:"issued"`
	ContainerTitle  []string         `json:"container-title"`
	URL             string           `json:"URL"`
	IsReferencedBy  int              `json:"is-referenced-by-count"`
}

type crossrefAuthor struct {
	Given  string `json:"given"`
	Family string `json:"family"`
	// Name covers corporate authors, which carry a single name field.
	Name string `json:"name"`
}

type crossrefDate struct {
	DateParts [][]int `json:"date-parts"`
}

// year returns the first date-part year, or 0 when absent.
func (d crossrefDate) year() int {
	if len(d.DateParts) > 0 && len(d.DateParts[0]) > 0 {
		return d.DateParts[0][0]
	}
	return 0
}
