// Package xero implements the HTTP client for the Xero accounting API:
// wire types and paginated, modified-since-filtered resource fetches.
package xero

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/max-sakeco/xero-sync/internal/common"
	"github.com/max-sakeco/xero-sync/internal/config"
	"github.com/max-sakeco/xero-sync/internal/logging"
	"github.com/max-sakeco/xero-sync/internal/models"
)

// ifModifiedSinceLayout is the timestamp format Xero expects in the
// If-Modified-Since header (UTC, no zone designator).
const ifModifiedSinceLayout = "2006-01-02T15:04:05"

// resource describes one paginated collection: its API path, the field
// wrapping the record array in the response envelope, and any extra query
// parameters the collection needs.
type resource struct {
	path     string
	envelope string
	query    url.Values
}

var (
	contactsResource = resource{
		path:     "/Contacts",
		envelope: "Contacts",
		query:    url.Values{"includeArchived": {"true"}},
	}
	invoicesResource = resource{
		path:     "/Invoices",
		envelope: "Invoices",
		query:    url.Values{"includeArchived": {"true"}, "summaryOnly": {"false"}},
	}
)

// Client fetches paginated resources from the Xero API. Each fetch call
// restarts pagination from page 1 and aggregates all pages in provider order.
type Client struct {
	apiURL     string
	pageSize   int
	httpClient *http.Client
	logger     logging.Logger
}

// NewClient constructs a Client from configuration. The HTTP client carries
// an explicit per-request timeout so a stalled page request surfaces as a
// fetch error instead of hanging the run.
func NewClient(cfg *config.Config, logger logging.Logger) *Client {
	return &Client{
		apiURL:     cfg.XeroAPIURL,
		pageSize:   cfg.PageSize,
		httpClient: &http.Client{Timeout: cfg.HTTPClientTimeout},
		logger:     logger,
	}
}

// FetchContacts retrieves all contacts, optionally filtered to those
// modified at or after modifiedSince.
func (c *Client) FetchContacts(ctx context.Context, cred *models.Credential, modifiedSince *time.Time) ([]Contact, error) {
	return fetchAll[Contact](ctx, c, cred, contactsResource, modifiedSince)
}

// FetchInvoices retrieves all invoices, optionally filtered to those
// modified at or after modifiedSince.
func (c *Client) FetchInvoices(ctx context.Context, cred *models.Credential, modifiedSince *time.Time) ([]Invoice, error) {
	return fetchAll[Invoice](ctx, c, cred, invoicesResource, modifiedSince)
}

// fetchAll iterates pages of one resource until the provider signals the end
// of the collection: a 404 status, an empty page, or a short page. Any other
// non-2xx response aborts the whole call, so a partial result set is never
// mistaken for a complete one.
func fetchAll[T any](ctx context.Context, c *Client, cred *models.Credential, res resource, modifiedSince *time.Time) ([]T, error) {
	var all []T

	for page := 1; ; page++ {
		records, err := fetchPage[T](ctx, c, cred, res, page, modifiedSince)
		if err != nil {
			return nil, err
		}
		if records == nil {
			c.logger.Debug(ctx, "no more pages", "resource", res.envelope, "page", page)
			break
		}
		if len(records) == 0 {
			c.logger.Debug(ctx, "empty page, stopping", "resource", res.envelope, "page", page)
			break
		}

		all = append(all, records...)
		c.logger.Debug(ctx, "fetched page", "resource", res.envelope, "page", page, "records", len(records))

		if len(records) < c.pageSize {
			break
		}
	}

	c.logger.Info(ctx, "fetch complete", "resource", res.envelope, "total", len(all))
	return all, nil
}

// fetchPage requests a single page. A nil slice with nil error means the
// provider reported no such page (end of collection).
func fetchPage[T any](ctx context.Context, c *Client, cred *models.Credential, res resource, page int, modifiedSince *time.Time) ([]T, error) {
	q := url.Values{}
	for k, vs := range res.query {
		q[k] = vs
	}
	q.Set("page", strconv.Itoa(page))
	q.Set("pageSize", strconv.Itoa(c.pageSize))
	q.Set("order", "UpdatedDateUTC ASC")

	reqURL := c.apiURL + res.path + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: building request: %v", common.ErrFetch, err)
	}
	req.Header.Set("Authorization", "Bearer "+cred.AccessToken)
	req.Header.Set("Xero-tenant-id", cred.TenantID)
	req.Header.Set("Accept", "application/json")
	if modifiedSince != nil {
		req.Header.Set("If-Modified-Since", modifiedSince.UTC().Format(ifModifiedSinceLayout))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s page %d: %v", common.ErrFetch, res.envelope, page, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("%w: %s page %d: status %d: %s", common.ErrFetch, res.envelope, page, resp.StatusCode, string(body))
	}

	var envelope map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("%w: %s page %d: decoding response: %v", common.ErrFetch, res.envelope, page, err)
	}

	records := []T{}
	if raw, ok := envelope[res.envelope]; ok {
		if err := json.Unmarshal(raw, &records); err != nil {
			return nil, fmt.Errorf("%w: %s page %d: decoding records: %v", common.ErrFetch, res.envelope, page, err)
		}
	}
	return records, nil
}
