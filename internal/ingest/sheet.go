package ingest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/almoxops/replen/internal/domain"
)

// SheetClient fetches CSV exports of published spreadsheets, the usual
// hand-off format when the warehouse keeps its ledger in a shared sheet.
type SheetClient struct {
	httpClient *http.Client
}

// NewSheetClient returns a client with a sane request timeout.
func NewSheetClient() *SheetClient {
	return &SheetClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// FetchLedger downloads a published-CSV ledger and parses it.
func (c *SheetClient) FetchLedger(ctx context.Context, url string, opts Options) (*LedgerResult, error) {
	resp, err := c.fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return ReadLedgerCSV(resp.Body, opts)
}

// FetchCatalog downloads a published-CSV catalog and parses it.
func (c *SheetClient) FetchCatalog(ctx context.Context, url string) ([]domain.Item, error) {
	resp, err := c.fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return ReadCatalogCSV(resp.Body)
}

func (c *SheetClient) fetch(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build sheet request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sheet %s: %w", url, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("sheet %s returned status %d", url, resp.StatusCode)
	}

	return resp, nil
}
