package ingest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"strings"
	"time"
)

// Loader reads tables from local paths or http(s) URLs.
type Loader struct {
	httpClient *http.Client
	maxRetries int
	baseDelay  time.Duration
}

// NewLoader creates a Loader. Remote fetches retry up to maxRetries times on
// HTTP 429 and 5xx with exponential backoff starting at baseDelay.
func NewLoader(maxRetries int, baseDelay time.Duration) *Loader {
	return &Loader{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
	}
}

func isRemote(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

func isWorkbook(location string) bool {
	if isRemote(location) {
		location, _, _ = strings.Cut(location, "?")
	}
	return strings.EqualFold(path.Ext(location), ".xlsx")
}

// Load reads location as a workbook when it ends in .xlsx, otherwise as CSV.
func (l *Loader) Load(ctx context.Context, location string) (*Table, error) {
	var data []byte
	var err error
	if isRemote(location) {
		data, err = l.fetch(ctx, location)
	} else {
		data, err = os.ReadFile(location)
	}
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", location, err)
	}

	if isWorkbook(location) {
		return ParseXLSX(location, bytes.NewReader(data))
	}
	return ParseCSV(location, bytes.NewReader(data))
}

func (l *Loader) fetch(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	for attempt := range l.maxRetries + 1 {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}

		resp, err := l.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("executing request: %w", err)
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("reading response: %w", err)
		}

		if resp.StatusCode == http.StatusOK {
			return body, nil
		}

		if resp.StatusCode != http.StatusTooManyRequests && resp.StatusCode < http.StatusInternalServerError {
			return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
		}

		lastErr = fmt.Errorf("HTTP %d from %s (attempt %d/%d)", resp.StatusCode, url, attempt+1, l.maxRetries+1)
		if attempt < l.maxRetries {
			delay := l.baseDelay * time.Duration(1<<uint(attempt))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return nil, lastErr
}
