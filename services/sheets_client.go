package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tiketnow/config"
	"tiketnow/internal/status"
	"tiketnow/monitoring"
	"tiketnow/utils"
)

// SheetSource is the narrow interface to the spreadsheet: one endpoint that
// serves a sheet as CSV text and one deployed script endpoint that applies
// writes. Both are external black boxes.
type SheetSource interface {
	FetchCSV(ctx context.Context, sheetName string) (string, error)
	Submit(ctx context.Context, action string, params url.Values) error
}

// SheetsClient reads the spreadsheet through its CSV export URL and writes
// through the deployed script endpoint. Only event-sheet loads retry, a
// bounded number of times with a fixed delay; purchase loads fail fast and
// lean on the cache fallback instead. All reads are gated by a circuit
// breaker; writes are fire-and-forget, see Submit.
type SheetsClient struct {
	baseURL    string
	sheetID    string
	scriptURL  string
	retrySheet string
	retries    int
	retryDelay time.Duration

	hc      *http.Client
	breaker *utils.Breaker
}

func NewSheetsClient(cfg *config.Config) *SheetsClient {
	return &SheetsClient{
		baseURL:    cfg.SheetsBaseURL,
		sheetID:    cfg.SheetID,
		scriptURL:  cfg.ScriptURL,
		retrySheet: cfg.EventsSheet,
		retries:    cfg.LoadRetries,
		retryDelay: cfg.RetryDelay,
		hc: &http.Client{
			Timeout: cfg.FetchTimeout,
		},
		breaker: utils.NewBreaker(5, 30*time.Second),
	}
}

// FetchCSV returns the full CSV text of the named sheet. The decoder needs
// the complete document, so the body is read to the end before returning.
func (c *SheetsClient) FetchCSV(ctx context.Context, sheetName string) (string, error) {
	if c.sheetID == "" {
		return "", status.ErrNotConfigured
	}

	csvURL := fmt.Sprintf("%s/d/%s/gviz/tq?tqx=out:csv&sheet=%s",
		c.baseURL, c.sheetID, url.QueryEscape(sheetName))

	retries := 0
	if sheetName == c.retrySheet {
		retries = c.retries
	}

	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(c.retryDelay):
			}
		}

		var text string
		start := time.Now()
		err := c.breaker.Do(func() error {
			var ferr error
			text, ferr = c.fetchOnce(ctx, csvURL)
			return ferr
		})
		monitoring.TrackFetch(sheetName, fetchLabel(err), time.Since(start))
		if err == nil {
			return text, nil
		}
		lastErr = err
		if errors.Is(err, utils.ErrBreakerOpen) || ctx.Err() != nil {
			break
		}
		slog.Warn("sheets: fetch failed", "sheet", sheetName, "attempt", attempt+1, "error", err)
	}
	return "", lastErr
}

func (c *SheetsClient) fetchOnce(ctx context.Context, csvURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, csvURL, nil)
	if err != nil {
		return "", fmt.Errorf("sheets: new request: %w", err)
	}
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("sheets: fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("sheets: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("sheets: read body: %w", err)
	}
	return string(body), nil
}

// Submit posts a form-encoded write to the script endpoint. The response is
// deliberately not interpreted: the endpoint is opaque cross-origin in the
// original deployment, so success is assumed and only transport failures
// are reported. Callers must treat the write as eventually consistent.
func (c *SheetsClient) Submit(ctx context.Context, action string, params url.Values) error {
	label := action
	if label == "" {
		label = "submit"
	}

	if c.scriptURL == "" {
		monitoring.TrackWrite(label, "skipped")
		return status.ErrNotConfigured
	}

	if action != "" {
		params.Set("action", action)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.scriptURL,
		strings.NewReader(params.Encode()))
	if err != nil {
		return fmt.Errorf("sheets: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.hc.Do(req)
	if err != nil {
		monitoring.TrackWrite(label, "error")
		return fmt.Errorf("sheets: submit %s: %w", label, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	monitoring.TrackWrite(label, "sent")
	return nil
}

func fetchLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, utils.ErrBreakerOpen):
		return "rejected"
	default:
		return "error"
	}
}
