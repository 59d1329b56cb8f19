// Package sheets loads the daily metric export published as a CSV sheet.
package sheets

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/tecace/axpro-metrics/internal/aggregates"
	"github.com/tecace/axpro-metrics/internal/telemetry"
)

// DefaultTimeout bounds a single sheet fetch.
const DefaultTimeout = 10 * time.Second

// StatusError reports a non-2xx response from the sheet endpoint.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("sheet csv fetch failed: status %d", e.StatusCode)
}

// Loader fetches and parses the CSV export.
type Loader struct {
	url     string
	client  *http.Client
	timeout time.Duration
	logger  *zap.Logger
}

// NewLoader builds a Loader for url. A nil client uses http.DefaultClient and
// a non-positive timeout uses DefaultTimeout.
func NewLoader(url string, client *http.Client, timeout time.Duration, logger *zap.Logger) *Loader {
	if client == nil {
		client = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Loader{url: url, client: client, timeout: timeout, logger: logger.Named("sheets")}
}

// Load fetches the sheet once and returns its rows sorted by date, all real.
func (l *Loader) Load(ctx context.Context) ([]aggregates.DailyRow, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	start := time.Now()
	rows, err := l.fetch(ctx)
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	telemetry.ObserveSheetFetch(outcome, time.Since(start))
	if err != nil {
		return nil, err
	}

	l.logger.Debug("loaded sheet rows", zap.Int("rows", len(rows)), zap.Duration("elapsed", time.Since(start)))
	return rows, nil
}

func (l *Loader) fetch(ctx context.Context) ([]aggregates.DailyRow, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Cache-Control", "no-store")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}
	return Parse(resp.Body)
}
