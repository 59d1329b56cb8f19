package activity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const dailyActivityPath = "/api/daily-message-activity"

// HTTPUpstream calls the evaluation API's daily activity endpoint.
type HTTPUpstream struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

// NewHTTPUpstream returns a client for baseURL allowing rps requests per
// second. A non-positive rps disables throttling.
func NewHTTPUpstream(baseURL string, client *http.Client, rps float64) *HTTPUpstream {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	limit := rate.Inf
	burst := 1
	if rps > 0 {
		limit = rate.Limit(rps)
		burst = int(rps * 2)
		if burst < 1 {
			burst = 1
		}
	}
	return &HTTPUpstream{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		limiter: rate.NewLimiter(limit, burst),
	}
}

// DailyMessages posts the period and decodes the upstream response.
func (u *HTTPUpstream) DailyMessages(ctx context.Context, token, startDate, endDate string) (*DailyMessageResponse, error) {
	if err := u.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	body, err := json.Marshal(upstreamRequest{StartDate: startDate, EndDate: endDate})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.baseURL+dailyActivityPath, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := u.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("daily message activity: upstream status %d", resp.StatusCode)
	}

	var out DailyMessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("daily message activity: decode response: %w", err)
	}
	return &out, nil
}
