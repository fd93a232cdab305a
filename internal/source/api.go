package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/saadjs/kcal-trends/internal/model"
)

const defaultAPITimeout = 12 * time.Second

// API fetches logs from the remote log service.
type API struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
	// Location reads zone-less timestamps. Nil means UTC.
	Location *time.Location
}

func (c *API) Name() string {
	return "api"
}

type apiLog struct {
	ID         json.RawMessage `json:"id"`
	Name       string          `json:"name"`
	ConsumedAt string          `json:"consumed_at"`
	Timestamp  string          `json:"timestamp"`
	Calories   any             `json:"calories"`
	Protein    any             `json:"protein_g"`
	Carbs      any             `json:"carbs_g"`
	Fat        any             `json:"fat_g"`
}

type apiLogsResponse struct {
	Logs []apiLog `json:"logs"`
}

func (c *API) FetchLogs(ctx context.Context, userID string) ([]model.LogEntry, error) {
	base := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("api base url is not configured")
	}
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultAPITimeout}
	}
	endpoint := fmt.Sprintf("%s/v1/users/%s/logs", base, url.PathEscape(userID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create logs request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "kcal-trends/1.0")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute logs request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read logs response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("logs request failed with status %d", resp.StatusCode)
	}

	raw, err := decodeLogsBody(body)
	if err != nil {
		return nil, err
	}
	items := make([]model.LogEntry, 0, len(raw))
	for _, l := range raw {
		stamp := l.ConsumedAt
		if stamp == "" {
			stamp = l.Timestamp
		}
		t, ok := parseTimestamp(stamp, c.Location)
		if !ok {
			continue
		}
		items = append(items, model.LogEntry{
			ID:         strings.Trim(string(l.ID), `"`),
			Name:       l.Name,
			ConsumedAt: t,
			Calories:   l.Calories,
			Protein:    l.Protein,
			Carbs:      l.Carbs,
			Fat:        l.Fat,
		})
	}
	return items, nil
}

// decodeLogsBody accepts either a bare array or {"logs": [...]}.
func decodeLogsBody(body []byte) ([]apiLog, error) {
	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, "[") {
		var out []apiLog
		if err := json.Unmarshal(body, &out); err != nil {
			return nil, fmt.Errorf("decode logs response: %w", err)
		}
		return out, nil
	}
	var wrapped apiLogsResponse
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, fmt.Errorf("decode logs response: %w", err)
	}
	return wrapped.Logs, nil
}
