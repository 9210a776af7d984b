package vehiclefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/lorrc/fleet-dashboard-backend/internal/core/domain"
	"github.com/lorrc/fleet-dashboard-backend/internal/core/ports"
)

const (
	// DefaultTimeout bounds a single fetch when none is configured.
	DefaultTimeout = 4 * time.Second

	maxBodyBytes = 8 << 20
)

// Client fetches vehicle positions from a remote HTTP endpoint.
// It implements the ports.VehicleFeed interface.
type Client struct {
	url        string
	httpClient *http.Client
	logger     *slog.Logger
}

var _ ports.VehicleFeed = (*Client)(nil)

// NewClient creates a feed client for url.
func NewClient(url string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With("component", "vehicle_feed"),
	}
}

// Fetch performs one GET and returns the normalized vehicles.
// The body may be an array of vehicles, an object keyed by vehicle id,
// or either of those wrapped in {"data": ...}.
func (c *Client) Fetch(ctx context.Context) ([]domain.Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build feed request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch vehicle feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, fmt.Errorf("vehicle feed returned status %d", resp.StatusCode)
	}

	var body any
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode vehicle feed: %w", err)
	}

	vehicles := domain.Normalize(unwrap(body), domain.VehicleAliases)
	c.logger.Debug("vehicle feed fetched", "vehicles", len(vehicles))
	return vehicles, nil
}

// unwrap strips a {"data": ...} envelope. A "data" array always unwraps; a
// "data" object unwraps when it is the only key or sits beside scalar
// siblings such as {"code":200,"msg":"ok"}, so an id-keyed vehicle map that
// happens to hold a vehicle named "data" is left alone.
func unwrap(body any) any {
	obj, ok := body.(map[string]any)
	if !ok {
		return body
	}
	switch inner := obj["data"].(type) {
	case []any:
		return inner
	case map[string]any:
		if len(obj) == 1 || hasScalarSibling(obj) {
			return inner
		}
	}
	return body
}

func hasScalarSibling(obj map[string]any) bool {
	for key, v := range obj {
		if key == "data" {
			continue
		}
		if _, isObject := v.(map[string]any); !isObject {
			return true
		}
	}
	return false
}
