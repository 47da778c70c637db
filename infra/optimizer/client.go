// Package optimizer talks to the remote schedule optimizer and provides a
// fixture-backed stand-in for local development.
package optimizer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/kilianp07/sessionplanner/core/logger"
	"github.com/kilianp07/sessionplanner/core/model"
)

var (
	// ErrTransport means the optimizer could not be reached.
	ErrTransport = errors.New("optimizer unreachable")
	// ErrUpstream means the optimizer answered with a non-2xx status.
	ErrUpstream = errors.New("optimizer rejected request")
	// ErrInvalidResponse means the optimizer answer could not be decoded.
	ErrInvalidResponse = errors.New("invalid optimizer response")
)

// IsTransport reports whether err is one of the optimizer call failures.
func IsTransport(err error) bool {
	return errors.Is(err, ErrTransport) || errors.Is(err, ErrUpstream) || errors.Is(err, ErrInvalidResponse)
}

const maxErrorBody = 64 << 10

// Config holds optimizer client settings.
type Config struct {
	BaseURL        string  `json:"base_url" koanf:"base_url"`
	TimeoutSeconds int     `json:"timeout_seconds" koanf:"timeout_seconds"`
	MaxRPS         float64 `json:"max_rps" koanf:"max_rps"`
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "http://localhost:8000"
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return fmt.Errorf("optimizer.base_url must be an http(s) URL, got %q", c.BaseURL)
	}
	if c.MaxRPS < 0 {
		return fmt.Errorf("optimizer.max_rps must not be negative")
	}
	return nil
}

// Client calls the optimizer HTTP API.
type Client struct {
	base    string
	http    *http.Client
	limiter *rate.Limiter
	log     logger.Logger
}

// New creates a Client. A zero MaxRPS disables throttling.
func New(cfg Config, log logger.Logger) *Client {
	cfg.SetDefaults()
	limit := rate.Inf
	if cfg.MaxRPS > 0 {
		limit = rate.Limit(cfg.MaxRPS)
	}
	if log == nil {
		log = logger.Nop{}
	}
	return &Client{
		base:    strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		limiter: rate.NewLimiter(limit, 1),
		log:     log,
	}
}

// BaseURL returns the optimizer root URL.
func (c *Client) BaseURL() string { return c.base }

// Optimize posts req to /optimize-schedule and returns the canonical
// schedule. An empty array is a valid, empty schedule.
func (c *Client) Optimize(ctx context.Context, req model.ClinicianRequest) ([]model.ScheduleEntry, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/optimize-schedule", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := upstreamMessage(resp.Body)
		c.log.Warnf("optimizer returned %d: %s", resp.StatusCode, msg)
		return nil, fmt.Errorf("%w: status %d: %s", ErrUpstream, resp.StatusCode, msg)
	}

	var entries []model.ScheduleEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	for i, e := range entries {
		if e.DriveTime < 0 {
			return nil, fmt.Errorf("%w: entry %d has negative drive_time %d", ErrInvalidResponse, i, e.DriveTime)
		}
	}
	if entries == nil {
		entries = []model.ScheduleEntry{}
	}
	c.log.Debugf("optimizer returned %d entries", len(entries))
	return entries, nil
}

// upstreamMessage extracts the error text. {"detail": "..."} bodies are
// unwrapped; anything else is returned as text.
func upstreamMessage(r io.Reader) string {
	raw, _ := io.ReadAll(io.LimitReader(r, maxErrorBody))
	var detail struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(raw, &detail) == nil && detail.Detail != "" {
		return detail.Detail
	}
	msg := strings.TrimSpace(string(raw))
	if msg == "" {
		return "no details"
	}
	return msg
}

// Cities fetches /city-list. Failures are logged and yield an empty list.
func (c *Client) Cities(ctx context.Context) []string {
	cities, err := c.fetchCities(ctx)
	if err != nil {
		c.log.Errorf("fetch city list: %v", err)
		return []string{}
	}
	return cities
}

func (c *Client) fetchCities(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/city-list", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}
	var out struct {
		Cities []string `json:"cities"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	if out.Cities == nil {
		out.Cities = []string{}
	}
	return out.Cities, nil
}

// DefaultCity is the first city of the list or "" when it is empty.
func DefaultCity(cities []string) string {
	if len(cities) == 0 {
		return ""
	}
	return cities[0]
}
