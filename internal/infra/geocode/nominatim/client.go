package nominatim

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"placemap/config"
	"placemap/internal/domain/entity"
	"placemap/internal/domain/service"
	"placemap/internal/errors"
	"placemap/internal/infra/metrics"

	"github.com/puzpuzpuz/xsync/v3"
	"golang.org/x/sync/singleflight"
)

const (
	outcomeOK       = "ok"
	outcomeError    = "error"
	outcomeCacheHit = "cache_hit"
)

type cacheEntry struct {
	candidates []entity.Candidate
	expiresAt  time.Time
}

// Client resolves free-text queries against a Nominatim search endpoint.
// Identical concurrent lookups share one upstream request and successful
// answers are cached for the configured TTL.
type Client struct {
	baseURL   string
	userAgent string
	limit     int
	timeout   time.Duration
	cacheTTL  time.Duration

	httpClient *http.Client
	cache      *xsync.MapOf[string, cacheEntry]
	group      singleflight.Group
	metrics    *metrics.Metrics
	logger     *slog.Logger
	now        func() time.Time
}

// NewClient creates a geocoder from config. metrics may be nil.
func NewClient(cfg *config.GeocoderConfig, m *metrics.Metrics, logger *slog.Logger) *Client {
	if cfg == nil {
		cfg = config.DefaultGeocoderConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = config.DefaultGeocoderConfig().Timeout
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:  cfg.UserAgent,
		limit:      cfg.Limit,
		timeout:    timeout,
		cacheTTL:   cfg.CacheTTL,
		httpClient: &http.Client{},
		cache:      xsync.NewMapOf[string, cacheEntry](),
		metrics:    m,
		logger:     logger,
		now:        time.Now,
	}
}

// NewGeocoder adapts NewClient for dependency injection.
func NewGeocoder(cfg *config.Config, m *metrics.Metrics, logger *slog.Logger) service.Geocoder {
	return NewClient(cfg.Geocoder, m, logger)
}

type searchHit struct {
	PlaceID     json.Number `json:"place_id"`
	DisplayName string      `json:"display_name"`
	Lat         string      `json:"lat"`
	Lon         string      `json:"lon"`
}

// Search implements service.Geocoder.
func (c *Client) Search(ctx context.Context, query string) ([]entity.Candidate, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []entity.Candidate{}, nil
	}

	key := strings.ToLower(query)
	if entry, ok := c.cache.Load(key); ok {
		if c.now().Before(entry.expiresAt) {
			c.observe(outcomeCacheHit, 0)

			return cloneCandidates(entry.candidates), nil
		}
		c.cache.Delete(key)
	}

	// The shared lookup must not die with whichever caller started it.
	resultCh := c.group.DoChan(key, func() (any, error) {
		lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()

		started := c.now()
		candidates, err := c.fetch(lookupCtx, query)
		if err != nil {
			c.observe(outcomeError, c.now().Sub(started))

			return nil, err
		}
		c.observe(outcomeOK, c.now().Sub(started))

		if c.cacheTTL > 0 {
			c.cache.Store(key, cacheEntry{candidates: candidates, expiresAt: c.now().Add(c.cacheTTL)})
		}

		return candidates, nil
	})

	select {
	case <-ctx.Done():
		return nil, errors.WithStack(ctx.Err())
	case res := <-resultCh:
		if res.Err != nil {
			return nil, res.Err
		}

		return cloneCandidates(res.Val.([]entity.Candidate)), nil
	}
}

func (c *Client) fetch(ctx context.Context, query string) ([]entity.Candidate, error) {
	params := url.Values{}
	params.Set("format", "json")
	params.Set("q", query)
	if c.limit > 0 {
		params.Set("limit", strconv.Itoa(c.limit))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create search request")
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "geocoder request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Warn("Geocoder returned non-200 status",
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(body)),
		)

		return nil, errors.Errorf("geocoder returned status %d", resp.StatusCode)
	}

	var hits []searchHit
	if err := json.NewDecoder(resp.Body).Decode(&hits); err != nil {
		return nil, errors.Wrap(err, "failed to decode geocoder response")
	}

	candidates := make([]entity.Candidate, 0, len(hits))
	for _, hit := range hits {
		candidates = append(candidates, entity.Candidate{
			PlaceID:     hit.PlaceID.String(),
			DisplayName: hit.DisplayName,
			Lat:         hit.Lat,
			Lng:         hit.Lon,
		})
	}

	return candidates, nil
}

func (c *Client) observe(outcome string, elapsed time.Duration) {
	if c.metrics != nil {
		c.metrics.ObserveGeocode(outcome, elapsed)
	}
}

func cloneCandidates(in []entity.Candidate) []entity.Candidate {
	out := make([]entity.Candidate, len(in))
	copy(out, in)

	return out
}
