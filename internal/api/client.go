package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const DefaultBaseURL = "https://neuro.appstun.net/api/v1"

//go:generate mockgen -destination=mock_fetcher.go -package=api . Fetcher

// Fetcher is the set of calls the watcher polls.
type Fetcher interface {
	FetchStream(ctx context.Context) (*Stream, error)
	FetchLatestSchedule(ctx context.Context) (*Schedule, error)
	FetchCurrentSubathons(ctx context.Context) ([]Subathon, error)
	SetAuthToken(token string)
}

type HTTPClient struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	logger     *zap.Logger

	mu    sync.RWMutex
	token string
}

// NewClient creates an API client. A ratePerSec of zero disables client-side limiting.
func NewClient(baseURL, token string, ratePerSec int, timeout time.Duration, logger *zap.Logger) *HTTPClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	limit := rate.Inf
	burst := 1
	if ratePerSec > 0 {
		limit = rate.Limit(ratePerSec)
		burst = ratePerSec * 2
	}

	transport := &http.Transport{
		MaxIdleConns:    10,
		MaxConnsPerHost: 4,
		IdleConnTimeout: 90 * time.Second,
	}

	return &HTTPClient{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
		baseURL: strings.TrimSuffix(baseURL, "/"),
		limiter: rate.NewLimiter(limit, burst),
		logger:  logger,
		token:   token,
	}
}

// SetAuthToken sets the bearer token sent with subsequent requests.
// An empty token removes the Authorization header.
func (c *HTTPClient) SetAuthToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *HTTPClient) authToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *HTTPClient) FetchStream(ctx context.Context) (*Stream, error) {
	var out Stream
	if err := c.get(ctx, "/twitch/stream", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) FetchLatestSchedule(ctx context.Context) (*Schedule, error) {
	var out Schedule
	if err := c.get(ctx, "/schedule/latest", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) FetchCurrentSubathons(ctx context.Context) ([]Subathon, error) {
	var out []Subathon
	if err := c.get(ctx, "/subathon/current", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AllVods returns every archived stream known to the API.
func (c *HTTPClient) AllVods(ctx context.Context) ([]Vod, error) {
	var out []Vod
	if err := c.get(ctx, "/twitch/vods", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Vod returns the VOD of the given stream, or the latest one when streamID is empty.
func (c *HTTPClient) Vod(ctx context.Context, streamID string) (*Vod, error) {
	var query url.Values
	if streamID != "" {
		query = url.Values{"streamId": {streamID}}
	}

	var out Vod
	if err := c.get(ctx, "/twitch/vod", query, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) LatestVod(ctx context.Context) (*Vod, error) {
	return c.Vod(ctx, "")
}

// Schedule returns the schedule for a year and week. Zero values are left
// out of the query and the API falls back to its defaults.
func (c *HTTPClient) Schedule(ctx context.Context, year, week int) (*Schedule, error) {
	query := url.Values{}
	if year != 0 {
		query.Set("year", strconv.Itoa(year))
	}
	if week != 0 {
		query.Set("week", strconv.Itoa(week))
	}

	var out Schedule
	if err := c.get(ctx, "/schedule", query, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Subathon(ctx context.Context, year int) (*Subathon, error) {
	query := url.Values{"year": {strconv.Itoa(year)}}

	var out Subathon
	if err := c.get(ctx, "/subathon", query, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) get(ctx context.Context, path string, query url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &FetchError{Code: CodeUnknown, Message: "rate limiter", Err: err}
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	c.logger.Debug("requesting", zap.String("url", endpoint))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return &FetchError{Code: CodeUnknown, Message: "creating request", Err: err}
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	if token := c.authToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &FetchError{Code: CodeNetwork, Message: "executing request", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &FetchError{Code: CodeNetwork, Message: "reading response", Status: resp.StatusCode, Err: err}
	}

	c.logger.Debug("response",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return classifyStatus(resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &FetchError{Code: CodeDecode, Message: fmt.Sprintf("decoding %s", path), Status: resp.StatusCode, Err: err}
	}
	return nil
}

// AsFetchError returns err as a *FetchError, wrapping anything else as unknown.
func AsFetchError(err error) *FetchError {
	if err == nil {
		return nil
	}
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe
	}
	return &FetchError{Code: CodeUnknown, Message: err.Error(), Err: err}
}

// Compile-time interface verification
var _ Fetcher = (*HTTPClient)(nil)
