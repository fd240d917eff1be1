package indodax

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"github.com/iho/loanticker/internal/domain"
)

// DefaultRESTBaseURL is the public ticker endpoint.
const DefaultRESTBaseURL = "https://indodax.com/api/ticker"

// RESTClient fetches ticker snapshots over HTTP. It implements usecase.TickerClient.
type RESTClient struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	now        func() time.Time
}

// RESTOption configures a RESTClient.
type RESTOption func(*RESTClient)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) RESTOption {
	return func(r *RESTClient) { r.httpClient = c }
}

// WithRateLimit caps outgoing requests to rps with the given burst.
func WithRateLimit(rps float64, burst int) RESTOption {
	return func(r *RESTClient) {
		if rps > 0 {
			r.limiter = rate.NewLimiter(rate.Limit(rps), burst)
		}
	}
}

// NewRESTClient creates a client for baseURL.
func NewRESTClient(baseURL string, opts ...RESTOption) *RESTClient {
	if baseURL == "" {
		baseURL = DefaultRESTBaseURL
	}
	c := &RESTClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type tickerResponse struct {
	Ticker *struct {
		Last    decimal.NullDecimal `json:"last"`
		PrevDay decimal.NullDecimal `json:"prev_day"`
	} `json:"ticker"`
}

// FetchTicker requests GET {base}/{pair}?t={unix millis}. The timestamp
// defeats intermediate caches.
func (c *RESTClient) FetchTicker(ctx context.Context, pair domain.Pair) (domain.Ticker, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return domain.Ticker{}, err
		}
	}

	url := fmt.Sprintf("%s/%s?t=%s", c.baseURL, pair.Ticker, strconv.FormatInt(c.now().UnixMilli(), 10))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return domain.Ticker{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Ticker{}, fmt.Errorf("fetch %s: %w", pair.Ticker, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return domain.Ticker{}, fmt.Errorf("fetch %s: unexpected status %d", pair.Ticker, resp.StatusCode)
	}

	var body tickerResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return domain.Ticker{}, fmt.Errorf("fetch %s: %w: %v", pair.Ticker, domain.ErrMalformedQuote, err)
	}
	if body.Ticker == nil || !body.Ticker.Last.Valid || !body.Ticker.PrevDay.Valid {
		return domain.Ticker{}, fmt.Errorf("fetch %s: %w", pair.Ticker, domain.ErrMalformedQuote)
	}

	return domain.Ticker{
		Last:    body.Ticker.Last.Decimal,
		PrevDay: body.Ticker.PrevDay.Decimal,
	}, nil
}
