// Package hh implements a paginated, rate-limited, retrying client for the
// hh.ru public vacancies API. It performs network I/O only; persistence is
// the caller's concern.
package hh

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/agore-ui/hh-parser-service/internal/logger"
)

const (
	defaultBaseURL       = "https://api.hh.ru"
	defaultUserAgent     = "hh-parser-service/1.0"
	defaultTimeout       = 30 * time.Second
	defaultPerPage       = 100
	defaultMaxPages      = 20
	defaultSearchPeriod  = 30 // days
	defaultRequestDelay  = 350 * time.Millisecond
	defaultRetryAttempts = 3
	defaultRetryDelay    = 2 * time.Second
)

// Config holds the hh.ru client settings. Zero values fall back to the
// package defaults.
type Config struct {
	BaseURL       string
	UserAgent     string
	Timeout       time.Duration
	PerPage       int
	MaxPages      int
	SearchPeriod  int
	RequestDelay  time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
}

// Client is an hh.ru API client. One in-flight upstream request at a time:
// pagination is sequential and every successful request is followed by a
// fixed cooperative delay to respect the API's acceptable-use policy.
type Client struct {
	http *resty.Client
	cfg  Config

	// sleep is stubbed in tests to observe backoff behaviour
	sleep func(ctx context.Context, d time.Duration) error
}

// NewClient creates an hh.ru client.
// Parameters:
//   - cfg: client configuration; zero fields use package defaults.
// Returns:
//   - *Client: initialized client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.PerPage <= 0 {
		cfg.PerPage = defaultPerPage
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = defaultMaxPages
	}
	if cfg.SearchPeriod <= 0 {
		cfg.SearchPeriod = defaultSearchPeriod
	}
	if cfg.RequestDelay < 0 {
		cfg.RequestDelay = defaultRequestDelay
	}
	if cfg.RetryAttempts <= 0 {
		cfg.RetryAttempts = defaultRetryAttempts
	}
	if cfg.RetryDelay < 0 {
		cfg.RetryDelay = defaultRetryDelay
	}

	client := resty.New()
	client.SetBaseURL(cfg.BaseURL)
	client.SetTimeout(cfg.Timeout)
	client.SetHeader("User-Agent", cfg.UserAgent)
	client.SetHeader("Accept", "application/json")

	return &Client{
		http:  client,
		cfg:   cfg,
		sleep: ctxSleep,
	}
}

// SearchVacancies runs the paginated search for every keyword and returns the
// raw, possibly overlapping summaries. Deduplication happens at the sweep
// layer. A client error mid-keyword aborts that keyword's pagination loop
// only; remaining keywords are still searched.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - keywords: search keywords; each gets its own pagination loop.
//   - regions: optional hh.ru area IDs.
// Returns:
//   - []VacancySummary: all fetched summaries across keywords.
//   - error: non-nil only on context cancellation.
func (c *Client) SearchVacancies(ctx context.Context, keywords []string, regions []int) ([]VacancySummary, error) {
	var all []VacancySummary

	for _, keyword := range keywords {
		log := logger.FromContext(ctx).WithFields(logger.Fields{
			logger.FieldComponent: "hh",
			logger.FieldKeyword:   keyword,
		})
		log.Info("Searching vacancies")

		params := map[string]string{
			"text":     keyword,
			"per_page": strconv.Itoa(c.cfg.PerPage),
			"period":   strconv.Itoa(c.cfg.SearchPeriod),
		}
		if len(regions) > 0 {
			areas := make([]string, len(regions))
			for i, r := range regions {
				areas[i] = strconv.Itoa(r)
			}
			params["area"] = strings.Join(areas, ",")
		}

		for page := 0; page < c.cfg.MaxPages; page++ {
			if ctx.Err() != nil {
				return all, ctx.Err()
			}

			params["page"] = strconv.Itoa(page)
			var resp SearchResponse
			if err := c.getJSON(ctx, "/vacancies", params, &resp); err != nil {
				if ctx.Err() != nil {
					return all, ctx.Err()
				}
				log.WithField(logger.FieldPage, page).WithError(err).Error("Search page failed, aborting keyword")
				break
			}

			if len(resp.Items) == 0 {
				break
			}
			all = append(all, resp.Items...)

			if page >= resp.Pages-1 {
				break
			}
			if err := c.sleep(ctx, c.cfg.RequestDelay); err != nil {
				return all, err
			}
		}
	}

	return all, nil
}

// GetVacancyDetail fetches the full vacancy record by its hh.ru ID.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: hh.ru vacancy ID.
// Returns:
//   - *VacancyDetail: full vacancy record.
//   - error: ErrNotFound for vanished vacancies, ErrRateLimited / *TransportError /
//     *UpstreamError per the retry policy.
func (c *Client) GetVacancyDetail(ctx context.Context, id string) (*VacancyDetail, error) {
	var detail VacancyDetail
	if err := c.getJSON(ctx, "/vacancies/"+id, nil, &detail); err != nil {
		return nil, err
	}
	if err := c.sleep(ctx, c.cfg.RequestDelay); err != nil {
		return nil, err
	}
	return &detail, nil
}

// getJSON performs a GET with the retry policy and decodes the 200 body into out.
//
// 429 retries back off with a delay scaled by the attempt number; transport
// errors retry with the fixed delay. Either kind surfaces a distinguished
// error once RetryAttempts requests have been made. Any other non-200 status
// is a hard failure with no retry.
func (c *Client) getJSON(ctx context.Context, path string, params map[string]string, out interface{}) error {
	for attempt := 1; ; attempt++ {
		req := c.http.R().SetContext(ctx)
		if params != nil {
			req.SetQueryParams(params)
		}

		resp, err := req.Get(path)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if attempt >= c.cfg.RetryAttempts {
				return &TransportError{Attempts: attempt, Err: err}
			}
			if serr := c.sleep(ctx, c.cfg.RetryDelay); serr != nil {
				return serr
			}
			continue
		}

		switch resp.StatusCode() {
		case http.StatusOK:
			if err := json.Unmarshal(resp.Body(), out); err != nil {
				return fmt.Errorf("hh: failed to decode response: %w", err)
			}
			return nil
		case http.StatusTooManyRequests:
			if attempt >= c.cfg.RetryAttempts {
				return ErrRateLimited
			}
			if serr := c.sleep(ctx, c.cfg.RetryDelay*time.Duration(attempt)); serr != nil {
				return serr
			}
		case http.StatusNotFound:
			return ErrNotFound
		default:
			return &UpstreamError{StatusCode: resp.StatusCode(), Body: truncate(string(resp.Body()), 512)}
		}
	}
}

// ctxSleep waits for d or until the context is cancelled.
func ctxSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
