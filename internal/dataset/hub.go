package dataset

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/cuisine-engine/backend/internal/cleaning"
)

const (
	maxRetries     = 3
	initialBackoff = 1 * time.Second
	maxBackoff     = 16 * time.Second
)

// HubOptions configures a HubSource.
type HubOptions struct {
	BaseURL   string
	Dataset   string
	Config    string
	Split     string
	PageSize  int
	Limit     int // 0 fetches every row
	RateLimit rate.Limit
	Timeout   time.Duration
}

// HubSource pages through the Hugging Face datasets-server rows endpoint.
type HubSource struct {
	opts    HubOptions
	client  *http.Client
	limiter *rate.Limiter
	logger  *logrus.Entry
	backoff time.Duration
}

type rowsPage struct {
	Rows []struct {
		RowIdx int                `json:"row_idx"`
		Row    cleaning.RawRecord `json:"row"`
	} `json:"rows"`
	NumRowsTotal int `json:"num_rows_total"`
}

func NewHubSource(opts HubOptions, logger *logrus.Entry) *HubSource {
	if opts.PageSize <= 0 {
		opts.PageSize = 100
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = rate.Inf
	}
	if logger == nil {
		logger = logrus.WithField("component", "hub_source")
	}
	return &HubSource{
		opts: opts,
		client: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(opts.RateLimit, 1),
		logger:  logger,
		backoff: initialBackoff,
	}
}

// WithBackoff sets the first retry delay. Used by tests.
func (s *HubSource) WithBackoff(d time.Duration) *HubSource {
	s.backoff = d
	return s
}

func (s *HubSource) Name() string {
	return "hub"
}

// Load fetches pages until the dataset or the configured limit is exhausted.
func (s *HubSource) Load(ctx context.Context) ([]cleaning.RawRecord, error) {
	var rows []cleaning.RawRecord
	offset := 0

	for {
		length := s.opts.PageSize
		if s.opts.Limit > 0 {
			length = min(length, s.opts.Limit-offset)
		}

		var page rowsPage
		if err := s.fetchPage(ctx, offset, length, &page); err != nil {
			return nil, fmt.Errorf("failed to fetch rows at offset %d: %w", offset, err)
		}

		for _, r := range page.Rows {
			rows = append(rows, r.Row)
		}
		offset += len(page.Rows)

		s.logger.WithFields(logrus.Fields{
			"offset": offset,
			"total":  page.NumRowsTotal,
		}).Debug("Fetched dataset page")

		if len(page.Rows) == 0 || offset >= page.NumRowsTotal {
			break
		}
		if s.opts.Limit > 0 && offset >= s.opts.Limit {
			break
		}
	}

	return rows, nil
}

func (s *HubSource) pageURL(offset, length int) (string, error) {
	u, err := url.Parse(s.opts.BaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}
	q := u.Query()
	q.Set("dataset", s.opts.Dataset)
	q.Set("config", s.opts.Config)
	q.Set("split", s.opts.Split)
	q.Set("offset", strconv.Itoa(offset))
	q.Set("length", strconv.Itoa(length))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// fetchPage performs one page request with rate limiting and retries on
// network errors, 429 and 5xx responses.
func (s *HubSource) fetchPage(ctx context.Context, offset, length int, page *rowsPage) error {
	pageURL, err := s.pageURL(offset, length)
	if err != nil {
		return err
	}

	var lastErr error
	backoff := s.backoff

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			s.logger.WithError(lastErr).WithField("attempt", attempt).Warn("Retrying dataset page")
			if err := sleep(ctx, backoff); err != nil {
				return err
			}
			backoff = min(backoff*2, maxBackoff)
		}

		if err := s.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter error: %w", err)
		}

		retry, err := s.doRequest(ctx, pageURL, page)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retry {
			return err
		}
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

func (s *HubSource) doRequest(ctx context.Context, pageURL string, page *rowsPage) (retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "Cuisine-Recommender/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		return true, fmt.Errorf("network error: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		if err := json.NewDecoder(resp.Body).Decode(page); err != nil {
			return false, fmt.Errorf("failed to parse rows response: %w", err)
		}
		return false, nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		_, _ = io.Copy(io.Discard, resp.Body)
		return true, fmt.Errorf("received status code: %d", resp.StatusCode)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return false, fmt.Errorf("received status code %d: %s", resp.StatusCode, string(body))
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
