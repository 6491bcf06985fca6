package catalog

import (
	"context"
	"errors"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/shelfmate/shelfmate/internal/api"
)

// Result is one catalog search candidate: the stable work key plus the
// display data that gets denormalized onto a shelved book.
type Result struct {
	Key         string   `json:"key"`
	Title       string   `json:"title"`
	AuthorNames []string `json:"author_name"`
}

type searchResponse struct {
	Docs []Result `json:"docs"`
}

// Client searches the external book catalog through the backend's
// search proxy. Requests are rate limited and retried on transient
// failures; only the first page of results is consumed.
type Client struct {
	api        *api.Client
	limiter    *rate.Limiter
	maxRetries int
}

// NewClient wraps the backend client with search-specific throttling.
func NewClient(backend *api.Client, perSecond, maxRetries int) *Client {
	if perSecond <= 0 {
		perSecond = 1
	}
	return &Client{
		api:        backend,
		limiter:    rate.NewLimiter(rate.Every(time.Second/time.Duration(perSecond)), 1),
		maxRetries: maxRetries,
	}
}

// Search runs a free-text catalog query. Candidates with no usable
// display data are dropped.
func (c *Client) Search(ctx context.Context, query string) ([]Result, error) {
	q := url.Values{}
	q.Set("q", query)

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt-1)) * time.Second
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		var res searchResponse
		err := c.api.GetJSON(ctx, "/search", q, &res)
		if err == nil {
			return usable(res.Docs), nil
		}
		if !retryable(err) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

// retryable reports whether the failure is transient. Validation
// failures, missing resources and expired sessions never are.
func retryable(err error) bool {
	if errors.Is(err, api.ErrSessionExpired) || errors.Is(err, api.ErrNotFound) {
		return false
	}
	if _, ok := api.AsFormError(err); ok {
		return false
	}
	return true
}

func usable(docs []Result) []Result {
	out := docs[:0]
	for _, d := range docs {
		if d.Key == "" && d.Title == "" && len(d.AuthorNames) == 0 {
			continue
		}
		out = append(out, d)
	}
	return out
}
