package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/shelfmate/shelfmate/internal/session"
)

// Client is the library backend client. All requests carry the bearer
// token from the session store when one is live; the store itself is
// injected at construction, never reached for globally.
type Client struct {
	baseURL string
	session *session.Store
	http    *http.Client
	log     *log.Logger
}

// New creates a Client for the given API base URL.
func New(baseURL string, sess *session.Store, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		session: sess,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: logger,
	}
}

// do executes the request with standard headers.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	if tok := c.session.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	req.Header.Set("Accept", "application/json")
	if req.Header.Get("Content-Type") == "" && req.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.http.Do(req)
}

// doJSON sends a request and decodes the JSON response into out.
func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		bodyReader = bytes.NewReader(b)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, bodyReader)
	if err != nil {
		return err
	}

	c.log.Debug("backend request", "method", method, "path", path, "query", query.Encode())
	resp, err := c.do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkStatus(resp); err != nil {
		c.log.Debug("backend error", "method", method, "path", path, "status", resp.StatusCode)
		return err
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// GetJSON performs an authorized GET against the backend. Exposed for
// clients layered on top, like the catalog search client.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, out interface{}) error {
	return c.doJSON(ctx, http.MethodGet, path, query, nil, out)
}

// checkStatus returns a typed error for non-2xx responses.
func checkStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrSessionExpired
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusBadRequest:
		return decodeFormError(resp.Body)
	default:
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("backend error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
}

// decodeFormError reads the standard validation-error shape
// {message, errors: [{path, msg}]}. A body that does not parse still
// yields a FormError so 400s stay retryable at the form level.
func decodeFormError(r io.Reader) error {
	var fe FormError
	if err := json.NewDecoder(r).Decode(&fe); err != nil || (fe.Message == "" && len(fe.Fields) == 0) {
		return &FormError{Message: "request rejected by the server"}
	}
	return &fe
}
