package graphql

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sethvargo/go-retry"
	"golang.org/x/oauth2"

	"github.com/lumen-labs/engagekit/internal/core/domain"
	"github.com/lumen-labs/engagekit/internal/core/ports/driven"
	"github.com/lumen-labs/engagekit/internal/logger"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// MaxRetries is the maximum number of retries for transient errors.
	MaxRetries = 3

	// RetryDelay is the initial delay between retries.
	RetryDelay = time.Second
)

// Ensure Client implements the transport port.
var _ driven.GraphQLClient = (*Client)(nil)

// Client executes GraphQL documents over HTTP. Reads go out as GET
// requests with the document in URL parameters; writes go out as POST
// requests with a gzip-compressed JSON body. Every request carries the
// account token as a bearer header and accepts gzip responses.
type Client struct {
	endpoint    string
	http        *http.Client
	rateLimiter *RateLimiter
}

// envelope is the standard GraphQL response wrapper.
type envelope struct {
	Data json.RawMessage `json:"data"`
}

// requestBody is the POST body shape, mirroring the GET parameters.
type requestBody struct {
	Query     string          `json:"query"`
	Variables json.RawMessage `json:"variables,omitempty"`
	Fragments []string        `json:"fragments,omitempty"`
}

// NewClient creates a client authenticated with a static account token.
func NewClient(endpoint, accountToken string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: accountToken},
	)
	tc := oauth2.NewClient(context.Background(), ts)
	tc.Timeout = timeout

	return &Client{
		endpoint:    endpoint,
		http:        tc,
		rateLimiter: NewRateLimiter(),
	}
}

// Query executes a read via GET.
func (c *Client) Query(ctx context.Context, req domain.SyncRequest) (json.RawMessage, error) {
	variables, fragments, err := encodeRequest(req)
	if err != nil {
		return nil, err
	}

	target, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	params := target.Query()
	params.Set("query", req.Query)
	params.Set("variables", string(variables))
	params.Set("fragments", string(fragments))
	target.RawQuery = params.Encode()

	return c.do(ctx, http.MethodGet, target.String(), nil)
}

// Mutate executes a write via POST with a gzip-compressed JSON body.
func (c *Client) Mutate(ctx context.Context, req domain.SyncRequest) (json.RawMessage, error) {
	variables, _, err := encodeRequest(req)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(requestBody{
		Query:     req.Query,
		Variables: variables,
		Fragments: req.Fragments,
	})
	if err != nil {
		return nil, &DecodeError{Type: "request body", Err: err}
	}

	var compressed bytes.Buffer
	zw := gzip.NewWriter(&compressed)
	if _, err := zw.Write(payload); err != nil {
		return nil, fmt.Errorf("compress body: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("compress body: %w", err)
	}

	return c.do(ctx, http.MethodPost, c.endpoint, compressed.Bytes())
}

// do issues the request with retry on network-level failures. Non-200
// statuses and decode failures are deterministic and returned as-is.
func (c *Client) do(ctx context.Context, method, target string, body []byte) (json.RawMessage, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	var data json.RawMessage
	backoff := retry.WithMaxRetries(MaxRetries, retry.NewFibonacci(RetryDelay))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		var err error
		data, err = c.roundTrip(ctx, method, target, body)
		if IsRetryable(err) {
			logger.Debug("retrying after network error: %v", err)
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// roundTrip performs a single attempt. The request is rebuilt each call
// so retries never reuse a consumed body.
func (c *Client) roundTrip(ctx context.Context, method, target string, body []byte) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept-Encoding", "gzip")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Content-Encoding", "gzip")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: resp.StatusCode, URL: target}
	}

	reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		zr, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, &DecodeError{Type: "gzip body", Err: err}
		}
		defer zr.Close()
		reader = zr
	}

	raw, err := io.ReadAll(reader)
	if err != nil {
		return nil, &DecodeError{Type: "response body", Err: err}
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, &DecodeError{Type: "response envelope", Err: err}
	}
	if env.Data == nil {
		return nil, &DecodeError{Type: "response envelope", Err: fmt.Errorf("missing data field")}
	}
	return env.Data, nil
}

// encodeRequest serialises the variables map and fragment list.
func encodeRequest(req domain.SyncRequest) (variables, fragments json.RawMessage, err error) {
	vars := req.Variables
	if vars == nil {
		vars = map[string]any{}
	}
	variables, err = json.Marshal(vars)
	if err != nil {
		return nil, nil, &DecodeError{Type: "request variables", Err: err}
	}

	frags := req.Fragments
	if frags == nil {
		frags = []string{}
	}
	fragments, err = json.Marshal(frags)
	if err != nil {
		return nil, nil, &DecodeError{Type: "request fragments", Err: err}
	}
	return variables, fragments, nil
}
