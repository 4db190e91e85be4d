package bookmarks

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	stealth "github.com/anatolykoptev/go-stealth"
)

// Doer sends one HTTP request with an explicit header order and returns the
// body, response headers and status. *stealth.BrowserClient implements it.
type Doer interface {
	DoWithHeaderOrder(method, url string, headers map[string]string, body io.Reader, order []string) ([]byte, map[string]string, int, error)
}

// Client issues bookmarks GraphQL requests with captured session headers.
type Client struct {
	doer Doer
}

// NewClient creates a client backed by a browser-fingerprinted transport.
func NewClient(cfg Config) (*Client, error) {
	opts := []stealth.ClientOption{
		stealth.WithHeaderOrder(bookmarkHeaderOrder),
	}
	if cfg.Proxy != "" {
		opts = append(opts, stealth.WithProxy(cfg.Proxy))
		slog.Info("using proxy", slog.String("proxy", stealth.MaskProxy(cfg.Proxy)))
	}
	bc, err := stealth.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("stealth client: %w", err)
	}
	return &Client{doer: bc}, nil
}

// NewClientWithDoer wraps an existing transport.
func NewClientWithDoer(d Doer) *Client {
	return &Client{doer: d}
}

// response is one raw API reply.
type response struct {
	body    []byte
	headers map[string]string
	status  int
}

// get performs a GET with the bookmarks header set.
func (c *Client) get(ctx context.Context, url string, tokens AuthTokens) (response, error) {
	if err := ctx.Err(); err != nil {
		return response{}, err
	}
	body, hdrs, status, err := c.doer.DoWithHeaderOrder("GET", url, bookmarkHeaders(tokens), nil, bookmarkHeaderOrder)
	if err != nil {
		return response{}, err
	}
	return response{body: body, headers: hdrs, status: status}, nil
}
