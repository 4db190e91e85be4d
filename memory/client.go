// Package memory is a client for the memory store that imported bookmarks
// are written to.
package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the production memory API.
	DefaultBaseURL = "https://api.supermemory.ai"

	requestTimeout = 30 * time.Second
	maxBodySize    = 1 << 20 // 1 MB
	maxErrorBody   = 512
)

// ErrUnauthorized indicates the API key is missing, expired or invalid.
var ErrUnauthorized = errors.New("memory: unauthorized (api key expired or invalid)")

// APIError is a non-2xx response from the memory API.
type APIError struct {
	Op     string
	Status int
	Body   string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("memory: %s failed: status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("memory: %s failed: status %d: %s", e.Op, e.Status, e.Body)
}

// Metadata is the per-document metadata map.
type Metadata map[string]any

// Payload is one document to store.
type Payload struct {
	ContainerTags []string `json:"containerTags,omitempty"`
	Content       string   `json:"content"`
	Metadata      Metadata `json:"metadata"`
	CustomID      string   `json:"customId,omitempty"`
}

// Project is a named container that documents can be filed under.
type Project struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	ContainerTag  string `json:"containerTag"`
	CreatedAt     string `json:"createdAt,omitempty"`
	UpdatedAt     string `json:"updatedAt,omitempty"`
	DocumentCount int    `json:"documentCount,omitempty"`
}

type batchRequest struct {
	Documents []Payload `json:"documents"`
	Metadata  Metadata  `json:"metadata"`
}

type projectsResponse struct {
	Projects []Project `json:"projects"`
}

// Client writes documents to the memory API with a bearer key.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a different API host.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// NewClient creates a client for the given API key.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  strings.TrimSpace(apiKey),
		http:    &http.Client{},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// SaveBatch stores documents in one request. Every non-2xx status,
// 409 included, is returned as an *APIError.
func (c *Client) SaveBatch(ctx context.Context, docs []Payload) error {
	req := batchRequest{
		Documents: docs,
		Metadata: Metadata{
			"sm_source":            "consumer",
			"sm_internal_group_id": "twitter_bookmarks",
		},
	}
	_, err := c.do(ctx, http.MethodPost, "/v3/documents/batch", "save batch", req)
	return err
}

// SaveMemory stores one document. A 409 means the document already exists
// and is not an error.
func (c *Client) SaveMemory(ctx context.Context, doc Payload) error {
	_, err := c.do(ctx, http.MethodPost, "/v3/documents", "save memory", doc)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusConflict {
		slog.Debug("memory: document already exists", slog.String("custom_id", doc.CustomID))
		return nil
	}
	return err
}

// FetchProjects lists the projects available to the API key.
func (c *Client) FetchProjects(ctx context.Context) ([]Project, error) {
	body, err := c.do(ctx, http.MethodGet, "/v3/projects", "fetch projects", nil)
	if err != nil {
		return nil, err
	}
	var resp projectsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("memory: parsing projects: %w", err)
	}
	return resp.Projects, nil
}

func (c *Client) do(ctx context.Context, method, path, op string, in any) ([]byte, error) {
	if c.apiKey == "" {
		return nil, ErrUnauthorized
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("memory: encoding %s: %w", op, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("memory: creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("memory: %s: %w", op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("memory: reading response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := string(respBody)
		if len(msg) > maxErrorBody {
			msg = msg[:maxErrorBody] + "..."
		}
		return nil, &APIError{Op: op, Status: resp.StatusCode, Body: msg}
	}
	return respBody, nil
}
