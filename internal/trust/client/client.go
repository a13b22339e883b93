// Package client is an HTTP client for the trust registry API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultTimeout = 10 * time.Second

// APIError is a non-2xx response from the registry.
type APIError struct {
	Status      int
	Code        string `json:"error"`
	Description string `json:"error_description"`
}

func (e *APIError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Description)
	}
	return fmt.Sprintf("%d %s", e.Status, e.Code)
}

// Client calls a trust registry server. Responses are returned as raw JSON
// so callers can print them unchanged.
type Client struct {
	baseURL string
	http    *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the default client, which has a 10s timeout.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.http = c
		}
	}
}

// New returns a client for the server at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type RegisterRequest struct {
	Issuer            string `json:"issuer"`
	Subject           string `json:"subject"`
	InitialTrustScore int    `json:"initial_trust_score,omitempty"`
}

type EndorseRequest struct {
	Endorser   string  `json:"endorser"`
	Subject    string  `json:"subject"`
	TrustLevel float64 `json:"trust_level"`
	Evidence   string  `json:"evidence,omitempty"`
}

type VerifyRequest struct {
	Subject      string   `json:"subject"`
	Verifier     string   `json:"verifier"`
	MinimumScore *float64 `json:"minimum_score,omitempty"`
}

type RevokeRequest struct {
	Subject string `json:"subject"`
	Revoker string `json:"revoker"`
	Reason  string `json:"reason,omitempty"`
}

// SearchParams maps to the search query string. Nil and zero fields are
// omitted so the server applies its defaults.
type SearchParams struct {
	Query    string
	MinScore *float64
	MaxScore *float64
	Status   string
	Limit    int
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, "/entities/register", req)
}

func (c *Client) Endorse(ctx context.Context, req EndorseRequest) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, "/entities/endorse", req)
}

func (c *Client) Verify(ctx context.Context, req VerifyRequest) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, "/entities/verify", req)
}

func (c *Client) Revoke(ctx context.Context, req RevokeRequest) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, "/entities/revoke", req)
}

func (c *Client) Search(ctx context.Context, p SearchParams) (json.RawMessage, error) {
	q := url.Values{}
	if p.Query != "" {
		q.Set("query", p.Query)
	}
	if p.MinScore != nil {
		q.Set("min_score", strconv.FormatFloat(*p.MinScore, 'f', -1, 64))
	}
	if p.MaxScore != nil {
		q.Set("max_score", strconv.FormatFloat(*p.MaxScore, 'f', -1, 64))
	}
	if p.Status != "" {
		q.Set("status", p.Status)
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	path := "/entities/search"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	return c.do(ctx, http.MethodGet, path, nil)
}

// GetEntity fetches a DID's record, chain analysis and endorsement summary.
func (c *Client) GetEntity(ctx context.Context, did string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, "/entities/"+url.PathEscape(did), nil)
}

// GetChain fetches a DID's trust chain. maxDepth <= 0 uses the server default.
func (c *Client) GetChain(ctx context.Context, did string, maxDepth int) (json.RawMessage, error) {
	path := "/entities/" + url.PathEscape(did) + "/chain"
	if maxDepth > 0 {
		path += "?max_depth=" + strconv.Itoa(maxDepth)
	}
	return c.do(ctx, http.MethodGet, path, nil)
}

func (c *Client) GetEndorsement(ctx context.Context, id string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, "/entities/endorsements/"+url.PathEscape(id), nil)
}

func (c *Client) do(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		if jsonErr := json.Unmarshal(raw, apiErr); jsonErr != nil || apiErr.Code == "" {
			apiErr.Code = http.StatusText(resp.StatusCode)
		}
		return nil, apiErr
	}
	return json.RawMessage(raw), nil
}
