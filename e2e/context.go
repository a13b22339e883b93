package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"time"

	httptransport "trustgraph/internal/transport/http"
	trusthandler "trustgraph/internal/trust/handler"
	"trustgraph/internal/trust/service"
	"trustgraph/internal/trust/signing"
	"trustgraph/internal/trust/store"
)

// TestContext holds state between test steps
type TestContext struct {
	BaseURL          string
	HTTPClient       *http.Client
	LastResponse     *http.Response
	LastResponseBody []byte

	server *httptest.Server
}

// NewTestContext targets BASE_URL when set. Otherwise it starts a fresh
// in-process registry with the default anchors seeded.
func NewTestContext() (*TestContext, error) {
	tc := &TestContext{
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
	if base := os.Getenv("BASE_URL"); base != "" {
		tc.BaseURL = strings.TrimRight(base, "/")
		return tc, nil
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	signer, err := signing.New("e2e-signing-key")
	if err != nil {
		return nil, err
	}
	svc := service.New(store.NewInMemory(), service.WithSigner(signer), service.WithLogger(logger))
	if err := svc.SeedAnchors(context.Background()); err != nil {
		return nil, err
	}
	tc.server = httptest.NewServer(httptransport.NewRouter(trusthandler.New(svc, logger), nil, nil, logger, httptransport.Config{}))
	tc.BaseURL = tc.server.URL
	return tc, nil
}

// Close stops the in-process registry, if any.
func (tc *TestContext) Close() {
	if tc.server != nil {
		tc.server.Close()
	}
}

// POST makes a POST request and stores the response
func (tc *TestContext) POST(path string, body any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, tc.BaseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return tc.do(req)
}

// GET makes a GET request and stores the response
func (tc *TestContext) GET(path string) error {
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, tc.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return tc.do(req)
}

func (tc *TestContext) do(req *http.Request) error {
	resp, err := tc.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	tc.LastResponse = resp
	tc.LastResponseBody, err = io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	return nil
}

// GetResponseField extracts a field from the JSON response. Nested fields
// use dots, e.g. "trust_record.status".
func (tc *TestContext) GetResponseField(field string) (any, error) {
	var data any
	if err := json.Unmarshal(tc.LastResponseBody, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	for _, part := range strings.Split(field, ".") {
		obj, ok := data.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("field %q: %q is not an object", field, part)
		}
		if data, ok = obj[part]; !ok {
			return nil, fmt.Errorf("field %q not found in response", field)
		}
	}
	return data, nil
}
