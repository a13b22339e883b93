package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httptransport "trustgraph/internal/transport/http"
	trusthandler "trustgraph/internal/trust/handler"
	"trustgraph/internal/trust/service"
	"trustgraph/internal/trust/store"
)

func newRegistry(t *testing.T) string {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.New(store.NewInMemory(), service.WithLogger(logger))
	require.NoError(t, svc.SeedAnchors(context.Background()))
	srv := httptest.NewServer(httptransport.NewRouter(trusthandler.New(svc, logger), nil, nil, logger, httptransport.Config{}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func execute(t *testing.T, server string, args ...string) (map[string]any, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs(append([]string{"--server", server}, args...))
	cmd.SetErr(io.Discard)
	if err := cmd.Execute(); err != nil {
		return nil, err
	}
	var body map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &body))
	return body, nil
}

func TestCLIScenario(t *testing.T) {
	server := newRegistry(t)
	root := service.DefaultAnchors[0].DID.String()

	body, err := execute(t, server, "register", "did:ex:alice", "--issuer", root)
	require.NoError(t, err)
	assert.Equal(t, "active", body["status"])

	body, err = execute(t, server, "endorse", root, "did:ex:alice", "--level", "90", "--evidence", "kyc")
	require.NoError(t, err)
	assert.Equal(t, float64(90), body["new_trust_score"])

	body, err = execute(t, server, "verify", "did:ex:alice", root, "--min-score", "60")
	require.NoError(t, err)
	assert.Equal(t, true, body["verified"])

	body, err = execute(t, server, "chain", "did:ex:alice", "--max-depth", "2")
	require.NoError(t, err)
	assert.Len(t, body["chain"], 1)

	body, err = execute(t, server, "get", "did:ex:alice")
	require.NoError(t, err)
	assert.Contains(t, body, "endorsement_summary")

	body, err = execute(t, server, "search", "--min-score", "90", "--limit", "2")
	require.NoError(t, err)
	assert.Equal(t, float64(4), body["total"])
	assert.Len(t, body["results"], 2)

	body, err = execute(t, server, "revoke", "did:ex:alice", root, "--reason", "test")
	require.NoError(t, err)
	assert.Equal(t, "revoked", body["status"])
}

func TestCLIReportsAPIErrors(t *testing.T) {
	server := newRegistry(t)

	_, err := execute(t, server, "get", "did:ex:nobody")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404 not_found")
}

func TestCLIArgumentValidation(t *testing.T) {
	_, err := execute(t, "http://127.0.0.1:0", "endorse", "did:ex:a", "did:ex:b")
	assert.ErrorContains(t, err, "level")

	_, err = execute(t, "http://127.0.0.1:0", "verify", "did:ex:a")
	assert.Error(t, err)
}
