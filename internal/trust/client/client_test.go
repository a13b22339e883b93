package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captured struct {
	method, path, rawQuery, contentType string
	body                                map[string]any
}

func newServer(t *testing.T, status int, response string) (*Client, *captured) {
	t.Helper()
	got := &captured{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.method = r.Method
		got.path = r.URL.EscapedPath()
		got.rawQuery = r.URL.RawQuery
		got.contentType = r.Header.Get("Content-Type")
		if raw, _ := io.ReadAll(r.Body); len(raw) > 0 {
			require.NoError(t, json.Unmarshal(raw, &got.body))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)
	return New(srv.URL + "/"), got
}

func TestEndorseSendsJSONBody(t *testing.T) {
	c, got := newServer(t, http.StatusOK, `{"endorsement_id":"end_1","new_trust_score":90}`)

	raw, err := c.Endorse(context.Background(), EndorseRequest{Endorser: "did:ex:root", Subject: "did:ex:alice", TrustLevel: 90})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, got.method)
	assert.Equal(t, "/entities/endorse", got.path)
	assert.Equal(t, "application/json", got.contentType)
	assert.Equal(t, map[string]any{"endorser": "did:ex:root", "subject": "did:ex:alice", "trust_level": float64(90)}, got.body)
	assert.JSONEq(t, `{"endorsement_id":"end_1","new_trust_score":90}`, string(raw))
}

func TestSearchBuildsQuery(t *testing.T) {
	c, got := newServer(t, http.StatusOK, `{"total":0,"results":[]}`)
	lo := 80.5

	_, err := c.Search(context.Background(), SearchParams{Query: "alice", MinScore: &lo, Status: "active", Limit: 5})
	require.NoError(t, err)

	assert.Equal(t, "/entities/search", got.path)
	assert.Equal(t, "limit=5&min_score=80.5&query=alice&status=active", got.rawQuery)
}

func TestSearchWithoutParams(t *testing.T) {
	c, got := newServer(t, http.StatusOK, `{"total":0,"results":[]}`)

	_, err := c.Search(context.Background(), SearchParams{})
	require.NoError(t, err)
	assert.Empty(t, got.rawQuery)
}

func TestGetChainEscapesDID(t *testing.T) {
	c, got := newServer(t, http.StatusOK, `{}`)

	_, err := c.GetChain(context.Background(), "did:web:example.org/users/a", 3)
	require.NoError(t, err)
	assert.Equal(t, "/entities/did:web:example.org%2Fusers%2Fa/chain", got.path)
	assert.Equal(t, "max_depth=3", got.rawQuery)
}

func TestAPIErrors(t *testing.T) {
	t.Run("structured error", func(t *testing.T) {
		c, _ := newServer(t, http.StatusForbidden, `{"error":"forbidden","error_description":"insufficient authority"}`)

		_, err := c.Revoke(context.Background(), RevokeRequest{Subject: "did:ex:a", Revoker: "did:ex:b"})
		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusForbidden, apiErr.Status)
		assert.Equal(t, "forbidden", apiErr.Code)
		assert.Equal(t, "403 forbidden: insufficient authority", apiErr.Error())
	})

	t.Run("unstructured error", func(t *testing.T) {
		c, _ := newServer(t, http.StatusBadGateway, `upstream down`)

		_, err := c.GetEntity(context.Background(), "did:ex:a")
		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, "Bad Gateway", apiErr.Code)
	})
}
