package httptransport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"

	"trustgraph/internal/platform/health"
	trusthandler "trustgraph/internal/trust/handler"
	"trustgraph/internal/trust/service"
	"trustgraph/internal/trust/signing"
	"trustgraph/internal/trust/store"
	"trustgraph/pkg/platform/middleware/request"
)

type RouterSuite struct {
	suite.Suite
	server  *httptest.Server
	metrics  *request.Metrics
	registry *prometheus.Registry
	root     string
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	signer, err := signing.New("router-test-key")
	s.Require().NoError(err)

	st := store.NewInMemory()
	svc := service.New(st, service.WithSigner(signer), service.WithLogger(logger))
	s.Require().NoError(svc.SeedAnchors(context.Background()))
	s.root = service.DefaultAnchors[0].DID.String()

	probes := health.New("test")
	probes.RegisterCheck("store", func(ctx context.Context) error {
		_, err := st.Count(ctx)
		return err
	})

	s.registry = prometheus.NewRegistry()
	s.metrics = request.NewMetrics(s.registry)
	router := NewRouter(trusthandler.New(svc, logger), probes, s.metrics, logger, Config{MaxBodyBytes: 1 << 10})
	s.server = httptest.NewServer(router)
	s.T().Cleanup(s.server.Close)
}

func (s *RouterSuite) post(path string, body any) (int, map[string]any) {
	raw, err := json.Marshal(body)
	s.Require().NoError(err)
	resp, err := http.Post(s.server.URL+path, "application/json", bytes.NewReader(raw))
	s.Require().NoError(err)
	return s.read(resp)
}

func (s *RouterSuite) get(path string) (int, map[string]any) {
	resp, err := http.Get(s.server.URL + path)
	s.Require().NoError(err)
	return s.read(resp)
}

func (s *RouterSuite) read(resp *http.Response) (int, map[string]any) {
	defer resp.Body.Close()
	var body map[string]any
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func (s *RouterSuite) TestEndToEndScenario() {
	alice, bob := "did:ex:alice", "did:ex:bob"

	code, body := s.post("/entities/register", map[string]any{"issuer": s.root, "subject": alice})
	s.Equal(http.StatusCreated, code)
	s.Equal(float64(0), body["trust_score"])

	code, _ = s.post("/entities/register", map[string]any{"issuer": s.root, "subject": bob})
	s.Equal(http.StatusCreated, code)

	code, body = s.post("/entities/endorse", map[string]any{"endorser": s.root, "subject": alice, "trust_level": 90})
	s.Equal(http.StatusOK, code)
	s.Equal(float64(90), body["new_trust_score"])

	code, body = s.post("/entities/endorse", map[string]any{"endorser": bob, "subject": alice, "trust_level": 50})
	s.Equal(http.StatusOK, code)
	s.Equal(float64(70), body["new_trust_score"])

	code, body = s.post("/entities/verify", map[string]any{"subject": alice, "verifier": s.root, "minimum_score": 60})
	s.Equal(http.StatusOK, code)
	s.Equal(true, body["verified"])
	s.Equal([]any{s.root, alice}, body["path"])

	code, body = s.post("/entities/revoke", map[string]any{"subject": alice, "revoker": bob})
	s.Equal(http.StatusForbidden, code)
	s.Equal("forbidden", body["error"])

	code, body = s.get("/entities/" + url.PathEscape(alice))
	s.Equal(http.StatusOK, code)
	record := body["trust_record"].(map[string]any)
	s.Equal("active", record["status"])
	analysis := body["chain_analysis"].(map[string]any)
	s.Equal(s.root, analysis["root"])
	s.Equal(true, analysis["root_trusted"])

	code, body = s.get("/entities/" + alice + "/chain")
	s.Equal(http.StatusOK, code)
	s.Len(body["chain"], 2)
	s.Equal(true, body["verification_result"].(map[string]any)["verified"])

	code, body = s.post("/entities/revoke", map[string]any{"subject": alice, "revoker": s.root, "reason": "audit"})
	s.Equal(http.StatusOK, code)
	s.Equal("revoked", body["status"])

	code, body = s.get("/entities/search?status=revoked")
	s.Equal(http.StatusOK, code)
	s.Equal(float64(1), body["total"])
}

func (s *RouterSuite) TestSearchIsNotRoutedAsDID() {
	code, body := s.get("/entities/search?min_score=100")
	s.Equal(http.StatusOK, code)
	s.Equal(float64(3), body["total"])
}

func (s *RouterSuite) TestSearchRejectsNonFiniteBounds() {
	for _, query := range []string{"min_score=NaN", "max_score=NaN", "max_score=Inf"} {
		code, body := s.get("/entities/search?" + query)
		s.Equal(http.StatusBadRequest, code, query)
		s.Equal("validation_error", body["error"], query)
	}
}

func (s *RouterSuite) TestUnknownEntity() {
	code, body := s.get("/entities/did:ex:nobody")
	s.Equal(http.StatusNotFound, code)
	s.Equal("not_found", body["error"])
}

func (s *RouterSuite) TestMiddleware() {
	s.Run("request id is echoed", func() {
		req, err := http.NewRequest(http.MethodGet, s.server.URL+"/health/live", nil)
		s.Require().NoError(err)
		req.Header.Set("X-Request-ID", "req-123")
		resp, err := http.DefaultClient.Do(req)
		s.Require().NoError(err)
		defer resp.Body.Close()
		s.Equal("req-123", resp.Header.Get("X-Request-ID"))
	})

	s.Run("non-JSON content type is rejected", func() {
		resp, err := http.Post(s.server.URL+"/entities/register", "text/plain", strings.NewReader("x"))
		s.Require().NoError(err)
		code, _ := s.read(resp)
		s.Equal(http.StatusUnsupportedMediaType, code)
	})

	s.Run("oversized body is rejected", func() {
		code, _ := s.post("/entities/register", map[string]any{"issuer": strings.Repeat("x", 2048), "subject": "did:ex:a"})
		s.Equal(http.StatusRequestEntityTooLarge, code)
	})

	s.Run("latency is labelled by route pattern", func() {
		s.get("/entities/did:ex:nobody")
		families, err := s.registry.Gather()
		s.Require().NoError(err)
		var routes []string
		for _, mf := range families {
			for _, m := range mf.GetMetric() {
				for _, l := range m.GetLabel() {
					if l.GetName() == "route" {
						routes = append(routes, l.GetValue())
					}
				}
			}
		}
		s.Contains(routes, "/entities/{did}")
		s.NotContains(routes, "/entities/did:ex:nobody")
	})

	s.Run("readiness runs store check", func() {
		code, body := s.get("/health/ready")
		s.Equal(http.StatusOK, code)
		s.Equal("up", body["checks"].(map[string]any)["store"])
	})
}
