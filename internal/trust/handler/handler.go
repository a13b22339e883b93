package handler

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"trustgraph/internal/trust/models"
	dErrors "trustgraph/pkg/domain-errors"
	"trustgraph/pkg/platform/httputil"
	"trustgraph/pkg/platform/validation"
	"trustgraph/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

// Service is the trust registry surface the HTTP layer depends on.
type Service interface {
	Register(ctx context.Context, issuer, subject models.DID, initialScore int) (*models.TrustRecord, error)
	Endorse(ctx context.Context, endorser, subject models.DID, level float64, evidence string) (*models.EndorseResult, error)
	Revoke(ctx context.Context, subject, revoker models.DID, reason string) (*models.RevokeResult, error)
	Verify(ctx context.Context, subject, verifier models.DID, minimumScore float64) (*models.VerifyResult, error)
	Search(ctx context.Context, filter models.SearchFilter) (*models.SearchResult, error)
	GetEntity(ctx context.Context, did models.DID) (*models.EntityView, error)
	GetTrustChain(ctx context.Context, did models.DID, maxDepth int) (*models.TrustChain, error)
	GetEndorsement(ctx context.Context, id string) (*models.Endorsement, error)
}

// Handler serves the /entities API.
type Handler struct {
	trust  Service
	logger *slog.Logger
}

// New creates a trust Handler.
func New(trust Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{trust: trust, logger: logger}
}

// Register mounts the trust routes. Static segments are registered before
// the {did} routes so "search" is never read as a DID.
func (h *Handler) Register(r chi.Router) {
	r.Post("/entities/register", h.HandleRegister)
	r.Post("/entities/endorse", h.HandleEndorse)
	r.Post("/entities/verify", h.HandleVerify)
	r.Post("/entities/revoke", h.HandleRevoke)
	r.Get("/entities/search", h.HandleSearch)
	r.Get("/entities/endorsements/{id}", h.HandleGetEndorsement)
	r.Get("/entities/{did}/chain", h.HandleGetChain)
	r.Get("/entities/{did}", h.HandleGetEntity)
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[RegisterRequest](w, r, h.logger)
	if !ok {
		return
	}

	rec, err := h.trust.Register(ctx, models.DID(req.Issuer), models.DID(req.Subject), req.InitialTrustScore)
	if err != nil {
		h.fail(ctx, w, "failed to register entity", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toRegisterResponse(rec))
}

func (h *Handler) HandleEndorse(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[EndorseRequest](w, r, h.logger)
	if !ok {
		return
	}

	res, err := h.trust.Endorse(ctx, models.DID(req.Endorser), models.DID(req.Subject), *req.TrustLevel, req.Evidence)
	if err != nil {
		h.fail(ctx, w, "failed to endorse entity", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toEndorseResponse(res))
}

func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[VerifyRequest](w, r, h.logger)
	if !ok {
		return
	}

	res, err := h.trust.Verify(ctx, models.DID(req.Subject), models.DID(req.Verifier), *req.MinimumScore)
	if err != nil {
		h.fail(ctx, w, "failed to verify entity", err)
		return
	}
	if res.Path == nil {
		res.Path = []models.DID{}
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[RevokeRequest](w, r, h.logger)
	if !ok {
		return
	}

	res, err := h.trust.Revoke(ctx, models.DID(req.Subject), models.DID(req.Revoker), req.Reason)
	if err != nil {
		h.fail(ctx, w, "failed to revoke entity", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	filter, err := parseSearchFilter(r)
	if err != nil {
		h.fail(ctx, w, "invalid search query", err)
		return
	}

	res, err := h.trust.Search(ctx, filter)
	if err != nil {
		h.fail(ctx, w, "failed to search entities", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) HandleGetEntity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	did, err := pathDID(r)
	if err != nil {
		h.fail(ctx, w, "invalid entity path", err)
		return
	}

	view, err := h.trust.GetEntity(ctx, did)
	if err != nil {
		h.fail(ctx, w, "failed to get entity", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) HandleGetChain(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	did, err := pathDID(r)
	if err != nil {
		h.fail(ctx, w, "invalid entity path", err)
		return
	}
	maxDepth, err := httputil.QueryInt(r, "max_depth", models.DefaultMaxDepth)
	if err != nil {
		h.fail(ctx, w, "invalid max_depth", err)
		return
	}

	chain, err := h.trust.GetTrustChain(ctx, did, maxDepth)
	if err != nil {
		h.fail(ctx, w, "failed to get trust chain", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toChainResponse(chain))
}

func (h *Handler) HandleGetEndorsement(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	e, err := h.trust.GetEndorsement(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(ctx, w, "failed to get endorsement", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, e)
}

// fail logs client errors at warn and everything else at error before
// writing the mapped response.
func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	requestID := requestcontext.RequestID(ctx)
	if httputil.DomainCodeToHTTPStatus(dErrors.CodeOf(err)) >= http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, msg, "error", err, "request_id", requestID)
	} else {
		h.logger.WarnContext(ctx, msg, "error", err, "request_id", requestID)
	}
	httputil.WriteError(w, err)
}

// pathDID reads the {did} URL parameter. Clients may percent-encode the
// colons in a DID.
func pathDID(r *http.Request) (models.DID, error) {
	raw, err := url.PathUnescape(chi.URLParam(r, "did"))
	if err != nil || raw == "" {
		return "", dErrors.New(dErrors.CodeValidation, "invalid did in path")
	}
	return models.DID(raw), nil
}

func parseSearchFilter(r *http.Request) (models.SearchFilter, error) {
	q := r.URL.Query()
	filter := models.SearchFilter{Query: q.Get("query")}
	if err := validation.CheckStringLength("query", filter.Query, validation.MaxQueryLength); err != nil {
		return filter, err
	}

	if q.Has("min_score") {
		v, err := httputil.QueryFloat(r, "min_score", 0)
		if err != nil {
			return filter, err
		}
		filter.MinScore = &v
	}
	if q.Has("max_score") {
		v, err := httputil.QueryFloat(r, "max_score", 0)
		if err != nil {
			return filter, err
		}
		filter.MaxScore = &v
	}
	if raw := q.Get("status"); raw != "" {
		status, err := models.ParseStatus(raw)
		if err != nil {
			return filter, err
		}
		filter.Status = status
	}
	limit, err := httputil.QueryInt(r, "limit", 0)
	if err != nil {
		return filter, err
	}
	filter.Limit = limit
	return filter, nil
}
