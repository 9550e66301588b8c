package httpadapter

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"airdrop-ledger/internal/core/port"
)

// CallerHeader carries the identity of the account issuing a request. The
// hosting environment is trusted to authenticate it.
const CallerHeader = "X-Caller"

// Handler contains dependencies and routes. It is an inbound adapter for HTTP.
// It holds the ledger use case, a logger for structured logging and the
// per-caller claim limiter. Routes are registered on a chi.Router.
type Handler struct {
	svc     port.LedgerUseCase
	logger  *slog.Logger
	router  chi.Router
	limiter *callerLimiter
}

// ClaimLimits bounds how often one caller may claim.
type ClaimLimits struct {
	RPS   float64
	Burst int
}

// NewHandler creates a handler with all routes configured.
func NewHandler(svc port.LedgerUseCase, logger *slog.Logger, limits ClaimLimits) *Handler {
	h := &Handler{
		svc:     svc,
		logger:  logger,
		limiter: newCallerLimiter(limits.RPS, limits.Burst),
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/owner", h.handleGetOwner)
		r.Get("/events", h.handleEvents)
		r.Get("/campaigns/next-id", h.handleNextCampaignID)
		r.Get("/campaigns/{id}", h.handleGetCampaign)
		r.Get("/campaigns/{id}/allocations/{participant}", h.handleGetAllocation)

		r.Group(func(r chi.Router) {
			r.Use(requireCaller)
			r.Post("/campaigns", h.handleOpenCampaign)
			r.Post("/campaigns/{id}/finalize", h.handleFinalizeCampaign)
			r.With(h.limitClaims).Post("/campaigns/{id}/claim", h.handleClaim)
			r.Post("/allocations", h.handleUploadAllocations)
			r.Post("/owner/transfer", h.handleTransferOwnership)
			r.Post("/owner/renounce", h.handleRenounceOwnership)
		})
	})
	h.router = r
	return h
}

// Router returns the underlying http.Handler.
func (h *Handler) Router() http.Handler {
	return h.router
}
