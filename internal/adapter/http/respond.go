package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"airdrop-ledger/internal/core/domain"
	"airdrop-ledger/internal/core/port"
)

type errorResponse struct {
	Error     string  `json:"error"`
	Class     string  `json:"class"`
	Available *uint64 `json:"available,omitempty"`
	Retryable bool    `json:"retryable,omitempty"`
}

// statusFor maps a ledger error to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, port.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrCampaignNotFound):
		return http.StatusNotFound
	}
	switch domain.Classify(err) {
	case domain.ClassConfiguration:
		return http.StatusBadRequest
	case domain.ClassStateConflict:
		return http.StatusConflict
	case domain.ClassQuota:
		return http.StatusUnprocessableEntity
	case domain.ClassAccess:
		return http.StatusForbidden
	case domain.ClassReentrancy:
		return http.StatusLocked
	case domain.ClassCollaborator:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError reports err to the client. Internal failures are logged and
// answered with a generic message.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := statusFor(err)
	resp := errorResponse{
		Error:     err.Error(),
		Class:     domain.Classify(err).String(),
		Retryable: errors.Is(err, port.ErrConflict),
	}
	var tooMany *domain.TooManyForWithdrawError
	if errors.As(err, &tooMany) {
		resp.Available = &tooMany.Available
	}

	attrs := []any{
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.Int("status", status),
		slog.Any("error", err),
	}
	switch {
	case status == http.StatusInternalServerError:
		h.logger.Error("ledger error", attrs...)
		resp.Error = "internal error"
	case status >= 500:
		h.logger.Warn("ledger error", attrs...)
	default:
		h.logger.Debug("ledger request rejected", attrs...)
	}
	h.writeJSON(w, status, resp)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// encoding should rarely fail; log and move on
		h.logger.Error("encode response error", slog.Any("error", err))
	}
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func caller(r *http.Request) domain.Address {
	return domain.NewAddress(r.Header.Get(CallerHeader))
}

func campaignID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

// requireCaller rejects mutating requests that do not name a caller.
func requireCaller(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if caller(r).IsZero() {
			http.Error(w, "missing "+CallerHeader+" header", http.StatusBadRequest)
			return
		}
		next.ServeHTTP(w, r)
	})
}
