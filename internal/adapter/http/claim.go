package httpadapter

import (
	"log/slog"
	"net/http"
)

type claimRequest struct {
	Amount uint64 `json:"amount"`
}

// claimResponse echoes the accepted claim. The remaining allocation is not
// included because any later claim may already have changed it; read it
// from the allocation view instead.
type claimResponse struct {
	CampaignID int64  `json:"campaign_id"`
	Claimed    uint64 `json:"claimed"`
}

// handleClaim withdraws part of the caller's allocation. A request above
// the remaining allocation answers 422 with the available amount so the
// caller can retry with a corrected value.
func (h *Handler) handleClaim(w http.ResponseWriter, r *http.Request) {
	id, ok := campaignID(r)
	if !ok {
		http.Error(w, "invalid campaign id", http.StatusBadRequest)
		return
	}
	var req claimRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	who := caller(r)
	if err := h.svc.Claim(r.Context(), who, id, req.Amount); err != nil {
		h.writeError(w, r, "claim", err)
		return
	}
	h.logger.Info("claimed",
		slog.Int64("campaign_id", id),
		slog.String("participant", who.String()),
		slog.Uint64("amount", req.Amount),
	)
	h.writeJSON(w, http.StatusOK, claimResponse{CampaignID: id, Claimed: req.Amount})
}
