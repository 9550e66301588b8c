package httpadapter

import (
	"net/http"

	"airdrop-ledger/internal/core/domain"
)

type transferOwnershipRequest struct {
	NewOwner string `json:"new_owner"`
}

type ownerResponse struct {
	Owner     string `json:"owner"`
	Renounced bool   `json:"renounced"`
}

func (h *Handler) handleGetOwner(w http.ResponseWriter, r *http.Request) {
	owner, err := h.svc.Owner(r.Context())
	if err != nil {
		h.writeError(w, r, "get_owner", err)
		return
	}
	h.writeJSON(w, http.StatusOK, ownerResponse{Owner: owner.String(), Renounced: owner.IsZero()})
}

func (h *Handler) handleTransferOwnership(w http.ResponseWriter, r *http.Request) {
	var req transferOwnershipRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if err := h.svc.TransferOwnership(r.Context(), caller(r), domain.NewAddress(req.NewOwner)); err != nil {
		h.writeError(w, r, "transfer_ownership", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleRenounceOwnership(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.RenounceOwnership(r.Context(), caller(r)); err != nil {
		h.writeError(w, r, "renounce_ownership", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
