package httpadapter

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"airdrop-ledger/internal/core/domain"
)

type allocationEntry struct {
	Participant string `json:"participant"`
	Amount      uint64 `json:"amount"`
	CampaignID  int64  `json:"campaign_id"`
}

type uploadRequest struct {
	Entries []allocationEntry `json:"entries"`
}

type allocationResponse struct {
	CampaignID  int64  `json:"campaign_id"`
	Participant string `json:"participant"`
	Remaining   uint64 `json:"remaining"`
}

// handleUploadAllocations overwrites allocations for a batch of entries.
// The batch is applied completely or not at all.
func (h *Handler) handleUploadAllocations(w http.ResponseWriter, r *http.Request) {
	var req uploadRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	entries := make([]domain.AllocationEntry, 0, len(req.Entries))
	for _, e := range req.Entries {
		entries = append(entries, domain.AllocationEntry{
			Participant: domain.NewAddress(e.Participant),
			Amount:      e.Amount,
			CampaignID:  e.CampaignID,
		})
	}
	if err := h.svc.UploadAllocations(r.Context(), caller(r), entries); err != nil {
		h.writeError(w, r, "upload_allocations", err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]int{"uploaded": len(entries)})
}

func (h *Handler) handleGetAllocation(w http.ResponseWriter, r *http.Request) {
	id, ok := campaignID(r)
	if !ok {
		http.Error(w, "invalid campaign id", http.StatusBadRequest)
		return
	}
	participant := domain.NewAddress(chi.URLParam(r, "participant"))
	remaining, err := h.svc.Allocation(r.Context(), id, participant)
	if err != nil {
		h.writeError(w, r, "get_allocation", err)
		return
	}
	h.writeJSON(w, http.StatusOK, allocationResponse{
		CampaignID:  id,
		Participant: participant.String(),
		Remaining:   remaining,
	})
}
