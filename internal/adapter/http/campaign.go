package httpadapter

import (
	"net/http"
	"time"

	"airdrop-ledger/internal/core/domain"
	"airdrop-ledger/internal/core/port"
)

type openCampaignRequest struct {
	Asset          string    `json:"asset"`
	VestingStart   time.Time `json:"vesting_start"`
	DurationDays   uint32    `json:"duration_days"`
	TotalAllocated uint64    `json:"total_allocated"`
}

type campaignResponse struct {
	ID               int64     `json:"id"`
	Asset            string    `json:"asset"`
	VestingStart     time.Time `json:"vesting_start"`
	VestingEnd       time.Time `json:"vesting_end"`
	TotalAllocated   uint64    `json:"total_allocated"`
	TotalDistributed uint64    `json:"total_distributed"`
	Finalized        bool      `json:"finalized"`
	State            string    `json:"state"`
}

func newCampaignResponse(c *domain.Campaign) campaignResponse {
	return campaignResponse{
		ID:               c.ID,
		Asset:            c.Asset.String(),
		VestingStart:     c.VestingStart,
		VestingEnd:       c.VestingEnd,
		TotalAllocated:   c.TotalAllocated,
		TotalDistributed: c.TotalDistributed,
		Finalized:        c.Finalized,
		State:            c.State(),
	}
}

// handleOpenCampaign opens a campaign and escrows its total from the
// owner. It answers 201 with the stored campaign.
func (h *Handler) handleOpenCampaign(w http.ResponseWriter, r *http.Request) {
	var req openCampaignRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	camp, err := h.svc.OpenCampaign(r.Context(), caller(r), port.OpenCampaignReq{
		Asset:          domain.NewAddress(req.Asset),
		VestingStart:   req.VestingStart,
		DurationDays:   req.DurationDays,
		TotalAllocated: req.TotalAllocated,
	})
	if err != nil {
		h.writeError(w, r, "open_campaign", err)
		return
	}
	h.writeJSON(w, http.StatusCreated, newCampaignResponse(camp))
}

func (h *Handler) handleGetCampaign(w http.ResponseWriter, r *http.Request) {
	id, ok := campaignID(r)
	if !ok {
		http.Error(w, "invalid campaign id", http.StatusBadRequest)
		return
	}
	camp, err := h.svc.Campaign(r.Context(), id)
	if err != nil {
		h.writeError(w, r, "get_campaign", err)
		return
	}
	h.writeJSON(w, http.StatusOK, newCampaignResponse(camp))
}

func (h *Handler) handleFinalizeCampaign(w http.ResponseWriter, r *http.Request) {
	id, ok := campaignID(r)
	if !ok {
		http.Error(w, "invalid campaign id", http.StatusBadRequest)
		return
	}
	if err := h.svc.FinalizeCampaign(r.Context(), caller(r), id); err != nil {
		h.writeError(w, r, "finalize_campaign", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleNextCampaignID(w http.ResponseWriter, r *http.Request) {
	id, err := h.svc.NextCampaignID(r.Context())
	if err != nil {
		h.writeError(w, r, "next_campaign_id", err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]int64{"next_id": id})
}
