package httpadapter

import (
	"net/http"
	"strconv"

	"airdrop-ledger/internal/core/domain"
)

type eventsResponse struct {
	Events []domain.Event `json:"events"`
	Next   int64          `json:"next"`
}

// handleEvents pages through the event journal. It accepts optional
// `after` (sequence number) and `limit` query parameters; Next is the
// value of `after` for the following page.
func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	var (
		q     = r.URL.Query()
		after int64
		limit int
		err   error
	)
	if s := q.Get("after"); s != "" {
		if after, err = strconv.ParseInt(s, 10, 64); err != nil || after < 0 {
			http.Error(w, "invalid 'after'", http.StatusBadRequest)
			return
		}
	}
	if s := q.Get("limit"); s != "" {
		if limit, err = strconv.Atoi(s); err != nil || limit < 0 {
			http.Error(w, "invalid 'limit'", http.StatusBadRequest)
			return
		}
	}

	events, err := h.svc.Events(r.Context(), after, limit)
	if err != nil {
		h.writeError(w, r, "events", err)
		return
	}
	next := after
	if n := len(events); n > 0 {
		next = events[n-1].Seq
	}
	h.writeJSON(w, http.StatusOK, eventsResponse{Events: events, Next: next})
}
