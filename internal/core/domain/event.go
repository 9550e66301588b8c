package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventKind names a ledger notification.
type EventKind string

const (
	EventOwnershipTransferred EventKind = "ownership_transferred"
	EventCampaignStarted      EventKind = "campaign_started"
	EventCampaignFinalized    EventKind = "campaign_finalized"
	EventAllocationChanged    EventKind = "allocation_changed"
	EventParticipantAdded     EventKind = "participant_added"
	EventTokensClaimed        EventKind = "tokens_claimed"
	// EventClaimReverted follows EventTokensClaimed when the payout failed
	// and the debit was credited back.
	EventClaimReverted        EventKind = "claim_reverted"
)

// Event is a notification emitted by a ledger operation. Events are
// journaled in the same transaction as the mutation that produced them, so
// a failed operation leaves no events behind. Fields not meaningful for a
// kind are left zero.
type Event struct {
	ID            uuid.UUID `json:"id"`
	Seq           int64     `json:"seq"`
	Kind          EventKind `json:"kind"`
	CampaignID    int64     `json:"campaign_id,omitempty"`
	Asset         Address   `json:"asset,omitempty"`
	Participant   Address   `json:"participant,omitempty"`
	Amount        uint64    `json:"amount,omitempty"`
	PreviousOwner Address   `json:"previous_owner,omitempty"`
	NewOwner      Address   `json:"new_owner,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewEvent returns an event of kind with a fresh identifier.
func NewEvent(kind EventKind, at time.Time) Event {
	return Event{ID: uuid.New(), Kind: kind, CreatedAt: at.UTC()}
}
