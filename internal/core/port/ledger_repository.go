package port

import (
	"context"
	"errors"

	"airdrop-ledger/internal/core/domain"
)

// ErrConflict is returned when a transaction could not commit because
// another transaction changed the ledger underneath it. The operation had
// no effect and may be issued again.
var ErrConflict = errors.New("ledger transaction conflict")

// LedgerRepository persists ledger state. It is an outbound port in
// hexagonal architecture. All reads and writes go through InTx so that an
// operation is applied completely or not at all.
type LedgerRepository interface {
	// Bootstrap installs owner as the initial owner when the ledger has
	// never been initialised. It is a no-op on an initialised ledger,
	// including one whose owner has been renounced.
	Bootstrap(ctx context.Context, owner domain.Address) error
	// InTx runs fn in a transaction. If fn returns an error every write it
	// staged is discarded and that error is returned.
	InTx(ctx context.Context, fn func(tx LedgerTx) error) error
	// Events returns journaled events with Seq greater than after, oldest
	// first, at most limit of them.
	Events(ctx context.Context, after int64, limit int) ([]domain.Event, error)
}

// LedgerTx is the view of ledger state inside one transaction.
type LedgerTx interface {
	// Owner returns the current owner. The zero address means ownership
	// was renounced.
	Owner(ctx context.Context) (domain.Address, error)
	SetOwner(ctx context.Context, owner domain.Address) error

	// NextCampaignID returns the id the next campaign will receive without
	// consuming it.
	NextCampaignID(ctx context.Context) (int64, error)
	// ReserveCampaignID consumes and returns the next campaign id.
	ReserveCampaignID(ctx context.Context) (int64, error)

	// GetCampaign returns the campaign or nil when it does not exist.
	GetCampaign(ctx context.Context, id int64) (*domain.Campaign, error)
	InsertCampaign(ctx context.Context, c domain.Campaign) error
	UpdateCampaign(ctx context.Context, c domain.Campaign) error

	// GetAllocation returns the participant's remaining allocation, zero
	// when none was ever uploaded.
	GetAllocation(ctx context.Context, campaignID int64, participant domain.Address) (uint64, error)
	SetAllocation(ctx context.Context, campaignID int64, participant domain.Address, amount uint64) error
	// SumAllocations returns the sum of remaining allocations of a campaign.
	SumAllocations(ctx context.Context, campaignID int64) (uint64, error)

	AppendEvent(ctx context.Context, e domain.Event) error
}
