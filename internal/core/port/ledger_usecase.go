package port

import (
	"context"
	"time"

	"airdrop-ledger/internal/core/domain"
)

// LedgerUseCase defines the operations exposed by the ledger. Every
// mutating operation is atomic: on error the ledger is left exactly as it
// was before the call.
type LedgerUseCase interface {
	// OpenCampaign escrows req.TotalAllocated units of req.Asset from the
	// owner and creates a campaign with the next sequential id.
	OpenCampaign(ctx context.Context, caller domain.Address, req OpenCampaignReq) (*domain.Campaign, error)
	// FinalizeCampaign freezes a campaign's allocations and opens it for
	// claims inside its vesting window.
	FinalizeCampaign(ctx context.Context, caller domain.Address, campaignID int64) error
	// UploadAllocations overwrites the remaining allocation of every entry.
	// A single rejected entry aborts the whole batch.
	UploadAllocations(ctx context.Context, caller domain.Address, entries []domain.AllocationEntry) error
	// Claim moves amount of the campaign's asset to caller and decrements
	// the caller's allocation.
	Claim(ctx context.Context, caller domain.Address, campaignID int64, amount uint64) error

	TransferOwnership(ctx context.Context, caller, newOwner domain.Address) error
	RenounceOwnership(ctx context.Context, caller domain.Address) error

	Campaign(ctx context.Context, campaignID int64) (*domain.Campaign, error)
	Allocation(ctx context.Context, campaignID int64, participant domain.Address) (uint64, error)
	Owner(ctx context.Context) (domain.Address, error)
	NextCampaignID(ctx context.Context) (int64, error)
	Events(ctx context.Context, after int64, limit int) ([]domain.Event, error)
}

// OpenCampaignReq carries the arguments of OpenCampaign.
type OpenCampaignReq struct {
	Asset          domain.Address
	VestingStart   time.Time
	DurationDays   uint32
	TotalAllocated uint64
}
