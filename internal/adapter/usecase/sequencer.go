package usecase

import (
	"context"
	"time"

	"airdrop-ledger/internal/core/domain"
	"airdrop-ledger/internal/core/port"
)

// Sequencer applies mutating ledger operations one at a time on behalf of
// concurrent callers such as HTTP requests. Views pass straight through.
//
// The turn is held for the whole operation, asset transfer included. A
// callback from the asset service that comes back through the sequencer
// cannot tell itself apart from an independent caller, so it queues like
// one: it fails with context.DeadlineExceeded once it has waited longer
// than the sequencer's wait limit, or when ctx ends, whichever is first.
// Keep the wait limit below the asset client's timeout so such a callback
// fails before the transfer that caused it does. Callbacks that must see
// ErrReentrantCall have to reach the LedgerUseCase directly.
type Sequencer struct {
	port.LedgerUseCase
	turn chan struct{}
	wait time.Duration
}

// NewSequencer wraps next. A caller waits at most wait for its turn; zero
// or less leaves the wait bounded by the caller's context only.
func NewSequencer(next port.LedgerUseCase, wait time.Duration) *Sequencer {
	return &Sequencer{LedgerUseCase: next, turn: make(chan struct{}, 1), wait: wait}
}

func (s *Sequencer) acquire(ctx context.Context) (func(), error) {
	if s.wait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.wait)
		defer cancel()
	}
	select {
	case s.turn <- struct{}{}:
		return func() { <-s.turn }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *Sequencer) OpenCampaign(ctx context.Context, caller domain.Address, req port.OpenCampaignReq) (*domain.Campaign, error) {
	release, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()
	return s.LedgerUseCase.OpenCampaign(ctx, caller, req)
}

func (s *Sequencer) FinalizeCampaign(ctx context.Context, caller domain.Address, campaignID int64) error {
	release, err := s.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()
	return s.LedgerUseCase.FinalizeCampaign(ctx, caller, campaignID)
}

func (s *Sequencer) UploadAllocations(ctx context.Context, caller domain.Address, entries []domain.AllocationEntry) error {
	release, err := s.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()
	return s.LedgerUseCase.UploadAllocations(ctx, caller, entries)
}

func (s *Sequencer) Claim(ctx context.Context, caller domain.Address, campaignID int64, amount uint64) error {
	release, err := s.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()
	return s.LedgerUseCase.Claim(ctx, caller, campaignID, amount)
}

func (s *Sequencer) TransferOwnership(ctx context.Context, caller, newOwner domain.Address) error {
	release, err := s.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()
	return s.LedgerUseCase.TransferOwnership(ctx, caller, newOwner)
}

func (s *Sequencer) RenounceOwnership(ctx context.Context, caller domain.Address) error {
	release, err := s.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()
	return s.LedgerUseCase.RenounceOwnership(ctx, caller)
}
