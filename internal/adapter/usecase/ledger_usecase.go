package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"airdrop-ledger/internal/core/domain"
	"airdrop-ledger/internal/core/port"
)

const (
	defaultEventsLimit = 100
	maxEventsLimit     = 1000
	commitAttempts     = 5
)

var tracer = otel.Tracer("airdrop-ledger/usecase")

// LedgerUseCase implements port.LedgerUseCase. It keeps the campaign
// registry, the allocation ledger and the claim path on top of a
// transactional repository, and composes the ownership gate, the
// reentrancy latch and the safe transfer wrapper by reference.
//
// LedgerUseCase does no scheduling of its own. Independent callers must be
// serialised by the host, see Sequencer.
type LedgerUseCase struct {
	repo     port.LedgerRepository
	transfer *SafeTransfer
	clock    port.Clock
	access   AccessControl
	guard    ReentrancyGuard
}

// NewLedgerUseCase returns a ledger owned by owner. The owner is installed
// only if the repository has never been initialised; an existing ledger
// keeps its current owner.
func NewLedgerUseCase(ctx context.Context, repo port.LedgerRepository, transfer *SafeTransfer, clock port.Clock, owner domain.Address) (*LedgerUseCase, error) {
	if owner.IsZero() {
		return nil, domain.ErrInvalidOwner
	}
	if clock == nil {
		clock = SystemClock{}
	}
	if err := repo.Bootstrap(ctx, owner); err != nil {
		return nil, fmt.Errorf("bootstrap ledger: %w", err)
	}
	return &LedgerUseCase{repo: repo, transfer: transfer, clock: clock}, nil
}

// OpenCampaign creates a campaign and escrows its total from the owner.
// The request is validated before anything is pulled, and the campaign is
// only written once the escrow has arrived, so a failed pull leaves no
// campaign and no consumed id behind. If the campaign cannot be written
// after a successful pull, the escrow is sent back to the caller.
func (u *LedgerUseCase) OpenCampaign(ctx context.Context, caller domain.Address, req port.OpenCampaignReq) (_ *domain.Campaign, err error) {
	ctx, span := tracer.Start(ctx, "ledger.OpenCampaign", trace.WithAttributes(
		attribute.String("asset", req.Asset.String()),
	))
	defer func() { endSpan(span, err) }()

	now := u.clock.Now()
	start := req.VestingStart.UTC().Truncate(time.Second)
	check := func(tx port.LedgerTx) error {
		if err := u.access.Authorize(ctx, tx, caller); err != nil {
			return err
		}
		switch {
		case req.Asset.IsZero():
			return domain.ErrEmptyAddress
		case req.TotalAllocated == 0:
			return domain.ErrInvalidAmount
		case req.DurationDays == 0, req.DurationDays > domain.MaxDurationDays:
			return domain.ErrInvalidDuration
		case start.Before(now.Truncate(time.Second)):
			return domain.ErrStartInPast
		}
		return nil
	}
	if err = u.repo.InTx(ctx, check); err != nil {
		return nil, err
	}
	end := domain.VestingEndFor(start, req.DurationDays)
	if !end.After(start) {
		return nil, domain.ErrInvalidDuration
	}

	if err = u.transfer.Pull(ctx, req.Asset, caller, req.TotalAllocated); err != nil {
		return nil, err
	}

	var camp domain.Campaign
	err = u.retryTx(ctx, func(tx port.LedgerTx) error {
		if err := check(tx); err != nil {
			return err
		}
		id, err := tx.ReserveCampaignID(ctx)
		if err != nil {
			return err
		}
		camp = domain.Campaign{
			ID:             id,
			Asset:          req.Asset,
			VestingStart:   start,
			VestingEnd:     end,
			TotalAllocated: req.TotalAllocated,
		}
		if err = tx.InsertCampaign(ctx, camp); err != nil {
			return err
		}
		ev := domain.NewEvent(domain.EventCampaignStarted, now)
		ev.CampaignID = id
		ev.Asset = req.Asset
		ev.Amount = req.TotalAllocated
		return tx.AppendEvent(ctx, ev)
	})
	if err != nil {
		if rerr := u.transfer.Send(ctx, req.Asset, caller, req.TotalAllocated); rerr != nil {
			return nil, errors.Join(err, fmt.Errorf("refund escrow: %w", rerr))
		}
		return nil, err
	}
	span.SetAttributes(attribute.Int64("campaign_id", camp.ID))
	return &camp, nil
}

// FinalizeCampaign freezes a campaign. The vesting window set at open time
// is left untouched.
func (u *LedgerUseCase) FinalizeCampaign(ctx context.Context, caller domain.Address, campaignID int64) (err error) {
	ctx, span := tracer.Start(ctx, "ledger.FinalizeCampaign", trace.WithAttributes(
		attribute.Int64("campaign_id", campaignID),
	))
	defer func() { endSpan(span, err) }()

	now := u.clock.Now()
	return u.repo.InTx(ctx, func(tx port.LedgerTx) error {
		if err := u.access.Authorize(ctx, tx, caller); err != nil {
			return err
		}
		camp, err := tx.GetCampaign(ctx, campaignID)
		if err != nil {
			return err
		}
		if camp == nil {
			return domain.ErrCampaignNotFound
		}
		if camp.Finalized {
			return domain.ErrCampaignAlreadyFinalized
		}
		camp.Finalized = true
		if err = tx.UpdateCampaign(ctx, *camp); err != nil {
			return err
		}
		ev := domain.NewEvent(domain.EventCampaignFinalized, now)
		ev.CampaignID = campaignID
		return tx.AppendEvent(ctx, ev)
	})
}

// UploadAllocations overwrites participant allocations entry by entry, in
// order. Entries naming a missing or finalized campaign abort the batch.
// After all entries are applied, every touched campaign must still cover
// its remaining allocations plus what it already distributed.
func (u *LedgerUseCase) UploadAllocations(ctx context.Context, caller domain.Address, entries []domain.AllocationEntry) (err error) {
	ctx, span := tracer.Start(ctx, "ledger.UploadAllocations", trace.WithAttributes(
		attribute.Int("entries", len(entries)),
	))
	defer func() { endSpan(span, err) }()

	now := u.clock.Now()
	return u.repo.InTx(ctx, func(tx port.LedgerTx) error {
		if err := u.access.Authorize(ctx, tx, caller); err != nil {
			return err
		}
		if len(entries) == 0 {
			return domain.ErrEmptyBatch
		}

		touched := make(map[int64]*domain.Campaign)
		var order []int64
		for i, e := range entries {
			if _, ok := touched[e.CampaignID]; !ok {
				camp, err := tx.GetCampaign(ctx, e.CampaignID)
				if err != nil {
					return err
				}
				if camp == nil || camp.Finalized {
					return fmt.Errorf("entry %d: campaign %d: %w", i, e.CampaignID, domain.ErrCampaignAlreadyFinalized)
				}
				touched[e.CampaignID] = camp
				order = append(order, e.CampaignID)
			}
			if e.Participant.IsZero() {
				return fmt.Errorf("entry %d: %w", i, domain.ErrEmptyAddress)
			}
			if err := u.applyEntry(ctx, tx, e, now); err != nil {
				return err
			}
		}

		for _, id := range order {
			camp := touched[id]
			sum, err := tx.SumAllocations(ctx, id)
			if err != nil {
				return err
			}
			if sum > camp.Remaining() {
				return fmt.Errorf("campaign %d: %w", id, domain.ErrInvalidDistributionSum)
			}
		}
		return nil
	})
}

func (u *LedgerUseCase) applyEntry(ctx context.Context, tx port.LedgerTx, e domain.AllocationEntry, now time.Time) error {
	prev, err := tx.GetAllocation(ctx, e.CampaignID, e.Participant)
	if err != nil {
		return err
	}
	if prev != 0 && prev != e.Amount {
		ev := domain.NewEvent(domain.EventAllocationChanged, now)
		ev.CampaignID = e.CampaignID
		ev.Participant = e.Participant
		ev.Amount = e.Amount
		if err = tx.AppendEvent(ctx, ev); err != nil {
			return err
		}
	}
	if err = tx.SetAllocation(ctx, e.CampaignID, e.Participant, e.Amount); err != nil {
		return err
	}
	ev := domain.NewEvent(domain.EventParticipantAdded, now)
	ev.CampaignID = e.CampaignID
	ev.Participant = e.Participant
	ev.Amount = e.Amount
	return tx.AppendEvent(ctx, ev)
}

// Claim withdraws amount of the caller's allocation. The allocation
// decrement, the campaign's distributed total and the claim event are
// committed before the asset service is called, so the payout can never be
// followed by a failed commit, and a nested call made from inside the
// transfer already observes the decremented balance. The reentrancy latch
// is held across the transfer. If the transfer fails the debit is reversed
// in a compensating transaction, which journals EventClaimReverted.
func (u *LedgerUseCase) Claim(ctx context.Context, caller domain.Address, campaignID int64, amount uint64) (err error) {
	ctx, span := tracer.Start(ctx, "ledger.Claim", trace.WithAttributes(
		attribute.Int64("campaign_id", campaignID),
		attribute.String("caller", caller.String()),
	))
	defer func() { endSpan(span, err) }()

	release, err := u.guard.Enter()
	if err != nil {
		return err
	}
	defer release()

	now := u.clock.Now()
	var asset domain.Address
	err = u.repo.InTx(ctx, func(tx port.LedgerTx) error {
		camp, err := tx.GetCampaign(ctx, campaignID)
		if err != nil {
			return err
		}
		if camp == nil {
			return domain.ErrCampaignNotFound
		}
		if !camp.Claimable(now) {
			return domain.ErrCampaignNotAllowed
		}
		if amount == 0 {
			return domain.ErrInvalidAmount
		}
		available, err := tx.GetAllocation(ctx, campaignID, caller)
		if err != nil {
			return err
		}
		if available == 0 {
			return domain.ErrAlreadyClaimed
		}
		if amount > available {
			return &domain.TooManyForWithdrawError{Available: available}
		}

		if err = tx.SetAllocation(ctx, campaignID, caller, available-amount); err != nil {
			return err
		}
		camp.TotalDistributed += amount
		if err = tx.UpdateCampaign(ctx, *camp); err != nil {
			return err
		}
		asset = camp.Asset
		return tx.AppendEvent(ctx, claimEvent(domain.EventTokensClaimed, campaignID, caller, amount, now))
	})
	if err != nil {
		return err
	}

	if err = u.transfer.Send(ctx, asset, caller, amount); err != nil {
		if rerr := u.retryTx(ctx, func(tx port.LedgerTx) error {
			return u.reverseClaim(ctx, tx, campaignID, caller, amount, now)
		}); rerr != nil {
			return errors.Join(err, fmt.Errorf("reverse claim: %w", rerr))
		}
		return err
	}
	return nil
}

// reverseClaim credits amount back to the participant. Allocations of a
// finalized campaign only change through claims, so adding back is exact.
func (u *LedgerUseCase) reverseClaim(ctx context.Context, tx port.LedgerTx, campaignID int64, participant domain.Address, amount uint64, now time.Time) error {
	camp, err := tx.GetCampaign(ctx, campaignID)
	if err != nil {
		return err
	}
	if camp == nil {
		return domain.ErrCampaignNotFound
	}
	if camp.TotalDistributed < amount {
		return fmt.Errorf("campaign %d distributed %d, cannot reverse %d", campaignID, camp.TotalDistributed, amount)
	}
	remaining, err := tx.GetAllocation(ctx, campaignID, participant)
	if err != nil {
		return err
	}
	if err = tx.SetAllocation(ctx, campaignID, participant, remaining+amount); err != nil {
		return err
	}
	camp.TotalDistributed -= amount
	if err = tx.UpdateCampaign(ctx, *camp); err != nil {
		return err
	}
	return tx.AppendEvent(ctx, claimEvent(domain.EventClaimReverted, campaignID, participant, amount, now))
}

func claimEvent(kind domain.EventKind, campaignID int64, participant domain.Address, amount uint64, now time.Time) domain.Event {
	ev := domain.NewEvent(kind, now)
	ev.CampaignID = campaignID
	ev.Participant = participant
	ev.Amount = amount
	return ev
}

// retryTx runs fn until it commits or fails with anything other than
// port.ErrConflict, at most commitAttempts times. It is used for writes
// that follow an asset transfer and so cannot simply be abandoned.
func (u *LedgerUseCase) retryTx(ctx context.Context, fn func(tx port.LedgerTx) error) error {
	var err error
	for range commitAttempts {
		if err = u.repo.InTx(ctx, fn); !errors.Is(err, port.ErrConflict) {
			return err
		}
		if ctx.Err() != nil {
			return err
		}
	}
	return err
}

// TransferOwnership hands the administrative rights to newOwner.
func (u *LedgerUseCase) TransferOwnership(ctx context.Context, caller, newOwner domain.Address) (err error) {
	ctx, span := tracer.Start(ctx, "ledger.TransferOwnership")
	defer func() { endSpan(span, err) }()

	now := u.clock.Now()
	return u.repo.InTx(ctx, func(tx port.LedgerTx) error {
		return u.access.Transfer(ctx, tx, caller, newOwner, now)
	})
}

// RenounceOwnership clears the owner. Nothing can restore it.
func (u *LedgerUseCase) RenounceOwnership(ctx context.Context, caller domain.Address) (err error) {
	ctx, span := tracer.Start(ctx, "ledger.RenounceOwnership")
	defer func() { endSpan(span, err) }()

	now := u.clock.Now()
	return u.repo.InTx(ctx, func(tx port.LedgerTx) error {
		return u.access.Renounce(ctx, tx, caller, now)
	})
}

// Campaign returns a campaign by id.
func (u *LedgerUseCase) Campaign(ctx context.Context, campaignID int64) (*domain.Campaign, error) {
	var camp *domain.Campaign
	err := u.repo.InTx(ctx, func(tx port.LedgerTx) error {
		c, err := tx.GetCampaign(ctx, campaignID)
		camp = c
		return err
	})
	if err != nil {
		return nil, err
	}
	if camp == nil {
		return nil, domain.ErrCampaignNotFound
	}
	return camp, nil
}

// Allocation returns the participant's remaining allocation. Unknown
// campaigns and participants read as zero.
func (u *LedgerUseCase) Allocation(ctx context.Context, campaignID int64, participant domain.Address) (uint64, error) {
	var amount uint64
	err := u.repo.InTx(ctx, func(tx port.LedgerTx) error {
		a, err := tx.GetAllocation(ctx, campaignID, participant)
		amount = a
		return err
	})
	return amount, err
}

// Owner returns the current owner, empty after renouncement.
func (u *LedgerUseCase) Owner(ctx context.Context) (domain.Address, error) {
	var owner domain.Address
	err := u.repo.InTx(ctx, func(tx port.LedgerTx) error {
		o, err := tx.Owner(ctx)
		owner = o
		return err
	})
	return owner, err
}

// NextCampaignID returns the id the next opened campaign will receive.
func (u *LedgerUseCase) NextCampaignID(ctx context.Context) (int64, error) {
	var id int64
	err := u.repo.InTx(ctx, func(tx port.LedgerTx) error {
		n, err := tx.NextCampaignID(ctx)
		id = n
		return err
	})
	return id, err
}

// Events pages through the event journal.
func (u *LedgerUseCase) Events(ctx context.Context, after int64, limit int) ([]domain.Event, error) {
	if limit <= 0 {
		limit = defaultEventsLimit
	}
	if limit > maxEventsLimit {
		limit = maxEventsLimit
	}
	return u.repo.Events(ctx, after, limit)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String("error.class", domain.Classify(err).String()))
	}
	span.End()
}
