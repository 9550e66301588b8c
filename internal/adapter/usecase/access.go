package usecase

import (
	"context"
	"time"

	"airdrop-ledger/internal/core/domain"
	"airdrop-ledger/internal/core/port"
)

// AccessControl gates administrative operations behind the single owner
// stored in the ledger. Once ownership is renounced no caller passes.
type AccessControl struct{}

// Authorize fails with *domain.UnauthorizedCallerError unless caller is the
// current owner.
func (AccessControl) Authorize(ctx context.Context, tx port.LedgerTx, caller domain.Address) error {
	owner, err := tx.Owner(ctx)
	if err != nil {
		return err
	}
	if owner.IsZero() || caller != owner {
		return &domain.UnauthorizedCallerError{Caller: caller}
	}
	return nil
}

// Transfer hands ownership to newOwner.
func (a AccessControl) Transfer(ctx context.Context, tx port.LedgerTx, caller, newOwner domain.Address, now time.Time) error {
	if err := a.Authorize(ctx, tx, caller); err != nil {
		return err
	}
	if newOwner.IsZero() {
		return domain.ErrInvalidOwner
	}
	return a.swap(ctx, tx, caller, newOwner, now)
}

// Renounce clears the owner for good.
func (a AccessControl) Renounce(ctx context.Context, tx port.LedgerTx, caller domain.Address, now time.Time) error {
	if err := a.Authorize(ctx, tx, caller); err != nil {
		return err
	}
	return a.swap(ctx, tx, caller, "", now)
}

func (AccessControl) swap(ctx context.Context, tx port.LedgerTx, previous, next domain.Address, now time.Time) error {
	if err := tx.SetOwner(ctx, next); err != nil {
		return err
	}
	ev := domain.NewEvent(domain.EventOwnershipTransferred, now)
	ev.PreviousOwner = previous
	ev.NewOwner = next
	return tx.AppendEvent(ctx, ev)
}
