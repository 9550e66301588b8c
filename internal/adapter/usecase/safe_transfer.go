package usecase

import (
	"context"
	"log/slog"

	"airdrop-ledger/internal/core/domain"
	"airdrop-ledger/internal/core/port"
)

// SafeTransfer moves assets through the external asset service and folds
// every way that can go wrong into *domain.TransferFailedError: the call
// failing, the call reporting failure, and the asset having no service
// behind it. A call that reports nothing counts as success.
type SafeTransfer struct {
	assets  port.AssetResolver
	custody domain.Address
	logger  *slog.Logger
}

// NewSafeTransfer returns a SafeTransfer acting for the custody account.
func NewSafeTransfer(assets port.AssetResolver, custody domain.Address, logger *slog.Logger) *SafeTransfer {
	if logger == nil {
		logger = slog.Default()
	}
	return &SafeTransfer{assets: assets, custody: custody, logger: logger}
}

// Custody returns the account that holds escrowed assets.
func (s *SafeTransfer) Custody() domain.Address {
	return s.custody
}

// Send pushes amount of asset from custody to to.
func (s *SafeTransfer) Send(ctx context.Context, asset, to domain.Address, amount uint64) error {
	token, ok := s.assets.Resolve(asset)
	if !ok {
		return s.fail(ctx, "transfer", asset, "no asset service", nil)
	}
	status, err := token.Transfer(ctx, to, amount)
	return s.check(ctx, "transfer", asset, status, err)
}

// Pull moves amount of asset from from into custody.
func (s *SafeTransfer) Pull(ctx context.Context, asset, from domain.Address, amount uint64) error {
	token, ok := s.assets.Resolve(asset)
	if !ok {
		return s.fail(ctx, "transfer_from", asset, "no asset service", nil)
	}
	status, err := token.TransferFrom(ctx, from, s.custody, amount)
	return s.check(ctx, "transfer_from", asset, status, err)
}

func (s *SafeTransfer) check(ctx context.Context, op string, asset domain.Address, status port.TransferStatus, err error) error {
	switch {
	case err != nil:
		return s.fail(ctx, op, asset, "call failed", err)
	case status == port.TransferRejected:
		return s.fail(ctx, op, asset, "call reported failure", nil)
	default:
		return nil
	}
}

func (s *SafeTransfer) fail(ctx context.Context, op string, asset domain.Address, reason string, cause error) error {
	attrs := []any{slog.String("op", op), slog.String("asset", asset.String()), slog.String("reason", reason)}
	if cause != nil {
		attrs = append(attrs, slog.Any("error", cause))
	}
	s.logger.WarnContext(ctx, "asset transfer failed", attrs...)
	return &domain.TransferFailedError{Asset: asset}
}
