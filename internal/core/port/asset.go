package port

import (
	"context"

	"airdrop-ledger/internal/core/domain"
)

// TransferStatus is what an asset service reports about a transfer that
// did not fail outright.
type TransferStatus int

const (
	// TransferSilent means the call returned without reporting a status.
	TransferSilent TransferStatus = iota
	// TransferOK means the call reported success.
	TransferOK
	// TransferRejected means the call returned but reported failure.
	TransferRejected
)

// Token is a fungible asset as seen from the ledger's custody account.
// Transfer pushes from custody to a recipient, TransferFrom pulls from an
// account that allowed the custody account to do so. A returned error means
// the call itself failed.
type Token interface {
	Transfer(ctx context.Context, to domain.Address, amount uint64) (TransferStatus, error)
	TransferFrom(ctx context.Context, from, to domain.Address, amount uint64) (TransferStatus, error)
}

// AssetResolver finds the asset service behind an asset handle. ok is false
// when no service exists for the handle.
type AssetResolver interface {
	Resolve(asset domain.Address) (token Token, ok bool)
}
