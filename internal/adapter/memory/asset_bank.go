package memory

import (
	"context"
	"errors"
	"sync"

	"airdrop-ledger/internal/core/domain"
	"airdrop-ledger/internal/core/port"
)

var ErrInsufficientBalance = errors.New("insufficient balance")

// AssetBank is an in-process fungible asset service holding balances for
// any number of assets. An asset exists once something has been minted in
// it; resolving any other handle finds nothing. It implements
// port.AssetResolver with tokens acting on behalf of the custody account.
type AssetBank struct {
	mu       sync.Mutex
	custody  domain.Address
	balances map[domain.Address]map[domain.Address]uint64
}

// NewAssetBank returns an empty bank whose tokens act as custody.
func NewAssetBank(custody domain.Address) *AssetBank {
	return &AssetBank{
		custody:  custody,
		balances: make(map[domain.Address]map[domain.Address]uint64),
	}
}

// Mint credits amount of asset to holder, creating the asset if needed.
func (b *AssetBank) Mint(asset, holder domain.Address, amount uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	hs, ok := b.balances[asset]
	if !ok {
		hs = make(map[domain.Address]uint64)
		b.balances[asset] = hs
	}
	hs[holder] += amount
}

// BalanceOf returns holder's balance of asset.
func (b *AssetBank) BalanceOf(asset, holder domain.Address) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.balances[asset][holder]
}

// Resolve implements port.AssetResolver.
func (b *AssetBank) Resolve(asset domain.Address) (port.Token, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.balances[asset]; !ok {
		return nil, false
	}
	return &bankToken{bank: b, asset: asset}, true
}

func (b *AssetBank) move(asset, from, to domain.Address, amount uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	hs := b.balances[asset]
	if hs[from] < amount {
		return ErrInsufficientBalance
	}
	hs[from] -= amount
	hs[to] += amount
	return nil
}

type bankToken struct {
	bank  *AssetBank
	asset domain.Address
}

func (t *bankToken) Transfer(_ context.Context, to domain.Address, amount uint64) (port.TransferStatus, error) {
	if err := t.bank.move(t.asset, t.bank.custody, to, amount); err != nil {
		return port.TransferRejected, err
	}
	return port.TransferOK, nil
}

func (t *bankToken) TransferFrom(_ context.Context, from, to domain.Address, amount uint64) (port.TransferStatus, error) {
	if err := t.bank.move(t.asset, from, to, amount); err != nil {
		return port.TransferRejected, err
	}
	return port.TransferOK, nil
}
