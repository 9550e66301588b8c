package usecase

import (
	"sync/atomic"

	"airdrop-ledger/internal/core/domain"
)

// ReentrancyGuard is a single entered/free latch. The region between Enter
// and the returned release must not be entered again until it is released.
type ReentrancyGuard struct {
	entered atomic.Bool
}

// Enter takes the latch or fails with domain.ErrReentrantCall if it is
// already held.
func (g *ReentrancyGuard) Enter() (release func(), err error) {
	if !g.entered.CompareAndSwap(false, true) {
		return nil, domain.ErrReentrantCall
	}
	return func() { g.entered.Store(false) }, nil
}
