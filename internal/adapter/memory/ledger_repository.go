package memory

import (
	"context"
	"maps"
	"math"
	"slices"
	"sync"

	"airdrop-ledger/internal/core/domain"
	"airdrop-ledger/internal/core/port"
)

type allocKey struct {
	campaignID  int64
	participant domain.Address
}

type state struct {
	initialized bool
	owner       domain.Address
	nextID      int64
	seq         int64
	campaigns   map[int64]domain.Campaign
	allocations map[allocKey]uint64
	events      []domain.Event
}

func (s *state) clone() *state {
	c := *s
	c.campaigns = maps.Clone(s.campaigns)
	c.allocations = maps.Clone(s.allocations)
	c.events = slices.Clip(s.events)
	return &c
}

// LedgerRepository implements port.LedgerRepository in process memory.
// Each transaction works on a private snapshot that replaces the shared
// state on commit. A writing transaction that finds the state changed since
// its snapshot was taken fails with port.ErrConflict.
type LedgerRepository struct {
	mu      sync.Mutex
	st      *state
	version uint64
}

// NewLedgerRepository returns an empty, uninitialised ledger.
func NewLedgerRepository() *LedgerRepository {
	return &LedgerRepository{st: &state{
		campaigns:   make(map[int64]domain.Campaign),
		allocations: make(map[allocKey]uint64),
	}}
}

// Bootstrap installs owner on a ledger that was never initialised.
func (r *LedgerRepository) Bootstrap(_ context.Context, owner domain.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.st.initialized {
		return nil
	}
	r.st.initialized = true
	r.st.owner = owner
	r.st.nextID = 1
	r.version++
	return nil
}

// InTx runs fn against a snapshot and publishes it if fn succeeds.
func (r *LedgerRepository) InTx(ctx context.Context, fn func(tx port.LedgerTx) error) error {
	r.mu.Lock()
	tx := &ledgerTx{st: r.st.clone()}
	version := r.version
	r.mu.Unlock()

	if err := fn(tx); err != nil {
		return err
	}
	if !tx.dirty {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.version != version {
		return port.ErrConflict
	}
	r.st = tx.st
	r.version++
	return nil
}

// Events returns journaled events after the given sequence number.
func (r *LedgerRepository) Events(_ context.Context, after int64, limit int) ([]domain.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Event, 0)
	for _, e := range r.st.events {
		if e.Seq <= after {
			continue
		}
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, e)
	}
	return out, nil
}

type ledgerTx struct {
	st    *state
	dirty bool
}

func (t *ledgerTx) Owner(context.Context) (domain.Address, error) {
	return t.st.owner, nil
}

func (t *ledgerTx) SetOwner(_ context.Context, owner domain.Address) error {
	t.st.owner = owner
	t.dirty = true
	return nil
}

func (t *ledgerTx) NextCampaignID(context.Context) (int64, error) {
	return t.st.nextID, nil
}

func (t *ledgerTx) ReserveCampaignID(context.Context) (int64, error) {
	id := t.st.nextID
	t.st.nextID++
	t.dirty = true
	return id, nil
}

func (t *ledgerTx) GetCampaign(_ context.Context, id int64) (*domain.Campaign, error) {
	c, ok := t.st.campaigns[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (t *ledgerTx) InsertCampaign(_ context.Context, c domain.Campaign) error {
	t.st.campaigns[c.ID] = c
	t.dirty = true
	return nil
}

func (t *ledgerTx) UpdateCampaign(_ context.Context, c domain.Campaign) error {
	t.st.campaigns[c.ID] = c
	t.dirty = true
	return nil
}

func (t *ledgerTx) GetAllocation(_ context.Context, campaignID int64, participant domain.Address) (uint64, error) {
	return t.st.allocations[allocKey{campaignID, participant}], nil
}

func (t *ledgerTx) SetAllocation(_ context.Context, campaignID int64, participant domain.Address, amount uint64) error {
	t.st.allocations[allocKey{campaignID, participant}] = amount
	t.dirty = true
	return nil
}

func (t *ledgerTx) SumAllocations(_ context.Context, campaignID int64) (uint64, error) {
	var sum uint64
	for k, v := range t.st.allocations {
		if k.campaignID != campaignID {
			continue
		}
		if sum+v < sum {
			return math.MaxUint64, nil
		}
		sum += v
	}
	return sum, nil
}

func (t *ledgerTx) AppendEvent(_ context.Context, e domain.Event) error {
	t.st.seq++
	e.Seq = t.st.seq
	t.st.events = append(t.st.events, e)
	t.dirty = true
	return nil
}
