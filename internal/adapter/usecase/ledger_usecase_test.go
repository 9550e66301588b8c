package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"airdrop-ledger/internal/adapter/memory"
	"airdrop-ledger/internal/core/domain"
	"airdrop-ledger/internal/core/port"
	"airdrop-ledger/internal/core/port/mocks"
)

const (
	owner   domain.Address = "owner"
	custody domain.Address = "ledger"
	asset   domain.Address = "TTK"
	user1   domain.Address = "user1"
	user2   domain.Address = "user2"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type staticResolver map[domain.Address]port.Token

func (r staticResolver) Resolve(a domain.Address) (port.Token, bool) {
	t, ok := r[a]
	return t, ok
}

type fixture struct {
	ctx   context.Context
	repo  *memory.LedgerRepository
	bank  *memory.AssetBank
	clock *fakeClock
	svc   *LedgerUseCase
}

func buildFixture(assets port.AssetResolver) (*fixture, error) {
	f := &fixture{
		ctx:   context.Background(),
		repo:  memory.NewLedgerRepository(),
		bank:  memory.NewAssetBank(custody),
		clock: &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)},
	}
	f.bank.Mint(asset, owner, 10_000)
	if assets == nil {
		assets = f.bank
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc, err := NewLedgerUseCase(f.ctx, f.repo, NewSafeTransfer(assets, custody, logger), f.clock, owner)
	if err != nil {
		return nil, err
	}
	f.svc = svc
	return f, nil
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f, err := buildFixture(nil)
	require.NoError(t, err)
	return f
}

func newFixtureWithToken(t *testing.T, token port.Token) *fixture {
	t.Helper()
	f, err := buildFixture(staticResolver{asset: token})
	require.NoError(t, err)
	return f
}

func (f *fixture) open(t *testing.T, total uint64) int64 {
	t.Helper()
	camp, err := f.svc.OpenCampaign(f.ctx, owner, port.OpenCampaignReq{
		Asset:          asset,
		VestingStart:   f.clock.Now(),
		DurationDays:   1,
		TotalAllocated: total,
	})
	require.NoError(t, err)
	return camp.ID
}

// openFinalized opens a campaign, allocates amount to participant, finalizes
// it and moves the clock into the vesting window.
func (f *fixture) openFinalized(t *testing.T, total uint64, participant domain.Address, amount uint64) int64 {
	t.Helper()
	id := f.open(t, total)
	require.NoError(t, f.svc.UploadAllocations(f.ctx, owner, []domain.AllocationEntry{
		{Participant: participant, Amount: amount, CampaignID: id},
	}))
	require.NoError(t, f.svc.FinalizeCampaign(f.ctx, owner, id))
	f.clock.Advance(time.Hour)
	return id
}

func (f *fixture) allocation(t *testing.T, id int64, p domain.Address) uint64 {
	t.Helper()
	a, err := f.svc.Allocation(f.ctx, id, p)
	require.NoError(t, err)
	return a
}

func (f *fixture) events(t *testing.T) []domain.Event {
	t.Helper()
	events, err := f.svc.Events(f.ctx, 0, maxEventsLimit)
	require.NoError(t, err)
	return events
}

var ignoreEventIdentity = cmpopts.IgnoreFields(domain.Event{}, "ID", "Seq", "CreatedAt")

func TestClaimLifecycle(t *testing.T) {
	f := newFixture(t)
	id := f.open(t, 1000)
	assert.Equal(t, int64(1), id)
	assert.Equal(t, uint64(1000), f.bank.BalanceOf(asset, custody))

	require.NoError(t, f.svc.UploadAllocations(f.ctx, owner, []domain.AllocationEntry{
		{Participant: user1, Amount: 100, CampaignID: id},
	}))
	require.NoError(t, f.svc.FinalizeCampaign(f.ctx, owner, id))
	f.clock.Advance(time.Hour)

	require.NoError(t, f.svc.Claim(f.ctx, user1, id, 30))
	assert.Equal(t, uint64(70), f.allocation(t, id, user1))

	require.NoError(t, f.svc.Claim(f.ctx, user1, id, 70))
	assert.Zero(t, f.allocation(t, id, user1))

	err := f.svc.Claim(f.ctx, user1, id, 1)
	require.ErrorIs(t, err, domain.ErrAlreadyClaimed)

	camp, err := f.svc.Campaign(f.ctx, id)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), camp.TotalDistributed)
	assert.Equal(t, uint64(100), f.bank.BalanceOf(asset, user1))
	assert.Equal(t, uint64(900), f.bank.BalanceOf(asset, custody))
}

func TestOpenCampaignRecordsWindowAndEvent(t *testing.T) {
	f := newFixture(t)
	start := f.clock.Now().Add(24 * time.Hour)
	camp, err := f.svc.OpenCampaign(f.ctx, owner, port.OpenCampaignReq{
		Asset: asset, VestingStart: start, DurationDays: 30, TotalAllocated: 500,
	})
	require.NoError(t, err)

	want := &domain.Campaign{
		ID:             1,
		Asset:          asset,
		VestingStart:   start,
		VestingEnd:     start.Add(30 * 24 * time.Hour),
		TotalAllocated: 500,
	}
	assert.Empty(t, cmp.Diff(want, camp))

	next, err := f.svc.NextCampaignID(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), next)

	wantEvents := []domain.Event{{Kind: domain.EventCampaignStarted, CampaignID: 1, Asset: asset, Amount: 500}}
	assert.Empty(t, cmp.Diff(wantEvents, f.events(t), ignoreEventIdentity))
}

func TestOpenCampaignValidation(t *testing.T) {
	f := newFixture(t)
	now := f.clock.Now()
	cases := []struct {
		name string
		req  port.OpenCampaignReq
		want error
	}{
		{"empty asset", port.OpenCampaignReq{VestingStart: now, DurationDays: 1, TotalAllocated: 1}, domain.ErrEmptyAddress},
		{"zero total", port.OpenCampaignReq{Asset: asset, VestingStart: now, DurationDays: 1}, domain.ErrInvalidAmount},
		{"zero duration", port.OpenCampaignReq{Asset: asset, VestingStart: now, TotalAllocated: 1}, domain.ErrInvalidDuration},
		{"duration past time range", port.OpenCampaignReq{Asset: asset, VestingStart: now, DurationDays: domain.MaxDurationDays + 1, TotalAllocated: 1}, domain.ErrInvalidDuration},
		{"largest duration", port.OpenCampaignReq{Asset: asset, VestingStart: now, DurationDays: math.MaxUint32, TotalAllocated: 1}, domain.ErrInvalidDuration},
		{"start in past", port.OpenCampaignReq{Asset: asset, VestingStart: now.Add(-time.Minute), DurationDays: 1, TotalAllocated: 1}, domain.ErrStartInPast},
		{"unknown asset", port.OpenCampaignReq{Asset: "NOPE", VestingStart: now, DurationDays: 1, TotalAllocated: 1}, domain.ErrTransferFailed},
		{"owner lacks funds", port.OpenCampaignReq{Asset: asset, VestingStart: now, DurationDays: 1, TotalAllocated: 10_001}, domain.ErrTransferFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.OpenCampaign(f.ctx, owner, tc.req)
			require.ErrorIs(t, err, tc.want)
		})
	}

	next, err := f.svc.NextCampaignID(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), next, "failed opens must not consume ids")
	_, err = f.svc.Campaign(f.ctx, 1)
	require.ErrorIs(t, err, domain.ErrCampaignNotFound)
	assert.Empty(t, f.events(t))
	assert.Equal(t, uint64(10_000), f.bank.BalanceOf(asset, owner))
}

func TestUploadEmptyBatch(t *testing.T) {
	f := newFixture(t)
	f.open(t, 100)
	before := f.events(t)

	err := f.svc.UploadAllocations(f.ctx, owner, nil)
	require.ErrorIs(t, err, domain.ErrEmptyBatch)
	assert.Equal(t, before, f.events(t))
}

func TestUploadOverwritesAndReportsChange(t *testing.T) {
	f := newFixture(t)
	id := f.open(t, 1000)

	upload := func(amount uint64) {
		require.NoError(t, f.svc.UploadAllocations(f.ctx, owner, []domain.AllocationEntry{
			{Participant: user1, Amount: amount, CampaignID: id},
		}))
	}
	upload(100)
	upload(40)
	upload(40)
	assert.Equal(t, uint64(40), f.allocation(t, id, user1))

	want := []domain.Event{
		{Kind: domain.EventCampaignStarted, CampaignID: id, Asset: asset, Amount: 1000},
		{Kind: domain.EventParticipantAdded, CampaignID: id, Participant: user1, Amount: 100},
		{Kind: domain.EventAllocationChanged, CampaignID: id, Participant: user1, Amount: 40},
		{Kind: domain.EventParticipantAdded, CampaignID: id, Participant: user1, Amount: 40},
		{Kind: domain.EventParticipantAdded, CampaignID: id, Participant: user1, Amount: 40},
	}
	assert.Empty(t, cmp.Diff(want, f.events(t), ignoreEventIdentity))
}

func TestUploadIsAllOrNothing(t *testing.T) {
	f := newFixture(t)
	open := f.open(t, 100)
	closed := f.open(t, 100)
	require.NoError(t, f.svc.FinalizeCampaign(f.ctx, owner, closed))
	before := f.events(t)

	cases := []struct {
		name  string
		batch []domain.AllocationEntry
		want  error
	}{
		{"finalized campaign", []domain.AllocationEntry{
			{Participant: user1, Amount: 10, CampaignID: open},
			{Participant: user2, Amount: 10, CampaignID: closed},
		}, domain.ErrCampaignAlreadyFinalized},
		{"unknown campaign", []domain.AllocationEntry{
			{Participant: user1, Amount: 10, CampaignID: open},
			{Participant: user2, Amount: 10, CampaignID: 99},
		}, domain.ErrCampaignAlreadyFinalized},
		{"empty participant", []domain.AllocationEntry{
			{Participant: user1, Amount: 10, CampaignID: open},
			{Amount: 10, CampaignID: open},
		}, domain.ErrEmptyAddress},
		{"over escrow", []domain.AllocationEntry{
			{Participant: user1, Amount: 60, CampaignID: open},
			{Participant: user2, Amount: 50, CampaignID: open},
		}, domain.ErrInvalidDistributionSum},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := f.svc.UploadAllocations(f.ctx, owner, tc.batch)
			require.ErrorIs(t, err, tc.want)
			assert.Zero(t, f.allocation(t, open, user1))
			assert.Zero(t, f.allocation(t, open, user2))
			assert.Equal(t, before, f.events(t))
		})
	}
}

func TestUploadAccountsForDistributed(t *testing.T) {
	f := newFixture(t)
	id := f.open(t, 100)
	require.NoError(t, f.svc.UploadAllocations(f.ctx, owner, []domain.AllocationEntry{
		{Participant: user1, Amount: 100, CampaignID: id},
	}))
	// Revoking user1 frees the whole escrow for user2.
	require.NoError(t, f.svc.UploadAllocations(f.ctx, owner, []domain.AllocationEntry{
		{Participant: user1, Amount: 0, CampaignID: id},
		{Participant: user2, Amount: 100, CampaignID: id},
	}))
	assert.Zero(t, f.allocation(t, id, user1))
	assert.Equal(t, uint64(100), f.allocation(t, id, user2))
}

func TestFinalizeTwice(t *testing.T) {
	f := newFixture(t)
	id := f.open(t, 100)
	require.NoError(t, f.svc.FinalizeCampaign(f.ctx, owner, id))

	err := f.svc.FinalizeCampaign(f.ctx, owner, id)
	require.ErrorIs(t, err, domain.ErrCampaignAlreadyFinalized)

	camp, err := f.svc.Campaign(f.ctx, id)
	require.NoError(t, err)
	assert.True(t, camp.Finalized)

	err = f.svc.FinalizeCampaign(f.ctx, owner, 42)
	require.ErrorIs(t, err, domain.ErrCampaignNotFound)
}

func TestClaimBeforeFinalize(t *testing.T) {
	f := newFixture(t)
	id := f.open(t, 1000)
	require.NoError(t, f.svc.UploadAllocations(f.ctx, owner, []domain.AllocationEntry{
		{Participant: user1, Amount: 100, CampaignID: id},
	}))
	f.clock.Advance(time.Hour)

	for _, amount := range []uint64{0, 1, 100, 1 << 40} {
		err := f.svc.Claim(f.ctx, user1, id, amount)
		require.ErrorIs(t, err, domain.ErrCampaignNotAllowed)
	}
	assert.Equal(t, uint64(100), f.allocation(t, id, user1))
}

func TestClaimOutsideWindow(t *testing.T) {
	f := newFixture(t)
	start := f.clock.Now().Add(2 * time.Hour)
	camp, err := f.svc.OpenCampaign(f.ctx, owner, port.OpenCampaignReq{
		Asset: asset, VestingStart: start, DurationDays: 1, TotalAllocated: 100,
	})
	require.NoError(t, err)
	require.NoError(t, f.svc.UploadAllocations(f.ctx, owner, []domain.AllocationEntry{
		{Participant: user1, Amount: 100, CampaignID: camp.ID},
	}))
	require.NoError(t, f.svc.FinalizeCampaign(f.ctx, owner, camp.ID))

	require.ErrorIs(t, f.svc.Claim(f.ctx, user1, camp.ID, 1), domain.ErrCampaignNotAllowed)

	f.clock.now = camp.VestingEnd
	require.NoError(t, f.svc.Claim(f.ctx, user1, camp.ID, 1))

	f.clock.Advance(time.Second)
	require.ErrorIs(t, f.svc.Claim(f.ctx, user1, camp.ID, 1), domain.ErrCampaignNotAllowed)

	after, err := f.svc.Campaign(f.ctx, camp.ID)
	require.NoError(t, err)
	assert.True(t, after.Finalized, "expiry does not change campaign state")
}

func TestClaimErrors(t *testing.T) {
	f := newFixture(t)
	id := f.openFinalized(t, 1000, user1, 100)

	require.ErrorIs(t, f.svc.Claim(f.ctx, user1, 7, 1), domain.ErrCampaignNotFound)
	require.ErrorIs(t, f.svc.Claim(f.ctx, user2, id, 1), domain.ErrAlreadyClaimed)
	require.ErrorIs(t, f.svc.Claim(f.ctx, user1, id, 0), domain.ErrInvalidAmount)

	err := f.svc.Claim(f.ctx, user1, id, 101)
	var tooMany *domain.TooManyForWithdrawError
	require.ErrorAs(t, err, &tooMany)
	assert.Equal(t, uint64(100), tooMany.Available)

	camp, err := f.svc.Campaign(f.ctx, id)
	require.NoError(t, err)
	assert.Zero(t, camp.TotalDistributed)
	assert.Equal(t, uint64(100), f.allocation(t, id, user1))
}

func TestClaimTransferFailureRollsBack(t *testing.T) {
	cases := []struct {
		name   string
		status port.TransferStatus
		err    error
	}{
		{"call failed", port.TransferOK, errors.New("reverted")},
		{"call reported failure", port.TransferRejected, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			token := mocks.NewMockToken(t)
			token.EXPECT().TransferFrom(mock.Anything, owner, custody, uint64(1000)).Return(port.TransferSilent, nil)
			token.EXPECT().Transfer(mock.Anything, user1, uint64(30)).Return(tc.status, tc.err)

			f := newFixtureWithToken(t, token)
			id := f.openFinalized(t, 1000, user1, 100)
			before := f.events(t)

			err := f.svc.Claim(f.ctx, user1, id, 30)
			var failed *domain.TransferFailedError
			require.ErrorAs(t, err, &failed)
			assert.Equal(t, asset, failed.Asset)

			assert.Equal(t, uint64(100), f.allocation(t, id, user1))
			camp, err := f.svc.Campaign(f.ctx, id)
			require.NoError(t, err)
			assert.Zero(t, camp.TotalDistributed)

			after := f.events(t)
			require.Len(t, after, len(before)+2)
			want := []domain.Event{
				{Kind: domain.EventTokensClaimed, CampaignID: id, Participant: user1, Amount: 30},
				{Kind: domain.EventClaimReverted, CampaignID: id, Participant: user1, Amount: 30},
			}
			assert.Empty(t, cmp.Diff(want, after[len(before):], ignoreEventIdentity))
		})
	}
}

func TestClaimRefusesReentry(t *testing.T) {
	token := mocks.NewMockToken(t)
	token.EXPECT().TransferFrom(mock.Anything, owner, custody, uint64(1000)).Return(port.TransferOK, nil)

	f := newFixtureWithToken(t, token)
	id := f.openFinalized(t, 1000, user1, 100)

	var nested error
	var seen uint64
	token.EXPECT().Transfer(mock.Anything, user1, uint64(10)).
		Run(func(ctx context.Context, to domain.Address, amount uint64) {
			nested = f.svc.Claim(ctx, to, id, 1)
			// The debit is committed before the payout starts.
			seen = f.allocation(t, id, user1)
		}).
		Return(port.TransferOK, nil).
		Once()

	require.NoError(t, f.svc.Claim(f.ctx, user1, id, 10))
	require.ErrorIs(t, nested, domain.ErrReentrantCall)
	assert.Equal(t, uint64(90), seen)
	assert.Equal(t, uint64(90), f.allocation(t, id, user1))

	// The latch is free again once the claim has finished.
	token.EXPECT().Transfer(mock.Anything, user1, uint64(5)).Return(port.TransferSilent, nil).Once()
	require.NoError(t, f.svc.Claim(f.ctx, user1, id, 5))
	assert.Equal(t, uint64(85), f.allocation(t, id, user1))
}

func TestAdminCallsRequireOwner(t *testing.T) {
	f := newFixture(t)
	id := f.open(t, 100)
	before := f.events(t)
	const mallory domain.Address = "mallory"

	_, err := f.svc.OpenCampaign(f.ctx, mallory, port.OpenCampaignReq{
		Asset: asset, VestingStart: f.clock.Now(), DurationDays: 1, TotalAllocated: 1,
	})
	require.ErrorIs(t, err, domain.ErrUnauthorizedCaller)

	err = f.svc.UploadAllocations(f.ctx, mallory, []domain.AllocationEntry{{Participant: mallory, Amount: 1, CampaignID: id}})
	require.ErrorIs(t, err, domain.ErrUnauthorizedCaller)

	err = f.svc.UploadAllocations(f.ctx, mallory, nil)
	require.ErrorIs(t, err, domain.ErrUnauthorizedCaller, "ownership is checked before the batch")

	err = f.svc.FinalizeCampaign(f.ctx, mallory, id)
	var unauthorized *domain.UnauthorizedCallerError
	require.ErrorAs(t, err, &unauthorized)
	assert.Equal(t, mallory, unauthorized.Caller)

	assert.Equal(t, before, f.events(t))
	assert.Zero(t, f.allocation(t, id, mallory))
	camp, err := f.svc.Campaign(f.ctx, id)
	require.NoError(t, err)
	assert.False(t, camp.Finalized)
	next, err := f.svc.NextCampaignID(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), next)
}

func TestOwnershipTransferAndRenounce(t *testing.T) {
	f := newFixture(t)
	const bob domain.Address = "bob"

	require.ErrorIs(t, f.svc.TransferOwnership(f.ctx, owner, ""), domain.ErrInvalidOwner)
	require.ErrorIs(t, f.svc.TransferOwnership(f.ctx, bob, bob), domain.ErrUnauthorizedCaller)

	require.NoError(t, f.svc.TransferOwnership(f.ctx, owner, bob))
	current, err := f.svc.Owner(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, bob, current)
	require.ErrorIs(t, f.svc.FinalizeCampaign(f.ctx, owner, 1), domain.ErrUnauthorizedCaller)

	require.ErrorIs(t, f.svc.RenounceOwnership(f.ctx, owner), domain.ErrUnauthorizedCaller)
	require.NoError(t, f.svc.RenounceOwnership(f.ctx, bob))
	current, err = f.svc.Owner(f.ctx)
	require.NoError(t, err)
	assert.True(t, current.IsZero())

	for _, caller := range []domain.Address{owner, bob, ""} {
		require.ErrorIs(t, f.svc.TransferOwnership(f.ctx, caller, bob), domain.ErrUnauthorizedCaller)
		require.ErrorIs(t, f.svc.UploadAllocations(f.ctx, caller, []domain.AllocationEntry{{Participant: bob, Amount: 1, CampaignID: 1}}), domain.ErrUnauthorizedCaller)
	}

	// Rebuilding the service on the same store cannot reinstall an owner.
	again, err := NewLedgerUseCase(f.ctx, f.repo, NewSafeTransfer(f.bank, custody, nil), f.clock, owner)
	require.NoError(t, err)
	current, err = again.Owner(f.ctx)
	require.NoError(t, err)
	assert.True(t, current.IsZero())

	want := []domain.Event{
		{Kind: domain.EventOwnershipTransferred, PreviousOwner: owner, NewOwner: bob},
		{Kind: domain.EventOwnershipTransferred, PreviousOwner: bob},
	}
	assert.Empty(t, cmp.Diff(want, f.events(t), ignoreEventIdentity))
}

func TestNewLedgerUseCaseRejectsEmptyOwner(t *testing.T) {
	_, err := NewLedgerUseCase(context.Background(), memory.NewLedgerRepository(), nil, nil, "")
	require.ErrorIs(t, err, domain.ErrInvalidOwner)
}

func TestEventsLimit(t *testing.T) {
	f := newFixture(t)
	id := f.open(t, 1000)
	entries := make([]domain.AllocationEntry, 0, 5)
	for _, p := range []domain.Address{"a", "b", "c", "d", "e"} {
		entries = append(entries, domain.AllocationEntry{Participant: p, Amount: 1, CampaignID: id})
	}
	require.NoError(t, f.svc.UploadAllocations(f.ctx, owner, entries))

	page, err := f.svc.Events(f.ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, domain.Address("a"), page[0].Participant)
	assert.Equal(t, domain.Address("b"), page[1].Participant)

	all, err := f.svc.Events(f.ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, all, 6)
}
