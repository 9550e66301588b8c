package domain

import (
	"math"
	"time"
)

// SecondsPerDay is the length of one vesting day.
const SecondsPerDay = 86400

// MaxDurationDays is the longest vesting window a time.Duration can span.
const MaxDurationDays = uint32(math.MaxInt64 / (SecondsPerDay * int64(time.Second)))

// Campaign is one escrowed batch of a fungible asset with a fixed vesting
// window. Amounts are stored in the asset's smallest unit.
type Campaign struct {
	ID               int64
	Asset            Address
	VestingStart     time.Time
	VestingEnd       time.Time
	TotalAllocated   uint64
	TotalDistributed uint64
	Finalized        bool
}

// VestingEndFor returns the end of a window that starts at start and lasts
// durationDays whole days. durationDays must not exceed MaxDurationDays.
func VestingEndFor(start time.Time, durationDays uint32) time.Time {
	return start.Add(time.Duration(durationDays) * SecondsPerDay * time.Second)
}

// InWindow reports whether now lies in [VestingStart, VestingEnd]. Both
// bounds are inclusive.
func (c *Campaign) InWindow(now time.Time) bool {
	return !now.Before(c.VestingStart) && !now.After(c.VestingEnd)
}

// Claimable reports whether participants may withdraw at now: the campaign
// must be finalized and now must lie inside the vesting window.
func (c *Campaign) Claimable(now time.Time) bool {
	return c.Finalized && c.InWindow(now)
}

// Remaining returns the escrow not yet distributed.
func (c *Campaign) Remaining() uint64 {
	return c.TotalAllocated - c.TotalDistributed
}

// State returns the lifecycle state name: "open" until finalized, then
// "finalized".
func (c *Campaign) State() string {
	if c.Finalized {
		return "finalized"
	}
	return "open"
}
