package domain

import (
	"errors"
	"fmt"
)

// Configuration errors: the caller supplied invalid arguments.
var (
	ErrEmptyAddress    = errors.New("empty address")
	ErrEmptyBatch      = errors.New("empty allocation batch")
	ErrInvalidOwner    = errors.New("invalid owner")
	ErrStartInPast     = errors.New("vesting start is in the past")
	ErrInvalidAmount   = errors.New("amount must be positive")
	ErrInvalidDuration = errors.New("vesting duration must be at least one day")
)

// State-conflict errors: the operation conflicts with current ledger state.
var (
	ErrCampaignAlreadyFinalized = errors.New("campaign already finalized")
	ErrCampaignNotAllowed       = errors.New("campaign does not allow claims now")
	ErrCampaignNotFound         = errors.New("campaign not found")
	ErrAlreadyClaimed           = errors.New("nothing left to claim")
	ErrInvalidDistributionSum   = errors.New("allocations exceed campaign escrow")
)

var (
	ErrTooManyForWithdraw = errors.New("requested more than available")
	ErrUnauthorizedCaller = errors.New("unauthorized caller")
	ErrReentrantCall      = errors.New("reentrant call")
	ErrTransferFailed     = errors.New("asset transfer failed")
)

// TooManyForWithdrawError reports a claim above the remaining allocation.
// Available is the true remaining amount so the caller can retry.
type TooManyForWithdrawError struct {
	Available uint64
}

func (e *TooManyForWithdrawError) Error() string {
	return fmt.Sprintf("%s: available %d", ErrTooManyForWithdraw, e.Available)
}

func (e *TooManyForWithdrawError) Is(target error) bool {
	return target == ErrTooManyForWithdraw
}

// TransferFailedError reports that moving Asset did not succeed. The
// collaborator's own failure is not exposed.
type TransferFailedError struct {
	Asset Address
}

func (e *TransferFailedError) Error() string {
	return fmt.Sprintf("%s: asset %s", ErrTransferFailed, e.Asset)
}

func (e *TransferFailedError) Is(target error) bool {
	return target == ErrTransferFailed
}

// UnauthorizedCallerError reports an administrative call from an identity
// other than the owner.
type UnauthorizedCallerError struct {
	Caller Address
}

func (e *UnauthorizedCallerError) Error() string {
	return fmt.Sprintf("%s: %q", ErrUnauthorizedCaller, e.Caller)
}

func (e *UnauthorizedCallerError) Is(target error) bool {
	return target == ErrUnauthorizedCaller
}

// Class groups errors by how a caller should react to them.
type Class int

const (
	ClassUnknown Class = iota
	ClassConfiguration
	ClassStateConflict
	ClassQuota
	ClassAccess
	ClassReentrancy
	ClassCollaborator
)

func (c Class) String() string {
	switch c {
	case ClassConfiguration:
		return "configuration"
	case ClassStateConflict:
		return "state-conflict"
	case ClassQuota:
		return "quota"
	case ClassAccess:
		return "access"
	case ClassReentrancy:
		return "reentrancy"
	case ClassCollaborator:
		return "collaborator"
	default:
		return "unknown"
	}
}

var classes = []struct {
	err   error
	class Class
}{
	{ErrEmptyAddress, ClassConfiguration},
	{ErrEmptyBatch, ClassConfiguration},
	{ErrInvalidOwner, ClassConfiguration},
	{ErrStartInPast, ClassConfiguration},
	{ErrInvalidAmount, ClassConfiguration},
	{ErrInvalidDuration, ClassConfiguration},
	{ErrCampaignAlreadyFinalized, ClassStateConflict},
	{ErrCampaignNotAllowed, ClassStateConflict},
	{ErrCampaignNotFound, ClassStateConflict},
	{ErrAlreadyClaimed, ClassStateConflict},
	{ErrInvalidDistributionSum, ClassStateConflict},
	{ErrTooManyForWithdraw, ClassQuota},
	{ErrUnauthorizedCaller, ClassAccess},
	{ErrReentrantCall, ClassReentrancy},
	{ErrTransferFailed, ClassCollaborator},
}

// Classify returns the class of a ledger error, or ClassUnknown for
// infrastructure failures.
func Classify(err error) Class {
	for _, c := range classes {
		if errors.Is(err, c.err) {
			return c.class
		}
	}
	return ClassUnknown
}
