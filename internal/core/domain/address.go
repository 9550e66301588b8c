package domain

import "strings"

// Address identifies an account known to the ledger: the owner, a
// participant, the custody account or an asset. The zero value is the
// empty identity.
type Address string

// NewAddress trims surrounding whitespace from s.
func NewAddress(s string) Address {
	return Address(strings.TrimSpace(s))
}

// IsZero reports whether a is the empty identity.
func (a Address) IsZero() bool {
	return a == ""
}

func (a Address) String() string {
	return string(a)
}
