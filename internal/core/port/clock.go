package port

import "time"

// Clock supplies the current time. The ledger trusts it and never moves it.
type Clock interface {
	Now() time.Time
}
