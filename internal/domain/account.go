package domain

import "time"

// Account is a ledger account keyed by its caller-chosen number.
// Balance and Version only ever change together: Version is the
// optimistic-concurrency stamp checked on every conditional update.
type Account struct {
	AccountNumber int64
	Balance       int64
	Version       int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
