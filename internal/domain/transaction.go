package domain

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar-date form used everywhere in reports.
const DateLayout = "2006-01-02"

// AccountLookup resolves accounts by number. Satisfied by directory.Directory.
type AccountLookup interface {
	AccountFromNumber(ctx context.Context, number *int64) (*Account, error)
}

// Transaction is one normalized transaction belonging to a single account.
// All exported fields are fixed at construction time.
type Transaction struct {
	AccountName         string          // display name of the owning account
	Description         *string         // nil when the remote supplied none and no default applied
	Amount              decimal.Decimal // signed, 2-decimal currency amount
	RemoteAccountNumber *int64          // counterparty account number, nil for non-transfers
	Date                time.Time       // calendar date at UTC midnight, time of day discarded

	remoteOnce sync.Once
	remoteAcct *Account
	remoteErr  error
}

// RemoteAccount resolves the counterparty account through the given lookup.
// The result is memoized: the lookup runs at most once per transaction.
func (t *Transaction) RemoteAccount(ctx context.Context, lookup AccountLookup) (*Account, error) {
	t.remoteOnce.Do(func() {
		if t.RemoteAccountNumber == nil {
			return
		}
		t.remoteAcct, t.remoteErr = lookup.AccountFromNumber(ctx, t.RemoteAccountNumber)
	})
	return t.remoteAcct, t.remoteErr
}

// DateFromMillis converts a milliseconds-since-epoch timestamp to its UTC
// calendar date. Milliseconds are truncated, not rounded.
func DateFromMillis(ms int64) time.Time {
	ts := time.Unix(ms/1000, 0).UTC()
	return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
}

// Row is one enriched report row, the public schema written to the CSV
// attachment. RemoteAccountNumber is renamed to Payee here.
type Row struct {
	Name        string
	Description *string
	Amount      decimal.Decimal
	Payee       *int64
	Date        time.Time
	Note        *string
	Category    *string
}
