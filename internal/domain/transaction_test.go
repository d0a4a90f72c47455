package domain

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingLookup struct {
	acct  *Account
	calls int
}

func (l *countingLookup) AccountFromNumber(ctx context.Context, number *int64) (*Account, error) {
	l.calls++
	return l.acct, nil
}

func TestDateFromMillis_Truncates(t *testing.T) {
	base := int64(1700000000000)

	exact := DateFromMillis(base)
	midSecond := DateFromMillis(base + 500)

	assert.True(t, exact.Equal(midSecond), "timestamps within the same second must yield the same date")
	assert.Equal(t, "2023-11-14", exact.Format(DateLayout))
	assert.Equal(t, time.UTC, exact.Location())

	h, m, s := exact.Clock()
	assert.Zero(t, h+m+s, "time of day must be discarded")
}

func TestTransactionRemoteAccount_Memoized(t *testing.T) {
	number := int64(12345)
	lookup := &countingLookup{acct: &Account{Key: "k", Name: "X", Number: &number}}
	tx := &Transaction{AccountName: "Checking", RemoteAccountNumber: &number}

	first, err := tx.RemoteAccount(context.Background(), lookup)
	require.NoError(t, err)
	second, err := tx.RemoteAccount(context.Background(), lookup)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, lookup.calls, "lookup must run at most once per transaction")
}

func TestTransactionRemoteAccount_NoCounterparty(t *testing.T) {
	lookup := &countingLookup{}
	tx := &Transaction{AccountName: "Checking"}

	acct, err := tx.RemoteAccount(context.Background(), lookup)
	require.NoError(t, err)

	assert.Nil(t, acct)
	assert.Zero(t, lookup.calls)
}
