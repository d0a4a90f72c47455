package directory

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johanbog/wallet-integration/internal/bankapi"
)

// fakeSource returns a fixed listing and counts fetches.
type fakeSource struct {
	accounts []bankapi.RawAccount
	err      error
	calls    int
}

func (s *fakeSource) Accounts(ctx context.Context) ([]bankapi.RawAccount, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.accounts, nil
}

func testListing() []bankapi.RawAccount {
	return []bankapi.RawAccount{
		{AccountNumber: json.Number("12345678901"), Name: "Checking", Key: "key-1"},
		{AccountNumber: json.Number("98765432109"), Name: "Savings", Key: "key-2"},
		{AccountNumber: "K1955118490", Name: "Credit Card Raw", Key: "key-3"},
		{AccountNumber: json.Number("11111111111"), Name: "", Key: "key-4"}, // unnamed, dropped
	}
}

func TestDirectoryAccounts(t *testing.T) {
	source := &fakeSource{accounts: testListing()}
	dir := New(source, zerolog.Nop())

	accounts, err := dir.Accounts(context.Background())
	require.NoError(t, err)

	require.Len(t, accounts, 3, "unnamed accounts must be dropped")
	assert.Equal(t, "Checking", accounts[0].Name)
	assert.Equal(t, "Savings", accounts[1].Name)

	// identifier correction applied during construction
	assert.Equal(t, "Johannes Credit Card", accounts[2].Name)
	require.NotNil(t, accounts[2].Number)
	assert.Equal(t, int64(42024603940), *accounts[2].Number)
}

func TestDirectoryAccounts_FetchedOnce(t *testing.T) {
	source := &fakeSource{accounts: testListing()}
	dir := New(source, zerolog.Nop())
	ctx := context.Background()

	_, err := dir.Accounts(ctx)
	require.NoError(t, err)
	_, err = dir.Accounts(ctx)
	require.NoError(t, err)
	_, err = dir.AccountFromName(ctx, "Checking")
	require.NoError(t, err)

	assert.Equal(t, 1, source.calls, "listing must be fetched exactly once")
}

func TestDirectoryRefresh(t *testing.T) {
	source := &fakeSource{accounts: testListing()}
	dir := New(source, zerolog.Nop())
	ctx := context.Background()

	_, err := dir.Accounts(ctx)
	require.NoError(t, err)

	require.NoError(t, dir.Refresh(ctx))
	assert.Equal(t, 2, source.calls)
}

func TestDirectory_ResolutionSymmetry(t *testing.T) {
	source := &fakeSource{accounts: testListing()}
	dir := New(source, zerolog.Nop())
	ctx := context.Background()

	accounts, err := dir.Accounts(ctx)
	require.NoError(t, err)

	for _, acct := range accounts {
		byName, err := dir.AccountFromName(ctx, acct.Name)
		require.NoError(t, err)
		require.NotNil(t, byName)
		assert.Equal(t, acct, *byName)

		if acct.Number != nil {
			byNumber, err := dir.AccountFromNumber(ctx, acct.Number)
			require.NoError(t, err)
			require.NotNil(t, byNumber)
			assert.Equal(t, acct, *byNumber)
		}
	}
}

func TestDirectoryAccountFromNumber_NilAndMisses(t *testing.T) {
	source := &fakeSource{accounts: testListing()}
	dir := New(source, zerolog.Nop())
	ctx := context.Background()

	acct, err := dir.AccountFromNumber(ctx, nil)
	require.NoError(t, err)
	assert.Nil(t, acct)
	assert.Zero(t, source.calls, "nil number must not trigger a fetch")

	unknown := int64(999)
	acct, err = dir.AccountFromNumber(ctx, &unknown)
	require.NoError(t, err)
	assert.Nil(t, acct)
}

func TestDirectoryAccountFromName_Miss(t *testing.T) {
	source := &fakeSource{accounts: testListing()}
	dir := New(source, zerolog.Nop())

	acct, err := dir.AccountFromName(context.Background(), "No Such Account")
	require.NoError(t, err)
	assert.Nil(t, acct)
}

func TestDirectory_FetchErrorNotCached(t *testing.T) {
	source := &fakeSource{err: errors.New("boom")}
	dir := New(source, zerolog.Nop())
	ctx := context.Background()

	_, err := dir.Accounts(ctx)
	require.Error(t, err)

	// a later call retries the fetch instead of serving an empty cache
	source.err = nil
	source.accounts = testListing()
	accounts, err := dir.Accounts(ctx)
	require.NoError(t, err)
	assert.Len(t, accounts, 3)
	assert.Equal(t, 2, source.calls)
}
