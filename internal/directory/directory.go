// Package directory maintains the cached account list and resolves accounts
// by number or display name.
package directory

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/johanbog/wallet-integration/internal/bankapi"
	"github.com/johanbog/wallet-integration/internal/domain"
)

// AccountSource fetches the raw account listing from the banking API.
type AccountSource interface {
	Accounts(ctx context.Context) ([]bankapi.RawAccount, error)
}

// Directory caches the account list for its own lifetime. The remote listing
// is fetched once, on first use; Refresh discards the cache and refetches.
// Safe for concurrent readers.
type Directory struct {
	source AccountSource
	log    zerolog.Logger

	mu       sync.Mutex
	accounts []domain.Account
	loaded   bool
}

// New creates a directory backed by the given account source. Nothing is
// fetched until the first lookup.
func New(source AccountSource, log zerolog.Logger) *Directory {
	return &Directory{source: source, log: log}
}

// Accounts returns the cached account list, fetching it on first call.
// Raw records without a display name are discarded.
func (d *Directory) Accounts(ctx context.Context) ([]domain.Account, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.accountsLocked(ctx)
}

// Refresh drops the cached list and fetches a fresh one.
func (d *Directory) Refresh(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.loaded = false
	d.accounts = nil
	_, err := d.accountsLocked(ctx)
	return err
}

func (d *Directory) accountsLocked(ctx context.Context) ([]domain.Account, error) {
	if d.loaded {
		return d.accounts, nil
	}

	raws, err := d.source.Accounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("Accounts: %w", err)
	}

	accounts := make([]domain.Account, 0, len(raws))
	for _, raw := range raws {
		if raw.Name == "" {
			d.log.Debug().Str("key", raw.Key).Msg("Skipping unnamed account")
			continue
		}
		acct, err := domain.NewAccount(raw.Key, raw.Name, raw.AccountNumber)
		if err != nil {
			return nil, fmt.Errorf("Accounts: account %q: %w", raw.Name, err)
		}
		accounts = append(accounts, acct)
	}

	d.accounts = accounts
	d.loaded = true
	d.log.Info().Int("count", len(accounts)).Msg("Account list loaded")
	return d.accounts, nil
}

// AccountFromNumber returns the first cached account with the given number,
// or nil when number is nil or no account matches.
func (d *Directory) AccountFromNumber(ctx context.Context, number *int64) (*domain.Account, error) {
	if number == nil {
		return nil, nil
	}

	accounts, err := d.Accounts(ctx)
	if err != nil {
		return nil, err
	}

	for _, acct := range accounts {
		if acct.Number != nil && *acct.Number == *number {
			found := acct
			return &found, nil
		}
	}
	return nil, nil
}

// AccountFromName returns the first cached account with the given display
// name, or nil when no account matches. Callers resolving configured group
// members treat nil as a configuration error.
func (d *Directory) AccountFromName(ctx context.Context, name string) (*domain.Account, error) {
	accounts, err := d.Accounts(ctx)
	if err != nil {
		return nil, err
	}

	for _, acct := range accounts {
		if acct.Name == name {
			found := acct
			return &found, nil
		}
	}
	return nil, nil
}
