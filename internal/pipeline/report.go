package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/johanbog/wallet-integration/internal/domain"
)

// ReportBuilder drives one report run for an account group: resolve the
// configured accounts, fetch and normalize their transactions, enrich the
// result, and hand it to the mailer. Everything runs sequentially; the first
// error aborts the whole run.
type ReportBuilder struct {
	resolver   AccountResolver
	source     TransactionSource
	normalizer *Normalizer
	enricher   *Enricher
	mailer     Mailer
	groups     GroupConfig
	log        zerolog.Logger
}

// NewReportBuilder wires a builder from its collaborators.
func NewReportBuilder(
	resolver AccountResolver,
	source TransactionSource,
	normalizer *Normalizer,
	enricher *Enricher,
	mailer Mailer,
	groups GroupConfig,
	log zerolog.Logger,
) *ReportBuilder {
	return &ReportBuilder{
		resolver:   resolver,
		source:     source,
		normalizer: normalizer,
		enricher:   enricher,
		mailer:     mailer,
		groups:     groups,
		log:        log,
	}
}

// BuildReport generates and delivers the report for one account group. A nil
// to date leaves the range end open. The returned rows are what was mailed;
// an empty result means nothing was fetched and no mail was sent.
func (b *ReportBuilder) BuildReport(ctx context.Context, accountGroup string, from time.Time, to *time.Time) ([]domain.Row, error) {
	group, ok := b.groups.Group(accountGroup)
	if !ok {
		return nil, &ConfigurationError{Reference: accountGroup, Detail: "unknown account group"}
	}

	// Resolve every configured name before fetching anything: a name the
	// account list does not contain is a configuration mistake and the run
	// must fail before any transaction fetch.
	accounts := make([]domain.Account, 0, len(group.Accounts))
	for _, name := range group.Accounts {
		acct, err := b.resolver.AccountFromName(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("BuildReport: resolving %q: %w", name, err)
		}
		if acct == nil {
			return nil, &ConfigurationError{Reference: name, Detail: "account not present in remote account list"}
		}
		accounts = append(accounts, *acct)
	}

	// Concatenation preserves configured account order, then each account's
	// own transaction order as returned by the remote.
	var all []*domain.Transaction
	for _, acct := range accounts {
		raws, err := b.source.Transactions(ctx, acct.Key, from, to)
		if err != nil {
			return nil, fmt.Errorf("BuildReport: fetching transactions for %q: %w", acct.Name, err)
		}
		if len(raws) == 0 {
			b.log.Debug().Str("account", acct.Name).Msg("No transactions in range")
			continue
		}

		txs, err := b.normalizer.NormalizeBatch(ctx, raws, acct)
		if err != nil {
			return nil, fmt.Errorf("BuildReport: normalizing transactions for %q: %w", acct.Name, err)
		}
		all = append(all, txs...)
	}

	if len(all) == 0 {
		b.log.Info().Str("group", accountGroup).Msg("No transactions for group, skipping report")
		return []domain.Row{}, nil
	}

	rows, err := b.enricher.Enrich(ctx, all)
	if err != nil {
		return nil, fmt.Errorf("BuildReport: %w", err)
	}

	if err := b.mailer.Send(ctx, rows, accountGroup); err != nil {
		return nil, fmt.Errorf("BuildReport: sending report for %q: %w", accountGroup, err)
	}

	b.log.Info().
		Str("group", accountGroup).
		Int("rows", len(rows)).
		Msg("Report sent")
	return rows, nil
}
