package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/johanbog/wallet-integration/internal/domain"
)

const (
	transferPrefix = "Transfer t/f "
	paymentPrefix  = "Payment t/f "

	// CategoryTransfer tags rows whose note marks a transfer between known
	// accounts. Payment rows are deliberately left uncategorized.
	CategoryTransfer = "Transfer"
)

// Enricher turns normalized transactions into report rows: it derives the
// transfer/payment note, tags the Transfer category, and renames the
// counterparty number to payee.
type Enricher struct {
	lookup domain.AccountLookup
	ignore map[string]bool // counterparty names classified as payments, not transfers

	// appendAccountName appends the owning account's display name to each
	// note, which disambiguates rows when a report spans several accounts.
	appendAccountName bool
}

// NewEnricher creates an enricher. ignore holds the account display names to
// classify as payments.
func NewEnricher(lookup domain.AccountLookup, ignore map[string]bool, appendAccountName bool) *Enricher {
	return &Enricher{lookup: lookup, ignore: ignore, appendAccountName: appendAccountName}
}

// Enrich produces one report row per transaction, preserving order. An empty
// input returns an empty result without touching the account lookup.
func (e *Enricher) Enrich(ctx context.Context, txs []*domain.Transaction) ([]domain.Row, error) {
	if len(txs) == 0 {
		return []domain.Row{}, nil
	}

	rows := make([]domain.Row, 0, len(txs))
	for _, tx := range txs {
		row, err := e.enrichOne(ctx, tx)
		if err != nil {
			return nil, fmt.Errorf("Enrich: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (e *Enricher) enrichOne(ctx context.Context, tx *domain.Transaction) (domain.Row, error) {
	label, err := e.transferLabel(ctx, tx)
	if err != nil {
		return domain.Row{}, err
	}

	note := label
	if note == nil && tx.Description != nil {
		d := *tx.Description
		note = &d
	}
	if note != nil && e.appendAccountName {
		suffixed := *note + " (" + tx.AccountName + ")"
		note = &suffixed
	}

	var category *string
	if note != nil && strings.HasPrefix(*note, transferPrefix) {
		c := CategoryTransfer
		category = &c
	}

	return domain.Row{
		Name:        tx.AccountName,
		Description: tx.Description,
		Amount:      tx.Amount,
		Payee:       tx.RemoteAccountNumber,
		Date:        tx.Date,
		Note:        note,
		Category:    category,
	}, nil
}

// transferLabel classifies the counterparty: nil when there is none or it is
// unknown, a payment label when its name is in the ignore set, a transfer
// label otherwise.
func (e *Enricher) transferLabel(ctx context.Context, tx *domain.Transaction) (*string, error) {
	if tx.RemoteAccountNumber == nil {
		return nil, nil
	}

	acct, err := tx.RemoteAccount(ctx, e.lookup)
	if err != nil {
		return nil, err
	}
	if acct == nil {
		return nil, nil
	}

	label := transferPrefix + acct.Name
	if e.ignore[acct.Name] {
		label = paymentPrefix + acct.Name
	}
	return &label, nil
}
