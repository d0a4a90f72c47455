package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/johanbog/wallet-integration/internal/bankapi"
	"github.com/johanbog/wallet-integration/internal/domain"
)

// Normalizer converts raw transaction records into canonical Transactions.
// Counterparty accounts are resolved through the lookup when a default
// description has to be generated.
type Normalizer struct {
	lookup domain.AccountLookup
}

// NewNormalizer creates a normalizer resolving counterparties via lookup.
func NewNormalizer(lookup domain.AccountLookup) *Normalizer {
	return &Normalizer{lookup: lookup}
}

// NormalizeBatch converts all raw records fetched for one account. One
// malformed record fails the whole batch; there are no partial results.
func (n *Normalizer) NormalizeBatch(ctx context.Context, raws []bankapi.RawTransaction, account domain.Account) ([]*domain.Transaction, error) {
	txs := make([]*domain.Transaction, 0, len(raws))
	for i, raw := range raws {
		tx, err := n.Normalize(ctx, raw, account)
		if err != nil {
			return nil, &DataQualityError{Index: i, Err: err}
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

// Normalize converts one raw record into a Transaction owned by account.
// The raw date is milliseconds since epoch and is truncated to a calendar
// date. A missing description is defaulted to a transfer reference when a
// counterparty account number is present, and left nil otherwise.
func (n *Normalizer) Normalize(ctx context.Context, raw bankapi.RawTransaction, account domain.Account) (*domain.Transaction, error) {
	millis, err := getInt64Field(raw, "date")
	if err != nil {
		return nil, err
	}

	amount, err := getDecimalField(raw, "amount")
	if err != nil {
		return nil, err
	}

	description, err := getOptionalStringField(raw, "description")
	if err != nil {
		return nil, err
	}

	remoteNumber, err := getOptionalInt64Field(raw, "remoteAccountNumber")
	if err != nil {
		return nil, err
	}

	if description == nil && remoteNumber != nil {
		generated, err := n.defaultDescription(ctx, remoteNumber)
		if err != nil {
			return nil, err
		}
		description = &generated
	}

	return &domain.Transaction{
		AccountName:         account.Name,
		Description:         description,
		Amount:              amount,
		RemoteAccountNumber: remoteNumber,
		Date:                domain.DateFromMillis(millis),
	}, nil
}

// defaultDescription references the resolved counterparty by name, falling
// back to the raw number when the directory does not know it.
func (n *Normalizer) defaultDescription(ctx context.Context, remoteNumber *int64) (string, error) {
	acct, err := n.lookup.AccountFromNumber(ctx, remoteNumber)
	if err != nil {
		return "", fmt.Errorf("defaultDescription: %w", err)
	}
	if acct != nil {
		return "Transfer to/from " + acct.Name, nil
	}
	return "Transfer to/from " + strconv.FormatInt(*remoteNumber, 10), nil
}

func getInt64Field(m bankapi.RawTransaction, key string) (int64, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return 0, fmt.Errorf("missing required field %q", key)
	}
	switch val := v.(type) {
	case json.Number:
		n, err := val.Int64()
		if err != nil {
			return 0, fmt.Errorf("field %q is not an integer: %w", key, err)
		}
		return n, nil
	case float64:
		return int64(val), nil
	default:
		return 0, fmt.Errorf("field %q has type %T, want number", key, v)
	}
}

func getOptionalInt64Field(m bankapi.RawTransaction, key string) (*int64, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, nil
	}
	n, err := getInt64Field(m, key)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func getOptionalStringField(m bankapi.RawTransaction, key string) (*string, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, nil
	}
	switch val := v.(type) {
	case string:
		s := val
		return &s, nil
	default:
		return nil, fmt.Errorf("field %q has type %T, want string or null", key, v)
	}
}

// getDecimalField parses a monetary amount without going through float64, so
// the exact JSON literal is preserved.
func getDecimalField(m bankapi.RawTransaction, key string) (decimal.Decimal, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return decimal.Decimal{}, fmt.Errorf("missing required field %q", key)
	}
	switch val := v.(type) {
	case json.Number:
		d, err := decimal.NewFromString(val.String())
		if err != nil {
			return decimal.Decimal{}, fmt.Errorf("field %q is not a decimal: %w", key, err)
		}
		return d, nil
	case float64:
		return decimal.NewFromFloat(val), nil
	default:
		return decimal.Decimal{}, fmt.Errorf("field %q has type %T, want number", key, v)
	}
}
