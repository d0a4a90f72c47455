package pipeline

import (
	"context"
	"time"

	"github.com/johanbog/wallet-integration/internal/bankapi"
	"github.com/johanbog/wallet-integration/internal/config"
	"github.com/johanbog/wallet-integration/internal/domain"
)

// TransactionSource fetches raw transaction records for one account over a
// date range. Satisfied by bankapi.Client.
type TransactionSource interface {
	Transactions(ctx context.Context, accountKey string, from time.Time, to *time.Time) ([]bankapi.RawTransaction, error)
}

// AccountResolver is the directory surface the pipeline depends on.
// Satisfied by directory.Directory.
type AccountResolver interface {
	domain.AccountLookup
	AccountFromName(ctx context.Context, name string) (*domain.Account, error)
}

// Mailer delivers the enriched rows for one account group. Satisfied by
// mail.Sender. Addressing and transport are the mailer's concern.
type Mailer interface {
	Send(ctx context.Context, rows []domain.Row, accountGroup string) error
}

// GroupConfig supplies the configured member accounts and recipient for one
// account group. Satisfied by config.Config.
type GroupConfig interface {
	Group(name string) (config.AccountGroup, bool)
}
