package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Account is one bank account as resolved from the remote accounts listing.
// Accounts are constructed once per fetch and never mutated afterwards.
type Account struct {
	Key    string // opaque identifier the remote API uses to address the account
	Name   string // display name, unique within one account set
	Number *int64 // numeric account number; nil for accounts without one
}

// String returns the display name. Transactions reference counterparty
// accounts by this form in generated descriptions.
func (a Account) String() string {
	return a.Name
}

// AccountCorrection remaps a known bad raw account identifier to its real
// number and display name. Some credit card accounts arrive with an opaque
// string token in the accountNumber field instead of a number.
type AccountCorrection struct {
	RawToken string
	Number   int64
	Name     string
}

// accountCorrections is the table of known identifier corrections. Extend it
// here when the remote starts emitting a new broken token.
var accountCorrections = []AccountCorrection{
	{RawToken: "K1955118490", Number: 42024603940, Name: "Johannes Credit Card"},
}

// NewAccount builds an Account from raw listing fields. accountNumber may be
// a JSON number or a string; string tokens are matched against the correction
// table first, then parsed as a plain number, and left nil when neither works.
func NewAccount(key, name string, accountNumber interface{}) (Account, error) {
	acct := Account{Key: key, Name: name}

	switch v := accountNumber.(type) {
	case nil:
		// account without a number, e.g. some credit card products
	case string:
		if corr, ok := lookupCorrection(v); ok {
			n := corr.Number
			acct.Number = &n
			acct.Name = corr.Name
			break
		}
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			// unrecognized token, keep the account but without a number
			break
		}
		acct.Number = &n
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return Account{}, fmt.Errorf("NewAccount: accountNumber %q: %w", v.String(), err)
		}
		acct.Number = &n
	case float64:
		n := int64(v)
		acct.Number = &n
	default:
		return Account{}, fmt.Errorf("NewAccount: accountNumber has type %T, want string or number", accountNumber)
	}

	return acct, nil
}

func lookupCorrection(token string) (AccountCorrection, bool) {
	for _, corr := range accountCorrections {
		if corr.RawToken == token {
			return corr, true
		}
	}
	return AccountCorrection{}, false
}
