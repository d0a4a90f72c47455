package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAccount(t *testing.T) {
	tests := []struct {
		name          string
		accountNumber interface{}
		wantNumber    *int64
		wantName      string
		wantErr       bool
	}{
		{
			name:          "json number",
			accountNumber: json.Number("12345678901"),
			wantNumber:    int64Ptr(12345678901),
			wantName:      "Checking",
		},
		{
			name:          "numeric string",
			accountNumber: "98765432109",
			wantNumber:    int64Ptr(98765432109),
			wantName:      "Checking",
		},
		{
			name:          "float from plain json decoding",
			accountNumber: float64(5550001),
			wantNumber:    int64Ptr(5550001),
			wantName:      "Checking",
		},
		{
			name:          "missing number",
			accountNumber: nil,
			wantNumber:    nil,
			wantName:      "Checking",
		},
		{
			name:          "unrecognized string token",
			accountNumber: "XYZ123",
			wantNumber:    nil,
			wantName:      "Checking",
		},
		{
			name:          "non-integer json number",
			accountNumber: json.Number("12.5"),
			wantErr:       true,
		},
		{
			name:          "unsupported type",
			accountNumber: []string{"nope"},
			wantErr:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acct, err := NewAccount("key-1", "Checking", tt.accountNumber)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "key-1", acct.Key)
			assert.Equal(t, tt.wantName, acct.Name)
			assert.Equal(t, tt.wantNumber, acct.Number)
		})
	}
}

func TestNewAccount_IdentifierCorrection(t *testing.T) {
	// The known legacy token must always map to the fixed number and name,
	// regardless of what the raw record claims the name is.
	acct, err := NewAccount("cc-key", "Some Raw Name", "K1955118490")
	require.NoError(t, err)

	require.NotNil(t, acct.Number)
	assert.Equal(t, int64(42024603940), *acct.Number)
	assert.Equal(t, "Johannes Credit Card", acct.Name)
	assert.Equal(t, "cc-key", acct.Key)
}

func TestAccountString(t *testing.T) {
	acct := Account{Key: "k", Name: "Savings"}
	assert.Equal(t, "Savings", acct.String())
}

func int64Ptr(n int64) *int64 {
	return &n
}
