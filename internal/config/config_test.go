package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wallet.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const validConfig = `
api:
  base_url: https://bank.example.com/api
  token: file-token
  accept: application/vnd.bank.v2+json
smtp:
  host: smtp.mail.yahoo.com
  from: sender@example.com
  password: file-password
ignore_accounts:
  - Johannes Credit Card
groups:
  household:
    mail: family@example.com
    accounts:
      - Checking
      - Savings
`

func TestLoad(t *testing.T) {
	path := writeConfig(t, validConfig)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://bank.example.com/api", cfg.API.BaseURL)
	assert.Equal(t, "file-token", cfg.API.Token)
	assert.Equal(t, "application/vnd.bank.v2+json", cfg.API.Accept)

	// defaults
	assert.Equal(t, 587, cfg.SMTP.Port)
	assert.True(t, cfg.Report.AppendAccountName)
	assert.Equal(t, "send to wallet", cfg.Report.Subject)

	group, ok := cfg.Group("household")
	require.True(t, ok)
	assert.Equal(t, "family@example.com", group.Mail)
	assert.Equal(t, []string{"Checking", "Savings"}, group.Accounts)

	assert.True(t, cfg.IgnoreSet()["Johannes Credit Card"])
	assert.False(t, cfg.IgnoreSet()["Checking"])
}

func TestLoad_EnvOverridesSecrets(t *testing.T) {
	path := writeConfig(t, validConfig)

	t.Setenv(EnvAPIToken, "env-token")
	t.Setenv(EnvSMTPPassword, "env-password")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "env-token", cfg.API.Token)
	assert.Equal(t, "env-password", cfg.SMTP.Password)
}

func TestLoad_DefaultsCanBeOverridden(t *testing.T) {
	path := writeConfig(t, `
api:
  base_url: https://bank.example.com/api
smtp:
  port: 2525
report:
  append_account_name: false
  subject: weekly wallet
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2525, cfg.SMTP.Port)
	assert.False(t, cfg.Report.AppendAccountName)
	assert.Equal(t, "weekly wallet", cfg.Report.Subject)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "missing base url",
			content: "smtp:\n  host: smtp.example.com\n",
		},
		{
			name: "group without recipient",
			content: `
api:
  base_url: https://bank.example.com/api
groups:
  household:
    accounts: [Checking]
`,
		},
		{
			name: "group without accounts",
			content: `
api:
  base_url: https://bank.example.com/api
groups:
  household:
    mail: family@example.com
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
