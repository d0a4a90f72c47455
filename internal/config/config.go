// Package config loads the wallet configuration from a YAML file.
// Secrets (API token, SMTP password) are taken from the environment when the
// corresponding variables are set, so they can be kept out of the file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Environment variables that override file values when set.
const (
	EnvAPIToken     = "WALLET_API_TOKEN"
	EnvSMTPUser     = "WALLET_SMTP_USER"
	EnvSMTPPassword = "WALLET_SMTP_PASSWORD"
)

// Config is the root configuration for both the CLI and the server.
type Config struct {
	API            APIConfig               `yaml:"api"`
	SMTP           SMTPConfig              `yaml:"smtp"`
	Report         ReportConfig            `yaml:"report"`
	IgnoreAccounts []string                `yaml:"ignore_accounts"`
	Groups         map[string]AccountGroup `yaml:"groups"`
}

// APIConfig describes the banking data source.
type APIConfig struct {
	BaseURL string `yaml:"base_url"`
	Token   string `yaml:"token"`
	Accept  string `yaml:"accept"` // API version / content-type accept header
}

// SMTPConfig describes the outgoing mail transport.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	From     string `yaml:"from"`
	Password string `yaml:"password"`
}

// ReportConfig holds report formatting options.
type ReportConfig struct {
	// AppendAccountName controls whether the owning account's display name is
	// appended in parentheses to each note. Useful when one report spans
	// several accounts.
	AppendAccountName bool   `yaml:"append_account_name"`
	Subject           string `yaml:"subject"`
}

// AccountGroup is one configured report target: who receives it and which
// accounts, in order, it covers.
type AccountGroup struct {
	Mail     string   `yaml:"mail"`
	Accounts []string `yaml:"accounts"`
}

// Load reads and validates the configuration at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("Load: reading %s: %w", path, err)
	}

	// Defaults; absent YAML keys leave these untouched.
	cfg := &Config{
		SMTP:   SMTPConfig{Port: 587},
		Report: ReportConfig{AppendAccountName: true, Subject: "send to wallet"},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("Load: parsing %s: %w", path, err)
	}

	if token := os.Getenv(EnvAPIToken); token != "" {
		cfg.API.Token = token
	}
	if user := os.Getenv(EnvSMTPUser); user != "" {
		cfg.SMTP.From = user
	}
	if password := os.Getenv(EnvSMTPPassword); password != "" {
		cfg.SMTP.Password = password
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("Load: %s: %w", path, err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	for name, group := range c.Groups {
		if group.Mail == "" {
			return fmt.Errorf("group %q has no mail recipient", name)
		}
		if len(group.Accounts) == 0 {
			return fmt.Errorf("group %q has no accounts", name)
		}
	}
	return nil
}

// Group returns the named account group.
func (c *Config) Group(name string) (AccountGroup, bool) {
	group, ok := c.Groups[name]
	return group, ok
}

// IgnoreSet returns the ignore-list of account display names as a set. A
// counterparty in this set is classified as a payment rather than a transfer.
func (c *Config) IgnoreSet() map[string]bool {
	set := make(map[string]bool, len(c.IgnoreAccounts))
	for _, name := range c.IgnoreAccounts {
		set[name] = true
	}
	return set
}
