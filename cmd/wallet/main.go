package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/johanbog/wallet-integration/internal/bankapi"
	"github.com/johanbog/wallet-integration/internal/config"
	"github.com/johanbog/wallet-integration/internal/directory"
	"github.com/johanbog/wallet-integration/internal/domain"
	"github.com/johanbog/wallet-integration/internal/logger"
	"github.com/johanbog/wallet-integration/internal/mail"
	"github.com/johanbog/wallet-integration/internal/pipeline"
)

func main() {
	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "send":
		runSend(log)
	case "preview":
		runPreview(log)
	case "accounts":
		runAccounts(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Wallet Integration CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  wallet <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  send      Build an account group report and mail it")
	fmt.Println("  preview   Build a report and print the CSV without mailing")
	fmt.Println("  accounts  List the resolved accounts")
	fmt.Println("  help      Show this help message")
	fmt.Println("\nRun 'wallet <command> -h' for more information on a command.")
}

type reportFlags struct {
	configPath string
	group      string
	from       time.Time
	to         *time.Time
}

func parseReportFlags(name string, log zerolog.Logger) reportFlags {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath(), "Path to the wallet config file")
	group := fs.String("group", "", "Account group to report on")
	fromStr := fs.String("from", "", "Range start (YYYY-MM-DD)")
	toStr := fs.String("to", "", "Range end (YYYY-MM-DD), defaults to now")
	fs.Parse(os.Args[2:])

	if *group == "" || *fromStr == "" {
		log.Fatal().Msgf("Usage: wallet %s -group NAME -from YYYY-MM-DD [-to YYYY-MM-DD]", name)
	}

	from, err := time.Parse(domain.DateLayout, *fromStr)
	if err != nil {
		log.Fatal().Err(err).Msg("Error: -from must be YYYY-MM-DD")
	}

	var to *time.Time
	if *toStr != "" {
		parsed, err := time.Parse(domain.DateLayout, *toStr)
		if err != nil {
			log.Fatal().Err(err).Msg("Error: -to must be YYYY-MM-DD")
		}
		to = &parsed
	}

	return reportFlags{configPath: *configPath, group: *group, from: from, to: to}
}

func defaultConfigPath() string {
	if path := os.Getenv("WALLET_CONFIG"); path != "" {
		return path
	}
	return "wallet.yaml"
}

// newBuilder wires the full pipeline against the given mailer.
func newBuilder(cfg *config.Config, mailer pipeline.Mailer, log zerolog.Logger) *pipeline.ReportBuilder {
	client := bankapi.NewClient(cfg.API, log)
	dir := directory.New(client, log)
	normalizer := pipeline.NewNormalizer(dir)
	enricher := pipeline.NewEnricher(dir, cfg.IgnoreSet(), cfg.Report.AppendAccountName)
	return pipeline.NewReportBuilder(dir, client, normalizer, enricher, mailer, cfg, log)
}

func runSend(log zerolog.Logger) {
	flags := parseReportFlags("send", log)

	cfg, err := config.Load(flags.configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	builder := newBuilder(cfg, mail.NewSender(cfg, log), log)

	log.Info().Str("group", flags.group).Msg("Building report")

	rows, err := builder.BuildReport(ctx, flags.group, flags.from, flags.to)
	if err != nil {
		log.Fatal().Err(err).Msg("Report run failed")
	}

	if len(rows) == 0 {
		fmt.Println("No transactions in range, nothing sent.")
		return
	}
	fmt.Printf("Report with %d transactions sent.\n", len(rows))
}

// nopMailer swallows delivery so preview runs never send mail.
type nopMailer struct{}

func (nopMailer) Send(ctx context.Context, rows []domain.Row, accountGroup string) error {
	return nil
}

func runPreview(log zerolog.Logger) {
	flags := parseReportFlags("preview", log)

	cfg, err := config.Load(flags.configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	builder := newBuilder(cfg, nopMailer{}, log)

	rows, err := builder.BuildReport(ctx, flags.group, flags.from, flags.to)
	if err != nil {
		log.Fatal().Err(err).Msg("Report run failed")
	}

	if err := mail.WriteCSV(os.Stdout, rows); err != nil {
		log.Fatal().Err(err).Msg("Failed to write CSV")
	}
}

func runAccounts(log zerolog.Logger) {
	fs := flag.NewFlagSet("accounts", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath(), "Path to the wallet config file")
	fs.Parse(os.Args[2:])

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	client := bankapi.NewClient(cfg.API, log)
	dir := directory.New(client, log)

	accounts, err := dir.Accounts(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to fetch accounts")
	}

	for _, acct := range accounts {
		number := "-"
		if acct.Number != nil {
			number = fmt.Sprintf("%d", *acct.Number)
		}
		fmt.Printf("%-14s %s\n", number, acct.Name)
	}
}
