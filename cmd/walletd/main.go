package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/johanbog/wallet-integration/internal/api/handlers"
	"github.com/johanbog/wallet-integration/internal/api/middleware"
	"github.com/johanbog/wallet-integration/internal/bankapi"
	"github.com/johanbog/wallet-integration/internal/config"
	"github.com/johanbog/wallet-integration/internal/directory"
	"github.com/johanbog/wallet-integration/internal/jobs"
	"github.com/johanbog/wallet-integration/internal/jobs/inmemory"
	"github.com/johanbog/wallet-integration/internal/logger"
	"github.com/johanbog/wallet-integration/internal/mail"
	"github.com/johanbog/wallet-integration/internal/pipeline"
)

func main() {
	var (
		port       = flag.String("port", "8080", "HTTP server port")
		configPath = flag.String("config", defaultConfigPath(), "Path to the wallet config file")
	)
	flag.Parse()

	log := logger.New()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	// Wire the report pipeline. The directory caches the account list for
	// the process lifetime; the single queue worker is its only writer.
	client := bankapi.NewClient(cfg.API, log)
	dir := directory.New(client, log)
	normalizer := pipeline.NewNormalizer(dir)
	enricher := pipeline.NewEnricher(dir, cfg.IgnoreSet(), cfg.Report.AppendAccountName)
	sender := mail.NewSender(cfg, log)
	builder := pipeline.NewReportBuilder(dir, client, normalizer, enricher, sender, cfg, log)

	// Initialize job infrastructure
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(16, jobStore)

	workerCtx, cancelWorker := context.WithCancel(context.Background())
	defer cancelWorker()
	workerCtx = logger.WithContext(workerCtx, log)

	jobHandler := func(ctx context.Context, job jobs.Job) error {
		reportJob, ok := job.(*jobs.ReportJob)
		if !ok {
			return fmt.Errorf("unexpected job type: %T", job)
		}

		log.Info().
			Str("job_id", reportJob.JobID).
			Str("group", reportJob.AccountGroup).
			Msg("Processing report job")

		rows, err := builder.BuildReport(ctx, reportJob.AccountGroup, reportJob.FromDate, reportJob.ToDate)
		if err != nil {
			log.Error().
				Err(err).
				Str("job_id", reportJob.JobID).
				Str("group", reportJob.AccountGroup).
				Msg("Report run failed")
			return err
		}
		reportJob.Rows = len(rows)

		log.Info().
			Str("job_id", reportJob.JobID).
			Str("group", reportJob.AccountGroup).
			Int("rows", len(rows)).
			Msg("Report run completed")
		return nil
	}

	go func() {
		log.Info().Msg("Starting report worker")
		if err := jobQueue.Start(workerCtx, jobHandler); err != nil {
			log.Error().Err(err).Msg("Report worker stopped with error")
		}
	}()

	// Initialize handlers
	reportsHandler := handlers.NewReportsHandler(jobQueue, cfg, log)
	jobsHandler := handlers.NewJobsHandler(jobStore, log)

	mux := http.NewServeMux()

	mux.HandleFunc("/api/reports", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			reportsHandler.CreateReport(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/jobs", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jobsHandler.ListJobs(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/jobs/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jobID := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
			if jobID == "" {
				middleware.WriteError(w, http.StatusBadRequest, "Job ID is required")
				return
			}
			jobsHandler.GetJob(w, r, jobID)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(mux),
		),
	)

	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", *port).Msg("Starting walletd")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	cancelWorker()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}

	log.Info().Msg("Server exited")
}

func defaultConfigPath() string {
	if path := os.Getenv("WALLET_CONFIG"); path != "" {
		return path
	}
	return "wallet.yaml"
}
