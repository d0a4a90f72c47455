package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/johanbog/wallet-integration/internal/api/middleware"
	"github.com/johanbog/wallet-integration/internal/domain"
	"github.com/johanbog/wallet-integration/internal/jobs"
	"github.com/johanbog/wallet-integration/internal/pipeline"
)

// ReportsHandler accepts report-generation requests and queues them.
type ReportsHandler struct {
	publisher jobs.Publisher
	groups    pipeline.GroupConfig
	log       zerolog.Logger
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(publisher jobs.Publisher, groups pipeline.GroupConfig, log zerolog.Logger) *ReportsHandler {
	return &ReportsHandler{
		publisher: publisher,
		groups:    groups,
		log:       log,
	}
}

type createReportRequest struct {
	AccountGroup string `json:"account_group"`
	FromDate     string `json:"from_date"`
	ToDate       string `json:"to_date,omitempty"`
}

// CreateReport handles POST /api/reports. The report is generated and mailed
// asynchronously; the response carries the job ID to poll.
func (h *ReportsHandler) CreateReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.AccountGroup == "" {
		middleware.WriteError(w, http.StatusBadRequest, "account_group is required")
		return
	}
	if _, ok := h.groups.Group(req.AccountGroup); !ok {
		middleware.WriteError(w, http.StatusNotFound, "Unknown account group")
		return
	}

	from, err := time.Parse(domain.DateLayout, req.FromDate)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "from_date must be YYYY-MM-DD")
		return
	}

	var to *time.Time
	if req.ToDate != "" {
		parsed, err := time.Parse(domain.DateLayout, req.ToDate)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "to_date must be YYYY-MM-DD")
			return
		}
		to = &parsed
	}

	job := &jobs.ReportJob{
		AccountGroup: req.AccountGroup,
		FromDate:     from,
		ToDate:       to,
	}

	if err := h.publisher.PublishReport(ctx, job); err != nil {
		h.log.Error().Err(err).Str("group", req.AccountGroup).Msg("Failed to queue report job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to queue report job")
		return
	}

	h.log.Info().
		Str("job_id", job.JobID).
		Str("group", req.AccountGroup).
		Msg("Report job queued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id": job.JobID,
		"status": string(job.Status),
	})
}

// JobsHandler handles job-related endpoints.
type JobsHandler struct {
	store jobs.JobStore
	log   zerolog.Logger
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(store jobs.JobStore, log zerolog.Logger) *JobsHandler {
	return &JobsHandler{
		store: store,
		log:   log,
	}
}

// GetJob handles GET /api/jobs/{id}
func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request, jobID string) {
	ctx := r.Context()

	job, err := h.store.GetJob(ctx, jobID)
	if err != nil {
		h.log.Error().Err(err).Str("job_id", jobID).Msg("Failed to get job")
		middleware.WriteError(w, http.StatusNotFound, "Job not found")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, job)
}

// ListJobs handles GET /api/jobs
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	query := r.URL.Query()
	filter := jobs.JobFilter{
		AccountGroup: query.Get("account_group"),
		Status:       jobs.JobStatus(query.Get("status")),
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}

	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = offset
		}
	}

	jobsList, err := h.store.ListJobs(ctx, filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobsList,
		"count": len(jobsList),
	})
}
