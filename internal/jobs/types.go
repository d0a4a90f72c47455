package jobs

import (
	"context"
	"time"
)

// JobType represents the type of job to be executed.
type JobType string

const (
	// JobTypeBuildReport represents one report-generation run for an
	// account group.
	JobTypeBuildReport JobType = "build_report"
)

// JobStatus represents the current status of a job.
type JobStatus string

const (
	// JobStatusPending indicates the job is waiting to be processed.
	JobStatusPending JobStatus = "pending"
	// JobStatusRunning indicates the job is currently being processed.
	JobStatusRunning JobStatus = "running"
	// JobStatusCompleted indicates the job completed successfully.
	JobStatusCompleted JobStatus = "completed"
	// JobStatusFailed indicates the job failed.
	JobStatusFailed JobStatus = "failed"
)

// ReportJob is one queued report-generation run. Jobs are never retried
// automatically: a completed run has already mailed the report, and a failed
// run needs an operator to look at the error before re-submitting.
type ReportJob struct {
	// JobID is the unique identifier for this job.
	JobID string `json:"job_id"`

	// AccountGroup is the configured group the report covers.
	AccountGroup string `json:"account_group"`

	// FromDate is the inclusive start of the transaction date range.
	FromDate time.Time `json:"from_date"`

	// ToDate is the optional end of the range; nil leaves it open.
	ToDate *time.Time `json:"to_date,omitempty"`

	// Status is the current status of the job.
	Status JobStatus `json:"status"`

	// CreatedAt is when the job was created.
	CreatedAt time.Time `json:"created_at"`

	// StartedAt is when the job started processing.
	StartedAt *time.Time `json:"started_at,omitempty"`

	// CompletedAt is when the job completed (success or failure).
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Error contains error details if the job failed.
	Error string `json:"error,omitempty"`

	// Rows is the number of report rows mailed by a completed job.
	Rows int `json:"rows"`
}

// Job is a generic interface for all job types.
type Job interface {
	// GetID returns the unique job identifier.
	GetID() string

	// GetType returns the job type.
	GetType() JobType

	// GetStatus returns the current job status.
	GetStatus() JobStatus
}

// GetID implements the Job interface.
func (j *ReportJob) GetID() string {
	return j.JobID
}

// GetType implements the Job interface.
func (j *ReportJob) GetType() JobType {
	return JobTypeBuildReport
}

// GetStatus implements the Job interface.
func (j *ReportJob) GetStatus() JobStatus {
	return j.Status
}

// Publisher defines the interface for publishing jobs to a queue.
type Publisher interface {
	// PublishReport publishes a report-generation job.
	PublishReport(ctx context.Context, job *ReportJob) error

	// Close closes the publisher and releases resources.
	Close() error
}

// Consumer defines the interface for consuming jobs from a queue.
type Consumer interface {
	// Start begins consuming jobs from the queue.
	// The handler function is called for each job received.
	Start(ctx context.Context, handler JobHandler) error

	// Stop stops consuming jobs and waits for in-flight jobs to complete.
	Stop(ctx context.Context) error
}

// JobHandler is a function that processes a job.
type JobHandler func(ctx context.Context, job Job) error

// JobStore defines the interface for storing and retrieving job status.
type JobStore interface {
	// SaveJob saves or updates a job's state.
	SaveJob(ctx context.Context, job *ReportJob) error

	// GetJob retrieves a job by ID.
	GetJob(ctx context.Context, jobID string) (*ReportJob, error)

	// ListJobs retrieves jobs with optional filtering.
	ListJobs(ctx context.Context, filter JobFilter) ([]*ReportJob, error)
}

// JobFilter defines filtering criteria for listing jobs.
type JobFilter struct {
	// AccountGroup filters jobs by account group.
	AccountGroup string

	// Status filters jobs by status.
	Status JobStatus

	// Limit limits the number of results.
	Limit int

	// Offset for pagination.
	Offset int
}
