package inmemory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/johanbog/wallet-integration/internal/jobs"
)

// Store is an in-memory implementation of JobStore, safe for concurrent use.
// Job history is lost on process exit, which matches the short-lived,
// stateless nature of report runs.
type Store struct {
	mu   sync.RWMutex
	jobs map[string]*jobs.ReportJob
}

// NewStore creates a new in-memory job store.
func NewStore() *Store {
	return &Store{
		jobs: make(map[string]*jobs.ReportJob),
	}
}

// SaveJob saves or updates a job. The stored value is a copy, so later
// mutations by the caller do not leak in.
func (s *Store) SaveJob(ctx context.Context, job *jobs.ReportJob) error {
	if job.JobID == "" {
		return fmt.Errorf("job ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	jobCopy := *job
	s.jobs[job.JobID] = &jobCopy

	return nil
}

// GetJob retrieves a job by ID.
func (s *Store) GetJob(ctx context.Context, jobID string) (*jobs.ReportJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, exists := s.jobs[jobID]
	if !exists {
		return nil, fmt.Errorf("job not found: %s", jobID)
	}

	jobCopy := *job
	return &jobCopy, nil
}

// ListJobs retrieves jobs matching the filter, newest first.
func (s *Store) ListJobs(ctx context.Context, filter jobs.JobFilter) ([]*jobs.ReportJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*jobs.ReportJob, 0, len(s.jobs))
	for _, job := range s.jobs {
		if filter.AccountGroup != "" && job.AccountGroup != filter.AccountGroup {
			continue
		}
		if filter.Status != "" && job.Status != filter.Status {
			continue
		}

		jobCopy := *job
		result = append(result, &jobCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(result) {
			return []*jobs.ReportJob{}, nil
		}
		result = result[filter.Offset:]
	}

	if filter.Limit > 0 && filter.Limit < len(result) {
		result = result[:filter.Limit]
	}

	return result, nil
}

// Ensure Store implements JobStore interface.
var _ jobs.JobStore = (*Store)(nil)
