package jobs

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/markdave123-py/localrag/internal/core"
	"github.com/markdave123-py/localrag/internal/models"
)

// Manager is the in-memory job table shared by HTTP handlers and ingestion
// workers. All access goes through the mutex; callers never see the map.
// Jobs move queued -> processing -> done|error and never leave a terminal
// state. Nothing survives a process restart.
type Manager struct {
	mu   sync.RWMutex
	jobs map[string]*models.Job
}

func NewManager() *Manager {
	return &Manager{jobs: make(map[string]*models.Job)}
}

// Create allocates a job in "queued" with zero progress and returns its id.
func (m *Manager) Create(docID, filename string) string {
	id := uuid.NewString()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[id] = &models.Job{
		JobID:    id,
		DocID:    docID,
		Filename: filename,
		Status:   models.JobQueued,
	}
	return id
}

// Start moves a queued job to "processing". Only the owning worker calls it.
func (m *Manager) Start(jobID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	j, ok := m.jobs[jobID]
	if !ok {
		return fmt.Errorf("job %s: %w", jobID, core.ErrNotFound)
	}
	if j.Status != models.JobQueued {
		return fmt.Errorf("job %s: cannot start from %q", jobID, j.Status)
	}
	j.Status = models.JobProcessing
	return nil
}

// UpdateProgress records the latest page/chunk counters. Last write wins;
// updates on unknown or non-processing jobs are dropped.
func (m *Manager) UpdateProgress(jobID string, page, totalPages, chunksIndexed int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	j, ok := m.jobs[jobID]
	if !ok || j.Status != models.JobProcessing {
		return
	}
	tp := totalPages
	j.Progress = models.JobProgress{
		Page:          page,
		TotalPages:    &tp,
		ChunksIndexed: chunksIndexed,
	}
}

// Complete moves a job to "done". A no-op once the job is terminal.
func (m *Manager) Complete(jobID string, result models.JobResult) {
	m.mu.Lock()
	defer m.mu.Unlock()

	j, ok := m.jobs[jobID]
	if !ok || terminal(j.Status) {
		return
	}
	j.Status = models.JobDone
	j.Result = &result
	j.Error = ""
}

// Fail moves a job to "error". A no-op once the job is terminal.
func (m *Manager) Fail(jobID string, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	j, ok := m.jobs[jobID]
	if !ok || terminal(j.Status) {
		return
	}
	j.Status = models.JobError
	j.Error = message
}

// Get returns a copy of the job so pollers can't race the worker's writes.
func (m *Manager) Get(jobID string) (models.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	j, ok := m.jobs[jobID]
	if !ok {
		return models.Job{}, fmt.Errorf("job %s: %w", jobID, core.ErrNotFound)
	}

	out := *j
	if j.Progress.TotalPages != nil {
		tp := *j.Progress.TotalPages
		out.Progress.TotalPages = &tp
	}
	if j.Result != nil {
		res := *j.Result
		out.Result = &res
	}
	return out, nil
}

func terminal(status string) bool {
	return status == models.JobDone || status == models.JobError
}
