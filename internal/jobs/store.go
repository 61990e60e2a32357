package jobs

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"fee-reconciliation-service/internal/models"
)

// Job status constants
const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Batch progress phases
const (
	ProgressInitializing = "initializing"
	ProgressFetching     = "fetching"
	ProgressReconciling  = "reconciling"
	ProgressFinalizing   = "finalizing"
)

// Job is the progress ledger entry for one batch run. It exists purely for
// progress reporting; correctness of the batch never depends on it.
type Job struct {
	ID                 string                     `json:"job_id"`
	Status             string                     `json:"status"`
	Progress           string                     `json:"progress"`
	FolderPath         string                     `json:"folder_path"`
	TotalTransactions  int                        `json:"total_transactions"`
	Processed          int                        `json:"processed"`
	CurrentTransaction string                     `json:"current_transaction,omitempty"`
	Results            []models.TransactionResult `json:"results,omitempty"`
	PDFPath            string                     `json:"-"`
	Error              string                     `json:"error,omitempty"`
	CreatedAt          time.Time                  `json:"-"`
	CompletedAt        time.Time                  `json:"-"`
}

// Store is a lock-protected in-memory job ledger with TTL eviction of
// finished jobs. Jobs are created on submission, read on poll, and evicted
// once the TTL after completion has passed.
type Store struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
	now  func() time.Time
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		jobs: make(map[string]*Job),
		ttl:  ttl,
		now:  time.Now,
	}
}

// Create registers a new processing job and returns its id.
func (s *Store) Create(folderPath string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evictLocked()

	job := &Job{
		ID:         uuid.NewString(),
		Status:     StatusProcessing,
		Progress:   ProgressInitializing,
		FolderPath: folderPath,
		CreatedAt:  s.now(),
	}
	s.jobs[job.ID] = job
	return job.ID
}

// Get returns a snapshot of the job, so callers never observe concurrent
// mutation by the batch worker.
func (s *Store) Get(id string) (Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evictLocked()

	job, ok := s.jobs[id]
	if !ok {
		return Job{}, false
	}
	snapshot := *job
	snapshot.Results = append([]models.TransactionResult(nil), job.Results...)
	return snapshot, true
}

// Update applies fn to the job under the store lock.
func (s *Store) Update(id string, fn func(*Job)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if job, ok := s.jobs[id]; ok {
		fn(job)
		if job.Status != StatusProcessing && job.CompletedAt.IsZero() {
			job.CompletedAt = s.now()
		}
	}
}

func (s *Store) evictLocked() {
	if s.ttl <= 0 {
		return
	}
	cutoff := s.now().Add(-s.ttl)
	for id, job := range s.jobs {
		if !job.CompletedAt.IsZero() && job.CompletedAt.Before(cutoff) {
			delete(s.jobs, id)
		}
	}
}
