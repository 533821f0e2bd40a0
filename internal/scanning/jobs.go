package scanning

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jharmon/splittab/internal/receipt"
)

// Common errors
var (
	ErrJobNotFound      = errors.New("scan job not found")
	ErrScanningDisabled = errors.New("receipt scanning is not configured")
	ErrJobFinished      = errors.New("scan job already finished")
)

// JobStatus is the lifecycle state of a scan job
type JobStatus string

const (
	StatusPending    JobStatus = "pending"
	StatusExtracting JobStatus = "extracting"
	StatusParsing    JobStatus = "parsing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
	StatusCanceled   JobStatus = "canceled"
)

// Job is a snapshot of one receipt scan. Progress moves through coarse
// checkpoints rather than a live percentage; clients poll for it.
type Job struct {
	ID        string        `json:"id"`
	Status    JobStatus     `json:"status"`
	Progress  int           `json:"progress"`
	Result    *receipt.Data `json:"result,omitempty"`
	Error     string        `json:"error,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

func (j *Job) finished() bool {
	return j.Status == StatusCompleted || j.Status == StatusFailed || j.Status == StatusCanceled
}

type trackedJob struct {
	job    Job
	cancel context.CancelFunc
}

// JobStore runs receipt scans asynchronously and keeps their state in
// memory. Jobs do not survive a restart; a client that loses one simply
// rescans.
type JobStore struct {
	mu        sync.RWMutex
	jobs      map[string]*trackedJob
	extractor TextExtractor
	logger    *logrus.Logger
}

// NewJobStore creates a job store. A nil extractor is allowed; every enqueue
// then fails immediately, which keeps the rest of the API usable without a
// configured OCR backend.
func NewJobStore(extractor TextExtractor, logger *logrus.Logger) *JobStore {
	return &JobStore{
		jobs:      make(map[string]*trackedJob),
		extractor: extractor,
		logger:    logger,
	}
}

// Enqueue starts a scan in the background and returns the pending job
func (s *JobStore) Enqueue(imageData []byte, contentType string) (*Job, error) {
	if s.extractor == nil {
		return nil, ErrScanningDisabled
	}

	ctx, cancel := context.WithCancel(context.Background())
	now := time.Now().UTC()
	tracked := &trackedJob{
		job: Job{
			ID:        uuid.NewString(),
			Status:    StatusPending,
			CreatedAt: now,
			UpdatedAt: now,
		},
		cancel: cancel,
	}

	s.mu.Lock()
	s.jobs[tracked.job.ID] = tracked
	s.mu.Unlock()

	go s.run(ctx, tracked.job.ID, imageData, contentType)

	snapshot := tracked.job
	return &snapshot, nil
}

func (s *JobStore) run(ctx context.Context, id string, imageData []byte, contentType string) {
	s.update(id, StatusExtracting, 25, nil, nil)

	text, err := s.extractor.ExtractText(ctx, imageData, contentType)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logger.WithError(err).WithField("job_id", id).Warn("Receipt text extraction failed")
		s.update(id, StatusFailed, 100, nil, err)
		return
	}

	s.update(id, StatusParsing, 60, nil, nil)

	data := receipt.Parse(text)

	s.update(id, StatusParsing, 90, nil, nil)

	if ctx.Err() != nil {
		return
	}
	s.update(id, StatusCompleted, 100, data, nil)
	s.logger.WithFields(logrus.Fields{
		"job_id": id,
		"items":  len(data.Items),
	}).Info("Receipt scan completed")
}

// update writes a new state unless the job already reached a terminal one
func (s *JobStore) update(id string, status JobStatus, progress int, result *receipt.Data, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tracked, ok := s.jobs[id]
	if !ok || tracked.job.finished() {
		return
	}

	tracked.job.Status = status
	tracked.job.Progress = progress
	tracked.job.Result = result
	tracked.job.UpdatedAt = time.Now().UTC()
	if err != nil {
		tracked.job.Error = err.Error()
	}
}

// Get returns a snapshot of a job, or (nil, nil) when it does not exist
func (s *JobStore) Get(id string) *Job {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tracked, ok := s.jobs[id]
	if !ok {
		return nil
	}
	snapshot := tracked.job
	return &snapshot
}

// Cancel stops an in-flight job. Finished jobs cannot be canceled.
func (s *JobStore) Cancel(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tracked, ok := s.jobs[id]
	if !ok {
		return ErrJobNotFound
	}
	if tracked.job.finished() {
		return ErrJobFinished
	}

	tracked.cancel()
	tracked.job.Status = StatusCanceled
	tracked.job.Progress = 100
	tracked.job.UpdatedAt = time.Now().UTC()
	return nil
}
