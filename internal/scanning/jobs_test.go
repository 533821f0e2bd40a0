package scanning

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubExtractor struct {
	text  string
	err   error
	block bool
}

func (s *stubExtractor) ExtractText(ctx context.Context, imageData []byte, contentType string) (string, error) {
	if s.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return s.text, s.err
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func waitForStatus(t *testing.T, store *JobStore, id string, status JobStatus) *Job {
	t.Helper()
	var job *Job
	require.Eventually(t, func() bool {
		job = store.Get(id)
		return job != nil && job.Status == status
	}, 2*time.Second, 10*time.Millisecond)
	return job
}

func TestEnqueueCompletesWithParsedReceipt(t *testing.T) {
	extractor := &stubExtractor{text: "Luciano's Pizzeria\nMargherita Pizza   14.50\nCraft IPA   7.25\nTOTAL 21.75"}
	store := NewJobStore(extractor, quietLogger())

	job, err := store.Enqueue([]byte("fake-image"), "image/png")
	require.NoError(t, err)
	assert.NotEmpty(t, job.ID)

	done := waitForStatus(t, store, job.ID, StatusCompleted)
	assert.Equal(t, 100, done.Progress)
	require.NotNil(t, done.Result)
	assert.Len(t, done.Result.Items, 2)
}

func TestEnqueueWithoutExtractorFails(t *testing.T) {
	store := NewJobStore(nil, quietLogger())

	_, err := store.Enqueue([]byte("fake-image"), "image/png")
	assert.ErrorIs(t, err, ErrScanningDisabled)
}

func TestExtractionFailureMarksJobFailed(t *testing.T) {
	extractor := &stubExtractor{err: errors.New("upstream unavailable")}
	store := NewJobStore(extractor, quietLogger())

	job, err := store.Enqueue([]byte("fake-image"), "image/png")
	require.NoError(t, err)

	failed := waitForStatus(t, store, job.ID, StatusFailed)
	assert.Contains(t, failed.Error, "upstream unavailable")
	assert.Nil(t, failed.Result)
}

func TestCancelStopsInFlightJob(t *testing.T) {
	extractor := &stubExtractor{block: true}
	store := NewJobStore(extractor, quietLogger())

	job, err := store.Enqueue([]byte("fake-image"), "image/png")
	require.NoError(t, err)

	require.NoError(t, store.Cancel(job.ID))

	canceled := store.Get(job.ID)
	assert.Equal(t, StatusCanceled, canceled.Status)

	// the aborted goroutine must not resurrect the job
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, StatusCanceled, store.Get(job.ID).Status)
}

func TestCancelFinishedJobRejected(t *testing.T) {
	extractor := &stubExtractor{text: "Margherita Pizza   14.50"}
	store := NewJobStore(extractor, quietLogger())

	job, err := store.Enqueue([]byte("fake-image"), "image/png")
	require.NoError(t, err)
	waitForStatus(t, store, job.ID, StatusCompleted)

	assert.ErrorIs(t, store.Cancel(job.ID), ErrJobFinished)
}

func TestGetUnknownJob(t *testing.T) {
	store := NewJobStore(nil, quietLogger())
	assert.Nil(t, store.Get("missing"))
}
