package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingJob struct {
	runs int
	ctx  context.Context
	err  error
}

func (j *recordingJob) Name() string { return "recording" }

func (j *recordingJob) Run(ctx context.Context) error {
	j.runs++
	j.ctx = ctx
	return j.err
}

func TestAddJobRejectsInvalidSchedule(t *testing.T) {
	s := New(zerolog.Nop())

	_, err := s.AddJob("not a cron expression", &recordingJob{})
	assert.Error(t, err)
}

func TestAddJobReturnsEntryID(t *testing.T) {
	s := New(zerolog.Nop())

	id, err := s.AddJob("@daily", &recordingJob{})
	require.NoError(t, err)
	assert.NotZero(t, id)

	// Removing a registered entry must not panic or affect later adds.
	s.Remove(id)
	_, err = s.AddJob("@daily", &recordingJob{})
	assert.NoError(t, err)
}

func TestRunNowPassesContextThrough(t *testing.T) {
	s := New(zerolog.Nop())
	job := &recordingJob{}

	type ctxKey struct{}
	ctx := context.WithValue(context.Background(), ctxKey{}, "marker")
	require.NoError(t, s.RunNow(ctx, job))

	assert.Equal(t, 1, job.runs)
	assert.Equal(t, "marker", job.ctx.Value(ctxKey{}))
}

func TestRunNowPropagatesJobError(t *testing.T) {
	s := New(zerolog.Nop())
	failure := errors.New("job broke")
	job := &recordingJob{err: failure}

	err := s.RunNow(context.Background(), job)
	assert.ErrorIs(t, err, failure)
}
