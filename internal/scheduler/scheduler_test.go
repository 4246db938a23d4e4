package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingJob struct {
	name     string
	schedule string
	runs     int
	err      error
}

func (j *countingJob) GetName() string     { return j.name }
func (j *countingJob) GetSchedule() string { return j.schedule }
func (j *countingJob) Execute(ctx context.Context) error {
	j.runs++
	return j.err
}

func TestRegisterJob(t *testing.T) {
	s := NewScheduler(nil)

	require.NoError(t, s.RegisterJob(&countingJob{name: "hourly", schedule: "@hourly"}))
	require.NoError(t, s.RegisterJob(&countingJob{name: "manual"}))
	assert.Error(t, s.RegisterJob(&countingJob{name: "broken", schedule: "every tuesday"}))

	assert.Equal(t, []string{"hourly", "manual"}, s.GetRegisteredJobs())
}

func TestRunJobByName(t *testing.T) {
	s := NewScheduler(nil)
	ok := &countingJob{name: "ok"}
	failing := &countingJob{name: "failing", err: errors.New("boom")}
	require.NoError(t, s.RegisterJob(ok))
	require.NoError(t, s.RegisterJob(failing))

	require.NoError(t, s.RunJobByName(context.Background(), "ok"))
	assert.Equal(t, 1, ok.runs)

	assert.EqualError(t, s.RunJobByName(context.Background(), "failing"), "boom")
	assert.Error(t, s.RunJobByName(context.Background(), "missing"))
}

func TestStartStop(t *testing.T) {
	s := NewScheduler(nil)
	require.NoError(t, s.RegisterJob(&countingJob{name: "hourly", schedule: "@hourly"}))
	s.Start()
	s.Stop()
}
