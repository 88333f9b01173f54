package jobs_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/adicipta/procure-api/internal/jobs"
	"github.com/adicipta/procure-api/tests/testutil"
)

type fakeCleaner struct {
	calls   int
	lastArg int
}

func (c *fakeCleaner) CleanupOldLogs(_ context.Context, retentionDays int) (int64, error) {
	c.calls++
	c.lastArg = retentionDays
	return 0, nil
}

func TestRegisterAuditRetentionJobDisabledByDefault(t *testing.T) {
	scheduler := jobs.NewScheduler(testutil.NewTestLogger())

	err := jobs.RegisterAuditRetentionJob(scheduler, &fakeCleaner{}, testutil.NewTestLogger(),
		"0 30 2 * * *", 0)
	require.NoError(t, err)
	require.Empty(t, scheduler.GetJobNames(), "no retention window, no job")
}

func TestRegisterAuditRetentionJobWithWindow(t *testing.T) {
	scheduler := jobs.NewScheduler(testutil.NewTestLogger())

	err := jobs.RegisterAuditRetentionJob(scheduler, &fakeCleaner{}, testutil.NewTestLogger(),
		"0 30 2 * * *", 365)
	require.NoError(t, err)
	require.Len(t, scheduler.GetJobNames(), 1)
}

func TestAuditRetentionJobRunPassesWindow(t *testing.T) {
	cleaner := &fakeCleaner{}
	job := jobs.NewAuditRetentionJob(cleaner, testutil.NewTestLogger(), 90)

	job.Run()
	require.Equal(t, 1, cleaner.calls)
	require.Equal(t, 90, cleaner.lastArg)
}
