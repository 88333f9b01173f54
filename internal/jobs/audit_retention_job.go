package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const auditRetentionJobName = "audit_retention_cleanup"

// AuditCleaner is the slice of the audit log service the job needs
type AuditCleaner interface {
	CleanupOldLogs(ctx context.Context, retentionDays int) (int64, error)
}

// AuditRetentionJob trims audit entries past the retention window
type AuditRetentionJob struct {
	cleaner       AuditCleaner
	logger        *zap.Logger
	retentionDays int
}

// NewAuditRetentionJob creates the retention job
func NewAuditRetentionJob(cleaner AuditCleaner, logger *zap.Logger, retentionDays int) *AuditRetentionJob {
	return &AuditRetentionJob{cleaner: cleaner, logger: logger, retentionDays: retentionDays}
}

// Run deletes entries older than the retention window
func (j *AuditRetentionJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	deleted, err := j.cleaner.CleanupOldLogs(ctx, j.retentionDays)
	if err != nil {
		j.logger.Error("audit retention cleanup failed", zap.Error(err))
		return
	}
	j.logger.Info("audit retention cleanup finished",
		zap.Int64("deleted", deleted),
		zap.Int("retention_days", j.retentionDays),
	)
}

// RegisterAuditRetentionJob wires the retention job into the scheduler.
// The audit trail is append-only by default; the job is only registered
// when a positive retention window is configured, which deployments with
// a data-minimization mandate opt into explicitly.
func RegisterAuditRetentionJob(scheduler *Scheduler, cleaner AuditCleaner, logger *zap.Logger, cronExpr string, retentionDays int) error {
	if retentionDays <= 0 {
		logger.Info("audit retention cleanup disabled, audit trail kept indefinitely")
		return nil
	}
	job := NewAuditRetentionJob(cleaner, logger, retentionDays)
	return scheduler.AddJob(auditRetentionJobName, cronExpr, job.Run)
}
