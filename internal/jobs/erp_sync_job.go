package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const erpSyncJobName = "erp_sales_order_sync"

// SalesOrderSyncer is the slice of the sales order service the job needs
type SalesOrderSyncer interface {
	SyncFromERP(ctx context.Context) (int, error)
}

// ERPSyncJob periodically imports open sales orders from the back office
type ERPSyncJob struct {
	syncer  SalesOrderSyncer
	logger  *zap.Logger
	timeout time.Duration
}

// NewERPSyncJob creates the sync job
func NewERPSyncJob(syncer SalesOrderSyncer, logger *zap.Logger, timeout time.Duration) *ERPSyncJob {
	return &ERPSyncJob{syncer: syncer, logger: logger, timeout: timeout}
}

// Run executes one sync pass with a bounded deadline
func (j *ERPSyncJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	synced, err := j.syncer.SyncFromERP(ctx)
	if err != nil {
		j.logger.Error("erp sync failed",
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return
	}
	j.logger.Info("erp sync finished",
		zap.Int("synced", synced),
		zap.Duration("duration", time.Since(start)),
	)
}

// RegisterERPSyncJob wires the sync job into the scheduler and
// optionally kicks off a first run right away.
func RegisterERPSyncJob(scheduler *Scheduler, syncer SalesOrderSyncer, logger *zap.Logger, cronExpr string, timeout time.Duration, runOnStartup bool) error {
	job := NewERPSyncJob(syncer, logger, timeout)
	if err := scheduler.AddJob(erpSyncJobName, cronExpr, job.Run); err != nil {
		return err
	}
	if runOnStartup {
		go job.Run()
	}
	return nil
}
