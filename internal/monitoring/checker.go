package monitoring

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/wifisurvey/internal/config"
	"github.com/sells-group/wifisurvey/internal/snapshot"
)

// SnapshotReader returns the latest committed snapshot. *snapshot.Store
// satisfies it.
type SnapshotReader interface {
	Current() *snapshot.Snapshot
}

// Checker runs periodic alert checks in the background. Each committed
// cycle is evaluated at most once.
type Checker struct {
	reader  SnapshotReader
	alerter *Alerter
	cfg     config.MonitoringConfig

	lastSeq uint64
}

// NewChecker creates a background alert checker.
func NewChecker(reader SnapshotReader, alerter *Alerter, cfg config.MonitoringConfig) *Checker {
	return &Checker{
		reader:  reader,
		alerter: alerter,
		cfg:     cfg,
	}
}

// Run starts the periodic check loop. It blocks until ctx is cancelled.
func (c *Checker) Run(ctx context.Context) {
	interval := time.Duration(c.cfg.CheckIntervalSecs) * time.Second
	if interval <= 0 {
		interval = time.Minute
	}

	log := zap.L().With(zap.String("component", "monitoring.checker"))
	log.Info("starting alert checker", zap.Duration("interval", interval))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("alert checker stopped")
			return
		case <-ticker.C:
			c.check(ctx, log)
		}
	}
}

// check evaluates the current snapshot if it is new. It returns the number
// of alerts triggered.
func (c *Checker) check(ctx context.Context, log *zap.Logger) int {
	snap := c.reader.Current()
	if snap == nil || snap.CycleSeq == c.lastSeq {
		log.Debug("monitoring: no new cycle")
		return 0
	}
	c.lastSeq = snap.CycleSeq

	alerts := c.alerter.Evaluate(snap)
	if len(alerts) == 0 {
		log.Debug("monitoring: no alerts triggered", zap.Uint64("cycle", snap.CycleSeq))
		return 0
	}

	sent := c.alerter.SendAlerts(ctx, alerts)
	log.Info("monitoring: alert check complete",
		zap.Uint64("cycle", snap.CycleSeq),
		zap.Int("alerts_triggered", len(alerts)),
		zap.Int("alerts_sent", sent),
	)
	return len(alerts)
}
