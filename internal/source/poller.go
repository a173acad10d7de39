package source

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/wifisurvey/internal/model"
	"github.com/sells-group/wifisurvey/internal/resilience"
	"github.com/sells-group/wifisurvey/internal/snapshot"
)

// Processor runs one scan cycle.
type Processor interface {
	Run(ctx context.Context, batch model.ObservationBatch) (*snapshot.Snapshot, error)
}

// PollerOptions configures a Poller.
type PollerOptions struct {
	// Interval is the minimum time between two reads of the source.
	Interval time.Duration
	Burst    int
	Retry    resilience.RetryPolicy
	// StopWhenExhausted ends Run once the source reports ErrExhausted.
	StopWhenExhausted bool
}

// Poller feeds batches from a Source into a Processor at a bounded rate.
type Poller struct {
	src     Source
	proc    Processor
	limiter *rate.Limiter
	retry   resilience.RetryPolicy
	stop    bool
}

// NewPoller creates a poller. A non-positive interval reads as fast as the
// processor keeps up.
func NewPoller(src Source, proc Processor, opts PollerOptions) *Poller {
	limit := rate.Inf
	if opts.Interval > 0 {
		limit = rate.Every(opts.Interval)
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = 1
	}
	retry := opts.Retry
	if retry.OnRetry == nil {
		retry.OnRetry = resilience.LogRetries("source", "next batch")
	}
	return &Poller{
		src:     src,
		proc:    proc,
		limiter: rate.NewLimiter(limit, burst),
		retry:   retry,
		stop:    opts.StopWhenExhausted,
	}
}

// Run polls until ctx is done, or until the source is exhausted when the
// poller was built to stop there. A failed cycle is logged and polling goes
// on.
func (p *Poller) Run(ctx context.Context) error {
	log := zap.L().With(zap.String("component", "poller"))
	for {
		if err := p.limiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return eris.Wrap(err, "source: rate limit wait")
		}

		batch, err := resilience.RetryValue(ctx, p.retry, p.src.Next)
		switch {
		case ctx.Err() != nil:
			return nil
		case eris.Is(err, ErrExhausted):
			if p.stop {
				log.Debug("source exhausted")
				return nil
			}
			continue
		case err != nil:
			log.Warn("source: read batch failed", zap.Error(err))
			continue
		}

		if _, err := p.proc.Run(ctx, batch); err != nil {
			if eris.Is(err, snapshot.ErrStaleCycle) {
				continue
			}
			log.Warn("source: cycle failed",
				zap.Int("sightings", len(batch.Sightings)),
				zap.Error(err),
			)
		}
	}
}
