// Package pipeline turns a scan batch into a committed snapshot: normalize,
// annotate, cluster, analyze, commit, publish.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/wifisurvey/internal/cluster"
	"github.com/sells-group/wifisurvey/internal/geo"
	"github.com/sells-group/wifisurvey/internal/model"
	"github.com/sells-group/wifisurvey/internal/security"
	"github.com/sells-group/wifisurvey/internal/snapshot"
	"github.com/sells-group/wifisurvey/internal/spectrum"
)

// Sink receives every committed snapshot.
type Sink interface {
	Name() string
	Publish(ctx context.Context, snap *snapshot.Snapshot) error
}

// Recorder observes cycle outcomes.
type Recorder interface {
	CycleCommitted(snap *snapshot.Snapshot, elapsed time.Duration)
	CycleStale(seq uint64)
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithSinks adds sinks that receive committed snapshots.
func WithSinks(sinks ...Sink) Option {
	return func(p *Pipeline) {
		p.sinks = append(p.sinks, sinks...)
	}
}

// WithRecorder sets the cycle outcome recorder.
func WithRecorder(r Recorder) Option {
	return func(p *Pipeline) {
		p.recorder = r
	}
}

// WithDefaultRadius sets the scan radius used when a batch carries none.
func WithDefaultRadius(meters float64) Option {
	return func(p *Pipeline) {
		p.defaultRadius = meters
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		p.now = now
	}
}

// Pipeline runs scan cycles against a snapshot store.
type Pipeline struct {
	store         *snapshot.Store
	projector     *geo.Projector
	sinks         []Sink
	recorder      Recorder
	defaultRadius float64
	now           func() time.Time
}

// New creates a Pipeline committing to store and projecting positions with
// projector.
func New(store *snapshot.Store, projector *geo.Projector, opts ...Option) *Pipeline {
	p := &Pipeline{
		store:         store,
		projector:     projector,
		defaultRadius: 200,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Store returns the snapshot store the pipeline commits to.
func (p *Pipeline) Store() *snapshot.Store {
	return p.store
}

// Run processes one batch. The cycle sequence is allocated when the batch
// arrives, so a slow cycle finishing after a newer one is discarded: Run then
// returns the computed snapshot together with snapshot.ErrStaleCycle. Sink
// failures are logged and never fail the cycle.
func (p *Pipeline) Run(ctx context.Context, batch model.ObservationBatch) (*snapshot.Snapshot, error) {
	if err := batch.Validate(); err != nil {
		return nil, eris.Wrap(err, "pipeline: invalid batch")
	}
	if batch.ScanRadiusMeters == 0 {
		batch.ScanRadiusMeters = p.defaultRadius
	}

	start := time.Now()
	seq := p.store.NextSeq()
	log := zap.L().With(zap.String("component", "pipeline"), zap.Uint64("cycle", seq))

	if n := batch.BlankBSSIDs(); n > 0 {
		log.Warn("pipeline: sightings without bssid", zap.Int("count", n))
	}

	snap := Build(seq, batch, p.projector, p.now())

	if err := p.store.Commit(snap); err != nil {
		if eris.Is(err, snapshot.ErrStaleCycle) {
			log.Warn("pipeline: discarding superseded cycle", zap.Error(err))
			if p.recorder != nil {
				p.recorder.CycleStale(seq)
			}
		}
		return snap, err
	}

	elapsed := time.Since(start)
	if p.recorder != nil {
		p.recorder.CycleCommitted(snap, elapsed)
	}
	log.Info("pipeline: cycle committed",
		zap.Int("observations", len(snap.Observations)),
		zap.Int("clusters", len(snap.Clusters)),
		zap.Float64("density_per_km2", snap.Spectrum.DensityPerKm2),
		zap.Int("recommended_channel", snap.Spectrum.RecommendedChannel),
		zap.Duration("elapsed", elapsed),
	)

	p.publish(ctx, snap, log)
	return snap, nil
}

func (p *Pipeline) publish(ctx context.Context, snap *snapshot.Snapshot, log *zap.Logger) {
	for _, s := range p.sinks {
		if err := s.Publish(ctx, snap); err != nil {
			log.Warn("pipeline: sink publish failed",
				zap.String("sink", s.Name()),
				zap.Error(err),
			)
		}
	}
}

// Build computes the snapshot of one cycle. Apart from position fuzzing drawn
// from projector, it is a pure function of its inputs.
func Build(seq uint64, batch model.ObservationBatch, projector *geo.Projector, now time.Time) *snapshot.Snapshot {
	obs := Normalize(batch, projector, now)
	captured := batch.CapturedAt
	if captured.IsZero() {
		captured = now
	}
	return &snapshot.Snapshot{
		CycleSeq:         seq,
		ID:               uuid.New(),
		CreatedAt:        now,
		CapturedAt:       captured,
		ObserverPosition: batch.ObserverPosition,
		Observations:     obs,
		Clusters:         cluster.Build(obs),
		Spectrum:         spectrum.Analyze(obs, batch.ScanRadiusMeters),
		Security:         security.Tally(obs),
	}
}
