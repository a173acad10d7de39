package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/wifisurvey/internal/geo"
	"github.com/sells-group/wifisurvey/internal/model"
	"github.com/sells-group/wifisurvey/internal/snapshot"
)

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

type recordingSink struct {
	mu    sync.Mutex
	name  string
	err   error
	snaps []*snapshot.Snapshot
}

func (s *recordingSink) Name() string { return s.name }

func (s *recordingSink) Publish(_ context.Context, snap *snapshot.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snaps = append(s.snaps, snap)
	return s.err
}

type countingRecorder struct {
	committed int
	stale     []uint64
}

func (r *countingRecorder) CycleCommitted(*snapshot.Snapshot, time.Duration) { r.committed++ }
func (r *countingRecorder) CycleStale(seq uint64)                            { r.stale = append(r.stale, seq) }

func cafeBatch() model.ObservationBatch {
	return model.ObservationBatch{
		ObserverPosition: model.GeoPosition{Latitude: 40.0, Longitude: -74.0, AccuracyMeters: 5, Provenance: model.ProvenanceMeasured},
		ScanRadiusMeters: 200,
		CapturedAt:       fixedNow,
		Sightings: []model.RawSighting{
			{SSID: "Cafe", BSSID: "aa:aa:aa:aa:aa:01", RSSI: -50, FrequencyMHz: 2437, Capabilities: "[WPA2-PSK-CCMP][ESS]"},
			{SSID: "Cafe", BSSID: "aa:aa:aa:aa:aa:02", RSSI: -70, FrequencyMHz: 5180, Capabilities: "[ESS]"},
			{SSID: "", BSSID: "bb:bb:bb:bb:bb:01", RSSI: -80, FrequencyMHz: 2412, Capabilities: "[WPA2-PSK-CCMP][ESS]"},
		},
	}
}

func newTestPipeline(opts ...Option) *Pipeline {
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return New(snapshot.NewStore(), geo.NewSeededProjector(42), opts...)
}

func TestPipeline_Run_Cafe(t *testing.T) {
	sink := &recordingSink{name: "test"}
	rec := &countingRecorder{}
	p := newTestPipeline(WithSinks(sink), WithRecorder(rec))

	snap, err := p.Run(context.Background(), cafeBatch())
	require.NoError(t, err)
	require.NotNil(t, snap)

	assert.Equal(t, uint64(1), snap.CycleSeq)
	assert.Same(t, snap, p.Store().Current())
	assert.Len(t, snap.Observations, 3)
	assert.Len(t, snap.Clusters, 2)

	cafe := snap.Cluster("Cafe")
	require.NotNil(t, cafe)
	assert.Equal(t, 2, cafe.NetworkCount)
	assert.Equal(t, model.SecurityOpen, cafe.PrimarySecurityType)
	assert.True(t, cafe.IsOpen)
	assert.Equal(t, model.RiskHigh, cafe.OverallRisk)
	assert.Equal(t, []string{"2.4GHz", "5GHz"}, cafe.Bands)
	require.NotNil(t, cafe.Center)
	assert.Equal(t, model.ProvenanceClustered, cafe.Center.Provenance)

	hidden := snap.Cluster(model.HiddenSSID)
	require.NotNil(t, hidden)
	assert.Equal(t, model.RiskLow, hidden.OverallRisk)

	// Channels 1 and 6 carry one AP each; 11 is free.
	assert.Equal(t, 11, snap.Spectrum.RecommendedChannel)
	assert.InDelta(t, 3/(3.141592653589793*0.04), snap.Spectrum.DensityPerKm2, 1e-9)
	assert.Equal(t, 1, snap.Security.Open)
	assert.Equal(t, 2, snap.Security.WPA2)

	assert.Len(t, sink.snaps, 1)
	assert.Equal(t, 1, rec.committed)
	assert.Empty(t, rec.stale)
}

func TestPipeline_Run_EmptyBatch(t *testing.T) {
	p := newTestPipeline()
	snap, err := p.Run(context.Background(), model.ObservationBatch{ScanRadiusMeters: 200})
	require.NoError(t, err)
	assert.Empty(t, snap.Clusters)
	assert.Equal(t, 0.0, snap.Spectrum.DensityPerKm2)
	assert.Equal(t, 1, snap.Spectrum.RecommendedChannel)
}

func TestPipeline_Run_DefaultRadius(t *testing.T) {
	p := newTestPipeline(WithDefaultRadius(100))
	batch := cafeBatch()
	batch.ScanRadiusMeters = 0
	snap, err := p.Run(context.Background(), batch)
	require.NoError(t, err)
	assert.Equal(t, 100.0, snap.Spectrum.ScanRadiusMeters)
}

func TestPipeline_Run_InvalidBatch(t *testing.T) {
	p := newTestPipeline()
	batch := cafeBatch()
	batch.Sightings[0].FrequencyMHz = 0
	snap, err := p.Run(context.Background(), batch)
	assert.Nil(t, snap)
	assert.Error(t, err)
	assert.Nil(t, p.Store().Current())
}

func TestPipeline_Run_BlankBSSIDStillCommits(t *testing.T) {
	p := newTestPipeline()
	batch := model.ObservationBatch{
		ObserverPosition: model.GeoPosition{Latitude: 40.0, Longitude: -74.0},
		ScanRadiusMeters: 200,
		Sightings: []model.RawSighting{
			{SSID: "Cafe", BSSID: "aa", RSSI: -40, FrequencyMHz: 2437, Capabilities: "[WPA2-PSK-CCMP][ESS]"},
			{SSID: "Cafe", BSSID: "", RSSI: -60, FrequencyMHz: 2437, Capabilities: "[WPA2-PSK-CCMP][ESS]"},
		},
	}
	snap, err := p.Run(context.Background(), batch)
	require.NoError(t, err)
	assert.Same(t, snap, p.Store().Current())
	assert.Len(t, snap.Observations, 2)

	cafe := snap.Cluster("Cafe")
	require.NotNil(t, cafe)
	assert.Equal(t, 2, cafe.NetworkCount)
	assert.Equal(t, []string{"aa"}, cafe.BSSIDs)
}

func TestPipeline_Run_SinkFailureDoesNotFailCycle(t *testing.T) {
	bad := &recordingSink{name: "bad", err: errors.New("broker down")}
	good := &recordingSink{name: "good"}
	p := newTestPipeline(WithSinks(bad, good))

	snap, err := p.Run(context.Background(), cafeBatch())
	require.NoError(t, err)
	assert.Same(t, snap, p.Store().Current())
	assert.Len(t, bad.snaps, 1)
	assert.Len(t, good.snaps, 1)
}

func TestPipeline_Run_StaleCycleDiscarded(t *testing.T) {
	sink := &recordingSink{name: "test"}
	rec := &countingRecorder{}
	p := newTestPipeline(WithSinks(sink), WithRecorder(rec))

	// A newer cycle commits first.
	newer := Build(5, cafeBatch(), nil, fixedNow)
	require.NoError(t, p.Store().Commit(newer))
	p.Store().NextSeq()
	p.Store().NextSeq()

	snap, err := p.Run(context.Background(), cafeBatch())
	require.Error(t, err)
	assert.True(t, eris.Is(err, snapshot.ErrStaleCycle))
	require.NotNil(t, snap)
	assert.Equal(t, uint64(3), snap.CycleSeq)
	assert.Same(t, newer, p.Store().Current())
	assert.Empty(t, sink.snaps)
	assert.Equal(t, []uint64{3}, rec.stale)
	assert.Zero(t, rec.committed)
}

func TestPipeline_Run_SequencesIncrease(t *testing.T) {
	p := newTestPipeline()
	first, err := p.Run(context.Background(), cafeBatch())
	require.NoError(t, err)
	second, err := p.Run(context.Background(), cafeBatch())
	require.NoError(t, err)
	assert.Less(t, first.CycleSeq, second.CycleSeq)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Same(t, second, p.Store().Current())
}
