package monitoring

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/sells-group/wifisurvey/internal/config"
	"github.com/sells-group/wifisurvey/internal/snapshot"
)

type stubReader struct {
	snap atomic.Pointer[snapshot.Snapshot]
}

func (r *stubReader) Current() *snapshot.Snapshot { return r.snap.Load() }

func TestChecker_RunStopsOnCancel(t *testing.T) {
	cfg := config.MonitoringConfig{CheckIntervalSecs: 1}
	checker := NewChecker(&stubReader{}, NewAlerter(cfg, nil, nil), cfg)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		checker.Run(ctx)
		close(done)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Checker.Run did not stop after context cancellation")
	}
}

func TestChecker_DefaultInterval(t *testing.T) {
	checker := NewChecker(&stubReader{}, NewAlerter(config.MonitoringConfig{}, nil, nil), config.MonitoringConfig{
		CheckIntervalSecs: 0,
	})
	assert.NotNil(t, checker)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	checker.Run(ctx)
}

func TestChecker_Check_NoSnapshot(t *testing.T) {
	cfg := config.MonitoringConfig{}
	checker := NewChecker(&stubReader{}, NewAlerter(cfg, nil, nil), cfg)

	assert.Equal(t, 0, checker.check(context.Background(), zap.NewNop()))
}

func TestChecker_Check_EvaluatesEachCycleOnce(t *testing.T) {
	var posts atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		posts.Add(1)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	cfg := config.MonitoringConfig{WebhookURL: ts.URL}
	reader := &stubReader{}
	checker := NewChecker(reader, NewAlerter(cfg, nil, nil), cfg)
	ctx := context.Background()

	reader.snap.Store(surveySnapshot(t, 1))
	assert.Equal(t, 1, checker.check(ctx, zap.NewNop()))
	assert.Equal(t, 0, checker.check(ctx, zap.NewNop()))
	assert.Equal(t, int32(1), posts.Load())

	reader.snap.Store(surveySnapshot(t, 2))
	assert.Equal(t, 1, checker.check(ctx, zap.NewNop()))
	assert.Equal(t, int32(2), posts.Load())

	reader.snap.Store(secureSnapshot(t, 3))
	assert.Equal(t, 0, checker.check(ctx, zap.NewNop()))
	assert.Equal(t, int32(2), posts.Load())
}

func TestChecker_StoreSatisfiesReader(t *testing.T) {
	var _ SnapshotReader = snapshot.NewStore()
}
