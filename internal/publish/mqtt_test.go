package publish

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/wifisurvey/internal/model"
	"github.com/sells-group/wifisurvey/internal/pipeline"
	"github.com/sells-group/wifisurvey/internal/resilience"
	"github.com/sells-group/wifisurvey/internal/snapshot"
)

type sent struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

type fakeTransport struct {
	mu     sync.Mutex
	msgs   []sent
	err    error
	closed bool
}

func (f *fakeTransport) publish(topic string, qos byte, retained bool, payload []byte, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, sent{topic, qos, retained, payload})
	return nil
}

func (f *fakeTransport) close() { f.closed = true }

func testSnapshot() *snapshot.Snapshot {
	batch := model.ObservationBatch{
		ObserverPosition: model.GeoPosition{Latitude: 40, Longitude: -74},
		ScanRadiusMeters: 200,
		Sightings: []model.RawSighting{
			{SSID: "Cafe/Guest", BSSID: "aa:01", RSSI: -50, FrequencyMHz: 2437, Capabilities: "[ESS]"},
			{SSID: "Office", BSSID: "bb:01", RSSI: -60, FrequencyMHz: 5180, Capabilities: "[WPA2-PSK-CCMP][ESS]"},
		},
	}
	return pipeline.Build(7, batch, nil, time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC))
}

func TestMQTT_PublishTopics(t *testing.T) {
	ft := &fakeTransport{}
	sink := newMQTT(Options{TopicPrefix: "site1", QoS: 1}, ft, nil)

	require.NoError(t, sink.Publish(context.Background(), testSnapshot()))
	require.Len(t, ft.msgs, 4)

	assert.Equal(t, "site1/summary", ft.msgs[0].topic)
	assert.True(t, ft.msgs[0].retained)
	assert.Equal(t, byte(1), ft.msgs[0].qos)
	assert.Equal(t, "site1/spectrum", ft.msgs[1].topic)
	assert.Equal(t, "site1/clusters/Cafe_Guest", ft.msgs[2].topic)
	assert.False(t, ft.msgs[2].retained)
	assert.Equal(t, "site1/clusters/Office", ft.msgs[3].topic)

	var summary snapshot.Summary
	require.NoError(t, json.Unmarshal(ft.msgs[0].payload, &summary))
	assert.Equal(t, uint64(7), summary.CycleSeq)
	assert.Equal(t, 2, summary.Clusters)
	assert.Equal(t, 1, summary.HighRiskClusters)

	var c map[string]interface{}
	require.NoError(t, json.Unmarshal(ft.msgs[2].payload, &c))
	assert.Equal(t, "Cafe/Guest", c["ssid"])
	assert.Equal(t, float64(7), c["cycle_seq"])
	assert.Equal(t, "2.4GHz • ⚠️ OPEN • 1 APs", c["snippet"])
	assert.NotContains(t, c, "members")
}

func TestMQTT_BreakerOpensOnFailures(t *testing.T) {
	ft := &fakeTransport{err: resilience.Temporary(errors.New("not connected"), 0)}
	breaker := resilience.NewBreaker("mqtt", resilience.BreakerSettings{FailureThreshold: 2, Cooldown: time.Hour})
	sink := newMQTT(Options{}, ft, breaker)
	snap := testSnapshot()

	assert.Error(t, sink.Publish(context.Background(), snap))
	assert.Error(t, sink.Publish(context.Background(), snap))
	assert.Equal(t, resilience.Open, breaker.State())

	err := sink.Publish(context.Background(), snap)
	assert.True(t, eris.Is(err, resilience.ErrCircuitOpen))
}

func TestMQTT_DefaultsAndClose(t *testing.T) {
	ft := &fakeTransport{}
	sink := newMQTT(Options{}, ft, nil)
	assert.Equal(t, "mqtt", sink.Name())
	require.NoError(t, sink.Publish(context.Background(), testSnapshot()))
	assert.Equal(t, "wifisurvey/summary", ft.msgs[0].topic)
	sink.Close()
	assert.True(t, ft.closed)
}

func TestMQTT_CancelledContext(t *testing.T) {
	ft := &fakeTransport{}
	sink := newMQTT(Options{}, ft, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, sink.Publish(ctx, testSnapshot()))
	assert.Empty(t, ft.msgs)
}

func TestTopicSegment(t *testing.T) {
	tests := map[string]string{
		"Cafe":           "Cafe",
		"a/b":            "a_b",
		"home+#":         "home__",
		"Hidden Network": "Hidden_Network",
		"":               "_",
	}
	for in, want := range tests {
		assert.Equal(t, want, TopicSegment(in), in)
	}
}
