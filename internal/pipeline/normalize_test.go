package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/wifisurvey/internal/geo"
	"github.com/sells-group/wifisurvey/internal/model"
)

func TestNormalize_Annotates(t *testing.T) {
	obs := Normalize(cafeBatch(), geo.NewSeededProjector(7), fixedNow)
	require.Len(t, obs, 3)

	first := obs[0]
	assert.Equal(t, "Cafe", first.SSID)
	assert.Equal(t, 6, first.Channel)
	assert.Equal(t, "2.4GHz", first.Band)
	assert.Equal(t, model.SecurityWPA2, first.Security)
	assert.Equal(t, model.RiskLow, first.Risk)
	assert.Equal(t, fixedNow, first.ObservedAt)
	assert.InDelta(t, geo.EstimateDistance(-50, 2437), first.DistanceMeters, 1e-12)
	require.NotNil(t, first.Position)
	assert.Equal(t, model.ProvenanceEstimated, first.Position.Provenance)
	assert.LessOrEqual(t, geo.DistanceMeters(cafeBatch().ObserverPosition, *first.Position), first.DistanceMeters*1.005)

	assert.Equal(t, model.SecurityOpen, obs[1].Security)
	assert.Equal(t, 36, obs[1].Channel)
	assert.Equal(t, model.HiddenSSID, obs[2].SSID)
}

func TestNormalize_SentinelDistanceHasNoPosition(t *testing.T) {
	batch := model.ObservationBatch{
		Sightings: []model.RawSighting{{SSID: "Far", BSSID: "cc:01", RSSI: 0, FrequencyMHz: 2412}},
	}
	obs := Normalize(batch, geo.NewSeededProjector(1), fixedNow)
	require.Len(t, obs, 1)
	assert.False(t, obs[0].HasDistance())
	assert.Nil(t, obs[0].Position)
}

func TestNormalize_NilProjector(t *testing.T) {
	obs := Normalize(cafeBatch(), nil, fixedNow)
	for _, o := range obs {
		assert.Nil(t, o.Position)
	}
}

func TestNormalize_ObservedAtDefaultsToNow(t *testing.T) {
	batch := cafeBatch()
	batch.CapturedAt = time.Time{}
	obs := Normalize(batch, nil, fixedNow)
	assert.Equal(t, fixedNow, obs[0].ObservedAt)
}
