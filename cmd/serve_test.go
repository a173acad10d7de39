//go:build !integration

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/wifisurvey/internal/config"
	"github.com/sells-group/wifisurvey/internal/resilience"
)

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return port
}

func TestInitServe_WithoutMQTT(t *testing.T) {
	env, err := initServe(testConfig(), prometheus.NewRegistry())
	require.NoError(t, err)
	defer env.Close()

	assert.NotNil(t, env.Store)
	assert.NotNil(t, env.Pipeline)
	assert.NotNil(t, env.Checker)
	assert.Nil(t, env.MQTT)
	assert.Same(t, env.Store, env.Pipeline.Store())
}

func TestInitServe_BreakerTransitionsRecorded(t *testing.T) {
	env, err := initServe(testConfig(), prometheus.NewRegistry())
	require.NoError(t, err)
	defer env.Close()

	b := env.Breakers.For("webhook")
	for i := 0; i < 5; i++ {
		_ = b.Do(context.Background(), func(context.Context) error { return assert.AnError })
	}
	assert.Equal(t, resilience.Open, b.State())
	assert.Equal(t, resilience.Open, env.Breakers.States()["webhook"])
}

// The client keeps retrying in the background, so a broker that is down at
// startup does not stop serve from coming up.
func TestInitServe_MQTTBrokerDown(t *testing.T) {
	c := testConfig()
	c.MQTT = config.MQTTConfig{
		Broker:      fmt.Sprintf("tcp://127.0.0.1:%d", freePort(t)),
		ClientID:    "test",
		TopicPrefix: "wifisurvey",
	}

	env, err := initServe(c, prometheus.NewRegistry())
	require.NoError(t, err)
	defer env.Close()
	assert.NotNil(t, env.MQTT)
}

func TestServe_PollsDirectoryAndServes(t *testing.T) {
	dir := t.TempDir()
	writeBatches(t, dir, "001.json", cafeBatch())

	c := testConfig()
	c.Server.Port = freePort(t)
	c.Scan.Path = dir

	env, err := initServe(c, prometheus.NewRegistry())
	require.NoError(t, err)
	defer env.Close()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- env.Run(ctx, c)
	}()

	require.Eventually(t, func() bool {
		return env.Store.Current() != nil
	}, 5*time.Second, 20*time.Millisecond, "batch from directory was never committed")

	var body map[string]any
	require.Eventually(t, func() bool {
		resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/health", c.Server.Port))
		if err != nil {
			return false
		}
		defer resp.Body.Close() //nolint:errcheck
		return resp.StatusCode == http.StatusOK && json.NewDecoder(resp.Body).Decode(&body) == nil
	}, 5*time.Second, 20*time.Millisecond)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, 1.0, body["cycle_seq"])

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("serve did not stop after context cancellation")
	}
}
