package monitoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/wifisurvey/internal/config"
	"github.com/sells-group/wifisurvey/internal/model"
	"github.com/sells-group/wifisurvey/internal/resilience"
	"github.com/sells-group/wifisurvey/internal/snapshot"
)

// AlertType identifies the kind of alert.
type AlertType string

const (
	AlertOpenNetwork AlertType = "open_network"
	AlertDensity     AlertType = "density"
	AlertChannelLoad AlertType = "channel_load"
)

// Alert represents a single alert to be sent.
type Alert struct {
	Type      AlertType      `json:"type"`
	Severity  string         `json:"severity"`
	Message   string         `json:"message"`
	CycleSeq  uint64         `json:"cycle_seq"`
	Details   map[string]any `json:"details,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Alerter evaluates snapshots against configured thresholds and sends
// alerts to a webhook through a circuit breaker.
type Alerter struct {
	cfg     config.MonitoringConfig
	client  *http.Client
	breaker *resilience.Breaker
	metrics *Collector
	now     func() time.Time
}

// NewAlerter creates an Alerter. breaker and metrics may be nil.
func NewAlerter(cfg config.MonitoringConfig, breaker *resilience.Breaker, metrics *Collector) *Alerter {
	if breaker == nil {
		breaker = resilience.NewBreaker("webhook", resilience.DefaultBreakerSettings())
	}
	return &Alerter{
		cfg:     cfg,
		client:  &http.Client{Timeout: 10 * time.Second},
		breaker: breaker,
		metrics: metrics,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Evaluate checks the snapshot against thresholds and returns any alerts.
func (a *Alerter) Evaluate(snap *snapshot.Snapshot) []Alert {
	if snap == nil {
		return nil
	}
	var alerts []Alert
	now := a.now()

	// High-risk clusters: open or WEP access points in range.
	var risky []string
	for _, c := range snap.Clusters.Sorted() {
		if c.OverallRisk == model.RiskHigh {
			risky = append(risky, c.SSID)
		}
	}
	if len(risky) > 0 {
		alerts = append(alerts, Alert{
			Type:     AlertOpenNetwork,
			Severity: "high",
			Message: fmt.Sprintf("%d high-risk network(s) in range: %s",
				len(risky), strings.Join(risky, ", ")),
			CycleSeq: snap.CycleSeq,
			Details: map[string]any{
				"ssids":      risky,
				"open":       snap.Security.Open,
				"vulnerable": snap.Security.Vulnerable(),
			},
			Timestamp: now,
		})
	}

	density := snap.Spectrum.DensityPerKm2
	if a.cfg.DensityThreshold > 0 && density > a.cfg.DensityThreshold {
		alerts = append(alerts, Alert{
			Type:     AlertDensity,
			Severity: "medium",
			Message: fmt.Sprintf("Network density %.1f/km² exceeds threshold %.1f/km²",
				density, a.cfg.DensityThreshold),
			CycleSeq: snap.CycleSeq,
			Details: map[string]any{
				"density_per_km2": density,
				"threshold":       a.cfg.DensityThreshold,
				"observations":    snap.Spectrum.ObservationCount,
			},
			Timestamp: now,
		})
	}

	ch := snap.Spectrum.RecommendedChannel
	load := snap.Spectrum.ChannelUsage[ch]
	if a.cfg.ChannelLoadThreshold > 0 && load > a.cfg.ChannelLoadThreshold {
		alerts = append(alerts, Alert{
			Type:     AlertChannelLoad,
			Severity: "medium",
			Message: fmt.Sprintf("Least congested channel %d still carries %d access points (threshold %d)",
				ch, load, a.cfg.ChannelLoadThreshold),
			CycleSeq: snap.CycleSeq,
			Details: map[string]any{
				"channel":   ch,
				"load":      load,
				"threshold": a.cfg.ChannelLoadThreshold,
			},
			Timestamp: now,
		})
	}

	return alerts
}

// SendAlerts delivers alerts to the configured webhook URL.
// Returns the number of alerts successfully sent.
func (a *Alerter) SendAlerts(ctx context.Context, alerts []Alert) int {
	if a.cfg.WebhookURL == "" || len(alerts) == 0 {
		return 0
	}

	sent := 0
	for _, alert := range alerts {
		err := a.breaker.Do(ctx, func(ctx context.Context) error {
			return a.sendWebhook(ctx, alert)
		})
		if err != nil {
			zap.L().Error("monitoring: failed to send alert",
				zap.String("type", string(alert.Type)),
				zap.Error(err),
			)
			continue
		}
		zap.L().Info("monitoring: alert sent",
			zap.String("type", string(alert.Type)),
			zap.String("severity", alert.Severity),
		)
		a.metrics.AlertSent(alert.Type)
		sent++
	}
	return sent
}

// sendWebhook posts a single alert to the webhook URL.
func (a *Alerter) sendWebhook(ctx context.Context, alert Alert) error {
	payload, err := json.Marshal(alert)
	if err != nil {
		return eris.Wrap(err, "monitoring: marshal alert")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.WebhookURL, bytes.NewReader(payload))
	if err != nil {
		return eris.Wrap(err, "monitoring: create webhook request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return eris.Wrap(err, "monitoring: webhook request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= 400 {
		err := eris.Errorf("monitoring: webhook returned status %d", resp.StatusCode)
		if resilience.IsTemporaryStatus(resp.StatusCode) {
			return resilience.Temporary(err, resp.StatusCode)
		}
		return err
	}
	return nil
}
