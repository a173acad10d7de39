// Package monitoring exposes scan cycle metrics to Prometheus and raises
// webhook alerts when a committed snapshot crosses configured thresholds.
package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rotisserie/eris"

	"github.com/sells-group/wifisurvey/internal/model"
	"github.com/sells-group/wifisurvey/internal/resilience"
	"github.com/sells-group/wifisurvey/internal/snapshot"
)

const namespace = "wifisurvey"

var riskLevels = []model.NetworkRisk{
	model.RiskHigh, model.RiskMedium, model.RiskLow, model.RiskVeryLow, model.RiskUnknown,
}

// Collector holds the survey's Prometheus metrics. It records pipeline cycle
// outcomes and breaker transitions.
type Collector struct {
	gatherer prometheus.Gatherer

	Cycles             *prometheus.CounterVec
	CycleDuration      prometheus.Histogram
	Observations       prometheus.Gauge
	Clusters           prometheus.Gauge
	PlacedClusters     prometheus.Gauge
	Density            prometheus.Gauge
	RecommendedChannel prometheus.Gauge
	BandObservations   *prometheus.GaugeVec
	RiskClusters       *prometheus.GaugeVec
	AlertsSent         *prometheus.CounterVec
	BreakerState       *prometheus.GaugeVec
}

// NewCollector registers the metrics with reg, or with the default registry
// when reg is nil. Registering twice on one registry reuses the existing
// collectors.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	c := &Collector{gatherer: gatherer}
	var err error

	if c.Cycles, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cycles_total",
		Help:      "Scan cycles processed, labeled by result (committed, stale).",
	}, []string{"result"})); err != nil {
		return nil, err
	}
	if c.CycleDuration, err = register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "cycle_duration_seconds",
		Help:      "Time from batch arrival to commit.",
		Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	})); err != nil {
		return nil, err
	}
	if c.Observations, err = registerGauge(reg, "observations", "Access points in the committed snapshot."); err != nil {
		return nil, err
	}
	if c.Clusters, err = registerGauge(reg, "clusters", "SSID clusters in the committed snapshot."); err != nil {
		return nil, err
	}
	if c.PlacedClusters, err = registerGauge(reg, "placed_clusters", "Clusters with a centroid."); err != nil {
		return nil, err
	}
	if c.Density, err = registerGauge(reg, "density_per_km2", "Access points per square kilometre of scan area."); err != nil {
		return nil, err
	}
	if c.RecommendedChannel, err = registerGauge(reg, "recommended_channel", "Least congested non-overlapping 2.4GHz channel."); err != nil {
		return nil, err
	}
	if c.BandObservations, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "band_observations",
		Help:      "Access points per band in the committed snapshot.",
	}, []string{"band"})); err != nil {
		return nil, err
	}
	if c.RiskClusters, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "risk_clusters",
		Help:      "Clusters per overall risk level in the committed snapshot.",
	}, []string{"risk"})); err != nil {
		return nil, err
	}
	if c.AlertsSent, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "alerts_sent_total",
		Help:      "Alerts delivered to the webhook, labeled by type.",
	}, []string{"type"})); err != nil {
		return nil, err
	}
	if c.BreakerState, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "breaker_state",
		Help:      "Circuit breaker state per target (0 closed, 1 open, 2 half-open).",
	}, []string{"target"})); err != nil {
		return nil, err
	}
	return c, nil
}

func registerGauge(reg prometheus.Registerer, name, help string) (prometheus.Gauge, error) {
	return register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	}))
}

// register adds col to reg, returning the already registered collector of
// the same type when there is one.
func register[T prometheus.Collector](reg prometheus.Registerer, col T) (T, error) {
	if err := reg.Register(col); err != nil {
		are, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			return col, eris.Wrap(err, "monitoring: register collector")
		}
		existing, ok := are.ExistingCollector.(T)
		if !ok {
			return col, eris.New("monitoring: collector already registered with incompatible type")
		}
		return existing, nil
	}
	return col, nil
}

// Handler serves the metrics in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}

// CycleCommitted records a committed snapshot.
func (c *Collector) CycleCommitted(snap *snapshot.Snapshot, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.Cycles.WithLabelValues("committed").Inc()
	c.CycleDuration.Observe(elapsed.Seconds())
	c.Observations.Set(float64(len(snap.Observations)))
	c.Clusters.Set(float64(len(snap.Clusters)))
	c.PlacedClusters.Set(float64(len(snap.Clusters.Placed())))
	c.Density.Set(snap.Spectrum.DensityPerKm2)
	c.RecommendedChannel.Set(float64(snap.Spectrum.RecommendedChannel))

	c.BandObservations.Reset()
	for band, n := range snap.Spectrum.BandCounts {
		c.BandObservations.WithLabelValues(band).Set(float64(n))
	}

	risks := make(map[model.NetworkRisk]int, len(riskLevels))
	for _, cl := range snap.Clusters {
		risks[cl.OverallRisk]++
	}
	for _, r := range riskLevels {
		c.RiskClusters.WithLabelValues(r.String()).Set(float64(risks[r]))
	}
}

// CycleStale records a cycle discarded because a newer one had committed.
func (c *Collector) CycleStale(uint64) {
	if c == nil {
		return
	}
	c.Cycles.WithLabelValues("stale").Inc()
}

// AlertSent counts a delivered alert.
func (c *Collector) AlertSent(t AlertType) {
	if c == nil {
		return
	}
	c.AlertsSent.WithLabelValues(string(t)).Inc()
}

// BreakerTransition tracks breaker state. It fits
// resilience.BreakerSettings.OnTransition.
func (c *Collector) BreakerTransition(name string, _, to resilience.State) {
	if c == nil {
		return
	}
	c.BreakerState.WithLabelValues(name).Set(float64(to))
}
