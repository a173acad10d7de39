package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/wifisurvey/internal/config"
	"github.com/sells-group/wifisurvey/internal/geo"
	"github.com/sells-group/wifisurvey/internal/monitoring"
	"github.com/sells-group/wifisurvey/internal/pipeline"
	"github.com/sells-group/wifisurvey/internal/publish"
	"github.com/sells-group/wifisurvey/internal/resilience"
	"github.com/sells-group/wifisurvey/internal/snapshot"
	"github.com/sells-group/wifisurvey/internal/source"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve snapshots over HTTP while polling a batch directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if servePort != 0 {
			cfg.Server.Port = servePort
		}
		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		env, err := initServe(cfg, prometheus.NewRegistry())
		if err != nil {
			return err
		}
		defer env.Close()

		return env.Run(ctx, cfg)
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// serveEnv holds everything serve wires together.
type serveEnv struct {
	Store    *snapshot.Store
	Pipeline *pipeline.Pipeline
	Metrics  *monitoring.Collector
	Breakers *resilience.Breakers
	Checker  *monitoring.Checker
	MQTT     *publish.MQTT
}

// Close releases the MQTT connection, if any.
func (e *serveEnv) Close() {
	if e.MQTT != nil {
		e.MQTT.Close()
	}
}

// initServe builds the store, metrics, breakers, sinks, pipeline and alert
// checker from configuration.
func initServe(c *config.Config, reg *prometheus.Registry) (*serveEnv, error) {
	metrics, err := monitoring.NewCollector(reg)
	if err != nil {
		return nil, err
	}

	settings := resilience.SettingsFromConfig(c.Circuit.FailureThreshold, c.Circuit.ResetTimeoutSecs)
	settings.OnTransition = metrics.BreakerTransition
	breakers := resilience.NewBreakers(settings)

	env := &serveEnv{
		Store:    snapshot.NewStore(),
		Metrics:  metrics,
		Breakers: breakers,
	}

	var sinks []pipeline.Sink
	if c.MQTT.Enabled() {
		sink, err := publish.Connect(publish.Options{
			Broker:      c.MQTT.Broker,
			ClientID:    c.MQTT.ClientID,
			Username:    c.MQTT.Username,
			Password:    c.MQTT.Password,
			TopicPrefix: c.MQTT.TopicPrefix,
			QoS:         byte(c.MQTT.QoS),
		}, breakers.For("mqtt"))
		if err != nil {
			return nil, err
		}
		env.MQTT = sink
		sinks = append(sinks, sink)
	}

	env.Pipeline = pipeline.New(env.Store, geo.NewSeededProjector(c.Scan.Seed),
		pipeline.WithSinks(sinks...),
		pipeline.WithRecorder(metrics),
		pipeline.WithDefaultRadius(c.Scan.RadiusMeters),
	)

	alerter := monitoring.NewAlerter(c.Monitoring, breakers.For("webhook"), metrics)
	env.Checker = monitoring.NewChecker(env.Store, alerter, c.Monitoring)
	return env, nil
}

// Run serves HTTP, polls scan.path when set, and runs the alert checker
// until ctx is cancelled.
func (e *serveEnv) Run(ctx context.Context, c *config.Config) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", c.Server.Port),
		Handler:           buildRouter(e.Pipeline, e.Metrics),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		zap.L().Info("starting server", zap.Int("port", c.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		zap.L().Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if c.Scan.Path != "" {
		poller := source.NewPoller(source.NewDir(c.Scan.Path), e.Pipeline, source.PollerOptions{
			Interval: time.Duration(c.Scan.IntervalSecs) * time.Second,
			Burst:    c.Scan.Burst,
			Retry:    resilience.PolicyFromSettings(c.Retry.MaxAttempts, c.Retry.InitialBackoffMs, c.Retry.MaxBackoffMs),
		})
		g.Go(func() error {
			zap.L().Info("polling batches", zap.String("path", c.Scan.Path))
			return poller.Run(gctx)
		})
	}

	g.Go(func() error {
		e.Checker.Run(gctx)
		return nil
	})

	return g.Wait()
}
