// Package publish pushes committed snapshots to an MQTT broker.
package publish

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/wifisurvey/internal/cluster"
	"github.com/sells-group/wifisurvey/internal/export"
	"github.com/sells-group/wifisurvey/internal/resilience"
	"github.com/sells-group/wifisurvey/internal/snapshot"
)

// Options configures the MQTT sink.
type Options struct {
	Broker         string
	ClientID       string
	Username       string
	Password       string
	TopicPrefix    string
	QoS            byte
	PublishTimeout time.Duration
}

// transport is the part of an MQTT client the sink needs.
type transport interface {
	publish(topic string, qos byte, retained bool, payload []byte, timeout time.Duration) error
	close()
}

type pahoTransport struct {
	client mqtt.Client
}

func (p *pahoTransport) publish(topic string, qos byte, retained bool, payload []byte, timeout time.Duration) error {
	if !p.client.IsConnectionOpen() {
		return resilience.Temporary(eris.New("publish: mqtt not connected"), 0)
	}
	token := p.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(timeout) {
		return resilience.Temporary(eris.Errorf("publish: %s timed out", topic), 0)
	}
	return token.Error()
}

func (p *pahoTransport) close() {
	p.client.Disconnect(250)
}

// MQTT publishes snapshots as JSON: a retained summary, one message per
// cluster, and the spectrum report.
type MQTT struct {
	opts    Options
	conn    transport
	breaker *resilience.Breaker
}

// Connect dials the broker and returns a sink guarded by breaker.
func Connect(opts Options, breaker *resilience.Breaker) (*MQTT, error) {
	if opts.ClientID == "" {
		opts.ClientID = "wifisurvey"
	}
	log := zap.L().With(zap.String("component", "mqtt"), zap.String("broker", opts.Broker))

	co := mqtt.NewClientOptions()
	co.AddBroker(opts.Broker)
	// A random suffix keeps two instances from kicking each other off.
	co.SetClientID(opts.ClientID + "-" + uuid.NewString()[:8])
	if opts.Username != "" {
		co.SetUsername(opts.Username)
	}
	if opts.Password != "" {
		co.SetPassword(opts.Password)
	}
	co.SetAutoReconnect(true)
	co.SetConnectRetry(true)
	co.SetConnectRetryInterval(10 * time.Second)
	co.SetKeepAlive(60 * time.Second)
	co.SetPingTimeout(10 * time.Second)
	co.SetOnConnectHandler(func(mqtt.Client) {
		log.Info("mqtt: connected")
	})
	co.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		log.Warn("mqtt: connection lost", zap.Error(err))
	})

	client := mqtt.NewClient(co)
	token := client.Connect()
	// With ConnectRetry the token only completes once connected, so a slow
	// broker is not fatal at startup.
	if token.WaitTimeout(5*time.Second) && token.Error() != nil {
		return nil, eris.Wrapf(token.Error(), "publish: connect %s", opts.Broker)
	}
	return newMQTT(opts, &pahoTransport{client: client}, breaker), nil
}

func newMQTT(opts Options, conn transport, breaker *resilience.Breaker) *MQTT {
	if opts.TopicPrefix == "" {
		opts.TopicPrefix = "wifisurvey"
	}
	if opts.PublishTimeout <= 0 {
		opts.PublishTimeout = 5 * time.Second
	}
	if breaker == nil {
		breaker = resilience.NewBreaker("mqtt", resilience.DefaultBreakerSettings())
	}
	return &MQTT{opts: opts, conn: conn, breaker: breaker}
}

// Name identifies the sink in logs.
func (m *MQTT) Name() string {
	return "mqtt"
}

// Publish sends the snapshot. An open breaker rejects the call without
// touching the broker.
func (m *MQTT) Publish(ctx context.Context, snap *snapshot.Snapshot) error {
	msgs, err := m.messages(snap)
	if err != nil {
		return err
	}
	return m.breaker.Do(ctx, func(ctx context.Context) error {
		for _, msg := range msgs {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := m.conn.publish(msg.topic, m.opts.QoS, msg.retained, msg.payload, m.opts.PublishTimeout); err != nil {
				return eris.Wrapf(err, "publish: %s", msg.topic)
			}
		}
		return nil
	})
}

// Close disconnects from the broker.
func (m *MQTT) Close() {
	m.conn.close()
}

type message struct {
	topic    string
	retained bool
	payload  []byte
}

// clusterMessage is the per-cluster payload. Members are left out to keep
// messages small.
type clusterMessage struct {
	CycleSeq uint64 `json:"cycle_seq"`
	*cluster.Cluster
	Members any    `json:"members,omitempty"`
	Snippet string `json:"snippet"`
}

func (m *MQTT) messages(snap *snapshot.Snapshot) ([]message, error) {
	var out []message
	add := func(topic string, retained bool, v any) error {
		data, err := json.Marshal(v)
		if err != nil {
			return eris.Wrapf(err, "publish: encode %s", topic)
		}
		out = append(out, message{topic: m.opts.TopicPrefix + "/" + topic, retained: retained, payload: data})
		return nil
	}

	if err := add("summary", true, snap.Summarize()); err != nil {
		return nil, err
	}
	if err := add("spectrum", true, snap.Spectrum); err != nil {
		return nil, err
	}
	for _, c := range snap.Clusters.Sorted() {
		msg := clusterMessage{CycleSeq: snap.CycleSeq, Cluster: c, Snippet: export.MapSnippet(c)}
		if err := add("clusters/"+TopicSegment(c.SSID), false, msg); err != nil {
			return nil, err
		}
	}
	return out, nil
}

var topicReplacer = strings.NewReplacer("/", "_", "+", "_", "#", "_", " ", "_")

// TopicSegment makes an SSID safe to use as one MQTT topic level.
func TopicSegment(ssid string) string {
	if s := topicReplacer.Replace(ssid); s != "" {
		return s
	}
	return "_"
}
