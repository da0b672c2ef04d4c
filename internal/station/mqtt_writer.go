package station

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"airdarwin-gcs/internal/logging"

	"github.com/eclipse/paho.golang/autopaho"
	"github.com/eclipse/paho.golang/paho"
	"github.com/google/uuid"
)

const mqttPublishTimeout = 2 * time.Second

// publisher is the part of the autopaho connection manager the writer uses.
type publisher interface {
	Publish(ctx context.Context, p *paho.Publish) (*paho.PublishResponse, error)
	Disconnect(ctx context.Context) error
}

// MQTTWriter publishes events as JSON under <prefix>/state, <prefix>/alerts
// and <prefix>/link.
type MQTTWriter struct {
	pub    publisher
	ctx    context.Context
	prefix string
}

// NewMQTTWriter connects to brokerURL. An empty clientID gets a random one.
// The connection is managed in the background; publishes made while it is
// down fail with an error.
func NewMQTTWriter(ctx context.Context, brokerURL, clientID, prefix string) (*MQTTWriter, error) {
	u, err := url.Parse(brokerURL)
	if err != nil {
		return nil, fmt.Errorf("parse broker url: %w", err)
	}
	if clientID == "" {
		clientID = "airdarwin-gcs-" + uuid.NewString()[:8]
	}
	log := logging.FromContext(ctx)
	cfg := autopaho.ClientConfig{
		ServerUrls:                    []*url.URL{u},
		KeepAlive:                     30,
		CleanStartOnInitialConnection: true,
		ConnectRetryDelay:             5 * time.Second,
		OnConnectionUp: func(*autopaho.ConnectionManager, *paho.Connack) {
			log.Info("mqtt connection up", "broker", u.String())
		},
		OnConnectError: func(err error) {
			log.Warn("mqtt connect failed", "broker", u.String(), "err", err)
		},
		ClientConfig: paho.ClientConfig{
			ClientID: clientID,
			OnClientError: func(err error) {
				log.Error("mqtt client error", "err", err)
			},
		},
	}
	cm, err := autopaho.NewConnection(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("mqtt connection: %w", err)
	}
	return &MQTTWriter{pub: cm, ctx: ctx, prefix: strings.TrimSuffix(prefix, "/")}, nil
}

func (w *MQTTWriter) topic(name string) string {
	if w.prefix == "" {
		return name
	}
	return w.prefix + "/" + name
}

func (w *MQTTWriter) publish(name string, qos byte, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	ctx := w.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, mqttPublishTimeout)
	defer cancel()
	_, err = w.pub.Publish(ctx, &paho.Publish{
		Topic:   w.topic(name),
		QoS:     qos,
		Payload: payload,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", w.topic(name), err)
	}
	return nil
}

// WriteFrame publishes the flight state.
func (w *MQTTWriter) WriteFrame(e FrameEvent) error {
	return w.publish("state", 0, e)
}

// WriteAlerts publishes the report at QoS 1.
func (w *MQTTWriter) WriteAlerts(e AlertEvent) error {
	return w.publish("alerts", 1, e)
}

// WriteLink publishes a link status change.
func (w *MQTTWriter) WriteLink(e LinkEvent) error {
	return w.publish("link", 0, e)
}

// Close disconnects from the broker.
func (w *MQTTWriter) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return w.pub.Disconnect(ctx)
}
