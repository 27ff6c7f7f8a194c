package scale

import (
	"errors"
	"fmt"

	pkgmqtt "almacen-front/pkg/mqtt"
)

// MQTTSourceConfig describes the broker connection and the topic the scale
// publishes weight frames on.
type MQTTSourceConfig struct {
	Broker   string
	ClientID string
	Topic    string
	QoS      byte
}

// MQTTSource feeds scale frames from an MQTT broker instead of a raw
// websocket, for installations where the scale publishes through a broker.
type MQTTSource struct {
	cfg    *MQTTSourceConfig
	client *pkgmqtt.Client
	feed   *Feed
}

// NewMQTTSource wires a broker subscription into the feed.
func NewMQTTSource(cfg *MQTTSourceConfig, feed *Feed) (*MQTTSource, error) {
	if cfg == nil || cfg.Broker == "" || cfg.Topic == "" {
		return nil, errors.New("mqtt scale source is not configured")
	}
	if feed == nil {
		return nil, errors.New("feed is required")
	}

	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "almacen-front-scale"
	}

	s := &MQTTSource{cfg: cfg, feed: feed}
	s.client = pkgmqtt.NewClient(&pkgmqtt.Config{
		Broker:         cfg.Broker,
		ClientID:       clientID,
		CleanSession:   true,
		KeepAlive:      30,
		ConnectTimeout: 10,
		AutoReconnect:  true,
		OnConnect: func() {
			feed.markConnected()
		},
		OnConnectionLost: func(err error) {
			feed.markDisconnected(err.Error())
		},
	})
	return s, nil
}

// Start connects and subscribes. Frames follow the same semantics as the
// websocket source: numeric weight required, anything else dropped.
func (s *MQTTSource) Start() error {
	if err := s.client.Connect(); err != nil {
		s.feed.markDisconnected(err.Error())
		return fmt.Errorf("failed to connect scale broker: %w", err)
	}

	if err := s.client.Subscribe(s.cfg.Topic, s.cfg.QoS, func(_ string, payload []byte) {
		s.feed.apply(payload)
	}); err != nil {
		s.client.Disconnect()
		s.feed.markDisconnected(err.Error())
		return fmt.Errorf("failed to subscribe scale topic: %w", err)
	}

	return nil
}

// Stop unsubscribes and disconnects, leaving the feed disconnected.
func (s *MQTTSource) Stop() {
	_ = s.client.Unsubscribe(s.cfg.Topic)
	s.client.Disconnect()
	s.feed.markDisconnected("")
}
