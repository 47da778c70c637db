package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/kilianp07/sessionplanner/core/logger"
	"github.com/kilianp07/sessionplanner/core/session"
	"github.com/kilianp07/sessionplanner/internal/eventbus"
)

// Bridge publishes session events to an MQTT broker. Each event goes to
// {prefix}/sessions/{session_id}/{event_type} as JSON.
type Bridge struct {
	cli        pahoClient
	prefix     string
	qos        byte
	retain     bool
	maxRetries int
	backoff    time.Duration
	log        logger.Logger
}

// NewBridge connects to the configured broker.
func NewBridge(cfg Config, log logger.Logger) (*Bridge, error) {
	if !cfg.Enabled() {
		return nil, ErrNotConfigured
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop{}
	}
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	opts.OnConnect = func(paho.Client) { log.Infof("MQTT connected to %s", cfg.Broker) }
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(paho.Client, *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}
	return &Bridge{
		cli:        c,
		prefix:     cfg.TopicPrefix,
		qos:        cfg.QoS,
		retain:     cfg.Retain,
		maxRetries: cfg.MaxRetries,
		backoff:    time.Duration(cfg.BackoffMS) * time.Millisecond,
		log:        log,
	}, nil
}

// Topic returns the topic an event is published to.
func (b *Bridge) Topic(ev session.Event) string {
	return fmt.Sprintf("%s/sessions/%s/%s", b.prefix, ev.SessionID, ev.Type)
}

// Publish sends one event, retrying with exponential backoff.
func (b *Bridge) Publish(ctx context.Context, ev session.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	topic := b.Topic(ev)
	var publishErr error
	for attempt := 0; attempt <= b.maxRetries; attempt++ {
		token := b.cli.Publish(topic, b.qos, b.retain, payload)
		token.Wait()
		if publishErr = token.Error(); publishErr == nil {
			b.log.Debugf("published %s", topic)
			return nil
		}
		b.log.Errorf("publish attempt %d failed: %v", attempt+1, publishErr)
		if attempt == b.maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(b.backoff * time.Duration(1<<attempt)):
		}
	}
	return fmt.Errorf("publish %s: %w", topic, publishErr)
}

// Run forwards bus events until ctx is cancelled or the bus is closed.
// Publish failures are logged and do not stop the bridge.
func (b *Bridge) Run(ctx context.Context, bus *eventbus.Bus[session.Event]) error {
	sub := bus.Subscribe()
	defer bus.Unsubscribe(sub)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-sub:
			if !ok {
				return nil
			}
			if err := b.Publish(ctx, ev); err != nil && ctx.Err() == nil {
				b.log.Errorf("event %s for %s dropped: %v", ev.Type, ev.SessionID, err)
			}
		}
	}
}

// Disconnect gracefully closes the MQTT connection.
func (b *Bridge) Disconnect() {
	if b.cli != nil && b.cli.IsConnected() {
		b.cli.Disconnect(250)
	}
}
