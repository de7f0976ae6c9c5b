// go-inventory
// Copyright (c) 2025 The Zaparoo Project Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-inventory.
//
// go-inventory is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-inventory is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-inventory; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

package publish

import (
	"crypto/tls"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	inventory "github.com/ZaparooProject/go-inventory"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultTopicPrefix is the topic prefix used when none is configured
const DefaultTopicPrefix = "inventory"

const (
	defaultConnectTimeout = 10 * time.Second
	defaultPublishTimeout = 5 * time.Second
	disconnectQuiesceMS   = 250
)

// ErrConnectTimeout is returned when the broker does not answer in time
var ErrConnectTimeout = errors.New("timed out connecting to MQTT broker")

// MQTTConfig holds MQTT broker settings
type MQTTConfig struct {
	BrokerURL      string        `yaml:"broker_url"`
	ClientID       string        `yaml:"client_id"`
	Username       string        `yaml:"username"`
	Password       string        `yaml:"password"`
	TopicPrefix    string        `yaml:"topic_prefix"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	PublishTimeout time.Duration `yaml:"publish_timeout"`
	QoS            byte          `yaml:"qos"`
	Retained       bool          `yaml:"retained"`
	TLS            bool          `yaml:"tls"`
}

// mqttClient is the part of mqtt.Client the publisher uses
type mqttClient interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

// MQTTPublisher publishes notifications as JSON events on
// <prefix>/<session>/<kind>.
//
// Publish hands the message to the client and returns. Delivery
// confirmations are awaited in the background and counted.
type MQTTPublisher struct {
	client         mqttClient
	log            zerolog.Logger
	now            func() time.Time
	prefix         string
	pending        sync.WaitGroup
	mu             sync.Mutex
	publishTimeout time.Duration
	published      atomic.Int64
	failed         atomic.Int64
	qos            byte
	retained       bool
	closed         bool
}

// ConnectMQTT connects to the broker in cfg
func ConnectMQTT(cfg MQTTConfig, logger zerolog.Logger) (*MQTTPublisher, error) {
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "go-inventory-" + uuid.NewString()
	}
	connectTimeout := cfg.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = defaultConnectTimeout
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.BrokerURL)
	opts.SetClientID(clientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	if cfg.TLS {
		opts.SetTLSConfig(&tls.Config{MinVersion: tls.VersionTLS12})
	}
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectTimeout(connectTimeout)
	opts.SetKeepAlive(30 * time.Second)
	opts.SetOnConnectHandler(func(mqtt.Client) {
		logger.Info().Str("broker", cfg.BrokerURL).Msg("MQTT client connected")
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logger.Warn().Err(err).Str("broker", cfg.BrokerURL).Msg("MQTT connection lost")
	})

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		client.Disconnect(0)
		return nil, fmt.Errorf("%w: %s", ErrConnectTimeout, cfg.BrokerURL)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to MQTT broker %s: %w", cfg.BrokerURL, err)
	}
	return newMQTTPublisher(client, cfg, logger), nil
}

func newMQTTPublisher(client mqttClient, cfg MQTTConfig, logger zerolog.Logger) *MQTTPublisher {
	prefix := cfg.TopicPrefix
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}
	timeout := cfg.PublishTimeout
	if timeout <= 0 {
		timeout = defaultPublishTimeout
	}
	return &MQTTPublisher{
		client:         client,
		log:            logger,
		now:            time.Now,
		prefix:         prefix,
		publishTimeout: timeout,
		qos:            cfg.QoS,
		retained:       cfg.Retained,
	}
}

// Publish queues n for delivery
func (p *MQTTPublisher) Publish(n inventory.Notification) error {
	data, err := Encode(n, p.now())
	if err != nil {
		return fmt.Errorf("encode %s: %w", n.Kind, err)
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrPublisherClosed
	}
	p.pending.Add(1)
	p.mu.Unlock()

	topic := Topic(p.prefix, n)
	token := p.client.Publish(topic, p.qos, p.retained, data)
	go func() {
		defer p.pending.Done()
		p.await(topic, token)
	}()
	return nil
}

func (p *MQTTPublisher) await(topic string, token mqtt.Token) {
	if !token.WaitTimeout(p.publishTimeout) {
		p.failed.Add(1)
		p.log.Error().Str("topic", topic).Msg("timed out publishing to MQTT")
		return
	}
	if err := token.Error(); err != nil {
		p.failed.Add(1)
		p.log.Error().Err(err).Str("topic", topic).Msg("failed to publish to MQTT")
		return
	}
	p.published.Add(1)
	p.log.Debug().Str("topic", topic).Msg("published notification")
}

// Flush waits for queued publishes to be confirmed or time out
func (p *MQTTPublisher) Flush() {
	p.pending.Wait()
}

// Published returns the number of confirmed publishes
func (p *MQTTPublisher) Published() int64 {
	return p.published.Load()
}

// Failed returns the number of publishes that errored or timed out
func (p *MQTTPublisher) Failed() int64 {
	return p.failed.Load()
}

// Close waits for queued publishes and disconnects
func (p *MQTTPublisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	p.pending.Wait()
	p.client.Disconnect(disconnectQuiesceMS)
	return nil
}
