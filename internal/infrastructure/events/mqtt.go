package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"farmsurvey/internal/app/server/config"
	syncdomain "farmsurvey/internal/domain/sync"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"golang.org/x/exp/slog"
)

const (
	connectTimeout = 30 * time.Second
	publishTimeout = 5 * time.Second
)

var (
	ErrNotConnected   = errors.New("mqtt client not connected")
	ErrPublishTimeout = errors.New("mqtt publish timeout")
)

// MQTTPublisher публикует события синхронизации в топик брокера
type MQTTPublisher struct {
	client mqtt.Client
	topic  string
	log    *slog.Logger
}

// NewMQTTPublisher подключается к брокеру; переподключение выполняет сам paho
func NewMQTTPublisher(ctx context.Context, cfg config.MQTT, log *slog.Logger) (*MQTTPublisher, error) {
	log = log.With("component", "mqtt_publisher")

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Password)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetOnConnectHandler(func(mqtt.Client) {
		log.Info("connected to mqtt broker", "broker", cfg.Broker)
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		log.Warn("mqtt connection lost", "error", err)
	})

	client := mqtt.NewClient(opts)
	token := client.Connect()

	timeout := connectTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}
	if !token.WaitTimeout(timeout) {
		client.Disconnect(0)
		return nil, fmt.Errorf("mqtt connect to %s: timeout", cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect to %s: %w", cfg.Broker, err)
	}

	return newMQTTPublisher(client, cfg.Topic, log), nil
}

func newMQTTPublisher(client mqtt.Client, topic string, log *slog.Logger) *MQTTPublisher {
	return &MQTTPublisher{client: client, topic: topic, log: log}
}

// Publish отправляет событие в топик <topic>/<device_id> с QoS 0
func (p *MQTTPublisher) Publish(_ context.Context, e syncdomain.Event) error {
	if !p.client.IsConnectionOpen() {
		return ErrNotConnected
	}

	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}

	topic := p.topic
	if e.DeviceID != "" {
		topic += "/" + e.DeviceID
	}

	token := p.client.Publish(topic, 0, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		return ErrPublishTimeout
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt publish: %w", err)
	}
	return nil
}

func (p *MQTTPublisher) Close() {
	p.client.Disconnect(250)
}
