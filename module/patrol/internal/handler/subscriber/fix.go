package subscriber

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/vwin2537-arch/-BaanCHECK/module/patrol/domain"
	"github.com/vwin2537-arch/-BaanCHECK/module/patrol/internal/sensor"
)

const fixTopic = "/patrol/device/+/fix"

type fixSink interface {
	Deliver(deviceID string, fix sensor.Fix)
	Fail(deviceID string, err error)
}

type fixMessage struct {
	DeviceID  string  `json:"device_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	AccuracyM float64 `json:"accuracy_m"`
	Timestamp int64   `json:"timestamp"`
	Error     string  `json:"error,omitempty"`
}

// FixSubscriber feeds device position reports from MQTT into the sensor
// provider. Malformed messages are logged and dropped.
type FixSubscriber struct {
	client mqtt.Client
	sink   fixSink
}

func NewFixSubscriber(client mqtt.Client, sink fixSink) *FixSubscriber {
	return &FixSubscriber{client: client, sink: sink}
}

func (s *FixSubscriber) Start() error {
	token := s.client.Subscribe(fixTopic, 1, s.handleMessage)
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("subscribe %s: %w", fixTopic, err)
	}
	return nil
}

func (s *FixSubscriber) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	var raw fixMessage
	if err := json.Unmarshal(msg.Payload(), &raw); err != nil {
		log.Printf("invalid fix message: %v", err)
		return
	}

	if raw.DeviceID == "" {
		log.Printf("fix message dropped: device_id missing")
		return
	}

	if raw.Error != "" {
		s.sink.Fail(raw.DeviceID, sensorError(raw.Error))
		return
	}

	if err := validateFixMessage(&raw); err != nil {
		log.Printf("fix validation error: %v", err)
		return
	}

	s.sink.Deliver(raw.DeviceID, sensor.Fix{
		Coordinates: domain.Coordinates{
			Lat:       raw.Latitude,
			Lon:       raw.Longitude,
			AccuracyM: raw.AccuracyM,
		},
		At: time.Unix(raw.Timestamp, 0),
	})
}

func sensorError(code string) error {
	switch code {
	case "permission_denied":
		return sensor.ErrPermissionDenied
	default:
		return sensor.ErrDeviceUnavailable
	}
}

func validateFixMessage(msg *fixMessage) error {
	if msg.Latitude < -90 || msg.Latitude > 90 {
		return fmt.Errorf("latitude %f out of range", msg.Latitude)
	}
	if msg.Longitude < -180 || msg.Longitude > 180 {
		return fmt.Errorf("longitude %f out of range", msg.Longitude)
	}
	if msg.AccuracyM < 0 {
		return fmt.Errorf("accuracy_m %f must not be negative", msg.AccuracyM)
	}
	if msg.Timestamp <= 0 {
		return fmt.Errorf("timestamp %d must be positive", msg.Timestamp)
	}
	return nil
}
