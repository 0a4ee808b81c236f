package main

import (
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strconv"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

type fixMessage struct {
	DeviceID  string  `json:"device_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	AccuracyM float64 `json:"accuracy_m"`
	Timestamp int64   `json:"timestamp"`
	Error     string  `json:"error,omitempty"`
}

// Main Gate Post, the first seeded checkpoint.
const (
	baseLat = -6.2088
	baseLon = 106.8456
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <interval_seconds>\n", os.Args[0])
		os.Exit(1)
	}

	intervalSec, err := strconv.Atoi(os.Args[1])
	if err != nil || intervalSec <= 0 {
		fmt.Fprintf(os.Stderr, "error: interval must be a positive integer\n")
		os.Exit(1)
	}

	broker := "tcp://localhost:1883"
	if v := os.Getenv("MQTT_BROKER"); v != "" {
		broker = v
	}

	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID("patrol-device-sim")

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalf("mqtt connect: %v", token.Error())
	}
	defer client.Disconnect(250)

	devicePool := make([]string, 3)
	for i := range devicePool {
		devicePool[i] = fmt.Sprintf("UNIT-%02d", i+1)
	}

	log.Printf("connected to %s, publishing every %ds...", broker, intervalSec)
	log.Printf("device pool: %v", devicePool)

	ticker := time.NewTicker(time.Duration(intervalSec) * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		deviceID := devicePool[rand.Intn(len(devicePool))]
		msg := nextFix(deviceID)

		payload, _ := json.Marshal(msg)
		topic := fmt.Sprintf("/patrol/device/%s/fix", deviceID)

		token := client.Publish(topic, 1, false, payload)
		token.Wait()

		log.Printf("published to %s: %s", topic, payload)
	}
}

func nextFix(deviceID string) fixMessage {
	msg := fixMessage{
		DeviceID:  deviceID,
		Timestamp: time.Now().Unix(),
	}

	roll := rand.Float64()
	switch {
	case roll < 0.05:
		// Device refused the location request.
		msg.Error = "permission_denied"
	case roll < 0.10:
		msg.Error = "unavailable"
	case roll < 0.25:
		// Indoors: position near the post but accuracy too weak to trust.
		msg.Latitude = baseLat + (rand.Float64()-0.5)*0.002
		msg.Longitude = baseLon + (rand.Float64()-0.5)*0.002
		msg.AccuracyM = 120 + rand.Float64()*200
	case roll < 0.45:
		// Wandered off post, a few hundred meters out.
		msg.Latitude = baseLat + (rand.Float64()-0.5)*0.01
		msg.Longitude = baseLon + (rand.Float64()-0.5)*0.01
		msg.AccuracyM = 5 + rand.Float64()*20
	default:
		// On post, inside the 50m geofence.
		msg.Latitude = baseLat + (rand.Float64()-0.5)*0.0005
		msg.Longitude = baseLon + (rand.Float64()-0.5)*0.0005
		msg.AccuracyM = 5 + rand.Float64()*20
	}
	return msg
}
